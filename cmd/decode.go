package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wsn-testbed/clusterhead/internal/frame"
)

var (
	decodeProfile string
	decodeAddr    string
)

var decodeCmd = &cobra.Command{
	Use:   "decode <hex-payload>",
	Short: "Decode a raw frame payload offline",
	Long: `Decode a hex-encoded frame payload with one of the registered wire
profiles and print the resulting record. Useful when debugging node
firmware against a captured payload.

Examples:
  clusterhead decode -p aggregated 01000000000000000000640040
  clusterhead decode -p tuple-a -a 0013A2004155C81D 01004005...`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runDecodeCommand(args[0])
	},
}

func init() {
	decodeCmd.Flags().StringVarP(&decodeProfile, "profile", "p", "aggregated",
		fmt.Sprintf("wire profile (%s)", strings.Join(frame.Profiles(), ", ")))
	decodeCmd.Flags().StringVarP(&decodeAddr, "addr", "a", "0013A2004155C81D",
		"64-bit transport source address, hex")
	rootCmd.AddCommand(decodeCmd)
}

func runDecodeCommand(hexPayload string) {
	payload, err := hex.DecodeString(strings.TrimPrefix(hexPayload, "0x"))
	if err != nil {
		exitWithError("payload is not valid hex", err)
	}
	addr, err := strconv.ParseUint(decodeAddr, 16, 64)
	if err != nil {
		exitWithError("addr is not a valid 64-bit hex address", err)
	}

	dec, err := frame.New(decodeProfile, nil)
	if err != nil {
		exitWithError("unusable profile", err)
	}

	rec, err := dec.Decode(&frame.Frame{
		Payload:    payload,
		SrcAddr:    addr,
		ReceivedAt: time.Now().UTC(),
	})
	if err != nil {
		exitWithError("decode failed", err)
	}

	printRecord(rec)
}

func printRecord(rec *frame.Record) {
	fmt.Printf("snid:  %s\n", rec.SNID)
	fmt.Printf("seq:   %d\n", rec.Seq)

	types := frame.DefaultTypes()
	for _, m := range rec.Measurements {
		fmt.Printf("meas:  %s (0x%02X) = %g\n", types.NameOf(m.Type), m.Type, m.Value)
	}
	if rec.Tuple != nil {
		fmt.Printf("t_air: %g  t_soil: %g  h_air: %g  h_soil: %g\n",
			rec.Tuple.TempAir, rec.Tuple.TempSoil, rec.Tuple.HumidAir, rec.Tuple.HumidSoil)
	}
	if len(rec.Indicators) > 0 {
		fmt.Printf("fault: %v\n", rec.Indicators)
	}
	if rec.StatusReg != nil {
		fmt.Printf("sreg:  0x%02X\n", *rec.StatusReg)
	}
	if rec.Battery != nil {
		fmt.Printf("batt:  %d%%\n", *rec.Battery)
	}
	if rec.Danger != nil {
		fmt.Printf("danger: %g\n", *rec.Danger)
	}
	if rec.Safe != nil {
		fmt.Printf("safe:   %g\n", *rec.Safe)
	}
}

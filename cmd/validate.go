package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wsn-testbed/clusterhead/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Parse and validate a configuration file without starting the gateway.

Examples:
  clusterhead validate -c config.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		runValidateCommand()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidateCommand() {
	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "INVALID: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("VALID: device %s @ %d baud, profile %q, store %s/%s (table %s), watchdog %s, notifier %s\n",
		cfg.Link.Device,
		cfg.Link.Baud,
		cfg.Link.Profile,
		cfg.Store.Host,
		cfg.Store.Database,
		cfg.Store.Table,
		cfg.Watchdog.Timeout,
		cfg.Notifier.Type,
	)
}

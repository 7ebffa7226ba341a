// Package cmd implements CLI commands using the cobra framework.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "clusterhead",
	Short: "Cluster head gateway for a ZigBee wireless sensor network",
	Long: `clusterhead sits between a low-power wireless sensor network and a
durable data store. It receives binary telemetry frames from an XBee module
over a serial link, decodes them according to the deployed wire profile,
checks per-node delivery continuity, classifies samples with a dendritic
cell algorithm, supervises per-node liveness and persists the records to
PostgreSQL.`,
	Version: "0.4.0",
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "/etc/clusterhead/config.yaml",
		"config file path")
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}

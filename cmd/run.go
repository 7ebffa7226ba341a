package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wsn-testbed/clusterhead/internal/config"
	"github.com/wsn-testbed/clusterhead/internal/gateway"
	"github.com/wsn-testbed/clusterhead/internal/log"
	"github.com/wsn-testbed/clusterhead/internal/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the gateway in the foreground",
	Long: `Run the gateway: connect to the XBee module and the data store, then
ingest frames until SIGINT or SIGTERM.

Examples:
  clusterhead run                          # run with the default config path
  clusterhead run -c /etc/clusterhead/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGateway()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runGateway() error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := log.Init(&cfg.Log); err != nil {
		return err
	}
	logger := log.GetLogger()

	if cfg.Control.PIDFile != "" {
		pid := fmt.Sprintf("%d\n", os.Getpid())
		if err := os.WriteFile(cfg.Control.PIDFile, []byte(pid), 0o644); err != nil {
			return fmt.Errorf("write pid file: %w", err)
		}
		defer os.Remove(cfg.Control.PIDFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path)
		if err := srv.Start(); err != nil {
			return err
		}
		defer srv.Stop(5 * time.Second)
	}

	gw, err := gateway.New(cfg)
	if err != nil {
		return err
	}

	logger.Infof("clusterhead starting, device %s, profile %s", cfg.Link.Device, cfg.Link.Profile)
	if err := gw.Run(ctx); err != nil {
		logger.WithError(err).Error("gateway terminated")
		return err
	}
	return nil
}

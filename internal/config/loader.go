package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const rootKey = "cluster-head"

// configRoot wraps Config under the `cluster-head:` YAML root key.
type configRoot struct {
	ClusterHead Config `mapstructure:"cluster-head"`
}

// Load reads, unmarshals and validates the configuration file. The key
// replacer maps `cluster-head.link.baud` to the CLUSTER_HEAD_LINK_BAUD
// environment variable, so env vars override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.ClusterHead

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// setDefaults mirrors the constants of the original testbed deployment:
// 9600 baud, initial connect 100 tries x 10s, reconnect 250 tries x 30s.
func setDefaults(v *viper.Viper) {
	v.SetDefault(rootKey+".link.device", "/dev/ttyUSB0")
	v.SetDefault(rootKey+".link.baud", 9600)
	v.SetDefault(rootKey+".link.read_timeout", "1s")
	v.SetDefault(rootKey+".link.profile", "aggregated")
	v.SetDefault(rootKey+".link.session.initial.budget", 100)
	v.SetDefault(rootKey+".link.session.initial.delay", "10s")
	v.SetDefault(rootKey+".link.session.reconnect.budget", 250)
	v.SetDefault(rootKey+".link.session.reconnect.delay", "30s")

	v.SetDefault(rootKey+".store.port", 5432)
	v.SetDefault(rootKey+".store.sslmode", "disable")
	v.SetDefault(rootKey+".store.table", "sensordata")
	v.SetDefault(rootKey+".store.session.initial.budget", 100)
	v.SetDefault(rootKey+".store.session.initial.delay", "10s")
	v.SetDefault(rootKey+".store.session.reconnect.budget", 250)
	v.SetDefault(rootKey+".store.session.reconnect.delay", "30s")

	v.SetDefault(rootKey+".watchdog.timeout", "90m")

	v.SetDefault(rootKey+".classifier.window_size", 10)
	v.SetDefault(rootKey+".classifier.cell_cap", 5)
	v.SetDefault(rootKey+".classifier.sensitivity", 1.0)

	v.SetDefault(rootKey+".notifier.type", "log")
	v.SetDefault(rootKey+".notifier.smtp.port", 587)

	v.SetDefault(rootKey+".metrics.enabled", true)
	v.SetDefault(rootKey+".metrics.listen", ":9091")
	v.SetDefault(rootKey+".metrics.path", "/metrics")

	v.SetDefault(rootKey+".log.level", "info")
	v.SetDefault(rootKey+".log.pattern", "%time [%level] %field %msg\n")
	v.SetDefault(rootKey+".log.time", "2006-01-02 15:04:05")

	v.SetDefault(rootKey+".control.pid_file", "/var/run/clusterhead.pid")
}

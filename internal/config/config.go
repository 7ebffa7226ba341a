// Package config handles gateway configuration loading using viper.
package config

import (
	"fmt"
	"time"

	"github.com/wsn-testbed/clusterhead/internal/frame"
	"github.com/wsn-testbed/clusterhead/internal/log"
)

// Config is the top-level static configuration. Maps to the
// `cluster-head:` root key in YAML.
type Config struct {
	Link       LinkConfig       `mapstructure:"link"`
	Store      StoreConfig      `mapstructure:"store"`
	Watchdog   WatchdogConfig   `mapstructure:"watchdog"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Notifier   NotifierConfig   `mapstructure:"notifier"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Log        log.Config       `mapstructure:"log"`
	Control    ControlConfig    `mapstructure:"control"`
}

// LinkConfig configures the radio transport and its session.
type LinkConfig struct {
	Device string `mapstructure:"device"`
	Baud   int    `mapstructure:"baud"`
	// ReadTimeout is the serial port read timeout; an expired read is "no
	// frame available", not an error.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// Profile selects the wire format for the whole deployment.
	Profile string `mapstructure:"profile"`
	// ProfileOptions carries profile-specific settings (packed: types_file,
	// float_types, frac_bits).
	ProfileOptions map[string]interface{} `mapstructure:"profile_options"`
	Session        SessionConfig          `mapstructure:"session"`
}

// StoreConfig configures the PostgreSQL store and its session.
type StoreConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	Database string        `mapstructure:"database"`
	SSLMode  string        `mapstructure:"sslmode"`
	Table    string        `mapstructure:"table"`
	Session  SessionConfig `mapstructure:"session"`
}

// DSN renders the lib/pq connection string.
func (c StoreConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// SessionConfig carries the two retry policies of one connection session.
type SessionConfig struct {
	Initial   RetryConfig `mapstructure:"initial"`
	Reconnect RetryConfig `mapstructure:"reconnect"`
}

// RetryConfig bounds one connect episode.
type RetryConfig struct {
	Budget int           `mapstructure:"budget"`
	Delay  time.Duration `mapstructure:"delay"`
}

// WatchdogConfig configures per-node liveness supervision.
type WatchdogConfig struct {
	// Timeout is the idle time after which a node is declared silent.
	// 0 disables the watchdog.
	Timeout time.Duration `mapstructure:"timeout"`
}

// ClassifierConfig carries the dDCA parameters.
type ClassifierConfig struct {
	WindowSize  int     `mapstructure:"window_size"`
	CellCap     int     `mapstructure:"cell_cap"`
	Sensitivity float64 `mapstructure:"sensitivity"`
}

// NotifierConfig selects the liveness-lost notifier.
type NotifierConfig struct {
	// Type is "log" or "smtp".
	Type string     `mapstructure:"type"`
	SMTP SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig contains mail delivery settings for the smtp notifier.
type SMTPConfig struct {
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// ControlConfig contains process control settings.
type ControlConfig struct {
	PIDFile string `mapstructure:"pid_file"`
}

// ValidateAndApplyDefaults checks cross-field constraints that viper
// defaults cannot express and fills derived zero values.
func (c *Config) ValidateAndApplyDefaults() error {
	if c.Link.Device == "" {
		return fmt.Errorf("link.device is required")
	}
	if c.Link.Baud <= 0 {
		return fmt.Errorf("link.baud must be positive, got %d", c.Link.Baud)
	}
	if _, err := frame.SeqBits(c.Link.Profile); err != nil {
		return fmt.Errorf("link.profile: %q is not a registered wire profile (have %v)",
			c.Link.Profile, frame.Profiles())
	}
	if err := c.Link.Session.validate("link.session"); err != nil {
		return err
	}

	if c.Store.Host == "" {
		return fmt.Errorf("store.host is required")
	}
	if c.Store.Database == "" {
		return fmt.Errorf("store.database is required")
	}
	if err := c.Store.Session.validate("store.session"); err != nil {
		return err
	}

	if c.Watchdog.Timeout < 0 {
		return fmt.Errorf("watchdog.timeout must not be negative")
	}

	if c.Classifier.WindowSize <= 0 {
		return fmt.Errorf("classifier.window_size must be positive, got %d", c.Classifier.WindowSize)
	}
	if c.Classifier.CellCap <= 0 {
		return fmt.Errorf("classifier.cell_cap must be positive, got %d", c.Classifier.CellCap)
	}
	if c.Classifier.Sensitivity <= 0 {
		return fmt.Errorf("classifier.sensitivity must be positive, got %g", c.Classifier.Sensitivity)
	}

	switch c.Notifier.Type {
	case "log":
	case "smtp":
		if c.Notifier.SMTP.Host == "" {
			return fmt.Errorf("notifier.smtp.host is required for the smtp notifier")
		}
		if c.Notifier.SMTP.From == "" || len(c.Notifier.SMTP.To) == 0 {
			return fmt.Errorf("notifier.smtp.from and notifier.smtp.to are required for the smtp notifier")
		}
	default:
		return fmt.Errorf("notifier.type must be log or smtp, got %q", c.Notifier.Type)
	}

	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		return fmt.Errorf("metrics.listen is required when metrics are enabled")
	}
	return nil
}

func (s SessionConfig) validate(key string) error {
	if s.Initial.Budget <= 0 || s.Reconnect.Budget <= 0 {
		return fmt.Errorf("%s: retry budgets must be positive", key)
	}
	if s.Initial.Delay < 0 || s.Reconnect.Delay < 0 {
		return fmt.Errorf("%s: retry delays must not be negative", key)
	}
	return nil
}

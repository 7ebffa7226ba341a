package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
cluster-head:
  link:
    device: /dev/ttyUSB0
    profile: aggregated
  store:
    host: 10.0.0.20
    user: gateway
    password: secret
    database: wsn_testbed
`

func TestLoadMinimalAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 9600, cfg.Link.Baud)
	assert.Equal(t, "aggregated", cfg.Link.Profile)
	assert.Equal(t, 100, cfg.Link.Session.Initial.Budget)
	assert.Equal(t, 10*time.Second, cfg.Link.Session.Initial.Delay)
	assert.Equal(t, 250, cfg.Link.Session.Reconnect.Budget)
	assert.Equal(t, 30*time.Second, cfg.Link.Session.Reconnect.Delay)

	assert.Equal(t, 5432, cfg.Store.Port)
	assert.Equal(t, "sensordata", cfg.Store.Table)
	assert.Contains(t, cfg.Store.DSN(), "dbname=wsn_testbed")

	assert.Equal(t, 90*time.Minute, cfg.Watchdog.Timeout)
	assert.Equal(t, 10, cfg.Classifier.WindowSize)
	assert.Equal(t, 5, cfg.Classifier.CellCap)
	assert.Equal(t, "log", cfg.Notifier.Type)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFullOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
cluster-head:
  link:
    device: /dev/ttyAMA0
    baud: 115200
    profile: tuple-b
    session:
      initial: {budget: 3, delay: 1s}
      reconnect: {budget: 5, delay: 2s}
  store:
    host: db.local
    user: gateway
    password: secret
    database: wsn
    table: telemetry
  watchdog:
    timeout: 30m
  classifier:
    window_size: 16
    cell_cap: 8
    sensitivity: 0.5
  notifier:
    type: smtp
    smtp:
      host: mail.local
      from: gateway@wsn.local
      to: [operator@wsn.local]
  metrics:
    enabled: false
`))
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyAMA0", cfg.Link.Device)
	assert.Equal(t, 115200, cfg.Link.Baud)
	assert.Equal(t, "tuple-b", cfg.Link.Profile)
	assert.Equal(t, 3, cfg.Link.Session.Initial.Budget)
	assert.Equal(t, "telemetry", cfg.Store.Table)
	assert.Equal(t, 30*time.Minute, cfg.Watchdog.Timeout)
	assert.Equal(t, 16, cfg.Classifier.WindowSize)
	assert.Equal(t, "smtp", cfg.Notifier.Type)
	assert.Equal(t, 587, cfg.Notifier.SMTP.Port)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadRejectsUnknownProfile(t *testing.T) {
	_, err := Load(writeConfig(t, `
cluster-head:
  link:
    device: /dev/ttyUSB0
    profile: tuple-z
  store:
    host: db.local
    database: wsn
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile")
}

func TestLoadRejectsMissingStore(t *testing.T) {
	_, err := Load(writeConfig(t, `
cluster-head:
  link:
    device: /dev/ttyUSB0
    profile: aggregated
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.host")
}

func TestLoadRejectsSMTPWithoutRecipients(t *testing.T) {
	_, err := Load(writeConfig(t, `
cluster-head:
  link:
    device: /dev/ttyUSB0
    profile: aggregated
  store:
    host: db.local
    database: wsn
  notifier:
    type: smtp
    smtp:
      host: mail.local
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notifier.smtp")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

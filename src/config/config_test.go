package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"feed-monitor/src/helpers"
	"feed-monitor/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
name: test-monitor
log_level: DEBUG
feed:
  url: ws://127.0.0.1:9000/feed
  symbols: [AAPL, GOOG]
  retries: 5
aggregation:
  window_seconds: 30
server:
  enabled: true
  host: 0.0.0.0
  port: 8088
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestNewConfigMergesDefaults(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "test-monitor", cfg.Name)
	assert.Equal(t, []string{"AAPL", "GOOG"}, cfg.Feed.Symbols)
	assert.Equal(t, 5, cfg.Feed.MaxRetries)
	assert.Equal(t, 10, cfg.Feed.RequestTimeout, "default kept")
	assert.Equal(t, 30, cfg.Aggregation.WindowSeconds)
	assert.Equal(t, 60, cfg.Aggregation.ReportIntervalSeconds, "default kept")
	assert.Equal(t, 8088, cfg.Server.Port)
	assert.True(t, cfg.Sinks.Console)
}

func TestNewConfigWithoutFile(t *testing.T) {
	cfg, err := NewConfig("")
	require.NoError(t, err)
	assert.Equal(t, "feed-monitor", cfg.Name)
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestApplyEnv(t *testing.T) {
	cfg := &Config{MConfig: Defaults()}
	env := map[string]string{
		EnvFeedURL:        "wss://feed.example/stream",
		EnvSymbols:        " AAPL, ,MSFT ",
		EnvLogLevel:       "warning",
		EnvWindowSeconds:  "120",
		EnvReportInterval: "15",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "wss://feed.example/stream", cfg.Feed.URL)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Feed.Symbols)
	assert.Equal(t, "WARNING", cfg.LogLevel)
	assert.Equal(t, 120, cfg.Aggregation.WindowSeconds)
	assert.Equal(t, 15, cfg.Aggregation.ReportIntervalSeconds)

	env[EnvWindowSeconds] = "soon"
	err := cfg.ApplyEnv(lookup)
	var configErr *helpers.ConfigurationError
	require.True(t, errors.As(err, &configErr))
	assert.ErrorContains(t, err, EnvWindowSeconds+" must be an integer")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *models.MConfig)
		want   string
	}{
		{"http feed url", func(c *models.MConfig) { c.Feed.URL = "http://x" }, "feed url"},
		{"zero window", func(c *models.MConfig) { c.Aggregation.WindowSeconds = 0 }, "window seconds"},
		{"zero interval", func(c *models.MConfig) { c.Aggregation.ReportIntervalSeconds = 0 }, "report interval"},
		{"bad port", func(c *models.MConfig) { c.Server.Port = 80 }, "invalid server port"},
		{"kafka without brokers", func(c *models.MConfig) { c.Sinks.Kafka.Enabled = true }, "kafka sink"},
		{"empty symbol", func(c *models.MConfig) { c.Feed.Symbols = []string{"AAPL", " "} }, "symbol 1"},
		{"too many retries", func(c *models.MConfig) { c.Feed.MaxRetries = MaxRetriesLimit + 1 }, "max retries cannot exceed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{MConfig: Defaults()}
			tt.mutate(cfg.MConfig)
			err := cfg.Validate()
			assert.ErrorContains(t, err, tt.want)

			var configErr *helpers.ConfigurationError
			assert.True(t, errors.As(err, &configErr))
		})
	}

	disabled := &Config{MConfig: Defaults()}
	disabled.Grpc.Port = 0
	assert.NoError(t, disabled.Validate(), "disabled servers are not checked")
}

func TestNewConfigValidationErrorIsTyped(t *testing.T) {
	_, err := NewConfig(writeConfig(t, "aggregation:\n  window_seconds: 0\n"))

	var configErr *helpers.ConfigurationError
	require.True(t, errors.As(err, &configErr))
	assert.ErrorContains(t, err, "config validation failed: window seconds")
}

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := NewConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, cfg.Save(out))

	again, err := NewConfig(out)
	require.NoError(t, err)
	assert.Equal(t, cfg.Name, again.Name)
	assert.Equal(t, cfg.Feed.Symbols, again.Feed.Symbols)
	assert.Equal(t, cfg.Aggregation, again.Aggregation)
	assert.Equal(t, cfg.Server, again.Server)
	assert.Equal(t, cfg.Sinks.Redis, again.Sinks.Redis)
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"feed-monitor/src/helpers"
	"feed-monitor/src/models"

	"gopkg.in/yaml.v3"
)

// Environment overrides, applied after the YAML file
const (
	EnvFeedURL        = "FEED_MONITOR_URL"
	EnvSymbols        = "FEED_MONITOR_SYMBOLS"
	EnvLogLevel       = "FEED_MONITOR_LOG_LEVEL"
	EnvWindowSeconds  = "FEED_MONITOR_WINDOW_SECONDS"
	EnvReportInterval = "FEED_MONITOR_REPORT_INTERVAL_SECONDS"
)

// MaxRetriesLimit bounds feed.retries
const MaxRetriesLimit = 100

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// Defaults returns a configuration that runs without a file
func Defaults() *models.MConfig {
	return &models.MConfig{
		Name:     "feed-monitor",
		LogLevel: "INFO",
		Feed: models.MFeedConfig{
			Name:             "pricing-feed",
			URL:              "wss://streamer.finance.yahoo.com/",
			Symbols:          []string{},
			RequestTimeout:   10,
			MaxRetries:       3,
			PingIntervalSecs: 30,
		},
		Aggregation: models.MAggregationConfig{
			WindowSeconds:         60,
			ReportIntervalSeconds: 60,
		},
		Server: models.MServerConfig{Enabled: true, Host: "127.0.0.1", Port: 8080},
		Grpc:   models.MServerConfig{Enabled: false, Host: "127.0.0.1", Port: 50051},
		Sinks: models.MSinksConfig{
			Console: true,
			Redis:   models.MRedisSinkConfig{Addr: "127.0.0.1:6379", Channel: "feed-monitor.rates"},
			Kafka:   models.MKafkaSinkConfig{Topic: "feed-monitor.rates"},
		},
	}
}

// -----------------------------------------------------------------------------

// NewConfig loads defaults, the YAML file (when configPath is set) and env overrides
func NewConfig(configPath string) (*Config, error) {
	modelConfig := Defaults()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, modelConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
		}
	}

	config := &Config{MConfig: modelConfig}
	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// ApplyEnv overrides fields from the environment
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvFeedURL); ok && v != "" {
		c.Feed.URL = v
	}
	if v, ok := lookup(EnvSymbols); ok {
		c.Feed.Symbols = ParseSymbols(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = strings.ToUpper(v)
	}
	if v, ok := lookup(EnvWindowSeconds); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return helpers.NewConfigurationError(EnvWindowSeconds+" must be an integer", err)
		}
		c.Aggregation.WindowSeconds = n
	}
	if v, ok := lookup(EnvReportInterval); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return helpers.NewConfigurationError(EnvReportInterval+" must be an integer", err)
		}
		c.Aggregation.ReportIntervalSeconds = n
	}
	return nil
}

// -----------------------------------------------------------------------------

// ParseSymbols splits a comma separated list, dropping blanks
func ParseSymbols(list string) []string {
	symbols := []string{}
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return invalid("application name cannot be empty")
	}

	// Feed
	u, err := url.Parse(c.Feed.URL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return invalid("feed url must be a ws:// or wss:// url, got %q", c.Feed.URL)
	}
	if c.Feed.RequestTimeout <= 0 {
		return invalid("request timeout must be greater than 0")
	}
	if c.Feed.MaxRetries < 0 {
		return invalid("max retries cannot be negative")
	}
	if c.Feed.MaxRetries > MaxRetriesLimit {
		return invalid("max retries cannot exceed %d, got %d", MaxRetriesLimit, c.Feed.MaxRetries)
	}
	if c.Feed.PingIntervalSecs < 0 {
		return invalid("ping interval cannot be negative")
	}
	for i, s := range c.Feed.Symbols {
		if strings.TrimSpace(s) == "" {
			return invalid("symbol %d cannot be empty", i)
		}
	}

	// Aggregation
	if c.Aggregation.WindowSeconds <= 0 {
		return invalid("window seconds must be greater than 0")
	}
	if c.Aggregation.ReportIntervalSeconds <= 0 {
		return invalid("report interval must be greater than 0")
	}

	// Servers
	if err := validateServer("server", c.Server); err != nil {
		return err
	}
	if err := validateServer("grpc", c.Grpc); err != nil {
		return err
	}

	// Sinks
	if c.Sinks.Redis.Enabled && (c.Sinks.Redis.Addr == "" || c.Sinks.Redis.Channel == "") {
		return invalid("redis sink needs addr and channel")
	}
	if c.Sinks.Kafka.Enabled && (len(c.Sinks.Kafka.Brokers) == 0 || c.Sinks.Kafka.Topic == "") {
		return invalid("kafka sink needs brokers and topic")
	}

	return nil
}

func validateServer(section string, s models.MServerConfig) error {
	if !s.Enabled {
		return nil
	}
	if s.Host == "" {
		return invalid("%s host cannot be empty", section)
	}
	if s.Port <= 1024 || s.Port > 65535 {
		return invalid("invalid %s port number: %d (must be between 1025 and 65535)", section, s.Port)
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return helpers.NewConfigurationError(fmt.Sprintf(format, args...), nil)
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}

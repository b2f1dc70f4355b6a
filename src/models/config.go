package models

// MConfig Structure
type MConfig struct {
	Name        string             `yaml:"name"`
	LogLevel    string             `yaml:"log_level"`
	Feed        MFeedConfig        `yaml:"feed"`
	Aggregation MAggregationConfig `yaml:"aggregation"`
	Server      MServerConfig      `yaml:"server"`
	Grpc        MServerConfig      `yaml:"grpc"`
	Sinks       MSinksConfig       `yaml:"sinks"`
}

type MFeedConfig struct {
	Name               string   `yaml:"name"`
	URL                string   `yaml:"url"`
	Symbols            []string `yaml:"symbols"`
	RequestTimeout     int      `yaml:"timeout"`
	MaxRetries         int      `yaml:"retries"`
	PingIntervalSecs   int      `yaml:"ping_interval_seconds"`
	Proxies            []string `yaml:"proxies"`
	UserAgent          string   `yaml:"user_agent"`
	InsecureSkipVerify bool     `yaml:"insecure_skip_verify"`
}

type MAggregationConfig struct {
	WindowSeconds         int `yaml:"window_seconds"`
	ReportIntervalSeconds int `yaml:"report_interval_seconds"`
}

type MServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

type MSinksConfig struct {
	Console bool             `yaml:"console"`
	Redis   MRedisSinkConfig `yaml:"redis"`
	Kafka   MKafkaSinkConfig `yaml:"kafka"`
}

type MRedisSinkConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"`
}

type MKafkaSinkConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

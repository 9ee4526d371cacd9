package config

import "time"

// Config is the root configuration for a coinboard instance.
type Config struct {
	Provider ProviderConfig `yaml:"provider"`
	Database DBConfig       `yaml:"database"`
	Poller   PollerConfig   `yaml:"poller"`
	Server   ServerConfig   `yaml:"server"`
	Query    QueryConfig    `yaml:"query"`
}

// ProviderConfig holds CoinMarketCap API settings.
type ProviderConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"` // For the X-CMC_PRO_API_KEY header
	Convert string        `yaml:"convert"` // Quote currency (e.g. "USD")
	Limit   int           `yaml:"limit"`   // Ranked window size per fetch
	Timeout time.Duration `yaml:"timeout"` // Per-fetch deadline
}

// DBConfig holds the PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// PollerConfig holds ingestion scheduler settings.
type PollerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// ServerConfig holds the HTTP read API settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// QueryConfig holds read-path settings.
type QueryConfig struct {
	TopN          int `yaml:"top_n"`          // Coins returned by the ranked list
	HistoryWindow int `yaml:"history_window"` // Recent points per coin in the ranked list
}

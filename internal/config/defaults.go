package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL       = "https://pro-api.coinmarketcap.com"
	DefaultConvert       = "USD"
	DefaultLimit         = 30
	DefaultFetchTimeout  = 10 * time.Second
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 10
	DefaultMinConns      = 2
	DefaultPollInterval  = 70 * time.Second
	DefaultServerPort    = 8080
	DefaultTopN          = 30
	DefaultHistoryWindow = 60
)

func (c *Config) applyDefaults() {
	// Provider defaults
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = DefaultBaseURL
	}
	if c.Provider.Convert == "" {
		c.Provider.Convert = DefaultConvert
	}
	if c.Provider.Limit == 0 {
		c.Provider.Limit = DefaultLimit
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = DefaultFetchTimeout
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}

	// Query defaults
	if c.Query.TopN == 0 {
		c.Query.TopN = DefaultTopN
	}
	if c.Query.HistoryWindow == 0 {
		c.Query.HistoryWindow = DefaultHistoryWindow
	}
}

package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAPITimeout   = 30 * time.Second
	DefaultMaxRetries   = 3
	DefaultRetryDelay   = 1 * time.Second
	DefaultDBPort       = 5432
	DefaultDBSSLMode    = "prefer"
	DefaultMaxConns     = 10
	DefaultMinConns     = 2
	DefaultRefreshLimit = 2500
	DefaultBatchSize    = 500
)

func (c *PricerConfig) applyDefaults() {
	// Client defaults
	if c.Client.Timeout == 0 {
		c.Client.Timeout = DefaultAPITimeout
	}
	if c.Client.MaxRetries == 0 {
		c.Client.MaxRetries = DefaultMaxRetries
	}
	if c.Client.RetryDelay == 0 {
		c.Client.RetryDelay = DefaultRetryDelay
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

	// Refresh defaults
	if c.Refresh.Limit == 0 {
		c.Refresh.Limit = DefaultRefreshLimit
	}

	// Aggregate defaults
	if c.Aggregate.BatchSize == 0 {
		c.Aggregate.BatchSize = DefaultBatchSize
	}
}

package config

import "time"

// PricerConfig is the root configuration for a pricer run.
type PricerConfig struct {
	Database  DBConfig        `yaml:"database"`
	Client    ClientConfig    `yaml:"client"`
	Sources   SourcesConfig   `yaml:"sources"`
	Refresh   RefreshConfig   `yaml:"refresh"`
	Aggregate AggregateConfig `yaml:"aggregate"`
}

// DBConfig holds the database connection.
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

// ClientConfig holds settings shared by all marketplace API clients.
type ClientConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// SourcesConfig holds per-marketplace credentials. A source with no
// credentials configured is skipped during refresh.
type SourcesConfig struct {
	BrickLink    BrickLinkConfig    `yaml:"bricklink"`
	BrickEconomy BrickEconomyConfig `yaml:"brickeconomy"`
	BrickOwl     BrickOwlConfig     `yaml:"brickowl"`
}

// BrickLinkConfig holds the OAuth1 credential set.
type BrickLinkConfig struct {
	ConsumerKey    string `yaml:"consumer_key"`
	ConsumerSecret string `yaml:"consumer_secret"`
	Token          string `yaml:"token"`
	TokenSecret    string `yaml:"token_secret"`
}

// Enabled reports whether the credential set is complete enough to sign
// requests.
func (c BrickLinkConfig) Enabled() bool {
	return c.ConsumerKey != "" && c.Token != ""
}

// BrickEconomyConfig holds the bearer token.
type BrickEconomyConfig struct {
	APIKey string `yaml:"api_key"`
}

// Enabled reports whether an API key is configured.
func (c BrickEconomyConfig) Enabled() bool { return c.APIKey != "" }

// BrickOwlConfig holds the API key.
type BrickOwlConfig struct {
	APIKey string `yaml:"api_key"`
}

// Enabled reports whether an API key is configured.
func (c BrickOwlConfig) Enabled() bool { return c.APIKey != "" }

// RefreshConfig holds price refresh settings.
type RefreshConfig struct {
	Limit int `yaml:"limit"` // Max sets fetched per run
}

// AggregateConfig holds aggregation orchestrator settings.
type AggregateConfig struct {
	BatchSize int `yaml:"batch_size"`
}

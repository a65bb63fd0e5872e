package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *PricerConfig) Validate() error {
	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if c.Client.MaxRetries < 0 {
		return errors.New("client.max_retries must be >= 0")
	}
	if c.Client.Timeout <= 0 {
		return errors.New("client.timeout must be positive")
	}

	if c.Refresh.Limit < 1 {
		return errors.New("refresh.limit must be >= 1")
	}
	if c.Aggregate.BatchSize < 1 {
		return errors.New("aggregate.batch_size must be >= 1")
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

package connector

import (
	"errors"
	"fmt"
	"time"
)

// Config represents database connection configuration.
type Config struct {
	Driver         string            `json:"driver" yaml:"driver" mapstructure:"driver"`
	Host           string            `json:"host" yaml:"host" mapstructure:"host"`
	Port           int               `json:"port" yaml:"port" mapstructure:"port"`
	Database       string            `json:"database" yaml:"database" mapstructure:"database"`
	Username       string            `json:"username" yaml:"username" mapstructure:"username"`
	Password       string            `json:"password" yaml:"password" mapstructure:"password"`
	SSLMode        string            `json:"ssl_mode" yaml:"ssl_mode" mapstructure:"ssl_mode"`
	Params         map[string]string `json:"params" yaml:"params" mapstructure:"params"`
	Pool           PoolConfig        `json:"pool" yaml:"pool" mapstructure:"pool"`
	ConnectTimeout time.Duration     `json:"connect_timeout" yaml:"connect_timeout" mapstructure:"connect_timeout"`
	Retry          *RetryConfig      `json:"retry,omitempty" yaml:"retry,omitempty" mapstructure:"retry"`
	// Trace logs every pgx query at debug level instead of errors only.
	Trace bool `json:"trace" yaml:"trace" mapstructure:"trace"`
	// StatementCache is the number of prepared statements kept per
	// database/sql pool. Zero disables the cache.
	StatementCache int `json:"statement_cache" yaml:"statement_cache" mapstructure:"statement_cache"`
}

// PoolConfig defines connection pool settings. MinOpen is the number of
// connections kept open eagerly; only the pgx provider supports it.
type PoolConfig struct {
	MaxOpen         int           `json:"max_open" yaml:"max_open" mapstructure:"max_open"`
	MinOpen         int           `json:"min_open" yaml:"min_open" mapstructure:"min_open"`
	MaxIdle         int           `json:"max_idle" yaml:"max_idle" mapstructure:"max_idle"`
	MaxLifetime     time.Duration `json:"max_lifetime" yaml:"max_lifetime" mapstructure:"max_lifetime"`
	MaxIdleTime     time.Duration `json:"max_idle_time" yaml:"max_idle_time" mapstructure:"max_idle_time"`
	HealthCheckFreq time.Duration `json:"health_check_freq" yaml:"health_check_freq" mapstructure:"health_check_freq"`
}

// RetryConfig defines connection retry behavior. Delays grow
// exponentially from BaseDelay and are capped at MaxDelay.
type RetryConfig struct {
	MaxRetries int           `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay" yaml:"base_delay" mapstructure:"base_delay"`
	MaxDelay   time.Duration `json:"max_delay" yaml:"max_delay" mapstructure:"max_delay"`
}

var ErrInvalidConfig = errors.New("connector: invalid config")

// Validate checks the fields every provider relies on.
func (c Config) Validate() error {
	if c.Driver == "" {
		return fmt.Errorf("%w: driver is required", ErrInvalidConfig)
	}
	if c.isFileBased() {
		if c.Database == "" {
			return fmt.Errorf("%w: database path is required for %s", ErrInvalidConfig, c.Driver)
		}
	} else {
		if c.Host == "" {
			return fmt.Errorf("%w: host is required", ErrInvalidConfig)
		}
		if c.Port < 0 || c.Port > 65535 {
			return fmt.Errorf("%w: invalid port %d", ErrInvalidConfig, c.Port)
		}
	}
	if c.Pool.MaxOpen < 0 || c.Pool.MaxIdle < 0 || c.Pool.MinOpen < 0 {
		return fmt.Errorf("%w: pool sizes must not be negative", ErrInvalidConfig)
	}
	if c.Pool.MaxOpen > 0 && c.Pool.MinOpen > c.Pool.MaxOpen {
		return fmt.Errorf("%w: min_open %d exceeds max_open %d", ErrInvalidConfig, c.Pool.MinOpen, c.Pool.MaxOpen)
	}
	if c.Retry != nil && c.Retry.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must not be negative", ErrInvalidConfig)
	}
	if c.StatementCache < 0 {
		return fmt.Errorf("%w: statement_cache must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c Config) isFileBased() bool {
	return c.Driver == "sqlite" || c.Driver == "sqlite3"
}

// withDefaults fills in pool settings left at zero.
func (c Config) withDefaults() Config {
	if c.Pool.MaxOpen == 0 {
		c.Pool.MaxOpen = 10
	}
	if c.Pool.MaxIdle == 0 {
		c.Pool.MaxIdle = min(5, c.Pool.MaxOpen)
	}
	if c.Pool.MaxLifetime == 0 {
		c.Pool.MaxLifetime = time.Hour
	}
	if c.Pool.MaxIdleTime == 0 {
		c.Pool.MaxIdleTime = 30 * time.Minute
	}
	return c
}

// Package config loads the layman CLI configuration from a YAML file and
// LAYMAN_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/Konsultn-Engineering/layman/connector"
)

const (
	envPrefix  = "LAYMAN"
	configType = "yaml"
)

type Config struct {
	Database connector.Config `mapstructure:"database"`
	Logging  LoggingConfig    `mapstructure:"logging"`
	Metrics  MetricsConfig    `mapstructure:"metrics"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// MetricsConfig toggles the Prometheus collectors.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// envKeys are bound explicitly so that environment variables apply even
// when the file leaves the key out.
var envKeys = []string{
	"database.driver",
	"database.host",
	"database.port",
	"database.database",
	"database.username",
	"database.password",
	"database.ssl_mode",
	"database.connect_timeout",
	"database.trace",
	"database.statement_cache",
	"database.pool.max_open",
	"database.pool.min_open",
	"database.pool.max_idle",
	"logging.level",
	"metrics.enabled",
}

// Load reads path, if not empty, and applies LAYMAN_ overrides such as
// LAYMAN_DATABASE_PASSWORD.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType(configType)
	v.SetDefault("logging.level", "info")
	v.SetDefault("database.connect_timeout", "10s")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Database.ConnectTimeout == 0 {
		cfg.Database.ConnectTimeout = 10 * time.Second
	}
}

func validate(cfg *Config) error {
	if _, err := zapcore.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("config logging.level: %w", err)
	}
	if cfg.Database.Driver == "" {
		return nil
	}
	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("config database: %w", err)
	}
	return nil
}

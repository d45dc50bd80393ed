package connector

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
)

var ErrNoProvider = errors.New("connector: no provider for driver")

// Providers maps driver names to the provider that opens them. There is no
// process-wide registry; callers pass the map they want.
type Providers map[string]Provider

// DefaultProviders returns every built-in provider.
func DefaultProviders() Providers {
	return Providers{
		"pgx":      PgxProvider{},
		"postgres": PQProvider{},
		"mysql":    MySQLProvider{},
		"tidb":     MySQLProvider{TiDB: true},
		"sqlite":   SQLiteProvider{},
		"sqlite3":  SQLiteProvider{},
	}
}

// Names returns the registered driver names, sorted.
func (p Providers) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Connect validates cfg, looks up the provider for cfg.Driver and opens a
// connection, retrying as cfg.Retry allows.
func Connect(ctx context.Context, providers Providers, cfg Config, s Settings) (Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	provider, ok := providers[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("%w %q (have %s)", ErrNoProvider, cfg.Driver, strings.Join(providers.Names(), ", "))
	}

	cfg = cfg.withDefaults()
	logger := s.logger().With(zap.String("driver", cfg.Driver))

	conn, err := connectWithRetry(ctx, cfg.Retry, logger, func(ctx context.Context) (Connection, error) {
		if cfg.ConnectTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
			defer cancel()
		}
		return provider.Connect(ctx, cfg, s)
	})
	if err != nil {
		return nil, fmt.Errorf("connector: connect %s: %w", cfg.Driver, err)
	}
	logger.Info("database connected", zap.String("dialect", conn.Dialect().Name()))
	return conn, nil
}

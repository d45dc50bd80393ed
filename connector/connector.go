package connector

import (
	"context"

	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/layman/database"
	"github.com/Konsultn-Engineering/layman/dialect"
)

// Connection is an open database pool together with its dialect.
type Connection interface {
	Executor() database.Executor
	Dialect() dialect.Dialect
	Health(ctx context.Context) error
	Stats() ConnectionStats
	Close() error
}

// Provider opens connections for one driver.
type Provider interface {
	Connect(ctx context.Context, cfg Config, s Settings) (Connection, error)
	Dialect() dialect.Dialect
}

// Settings carries what providers pass on to the executor they build.
type Settings struct {
	Logger   *zap.Logger
	Database []database.Option
}

func (s Settings) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s Settings) databaseOptions(cfg Config) []database.Option {
	opts := append([]database.Option{database.WithLogger(s.logger())}, s.Database...)
	if cfg.StatementCache > 0 {
		opts = append(opts, database.WithStatementCache(cfg.StatementCache))
	}
	return opts
}

package connector

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/layman/database"
	"github.com/Konsultn-Engineering/layman/dialect"
)

// PostgresDSN builds a postgres:// URL understood by both pgx and lib/pq.
func PostgresDSN(cfg Config) string {
	return NewDSNBuilder("postgres").
		Auth(cfg.Username, cfg.Password).
		Host(cfg.Host, cfg.Port).
		Database(cfg.Database).
		Param("sslmode", cfg.SSLMode).
		Params(cfg.Params).
		Build()
}

// pgxPoolConfig maps cfg onto a pool config. MaxIdle has no pgxpool
// counterpart; idle connections are bounded by MaxIdleTime instead.
func pgxPoolConfig(cfg Config, s Settings) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(PostgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.Pool.MaxOpen)
	poolCfg.MinConns = int32(cfg.Pool.MinOpen)
	poolCfg.MaxConnLifetime = cfg.Pool.MaxLifetime
	poolCfg.MaxConnIdleTime = cfg.Pool.MaxIdleTime
	if cfg.Pool.HealthCheckFreq > 0 {
		poolCfg.HealthCheckPeriod = cfg.Pool.HealthCheckFreq
	}
	poolCfg.ConnConfig.Tracer = newTracer(s.logger(), cfg.Trace)
	return poolCfg, nil
}

// PgxProvider opens a pgxpool.Pool.
type PgxProvider struct{}

func (PgxProvider) Dialect() dialect.Dialect {
	return dialect.NewPostgresDialect()
}

func (p PgxProvider) Connect(ctx context.Context, cfg Config, s Settings) (Connection, error) {
	poolCfg, err := pgxPoolConfig(cfg, s)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping pgx: %w", err)
	}

	return &pgxConnection{
		pool:    pool,
		exec:    database.NewPgxDatabase(pool, s.databaseOptions(cfg)...),
		dialect: p.Dialect(),
	}, nil
}

// newTracer forwards pgx query logs to zap.
func newTracer(logger *zap.Logger, trace bool) *tracelog.TraceLog {
	level := tracelog.LogLevelError
	if trace {
		level = tracelog.LogLevelDebug
	}
	logger = logger.Named("pgx")
	return &tracelog.TraceLog{
		Logger: tracelog.LoggerFunc(func(_ context.Context, lvl tracelog.LogLevel, msg string, data map[string]any) {
			fields := make([]zap.Field, 0, len(data))
			for k, v := range data {
				fields = append(fields, zap.Any(k, v))
			}
			switch lvl {
			case tracelog.LogLevelTrace, tracelog.LogLevelDebug:
				logger.Debug(msg, fields...)
			case tracelog.LogLevelInfo:
				logger.Info(msg, fields...)
			case tracelog.LogLevelWarn:
				logger.Warn(msg, fields...)
			default:
				logger.Error(msg, fields...)
			}
		}),
		LogLevel: level,
	}
}

type pgxConnection struct {
	pool    *pgxpool.Pool
	exec    *database.PgxDatabase
	dialect dialect.Dialect
}

func (c *pgxConnection) Executor() database.Executor {
	return c.exec
}

func (c *pgxConnection) Dialect() dialect.Dialect {
	return c.dialect
}

func (c *pgxConnection) Health(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

func (c *pgxConnection) Stats() ConnectionStats {
	return statsFromPool(c.pool.Stat())
}

func (c *pgxConnection) Close() error {
	c.pool.Close()
	return nil
}

// PQProvider opens a database/sql pool on lib/pq.
type PQProvider struct{}

func (PQProvider) Dialect() dialect.Dialect {
	return dialect.NewPostgresDialect()
}

func (p PQProvider) Connect(ctx context.Context, cfg Config, s Settings) (Connection, error) {
	return openSQL(ctx, "postgres", PostgresDSN(cfg), p.Dialect(), cfg, s)
}

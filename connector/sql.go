package connector

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Konsultn-Engineering/layman/database"
	"github.com/Konsultn-Engineering/layman/dialect"
)

// sqlConnection is a database/sql pool opened by the pq, mysql or sqlite
// providers.
type sqlConnection struct {
	db      *sql.DB
	exec    *database.SQLDatabase
	dialect dialect.Dialect
}

func openSQL(ctx context.Context, driverName, dsn string, d dialect.Dialect, cfg Config, s Settings) (Connection, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}

	db.SetMaxOpenConns(cfg.Pool.MaxOpen)
	db.SetMaxIdleConns(cfg.Pool.MaxIdle)
	db.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	db.SetConnMaxIdleTime(cfg.Pool.MaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		return nil, multierr.Append(fmt.Errorf("ping %s: %w", driverName, err), db.Close())
	}

	exec, err := database.NewSQLDatabase(db, driverName, s.databaseOptions(cfg)...)
	if err != nil {
		return nil, multierr.Append(err, db.Close())
	}
	return &sqlConnection{db: db, exec: exec, dialect: d}, nil
}

func (c *sqlConnection) Executor() database.Executor {
	return c.exec
}

func (c *sqlConnection) Dialect() dialect.Dialect {
	return c.dialect
}

// DB returns the underlying *sql.DB instance.
func (c *sqlConnection) DB() *sql.DB {
	return c.db
}

func (c *sqlConnection) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *sqlConnection) Stats() ConnectionStats {
	return statsFromDB(c.db.Stats())
}

// Close closes cached statements and the pool.
func (c *sqlConnection) Close() error {
	return c.exec.Close()
}

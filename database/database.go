package database

import (
	"context"

	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/layman/metrics"
)

// Executor runs rendered statements. SQL text and arguments are passed
// through to the driver untouched.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) Row
	PrepareContext(ctx context.Context, query string) (Stmt, error)
	PingContext(ctx context.Context) error
	Close() error
}

type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
	Err() error
	Close() error
}

type Row interface {
	Scan(dest ...any) error
}

// Stmt is a prepared statement bound to its executor.
type Stmt interface {
	ExecContext(ctx context.Context, args ...any) (Result, error)
	QueryContext(ctx context.Context, args ...any) (Rows, error)
	Close() error
}

type options struct {
	logger    *zap.Logger
	metrics   *metrics.Metrics
	cacheSize int
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithStatementCache keeps up to size prepared statements. Only used by
// SQLDatabase; pgx caches statements per connection on its own.
func WithStatementCache(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

package database

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/multierr"

	"github.com/Konsultn-Engineering/layman/cache"
)

// SQLDatabase implements Executor for *sql.DB. With a statement cache
// configured, Exec and Query run through cached prepared statements.
type SQLDatabase struct {
	db    *sql.DB
	stmts *cache.StatementCache
	obs   stmtObserver
}

// NewSQLDatabase wraps db. driver names the database/sql driver in logs
// and metrics.
func NewSQLDatabase(db *sql.DB, driver string, opts ...Option) (*SQLDatabase, error) {
	o := buildOptions(opts)
	s := &SQLDatabase{db: db, obs: newObserver(driver, o)}
	if o.cacheSize > 0 {
		stmts, err := cache.NewStatementCache(o.cacheSize)
		if err != nil {
			return nil, err
		}
		s.stmts = stmts
	}
	return s, nil
}

// DB returns the underlying pool.
func (s *SQLDatabase) DB() *sql.DB {
	return s.db
}

func (s *SQLDatabase) ExecContext(ctx context.Context, query string, args ...any) (Result, error) {
	done := s.obs.begin("exec", query, len(args))
	var (
		res sql.Result
		err error
	)
	if lease, lerr := s.lease(ctx, query); lerr != nil {
		err = lerr
	} else if lease != nil {
		res, err = lease.Stmt().ExecContext(ctx, args...)
		err = multierr.Append(err, s.release(lease, err))
	} else {
		res, err = s.db.ExecContext(ctx, query, args...)
	}
	done(err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *SQLDatabase) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	done := s.obs.begin("query", query, len(args))
	var (
		rows *sql.Rows
		err  error
	)
	if lease, lerr := s.lease(ctx, query); lerr != nil {
		err = lerr
	} else if lease != nil {
		// Open rows keep the statement alive after it is closed.
		rows, err = lease.Stmt().QueryContext(ctx, args...)
		err = multierr.Append(err, s.release(lease, err))
	} else {
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	done(err)
	if err != nil {
		if rows != nil {
			_ = rows.Close()
		}
		return nil, err
	}
	return rows, nil
}

func (s *SQLDatabase) QueryRowContext(ctx context.Context, query string, args ...any) Row {
	done := s.obs.begin("query_row", query, len(args))
	return &observedRow{
		row:  s.db.QueryRowContext(ctx, query, args...),
		done: done,
		empty: func(err error) bool {
			return errors.Is(err, sql.ErrNoRows)
		},
	}
}

// PrepareContext prepares a statement owned by the caller. It bypasses the
// statement cache, so Close always closes it.
func (s *SQLDatabase) PrepareContext(ctx context.Context, query string) (Stmt, error) {
	done := s.obs.begin("prepare", query, 0)
	stmt, err := s.db.PrepareContext(ctx, query)
	done(err)
	if err != nil {
		return nil, err
	}
	return &sqlStmt{stmt: stmt, query: query, obs: s.obs}, nil
}

func (s *SQLDatabase) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes cached statements and then the pool.
func (s *SQLDatabase) Close() error {
	var err error
	if s.stmts != nil {
		err = multierr.Append(err, s.stmts.Close())
	}
	return multierr.Append(err, s.db.Close())
}

// lease borrows the cached statement for query, or returns nil without a
// cache.
func (s *SQLDatabase) lease(ctx context.Context, query string) (*cache.Lease, error) {
	if s.stmts == nil {
		return nil, nil
	}
	lease, err := s.stmts.Acquire(ctx, s.db, query)
	if err != nil {
		return nil, err
	}
	s.obs.metrics.StatementCacheLookup(!lease.Fresh())
	return lease, nil
}

// release returns lease. A statement whose first run failed is dropped so
// the next call prepares it again.
func (s *SQLDatabase) release(lease *cache.Lease, runErr error) error {
	if runErr != nil && lease.Fresh() {
		return lease.Discard()
	}
	return lease.Release()
}

type sqlStmt struct {
	stmt  *sql.Stmt
	query string
	obs   stmtObserver
}

func (s *sqlStmt) ExecContext(ctx context.Context, args ...any) (Result, error) {
	done := s.obs.begin("exec", s.query, len(args))
	res, err := s.stmt.ExecContext(ctx, args...)
	done(err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *sqlStmt) QueryContext(ctx context.Context, args ...any) (Rows, error) {
	done := s.obs.begin("query", s.query, len(args))
	rows, err := s.stmt.QueryContext(ctx, args...)
	done(err)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *sqlStmt) Close() error {
	return s.stmt.Close()
}

var _ Executor = (*SQLDatabase)(nil)

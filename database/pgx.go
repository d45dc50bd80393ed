package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrLastInsertID = errors.New("database: LastInsertId is not supported by PostgreSQL, use RETURNING")

// Pool is the part of *pgxpool.Pool the executor needs.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PgxDatabase implements Executor for a pgx pool.
type PgxDatabase struct {
	pool Pool
	obs  stmtObserver
}

func NewPgxDatabase(pool Pool, opts ...Option) *PgxDatabase {
	return &PgxDatabase{pool: pool, obs: newObserver("pgx", buildOptions(opts))}
}

func (p *PgxDatabase) ExecContext(ctx context.Context, query string, args ...any) (Result, error) {
	done := p.obs.begin("exec", query, len(args))
	tag, err := p.pool.Exec(ctx, query, args...)
	done(err)
	if err != nil {
		return nil, err
	}
	return &PgxResult{cmdTag: tag}, nil
}

func (p *PgxDatabase) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	done := p.obs.begin("query", query, len(args))
	rows, err := p.pool.Query(ctx, query, args...)
	done(err)
	if err != nil {
		return nil, err
	}
	return &PgxRows{rows: rows}, nil
}

func (p *PgxDatabase) QueryRowContext(ctx context.Context, query string, args ...any) Row {
	done := p.obs.begin("query_row", query, len(args))
	return &observedRow{
		row:  p.pool.QueryRow(ctx, query, args...),
		done: done,
		empty: func(err error) bool {
			return errors.Is(err, pgx.ErrNoRows)
		},
	}
}

// PrepareContext returns a statement handle that runs query on the pool.
// pgx prepares and caches statements per connection by itself.
func (p *PgxDatabase) PrepareContext(_ context.Context, query string) (Stmt, error) {
	return &pgxStmt{db: p, query: query}, nil
}

func (p *PgxDatabase) PingContext(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PgxDatabase) Close() error {
	p.pool.Close()
	return nil
}

type pgxStmt struct {
	db    *PgxDatabase
	query string
}

func (s *pgxStmt) ExecContext(ctx context.Context, args ...any) (Result, error) {
	return s.db.ExecContext(ctx, s.query, args...)
}

func (s *pgxStmt) QueryContext(ctx context.Context, args ...any) (Rows, error) {
	return s.db.QueryContext(ctx, s.query, args...)
}

func (s *pgxStmt) Close() error {
	return nil
}

// PgxRows implements Rows for pgx.Rows.
type PgxRows struct {
	rows              pgx.Rows
	fieldDescriptions []pgconn.FieldDescription
}

func (p *PgxRows) Next() bool { return p.rows.Next() }

func (p *PgxRows) Scan(dest ...any) error { return p.rows.Scan(dest...) }

func (p *PgxRows) Err() error { return p.rows.Err() }

func (p *PgxRows) Close() error { p.rows.Close(); return nil }

// Columns returns the column names.
func (p *PgxRows) Columns() ([]string, error) {
	if p.fieldDescriptions == nil {
		p.fieldDescriptions = p.rows.FieldDescriptions()
	}
	columns := make([]string, len(p.fieldDescriptions))
	for i, fd := range p.fieldDescriptions {
		columns[i] = fd.Name
	}
	return columns, nil
}

// PgxResult implements Result for pgx command tags.
type PgxResult struct {
	cmdTag pgconn.CommandTag
}

func (r *PgxResult) LastInsertId() (int64, error) {
	return 0, ErrLastInsertID
}

func (r *PgxResult) RowsAffected() (int64, error) {
	return r.cmdTag.RowsAffected(), nil
}

var _ Executor = (*PgxDatabase)(nil)

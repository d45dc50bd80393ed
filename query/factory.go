package query

import (
	"context"

	"github.com/Konsultn-Engineering/layman/database"
	"github.com/Konsultn-Engineering/layman/dialect"
	"github.com/Konsultn-Engineering/layman/metrics"
	"github.com/Konsultn-Engineering/layman/template"
)

// Factory hands out statement builders for one dialect and executor.
// It is safe for concurrent use; the builders it returns are not.
type Factory struct {
	dialect  dialect.Dialect
	registry *template.Registry
	exec     database.Executor
	metrics  *metrics.Metrics
}

type Option func(*Factory)

// WithMetrics counts parse failures of every statement the factory renders.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Factory) {
		f.metrics = m
	}
}

// WithRegistry replaces the dialect's standard formatters.
func WithRegistry(r *template.Registry) Option {
	return func(f *Factory) {
		f.registry = r
	}
}

// NewFactory builds a factory. exec may be nil when statements are only
// rendered, never run.
func NewFactory(d dialect.Dialect, exec database.Executor, opts ...Option) *Factory {
	f := &Factory{dialect: d, exec: exec}
	for _, opt := range opts {
		opt(f)
	}
	if f.registry == nil {
		f.registry = template.NewRegistry(d)
	}
	return f
}

func (f *Factory) Dialect() dialect.Dialect {
	return f.dialect
}

func (f *Factory) Registry() *template.Registry {
	return f.registry
}

func (f *Factory) Executor() database.Executor {
	return f.exec
}

// Parse renders a raw template with plain Go arguments.
func (f *Factory) Parse(tpl string, args ...any) (template.Parsed, error) {
	p, err := f.registry.ParseValues(tpl, args...)
	if err != nil {
		f.metrics.ParseFailed(f.dialect.Name(), err)
		return template.Parsed{}, err
	}
	return p, nil
}

func (f *Factory) Select(fields []string, table, alias string) *SelectBuilder {
	return &SelectBuilder{
		BaseBuilder: newBaseBuilder(f, table),
		fields:      fields,
		alias:       alias,
		limit:       -1,
		offset:      -1,
	}
}

func (f *Factory) Insert(table string) *InsertBuilder {
	return &InsertBuilder{BaseBuilder: newBaseBuilder(f, table)}
}

func (f *Factory) Update(table string) *UpdateBuilder {
	return &UpdateBuilder{BaseBuilder: newBaseBuilder(f, table)}
}

func (f *Factory) Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{BaseBuilder: newBaseBuilder(f, table), limit: -1}
}

// mysqlFamily reports whether the dialect accepts MySQL-only syntax such as
// DELETE ... LIMIT.
func (f *Factory) mysqlFamily() bool {
	switch f.dialect.Name() {
	case "mysql", "tidb":
		return true
	}
	return false
}

func (f *Factory) execute(ctx context.Context, p template.Parsed) (database.Result, error) {
	if f.exec == nil {
		return nil, ErrNoExecutor
	}
	return f.exec.ExecContext(ctx, p.SQL, p.Data...)
}

func (f *Factory) fetch(ctx context.Context, p template.Parsed) (database.Rows, error) {
	if f.exec == nil {
		return nil, ErrNoExecutor
	}
	return f.exec.QueryContext(ctx, p.SQL, p.Data...)
}

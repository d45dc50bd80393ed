// Package layman builds SQL statements from templates and runs them on the
// connection of a configured driver.
//
//	l, err := layman.New("mysql", exec)
//	rows, err := l.Select([]string{"id", "name"}, "users", "").
//		WhereIn("id", []int{1, 2, 3}).
//		Query(ctx)
package layman

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/layman/connector"
	"github.com/Konsultn-Engineering/layman/database"
	"github.com/Konsultn-Engineering/layman/dialect"
	"github.com/Konsultn-Engineering/layman/metrics"
	"github.com/Konsultn-Engineering/layman/query"
	"github.com/Konsultn-Engineering/layman/schema"
	"github.com/Konsultn-Engineering/layman/template"
)

var (
	ErrNoSuchFactory   = errors.New("layman: no factory is registered for driver type")
	ErrFactoryMismatch = errors.New("layman: factory does not support the driver type")
)

// FactoryFunc builds the statement factory for one driver type.
type FactoryFunc func(exec database.Executor, opts ...query.Option) *query.Factory

func dialectFactory(d dialect.Dialect) FactoryFunc {
	return func(exec database.Executor, opts ...query.Option) *query.Factory {
		return query.NewFactory(d, exec, opts...)
	}
}

// DefaultFactories returns a factory for every built-in driver type.
func DefaultFactories() map[string]FactoryFunc {
	mysql := dialectFactory(dialect.NewMySQLDialect())
	postgres := dialectFactory(dialect.NewPostgresDialect())
	sqlite := dialectFactory(dialect.NewSQLiteDialect())
	return map[string]FactoryFunc{
		"mysql":    mysql,
		"mariadb":  mysql,
		"tidb":     dialectFactory(dialect.NewTiDBDialect()),
		"postgres": postgres,
		"pgx":      postgres,
		"sqlite":   sqlite,
		"sqlite3":  sqlite,
	}
}

type Options struct {
	Factories map[string]FactoryFunc
	Providers connector.Providers
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
	Schema    *schema.Schema
}

type Option func(*Options)

// WithFactories replaces the driver type to factory map.
func WithFactories(f map[string]FactoryFunc) Option {
	return func(o *Options) { o.Factories = f }
}

// WithProviders replaces the connection providers used by Open.
func WithProviders(p connector.Providers) Option {
	return func(o *Options) { o.Providers = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}

// WithSchema sets the struct mapping used by InsertStruct.
func WithSchema(s *schema.Schema) Option {
	return func(o *Options) { o.Schema = s }
}

func buildOptions(opts []Option) Options {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Factories == nil {
		o.Factories = DefaultFactories()
	}
	if o.Providers == nil {
		o.Providers = connector.DefaultProviders()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Schema == nil {
		o.Schema = schema.New()
	}
	return o
}

// Layman hands out statement builders for one driver type and runs them on
// its executor.
type Layman struct {
	driverType string
	factory    *query.Factory
	exec       database.Executor
	schema     *schema.Schema
	conn       connector.Connection
}

// New looks up the factory for driverType and binds it to exec. exec may be
// nil to only render statements.
func New(driverType string, exec database.Executor, opts ...Option) (*Layman, error) {
	return newLayman(driverType, exec, buildOptions(opts))
}

func newLayman(driverType string, exec database.Executor, o Options) (*Layman, error) {
	build, ok := o.Factories[driverType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchFactory, driverType)
	}
	f := build(exec, query.WithMetrics(o.Metrics))
	if want, err := dialect.ByName(driverType); err == nil && want.Name() != f.Dialect().Name() {
		return nil, fmt.Errorf("%w: factory uses %s, driver type is %q", ErrFactoryMismatch, f.Dialect().Name(), driverType)
	}
	return &Layman{driverType: driverType, factory: f, exec: exec, schema: o.Schema}, nil
}

// Open connects with cfg and builds a Layman for cfg.Driver. Close releases
// the connection.
func Open(ctx context.Context, cfg connector.Config, opts ...Option) (*Layman, error) {
	o := buildOptions(opts)
	conn, err := connector.Connect(ctx, o.Providers, cfg, connector.Settings{
		Logger:   o.Logger,
		Database: []database.Option{database.WithMetrics(o.Metrics)},
	})
	if err != nil {
		return nil, err
	}

	l, err := newLayman(cfg.Driver, conn.Executor(), o)
	if err == nil && l.factory.Dialect().Name() != conn.Dialect().Name() {
		err = fmt.Errorf("%w: factory uses %s, connection uses %s", ErrFactoryMismatch, l.factory.Dialect().Name(), conn.Dialect().Name())
	}
	if err != nil {
		return nil, multierr.Append(err, conn.Close())
	}
	l.conn = conn
	return l, nil
}

// Type returns the driver type the Layman was built for.
func (l *Layman) Type() string {
	return l.driverType
}

func (l *Layman) Factory() *query.Factory {
	return l.factory
}

func (l *Layman) Select(fields []string, table, alias string) *query.SelectBuilder {
	return l.factory.Select(fields, table, alias)
}

// Insert starts an insert of one row given as a column to value map.
func (l *Layman) Insert(values map[string]any, table string) *query.InsertBuilder {
	return l.factory.Insert(table).Values(values)
}

// InsertStruct starts an insert of v, a struct or pointer to one. Table and
// columns come from the schema; see schema.InsertValues.
func (l *Layman) InsertStruct(v any) *query.InsertBuilder {
	table, values, err := l.schema.InsertValues(v)
	if err != nil {
		ib := l.factory.Insert(table)
		ib.AddError(err)
		return ib
	}
	return l.factory.Insert(table).Values(values)
}

func (l *Layman) Update(values map[string]any, table string) *query.UpdateBuilder {
	return l.factory.Update(table).Set(values)
}

func (l *Layman) Delete(table string) *query.DeleteBuilder {
	return l.factory.Delete(table)
}

// Parse renders a template for this driver type.
func (l *Layman) Parse(tpl string, args ...any) (template.Parsed, error) {
	return l.factory.Parse(tpl, args...)
}

// Query renders tpl and runs it as a query.
func (l *Layman) Query(ctx context.Context, tpl string, args ...any) (database.Rows, error) {
	p, err := l.Parse(tpl, args...)
	if err != nil {
		return nil, err
	}
	if l.exec == nil {
		return nil, query.ErrNoExecutor
	}
	return l.exec.QueryContext(ctx, p.SQL, p.Data...)
}

// Exec renders tpl and runs it as a statement.
func (l *Layman) Exec(ctx context.Context, tpl string, args ...any) (database.Result, error) {
	p, err := l.Parse(tpl, args...)
	if err != nil {
		return nil, err
	}
	if l.exec == nil {
		return nil, query.ErrNoExecutor
	}
	return l.exec.ExecContext(ctx, p.SQL, p.Data...)
}

// Prepare prepares already rendered SQL, such as Parsed.SQL.
func (l *Layman) Prepare(ctx context.Context, sql string) (database.Stmt, error) {
	if l.exec == nil {
		return nil, query.ErrNoExecutor
	}
	return l.exec.PrepareContext(ctx, sql)
}

// Close releases the connection made by Open. Executors passed to New
// belong to the caller and are left open.
func (l *Layman) Close() error {
	if l.conn == nil {
		return nil
	}
	return l.conn.Close()
}

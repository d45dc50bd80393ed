// Command layman renders SQL templates and runs them against a configured
// database.
//
//	layman parse --dialect postgres --args '["users", [1, 2]]' 'SELECT * FROM {_} WHERE id IN ({?+})'
//	layman exec --config layman.yaml --query --args '["users"]' 'SELECT * FROM {_}'
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Konsultn-Engineering/layman"
	"github.com/Konsultn-Engineering/layman/config"
	"github.com/Konsultn-Engineering/layman/database"
	"github.com/Konsultn-Engineering/layman/dialect"
	"github.com/Konsultn-Engineering/layman/logger"
	"github.com/Konsultn-Engineering/layman/metrics"
	"github.com/Konsultn-Engineering/layman/template"
)

const usage = `usage: layman <command> [flags] <template>

commands:
  parse   render a template and print the SQL and bound values
  exec    render a template and run it on the configured database
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "parse":
		err = runParse(args[1:], stdout, stderr)
	case "exec":
		err = runExec(ctx, args[1:], stdout, stderr)
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%s", args[0], usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, pflag.ErrHelp):
		return 0
	default:
		fmt.Fprintf(stderr, "layman: %v\n", err)
		var te *template.Error
		if errors.As(err, &te) {
			return 3
		}
		return 1
	}
}

type parseOptions struct {
	Dialect string
	Args    string
	JSON    bool
}

func runParse(args []string, stdout, stderr io.Writer) error {
	var opts parseOptions
	fs := pflag.NewFlagSet("parse", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.Dialect, "dialect", "d", "mysql", "dialect to render for (mysql, tidb, postgres, sqlite)")
	fs.StringVarP(&opts.Args, "args", "a", "[]", "template arguments as a JSON array")
	fs.BoolVar(&opts.JSON, "json", false, "print the result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	tpl, err := templateArg(fs)
	if err != nil {
		return err
	}

	values, err := decodeArgs(opts.Args)
	if err != nil {
		return err
	}
	d, err := dialect.ByName(opts.Dialect)
	if err != nil {
		return err
	}
	p, err := template.NewRegistry(d).ParseValues(tpl, values...)
	if err != nil {
		return err
	}
	return printParsed(stdout, d, p, opts.JSON)
}

type execOptions struct {
	Config string
	Args   string
	Query  bool
}

func runExec(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts execOptions
	fs := pflag.NewFlagSet("exec", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.Config, "config", "c", "", "path to a YAML config file; LAYMAN_* variables override it")
	fs.StringVarP(&opts.Args, "args", "a", "[]", "template arguments as a JSON array")
	fs.BoolVarP(&opts.Query, "query", "q", false, "print the returned rows")
	if err := fs.Parse(args); err != nil {
		return err
	}
	tpl, err := templateArg(fs)
	if err != nil {
		return err
	}
	values, err := decodeArgs(opts.Args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return err
	}
	if cfg.Database.Driver == "" {
		return errors.New("no database configured, set database.driver or LAYMAN_DATABASE_DRIVER")
	}
	log, err := logger.NewWithWriter(cfg.Logging.Level, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	reg := prometheus.NewRegistry()
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		if m, err = metrics.New(reg); err != nil {
			return err
		}
		defer logMetrics(log, reg)
	}

	l, err := layman.Open(ctx, cfg.Database, layman.WithLogger(log), layman.WithMetrics(m))
	if err != nil {
		return err
	}
	defer l.Close()

	if opts.Query {
		rows, err := l.Query(ctx, tpl, values...)
		if err != nil {
			return err
		}
		defer rows.Close()
		return printRows(stdout, l.Factory().Dialect(), rows)
	}

	// Rendering errors are final; only the round trip is retried.
	p, err := l.Parse(tpl, values...)
	if err != nil {
		return err
	}
	var affected int64
	err = database.Retry(ctx, log, database.DefaultRetryPolicy, func(ctx context.Context) error {
		res, err := l.Factory().Executor().ExecContext(ctx, p.SQL, p.Data...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d row(s) affected\n", affected)
	return nil
}

func templateArg(fs *pflag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one template, got %d arguments", fs.NArg())
	}
	return fs.Arg(0), nil
}

// decodeArgs reads a JSON array. Integral numbers become int64, others
// float64.
func decodeArgs(raw string) ([]any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var values []any
	if err := dec.Decode(&values); err != nil {
		return nil, fmt.Errorf("decode --args: %w", err)
	}
	for i, v := range values {
		values[i] = normalize(v)
	}
	return values, nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	}
	return v
}

func printParsed(w io.Writer, d dialect.Dialect, p template.Parsed, asJSON bool) error {
	if asJSON {
		data := p.Data
		if data == nil {
			data = []any{}
		}
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return enc.Encode(struct {
			SQL  string `json:"sql"`
			Data []any  `json:"data"`
		}{p.SQL, data})
	}

	fmt.Fprintln(w, p.SQL)
	if len(p.Data) > 0 {
		rendered := make([]string, len(p.Data))
		for i, v := range p.Data {
			rendered[i] = d.RenderValue(v)
		}
		fmt.Fprintf(w, "-- data: %s\n", strings.Join(rendered, ", "))
	}
	return nil
}

func printRows(w io.Writer, d dialect.Dialect, rows database.Rows) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, strings.Join(cols, "\t"))

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	var line bytes.Buffer
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		line.Reset()
		for i, v := range values {
			if i > 0 {
				line.WriteByte('\t')
			}
			line.WriteString(d.RenderValue(v))
		}
		fmt.Fprintln(w, line.String())
	}
	return rows.Err()
}

func logMetrics(log *zap.Logger, reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		log.Warn("gather metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		log.Info("metrics", zap.String("name", mf.GetName()), zap.Int("series", len(mf.GetMetric())))
	}
}

package connector

import (
	"context"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/Konsultn-Engineering/layman/dialect"
)

// SQLiteDSN builds a modernc.org/sqlite file: URI. Params are passed as
// query parameters, e.g. mode=memory or _pragma=foreign_keys(1).
func SQLiteDSN(cfg Config) string {
	path := cfg.Database
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	if len(cfg.Params) == 0 {
		return path
	}
	q := url.Values{}
	for k, v := range cfg.Params {
		q.Set(k, v)
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

// SQLiteProvider opens a database/sql pool on modernc.org/sqlite.
type SQLiteProvider struct{}

func (SQLiteProvider) Dialect() dialect.Dialect {
	return dialect.NewSQLiteDialect()
}

func (p SQLiteProvider) Connect(ctx context.Context, cfg Config, s Settings) (Connection, error) {
	return openSQL(ctx, "sqlite", SQLiteDSN(cfg), p.Dialect(), cfg, s)
}

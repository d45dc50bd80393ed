package dialect

import (
	"errors"
	"fmt"
	"strings"
)

// Dialect holds the quoting and parameter marker rules of one RDBMS.
type Dialect interface {
	Name() string
	// QuoteIdentifier wraps name in the dialect's identifier quotes,
	// doubling any embedded quote character.
	QuoteIdentifier(name string) string
	// Placeholder returns the marker for the n-th bound value, counting from 1.
	Placeholder(n int) string
	// RenderValue renders v as a SQL literal. Only meant for log output.
	RenderValue(v any) string
}

var ErrUnknownDialect = errors.New("unknown dialect")

// ByName resolves a dialect from a driver or dialect name.
func ByName(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql", "mariadb":
		return NewMySQLDialect(), nil
	case "tidb":
		return NewTiDBDialect(), nil
	case "postgres", "postgresql", "pgx":
		return NewPostgresDialect(), nil
	case "sqlite", "sqlite3":
		return NewSQLiteDialect(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, name)
}

func quoteWith(q, name string) string {
	return q + strings.ReplaceAll(name, q, q+q) + q
}

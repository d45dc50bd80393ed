package dialect

import "fmt"

type SQLite struct{}

func NewSQLiteDialect() Dialect {
	return &SQLite{}
}

func (s SQLite) Name() string {
	return "sqlite"
}

func (s SQLite) QuoteIdentifier(name string) string {
	return quoteWith(`"`, name)
}

func (s SQLite) Placeholder(int) string {
	return "?"
}

func (SQLite) RenderValue(v any) string {
	return renderValue(v, ansiString, "2006-01-02 15:04:05.000", func(b []byte) string {
		return fmt.Sprintf("X'%x'", b)
	})
}

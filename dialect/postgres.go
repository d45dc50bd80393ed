package dialect

import (
	"fmt"
	"strconv"

	"github.com/lib/pq"
)

type Postgres struct{}

func NewPostgresDialect() Dialect {
	return &Postgres{}
}

func (p Postgres) Name() string {
	return "postgres"
}

func (p Postgres) QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}

func (p Postgres) Placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

func (Postgres) RenderValue(v any) string {
	return renderValue(v, ansiString, "2006-01-02 15:04:05.000000", func(b []byte) string {
		return fmt.Sprintf("'\\x%x'", b) // hex bytea literal
	})
}

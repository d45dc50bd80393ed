package dialect

import "fmt"

type MySQL struct{}

func NewMySQLDialect() Dialect {
	return &MySQL{}
}

func (m MySQL) Name() string {
	return "mysql"
}

func (m MySQL) QuoteIdentifier(name string) string {
	return quoteWith("`", name)
}

func (m MySQL) Placeholder(int) string {
	return "?"
}

func (m MySQL) RenderValue(v any) string {
	return renderValue(v, mysqlString, "2006-01-02 15:04:05.000000", func(b []byte) string {
		return fmt.Sprintf("X'%x'", b)
	})
}

package template

import (
	"fmt"
	"strings"

	"github.com/Konsultn-Engineering/layman/dialect"
)

// Accumulator collects the SQL text and bound values of a single Parse call.
type Accumulator struct {
	sql  strings.Builder
	data []any
}

// WriteSQL appends raw SQL text.
func (a *Accumulator) WriteSQL(s string) {
	a.sql.WriteString(s)
}

// Bind appends v to the bound values and returns its 1-based position,
// which is the number to pass to Dialect.Placeholder.
func (a *Accumulator) Bind(v any) int {
	a.data = append(a.data, v)
	return len(a.data)
}

func (a *Accumulator) result() Parsed {
	return Parsed{SQL: a.sql.String(), Data: a.data}
}

// Formatter renders one token. It must either append to acc and return nil,
// or return an error without caring about what it already appended.
type Formatter func(acc *Accumulator, arg Arg) error

// Registry maps every token to its formatter. It is immutable once built
// and safe for concurrent use.
type Registry struct {
	name       string
	formatters [tokenCount]Formatter
}

// NewRegistry builds the standard formatters for d.
func NewRegistry(d dialect.Dialect) *Registry {
	r := &Registry{name: d.Name()}
	r.formatters[TokenName] = nameFormatter(d)
	r.formatters[TokenNames] = namesFormatter(d)
	r.formatters[TokenParam] = paramFormatter(d)
	r.formatters[TokenParams] = paramsFormatter(d)
	return r
}

// NewCustomRegistry builds a registry from arbitrary formatters. Tokens
// missing from formatters are reported as unknown by Parse.
func NewCustomRegistry(name string, formatters map[Token]Formatter) (*Registry, error) {
	r := &Registry{name: name}
	for tok, f := range formatters {
		if !tok.valid() {
			return nil, fmt.Errorf("template: cannot register formatter for %s", tok)
		}
		if f == nil {
			return nil, fmt.Errorf("template: nil formatter for %s", tok)
		}
		r.formatters[tok] = f
	}
	return r, nil
}

// Name is the name of the dialect the registry was built for.
func (r *Registry) Name() string {
	return r.name
}

// Formatter returns the formatter registered for tok.
func (r *Registry) Formatter(tok Token) (Formatter, bool) {
	if !tok.valid() || r.formatters[tok] == nil {
		return nil, false
	}
	return r.formatters[tok], true
}

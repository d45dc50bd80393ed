package query

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Konsultn-Engineering/layman/template"
)

var (
	ErrNoTable      = errors.New("query: table name is required")
	ErrNoValues     = errors.New("query: no values to write")
	ErrRowLength    = errors.New("query: row length does not match the column list")
	ErrMissingWhere = errors.New("query: refusing to touch every row without a WHERE clause, call All() to confirm")
	ErrUnsupported  = errors.New("query: not supported by dialect")
	ErrNoExecutor   = errors.New("query: factory has no executor")
)

// clause is a template fragment together with the arguments for its tokens.
type clause struct {
	tpl  string
	args []any
}

// BaseBuilder contains what every statement builder shares: the factory it
// renders with, the target table, WHERE clauses and accumulated errors.
type BaseBuilder struct {
	factory *Factory
	table   string
	where   []clause
	errors  []error
}

func newBaseBuilder(f *Factory, table string) BaseBuilder {
	bb := BaseBuilder{factory: f, table: table}
	if table == "" {
		bb.AddError(ErrNoTable)
	}
	return bb
}

// TableName returns the table name
func (bb *BaseBuilder) TableName() string {
	return bb.table
}

// AddError adds an error to the builder
func (bb *BaseBuilder) AddError(err error) {
	if err != nil {
		bb.errors = append(bb.errors, err)
	}
}

// HasErrors returns true if there are any errors
func (bb *BaseBuilder) HasErrors() bool {
	return len(bb.errors) > 0
}

// GetErrors returns all accumulated errors
func (bb *BaseBuilder) GetErrors() []error {
	return bb.errors
}

// GetFirstError returns the first error or nil
func (bb *BaseBuilder) GetFirstError() error {
	if len(bb.errors) > 0 {
		return bb.errors[0]
	}
	return nil
}

// Err combines every accumulated error into one.
func (bb *BaseBuilder) Err() error {
	return multierr.Combine(bb.errors...)
}

// newClause checks that tpl is well formed and has one argument per token.
func (bb *BaseBuilder) newClause(tpl string, args []any) (clause, bool) {
	n, err := template.Validate(tpl)
	if err != nil {
		bb.AddError(fmt.Errorf("query: clause %q: %w", tpl, err))
		return clause{}, false
	}
	switch {
	case n > len(args):
		bb.AddError(fmt.Errorf("query: clause %q has %d tokens, got %d arguments: %w",
			tpl, n, len(args), template.ErrTooFewArguments))
		return clause{}, false
	case n < len(args):
		bb.AddError(fmt.Errorf("query: clause %q has %d tokens, got %d arguments: %w",
			tpl, n, len(args), template.ErrTooManyArguments))
		return clause{}, false
	}
	return clause{tpl: tpl, args: args}, true
}

func (bb *BaseBuilder) addWhere(tpl string, args []any) {
	if c, ok := bb.newClause(tpl, args); ok {
		bb.where = append(bb.where, c)
	}
}

func (bb *BaseBuilder) addWhereEq(column string, value any) {
	if value == nil {
		bb.addWhereNull(column, true)
		return
	}
	ref, args := columnRef(column)
	bb.where = append(bb.where, clause{tpl: ref + " = {?}", args: append(args, value)})
}

func (bb *BaseBuilder) addWhereIn(column string, values any) {
	ref, args := columnRef(column)
	bb.where = append(bb.where, clause{tpl: ref + " IN ({?+})", args: append(args, values)})
}

func (bb *BaseBuilder) addWhereNull(column string, null bool) {
	ref, args := columnRef(column)
	op := " IS NULL"
	if !null {
		op = " IS NOT NULL"
	}
	bb.where = append(bb.where, clause{tpl: ref + op, args: args})
}

// render parses the assembled statement, or returns the accumulated errors
// together with any failed checks of the caller.
func (bb *BaseBuilder) render(s *statement, checks ...error) (template.Parsed, error) {
	if err := multierr.Combine(append(bb.errors[:len(bb.errors):len(bb.errors)], checks...)...); err != nil {
		return template.Parsed{}, err
	}
	return bb.factory.Parse(s.tpl.String(), s.args...)
}

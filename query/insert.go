package query

import (
	"context"
	"fmt"
	"slices"

	"github.com/Konsultn-Engineering/layman/database"
	"github.com/Konsultn-Engineering/layman/template"
)

type InsertBuilder struct {
	BaseBuilder
	columns   []string
	rows      [][]any
	returning []string
}

// Columns fixes the column list for rows added with Row.
func (ib *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	if len(ib.columns) > 0 {
		ib.AddError(fmt.Errorf("query: columns of %q already set", ib.table))
		return ib
	}
	ib.columns = columns
	return ib
}

// Row adds one row of values, in column order.
func (ib *InsertBuilder) Row(values ...any) *InsertBuilder {
	if len(values) != len(ib.columns) {
		ib.AddError(fmt.Errorf("%w: %d values for %d columns", ErrRowLength, len(values), len(ib.columns)))
		return ib
	}
	ib.rows = append(ib.rows, values)
	return ib
}

// Values adds one row from a column to value map. Columns are sorted by
// name; every later map must carry the same keys.
func (ib *InsertBuilder) Values(values map[string]any) *InsertBuilder {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	if len(ib.columns) == 0 {
		ib.columns = keys
	} else if !slices.Equal(sortedCopy(ib.columns), keys) {
		ib.AddError(fmt.Errorf("%w: got columns %v, want %v", ErrRowLength, keys, ib.columns))
		return ib
	}

	row := make([]any, len(ib.columns))
	for i, c := range ib.columns {
		row[i] = values[c]
	}
	ib.rows = append(ib.rows, row)
	return ib
}

// Returning appends a RETURNING clause. MySQL does not support it.
func (ib *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	ib.returning = append(ib.returning, columns...)
	return ib
}

func (ib *InsertBuilder) Build() (template.Parsed, error) {
	var checks []error
	if len(ib.rows) == 0 {
		checks = append(checks, fmt.Errorf("%w: insert into %q", ErrNoValues, ib.table))
	}
	if len(ib.returning) > 0 && ib.factory.mysqlFamily() {
		checks = append(checks, fmt.Errorf("%w: RETURNING on %s", ErrUnsupported, ib.factory.dialect.Name()))
	}

	var s statement
	s.write("INSERT INTO ")
	s.table(ib.table, "")
	s.write(" ({_+}) VALUES ", template.Names(ib.columns...))
	for i, row := range ib.rows {
		if i > 0 {
			s.write(", ")
		}
		s.write("({?+})", row)
	}
	if len(ib.returning) > 0 {
		s.write(" RETURNING {_+}", template.Names(ib.returning...))
	}
	return ib.render(&s, checks...)
}

func (ib *InsertBuilder) Exec(ctx context.Context) (database.Result, error) {
	p, err := ib.Build()
	if err != nil {
		return nil, err
	}
	return ib.factory.execute(ctx, p)
}

// Query runs the insert and returns the RETURNING rows.
func (ib *InsertBuilder) Query(ctx context.Context) (database.Rows, error) {
	p, err := ib.Build()
	if err != nil {
		return nil, err
	}
	return ib.factory.fetch(ctx, p)
}

func sortedCopy(s []string) []string {
	c := slices.Clone(s)
	slices.Sort(c)
	return c
}

package query

import (
	"context"
	"fmt"

	"github.com/Konsultn-Engineering/layman/database"
	"github.com/Konsultn-Engineering/layman/template"
)

type SelectBuilder struct {
	BaseBuilder
	fields  []string
	alias   string
	groupBy []string
	orderBy []clause
	limit   int64
	offset  int64
}

// Where adds a templated condition. Several calls are AND-ed together.
func (sb *SelectBuilder) Where(tpl string, args ...any) *SelectBuilder {
	sb.addWhere(tpl, args)
	return sb
}

func (sb *SelectBuilder) WhereEq(column string, value any) *SelectBuilder {
	sb.addWhereEq(column, value)
	return sb
}

// WhereIn matches column against a slice of values.
func (sb *SelectBuilder) WhereIn(column string, values any) *SelectBuilder {
	sb.addWhereIn(column, values)
	return sb
}

func (sb *SelectBuilder) WhereIsNull(column string) *SelectBuilder {
	sb.addWhereNull(column, true)
	return sb
}

func (sb *SelectBuilder) WhereIsNotNull(column string) *SelectBuilder {
	sb.addWhereNull(column, false)
	return sb
}

func (sb *SelectBuilder) GroupBy(fields ...string) *SelectBuilder {
	sb.groupBy = append(sb.groupBy, fields...)
	return sb
}

func (sb *SelectBuilder) OrderBy(field string, desc bool) *SelectBuilder {
	ref, args := columnRef(field)
	dir := " ASC"
	if desc {
		dir = " DESC"
	}
	sb.orderBy = append(sb.orderBy, clause{tpl: ref + dir, args: args})
	return sb
}

func (sb *SelectBuilder) Limit(n int64) *SelectBuilder {
	if n < 0 {
		sb.AddError(fmt.Errorf("query: negative limit %d", n))
		return sb
	}
	sb.limit = n
	return sb
}

func (sb *SelectBuilder) Offset(n int64) *SelectBuilder {
	if n < 0 {
		sb.AddError(fmt.Errorf("query: negative offset %d", n))
		return sb
	}
	sb.offset = n
	return sb
}

func (sb *SelectBuilder) Build() (template.Parsed, error) {
	var s statement
	s.write("SELECT ")
	if len(sb.fields) == 0 {
		s.write("*")
	}
	for i, f := range sb.fields {
		if i > 0 {
			s.write(", ")
		}
		s.field(f)
	}
	s.write(" FROM ")
	s.table(sb.table, sb.alias)
	s.where(sb.where)

	if len(sb.groupBy) > 0 {
		s.write(" GROUP BY ")
		for i, f := range sb.groupBy {
			if i > 0 {
				s.write(", ")
			}
			s.column(f)
		}
	}
	if len(sb.orderBy) > 0 {
		s.write(" ORDER BY ")
		s.clauses(sb.orderBy, ", ", false)
	}

	var check error
	if sb.offset >= 0 && sb.limit < 0 && sb.factory.dialect.Name() != "postgres" {
		check = fmt.Errorf("%w: OFFSET without LIMIT on %s", ErrUnsupported, sb.factory.dialect.Name())
	}
	if sb.limit >= 0 {
		s.write(" LIMIT {?}", sb.limit)
	}
	if sb.offset >= 0 {
		s.write(" OFFSET {?}", sb.offset)
	}
	return sb.render(&s, check)
}

func (sb *SelectBuilder) Query(ctx context.Context) (database.Rows, error) {
	p, err := sb.Build()
	if err != nil {
		return nil, err
	}
	return sb.factory.fetch(ctx, p)
}

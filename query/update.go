package query

import (
	"context"
	"fmt"
	"slices"

	"github.com/Konsultn-Engineering/layman/database"
	"github.com/Konsultn-Engineering/layman/template"
)

type UpdateBuilder struct {
	BaseBuilder
	sets []clause
	all  bool
}

// Set assigns each column its value. Columns are written sorted by name.
func (ub *UpdateBuilder) Set(values map[string]any) *UpdateBuilder {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		ub.sets = append(ub.sets, clause{tpl: "{_} = {?}", args: []any{k, values[k]}})
	}
	return ub
}

// SetExpr assigns a templated expression, e.g. SetExpr("hits", "{_} + {?}", "hits", 1).
func (ub *UpdateBuilder) SetExpr(column, tpl string, args ...any) *UpdateBuilder {
	if c, ok := ub.newClause(tpl, args); ok {
		ub.sets = append(ub.sets, clause{tpl: "{_} = " + c.tpl, args: append([]any{column}, c.args...)})
	}
	return ub
}

func (ub *UpdateBuilder) Where(tpl string, args ...any) *UpdateBuilder {
	ub.addWhere(tpl, args)
	return ub
}

func (ub *UpdateBuilder) WhereEq(column string, value any) *UpdateBuilder {
	ub.addWhereEq(column, value)
	return ub
}

func (ub *UpdateBuilder) WhereIn(column string, values any) *UpdateBuilder {
	ub.addWhereIn(column, values)
	return ub
}

func (ub *UpdateBuilder) WhereIsNull(column string) *UpdateBuilder {
	ub.addWhereNull(column, true)
	return ub
}

func (ub *UpdateBuilder) WhereIsNotNull(column string) *UpdateBuilder {
	ub.addWhereNull(column, false)
	return ub
}

// All allows the update to run without a WHERE clause.
func (ub *UpdateBuilder) All() *UpdateBuilder {
	ub.all = true
	return ub
}

func (ub *UpdateBuilder) Build() (template.Parsed, error) {
	var checks []error
	if len(ub.sets) == 0 {
		checks = append(checks, fmt.Errorf("%w: update %q", ErrNoValues, ub.table))
	}
	if len(ub.where) == 0 && !ub.all {
		checks = append(checks, ErrMissingWhere)
	}

	var s statement
	s.write("UPDATE ")
	s.table(ub.table, "")
	s.write(" SET ")
	s.clauses(ub.sets, ", ", false)
	s.where(ub.where)
	return ub.render(&s, checks...)
}

func (ub *UpdateBuilder) Exec(ctx context.Context) (database.Result, error) {
	p, err := ub.Build()
	if err != nil {
		return nil, err
	}
	return ub.factory.execute(ctx, p)
}

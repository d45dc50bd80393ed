package query

import (
	"context"
	"fmt"

	"github.com/Konsultn-Engineering/layman/database"
	"github.com/Konsultn-Engineering/layman/template"
)

type DeleteBuilder struct {
	BaseBuilder
	limit int64
	all   bool
}

func (db *DeleteBuilder) Where(tpl string, args ...any) *DeleteBuilder {
	db.addWhere(tpl, args)
	return db
}

func (db *DeleteBuilder) WhereEq(column string, value any) *DeleteBuilder {
	db.addWhereEq(column, value)
	return db
}

func (db *DeleteBuilder) WhereIn(column string, values any) *DeleteBuilder {
	db.addWhereIn(column, values)
	return db
}

func (db *DeleteBuilder) WhereIsNull(column string) *DeleteBuilder {
	db.addWhereNull(column, true)
	return db
}

func (db *DeleteBuilder) WhereIsNotNull(column string) *DeleteBuilder {
	db.addWhereNull(column, false)
	return db
}

// Limit caps the number of deleted rows. Only MySQL and TiDB support it.
func (db *DeleteBuilder) Limit(n int64) *DeleteBuilder {
	if n < 0 {
		db.AddError(fmt.Errorf("query: negative limit %d", n))
		return db
	}
	db.limit = n
	return db
}

// All allows the delete to run without a WHERE clause.
func (db *DeleteBuilder) All() *DeleteBuilder {
	db.all = true
	return db
}

func (db *DeleteBuilder) Build() (template.Parsed, error) {
	var checks []error
	if len(db.where) == 0 && !db.all {
		checks = append(checks, ErrMissingWhere)
	}
	if db.limit >= 0 && !db.factory.mysqlFamily() {
		checks = append(checks, fmt.Errorf("%w: DELETE ... LIMIT on %s", ErrUnsupported, db.factory.dialect.Name()))
	}

	var s statement
	s.write("DELETE FROM ")
	s.table(db.table, "")
	s.where(db.where)
	if db.limit >= 0 {
		s.write(" LIMIT {?}", db.limit)
	}
	return db.render(&s, checks...)
}

func (db *DeleteBuilder) Exec(ctx context.Context) (database.Result, error) {
	p, err := db.Build()
	if err != nil {
		return nil, err
	}
	return db.factory.execute(ctx, p)
}

package schema

import (
	pluralizer "github.com/gertd/go-pluralize"
	"github.com/iancoleman/strcase"
)

var pluralizeClient = pluralizer.NewClient()

// NamingStrategy converts Go struct and field names to table and column
// names.
type NamingStrategy interface {
	TableName(structName string) string
	ColumnName(fieldName string) string
}

// Tabler overrides the derived table name of a struct.
type Tabler interface {
	TableName() string
}

// ColumnCase selects how field names are converted to column names.
type ColumnCase int

const (
	SnakeCase  ColumnCase = iota // user_id
	CamelCase                    // userId
	PascalCase                   // UserId
)

type namingStrategy struct {
	columns ColumnCase
	plural  bool
}

// NewNamingStrategy returns a strategy that snake_cases table names,
// pluralizing them when plural is set, and converts columns to c.
func NewNamingStrategy(c ColumnCase, plural bool) NamingStrategy {
	return namingStrategy{columns: c, plural: plural}
}

// DefaultNamingStrategy maps UserProfile to user_profiles and CreatedAt to
// created_at.
func DefaultNamingStrategy() NamingStrategy {
	return NewNamingStrategy(SnakeCase, true)
}

func (n namingStrategy) TableName(structName string) string {
	name := strcase.ToSnake(structName)
	if n.plural {
		return pluralizeLast(name)
	}
	return name
}

func (n namingStrategy) ColumnName(fieldName string) string {
	switch n.columns {
	case CamelCase:
		return strcase.ToLowerCamel(fieldName)
	case PascalCase:
		return strcase.ToCamel(fieldName)
	default:
		return strcase.ToSnake(fieldName)
	}
}

// pluralizeLast pluralizes the last word of a snake_case name, so
// order_item becomes order_items rather than order_itemses.
func pluralizeLast(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '_' {
			return name[:i+1] + pluralizeClient.Plural(name[i+1:])
		}
	}
	return pluralizeClient.Plural(name)
}

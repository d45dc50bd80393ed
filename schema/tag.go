package schema

import (
	"fmt"
	"strings"
)

// Tag is a parsed `db` struct tag.
//
// Supported syntax:
//
//	`db:"column_name"`           // explicit column
//	`db:"-"`                     // skip the field
//	`db:"column:id;primary"`     // options separated by ';'
//	`db:"id;primary"`            // a leading bare name is the column
//	`db:"auto"`                  // assigned by the database, omitted from inserts when zero
//	`db:"generator:uuid"`        // filled by a generator on insert when zero
type Tag struct {
	Column    string
	Skip      bool
	Primary   bool
	Auto      bool
	Generator string
}

func parseTag(field, value string, naming NamingStrategy) (Tag, error) {
	tag := Tag{Column: naming.ColumnName(field)}
	switch {
	case value == "":
		return tag, nil
	case value == "-":
		return Tag{Skip: true}, nil
	}

	for i, opt := range strings.Split(value, ";") {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		if i == 0 && !strings.Contains(opt, ":") && !isFlag(opt) {
			tag.Column = opt
			continue
		}
		key, val, hasValue := strings.Cut(opt, ":")
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		if hasValue {
			switch key {
			case "column", "name":
				if val == "" {
					return Tag{}, fmt.Errorf("field %s: empty column name", field)
				}
				tag.Column = val
			case "generator", "gen":
				tag.Generator = val
			default:
				return Tag{}, fmt.Errorf("field %s: unknown tag option %q", field, key)
			}
			continue
		}

		switch key {
		case "primary", "primary_key", "pk":
			tag.Primary = true
		case "auto", "auto_increment":
			tag.Auto = true
		default:
			return Tag{}, fmt.Errorf("field %s: unknown tag flag %q", field, key)
		}
	}
	return tag, nil
}

func isFlag(v string) bool {
	switch v {
	case "primary", "primary_key", "pk", "auto", "auto_increment":
		return true
	}
	return false
}

package query

import "strings"

// statement assembles one template and its argument list. Clauses are
// joined as template text and parsed once, so positional markers are
// numbered across the whole statement.
type statement struct {
	tpl  strings.Builder
	args []any
}

func (s *statement) write(tpl string, args ...any) {
	s.tpl.WriteString(tpl)
	s.args = append(s.args, args...)
}

func (s *statement) table(name, alias string) {
	s.write("{_}", name)
	if alias != "" {
		s.write(" AS {_}", alias)
	}
}

func (s *statement) column(spec string) {
	ref, args := columnRef(spec)
	s.write(ref, args...)
}

// field writes a select list entry such as "u.name AS author".
func (s *statement) field(spec string) {
	table, name, alias := parseColumnString(spec)
	if table != "" {
		s.write("{_}.", table)
	}
	if name == "*" {
		s.write("*")
	} else {
		s.write("{_}", name)
	}
	if alias != "" {
		s.write(" AS {_}", alias)
	}
}

func (s *statement) clauses(cs []clause, sep string, group bool) {
	for i, c := range cs {
		if i > 0 {
			s.write(sep)
		}
		if group {
			s.write("(")
		}
		s.write(c.tpl, c.args...)
		if group {
			s.write(")")
		}
	}
}

func (s *statement) where(cs []clause) {
	if len(cs) == 0 {
		return
	}
	s.write(" WHERE ")
	s.clauses(cs, " AND ", len(cs) > 1)
}

// columnRef turns "table.column" into "{_}.{_}" with both names as
// arguments. A bare name yields "{_}".
func columnRef(spec string) (string, []any) {
	if table, name, ok := strings.Cut(spec, "."); ok && table != "" && name != "" {
		return "{_}.{_}", []any{table, name}
	}
	return "{_}", []any{spec}
}

// parseColumnString parses "table.column AS alias" formats.
// Returns table, name, alias (any can be empty)
func parseColumnString(spec string) (table, name, alias string) {
	spec = strings.TrimSpace(spec)
	if asIdx := strings.Index(strings.ToUpper(spec), " AS "); asIdx > 0 {
		alias = strings.TrimSpace(spec[asIdx+4:])
		spec = strings.TrimSpace(spec[:asIdx])
	}

	if dotIdx := strings.Index(spec, "."); dotIdx > 0 {
		table = spec[:dotIdx]
		name = spec[dotIdx+1:]
	} else {
		name = spec
	}
	return
}

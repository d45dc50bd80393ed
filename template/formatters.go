package template

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Konsultn-Engineering/layman/dialect"
)

func nameFormatter(d dialect.Dialect) Formatter {
	return func(acc *Accumulator, arg Arg) error {
		name, err := identifier(arg)
		if err != nil {
			return err
		}
		acc.WriteSQL(d.QuoteIdentifier(name))
		return nil
	}
}

func namesFormatter(d dialect.Dialect) Formatter {
	return func(acc *Accumulator, arg Arg) error {
		list, ok := arg.(List)
		if !ok {
			return fail(ErrInvalidIdentifierList, "got "+describe(arg))
		}
		if len(list) == 0 {
			return fail(ErrInvalidIdentifierList, "list is empty")
		}

		quoted := make([]string, len(list))
		for i, elem := range list {
			name, err := identifier(elem)
			if err != nil {
				return failElem(ErrInvalidIdentifierList, i, err)
			}
			quoted[i] = d.QuoteIdentifier(name)
		}
		acc.WriteSQL(strings.Join(quoted, ", "))
		return nil
	}
}

func paramFormatter(d dialect.Dialect) Formatter {
	return func(acc *Accumulator, arg Arg) error {
		s, ok := arg.(Scalar)
		if !ok {
			return fail(ErrInvalidParameter, "expected a single value, got "+describe(arg))
		}
		acc.WriteSQL(d.Placeholder(acc.Bind(s.Value())))
		return nil
	}
}

func paramsFormatter(d dialect.Dialect) Formatter {
	return func(acc *Accumulator, arg Arg) error {
		list, ok := arg.(List)
		if !ok {
			return fail(ErrInvalidParameterList, "got "+describe(arg))
		}
		if len(list) == 0 {
			return fail(ErrInvalidParameterList, "list is empty")
		}

		for i, elem := range list {
			if i > 0 {
				acc.WriteSQL(", ")
			}
			acc.WriteSQL(d.Placeholder(acc.Bind(elem.Value())))
		}
		return nil
	}
}

func identifier(arg Arg) (string, error) {
	s, ok := arg.(Scalar)
	if !ok {
		return "", fail(ErrInvalidIdentifier, "expected a single name, got "+describe(arg))
	}
	name, ok := s.Text()
	if !ok {
		return "", fail(ErrInvalidIdentifier, "expected a string, got "+describe(s))
	}

	switch {
	case name == "":
		return "", fail(ErrInvalidIdentifier, "name is empty")
	case !utf8.ValidString(name):
		return "", fail(ErrInvalidIdentifier, "name is not valid UTF-8: "+strconv.Quote(name))
	case strings.IndexByte(name, 0) >= 0:
		return "", fail(ErrInvalidIdentifier, "name contains a NUL byte: "+strconv.Quote(name))
	}
	return name, nil
}

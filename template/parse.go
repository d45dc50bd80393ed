package template

import (
	"fmt"
	"strconv"
	"strings"
)

// Parsed is a rendered statement: SQL with positional markers and the
// values bound to them, in marker order.
type Parsed struct {
	SQL  string
	Data []any
}

// String renders the statement for debugging, with the bound values
// appended as a comment.
func (p Parsed) String() string {
	if len(p.Data) == 0 {
		return p.SQL
	}
	parts := make([]string, len(p.Data))
	for i, v := range p.Data {
		parts[i] = fmt.Sprintf("%#v", v)
	}
	return p.SQL + " -- [" + strings.Join(parts, ", ") + "]"
}

// Parse renders tpl, consuming one argument per token from left to right.
// On failure the zero Parsed is returned along with an *Error.
func (r *Registry) Parse(tpl string, args ...Arg) (Parsed, error) {
	return r.parse(tpl, len(args), func(_ Token, i int) (Arg, error) {
		return args[i], nil
	})
}

// ParseValues lifts each plain Go value with Lift and parses tpl.
func (r *Registry) ParseValues(tpl string, args ...any) (Parsed, error) {
	return r.parse(tpl, len(args), func(tok Token, i int) (Arg, error) {
		a, err := Lift(args[i])
		if err != nil {
			return nil, reclassify(tok, err)
		}
		return a, nil
	})
}

func (r *Registry) parse(tpl string, argc int, arg func(Token, int) (Arg, error)) (Parsed, error) {
	// Collect the segments first so a malformed template is reported as
	// such whatever the arguments look like.
	segments := make([]Segment, 0, 2*strings.Count(tpl, openDelim)+1)
	sc := Scan(tpl)
	for {
		seg, ok := sc.Next()
		if !ok {
			break
		}
		segments = append(segments, seg)
	}
	if err := sc.Err(); err != nil {
		return Parsed{}, err
	}

	var acc Accumulator
	next := 0
	for _, seg := range segments {
		if seg.Kind == Literal {
			acc.WriteSQL(seg.Text)
			continue
		}

		spelled := openDelim + seg.Text + closeDelim
		tok, known := Lookup(seg.Text)
		var format Formatter
		if known {
			format = r.formatters[tok]
		}
		if format == nil {
			return Parsed{}, &Error{Err: ErrUnknownToken, Token: spelled, Detail: "not registered for " + r.name}
		}
		if next >= argc {
			return Parsed{}, &Error{
				Err:      ErrTooFewArguments,
				Token:    spelled,
				Position: next + 1,
				Detail:   "got " + strconv.Itoa(argc),
			}
		}

		a, err := arg(tok, next)
		if err != nil {
			return Parsed{}, annotate(err, spelled, next+1)
		}
		if err := format(&acc, a); err != nil {
			return Parsed{}, annotate(err, spelled, next+1)
		}
		next++
	}

	if next < argc {
		return Parsed{}, &Error{
			Err:      ErrTooManyArguments,
			Position: next + 1,
			Detail:   fmt.Sprintf("template has %d tokens, got %d arguments", next, argc),
		}
	}
	return acc.result(), nil
}

// reclassify maps a Lift failure onto the error kind of the token that was
// about to consume the value.
func reclassify(tok Token, err error) error {
	var sentinel error
	switch tok {
	case TokenName:
		sentinel = ErrInvalidIdentifier
	case TokenNames:
		sentinel = ErrInvalidIdentifierList
	case TokenParam:
		sentinel = ErrInvalidParameter
	default:
		sentinel = ErrInvalidParameterList
	}
	return &Error{Err: sentinel, Detail: detailOf(err), Cause: err}
}

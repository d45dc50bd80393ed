package template

import (
	"errors"
	"strconv"
	"strings"
)

// Structural errors.
var (
	ErrUnclosedToken    = errors.New("template contains an unclosed formatting token")
	ErrUnknownToken     = errors.New("unsupported token found in template")
	ErrTooFewArguments  = errors.New("too few arguments provided for the given template")
	ErrTooManyArguments = errors.New("too many arguments provided for the given template")
)

// Value errors.
var (
	ErrInvalidIdentifier     = errors.New("identifier is invalid or could not be quoted")
	ErrInvalidIdentifierList = errors.New("expected a non-empty list of identifiers")
	ErrInvalidParameter      = errors.New("unable to parameterize value")
	ErrInvalidParameterList  = errors.New("expected a non-empty list of values to parameterize")
)

var reasons = []struct {
	err    error
	reason string
}{
	{ErrUnclosedToken, "unclosed_token"},
	{ErrUnknownToken, "unknown_token"},
	{ErrTooFewArguments, "too_few_arguments"},
	{ErrTooManyArguments, "too_many_arguments"},
	{ErrInvalidIdentifier, "invalid_identifier"},
	{ErrInvalidIdentifierList, "invalid_identifier_list"},
	{ErrInvalidParameter, "invalid_parameter"},
	{ErrInvalidParameterList, "invalid_parameter_list"},
}

// Error describes a failed Parse. Err is always one of the sentinel errors
// above, or the error returned by a custom formatter.
type Error struct {
	Err error
	// Token is the offending token as written, e.g. "{_+}".
	Token string
	// Position is the 1-based index of the argument involved, 0 if none.
	Position int
	Detail   string
	// Cause is the element error behind a list error, if any.
	Cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("template: ")
	b.WriteString(e.Err.Error())
	if e.Token != "" {
		b.WriteString(" ")
		b.WriteString(strconv.Quote(e.Token))
	}
	if e.Position > 0 {
		b.WriteString(" (argument ")
		b.WriteString(strconv.Itoa(e.Position))
		b.WriteString(")")
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// Reason maps err to a short snake_case label naming its sentinel, or
// "other" when err is not a template error.
func Reason(err error) string {
	var te *Error
	if errors.As(err, &te) {
		err = te.Err
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "other"
}

func fail(sentinel error, detail string) error {
	return &Error{Err: sentinel, Detail: detail}
}

func failElem(sentinel error, index int, cause error) error {
	return &Error{
		Err:    sentinel,
		Detail: "element " + strconv.Itoa(index) + ": " + detailOf(cause),
		Cause:  cause,
	}
}

func detailOf(err error) string {
	if te, ok := err.(*Error); ok && te.Detail != "" {
		return te.Detail
	}
	return err.Error()
}

// annotate fills in the token and argument position of a formatter error.
func annotate(err error, tok string, pos int) error {
	te, ok := err.(*Error)
	if !ok {
		return &Error{Err: err, Token: tok, Position: pos}
	}
	out := *te
	if out.Token == "" {
		out.Token = tok
	}
	if out.Position == 0 {
		out.Position = pos
	}
	return &out
}

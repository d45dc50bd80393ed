package template

import "strconv"

// Token is one of the closed set of placeholder kinds a template may contain.
type Token int

const (
	// TokenName `{_}` renders one quoted identifier.
	TokenName Token = iota
	// TokenNames `{_+}` renders a comma separated list of quoted identifiers.
	TokenNames
	// TokenParam `{?}` renders one parameter marker and binds one value.
	TokenParam
	// TokenParams `{?+}` renders a marker per list element and binds each value.
	TokenParams

	tokenCount
)

const (
	openDelim  = "{"
	closeDelim = "}"
)

var spellings = [tokenCount]string{
	TokenName:   "_",
	TokenNames:  "_+",
	TokenParam:  "?",
	TokenParams: "?+",
}

// Tokens returns every token kind in declaration order.
func Tokens() []Token {
	return []Token{TokenName, TokenNames, TokenParam, TokenParams}
}

// Lookup resolves the text found between braces to a token.
func Lookup(spelling string) (Token, bool) {
	for tok, s := range spellings {
		if s == spelling {
			return Token(tok), true
		}
	}
	return 0, false
}

func (t Token) valid() bool {
	return t >= 0 && t < tokenCount
}

// String returns the token as written in a template, braces included.
func (t Token) String() string {
	if !t.valid() {
		return "Token(" + strconv.Itoa(int(t)) + ")"
	}
	return openDelim + spellings[t] + closeDelim
}

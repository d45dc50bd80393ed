package template

import (
	"strconv"
	"strings"
)

type SegmentKind int

const (
	Literal SegmentKind = iota
	TokenSegment
)

// Segment is a run of literal SQL or the text between a pair of braces.
type Segment struct {
	Kind SegmentKind
	Text string
}

// Scanner splits a template into alternating literal and token segments.
// The first and last segments are always literal, possibly empty. Only the
// delimiter currently expected is searched for, so a '}' outside a token is
// plain text and a '{' inside one becomes part of the token text.
type Scanner struct {
	rest    string
	offset  int
	inToken bool
	done    bool
	err     error
}

func Scan(tpl string) *Scanner {
	return &Scanner{rest: tpl}
}

// Next returns the next segment. It returns false once the template is
// exhausted or an unclosed token was found; Err tells the two apart.
func (s *Scanner) Next() (Segment, bool) {
	if s.done {
		return Segment{}, false
	}

	if !s.inToken {
		i := strings.Index(s.rest, openDelim)
		if i < 0 {
			seg := Segment{Kind: Literal, Text: s.rest}
			s.advance(len(s.rest))
			s.done = true
			return seg, true
		}
		seg := Segment{Kind: Literal, Text: s.rest[:i]}
		s.advance(i + len(openDelim))
		s.inToken = true
		return seg, true
	}

	i := strings.Index(s.rest, closeDelim)
	if i < 0 {
		s.done = true
		s.err = &Error{
			Err:    ErrUnclosedToken,
			Token:  openDelim + s.rest,
			Detail: "opened at offset " + strconv.Itoa(s.offset-len(openDelim)),
		}
		return Segment{}, false
	}
	seg := Segment{Kind: TokenSegment, Text: s.rest[:i]}
	s.advance(i + len(closeDelim))
	s.inToken = false
	return seg, true
}

// Err returns ErrUnclosedToken (wrapped in *Error) if the template ended
// inside a token.
func (s *Scanner) Err() error {
	return s.err
}

func (s *Scanner) advance(n int) {
	s.rest = s.rest[n:]
	s.offset += n
}

// Validate checks that every '{' in tpl is closed and returns the number of
// tokens. Token spellings are not checked.
func Validate(tpl string) (int, error) {
	sc := Scan(tpl)
	tokens := 0
	for {
		seg, ok := sc.Next()
		if !ok {
			break
		}
		if seg.Kind == TokenSegment {
			tokens++
		}
	}
	return tokens, sc.Err()
}

package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(tpl string) ([]Segment, error) {
	var out []Segment
	sc := Scan(tpl)
	for {
		seg, ok := sc.Next()
		if !ok {
			return out, sc.Err()
		}
		out = append(out, seg)
	}
}

func lit(s string) Segment { return Segment{Kind: Literal, Text: s} }
func tok(s string) Segment { return Segment{Kind: TokenSegment, Text: s} }

func TestScan(t *testing.T) {
	tests := []struct {
		name string
		tpl  string
		want []Segment
	}{
		{"empty", "", []Segment{lit("")}},
		{"literal only", "SELECT 1", []Segment{lit("SELECT 1")}},
		{"single token", "{_}", []Segment{lit(""), tok("_"), lit("")}},
		{
			"mixed",
			"SELECT {_+} FROM {_}",
			[]Segment{lit("SELECT "), tok("_+"), lit(" FROM "), tok("_"), lit("")},
		},
		{"adjacent tokens", "{?}{?}", []Segment{lit(""), tok("?"), lit(""), tok("?"), lit("")}},
		{"empty token", "a {} b", []Segment{lit("a "), tok(""), lit(" b")}},
		{"stray close brace is literal", "a } {?} }", []Segment{lit("a } "), tok("?"), lit(" }")}},
		{"open brace inside token", "{ {_}", []Segment{lit(""), tok(" {_"), lit("")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := collect(tt.tpl)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScanUnclosed(t *testing.T) {
	got, err := collect("SELECT * FROM {_")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnclosedToken)
	assert.Equal(t, []Segment{lit("SELECT * FROM ")}, got)

	var te *Error
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "{_", te.Token)
	assert.Contains(t, te.Detail, "offset 14")
}

func TestScanStopsAfterEnd(t *testing.T) {
	sc := Scan("x")
	_, ok := sc.Next()
	require.True(t, ok)
	_, ok = sc.Next()
	assert.False(t, ok)
	_, ok = sc.Next()
	assert.False(t, ok)
	assert.NoError(t, sc.Err())
}

func TestValidate(t *testing.T) {
	n, err := Validate("a = {?} AND b IN ({?+})")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = Validate("no tokens")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = Validate("a = {?")
	assert.ErrorIs(t, err, ErrUnclosedToken)
}

func TestLookup(t *testing.T) {
	for _, want := range Tokens() {
		got, ok := Lookup(want.String()[1 : len(want.String())-1])
		require.True(t, ok, want.String())
		assert.Equal(t, want, got)
	}

	_, ok := Lookup("!")
	assert.False(t, ok)
	assert.Equal(t, "Token(9)", Token(9).String())
}

package template

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Arg is a template argument: either a Scalar or a List. The set of
// implementations is closed.
type Arg interface {
	isArg()
}

type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Scalar is a single string, integer, float, boolean or null value.
type Scalar struct {
	kind Kind
	str  string
	num  int64
	flt  float64
	bit  bool
}

func (Scalar) isArg() {}

func String(s string) Scalar { return Scalar{kind: KindString, str: s} }

func Int(i int64) Scalar { return Scalar{kind: KindInt, num: i} }

func Float(f float64) Scalar { return Scalar{kind: KindFloat, flt: f} }

func Bool(b bool) Scalar { return Scalar{kind: KindBool, bit: b} }

func Null() Scalar { return Scalar{} }

func (v Scalar) Kind() Kind {
	return v.kind
}

// Text returns the string held by v, or false if v is not a string.
func (v Scalar) Text() (string, bool) {
	return v.str, v.kind == KindString
}

// Value returns the native Go value bound for v: nil, string, int64,
// float64 or bool.
func (v Scalar) Value() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindFloat:
		return v.flt
	case KindBool:
		return v.bit
	}
	return nil
}

func (v Scalar) GoString() string {
	if v.kind == KindNull {
		return "null"
	}
	return fmt.Sprintf("%s(%#v)", v.kind, v.Value())
}

// List is an ordered sequence of scalars.
type List []Scalar

func (List) isArg() {}

// Names builds a List of strings, typically identifiers for `{_+}`.
func Names(names ...string) List {
	l := make(List, len(names))
	for i, n := range names {
		l[i] = String(n)
	}
	return l
}

// Ints builds a List of integers.
func Ints(values ...int64) List {
	l := make(List, len(values))
	for i, v := range values {
		l[i] = Int(v)
	}
	return l
}

// Values lifts each value into a Scalar.
func Values(values ...any) (List, error) {
	l := make(List, len(values))
	for i, v := range values {
		s, err := scalarOf(v)
		if err != nil {
			return nil, failElem(ErrInvalidParameterList, i, err)
		}
		l[i] = s
	}
	return l, nil
}

func (l List) GoString() string {
	parts := make([]string, len(l))
	for i, s := range l {
		parts[i] = s.GoString()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

var valuerType = reflect.TypeFor[driver.Valuer]()

// Lift converts an ordinary Go value into an Arg. Slices and arrays become
// a List, everything else must be a scalar. Byte slices and arrays, named or
// not, are binary values and rejected. Typed nil pointers and
// driver.Valuer implementations that yield nil become Null. Maps, structs,
// channels, functions and nested slices are rejected with
// ErrInvalidParameter, or ErrInvalidParameterList for a bad list element.
func Lift(v any) (Arg, error) {
	switch a := v.(type) {
	case Scalar:
		return a, nil
	case List:
		return a, nil
	case []string:
		return Names(a...), nil
	case []byte:
		return nil, fail(ErrInvalidParameter, "binary values are not supported")
	case driver.Valuer:
		return scalarOf(a)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, fail(ErrInvalidParameter, "binary values are not supported")
		}
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return List{}, nil
		}
		l := make(List, rv.Len())
		for i := range l {
			s, err := scalarOf(rv.Index(i).Interface())
			if err != nil {
				return nil, failElem(ErrInvalidParameterList, i, err)
			}
			l[i] = s
		}
		return l, nil
	}
	return scalarOf(v)
}

// MustLift is Lift for values known to be valid, such as literals in tests
// and static builder clauses.
func MustLift(v any) Arg {
	a, err := Lift(v)
	if err != nil {
		panic(err)
	}
	return a
}

func scalarOf(v any) (Scalar, error) {
	if v == nil {
		return Null(), nil
	}
	if s, ok := v.(Scalar); ok {
		return s, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().Implements(valuerType) {
		if rv.Kind() == reflect.Pointer && rv.IsNil() {
			return Null(), nil
		}
		inner, err := v.(driver.Valuer).Value()
		if err != nil {
			return Scalar{}, fail(ErrInvalidParameter, err.Error())
		}
		if _, again := inner.(driver.Valuer); again {
			return Scalar{}, fail(ErrInvalidParameter, fmt.Sprintf("%T yields another driver.Valuer", v))
		}
		return scalarOf(inner)
	}

	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return Null(), nil
		}
		return scalarOf(rv.Elem().Interface())
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Scalar{}, fail(ErrInvalidParameter, fmt.Sprintf("%d overflows int64", u))
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	}
	return Scalar{}, fail(ErrInvalidParameter, fmt.Sprintf("unsupported type %T", v))
}

func describe(a Arg) string {
	switch v := a.(type) {
	case nil:
		return "no value"
	case Scalar:
		return v.GoString()
	case List:
		return "list of " + strconv.Itoa(len(v))
	}
	return fmt.Sprintf("%T", a)
}

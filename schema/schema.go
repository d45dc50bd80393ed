// Package schema maps Go structs to table and column names for the insert
// and update helpers of the layman facade.
package schema

import (
	"reflect"
)

var defaultSchema = New()

// TableName returns the table of v using the default naming strategy.
func TableName(v any) (string, error) {
	return defaultSchema.TableName(v)
}

// Columns returns the columns of v and their values, in field order.
func Columns(v any) ([]string, []any, error) {
	return defaultSchema.Columns(v)
}

// InsertValues prepares v for an INSERT with the default schema.
func InsertValues(v any) (string, map[string]any, error) {
	return defaultSchema.InsertValues(v)
}

func (s *Schema) TableName(v any) (string, error) {
	m, err := s.Inspect(v)
	if err != nil {
		return "", err
	}
	return m.Table, nil
}

func (s *Schema) Columns(v any) ([]string, []any, error) {
	m, err := s.Inspect(v)
	if err != nil {
		return nil, nil, err
	}
	rv := structValue(v)
	values := make([]any, len(m.Fields))
	for i, f := range m.Fields {
		values[i] = fieldValue(rv, f)
	}
	return m.Columns(), values, nil
}

// InsertValues returns the table of v and the column values to insert.
// Zero fields tagged auto are left out. Zero fields with a generator are
// filled in place, which needs v to be a pointer.
func (s *Schema) InsertValues(v any) (string, map[string]any, error) {
	m, err := s.Inspect(v)
	if err != nil {
		return "", nil, err
	}
	rv := structValue(v)
	values := make(map[string]any, len(m.Fields))
	for _, f := range m.Fields {
		fv, ok := field(rv, f)
		switch {
		case f.Tag.Auto && (!ok || fv.IsZero()):
			continue
		case f.Tag.Generator != "" && ok && fv.IsZero():
			if !fv.CanSet() {
				return "", nil, ErrNotAddressable
			}
			id, err := s.generators[f.Tag.Generator].Generate()
			if err != nil {
				return "", nil, err
			}
			fv.SetString(id)
		}
		values[f.Tag.Column] = fieldValue(rv, f)
	}
	return m.Table, values, nil
}

func structValue(v any) reflect.Value {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

// field resolves f in rv. It reports false when a nil embedded pointer
// sits on the path.
func field(rv reflect.Value, f Field) (reflect.Value, bool) {
	if !rv.IsValid() {
		return reflect.Value{}, false
	}
	v, err := rv.FieldByIndexErr(f.index)
	if err != nil {
		return reflect.Value{}, false
	}
	return v, true
}

func fieldValue(rv reflect.Value, f Field) any {
	v, ok := field(rv, f)
	if !ok {
		return nil
	}
	return v.Interface()
}

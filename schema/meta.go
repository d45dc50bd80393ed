package schema

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	ErrNotStruct        = errors.New("schema: model must be a struct or a pointer to one")
	ErrNotAddressable   = errors.New("schema: generated values need a pointer to the model")
	ErrUnknownGenerator = errors.New("schema: unknown generator")
)

// Model is the table mapping of one struct type.
type Model struct {
	Type   reflect.Type
	Table  string
	Fields []Field
}

// Field maps one struct field to a column.
type Field struct {
	Name  string
	Tag   Tag
	index []int
}

// Schema derives models from struct types and caches them per type.
type Schema struct {
	naming     NamingStrategy
	tagName    string
	generators Generators
	models     sync.Map // reflect.Type -> *Model
}

type Option func(*Schema)

func WithNamingStrategy(n NamingStrategy) Option {
	return func(s *Schema) { s.naming = n }
}

// WithTagName reads column options from a tag other than `db`.
func WithTagName(name string) Option {
	return func(s *Schema) { s.tagName = name }
}

func WithGenerators(g Generators) Option {
	return func(s *Schema) { s.generators = g }
}

func New(opts ...Option) *Schema {
	s := &Schema{
		naming:     DefaultNamingStrategy(),
		tagName:    "db",
		generators: DefaultGenerators(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var tablerType = reflect.TypeFor[Tabler]()

// Inspect returns the model of v's type.
func (s *Schema) Inspect(v any) (*Model, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w, got %T", ErrNotStruct, v)
	}
	if m, ok := s.models.Load(t); ok {
		return m.(*Model), nil
	}

	m, err := s.build(t)
	if err != nil {
		return nil, err
	}
	actual, _ := s.models.LoadOrStore(t, m)
	return actual.(*Model), nil
}

func (s *Schema) build(t reflect.Type) (*Model, error) {
	m := &Model{Type: t, Table: s.naming.TableName(t.Name())}
	switch {
	case t.Implements(tablerType):
		m.Table = reflect.Zero(t).Interface().(Tabler).TableName()
	case reflect.PointerTo(t).Implements(tablerType):
		m.Table = reflect.New(t).Interface().(Tabler).TableName()
	}

	if err := s.collect(t, nil, &m.Fields); err != nil {
		return nil, fmt.Errorf("schema: %s: %w", t.Name(), err)
	}
	return m, nil
}

// collect appends the fields of t, flattening embedded structs.
func (s *Schema) collect(t reflect.Type, parent []int, out *[]Field) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		index := append(parent[:len(parent):len(parent)], i)
		raw, tagged := f.Tag.Lookup(s.tagName)

		if f.Anonymous && !tagged && f.Type.Kind() == reflect.Struct {
			if err := s.collect(f.Type, index, out); err != nil {
				return err
			}
			continue
		}
		if !f.IsExported() {
			continue
		}

		tag, err := parseTag(f.Name, raw, s.naming)
		if err != nil {
			return err
		}
		if tag.Skip {
			continue
		}
		if tag.Generator != "" {
			if _, ok := s.generators[tag.Generator]; !ok {
				return fmt.Errorf("%w %q on field %s", ErrUnknownGenerator, tag.Generator, f.Name)
			}
			if f.Type.Kind() != reflect.String {
				return fmt.Errorf("field %s: generator %q needs a string field", f.Name, tag.Generator)
			}
		}
		*out = append(*out, Field{Name: f.Name, Tag: tag, index: index})
	}
	return nil
}

// Columns returns the column names in field order.
func (m *Model) Columns() []string {
	cols := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		cols[i] = f.Tag.Column
	}
	return cols
}

// Primary returns the primary key field, if one is tagged.
func (m *Model) Primary() (Field, bool) {
	for _, f := range m.Fields {
		if f.Tag.Primary {
			return f, true
		}
	}
	return Field{}, false
}

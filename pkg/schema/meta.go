package schema

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

const tagKey = "mpapi"

// ErrValidation is returned when a document does not satisfy its schema.
var ErrValidation = errors.New("schema: validation failed")

// Kind classifies a document field for query generation.
type Kind string

// Field kinds.
const (
	KindString  Kind = "string"
	KindNumeric Kind = "numeric"
	KindBool    Kind = "bool"
	KindEnum    Kind = "enum"
	KindList    Kind = "list"
	KindObject  Kind = "object"
)

// FieldInfo describes one top-level field of a document.
type FieldInfo struct {
	Name     string
	Kind     Kind
	Required bool
	index    []int
}

// Meta holds parsed struct tag metadata of a document type.
type Meta struct {
	typ    reflect.Type
	key    string
	fields []FieldInfo
	byName map[string]int
}

var metaCache sync.Map // reflect.Type -> *Meta

var enumType = reflect.TypeFor[Enum]()

// Describe reflects on T and returns its field metadata.
func Describe[T any]() (*Meta, error) {
	return DescribeType(reflect.TypeFor[T]())
}

// MustDescribe is Describe that panics on malformed document types.
func MustDescribe[T any]() *Meta {
	m, err := Describe[T]()
	if err != nil {
		panic(err)
	}
	return m
}

// DescribeType is Describe for a reflect.Type.
func DescribeType(t reflect.Type) (*Meta, error) {
	if t == nil {
		return nil, errors.New("schema: nil type")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if cached, ok := metaCache.Load(t); ok {
		return cached.(*Meta), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: type %s is not a struct", t)
	}

	m := &Meta{typ: t, byName: make(map[string]int)}
	if err := m.collect(t, nil); err != nil {
		return nil, err
	}
	metaCache.Store(t, m)
	return m, nil
}

func (m *Meta) collect(t reflect.Type, prefix []int) error {
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		index := append(slices.Clone(prefix), i)

		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if err := m.collect(ft, index); err != nil {
					return err
				}
				continue
			}
		}
		if name == "" {
			name = f.Name
		}
		if _, dup := m.byName[name]; dup {
			return fmt.Errorf("schema: duplicate field %q in %s", name, m.typ)
		}

		if err := m.applyTag(f, name); err != nil {
			return err
		}

		m.byName[name] = len(m.fields)
		m.fields = append(m.fields, FieldInfo{
			Name:     name,
			Kind:     kindOf(f.Type),
			Required: f.Tag.Get("validate") == "required",
			index:    index,
		})
	}
	return nil
}

// applyTag processes a single struct field's mpapi tag.
func (m *Meta) applyTag(f reflect.StructField, name string) error {
	tag := f.Tag.Get(tagKey)
	switch tag {
	case "":
	case "key":
		if m.key != "" {
			return fmt.Errorf("schema: duplicate key tag on field %s", f.Name)
		}
		m.key = name
	default:
		return fmt.Errorf("schema: unknown modifier %q on field %s", tag, f.Name)
	}
	return nil
}

func kindOf(t reflect.Type) Kind {
	if t.Implements(enumType) {
		return KindEnum
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindNumeric
	case reflect.Bool:
		return KindBool
	case reflect.String:
		return KindString
	case reflect.Slice, reflect.Array:
		return KindList
	default:
		return KindObject
	}
}

// Key returns the json name of the primary key field, or "" if none is tagged.
func (m *Meta) Key() string { return m.key }

// Fields returns the json names of all fields in declaration order.
func (m *Meta) Fields() []string {
	names := make([]string, len(m.fields))
	for i, f := range m.fields {
		names[i] = f.Name
	}
	return names
}

// FieldsOfKind returns the json names of fields of kind k.
func (m *Meta) FieldsOfKind(k Kind) []string {
	var names []string
	for _, f := range m.fields {
		if f.Kind == k {
			names = append(names, f.Name)
		}
	}
	return names
}

// Has reports whether name is a top-level field.
func (m *Meta) Has(name string) bool {
	_, ok := m.byName[name]
	return ok
}

// Field returns the metadata of a named field.
func (m *Meta) Field(name string) (FieldInfo, bool) {
	i, ok := m.byName[name]
	if !ok {
		return FieldInfo{}, false
	}
	return m.fields[i], true
}

// Validate checks required fields and enum membership of doc.
// Only the named fields are checked; nil means every field.
func (m *Meta) Validate(doc any, fields []string) error {
	v := reflect.ValueOf(doc)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return fmt.Errorf("%w: nil document", ErrValidation)
		}
		v = v.Elem()
	}
	if v.Type() != m.typ {
		return fmt.Errorf("%w: expected %s, got %s", ErrValidation, m.typ, v.Type())
	}

	for _, f := range m.fields {
		if fields != nil && !slices.Contains(fields, f.Name) {
			continue
		}
		fv := v.FieldByIndex(f.index)
		if f.Required && fv.IsZero() {
			return fmt.Errorf("%w: field %q is required", ErrValidation, f.Name)
		}
		if err := validateEnums(fv, f.Name); err != nil {
			return err
		}
	}
	return nil
}

func validateEnums(v reflect.Value, name string) error {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return validateEnums(v.Elem(), name)
	case reflect.Slice, reflect.Array:
		if !v.Type().Elem().Implements(enumType) {
			return nil
		}
		for i := range v.Len() {
			if err := validateEnums(v.Index(i), name); err != nil {
				return err
			}
		}
		return nil
	case reflect.String:
		if e, ok := v.Interface().(Enum); ok && !e.Valid() {
			return fmt.Errorf("%w: field %q has invalid value %q", ErrValidation, name, v.String())
		}
	}
	return nil
}

// Fields returns the json field names of T in declaration order.
func Fields[T any]() []string {
	return MustDescribe[T]().Fields()
}

// PrimaryKey returns the json name of T's primary key field.
func PrimaryKey[T any]() string {
	return MustDescribe[T]().Key()
}

// Validate checks doc against its type's schema. fields limits the check to
// the projected fields; nil checks every field.
func Validate(doc any, fields []string) error {
	m, err := DescribeType(reflect.TypeOf(doc))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return m.Validate(doc, fields)
}

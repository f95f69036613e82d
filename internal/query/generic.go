package query

import (
	"net/url"
	"slices"

	"github.com/kailas-cloud/mpapi/internal/domain"
	"github.com/kailas-cloud/mpapi/pkg/schema"
)

// NumericField maps a parameter base name to a document field.
type NumericField struct {
	Param string
	Field string
}

// Numeric reads <param>_min and <param>_max range bounds for a set of fields.
type Numeric struct {
	fields []NumericField
}

// NewNumeric creates a range operator over fields named the same in the
// query and the store.
func NewNumeric(fields ...string) *Numeric {
	n := &Numeric{}
	for _, f := range fields {
		n.fields = append(n.fields, NumericField{Param: f, Field: f})
	}
	return n
}

// NumericFor derives a range operator from the numeric fields of T,
// skipping the excluded names.
func NumericFor[T any](exclude ...string) *Numeric {
	var fields []string
	for _, f := range schema.MustDescribe[T]().FieldsOfKind(schema.KindNumeric) {
		if !slices.Contains(exclude, f) {
			fields = append(fields, f)
		}
	}
	return NewNumeric(fields...)
}

// NumericUnder derives a range operator from the numeric fields of T stored
// as a sub-document at prefix. Parameters keep the bare field names.
func NumericUnder[T any](prefix string, exclude ...string) *Numeric {
	n := &Numeric{}
	for _, f := range schema.MustDescribe[T]().FieldsOfKind(schema.KindNumeric) {
		if !slices.Contains(exclude, f) {
			n.fields = append(n.fields, NumericField{Param: f, Field: prefix + "." + f})
		}
	}
	return n
}

// WithAlias adds a range over field read from a differently named parameter.
func (n *Numeric) WithAlias(param, field string) *Numeric {
	n.fields = append(n.fields, NumericField{Param: param, Field: field})
	return n
}

// Params implements Operator.
func (n *Numeric) Params() []string {
	out := make([]string, 0, 2*len(n.fields))
	for _, f := range n.fields {
		out = append(out, f.Param+"_min", f.Param+"_max")
	}
	return out
}

// Query implements Operator.
func (n *Numeric) Query(params url.Values) (domain.StoreParams, error) {
	crit := domain.Criteria{}
	for _, f := range n.fields {
		r, err := rangeCriteria(params, f.Param+"_min", f.Param+"_max")
		if err != nil {
			return domain.StoreParams{}, err
		}
		if r != nil {
			crit[f.Field] = r
		}
	}
	return criteria(crit), nil
}

// Bool matches a field exactly against a boolean parameter.
type Bool struct {
	param string
	field string
}

// NewBool creates a boolean operator. An empty field defaults to param.
func NewBool(param, field string) *Bool {
	if field == "" {
		field = param
	}
	return &Bool{param: param, field: field}
}

// Params implements Operator.
func (b *Bool) Params() []string { return []string{b.param} }

// Query implements Operator.
func (b *Bool) Query(params url.Values) (domain.StoreParams, error) {
	v, ok, err := boolParam(params, b.param)
	if err != nil || !ok {
		return domain.StoreParams{}, err
	}
	return criteria(domain.Criteria{b.field: v}), nil
}

// Match selects how a string parameter is compared against its field.
type Match int

// Match modes.
const (
	MatchEqual Match = iota
	MatchIn
	MatchAll
)

// String compares a string parameter with a field.
type String struct {
	param    string
	field    string
	mode     Match
	valid    func(string) bool
	required bool
}

// NewEqual matches field equal to the parameter value.
func NewEqual(param, field string) *String { return newString(param, field, MatchEqual) }

// NewIn matches field against any of a comma-separated list.
func NewIn(param, field string) *String { return newString(param, field, MatchIn) }

// NewAll matches a list field containing every listed value.
func NewAll(param, field string) *String { return newString(param, field, MatchAll) }

func newString(param, field string, mode Match) *String {
	if field == "" {
		field = param
	}
	return &String{param: param, field: field, mode: mode}
}

// Enum restricts the accepted values to members of an enum type.
func Enum[E interface {
	~string
	schema.Enum
}](s *String) *String {
	s.valid = func(v string) bool { return E(v).Valid() }
	return s
}

// Required makes the parameter mandatory.
func (s *String) Required() *String {
	s.required = true
	return s
}

// Params implements Operator.
func (s *String) Params() []string { return []string{s.param} }

// Query implements Operator.
func (s *String) Query(params url.Values) (domain.StoreParams, error) {
	var values []string
	if s.mode == MatchEqual {
		if v, ok := stringParam(params, s.param); ok {
			values = []string{v}
		}
	} else {
		values = listParam(params, s.param)
	}
	if len(values) == 0 {
		if s.required {
			return domain.StoreParams{}, domain.NewQueryError(s.param, "field required")
		}
		return domain.StoreParams{}, nil
	}
	if s.valid != nil {
		for _, v := range values {
			if !s.valid(v) {
				return domain.StoreParams{}, domain.NewQueryError(s.param, "%s is not a permitted value", v)
			}
		}
	}

	switch s.mode {
	case MatchIn:
		return criteria(domain.Criteria{s.field: map[string]any{"$in": values}}), nil
	case MatchAll:
		return criteria(domain.Criteria{s.field: map[string]any{"$all": values}}), nil
	default:
		return criteria(domain.Criteria{s.field: values[0]}), nil
	}
}

// Indexes implements Indexer.
func (s *String) Indexes() []domain.Index { return indexes(s.field) }

// HasProps matches documents having every listed property.
func HasProps() *String { return Enum[schema.HasProps](NewAll("has_props", "has_props")) }

// Magnetic matches the magnetic ordering.
func Magnetic() *String { return Enum[schema.Ordering](NewEqual("ordering", "ordering")) }

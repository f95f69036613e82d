package query

import (
	"net/url"
	"slices"
	"strings"

	"github.com/kailas-cloud/mpapi/internal/domain"
)

// Default page sizes.
const (
	DefaultLimit = 10
	MaxLimit     = 1000
)

// Pagination reads skip and limit.
type Pagination struct {
	defaultLimit int
	maxLimit     int
}

// NewPagination creates a pagination operator. Non-positive arguments fall
// back to DefaultLimit and MaxLimit.
func NewPagination(defaultLimit, maxLimit int) *Pagination {
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if defaultLimit <= 0 {
		defaultLimit = min(DefaultLimit, maxLimit)
	}
	return &Pagination{defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// Params implements Operator.
func (p *Pagination) Params() []string { return []string{"skip", "_skip", "limit", "_limit"} }

// Query implements Operator.
func (p *Pagination) Query(params url.Values) (domain.StoreParams, error) {
	skipName := firstSet(params, "skip", "_skip")
	skip, _, err := intParam(params, skipName)
	if err != nil {
		return domain.StoreParams{}, err
	}
	if skip < 0 {
		return domain.StoreParams{}, domain.NewQueryError(skipName, "must be greater than or equal to 0")
	}

	name := firstSet(params, "limit", "_limit")
	limit, ok, err := intParam(params, name)
	if err != nil {
		return domain.StoreParams{}, err
	}
	if !ok {
		limit = p.defaultLimit
	}
	if limit <= 0 || limit > p.maxLimit {
		return domain.StoreParams{}, domain.NewQueryError(name,
			"requested limit %d is outside the allowed range 1 to %d", limit, p.maxLimit)
	}
	return domain.StoreParams{Skip: skip, Limit: limit}, nil
}

// Meta implements MetaProvider.
func (p *Pagination) Meta() map[string]any { return map[string]any{"max_limit": p.maxLimit} }

// SparseFields reads the fields projection.
type SparseFields struct {
	available []string
	defaults  []string
}

// NewSparseFields creates a projection operator over the available model
// fields. defaults is returned when no fields are requested.
func NewSparseFields(available, defaults []string) *SparseFields {
	return &SparseFields{available: available, defaults: defaults}
}

// Params implements Operator.
func (s *SparseFields) Params() []string {
	return []string{"fields", "_fields", "all_fields", "_all_fields"}
}

// Query implements Operator.
func (s *SparseFields) Query(params url.Values) (domain.StoreParams, error) {
	all, _, err := boolParam(params, firstSet(params, "all_fields", "_all_fields"))
	if err != nil {
		return domain.StoreParams{}, err
	}
	if all {
		return domain.StoreParams{Properties: slices.Clone(s.available)}, nil
	}

	name := firstSet(params, "fields", "_fields")
	requested := listParam(params, name)
	if len(requested) == 0 {
		return domain.StoreParams{Properties: slices.Clone(s.defaults)}, nil
	}
	for _, f := range requested {
		if !s.allowed(f) {
			return domain.StoreParams{}, domain.NewQueryError(name,
				"%s is not a valid field; available fields are %s", f, strings.Join(s.available, ", "))
		}
	}
	return domain.StoreParams{Properties: requested}, nil
}

func (s *SparseFields) allowed(field string) bool {
	root, _, _ := strings.Cut(field, ".")
	return slices.Contains(s.available, root)
}

// Meta implements MetaProvider.
func (s *SparseFields) Meta() map[string]any {
	return map[string]any{"default_fields": slices.Clone(s.defaults)}
}

// Available returns the fields that may be projected.
func (s *SparseFields) Available() []string { return slices.Clone(s.available) }

// Sort reads sort_fields, or the legacy field and ascending pair.
type Sort struct {
	fields []string
}

// NewSort creates a sort operator. fields restricts the sortable fields;
// empty allows any field.
func NewSort(fields ...string) *Sort { return &Sort{fields: fields} }

// Params implements Operator.
func (s *Sort) Params() []string {
	return []string{"sort_fields", "_sort_fields", "field", "ascending"}
}

// Query implements Operator.
func (s *Sort) Query(params url.Values) (domain.StoreParams, error) {
	name := firstSet(params, "sort_fields", "_sort_fields")
	if fields := listParam(params, name); len(fields) > 0 {
		sort := make([]domain.SortField, 0, len(fields))
		for _, f := range fields {
			desc := strings.HasPrefix(f, "-")
			f = strings.TrimPrefix(f, "-")
			if err := s.check(name, f); err != nil {
				return domain.StoreParams{}, err
			}
			sort = append(sort, domain.SortField{Field: f, Descending: desc})
		}
		return domain.StoreParams{Sort: sort}, nil
	}

	field, hasField := stringParam(params, "field")
	asc, hasAsc, err := boolParam(params, "ascending")
	if err != nil {
		return domain.StoreParams{}, err
	}
	if hasField != hasAsc {
		return domain.StoreParams{}, domain.NewQueryError("field",
			"must specify both a field and order for sorting")
	}
	if !hasField {
		return domain.StoreParams{}, nil
	}
	if err := s.check("field", field); err != nil {
		return domain.StoreParams{}, err
	}
	return domain.StoreParams{Sort: []domain.SortField{{Field: field, Descending: !asc}}}, nil
}

func (s *Sort) check(param, field string) error {
	if field == "" {
		return domain.NewQueryError(param, "empty sort field")
	}
	if len(s.fields) > 0 && !slices.Contains(s.fields, field) {
		return domain.NewQueryError(param, "%s is not a sortable field", field)
	}
	return nil
}

func firstSet(params url.Values, names ...string) string {
	for _, n := range names {
		if params.Has(n) {
			return n
		}
	}
	return names[0]
}

package mpapi

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Query holds the filter parameters of a search. Values are encoded the way
// the API expects them: slices comma-joined, bools lowercase, times RFC 3339.
// Nil values and empty slices are dropped.
type Query map[string]any

// Set stores v under name and returns q for chaining.
func (q Query) Set(name string, v any) Query {
	q[name] = v
	return q
}

// SetRange stores the bounds of r as name_min and name_max.
func (q Query) SetRange(name string, r Range) Query {
	if r.min != nil {
		q[name+"_min"] = *r.min
	}
	if r.max != nil {
		q[name+"_max"] = *r.max
	}
	return q
}

// Encode renders q as URL parameters.
func (q Query) Encode() (url.Values, error) {
	out := make(url.Values, len(q))
	for name, v := range q {
		s, ok, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("mpapi: parameter %s: %w", name, err)
		}
		if ok {
			out.Set(name, s)
		}
	}
	return out, nil
}

func encodeValue(v any) (string, bool, error) {
	switch x := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return x, x != "", nil
	case bool:
		return strconv.FormatBool(x), true, nil
	case int:
		return strconv.Itoa(x), true, nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true, nil
	case time.Time:
		return x.UTC().Format(time.RFC3339), true, nil
	case fmt.Stringer:
		return x.String(), true, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "", false, nil
		}
		return encodeValue(rv.Elem().Interface())
	case reflect.String:
		return rv.String(), rv.Len() > 0, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true, nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), true, nil
	case reflect.Slice, reflect.Array:
		parts := make([]string, 0, rv.Len())
		for i := range rv.Len() {
			s, ok, err := encodeValue(rv.Index(i).Interface())
			if err != nil {
				return "", false, err
			}
			if ok {
				parts = append(parts, strings.TrimSpace(s))
			}
		}
		return strings.Join(parts, ","), len(parts) > 0, nil
	}
	return "", false, fmt.Errorf("unsupported value type %T", v)
}

// Range is an inclusive numeric interval. Either bound may be open.
type Range struct {
	min, max *float64
}

// Between is the closed interval [lo, hi].
func Between(lo, hi float64) Range { return Range{min: &lo, max: &hi} }

// AtLeast is the interval [lo, ∞).
func AtLeast(lo float64) Range { return Range{min: &lo} }

// AtMost is the interval (-∞, hi].
func AtMost(hi float64) Range { return Range{max: &hi} }

// Exactly is the interval [v, v].
func Exactly(v float64) Range { return Between(v, v) }

// IsZero reports whether neither bound is set.
func (r Range) IsZero() bool { return r.min == nil && r.max == nil }

// SearchOption tunes a single search.
type SearchOption func(*searchConfig)

type searchConfig struct {
	fields     []string
	allFields  bool
	sortFields []string
	chunkSize  int
	numChunks  int
	chunksSet  bool
}

// Fields limits the returned fields. It turns off AllFields.
func Fields(names ...string) SearchOption {
	return func(c *searchConfig) { c.fields = names }
}

// AllFields requests every field when no Fields are given. Default: true.
// With false the route's default fields are returned.
func AllFields(all bool) SearchOption {
	return func(c *searchConfig) { c.allFields = all }
}

// SortFields orders results. A leading '-' sorts descending.
func SortFields(names ...string) SearchOption {
	return func(c *searchConfig) { c.sortFields = names }
}

// ChunkSize sets the number of documents per request. Default: 1000.
func ChunkSize(n int) SearchOption {
	return func(c *searchConfig) { c.chunkSize = n }
}

// NumChunks caps the number of chunks retrieved. Default: all.
func NumChunks(n int) SearchOption {
	return func(c *searchConfig) {
		c.numChunks = n
		c.chunksSet = true
	}
}

var idPattern = regexp.MustCompile(`^[a-z]+-\d+$`)

// ValidateIDs normalizes material and task ids such as "mp-149" and rejects
// malformed ones or lists longer than MaxIDListLength.
func ValidateIDs(ids []string) ([]string, error) {
	if len(ids) > MaxIDListLength {
		return nil, fmt.Errorf("%w: list of %d ids is too long; remove the id filter and filter locally",
			ErrInvalidID, len(ids))
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		norm := strings.ToLower(strings.TrimSpace(id))
		if !idPattern.MatchString(norm) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
		out[i] = norm
	}
	return out, nil
}

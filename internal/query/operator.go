// Package query turns request parameters into store params.
//
// Each operator owns a fixed set of query parameters. A resource runs every
// operator it was built with and merges their outputs with domain.Merge.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/kailas-cloud/mpapi/internal/domain"
)

// Operator converts request parameters into store params.
type Operator interface {
	// Params lists the query parameters the operator reads.
	Params() []string
	Query(params url.Values) (domain.StoreParams, error)
}

// PostProcessor rewrites the documents returned by the store.
// The returned meta is merged into the response meta.
type PostProcessor interface {
	PostProcess(docs []domain.Document, params url.Values) ([]domain.Document, map[string]any, error)
}

// MetaProvider contributes static response meta.
type MetaProvider interface {
	Meta() map[string]any
}

// Indexer lists the indexes an operator expects on its collection.
type Indexer interface {
	Indexes() []domain.Index
}

// Submitter builds the document a POST request writes.
type Submitter interface {
	Params() []string
	Document(params url.Values, body []byte) (domain.Document, error)
}

// Func adapts a plain function to the Operator interface.
type Func struct {
	Names []string
	Fn    func(params url.Values) (domain.StoreParams, error)
}

// Params implements Operator.
func (f Func) Params() []string { return f.Names }

// Query implements Operator.
func (f Func) Query(params url.Values) (domain.StoreParams, error) { return f.Fn(params) }

func criteria(c domain.Criteria) domain.StoreParams {
	return domain.StoreParams{Criteria: c}
}

// stringParam returns the trimmed value of a parameter and whether it was set.
func stringParam(params url.Values, name string) (string, bool) {
	if !params.Has(name) {
		return "", false
	}
	v := strings.TrimSpace(params.Get(name))
	return v, v != ""
}

// listParam splits a comma-separated parameter, dropping blanks.
func listParam(params url.Values, name string) []string {
	raw, ok := stringParam(params, name)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func intParam(params url.Values, name string) (int, bool, error) {
	raw, ok := stringParam(params, name)
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, domain.NewQueryError(name, "value is not a valid integer")
	}
	return v, true, nil
}

func floatParam(params url.Values, name string) (float64, bool, error) {
	raw, ok := stringParam(params, name)
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, domain.NewQueryError(name, "value is not a valid float")
	}
	return v, true, nil
}

func boolParam(params url.Values, name string) (bool, bool, error) {
	raw, ok := stringParam(params, name)
	if !ok {
		return false, false, nil
	}
	switch strings.ToLower(raw) {
	case "true", "1", "yes", "on":
		return true, true, nil
	case "false", "0", "no", "off":
		return false, true, nil
	}
	return false, false, domain.NewQueryError(name, "value could not be parsed to a boolean")
}

// rangeCriteria builds a $gte/$lte map, or nil if neither bound is set.
func rangeCriteria(params url.Values, minName, maxName string) (map[string]any, error) {
	out := map[string]any{}
	lo, ok, err := floatParam(params, minName)
	if err != nil {
		return nil, err
	}
	if ok {
		out["$gte"] = lo
	}
	hi, ok, err := floatParam(params, maxName)
	if err != nil {
		return nil, err
	}
	if ok {
		out["$lte"] = hi
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func indexes(keys ...string) []domain.Index {
	out := make([]domain.Index, len(keys))
	for i, k := range keys {
		out[i] = domain.Index{Key: k}
	}
	return out
}

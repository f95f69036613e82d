package domain

import (
	"maps"
	"slices"
)

// Document is a raw stored document keyed by field name.
type Document = map[string]any

// Criteria is a Mongo-style filter: field paths mapped to values or operator maps.
type Criteria map[string]any

// Hint names the index a query should use. Keys are index paths, values the direction.
type Hint map[string]int

// IsEmpty reports whether no hint is suggested.
func (h Hint) IsEmpty() bool { return len(h) == 0 }

// SortField orders results by a single field.
type SortField struct {
	Field      string
	Descending bool
}

// Index describes an index an operator expects on its collection.
type Index struct {
	Key    string
	Unique bool
}

// Stage is a single aggregation pipeline stage.
type Stage = map[string]any

// StoreParams is the store-facing form of a parsed request.
// Properties nil means no projection.
type StoreParams struct {
	Criteria   Criteria
	Properties []string
	Sort       []SortField
	Skip       int
	Limit      int
	Hint       Hint
	Pipeline   []Stage
}

// Merge combines the outputs of several operators into one set of store params.
// Criteria are unioned key-wise and operator maps on the same key are merged;
// properties are unioned in order; the remaining fields take the last non-zero value.
func Merge(params ...StoreParams) StoreParams {
	out := StoreParams{Criteria: Criteria{}}
	seen := map[string]bool{}
	for _, p := range params {
		for k, v := range p.Criteria {
			out.Criteria[k] = mergeValue(out.Criteria[k], v)
		}
		if p.Properties != nil {
			if out.Properties == nil {
				out.Properties = []string{}
			}
			for _, f := range p.Properties {
				if !seen[f] {
					seen[f] = true
					out.Properties = append(out.Properties, f)
				}
			}
		}
		if len(p.Sort) > 0 {
			out.Sort = slices.Clone(p.Sort)
		}
		if p.Skip != 0 {
			out.Skip = p.Skip
		}
		if p.Limit != 0 {
			out.Limit = p.Limit
		}
		if !p.Hint.IsEmpty() {
			out.Hint = maps.Clone(p.Hint)
		}
		if len(p.Pipeline) > 0 {
			out.Pipeline = p.Pipeline
		}
	}
	return out
}

func mergeValue(prev, next any) any {
	pm, ok1 := prev.(map[string]any)
	nm, ok2 := next.(map[string]any)
	if !ok1 || !ok2 {
		return next
	}
	merged := maps.Clone(pm)
	maps.Copy(merged, nm)
	return merged
}

// Package hint suggests index hints from the shape of query criteria.
package hint

import (
	"maps"
	"slices"
	"strings"

	"github.com/kailas-cloud/mpapi/internal/domain"
)

// Scheme picks an index hint for a criteria map.
type Scheme interface {
	Hint(criteria domain.Criteria) domain.Hint
}

// Rule maps criteria keys containing Key to the index hint.
type Rule struct {
	Key  string
	Hint domain.Hint
}

// FullScan is the hint suggested for empty criteria.
var FullScan = domain.Hint{"_id": 1}

// RuleScheme checks rules in order and returns the first match.
type RuleScheme struct {
	rules []Rule
}

// NewRuleScheme creates a scheme evaluating rules in the given order.
func NewRuleScheme(rules ...Rule) *RuleScheme {
	return &RuleScheme{rules: rules}
}

// Hint returns FullScan for empty criteria, the hint of the first rule
// matching any criteria key, or an empty hint.
func (s *RuleScheme) Hint(criteria domain.Criteria) domain.Hint {
	if len(criteria) == 0 {
		return maps.Clone(FullScan)
	}
	for _, r := range s.rules {
		for key := range criteria {
			if strings.Contains(key, r.Key) {
				return maps.Clone(r.Hint)
			}
		}
	}
	return domain.Hint{}
}

// Indexes lists the index keys the scheme can hint, so the collection can
// be indexed for every hint it may receive. FullScan needs no index.
func (s *RuleScheme) Indexes() []domain.Index {
	var out []domain.Index
	for _, r := range s.rules {
		for key := range r.Hint {
			ix := domain.Index{Key: key}
			if !slices.Contains(out, ix) {
				out = append(out, ix)
			}
		}
	}
	return out
}

// Summary is the hint scheme for the summary collection.
func Summary() *RuleScheme {
	return NewRuleScheme(
		Rule{Key: "composition_reduced", Hint: domain.Hint{"composition_reduced.$**": 1}},
		Rule{Key: "nelements", Hint: domain.Hint{"nelements": 1}},
		Rule{Key: "has_props", Hint: domain.Hint{"has_props": 1}},
	)
}

// Tasks is the hint scheme for the tasks collection.
func Tasks() *RuleScheme {
	return NewRuleScheme(
		Rule{Key: "composition_reduced", Hint: domain.Hint{"composition_reduced.$**": 1}},
		Rule{Key: "nelements", Hint: domain.Hint{"nelements": 1}},
	)
}

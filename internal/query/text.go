package query

import (
	"net/url"

	"github.com/kailas-cloud/mpapi/internal/domain"
)

// Keywords runs a regex text search over robocrystallographer descriptions.
type Keywords struct{}

// Params implements Operator.
func (Keywords) Params() []string { return []string{"keywords", "skip", "limit"} }

// Query implements Operator.
func (Keywords) Query(params url.Values) (domain.StoreParams, error) {
	words := listParam(params, "keywords")
	if len(words) == 0 {
		return domain.StoreParams{}, domain.NewQueryError("keywords", "Must provide search keywords.")
	}
	page, err := NewPagination(MaxLimit, MaxLimit).Query(params)
	if err != nil {
		return domain.StoreParams{}, err
	}

	pipeline := []domain.Stage{
		{"$search": map[string]any{
			"index": "description",
			"regex": map[string]any{
				"query":              words,
				"path":               "description",
				"allowAnalyzedField": true,
			},
		}},
		{"$facet": map[string]any{
			"total_doc": []any{map[string]any{"$count": "count"}},
			"results": []any{map[string]any{"$project": map[string]any{
				"_id":                 0,
				"material_id":         1,
				"description":         1,
				"condensed_structure": 1,
				"last_updated":        1,
				"search_score":        map[string]any{"$meta": "searchScore"},
			}}},
		}},
		{"$unwind": "$results"},
		{"$unwind": "$total_doc"},
		{"$replaceRoot": map[string]any{
			"newRoot": map[string]any{
				"$mergeObjects": []any{"$results", map[string]any{"total_doc": "$total_doc.count"}},
			},
		}},
		{"$sort": map[string]any{"search_score": -1}},
		{"$skip": page.Skip},
		{"$limit": page.Limit},
	}
	return domain.StoreParams{Pipeline: pipeline}, nil
}

// PostProcess implements PostProcessor.
func (Keywords) PostProcess(docs []domain.Document, _ url.Values) ([]domain.Document, map[string]any, error) {
	total := 0
	if len(docs) > 0 {
		if n, ok := asFloat(docs[0]["total_doc"]); ok {
			total = int(n)
		}
	}
	for _, d := range docs {
		delete(d, "total_doc")
	}
	return docs, map[string]any{"total_doc": total}, nil
}

// Indexes implements Indexer.
func (Keywords) Indexes() []domain.Index { return indexes("description") }

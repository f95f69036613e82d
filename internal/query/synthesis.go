package query

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/kailas-cloud/mpapi/internal/domain"
	"github.com/kailas-cloud/mpapi/internal/domain/composition"
	"github.com/kailas-cloud/mpapi/pkg/schema"
)

// SynthesisMaxLimit caps synthesis pages.
const SynthesisMaxLimit = 10

const (
	paragraphLimit = 100
	highlightLimit = 100
	leadLimit      = 20
	trailingWord   = 15
)

var synthesisProjection = []string{
	"doi", "synthesis_type", "reaction", "reaction_string", "operations", "target",
	"targets_formula", "targets_formula_s", "precursors", "precursors_formula_s", "paragraph_string",
}

// SynthesisSearch builds the synthesis recipe search pipeline. Results are
// faceted so every row carries total_doc.
type SynthesisSearch struct{}

// Params implements Operator.
func (SynthesisSearch) Params() []string {
	return []string{
		"keywords", "synthesis_type", "target_formula", "precursor_formula", "operations",
		"condition_heating_temperature_min", "condition_heating_temperature_max",
		"condition_heating_time_min", "condition_heating_time_max",
		"condition_heating_atmosphere", "condition_mixing_device", "condition_mixing_media",
		"skip", "limit",
	}
}

// Query implements Operator.
func (SynthesisSearch) Query(params url.Values) (domain.StoreParams, error) {
	skip, _, err := intParam(params, "skip")
	if err != nil {
		return domain.StoreParams{}, err
	}
	if skip < 0 {
		return domain.StoreParams{}, domain.NewQueryError("skip", "must be greater than or equal to 0")
	}
	limit, ok, err := intParam(params, "limit")
	if err != nil {
		return domain.StoreParams{}, err
	}
	if !ok {
		limit = SynthesisMaxLimit
	}
	if limit <= 0 || limit > SynthesisMaxLimit {
		return domain.StoreParams{}, domain.NewQueryError("limit",
			"requested limit %d is outside the allowed range 1 to %d", limit, SynthesisMaxLimit)
	}

	crit, err := synthesisCriteria(params)
	if err != nil {
		return domain.StoreParams{}, err
	}

	project := map[string]any{"_id": 0}
	for _, f := range synthesisProjection {
		project[f] = 1
	}
	keywords := multiParam(params, "keywords")

	var pipeline []domain.Stage
	var results []any
	if len(keywords) > 0 {
		pipeline = append(pipeline, domain.Stage{"$search": map[string]any{
			"index":     "synth_descriptions",
			"search":    map[string]any{"query": keywords, "path": "paragraph_string"},
			"highlight": map[string]any{"path": "paragraph_string"},
		}})
		project["search_score"] = map[string]any{"$meta": "searchScore"}
		project["highlights"] = map[string]any{"$meta": "searchHighlights"}
	} else {
		results = append(results, map[string]any{"$skip": skip}, map[string]any{"$limit": limit})
	}
	results = append(results, map[string]any{"$project": project})

	if len(crit) > 0 {
		pipeline = append(pipeline, domain.Stage{"$match": map[string]any(crit)})
	}
	pipeline = append(pipeline,
		domain.Stage{"$facet": map[string]any{
			"results":   results,
			"total_doc": []any{map[string]any{"$count": "count"}},
		}},
		domain.Stage{"$unwind": "$results"},
		domain.Stage{"$unwind": "$total_doc"},
		domain.Stage{"$replaceRoot": map[string]any{
			"newRoot": map[string]any{
				"$mergeObjects": []any{"$results", map[string]any{"total_doc": "$total_doc.count"}},
			},
		}},
	)
	if len(keywords) > 0 {
		pipeline = append(pipeline,
			domain.Stage{"$sort": map[string]any{"search_score": -1}},
			domain.Stage{"$skip": skip},
			domain.Stage{"$limit": limit},
		)
	}
	return domain.StoreParams{Pipeline: pipeline}, nil
}

func synthesisCriteria(params url.Values) (domain.Criteria, error) {
	crit := domain.Criteria{}

	if types := multiParam(params, "synthesis_type"); len(types) > 0 {
		for _, t := range types {
			if !schema.SynthesisType(t).Valid() {
				return nil, domain.NewQueryError("synthesis_type", "%s is not a valid synthesis type", t)
			}
		}
		crit["synthesis_type"] = map[string]any{"$in": types}
	}
	for param, field := range map[string]string{
		"target_formula":    "targets_formula_s",
		"precursor_formula": "precursors_formula_s",
	} {
		f, ok := stringParam(params, param)
		if !ok {
			continue
		}
		reduced, err := composition.ReducedFormula(f)
		if err != nil {
			return nil, domain.NewQueryError(param, "%v", err)
		}
		crit[field] = reduced
	}
	if ops := multiParam(params, "operations"); len(ops) > 0 {
		for _, op := range ops {
			if !schema.OperationType(op).Valid() {
				return nil, domain.NewQueryError("operations", "%s is not a valid operation type", op)
			}
		}
		crit["operations.type"] = map[string]any{"$all": ops}
	}
	for param, field := range map[string]string{
		"condition_heating_temperature": "operations.conditions.heating_temperature.values",
		"condition_heating_time":        "operations.conditions.heating_time.values",
	} {
		r, err := rangeCriteria(params, param+"_min", param+"_max")
		if err != nil {
			return nil, err
		}
		if r != nil {
			crit[field] = map[string]any{"$elemMatch": r}
		}
	}
	for param, field := range map[string]string{
		"condition_heating_atmosphere": "operations.conditions.heating_atmosphere",
		"condition_mixing_device":      "operations.conditions.mixing_device",
		"condition_mixing_media":       "operations.conditions.mixing_media",
	} {
		if vals := multiParam(params, param); len(vals) > 0 {
			crit[field] = map[string]any{"$all": vals}
		}
	}
	return crit, nil
}

// PostProcess implements PostProcessor. It shortens paragraphs and
// highlights and reports the faceted total.
func (SynthesisSearch) PostProcess(docs []domain.Document, _ url.Values) ([]domain.Document, map[string]any, error) {
	total := 0
	if len(docs) > 0 {
		if n, ok := asFloat(docs[0]["total_doc"]); ok {
			total = int(n)
		}
	}
	for _, doc := range docs {
		delete(doc, "total_doc")
		maskHighlights(doc, highlightLimit)
		maskParagraph(doc, paragraphLimit)
	}
	return docs, map[string]any{"total_doc": total}, nil
}

// Indexes implements Indexer.
func (SynthesisSearch) Indexes() []domain.Index {
	return indexes(
		"synthesis_type", "targets_formula_s", "precursors_formula_s", "operations.type",
		"operations.conditions.heating_temperature.values", "operations.conditions.heating_time.values",
		"operations.conditions.heating_atmosphere", "operations.conditions.mixing_device",
		"operations.conditions.mixing_media",
	)
}

func maskParagraph(doc domain.Document, limit int) {
	if p, ok := doc["paragraph_string"].(string); ok {
		doc["paragraph_string"] = ellipsis(p, limit, true)
	}
}

func maskHighlights(doc domain.Document, limit int) {
	highlights, ok := doc["highlights"].([]any)
	if !ok {
		return
	}
	total := 0
	shown := make([]any, 0, len(highlights))
	for _, h := range highlights {
		if total >= limit {
			break
		}
		obj := asMap(h)
		if obj == nil {
			continue
		}
		texts := asList(obj["texts"])

		for i, t := range texts {
			if asMap(t)["type"] != "hit" {
				continue
			}
			if i > 0 {
				lead := asMap(texts[i-1])
				if v, ok := lead["value"].(string); ok {
					lead["value"] = ellipsis(v, leadLimit, false)
				}
				texts = texts[i-1:]
			}
			break
		}

		for i, t := range texts {
			hl := asMap(t)
			v, _ := hl["value"].(string)
			n := len([]rune(v))
			total += n
			if total >= limit {
				hl["value"] = ellipsis(v, max(1, limit-(total-n)), true)
				texts = texts[:i+1]
				break
			}
		}
		obj["texts"] = texts
		shown = append(shown, obj)
	}
	doc["highlights"] = shown
}

// ellipsis shortens text to limit runes. With trailing set the tail is cut
// and a partial last word of at most 15 runes is dropped; otherwise the head
// is cut the same way.
func ellipsis(text string, limit int, trailing bool) string {
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	if trailing {
		r = r[:limit]
		n := 0
		for n < len(r) && isWord(r[len(r)-1-n]) {
			n++
		}
		if n > trailingWord {
			return string(r)
		}
		return string(r[:len(r)-n]) + "..."
	}
	r = r[len(r)-limit:]
	n := 0
	for n < len(r) && isWord(r[n]) {
		n++
	}
	if n > trailingWord {
		return string(r)
	}
	return "..." + string(r[n:])
}

func isWord(r rune) bool { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }

// multiParam collects every value of a repeated parameter, splitting on commas.
func multiParam(params url.Values, name string) []string {
	var out []string
	for _, raw := range params[name] {
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

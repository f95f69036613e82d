package query

import (
	"net/url"
	"slices"

	"github.com/kailas-cloud/mpapi/internal/domain"
)

// Trajectory selects tasks and rewrites their calculations into ionic
// relaxation trajectories.
type Trajectory struct{}

// Params implements Operator.
func (Trajectory) Params() []string { return []string{"task_ids"} }

// Query implements Operator.
func (Trajectory) Query(params url.Values) (domain.StoreParams, error) {
	return MultiTaskID().Query(params)
}

// PostProcess implements PostProcessor.
func (Trajectory) PostProcess(docs []domain.Document, _ url.Values) ([]domain.Document, map[string]any, error) {
	out := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		var trajectories []any
		for _, calc := range asList(doc["calcs_reversed"]) {
			output, _ := asMap(calc)["output"].(map[string]any)
			trajectories = append(trajectories, trajectoryOf(asList(output["ionic_steps"])))
		}
		out = append(out, domain.Document{
			"task_id":      doc["task_id"],
			"trajectories": trajectories,
		})
	}
	return out, nil, nil
}

func trajectoryOf(steps []any) map[string]any {
	structures := make([]any, 0, len(steps))
	frames := make([]any, 0, len(steps))
	for _, s := range steps {
		step := asMap(s)
		structures = append(structures, step["structure"])
		frames = append(frames, map[string]any{
			"e_fr_energy": step["e_fr_energy"],
			"e_wo_entrp":  step["e_wo_entrp"],
			"forces":      step["forces"],
			"stress":      step["stress"],
		})
	}
	return map[string]any{"structures": structures, "frame_properties": frames}
}

// TaskDeprecation reports, for every requested task id, whether a material
// lists it as deprecated.
type TaskDeprecation struct{}

// Params implements Operator.
func (TaskDeprecation) Params() []string { return []string{"task_ids"} }

// Query implements Operator.
func (TaskDeprecation) Query(params url.Values) (domain.StoreParams, error) {
	ids := listParam(params, "task_ids")
	if len(ids) == 0 {
		return domain.StoreParams{}, domain.NewQueryError("task_ids", "field required")
	}
	return criteria(domain.Criteria{"deprecated_tasks": map[string]any{"$in": ids}}), nil
}

// PostProcess implements PostProcessor.
func (TaskDeprecation) PostProcess(docs []domain.Document, params url.Values) ([]domain.Document, map[string]any, error) {
	deprecated := map[string]bool{}
	for _, doc := range docs {
		for _, id := range asList(doc["deprecated_tasks"]) {
			if s, ok := id.(string); ok {
				deprecated[s] = true
			}
		}
	}
	ids := uniq(listParam(params, "task_ids"))
	out := make([]domain.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Document{
			"task_id":            id,
			"deprecated":         deprecated[id],
			"deprecation_reason": nil,
		})
	}
	return out, map[string]any{"total_doc": len(out)}, nil
}

// Indexes implements Indexer.
func (TaskDeprecation) Indexes() []domain.Index { return indexes("deprecated_tasks") }

func asList(v any) []any {
	switch l := v.(type) {
	case []any:
		return l
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	}
	return nil
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// uniq returns s without duplicates, keeping first occurrences.
func uniq(s []string) []string {
	out := make([]string, 0, len(s))
	for _, v := range s {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

package query

import (
	"fmt"
	"math"
	"net/url"
	"slices"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kailas-cloud/mpapi/internal/domain"
)

// DefaultStatsPoints is the default number of distribution points.
const DefaultStatsPoints = 100

// SearchStats samples one numeric field and summarizes its distribution
// with a gaussian kernel density estimate.
type SearchStats struct {
	fields []string
}

// NewSearchStats creates a stats operator over the given numeric fields.
// The first field in sorted order is the default.
func NewSearchStats(fields []string) *SearchStats {
	f := slices.Clone(fields)
	slices.Sort(f)
	return &SearchStats{fields: f}
}

// Params implements Operator.
func (s *SearchStats) Params() []string {
	return []string{"field", "num_samples", "min_val", "max_val", "num_points"}
}

func (s *SearchStats) field(params url.Values) (string, error) {
	f, ok := stringParam(params, "field")
	if !ok {
		if len(s.fields) == 0 {
			return "", domain.NewQueryError("field", "no numeric fields available")
		}
		return s.fields[0], nil
	}
	if !slices.Contains(s.fields, f) {
		return "", domain.NewQueryError("field", "%s is not a numeric field", f)
	}
	return f, nil
}

// Query implements Operator.
func (s *SearchStats) Query(params url.Values) (domain.StoreParams, error) {
	field, err := s.field(params)
	if err != nil {
		return domain.StoreParams{}, err
	}
	bounds, err := rangeCriteria(params, "min_val", "max_val")
	if err != nil {
		return domain.StoreParams{}, err
	}
	samples, hasSamples, err := intParam(params, "num_samples")
	if err != nil {
		return domain.StoreParams{}, err
	}
	if hasSamples && samples <= 0 {
		return domain.StoreParams{}, domain.NewQueryError("num_samples", "must be positive")
	}
	if _, err := s.points(params); err != nil {
		return domain.StoreParams{}, err
	}

	var pipeline []domain.Stage
	if bounds != nil {
		pipeline = append(pipeline, domain.Stage{"$match": map[string]any{field: bounds}})
	}
	if hasSamples {
		pipeline = append(pipeline, domain.Stage{"$sample": map[string]any{"size": samples}})
	}
	pipeline = append(pipeline, domain.Stage{"$project": map[string]any{field: 1, "_id": 0}})
	return domain.StoreParams{Pipeline: pipeline}, nil
}

func (s *SearchStats) points(params url.Values) (int, error) {
	n, ok, err := intParam(params, "num_points")
	if err != nil {
		return 0, err
	}
	if !ok {
		return DefaultStatsPoints, nil
	}
	if n <= 0 {
		return 0, domain.NewQueryError("num_points", "must be positive")
	}
	return n, nil
}

// PostProcess implements PostProcessor.
func (s *SearchStats) PostProcess(docs []domain.Document, params url.Values) ([]domain.Document, map[string]any, error) {
	if len(docs) == 0 {
		return nil, nil, nil
	}
	field, err := s.field(params)
	if err != nil {
		return nil, nil, err
	}
	numPoints, err := s.points(params)
	if err != nil {
		return nil, nil, err
	}

	values := make([]float64, 0, len(docs))
	for _, d := range docs {
		if v, ok := asFloat(d[field]); ok {
			values = append(values, v)
		}
	}
	var warnings []string
	if len(values) != len(docs) {
		warnings = append(warnings,
			"Some documents have field missing.",
			fmt.Sprintf("Only %d of %d (%.2f%%) have %s field present.",
				len(values), len(docs), 100*float64(len(values))/float64(len(docs)), field))
	}
	if len(values) == 0 {
		return nil, nil, domain.NewQueryError("field", "no documents have %s field present", field)
	}
	sort.Float64s(values)

	lo, hi := values[0], values[len(values)-1]
	if v, ok, _ := floatParam(params, "min_val"); ok {
		lo = v
	}
	if v, ok, _ := floatParam(params, "max_val"); ok {
		hi = v
	}

	doc := domain.Document{
		"field":        field,
		"num_samples":  len(docs),
		"min":          lo,
		"max":          hi,
		"median":       median(values),
		"mean":         stat.Mean(values, nil),
		"distribution": kde(values, lo, hi, numPoints),
	}
	if len(warnings) > 0 {
		doc["warnings"] = warnings
	}
	return []domain.Document{doc}, nil, nil
}

// median expects sorted values.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// kde evaluates a gaussian kernel density estimate with Scott's bandwidth
// at numPoints evenly spaced points in [lo, hi).
func kde(values []float64, lo, hi float64, numPoints int) []float64 {
	bw := math.Pow(float64(len(values)), -0.2) * stat.StdDev(values, nil)
	if bw == 0 || math.IsNaN(bw) {
		bw = 1
	}
	kernel := distuv.Normal{Mu: 0, Sigma: bw}
	step := (hi - lo) / float64(numPoints)

	out := make([]float64, 0, numPoints)
	for i := range numPoints {
		x := lo + float64(i)*step
		var sum float64
		for _, v := range values {
			sum += kernel.Prob(x - v)
		}
		out = append(out, sum/float64(len(values)))
	}
	return out
}

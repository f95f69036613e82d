package query

import (
	"net/url"

	"github.com/kailas-cloud/mpapi/internal/domain"
	"github.com/kailas-cloud/mpapi/internal/domain/composition"
	"github.com/kailas-cloud/mpapi/pkg/schema"
)

// ESSummary filters electronic structure summaries.
type ESSummary struct{}

// Params implements Operator.
func (ESSummary) Params() []string {
	return []string{"magnetic_ordering", "is_gap_direct", "is_metal"}
}

// Query implements Operator.
func (ESSummary) Query(params url.Values) (domain.StoreParams, error) {
	crit := domain.Criteria{}
	if err := gapFlags(params, "", crit); err != nil {
		return domain.StoreParams{}, err
	}
	return criteria(crit), nil
}

// Indexes implements Indexer.
func (ESSummary) Indexes() []domain.Index {
	return indexes("band_gap", "efermi", "magnetic_ordering", "is_gap_direct", "is_metal")
}

// gapFlags reads magnetic_ordering, is_gap_direct and is_metal into crit
// under prefix.
func gapFlags(params url.Values, prefix string, crit domain.Criteria) error {
	if o, ok := stringParam(params, "magnetic_ordering"); ok {
		if !schema.Ordering(o).Valid() {
			return domain.NewQueryError("magnetic_ordering", "%s is not a valid ordering", o)
		}
		crit[prefix+"magnetic_ordering"] = o
	}
	for _, name := range []string{"is_gap_direct", "is_metal"} {
		v, ok, err := boolParam(params, name)
		if err != nil {
			return err
		}
		if ok {
			crit[prefix+name] = v
		}
	}
	return nil
}

func gapRanges(params url.Values, prefix string, crit domain.Criteria) error {
	for _, name := range []string{"band_gap", "efermi"} {
		r, err := rangeCriteria(params, name+"_min", name+"_max")
		if err != nil {
			return err
		}
		if r != nil {
			crit[prefix+name] = r
		}
	}
	return nil
}

// BSData filters band structure summaries along one k-path convention.
// Without path_type the other parameters are ignored.
type BSData struct{}

// Params implements Operator.
func (BSData) Params() []string {
	return []string{
		"path_type", "band_gap_min", "band_gap_max", "efermi_min", "efermi_max",
		"magnetic_ordering", "is_gap_direct", "is_metal",
	}
}

// Query implements Operator.
func (BSData) Query(params url.Values) (domain.StoreParams, error) {
	pt, ok := stringParam(params, "path_type")
	if !ok {
		return domain.StoreParams{}, nil
	}
	if !schema.BSPathType(pt).Valid() {
		return domain.StoreParams{}, domain.NewQueryError("path_type", "%s is not a valid path type", pt)
	}
	prefix := "bandstructure." + pt + "."
	crit := domain.Criteria{}
	if err := gapRanges(params, prefix, crit); err != nil {
		return domain.StoreParams{}, err
	}
	if err := gapFlags(params, prefix, crit); err != nil {
		return domain.StoreParams{}, err
	}
	return criteria(crit), nil
}

// Indexes implements Indexer.
func (BSData) Indexes() []domain.Index {
	keys := []string{"bandstructure"}
	for _, pt := range []schema.BSPathType{schema.PathSetyawanCurtarolo, schema.PathHinuma, schema.PathLatimerMunro} {
		keys = append(keys, "bandstructure."+string(pt)+".band_gap", "bandstructure."+string(pt)+".efermi")
	}
	return indexes(keys...)
}

// DOSData filters density of states summaries for one projection.
type DOSData struct{}

// Params implements Operator.
func (DOSData) Params() []string {
	return []string{
		"projection_type", "spin", "element", "orbital",
		"band_gap_min", "band_gap_max", "efermi_min", "efermi_max", "magnetic_ordering",
	}
}

// Query implements Operator.
func (DOSData) Query(params url.Values) (domain.StoreParams, error) {
	crit := domain.Criteria{}
	if pt, ok := stringParam(params, "projection_type"); ok {
		prefix, err := dosPrefix(params, schema.DOSProjectionType(pt))
		if err != nil {
			return domain.StoreParams{}, err
		}
		if err := gapRanges(params, "dos."+prefix+".", crit); err != nil {
			return domain.StoreParams{}, err
		}
	}
	if o, ok := stringParam(params, "magnetic_ordering"); ok {
		if !schema.Ordering(o).Valid() {
			return domain.StoreParams{}, domain.NewQueryError("magnetic_ordering", "%s is not a valid ordering", o)
		}
		crit["dos.magnetic_ordering"] = o
	}
	return criteria(crit), nil
}

func dosPrefix(params url.Values, pt schema.DOSProjectionType) (string, error) {
	if !pt.Valid() {
		return "", domain.NewQueryError("projection_type", "%s is not a valid projection type", pt)
	}
	spin, ok := stringParam(params, "spin")
	if !ok {
		return "", domain.NewQueryError("spin", "Must specify a spin channel for querying dos summary data.")
	}
	if spin != "1" && spin != "-1" {
		return "", domain.NewQueryError("spin", "spin must be 1 or -1")
	}
	orbital, hasOrbital := stringParam(params, "orbital")
	if hasOrbital && !schema.OrbitalType(orbital).Valid() {
		return "", domain.NewQueryError("orbital", "%s is not a valid orbital type", orbital)
	}

	switch pt {
	case schema.ProjectionOrbital:
		if !hasOrbital {
			return "", domain.NewQueryError("orbital",
				"Must specify an orbital type for querying orbital projection data.")
		}
		return "orbital." + orbital + "." + spin, nil
	case schema.ProjectionElemental:
		el, ok := stringParam(params, "element")
		if !ok {
			return "", domain.NewQueryError("element",
				"Must specify an element type for querying element projection data.")
		}
		if !composition.IsElement(el) {
			return "", domain.NewQueryError("element", "%s is not a valid element", el)
		}
		if hasOrbital {
			return "elemental." + el + "." + orbital + "." + spin, nil
		}
		return "elemental." + el + ".total." + spin, nil
	default:
		return "total." + spin, nil
	}
}

// Indexes implements Indexer.
func (DOSData) Indexes() []domain.Index {
	return indexes("dos", "dos.magnetic_ordering", "dos.total.$**", "dos.elemental.$**", "dos.orbital.$**")
}

// Object selects a stored object by its task id.
type Object struct{}

// Params implements Operator.
func (Object) Params() []string { return []string{"task_id"} }

// Query implements Operator.
func (Object) Query(params url.Values) (domain.StoreParams, error) {
	id, ok := stringParam(params, "task_id")
	if !ok {
		return domain.StoreParams{}, domain.NewQueryError("task_id", "field required")
	}
	return criteria(domain.Criteria{"task_id": id}), nil
}

// Indexes implements Indexer.
func (Object) Indexes() []domain.Index { return indexes("task_id") }

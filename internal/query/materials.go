package query

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/kailas-cloud/mpapi/internal/domain"
	"github.com/kailas-cloud/mpapi/internal/domain/composition"
	"github.com/kailas-cloud/mpapi/pkg/schema"
)

// Formula matches a formula, anonymous formula or chemical system.
type Formula struct{}

// Params implements Operator.
func (Formula) Params() []string { return []string{"formula"} }

// Query implements Operator. A comma-separated list matches any of its
// formulas; a list of plain formulas becomes a single $in.
func (Formula) Query(params url.Values) (domain.StoreParams, error) {
	formulas := listParam(params, "formula")
	if len(formulas) == 0 {
		return domain.StoreParams{}, nil
	}
	crits := make([]domain.Criteria, 0, len(formulas))
	pretty := make([]string, 0, len(formulas))
	for _, f := range formulas {
		crit, err := composition.FormulaToCriteria(f)
		if err != nil {
			return domain.StoreParams{}, err
		}
		crits = append(crits, crit)
		if p, ok := crit["formula_pretty"].(string); ok && len(crit) == 1 {
			pretty = append(pretty, p)
		}
	}
	if len(crits) == 1 {
		return criteria(crits[0]), nil
	}
	if len(pretty) == len(crits) {
		return criteria(domain.Criteria{"formula_pretty": map[string]any{"$in": uniq(pretty)}}), nil
	}
	or := make([]map[string]any, len(crits))
	for i, c := range crits {
		or[i] = map[string]any(c)
	}
	return criteria(domain.Criteria{"$or": or}), nil
}

// Indexes implements Indexer.
func (Formula) Indexes() []domain.Index {
	return indexes("chemsys", "formula_pretty", "formula_anonymous", "composition_reduced.$**", "nelements", "elements")
}

// Chemsys matches one or more chemical systems.
type Chemsys struct{}

// Params implements Operator.
func (Chemsys) Params() []string { return []string{"chemsys"} }

// Query implements Operator.
func (Chemsys) Query(params url.Values) (domain.StoreParams, error) {
	c, ok := stringParam(params, "chemsys")
	if !ok {
		return domain.StoreParams{}, nil
	}
	crit, err := composition.ChemsysToCriteria(c)
	if err != nil {
		return domain.StoreParams{}, err
	}
	return criteria(crit), nil
}

// Indexes implements Indexer.
func (Chemsys) Indexes() []domain.Index { return indexes("chemsys", "nelements") }

// Elements matches included and excluded elements.
type Elements struct {
	field string
}

// NewElements creates an elements operator over field, "elements" if empty.
func NewElements(field string) *Elements {
	if field == "" {
		field = "elements"
	}
	return &Elements{field: field}
}

// Params implements Operator.
func (e *Elements) Params() []string { return []string{"elements", "exclude_elements"} }

// Query implements Operator.
func (e *Elements) Query(params url.Values) (domain.StoreParams, error) {
	in, err := elementList(params, "elements")
	if err != nil {
		return domain.StoreParams{}, err
	}
	out, err := elementList(params, "exclude_elements")
	if err != nil {
		return domain.StoreParams{}, err
	}
	if len(in) == 0 && len(out) == 0 {
		return domain.StoreParams{}, nil
	}
	ops := map[string]any{}
	if len(in) > 0 {
		ops["$all"] = in
	}
	if len(out) > 0 {
		ops["$nin"] = out
	}
	return criteria(domain.Criteria{e.field: ops}), nil
}

// Indexes implements Indexer.
func (e *Elements) Indexes() []domain.Index { return indexes(e.field) }

func elementList(params url.Values, name string) ([]string, error) {
	list := listParam(params, name)
	for _, el := range list {
		if !composition.IsElement(el) {
			return nil, domain.NewQueryError(name, "%s is not a valid element", el)
		}
	}
	return list, nil
}

// IDList matches a comma-separated parameter against a field with $in.
type IDList struct {
	param string
	field string
}

// NewIDList creates an $in operator reading param into field.
func NewIDList(param, field string) *IDList { return &IDList{param: param, field: field} }

// MultiMaterialID matches material_ids against material_id.
func MultiMaterialID() *IDList { return NewIDList("material_ids", "material_id") }

// MultiTaskID matches task_ids against task_id.
func MultiTaskID() *IDList { return NewIDList("task_ids", "task_id") }

// TaskIDs matches task_ids against the task_ids list of a material.
func TaskIDs() *IDList { return NewIDList("task_ids", "task_ids") }

// Params implements Operator.
func (q *IDList) Params() []string { return []string{q.param} }

// Query implements Operator.
func (q *IDList) Query(params url.Values) (domain.StoreParams, error) {
	ids := listParam(params, q.param)
	if len(ids) == 0 {
		return domain.StoreParams{}, nil
	}
	return criteria(domain.Criteria{q.field: map[string]any{"$in": ids}}), nil
}

// Indexes implements Indexer.
func (q *IDList) Indexes() []domain.Index { return indexes(q.field) }

// Deprecation filters on the deprecated flag, false unless given.
type Deprecation struct{}

// Params implements Operator.
func (Deprecation) Params() []string { return []string{"deprecated"} }

// Query implements Operator.
func (Deprecation) Query(params url.Values) (domain.StoreParams, error) {
	v, _, err := boolParam(params, "deprecated")
	if err != nil {
		return domain.StoreParams{}, err
	}
	return criteria(domain.Criteria{"deprecated": v}), nil
}

// Indexes implements Indexer.
func (Deprecation) Indexes() []domain.Index { return indexes("deprecated") }

// Symmetry matches crystal system and space group.
type Symmetry struct{}

// Params implements Operator.
func (Symmetry) Params() []string {
	return []string{"crystal_system", "spacegroup_number", "spacegroup_symbol"}
}

// Query implements Operator.
func (Symmetry) Query(params url.Values) (domain.StoreParams, error) {
	crit := domain.Criteria{}
	if cs, ok := stringParam(params, "crystal_system"); ok {
		if !schema.CrystalSystem(cs).Valid() {
			return domain.StoreParams{}, domain.NewQueryError("crystal_system", "%s is not a valid crystal system", cs)
		}
		crit["symmetry.crystal_system"] = cs
	}
	n, ok, err := intParam(params, "spacegroup_number")
	if err != nil {
		return domain.StoreParams{}, err
	}
	if ok {
		if n < 1 || n > 230 {
			return domain.StoreParams{}, domain.NewQueryError("spacegroup_number", "must be between 1 and 230")
		}
		crit["symmetry.number"] = n
	}
	if sym, ok := stringParam(params, "spacegroup_symbol"); ok {
		crit["symmetry.symbol"] = sym
	}
	return criteria(crit), nil
}

// Indexes implements Indexer.
func (Symmetry) Indexes() []domain.Index {
	return indexes("symmetry.crystal_system", "symmetry.number", "symmetry.symbol")
}

// PossibleOxiState matches all given oxidation-state species.
type PossibleOxiState struct{}

// Params implements Operator.
func (PossibleOxiState) Params() []string { return []string{"possible_species"} }

// Query implements Operator.
func (PossibleOxiState) Query(params url.Values) (domain.StoreParams, error) {
	species := listParam(params, "possible_species")
	if len(species) == 0 {
		return domain.StoreParams{}, nil
	}
	return criteria(domain.Criteria{"possible_species": map[string]any{"$all": species}}), nil
}

// Indexes implements Indexer.
func (PossibleOxiState) Indexes() []domain.Index { return indexes("possible_species") }

// FormulaAutocomplete suggests formulas matching any ordering of the
// reduced terms of a partial formula.
type FormulaAutocomplete struct {
	maxLimit int
}

// NewFormulaAutocomplete creates the autocomplete operator.
func NewFormulaAutocomplete() *FormulaAutocomplete {
	return &FormulaAutocomplete{maxLimit: MaxLimit}
}

// Params implements Operator.
func (a *FormulaAutocomplete) Params() []string { return []string{"formula", "limit"} }

// Query implements Operator.
func (a *FormulaAutocomplete) Query(params url.Values) (domain.StoreParams, error) {
	f, ok := stringParam(params, "formula")
	if !ok {
		return domain.StoreParams{}, domain.NewQueryError("formula", "field required")
	}
	limit, ok, err := intParam(params, "limit")
	if err != nil {
		return domain.StoreParams{}, err
	}
	if !ok {
		limit = DefaultLimit
	}
	if limit <= 0 || limit > a.maxLimit {
		return domain.StoreParams{}, domain.NewQueryError("limit", "must be between 1 and %d", a.maxLimit)
	}

	comp, err := composition.Parse(f)
	if err != nil {
		return domain.StoreParams{}, domain.NewQueryError("formula", "Invalid formula provided.")
	}
	terms, elements := autocompleteTerms(comp)
	candidates := permutations(terms)

	pipeline := []domain.Stage{
		{"$search": map[string]any{
			"index": "formula_autocomplete",
			"text":  map[string]any{"path": "formula_pretty", "query": candidates},
		}},
		{"$project": map[string]any{
			"_id":            0,
			"formula_pretty": 1,
			"elements":       1,
			"length":         map[string]any{"$strLenCP": "$formula_pretty"},
		}},
		{"$match": map[string]any{
			"length":   map[string]any{"$gte": len(candidates[0])},
			"elements": map[string]any{"$all": elements},
		}},
		{"$limit": limit},
		{"$sort": map[string]any{"length": 1}},
		{"$project": map[string]any{"elements": 0, "length": 0}},
	}
	return domain.StoreParams{Pipeline: pipeline}, nil
}

// Indexes implements Indexer.
func (a *FormulaAutocomplete) Indexes() []domain.Index { return indexes("formula_pretty") }

func autocompleteTerms(comp composition.Composition) (terms, elements []string) {
	if comp.NumElements() == 1 {
		el := comp.Elements()[0]
		term := el
		if n := comp.Amount(el); n != 1 {
			term += strconv.FormatFloat(n, 'f', -1, 64)
		}
		return []string{term}, []string{el}
	}
	reduced, _ := comp.Reduced()
	for _, el := range reduced.Elements() {
		term := el
		if n := reduced.Amount(el); n != 1 {
			term += strconv.FormatFloat(n, 'f', -1, 64)
		}
		terms = append(terms, term)
		elements = append(elements, el)
	}
	return terms, elements
}

// permutations returns every ordering of terms joined into strings, in
// lexicographic order of the input positions.
func permutations(terms []string) []string {
	var out []string
	var walk func(prefix []string, rest []string)
	walk = func(prefix []string, rest []string) {
		if len(rest) == 0 {
			out = append(out, strings.Join(prefix, ""))
			return
		}
		for i := range rest {
			next := slices.Concat(rest[:i], rest[i+1:])
			walk(append(slices.Clone(prefix), rest[i]), next)
		}
	}
	walk(nil, terms)
	return out
}

package mpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"sort"
	"strings"

	"github.com/kailas-cloud/mpapi/pkg/schema"
)

// Bool returns a pointer to v, for optional boolean filters.
func Bool(v bool) *bool { return &v }

// summaryRanges maps range filter names to the summary fields they bound.
var summaryRanges = map[string]string{
	"total_energy":                       "energy_per_atom",
	"formation_energy":                   "formation_energy_per_atom",
	"energy_above_hull":                  "energy_above_hull",
	"uncorrected_energy":                 "uncorrected_energy_per_atom",
	"equilibrium_reaction_energy":        "equilibrium_reaction_energy_per_atom",
	"nsites":                             "nsites",
	"num_sites":                          "nsites",
	"num_elements":                       "nelements",
	"volume":                             "volume",
	"density":                            "density",
	"band_gap":                           "band_gap",
	"efermi":                             "efermi",
	"total_magnetization":                "total_magnetization",
	"total_magnetization_normalized_vol": "total_magnetization_normalized_vol",
	"total_magnetization_normalized_formula_units": "total_magnetization_normalized_formula_units",
	"k_voigt":                                      "k_voigt",
	"k_reuss":                                      "k_reuss",
	"k_vrh":                                        "k_vrh",
	"g_voigt":                                      "g_voigt",
	"g_reuss":                                      "g_reuss",
	"g_vrh":                                        "g_vrh",
	"elastic_anisotropy":                           "universal_anisotropy",
	"poisson_ratio":                                "homogeneous_poisson",
	"e_total":                                      "e_total",
	"e_ionic":                                      "e_ionic",
	"n":                                            "n",
	"piezoelectric_modulus":                        "e_ij_max",
	"weighted_surface_energy":                      "weighted_surface_energy",
	"weighted_work_function":                       "weighted_work_function",
	"surface_energy_anisotropy":                    "surface_anisotropy",
	"shape_factor":                                 "shape_factor",
}

// thermoRanges maps range filter names to the thermo fields they bound.
var thermoRanges = map[string]string{
	"total_energy":                "energy_per_atom",
	"formation_energy":            "formation_energy_per_atom",
	"energy_above_hull":           "energy_above_hull",
	"equilibrium_reaction_energy": "equilibrium_reaction_energy_per_atom",
	"uncorrected_energy":          "uncorrected_energy_per_atom",
	"num_elements":                "nelements",
}

// materialsRanges maps range filter names to the materials fields they bound.
var materialsRanges = map[string]string{
	"num_sites":    "nsites",
	"num_elements": "nelements",
	"volume":       "volume",
	"density":      "density",
}

// SummaryRangeNames returns the range filters accepted by SummaryQuery.
func SummaryRangeNames() []string { return slices.Sorted(maps.Keys(summaryRanges)) }

func setRanges(q Query, names map[string]string, ranges map[string]Range) error {
	for name, r := range ranges {
		field, ok := names[name]
		if !ok {
			return fmt.Errorf("mpapi: unknown range filter %q", name)
		}
		if !r.IsZero() {
			q.SetRange(field, r)
		}
	}
	return nil
}

func setIDs(q Query, name string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	valid, err := ValidateIDs(ids)
	if err != nil {
		return err
	}
	q[name] = valid
	return nil
}

// SummaryQuery filters the summary route. Zero fields are not sent.
type SummaryQuery struct {
	MaterialIDs      []string
	Formula          []string
	Chemsys          []string
	Elements         []string
	ExcludeElements  []string
	PossibleSpecies  []string
	CrystalSystem    schema.CrystalSystem
	SpacegroupNumber int
	SpacegroupSymbol string
	MagneticOrdering schema.Ordering
	HasProps         []schema.HasProps

	Deprecated       *bool
	IsStable         *bool
	IsGapDirect      *bool
	IsMetal          *bool
	HasReconstructed *bool
	Theoretical      *bool

	// Ranges bounds numeric properties by filter name, e.g. "band_gap" or
	// "total_energy". See SummaryRangeNames.
	Ranges map[string]Range
}

// Query renders the filters as API parameters.
func (s SummaryQuery) Query() (Query, error) {
	q := Query{
		"formula":           s.Formula,
		"chemsys":           s.Chemsys,
		"elements":          s.Elements,
		"exclude_elements":  s.ExcludeElements,
		"possible_species":  s.PossibleSpecies,
		"crystal_system":    s.CrystalSystem,
		"spacegroup_symbol": s.SpacegroupSymbol,
		"ordering":          s.MagneticOrdering,
		"has_props":         s.HasProps,
		"deprecated":        s.Deprecated,
		"is_stable":         s.IsStable,
		"is_gap_direct":     s.IsGapDirect,
		"is_metal":          s.IsMetal,
		"has_reconstructed": s.HasReconstructed,
		"theoretical":       s.Theoretical,
	}
	if s.SpacegroupNumber > 0 {
		q["spacegroup_number"] = s.SpacegroupNumber
	}
	if err := setIDs(q, "material_ids", s.MaterialIDs); err != nil {
		return nil, err
	}
	if err := setRanges(q, summaryRanges, s.Ranges); err != nil {
		return nil, err
	}
	return q, nil
}

// SummaryRester queries aggregated per-material summaries.
type SummaryRester struct {
	*Rester[schema.SummaryDoc]
	stats *Rester[schema.SummaryStats]
}

func newSummaryRester(c *Client) *SummaryRester {
	return &SummaryRester{
		Rester: NewRester[schema.SummaryDoc](c, "summary"),
		stats:  NewRester[schema.SummaryStats](c, "summary/stats"),
	}
}

// SearchSummaryDocs returns the summaries matching sq.
func (r *SummaryRester) SearchSummaryDocs(ctx context.Context, sq SummaryQuery, opts ...SearchOption) ([]schema.SummaryDoc, error) {
	q, err := sq.Query()
	if err != nil {
		return nil, err
	}
	return r.Search(ctx, q, opts...)
}

// Stats samples the distribution of one numeric summary field.
func (r *SummaryRester) Stats(ctx context.Context, field string, numSamples int) (schema.SummaryStats, error) {
	q := Query{"field": field}
	if numSamples > 0 {
		q["num_samples"] = numSamples
	}
	params, err := q.Encode()
	if err != nil {
		return schema.SummaryStats{}, err
	}
	docs, _, err := r.stats.single(ctx, "", params)
	if err != nil {
		return schema.SummaryStats{}, err
	}
	if len(docs) == 0 {
		return schema.SummaryStats{}, &NoResultError{ID: field}
	}
	return docs[0], nil
}

// MaterialsQuery filters the materials route. Deprecated defaults to false.
type MaterialsQuery struct {
	MaterialIDs      []string
	TaskIDs          []string
	Formula          []string
	Chemsys          []string
	Elements         []string
	ExcludeElements  []string
	CrystalSystem    schema.CrystalSystem
	SpacegroupNumber int
	SpacegroupSymbol string
	Deprecated       *bool

	// Ranges accepts num_sites, num_elements, volume and density.
	Ranges map[string]Range
}

// Query renders the filters as API parameters.
func (m MaterialsQuery) Query() (Query, error) {
	deprecated := m.Deprecated
	if deprecated == nil {
		deprecated = Bool(false)
	}
	q := Query{
		"formula":           m.Formula,
		"chemsys":           m.Chemsys,
		"elements":          m.Elements,
		"exclude_elements":  m.ExcludeElements,
		"crystal_system":    m.CrystalSystem,
		"spacegroup_symbol": m.SpacegroupSymbol,
		"deprecated":        deprecated,
	}
	if m.SpacegroupNumber > 0 {
		q["spacegroup_number"] = m.SpacegroupNumber
	}
	if err := setIDs(q, "material_ids", m.MaterialIDs); err != nil {
		return nil, err
	}
	if err := setIDs(q, "task_ids", m.TaskIDs); err != nil {
		return nil, err
	}
	if err := setRanges(q, materialsRanges, m.Ranges); err != nil {
		return nil, err
	}
	return q, nil
}

// MaterialsRester queries core material records.
type MaterialsRester struct {
	*Rester[schema.MaterialsDoc]
}

// SearchMaterialDocs returns the materials matching mq.
func (r *MaterialsRester) SearchMaterialDocs(ctx context.Context, mq MaterialsQuery, opts ...SearchOption) ([]schema.MaterialsDoc, error) {
	q, err := mq.Query()
	if err != nil {
		return nil, err
	}
	return r.Search(ctx, q, opts...)
}

// GetStructureByMaterialID returns the final structure of a material.
func (r *MaterialsRester) GetStructureByMaterialID(ctx context.Context, materialID string) (*schema.Structure, error) {
	doc, err := r.GetDataByID(ctx, materialID, "material_id", "structure")
	if err != nil {
		return nil, err
	}
	if doc.Structure == nil {
		return nil, &NoResultError{ID: materialID}
	}
	return doc.Structure, nil
}

// GetInitialStructuresByMaterialID returns the pre-relaxation structures of a material.
func (r *MaterialsRester) GetInitialStructuresByMaterialID(ctx context.Context, materialID string) ([]schema.Structure, error) {
	doc, err := r.GetDataByID(ctx, materialID, "material_id", "initial_structures")
	if err != nil {
		return nil, err
	}
	return doc.InitialStructures, nil
}

// GetMaterialsIDFromTaskID returns the material a task belongs to.
func (r *MaterialsRester) GetMaterialsIDFromTaskID(ctx context.Context, taskID string) (string, error) {
	ids, err := ValidateIDs([]string{taskID})
	if err != nil {
		return "", err
	}
	return r.client.materialIDFromTaskID(ctx, ids[0])
}

// StructureMatch is a material matched by FindStructure.
type StructureMatch struct {
	MaterialID                string  `json:"material_id"`
	NormalizedRMSDisplacement float64 `json:"normalized_rms_displacement,omitempty"`
	MaxDistPairedAtoms        float64 `json:"max_distance_paired_sites,omitempty"`
}

// MatchTolerances are the structure matcher tolerances of FindStructure.
type MatchTolerances struct {
	LTol     float64
	STol     float64
	AngleTol float64
}

// DefaultMatchTolerances are the matcher defaults of the API.
var DefaultMatchTolerances = MatchTolerances{LTol: 0.2, STol: 0.3, AngleTol: 5}

// FindStructure returns the materials matching s within tol.
func (r *MaterialsRester) FindStructure(ctx context.Context, s schema.Structure, tol MatchTolerances) ([]StructureMatch, error) {
	params := url.Values{
		"ltol":      {fmt.Sprint(tol.LTol)},
		"stol":      {fmt.Sprint(tol.STol)},
		"angle_tol": {fmt.Sprint(tol.AngleTol)},
		"_limit":    {"1"},
	}
	raw, err := r.post(ctx, "find_structure", params, s)
	if err != nil {
		return nil, err
	}
	out := make([]StructureMatch, 0, len(raw))
	for _, msg := range raw {
		var m StructureMatch
		if err := json.Unmarshal(msg, &m); err != nil {
			return nil, fmt.Errorf("mpapi: decode structure match: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

// ThermoQuery filters the thermo route.
type ThermoQuery struct {
	MaterialIDs []string
	Formula     []string
	Chemsys     []string
	IsStable    *bool

	// Ranges accepts total_energy, formation_energy, energy_above_hull,
	// equilibrium_reaction_energy, uncorrected_energy and num_elements.
	Ranges map[string]Range
}

// Query renders the filters as API parameters.
func (t ThermoQuery) Query() (Query, error) {
	q := Query{
		"formula":   t.Formula,
		"chemsys":   t.Chemsys,
		"is_stable": t.IsStable,
	}
	if err := setIDs(q, "material_ids", t.MaterialIDs); err != nil {
		return nil, err
	}
	if err := setRanges(q, thermoRanges, t.Ranges); err != nil {
		return nil, err
	}
	return q, nil
}

// ThermoRester queries thermodynamic stability data and phase diagrams.
type ThermoRester struct {
	*Rester[schema.ThermoDoc]
	phaseDiagram *Rester[schema.PhaseDiagramDoc]
}

func newThermoRester(c *Client) *ThermoRester {
	return &ThermoRester{
		Rester:       NewRester[schema.ThermoDoc](c, "thermo"),
		phaseDiagram: NewRester[schema.PhaseDiagramDoc](c, "thermo/phase_diagram"),
	}
}

// SearchThermoDocs returns the thermo documents matching tq.
func (r *ThermoRester) SearchThermoDocs(ctx context.Context, tq ThermoQuery, opts ...SearchOption) ([]schema.ThermoDoc, error) {
	q, err := tq.Query()
	if err != nil {
		return nil, err
	}
	return r.Search(ctx, q, opts...)
}

// GetPhaseDiagramFromChemsys returns the serialized phase diagram of a
// chemical system such as "Li-Fe-O". Element order does not matter.
func (r *ThermoRester) GetPhaseDiagramFromChemsys(ctx context.Context, chemsys string) (map[string]any, error) {
	doc, err := r.phaseDiagram.GetDataByID(ctx, normalizeChemsys(chemsys), "chemsys", "phase_diagram")
	if err != nil {
		return nil, err
	}
	return doc.PhaseDiagram, nil
}

func normalizeChemsys(chemsys string) string {
	parts := strings.Split(chemsys, "-")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	sort.Strings(parts)
	return strings.Join(parts, "-")
}

// OxidationStatesQuery filters the oxidation states route.
type OxidationStatesQuery struct {
	Formula         []string
	PossibleSpecies []string
}

// OxidationStatesRester queries oxidation state analyses.
type OxidationStatesRester struct {
	*Rester[schema.OxidationStateDoc]
}

// SearchOxidationStatesDocs returns the oxidation state documents matching oq.
func (r *OxidationStatesRester) SearchOxidationStatesDocs(ctx context.Context, oq OxidationStatesQuery, opts ...SearchOption) ([]schema.OxidationStateDoc, error) {
	return r.Search(ctx, Query{"formula": oq.Formula, "possible_species": oq.PossibleSpecies}, opts...)
}

// SimilarityRester looks up the most similar materials of a material. The
// route has no search.
type SimilarityRester struct {
	*Rester[schema.SimilarityDoc]
}

// GetSimilar returns the neighbours of materialID.
func (r *SimilarityRester) GetSimilar(ctx context.Context, materialID string) ([]schema.SimilarityEntry, error) {
	doc, err := r.GetDataByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	return doc.Sim, nil
}

// PhononRester looks up phonon band structures and densities of states.
// The route has no search.
type PhononRester struct {
	*Rester[schema.PhononBSDOSDoc]
}

// GetBandstructureByMaterialID returns the phonon band structure of a material.
func (r *PhononRester) GetBandstructureByMaterialID(ctx context.Context, materialID string) (map[string]any, error) {
	doc, err := r.GetDataByID(ctx, materialID, "material_id", "ph_bs")
	if err != nil {
		return nil, err
	}
	return doc.PhBS, nil
}

// GetDOSByMaterialID returns the phonon density of states of a material.
func (r *PhononRester) GetDOSByMaterialID(ctx context.Context, materialID string) (map[string]any, error) {
	doc, err := r.GetDataByID(ctx, materialID, "material_id", "ph_dos")
	if err != nil {
		return nil, err
	}
	return doc.PhDOS, nil
}

// DOIRester looks up the DOI and bibtex reference of materials.
type DOIRester struct {
	*Rester[schema.DOIDoc]
}

// ProvenanceRester looks up where the structures of materials came from.
type ProvenanceRester struct {
	*Rester[schema.ProvenanceDoc]
}


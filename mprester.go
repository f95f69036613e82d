package mpapi

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/kailas-cloud/mpapi/pkg/schema"
)

// MPRester bundles a rester for every API route.
type MPRester struct {
	client *Client

	Summary             *SummaryRester
	Materials           *MaterialsRester
	Thermo              *ThermoRester
	Tasks               *TaskRester
	OxidationStates     *OxidationStatesRester
	Similarity          *SimilarityRester
	Phonon              *PhononRester
	ElectronicStructure *ElectronicStructureRester
	BandStructure       *BandStructureRester
	DOS                 *DosRester
	ChargeDensity       *ChargeDensityRester
	Fermi               *FermiRester
	Synthesis           *SynthesisRester
	Robocrys            *RobocrysRester
	DOI                 *DOIRester
	Provenance          *ProvenanceRester
	Magnetism           *MagnetismRester
	Elasticity          *ElasticityRester
	Dielectric          *DielectricRester
	Piezoelectric       *PiezoRester
	EOS                 *EOSRester
	XAS                 *XASRester
	Substrates          *SubstratesRester
	SurfaceProperties   *SurfacePropertiesRester
	GrainBoundary       *GrainBoundaryRester
	Electrodes          *ElectrodeRester
	Bonds               *BondsRester
	Molecules           *MoleculesRester
	UserSettings        *UserSettingsRester
	GeneralStore        *GeneralStoreRester
	MPComplete          *MPCompleteRester

	routes map[string]Route
}

// NewMPRester creates a client and every route rester on top of it.
func NewMPRester(opts ...Option) (*MPRester, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return NewMPResterFromClient(c), nil
}

// NewMPResterFromClient builds the route resters on an existing client.
func NewMPResterFromClient(c *Client) *MPRester {
	m := &MPRester{
		client:              c,
		Summary:             newSummaryRester(c),
		Materials:           &MaterialsRester{NewRester[schema.MaterialsDoc](c, "materials")},
		Thermo:              newThermoRester(c),
		Tasks:               newTaskRester(c),
		OxidationStates:     &OxidationStatesRester{NewRester[schema.OxidationStateDoc](c, "oxidation_states")},
		Similarity:          &SimilarityRester{NewRester[schema.SimilarityDoc](c, "similarity")},
		Phonon:              &PhononRester{NewRester[schema.PhononBSDOSDoc](c, "phonon")},
		ElectronicStructure: &ElectronicStructureRester{NewRester[schema.ElectronicStructureDoc](c, "electronic_structure")},
		BandStructure:       newBandStructureRester(c),
		DOS:                 newDosRester(c),
		ChargeDensity:       newChargeDensityRester(c),
		Fermi:               &FermiRester{NewRester[schema.FermiDoc](c, "fermi")},
		Synthesis:           newSynthesisRester(c),
		Robocrys:            newRobocrysRester(c),
		DOI:                 &DOIRester{NewRester[schema.DOIDoc](c, "doi")},
		Provenance:          &ProvenanceRester{NewRester[schema.ProvenanceDoc](c, "provenance")},
		Magnetism:           &MagnetismRester{NewRester[schema.MagnetismDoc](c, "magnetism")},
		Elasticity:          &ElasticityRester{NewRester[schema.ElasticityDoc](c, "elasticity")},
		Dielectric:          &DielectricRester{NewRester[schema.DielectricDoc](c, "dielectric")},
		Piezoelectric:       &PiezoRester{NewRester[schema.PiezoDoc](c, "piezoelectric")},
		EOS:                 &EOSRester{NewRester[schema.EOSDoc](c, "eos")},
		XAS:                 &XASRester{NewRester[schema.XASDoc](c, "xas")},
		Substrates:          &SubstratesRester{NewRester[schema.SubstratesDoc](c, "substrates")},
		SurfaceProperties:   &SurfacePropertiesRester{NewRester[schema.SurfacePropDoc](c, "surface_properties")},
		GrainBoundary:       &GrainBoundaryRester{NewRester[schema.GrainBoundaryDoc](c, "grain_boundary")},
		Electrodes:          &ElectrodeRester{NewRester[schema.InsertionElectrodeDoc](c, "insertion_electrodes")},
		Bonds:               &BondsRester{NewRester[schema.BondingDoc](c, "bonds")},
		Molecules:           &MoleculesRester{NewRester[schema.MoleculesDoc](c, "molecules")},
		UserSettings:        &UserSettingsRester{NewRester[schema.UserSettingsDoc](c, "_user_settings")},
		GeneralStore:        &GeneralStoreRester{NewRester[schema.GeneralStoreDoc](c, "_general_store")},
		MPComplete:          &MPCompleteRester{NewRester[schema.MPCompleteDoc](c, "mpcomplete")},
	}
	m.routes = map[string]Route{}
	for _, r := range []routeInfo{
		m.Summary, m.Materials, m.Thermo, m.Tasks, m.OxidationStates, m.Similarity, m.Phonon,
		m.ElectronicStructure, m.BandStructure, m.DOS, m.ChargeDensity, m.Fermi, m.Synthesis,
		m.Robocrys, m.DOI, m.Provenance, m.Magnetism, m.Elasticity, m.Dielectric, m.Piezoelectric,
		m.EOS, m.XAS, m.Substrates, m.SurfaceProperties, m.GrainBoundary, m.Electrodes, m.Bonds,
		m.Molecules, m.UserSettings, m.GeneralStore, m.MPComplete,
	} {
		m.routes[r.Suffix()] = Route{
			Suffix:  r.Suffix(),
			Key:     r.PrimaryKey(),
			Fields:  r.AvailableFields(),
			Untyped: NewRester[Document](c, r.Suffix()).withKey(r.PrimaryKey()).withChunkSize(r.defaultChunkSize()),
		}
	}
	for _, sub := range []struct{ suffix, key string }{
		{"summary/stats", "field"},
		{"thermo/phase_diagram", "chemsys"},
		{"tasks/trajectory", "task_id"},
		{"tasks/deprecation", "task_id"},
		{"robocrys/text_search", "material_id"},
	} {
		m.routes[sub.suffix] = Route{
			Suffix:  sub.suffix,
			Key:     sub.key,
			Untyped: NewRester[Document](c, sub.suffix).withKey(sub.key),
		}
	}
	return m
}

// routeInfo is what the registry needs from a typed rester.
type routeInfo interface {
	Suffix() string
	PrimaryKey() string
	AvailableFields() []string
	defaultChunkSize() int
}

func (r *Rester[T]) defaultChunkSize() int { return r.chunkSize }

// Route describes one API route and carries an untyped rester for it.
type Route struct {
	Suffix  string
	Key     string
	Fields  []string
	Untyped *Rester[Document]
}

// Client returns the shared client.
func (m *MPRester) Client() *Client { return m.client }

// Route returns the route registered under suffix.
func (m *MPRester) Route(suffix string) (Route, bool) {
	r, ok := m.routes[strings.Trim(suffix, "/")]
	return r, ok
}

// Routes returns every registered route suffix, sorted.
func (m *MPRester) Routes() []string {
	out := make([]string, 0, len(m.routes))
	for s := range m.routes {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// GetDatabaseVersion returns the version of the database behind the API.
func (m *MPRester) GetDatabaseVersion(ctx context.Context) (string, error) {
	hb, err := m.client.Heartbeat(ctx)
	if err != nil {
		return "", err
	}
	return hb.DBVersion, nil
}

// GetStructureByMaterialID returns the final structure of a material, or its
// initial structures when final is false.
func (m *MPRester) GetStructureByMaterialID(ctx context.Context, materialID string, final bool) ([]schema.Structure, error) {
	if !final {
		return m.Materials.GetInitialStructuresByMaterialID(ctx, materialID)
	}
	s, err := m.Materials.GetStructureByMaterialID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	return []schema.Structure{*s}, nil
}

// GetMaterialIDFromTaskID returns the material a task belongs to.
func (m *MPRester) GetMaterialIDFromTaskID(ctx context.Context, taskID string) (string, error) {
	return m.Materials.GetMaterialsIDFromTaskID(ctx, taskID)
}

// GetTaskIDsAssociatedWithMaterialID returns the tasks of a material,
// limited to those of calcTypes when given.
func (m *MPRester) GetTaskIDsAssociatedWithMaterialID(ctx context.Context, materialID string, calcTypes ...string) ([]string, error) {
	doc, err := m.Materials.GetDataByID(ctx, materialID, "calc_types", "task_ids")
	if err != nil {
		return nil, err
	}
	if len(calcTypes) == 0 {
		return doc.TaskIDs, nil
	}
	var out []string
	for taskID, ct := range doc.CalcTypes {
		if slices.Contains(calcTypes, ct) {
			out = append(out, taskID)
		}
	}
	sort.Strings(out)
	return out, nil
}

// GetMaterialIDs returns the materials matching a formula such as "Fe2O3"
// or a chemical system such as "Li-Fe-O".
func (m *MPRester) GetMaterialIDs(ctx context.Context, chemsysFormula string) ([]string, error) {
	docs, err := m.Materials.SearchMaterialDocs(ctx, materialsLookup(chemsysFormula), Fields("material_id"))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.MaterialID)
	}
	sort.Strings(ids)
	return ids, nil
}

// GetStructures returns the final structures of the materials matching a
// formula or chemical system.
func (m *MPRester) GetStructures(ctx context.Context, chemsysFormula string) ([]schema.Structure, error) {
	docs, err := m.Materials.SearchMaterialDocs(ctx, materialsLookup(chemsysFormula), Fields("material_id", "structure"))
	if err != nil {
		return nil, err
	}
	out := make([]schema.Structure, 0, len(docs))
	for _, d := range docs {
		if d.Structure != nil {
			out = append(out, *d.Structure)
		}
	}
	return out, nil
}

func materialsLookup(chemsysFormula string) MaterialsQuery {
	if strings.Contains(chemsysFormula, "-") {
		return MaterialsQuery{Chemsys: []string{chemsysFormula}}
	}
	return MaterialsQuery{Formula: []string{chemsysFormula}}
}

// GetBandstructureByMaterialID returns the line-mode band structure of a
// material along the default path.
func (m *MPRester) GetBandstructureByMaterialID(ctx context.Context, materialID string) (map[string]any, error) {
	return m.BandStructure.GetBandstructureFromMaterialID(ctx, materialID, schema.PathSetyawanCurtarolo, true)
}

// GetDOSByMaterialID returns the total density of states of a material.
func (m *MPRester) GetDOSByMaterialID(ctx context.Context, materialID string) (map[string]any, error) {
	return m.DOS.GetDosFromMaterialID(ctx, materialID)
}

// GetPhononBandstructureByMaterialID returns the phonon band structure of a material.
func (m *MPRester) GetPhononBandstructureByMaterialID(ctx context.Context, materialID string) (map[string]any, error) {
	return m.Phonon.GetBandstructureByMaterialID(ctx, materialID)
}

// GetPhononDOSByMaterialID returns the phonon density of states of a material.
func (m *MPRester) GetPhononDOSByMaterialID(ctx context.Context, materialID string) (map[string]any, error) {
	return m.Phonon.GetDOSByMaterialID(ctx, materialID)
}

// GetChargeDensityFromMaterialID returns the charge density of the most
// recent task of a material that has one.
func (m *MPRester) GetChargeDensityFromMaterialID(ctx context.Context, materialID string) (map[string]any, error) {
	taskIDs, err := m.GetTaskIDsAssociatedWithMaterialID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if len(taskIDs) == 0 {
		return nil, &NoResultError{ID: materialID}
	}
	entries, err := m.ChargeDensity.SearchChargeDensities(ctx, taskIDs)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no charge density for %s", ErrNoResult, materialID)
	}
	latest := slices.MaxFunc(entries, func(a, b schema.ChgcarDataDoc) int {
		return compareUpdated(a.Timestamp, b.Timestamp)
	})
	return m.ChargeDensity.GetChargeDensityFromTaskID(ctx, latest.TaskID)
}

// GetChargeDensityFromTaskID returns the charge density computed by a task.
func (m *MPRester) GetChargeDensityFromTaskID(ctx context.Context, taskID string) (map[string]any, error) {
	return m.ChargeDensity.GetChargeDensityFromTaskID(ctx, taskID)
}

func compareUpdated(a, b schema.Timestamp) int {
	switch {
	case a.LastUpdated == nil && b.LastUpdated == nil:
		return 0
	case a.LastUpdated == nil:
		return -1
	case b.LastUpdated == nil:
		return 1
	}
	return a.LastUpdated.Compare(*b.LastUpdated)
}

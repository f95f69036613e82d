package mpapi

import (
	"context"

	"github.com/kailas-cloud/mpapi/pkg/schema"
)

// Property routes take their filters as a plain Query, e.g.
//
//	Query{"k_vrh_min": 100} on elasticity or Query{"ordering": schema.OrderingFM} on magnetism.

// MagnetismRester queries magnetic orderings and moments.
type MagnetismRester struct {
	*Rester[schema.MagnetismDoc]
}

// ElasticityRester queries elastic tensors and moduli.
type ElasticityRester struct {
	*Rester[schema.ElasticityDoc]
}

// DielectricRester queries dielectric tensors.
type DielectricRester struct {
	*Rester[schema.DielectricDoc]
}

// PiezoRester queries piezoelectric tensors.
type PiezoRester struct {
	*Rester[schema.PiezoDoc]
}

// EOSRester queries equations of state.
type EOSRester struct {
	*Rester[schema.EOSDoc]
}

// XASRester queries X-ray absorption spectra.
type XASRester struct {
	*Rester[schema.XASDoc]
}

// XASQuery filters the xas route.
type XASQuery struct {
	MaterialIDs      []string
	Formula          []string
	Chemsys          []string
	Elements         []string
	Edge             schema.Edge
	SpectrumType     schema.XASType
	AbsorbingElement string
}

// SearchXASDocs returns the spectra matching xq.
func (r *XASRester) SearchXASDocs(ctx context.Context, xq XASQuery, opts ...SearchOption) ([]schema.XASDoc, error) {
	q := Query{
		"formula":           xq.Formula,
		"chemsys":           xq.Chemsys,
		"elements":          xq.Elements,
		"edge":              xq.Edge,
		"spectrum_type":     xq.SpectrumType,
		"absorbing_element": xq.AbsorbingElement,
	}
	if err := setIDs(q, "material_ids", xq.MaterialIDs); err != nil {
		return nil, err
	}
	return r.Search(ctx, q, opts...)
}

// SubstratesRester queries film/substrate matches.
type SubstratesRester struct {
	*Rester[schema.SubstratesDoc]
}

// SurfacePropertiesRester queries surface energies and work functions.
type SurfacePropertiesRester struct {
	*Rester[schema.SurfacePropDoc]
}

// GrainBoundaryRester queries grain boundary energies.
type GrainBoundaryRester struct {
	*Rester[schema.GrainBoundaryDoc]
}

// ElectrodeRester queries insertion electrodes by battery id.
type ElectrodeRester struct {
	*Rester[schema.InsertionElectrodeDoc]
}

// ElectrodeQuery filters the insertion_electrodes route.
type ElectrodeQuery struct {
	Formula    []string
	Elements   []string
	WorkingIon string
	// Ranges bounds numeric fields by their own name, e.g. "average_voltage".
	Ranges map[string]Range
}

// SearchElectrodeDocs returns the electrodes matching eq.
func (r *ElectrodeRester) SearchElectrodeDocs(ctx context.Context, eq ElectrodeQuery, opts ...SearchOption) ([]schema.InsertionElectrodeDoc, error) {
	q := Query{"formula": eq.Formula, "elements": eq.Elements, "working_ion": eq.WorkingIon}
	for name, rg := range eq.Ranges {
		q.SetRange(name, rg)
	}
	return r.Search(ctx, q, opts...)
}

// BondsRester queries bonding and coordination environments.
type BondsRester struct {
	*Rester[schema.BondingDoc]
}

// MoleculesRester queries molecules.
type MoleculesRester struct {
	*Rester[schema.MoleculesDoc]
}

package schema

import "time"

// Lattice is a crystal lattice given by its row vectors.
type Lattice struct {
	Matrix [3][3]float64 `json:"matrix" bson:"matrix"`
	A      float64       `json:"a,omitempty" bson:"a,omitempty"`
	B      float64       `json:"b,omitempty" bson:"b,omitempty"`
	C      float64       `json:"c,omitempty" bson:"c,omitempty"`
	Alpha  float64       `json:"alpha,omitempty" bson:"alpha,omitempty"`
	Beta   float64       `json:"beta,omitempty" bson:"beta,omitempty"`
	Gamma  float64       `json:"gamma,omitempty" bson:"gamma,omitempty"`
	Volume float64       `json:"volume,omitempty" bson:"volume,omitempty"`
}

// Species is an occupant of a site.
type Species struct {
	Element   string  `json:"element" bson:"element"`
	Occu      float64 `json:"occu" bson:"occu"`
	OxidState float64 `json:"oxidation_state,omitempty" bson:"oxidation_state,omitempty"`
}

// Site is a periodic site of a structure.
type Site struct {
	Species    []Species      `json:"species" bson:"species"`
	ABC        [3]float64     `json:"abc" bson:"abc"`
	XYZ        [3]float64     `json:"xyz,omitempty" bson:"xyz,omitempty"`
	Label      string         `json:"label,omitempty" bson:"label,omitempty"`
	Properties map[string]any `json:"properties,omitempty" bson:"properties,omitempty"`
}

// Structure is a periodic crystal structure.
type Structure struct {
	Lattice Lattice `json:"lattice" bson:"lattice"`
	Sites   []Site  `json:"sites" bson:"sites"`
	Charge  float64 `json:"charge,omitempty" bson:"charge,omitempty"`
}

// Molecule is a non-periodic set of sites.
type Molecule struct {
	Sites            []Site  `json:"sites" bson:"sites"`
	Charge           float64 `json:"charge,omitempty" bson:"charge,omitempty"`
	SpinMultiplicity int     `json:"spin_multiplicity,omitempty" bson:"spin_multiplicity,omitempty"`
}

// Symmetry describes the symmetry of a structure.
type Symmetry struct {
	CrystalSystem CrystalSystem `json:"crystal_system,omitempty" bson:"crystal_system,omitempty"`
	Symbol        string        `json:"symbol,omitempty" bson:"symbol,omitempty"`
	Number        int           `json:"number,omitempty" bson:"number,omitempty"`
	PointGroup    string        `json:"point_group,omitempty" bson:"point_group,omitempty"`
	SymPrec       float64       `json:"symprec,omitempty" bson:"symprec,omitempty"`
	Version       string        `json:"version,omitempty" bson:"version,omitempty"`
}

// Composition maps element symbols to amounts.
type Composition map[string]float64

// StructureMetadata is the composition and symmetry block shared by
// structure-bearing documents.
type StructureMetadata struct {
	NSites             int         `json:"nsites,omitempty" bson:"nsites,omitempty"`
	Elements           []string    `json:"elements,omitempty" bson:"elements,omitempty"`
	NElements          int         `json:"nelements,omitempty" bson:"nelements,omitempty"`
	Composition        Composition `json:"composition,omitempty" bson:"composition,omitempty"`
	CompositionReduced Composition `json:"composition_reduced,omitempty" bson:"composition_reduced,omitempty"`
	FormulaPretty      string      `json:"formula_pretty,omitempty" bson:"formula_pretty,omitempty"`
	FormulaAnonymous   string      `json:"formula_anonymous,omitempty" bson:"formula_anonymous,omitempty"`
	Chemsys            string      `json:"chemsys,omitempty" bson:"chemsys,omitempty"`
	Volume             float64     `json:"volume,omitempty" bson:"volume,omitempty"`
	Density            float64     `json:"density,omitempty" bson:"density,omitempty"`
	DensityAtomic      float64     `json:"density_atomic,omitempty" bson:"density_atomic,omitempty"`
	Symmetry           *Symmetry   `json:"symmetry,omitempty" bson:"symmetry,omitempty"`
}

// Timestamp is embedded by documents carrying a last_updated field.
type Timestamp struct {
	LastUpdated *time.Time `json:"last_updated,omitempty" bson:"last_updated,omitempty"`
}

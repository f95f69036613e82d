package schema

// Mineral names the mineral prototype of a structure.
type Mineral struct {
	Type     string  `json:"type,omitempty" bson:"type,omitempty"`
	Name     string  `json:"name,omitempty" bson:"name,omitempty"`
	Distance float64 `json:"distance,omitempty" bson:"distance,omitempty"`
}

// CondensedStructure is the condensed description used by robocrys.
type CondensedStructure struct {
	Formula        string        `json:"formula,omitempty" bson:"formula,omitempty"`
	SpgSymbol      string        `json:"spg_symbol,omitempty" bson:"spg_symbol,omitempty"`
	CrystalSystem  CrystalSystem `json:"crystal_system,omitempty" bson:"crystal_system,omitempty"`
	Mineral        *Mineral      `json:"mineral,omitempty" bson:"mineral,omitempty"`
	Dimensionality int           `json:"dimensionality,omitempty" bson:"dimensionality,omitempty"`
}

// RobocrysDoc is the generated text description of a structure.
type RobocrysDoc struct {
	Timestamp `bson:",inline"`

	MaterialID         string              `mpapi:"key" json:"material_id" bson:"material_id" validate:"required"`
	Description        string              `json:"description,omitempty" bson:"description,omitempty"`
	CondensedStructure *CondensedStructure `json:"condensed_structure,omitempty" bson:"condensed_structure,omitempty"`
}

// MagnetismData is the magnetic analysis block of a material.
type MagnetismData struct {
	Ordering                                 Ordering  `json:"ordering,omitempty" bson:"ordering,omitempty"`
	IsMagnetic                               bool      `json:"is_magnetic" bson:"is_magnetic"`
	ExchangeSymmetry                         int       `json:"exchange_symmetry,omitempty" bson:"exchange_symmetry,omitempty"`
	NumMagneticSites                         int       `json:"num_magnetic_sites,omitempty" bson:"num_magnetic_sites,omitempty"`
	NumUniqueMagneticSites                   int       `json:"num_unique_magnetic_sites,omitempty" bson:"num_unique_magnetic_sites,omitempty"`
	TypesOfMagneticSpecies                   []string  `json:"types_of_magnetic_species,omitempty" bson:"types_of_magnetic_species,omitempty"`
	Magmoms                                  []float64 `json:"magmoms,omitempty" bson:"magmoms,omitempty"`
	TotalMagnetization                       float64   `json:"total_magnetization,omitempty" bson:"total_magnetization,omitempty"`
	TotalMagnetizationNormalizedVol          float64   `json:"total_magnetization_normalized_vol,omitempty" bson:"total_magnetization_normalized_vol,omitempty"`
	TotalMagnetizationNormalizedFormulaUnits float64   `json:"total_magnetization_normalized_formula_units,omitempty" bson:"total_magnetization_normalized_formula_units,omitempty"`
}

// MagnetismDoc holds the magnetic properties of a material.
type MagnetismDoc struct {
	Timestamp `bson:",inline"`

	MaterialID string         `mpapi:"key" json:"material_id" bson:"material_id" validate:"required"`
	TaskID     string         `json:"task_id,omitempty" bson:"task_id,omitempty"`
	Magnetism  *MagnetismData `json:"magnetism,omitempty" bson:"magnetism,omitempty"`
}

// ElasticityData holds elastic moduli and tensors.
type ElasticityData struct {
	KVoigt              float64     `json:"k_voigt,omitempty" bson:"k_voigt,omitempty"`
	KReuss              float64     `json:"k_reuss,omitempty" bson:"k_reuss,omitempty"`
	KVRH                float64     `json:"k_vrh,omitempty" bson:"k_vrh,omitempty"`
	GVoigt              float64     `json:"g_voigt,omitempty" bson:"g_voigt,omitempty"`
	GReuss              float64     `json:"g_reuss,omitempty" bson:"g_reuss,omitempty"`
	GVRH                float64     `json:"g_vrh,omitempty" bson:"g_vrh,omitempty"`
	UniversalAnisotropy float64     `json:"universal_anisotropy,omitempty" bson:"universal_anisotropy,omitempty"`
	HomogeneousPoisson  float64     `json:"homogeneous_poisson,omitempty" bson:"homogeneous_poisson,omitempty"`
	ElasticTensor       [][]float64 `json:"elastic_tensor,omitempty" bson:"elastic_tensor,omitempty"`
	ComplianceTensor    [][]float64 `json:"compliance_tensor,omitempty" bson:"compliance_tensor,omitempty"`
}

// ElasticityDoc holds the elastic properties of a material.
type ElasticityDoc struct {
	TaskID        string          `mpapi:"key" json:"task_id" bson:"task_id" validate:"required"`
	PrettyFormula string          `json:"pretty_formula,omitempty" bson:"pretty_formula,omitempty"`
	Chemsys       string          `json:"chemsys,omitempty" bson:"chemsys,omitempty"`
	Elements      []string        `json:"elements,omitempty" bson:"elements,omitempty"`
	Elasticity    *ElasticityData `json:"elasticity,omitempty" bson:"elasticity,omitempty"`
}

// DielectricData holds dielectric constants.
type DielectricData struct {
	Total   [][]float64 `json:"total,omitempty" bson:"total,omitempty"`
	Ionic   [][]float64 `json:"ionic,omitempty" bson:"ionic,omitempty"`
	Static  [][]float64 `json:"static,omitempty" bson:"static,omitempty"`
	ETotal  float64     `json:"e_total,omitempty" bson:"e_total,omitempty"`
	EIonic  float64     `json:"e_ionic,omitempty" bson:"e_ionic,omitempty"`
	EStatic float64     `json:"e_static,omitempty" bson:"e_static,omitempty"`
	N       float64     `json:"n,omitempty" bson:"n,omitempty"`
}

// DielectricDoc holds the dielectric properties of a material.
type DielectricDoc struct {
	Timestamp `bson:",inline"`

	MaterialID string          `mpapi:"key" json:"material_id" bson:"material_id" validate:"required"`
	TaskID     string          `json:"task_id,omitempty" bson:"task_id,omitempty"`
	Dielectric *DielectricData `json:"dielectric,omitempty" bson:"dielectric,omitempty"`
}

// PiezoData holds piezoelectric tensors.
type PiezoData struct {
	Total        [][]float64 `json:"total,omitempty" bson:"total,omitempty"`
	Ionic        [][]float64 `json:"ionic,omitempty" bson:"ionic,omitempty"`
	Static       [][]float64 `json:"static,omitempty" bson:"static,omitempty"`
	EijMax       float64     `json:"e_ij_max,omitempty" bson:"e_ij_max,omitempty"`
	MaxDirection []int       `json:"max_direction,omitempty" bson:"max_direction,omitempty"`
}

// PiezoDoc holds the piezoelectric properties of a material.
type PiezoDoc struct {
	Timestamp `bson:",inline"`

	MaterialID string     `mpapi:"key" json:"material_id" bson:"material_id" validate:"required"`
	TaskID     string     `json:"task_id,omitempty" bson:"task_id,omitempty"`
	Piezo      *PiezoData `json:"piezo,omitempty" bson:"piezo,omitempty"`
}

// EOSDoc holds equation of state fits.
type EOSDoc struct {
	TaskID   string         `mpapi:"key" json:"task_id" bson:"task_id" validate:"required"`
	Energies []float64      `json:"energies,omitempty" bson:"energies,omitempty"`
	Volumes  []float64      `json:"volumes,omitempty" bson:"volumes,omitempty"`
	EOS      map[string]any `json:"eos,omitempty" bson:"eos,omitempty"`
}

// XASSpectrum is an absorption spectrum.
type XASSpectrum struct {
	X                []float64  `json:"x" bson:"x"`
	Y                []float64  `json:"y" bson:"y"`
	Structure        *Structure `json:"structure,omitempty" bson:"structure,omitempty"`
	AbsorbingElement string     `json:"absorbing_element,omitempty" bson:"absorbing_element,omitempty"`
	Edge             Edge       `json:"edge,omitempty" bson:"edge,omitempty"`
}

// XASDoc is a computed x-ray absorption spectrum.
type XASDoc struct {
	StructureMetadata `bson:",inline"`
	Timestamp         `bson:",inline"`

	XASID            string       `mpapi:"key" json:"xas_id" bson:"xas_id" validate:"required"`
	TaskID           string       `json:"task_id,omitempty" bson:"task_id,omitempty"`
	MaterialID       string       `json:"material_id,omitempty" bson:"material_id,omitempty"`
	XASIDs           []string     `json:"xas_ids,omitempty" bson:"xas_ids,omitempty"`
	Edge             Edge         `json:"edge,omitempty" bson:"edge,omitempty"`
	AbsorbingElement string       `json:"absorbing_element,omitempty" bson:"absorbing_element,omitempty"`
	SpectrumType     XASType      `json:"spectrum_type,omitempty" bson:"spectrum_type,omitempty"`
	Spectrum         *XASSpectrum `json:"spectrum,omitempty" bson:"spectrum,omitempty"`
}

// SubstratesDoc is a substrate matching a film.
type SubstratesDoc struct {
	SubForm    string  `json:"sub_form,omitempty" bson:"sub_form,omitempty"`
	SubID      string  `json:"sub_id,omitempty" bson:"sub_id,omitempty"`
	FilmOrient string  `json:"film_orient,omitempty" bson:"film_orient,omitempty"`
	Area       float64 `json:"area,omitempty" bson:"area,omitempty"`
	Energy     float64 `json:"energy,omitempty" bson:"energy,omitempty"`
	FilmID     string  `mpapi:"key" json:"film_id" bson:"film_id" validate:"required"`
	NOrients   int     `json:"norients,omitempty" bson:"norients,omitempty"`
	Orient     string  `json:"orient,omitempty" bson:"orient,omitempty"`
}

// SurfaceEntry is one computed surface of a material.
type SurfaceEntry struct {
	MillerIndex     []int   `json:"miller_index,omitempty" bson:"miller_index,omitempty"`
	SurfaceEnergy   float64 `json:"surface_energy,omitempty" bson:"surface_energy,omitempty"`
	IsReconstructed bool    `json:"is_reconstructed" bson:"is_reconstructed"`
	Structure       string  `json:"structure,omitempty" bson:"structure,omitempty"`
	WorkFunction    float64 `json:"work_function,omitempty" bson:"work_function,omitempty"`
	EFermi          float64 `json:"efermi,omitempty" bson:"efermi,omitempty"`
	AreaFraction    float64 `json:"area_fraction,omitempty" bson:"area_fraction,omitempty"`
	HasWulff        bool    `json:"has_wulff" bson:"has_wulff"`
}

// SurfacePropDoc holds the surface properties of a material.
type SurfacePropDoc struct {
	TaskID                string         `mpapi:"key" json:"task_id" bson:"task_id" validate:"required"`
	Surfaces              []SurfaceEntry `json:"surfaces,omitempty" bson:"surfaces,omitempty"`
	WeightedSurfaceEnergy float64        `json:"weighted_surface_energy,omitempty" bson:"weighted_surface_energy,omitempty"`
	SurfaceAnisotropy     float64        `json:"surface_anisotropy,omitempty" bson:"surface_anisotropy,omitempty"`
	PrettyFormula         string         `json:"pretty_formula,omitempty" bson:"pretty_formula,omitempty"`
	ShapeFactor           float64        `json:"shape_factor,omitempty" bson:"shape_factor,omitempty"`
	WeightedWorkFunction  float64        `json:"weighted_work_function,omitempty" bson:"weighted_work_function,omitempty"`
	HasReconstructed      bool           `json:"has_reconstructed" bson:"has_reconstructed"`
	Structure             string         `json:"structure,omitempty" bson:"structure,omitempty"`
}

// GrainBoundaryDoc is a computed grain boundary.
type GrainBoundaryDoc struct {
	Timestamp `bson:",inline"`

	TaskID           string     `mpapi:"key" json:"task_id" bson:"task_id" validate:"required"`
	Sigma            int        `json:"sigma,omitempty" bson:"sigma,omitempty"`
	Type             GBType     `json:"type,omitempty" bson:"type,omitempty"`
	RotationAxis     []int      `json:"rotation_axis,omitempty" bson:"rotation_axis,omitempty"`
	GBPlane          []int      `json:"gb_plane,omitempty" bson:"gb_plane,omitempty"`
	RotationAngle    float64    `json:"rotation_angle,omitempty" bson:"rotation_angle,omitempty"`
	GBEnergy         float64    `json:"gb_energy,omitempty" bson:"gb_energy,omitempty"`
	InitialStructure *Structure `json:"initial_structure,omitempty" bson:"initial_structure,omitempty"`
	FinalStructure   *Structure `json:"final_structure,omitempty" bson:"final_structure,omitempty"`
	PrettyFormula    string     `json:"pretty_formula,omitempty" bson:"pretty_formula,omitempty"`
	WSep             float64    `json:"w_sep,omitempty" bson:"w_sep,omitempty"`
	CIF              string     `json:"cif,omitempty" bson:"cif,omitempty"`
	Chemsys          string     `json:"chemsys,omitempty" bson:"chemsys,omitempty"`
}

// InsertionVoltagePair is one voltage step of an insertion electrode.
type InsertionVoltagePair struct {
	FormulaCharge    string  `json:"formula_charge,omitempty" bson:"formula_charge,omitempty"`
	FormulaDischarge string  `json:"formula_discharge,omitempty" bson:"formula_discharge,omitempty"`
	AverageVoltage   float64 `json:"average_voltage,omitempty" bson:"average_voltage,omitempty"`
	CapacityGrav     float64 `json:"capacity_grav,omitempty" bson:"capacity_grav,omitempty"`
	CapacityVol      float64 `json:"capacity_vol,omitempty" bson:"capacity_vol,omitempty"`
}

// InsertionElectrodeDoc is an insertion electrode built from a framework.
type InsertionElectrodeDoc struct {
	Timestamp `bson:",inline"`

	BatteryID          string                 `mpapi:"key" json:"battery_id" bson:"battery_id" validate:"required"`
	WorkingIon         string                 `json:"working_ion,omitempty" bson:"working_ion,omitempty"`
	FrameworkFormula   string                 `json:"framework_formula,omitempty" bson:"framework_formula,omitempty"`
	Elements           []string               `json:"elements,omitempty" bson:"elements,omitempty"`
	NElements          int                    `json:"nelements,omitempty" bson:"nelements,omitempty"`
	Chemsys            string                 `json:"chemsys,omitempty" bson:"chemsys,omitempty"`
	FormulaAnonymous   string                 `json:"formula_anonymous,omitempty" bson:"formula_anonymous,omitempty"`
	FormulaPretty      string                 `json:"formula_pretty,omitempty" bson:"formula_pretty,omitempty"`
	AverageVoltage     float64                `json:"average_voltage,omitempty" bson:"average_voltage,omitempty"`
	CapacityGrav       float64                `json:"capacity_grav,omitempty" bson:"capacity_grav,omitempty"`
	CapacityVol        float64                `json:"capacity_vol,omitempty" bson:"capacity_vol,omitempty"`
	EnergyGrav         float64                `json:"energy_grav,omitempty" bson:"energy_grav,omitempty"`
	EnergyVol          float64                `json:"energy_vol,omitempty" bson:"energy_vol,omitempty"`
	FracaCharge        float64                `json:"fracA_charge,omitempty" bson:"fracA_charge,omitempty"`
	FracaDischarge     float64                `json:"fracA_discharge,omitempty" bson:"fracA_discharge,omitempty"`
	MaxDeltaVolume     float64                `json:"max_delta_volume,omitempty" bson:"max_delta_volume,omitempty"`
	StabilityCharge    float64                `json:"stability_charge,omitempty" bson:"stability_charge,omitempty"`
	StabilityDischarge float64                `json:"stability_discharge,omitempty" bson:"stability_discharge,omitempty"`
	NumSteps           int                    `json:"num_steps,omitempty" bson:"num_steps,omitempty"`
	MaterialIDs        []string               `json:"material_ids,omitempty" bson:"material_ids,omitempty"`
	AdjPairs           []InsertionVoltagePair `json:"adj_pairs,omitempty" bson:"adj_pairs,omitempty"`
}

// BondingDoc holds the bonding analysis of a material.
type BondingDoc struct {
	Timestamp `bson:",inline"`

	MaterialID                string               `mpapi:"key" json:"material_id" bson:"material_id" validate:"required"`
	Method                    string               `json:"method,omitempty" bson:"method,omitempty"`
	CoordinationEnvs          []string             `json:"coordination_envs,omitempty" bson:"coordination_envs,omitempty"`
	CoordinationEnvsAnonymous []string             `json:"coordination_envs_anonymous,omitempty" bson:"coordination_envs_anonymous,omitempty"`
	BondTypes                 map[string][]float64 `json:"bond_types,omitempty" bson:"bond_types,omitempty"`
	BondLengthStats           map[string]float64   `json:"bond_length_stats,omitempty" bson:"bond_length_stats,omitempty"`
}

// MoleculesDoc is a computed molecule.
type MoleculesDoc struct {
	TaskID        string    `mpapi:"key" json:"task_id" bson:"task_id" validate:"required"`
	Elements      []string  `json:"elements,omitempty" bson:"elements,omitempty"`
	NElements     int       `json:"nelements,omitempty" bson:"nelements,omitempty"`
	EA            float64   `json:"EA,omitempty" bson:"EA,omitempty"`
	IE            float64   `json:"IE,omitempty" bson:"IE,omitempty"`
	Charge        int       `json:"charge" bson:"charge"`
	PointGroup    string    `json:"pointgroup,omitempty" bson:"pointgroup,omitempty"`
	Smiles        string    `json:"smiles,omitempty" bson:"smiles,omitempty"`
	Molecule      *Molecule `json:"molecule,omitempty" bson:"molecule,omitempty"`
	FormulaPretty string    `json:"formula_pretty,omitempty" bson:"formula_pretty,omitempty"`
	SVG           string    `json:"svg,omitempty" bson:"svg,omitempty"`
}

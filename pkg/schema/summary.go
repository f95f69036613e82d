package schema

// XASSearchData summarizes one XAS spectrum attached to a material.
type XASSearchData struct {
	Edge             Edge    `json:"edge,omitempty" bson:"edge,omitempty"`
	AbsorbingElement string  `json:"absorbing_element,omitempty" bson:"absorbing_element,omitempty"`
	SpectrumType     XASType `json:"spectrum_type,omitempty" bson:"spectrum_type,omitempty"`
}

// GBSearchData summarizes one grain boundary attached to a material.
type GBSearchData struct {
	Sigma         int     `json:"sigma,omitempty" bson:"sigma,omitempty"`
	Type          GBType  `json:"type,omitempty" bson:"type,omitempty"`
	GBEnergy      float64 `json:"gb_energy,omitempty" bson:"gb_energy,omitempty"`
	RotationAngle float64 `json:"rotation_angle,omitempty" bson:"rotation_angle,omitempty"`
}

// SummaryDoc is the aggregated per-material record of the summary route.
type SummaryDoc struct {
	StructureMetadata `bson:",inline"`
	Timestamp         `bson:",inline"`

	MaterialID  string     `mpapi:"key" json:"material_id" bson:"material_id" validate:"required"`
	Structure   *Structure `json:"structure,omitempty" bson:"structure,omitempty"`
	Deprecated  bool       `json:"deprecated" bson:"deprecated"`
	Theoretical bool       `json:"theoretical" bson:"theoretical"`

	UncorrectedEnergyPerAtom         *float64 `json:"uncorrected_energy_per_atom,omitempty" bson:"uncorrected_energy_per_atom,omitempty"`
	EnergyPerAtom                    *float64 `json:"energy_per_atom,omitempty" bson:"energy_per_atom,omitempty"`
	FormationEnergyPerAtom           *float64 `json:"formation_energy_per_atom,omitempty" bson:"formation_energy_per_atom,omitempty"`
	EnergyAboveHull                  *float64 `json:"energy_above_hull,omitempty" bson:"energy_above_hull,omitempty"`
	IsStable                         bool     `json:"is_stable" bson:"is_stable"`
	EquilibriumReactionEnergyPerAtom *float64 `json:"equilibrium_reaction_energy_per_atom,omitempty" bson:"equilibrium_reaction_energy_per_atom,omitempty"`
	DecomposesTo                     []any    `json:"decomposes_to,omitempty" bson:"decomposes_to,omitempty"`

	XAS             []XASSearchData `json:"xas,omitempty" bson:"xas,omitempty"`
	GrainBoundaries []GBSearchData  `json:"grain_boundaries,omitempty" bson:"grain_boundaries,omitempty"`

	BandGap                                  *float64       `json:"band_gap,omitempty" bson:"band_gap,omitempty"`
	CBM                                      *float64       `json:"cbm,omitempty" bson:"cbm,omitempty"`
	VBM                                      *float64       `json:"vbm,omitempty" bson:"vbm,omitempty"`
	EFermi                                   *float64       `json:"efermi,omitempty" bson:"efermi,omitempty"`
	IsGapDirect                              *bool          `json:"is_gap_direct,omitempty" bson:"is_gap_direct,omitempty"`
	IsMetal                                  *bool          `json:"is_metal,omitempty" bson:"is_metal,omitempty"`
	MagneticOrder                            Ordering       `json:"magnetic_ordering,omitempty" bson:"magnetic_ordering,omitempty"`
	ESSourceCalcID                           string         `json:"es_source_calc_id,omitempty" bson:"es_source_calc_id,omitempty"`
	Bandstructure                            map[string]any `json:"bandstructure,omitempty" bson:"bandstructure,omitempty"`
	DOS                                      map[string]any `json:"dos,omitempty" bson:"dos,omitempty"`
	DOSEnergyUp                              *float64       `json:"dos_energy_up,omitempty" bson:"dos_energy_up,omitempty"`
	DOSEnergyDown                            *float64       `json:"dos_energy_down,omitempty" bson:"dos_energy_down,omitempty"`
	Ordering                                 Ordering       `json:"ordering,omitempty" bson:"ordering,omitempty"`
	TotalMagnetization                       *float64       `json:"total_magnetization,omitempty" bson:"total_magnetization,omitempty"`
	TotalMagnetizationNormalizedVol          *float64       `json:"total_magnetization_normalized_vol,omitempty" bson:"total_magnetization_normalized_vol,omitempty"`
	TotalMagnetizationNormalizedFormulaUnits *float64       `json:"total_magnetization_normalized_formula_units,omitempty" bson:"total_magnetization_normalized_formula_units,omitempty"`

	KVoigt              *float64 `json:"k_voigt,omitempty" bson:"k_voigt,omitempty"`
	KReuss              *float64 `json:"k_reuss,omitempty" bson:"k_reuss,omitempty"`
	KVRH                *float64 `json:"k_vrh,omitempty" bson:"k_vrh,omitempty"`
	GVoigt              *float64 `json:"g_voigt,omitempty" bson:"g_voigt,omitempty"`
	GReuss              *float64 `json:"g_reuss,omitempty" bson:"g_reuss,omitempty"`
	GVRH                *float64 `json:"g_vrh,omitempty" bson:"g_vrh,omitempty"`
	UniversalAnisotropy *float64 `json:"universal_anisotropy,omitempty" bson:"universal_anisotropy,omitempty"`
	HomogeneousPoisson  *float64 `json:"homogeneous_poisson,omitempty" bson:"homogeneous_poisson,omitempty"`

	ETotal  *float64 `json:"e_total,omitempty" bson:"e_total,omitempty"`
	EIonic  *float64 `json:"e_ionic,omitempty" bson:"e_ionic,omitempty"`
	EStatic *float64 `json:"e_static,omitempty" bson:"e_static,omitempty"`
	N       *float64 `json:"n,omitempty" bson:"n,omitempty"`
	EijMax  *float64 `json:"e_ij_max,omitempty" bson:"e_ij_max,omitempty"`

	WeightedSurfaceEnergy *float64 `json:"weighted_surface_energy,omitempty" bson:"weighted_surface_energy,omitempty"`
	WeightedWorkFunction  *float64 `json:"weighted_work_function,omitempty" bson:"weighted_work_function,omitempty"`
	SurfaceAnisotropy     *float64 `json:"surface_anisotropy,omitempty" bson:"surface_anisotropy,omitempty"`
	ShapeFactor           *float64 `json:"shape_factor,omitempty" bson:"shape_factor,omitempty"`
	HasReconstructed      *bool    `json:"has_reconstructed,omitempty" bson:"has_reconstructed,omitempty"`

	HasProps        []HasProps `json:"has_props,omitempty" bson:"has_props,omitempty"`
	PossibleSpecies []string   `json:"possible_species,omitempty" bson:"possible_species,omitempty"`
}

// SummaryStats is the sampled distribution of one numeric summary field.
type SummaryStats struct {
	Field        string    `mpapi:"key" json:"field" bson:"field" validate:"required"`
	NumSamples   int       `json:"num_samples" bson:"num_samples"`
	Min          float64   `json:"min" bson:"min"`
	Max          float64   `json:"max" bson:"max"`
	Median       float64   `json:"median" bson:"median"`
	Mean         float64   `json:"mean" bson:"mean"`
	Distribution []float64 `json:"distribution" bson:"distribution"`
	Warnings     []string  `json:"warnings,omitempty" bson:"warnings,omitempty"`
}

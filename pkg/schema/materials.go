package schema

// MaterialsDoc is the core record of a material.
type MaterialsDoc struct {
	StructureMetadata `bson:",inline"`
	Timestamp         `bson:",inline"`

	MaterialID        string              `mpapi:"key" json:"material_id" bson:"material_id" validate:"required"`
	Structure         *Structure          `json:"structure,omitempty" bson:"structure,omitempty"`
	InitialStructures []Structure         `json:"initial_structures,omitempty" bson:"initial_structures,omitempty"`
	TaskIDs           []string            `json:"task_ids,omitempty" bson:"task_ids,omitempty"`
	DeprecatedTasks   []string            `json:"deprecated_tasks,omitempty" bson:"deprecated_tasks,omitempty"`
	CalcTypes         map[string]string   `json:"calc_types,omitempty" bson:"calc_types,omitempty"`
	TaskTypes         map[string]TaskType `json:"task_types,omitempty" bson:"task_types,omitempty"`
	Deprecated        bool                `json:"deprecated" bson:"deprecated"`
	Origins           []map[string]any    `json:"origins,omitempty" bson:"origins,omitempty"`
	Warnings          []string            `json:"warnings,omitempty" bson:"warnings,omitempty"`
	CreatedAt         *string             `json:"created_at,omitempty" bson:"created_at,omitempty"`
}

// FormulaAutocomplete is one completion offered for a partial formula.
type FormulaAutocomplete struct {
	FormulaPretty string `mpapi:"key" json:"formula_pretty" bson:"formula_pretty" validate:"required"`
}

// ThermoDoc holds the thermodynamic stability data of a material.
type ThermoDoc struct {
	StructureMetadata `bson:",inline"`
	Timestamp         `bson:",inline"`

	MaterialID                       string             `mpapi:"key" json:"material_id" bson:"material_id" validate:"required"`
	UncorrectedEnergy                *float64           `json:"uncorrected_energy,omitempty" bson:"uncorrected_energy,omitempty"`
	UncorrectedEnergyPerAtom         *float64           `json:"uncorrected_energy_per_atom,omitempty" bson:"uncorrected_energy_per_atom,omitempty"`
	EnergyPerAtom                    *float64           `json:"energy_per_atom,omitempty" bson:"energy_per_atom,omitempty"`
	FormationEnergyPerAtom           *float64           `json:"formation_energy_per_atom,omitempty" bson:"formation_energy_per_atom,omitempty"`
	EnergyAboveHull                  *float64           `json:"energy_above_hull,omitempty" bson:"energy_above_hull,omitempty"`
	IsStable                         bool               `json:"is_stable" bson:"is_stable"`
	EquilibriumReactionEnergyPerAtom *float64           `json:"equilibrium_reaction_energy_per_atom,omitempty" bson:"equilibrium_reaction_energy_per_atom,omitempty"`
	DecomposesTo                     []DecompositionRef `json:"decomposes_to,omitempty" bson:"decomposes_to,omitempty"`
	Entry                            map[string]any     `json:"entry,omitempty" bson:"entry,omitempty"`
}

// DecompositionRef names one product of a decomposition reaction.
type DecompositionRef struct {
	MaterialID string  `json:"material_id" bson:"material_id"`
	Formula    string  `json:"formula" bson:"formula"`
	Amount     float64 `json:"amount" bson:"amount"`
}

// PhaseDiagramDoc wraps the serialized phase diagram of a chemical system.
type PhaseDiagramDoc struct {
	Chemsys      string         `mpapi:"key" json:"chemsys" bson:"chemsys" validate:"required"`
	PhaseDiagram map[string]any `json:"phase_diagram" bson:"phase_diagram" validate:"required"`
}

// OxidationStateDoc holds the oxidation state analysis of a material.
type OxidationStateDoc struct {
	StructureMetadata `bson:",inline"`
	Timestamp         `bson:",inline"`

	MaterialID       string             `mpapi:"key" json:"material_id" bson:"material_id" validate:"required"`
	Structure        *Structure         `json:"structure,omitempty" bson:"structure,omitempty"`
	PossibleSpecies  []string           `json:"possible_species,omitempty" bson:"possible_species,omitempty"`
	PossibleValences []float64          `json:"possible_valences,omitempty" bson:"possible_valences,omitempty"`
	AverageOxidation map[string]float64 `json:"average_oxidation_states,omitempty" bson:"average_oxidation_states,omitempty"`
	Method           string             `json:"method,omitempty" bson:"method,omitempty"`
}

// ProvenanceDoc records where the structures of a material came from.
type ProvenanceDoc struct {
	Timestamp `bson:",inline"`

	MaterialID  string              `mpapi:"key" json:"material_id" bson:"material_id" validate:"required"`
	Created     *string             `json:"created_at,omitempty" bson:"created_at,omitempty"`
	Projects    []string            `json:"projects,omitempty" bson:"projects,omitempty"`
	Authors     []map[string]any    `json:"authors,omitempty" bson:"authors,omitempty"`
	Remarks     []string            `json:"remarks,omitempty" bson:"remarks,omitempty"`
	Tags        []string            `json:"tags,omitempty" bson:"tags,omitempty"`
	Theoretical bool                `json:"theoretical" bson:"theoretical"`
	DatabaseIDs map[string][]string `json:"database_IDs,omitempty" bson:"database_IDs,omitempty"`
	History     []map[string]any    `json:"history,omitempty" bson:"history,omitempty"`
}

// DOIDoc holds the DOI and bibtex reference of a material.
type DOIDoc struct {
	Timestamp `bson:",inline"`

	MaterialID string `mpapi:"key" json:"material_id" bson:"material_id" validate:"required"`
	DOI        string `json:"doi,omitempty" bson:"doi,omitempty"`
	Bibtex     string `json:"bibtex,omitempty" bson:"bibtex,omitempty"`
}

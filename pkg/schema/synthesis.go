package schema

// Value is an experimental quantity given as a list of values or a range.
type Value struct {
	MinValue *float64  `json:"min_value,omitempty" bson:"min_value,omitempty"`
	MaxValue *float64  `json:"max_value,omitempty" bson:"max_value,omitempty"`
	Values   []float64 `json:"values,omitempty" bson:"values,omitempty"`
	Units    string    `json:"units,omitempty" bson:"units,omitempty"`
}

// Conditions are the parameters of a synthesis operation.
type Conditions struct {
	HeatingTemperature []Value  `json:"heating_temperature,omitempty" bson:"heating_temperature,omitempty"`
	HeatingTime        []Value  `json:"heating_time,omitempty" bson:"heating_time,omitempty"`
	HeatingAtmosphere  []string `json:"heating_atmosphere,omitempty" bson:"heating_atmosphere,omitempty"`
	MixingDevice       *string  `json:"mixing_device,omitempty" bson:"mixing_device,omitempty"`
	MixingMedia        *string  `json:"mixing_media,omitempty" bson:"mixing_media,omitempty"`
}

// Operation is one step of a synthesis procedure.
type Operation struct {
	Type       OperationType `json:"type" bson:"type" validate:"required"`
	Token      string        `json:"token,omitempty" bson:"token,omitempty"`
	Conditions Conditions    `json:"conditions" bson:"conditions"`
}

// Component is one formula amount of an extracted material.
type Component struct {
	Formula  string            `json:"formula" bson:"formula"`
	Amount   string            `json:"amount" bson:"amount"`
	Elements map[string]string `json:"elements" bson:"elements"`
}

// ExtractedMaterial is a material mentioned in a synthesis paragraph.
type ExtractedMaterial struct {
	MaterialString   string              `json:"material_string" bson:"material_string"`
	MaterialFormula  string              `json:"material_formula" bson:"material_formula"`
	MaterialName     string              `json:"material_name,omitempty" bson:"material_name,omitempty"`
	Phase            *string             `json:"phase,omitempty" bson:"phase,omitempty"`
	IsAcronym        bool                `json:"is_acronym" bson:"is_acronym"`
	Composition      []Component         `json:"composition,omitempty" bson:"composition,omitempty"`
	AmountsVars      map[string][]string `json:"amounts_vars,omitempty" bson:"amounts_vars,omitempty"`
	ElementsVars     map[string][]string `json:"elements_vars,omitempty" bson:"elements_vars,omitempty"`
	Additives        []string            `json:"additives,omitempty" bson:"additives,omitempty"`
	OxygenDeficiency *string             `json:"oxygen_deficiency,omitempty" bson:"oxygen_deficiency,omitempty"`
}

// ReactionFormula is the balanced reaction of a recipe.
type ReactionFormula struct {
	LeftSide            []map[string]any  `json:"left_side" bson:"left_side"`
	RightSide           []map[string]any  `json:"right_side" bson:"right_side"`
	ElementSubstitution map[string]string `json:"element_substitution,omitempty" bson:"element_substitution,omitempty"`
}

// SynthesisRecipe is a text-mined synthesis procedure.
type SynthesisRecipe struct {
	DOI                string              `json:"doi" bson:"doi" validate:"required"`
	ParagraphString    string              `json:"paragraph_string" bson:"paragraph_string"`
	SynthesisType      SynthesisType       `json:"synthesis_type" bson:"synthesis_type" validate:"required"`
	ReactionString     string              `json:"reaction_string" bson:"reaction_string"`
	Reaction           *ReactionFormula    `json:"reaction,omitempty" bson:"reaction,omitempty"`
	Target             *ExtractedMaterial  `json:"target,omitempty" bson:"target,omitempty"`
	TargetsFormula     []string            `json:"targets_formula,omitempty" bson:"targets_formula,omitempty"`
	PrecursorsFormula  []string            `json:"precursors_formula,omitempty" bson:"precursors_formula,omitempty"`
	TargetsFormulaS    []string            `json:"targets_formula_s,omitempty" bson:"targets_formula_s,omitempty"`
	PrecursorsFormulaS []string            `json:"precursors_formula_s,omitempty" bson:"precursors_formula_s,omitempty"`
	Precursors         []ExtractedMaterial `json:"precursors,omitempty" bson:"precursors,omitempty"`
	Operations         []Operation         `json:"operations,omitempty" bson:"operations,omitempty"`
}

// SynthesisSearchResult is a recipe matched by a keyword search.
type SynthesisSearchResult struct {
	SynthesisRecipe `bson:",inline"`

	SearchScore *float64         `json:"search_score,omitempty" bson:"search_score,omitempty"`
	Highlights  []map[string]any `json:"highlights,omitempty" bson:"highlights,omitempty"`
}

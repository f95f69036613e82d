package schema

// TaskOutput is the final state of a calculation.
type TaskOutput struct {
	Structure *Structure    `json:"structure,omitempty" bson:"structure,omitempty"`
	Density   float64       `json:"density,omitempty" bson:"density,omitempty"`
	Energy    float64       `json:"energy,omitempty" bson:"energy,omitempty"`
	Forces    [][3]float64  `json:"forces,omitempty" bson:"forces,omitempty"`
	Stress    [3][3]float64 `json:"stress,omitempty" bson:"stress,omitempty"`
}

// TaskAnalysis holds derived checks of a calculation.
type TaskAnalysis struct {
	DeltaVolume        float64  `json:"delta_volume,omitempty" bson:"delta_volume,omitempty"`
	DeltaVolumePercent float64  `json:"delta_volume_percent,omitempty" bson:"delta_volume_percent,omitempty"`
	MaxForce           float64  `json:"max_force,omitempty" bson:"max_force,omitempty"`
	Warnings           []string `json:"warnings,omitempty" bson:"warnings,omitempty"`
	Errors             []string `json:"errors,omitempty" bson:"errors,omitempty"`
}

// TaskDoc is the record of a single calculation.
type TaskDoc struct {
	StructureMetadata `bson:",inline"`
	Timestamp         `bson:",inline"`

	TaskID        string           `mpapi:"key" json:"task_id" bson:"task_id" validate:"required"`
	TaskType      TaskType         `json:"task_type,omitempty" bson:"task_type,omitempty"`
	Tags          []string         `json:"tags,omitempty" bson:"tags,omitempty"`
	CalcsReversed []map[string]any `json:"calcs_reversed,omitempty" bson:"calcs_reversed,omitempty"`
	OrigInputs    map[string]any   `json:"orig_inputs,omitempty" bson:"orig_inputs,omitempty"`
	Input         map[string]any   `json:"input,omitempty" bson:"input,omitempty"`
	Output        *TaskOutput      `json:"output,omitempty" bson:"output,omitempty"`
	Custodian     []map[string]any `json:"custodian,omitempty" bson:"custodian,omitempty"`
	Analysis      *TaskAnalysis    `json:"analysis,omitempty" bson:"analysis,omitempty"`
}

// Trajectory is the ionic relaxation path of one calculation.
type Trajectory struct {
	Structures      []Structure  `json:"structures" bson:"structures"`
	FrameProperties []FrameProps `json:"frame_properties" bson:"frame_properties"`
}

// FrameProps are the per-step energies, forces and stress of a trajectory.
type FrameProps struct {
	EFrEnergy float64       `json:"e_fr_energy" bson:"e_fr_energy"`
	EWoEntrp  float64       `json:"e_wo_entrp" bson:"e_wo_entrp"`
	Forces    [][3]float64  `json:"forces,omitempty" bson:"forces,omitempty"`
	Stress    [3][3]float64 `json:"stress,omitempty" bson:"stress,omitempty"`
}

// TrajectoryDoc holds the trajectories of a task.
type TrajectoryDoc struct {
	TaskID       string       `mpapi:"key" json:"task_id" bson:"task_id" validate:"required"`
	Trajectories []Trajectory `json:"trajectories" bson:"trajectories"`
}

// DeprecationDoc reports whether a task is deprecated.
type DeprecationDoc struct {
	TaskID            string  `mpapi:"key" json:"task_id" bson:"task_id" validate:"required"`
	Deprecated        bool    `json:"deprecated" bson:"deprecated"`
	DeprecationReason *string `json:"deprecation_reason" bson:"deprecation_reason"`
}

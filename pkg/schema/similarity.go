package schema

// SimilarityEntry is one neighbour of a material in site-fingerprint space.
type SimilarityEntry struct {
	TaskID        string  `json:"task_id" bson:"task_id"`
	NElements     int     `json:"nelements" bson:"nelements"`
	Dissimilarity float64 `json:"dissimilarity" bson:"dissimilarity"`
	Formula       string  `json:"formula" bson:"formula"`
}

// SimilarityDoc lists the most similar materials of a material.
type SimilarityDoc struct {
	MaterialID string            `mpapi:"key" json:"material_id" bson:"material_id" validate:"required"`
	Sim        []SimilarityEntry `json:"sim,omitempty" bson:"sim,omitempty"`
}

// PhononBSDOSDoc holds the phonon band structure and DOS of a material.
type PhononBSDOSDoc struct {
	Timestamp `bson:",inline"`

	MaterialID string         `mpapi:"key" json:"material_id" bson:"material_id" validate:"required"`
	PhBS       map[string]any `json:"ph_bs,omitempty" bson:"ph_bs,omitempty"`
	PhDOS      map[string]any `json:"ph_dos,omitempty" bson:"ph_dos,omitempty"`
}

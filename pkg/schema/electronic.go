package schema

// BandstructureSummary summarizes a band structure along one k-path.
type BandstructureSummary struct {
	TaskID           string   `json:"task_id,omitempty" bson:"task_id,omitempty"`
	BandGap          float64  `json:"band_gap" bson:"band_gap"`
	CBM              any      `json:"cbm,omitempty" bson:"cbm,omitempty"`
	VBM              any      `json:"vbm,omitempty" bson:"vbm,omitempty"`
	EFermi           float64  `json:"efermi" bson:"efermi"`
	IsGapDirect      bool     `json:"is_gap_direct" bson:"is_gap_direct"`
	IsMetal          bool     `json:"is_metal" bson:"is_metal"`
	MagneticOrdering Ordering `json:"magnetic_ordering,omitempty" bson:"magnetic_ordering,omitempty"`
	NbBands          int      `json:"nbands,omitempty" bson:"nbands,omitempty"`
}

// DOSSummary summarizes one projection and spin channel of a DOS.
type DOSSummary struct {
	TaskID  string  `json:"task_id,omitempty" bson:"task_id,omitempty"`
	BandGap float64 `json:"band_gap" bson:"band_gap"`
	CBM     float64 `json:"cbm" bson:"cbm"`
	VBM     float64 `json:"vbm" bson:"vbm"`
	EFermi  float64 `json:"efermi" bson:"efermi"`
	Spin    int     `json:"spin,omitempty" bson:"spin,omitempty"`
}

// ElectronicStructureDoc holds the electronic structure summary of a material.
type ElectronicStructureDoc struct {
	StructureMetadata `bson:",inline"`
	Timestamp         `bson:",inline"`

	MaterialID       string                              `mpapi:"key" json:"material_id" bson:"material_id" validate:"required"`
	BandGap          float64                             `json:"band_gap" bson:"band_gap"`
	CBM              float64                             `json:"cbm,omitempty" bson:"cbm,omitempty"`
	VBM              float64                             `json:"vbm,omitempty" bson:"vbm,omitempty"`
	EFermi           float64                             `json:"efermi" bson:"efermi"`
	IsGapDirect      bool                                `json:"is_gap_direct" bson:"is_gap_direct"`
	IsMetal          bool                                `json:"is_metal" bson:"is_metal"`
	MagneticOrdering Ordering                            `json:"magnetic_ordering,omitempty" bson:"magnetic_ordering,omitempty"`
	Bandstructure    map[BSPathType]BandstructureSummary `json:"bandstructure,omitempty" bson:"bandstructure,omitempty"`
	DOS              map[string]any                      `json:"dos,omitempty" bson:"dos,omitempty"`
}

// ObjectIndexDoc locates a stored electronic structure object.
type ObjectIndexDoc struct {
	Timestamp `bson:",inline"`

	TaskID string `mpapi:"key" json:"task_id" bson:"task_id" validate:"required"`
	FSID   string `json:"fs_id,omitempty" bson:"fs_id,omitempty"`
}

// ChgcarDataDoc is a stored charge density object.
type ChgcarDataDoc struct {
	Timestamp `bson:",inline"`

	FSID   string         `json:"fs_id,omitempty" bson:"fs_id,omitempty"`
	TaskID string         `mpapi:"key" json:"task_id" bson:"task_id" validate:"required"`
	Data   map[string]any `json:"data,omitempty" bson:"data,omitempty"`
}

// FermiDoc holds the Fermi surfaces of a material.
type FermiDoc struct {
	Timestamp `bson:",inline"`

	TaskID        string           `mpapi:"key" json:"task_id" bson:"task_id" validate:"required"`
	FermiSurfaces []map[string]any `json:"fermi_surfaces,omitempty" bson:"fermi_surfaces,omitempty"`
	SurfaceTypes  []string         `json:"surface_types,omitempty" bson:"surface_types,omitempty"`
}

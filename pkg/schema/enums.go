package schema

// Enum is implemented by enumerated string fields.
// The zero value is always valid and means "absent".
type Enum interface {
	Valid() bool
}

func oneOf[T ~string](v T, allowed ...T) bool {
	if v == "" {
		return true
	}
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// CrystalSystem is one of the seven crystal systems.
type CrystalSystem string

// Crystal systems.
const (
	Triclinic    CrystalSystem = "Triclinic"
	Monoclinic   CrystalSystem = "Monoclinic"
	Orthorhombic CrystalSystem = "Orthorhombic"
	Tetragonal   CrystalSystem = "Tetragonal"
	Trigonal     CrystalSystem = "Trigonal"
	Hexagonal    CrystalSystem = "Hexagonal"
	Cubic        CrystalSystem = "Cubic"
)

// Valid implements Enum.
func (c CrystalSystem) Valid() bool {
	return oneOf(c, Triclinic, Monoclinic, Orthorhombic, Tetragonal, Trigonal, Hexagonal, Cubic)
}

// Ordering is a magnetic ordering.
type Ordering string

// Magnetic orderings.
const (
	OrderingFM      Ordering = "FM"
	OrderingAFM     Ordering = "AFM"
	OrderingFiM     Ordering = "FiM"
	OrderingNM      Ordering = "NM"
	OrderingUnknown Ordering = "Unknown"
)

// Valid implements Enum.
func (o Ordering) Valid() bool {
	return oneOf(o, OrderingFM, OrderingAFM, OrderingFiM, OrderingNM, OrderingUnknown)
}

// TaskType is the type of calculation behind a task document.
type TaskType string

// Task types.
const (
	TaskGGANSCFLine               TaskType = "GGA NSCF Line"
	TaskGGANSCFUniform            TaskType = "GGA NSCF Uniform"
	TaskGGAStatic                 TaskType = "GGA Static"
	TaskGGAStructureOptimization  TaskType = "GGA Structure Optimization"
	TaskGGAUNSCFLine              TaskType = "GGA+U NSCF Line"
	TaskGGAUNSCFUniform           TaskType = "GGA+U NSCF Uniform"
	TaskGGAUStatic                TaskType = "GGA+U Static"
	TaskGGAUStructureOptimization TaskType = "GGA+U Structure Optimization"
)

// Valid implements Enum.
func (t TaskType) Valid() bool {
	return oneOf(t,
		TaskGGANSCFLine, TaskGGANSCFUniform, TaskGGAStatic, TaskGGAStructureOptimization,
		TaskGGAUNSCFLine, TaskGGAUNSCFUniform, TaskGGAUStatic, TaskGGAUStructureOptimization,
	)
}

// SynthesisType classifies a synthesis recipe.
type SynthesisType string

// Synthesis types.
const (
	SynthesisSolidState SynthesisType = "solid-state"
	SynthesisSolGel     SynthesisType = "sol-gel"
)

// Valid implements Enum.
func (s SynthesisType) Valid() bool { return oneOf(s, SynthesisSolidState, SynthesisSolGel) }

// OperationType is a synthesis operation step.
type OperationType string

// Synthesis operation types.
const (
	OperationStarting  OperationType = "StartingSynthesis"
	OperationMixing    OperationType = "MixingOperation"
	OperationShaping   OperationType = "ShapingOperation"
	OperationDrying    OperationType = "DryingOperation"
	OperationHeating   OperationType = "HeatingOperation"
	OperationQuenching OperationType = "QuenchingOperation"
)

// Valid implements Enum.
func (o OperationType) Valid() bool {
	return oneOf(o, OperationStarting, OperationMixing, OperationShaping,
		OperationDrying, OperationHeating, OperationQuenching)
}

// BSPathType is the k-path convention of a band structure.
type BSPathType string

// Band structure path conventions.
const (
	PathSetyawanCurtarolo BSPathType = "setyawan_curtarolo"
	PathHinuma            BSPathType = "hinuma"
	PathLatimerMunro      BSPathType = "latimer_munro"
)

// Valid implements Enum.
func (p BSPathType) Valid() bool {
	return oneOf(p, PathSetyawanCurtarolo, PathHinuma, PathLatimerMunro)
}

// DOSProjectionType selects a density of states projection.
type DOSProjectionType string

// DOS projections.
const (
	ProjectionTotal     DOSProjectionType = "total"
	ProjectionElemental DOSProjectionType = "elemental"
	ProjectionOrbital   DOSProjectionType = "orbital"
)

// Valid implements Enum.
func (p DOSProjectionType) Valid() bool {
	return oneOf(p, ProjectionTotal, ProjectionElemental, ProjectionOrbital)
}

// OrbitalType is an angular momentum channel.
type OrbitalType string

// Orbital types.
const (
	OrbitalS OrbitalType = "s"
	OrbitalP OrbitalType = "p"
	OrbitalD OrbitalType = "d"
	OrbitalF OrbitalType = "f"
)

// Valid implements Enum.
func (o OrbitalType) Valid() bool { return oneOf(o, OrbitalS, OrbitalP, OrbitalD, OrbitalF) }

// HasProps names a property with data attached to a summary document.
type HasProps string

// Summary properties.
const (
	PropMagnetism         HasProps = "magnetism"
	PropPiezoelectric     HasProps = "piezoelectric"
	PropDielectric        HasProps = "dielectric"
	PropElasticity        HasProps = "elasticity"
	PropSurfaceProperties HasProps = "surface_properties"
	PropBandstructure     HasProps = "bandstructure"
	PropDOS               HasProps = "dos"
	PropXAS               HasProps = "xas"
	PropGrainBoundaries   HasProps = "grain_boundaries"
	PropEOS               HasProps = "eos"
)

// Valid implements Enum.
func (h HasProps) Valid() bool {
	return oneOf(h, PropMagnetism, PropPiezoelectric, PropDielectric, PropElasticity,
		PropSurfaceProperties, PropBandstructure, PropDOS, PropXAS, PropGrainBoundaries, PropEOS)
}

// Edge is an XAS absorption edge.
type Edge string

// XAS edges.
const (
	EdgeK   Edge = "K"
	EdgeL2  Edge = "L2"
	EdgeL3  Edge = "L3"
	EdgeL23 Edge = "L2,3"
)

// Valid implements Enum.
func (e Edge) Valid() bool { return oneOf(e, EdgeK, EdgeL2, EdgeL3, EdgeL23) }

// XASType is the type of an XAS spectrum.
type XASType string

// XAS spectrum types.
const (
	XANES XASType = "XANES"
	EXAFS XASType = "EXAFS"
	XAFS  XASType = "XAFS"
)

// Valid implements Enum.
func (x XASType) Valid() bool { return oneOf(x, XANES, EXAFS, XAFS) }

// GBType is a grain boundary type.
type GBType string

// Grain boundary types.
const (
	GBTilt  GBType = "tilt"
	GBTwist GBType = "twist"
)

// Valid implements Enum.
func (g GBType) Valid() bool { return oneOf(g, GBTilt, GBTwist) }

// MPCompleteStatus is the processing state of an MPComplete submission.
type MPCompleteStatus string

// Submission states.
const (
	StateSubmitted MPCompleteStatus = "SUBMITTED"
	StatePending   MPCompleteStatus = "PENDING"
	StateRunning   MPCompleteStatus = "RUNNING"
	StateError     MPCompleteStatus = "ERROR"
	StateComplete  MPCompleteStatus = "COMPLETE"
)

// Valid implements Enum.
func (s MPCompleteStatus) Valid() bool {
	return oneOf(s, StateSubmitted, StatePending, StateRunning, StateError, StateComplete)
}

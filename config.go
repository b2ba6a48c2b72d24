package rigid3d

import "github.com/go-gl/mathgl/mgl32"

// BroadphaseTraversal selects between the per-primitive BVH query path
// and the double-traversal variant.
type BroadphaseTraversal int

const (
	// BroadphasePerPrimitive queries the BVH once per dynamic primitive
	// against the opposing tree. The default: parallelizes cleanly since
	// each primitive's query is independent.
	BroadphasePerPrimitive BroadphaseTraversal = iota
	// BroadphaseDoubleTraversal walks the dynamic BVH against itself and
	// against the static BVH in one tandem descent per pair of trees,
	// instead of one descent per primitive. Sequential only (see
	// World.detectContactsDoubleTraversal).
	BroadphaseDoubleTraversal
)

// Config holds every World construction-time and compile-time-adjustable
// switch: gravity, concurrency, solver iteration counts, sleep/CCD/kill
// thresholds, and logging.
type Config struct {
	Gravity mgl32.Vec3

	EnableParallel bool
	ThreadCount    int

	EnableAirResistance bool
	AirDensity          float32

	NumSubsteps           int
	ConstraintSolverIters int
	StabilizationIters    int

	SleepLinearThreshold  float32
	SleepAngularThreshold float32
	SleepTimeThreshold    float32

	CCDThreshold float32
	KillY        float32

	BVHRebuildThreshold int
	WarmstartCoef       float32

	SIMDWidth           int
	BroadphaseTraversal BroadphaseTraversal

	Logger Logger
}

// DefaultConfig returns a reasonable default tuning for every Config
// field.
func DefaultConfig() Config {
	return Config{
		Gravity:               mgl32.Vec3{0, -9.81, 0},
		EnableParallel:        false,
		ThreadCount:           12,
		EnableAirResistance:   false,
		AirDensity:            1.225,
		NumSubsteps:           2,
		ConstraintSolverIters: 4,
		StabilizationIters:    2,
		SleepLinearThreshold:  0.05,
		SleepAngularThreshold: 0.05,
		SleepTimeThreshold:    0.5,
		CCDThreshold:          25,
		KillY:                 -50,
		BVHRebuildThreshold:   512,
		WarmstartCoef:         warmstartCoef,
		SIMDWidth:             4,
		BroadphaseTraversal:   BroadphasePerPrimitive,
		Logger:                NewNopLogger(),
	}
}

package rigid3d

import "github.com/go-gl/mathgl/mgl32"

// Baumgarte β and slop and the restitution velocity threshold are kept
// as package constants rather than Config fields: these are solver
// tuning values, not per-world knobs a caller is expected to retune.
// warmstartCoef is only the default for Config.WarmstartCoef, which is
// what the solver reads.
const (
	baumgarteBeta           = 0.4
	contactSlop             = 0.002
	restitutionVelThreshold = -0.5
	warmstartCoef           = 0.8
)

// pairKey canonically orders a pair of indices so hash(a,b) == hash(b,a),
// with the top bit reserved to flag a dynamic-vs-static pair (so a
// dynamic and a static body sharing a numeric index never collide).
type pairKey uint64

func dynamicPairKey(indexA, indexB uint32) pairKey {
	if indexA > indexB {
		indexA, indexB = indexB, indexA
	}
	return pairKey(uint64(indexA)<<32 | uint64(indexB))
}

func staticPairKey(dynIndex, staticIndex uint32) pairKey {
	const staticFlag = uint64(1) << 63
	return pairKey(staticFlag | uint64(dynIndex)<<32 | uint64(staticIndex))
}

// DynamicContact is a contact between two dynamic bodies.
type DynamicContact struct {
	BodyA, BodyB DynamicHandle

	Point       mgl32.Vec3
	Normal      mgl32.Vec3
	Penetration float32

	Restitution float32
	Friction    float32

	NormalImpulse    float32
	TangentImpulse   [2]float32
	NormalMass       float32
	TangentMass      [2]float32
	Bias             float32
	RA, RB           mgl32.Vec3
	Tangent1, Tangent2 mgl32.Vec3
}

// StaticContact is a contact between a dynamic body (A) and a static
// body (B); B contributes zero inverse mass and zero inverse inertia
// to every effective-mass computation, per the "thin specialisation"
// design note.
type StaticContact struct {
	BodyA DynamicHandle
	BodyB StaticHandle

	Point       mgl32.Vec3
	Normal      mgl32.Vec3
	Penetration float32

	Restitution float32
	Friction    float32

	NormalImpulse      float32
	TangentImpulse     [2]float32
	NormalMass         float32
	TangentMass        [2]float32
	Bias               float32
	RA                 mgl32.Vec3
	Tangent1, Tangent2 mgl32.Vec3
}

// tangentBasis builds two orthonormal vectors perpendicular to normal,
// used as the Coulomb-friction constraint directions.
func tangentBasis(normal mgl32.Vec3) (t1, t2 mgl32.Vec3) {
	var up mgl32.Vec3
	if absf(normal.X()) < 0.9 {
		up = mgl32.Vec3{1, 0, 0}
	} else {
		up = mgl32.Vec3{0, 1, 0}
	}
	t1 = up.Cross(normal).Normalize()
	t2 = normal.Cross(t1)
	return t1, t2
}

func effectiveMassTerm(invMass float32, invInertia mgl32.Vec3, r, axis mgl32.Vec3) float32 {
	rxn := r.Cross(axis)
	angular := rxn.X()*rxn.X()*invInertia.X() + rxn.Y()*rxn.Y()*invInertia.Y() + rxn.Z()*rxn.Z()*invInertia.Z()
	return invMass + angular
}

func invOrInf(denom float32) float32 {
	if denom <= 1e-12 {
		return 0
	}
	return 1.0 / denom
}

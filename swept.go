package rigid3d

import (
	"math"

	"github.com/duskforge/rigid3d/rmath"
	"github.com/go-gl/mathgl/mgl32"
)

// SweptHit is the outcome of a time-of-impact test: TOI in [0,1] of the
// moving body's current-step displacement, plus the surface normal at
// impact (pointing away from the struck body, opposite the velocity).
type SweptHit struct {
	TOI    float32
	Normal mgl32.Vec3
	Hit    bool
}

// sweptTest computes the time of impact for body A (collider a, moving
// with velocity v over the step) against stationary body B, dispatching
// to a closed form where one exists and falling back to a conservative
// swept-sphere approximation for the general case.
func sweptTest(a Collider, posA mgl32.Vec3, rotA mgl32.Quat, v mgl32.Vec3, b Collider, posB mgl32.Vec3, rotB mgl32.Quat) SweptHit {
	switch {
	case a.Kind == ColliderSphere && b.Kind == ColliderSphere:
		return sweptSphereSphere(posA, a.Radius, v, posB, b.Radius)
	case a.Kind == ColliderSphere && b.Kind == ColliderBox && isAxisAligned(rotB):
		return sweptSphereBox(posA, a.Radius, v, posB, b.HalfExtents)
	case a.Kind == ColliderBox && b.Kind == ColliderBox && isAxisAligned(rotA) && isAxisAligned(rotB):
		return sweptBoxBox(posA, a.HalfExtents, v, posB, b.HalfExtents)
	default:
		return sweptSphereApprox(posA, a.BoundingSphereRadius(), v, posB, b.BoundingSphereRadius())
	}
}

func isAxisAligned(rotation mgl32.Quat) bool {
	return absf(rotation.W) > 0.9999
}

// sweptSphereSphere solves |(A + t*v) - B|^2 = (ra+rb)^2 for the
// earliest non-negative root in [0,1].
func sweptSphereSphere(posA mgl32.Vec3, ra float32, v mgl32.Vec3, posB mgl32.Vec3, rb float32) SweptHit {
	delta := posA.Sub(posB)
	sumR := ra + rb
	if delta.Len() <= sumR {
		return SweptHit{TOI: 0, Normal: safeNormalize(delta, mgl32.Vec3{1, 0, 0}), Hit: true}
	}

	aCoef := v.Dot(v)
	bCoef := 2 * delta.Dot(v)
	cCoef := delta.Dot(delta) - sumR*sumR

	if aCoef < 1e-12 {
		return SweptHit{}
	}
	disc := bCoef*bCoef - 4*aCoef*cCoef
	if disc < 0 {
		return SweptHit{}
	}
	sqrtDisc := float32(math.Sqrt(float64(disc)))
	t0 := (-bCoef - sqrtDisc) / (2 * aCoef)
	t1 := (-bCoef + sqrtDisc) / (2 * aCoef)
	t := t0
	if t < 0 {
		t = t1
	}
	if t < 0 || t > 1 {
		return SweptHit{}
	}
	pointA := posA.Add(v.Mul(t))
	normal := safeNormalize(pointA.Sub(posB), mgl32.Vec3{1, 0, 0})
	return SweptHit{TOI: t, Normal: normal, Hit: true}
}

// sweptSphereBox runs the slab method against the box expanded by the
// sphere radius on every axis, treating the sphere as a moving point.
func sweptSphereBox(posA mgl32.Vec3, radius float32, v mgl32.Vec3, posB mgl32.Vec3, halfExtents mgl32.Vec3) SweptHit {
	expanded := rmath.Aabb{
		Min: posB.Sub(halfExtents).Sub(mgl32.Vec3{radius, radius, radius}),
		Max: posB.Add(halfExtents).Add(mgl32.Vec3{radius, radius, radius}),
	}
	ray := rmath.Ray{Origin: posA, Dir: v}
	tNear, _, hit := ray.IntersectAabb(expanded, 1.0)
	if !hit {
		return SweptHit{}
	}
	if tNear < 0 {
		tNear = 0
	}
	hitPoint := posA.Add(v.Mul(tNear))
	normal := slabNormal(hitPoint, posB, halfExtents, v)
	return SweptHit{TOI: tNear, Normal: normal, Hit: true}
}

// sweptBoxBox is the Minkowski-sum reduction: A's motion tested as a
// point ray against B inflated by A's half-extents.
func sweptBoxBox(posA mgl32.Vec3, heA mgl32.Vec3, v mgl32.Vec3, posB mgl32.Vec3, heB mgl32.Vec3) SweptHit {
	sum := heA.Add(heB)
	expanded := rmath.Aabb{Min: posB.Sub(sum), Max: posB.Add(sum)}
	ray := rmath.Ray{Origin: posA, Dir: v}
	tNear, _, hit := ray.IntersectAabb(expanded, 1.0)
	if !hit {
		return SweptHit{}
	}
	if tNear < 0 {
		tNear = 0
	}
	hitPoint := posA.Add(v.Mul(tNear))
	normal := slabNormal(hitPoint, posB, sum, v)
	return SweptHit{TOI: tNear, Normal: normal, Hit: true}
}

// slabNormal recovers the face normal of the last slab axis the ray
// crossed, signed opposite the velocity's component on that axis.
func slabNormal(hitPoint, center, halfExtents, v mgl32.Vec3) mgl32.Vec3 {
	local := hitPoint.Sub(center)
	best := 0
	bestRatio := float32(-1)
	for axis := 0; axis < 3; axis++ {
		if halfExtents[axis] < 1e-8 {
			continue
		}
		ratio := absf(local[axis]) / halfExtents[axis]
		if ratio > bestRatio {
			bestRatio = ratio
			best = axis
		}
	}
	n := mgl32.Vec3{}
	n[best] = signedExtent(local[best], 1)
	if n.Dot(v) > 0 {
		n = n.Mul(-1)
	}
	return n
}

// sweptSphereApprox is the conservative fallback for any non-axis-
// aligned box-box or cylinder-involved pair: treat both bodies as
// bounding spheres.
func sweptSphereApprox(posA mgl32.Vec3, ra float32, v mgl32.Vec3, posB mgl32.Vec3, rb float32) SweptHit {
	return sweptSphereSphere(posA, ra, v, posB, rb)
}

func safeNormalize(v mgl32.Vec3, fallback mgl32.Vec3) mgl32.Vec3 {
	if v.LenSqr() < 1e-12 {
		return fallback
	}
	return v.Normalize()
}

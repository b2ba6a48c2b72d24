package rmath

import "github.com/go-gl/mathgl/mgl32"

// Ray is a half-line starting at Origin traveling along Dir. Dir is not
// required to be normalized; callers that need a time-of-impact in
// physical units should normalize it first.
type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
}

// At returns the point Origin + Dir*t.
func (r Ray) At(t float32) mgl32.Vec3 { return r.Origin.Add(r.Dir.Mul(t)) }

// IntersectAabb performs the slab-method ray/box test, returning the
// near and far hit distances and whether they form a valid (non-empty,
// forward) interval. Rejects when tNear > maxDist or tFar < 0, per the
// BVH fast-traversal contract.
func (r Ray) IntersectAabb(box Aabb, maxDist float32) (tNear, tFar float32, hit bool) {
	tNear, tFar = 0, maxDist
	for axis := 0; axis < 3; axis++ {
		origin, dir := r.Origin[axis], r.Dir[axis]
		lo, hi := box.Min[axis], box.Max[axis]
		if absf(dir) < 1e-12 {
			if origin < lo || origin > hi {
				return 0, 0, false
			}
			continue
		}
		inv := 1.0 / dir
		t0 := (lo - origin) * inv
		t1 := (hi - origin) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tNear {
			tNear = t0
		}
		if t1 < tFar {
			tFar = t1
		}
		if tNear > tFar {
			return 0, 0, false
		}
	}
	if tNear > maxDist || tFar < 0 {
		return 0, 0, false
	}
	return tNear, tFar, true
}

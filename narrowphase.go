package rigid3d

import (
	"math"

	"github.com/duskforge/rigid3d/rmath"
	"github.com/go-gl/mathgl/mgl32"
)

// Manifold is the result of a narrowphase test: a single representative
// contact point, the separating normal (pointing from A toward B), and
// the penetration depth. hit is false when the pair is not touching.
type Manifold struct {
	Point       mgl32.Vec3
	Normal      mgl32.Vec3
	Penetration float32
	Hit         bool
}

// testColliders dispatches on the (kind, kind) pair to a test for every
// shape combination except those involving a fan, which never generates
// contacts (fans are trigger-only). Cylinder pairs with non-parallel
// axes use a bounding-sphere approximation rather than an exact test.
// Operands are swapped (and the normal negated) for the pairs only
// implemented in one order.
func testColliders(a Collider, posA mgl32.Vec3, rotA mgl32.Quat, b Collider, posB mgl32.Vec3, rotB mgl32.Quat) Manifold {
	if a.Kind == ColliderFan || b.Kind == ColliderFan {
		return Manifold{}
	}

	switch {
	case a.Kind == ColliderSphere && b.Kind == ColliderSphere:
		return testSphereSphere(posA, a.Radius, posB, b.Radius)
	case a.Kind == ColliderBox && b.Kind == ColliderBox:
		return testBoxBox(a, posA, rotA, b, posB, rotB)
	case a.Kind == ColliderSphere && b.Kind == ColliderBox:
		return testSphereBox(posA, a.Radius, b, posB, rotB)
	case a.Kind == ColliderBox && b.Kind == ColliderSphere:
		return swapManifold(testSphereBox(posB, b.Radius, a, posA, rotA))
	case a.Kind == ColliderSphere && b.Kind == ColliderCylinder:
		return testSphereCylinder(posA, a.Radius, b, posB, rotB)
	case a.Kind == ColliderCylinder && b.Kind == ColliderSphere:
		return swapManifold(testSphereCylinder(posB, b.Radius, a, posA, rotA))
	case a.Kind == ColliderBox && b.Kind == ColliderCylinder:
		return testGJKFallback(a, posA, rotA, b, posB, rotB)
	case a.Kind == ColliderCylinder && b.Kind == ColliderBox:
		return swapManifold(testGJKFallback(b, posB, rotB, a, posA, rotA))
	case a.Kind == ColliderCylinder && b.Kind == ColliderCylinder:
		return testCylinderCylinder(a, posA, rotA, b, posB, rotB)
	default:
		return testGJKFallback(a, posA, rotA, b, posB, rotB)
	}
}

func swapManifold(m Manifold) Manifold {
	if !m.Hit {
		return m
	}
	m.Normal = m.Normal.Mul(-1)
	return m
}

func testSphereSphere(posA mgl32.Vec3, ra float32, posB mgl32.Vec3, rb float32) Manifold {
	delta := posB.Sub(posA)
	dist := delta.Len()
	sumR := ra + rb
	if dist >= sumR {
		return Manifold{}
	}
	var normal mgl32.Vec3
	if dist > 1e-8 {
		normal = delta.Mul(1.0 / dist)
	} else {
		normal = mgl32.Vec3{1, 0, 0}
	}
	point := posA.Add(normal.Mul(ra))
	return Manifold{Point: point, Normal: normal, Penetration: sumR - dist, Hit: true}
}

// testBoxBox projects both OBBs onto the 3+3+9 SAT axes, keeps the
// smallest positive overlap, then recovers a contact point via
// corner-clipping.
func testBoxBox(a Collider, posA mgl32.Vec3, rotA mgl32.Quat, b Collider, posB mgl32.Vec3, rotB mgl32.Quat) Manifold {
	obbA := rmath.Obb{Center: posA, HalfExtents: a.HalfExtents, Rotation: rotA}
	obbB := rmath.Obb{Center: posB, HalfExtents: b.HalfExtents, Rotation: rotB}
	axesA := obbA.Axes()
	axesB := obbB.Axes()

	L := posB.Sub(posA)

	var testAxes []mgl32.Vec3
	testAxes = append(testAxes, axesA[:]...)
	testAxes = append(testAxes, axesB[:]...)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cross := axesA[i].Cross(axesB[j])
			if cross.LenSqr() > 1e-6 {
				testAxes = append(testAxes, cross.Normalize())
			}
		}
	}

	minOverlap := float32(math.MaxFloat32)
	var normal mgl32.Vec3
	found := false
	for _, axis := range testAxes {
		projA := obbA.ProjectedRadius(axis)
		projB := obbB.ProjectedRadius(axis)
		dist := absf(L.Dot(axis))
		overlap := projA + projB - dist
		if overlap <= 0 {
			return Manifold{}
		}
		if overlap < minOverlap {
			minOverlap = overlap
			normal = axis
			found = true
		}
	}
	if !found {
		return Manifold{}
	}
	if L.Dot(normal) < 0 {
		normal = normal.Mul(-1)
	}

	point := boxBoxContactPoint(obbA, obbB)
	return Manifold{Point: point, Normal: normal, Penetration: minOverlap, Hit: true}
}

func boxBoxContactPoint(a, b rmath.Obb) mgl32.Vec3 {
	cornersA := a.Corners()
	cornersB := b.Corners()

	var points []mgl32.Vec3
	for _, p := range cornersA {
		if pointInObb(p, b) {
			points = append(points, p)
		}
	}
	for _, p := range cornersB {
		if pointInObb(p, a) {
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		return a.Center.Add(b.Center).Mul(0.5)
	}
	sum := mgl32.Vec3{}
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1.0 / float32(len(points)))
}

func pointInObb(p mgl32.Vec3, box rmath.Obb) bool {
	axes := box.Axes()
	d := p.Sub(box.Center)
	he := box.HalfExtents
	for i := 0; i < 3; i++ {
		if absf(d.Dot(axes[i])) > he[i]+0.01 {
			return false
		}
	}
	return true
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// testSphereBox clamps the sphere center into the box's local frame and
// compares the clamped-point distance to the radius, covering both the
// axis-aligned and rotated cases via the same OBB-local projection. The
// normal points from the sphere (A) toward the box (B).
func testSphereBox(sphereCenter mgl32.Vec3, radius float32, box Collider, boxPos mgl32.Vec3, boxRot mgl32.Quat) Manifold {
	local := boxRot.Conjugate().Rotate(sphereCenter.Sub(boxPos))
	he := box.HalfExtents
	clampedLocal := mgl32.Vec3{
		clampf(local.X(), -he.X(), he.X()),
		clampf(local.Y(), -he.Y(), he.Y()),
		clampf(local.Z(), -he.Z(), he.Z()),
	}
	clampedWorld := boxPos.Add(boxRot.Rotate(clampedLocal))
	delta := sphereCenter.Sub(clampedWorld)
	dist := delta.Len()

	if dist > radius {
		return Manifold{}
	}

	var normal mgl32.Vec3
	var penetration float32
	if dist > 1e-6 {
		normal = delta.Mul(-1.0 / dist)
		penetration = radius - dist
	} else {
		// sphere center is inside the box: escape along the
		// least-penetrated face.
		penetrations := [3]float32{he.X() - absf(local.X()), he.Y() - absf(local.Y()), he.Z() - absf(local.Z())}
		axis := 0
		if penetrations[1] < penetrations[axis] {
			axis = 1
		}
		if penetrations[2] < penetrations[axis] {
			axis = 2
		}
		localNormal := mgl32.Vec3{}
		localNormal[axis] = -signedExtent(local[axis], 1)
		normal = boxRot.Rotate(localNormal)
		penetration = penetrations[axis] + radius
	}
	return Manifold{Point: clampedWorld, Normal: normal, Penetration: penetration, Hit: true}
}

// testSphereCylinder transforms the sphere center into the cylinder's
// local frame, classifies the closest point on cap/side/interior, and
// reports the minimum-penetration escape axis. The normal points from
// the sphere (A) toward the cylinder (B).
func testSphereCylinder(sphereCenter mgl32.Vec3, radius float32, cyl Collider, cylPos mgl32.Vec3, cylRot mgl32.Quat) Manifold {
	local := cylRot.Conjugate().Rotate(sphereCenter.Sub(cylPos))
	halfHeight := cyl.Height * 0.5
	radial := sqrt32(local.X()*local.X() + local.Z()*local.Z())

	clampedY := clampf(local.Y(), -halfHeight, halfHeight)

	var closestLocal mgl32.Vec3
	if radial > cyl.Radius {
		scale := cyl.Radius / radial
		closestLocal = mgl32.Vec3{local.X() * scale, clampedY, local.Z() * scale}
	} else {
		// Inside the infinite cylinder's radius: closest point is
		// either on the flat cap (if beyond half-height) or the
		// sphere center's own radial projection (interior case).
		if local.Y() > halfHeight || local.Y() < -halfHeight {
			closestLocal = mgl32.Vec3{local.X(), clampedY, local.Z()}
		} else {
			closestLocal = local
		}
	}

	closestWorld := cylPos.Add(cylRot.Rotate(closestLocal))
	delta := sphereCenter.Sub(closestWorld)
	dist := delta.Len()

	if radial <= cyl.Radius && local.Y() <= halfHeight && local.Y() >= -halfHeight {
		// sphere center inside the solid cylinder: escape via
		// whichever of side/caps is nearer.
		sideDist := cyl.Radius - radial
		capDist := halfHeight - absf(local.Y())
		if sideDist < capDist {
			var n mgl32.Vec3
			if radial > 1e-6 {
				n = mgl32.Vec3{local.X() / radial, 0, local.Z() / radial}
			} else {
				n = mgl32.Vec3{1, 0, 0}
			}
			normal := cylRot.Rotate(n).Mul(-1)
			return Manifold{Point: closestWorld, Normal: normal, Penetration: sideDist + radius, Hit: true}
		}
		n := mgl32.Vec3{0, signedExtent(local.Y(), 1), 0}
		normal := cylRot.Rotate(n).Mul(-1)
		return Manifold{Point: closestWorld, Normal: normal, Penetration: capDist + radius, Hit: true}
	}

	if dist > radius {
		return Manifold{}
	}
	var normal mgl32.Vec3
	if dist > 1e-6 {
		normal = delta.Mul(-1.0 / dist)
	} else {
		normal = mgl32.Vec3{1, 0, 0}
	}
	return Manifold{Point: closestWorld, Normal: normal, Penetration: radius - dist, Hit: true}
}

// testCylinderCylinder reduces to a 2D disk test when axes are parallel
// (project both onto the shared axis plane, test disk overlap plus
// height-interval overlap); otherwise falls back to a conservative
// bounding-sphere approximation for the general (skewed-axis) case.
func testCylinderCylinder(a Collider, posA mgl32.Vec3, rotA mgl32.Quat, b Collider, posB mgl32.Vec3, rotB mgl32.Quat) Manifold {
	axisA := rotA.Rotate(mgl32.Vec3{0, 1, 0})
	axisB := rotB.Rotate(mgl32.Vec3{0, 1, 0})

	if absf(axisA.Dot(axisB)) > 0.999 {
		localB := rotA.Conjugate().Rotate(posB.Sub(posA))
		radial := mgl32.Vec2{localB.X(), localB.Z()}
		radialDist := radial.Len()
		sumR := a.Radius + b.Radius
		if radialDist >= sumR {
			return Manifold{}
		}
		halfA, halfB := a.Height*0.5, b.Height*0.5
		top := minf(halfA, localB.Y()+halfB)
		bottom := maxf(-halfA, localB.Y()-halfB)
		if top <= bottom {
			return Manifold{}
		}
		var radialNormalLocal mgl32.Vec3
		if radialDist > 1e-6 {
			radialNormalLocal = mgl32.Vec3{radial.X() / radialDist, 0, radial.Y() / radialDist}
		} else {
			radialNormalLocal = mgl32.Vec3{1, 0, 0}
		}
		normal := rotA.Rotate(radialNormalLocal)
		point := posA.Add(rotA.Rotate(mgl32.Vec3{0, (top + bottom) * 0.5, 0})).Add(normal.Mul(a.Radius))
		return Manifold{Point: point, Normal: normal, Penetration: sumR - radialDist, Hit: true}
	}

	return boundingSphereFallback(a, posA, b, posB)
}

func boundingSphereFallback(a Collider, posA mgl32.Vec3, b Collider, posB mgl32.Vec3) Manifold {
	return testSphereSphere(posA, a.BoundingSphereRadius(), posB, b.BoundingSphereRadius())
}

// testGJKFallback runs GJK and, on overlap, EPA, used for shape
// combinations with no closed-form test (box-cylinder).
func testGJKFallback(a Collider, posA mgl32.Vec3, rotA mgl32.Quat, b Collider, posB mgl32.Vec3, rotB mgl32.Quat) Manifold {
	s, hit := gjkIntersect(a, posA, rotA, b, posB, rotB)
	if !hit {
		return Manifold{}
	}
	normal, depth, ok := epaPenetration(a, posA, rotA, b, posB, rotB, s)
	if !ok {
		return Manifold{}
	}
	point := posA.Add(posB).Mul(0.5)
	return Manifold{Point: point, Normal: normal, Penetration: depth, Hit: true}
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

package rigid3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

func sqrt32(v float32) float32 { return float32(math.Sqrt(float64(v))) }

// supportPoint returns the point on the collider's surface, in world
// space, furthest along direction. This is the single primitive GJK and
// EPA build on; it dispatches over the tagged Collider kind rather than
// walking a convex-hull vertex list, since none of the four shapes here
// need a full hull scan.
func supportPoint(c Collider, position mgl32.Vec3, rotation mgl32.Quat, direction mgl32.Vec3) mgl32.Vec3 {
	if direction.LenSqr() < 1e-18 {
		direction = mgl32.Vec3{0, 1, 0}
	}
	switch c.Kind {
	case ColliderSphere:
		return position.Add(direction.Normalize().Mul(c.Radius))
	case ColliderBox:
		local := rotation.Conjugate().Rotate(direction)
		he := c.HalfExtents
		corner := mgl32.Vec3{
			signedExtent(local.X(), he.X()),
			signedExtent(local.Y(), he.Y()),
			signedExtent(local.Z(), he.Z()),
		}
		return position.Add(rotation.Rotate(corner))
	case ColliderCylinder, ColliderFan:
		local := rotation.Conjugate().Rotate(direction)
		halfHeight := c.Height * 0.5
		radial := local.X()*local.X() + local.Z()*local.Z()
		var point mgl32.Vec3
		if radial < 1e-12 {
			point = mgl32.Vec3{0, signedExtent(local.Y(), halfHeight), 0}
		} else {
			scale := c.Radius / sqrt32(radial)
			point = mgl32.Vec3{local.X() * scale, signedExtent(local.Y(), halfHeight), local.Z() * scale}
		}
		return position.Add(rotation.Rotate(point))
	default:
		return position
	}
}

func signedExtent(component, extent float32) float32 {
	if component < 0 {
		return -extent
	}
	return extent
}

// supportMinkowskiDiff returns the support point of the Minkowski
// difference (A - B) along direction: support_A(dir) - support_B(-dir).
func supportMinkowskiDiff(a Collider, posA mgl32.Vec3, rotA mgl32.Quat, b Collider, posB mgl32.Vec3, rotB mgl32.Quat, direction mgl32.Vec3) mgl32.Vec3 {
	sa := supportPoint(a, posA, rotA, direction)
	sb := supportPoint(b, posB, rotB, direction.Mul(-1))
	return sa.Sub(sb)
}

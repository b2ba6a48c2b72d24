package rigid3d

import (
	"math"

	"github.com/duskforge/rigid3d/rmath"
	"github.com/go-gl/mathgl/mgl32"
)

// ColliderKind tags which variant a Collider holds. Dispatch on Kind
// uses a match ladder rather than virtual dispatch throughout this
// package: the set of shapes is small and fixed, and a ladder keeps
// narrowphase dispatch branch-predictable and allocation-free, per the
// tagged-union guidance in the design notes.
type ColliderKind int

const (
	ColliderSphere ColliderKind = iota
	ColliderBox
	ColliderCylinder
	ColliderFan
)

func (k ColliderKind) String() string {
	switch k {
	case ColliderSphere:
		return "sphere"
	case ColliderBox:
		return "box"
	case ColliderCylinder:
		return "cylinder"
	case ColliderFan:
		return "fan"
	default:
		return "unknown"
	}
}

// Collider is the inline, tagged-union shape embedded directly in every
// body (RigidBody does not own its collider by reference, per the
// ownership design). Only the fields relevant to Kind are meaningful;
// the rest are zero.
type Collider struct {
	Kind ColliderKind

	Radius      float32    // Sphere, Cylinder, Fan
	HalfExtents mgl32.Vec3 // Box
	Height      float32    // Cylinder, Fan (full height, Y axis)
	Angle       float32    // Fan (half-angle of the angular wedge, radians)

	// CrossSectionalArea is precomputed at construction for air-drag
	// force computation (World.applyForces).
	CrossSectionalArea float32
}

// NewSphereCollider returns a sphere collider of the given radius.
func NewSphereCollider(radius float32) Collider {
	return Collider{Kind: ColliderSphere, Radius: radius, CrossSectionalArea: math.Pi * radius * radius}
}

// NewBoxCollider returns a box collider with the given half-extents.
func NewBoxCollider(halfExtents mgl32.Vec3) Collider {
	x, y, z := halfExtents.X(), halfExtents.Y(), halfExtents.Z()
	area := (x*y + y*z + z*x) * 4.0 / 3.0
	return Collider{Kind: ColliderBox, HalfExtents: halfExtents, CrossSectionalArea: area}
}

// NewCylinderCollider returns a cylinder collider (axis along local Y)
// with the given radius and full height.
func NewCylinderCollider(radius, height float32) Collider {
	area := math.Pi*radius*radius + radius*height
	return Collider{Kind: ColliderCylinder, Radius: radius, Height: height, CrossSectionalArea: area}
}

// NewFanCollider returns a fan collider: a cylindrical wedge clipped to
// +/-angle around the local Y axis. Fans never generate contacts, so
// they're only valid for trigger-only bodies.
func NewFanCollider(radius, height, angle float32) Collider {
	area := math.Pi*radius*radius + radius*height
	return Collider{Kind: ColliderFan, Radius: radius, Height: height, Angle: angle, CrossSectionalArea: area}
}

// obb returns the oriented box enclosing the collider in local space,
// used as the common path into Obb.Aabb() for every non-sphere shape.
func (c Collider) obb(position mgl32.Vec3, rotation mgl32.Quat) rmath.Obb {
	switch c.Kind {
	case ColliderBox:
		return rmath.Obb{Center: position, HalfExtents: c.HalfExtents, Rotation: rotation}
	case ColliderCylinder, ColliderFan:
		he := mgl32.Vec3{c.Radius, c.Height * 0.5, c.Radius}
		return rmath.Obb{Center: position, HalfExtents: he, Rotation: rotation}
	default:
		he := mgl32.Vec3{c.Radius, c.Radius, c.Radius}
		return rmath.Obb{Center: position, HalfExtents: he, Rotation: rotation}
	}
}

// Aabb returns the axis-aligned box enclosing the collider at the given
// world position/rotation. Spheres take the direct position+/-radius
// shortcut; every other shape goes through the OBB-to-AABB conversion
// (|R| * half_extents).
func (c Collider) Aabb(position mgl32.Vec3, rotation mgl32.Quat) rmath.Aabb {
	if c.Kind == ColliderSphere {
		return rmath.SphereAabb(position, c.Radius)
	}
	return c.obb(position, rotation).Aabb()
}

// MinExtent returns the collider's smallest full dimension, used as the
// CCD swept-test threshold length.
func (c Collider) MinExtent() float32 {
	switch c.Kind {
	case ColliderSphere:
		return 2 * c.Radius
	case ColliderBox:
		x, y, z := c.HalfExtents.X()*2, c.HalfExtents.Y()*2, c.HalfExtents.Z()*2
		return min3(x, y, z)
	case ColliderCylinder, ColliderFan:
		return min3(2*c.Radius, 2*c.Radius, c.Height)
	default:
		return 0
	}
}

// BoundingSphereRadius returns the radius of the smallest sphere (at the
// collider's own center) enclosing the shape, used for the bounding-
// sphere pre-filter ahead of exact narrowphase tests and for the
// conservative swept-sphere CCD fallback.
func (c Collider) BoundingSphereRadius() float32 {
	switch c.Kind {
	case ColliderSphere:
		return c.Radius
	case ColliderBox:
		return c.HalfExtents.Len()
	case ColliderCylinder, ColliderFan:
		halfHeight := c.Height * 0.5
		return float32(math.Sqrt(float64(c.Radius*c.Radius + halfHeight*halfHeight)))
	default:
		return 0
	}
}

func min3(a, b, c float32) float32 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// Package rmath layers the axis-aligned-box, oriented-box, ray, and SIMD
// batch helpers that the physics core needs on top of mgl32. It never
// introduces its own vector/quaternion representation — every type here
// is built from mgl32.Vec3/Quat/Mat3 so the rest of the module has a
// single math vocabulary.
package rmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Aabb is an axis-aligned bounding box: a 3D interval [Min, Max].
type Aabb struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyAabb returns an inverted box such that unioning any real box with
// it yields that box unchanged.
func EmptyAabb() Aabb {
	inf := float32(math.Inf(1))
	return Aabb{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// SphereAabb returns the box enclosing a sphere of the given radius
// centered at center.
func SphereAabb(center mgl32.Vec3, radius float32) Aabb {
	r := mgl32.Vec3{radius, radius, radius}
	return Aabb{Min: center.Sub(r), Max: center.Add(r)}
}

// Union returns the smallest box containing both a and b.
func (a Aabb) Union(b Aabb) Aabb {
	return Aabb{
		Min: componentMin(a.Min, b.Min),
		Max: componentMax(a.Max, b.Max),
	}
}

// Expand grows the box by margin on every axis, in both directions.
func (a Aabb) Expand(margin float32) Aabb {
	m := mgl32.Vec3{margin, margin, margin}
	return Aabb{Min: a.Min.Sub(m), Max: a.Max.Add(m)}
}

// Center returns the box's midpoint.
func (a Aabb) Center() mgl32.Vec3 { return a.Min.Add(a.Max).Mul(0.5) }

// HalfExtents returns half the box's size along each axis.
func (a Aabb) HalfExtents() mgl32.Vec3 { return a.Max.Sub(a.Min).Mul(0.5) }

// Intersects reports whether a and b overlap on all three axes.
func (a Aabb) Intersects(b Aabb) bool {
	return a.Min.X() <= b.Max.X() && a.Max.X() >= b.Min.X() &&
		a.Min.Y() <= b.Max.Y() && a.Max.Y() >= b.Min.Y() &&
		a.Min.Z() <= b.Max.Z() && a.Max.Z() >= b.Min.Z()
}

// ContainsPoint reports whether p lies within the box.
func (a Aabb) ContainsPoint(p mgl32.Vec3) bool {
	return p.X() >= a.Min.X() && p.X() <= a.Max.X() &&
		p.Y() >= a.Min.Y() && p.Y() <= a.Max.Y() &&
		p.Z() >= a.Min.Z() && p.Z() <= a.Max.Z()
}

// SurfaceArea is used by SAH-style BVH construction heuristics.
func (a Aabb) SurfaceArea() float32 {
	d := a.Max.Sub(a.Min)
	if d.X() < 0 || d.Y() < 0 || d.Z() < 0 {
		return 0
	}
	return 2 * (d.X()*d.Y() + d.Y()*d.Z() + d.Z()*d.X())
}

// Translate returns the box shifted by delta, used by CCD's swept AABB.
func (a Aabb) Translate(delta mgl32.Vec3) Aabb {
	return Aabb{Min: a.Min.Add(delta), Max: a.Max.Add(delta)}
}

func componentMin(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{min32(a.X(), b.X()), min32(a.Y(), b.Y()), min32(a.Z(), b.Z())}
}

func componentMax(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{max32(a.X(), b.X()), max32(a.Y(), b.Y()), max32(a.Z(), b.Z())}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

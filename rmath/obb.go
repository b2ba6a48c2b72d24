package rmath

import "github.com/go-gl/mathgl/mgl32"

// Obb is an oriented bounding box: center, half-extents along its own
// local axes, and the rotation carrying local axes to world space.
type Obb struct {
	Center      mgl32.Vec3
	HalfExtents mgl32.Vec3
	Rotation    mgl32.Quat
}

// Aabb converts the Obb to its enclosing axis-aligned box via the
// column-wise absolute-value rotation matrix: world_half = |R| *
// half_extents. This is the scalar reference path; ObbToAabbBatch4 must
// match it to within 1e-5.
func (o Obb) Aabb() Aabb {
	m := o.Rotation.Mat3()
	abs := mgl32.Mat3{
		absf(m[0]), absf(m[1]), absf(m[2]),
		absf(m[3]), absf(m[4]), absf(m[5]),
		absf(m[6]), absf(m[7]), absf(m[8]),
	}
	worldHalf := abs.Mul3x1(o.HalfExtents)
	return Aabb{Min: o.Center.Sub(worldHalf), Max: o.Center.Add(worldHalf)}
}

// Axes returns the box's three world-space unit axes (columns of the
// rotation matrix), used by the 15-axis SAT box-box test.
func (o Obb) Axes() [3]mgl32.Vec3 {
	m := o.Rotation.Mat3()
	return [3]mgl32.Vec3{
		{m[0], m[1], m[2]},
		{m[3], m[4], m[5]},
		{m[6], m[7], m[8]},
	}
}

// Corners returns the box's 8 world-space vertices.
func (o Obb) Corners() [8]mgl32.Vec3 {
	axes := o.Axes()
	var out [8]mgl32.Vec3
	for i := 0; i < 8; i++ {
		p := o.Center
		if i&1 != 0 {
			p = p.Add(axes[0].Mul(o.HalfExtents.X()))
		} else {
			p = p.Sub(axes[0].Mul(o.HalfExtents.X()))
		}
		if i&2 != 0 {
			p = p.Add(axes[1].Mul(o.HalfExtents.Y()))
		} else {
			p = p.Sub(axes[1].Mul(o.HalfExtents.Y()))
		}
		if i&4 != 0 {
			p = p.Add(axes[2].Mul(o.HalfExtents.Z()))
		} else {
			p = p.Sub(axes[2].Mul(o.HalfExtents.Z()))
		}
		out[i] = p
	}
	return out
}

// ProjectedRadius returns the half-width of the Obb's projection onto
// the (not necessarily unit) axis, used by the SAT overlap test.
func (o Obb) ProjectedRadius(axis mgl32.Vec3) float32 {
	axes := o.Axes()
	return absf(axes[0].Dot(axis))*o.HalfExtents.X() +
		absf(axes[1].Dot(axis))*o.HalfExtents.Y() +
		absf(axes[2].Dot(axis))*o.HalfExtents.Z()
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

package rmath

import (
	"math"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"
)

// SIMDWidth names a batch lane width, as reported by DetectSIMDWidth.
// Only the 4-wide Batch4 functions below exist and none of them takes a
// width; the World neither calls DetectSIMDWidth nor stores its result.
// There is no package-level mutable SIMD-mode state.
type SIMDWidth int

const (
	Width4 SIMDWidth = 4
	Width8 SIMDWidth = 8
)

// DetectSIMDWidth picks a lane width based on the host architecture.
// amd64 hosts are assumed to have at least SSE2 (4-wide); a width-8
// (AVX2-class) preference is offered for amd64 and narrowed to 4 on
// everything else. This is a coarse stand-in for a real cpuid probe:
// Go's standard toolchain has no portable intrinsic SIMD, so the actual
// arithmetic below is identical regardless of width, expressed as an
// explicit SoA transpose rather than hardware vector instructions. Every
// batch function processes four lanes whatever width this returns.
func DetectSIMDWidth(preferWide bool) SIMDWidth {
	if runtime.GOARCH == "amd64" && preferWide {
		return Width8
	}
	return Width4
}

// ObbToAabbBatch4 converts four Obbs to their enclosing Aabbs at once,
// using an explicit structure-of-arrays transpose: the four boxes'
// rotation matrices and half-extents are loaded into [4]float32 lanes,
// the column-abs-matrix multiply runs lane-wise, and the result is
// transposed back into four Aabb values. The scalar path (Obb.Aabb) and
// this batched path must agree to within 1e-5 per lane.
func ObbToAabbBatch4(boxes [4]Obb) [4]Aabb {
	var cx, cy, cz [4]float32
	var hx, hy, hz [4]float32
	var m [9][4]float32

	for i, b := range boxes {
		cx[i], cy[i], cz[i] = b.Center.X(), b.Center.Y(), b.Center.Z()
		hx[i], hy[i], hz[i] = b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()
		rm := b.Rotation.Mat3()
		for k := 0; k < 9; k++ {
			m[k][i] = absf(rm[k])
		}
	}

	var out [4]Aabb
	for i := 0; i < 4; i++ {
		worldHx := m[0][i]*hx[i] + m[3][i]*hy[i] + m[6][i]*hz[i]
		worldHy := m[1][i]*hx[i] + m[4][i]*hy[i] + m[7][i]*hz[i]
		worldHz := m[2][i]*hx[i] + m[5][i]*hy[i] + m[8][i]*hz[i]
		center := mgl32.Vec3{cx[i], cy[i], cz[i]}
		half := mgl32.Vec3{worldHx, worldHy, worldHz}
		out[i] = Aabb{Min: center.Sub(half), Max: center.Add(half)}
	}
	return out
}

// AabbIntersectsBatch4 tests a single query box against four candidate
// boxes, lane by lane, and returns a 4-bit mask (bit i set when boxes[i]
// intersects query).
func AabbIntersectsBatch4(query Aabb, boxes [4]Aabb) (mask uint8) {
	for i, b := range boxes {
		if query.Intersects(b) {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

// VectorCross3Batch4 computes four independent cross products lane-wise.
func VectorCross3Batch4(a, b [4]mgl32.Vec3) [4]mgl32.Vec3 {
	var out [4]mgl32.Vec3
	var ax, ay, az, bx, by, bz [4]float32
	for i := 0; i < 4; i++ {
		ax[i], ay[i], az[i] = a[i].X(), a[i].Y(), a[i].Z()
		bx[i], by[i], bz[i] = b[i].X(), b[i].Y(), b[i].Z()
	}
	var rx, ry, rz [4]float32
	for i := 0; i < 4; i++ {
		rx[i] = ay[i]*bz[i] - az[i]*by[i]
		ry[i] = az[i]*bx[i] - ax[i]*bz[i]
		rz[i] = ax[i]*by[i] - ay[i]*bx[i]
	}
	for i := 0; i < 4; i++ {
		out[i] = mgl32.Vec3{rx[i], ry[i], rz[i]}
	}
	return out
}

// VectorDot3Batch4 computes four independent dot products lane-wise.
func VectorDot3Batch4(a, b [4]mgl32.Vec3) [4]float32 {
	var out [4]float32
	for i := 0; i < 4; i++ {
		out[i] = a[i].X()*b[i].X() + a[i].Y()*b[i].Y() + a[i].Z()*b[i].Z()
	}
	return out
}

// VectorLength3Batch4 computes four independent vector lengths lane-wise.
func VectorLength3Batch4(v [4]mgl32.Vec3) [4]float32 {
	dots := VectorDot3Batch4(v, v)
	var out [4]float32
	for i := 0; i < 4; i++ {
		out[i] = float32(math.Sqrt(float64(dots[i])))
	}
	return out
}

// VectorNormalize3Batch4 normalizes four vectors lane-wise. Zero-length
// lanes pass through unchanged rather than dividing by zero.
func VectorNormalize3Batch4(v [4]mgl32.Vec3) [4]mgl32.Vec3 {
	lens := VectorLength3Batch4(v)
	var out [4]mgl32.Vec3
	for i := 0; i < 4; i++ {
		if lens[i] < 1e-12 {
			out[i] = v[i]
			continue
		}
		out[i] = v[i].Mul(1.0 / lens[i])
	}
	return out
}

// QuaternionMulVector3Batch4 rotates four vectors by four quaternions
// lane-wise, using the standard q*v*q^-1 expansion so each lane stays a
// pure scalar computation (no mgl32 call inside the loop body).
func QuaternionMulVector3Batch4(q [4]mgl32.Quat, v [4]mgl32.Vec3) [4]mgl32.Vec3 {
	var out [4]mgl32.Vec3
	for i := 0; i < 4; i++ {
		qv := mgl32.Vec3{q[i].V.X(), q[i].V.Y(), q[i].V.Z()}
		t := qv.Cross(v[i]).Mul(2)
		out[i] = v[i].Add(t.Mul(q[i].W)).Add(qv.Cross(t))
	}
	return out
}

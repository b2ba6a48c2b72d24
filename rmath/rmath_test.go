package rmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestAabbUnionAndIntersect(t *testing.T) {
	a := Aabb{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	b := Aabb{Min: mgl32.Vec3{0.5, 0.5, 0.5}, Max: mgl32.Vec3{2, 2, 2}}
	assert.True(t, a.Intersects(b))

	c := Aabb{Min: mgl32.Vec3{10, 10, 10}, Max: mgl32.Vec3{11, 11, 11}}
	assert.False(t, a.Intersects(c))

	u := a.Union(c)
	assert.Equal(t, mgl32.Vec3{-1, -1, -1}, u.Min)
	assert.Equal(t, mgl32.Vec3{11, 11, 11}, u.Max)
}

func TestRaySlabIntersect(t *testing.T) {
	box := Aabb{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	ray := Ray{Origin: mgl32.Vec3{-5, 0, 0}, Dir: mgl32.Vec3{1, 0, 0}}
	tNear, tFar, hit := ray.IntersectAabb(box, 100)
	assert.True(t, hit)
	assert.InDelta(t, 4.0, tNear, 1e-5)
	assert.InDelta(t, 6.0, tFar, 1e-5)

	miss := Ray{Origin: mgl32.Vec3{-5, 5, 0}, Dir: mgl32.Vec3{1, 0, 0}}
	_, _, hit = miss.IntersectAabb(box, 100)
	assert.False(t, hit)
}

func TestRayMaxDistRejection(t *testing.T) {
	box := Aabb{Min: mgl32.Vec3{10, -1, -1}, Max: mgl32.Vec3{11, 1, 1}}
	ray := Ray{Origin: mgl32.Vec3{0, 0, 0}, Dir: mgl32.Vec3{1, 0, 0}}
	_, _, hit := ray.IntersectAabb(box, 5)
	assert.False(t, hit, "hit beyond maxDist must be rejected")
}

func TestObbToAabbScalarMatchesBatch(t *testing.T) {
	boxes := [4]Obb{
		{Center: mgl32.Vec3{0, 0, 0}, HalfExtents: mgl32.Vec3{1, 2, 3}, Rotation: mgl32.QuatIdent()},
		{Center: mgl32.Vec3{1, 2, 3}, HalfExtents: mgl32.Vec3{0.5, 0.5, 0.5}, Rotation: mgl32.QuatRotate(0.7, mgl32.Vec3{0, 1, 0})},
		{Center: mgl32.Vec3{-2, 0, 1}, HalfExtents: mgl32.Vec3{2, 1, 1}, Rotation: mgl32.QuatRotate(1.1, mgl32.Vec3{1, 0, 0})},
		{Center: mgl32.Vec3{5, -5, 5}, HalfExtents: mgl32.Vec3{1, 1, 4}, Rotation: mgl32.QuatRotate(0.3, mgl32.Vec3{1, 1, 1}.Normalize())},
	}

	batched := ObbToAabbBatch4(boxes)
	for i, b := range boxes {
		scalar := b.Aabb()
		assert.InDelta(t, scalar.Min.X(), batched[i].Min.X(), 1e-4)
		assert.InDelta(t, scalar.Min.Y(), batched[i].Min.Y(), 1e-4)
		assert.InDelta(t, scalar.Min.Z(), batched[i].Min.Z(), 1e-4)
		assert.InDelta(t, scalar.Max.X(), batched[i].Max.X(), 1e-4)
		assert.InDelta(t, scalar.Max.Y(), batched[i].Max.Y(), 1e-4)
		assert.InDelta(t, scalar.Max.Z(), batched[i].Max.Z(), 1e-4)
	}
}

func TestVectorNormalizeBatch4(t *testing.T) {
	v := [4]mgl32.Vec3{{3, 4, 0}, {0, 0, 0}, {1, 0, 0}, {0, 2, 0}}
	out := VectorNormalize3Batch4(v)
	assert.InDelta(t, 1.0, float64(out[0].Len()), 1e-5)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, out[1])
	assert.InDelta(t, 1.0, float64(out[3].Len()), 1e-5)
}

func TestQuaternionMulVectorBatch4IdentityIsNoop(t *testing.T) {
	ident := mgl32.QuatIdent()
	q := [4]mgl32.Quat{ident, ident, ident, ident}
	v := [4]mgl32.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 1}}
	out := QuaternionMulVector3Batch4(q, v)
	for i := range v {
		assert.InDelta(t, float64(v[i].X()), float64(out[i].X()), 1e-5)
		assert.InDelta(t, float64(v[i].Y()), float64(out[i].Y()), 1e-5)
		assert.InDelta(t, float64(v[i].Z()), float64(out[i].Z()), 1e-5)
	}
}

func TestDetectSIMDWidth(t *testing.T) {
	w := DetectSIMDWidth(false)
	assert.Equal(t, Width4, w)
	_ = math.Pi
}

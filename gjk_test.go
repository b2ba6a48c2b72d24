package rigid3d

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestGJKDetectsOverlappingSpheres(t *testing.T) {
	a := NewSphereCollider(1)
	b := NewSphereCollider(1)
	_, hit := gjkIntersect(a, mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent(), b, mgl32.Vec3{1.5, 0, 0}, mgl32.QuatIdent())
	assert.True(t, hit)
}

func TestGJKRejectsSeparatedSpheres(t *testing.T) {
	a := NewSphereCollider(1)
	b := NewSphereCollider(1)
	_, hit := gjkIntersect(a, mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent(), b, mgl32.Vec3{10, 0, 0}, mgl32.QuatIdent())
	assert.False(t, hit)
}

func TestGJKDetectsOverlappingBoxes(t *testing.T) {
	a := NewBoxCollider(mgl32.Vec3{1, 1, 1})
	b := NewBoxCollider(mgl32.Vec3{1, 1, 1})
	_, hit := gjkIntersect(a, mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent(), b, mgl32.Vec3{1.9, 0, 0}, mgl32.QuatIdent())
	assert.True(t, hit)
}

func TestGJKRejectsSeparatedBoxes(t *testing.T) {
	a := NewBoxCollider(mgl32.Vec3{1, 1, 1})
	b := NewBoxCollider(mgl32.Vec3{1, 1, 1})
	_, hit := gjkIntersect(a, mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent(), b, mgl32.Vec3{3, 0, 0}, mgl32.QuatIdent())
	assert.False(t, hit)
}

func TestGJKHandlesRotatedBoxOverlap(t *testing.T) {
	a := NewBoxCollider(mgl32.Vec3{1, 1, 1})
	b := NewBoxCollider(mgl32.Vec3{1, 1, 1})
	rot := mgl32.QuatRotate(0.4, mgl32.Vec3{0, 1, 0})
	_, hit := gjkIntersect(a, mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent(), b, mgl32.Vec3{1.8, 0, 0}, rot)
	assert.True(t, hit)
}

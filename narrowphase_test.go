package rigid3d

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSphereSphereManifold(t *testing.T) {
	m := testSphereSphere(mgl32.Vec3{0, 0, 0}, 1, mgl32.Vec3{1.5, 0, 0}, 1)
	require.True(t, m.Hit)
	assert.InDelta(t, 0.5, float64(m.Penetration), 1e-5)
	assert.InDelta(t, 1.0, float64(m.Normal.X()), 1e-5)
}

func TestSphereSphereNoOverlap(t *testing.T) {
	m := testSphereSphere(mgl32.Vec3{0, 0, 0}, 1, mgl32.Vec3{5, 0, 0}, 1)
	assert.False(t, m.Hit)
}

func TestBoxBoxAxisAlignedOverlap(t *testing.T) {
	a := NewBoxCollider(mgl32.Vec3{1, 1, 1})
	b := NewBoxCollider(mgl32.Vec3{1, 1, 1})
	m := testBoxBox(a, mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent(), b, mgl32.Vec3{1.6, 0, 0}, mgl32.QuatIdent())
	require.True(t, m.Hit)
	assert.InDelta(t, 0.4, float64(m.Penetration), 1e-4)
	assert.Greater(t, float64(m.Normal.X()), 0.0)
}

func TestBoxBoxRotatedOverlap(t *testing.T) {
	a := NewBoxCollider(mgl32.Vec3{1, 1, 1})
	b := NewBoxCollider(mgl32.Vec3{1, 1, 1})
	rot := mgl32.QuatRotate(0.3, mgl32.Vec3{0, 0, 1})
	m := testBoxBox(a, mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent(), b, mgl32.Vec3{1.8, 0, 0}, rot)
	assert.True(t, m.Hit)
}

func TestSphereBoxClampsIntoBox(t *testing.T) {
	box := NewBoxCollider(mgl32.Vec3{1, 1, 1})
	m := testSphereBox(mgl32.Vec3{1.5, 0, 0}, 1, box, mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent())
	require.True(t, m.Hit)
	assert.InDelta(t, 0.5, float64(m.Penetration), 1e-4)
}

func TestSphereCylinderSideContact(t *testing.T) {
	cyl := NewCylinderCollider(1, 2)
	m := testSphereCylinder(mgl32.Vec3{1.5, 0, 0}, 1, cyl, mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent())
	require.True(t, m.Hit)
	assert.InDelta(t, 0.5, float64(m.Penetration), 1e-4)
}

func TestFanNeverGeneratesContacts(t *testing.T) {
	fan := NewFanCollider(1, 1, 0.5)
	sphere := NewSphereCollider(1)
	m := testColliders(fan, mgl32.Vec3{}, mgl32.QuatIdent(), sphere, mgl32.Vec3{0.5, 0, 0}, mgl32.QuatIdent())
	assert.False(t, m.Hit)
}

func TestCylinderCylinderParallelAxes(t *testing.T) {
	a := NewCylinderCollider(1, 2)
	b := NewCylinderCollider(1, 2)
	m := testCylinderCylinder(a, mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent(), b, mgl32.Vec3{1.5, 0, 0}, mgl32.QuatIdent())
	assert.True(t, m.Hit)
}

func TestDispatcherSwapsOperandsAndNegatesNormal(t *testing.T) {
	box := NewBoxCollider(mgl32.Vec3{1, 1, 1})
	sphere := NewSphereCollider(1)

	direct := testColliders(sphere, mgl32.Vec3{1.5, 0, 0}, mgl32.QuatIdent(), box, mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent())
	swapped := testColliders(box, mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent(), sphere, mgl32.Vec3{1.5, 0, 0}, mgl32.QuatIdent())

	require.True(t, direct.Hit)
	require.True(t, swapped.Hit)
	assert.InDelta(t, float64(direct.Normal.X()), -float64(swapped.Normal.X()), 1e-5)
}

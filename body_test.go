package rigid3d

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestApplyForceWakesAndAccumulates(t *testing.T) {
	b := newDynamicBody(mgl32.Vec3{}, mgl32.QuatIdent(), NewSphereCollider(1), 2)
	b.IsSleeping = true
	b.ApplyForce(mgl32.Vec3{0, -10, 0})
	assert.False(t, b.IsSleeping)
	assert.Equal(t, mgl32.Vec3{0, -10, 0}, b.Force)
}

func TestApplyImpulseAtPointInducesTorque(t *testing.T) {
	b := newDynamicBody(mgl32.Vec3{}, mgl32.QuatIdent(), NewBoxCollider(mgl32.Vec3{1, 1, 1}), 1)
	b.ApplyImpulseAtPoint(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0})
	assert.NotEqual(t, mgl32.Vec3{}, b.AngularVelocity, "off-center impulse must induce angular velocity")
	assert.InDelta(t, 0, float64(b.Velocity.X()), 1e-6)
}

func TestSetMassRescalesInertia(t *testing.T) {
	b := newDynamicBody(mgl32.Vec3{}, mgl32.QuatIdent(), NewSphereCollider(2), 4)
	originalInvInertia := b.InvInertia.X()

	b.SetMass(8)
	assert.InDelta(t, 0.125, float64(b.InvMass), 1e-6)
	assert.Less(t, float64(b.InvInertia.X()), float64(originalInvInertia), "doubling mass must shrink inverse inertia")
}

func TestSetMassZeroClearsInertia(t *testing.T) {
	b := newDynamicBody(mgl32.Vec3{}, mgl32.QuatIdent(), NewSphereCollider(1), 2)
	b.SetMass(0)
	assert.Equal(t, float32(0), b.InvMass)
	assert.Equal(t, mgl32.Vec3{}, b.InvInertia)
}

func TestSleepingBodyDoesNotIntegrate(t *testing.T) {
	b := newDynamicBody(mgl32.Vec3{}, mgl32.QuatIdent(), NewSphereCollider(1), 1)
	b.IsSleeping = true
	b.Force = mgl32.Vec3{0, -10, 0}
	b.integrate(1.0 / 60.0)
	assert.Equal(t, mgl32.Vec3{}, b.Velocity)
}

func TestIntegrateAppliesDamping(t *testing.T) {
	b := newDynamicBody(mgl32.Vec3{}, mgl32.QuatIdent(), NewSphereCollider(1), 1)
	b.Velocity = mgl32.Vec3{10, 0, 0}
	b.LinearDamping = 0.5
	b.integrate(1.0)
	assert.InDelta(t, 5.0, float64(b.Velocity.X()), 1e-4)
}

func TestIntegratePositionRefreshesCachedBounds(t *testing.T) {
	b := newDynamicBody(mgl32.Vec3{}, mgl32.QuatIdent(), NewSphereCollider(1), 1)
	b.Velocity = mgl32.Vec3{1, 0, 0}
	b.integratePosition(1.0)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, b.Position)
	assert.InDelta(t, 0.0, float64(b.Aabb().Min.X()), 1e-5)
}

func TestBoxInertiaIsPositiveOnEachAxis(t *testing.T) {
	b := newDynamicBody(mgl32.Vec3{}, mgl32.QuatIdent(), NewBoxCollider(mgl32.Vec3{1, 2, 3}), 6)
	assert.Greater(t, float64(b.InvInertia.X()), 0.0)
	assert.Greater(t, float64(b.InvInertia.Y()), 0.0)
	assert.Greater(t, float64(b.InvInertia.Z()), 0.0)
}

package rigid3d

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPairKeyIsSymmetric(t *testing.T) {
	assert.Equal(t, dynamicPairKey(3, 7), dynamicPairKey(7, 3))
}

func TestStaticPairKeyNeverCollidesWithDynamic(t *testing.T) {
	assert.NotEqual(t, staticPairKey(1, 1), dynamicPairKey(1, 1))
}

func TestResolveDynamicContactStopsApproach(t *testing.T) {
	a := newDynamicBody(mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent(), NewSphereCollider(1), 1)
	b := newDynamicBody(mgl32.Vec3{2, 0, 0}, mgl32.QuatIdent(), NewSphereCollider(1), 1)
	a.Velocity = mgl32.Vec3{10, 0, 0}
	b.Velocity = mgl32.Vec3{-10, 0, 0}

	c := &DynamicContact{
		Point:       mgl32.Vec3{1, 0, 0},
		Normal:      mgl32.Vec3{1, 0, 0},
		Penetration: 0,
		Restitution: 0,
		Friction:    0,
	}
	prepareDynamicContact(c, a, b, 1.0/60.0)
	for i := 0; i < 4; i++ {
		resolveDynamicContact(c, a, b, true)
	}

	assert.Less(t, float64(a.Velocity.X()), 10.0)
	assert.Greater(t, float64(b.Velocity.X()), -10.0)
	assert.GreaterOrEqual(t, float64(c.NormalImpulse), 0.0)
}

func TestMomentumConservedOnFrictionlessResolve(t *testing.T) {
	a := newDynamicBody(mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent(), NewSphereCollider(1), 2)
	b := newDynamicBody(mgl32.Vec3{0.1, 0, 0}, mgl32.QuatIdent(), NewSphereCollider(1), 3)
	a.Velocity = mgl32.Vec3{5, 0, 0}
	b.Velocity = mgl32.Vec3{-3, 0, 0}
	a.EnableRotation = false
	b.EnableRotation = false

	momentumBefore := a.Velocity.Mul(a.Mass).Add(b.Velocity.Mul(b.Mass))

	c := &DynamicContact{
		Point:       mgl32.Vec3{0.05, 0, 0},
		Normal:      mgl32.Vec3{1, 0, 0},
		Penetration: 0.1,
		Restitution: 0,
		Friction:    0,
	}
	prepareDynamicContact(c, a, b, 1.0/60.0)
	resolveDynamicContact(c, a, b, false)

	momentumAfter := a.Velocity.Mul(a.Mass).Add(b.Velocity.Mul(b.Mass))
	assert.InDelta(t, float64(momentumBefore.X()), float64(momentumAfter.X()), 1e-3)
	assert.InDelta(t, 0, float64(momentumAfter.Y()), 1e-6)
	assert.InDelta(t, 0, float64(momentumAfter.Z()), 1e-6)
}

func TestNormalImpulseNeverNegative(t *testing.T) {
	a := newDynamicBody(mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent(), NewSphereCollider(1), 1)
	b := newDynamicBody(mgl32.Vec3{2, 0, 0}, mgl32.QuatIdent(), NewSphereCollider(1), 1)
	a.Velocity = mgl32.Vec3{-5, 0, 0} // separating already
	b.Velocity = mgl32.Vec3{5, 0, 0}

	c := &DynamicContact{Point: mgl32.Vec3{1, 0, 0}, Normal: mgl32.Vec3{1, 0, 0}}
	prepareDynamicContact(c, a, b, 1.0/60.0)
	for i := 0; i < 4; i++ {
		resolveDynamicContact(c, a, b, true)
		assert.GreaterOrEqual(t, float64(c.NormalImpulse), 0.0)
	}
}

func TestResolveStaticContactUsesOnlyBodyAVelocity(t *testing.T) {
	a := newDynamicBody(mgl32.Vec3{1.5, 0, 0}, mgl32.QuatIdent(), NewSphereCollider(1), 1)
	a.Velocity = mgl32.Vec3{-10, 0, 0}

	c := &StaticContact{
		Point:       mgl32.Vec3{0.5, 0, 0},
		Normal:      mgl32.Vec3{-1, 0, 0},
		Penetration: 0,
		Restitution: 0,
	}
	prepareStaticContact(c, a, 1.0/60.0)
	resolveStaticContact(c, a, true)

	assert.Greater(t, float64(a.Velocity.X()), -10.0)
}

package rigid3d

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetDynamicBody(t *testing.T) {
	w := NewWorld(DefaultConfig())
	h := w.CreateDynamicBodySphere(1, mgl32.Vec3{0, 5, 0}, mgl32.QuatIdent(), 2)

	b, ok := w.GetDynamicBody(h)
	require.True(t, ok)
	assert.Equal(t, float32(2), b.Mass)
}

func TestDestroyDynamicBodyMarksKilledUntilRebuild(t *testing.T) {
	w := NewWorld(DefaultConfig())
	h := w.CreateDynamicBodySphere(1, mgl32.Vec3{}, mgl32.QuatIdent(), 1)
	w.DestroyDynamicBody(h)

	b, ok := w.GetDynamicBody(h)
	require.True(t, ok, "destroy only marks killed; the handle is still valid until the next rebuild")
	assert.True(t, b.IsKilled)
}

func TestTwoSphereHeadOnCollisionSeparatesAfterStep(t *testing.T) {
	w := NewWorld(DefaultConfig())
	a := w.CreateDynamicBodySphere(1, mgl32.Vec3{-1.1, 0, 0}, mgl32.QuatIdent(), 1)
	b := w.CreateDynamicBodySphere(1, mgl32.Vec3{1.1, 0, 0}, mgl32.QuatIdent(), 1)
	ba, _ := w.GetDynamicBody(a)
	bb, _ := w.GetDynamicBody(b)
	ba.Velocity = mgl32.Vec3{5, 0, 0}
	bb.Velocity = mgl32.Vec3{-5, 0, 0}
	ba.EnableRotation = false
	bb.EnableRotation = false

	for i := 0; i < 10; i++ {
		w.Step(1.0 / 60.0)
	}

	ba, _ = w.GetDynamicBody(a)
	bb, _ = w.GetDynamicBody(b)
	assert.Less(t, float64(ba.Velocity.X()), 5.0, "A should have been slowed or reversed by the collision")
	assert.Greater(t, float64(bb.Velocity.X()), -5.0, "B should have been slowed or reversed by the collision")
}

func TestSphereRestsOnStaticBoxWithoutSinkingIndefinitely(t *testing.T) {
	cfg := DefaultConfig()
	w := NewWorld(cfg)
	w.CreateStaticBodyBox(mgl32.Vec3{5, 0.5, 5}, mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent())
	sphere := w.CreateDynamicBodySphere(0.5, mgl32.Vec3{0, 2, 0}, mgl32.QuatIdent(), 1)

	for i := 0; i < 180; i++ {
		w.Step(1.0 / 60.0)
	}

	b, _ := w.GetDynamicBody(sphere)
	assert.Greater(t, float64(b.Position.Y()), 0.5, "sphere should rest on top of the box, not sink through it")
	assert.Less(t, float64(b.Position.Y()), 1.5, "sphere should settle near the box surface, not float")
}

func TestKillPlaneMarksFallingBodyKilled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KillY = -1
	w := NewWorld(cfg)
	h := w.CreateDynamicBodySphere(0.5, mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent(), 1)
	b, _ := w.GetDynamicBody(h)
	b.Velocity = mgl32.Vec3{0, -100, 0}

	for i := 0; i < 5; i++ {
		w.Step(1.0 / 60.0)
	}

	b, ok := w.GetDynamicBody(h)
	require.True(t, ok)
	assert.True(t, b.IsKilled)
}

func TestMomentumConservedAcrossFrictionlessFreeFlightStep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = mgl32.Vec3{}
	w := NewWorld(cfg)
	a := w.CreateDynamicBodySphere(1, mgl32.Vec3{-5, 0, 0}, mgl32.QuatIdent(), 1)
	b := w.CreateDynamicBodySphere(1, mgl32.Vec3{5, 0, 0}, mgl32.QuatIdent(), 1)
	ba, _ := w.GetDynamicBody(a)
	bb, _ := w.GetDynamicBody(b)
	ba.Velocity = mgl32.Vec3{3, 0, 0}
	bb.Velocity = mgl32.Vec3{-1, 0, 0}
	before := ba.Velocity.Mul(ba.Mass).Add(bb.Velocity.Mul(bb.Mass))

	w.Step(1.0 / 60.0)

	ba, _ = w.GetDynamicBody(a)
	bb, _ = w.GetDynamicBody(b)
	after := ba.Velocity.Mul(ba.Mass).Add(bb.Velocity.Mul(bb.Mass))
	assert.InDelta(t, float64(before.X()), float64(after.X()), 1e-4, "no contact this step, so no impulse should have been applied")
}

func TestTriggerDetectsOverlapWithDynamicBody(t *testing.T) {
	w := NewWorld(DefaultConfig())
	trigger, _ := w.CreateTriggerBody(NewSphereCollider(2), mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent())
	body := w.CreateDynamicBodySphere(0.5, mgl32.Vec3{1, 0, 0}, mgl32.QuatIdent(), 1)

	w.Step(1.0 / 600.0) // tiny dt so integration barely moves the body

	found := false
	for _, ov := range w.TriggerOverlaps {
		if ov.Trigger == trigger && ov.Body == body {
			found = true
		}
	}
	assert.True(t, found)
}

func TestQuerySphereFindsOverlappingDynamicBody(t *testing.T) {
	w := NewWorld(DefaultConfig())
	h := w.CreateDynamicBodySphere(1, mgl32.Vec3{0, 0, 0}, mgl32.QuatIdent(), 1)

	dyn, _ := w.QuerySphere(mgl32.Vec3{0.5, 0, 0}, 1)
	assert.Contains(t, dyn, h)
}

func TestRaycastSingleHitsNearestBody(t *testing.T) {
	w := NewWorld(DefaultConfig())
	near := w.CreateDynamicBodySphere(1, mgl32.Vec3{5, 0, 0}, mgl32.QuatIdent(), 1)
	w.CreateDynamicBodySphere(1, mgl32.Vec3{10, 0, 0}, mgl32.QuatIdent(), 1)

	hit, isStatic, _, ok := w.RaycastSingle(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, 50)
	require.True(t, ok)
	assert.False(t, isStatic)
	assert.Equal(t, near, hit.Body)
}

func TestConcurrentStepProducesSameContactCountAsSequential(t *testing.T) {
	seqCfg := DefaultConfig()
	seqCfg.EnableParallel = false
	seqWorld := NewWorld(seqCfg)

	parCfg := DefaultConfig()
	parCfg.EnableParallel = true
	parCfg.ThreadCount = 4
	parWorld := NewWorld(parCfg)
	defer parWorld.Destroy()

	for _, w := range []*World{seqWorld, parWorld} {
		for i := 0; i < 6; i++ {
			w.CreateDynamicBodySphere(0.5, mgl32.Vec3{float32(i) * 0.6, 0, 0}, mgl32.QuatIdent(), 1)
		}
	}

	seqWorld.Step(1.0 / 60.0)
	parWorld.Step(1.0 / 60.0)

	assert.Equal(t, len(seqWorld.dynamicContacts), len(parWorld.dynamicContacts))
}

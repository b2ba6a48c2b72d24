package rigid3d

import (
	"math"

	"github.com/duskforge/rigid3d/rmath"
	"github.com/go-gl/mathgl/mgl32"
)

// bodyCommon holds the fields shared by every body kind, mirroring the
// "RigidBody (shared)" row of the data model: position/rotation, the
// inline collider, material terms, and the bounds caches broadphase
// queries rely on being fresh immediately before any query.
type bodyCommon struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Collider Collider

	Restitution float32
	Friction    float32
	TriggerOnly bool

	cachedAabb         rmath.Aabb
	cachedSphereCenter mgl32.Vec3
	cachedSphereRadius float32
}

func newBodyCommon(pos mgl32.Vec3, rot mgl32.Quat, c Collider) bodyCommon {
	b := bodyCommon{Position: pos, Rotation: rot, Collider: c}
	b.refreshCachedBounds()
	return b
}

// refreshCachedBounds recomputes cachedAabb/cachedSphere* from the
// current Position/Rotation/Collider. Must be called after every
// position or rotation change and before any broadphase query consults
// the cache (invariant: cached bounds are consistent with the body's
// transform immediately before a query).
func (b *bodyCommon) refreshCachedBounds() {
	b.cachedAabb = b.Collider.Aabb(b.Position, b.Rotation)
	b.cachedSphereCenter = b.Position
	b.cachedSphereRadius = b.Collider.BoundingSphereRadius()
}

// Aabb returns the body's cached world-space bounding box.
func (b *bodyCommon) Aabb() rmath.Aabb { return b.cachedAabb }

// BoundingSphere returns the body's cached bounding-sphere center/radius.
func (b *bodyCommon) BoundingSphere() (mgl32.Vec3, float32) {
	return b.cachedSphereCenter, b.cachedSphereRadius
}

// StaticBody is an immovable collider. It participates in narrowphase
// and broadphase but never integrates and never appears as body B of a
// DynamicContact (data-model invariant).
type StaticBody struct {
	bodyCommon
}

// TriggerBody detects overlaps but never resolves impulses.
type TriggerBody struct {
	bodyCommon
}

// DynamicBody adds mass, inertia, motion state, and sleep/kill tracking
// on top of the shared body fields.
type DynamicBody struct {
	bodyCommon

	Mass       float32
	InvMass    float32
	InvInertia mgl32.Vec3 // diagonal inverse inertia tensor, local space

	Velocity        mgl32.Vec3
	AngularVelocity mgl32.Vec3
	Force           mgl32.Vec3
	Torque          mgl32.Vec3
	LinearDamping   float32
	AngularDamping  float32
	EnableRotation  bool
	GravityScale    float32

	SleepTimer float32
	IsSleeping bool
	IsKilled   bool
}

func newDynamicBody(pos mgl32.Vec3, rot mgl32.Quat, c Collider, mass float32) *DynamicBody {
	b := &DynamicBody{
		bodyCommon:     newBodyCommon(pos, rot, c),
		EnableRotation: true,
		GravityScale:   1,
	}
	b.SetMass(mass)
	return b
}

// wake clears the sleep timer and wakes the body. Called from every
// force/impulse-applying entry point and on any collision or CCD hit.
func (b *DynamicBody) wake() {
	b.IsSleeping = false
	b.SleepTimer = 0
}

// ApplyForce accumulates a force at the center of mass, applied over the
// next Integrate call. Wakes the body.
func (b *DynamicBody) ApplyForce(f mgl32.Vec3) {
	b.wake()
	b.Force = b.Force.Add(f)
}

// ApplyTorque accumulates a torque, applied over the next Integrate call.
// Wakes the body.
func (b *DynamicBody) ApplyTorque(t mgl32.Vec3) {
	b.wake()
	b.Torque = b.Torque.Add(t)
}

// ApplyImpulse directly adjusts linear velocity by impulse*invMass.
// Wakes the body.
func (b *DynamicBody) ApplyImpulse(impulse mgl32.Vec3) {
	b.wake()
	b.Velocity = b.Velocity.Add(impulse.Mul(b.InvMass))
}

// ApplyForceAtPoint adds a force at a world-space point, splitting it
// into a linear force plus the torque it induces about the center of
// mass.
func (b *DynamicBody) ApplyForceAtPoint(f mgl32.Vec3, point mgl32.Vec3) {
	b.wake()
	b.Force = b.Force.Add(f)
	r := point.Sub(b.Position)
	b.Torque = b.Torque.Add(r.Cross(f))
}

// ApplyImpulseAtPoint applies impulse j at world-space point p, adding
// r x j (scaled by inverse inertia) to angular velocity, with r = p -
// position. Wakes the body.
func (b *DynamicBody) ApplyImpulseAtPoint(impulse mgl32.Vec3, point mgl32.Vec3) {
	b.wake()
	b.Velocity = b.Velocity.Add(impulse.Mul(b.InvMass))
	if !b.EnableRotation {
		return
	}
	r := point.Sub(b.Position)
	angularImpulse := r.Cross(impulse)
	b.AngularVelocity = b.AngularVelocity.Add(mgl32.Vec3{
		angularImpulse.X() * b.InvInertia.X(),
		angularImpulse.Y() * b.InvInertia.Y(),
		angularImpulse.Z() * b.InvInertia.Z(),
	})
}

// SetMass updates inverse mass and rescales the inverse inertia tensor
// by old_mass/new_mass so the shape's inertia stays consistent with the
// new mass. A mass of zero or less pins the body as immovable (inv_mass
// 0 and zero inverse inertia); callers wanting a true static body should
// use the static pool instead.
func (b *DynamicBody) SetMass(mass float32) {
	oldMass := b.Mass
	if mass <= 0 {
		b.Mass = 0
		b.InvMass = 0
		b.InvInertia = mgl32.Vec3{}
		return
	}
	if oldMass > 0 {
		ratio := oldMass / mass
		b.InvInertia = b.InvInertia.Mul(ratio)
	}
	b.Mass = mass
	b.InvMass = 1.0 / mass
	if oldMass <= 0 {
		b.setShapeInertia()
	}
}

// setShapeInertia dispatches to the per-shape inertia setter matching
// the body's current collider kind.
func (b *DynamicBody) setShapeInertia() {
	switch b.Collider.Kind {
	case ColliderSphere:
		b.SetSphereInertia()
	case ColliderBox:
		b.SetBoxInertia()
	case ColliderCylinder, ColliderFan:
		b.SetCylinderInertia()
	}
}

// SetSphereInertia sets the diagonal inverse inertia tensor for a solid
// sphere of the body's current mass and collider radius: I = 2/5 m r^2
// on every axis.
func (b *DynamicBody) SetSphereInertia() {
	r := b.Collider.Radius
	i := 0.4 * b.Mass * r * r
	b.InvInertia = invDiagonal(mgl32.Vec3{i, i, i})
}

// SetBoxInertia sets the diagonal inverse inertia tensor for a solid box
// of the body's current mass and collider half-extents.
func (b *DynamicBody) SetBoxInertia() {
	w, h, d := b.Collider.HalfExtents.X()*2, b.Collider.HalfExtents.Y()*2, b.Collider.HalfExtents.Z()*2
	m := b.Mass
	ix := (1.0 / 12.0) * m * (h*h + d*d)
	iy := (1.0 / 12.0) * m * (w*w + d*d)
	iz := (1.0 / 12.0) * m * (w*w + h*h)
	b.InvInertia = invDiagonal(mgl32.Vec3{ix, iy, iz})
}

// SetCylinderInertia sets the diagonal inverse inertia tensor for a
// solid cylinder of the body's current mass, radius and height, axis
// along local Y: Iy = 1/2 m r^2, Ix = Iz = 1/12 m (3r^2 + h^2).
func (b *DynamicBody) SetCylinderInertia() {
	m, r, h := b.Mass, b.Collider.Radius, b.Collider.Height
	iy := 0.5 * m * r * r
	ix := (1.0 / 12.0) * m * (3*r*r + h*h)
	b.InvInertia = invDiagonal(mgl32.Vec3{ix, iy, ix})
}

func invDiagonal(i mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{invOrZero(i.X()), invOrZero(i.Y()), invOrZero(i.Z())}
}

func invOrZero(v float32) float32 {
	if v <= 1e-12 {
		return 0
	}
	return 1.0 / v
}

// integrate performs the velocity half of the step: accumulates forces
// into velocities, applies exponential damping, and clears accumulators.
// For sleeping, killed, or trigger-only bodies it only clears the
// accumulators and leaves velocities untouched (trigger bodies never
// carry mass but the guard is defensive).
func (b *DynamicBody) integrate(dt float32) {
	if b.IsSleeping || b.IsKilled || b.TriggerOnly {
		b.Force = mgl32.Vec3{}
		b.Torque = mgl32.Vec3{}
		return
	}
	b.Velocity = b.Velocity.Add(b.Force.Mul(b.InvMass * dt))
	if b.EnableRotation {
		angularAccel := mgl32.Vec3{
			b.Torque.X() * b.InvInertia.X(),
			b.Torque.Y() * b.InvInertia.Y(),
			b.Torque.Z() * b.InvInertia.Z(),
		}
		b.AngularVelocity = b.AngularVelocity.Add(angularAccel.Mul(dt))
	}
	// Exponential decay rather than a linear per-step scale, so damping
	// stays frame-rate independent across varying dt.
	b.Velocity = b.Velocity.Mul(float32(math.Pow(float64(1.0-b.LinearDamping), float64(dt))))
	b.AngularVelocity = b.AngularVelocity.Mul(float32(math.Pow(float64(1.0-b.AngularDamping), float64(dt))))

	b.Force = mgl32.Vec3{}
	b.Torque = mgl32.Vec3{}
}

// integratePosition performs the position half of a substep: p += v*dt,
// and if rotation is enabled and angular speed is non-negligible,
// integrates the orientation quaternion via q <- normalize(q + 0.5*dt*
// omega_hat*q) where omega_hat is the pure quaternion (0, omega).
func (b *DynamicBody) integratePosition(dt float32) {
	if b.IsSleeping || b.IsKilled {
		return
	}
	b.Position = b.Position.Add(b.Velocity.Mul(dt))

	if b.EnableRotation && b.AngularVelocity.LenSqr() >= 1e-12 {
		omega := mgl32.Quat{W: 0, V: b.AngularVelocity}
		delta := omega.Mul(b.Rotation)
		delta = mgl32.Quat{
			W: delta.W * 0.5 * dt,
			V: delta.V.Mul(0.5 * dt),
		}
		b.Rotation = mgl32.Quat{
			W: b.Rotation.W + delta.W,
			V: b.Rotation.V.Add(delta.V),
		}.Normalize()
	}
	b.refreshCachedBounds()
}

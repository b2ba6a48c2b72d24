package rigid3d

import (
	"github.com/duskforge/rigid3d/bvh"
	"github.com/duskforge/rigid3d/pool"
	"github.com/duskforge/rigid3d/rmath"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type dynEntry struct {
	Handle DynamicHandle
	bounds rmath.Aabb
}

func (e dynEntry) Bounds() rmath.Aabb { return e.bounds }

type staticEntry struct {
	Handle StaticHandle
	bounds rmath.Aabb
}

func (e staticEntry) Bounds() rmath.Aabb { return e.bounds }

type cachedImpulse struct {
	normal  float32
	tangent [2]float32
}

// TriggerOverlap is one dynamic-body/trigger overlap surviving a step's
// trigger pass.
type TriggerOverlap struct {
	Trigger TriggerHandle
	Body    DynamicHandle
}

// TriggerStaticOverlap is one static-body/trigger overlap.
type TriggerStaticOverlap struct {
	Trigger TriggerHandle
	Body    StaticHandle
}

// World owns every pool, BVH, contact array, and the worker pool for one
// simulation instance. Methods assume a single-writer caller; Step and
// body mutation are not safe to call concurrently on the same World.
type World struct {
	config Config

	// InstanceID is a debug-only identifier for distinguishing worlds in
	// logs; it plays no role in any handle or lookup (handles use
	// integer generation tags, never UUIDs, per the pool design).
	InstanceID uuid.UUID

	dynamicBodies *pool.Pool[DynamicBody]
	staticBodies  *pool.Pool[StaticBody]
	triggerBodies *pool.Pool[TriggerBody]

	dynamicBVH *bvh.BVH[dynEntry]
	staticBVH  *bvh.BVH[staticEntry]

	dynamicContacts []DynamicContact
	staticContacts  []StaticContact

	prevDynamicContacts map[pairKey]cachedImpulse
	prevStaticContacts  map[pairKey]cachedImpulse

	killedBodyCount int
	dynamicBVHDirty bool
	staticBVHDirty  bool

	TriggerOverlaps       []TriggerOverlap
	TriggerStaticOverlaps []TriggerStaticOverlap

	workers *workerPool
}

// NewWorld constructs a World ready for body creation and Step calls.
func NewWorld(cfg Config) *World {
	if cfg.Logger == nil {
		cfg.Logger = NewNopLogger()
	}
	w := &World{
		config:              cfg,
		InstanceID:          uuid.New(),
		dynamicBodies:       pool.NewPool[DynamicBody](256),
		staticBodies:        pool.NewPool[StaticBody](64),
		triggerBodies:       pool.NewPool[TriggerBody](32),
		dynamicBVH:          bvh.Build[dynEntry](nil, 4),
		staticBVH:           bvh.Build[staticEntry](nil, 4),
		prevDynamicContacts: make(map[pairKey]cachedImpulse),
		prevStaticContacts:  make(map[pairKey]cachedImpulse),
	}
	if cfg.EnableParallel {
		threads := cfg.ThreadCount
		if threads <= 0 {
			threads = 12
		}
		w.workers = newWorkerPool(threads)
	}
	return w
}

// Destroy tears down the worker pool, per `destroy(world)`.
func (w *World) Destroy() {
	if w.workers != nil {
		w.workers.stop()
	}
}

// CreateDynamicBody allocates a dynamic body with the given collider,
// transform, and mass.
func (w *World) CreateDynamicBody(c Collider, position mgl32.Vec3, rotation mgl32.Quat, mass float32) (DynamicHandle, bool) {
	h, slot := w.dynamicBodies.Alloc()
	*slot = *newDynamicBody(position, rotation, c, mass)
	w.dynamicBVHDirty = true
	return DynamicHandle(h), true
}

// CreateDynamicBodySphere is a convenience wrapper over CreateDynamicBody
// for the common sphere case.
func (w *World) CreateDynamicBodySphere(radius float32, position mgl32.Vec3, rotation mgl32.Quat, mass float32) DynamicHandle {
	h, _ := w.CreateDynamicBody(NewSphereCollider(radius), position, rotation, mass)
	return h
}

// CreateDynamicBodyBox is a convenience wrapper over CreateDynamicBody
// for the common box case.
func (w *World) CreateDynamicBodyBox(halfExtents mgl32.Vec3, position mgl32.Vec3, rotation mgl32.Quat, mass float32) DynamicHandle {
	h, _ := w.CreateDynamicBody(NewBoxCollider(halfExtents), position, rotation, mass)
	return h
}

// CreateDynamicBodyCylinder is a convenience wrapper over
// CreateDynamicBody for the common cylinder case.
func (w *World) CreateDynamicBodyCylinder(radius, height float32, position mgl32.Vec3, rotation mgl32.Quat, mass float32) DynamicHandle {
	h, _ := w.CreateDynamicBody(NewCylinderCollider(radius, height), position, rotation, mass)
	return h
}

// CreateStaticBody allocates an immovable body.
func (w *World) CreateStaticBody(c Collider, position mgl32.Vec3, rotation mgl32.Quat) (StaticHandle, bool) {
	h, slot := w.staticBodies.Alloc()
	*slot = StaticBody{bodyCommon: newBodyCommon(position, rotation, c)}
	w.staticBVHDirty = true
	return StaticHandle(h), true
}

// CreateTriggerBody allocates a trigger-only body.
func (w *World) CreateTriggerBody(c Collider, position mgl32.Vec3, rotation mgl32.Quat) (TriggerHandle, bool) {
	h, slot := w.triggerBodies.Alloc()
	body := newBodyCommon(position, rotation, c)
	body.TriggerOnly = true
	*slot = TriggerBody{bodyCommon: body}
	return TriggerHandle(h), true
}

// CreateTriggerBodyFan is a convenience wrapper over CreateTriggerBody
// for the fan-wedge shape fans are designed for (fans never generate
// contacts, so only a trigger pool use makes sense for them).
func (w *World) CreateTriggerBodyFan(radius, height, angle float32, position mgl32.Vec3, rotation mgl32.Quat) TriggerHandle {
	h, _ := w.CreateTriggerBody(NewFanCollider(radius, height, angle), position, rotation)
	return h
}

// CreateStaticBodyBox is a convenience wrapper over CreateStaticBody.
func (w *World) CreateStaticBodyBox(halfExtents mgl32.Vec3, position mgl32.Vec3, rotation mgl32.Quat) StaticHandle {
	h, _ := w.CreateStaticBody(NewBoxCollider(halfExtents), position, rotation)
	return h
}

// DestroyDynamicBody marks a dynamic body killed; the actual slot
// reclaim is deferred to the next BVH rebuild. Destroying a static or
// trigger body frees its slot immediately since neither is indexed by
// a tree that needs rebuilding in lockstep.
func (w *World) DestroyDynamicBody(h DynamicHandle) {
	if b, ok := w.dynamicBodies.Get(pool.Handle(h)); ok {
		b.IsKilled = true
		w.killedBodyCount++
	}
}

func (w *World) DestroyStaticBody(h StaticHandle) {
	w.staticBodies.Free(pool.Handle(h))
	w.staticBVHDirty = true
}

func (w *World) DestroyTriggerBody(h TriggerHandle) {
	w.triggerBodies.Free(pool.Handle(h))
}

// GetDynamicBody returns a mutable pointer to the body, or (nil, false)
// on a stale or out-of-range handle.
func (w *World) GetDynamicBody(h DynamicHandle) (*DynamicBody, bool) {
	return w.dynamicBodies.Get(pool.Handle(h))
}

func (w *World) GetStaticBody(h StaticHandle) (*StaticBody, bool) {
	return w.staticBodies.Get(pool.Handle(h))
}

func (w *World) GetTriggerBody(h TriggerHandle) (*TriggerBody, bool) {
	return w.triggerBodies.Get(pool.Handle(h))
}

// SetTriggerTransform moves a trigger body and refreshes its cached
// bounds.
func (w *World) SetTriggerTransform(h TriggerHandle, position mgl32.Vec3, rotation mgl32.Quat) bool {
	t, ok := w.triggerBodies.Get(pool.Handle(h))
	if !ok {
		return false
	}
	t.Position = position
	t.Rotation = rotation
	t.refreshCachedBounds()
	return true
}

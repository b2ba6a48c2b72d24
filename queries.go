package rigid3d

import (
	"github.com/duskforge/rigid3d/pool"
	"github.com/duskforge/rigid3d/rmath"
	"github.com/go-gl/mathgl/mgl32"
)

// RaycastHit is one exact ray/dynamic-body intersection.
type RaycastHit struct {
	Body     DynamicHandle
	Distance float32
	Point    mgl32.Vec3
}

// RaycastStaticHit is one exact ray/static-body intersection.
type RaycastStaticHit struct {
	Body     StaticHandle
	Distance float32
	Point    mgl32.Vec3
}

// Raycast returns every dynamic and static body the ray crosses within
// maxDist, sorted by neither (caller filters/sorts as needed); an empty
// result on a total miss, never an error, per the query surface's
// failure convention.
func (w *World) Raycast(origin, dir mgl32.Vec3, maxDist float32) ([]RaycastHit, []RaycastStaticHit) {
	w.syncBVHsForQuery()
	ray := rmath.Ray{Origin: origin, Dir: dir}

	var dynOut []RaycastHit
	dynCandidates := w.dynamicBVH.QueryRayFast(ray, maxDist, nil)
	for _, cand := range dynCandidates {
		b, ok := w.dynamicBodies.Get(pool.Handle(cand.Primitive.Handle))
		if !ok || b.IsKilled {
			continue
		}
		if t, hit := rayCollider(ray, b.Collider, b.Position, b.Rotation); hit && t <= maxDist {
			dynOut = append(dynOut, RaycastHit{Body: cand.Primitive.Handle, Distance: t, Point: ray.At(t)})
		}
	}

	var staticOut []RaycastStaticHit
	staticCandidates := w.staticBVH.QueryRayFast(ray, maxDist, nil)
	for _, cand := range staticCandidates {
		b, ok := w.staticBodies.Get(pool.Handle(cand.Primitive.Handle))
		if !ok {
			continue
		}
		if t, hit := rayCollider(ray, b.Collider, b.Position, b.Rotation); hit && t <= maxDist {
			staticOut = append(staticOut, RaycastStaticHit{Body: cand.Primitive.Handle, Distance: t, Point: ray.At(t)})
		}
	}
	return dynOut, staticOut
}

// RaycastSingle returns only the closest hit across both pools, ok=false
// on a total miss.
func (w *World) RaycastSingle(origin, dir mgl32.Vec3, maxDist float32) (hit RaycastHit, isStatic bool, staticHit RaycastStaticHit, ok bool) {
	dynHits, staticHits := w.Raycast(origin, dir, maxDist)
	best := maxDist
	for _, h := range dynHits {
		if h.Distance < best {
			best = h.Distance
			hit = h
			ok = true
			isStatic = false
		}
	}
	for _, h := range staticHits {
		if h.Distance < best {
			best = h.Distance
			staticHit = h
			ok = true
			isStatic = true
		}
	}
	return hit, isStatic, staticHit, ok
}

// RaycastTrigger returns every trigger body the ray crosses within
// maxDist, testing the ray against each trigger's cached bounding
// sphere rather than its exact shape, so the result is conservative for
// boxes, cylinders and fans alike.
func (w *World) RaycastTrigger(origin, dir mgl32.Vec3, maxDist float32) []TriggerHandle {
	ray := rmath.Ray{Origin: origin, Dir: dir.Normalize()}
	var out []TriggerHandle
	w.triggerBodies.Each(func(e pool.Entry[TriggerBody]) {
		if !e.Active {
			return
		}
		center, radius := e.Item.BoundingSphere()
		if t, hit := raySphereTest(ray, center, radius); hit && t <= maxDist {
			out = append(out, TriggerHandle{Index: e.Index, Generation: e.Generation})
		}
	})
	return out
}

// QuerySphere returns every dynamic and static body whose collider
// overlaps the given world-space sphere.
func (w *World) QuerySphere(center mgl32.Vec3, radius float32) ([]DynamicHandle, []StaticHandle) {
	w.syncBVHsForQuery()
	bounds := rmath.SphereAabb(center, radius)
	probe := NewSphereCollider(radius)

	var dynOut []DynamicHandle
	for _, cand := range w.dynamicBVH.QueryAABBFast(bounds, nil) {
		b, ok := w.dynamicBodies.Get(pool.Handle(cand.Handle))
		if !ok || b.IsKilled {
			continue
		}
		if testColliders(probe, center, mgl32.QuatIdent(), b.Collider, b.Position, b.Rotation).Hit {
			dynOut = append(dynOut, cand.Handle)
		}
	}

	var staticOut []StaticHandle
	for _, cand := range w.staticBVH.QueryAABBFast(bounds, nil) {
		b, ok := w.staticBodies.Get(pool.Handle(cand.Handle))
		if !ok {
			continue
		}
		if testColliders(probe, center, mgl32.QuatIdent(), b.Collider, b.Position, b.Rotation).Hit {
			staticOut = append(staticOut, cand.Handle)
		}
	}
	return dynOut, staticOut
}

// QueryBox returns every dynamic and static body whose collider overlaps
// the given world-space oriented box.
func (w *World) QueryBox(center mgl32.Vec3, halfExtents mgl32.Vec3, rotation mgl32.Quat) ([]DynamicHandle, []StaticHandle) {
	w.syncBVHsForQuery()
	probe := NewBoxCollider(halfExtents)
	bounds := probe.Aabb(center, rotation)

	var dynOut []DynamicHandle
	for _, cand := range w.dynamicBVH.QueryAABBFast(bounds, nil) {
		b, ok := w.dynamicBodies.Get(pool.Handle(cand.Handle))
		if !ok || b.IsKilled {
			continue
		}
		if testColliders(probe, center, rotation, b.Collider, b.Position, b.Rotation).Hit {
			dynOut = append(dynOut, cand.Handle)
		}
	}

	var staticOut []StaticHandle
	for _, cand := range w.staticBVH.QueryAABBFast(bounds, nil) {
		b, ok := w.staticBodies.Get(pool.Handle(cand.Handle))
		if !ok {
			continue
		}
		if testColliders(probe, center, rotation, b.Collider, b.Position, b.Rotation).Hit {
			staticOut = append(staticOut, cand.Handle)
		}
	}
	return dynOut, staticOut
}

// QueryTrigger returns every dynamic body currently overlapping the
// given trigger, re-deriving the result rather than reading
// World.TriggerOverlaps so it stays correct between Step calls.
func (w *World) QueryTrigger(h TriggerHandle) []DynamicHandle {
	trig, ok := w.triggerBodies.Get(pool.Handle(h))
	if !ok {
		return nil
	}
	var out []DynamicHandle
	w.dynamicBodies.Each(func(e pool.Entry[DynamicBody]) {
		if !e.Active || e.Item.IsKilled {
			return
		}
		if !trig.Aabb().Intersects(e.Item.Aabb()) {
			return
		}
		if _, hit := gjkIntersect(trig.Collider, trig.Position, trig.Rotation, e.Item.Collider, e.Item.Position, e.Item.Rotation); hit {
			out = append(out, DynamicHandle{Index: e.Index, Generation: e.Generation})
		}
	})
	return out
}

// QueryTriggerStatic returns every static body currently overlapping the
// given trigger.
func (w *World) QueryTriggerStatic(h TriggerHandle) []StaticHandle {
	trig, ok := w.triggerBodies.Get(pool.Handle(h))
	if !ok {
		return nil
	}
	var out []StaticHandle
	w.staticBodies.Each(func(e pool.Entry[StaticBody]) {
		if !e.Active {
			return
		}
		if !trig.Aabb().Intersects(e.Item.Aabb()) {
			return
		}
		if _, hit := gjkIntersect(trig.Collider, trig.Position, trig.Rotation, e.Item.Collider, e.Item.Position, e.Item.Rotation); hit {
			out = append(out, StaticHandle{Index: e.Index, Generation: e.Generation})
		}
	})
	return out
}

// QueryTriggersInSphere returns every trigger body whose bounding sphere
// overlaps the given world-space sphere, a coarse query for gameplay
// code that only needs "triggers near here" rather than an exact test.
func (w *World) QueryTriggersInSphere(center mgl32.Vec3, radius float32) []TriggerHandle {
	var out []TriggerHandle
	w.triggerBodies.Each(func(e pool.Entry[TriggerBody]) {
		if !e.Active {
			return
		}
		c, r := e.Item.BoundingSphere()
		if c.Sub(center).Len() <= r+radius {
			out = append(out, TriggerHandle{Index: e.Index, Generation: e.Generation})
		}
	})
	return out
}

func raySphereTest(ray rmath.Ray, center mgl32.Vec3, radius float32) (float32, bool) {
	dir := ray.Dir.Normalize()
	oc := ray.Origin.Sub(center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := sqrt32(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

func rayBoxTest(ray rmath.Ray, center mgl32.Vec3, rotation mgl32.Quat, halfExtents mgl32.Vec3) (float32, bool) {
	localOrigin := rotation.Conjugate().Rotate(ray.Origin.Sub(center))
	localDir := rotation.Conjugate().Rotate(ray.Dir.Normalize())
	localRay := rmath.Ray{Origin: localOrigin, Dir: localDir}
	box := rmath.Aabb{Min: halfExtents.Mul(-1), Max: halfExtents}
	t, _, hit := localRay.IntersectAabb(box, float32(1e9))
	return t, hit
}

// rayCollider dispatches an exact ray test to the collider's shape,
// falling back to the bounding-sphere approximation for cylinders and
// fans (no closed-form ray/cylinder test is implemented).
func rayCollider(ray rmath.Ray, c Collider, pos mgl32.Vec3, rot mgl32.Quat) (float32, bool) {
	switch c.Kind {
	case ColliderSphere:
		return raySphereTest(ray, pos, c.Radius)
	case ColliderBox:
		return rayBoxTest(ray, pos, rot, c.HalfExtents)
	default:
		return raySphereTest(ray, pos, c.BoundingSphereRadius())
	}
}

package rigid3d

import (
	"sync"

	"github.com/duskforge/rigid3d/bvh"
	"github.com/duskforge/rigid3d/pool"
	"github.com/go-gl/mathgl/mgl32"
)

// Step advances the world by dt seconds: sleep bookkeeping, force
// application, velocity integration, a CCD pre-pass, then NumSubsteps
// iterations of {refit, broadphase, narrowphase, prepare, warmstart (on
// the first substep only), biased solve, bias-free stabilization,
// position integration}, followed by trigger detection and the kill
// pass. This is the single place per-frame work happens; callers drive
// it explicitly rather than a background ticker owning the clock.
func (w *World) Step(dt float32) {
	if dt <= 0 {
		return
	}

	w.rebuildStaticBVHIfNeeded()

	w.updateSleep(dt)
	w.applyForces()
	w.integrateVelocities(dt)
	clamps := w.ccdPass(dt)

	w.rebuildDynamicBVHIfNeeded()

	substeps := w.config.NumSubsteps
	if substeps < 1 {
		substeps = 1
	}
	substepDt := dt / float32(substeps)

	for substep := 0; substep < substeps; substep++ {
		w.refreshDynamicBVH()
		w.detectContacts()
		w.wakeContactBodies()
		w.prepareContacts(substepDt)
		if substep == 0 {
			w.warmstartContacts()
		}
		for i := 0; i < w.config.ConstraintSolverIters; i++ {
			w.resolveContacts(true)
		}
		for i := 0; i < w.config.StabilizationIters; i++ {
			w.resolveContacts(false)
		}
		w.integratePositions(substepDt, clamps)
	}

	w.cacheImpulses()
	w.detectTriggerOverlaps()
	w.killPass()

	w.config.Logger.Debugf(
		"world=%s step dt=%.4f dynamic=%d static=%d contacts=%d/%d killed=%d",
		w.InstanceID, dt, w.dynamicBodies.Active(), w.staticBodies.Active(),
		len(w.dynamicContacts), len(w.staticContacts), w.killedBodyCount,
	)
}

func (w *World) updateSleep(dt float32) {
	w.dynamicBodies.Each(func(e pool.Entry[DynamicBody]) {
		if !e.Active || e.Item.IsKilled {
			return
		}
		b := e.Item
		if b.Velocity.Len() < w.config.SleepLinearThreshold && b.AngularVelocity.Len() < w.config.SleepAngularThreshold {
			b.SleepTimer += dt
			if b.SleepTimer >= w.config.SleepTimeThreshold {
				b.IsSleeping = true
				b.Velocity = mgl32.Vec3{}
				b.AngularVelocity = mgl32.Vec3{}
			}
		} else {
			b.SleepTimer = 0
			b.IsSleeping = false
		}
	})
}

// applyForces adds gravity and, when enabled, a quadratic air-drag force
// (0.5 * rho * v^2 * Cd * crossSectionalArea, opposing velocity) to every
// active body's force accumulator, ahead of DynamicBody.integrate.
func (w *World) applyForces() {
	const dragCoefficient = 0.47 // sphere-ish Cd, used for every collider shape alike
	w.dynamicBodies.Each(func(e pool.Entry[DynamicBody]) {
		if !e.Active || e.Item.IsKilled || e.Item.IsSleeping {
			return
		}
		b := e.Item
		b.Force = b.Force.Add(w.config.Gravity.Mul(b.Mass * b.GravityScale))
		if !w.config.EnableAirResistance {
			return
		}
		speed := b.Velocity.Len()
		if speed < 1e-6 {
			return
		}
		dragMag := 0.5 * w.config.AirDensity * speed * speed * dragCoefficient * b.Collider.CrossSectionalArea
		b.Force = b.Force.Add(b.Velocity.Normalize().Mul(-dragMag))
	})
}

func (w *World) integrateVelocities(dt float32) {
	w.dynamicBodies.Each(func(e pool.Entry[DynamicBody]) {
		if e.Active {
			e.Item.integrate(dt)
		}
	})
}

func (w *World) integratePositions(dt float32, clamps map[uint32]float32) {
	w.dynamicBodies.Each(func(e pool.Entry[DynamicBody]) {
		if !e.Active {
			return
		}
		scale := float32(1.0)
		if s, ok := clamps[e.Index]; ok {
			scale = s
		}
		e.Item.integratePosition(dt * scale)
	})
}

type ccdCandidate struct {
	index uint32
	body  *DynamicBody
}

func (w *World) collectCCDCandidates() []ccdCandidate {
	out := make([]ccdCandidate, 0, w.dynamicBodies.Active())
	w.dynamicBodies.Each(func(e pool.Entry[DynamicBody]) {
		if !e.Active || e.Item.IsKilled || e.Item.IsSleeping {
			return
		}
		out = append(out, ccdCandidate{index: e.Index, body: e.Item})
	})
	return out
}

// ccdPass sweeps every fast-moving dynamic body against the static BVH
// and returns a fraction-of-dt clamp for any body whose swept test finds
// an earlier time of impact, so the substep loop below advances it only
// as far as its first contact and lets the discrete solver take over
// from there. Dynamic-vs-dynamic CCD is not attempted (see DESIGN.md).
func (w *World) ccdPass(dt float32) map[uint32]float32 {
	candidates := w.collectCCDCandidates()
	clamps := make([]float32, len(candidates))
	for i := range clamps {
		clamps[i] = 1
	}

	process := func(start, end int) {
		for i := start; i < end; i++ {
			cand := candidates[i]
			b := cand.body
			displacement := b.Velocity.Mul(dt)
			if displacement.Len() < w.config.CCDThreshold*b.Collider.MinExtent() {
				continue
			}
			sweptBounds := b.Aabb().Union(b.Aabb().Translate(displacement))
			staticHits := w.staticBVH.QueryAABBFast(sweptBounds, nil)

			bestTOI := float32(1.0)
			hitAny := false
			for _, sc := range staticHits {
				sb, ok := w.staticBodies.Get(pool.Handle(sc.Handle))
				if !ok {
					continue
				}
				hit := sweptTest(b.Collider, b.Position, b.Rotation, displacement, sb.Collider, sb.Position, sb.Rotation)
				if hit.Hit && hit.TOI < bestTOI {
					bestTOI = hit.TOI
					hitAny = true
				}
			}
			if hitAny {
				// i belongs only to this call's [start,end) range, so
				// writing clamps[i] here never races a sibling chunk.
				clamps[i] = bestTOI
				b.wake()
			}
		}
	}

	if w.workers != nil {
		w.workers.parallelFor(len(candidates), 32, process)
	} else {
		process(0, len(candidates))
	}

	out := make(map[uint32]float32, len(candidates))
	for i, c := range candidates {
		if clamps[i] < 1 {
			out[c.index] = clamps[i]
		}
	}
	return out
}

// syncBVHsForQuery brings both trees up to date with current body
// transforms before a spatial query runs outside of Step, since queries
// can be called between steps against bodies created or moved since the
// last rebuild/refit.
func (w *World) syncBVHsForQuery() {
	w.rebuildStaticBVHIfNeeded()
	w.rebuildDynamicBVHIfNeeded()
	w.refreshDynamicBVH()
}

func (w *World) rebuildStaticBVHIfNeeded() {
	if !w.staticBVHDirty {
		return
	}
	entries := make([]staticEntry, 0, w.staticBodies.Active())
	w.staticBodies.Each(func(e pool.Entry[StaticBody]) {
		if !e.Active {
			return
		}
		entries = append(entries, staticEntry{
			Handle: StaticHandle{Index: e.Index, Generation: e.Generation},
			bounds: e.Item.Aabb(),
		})
	})
	w.staticBVH = bvh.Build[staticEntry](entries, 4)
	w.staticBVHDirty = false
}

func (w *World) collectLiveDynamic() []dynEntry {
	out := make([]dynEntry, 0, w.dynamicBodies.Active())
	w.dynamicBodies.Each(func(e pool.Entry[DynamicBody]) {
		if !e.Active || e.Item.IsKilled {
			return
		}
		out = append(out, dynEntry{
			Handle: DynamicHandle{Index: e.Index, Generation: e.Generation},
			bounds: e.Item.Aabb(),
		})
	})
	return out
}

// rebuildDynamicBVHIfNeeded frees and compacts killed slots and rebuilds
// the dynamic tree from scratch whenever a body was created since the
// last rebuild or the kill count (destroyed plus kill-plane bodies) has
// reached
// BVHRebuildThreshold; otherwise every substep's refreshDynamicBVH
// (cheap Refit) is enough.
func (w *World) rebuildDynamicBVHIfNeeded() {
	if !w.dynamicBVHDirty && w.killedBodyCount < w.config.BVHRebuildThreshold {
		return
	}
	var toFree []pool.Handle
	w.dynamicBodies.Each(func(e pool.Entry[DynamicBody]) {
		if e.Active && e.Item.IsKilled {
			toFree = append(toFree, pool.Handle{Index: e.Index, Generation: e.Generation})
		}
	})
	for _, h := range toFree {
		w.dynamicBodies.Free(h)
	}
	w.dynamicBodies.Compact()

	live := w.collectLiveDynamic()
	w.dynamicBVH = bvh.Build[dynEntry](live, 4)
	w.dynamicBVHDirty = false
	w.killedBodyCount = 0
}

// refreshDynamicBVH refreshes every indexed primitive's bounds from its
// live body (bodies may have moved or been killed since the last Refit)
// and refits the tree in place without reordering it.
func (w *World) refreshDynamicBVH() {
	prims := w.dynamicBVH.Primitives()
	for i, p := range prims {
		b, ok := w.dynamicBodies.Get(pool.Handle(p.Handle))
		if !ok {
			continue
		}
		w.dynamicBVH.UpdatePrimitive(i, dynEntry{Handle: p.Handle, bounds: b.Aabb()})
	}
	w.dynamicBVH.Refit()
}

func (w *World) detectContacts() {
	w.dynamicContacts = w.dynamicContacts[:0]
	w.staticContacts = w.staticContacts[:0]

	if w.config.BroadphaseTraversal == BroadphaseDoubleTraversal {
		w.detectContactsDoubleTraversal()
		return
	}
	if w.workers != nil {
		w.detectContactsParallel()
		return
	}
	w.detectContactsOne(0, len(w.dynamicBVH.Primitives()), &w.dynamicContacts, &w.staticContacts)
}

// detectContactsDoubleTraversal computes contacts with one tandem
// tree-vs-tree descent over the dynamic BVH (self-pairs) and one over
// the dynamic/static BVH pair (cross-pairs), instead of re-querying
// the opposing tree once per primitive. Sequential only: the pair list
// isn't produced in primitive-index order, so it doesn't chunk across
// the worker pool the way detectContactsOne's per-primitive loop does.
func (w *World) detectContactsDoubleTraversal() {
	prims := w.dynamicBVH.Primitives()
	staticPrims := w.staticBVH.Primitives()

	for _, pr := range w.dynamicBVH.SelfPairs(nil) {
		w.testDynamicPair(prims[pr[0]].Handle, prims[pr[1]].Handle, &w.dynamicContacts)
	}
	for _, pr := range bvh.CrossPairs(w.dynamicBVH, w.staticBVH, nil) {
		w.testDynamicStaticPair(prims[pr[0]].Handle, staticPrims[pr[1]].Handle, &w.staticContacts)
	}
}

// detectContactsOne runs broadphase+narrowphase for primitive indices
// [start,end) of the current dynamic BVH, appending hits to outDyn/
// outStatic. Shared by the sequential and parallel paths so both run the
// exact same per-primitive logic.
func (w *World) detectContactsOne(start, end int, outDyn *[]DynamicContact, outStatic *[]StaticContact) {
	prims := w.dynamicBVH.Primitives()
	var candidates []dynEntry
	var staticCandidates []staticEntry

	for idx := start; idx < end; idx++ {
		pi := prims[idx]

		candidates = w.dynamicBVH.QueryAABBFast(pi.bounds, candidates[:0])
		for _, c := range candidates {
			if c.Handle.Index <= pi.Handle.Index {
				continue // each unordered pair tested once, from its lower index
			}
			w.testDynamicPair(pi.Handle, c.Handle, outDyn)
		}

		staticCandidates = w.staticBVH.QueryAABBFast(pi.bounds, staticCandidates[:0])
		for _, sc := range staticCandidates {
			w.testDynamicStaticPair(pi.Handle, sc.Handle, outStatic)
		}
	}
}

// testDynamicPair runs the narrowphase test for one dynamic/dynamic
// candidate pair and appends a contact to outDyn on a hit. Shared by
// every broadphase traversal strategy so the candidate-pair source
// (per-primitive query or tandem tree traversal) can vary independently
// of the narrowphase logic.
func (w *World) testDynamicPair(ha, hb DynamicHandle, outDyn *[]DynamicContact) {
	bodyA, ok := w.dynamicBodies.Get(pool.Handle(ha))
	if !ok || bodyA.IsKilled {
		return
	}
	bodyB, ok := w.dynamicBodies.Get(pool.Handle(hb))
	if !ok || bodyB.IsKilled || (bodyA.IsSleeping && bodyB.IsSleeping) {
		return
	}
	m := testColliders(bodyA.Collider, bodyA.Position, bodyA.Rotation, bodyB.Collider, bodyB.Position, bodyB.Rotation)
	if !m.Hit {
		return
	}
	*outDyn = append(*outDyn, DynamicContact{
		BodyA: ha, BodyB: hb,
		Point: m.Point, Normal: m.Normal, Penetration: m.Penetration,
		Restitution: maxf(bodyA.Restitution, bodyB.Restitution),
		Friction:    (bodyA.Friction + bodyB.Friction) * 0.5,
	})
}

// testDynamicStaticPair runs the narrowphase test for one dynamic/static
// candidate pair and appends a contact to outStatic on a hit.
func (w *World) testDynamicStaticPair(ha DynamicHandle, hb StaticHandle, outStatic *[]StaticContact) {
	bodyA, ok := w.dynamicBodies.Get(pool.Handle(ha))
	if !ok || bodyA.IsKilled || bodyA.IsSleeping {
		return
	}
	staticBody, ok := w.staticBodies.Get(pool.Handle(hb))
	if !ok {
		return
	}
	m := testColliders(bodyA.Collider, bodyA.Position, bodyA.Rotation, staticBody.Collider, staticBody.Position, staticBody.Rotation)
	if !m.Hit {
		return
	}
	*outStatic = append(*outStatic, StaticContact{
		BodyA: ha, BodyB: hb,
		Point: m.Point, Normal: m.Normal, Penetration: m.Penetration,
		Restitution: maxf(bodyA.Restitution, staticBody.Restitution),
		Friction:    (bodyA.Friction + staticBody.Friction) * 0.5,
	})
}

// detectContactsParallel fans broadphase+narrowphase across the worker
// pool in batches of 256 primitives, each chunk accumulating into its
// own local slices and appending them to the world's contact slices
// under mu when the chunk finishes, so the shared slices are only
// touched while holding the lock.
func (w *World) detectContactsParallel() {
	var mu sync.Mutex
	total := len(w.dynamicBVH.Primitives())
	w.workers.parallelFor(total, 256, func(start, end int) {
		var localDyn []DynamicContact
		var localStatic []StaticContact
		w.detectContactsOne(start, end, &localDyn, &localStatic)

		mu.Lock()
		w.dynamicContacts = append(w.dynamicContacts, localDyn...)
		w.staticContacts = append(w.staticContacts, localStatic...)
		mu.Unlock()
	})
}

// wakeContactBodies wakes every body touched by this substep's contact
// list, matching the "any collision wakes its body" convention ported
// from RigidBodyComponent.Wake().
func (w *World) wakeContactBodies() {
	for i := range w.dynamicContacts {
		c := &w.dynamicContacts[i]
		if a, ok := w.dynamicBodies.Get(pool.Handle(c.BodyA)); ok {
			a.wake()
		}
		if b, ok := w.dynamicBodies.Get(pool.Handle(c.BodyB)); ok {
			b.wake()
		}
	}
	for i := range w.staticContacts {
		c := &w.staticContacts[i]
		if a, ok := w.dynamicBodies.Get(pool.Handle(c.BodyA)); ok {
			a.wake()
		}
	}
}

func (w *World) prepareContacts(dt float32) {
	for i := range w.dynamicContacts {
		c := &w.dynamicContacts[i]
		a, okA := w.dynamicBodies.Get(pool.Handle(c.BodyA))
		b, okB := w.dynamicBodies.Get(pool.Handle(c.BodyB))
		if !okA || !okB {
			continue
		}
		prepareDynamicContact(c, a, b, dt)
	}
	for i := range w.staticContacts {
		c := &w.staticContacts[i]
		a, ok := w.dynamicBodies.Get(pool.Handle(c.BodyA))
		if !ok {
			continue
		}
		prepareStaticContact(c, a, dt)
	}
}

// warmstartContacts applies WarmstartCoef-scaled cached impulses from the
// previous step's contact at the same canonical pair key, applied only
// once per Step (the caller only invokes this on the first substep).
func (w *World) warmstartContacts() {
	coef := w.config.WarmstartCoef
	for i := range w.dynamicContacts {
		c := &w.dynamicContacts[i]
		cached, ok := w.prevDynamicContacts[dynamicPairKey(c.BodyA.Index, c.BodyB.Index)]
		if !ok {
			continue
		}
		c.NormalImpulse = cached.normal * coef
		c.TangentImpulse[0] = cached.tangent[0] * coef
		c.TangentImpulse[1] = cached.tangent[1] * coef
		a, okA := w.dynamicBodies.Get(pool.Handle(c.BodyA))
		b, okB := w.dynamicBodies.Get(pool.Handle(c.BodyB))
		if okA && okB {
			warmstartDynamicContact(c, a, b)
		}
	}
	for i := range w.staticContacts {
		c := &w.staticContacts[i]
		cached, ok := w.prevStaticContacts[staticPairKey(c.BodyA.Index, c.BodyB.Index)]
		if !ok {
			continue
		}
		c.NormalImpulse = cached.normal * coef
		c.TangentImpulse[0] = cached.tangent[0] * coef
		c.TangentImpulse[1] = cached.tangent[1] * coef
		if a, ok := w.dynamicBodies.Get(pool.Handle(c.BodyA)); ok {
			warmstartStaticContact(c, a)
		}
	}
}

func (w *World) resolveContacts(withBias bool) {
	for i := range w.dynamicContacts {
		c := &w.dynamicContacts[i]
		a, okA := w.dynamicBodies.Get(pool.Handle(c.BodyA))
		b, okB := w.dynamicBodies.Get(pool.Handle(c.BodyB))
		if !okA || !okB {
			continue
		}
		resolveDynamicContact(c, a, b, withBias)
	}
	for i := range w.staticContacts {
		c := &w.staticContacts[i]
		if a, ok := w.dynamicBodies.Get(pool.Handle(c.BodyA)); ok {
			resolveStaticContact(c, a, withBias)
		}
	}
}

// cacheImpulses replaces the previous step's warmstart caches with this
// step's final impulses, keyed by canonical pair so next Step's
// warmstartContacts can find them again even if the pair's slice index
// shifted.
func (w *World) cacheImpulses() {
	for k := range w.prevDynamicContacts {
		delete(w.prevDynamicContacts, k)
	}
	for k := range w.prevStaticContacts {
		delete(w.prevStaticContacts, k)
	}
	for i := range w.dynamicContacts {
		c := &w.dynamicContacts[i]
		w.prevDynamicContacts[dynamicPairKey(c.BodyA.Index, c.BodyB.Index)] = cachedImpulse{
			normal: c.NormalImpulse, tangent: c.TangentImpulse,
		}
	}
	for i := range w.staticContacts {
		c := &w.staticContacts[i]
		w.prevStaticContacts[staticPairKey(c.BodyA.Index, c.BodyB.Index)] = cachedImpulse{
			normal: c.NormalImpulse, tangent: c.TangentImpulse,
		}
	}
}

// detectTriggerOverlaps tests every trigger body against every live
// dynamic and static body with plain GJK overlap (bypassing
// testColliders' fan short-circuit, since fan colliders are a trigger
// shape that still needs overlap detection), replacing TriggerOverlaps/
// TriggerStaticOverlaps with this step's results.
func (w *World) detectTriggerOverlaps() {
	w.TriggerOverlaps = w.TriggerOverlaps[:0]
	w.TriggerStaticOverlaps = w.TriggerStaticOverlaps[:0]

	w.triggerBodies.Each(func(te pool.Entry[TriggerBody]) {
		if !te.Active {
			return
		}
		trig := te.Item
		thandle := TriggerHandle{Index: te.Index, Generation: te.Generation}

		w.dynamicBodies.Each(func(de pool.Entry[DynamicBody]) {
			if !de.Active || de.Item.IsKilled {
				return
			}
			if !trig.Aabb().Intersects(de.Item.Aabb()) {
				return
			}
			if _, hit := gjkIntersect(trig.Collider, trig.Position, trig.Rotation, de.Item.Collider, de.Item.Position, de.Item.Rotation); hit {
				w.TriggerOverlaps = append(w.TriggerOverlaps, TriggerOverlap{
					Trigger: thandle,
					Body:    DynamicHandle{Index: de.Index, Generation: de.Generation},
				})
			}
		})

		w.staticBodies.Each(func(se pool.Entry[StaticBody]) {
			if !se.Active {
				return
			}
			if !trig.Aabb().Intersects(se.Item.Aabb()) {
				return
			}
			if _, hit := gjkIntersect(trig.Collider, trig.Position, trig.Rotation, se.Item.Collider, se.Item.Position, se.Item.Rotation); hit {
				w.TriggerStaticOverlaps = append(w.TriggerStaticOverlaps, TriggerStaticOverlap{
					Trigger: thandle,
					Body:    StaticHandle{Index: se.Index, Generation: se.Generation},
				})
			}
		})
	})
}

func (w *World) killPass() {
	w.dynamicBodies.Each(func(e pool.Entry[DynamicBody]) {
		if !e.Active || e.Item.IsKilled {
			return
		}
		if e.Item.Position.Y() < w.config.KillY {
			e.Item.IsKilled = true
			w.killedBodyCount++
		}
	})
}

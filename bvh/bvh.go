// Package bvh implements a binary bounding-volume hierarchy over an
// arbitrary primitive payload, supporting median-split construction,
// bottom-up refit, and iterative AABB/ray queries bounded by a
// fixed-size traversal stack.
package bvh

import "github.com/duskforge/rigid3d/rmath"

// Bounded is implemented by anything a BVH can index: it must be able to
// report its own current world-space bounds on demand, so Refit can
// recompute node bounds purely from already-updated primitives without
// the BVH knowing anything about the owning body.
type Bounded interface {
	Bounds() rmath.Aabb
}

type node struct {
	bounds     rmath.Aabb
	left       int32 // -1 for leaf
	right      int32
	primStart  int32
	primCount  int32
}

func (n *node) isLeaf() bool { return n.left < 0 }

// BVH is a binary tree of Aabb nodes over a reordered copy of the
// primitives given to Build. Leaf order is stable across Refit (which
// never reorders) but changes across Build/Rebuild.
type BVH[P Bounded] struct {
	nodes      []node
	primitives []P
	leafSize   int
}

// Build constructs a fresh tree via recursive median split on the
// largest-extent axis, stopping once a node holds leafSize or fewer
// primitives. An empty entries slice yields a BVH with a single empty
// leaf node so queries against it are well-defined (always empty).
func Build[P Bounded](entries []P, leafSize int) *BVH[P] {
	if leafSize < 1 {
		leafSize = 1
	}
	b := &BVH[P]{
		primitives: append([]P(nil), entries...),
		leafSize:   leafSize,
	}
	if len(b.primitives) == 0 {
		b.nodes = []node{{bounds: rmath.EmptyAabb(), left: -1, right: -1, primStart: 0, primCount: 0}}
		return b
	}
	b.nodes = make([]node, 0, 2*len(b.primitives))
	b.build(0, len(b.primitives))
	return b
}

// build recursively partitions primitives[lo:hi] in place (median split
// on the longest axis of the node's bounds) and appends nodes, mirroring
// TLASBuilder.recursiveBuild but working over a generic Bounded payload
// and stopping at leafSize instead of single-primitive leaves.
func (b *BVH[P]) build(lo, hi int) int32 {
	idx := int32(len(b.nodes))
	b.nodes = append(b.nodes, node{left: -1, right: -1})

	bounds := rmath.EmptyAabb()
	for i := lo; i < hi; i++ {
		bounds = bounds.Union(b.primitives[i].Bounds())
	}
	b.nodes[idx].bounds = bounds

	count := hi - lo
	if count <= b.leafSize {
		b.nodes[idx].primStart = int32(lo)
		b.nodes[idx].primCount = int32(count)
		return idx
	}

	extent := bounds.Max.Sub(bounds.Min)
	axis := 0
	if extent.Y() > extent[axis] {
		axis = 1
	}
	if extent.Z() > extent[axis] {
		axis = 2
	}

	sortByCentroidAxis(b.primitives[lo:hi], axis)
	mid := lo + count/2

	left := b.build(lo, mid)
	right := b.build(mid, hi)
	b.nodes[idx].left = left
	b.nodes[idx].right = right
	return idx
}

func sortByCentroidAxis[P Bounded](s []P, axis int) {
	// Insertion sort is adequate here: leaves are small (leafSize) and
	// this only runs during Build/Rebuild, never in the per-substep
	// Refit hot path.
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && centroidAxis(s[j-1], axis) > centroidAxis(s[j], axis); j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func centroidAxis[P Bounded](p P, axis int) float32 {
	c := p.Bounds().Center()
	return c[axis]
}

// Refit recomputes every node's bounds bottom-up from its primitives'
// current Bounds() without restructuring the tree. Safe to call every
// substep; cheap relative to Build/Rebuild since it never reorders.
func (b *BVH[P]) Refit() {
	if len(b.nodes) == 0 {
		return
	}
	b.refit(0)
}

func (b *BVH[P]) refit(i int32) rmath.Aabb {
	n := &b.nodes[i]
	if n.isLeaf() {
		bounds := rmath.EmptyAabb()
		for k := n.primStart; k < n.primStart+n.primCount; k++ {
			bounds = bounds.Union(b.primitives[k].Bounds())
		}
		n.bounds = bounds
		return bounds
	}
	left := b.refit(n.left)
	right := b.refit(n.right)
	n.bounds = left.Union(right)
	return n.bounds
}

// Primitives returns the BVH's internal, possibly-reordered primitive
// array. Index i here is the index UpdatePrimitive expects.
func (b *BVH[P]) Primitives() []P { return b.primitives }

// UpdatePrimitive replaces the primitive at internal index i. Callers
// refresh primitives' cached bounds this way before calling Refit.
func (b *BVH[P]) UpdatePrimitive(i int, p P) { b.primitives[i] = p }

// Len returns the number of primitives currently indexed.
func (b *BVH[P]) Len() int { return len(b.primitives) }

// maxStackDepth bounds the iterative traversal stack used by the query
// functions below. 64 entries comfortably covers any tree with up to
// 2^32 nodes (a perfectly balanced binary tree of that size has depth
// 32; 64 leaves headroom for the median-split tree's typical skew).
const maxStackDepth = 64

// QueryAABBFast appends every primitive whose current bounds intersect
// query to out and returns the extended slice, using an iterative
// traversal over a fixed-size stack (no recursion, no allocation beyond
// growing out).
func (b *BVH[P]) QueryAABBFast(query rmath.Aabb, out []P) []P {
	if len(b.nodes) == 0 {
		return out
	}
	var stack [maxStackDepth]int32
	sp := 0
	stack[sp] = 0
	sp++
	for sp > 0 {
		sp--
		n := &b.nodes[stack[sp]]
		if !n.bounds.Intersects(query) {
			continue
		}
		if n.isLeaf() {
			for k := n.primStart; k < n.primStart+n.primCount; k++ {
				if b.primitives[k].Bounds().Intersects(query) {
					out = append(out, b.primitives[k])
				}
			}
			continue
		}
		if sp < maxStackDepth {
			stack[sp] = n.left
			sp++
		}
		if sp < maxStackDepth {
			stack[sp] = n.right
			sp++
		}
	}
	return out
}

// SelfPairs appends every pair of distinct primitive indices (i, j with
// i < j) whose bounds overlap, found by a tandem traversal that walks
// the tree against itself rather than re-querying it once per
// primitive. This is the tree-vs-tree alternative to calling
// QueryAABBFast in a loop: one descent discovers every overlapping
// pair instead of len(primitives) separate descents.
func (b *BVH[P]) SelfPairs(out [][2]int) [][2]int {
	if len(b.nodes) == 0 {
		return out
	}
	return b.selfPairsNode(0, 0, out)
}

func (b *BVH[P]) selfPairsNode(i, j int32, out [][2]int) [][2]int {
	ni, nj := &b.nodes[i], &b.nodes[j]
	if !ni.bounds.Intersects(nj.bounds) {
		return out
	}
	if ni.isLeaf() && nj.isLeaf() {
		for pi := ni.primStart; pi < ni.primStart+ni.primCount; pi++ {
			for pj := nj.primStart; pj < nj.primStart+nj.primCount; pj++ {
				if pi >= pj {
					continue
				}
				if b.primitives[pi].Bounds().Intersects(b.primitives[pj].Bounds()) {
					out = append(out, [2]int{int(pi), int(pj)})
				}
			}
		}
		return out
	}
	if ni.isLeaf() {
		out = b.selfPairsNode(i, nj.left, out)
		out = b.selfPairsNode(i, nj.right, out)
		return out
	}
	if nj.isLeaf() {
		out = b.selfPairsNode(ni.left, j, out)
		out = b.selfPairsNode(ni.right, j, out)
		return out
	}
	if i == j {
		out = b.selfPairsNode(ni.left, ni.left, out)
		out = b.selfPairsNode(ni.left, ni.right, out)
		out = b.selfPairsNode(ni.right, ni.right, out)
		return out
	}
	out = b.selfPairsNode(ni.left, nj.left, out)
	out = b.selfPairsNode(ni.left, nj.right, out)
	out = b.selfPairsNode(ni.right, nj.left, out)
	out = b.selfPairsNode(ni.right, nj.right, out)
	return out
}

// CrossPairs appends every (index into a, index into b) pair of
// primitives whose bounds overlap, found by a tandem traversal of two
// independent trees. The two-tree counterpart to SelfPairs, used for
// the dynamic-vs-static half of the double-traversal broadphase
// strategy.
func CrossPairs[P Bounded, Q Bounded](a *BVH[P], b *BVH[Q], out [][2]int) [][2]int {
	if len(a.nodes) == 0 || len(b.nodes) == 0 {
		return out
	}
	return crossPairsNode(a, b, 0, 0, out)
}

func crossPairsNode[P Bounded, Q Bounded](a *BVH[P], b *BVH[Q], i, j int32, out [][2]int) [][2]int {
	ni, nj := &a.nodes[i], &b.nodes[j]
	if !ni.bounds.Intersects(nj.bounds) {
		return out
	}
	if ni.isLeaf() && nj.isLeaf() {
		for pi := ni.primStart; pi < ni.primStart+ni.primCount; pi++ {
			for pj := nj.primStart; pj < nj.primStart+nj.primCount; pj++ {
				if a.primitives[pi].Bounds().Intersects(b.primitives[pj].Bounds()) {
					out = append(out, [2]int{int(pi), int(pj)})
				}
			}
		}
		return out
	}
	if ni.isLeaf() {
		out = crossPairsNode(a, b, i, nj.left, out)
		out = crossPairsNode(a, b, i, nj.right, out)
		return out
	}
	if nj.isLeaf() {
		out = crossPairsNode(a, b, ni.left, j, out)
		out = crossPairsNode(a, b, ni.right, j, out)
		return out
	}
	out = crossPairsNode(a, b, ni.left, nj.left, out)
	out = crossPairsNode(a, b, ni.left, nj.right, out)
	out = crossPairsNode(a, b, ni.right, nj.left, out)
	out = crossPairsNode(a, b, ni.right, nj.right, out)
	return out
}

// RayHit is one leaf-primitive candidate surfaced by QueryRayFast; the
// caller's narrowphase is responsible for the exact hit test and exact
// distance (the BVH only guarantees a conservative superset).
type RayHit[P any] struct {
	Primitive P
	TNear     float32
}

// QueryRayFast performs the slab-method ray-AABB traversal against
// node bounds (rejecting tNear > maxDist or tFar < 0) and appends every
// candidate leaf primitive whose bounds the ray crosses.
func (b *BVH[P]) QueryRayFast(ray rmath.Ray, maxDist float32, out []RayHit[P]) []RayHit[P] {
	if len(b.nodes) == 0 {
		return out
	}
	var stack [maxStackDepth]int32
	sp := 0
	stack[sp] = 0
	sp++
	for sp > 0 {
		sp--
		n := &b.nodes[stack[sp]]
		tNear, _, hit := ray.IntersectAabb(n.bounds, maxDist)
		if !hit {
			continue
		}
		if n.isLeaf() {
			for k := n.primStart; k < n.primStart+n.primCount; k++ {
				pb := b.primitives[k].Bounds()
				pNear, _, phit := ray.IntersectAabb(pb, maxDist)
				if phit {
					out = append(out, RayHit[P]{Primitive: b.primitives[k], TNear: pNear})
				}
			}
			continue
		}
		_ = tNear
		if sp < maxStackDepth {
			stack[sp] = n.left
			sp++
		}
		if sp < maxStackDepth {
			stack[sp] = n.right
			sp++
		}
	}
	return out
}

// Package pool implements a generational slot pool: a dense array of
// items paired with a free-list of reusable indexes. Handles returned by
// Alloc embed a generation counter so that a handle surviving past its
// slot's reuse is detected as stale on lookup rather than aliasing a new
// item.
//
// Handle itself is not parameterized on the item type, so this package
// does not stop a handle from one pool being passed to another; callers
// get distinct handle types per pool by declaring named types over
// Handle and converting at the pool boundary.
package pool

// Handle is a 32-bit index plus a 32-bit generation, stable across pool
// reuse. The zero Handle is never returned by Alloc (index 0 is valid,
// but generation 0 with Active false never happens for an allocated
// slot), so callers may use it as an explicit "no handle" sentinel.
type Handle struct {
	Index      uint32
	Generation uint32
}

// Valid reports whether h could plausibly reference a live slot. It does
// not consult any Pool; use Pool.Get to confirm liveness.
func (h Handle) Valid() bool { return h.Generation != 0 }

type slot[T any] struct {
	active     bool
	generation uint32
	item       T
}

// Pool is a dense array of T plus a free-list of indexes available for
// reuse. The zero Pool is ready to use.
type Pool[T any] struct {
	slots    []slot[T]
	freeList []uint32
}

// NewPool returns an empty pool pre-sized for capacity items.
func NewPool[T any](capacity int) *Pool[T] {
	return &Pool[T]{
		slots:    make([]slot[T], 0, capacity),
		freeList: make([]uint32, 0, capacity/4),
	}
}

// Alloc reuses a slot from the free-list, bumping its generation, or
// appends a fresh slot. The returned Handle stays valid until it is
// Freed; the returned pointer addresses the item's current storage and
// no longer does once a later Alloc grows the slot array or Compact
// shrinks it.
func (p *Pool[T]) Alloc() (Handle, *T) {
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		s := &p.slots[idx]
		s.active = true
		s.generation++
		if s.generation == 0 {
			s.generation = 1 // generation 0 is reserved for "never allocated"
		}
		var zero T
		s.item = zero
		return Handle{Index: idx, Generation: s.generation}, &s.item
	}
	idx := uint32(len(p.slots))
	p.slots = append(p.slots, slot[T]{active: true, generation: 1})
	s := &p.slots[idx]
	return Handle{Index: idx, Generation: s.generation}, &s.item
}

// Free marks the slot inactive and returns its index to the free-list.
// The generation is preserved so a reborn slot rejects the old handle.
// Freeing an already-inactive or stale handle is a no-op.
func (p *Pool[T]) Free(h Handle) {
	if int(h.Index) >= len(p.slots) {
		return
	}
	s := &p.slots[h.Index]
	if !s.active || s.generation != h.Generation {
		return
	}
	s.active = false
	var zero T
	s.item = zero
	p.freeList = append(p.freeList, h.Index)
}

// Get returns a pointer to the item referenced by h, or (nil, false) if
// the slot is inactive or h's generation is stale.
func (p *Pool[T]) Get(h Handle) (*T, bool) {
	if int(h.Index) >= len(p.slots) {
		return nil, false
	}
	s := &p.slots[h.Index]
	if !s.active || s.generation != h.Generation {
		return nil, false
	}
	return &s.item, true
}

// Len returns the number of slots, active or not (the high-water mark).
func (p *Pool[T]) Len() int { return len(p.slots) }

// Active returns the number of currently-allocated slots.
func (p *Pool[T]) Active() int { return len(p.slots) - len(p.freeList) }

// Entry is the shape handed to callbacks by Each and Compact.
type Entry[T any] struct {
	Index      uint32
	Active     bool
	Generation uint32
	Item       *T
}

// Each iterates every slot in index order, active or not, exposing the
// raw generation so rebuild passes (e.g. BVH rebuild after a kill batch)
// can distinguish live items from holes without re-deriving Handles.
func (p *Pool[T]) Each(fn func(Entry[T])) {
	for i := range p.slots {
		s := &p.slots[i]
		fn(Entry[T]{Index: uint32(i), Active: s.active, Generation: s.generation, Item: &s.item})
	}
}

// Compact drops trailing inactive slots and rebuilds the free-list. It
// does not renumber active slots, so existing Handles remain valid; it
// only reclaims memory after a large kill batch, mirroring the BVH
// rebuild threshold behavior described for the owning World.
func (p *Pool[T]) Compact() {
	for len(p.slots) > 0 && !p.slots[len(p.slots)-1].active {
		p.slots = p.slots[:len(p.slots)-1]
	}
	freeList := p.freeList[:0]
	for i := range p.slots {
		if !p.slots[i].active {
			freeList = append(freeList, uint32(i))
		}
	}
	p.freeList = freeList
}

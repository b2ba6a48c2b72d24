package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocGetFree(t *testing.T) {
	p := NewPool[int](4)

	h, item := p.Alloc()
	*item = 42

	got, ok := p.Get(h)
	require.True(t, ok)
	assert.Equal(t, 42, *got)

	p.Free(h)
	_, ok = p.Get(h)
	assert.False(t, ok, "freed handle should fail lookup")
}

func TestGenerationMismatchIsStale(t *testing.T) {
	p := NewPool[string](1)

	h1, v1 := p.Alloc()
	*v1 = "first"
	p.Free(h1)

	h2, v2 := p.Alloc()
	*v2 = "second"

	assert.Equal(t, h1.Index, h2.Index, "slot should be reused")
	assert.NotEqual(t, h1.Generation, h2.Generation, "generation must bump on reuse")

	_, ok := p.Get(h1)
	assert.False(t, ok, "stale handle must not alias the reborn slot")

	got, ok := p.Get(h2)
	require.True(t, ok)
	assert.Equal(t, "second", *got)
}

func TestFreeIsIdempotent(t *testing.T) {
	p := NewPool[int](1)
	h, _ := p.Alloc()
	p.Free(h)
	assert.NotPanics(t, func() { p.Free(h) })
}

func TestActiveCount(t *testing.T) {
	p := NewPool[int](4)
	h1, _ := p.Alloc()
	_, _ = p.Alloc()
	assert.Equal(t, 2, p.Active())
	p.Free(h1)
	assert.Equal(t, 1, p.Active())
	assert.Equal(t, 2, p.Len())
}

func TestCompactDropsTrailingHoles(t *testing.T) {
	p := NewPool[int](4)
	_, _ = p.Alloc()
	h2, _ := p.Alloc()
	h3, _ := p.Alloc()
	p.Free(h3)
	p.Free(h2)
	p.Compact()
	assert.Equal(t, 1, p.Len())
}

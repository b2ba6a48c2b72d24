package bvh

import (
	"testing"

	"github.com/duskforge/rigid3d/rmath"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEntry struct {
	id     int
	bounds rmath.Aabb
}

func (e testEntry) Bounds() rmath.Aabb { return e.bounds }

func box(cx, cy, cz, h float32) rmath.Aabb {
	c := mgl32.Vec3{cx, cy, cz}
	he := mgl32.Vec3{h, h, h}
	return rmath.Aabb{Min: c.Sub(he), Max: c.Add(he)}
}

func TestBuildAndQueryAABB(t *testing.T) {
	entries := []testEntry{
		{0, box(-100, 0, 0, 1)},
		{1, box(100, 0, 0, 1)},
		{2, box(0, 0, 0, 1)},
	}
	tree := Build(entries, 1)

	hits := tree.QueryAABBFast(box(0, 0, 0, 2), nil)
	require.Len(t, hits, 1)
	assert.Equal(t, 2, hits[0].id)

	hits = tree.QueryAABBFast(box(0, 0, 0, 200), nil)
	assert.Len(t, hits, 3)
}

func TestQueryAABBIsSupersetOfIntersecting(t *testing.T) {
	entries := []testEntry{
		{0, box(0, 0, 0, 1)},
		{1, box(5, 0, 0, 1)},
		{2, box(10, 0, 0, 1)},
		{3, box(15, 0, 0, 1)},
	}
	tree := Build(entries, 2)
	query := box(5, 0, 0, 6)
	hits := tree.QueryAABBFast(query, nil)

	// brute-force reference
	var want []int
	for _, e := range entries {
		if e.Bounds().Intersects(query) {
			want = append(want, e.id)
		}
	}
	var got []int
	for _, h := range hits {
		got = append(got, h.id)
	}
	assert.ElementsMatch(t, want, got)
}

func TestRefitTracksMovedPrimitives(t *testing.T) {
	entries := []testEntry{
		{0, box(0, 0, 0, 1)},
		{1, box(50, 0, 0, 1)},
	}
	tree := Build(entries, 1)

	// move primitive 0 far away and refit
	prims := tree.Primitives()
	for i, p := range prims {
		if p.id == 0 {
			tree.UpdatePrimitive(i, testEntry{id: 0, bounds: box(1000, 0, 0, 1)})
		}
	}
	tree.Refit()

	hits := tree.QueryAABBFast(box(0, 0, 0, 2), nil)
	assert.Len(t, hits, 0, "moved-away primitive should no longer hit its old location")

	hits = tree.QueryAABBFast(box(1000, 0, 0, 2), nil)
	require.Len(t, hits, 1)
	assert.Equal(t, 0, hits[0].id)
}

func TestQueryRayFast(t *testing.T) {
	entries := []testEntry{
		{0, box(10, 0, 0, 1)},
		{1, box(-10, 0, 0, 1)},
	}
	tree := Build(entries, 1)
	ray := rmath.Ray{Origin: mgl32.Vec3{0, 0, 0}, Dir: mgl32.Vec3{1, 0, 0}}

	hits := tree.QueryRayFast(ray, 100, nil)
	require.Len(t, hits, 1)
	assert.Equal(t, 0, hits[0].Primitive.id)
}

func TestEmptyBVH(t *testing.T) {
	tree := Build([]testEntry{}, 4)
	hits := tree.QueryAABBFast(box(0, 0, 0, 1000), nil)
	assert.Len(t, hits, 0)
}

func TestSelfPairsMatchesBruteForce(t *testing.T) {
	entries := []testEntry{
		{0, box(0, 0, 0, 1)},
		{1, box(1, 0, 0, 1)},
		{2, box(50, 0, 0, 1)},
		{3, box(51, 0, 0, 1)},
		{4, box(0, 0, 0, 1)},
	}
	tree := Build(entries, 2)
	prims := tree.Primitives()

	var want [][2]int
	for i := 0; i < len(prims); i++ {
		for j := i + 1; j < len(prims); j++ {
			if prims[i].Bounds().Intersects(prims[j].Bounds()) {
				a, b := prims[i].id, prims[j].id
				if a > b {
					a, b = b, a
				}
				want = append(want, [2]int{a, b})
			}
		}
	}

	var got [][2]int
	for _, pr := range tree.SelfPairs(nil) {
		a, b := prims[pr[0]].id, prims[pr[1]].id
		if a > b {
			a, b = b, a
		}
		got = append(got, [2]int{a, b})
	}

	assert.ElementsMatch(t, want, got)
}

func TestSelfPairsOnEmptyTreeReturnsNothing(t *testing.T) {
	tree := Build([]testEntry{}, 4)
	assert.Empty(t, tree.SelfPairs(nil))
}

func TestCrossPairsMatchesBruteForce(t *testing.T) {
	left := []testEntry{
		{0, box(0, 0, 0, 1)},
		{1, box(50, 0, 0, 1)},
	}
	right := []testEntry{
		{10, box(0, 0, 0, 1)},
		{11, box(100, 0, 0, 1)},
	}
	a := Build(left, 1)
	b := Build(right, 1)
	aPrims := a.Primitives()
	bPrims := b.Primitives()

	var want [][2]int
	for _, pa := range aPrims {
		for _, pb := range bPrims {
			if pa.Bounds().Intersects(pb.Bounds()) {
				want = append(want, [2]int{pa.id, pb.id})
			}
		}
	}

	var got [][2]int
	for _, pr := range CrossPairs(a, b, nil) {
		got = append(got, [2]int{aPrims[pr[0]].id, bPrims[pr[1]].id})
	}

	assert.ElementsMatch(t, want, got)
}

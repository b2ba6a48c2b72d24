package rigid3d

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// polytopeFace indexes three polytope vertices forming a triangle, with
// its outward normal and signed distance from the origin cached to the
// face's plane.
type polytopeFace struct {
	ia, ib, ic int
	normal     mgl32.Vec3
	distance   float32
}

type polytopeEdge struct{ ia, ib int }

const epaMaxIterations = 64
const epaEpsilon = 1e-4

// epaPenetration expands the GJK termination simplex into the contact
// normal and penetration depth between a and b.
func epaPenetration(a Collider, posA mgl32.Vec3, rotA mgl32.Quat, b Collider, posB mgl32.Vec3, rotB mgl32.Quat, s simplex) (normal mgl32.Vec3, depth float32, ok bool) {
	polytope := []mgl32.Vec3{s.a, s.b, s.c, s.d}
	faces := []polytopeFace{
		newFace(polytope, 0, 1, 2),
		newFace(polytope, 0, 2, 3),
		newFace(polytope, 0, 3, 1),
		newFace(polytope, 1, 2, 3),
	}

	closest := closestFaceIndex(faces)
	var edges []polytopeEdge

	for it := 0; it < epaMaxIterations; it++ {
		minNormal := faces[closest].normal
		minDistance := faces[closest].distance

		support := supportMinkowskiDiff(a, posA, rotA, b, posB, rotB, minNormal)
		d := minNormal.Dot(support)
		if float32(math.Abs(float64(d-minDistance))) < epaEpsilon {
			return minNormal, minDistance, true
		}

		newIndex := len(polytope)
		polytope = append(polytope, support)

		edges = edges[:0]
		for i := 0; i < len(faces); i++ {
			f := faces[i]
			centroid := polytope[f.ia].Add(polytope[f.ib]).Add(polytope[f.ic]).Mul(1.0 / 3.0)
			if f.normal.Dot(support.Sub(centroid)) > 0 {
				edges = addEdge(edges, polytopeEdge{f.ia, f.ib})
				edges = addEdge(edges, polytopeEdge{f.ib, f.ic})
				edges = addEdge(edges, polytopeEdge{f.ic, f.ia})
				faces = append(faces[:i], faces[i+1:]...)
				i--
			}
		}

		for _, e := range edges {
			faces = append(faces, newFace(polytope, e.ia, e.ib, newIndex))
		}
		if len(faces) == 0 {
			return mgl32.Vec3{}, 0, false
		}
		closest = closestFaceIndex(faces)
	}
	return mgl32.Vec3{}, 0, false
}

func newFace(polytope []mgl32.Vec3, ia, ib, ic int) polytopeFace {
	a, b, c := polytope[ia], polytope[ib], polytope[ic]
	n := b.Sub(a).Cross(c.Sub(a))
	if n.LenSqr() < 1e-18 {
		return polytopeFace{ia: ia, ib: ib, ic: ic, normal: mgl32.Vec3{}, distance: math.MaxFloat32}
	}
	n = n.Normalize()
	dist := n.Dot(a)
	if dist < 0 {
		n = n.Mul(-1)
		dist = -dist
	}
	return polytopeFace{ia: ia, ib: ib, ic: ic, normal: n, distance: dist}
}

func closestFaceIndex(faces []polytopeFace) int {
	best := 0
	bestDist := float32(math.MaxFloat32)
	for i, f := range faces {
		if f.distance < bestDist {
			bestDist = f.distance
			best = i
		}
	}
	return best
}

// addEdge implements the silhouette-edge toggle: an edge shared by two
// removed faces cancels out, leaving only the silhouette boundary of
// the hole the new point carves.
func addEdge(edges []polytopeEdge, e polytopeEdge) []polytopeEdge {
	for i, existing := range edges {
		if (existing.ia == e.ia && existing.ib == e.ib) || (existing.ia == e.ib && existing.ib == e.ia) {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return append(edges, e)
}

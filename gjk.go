package rigid3d

import "github.com/go-gl/mathgl/mgl32"

// simplex is the up-to-4-point set GJK carries between iterations, with
// a the most recently added point.
type simplex struct {
	a, b, c, d mgl32.Vec3
	num        int
}

func (s *simplex) push(p mgl32.Vec3) {
	switch s.num {
	case 1:
		s.b = s.a
	case 2:
		s.c = s.b
		s.b = s.a
	case 3:
		s.d = s.c
		s.c = s.b
		s.b = s.a
	}
	s.a = p
	s.num++
}

func tripleCross(a, b, c mgl32.Vec3) mgl32.Vec3 {
	return a.Cross(b).Cross(c)
}

// evolve advances the simplex toward the origin, returning true once the
// simplex encloses it. direction is updated in place to the next search
// direction when evolve returns false.
func (s *simplex) evolve(direction *mgl32.Vec3) bool {
	switch s.num {
	case 2:
		return s.evolveLine(direction)
	case 3:
		return s.evolveTriangle(direction)
	case 4:
		return s.evolveTetrahedron(direction)
	}
	return false
}

func (s *simplex) evolveLine(direction *mgl32.Vec3) bool {
	a, b := s.a, s.b
	ao := a.Mul(-1)
	ab := b.Sub(a)
	if ab.Dot(ao) >= 0 {
		s.num = 2
		*direction = tripleCross(ab, ao, ab)
	} else {
		s.num = 1
		*direction = ao
	}
	return false
}

func (s *simplex) evolveTriangle(direction *mgl32.Vec3) bool {
	a, b, c := s.a, s.b, s.c
	ao := a.Mul(-1)
	ab := b.Sub(a)
	ac := c.Sub(a)
	abc := ab.Cross(ac)

	if abc.Cross(ac).Dot(ao) >= 0 {
		if ac.Dot(ao) >= 0 {
			s.b = c
			s.num = 2
			*direction = tripleCross(ac, ao, ac)
		} else if ab.Dot(ao) >= 0 {
			s.num = 2
			*direction = tripleCross(ab, ao, ab)
		} else {
			s.num = 1
			*direction = ao
		}
		return false
	}
	if ab.Cross(abc).Dot(ao) >= 0 {
		if ab.Dot(ao) >= 0 {
			s.num = 2
			*direction = tripleCross(ab, ao, ab)
		} else {
			s.num = 1
			*direction = ao
		}
		return false
	}
	if abc.Dot(ao) >= 0 {
		s.num = 3
		*direction = abc
	} else {
		s.b, s.c = c, b
		s.num = 3
		*direction = abc.Mul(-1)
	}
	return false
}

func (s *simplex) evolveTetrahedron(direction *mgl32.Vec3) bool {
	a, b, c, d := s.a, s.b, s.c, s.d
	ao := a.Mul(-1)
	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	abc := ab.Cross(ac)
	acd := ac.Cross(ad)
	adb := ad.Cross(ab)

	var region uint8
	if abc.Dot(ao) >= 0 {
		region |= 0x1
	}
	if acd.Dot(ao) >= 0 {
		region |= 0x2
	}
	if adb.Dot(ao) >= 0 {
		region |= 0x4
	}

	switch region {
	case 0x0:
		return true
	case 0x1:
		s.c = c
		s.num = 3
		return s.evolveTriangle(direction)
	case 0x2:
		s.b, s.c = c, d
		s.num = 3
		return s.evolveTriangle(direction)
	case 0x3:
		if ac.Dot(ao) >= 0 {
			s.b = c
			s.num = 2
			*direction = tripleCross(ac, ao, ac)
		} else {
			s.num = 1
			*direction = ao
		}
	case 0x4:
		s.b, s.c = d, b
		s.num = 3
		return s.evolveTriangle(direction)
	case 0x5:
		if ab.Dot(ao) >= 0 {
			s.num = 2
			*direction = tripleCross(ab, ao, ab)
		} else {
			s.num = 1
			*direction = ao
		}
	case 0x6:
		if ad.Dot(ao) >= 0 {
			s.b = d
			s.num = 2
			*direction = tripleCross(ad, ao, ad)
		} else {
			s.num = 1
			*direction = ao
		}
	case 0x7:
		s.num = 1
		*direction = ao
	}
	return false
}

const gjkMaxIterations = 64

// gjkIntersect runs GJK on the Minkowski difference of a and b and
// reports whether the two colliders overlap. On a true result, the
// returned simplex is a valid tetrahedron ready to seed EPA.
func gjkIntersect(a Collider, posA mgl32.Vec3, rotA mgl32.Quat, b Collider, posB mgl32.Vec3, rotB mgl32.Quat) (simplex, bool) {
	var s simplex
	direction := posA.Sub(posB)
	if direction.LenSqr() < 1e-18 {
		direction = mgl32.Vec3{1, 0, 0}
	}
	s.a = supportMinkowskiDiff(a, posA, rotA, b, posB, rotB, direction)
	s.num = 1
	direction = s.a.Mul(-1)

	for i := 0; i < gjkMaxIterations; i++ {
		next := supportMinkowskiDiff(a, posA, rotA, b, posB, rotB, direction)
		if next.Dot(direction) < 0 {
			return s, false
		}
		s.push(next)
		if s.evolve(&direction) {
			return s, true
		}
	}
	return s, false
}

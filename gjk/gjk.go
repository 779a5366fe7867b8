// Package gjk implements the Gilbert-Johnson-Keerthi intersection test.
//
// GJK decides whether two convex shapes overlap by testing if their
// Minkowski difference contains the origin. It only needs a support function
// per shape, so it works for any convex geometry. The simplex it leaves
// behind on a hit is the seed polytope for the epa package.
package gjk

import "github.com/go-gl/mathgl/mgl64"

// Support answers support queries in world space: the point of a shape
// farthest along a direction. The direction is not required to be
// normalized.
type Support func(direction mgl64.Vec3) mgl64.Vec3

// Simplex is a set of 1-4 points in Minkowski difference space, evolving
// from a single point to a tetrahedron as the algorithm iterates.
type Simplex struct {
	Points [4]mgl64.Vec3
	Count  int
}

// maxIterations bounds the refinement loop; valid convex inputs converge in
// a handful of iterations.
const maxIterations = 32

// MinkowskiSupport computes a support point of the Minkowski difference
// A - B along direction: support(A, d) - support(B, -d).
func MinkowskiSupport(a, b Support, direction mgl64.Vec3) mgl64.Vec3 {
	return a(direction).Sub(b(direction.Mul(-1)))
}

// Intersect reports whether two convex shapes overlap. initialDir seeds the
// first support query; a vector from one center toward the other converges
// fastest. On a hit the simplex contains the origin and holds up to four
// Minkowski points.
func Intersect(a, b Support, initialDir mgl64.Vec3, simplex *Simplex) bool {
	direction := initialDir
	if direction.Dot(direction) < 1e-8 {
		direction = mgl64.Vec3{1, 0, 0}
	}

	simplex.Points[0] = MinkowskiSupport(a, b, direction)
	simplex.Count = 1

	direction = simplex.Points[0].Mul(-1)

	// First support point at the origin means the surfaces touch exactly.
	if direction.Dot(direction) < 1e-16 {
		return true
	}

	for i := 0; i < maxIterations; i++ {
		newPoint := MinkowskiSupport(a, b, direction)

		// The new point not passing the origin proves separation.
		if newPoint.Dot(direction) <= 0 {
			return false
		}

		simplex.Points[simplex.Count] = newPoint
		simplex.Count++

		if containsOrigin(simplex, &direction) {
			return true
		}
	}

	return false
}

// containsOrigin tests whether the simplex contains the origin. If not, the
// simplex is reduced to its feature closest to the origin and the search
// direction updated for the next iteration.
func containsOrigin(simplex *Simplex, direction *mgl64.Vec3) bool {
	switch simplex.Count {
	case 2:
		return line(simplex, direction)
	case 3:
		return triangle(simplex, direction)
	case 4:
		return tetrahedron(simplex, direction)
	}
	return false
}

func line(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[1]
	b := simplex.Points[0]
	ab := b.Sub(a)
	ao := a.Mul(-1)

	// Degenerate segment: both supports coincide.
	if ab.Dot(ab) < 1e-8 {
		if ao.Dot(ao) < 1e-8 {
			return true
		}
		simplex.Points[0] = a
		simplex.Count = 1
		*direction = ao
		return false
	}

	// Voronoi region of A alone.
	if ab.Dot(ao) <= 0 {
		simplex.Points[0] = a
		simplex.Count = 1
		*direction = ao
		return false
	}

	abPerp := ab.Cross(ao).Cross(ab)
	if abPerp.Dot(abPerp) < 1e-8 {
		// Origin lies on the segment.
		return true
	}

	*direction = abPerp
	return false
}

func triangle(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[2]
	b := simplex.Points[1]
	c := simplex.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)

	abc := ab.Cross(ac)

	// Colinear points: fall back to the segment case.
	if abc.Dot(abc) < 1e-10 {
		simplex.Points[0] = b
		simplex.Points[1] = a
		simplex.Count = 2
		return line(simplex, direction)
	}

	// Edge AB region.
	abPerp := ab.Cross(abc)
	if abPerp.Dot(ao) > 0 {
		simplex.Points[0] = b
		simplex.Points[1] = a
		simplex.Count = 2
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}

	// Edge AC region.
	acPerp := abc.Cross(ac)
	if acPerp.Dot(ao) > 0 {
		simplex.Points[0] = c
		simplex.Points[1] = a
		simplex.Count = 2
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	if abc.Dot(ao) > 0 {
		*direction = abc
	} else {
		// Below the triangle; reverse the winding so the next point keeps
		// the tetrahedron consistently oriented.
		simplex.Points[0] = a
		simplex.Points[1] = c
		simplex.Points[2] = b
		simplex.Count = 3
		*direction = abc.Mul(-1)
	}

	return false
}

// tetrahedron is the only case that can enclose the origin. Each face normal
// is oriented away from the opposite vertex; the origin being inside all
// three faces incident to the newest vertex means containment.
func tetrahedron(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[3]
	b := simplex.Points[2]
	c := simplex.Points[1]
	d := simplex.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	ao := a.Mul(-1)

	abc := ab.Cross(ac)
	if abc.Dot(ad) > 0 {
		abc = abc.Mul(-1)
	}

	acd := ac.Cross(ad)
	if acd.Dot(ab) > 0 {
		acd = acd.Mul(-1)
	}

	adb := ad.Cross(ab)
	if adb.Dot(ac) > 0 {
		adb = adb.Mul(-1)
	}

	if abc.Dot(abc) < 1e-10 || acd.Dot(acd) < 1e-10 || adb.Dot(adb) < 1e-10 {
		simplex.Points[0] = c
		simplex.Points[1] = b
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	if abc.Dot(ao) > 0 {
		simplex.Points[0] = c
		simplex.Points[1] = b
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	if acd.Dot(ao) > 0 {
		simplex.Points[0] = d
		simplex.Points[1] = c
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	if adb.Dot(ao) > 0 {
		simplex.Points[0] = b
		simplex.Points[1] = d
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	return true
}

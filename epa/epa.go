// Package epa implements the Expanding Polytope Algorithm.
//
// EPA runs after gjk detects an overlap and produces the penetration normal
// and depth: it expands a polytope seeded with GJK's final simplex inside
// the Minkowski difference until it finds the face closest to the origin,
// whose normal and distance are the minimum translation to separate the
// shapes.
package epa

import (
	"errors"
	"math"

	"github.com/akmonengine/kinetic/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// maxIterations bounds polytope expansion; typical convergence is well
	// under twenty iterations.
	maxIterations = 32

	// convergenceTolerance is the distance improvement below which the
	// closest face is accepted.
	convergenceTolerance = 0.001

	// minFaceDistance is how far behind the origin a face may lie before it
	// is culled. Degenerate slivers (flagged with distance -1) are culled; a
	// face passing through the origin is kept and expanded like any other.
	minFaceDistance = 0.0001
)

// ErrNoConvergence is returned when the polytope fails to converge, which
// indicates numerically hostile input.
var ErrNoConvergence = errors.New("epa: polytope expansion did not converge")

// Result is the minimum translation separating two overlapping shapes:
// moving the second shape by Normal times Depth resolves the overlap. Normal
// points from the first shape toward the second; Depth is non-negative.
type Result struct {
	Normal mgl64.Vec3
	Depth  float64
}

// face is a triangle of the polytope with its outward normal and distance
// from the origin.
type face struct {
	points   [3]mgl64.Vec3
	normal   mgl64.Vec3
	distance float64
}

// edge is a face boundary segment used while re-triangulating the expansion
// hole.
type edge struct {
	a, b mgl64.Vec3
}

// Penetration computes the penetration normal and depth for two overlapping
// convex shapes, starting from the simplex gjk.Intersect left behind.
func Penetration(a, b gjk.Support, simplex *gjk.Simplex) (Result, error) {
	if simplex.Count < 4 {
		return degenerate(simplex)
	}

	faces := buildInitialFaces(simplex)

	for i := 0; i < maxIterations; i++ {
		if len(faces) == 0 {
			return Result{}, ErrNoConvergence
		}

		closest := closestFaceIndex(faces)
		f := faces[closest]

		if f.distance < -minFaceDistance {
			faces = append(faces[:closest], faces[closest+1:]...)
			continue
		}

		support := gjk.MinkowskiSupport(a, b, f.normal)
		distance := support.Dot(f.normal)

		if distance-f.distance < convergenceTolerance {
			return Result{Normal: f.normal, Depth: f.distance}, nil
		}

		faces = expand(faces, support)
	}

	return Result{}, ErrNoConvergence
}

// degenerate salvages a result from a simplex too small to seed a polytope,
// which happens when the shapes barely touch. The nearest available
// Minkowski point doubles as normal and depth estimate.
func degenerate(simplex *gjk.Simplex) (Result, error) {
	best := -1
	bestDist := math.MaxFloat64
	for i := 0; i < simplex.Count; i++ {
		d := simplex.Points[i].Len()
		if d > 1e-10 && d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best < 0 {
		return Result{}, ErrNoConvergence
	}

	return Result{
		Normal: simplex.Points[best].Mul(1 / bestDist),
		Depth:  bestDist,
	}, nil
}

// buildInitialFaces triangulates the GJK tetrahedron, orienting each face
// normal away from the opposite vertex.
func buildInitialFaces(simplex *gjk.Simplex) []face {
	p0, p1, p2, p3 := simplex.Points[0], simplex.Points[1], simplex.Points[2], simplex.Points[3]

	candidates := [4]face{
		newFace(p0, p1, p2, p3),
		newFace(p0, p2, p3, p1),
		newFace(p0, p3, p1, p2),
		newFace(p1, p3, p2, p0),
	}

	faces := make([]face, 0, 16)
	for _, f := range candidates {
		if f.distance >= 0 {
			faces = append(faces, f)
		}
	}

	// A near-flat tetrahedron can leave too few usable faces to close the
	// polytope; keep everything and let the expansion loop cull.
	if len(faces) < 3 {
		faces = append(faces[:0], candidates[:]...)
	}
	return faces
}

// newFace builds a face over three points, flipping the normal away from the
// opposite reference vertex.
func newFace(p0, p1, p2, opposite mgl64.Vec3) face {
	normal := p1.Sub(p0).Cross(p2.Sub(p0))
	lenSq := normal.Dot(normal)
	if lenSq < 1e-12 {
		// Degenerate sliver; flag with a negative distance so it's culled.
		return face{points: [3]mgl64.Vec3{p0, p1, p2}, distance: -1}
	}
	normal = normal.Mul(1 / math.Sqrt(lenSq))

	if normal.Dot(opposite.Sub(p0)) > 0 {
		normal = normal.Mul(-1)
	}

	return face{
		points:   [3]mgl64.Vec3{p0, p1, p2},
		normal:   normal,
		distance: normal.Dot(p0),
	}
}

func closestFaceIndex(faces []face) int {
	best := 0
	for i := 1; i < len(faces); i++ {
		if faces[i].distance < faces[best].distance {
			best = i
		}
	}
	return best
}

// expand inserts a new support point: faces visible from the point are
// removed, and the hole's boundary edges (edges left with a single
// occurrence) are re-triangulated against the point.
func expand(faces []face, support mgl64.Vec3) []face {
	edges := make([]edge, 0, 16)

	kept := faces[:0]
	for _, f := range faces {
		if f.normal.Dot(support.Sub(f.points[0])) > 0 {
			addBoundaryEdge(&edges, f.points[0], f.points[1])
			addBoundaryEdge(&edges, f.points[1], f.points[2])
			addBoundaryEdge(&edges, f.points[2], f.points[0])
		} else {
			kept = append(kept, f)
		}
	}
	faces = kept

	// The origin acts as the reference vertex: the polytope contains it, so
	// orienting away from it is orienting outward.
	for _, e := range edges {
		f := newFace(e.a, e.b, support, mgl64.Vec3{})
		if f.distance < 0 {
			continue
		}
		faces = append(faces, f)
	}

	return faces
}

// addBoundaryEdge records an edge of a removed face. An edge shared by two
// removed faces is interior to the hole and cancels out.
func addBoundaryEdge(edges *[]edge, a, b mgl64.Vec3) {
	for i, e := range *edges {
		if e.a == b && e.b == a {
			*edges = append((*edges)[:i], (*edges)[i+1:]...)
			return
		}
	}
	*edges = append(*edges, edge{a, b})
}

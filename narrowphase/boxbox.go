package narrowphase

import (
	"math"

	"github.com/akmonengine/kinetic/actor"
	"github.com/akmonengine/kinetic/collision"
	"github.com/go-gl/mathgl/mgl64"
)

// BoxBox is the box-vs-box specialization: a separating-axis test over the
// fifteen candidate axes finds the minimum-penetration normal, then the
// incident face is clipped against the reference face to produce up to four
// contact points in one pass. It outranks the generic convex fallback, which
// would need several steps to accumulate the same manifold.
type BoxBox struct{}

func (BoxBox) Process(m *collision.Manifold) {
	a := m.Objects[0]
	b := m.Objects[1]

	boxA := a.Shape.(*actor.Box)
	boxB := b.Shape.(*actor.Box)

	normal, _, overlapping := separatingAxis(boxA, &a.Transform, boxB, &b.Transform)
	if !overlapping {
		return
	}

	// The reference face is A's face toward B, the incident face B's face
	// toward A; the clipped incident face carries per-point depths.
	reference := boxFace(boxA, &a.Transform, normal.Mul(-1))
	incident := boxFace(boxB, &b.Transform, normal)

	var scratch [8]mgl64.Vec3
	clipped := clipFaceAgainstSides(incident[:], reference[:], normal, scratch[:0])

	refPoint := reference[0]
	outward := normal.Mul(-1)

	for _, p := range clipped {
		separation := p.Sub(refPoint).Dot(outward)
		if separation < m.ContactDistance {
			m.AddContact(normal, p, separation)
		}
	}
}

// separatingAxis tests the 15 candidate axes (3 face normals per box, 9 edge
// cross products). It returns the unit normal of minimum overlap oriented
// from B toward A, or overlapping=false as soon as any axis separates the
// boxes.
func separatingAxis(boxA *actor.Box, ta *actor.Transform, boxB *actor.Box, tb *actor.Transform) (mgl64.Vec3, float64, bool) {
	var axesA, axesB [3]mgl64.Vec3
	for i := 0; i < 3; i++ {
		axesA[i] = mgl64.Vec3{ta.Rotation.At(0, i), ta.Rotation.At(1, i), ta.Rotation.At(2, i)}
		axesB[i] = mgl64.Vec3{tb.Rotation.At(0, i), tb.Rotation.At(1, i), tb.Rotation.At(2, i)}
	}

	delta := ta.Position.Sub(tb.Position)

	bestOverlap := math.MaxFloat64
	var bestAxis mgl64.Vec3

	test := func(axis mgl64.Vec3) bool {
		lengthSq := axis.Dot(axis)
		if lengthSq < 1e-10 {
			// Near-parallel edges produce a null cross product; no
			// information on this axis.
			return true
		}
		axis = axis.Mul(1 / math.Sqrt(lengthSq))

		ra := math.Abs(axesA[0].Dot(axis))*boxA.HalfExtent[0] +
			math.Abs(axesA[1].Dot(axis))*boxA.HalfExtent[1] +
			math.Abs(axesA[2].Dot(axis))*boxA.HalfExtent[2]
		rb := math.Abs(axesB[0].Dot(axis))*boxB.HalfExtent[0] +
			math.Abs(axesB[1].Dot(axis))*boxB.HalfExtent[1] +
			math.Abs(axesB[2].Dot(axis))*boxB.HalfExtent[2]

		overlap := ra + rb - math.Abs(delta.Dot(axis))
		if overlap < 0 {
			return false
		}

		// Strict inequality keeps earlier axes on ties, so face axes win
		// over edge-edge axes of equal overlap.
		if overlap < bestOverlap-1e-9 {
			bestOverlap = overlap
			bestAxis = axis
		}
		return true
	}

	for i := 0; i < 3; i++ {
		if !test(axesA[i]) {
			return mgl64.Vec3{}, 0, false
		}
	}
	for i := 0; i < 3; i++ {
		if !test(axesB[i]) {
			return mgl64.Vec3{}, 0, false
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if !test(axesA[i].Cross(axesB[j])) {
				return mgl64.Vec3{}, 0, false
			}
		}
	}

	// Orient from B toward A.
	if bestAxis.Dot(delta) < 0 {
		bestAxis = bestAxis.Mul(-1)
	}

	return bestAxis, bestOverlap, true
}

// boxFace returns the world-space corners, in winding order, of the box face
// whose outward normal is most aligned with worldDir.
func boxFace(box *actor.Box, t *actor.Transform, worldDir mgl64.Vec3) [4]mgl64.Vec3 {
	local := t.Rotation.Transpose().Mul3x1(worldDir)

	axis := 0
	if math.Abs(local[1]) > math.Abs(local[axis]) {
		axis = 1
	}
	if math.Abs(local[2]) > math.Abs(local[axis]) {
		axis = 2
	}

	sign := 1.0
	if local[axis] < 0 {
		sign = -1
	}

	u := (axis + 1) % 3
	v := (axis + 2) % 3
	h := box.HalfExtent

	var corners [4]mgl64.Vec3
	for i, uv := range [4][2]float64{{1, 1}, {-1, 1}, {-1, -1}, {1, -1}} {
		var c mgl64.Vec3
		c[axis] = sign * h[axis]
		c[u] = uv[0] * h[u]
		c[v] = uv[1] * h[v]
		corners[i] = t.Apply(c)
	}
	return corners
}

package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxManifoldPoints is the maximum number of contact points in a manifold.
// Four points are enough to keep a resting box stable and keep the solver's
// per-pair work bounded.
const MaxManifoldPoints = 4

// DefaultContactDistance is the separation beyond which contact points are
// discarded and below which the narrowphase emits them.
const DefaultContactDistance = 0.02

// Contact is a single pair of corresponding points on two objects. World
// positions and the separation are refreshed every step from the object-space
// positions, which are the persistent part of the point.
type Contact struct {
	// WorldPosA and WorldPosB are the contact points on each object in
	// world space.
	WorldPosA mgl64.Vec3
	WorldPosB mgl64.Vec3

	// LocalPosA and LocalPosB are the same points in each object's frame.
	LocalPosA mgl64.Vec3
	LocalPosB mgl64.Vec3

	// WorldNormal points from object B toward object A.
	WorldNormal mgl64.Vec3

	// Distance is the signed separation along WorldNormal; negative means
	// penetration.
	Distance float64
}

// Manifold is the persistent set of up to four contact points between an
// ordered pair of objects. The pair is canonicalized so that the first
// object's shape type is not greater than the second's, which lets
// narrowphase algorithms assume their operand order.
type Manifold struct {
	Objects [2]*Object

	Points     [MaxManifoldPoints]Contact
	PointCount int

	// ContactDistance is the separation threshold for emitting and keeping
	// contact points.
	ContactDistance float64

	// TotalRestitution is the combined restitution coefficient of the pair.
	TotalRestitution float64

	// IslandID is assigned during island building; manifolds with no
	// dynamic endpoint keep the sentinel and are never visited.
	IslandID uint32

	key uint64
}

func newManifold(a, b *Object, contactDistance float64) *Manifold {
	if a.Shape.Type() > b.Shape.Type() {
		a, b = b, a
	}

	return &Manifold{
		Objects:          [2]*Object{a, b},
		ContactDistance:  contactDistance,
		TotalRestitution: a.Restitution * b.Restitution,
		key:              makePairKey(a, b),
	}
}

// PairKey returns the canonical 64-bit key of the manifold's object pair.
func (m *Manifold) PairKey() uint64 {
	return m.key
}

// ContactDistanceSq returns the squared contact threshold, which doubles as
// the point-equivalence threshold in object space.
func (m *Manifold) ContactDistanceSq() float64 {
	return m.ContactDistance * m.ContactDistance
}

// Refresh re-derives world positions and separations of the cached points
// from the objects' current transforms, then drops points that have either
// separated beyond the contact threshold or drifted tangentially past it.
func (m *Manifold) Refresh() {
	a := m.Objects[0]
	b := m.Objects[1]

	for i := 0; i < m.PointCount; i++ {
		p := &m.Points[i]
		p.WorldPosA = a.Transform.Apply(p.LocalPosA)
		p.WorldPosB = b.Transform.Apply(p.LocalPosB)
		p.Distance = p.WorldPosA.Sub(p.WorldPosB).Dot(p.WorldNormal)
	}

	kept := 0
	for i := 0; i < m.PointCount; i++ {
		p := &m.Points[i]
		if p.Distance > m.ContactDistance {
			continue
		}

		projected := p.WorldPosA.Sub(p.WorldNormal.Mul(p.Distance))
		drift := p.WorldPosB.Sub(projected)
		if drift.Dot(drift) > m.ContactDistanceSq() {
			continue
		}

		m.Points[kept] = *p
		kept++
	}
	m.PointCount = kept
}

// AddContact records a contact found by a narrowphase algorithm. The normal
// points from object B toward object A and distance is the signed
// separation. A new point coalesces with an existing one closer than the
// equivalence threshold in A's object space; otherwise it occupies a free
// slot, or recycles the least valuable cached point when the manifold is
// full.
func (m *Manifold) AddContact(normal, pointOnB mgl64.Vec3, distance float64) {
	pointOnA := pointOnB.Add(normal.Mul(distance))
	localA := m.Objects[0].Transform.ApplyInverse(pointOnA)

	dst := m.getPoint(localA, distance)

	dst.WorldPosA = pointOnA
	dst.WorldPosB = pointOnB
	dst.LocalPosA = localA
	dst.LocalPosB = m.Objects[1].Transform.ApplyInverse(pointOnB)
	dst.WorldNormal = normal
	dst.Distance = distance
}

func (m *Manifold) getPoint(localA mgl64.Vec3, distance float64) *Contact {
	// First, an existing point close enough to qualify as equivalent.
	thresholdSq := m.ContactDistanceSq()
	for i := 0; i < m.PointCount; i++ {
		d := localA.Sub(m.Points[i].LocalPosA)
		if d.Dot(d) < thresholdSq {
			return &m.Points[i]
		}
	}

	// Next, room for a new one.
	if m.PointCount < MaxManifoldPoints {
		i := m.PointCount
		m.PointCount++
		m.Points[i] = Contact{}
		return &m.Points[i]
	}

	// Recycle something.
	return m.leastValuablePoint(localA, distance)
}

// leastValuablePoint picks the cached point to sacrifice for a new contact.
// The deepest-penetrating point is never up for replacement. Among the rest,
// a point's value is its summed squared distance to the candidate and to
// every other point, approximating the manifold area each point contributes
// without the exact quad-area computation.
func (m *Manifold) leastValuablePoint(localA mgl64.Vec3, distance float64) *Contact {
	deepest := -1
	maxDepth := distance
	for i := 0; i < m.PointCount; i++ {
		if m.Points[i].Distance < maxDepth {
			deepest = i
			maxDepth = m.Points[i].Distance
		}
	}

	candidate := -1
	candidateValue := math.MaxFloat64
	for i := 0; i < m.PointCount; i++ {
		if i == deepest {
			continue
		}

		d := localA.Sub(m.Points[i].LocalPosA)
		value := d.Dot(d)
		for j := 0; j < m.PointCount; j++ {
			d = m.Points[i].LocalPosA.Sub(m.Points[j].LocalPosA)
			value += d.Dot(d)
		}

		if value < candidateValue {
			candidateValue = value
			candidate = i
		}
	}

	return &m.Points[candidate]
}

package narrowphase

import (
	"github.com/akmonengine/kinetic/actor"
	"github.com/akmonengine/kinetic/collision"
	"github.com/akmonengine/kinetic/epa"
	"github.com/akmonengine/kinetic/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

// ConvexConvex is the generic fallback for any pair of convex shapes: GJK
// detects the overlap, EPA produces the penetration normal and depth, and
// the deepest support point of the second object becomes the contact. The
// persistent manifold accumulates up to four such points across steps.
type ConvexConvex struct{}

func (ConvexConvex) Process(m *collision.Manifold) {
	a := m.Objects[0]
	b := m.Objects[1]

	supportA := worldSupport(a)
	supportB := worldSupport(b)

	var simplex gjk.Simplex
	initialDir := b.Transform.Position.Sub(a.Transform.Position)
	if !gjk.Intersect(supportA, supportB, initialDir, &simplex) {
		return
	}

	result, err := epa.Penetration(supportA, supportB, &simplex)
	if err != nil {
		return
	}

	// EPA's normal points from A toward B; the manifold wants B toward A.
	normal := result.Normal.Mul(-1)
	pointOnB := supportB(normal)

	m.AddContact(normal, pointOnB, -result.Depth)
}

// worldSupport adapts an object's convex shape to a world-space support
// query: the direction is rotated into the shape's frame, the local support
// transformed back out. Shape support functions expect unit directions
// (a sphere's support is d·r), so the local direction is normalized before
// the query.
func worldSupport(o *collision.Object) gjk.Support {
	shape := o.Shape.(actor.Convex)
	t := &o.Transform
	return func(direction mgl64.Vec3) mgl64.Vec3 {
		local := t.Rotation.Transpose().Mul3x1(direction)
		if l := local.Len(); l > 0 {
			local = local.Mul(1 / l)
		}
		return t.Apply(shape.Support(local))
	}
}

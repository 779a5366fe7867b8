package narrowphase

import (
	"github.com/akmonengine/kinetic/actor"
	"github.com/akmonengine/kinetic/collision"
)

// ConvexPlane handles any convex shape against an axis-aligned plane by
// querying the convex support point against the plane normal and projecting
// it onto the plane.
type ConvexPlane struct{}

func (ConvexPlane) Process(m *collision.Manifold) {
	convexObj := m.Objects[0]
	planeObj := m.Objects[1]

	// Infinite planes only work with identity transforms.
	if !planeObj.Transform.IsIdentity() {
		panic("narrowphase: axis-aligned plane attached to a non-identity transform")
	}

	convex := convexObj.Shape.(actor.Convex)
	plane := planeObj.Shape.(*actor.AxisAlignedPlane)

	normal := plane.Normal()

	// The convex vertex deepest against the plane, found in the convex's
	// own frame.
	normalLocal := convexObj.Transform.Rotation.Transpose().Mul3x1(normal.Mul(-1))
	support := convex.Support(normalLocal)

	vertexWorld := convexObj.Transform.Apply(support)
	distance := normal.Dot(vertexWorld) - plane.Distance

	if distance >= m.ContactDistance {
		return
	}

	projected := vertexWorld.Sub(normal.Mul(distance))
	m.AddContact(normal, projected, distance)
}

package narrowphase

import (
	"github.com/akmonengine/kinetic/actor"
	"github.com/akmonengine/kinetic/collision"
	"github.com/go-gl/mathgl/mgl64"
)

// SphereSphere handles the sphere-vs-sphere pair analytically.
type SphereSphere struct{}

func (SphereSphere) Process(m *collision.Manifold) {
	a := m.Objects[0]
	b := m.Objects[1]

	sphereA := a.Shape.(*actor.Sphere)
	sphereB := b.Shape.(*actor.Sphere)

	touchDistance := sphereA.Radius + sphereB.Radius

	deltaP := a.Transform.Position.Sub(b.Transform.Position)
	length := deltaP.Len()

	distance := length - touchDistance
	if distance >= m.ContactDistance {
		return
	}

	// Coincident centers leave the normal undefined; a zero normal beats a
	// NaN one.
	var normal mgl64.Vec3
	if length > 0 {
		normal = deltaP.Mul(1 / length)
	}

	pointOnB := b.Transform.Position.Add(normal.Mul(sphereB.Radius))
	m.AddContact(normal, pointOnB, distance)
}

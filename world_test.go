package kinetic

import (
	"testing"

	"github.com/akmonengine/kinetic/actor"
	"github.com/akmonengine/kinetic/narrowphase"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dt = 1.0 / 60

func defaultFactory() *narrowphase.Factory {
	f := narrowphase.NewFactory()
	f.RegisterDefaults()
	f.Prepopulate()
	return f
}

func gravityWorld(hint int) *World {
	w := NewWorld(hint, defaultFactory())
	w.Gravity = mgl64.Vec3{0, -9.81, 0}
	return w
}

func TestStepBeforePrepopulatePanics(t *testing.T) {
	f := narrowphase.NewFactory()
	f.RegisterDefaults()

	w := NewWorld(2, f)
	assert.Panics(t, func() { w.Step(dt) })
}

func TestFreeFall(t *testing.T) {
	w := gravityWorld(1)

	body := w.CreateDynamicBody(DynamicBodyConfig{
		BodyConfig: BodyConfig{Shape: &actor.Sphere{Radius: 1}},
		Mass:       3,
	})

	w.Step(dt)

	// Symplectic Euler: velocity first, then position.
	assert.InDelta(t, -9.81*dt, body.LinearVelocity().Y(), 1e-12)
	assert.InDelta(t, -9.81*dt*dt, body.Position().Y(), 1e-12)
}

func TestAppliedForceIntegration(t *testing.T) {
	w := NewWorld(1, defaultFactory())

	body := w.CreateDynamicBody(DynamicBodyConfig{
		BodyConfig: BodyConfig{Shape: &actor.Sphere{Radius: 1}},
		Mass:       2,
	})

	body.ApplyForce(mgl64.Vec3{10, 0, 0})
	w.Step(dt)

	// Velocity change is F·dt/m; the accumulator is cleared afterwards.
	assert.InDelta(t, 10*dt/2, body.LinearVelocity().X(), 1e-12)

	w.Step(dt)
	assert.InDelta(t, 10*dt/2, body.LinearVelocity().X(), 1e-12,
		"force leaked into the following step")
}

func TestFallingBoxSettlesOnPlane(t *testing.T) {
	w := gravityWorld(2)

	w.CreateStaticBody(BodyConfig{Shape: &actor.AxisAlignedPlane{Axis: 1, Distance: 0}})

	start := actor.NewTransform()
	start.Position = mgl64.Vec3{0, 2, 0}
	box := w.CreateDynamicBody(DynamicBodyConfig{
		BodyConfig: BodyConfig{Shape: &actor.Box{HalfExtent: mgl64.Vec3{1, 1, 1}}, Transform: start},
		Mass:       1,
	})

	for i := 0; i < 60; i++ {
		w.Step(dt)
	}
	y := box.Position().Y()
	require.GreaterOrEqual(t, y, 1.0, "box sank into the plane after 60 steps")
	require.LessOrEqual(t, y, 1.02, "box hovering after 60 steps")

	for i := 0; i < 40; i++ {
		w.Step(dt)
	}
	y = box.Position().Y()
	assert.GreaterOrEqual(t, y, 0.98, "box sank through the plane")
	assert.LessOrEqual(t, y, 1.02, "box failed to settle")
}

func TestSphereRestsOnPlane(t *testing.T) {
	w := gravityWorld(2)

	w.CreateStaticBody(BodyConfig{Shape: &actor.AxisAlignedPlane{Axis: 1, Distance: 0}})

	start := actor.NewTransform()
	start.Position = mgl64.Vec3{0, 1.5, 0}
	sphere := w.CreateDynamicBody(DynamicBodyConfig{
		BodyConfig: BodyConfig{Shape: &actor.Sphere{Radius: 1}, Transform: start},
		Mass:       1,
	})

	for i := 0; i < 120; i++ {
		w.Step(dt)
	}

	assert.InDelta(t, 1.0, sphere.Position().Y(), 0.05)
}

func TestIslandGrouping(t *testing.T) {
	w := NewWorld(8, defaultFactory())

	place := func(x float64) *DynamicBody {
		tr := actor.NewTransform()
		tr.Position = mgl64.Vec3{x, 0, 0}
		return w.CreateDynamicBody(DynamicBodyConfig{
			BodyConfig: BodyConfig{Shape: &actor.Sphere{Radius: 1}, Transform: tr},
			Mass:       1,
		})
	}

	// Two touching clusters and a loner: three islands.
	cluster1a := place(0)
	cluster1b := place(1)
	cluster2a := place(10)
	cluster2b := place(11)
	loner := place(20)

	w.Step(dt)

	assert.Equal(t, cluster1a.IslandID(), cluster1b.IslandID())
	assert.Equal(t, cluster2a.IslandID(), cluster2b.IslandID())
	assert.NotEqual(t, cluster1a.IslandID(), cluster2a.IslandID())
	assert.NotEqual(t, cluster1a.IslandID(), loner.IslandID())
	assert.NotEqual(t, cluster2a.IslandID(), loner.IslandID())

	for i, b := range w.DynamicBodies() {
		assert.Equal(t, i, b.worldIndex, "world index out of sync after island sort")
		assert.Equal(t, i, b.object.OwnerIndex)
	}
}

func TestDestroyDynamicBody(t *testing.T) {
	w := gravityWorld(4)

	w.CreateStaticBody(BodyConfig{Shape: &actor.AxisAlignedPlane{Axis: 1, Distance: 0}})

	var bodies []*DynamicBody
	for i := 0; i < 3; i++ {
		tr := actor.NewTransform()
		tr.Position = mgl64.Vec3{float64(i) * 3, 2, 0}
		bodies = append(bodies, w.CreateDynamicBody(DynamicBodyConfig{
			BodyConfig: BodyConfig{Shape: &actor.Sphere{Radius: 1}, Transform: tr},
			Mass:       1,
		}))
	}

	for i := 0; i < 30; i++ {
		w.Step(dt)
	}

	w.DestroyDynamicBody(bodies[1])
	require.Len(t, w.DynamicBodies(), 2)

	for i, b := range w.DynamicBodies() {
		assert.Equal(t, i, b.worldIndex)
	}

	// The world must keep stepping cleanly without the destroyed body.
	for i := 0; i < 30; i++ {
		w.Step(dt)
	}
}

func TestRestitutionBounce(t *testing.T) {
	w := gravityWorld(2)

	w.CreateStaticBody(BodyConfig{
		Shape:       &actor.AxisAlignedPlane{Axis: 1, Distance: 0},
		Restitution: 1,
	})

	start := actor.NewTransform()
	start.Position = mgl64.Vec3{0, 2, 0}
	ball := w.CreateDynamicBody(DynamicBodyConfig{
		BodyConfig: BodyConfig{Shape: &actor.Sphere{Radius: 1}, Transform: start, Restitution: 0.9},
		Mass:       1,
	})

	bounced := false
	for i := 0; i < 240; i++ {
		w.Step(dt)
		if ball.LinearVelocity().Y() > 1 {
			bounced = true
			break
		}
	}

	assert.True(t, bounced, "restitution 0.9 ball never bounced")
}

func TestDeterminism(t *testing.T) {
	run := func() []mgl64.Vec3 {
		w := gravityWorld(8)
		w.CreateStaticBody(BodyConfig{Shape: &actor.AxisAlignedPlane{Axis: 1, Distance: 0}})

		var bodies []*DynamicBody
		for i := 0; i < 4; i++ {
			tr := actor.NewTransform()
			tr.Position = mgl64.Vec3{float64(i) * 0.9, 2 + float64(i)*1.5, 0}
			bodies = append(bodies, w.CreateDynamicBody(DynamicBodyConfig{
				BodyConfig: BodyConfig{Shape: &actor.Box{HalfExtent: mgl64.Vec3{0.5, 0.5, 0.5}}, Transform: tr},
				Mass:       1,
			}))
		}

		for i := 0; i < 90; i++ {
			w.Step(dt)
		}

		positions := make([]mgl64.Vec3, len(bodies))
		for i, b := range bodies {
			positions[i] = b.Position()
		}
		return positions
	}

	first := run()
	second := run()

	// Identical inputs must give bit-identical outputs.
	require.Equal(t, first, second)
}

func TestVelocityMutators(t *testing.T) {
	w := NewWorld(1, defaultFactory())

	body := w.CreateDynamicBody(DynamicBodyConfig{
		BodyConfig: BodyConfig{Shape: &actor.Sphere{Radius: 1}},
		Mass:       1,
	})

	body.SetLinearVelocity(mgl64.Vec3{1, 0, 0})
	body.SetAngularVelocity(mgl64.Vec3{0, 2, 0})

	w.Step(dt)

	assert.InDelta(t, dt, body.Position().X(), 1e-12)
	assert.InDelta(t, 2.0, body.AngularVelocity().Y(), 1e-12)
}

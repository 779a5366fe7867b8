package narrowphase

import (
	"math"
	"testing"

	"github.com/akmonengine/kinetic/actor"
	"github.com/akmonengine/kinetic/collision"
	"github.com/go-gl/mathgl/mgl64"
)

// manifoldFor builds a canonical manifold for two placed shapes, the way the
// pair cache would.
func manifoldFor(shapeA actor.Shape, posA mgl64.Vec3, shapeB actor.Shape, posB mgl64.Vec3) *collision.Manifold {
	ta := actor.NewTransform()
	ta.Position = posA
	tb := actor.NewTransform()
	tb.Position = posB

	a := &collision.Object{Shape: shapeA, Transform: ta}
	b := &collision.Object{Shape: shapeB, Transform: tb}
	if a.Shape.Type() > b.Shape.Type() {
		a, b = b, a
	}

	return &collision.Manifold{
		Objects:         [2]*collision.Object{a, b},
		ContactDistance: collision.DefaultContactDistance,
	}
}

func approx(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestSphereSphereSeparation(t *testing.T) {
	sphere := &actor.Sphere{Radius: 1}
	m := manifoldFor(sphere, mgl64.Vec3{1.9, 0, 0}, &actor.Sphere{Radius: 1}, mgl64.Vec3{0, 0, 0})

	SphereSphere{}.Process(m)

	if m.PointCount != 1 {
		t.Fatalf("PointCount = %d, want 1", m.PointCount)
	}

	p := m.Points[0]
	if !p.WorldNormal.ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("normal = %v, want (1,0,0)", p.WorldNormal)
	}
	if !approx(p.Distance, -0.1, 1e-9) {
		t.Errorf("distance = %v, want -0.1", p.Distance)
	}
	if !p.WorldPosB.ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("point on B = %v, want (1,0,0)", p.WorldPosB)
	}
}

func TestSphereSphereOutOfRange(t *testing.T) {
	m := manifoldFor(&actor.Sphere{Radius: 1}, mgl64.Vec3{3, 0, 0}, &actor.Sphere{Radius: 1}, mgl64.Vec3{0, 0, 0})

	SphereSphere{}.Process(m)

	if m.PointCount != 0 {
		t.Errorf("separated spheres produced %d contacts", m.PointCount)
	}
}

func TestSphereSphereCoincidentCenters(t *testing.T) {
	m := manifoldFor(&actor.Sphere{Radius: 1}, mgl64.Vec3{}, &actor.Sphere{Radius: 1}, mgl64.Vec3{})

	SphereSphere{}.Process(m)

	if m.PointCount != 1 {
		t.Fatalf("coincident spheres produced %d contacts", m.PointCount)
	}
	if m.Points[0].WorldNormal != (mgl64.Vec3{}) {
		t.Errorf("coincident normal = %v, want zero", m.Points[0].WorldNormal)
	}
	for _, c := range m.Points[0].WorldNormal {
		if math.IsNaN(c) {
			t.Fatal("NaN in degenerate normal")
		}
	}
}

func TestConvexPlaneBoxResting(t *testing.T) {
	box := &actor.Box{HalfExtent: mgl64.Vec3{1, 1, 1}}
	plane := &actor.AxisAlignedPlane{Axis: 1, Distance: 0}

	m := manifoldFor(box, mgl64.Vec3{0, 0.9, 0}, plane, mgl64.Vec3{})

	ConvexPlane{}.Process(m)

	if m.PointCount != 1 {
		t.Fatalf("PointCount = %d, want 1", m.PointCount)
	}

	p := m.Points[0]
	if !approx(p.Distance, -0.1, 1e-9) {
		t.Errorf("distance = %v, want -0.1", p.Distance)
	}
	if p.WorldNormal != (mgl64.Vec3{0, 1, 0}) {
		t.Errorf("normal = %v, want plane normal", p.WorldNormal)
	}
	if !approx(p.WorldPosB.Y(), 0, 1e-9) {
		t.Errorf("contact point not on the plane: %v", p.WorldPosB)
	}
}

func TestConvexPlaneAboveThreshold(t *testing.T) {
	box := &actor.Box{HalfExtent: mgl64.Vec3{1, 1, 1}}
	plane := &actor.AxisAlignedPlane{Axis: 1, Distance: 0}

	m := manifoldFor(box, mgl64.Vec3{0, 2, 0}, plane, mgl64.Vec3{})

	ConvexPlane{}.Process(m)

	if m.PointCount != 0 {
		t.Errorf("airborne box produced %d contacts", m.PointCount)
	}
}

func TestConvexPlaneNonIdentityPlanePanics(t *testing.T) {
	box := &actor.Box{HalfExtent: mgl64.Vec3{1, 1, 1}}
	plane := &actor.AxisAlignedPlane{Axis: 1, Distance: 0}

	m := manifoldFor(box, mgl64.Vec3{0, 0.5, 0}, plane, mgl64.Vec3{})
	m.Objects[1].Transform.Position = mgl64.Vec3{0, 0.1, 0}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for moved plane")
		}
	}()
	ConvexPlane{}.Process(m)
}

func TestBoxBoxFaceContact(t *testing.T) {
	a := &actor.Box{HalfExtent: mgl64.Vec3{1, 1, 1}}
	b := &actor.Box{HalfExtent: mgl64.Vec3{1, 1, 1}}

	// B sits under A, overlapping 0.1 on y.
	m := manifoldFor(a, mgl64.Vec3{0, 1.9, 0}, b, mgl64.Vec3{0, 0, 0})

	BoxBox{}.Process(m)

	if m.PointCount == 0 {
		t.Fatal("overlapping boxes produced no contacts")
	}
	if m.PointCount > collision.MaxManifoldPoints {
		t.Fatalf("PointCount = %d", m.PointCount)
	}

	for i := 0; i < m.PointCount; i++ {
		p := m.Points[i]
		if !p.WorldNormal.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-9) {
			t.Errorf("point %d normal = %v, want (0,1,0)", i, p.WorldNormal)
		}
		if !approx(p.Distance, -0.1, 1e-6) {
			t.Errorf("point %d distance = %v, want -0.1", i, p.Distance)
		}
	}
}

func TestBoxBoxSeparated(t *testing.T) {
	a := &actor.Box{HalfExtent: mgl64.Vec3{1, 1, 1}}
	b := &actor.Box{HalfExtent: mgl64.Vec3{1, 1, 1}}

	m := manifoldFor(a, mgl64.Vec3{0, 3, 0}, b, mgl64.Vec3{0, 0, 0})
	BoxBox{}.Process(m)
	if m.PointCount != 0 {
		t.Errorf("separated boxes produced %d contacts", m.PointCount)
	}

	m = manifoldFor(a, mgl64.Vec3{2.5, 2.5, 2.5}, b, mgl64.Vec3{0, 0, 0})
	BoxBox{}.Process(m)
	if m.PointCount != 0 {
		t.Errorf("diagonally separated boxes produced %d contacts", m.PointCount)
	}
}

func TestBoxBoxDiagonalOverlapDepth(t *testing.T) {
	a := &actor.Box{HalfExtent: mgl64.Vec3{1, 1, 1}}
	b := &actor.Box{HalfExtent: mgl64.Vec3{1, 1, 1}}

	// Corner overlap of 0.1 on every axis; the minimum-penetration normal
	// is any one face axis with 0.1 of depth.
	m := manifoldFor(a, mgl64.Vec3{1.9, 1.9, 1.9}, b, mgl64.Vec3{0, 0, 0})
	BoxBox{}.Process(m)

	if m.PointCount == 0 {
		t.Fatal("corner-overlapping boxes produced no contacts")
	}
	for i := 0; i < m.PointCount; i++ {
		if !approx(m.Points[i].Distance, -0.1, 1e-6) {
			t.Errorf("corner overlap distance = %v, want -0.1", m.Points[i].Distance)
		}
	}
}

func TestBoxBoxRotatedContact(t *testing.T) {
	a := &actor.Box{HalfExtent: mgl64.Vec3{1, 1, 1}}
	b := &actor.Box{HalfExtent: mgl64.Vec3{1, 1, 1}}

	m := manifoldFor(a, mgl64.Vec3{0, 1.8, 0}, b, mgl64.Vec3{0, 0, 0})
	// Rotate the upper box 30° about Y; the contact normal stays vertical.
	m.Objects[0].Transform.SetRotation(mgl64.QuatRotate(math.Pi/6, mgl64.Vec3{0, 1, 0}))

	BoxBox{}.Process(m)

	if m.PointCount == 0 {
		t.Fatal("rotated overlapping boxes produced no contacts")
	}
	for i := 0; i < m.PointCount; i++ {
		if !m.Points[i].WorldNormal.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-6) {
			t.Errorf("normal = %v, want vertical", m.Points[i].WorldNormal)
		}
	}
}

func TestConvexConvexSphereBox(t *testing.T) {
	sphere := &actor.Sphere{Radius: 1}
	box := &actor.Box{HalfExtent: mgl64.Vec3{1, 1, 1}}

	// Sphere center 1.5 above the box top face: 0.5 of overlap.
	m := manifoldFor(box, mgl64.Vec3{0, 0, 0}, sphere, mgl64.Vec3{0, 1.5, 0})

	ConvexConvex{}.Process(m)

	if m.PointCount != 1 {
		t.Fatalf("PointCount = %d, want 1", m.PointCount)
	}

	p := m.Points[0]
	if p.Distance > 0 {
		t.Errorf("distance = %v, want penetration", p.Distance)
	}
	if !approx(p.Distance, -0.5, 0.05) {
		t.Errorf("distance = %v, want ≈ -0.5", p.Distance)
	}

	// Normal must separate box (A) from sphere (B): B toward A is -y.
	if p.WorldNormal.Y() > -0.9 {
		t.Errorf("normal = %v, want ≈ (0,-1,0)", p.WorldNormal)
	}
}

func TestConvexConvexSeparated(t *testing.T) {
	m := manifoldFor(
		&actor.Box{HalfExtent: mgl64.Vec3{1, 1, 1}}, mgl64.Vec3{0, 0, 0},
		&actor.Sphere{Radius: 1}, mgl64.Vec3{0, 5, 0})

	ConvexConvex{}.Process(m)

	if m.PointCount != 0 {
		t.Errorf("separated shapes produced %d contacts", m.PointCount)
	}
}

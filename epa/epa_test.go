package epa

import (
	"math"
	"testing"

	"github.com/akmonengine/kinetic/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

func sphereSupport(center mgl64.Vec3, radius float64) gjk.Support {
	return func(direction mgl64.Vec3) mgl64.Vec3 {
		if l := direction.Len(); l > 0 {
			direction = direction.Mul(1 / l)
		}
		return center.Add(direction.Mul(radius))
	}
}

func boxSupport(center, halfExtent mgl64.Vec3) gjk.Support {
	return func(direction mgl64.Vec3) mgl64.Vec3 {
		p := center
		for i := 0; i < 3; i++ {
			if direction[i] >= 0 {
				p[i] += halfExtent[i]
			} else {
				p[i] -= halfExtent[i]
			}
		}
		return p
	}
}

func penetrate(t *testing.T, a gjk.Support, ca mgl64.Vec3, b gjk.Support, cb mgl64.Vec3) Result {
	t.Helper()

	var simplex gjk.Simplex
	if !gjk.Intersect(a, b, cb.Sub(ca), &simplex) {
		t.Fatal("fixture shapes do not intersect")
	}

	result, err := Penetration(a, b, &simplex)
	if err != nil {
		t.Fatalf("Penetration: %v", err)
	}
	return result
}

func TestPenetrationBoxesAlongAxis(t *testing.T) {
	unit := mgl64.Vec3{1, 1, 1}
	a := boxSupport(mgl64.Vec3{}, unit)
	bCenter := mgl64.Vec3{1.5, 0, 0}
	b := boxSupport(bCenter, unit)

	result := penetrate(t, a, mgl64.Vec3{}, b, bCenter)

	// Overlap is 0.5 along x and the normal must point from A toward B.
	if math.Abs(result.Depth-0.5) > 0.01 {
		t.Errorf("depth = %v, want 0.5", result.Depth)
	}
	if !result.Normal.ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-6) {
		t.Errorf("normal = %v, want (1,0,0)", result.Normal)
	}
}

func TestPenetrationSpheres(t *testing.T) {
	a := sphereSupport(mgl64.Vec3{}, 1)
	bCenter := mgl64.Vec3{0, 1.2, 0}
	b := sphereSupport(bCenter, 1)

	result := penetrate(t, a, mgl64.Vec3{}, b, bCenter)

	if math.Abs(result.Depth-0.8) > 0.01 {
		t.Errorf("depth = %v, want 0.8", result.Depth)
	}
	if result.Normal.Y() < 0.99 {
		t.Errorf("normal = %v, want (0,1,0)", result.Normal)
	}
}

func TestPenetrationSeparatesShapes(t *testing.T) {
	// Moving B out by the reported translation must end the overlap.
	unit := mgl64.Vec3{1, 1, 1}
	a := boxSupport(mgl64.Vec3{}, unit)
	bCenter := mgl64.Vec3{1.2, 0.8, 0}
	b := boxSupport(bCenter, unit)

	result := penetrate(t, a, mgl64.Vec3{}, b, bCenter)

	// Slack above the convergence tolerance: the reported depth may be
	// short by up to that much.
	moved := bCenter.Add(result.Normal.Mul(result.Depth + 0.01))
	bMoved := boxSupport(moved, unit)

	var simplex gjk.Simplex
	if gjk.Intersect(a, bMoved, moved, &simplex) {
		t.Errorf("shapes still overlap after translating by %v·%v", result.Normal, result.Depth)
	}
}

func TestPenetrationDepthNonNegative(t *testing.T) {
	a := sphereSupport(mgl64.Vec3{}, 1)
	b := sphereSupport(mgl64.Vec3{0.1, 0.05, -0.02}, 1)

	result := penetrate(t, a, mgl64.Vec3{}, b, mgl64.Vec3{0.1, 0.05, -0.02})

	if result.Depth < 0 {
		t.Errorf("negative depth %v", result.Depth)
	}
	if math.Abs(result.Normal.Len()-1) > 1e-6 {
		t.Errorf("normal not unit length: %v", result.Normal)
	}
}

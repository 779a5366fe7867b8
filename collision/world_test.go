package collision

import (
	"testing"

	"github.com/akmonengine/kinetic/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// countingAlgorithm records how many manifolds it processed.
type countingAlgorithm struct {
	processed int
}

func (c *countingAlgorithm) Process(m *Manifold) {
	c.processed++
}

// singleSource hands the same algorithm to every pair.
type singleSource struct {
	algo Algorithm
}

func (s singleSource) AlgorithmFor(a, b actor.ShapeType) Algorithm {
	return s.algo
}

func sphereObject(position mgl64.Vec3) *Object {
	tr := actor.NewTransform()
	tr.Position = position
	return &Object{
		Shape:     &actor.Sphere{Radius: 1},
		Transform: tr,
		OwnerKind: OwnerDynamic,
	}
}

func TestWorldPairCacheFollowsBroadphase(t *testing.T) {
	algo := &countingAlgorithm{}
	w := NewWorld(8, singleSource{algo})

	a := sphereObject(mgl64.Vec3{0, 0, 0})
	b := sphereObject(mgl64.Vec3{5, 0, 0})
	w.Add(a)
	w.Add(b)

	if n := len(w.pairs.entries); n != 0 {
		t.Fatalf("separated objects created %d pairs", n)
	}

	// Move b into overlap.
	b.Transform.Position = mgl64.Vec3{1.5, 0, 0}
	w.Update(b)

	if n := len(w.pairs.entries); n != 1 {
		t.Fatalf("overlap created %d pairs, want 1", n)
	}

	// And away again.
	b.Transform.Position = mgl64.Vec3{10, 0, 0}
	w.Update(b)

	if n := len(w.pairs.entries); n != 0 {
		t.Fatalf("separation left %d pairs", n)
	}
}

func TestWorldRemoveDropsPairs(t *testing.T) {
	w := NewWorld(8, singleSource{&countingAlgorithm{}})

	a := sphereObject(mgl64.Vec3{0, 0, 0})
	b := sphereObject(mgl64.Vec3{1, 0, 0})
	c := sphereObject(mgl64.Vec3{1, 1, 0})
	w.Add(a)
	w.Add(b)
	w.Add(c)

	if n := len(w.pairs.entries); n != 3 {
		t.Fatalf("expected 3 pairs in the cluster, got %d", n)
	}

	w.Remove(b)
	if n := len(w.pairs.entries); n != 1 {
		t.Fatalf("expected only the a-c pair to survive, got %d", n)
	}

	if len(w.Objects()) != 2 {
		t.Errorf("object list has %d entries, want 2", len(w.Objects()))
	}
	for i, o := range w.Objects() {
		if o.worldIndex != i {
			t.Errorf("object %d records world index %d", i, o.worldIndex)
		}
	}
}

func TestUpdateNarrowphaseProcessesEveryLivePair(t *testing.T) {
	algo := &countingAlgorithm{}
	w := NewWorld(8, singleSource{algo})

	w.Add(sphereObject(mgl64.Vec3{0, 0, 0}))
	w.Add(sphereObject(mgl64.Vec3{1, 0, 0}))
	w.Add(sphereObject(mgl64.Vec3{0, 1, 0}))

	w.UpdateNarrowphase()

	if algo.processed != 3 {
		t.Errorf("narrowphase processed %d pairs, want 3", algo.processed)
	}
}

func TestUpdateNarrowphaseWithoutAlgorithmPanics(t *testing.T) {
	w := NewWorld(8, singleSource{nil})

	w.Add(sphereObject(mgl64.Vec3{0, 0, 0}))
	w.Add(sphereObject(mgl64.Vec3{1, 0, 0}))

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on missing algorithm")
		}
	}()
	w.UpdateNarrowphase()
}

func TestManifoldsOrderIsStable(t *testing.T) {
	w := NewWorld(8, singleSource{&countingAlgorithm{}})

	for i := 0; i < 6; i++ {
		w.Add(sphereObject(mgl64.Vec3{float64(i) * 0.5, 0, 0}))
	}

	first := append([]*Manifold(nil), w.Manifolds()...)
	for trial := 0; trial < 10; trial++ {
		again := w.Manifolds()
		if len(again) != len(first) {
			t.Fatalf("manifold count changed: %d vs %d", len(again), len(first))
		}
		for i := range again {
			if again[i] != first[i] {
				t.Fatalf("manifold order differs at %d on trial %d", i, trial)
			}
		}
	}

	for i := 1; i < len(first); i++ {
		if first[i-1].key >= first[i].key {
			t.Fatalf("manifolds not in ascending key order at %d", i)
		}
	}
}

func TestPairKeyCanonical(t *testing.T) {
	a := &Object{id: 3}
	b := &Object{id: 7}

	if makePairKey(a, b) != makePairKey(b, a) {
		t.Error("pair key depends on argument order")
	}
	if makePairKey(a, b) != (3<<32 | 7) {
		t.Errorf("pair key = %x, want min in the high half", makePairKey(a, b))
	}
}

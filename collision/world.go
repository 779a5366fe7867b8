package collision

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/akmonengine/kinetic/actor"
	"github.com/akmonengine/kinetic/broadphase"
)

// Algorithm generates contact points for one manifold. Implementations are
// provided by the narrowphase layer and dispatched by shape-type pair.
type Algorithm interface {
	Process(m *Manifold)
}

// AlgorithmSource resolves the algorithm for a canonical shape-type pair
// (a <= b). Returning an instance per call allows stateful algorithms to be
// cloned per pair while stateless ones are shared.
type AlgorithmSource interface {
	AlgorithmFor(a, b actor.ShapeType) Algorithm
}

// World is the persistent collision structure: it registers objects with the
// broadphase, keeps the pair cache consistent with overlap events, and
// drives the narrowphase over all live pairs. It is built around temporal
// coherency; per-step work tracks how much actually moved.
type World struct {
	// ContactDistance seeds new manifolds' contact threshold.
	ContactDistance float64

	broadphase *broadphase.AxisSweep
	algorithms AlgorithmSource

	objects []*Object
	// byID maps stable object ids (broadphase handle ids) back to objects.
	// Slots are never reused; removal leaves a nil hole.
	byID []*Object

	pairs cache

	sorted []*Manifold
}

// NewWorld creates a collision world sized for roughly objectCountHint
// objects, dispatching narrowphase work through algorithms.
func NewWorld(objectCountHint int, algorithms AlgorithmSource) *World {
	return &World{
		ContactDistance: DefaultContactDistance,
		broadphase:      broadphase.NewAxisSweep(objectCountHint),
		algorithms:      algorithms,
		objects:         make([]*Object, 0, objectCountHint),
		byID:            make([]*Object, 0, objectCountHint),
		pairs:           newCache(objectCountHint),
	}
}

// Add registers an object, assigning its stable id, and inserts it into the
// broadphase. Pairs already overlapping the new bounds enter the cache
// before Add returns.
func (w *World) Add(o *Object) {
	o.id = uint32(len(w.byID))
	o.proxy.ID = o.id
	w.byID = append(w.byID, o)

	o.worldIndex = len(w.objects)
	w.objects = append(w.objects, o)

	w.broadphase.Add(o.handle(), o.AABB(), pairListener{w})
}

// Remove unregisters an object. Every cached pair involving it is dropped
// through the broadphase's removal events.
func (w *World) Remove(o *Object) {
	if int(o.id) >= len(w.byID) || w.byID[o.id] != o {
		slog.Debug("collision: remove of unknown object", "id", o.id)
		return
	}

	w.broadphase.Remove(o.handle(), pairListener{w})

	index := o.worldIndex
	last := len(w.objects) - 1
	w.objects[index] = w.objects[last]
	w.objects[index].worldIndex = index
	w.objects = w.objects[:last]

	w.byID[o.id] = nil
}

// Update pushes an object's current bounds into the broadphase, which adds
// and removes cached pairs as overlap statuses change.
func (w *World) Update(o *Object) {
	w.broadphase.Update(o.handle(), o.AABB(), pairListener{w})
}

// UpdateNarrowphase runs the narrowphase over every live pair: cached
// contacts are refreshed against current transforms first, then the pair's
// algorithm adds new contacts.
func (w *World) UpdateNarrowphase() {
	for _, entry := range w.pairs.entries {
		if entry.algorithm == nil {
			m := entry.manifold
			entry.algorithm = w.algorithms.AlgorithmFor(m.Objects[0].Shape.Type(), m.Objects[1].Shape.Type())
			if entry.algorithm == nil {
				panic(fmt.Sprintf("collision: no narrowphase algorithm for shape pair (%d, %d)",
					m.Objects[0].Shape.Type(), m.Objects[1].Shape.Type()))
			}
		}

		entry.manifold.Refresh()
		entry.algorithm.Process(entry.manifold)
	}
}

// Manifolds returns the live manifolds sorted by canonical pair key. The
// slice is reused across calls; callers must not retain it. The fixed order
// makes every downstream traversal independent of map iteration order, which
// keeps stepping deterministic.
func (w *World) Manifolds() []*Manifold {
	w.sorted = w.sorted[:0]
	for _, entry := range w.pairs.entries {
		w.sorted = append(w.sorted, entry.manifold)
	}
	sort.Slice(w.sorted, func(i, j int) bool {
		return w.sorted[i].key < w.sorted[j].key
	})
	return w.sorted
}

// Objects returns the registered objects in world order.
func (w *World) Objects() []*Object {
	return w.objects
}

func (o *Object) handle() *broadphase.Handle {
	return &o.proxy
}

// pairListener translates broadphase overlap events into pair-cache
// mutations. Methods run synchronously inside broadphase calls.
type pairListener struct {
	w *World
}

func (l pairListener) PairAdded(a, b *broadphase.Handle) {
	l.w.pairs.add(l.w.byID[a.ID], l.w.byID[b.ID], l.w.ContactDistance)
}

func (l pairListener) PairRemoved(a, b *broadphase.Handle) {
	l.w.pairs.remove(l.w.byID[a.ID], l.w.byID[b.ID])
}

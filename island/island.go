// Package island partitions the contact graph into independent groups. Two
// dynamic bodies belong to the same island when a chain of manifolds between
// dynamic bodies connects them; manifolds against static geometry join the
// island of their single dynamic endpoint. The solver then runs per island,
// never seeing bodies that cannot influence each other.
package island

import (
	"sort"

	"github.com/akmonengine/kinetic/collision"
)

// None is the island id of manifolds with no dynamic endpoint; they sort
// past every real island and are never visited.
const None = ^uint32(0)

// Body is the view of a dynamic body the island builder needs: an island id
// slot and the body's index in the world table, which the builder rewrites
// when it reorders bodies.
type Body interface {
	IslandID() uint32
	SetIslandID(id uint32)
	SetWorldIndex(i int)
}

type mapping struct {
	objectID int
	islandID int
}

// Manager builds and visits simulation islands. Its scratch buffers are
// reused across steps, so a Manager belongs to exactly one world.
type Manager[B Body] struct {
	mapping []mapping
	sorted  []*collision.Manifold
}

// BuildAndVisit groups bodies and manifolds into islands and invokes visit
// once per island with contiguous views of its members. Building and
// visiting are a single operation because mutating the world between the two
// would be undefined.
//
// bodies is reordered in place by island; each body's recorded world index
// is updated to its new position before manifolds are resolved, so external
// references stay valid. dynamicIndex resolves a collision object to its
// owning body's current index in bodies, or false for non-dynamic owners.
// The manifold slice must be in deterministic (pair-key) order; islands are
// then visited in a reproducible order.
func (mgr *Manager[B]) BuildAndVisit(
	bodies []B,
	manifolds []*collision.Manifold,
	dynamicIndex func(*collision.Object) (int, bool),
	visit func(bodies []B, manifolds []*collision.Manifold),
) {
	if len(bodies) == 0 {
		return
	}

	mgr.build(bodies, manifolds, dynamicIndex)

	sort.SliceStable(bodies, func(i, j int) bool {
		return bodies[i].IslandID() < bodies[j].IslandID()
	})
	for i := range bodies {
		bodies[i].SetWorldIndex(i)
	}

	// Each manifold belongs to the island of whichever endpoint is
	// dynamic; with both dynamic they already agree.
	mgr.sorted = mgr.sorted[:0]
	for _, m := range manifolds {
		m.IslandID = None
		if idx, ok := dynamicIndex(m.Objects[0]); ok {
			m.IslandID = bodies[idx].IslandID()
		} else if idx, ok := dynamicIndex(m.Objects[1]); ok {
			m.IslandID = bodies[idx].IslandID()
		}
		mgr.sorted = append(mgr.sorted, m)
	}
	sort.SliceStable(mgr.sorted, func(i, j int) bool {
		return mgr.sorted[i].IslandID < mgr.sorted[j].IslandID
	})

	// Lock-step walk of the two sorted arrays, one visit per island.
	islandStart := 0
	colStart := 0
	current := bodies[0].IslandID()

	flush := func(end int) {
		colEnd := colStart
		for colEnd < len(mgr.sorted) && mgr.sorted[colEnd].IslandID == current {
			colEnd++
		}
		visit(bodies[islandStart:end], mgr.sorted[colStart:colEnd])
		islandStart = end
		colStart = colEnd
	}

	for i := 1; i < len(bodies); i++ {
		if id := bodies[i].IslandID(); id != current {
			flush(i)
			current = id
		}
	}
	flush(len(bodies))
}

// build runs the union-find: every body starts as its own island, every
// manifold between two dynamic bodies merges theirs, and each body ends up
// tagged with its class representative.
func (mgr *Manager[B]) build(bodies []B, manifolds []*collision.Manifold, dynamicIndex func(*collision.Object) (int, bool)) {
	n := len(bodies)

	if cap(mgr.mapping) < n {
		mgr.mapping = make([]mapping, n)
	}
	mgr.mapping = mgr.mapping[:n]

	for i := 0; i < n; i++ {
		bodies[i].SetIslandID(uint32(i))
		mgr.mapping[i] = mapping{objectID: i, islandID: i}
	}

	for _, m := range manifolds {
		a, okA := dynamicIndex(m.Objects[0])
		b, okB := dynamicIndex(m.Objects[1])
		if okA && okB {
			mgr.join(a, b)
		}
	}

	for i := 0; i < n; i++ {
		bodies[i].SetIslandID(uint32(mgr.find(i)))
	}
}

// find resolves an object's representative, halving the path as it unwinds.
func (mgr *Manager[B]) find(objectID int) int {
	parent := mgr.mapping[objectID].islandID
	if objectID == parent || mgr.mapping[parent].islandID == parent {
		return parent
	}

	result := mgr.find(parent)

	// Cache the result for faster future lookups.
	mgr.mapping[objectID].islandID = result
	return result
}

func (mgr *Manager[B]) join(a, b int) {
	islandA := mgr.find(a)
	islandB := mgr.find(b)

	if islandA != islandB {
		// No balancing; lookups flatten the tree as they go.
		mgr.mapping[islandA].islandID = islandB
	}
}

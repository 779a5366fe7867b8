// Package broadphase maintains the set of overlapping axis-aligned bounding
// boxes under continuous motion, using an incremental three-axis
// sweep-and-prune over sorted edge lists.
//
// Each registered handle contributes one minimum and one maximum edge per
// axis. Edge arrays stay sorted by position; when a box moves, its edges are
// bubbled to their new positions with insertion-sort descents and ascents,
// and the overlap status of a pair is re-evaluated exactly at the swaps that
// can change it. Under temporal coherence the per-step cost is proportional
// to the number of edge swaps rather than the population size.
package broadphase

import (
	"math"

	"github.com/akmonengine/kinetic/actor"
)

// PairListener receives overlap transitions. PairAdded fires when a
// previously non-overlapping pair begins overlapping on all three axes,
// PairRemoved when it ceases to. Edges are swept one at a time, so when a
// handle's interval passes wholly across another's on one axis within a
// single Add or Update, that pair gets PairAdded immediately followed by
// PairRemoved even though the two never overlap; the reports still balance
// to the current overlap set. Callbacks run synchronously inside
// Add/Update/Remove and must not re-enter the broadphase.
type PairListener interface {
	PairAdded(a, b *Handle)
	PairRemoved(a, b *Handle)
}

// Handle is an object's registration in the broadphase. For each axis it
// records the current index of the object's minimum and maximum edge in that
// axis's sorted edge array; the broadphase keeps these up to date as edges
// swap past each other.
type Handle struct {
	// ID identifies the owning object to the PairListener. The broadphase
	// never interprets it.
	ID uint32

	minEdges [3]uint32
	maxEdges [3]uint32

	slot       int
	registered bool
}

// edge is one endpoint of a handle's interval on one axis. Two sentinel
// edges at -inf and +inf bracket each axis so the sweeps need no bounds
// checks: the sentinel positions always compare as the extremes.
type edge struct {
	position float64
	handle   *Handle
	isMax    bool
}

// AxisSweep is an incremental sweep-and-prune broadphase.
type AxisSweep struct {
	sentinel Handle
	edges    [3][]edge
	handles  []*Handle
}

// NewAxisSweep creates a broadphase sized for roughly objectCountHint
// objects. The hint only pre-sizes the edge arrays.
func NewAxisSweep(objectCountHint int) *AxisSweep {
	bp := &AxisSweep{}

	expectedEdgesPerAxis := (objectCountHint + 1) * 2
	for i := 0; i < 3; i++ {
		bp.sentinel.minEdges[i] = 0
		bp.sentinel.maxEdges[i] = 1

		bp.edges[i] = make([]edge, 0, expectedEdgesPerAxis)
		bp.edges[i] = append(bp.edges[i],
			edge{position: math.Inf(-1), handle: &bp.sentinel, isMax: false},
			edge{position: math.Inf(1), handle: &bp.sentinel, isMax: true},
		)
	}
	bp.handles = make([]*Handle, 0, objectCountHint)

	return bp
}

// Add registers a handle with its initial bounds. The new edges are inserted
// just before the upper sentinel of each axis and bubbled down to their
// sorted positions. The first two axes only do index bookkeeping; overlap
// decisions are deferred to the third axis, where the descent performs the
// 2D test on the two remaining axes and reports each actual new overlap
// exactly once.
func (bp *AxisSweep) Add(h *Handle, bounds actor.AABB, listener PairListener) {
	for axis := 0; axis < 3; axis++ {
		// Displace the upper sentinel, insert the new edges, put it back.
		bp.edges[axis] = bp.edges[axis][:len(bp.edges[axis])-1]

		h.minEdges[axis] = uint32(len(bp.edges[axis]))
		bp.edges[axis] = append(bp.edges[axis], edge{position: bounds.Min[axis], handle: h, isMax: false})

		h.maxEdges[axis] = uint32(len(bp.edges[axis]))
		bp.edges[axis] = append(bp.edges[axis], edge{position: bounds.Max[axis], handle: h, isMax: true})

		bp.edges[axis] = append(bp.edges[axis], edge{position: math.Inf(1), handle: &bp.sentinel, isMax: true})
		bp.sentinel.maxEdges[axis] = uint32(len(bp.edges[axis]) - 1)
	}

	h.slot = len(bp.handles)
	h.registered = true
	bp.handles = append(bp.handles, h)

	bp.sortMinDown(0, h.minEdges[0], nil)
	bp.sortMaxDown(0, h.maxEdges[0], nil)
	bp.sortMinDown(1, h.minEdges[1], nil)
	bp.sortMaxDown(1, h.maxEdges[1], nil)

	bp.sortMinDown(2, h.minEdges[2], func(other *Handle) { listener.PairAdded(h, other) })
	bp.sortMaxDown(2, h.maxEdges[2], func(other *Handle) { listener.PairRemoved(h, other) })
}

// Update moves a handle to new bounds. Expanding edge motion (min moving
// down, max moving up) can only create overlaps and reports through
// PairAdded; contracting motion can only end overlaps and reports through
// PairRemoved.
func (bp *AxisSweep) Update(h *Handle, bounds actor.AABB, listener PairListener) {
	if !h.registered {
		return
	}

	onAdded := func(other *Handle) { listener.PairAdded(h, other) }
	onRemoved := func(other *Handle) { listener.PairRemoved(h, other) }

	for axis := 0; axis < 3; axis++ {
		minEdge := h.minEdges[axis]
		maxEdge := h.maxEdges[axis]

		dmin := bounds.Min[axis] - bp.edges[axis][minEdge].position
		dmax := bounds.Max[axis] - bp.edges[axis][maxEdge].position

		bp.edges[axis][minEdge].position = bounds.Min[axis]
		bp.edges[axis][maxEdge].position = bounds.Max[axis]

		// Expansion can only add overlaps.
		if dmin < 0 {
			bp.sortMinDown(axis, minEdge, onAdded)
		}
		if dmax > 0 {
			bp.sortMaxUp(axis, maxEdge, onAdded)
		}

		// Contraction can only remove overlaps.
		if dmin > 0 {
			bp.sortMinUp(axis, minEdge, onRemoved)
		}
		if dmax < 0 {
			bp.sortMaxDown(axis, maxEdge, onRemoved)
		}
	}
}

// Remove unregisters a handle. Every pair currently overlapping with it is
// reported through PairRemoved, then its six edges are extracted and the
// remaining edges re-indexed. Removing an unknown handle is a no-op.
func (bp *AxisSweep) Remove(h *Handle, listener PairListener) {
	if !h.registered {
		return
	}

	for _, other := range bp.handles {
		if other != h && bp.testOverlap(h, other) {
			listener.PairRemoved(h, other)
		}
	}

	for axis := 0; axis < 3; axis++ {
		edges := bp.edges[axis]
		minEdge := int(h.minEdges[axis])
		maxEdge := int(h.maxEdges[axis])

		// minEdge < maxEdge always holds, so deleting back to front keeps
		// the first index valid.
		edges = append(edges[:maxEdge], edges[maxEdge+1:]...)
		edges = append(edges[:minEdge], edges[minEdge+1:]...)
		bp.edges[axis] = edges

		for i := range edges {
			e := &edges[i]
			if e.isMax {
				e.handle.maxEdges[axis] = uint32(i)
			} else {
				e.handle.minEdges[axis] = uint32(i)
			}
		}
	}

	last := len(bp.handles) - 1
	bp.handles[h.slot] = bp.handles[last]
	bp.handles[h.slot].slot = h.slot
	bp.handles = bp.handles[:last]
	h.registered = false
}

// sortMinDown bubbles a minimum edge toward lower positions. Crossing
// another handle's maximum edge means this interval just started reaching
// theirs on this axis, so the pair is reported if the other two axes already
// overlap. The sentinel at index 0 terminates the loop.
func (bp *AxisSweep) sortMinDown(axis int, edgeIdx uint32, cb func(*Handle)) {
	edges := bp.edges[axis]
	e := edgeIdx
	h := edges[e].handle

	for edges[e].position < edges[e-1].position {
		prev := &edges[e-1]
		prevHandle := prev.handle

		if prev.isMax {
			if cb != nil && bp.testOverlap2D(h, prevHandle, nextAxis(axis), nextAxis(nextAxis(axis))) {
				cb(prevHandle)
			}
			prevHandle.maxEdges[axis]++
		} else {
			prevHandle.minEdges[axis]++
		}
		h.minEdges[axis]--

		edges[e], edges[e-1] = edges[e-1], edges[e]
		e--
	}
}

// sortMinUp bubbles a minimum edge toward higher positions, passing maximum
// edges of intervals this one no longer reaches.
func (bp *AxisSweep) sortMinUp(axis int, edgeIdx uint32, cb func(*Handle)) {
	edges := bp.edges[axis]
	e := edgeIdx
	h := edges[e].handle

	for edges[e].position > edges[e+1].position {
		next := &edges[e+1]
		nextHandle := next.handle

		if next.isMax {
			if cb != nil && bp.testOverlap2D(h, nextHandle, nextAxis(axis), nextAxis(nextAxis(axis))) {
				cb(nextHandle)
			}
			nextHandle.maxEdges[axis]--
		} else {
			nextHandle.minEdges[axis]--
		}
		h.minEdges[axis]++

		edges[e], edges[e+1] = edges[e+1], edges[e]
		e++
	}
}

// sortMaxUp bubbles a maximum edge toward higher positions, crossing minimum
// edges of intervals this one now reaches.
func (bp *AxisSweep) sortMaxUp(axis int, edgeIdx uint32, cb func(*Handle)) {
	edges := bp.edges[axis]
	e := edgeIdx
	h := edges[e].handle

	for edges[e].position > edges[e+1].position {
		next := &edges[e+1]
		nextHandle := next.handle

		if !next.isMax {
			if cb != nil && bp.testOverlap2D(h, nextHandle, nextAxis(axis), nextAxis(nextAxis(axis))) {
				cb(nextHandle)
			}
			nextHandle.minEdges[axis]--
		} else {
			nextHandle.maxEdges[axis]--
		}
		h.maxEdges[axis]++

		edges[e], edges[e+1] = edges[e+1], edges[e]
		e++
	}
}

// sortMaxDown bubbles a maximum edge toward lower positions, passing minimum
// edges of intervals this one no longer reaches.
func (bp *AxisSweep) sortMaxDown(axis int, edgeIdx uint32, cb func(*Handle)) {
	edges := bp.edges[axis]
	e := edgeIdx
	h := edges[e].handle

	for edges[e].position < edges[e-1].position {
		prev := &edges[e-1]
		prevHandle := prev.handle

		if !prev.isMax {
			if cb != nil && bp.testOverlap2D(h, prevHandle, nextAxis(axis), nextAxis(nextAxis(axis))) {
				cb(prevHandle)
			}
			prevHandle.minEdges[axis]++
		} else {
			prevHandle.maxEdges[axis]++
		}
		h.maxEdges[axis]--

		edges[e], edges[e-1] = edges[e-1], edges[e]
		e--
	}
}

// testOverlap2D reports interval overlap on two axes using edge indices
// only; positions are never consulted because the arrays are sorted.
func (bp *AxisSweep) testOverlap2D(h1, h2 *Handle, axis1, axis2 int) bool {
	if h1.maxEdges[axis1] < h2.minEdges[axis1] ||
		h2.maxEdges[axis1] < h1.minEdges[axis1] ||
		h1.maxEdges[axis2] < h2.minEdges[axis2] ||
		h2.maxEdges[axis2] < h1.minEdges[axis2] {
		return false
	}
	return true
}

// testOverlap reports full three-axis overlap between two handles.
func (bp *AxisSweep) testOverlap(h1, h2 *Handle) bool {
	for axis := 0; axis < 3; axis++ {
		if h1.maxEdges[axis] < h2.minEdges[axis] || h2.maxEdges[axis] < h1.minEdges[axis] {
			return false
		}
	}
	return true
}

// nextAxis is equivalent to (axis+1)%3 for axis in {0,1,2}, without the
// modulo.
func nextAxis(axis int) int {
	return (1 << axis) & 3
}

// Package narrowphase turns broadphase pairs into contact points. It hosts
// the shape-pair algorithms and the factory that dispatches them.
//
// Dispatch is driven by shape-type tags arranged in a single-parent
// hierarchy: when no algorithm is registered for an exact pair, the factory
// walks the tags' parent chains and takes the highest-priority algorithm
// found anywhere along the lattice. A Box with no bespoke box-vs-plane
// algorithm therefore falls back to Convex-vs-AxisAlignedPlane.
package narrowphase

import (
	"fmt"
	"sort"

	"github.com/akmonengine/kinetic/actor"
	"github.com/akmonengine/kinetic/collision"
)

type typePair struct {
	lhs, rhs actor.ShapeType
}

type registration struct {
	priority int
	create   func() collision.Algorithm
	stateful bool
}

type assigned struct {
	// shared is the singleton instance for stateless algorithms.
	shared collision.Algorithm
	// create produces a fresh instance per pair for stateful algorithms.
	create   func() collision.Algorithm
	stateful bool
}

// Factory resolves narrowphase algorithms for shape-type pairs. Shapes and
// algorithms are registered up front; Prepopulate then resolves every pair
// permutation once. After Prepopulate returns, the factory is read-only and
// safe for concurrent use by multiple worlds: stateless algorithms are
// shared singletons and stateful ones are instantiated per call.
type Factory struct {
	hierarchy    map[actor.ShapeType]actor.ShapeType
	registry     map[typePair]registration
	algorithms   map[typePair]assigned
	prepopulated bool
}

// NewFactory creates an empty factory. Most callers want to follow up with
// RegisterDefaults.
func NewFactory() *Factory {
	return &Factory{
		hierarchy:  make(map[actor.ShapeType]actor.ShapeType),
		registry:   make(map[typePair]registration),
		algorithms: make(map[typePair]assigned),
	}
}

// RegisterShape records a shape tag and its parent tag. Root tags pass
// actor.ShapeTypeNone as parent.
func (f *Factory) RegisterShape(t, parent actor.ShapeType) {
	f.hierarchy[t] = parent
}

// RegisterAlgorithm records a stateless algorithm for the canonical pair
// (lhs <= rhs). A single instance will be shared by every matching pair.
func (f *Factory) RegisterAlgorithm(lhs, rhs actor.ShapeType, priority int, create func() collision.Algorithm) {
	f.register(lhs, rhs, priority, create, false)
}

// RegisterStatefulAlgorithm records an algorithm that keeps per-pair state;
// a fresh instance is created for every pair that resolves to it.
func (f *Factory) RegisterStatefulAlgorithm(lhs, rhs actor.ShapeType, priority int, create func() collision.Algorithm) {
	f.register(lhs, rhs, priority, create, true)
}

func (f *Factory) register(lhs, rhs actor.ShapeType, priority int, create func() collision.Algorithm, stateful bool) {
	if lhs > rhs {
		panic(fmt.Sprintf("narrowphase: algorithm pair (%d, %d) is not canonical", lhs, rhs))
	}

	f.registry[typePair{lhs, rhs}] = registration{
		priority: priority,
		create:   create,
		stateful: stateful,
	}
}

// RegisterDefaults registers the built-in shape hierarchy and algorithms:
// the generic convex handlers at priority 0 and their specializations above
// them.
func (f *Factory) RegisterDefaults() {
	f.RegisterShape(actor.ShapeTypeConvex, actor.ShapeTypeNone)
	f.RegisterShape(actor.ShapeTypeBox, actor.ShapeTypeConvex)
	f.RegisterShape(actor.ShapeTypeSphere, actor.ShapeTypeConvex)
	f.RegisterShape(actor.ShapeTypeAxisAlignedPlane, actor.ShapeTypeNone)

	f.RegisterAlgorithm(actor.ShapeTypeConvex, actor.ShapeTypeConvex, 0,
		func() collision.Algorithm { return ConvexConvex{} })
	f.RegisterAlgorithm(actor.ShapeTypeConvex, actor.ShapeTypeAxisAlignedPlane, 0,
		func() collision.Algorithm { return ConvexPlane{} })

	f.RegisterAlgorithm(actor.ShapeTypeBox, actor.ShapeTypeBox, 1,
		func() collision.Algorithm { return BoxBox{} })
	f.RegisterAlgorithm(actor.ShapeTypeSphere, actor.ShapeTypeSphere, 1,
		func() collision.Algorithm { return SphereSphere{} })
}

// Prepopulated reports whether Prepopulate has run.
func (f *Factory) Prepopulated() bool {
	return f.prepopulated
}

// Prepopulate enumerates every canonical tag pair and assigns it the best
// algorithm the lattice walk finds; pairs with no match are left out, and
// dispatching one later is a precondition violation. It must be called
// before the factory is handed to a world, and is the point after which the
// factory may be shared across goroutines.
func (f *Factory) Prepopulate() {
	tags := make([]actor.ShapeType, 0, len(f.hierarchy))
	for t := range f.hierarchy {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })

	for i, lhs := range tags {
		for _, rhs := range tags[i:] {
			reg := f.lookup(lhs, rhs)
			if reg == nil {
				continue
			}

			a := assigned{create: reg.create, stateful: reg.stateful}
			if !reg.stateful {
				a.shared = reg.create()
			}
			f.algorithms[typePair{lhs, rhs}] = a
		}
	}

	f.prepopulated = true
}

// lookup walks the lattice: first up the right-hand tag's parent chain, then
// recursively with the left-hand tag replaced by its parent against the
// original right-hand tag. The highest priority anywhere wins; ties keep the
// first match seen.
func (f *Factory) lookup(a, b actor.ShapeType) *registration {
	var result *registration

	for t := b; t != actor.ShapeTypeNone; {
		if reg, ok := f.registry[typePair{a, t}]; ok {
			if result == nil || reg.priority > result.priority {
				r := reg
				result = &r
			}
		}

		parent, ok := f.hierarchy[t]
		if !ok {
			break
		}
		t = parent
	}

	if parent, ok := f.hierarchy[a]; ok && parent != actor.ShapeTypeNone {
		parentResult := f.lookup(parent, b)
		if result == nil || (parentResult != nil && parentResult.priority > result.priority) {
			result = parentResult
		}
	}

	return result
}

// AlgorithmFor returns the algorithm instance for a shape-type pair,
// canonicalizing the order. Stateful algorithms yield a fresh instance per
// call. Calling before Prepopulate is a programming error; an unknown pair
// returns nil.
func (f *Factory) AlgorithmFor(a, b actor.ShapeType) collision.Algorithm {
	if !f.prepopulated {
		panic("narrowphase: AlgorithmFor called before Prepopulate")
	}

	if a > b {
		a, b = b, a
	}

	entry, ok := f.algorithms[typePair{a, b}]
	if !ok {
		return nil
	}

	if entry.stateful {
		return entry.create()
	}
	return entry.shared
}

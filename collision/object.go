// Package collision tracks which objects in a world touch, and where. It
// owns the collision objects, the canonical pair cache fed by broadphase
// overlap events, and the persistent contact manifolds the narrowphase
// algorithms fill in.
package collision

import (
	"github.com/akmonengine/kinetic/actor"
	"github.com/akmonengine/kinetic/broadphase"
)

// OwnerKind tags what kind of body owns a collision object.
type OwnerKind uint8

const (
	OwnerNone OwnerKind = iota
	OwnerDynamic
	OwnerStatic
	OwnerKinematic
)

// Object is a shape placed in a collision world. Bodies own their object and
// mutate its Transform; the collision world owns the broadphase registration
// and the stable id used for pair keys.
//
// OwnerKind and OwnerIndex must agree: OwnerIndex is only meaningful when
// OwnerKind names a body table to index into.
type Object struct {
	Shape       actor.Shape
	Transform   actor.Transform
	Restitution float64

	OwnerKind OwnerKind
	// OwnerIndex is the owning body's current slot in its world table. The
	// dynamics layer keeps it in sync when bodies are reordered.
	OwnerIndex int

	id         uint32
	worldIndex int
	proxy      broadphase.Handle
}

// AABB computes the object's current world bounds.
func (o *Object) AABB() actor.AABB {
	return o.Shape.AABB(o.Transform)
}

// AcceptsForces reports whether the owning body integrates forces.
func (o *Object) AcceptsForces() bool {
	return o.OwnerKind == OwnerDynamic
}

// ID returns the stable dense id assigned when the object was added to a
// world.
func (o *Object) ID() uint32 {
	return o.id
}

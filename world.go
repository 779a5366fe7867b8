// Package kinetic is a real-time 3D rigid-body physics engine. It advances a
// population of static and dynamic bodies through discrete time steps,
// detecting contacts between their shapes with an incremental
// sweep-and-prune broadphase and per-shape-pair narrowphase algorithms, and
// resolving interpenetration and collisions with an island-partitioned
// sequential-impulse solver.
//
// A world is single-threaded cooperative: Step runs to completion before any
// mutator is called, and every structure except the prepopulated narrowphase
// factory belongs to exactly one world.
package kinetic

import (
	"log/slog"

	"github.com/akmonengine/kinetic/actor"
	"github.com/akmonengine/kinetic/collision"
	"github.com/akmonengine/kinetic/island"
	"github.com/akmonengine/kinetic/narrowphase"
	"github.com/akmonengine/kinetic/solver"
	"github.com/go-gl/mathgl/mgl64"
)

// World owns the bodies and the per-step pipeline: broadphase update,
// narrowphase, island building, per-island solving, integration.
type World struct {
	// Gravity is applied to every dynamic body each step.
	Gravity mgl64.Vec3

	algorithms *narrowphase.Factory

	dynamicBodies  []*DynamicBody
	collisionWorld *collision.World
	islands        island.Manager[*DynamicBody]
	solver         *solver.Solver

	// Per-island scratch, reused across steps.
	islandStates     []*solver.BodyState
	islandCollisions []solver.Collision
}

// NewWorld creates a world with default tuning. objectCountHint pre-sizes
// the collision structures; algorithms must be prepopulated before the first
// Step.
func NewWorld(objectCountHint int, algorithms *narrowphase.Factory) *World {
	return NewWorldWithConfig(objectCountHint, algorithms, DefaultConfig())
}

// NewWorldWithConfig creates a world with explicit tuning.
func NewWorldWithConfig(objectCountHint int, algorithms *narrowphase.Factory, cfg Config) *World {
	w := &World{
		Gravity:        cfg.Gravity,
		algorithms:     algorithms,
		collisionWorld: collision.NewWorld(objectCountHint, algorithms),
		solver:         solver.New(cfg.Solver),
	}
	w.collisionWorld.ContactDistance = cfg.ContactDistance
	return w
}

// CreateStaticBody adds an immovable body to the world.
func (w *World) CreateStaticBody(cfg BodyConfig) *StaticBody {
	b := &StaticBody{}
	b.object.Shape = cfg.Shape
	b.object.Transform = normalizedTransform(cfg.Transform)
	b.object.Restitution = cfg.Restitution
	b.object.OwnerKind = collision.OwnerStatic

	// Static bodies are tracked only by collision detection.
	w.collisionWorld.Add(&b.object)
	return b
}

// CreateDynamicBody adds a body with mass to the world.
func (w *World) CreateDynamicBody(cfg DynamicBodyConfig) *DynamicBody {
	b := &DynamicBody{}
	b.object.Shape = cfg.Shape
	b.object.Transform = normalizedTransform(cfg.Transform)
	b.object.Restitution = cfg.Restitution
	b.object.OwnerKind = collision.OwnerDynamic

	b.state.Transform = &b.object.Transform
	b.state.Mass = cfg.Mass

	inertia := cfg.Shape.Inertia(cfg.Mass)
	b.invInertiaLocal = mgl64.Vec3{1 / inertia[0], 1 / inertia[1], 1 / inertia[2]}
	b.updateInertiaWorld()

	b.SetWorldIndex(len(w.dynamicBodies))
	w.dynamicBodies = append(w.dynamicBodies, b)

	w.collisionWorld.Add(&b.object)
	return b
}

// DestroyStaticBody removes a static body and every cached pair involving
// it.
func (w *World) DestroyStaticBody(b *StaticBody) {
	w.collisionWorld.Remove(&b.object)
}

// DestroyDynamicBody removes a dynamic body by swap-and-pop; removal from
// the broadphase implicitly drops all pairs involving it.
func (w *World) DestroyDynamicBody(b *DynamicBody) {
	w.collisionWorld.Remove(&b.object)

	index := b.worldIndex
	if index >= len(w.dynamicBodies) || w.dynamicBodies[index] != b {
		slog.Debug("kinetic: destroy of unknown dynamic body")
		return
	}

	last := len(w.dynamicBodies) - 1
	w.dynamicBodies[index] = w.dynamicBodies[last]
	w.dynamicBodies[index].SetWorldIndex(index)
	w.dynamicBodies = w.dynamicBodies[:last]
}

// DynamicBodies returns the live dynamic bodies. The slice is reordered by
// island every step; the bodies' recorded indices always match their
// positions.
func (w *World) DynamicBodies() []*DynamicBody {
	return w.dynamicBodies
}

// Step advances the simulation by dt seconds.
func (w *World) Step(dt float64) {
	if !w.algorithms.Prepopulated() {
		panic("kinetic: Step before narrowphase factory Prepopulate")
	}

	// Broadphase + narrowphase over everything that may have moved.
	for _, b := range w.dynamicBodies {
		b.ApplyForce(w.Gravity.Mul(b.state.Mass))
		b.updateInertiaWorld()
		w.collisionWorld.Update(&b.object)
	}
	w.collisionWorld.UpdateNarrowphase()

	// Group into islands, solve each.
	manifolds := w.collisionWorld.Manifolds()
	w.islands.BuildAndVisit(w.dynamicBodies, manifolds, dynamicOwnerIndex,
		func(bodies []*DynamicBody, islandManifolds []*collision.Manifold) {
			w.solveIsland(bodies, islandManifolds, dt)
		})

	// Integrate transforms.
	for _, b := range w.dynamicBodies {
		b.object.Transform = actor.IntegrateTransform(
			b.object.Transform, b.state.LinearVelocity, b.state.AngularVelocity, dt)
		b.ClearForces()
	}
}

func (w *World) solveIsland(bodies []*DynamicBody, manifolds []*collision.Manifold, dt float64) {
	w.islandStates = w.islandStates[:0]
	for i, b := range bodies {
		b.solverID = uint32(i)
		w.islandStates = append(w.islandStates, &b.state)
	}

	w.islandCollisions = w.islandCollisions[:0]
	for _, m := range manifolds {
		col := solver.Collision{Manifold: m, Body0: -1, Body1: -1}
		if idx, ok := dynamicOwnerIndex(m.Objects[0]); ok {
			col.Body0 = int(w.dynamicBodies[idx].solverID)
		}
		if idx, ok := dynamicOwnerIndex(m.Objects[1]); ok {
			col.Body1 = int(w.dynamicBodies[idx].solverID)
		}
		w.islandCollisions = append(w.islandCollisions, col)
	}

	w.solver.Solve(w.islandStates, w.islandCollisions, dt)
}

// dynamicOwnerIndex resolves a collision object to its owning dynamic body's
// current world index.
func dynamicOwnerIndex(o *collision.Object) (int, bool) {
	if o.OwnerKind == collision.OwnerDynamic {
		return o.OwnerIndex, true
	}
	return 0, false
}

// normalizedTransform turns the zero value into the identity so body configs
// can omit the transform.
func normalizedTransform(t actor.Transform) actor.Transform {
	if t.Rotation == (mgl64.Mat3{}) {
		t.Rotation = mgl64.Ident3()
	}
	return t
}

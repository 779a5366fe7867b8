package kinetic

import (
	"github.com/akmonengine/kinetic/actor"
	"github.com/akmonengine/kinetic/collision"
	"github.com/akmonengine/kinetic/solver"
	"github.com/go-gl/mathgl/mgl64"
)

// BodyConfig describes a body to create. The shape is caller-owned and must
// outlive the body.
type BodyConfig struct {
	Shape     actor.Shape
	Transform actor.Transform
	// Restitution is the body's bounciness in [0, 1]; a pair's combined
	// restitution is the product of the two.
	Restitution float64
}

// DynamicBodyConfig describes a dynamic body: a BodyConfig plus mass.
type DynamicBodyConfig struct {
	BodyConfig
	Mass float64
}

// StaticBody is an immovable body: it participates in collision detection
// but never integrates forces.
type StaticBody struct {
	object collision.Object
}

// Transform returns the body's world transform.
func (b *StaticBody) Transform() actor.Transform {
	return b.object.Transform
}

// Position returns the body's world position.
func (b *StaticBody) Position() mgl64.Vec3 {
	return b.object.Transform.Position
}

// DynamicBody is a body with mass, integrated every step and resolved
// against its contacts by the solver.
type DynamicBody struct {
	object collision.Object
	state  solver.BodyState

	invInertiaLocal mgl64.Vec3

	islandID   uint32
	solverID   uint32
	worldIndex int
}

// Transform returns the body's world transform.
func (b *DynamicBody) Transform() actor.Transform {
	return b.object.Transform
}

// Position returns the body's world position.
func (b *DynamicBody) Position() mgl64.Vec3 {
	return b.object.Transform.Position
}

// SetTransform teleports the body. The broadphase picks the move up on the
// next step.
func (b *DynamicBody) SetTransform(t actor.Transform) {
	b.object.Transform = t
}

// Mass returns the body's mass.
func (b *DynamicBody) Mass() float64 {
	return b.state.Mass
}

// InvMass returns the body's inverse mass.
func (b *DynamicBody) InvMass() float64 {
	return 1 / b.state.Mass
}

// LinearVelocity returns the body's linear velocity.
func (b *DynamicBody) LinearVelocity() mgl64.Vec3 {
	return b.state.LinearVelocity
}

// SetLinearVelocity replaces the body's linear velocity.
func (b *DynamicBody) SetLinearVelocity(v mgl64.Vec3) {
	b.state.LinearVelocity = v
}

// AngularVelocity returns the body's angular velocity.
func (b *DynamicBody) AngularVelocity() mgl64.Vec3 {
	return b.state.AngularVelocity
}

// SetAngularVelocity replaces the body's angular velocity.
func (b *DynamicBody) SetAngularVelocity(v mgl64.Vec3) {
	b.state.AngularVelocity = v
}

// ApplyForce accumulates a force at the center of mass for the next step.
func (b *DynamicBody) ApplyForce(force mgl64.Vec3) {
	b.state.Force = b.state.Force.Add(force)
}

// ApplyTorque accumulates a torque for the next step.
func (b *DynamicBody) ApplyTorque(torque mgl64.Vec3) {
	b.state.Torque = b.state.Torque.Add(torque)
}

// ClearForces zeroes the accumulated force and torque.
func (b *DynamicBody) ClearForces() {
	b.state.Force = mgl64.Vec3{}
	b.state.Torque = mgl64.Vec3{}
}

// updateInertiaWorld refreshes the world-frame inverse inertia tensor from
// the current rotation: R · diag(I⁻¹) · Rᵀ.
func (b *DynamicBody) updateInertiaWorld() {
	r := b.object.Transform.Rotation

	var scaled mgl64.Mat3
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			scaled.Set(row, col, r.At(row, col)*b.invInertiaLocal[col])
		}
	}

	b.state.InvInertiaWorld = scaled.Mul3(r.Transpose())
}

// IslandID returns the island the body was assigned in the current step.
func (b *DynamicBody) IslandID() uint32 {
	return b.islandID
}

// SetIslandID is called by the island builder.
func (b *DynamicBody) SetIslandID(id uint32) {
	b.islandID = id
}

// SetWorldIndex is called by the island builder when bodies are reordered;
// the collision object's owner index follows so manifolds keep resolving to
// the right slot.
func (b *DynamicBody) SetWorldIndex(i int) {
	b.worldIndex = i
	b.object.OwnerIndex = i
}

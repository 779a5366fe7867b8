package solver

import (
	"github.com/akmonengine/kinetic/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// BodyState is the dynamic state the solver exchanges with a body: the
// dynamics layer fills it before solving and reads velocities (and a
// possibly push-corrected transform) back afterwards.
type BodyState struct {
	// Transform aliases the body's collision transform; the split-impulse
	// pass writes positional corrections through it.
	Transform *actor.Transform

	Mass            float64
	InvInertiaWorld mgl64.Mat3

	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3

	Force  mgl64.Vec3
	Torque mgl64.Vec3
}

// body is the solver-internal cache of one dynamic body: a transform
// snapshot, velocities, the impulse equivalent of the accumulated external
// forces, and the accumulators the iterative passes write into. The zero
// value is the shared zero-inverse-mass stand-in for static objects.
type body struct {
	target *BodyState

	worldTransform actor.Transform

	invMass         float64
	linearVelocity  mgl64.Vec3
	angularVelocity mgl64.Vec3

	appliedForceImpulse  mgl64.Vec3
	appliedTorqueImpulse mgl64.Vec3

	deltaV mgl64.Vec3
	deltaW mgl64.Vec3

	// Split-impulse accumulators, kept apart from deltaV/deltaW so
	// penetration pushes never feed back into the velocity solve.
	pushVel     mgl64.Vec3
	turnVel     mgl64.Vec3
	pushApplied bool
}

func newSolverBody(target *BodyState, dt float64) body {
	b := body{
		target:          target,
		worldTransform:  *target.Transform,
		invMass:         1 / target.Mass,
		linearVelocity:  target.LinearVelocity,
		angularVelocity: target.AngularVelocity,
	}

	b.appliedForceImpulse = target.Force.Mul(b.invMass * dt)
	b.appliedTorqueImpulse = target.InvInertiaWorld.Mul3x1(target.Torque).Mul(dt)

	return b
}

func (b *body) applyPushImpulse(lin, ang mgl64.Vec3, magnitude float64) {
	b.pushVel = b.pushVel.Add(lin.Mul(magnitude))
	b.turnVel = b.turnVel.Add(ang.Mul(magnitude))
	b.pushApplied = true
}

func (b *body) applyImpulse(lin, ang mgl64.Vec3, magnitude float64) {
	b.deltaV = b.deltaV.Add(lin.Mul(magnitude))
	b.deltaW = b.deltaW.Add(ang.Mul(magnitude))
}

// relativeVelocity is the velocity of the body surface at lever arm p,
// external-force impulses included.
func (b *body) relativeVelocity(p mgl64.Vec3) mgl64.Vec3 {
	return b.linearVelocity.Add(b.appliedForceImpulse).
		Add(b.angularVelocity.Add(b.appliedTorqueImpulse).Cross(p))
}

// finish commits the solve: velocity deltas and force impulses land on the
// target, and if the split-impulse pass pushed this body, the transform is
// re-integrated from the snapshot by the push velocities alone.
func (b *body) finish(dt, turnERP float64) {
	b.linearVelocity = b.linearVelocity.Add(b.deltaV)
	b.angularVelocity = b.angularVelocity.Add(b.deltaW)

	b.target.LinearVelocity = b.linearVelocity.Add(b.appliedForceImpulse)
	b.target.AngularVelocity = b.angularVelocity.Add(b.appliedTorqueImpulse)

	if b.pushApplied {
		*b.target.Transform = actor.IntegrateTransform(
			b.worldTransform, b.pushVel, b.turnVel.Mul(turnERP), dt)
	}
}

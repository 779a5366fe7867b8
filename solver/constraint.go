package solver

import (
	"github.com/akmonengine/kinetic/collision"
	"github.com/go-gl/mathgl/mgl64"
)

// contactConstraint is one contact point prepared for iteration: the
// Jacobian diagonal inverse, per-body normal and angular application
// vectors, and the velocity and penetration targets split according to the
// split-impulse threshold.
type contactConstraint struct {
	contact *collision.Contact
	bodies  [2]*body

	normals           [2]mgl64.Vec3
	angularComponent  [2]mgl64.Vec3
	relposCrossNormal [2]mgl64.Vec3

	jacDiagABInv float64
	cfm          float64

	impulse        float64
	appliedImpulse float64

	penetrationImpulse float64
	appliedPushImpulse float64
}

func newContactConstraint(
	cfg *Config, dt float64,
	contact *collision.Contact,
	body0, body1 *body,
	relPos0, relPos1 mgl64.Vec3,
	relativeVel, totalRestitution float64,
) contactConstraint {
	dtInv := 1 / dt

	c := contactConstraint{
		contact: contact,
		bodies:  [2]*body{body0, body1},
		cfm:     cfg.CFM * dtInv,
	}

	n := contact.WorldNormal

	var denom float64

	if body0.target != nil {
		torqueAxis := relPos0.Cross(n)
		angComp := body0.target.InvInertiaWorld.Mul3x1(torqueAxis)

		denom = body0.invMass + n.Dot(angComp.Cross(relPos0))

		c.normals[0] = n
		c.angularComponent[0] = angComp
		c.relposCrossNormal[0] = torqueAxis
	}

	if body1.target != nil {
		torqueAxis := relPos1.Cross(n)
		angComp := body1.target.InvInertiaWorld.Mul3x1(torqueAxis.Mul(-1))

		denom += body1.invMass + n.Dot(angComp.Mul(-1).Cross(relPos1))

		c.normals[1] = n.Mul(-1)
		c.angularComponent[1] = angComp
		c.relposCrossNormal[1] = torqueAxis.Mul(-1)
	}

	c.jacDiagABInv = 1 / (denom + c.cfm)

	// Restitution can only push apart.
	restitution := totalRestitution * -relativeVel
	if restitution < 0 {
		restitution = 0
	}

	vel0DotN := c.normals[0].Dot(body0.linearVelocity.Add(body0.appliedForceImpulse)) +
		c.relposCrossNormal[0].Dot(body0.angularVelocity.Add(body0.appliedTorqueImpulse))
	vel1DotN := c.normals[1].Dot(body1.linearVelocity.Add(body1.appliedForceImpulse)) +
		c.relposCrossNormal[1].Dot(body1.angularVelocity.Add(body1.appliedTorqueImpulse))

	velocityError := restitution - (vel0DotN + vel1DotN)

	penetration := contact.Distance

	var positionalError float64
	if penetration > 0 {
		velocityError -= penetration * dtInv
	} else {
		positionalError = -penetration * cfg.ERP * dtInv
	}

	pImpulse := positionalError * c.jacDiagABInv
	velocityImpulse := velocityError * c.jacDiagABInv

	// Shallow penetration folds into the velocity impulse; anything past
	// the threshold is handed to the split-impulse pass.
	if penetration > cfg.SplitImpulsePenetrationThreshold {
		c.impulse = pImpulse + velocityImpulse
	} else {
		c.impulse = velocityImpulse
		c.penetrationImpulse = pImpulse
	}

	c.cfm *= c.jacDiagABInv

	return c
}

func (c *contactConstraint) lowerLimit() float64 {
	return 0
}

package solver

import (
	"math"

	"github.com/akmonengine/kinetic/collision"
)

// Collision hands one manifold to the solver together with the island-local
// indices of the dynamic bodies owning its two objects; -1 marks a static
// endpoint, which resolves to the shared zero-inverse-mass body.
type Collision struct {
	Manifold *collision.Manifold
	Body0    int
	Body1    int
}

// Solver runs sequential-impulse resolution on one island at a time. Its
// scratch buffers grow to the largest island and are reused, so a Solver
// belongs to exactly one world.
type Solver struct {
	config Config

	dt float64

	bodies   []body
	contacts []contactConstraint

	// static is shared by every static endpoint in the island.
	static body
}

// New creates a solver with the given tuning.
func New(config Config) *Solver {
	return &Solver{config: config}
}

// Solve resolves one island: split-impulse penetration correction first,
// then iterative velocity impulses, then the commit back into the body
// states.
func (s *Solver) Solve(bodies []*BodyState, collisions []Collision, dt float64) {
	s.dt = dt
	s.setup(bodies, collisions)

	s.resolvePenetrations()

	for i := 0; i < s.config.Iterations; i++ {
		if s.solveIteration() <= s.config.ResidualThreshold {
			break
		}
	}

	s.finish()
}

func (s *Solver) setup(bodies []*BodyState, collisions []Collision) {
	s.bodies = s.bodies[:0]
	s.contacts = s.contacts[:0]
	s.static = body{}

	for _, state := range bodies {
		s.bodies = append(s.bodies, newSolverBody(state, s.dt))
	}

	for _, col := range collisions {
		s.addCollision(col)
	}
}

func (s *Solver) addCollision(col Collision) {
	body0 := &s.static
	if col.Body0 >= 0 {
		body0 = &s.bodies[col.Body0]
	}
	body1 := &s.static
	if col.Body1 >= 0 {
		body1 = &s.bodies[col.Body1]
	}

	// Infinite mass is a hard-assigned zero, so no fuzzy check: a contact
	// between two of them can never have reached this point legitimately.
	if body0.invMass == 0 && body1.invMass == 0 {
		panic("solver: contact between two zero-inverse-mass bodies")
	}

	m := col.Manifold
	for i := 0; i < m.PointCount; i++ {
		contact := &m.Points[i]

		relPos0 := contact.WorldPosA.Sub(m.Objects[0].Transform.Position)
		relPos1 := contact.WorldPosB.Sub(m.Objects[1].Transform.Position)

		vel := body0.relativeVelocity(relPos0).Sub(body1.relativeVelocity(relPos1))
		relativeVel := contact.WorldNormal.Dot(vel)

		s.contacts = append(s.contacts, newContactConstraint(
			&s.config, s.dt, contact, body0, body1,
			relPos0, relPos1, relativeVel, m.TotalRestitution))
	}
}

// resolvePenetrations is the split-impulse Gauss-Seidel pass: penetration
// targets are resolved with the push/turn accumulators, leaving the actual
// velocities untouched.
func (s *Solver) resolvePenetrations() {
	for iteration := 0; iteration < s.config.PenetrationIterations; iteration++ {
		residual := 0.0
		for i := range s.contacts {
			residual += math.Abs(s.solvePenetration(&s.contacts[i]))
		}

		if residual <= s.config.ResidualThreshold {
			break
		}
	}
}

func (s *Solver) solveIteration() float64 {
	residual := 0.0

	for i := range s.contacts {
		d := s.solveContact(&s.contacts[i])
		residual += d * d
	}

	return residual
}

func (s *Solver) finish() {
	for i := range s.bodies {
		s.bodies[i].finish(s.dt, s.config.SplitImpulseTurnERP)
	}
}

func (s *Solver) solvePenetration(c *contactConstraint) float64 {
	if c.penetrationImpulse == 0 {
		return 0
	}

	body0 := c.bodies[0]
	body1 := c.bodies[1]

	dImpulse := c.penetrationImpulse - c.appliedPushImpulse*c.cfm

	dv0DotN := c.normals[0].Dot(body0.pushVel) + c.relposCrossNormal[0].Dot(body0.turnVel)
	dv1DotN := c.normals[1].Dot(body1.pushVel) + c.relposCrossNormal[1].Dot(body1.turnVel)

	dImpulse -= dv0DotN * c.jacDiagABInv
	dImpulse -= dv1DotN * c.jacDiagABInv

	newImpulse := c.appliedPushImpulse + dImpulse
	if newImpulse < c.lowerLimit() {
		dImpulse = c.lowerLimit() - c.appliedPushImpulse
		newImpulse = c.lowerLimit()
	}
	c.appliedPushImpulse = newImpulse

	body0.applyPushImpulse(c.normals[0].Mul(body0.invMass), c.angularComponent[0], dImpulse)
	body1.applyPushImpulse(c.normals[1].Mul(body1.invMass), c.angularComponent[1], dImpulse)

	return dImpulse
}

func (s *Solver) solveContact(c *contactConstraint) float64 {
	dImpulse := c.impulse - c.appliedImpulse*c.cfm

	body0 := c.bodies[0]
	body1 := c.bodies[1]

	dv0DotN := c.normals[0].Dot(body0.deltaV) + c.relposCrossNormal[0].Dot(body0.deltaW)
	dv1DotN := c.normals[1].Dot(body1.deltaV) + c.relposCrossNormal[1].Dot(body1.deltaW)

	dImpulse -= dv0DotN * c.jacDiagABInv
	dImpulse -= dv1DotN * c.jacDiagABInv

	// Clamping at the lower bound zeroes the delta at the previously
	// accumulated value.
	newImpulse := c.appliedImpulse + dImpulse
	if newImpulse < c.lowerLimit() {
		dImpulse = c.lowerLimit() - c.appliedImpulse
		newImpulse = c.lowerLimit()
	}
	c.appliedImpulse = newImpulse

	body0.applyImpulse(c.normals[0].Mul(body0.invMass), c.angularComponent[0], dImpulse)
	body1.applyImpulse(c.normals[1].Mul(body1.invMass), c.angularComponent[1], dImpulse)

	return dImpulse
}

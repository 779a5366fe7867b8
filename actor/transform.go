package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform places a shape in world space: a rotation matrix plus a
// translation. Rotation is kept as a matrix because the collision pipeline
// applies it to many points per step; quaternions are only used transiently
// during integration.
type Transform struct {
	Rotation mgl64.Mat3
	Position mgl64.Vec3
}

// NewTransform creates an identity transform.
func NewTransform() Transform {
	return Transform{Rotation: mgl64.Ident3()}
}

// NewTransformFromQuat creates a transform from a rotation quaternion and a
// translation.
func NewTransformFromQuat(rotation mgl64.Quat, position mgl64.Vec3) Transform {
	return Transform{Rotation: rotation.Mat4().Mat3(), Position: position}
}

// SetRotation replaces the rotation with the matrix form of a quaternion.
func (t *Transform) SetRotation(q mgl64.Quat) {
	t.Rotation = q.Mat4().Mat3()
}

// Quat returns the rotation as a quaternion.
func (t Transform) Quat() mgl64.Quat {
	return mgl64.Mat4ToQuat(t.Rotation.Mat4())
}

// Apply transforms a point from local space to world space.
func (t Transform) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Mul3x1(p).Add(t.Position)
}

// ApplyInverse transforms a world-space point into local space.
func (t Transform) ApplyInverse(p mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Transpose().Mul3x1(p.Sub(t.Position))
}

// Inverse returns the transform mapping world space back to local space.
func (t Transform) Inverse() Transform {
	invRot := t.Rotation.Transpose()
	return Transform{
		Rotation: invRot,
		Position: invRot.Mul3x1(t.Position).Mul(-1),
	}
}

// IsIdentity reports whether the transform is exactly the identity.
func (t Transform) IsIdentity() bool {
	return t == NewTransform()
}

// IntegrateTransform advances a transform by linear and angular velocity over
// dt. The rotation delta is built from the exponential map; for small angles
// the sin(θ)/θ factor is replaced by its Taylor expansion to avoid
// catastrophic cancellation.
func IntegrateTransform(t Transform, linVel, angVel mgl64.Vec3, dt float64) Transform {
	var out Transform
	out.Position = t.Position.Add(linVel.Mul(dt))

	angle := angVel.Len()

	var axis mgl64.Vec3
	if angle*dt < 2e-3 {
		axis = angVel.Mul(0.5*dt - (dt*dt*dt)*(1.0/48.0)*angle*angle)
	} else {
		axis = angVel.Mul(math.Sin(0.5*angle*dt) / angle)
	}

	delta := mgl64.Quat{W: math.Cos(0.5 * angle * dt), V: axis}
	out.SetRotation(delta.Mul(t.Quat()).Normalize())
	return out
}

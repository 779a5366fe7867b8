package actor

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ShapeType tags a collision shape. Tags form a single-parent hierarchy used
// by the narrowphase factory to fall back to more generic algorithms: a Box
// with no bespoke algorithm against some shape is handled as a Convex.
// User-defined shapes register their own tags with the factory.
type ShapeType int32

const (
	ShapeTypeConvex ShapeType = iota
	ShapeTypeBox
	ShapeTypeSphere
	ShapeTypeAxisAlignedPlane
)

// ShapeTypeNone marks the root of the hierarchy (no parent).
const ShapeTypeNone ShapeType = -1

// Shape is a collision shape. Shapes are immutable during a step and are
// owned by the caller; they must outlive every body referencing them.
type Shape interface {
	// Type returns the shape's tag.
	Type() ShapeType
	// AABB computes the world bounds of the shape under a transform.
	AABB(transform Transform) AABB
	// Inertia returns the diagonal of the local inertia tensor for a mass.
	Inertia(mass float64) mgl64.Vec3
}

// Convex is a shape that answers support queries: the vertex of the shape
// farthest along a direction, in the shape's local frame. Implementations
// may assume a unit direction: Sphere's support is the direction scaled by
// its radius, so a longer direction yields a point off its surface.
type Convex interface {
	Shape
	Support(direction mgl64.Vec3) mgl64.Vec3
}

// Sphere is a spherical collision shape.
type Sphere struct {
	Radius float64
}

func (s *Sphere) Type() ShapeType { return ShapeTypeSphere }

// AABB is not affected by rotation, only by position.
func (s *Sphere) AABB(transform Transform) AABB {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	return AABB{
		Min: transform.Position.Sub(r),
		Max: transform.Position.Add(r),
	}
}

func (s *Sphere) Inertia(mass float64) mgl64.Vec3 {
	elem := 0.4 * mass * s.Radius * s.Radius
	return mgl64.Vec3{elem, elem, elem}
}

func (s *Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	return direction.Mul(s.Radius)
}

// Box is an oriented box defined by its half-extents.
type Box struct {
	HalfExtent mgl64.Vec3
}

func (b *Box) Type() ShapeType { return ShapeTypeBox }

func (b *Box) AABB(transform Transform) AABB {
	return NewAABBFromHalfExtent(b.HalfExtent, transform)
}

func (b *Box) Inertia(mass float64) mgl64.Vec3 {
	size := b.HalfExtent.Mul(2)
	sizeSq := mgl64.Vec3{size[0] * size[0], size[1] * size[1], size[2] * size[2]}

	return mgl64.Vec3{
		mass / 12.0 * (sizeSq[1] + sizeSq[2]),
		mass / 12.0 * (sizeSq[0] + sizeSq[2]),
		mass / 12.0 * (sizeSq[0] + sizeSq[1]),
	}
}

func (b *Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	var p mgl64.Vec3
	for i := 0; i < 3; i++ {
		if direction[i] >= 0 {
			p[i] = b.HalfExtent[i]
		} else {
			p[i] = -b.HalfExtent[i]
		}
	}
	return p
}

// AxisAlignedPlane is an infinite plane normal to one of the world axes.
// Infinite planes are only supported when aligned with an axis, otherwise
// they would need an infinite AABB on all three axes, which would be very
// expensive for the broadphase (and a Y=0 floor is the overwhelmingly common
// case). The owning body must keep an identity transform.
type AxisAlignedPlane struct {
	// Axis is the normal axis: 0, 1 or 2.
	Axis int
	// Distance is the signed distance of the plane from the origin along
	// the normal axis.
	Distance float64
}

func (p *AxisAlignedPlane) Type() ShapeType { return ShapeTypeAxisAlignedPlane }

func (p *AxisAlignedPlane) AABB(transform Transform) AABB {
	if !transform.IsIdentity() {
		panic("kinetic: axis-aligned plane requires an identity transform")
	}

	huge := math.MaxFloat64
	bounds := AABB{
		Min: mgl64.Vec3{-huge, -huge, -huge},
		Max: mgl64.Vec3{huge, huge, huge},
	}
	bounds.Min[p.Axis] = p.Distance - 0.1
	bounds.Max[p.Axis] = p.Distance + 0.1
	return bounds
}

// Normal returns the positive basis vector of the plane's axis.
func (p *AxisAlignedPlane) Normal() mgl64.Vec3 {
	var n mgl64.Vec3
	n[p.Axis] = 1
	return n
}

func (p *AxisAlignedPlane) Inertia(mass float64) mgl64.Vec3 {
	panic(fmt.Sprintf("kinetic: inertia of an infinite plane is undefined (mass %v)", mass))
}

package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// NewAABBFromHalfExtent bounds an oriented box of the given half-extent under
// a transform: the rotated extent is |R|·h, taken componentwise.
func NewAABBFromHalfExtent(halfExtent mgl64.Vec3, transform Transform) AABB {
	r := transform.Rotation
	rotated := mgl64.Vec3{
		math.Abs(r.At(0, 0))*halfExtent[0] + math.Abs(r.At(0, 1))*halfExtent[1] + math.Abs(r.At(0, 2))*halfExtent[2],
		math.Abs(r.At(1, 0))*halfExtent[0] + math.Abs(r.At(1, 1))*halfExtent[1] + math.Abs(r.At(1, 2))*halfExtent[2],
		math.Abs(r.At(2, 0))*halfExtent[0] + math.Abs(r.At(2, 1))*halfExtent[1] + math.Abs(r.At(2, 2))*halfExtent[2],
	}

	return AABB{
		Min: transform.Position.Sub(rotated),
		Max: transform.Position.Add(rotated),
	}
}

// Overlaps checks if two AABBs overlap on all three axes.
func (a AABB) Overlaps(other AABB) bool {
	return a.Max.X() >= other.Min.X() && a.Min.X() <= other.Max.X() &&
		a.Max.Y() >= other.Min.Y() && a.Min.Y() <= other.Max.Y() &&
		a.Max.Z() >= other.Min.Z() && a.Min.Z() <= other.Max.Z()
}

// ContainsPoint checks if a point is inside the AABB.
func (a AABB) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= a.Min.X() && point.X() <= a.Max.X() &&
		point.Y() >= a.Min.Y() && point.Y() <= a.Max.Y() &&
		point.Z() >= a.Min.Z() && point.Z() <= a.Max.Z()
}

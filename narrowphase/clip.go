package narrowphase

import "github.com/go-gl/mathgl/mgl64"

const (
	// epsilonColinear detects reference edges parallel to the contact
	// normal, which contribute no lateral clipping plane.
	epsilonColinear = 1e-6

	// epsilonDistance is the inside/outside tolerance for clipping; points
	// within it of a plane count as inside.
	epsilonDistance = 1e-6
)

// clipFaceAgainstSides clips the incident polygon against the side planes of
// the reference face (one plane per reference edge, perpendicular to the
// contact normal, facing the face interior). The result is the part of the
// incident face laterally inside the reference face.
func clipFaceAgainstSides(incident, reference []mgl64.Vec3, normal mgl64.Vec3, scratch []mgl64.Vec3) []mgl64.Vec3 {
	if len(reference) < 2 {
		return incident
	}

	center := polygonCenter(reference)

	input := incident
	output := scratch[:0]

	for i := range reference {
		if len(input) == 0 {
			break
		}

		v1 := reference[i]
		v2 := reference[(i+1)%len(reference)]

		edge := v2.Sub(v1)
		clipNormal := edge.Cross(normal)

		length := clipNormal.Len()
		if length < epsilonColinear {
			continue
		}
		clipNormal = clipNormal.Mul(1 / length)

		if center.Sub(v1).Dot(clipNormal) < 0 {
			clipNormal = clipNormal.Mul(-1)
		}

		output = clipPolygonAgainstPlane(input, v1, clipNormal, output[:0])
		input, output = output, input
	}

	return input
}

// clipPolygonAgainstPlane runs one Sutherland-Hodgman pass, keeping the part
// of the polygon on the plane normal's side.
func clipPolygonAgainstPlane(input []mgl64.Vec3, planePoint, planeNormal mgl64.Vec3, output []mgl64.Vec3) []mgl64.Vec3 {
	for i := range input {
		current := input[i]
		next := input[(i+1)%len(input)]

		currentDist := current.Sub(planePoint).Dot(planeNormal)
		nextDist := next.Sub(planePoint).Dot(planeNormal)

		if currentDist >= -epsilonDistance {
			output = append(output, current)
			if nextDist < -epsilonDistance {
				output = append(output, lineIntersectPlane(current, next, planePoint, planeNormal))
			}
		} else if nextDist >= -epsilonDistance {
			output = append(output, lineIntersectPlane(current, next, planePoint, planeNormal))
		}
	}
	return output
}

func lineIntersectPlane(from, to, planePoint, planeNormal mgl64.Vec3) mgl64.Vec3 {
	direction := to.Sub(from)
	denom := direction.Dot(planeNormal)
	if denom > -1e-10 && denom < 1e-10 {
		return from
	}

	t := planePoint.Sub(from).Dot(planeNormal) / denom
	return from.Add(direction.Mul(t))
}

func polygonCenter(points []mgl64.Vec3) mgl64.Vec3 {
	var center mgl64.Vec3
	for _, p := range points {
		center = center.Add(p)
	}
	return center.Mul(1 / float64(len(points)))
}

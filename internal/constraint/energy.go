package constraint

import (
	gomath "math"

	"github.com/Faultbox/clothsim/pkg/math"
	"github.com/Faultbox/clothsim/pkg/mesh"
)

// signedDihedral returns the signed angle between the normals of triangles
// (v2, v0, v1) and (v3, v1, v0), measured about the shared edge v0 -> v1.
func signedDihedral(pos []float32, v0, v1, v2, v3 int) float32 {
	x0, x1 := math.At(pos, v0), math.At(pos, v1)
	n1 := mesh.TriangleNormal(math.At(pos, v2), x0, x1)
	n2 := mesh.TriangleNormal(math.At(pos, v3), x1, x0)

	cos := math.Clamp(n1.Dot(n2), -1, 1)
	angle := float32(gomath.Acos(float64(cos)))
	if x1.Sub(x0).Dot(n1.Cross(n2)) < 0 {
		return -angle
	}
	return angle
}

// RestBendingAngles returns the signed dihedral angle of every quad in pos.
func RestBendingAngles(pos []float32, quads []int32) []float32 {
	angles := make([]float32, len(quads)/4)
	for i := range angles {
		angles[i] = signedDihedral(pos,
			int(quads[4*i]), int(quads[4*i+1]), int(quads[4*i+2]), int(quads[4*i+3]))
	}
	return angles
}

// HingeEnergy returns the discrete-shell bending energy of one quad,
// 3|e|^2/(2A) * (theta - theta0)^2, with theta the signed dihedral angle.
func HingeEnergy(pos []float32, v0, v1, v2, v3 int, theta0 float32) float32 {
	x0, x1 := math.At(pos, v0), math.At(pos, v1)
	x2, x3 := math.At(pos, v2), math.At(pos, v3)

	e := x1.Sub(x0)
	el := e.Length()
	if el < 1e-12 {
		return 0
	}

	n0 := x0.Sub(x1).Cross(x2.Sub(x1))
	n1 := x3.Sub(x1).Cross(x0.Sub(x1))
	n0l, n1l := n0.Length(), n1.Length()
	area := 0.5 * (n0l + n1l)
	if area < 1e-15 || n0l < 1e-12 || n1l < 1e-12 {
		return 0
	}
	n0 = n0.Scale(1 / n0l)
	n1 = n1.Scale(1 / n1l)

	x := math.Clamp(n0.Dot(n1), -1, 1)
	y := e.Scale(1 / el).Dot(n0.Cross(n1))
	theta := float32(gomath.Atan2(float64(y), float64(x)))

	dTheta := theta - theta0
	return 3 * el * el / (2 * area) * dTheta * dTheta
}

// IsometricEnergy returns the quadratic isometric bending energy of one quad,
// 3/A * sum_pq c_p c_q (x_p . x_q), with weights taken from pos itself.
func IsometricEnergy(pos []float32, v0, v1, v2, v3 int) float32 {
	c, area := isometricWeights(pos, v0, v1, v2, v3)
	if area < 1e-15 {
		return 0
	}

	x := [4]math.Vec3{math.At(pos, v0), math.At(pos, v1), math.At(pos, v2), math.At(pos, v3)}
	var energy float32
	for p := 0; p < 4; p++ {
		for q := 0; q < 4; q++ {
			energy += c[p] * c[q] * x[p].Dot(x[q])
		}
	}
	return 3 * energy / area
}

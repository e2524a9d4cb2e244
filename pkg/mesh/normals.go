package mesh

import (
	gomath "math"

	"github.com/Faultbox/clothsim/pkg/math"
)

// VertexNormals writes area-weighted vertex normals for tris into out, which
// must have the length of pos. Vertices with no non-degenerate face get zero.
func VertexNormals(pos []float32, tris []int32, out []float32) {
	for i := range out {
		out[i] = 0
	}
	for t := 0; t+2 < len(tris); t += 3 {
		a, b, c := int(tris[t]), int(tris[t+1]), int(tris[t+2])
		pa := math.At(pos, a)
		n := math.At(pos, b).Sub(pa).Cross(math.At(pos, c).Sub(pa))
		math.AddAt(out, a, n, 1)
		math.AddAt(out, b, n, 1)
		math.AddAt(out, c, n, 1)
	}
	for i := 0; i < len(out)/3; i++ {
		if l2 := math.VecLengthSquared(out, i); l2 > 0 {
			math.VecScale(out, i, 1/math.Sqrt(l2))
		}
	}
}

// UVSphere builds a unit sphere with the given number of longitudinal slices
// and latitudinal stacks. Poles are duplicated per slice so that every stack
// is a plain strip.
func UVSphere(slices, stacks int) Mesh {
	if slices < 3 {
		slices = 3
	}
	if stacks < 2 {
		stacks = 2
	}

	vertices := make([]float32, 0, 3*(slices+1)*(stacks+1))
	for j := 0; j <= stacks; j++ {
		phi := gomath.Pi * float64(j) / float64(stacks)
		y := gomath.Cos(phi)
		r := gomath.Sin(phi)
		for i := 0; i <= slices; i++ {
			theta := 2 * gomath.Pi * float64(i) / float64(slices)
			vertices = append(vertices,
				float32(r*gomath.Sin(theta)),
				float32(y),
				float32(r*gomath.Cos(theta)))
		}
	}

	triangles := make([]int32, 0, 6*slices*stacks)
	row := int32(slices + 1)
	for j := int32(0); j < int32(stacks); j++ {
		for i := int32(0); i < int32(slices); i++ {
			a := j*row + i
			b := a + row
			triangles = append(triangles, a, b, a+1, a+1, b, b+1)
		}
	}

	return Mesh{Vertices: vertices, Triangles: triangles}
}

package mesh

import (
	"fmt"

	"github.com/Faultbox/clothsim/pkg/math"
)

// GridSpec describes a rectangular cloth patch.
type GridSpec struct {
	Cols   int
	Rows   int
	Width  float32
	Height float32
	Origin math.Vec3
	Angle  float32 // rotation about the X axis, radians
}

// TopCorners returns the ids of the two corners of the first row.
func (g GridSpec) TopCorners() []int32 {
	return []int32{0, int32(g.Cols - 1)}
}

// BuildGrid generates a cols x rows vertex grid in the XY plane, centred on x,
// with the first row at the top. Cells are split along alternating diagonals.
// A non-zero angle tilts the sheet about X before it is moved to the origin.
func BuildGrid(g GridSpec) (Mesh, error) {
	if g.Cols < 2 || g.Rows < 2 {
		return Mesh{}, fmt.Errorf("%w: %dx%d", ErrGridTooSmall, g.Cols, g.Rows)
	}

	cellW := g.Width / float32(g.Cols-1)
	cellH := g.Height / float32(g.Rows-1)
	xOffset := -g.Width / 2
	yOffset := g.Height / 2

	tilt := math.QuatFromAxisAngle(math.Vec3{X: 1}, g.Angle)

	vertices := make([]float32, 0, 3*g.Cols*g.Rows)
	for j := 0; j < g.Rows; j++ {
		for i := 0; i < g.Cols; i++ {
			p := math.Vec3{
				X: xOffset + float32(i)*cellW,
				Y: yOffset - float32(j)*cellH,
			}
			if g.Angle != 0 {
				p = tilt.Rotate(p)
			}
			p = p.Add(g.Origin)
			vertices = append(vertices, p.X, p.Y, p.Z)
		}
	}

	triangles := make([]int32, 0, 6*(g.Cols-1)*(g.Rows-1))
	flip := false
	for row := 0; row < g.Rows-1; row++ {
		for col := 0; col < g.Cols-1; col++ {
			v0 := int32(row*g.Cols + col)
			v1 := v0 + 1
			v2 := int32((row+1)*g.Cols + col)
			v3 := v2 + 1

			if flip {
				triangles = append(triangles, v0, v2, v1, v1, v2, v3)
			} else {
				triangles = append(triangles, v0, v3, v1, v2, v3, v0)
			}
			flip = !flip
		}
	}

	return Mesh{Vertices: vertices, Triangles: triangles}, nil
}

// Package mesh provides triangle mesh topology and geometry helpers for cloth simulation.
//
// Index arrays are flat: triangles use stride 3, edges stride 2 and bending
// quads stride 4 (v0, v1 on the shared edge, v2, v3 the two apex vertices).
package mesh

import (
	"errors"
	"fmt"
)

var (
	// ErrVertexStride is returned when a position buffer is not a multiple of 3.
	ErrVertexStride = errors.New("mesh: vertex buffer length is not a multiple of 3")
	// ErrTriangleStride is returned when a triangle index array is not a multiple of 3.
	ErrTriangleStride = errors.New("mesh: triangle index length is not a multiple of 3")
	// ErrIndexRange is returned when an index does not address an existing vertex.
	ErrIndexRange = errors.New("mesh: vertex index out of range")
	// ErrGridTooSmall is returned by BuildGrid for fewer than 2 columns or rows.
	ErrGridTooSmall = errors.New("mesh: grid needs at least 2 columns and 2 rows")
)

// Mesh is a triangle mesh with flat buffers.
type Mesh struct {
	Vertices  []float32 // x,y,z per vertex
	Triangles []int32   // v0,v1,v2 per face
}

// NumVertices returns the vertex count.
func (m Mesh) NumVertices() int {
	return len(m.Vertices) / 3
}

// NumTriangles returns the face count.
func (m Mesh) NumTriangles() int {
	return len(m.Triangles) / 3
}

// Validate checks buffer strides and index ranges.
func (m Mesh) Validate() error {
	if len(m.Vertices)%3 != 0 {
		return fmt.Errorf("%w: got %d floats", ErrVertexStride, len(m.Vertices))
	}
	if len(m.Triangles)%3 != 0 {
		return fmt.Errorf("%w: got %d indices", ErrTriangleStride, len(m.Triangles))
	}
	return CheckIndices(m.Triangles, m.NumVertices())
}

// CheckIndices verifies every index addresses one of numVertices vertices.
func CheckIndices(ids []int32, numVertices int) error {
	for i, id := range ids {
		if id < 0 || int(id) >= numVertices {
			return fmt.Errorf("%w: index %d at position %d (vertices: %d)", ErrIndexRange, id, i, numVertices)
		}
	}
	return nil
}

package mesh

import (
	"fmt"
	"sort"
)

type halfEdge struct {
	v0, v1 int32 // v0 < v1
	edgeID int32 // 3*tri + k
}

// FindNeighbors pairs the half-edges of every triangle with their sibling in
// the adjacent triangle. Entry 3*tri+k of the result holds the flat index of
// the sibling of edge k (vertices k and k+1) of triangle tri, or -1 for a
// boundary edge.
func FindNeighbors(tris []int32) ([]int32, error) {
	if len(tris)%3 != 0 {
		return nil, fmt.Errorf("%w: got %d indices", ErrTriangleStride, len(tris))
	}
	numTris := len(tris) / 3

	edges := make([]halfEdge, 0, 3*numTris)
	for tri := 0; tri < numTris; tri++ {
		for k := 0; k < 3; k++ {
			v0 := tris[3*tri+k]
			v1 := tris[3*tri+(k+1)%3]
			if v0 > v1 {
				v0, v1 = v1, v0
			}
			edges = append(edges, halfEdge{v0: v0, v1: v1, edgeID: int32(3*tri + k)})
		}
	}

	// Shared edges end up next to each other.
	sort.SliceStable(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		return a.v0 < b.v0 || (a.v0 == b.v0 && a.v1 < b.v1)
	})

	neighbors := make([]int32, 3*numTris)
	for i := range neighbors {
		neighbors[i] = -1
	}

	for nr := 0; nr < len(edges); {
		e0 := edges[nr]
		nr++
		if nr < len(edges) {
			e1 := edges[nr]
			if e0.v0 == e1.v0 && e0.v1 == e1.v1 {
				neighbors[e0.edgeID] = e1.edgeID
				neighbors[e1.edgeID] = e0.edgeID
				nr++
			}
		}
	}

	return neighbors, nil
}

// EdgeList returns every mesh edge once as (v0, v1) pairs. Boundary edges are
// emitted as they appear; shared edges only from the side where v0 < v1.
func EdgeList(tris []int32) ([]int32, error) {
	neighbors, err := FindNeighbors(tris)
	if err != nil {
		return nil, err
	}

	edges := make([]int32, 0, len(tris))
	for tri := 0; tri < len(tris)/3; tri++ {
		for k := 0; k < 3; k++ {
			v0 := tris[3*tri+k]
			v1 := tris[3*tri+(k+1)%3]
			if neighbors[3*tri+k] < 0 || v0 < v1 {
				edges = append(edges, v0, v1)
			}
		}
	}
	return edges, nil
}

// BendingQuads returns one (v0, v1, v2, v3) quad for every half-edge that has
// a sibling, so each interior edge is emitted twice with the apexes swapped.
// Rest angles and bending coefficients are tuned against this count.
func BendingQuads(tris []int32) ([]int32, error) {
	return bendingQuads(tris, false)
}

// UniqueBendingQuads returns exactly one quad per interior edge, keeping the
// visit from the side where v0 < v1.
func UniqueBendingQuads(tris []int32) ([]int32, error) {
	return bendingQuads(tris, true)
}

func bendingQuads(tris []int32, unique bool) ([]int32, error) {
	neighbors, err := FindNeighbors(tris)
	if err != nil {
		return nil, err
	}

	var quads []int32
	for tri := 0; tri < len(tris)/3; tri++ {
		for k := 0; k < 3; k++ {
			n := neighbors[3*tri+k]
			if n < 0 {
				continue
			}
			v0 := tris[3*tri+k]
			v1 := tris[3*tri+(k+1)%3]
			if unique && v0 > v1 {
				continue
			}

			nTri := n / 3
			nLocal := n % 3
			v2 := tris[3*tri+(k+2)%3]
			v3 := tris[3*nTri+(nLocal+2)%3]

			quads = append(quads, v0, v1, v2, v3)
		}
	}
	return quads, nil
}

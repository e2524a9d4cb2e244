package constraint

import (
	gomath "math"

	"github.com/Faultbox/clothsim/pkg/math"
)

// EdgeStretching keeps every mesh edge at its rest length.
type EdgeStretching struct {
	Base
	invMass     []float32
	edges       []int32
	restLengths []float32
}

// NewEdgeStretching builds one distance constraint per entry of ctx.EdgeVertexIDs.
func NewEdgeStretching(ctx Context) (*EdgeStretching, error) {
	edges, err := ctx.indices("edge ids", ctx.EdgeVertexIDs, 2, true)
	if err != nil {
		return nil, err
	}

	c := &EdgeStretching{
		Base:        newBase(ctx),
		invMass:     ctx.InvMass,
		edges:       edges,
		restLengths: make([]float32, len(edges)/2),
	}
	for i := range c.restLengths {
		c.restLengths[i] = restDistance(ctx.RestPos, int(edges[2*i]), int(edges[2*i+1]))
	}
	return c, nil
}

// Solve runs one projection pass over all edges.
func (c *EdgeStretching) Solve(pos []float32, dt float32) {
	k := c.Stiffness
	for i, rest := range c.restLengths {
		projectDistance(pos, c.invMass, int(c.edges[2*i]), int(c.edges[2*i+1]), rest, k)
	}
}

// Residual returns the largest |length - rest length| over all edges.
func (c *EdgeStretching) Residual(pos []float32) float32 {
	var worst float32
	for i, rest := range c.restLengths {
		l := math.Sqrt(math.VecDistSquared(pos, int(c.edges[2*i]), pos, int(c.edges[2*i+1])))
		worst = float32(gomath.Max(float64(worst), gomath.Abs(float64(l-rest))))
	}
	return worst
}

// Len returns the number of edges.
func (c *EdgeStretching) Len() int {
	return len(c.restLengths)
}

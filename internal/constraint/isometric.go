package constraint

import (
	"github.com/Faultbox/clothsim/pkg/math"
	"github.com/Faultbox/clothsim/pkg/mesh"
)

const (
	isoMinArea = 1e-15
	isoEps     = 1e-12
)

// IsometricBending penalises the discrete mean curvature S = sum(c_i x_i) of
// every bending quad, with cotangent weights c fixed at rest.
type IsometricBending struct {
	Base
	invMass []float32
	quads   []int32
	coeffs  []isoCoeff
}

type isoCoeff struct {
	c     [4]float32
	scale float32 // sqrt(3 / (2A))
}

// isometricWeights returns the cotangent Laplacian weights of the quad and
// the area of its two triangles.
func isometricWeights(pos []float32, v0, v1, v2, v3 int) ([4]float32, float32) {
	area := mesh.TriangleArea(pos, v1, v0, v2) + mesh.TriangleArea(pos, v1, v0, v3)

	cot01 := mesh.CotAtVertex(pos, v0, v1, v2)
	cot02 := mesh.CotAtVertex(pos, v0, v1, v3)
	cot03 := mesh.CotAtVertex(pos, v1, v0, v2)
	cot04 := mesh.CotAtVertex(pos, v1, v0, v3)

	return [4]float32{
		cot03 + cot04,
		cot01 + cot02,
		-cot01 - cot03,
		-cot02 - cot04,
	}, area
}

// NewIsometricBending builds one curvature constraint per bending quad.
func NewIsometricBending(ctx Context) (*IsometricBending, error) {
	quads, err := ctx.indices("bending ids", ctx.BendingVertexIDs, 4, true)
	if err != nil {
		return nil, err
	}

	c := &IsometricBending{
		Base:    newBase(ctx),
		invMass: ctx.InvMass,
		quads:   quads,
		coeffs:  make([]isoCoeff, len(quads)/4),
	}
	for i := range c.coeffs {
		v0, v1, v2, v3 := c.quad(i)
		w, area := isometricWeights(ctx.RestPos, v0, v1, v2, v3)
		c.coeffs[i] = isoCoeff{c: w, scale: math.Sqrt(3 / (2 * maxf(isoMinArea, area)))}
	}
	return c, nil
}

func (c *IsometricBending) quad(i int) (int, int, int, int) {
	return int(c.quads[4*i]), int(c.quads[4*i+1]), int(c.quads[4*i+2]), int(c.quads[4*i+3])
}

func (c *IsometricBending) curvature(pos []float32, i int) math.Vec3 {
	v0, v1, v2, v3 := c.quad(i)
	w := c.coeffs[i].c
	return math.At(pos, v0).Scale(w[0]).
		AddScaled(math.At(pos, v1), w[1]).
		AddScaled(math.At(pos, v2), w[2]).
		AddScaled(math.At(pos, v3), w[3])
}

// Solve runs one projection pass over all quads.
func (c *IsometricBending) Solve(pos []float32, dt float32) {
	k := c.Stiffness
	for i, co := range c.coeffs {
		s := c.curvature(pos, i)
		sLen := s.Length()
		if sLen < isoEps {
			continue
		}
		C := co.scale * sLen
		n := s.Scale(1 / sLen)

		v0, v1, v2, v3 := c.quad(i)
		ids := [4]int{v0, v1, v2, v3}

		var g [4]float32 // scale * c_i, gradient is g_i * n
		var wEff float32
		for p, id := range ids {
			g[p] = co.scale * co.c[p]
			wEff += c.invMass[id] * g[p] * g[p]
		}
		if wEff < isoEps {
			continue
		}

		lambda := -k * C / wEff
		for p, id := range ids {
			math.AddAt(pos, id, n, lambda*c.invMass[id]*g[p])
		}
	}
}

// Residual returns the largest constraint value scale*|S| over all quads.
func (c *IsometricBending) Residual(pos []float32) float32 {
	var worst float32
	for i, co := range c.coeffs {
		worst = maxf(worst, co.scale*c.curvature(pos, i).Length())
	}
	return worst
}

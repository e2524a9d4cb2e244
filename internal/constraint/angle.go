package constraint

import (
	gomath "math"

	"github.com/Faultbox/clothsim/pkg/math"
)

const (
	angleMinEdge = 1e-8
	angleMinC    = 1e-6
	angleMinDen  = 1e-3
)

// TriangleAngle preserves the cosine of all three interior angles of every
// triangle.
type TriangleAngle struct {
	Base
	invMass []float32
	tris    []int32
	restCos []float32 // three per triangle, corner order 0, 1, 2
}

// NewTriangleAngle builds three angle constraints per entry of ctx.TriangleVertexIDs.
func NewTriangleAngle(ctx Context) (*TriangleAngle, error) {
	tris, err := ctx.indices("triangle ids", ctx.TriangleVertexIDs, 3, true)
	if err != nil {
		return nil, err
	}

	c := &TriangleAngle{
		Base:    newBase(ctx),
		invMass: ctx.InvMass,
		tris:    tris,
		restCos: make([]float32, len(tris)),
	}
	for t := 0; t < len(tris)/3; t++ {
		i0, i1, i2 := int(tris[3*t]), int(tris[3*t+1]), int(tris[3*t+2])
		c.restCos[3*t] = cornerCos(ctx.RestPos, i0, i1, i2)
		c.restCos[3*t+1] = cornerCos(ctx.RestPos, i1, i2, i0)
		c.restCos[3*t+2] = cornerCos(ctx.RestPos, i2, i0, i1)
	}
	return c, nil
}

// cornerCos returns the cosine of the angle at i between j and k, or 1 when
// either edge has zero length.
func cornerCos(pos []float32, i, j, k int) float32 {
	xi := math.At(pos, i)
	u := math.At(pos, j).Sub(xi)
	v := math.At(pos, k).Sub(xi)
	lu, lv := u.Length(), v.Length()
	if lu == 0 || lv == 0 {
		return 1
	}
	return u.Dot(v) / (lu * lv)
}

// Solve runs one projection pass over every corner of every triangle.
func (c *TriangleAngle) Solve(pos []float32, dt float32) {
	k := c.Stiffness
	for t := 0; t < len(c.tris)/3; t++ {
		i0, i1, i2 := int(c.tris[3*t]), int(c.tris[3*t+1]), int(c.tris[3*t+2])
		c.solveCorner(pos, i0, i1, i2, c.restCos[3*t], k)
		c.solveCorner(pos, i1, i2, i0, c.restCos[3*t+1], k)
		c.solveCorner(pos, i2, i0, i1, c.restCos[3*t+2], k)
	}
}

func (c *TriangleAngle) solveCorner(pos []float32, i0, i1, i2 int, restCos, k float32) {
	w0, w1, w2 := c.invMass[i0], c.invMass[i1], c.invMass[i2]
	if w0+w1+w2 == 0 {
		return
	}

	xi := math.At(pos, i0)
	u := math.At(pos, i1).Sub(xi)
	v := math.At(pos, i2).Sub(xi)

	lu, lv := u.Length(), v.Length()
	if lu < angleMinEdge || lv < angleMinEdge {
		return
	}

	dot := u.Dot(v)
	invU, invV := 1/lu, 1/lv
	C := dot*invU*invV - restCos
	if gomath.Abs(float64(C)) < angleMinC {
		return
	}

	// d(cos)/du = v/(|u||v|) - dot*u/(|u|^3|v|), symmetric for v
	uv := invU * invV
	gj := v.Scale(uv).AddScaled(u, -dot*invU*invU*invU*invV)
	gk := u.Scale(uv).AddScaled(v, -dot*invU*invV*invV*invV)
	gi := gj.Add(gk).Neg()

	den := w0*gi.LengthSquared() + w1*gj.LengthSquared() + w2*gk.LengthSquared()
	if den < angleMinDen {
		den = angleMinDen
	}

	lambda := -k * C / den
	math.AddAt(pos, i0, gi, lambda*w0)
	math.AddAt(pos, i1, gj, lambda*w1)
	math.AddAt(pos, i2, gk, lambda*w2)
}

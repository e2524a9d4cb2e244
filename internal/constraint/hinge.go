package constraint

import (
	gomath "math"

	"github.com/Faultbox/clothsim/pkg/math"
)

const (
	hingeNormalEps = 1e-12
	hingeMinDenom  = 1e-6
)

// HingeBending drives the dihedral angle of every bending quad toward its
// rest value using discrete-shell gradients.
type HingeBending struct {
	Base
	invMass   []float32
	quads     []int32
	restAngle []float32
}

// hingeFrame is the quad geometry relative to v0.
type hingeFrame struct {
	p2, p3, p4 math.Vec3
	n1, n2     math.Vec3
	l23, l24   float32 // |p2 x p3|, |p2 x p4|
	d          float32 // n1 . n2, unclamped
	angle      float32
}

func newHingeFrame(pos []float32, v0, v1, v2, v3 int) hingeFrame {
	x1 := math.At(pos, v0)
	f := hingeFrame{
		p2: math.At(pos, v1).Sub(x1),
		p3: math.At(pos, v2).Sub(x1),
		p4: math.At(pos, v3).Sub(x1),
	}
	c23 := f.p2.Cross(f.p3)
	c24 := f.p2.Cross(f.p4)
	f.l23 = c23.Length()
	f.l24 = c24.Length()
	f.n1 = c23.Scale(1 / maxf(f.l23, hingeNormalEps))
	f.n2 = c24.Scale(1 / maxf(f.l24, hingeNormalEps))
	f.d = f.n1.Dot(f.n2)
	f.angle = float32(gomath.Acos(float64(math.Clamp(f.d, -1, 1))))
	return f
}

// NewHingeBending builds one dihedral constraint per bending quad.
func NewHingeBending(ctx Context) (*HingeBending, error) {
	quads, err := ctx.indices("bending ids", ctx.BendingVertexIDs, 4, true)
	if err != nil {
		return nil, err
	}

	c := &HingeBending{
		Base:      newBase(ctx),
		invMass:   ctx.InvMass,
		quads:     quads,
		restAngle: make([]float32, len(quads)/4),
	}
	for i := range c.restAngle {
		v0, v1, v2, v3 := c.quad(i)
		c.restAngle[i] = newHingeFrame(ctx.RestPos, v0, v1, v2, v3).angle
	}
	return c, nil
}

func (c *HingeBending) quad(i int) (int, int, int, int) {
	return int(c.quads[4*i]), int(c.quads[4*i+1]), int(c.quads[4*i+2]), int(c.quads[4*i+3])
}

// Solve runs one projection pass over all hinges.
func (c *HingeBending) Solve(pos []float32, dt float32) {
	k := c.Stiffness
	for i, rest := range c.restAngle {
		v0, v1, v2, v3 := c.quad(i)
		f := newHingeFrame(pos, v0, v1, v2, v3)

		inv23 := 1 / (f.l23 + hingeNormalEps)
		inv24 := 1 / (f.l24 + hingeNormalEps)
		q3 := f.p2.Cross(f.n2).AddScaled(f.n1.Cross(f.p2), f.d).Scale(inv23)
		q4 := f.p2.Cross(f.n1).AddScaled(f.n2.Cross(f.p2), f.d).Scale(inv24)
		t20 := f.p3.Cross(f.n2).AddScaled(f.n1.Cross(f.p3), f.d).Scale(inv23)
		t21 := f.p4.Cross(f.n1).AddScaled(f.n2.Cross(f.p4), f.d).Scale(inv24)
		q2 := t20.Add(t21).Neg()
		q1 := q2.Add(q3).Add(q4).Neg()

		w1, w2, w3, w4 := c.invMass[v0], c.invMass[v1], c.invMass[v2], c.invMass[v3]
		denom := w1*q1.LengthSquared() + w2*q2.LengthSquared() +
			w3*q3.LengthSquared() + w4*q4.LengthSquared()
		if denom <= hingeMinDenom {
			continue
		}

		cd := math.Clamp(f.d, -1, 1)
		sinTerm := math.Sqrt(maxf(0, 1-cd*cd))
		coeff := k * (f.angle - rest) * sinTerm / (denom + hingeNormalEps)

		math.AddAt(pos, v0, q1, -coeff*w1)
		math.AddAt(pos, v1, q2, -coeff*w2)
		math.AddAt(pos, v2, q3, -coeff*w3)
		math.AddAt(pos, v3, q4, -coeff*w4)
	}
}

// Residual returns the largest |angle - rest angle| over all hinges.
func (c *HingeBending) Residual(pos []float32) float32 {
	var worst float32
	for i, rest := range c.restAngle {
		v0, v1, v2, v3 := c.quad(i)
		f := newHingeFrame(pos, v0, v1, v2, v3)
		worst = maxf(worst, absf(f.angle-rest))
	}
	return worst
}

// RestAngles returns the unsigned rest dihedral angle of every quad.
func (c *HingeBending) RestAngles() []float32 {
	return c.restAngle
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

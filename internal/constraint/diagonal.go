package constraint

// DiagonalBending resists folding by keeping the apex diagonal (v2, v3) of
// each bending quad at its rest length.
type DiagonalBending struct {
	Base
	invMass     []float32
	quads       []int32
	restLengths []float32
}

// NewDiagonalBending builds one distance constraint per bending quad.
func NewDiagonalBending(ctx Context) (*DiagonalBending, error) {
	quads, err := ctx.indices("bending ids", ctx.BendingVertexIDs, 4, true)
	if err != nil {
		return nil, err
	}

	c := &DiagonalBending{
		Base:        newBase(ctx),
		invMass:     ctx.InvMass,
		quads:       quads,
		restLengths: make([]float32, len(quads)/4),
	}
	for i := range c.restLengths {
		c.restLengths[i] = restDistance(ctx.RestPos, int(quads[4*i+2]), int(quads[4*i+3]))
	}
	return c, nil
}

// Solve runs one projection pass over all apex diagonals.
func (c *DiagonalBending) Solve(pos []float32, dt float32) {
	k := c.Stiffness
	for i, rest := range c.restLengths {
		projectDistance(pos, c.invMass, int(c.quads[4*i+2]), int(c.quads[4*i+3]), rest, k)
	}
}

// DiagonalShear keeps the cross diagonals (v0, v2) and (v1, v3) of each
// bending quad at their rest lengths, solved one after the other.
type DiagonalShear struct {
	Base
	invMass     []float32
	quads       []int32
	restLengths []float32 // two per quad
}

// NewDiagonalShear builds two distance constraints per bending quad.
func NewDiagonalShear(ctx Context) (*DiagonalShear, error) {
	quads, err := ctx.indices("bending ids", ctx.BendingVertexIDs, 4, true)
	if err != nil {
		return nil, err
	}

	c := &DiagonalShear{
		Base:        newBase(ctx),
		invMass:     ctx.InvMass,
		quads:       quads,
		restLengths: make([]float32, 2*(len(quads)/4)),
	}
	for i := 0; i < len(quads)/4; i++ {
		v0, v1, v2, v3 := int(quads[4*i]), int(quads[4*i+1]), int(quads[4*i+2]), int(quads[4*i+3])
		c.restLengths[2*i] = restDistance(ctx.RestPos, v0, v2)
		c.restLengths[2*i+1] = restDistance(ctx.RestPos, v1, v3)
	}
	return c, nil
}

// Solve runs one projection pass over both diagonals of every quad.
func (c *DiagonalShear) Solve(pos []float32, dt float32) {
	k := c.Stiffness
	for i := 0; i < len(c.quads)/4; i++ {
		v0, v1, v2, v3 := int(c.quads[4*i]), int(c.quads[4*i+1]), int(c.quads[4*i+2]), int(c.quads[4*i+3])
		projectDistance(pos, c.invMass, v0, v2, c.restLengths[2*i], k)
		projectDistance(pos, c.invMass, v1, v3, c.restLengths[2*i+1], k)
	}
}

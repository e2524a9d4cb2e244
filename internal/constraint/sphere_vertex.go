package constraint

import (
	"github.com/Faultbox/clothsim/pkg/math"
)

// SphereVertexCollision pushes individual vertices to the allowed side of a
// sphere. The sphere has infinite mass, so a violating vertex lands exactly
// on the surface.
type SphereVertexCollision struct {
	Base
	invMass []float32
	ids     []int32
}

// NewSphereVertexCollision collides every vertex in ctx.VertexIDs.
func NewSphereVertexCollision(ctx Context) (*SphereVertexCollision, error) {
	ids, err := ctx.indices("vertex ids", ctx.VertexIDs, 1, false)
	if err != nil {
		return nil, err
	}
	return &SphereVertexCollision{Base: newBase(ctx), invMass: ctx.InvMass, ids: ids}, nil
}

// Solve projects each vertex against s.
func (c *SphereVertexCollision) Solve(pos []float32, dt float32, s Sphere) {
	for _, id := range c.ids {
		vid := int(id)
		w := c.invMass[vid]
		if w == 0 {
			continue
		}

		d := math.At(pos, vid).Sub(s.Center)
		lenSq := d.LengthSquared()
		if lenSq == 0 {
			continue
		}
		dist := math.Sqrt(lenSq)
		if !s.violated(dist) {
			continue
		}

		C := dist - s.Radius
		lambda := -C / w
		math.AddAt(pos, vid, d.Scale(1/dist), lambda*w)
	}
}

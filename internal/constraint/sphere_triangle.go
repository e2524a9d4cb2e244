package constraint

import (
	"github.com/Faultbox/clothsim/pkg/math"
	"github.com/Faultbox/clothsim/pkg/mesh"
)

// SphereTriangleCollision pushes the closest point of each triangle to the
// allowed side of a sphere. The correction is shared among the corners by
// the barycentric weights of that point.
type SphereTriangleCollision struct {
	Base
	invMass []float32
	tris    []int32
}

// NewSphereTriangleCollision collides every triangle in ctx.TriangleVertexIDs.
func NewSphereTriangleCollision(ctx Context) (*SphereTriangleCollision, error) {
	tris, err := ctx.indices("triangle ids", ctx.TriangleVertexIDs, 3, false)
	if err != nil {
		return nil, err
	}
	return &SphereTriangleCollision{Base: newBase(ctx), invMass: ctx.InvMass, tris: tris}, nil
}

// Solve projects each triangle against s.
func (c *SphereTriangleCollision) Solve(pos []float32, dt float32, s Sphere) {
	for t := 0; t < len(c.tris)/3; t++ {
		i0, i1, i2 := int(c.tris[3*t]), int(c.tris[3*t+1]), int(c.tris[3*t+2])
		w0, w1, w2 := c.invMass[i0], c.invMass[i1], c.invMass[i2]
		if w0+w1+w2 == 0 {
			continue
		}

		q, b := mesh.ClosestPointOnTriangle(s.Center, math.At(pos, i0), math.At(pos, i1), math.At(pos, i2))

		d := q.Sub(s.Center)
		lenSq := d.LengthSquared()
		if lenSq == 0 {
			continue
		}
		dist := math.Sqrt(lenSq)
		if !s.violated(dist) {
			continue
		}

		wEff := w0*b[0]*b[0] + w1*b[1]*b[1] + w2*b[2]*b[2]
		if wEff == 0 {
			continue
		}

		n := d.Scale(1 / dist)
		lambda := -(dist - s.Radius) / wEff
		math.AddAt(pos, i0, n, lambda*w0*b[0])
		math.AddAt(pos, i1, n, lambda*w1*b[1])
		math.AddAt(pos, i2, n, lambda*w2*b[2])
	}
}

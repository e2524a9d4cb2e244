package cloth

import (
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/clothsim/pkg/math"
)

// NearestVertex returns the vertex closest to p and its squared distance.
func (c *Cloth) NearestVertex(p math.Vec3) (int, float32) {
	best := -1
	bestD2 := float32(gomath.MaxFloat32)
	q := p.Array()
	for i := 0; i < c.numVertices; i++ {
		if d2 := math.VecDistSquared(q[:], 0, c.pos, i); d2 < bestD2 {
			bestD2 = d2
			best = i
		}
	}
	return best, bestD2
}

// StartGrab pins the vertex nearest to p and snaps it there. A grab already
// in progress is released first, with zero velocity.
func (c *Cloth) StartGrab(p math.Vec3) {
	if c.grabID >= 0 {
		c.EndGrab(math.At(c.pos, c.grabID), math.Vec3{})
	}

	id, _ := c.NearestVertex(p)
	if id < 0 {
		return
	}
	c.grabID = id
	c.grabInvMass = c.invMass[id]
	c.invMass[id] = 0
	math.SetAt(c.pos, id, p)

	c.log.Debug("grab start", zap.Int("vertex", id), zap.Float32("inv_mass", c.grabInvMass))
}

// MoveGrabbed snaps the held vertex to p.
func (c *Cloth) MoveGrabbed(p, v math.Vec3) {
	if c.grabID < 0 {
		return
	}
	math.SetAt(c.pos, c.grabID, p)
}

// EndGrab restores the held vertex's inverse mass and gives it velocity v.
func (c *Cloth) EndGrab(p, v math.Vec3) {
	if c.grabID < 0 {
		return
	}
	c.invMass[c.grabID] = c.grabInvMass
	math.SetAt(c.vel, c.grabID, v)

	c.log.Debug("grab end", zap.Int("vertex", c.grabID), zap.Float32("speed", v.Length()))
	c.grabID = -1
}

// Grabbed returns the held vertex, if any.
func (c *Cloth) Grabbed() (int, bool) {
	return c.grabID, c.grabID >= 0
}

package viewer

import (
	gomath "math"

	"github.com/Faultbox/clothsim/internal/cloth"
	"github.com/Faultbox/clothsim/internal/constraint"
	"github.com/Faultbox/clothsim/internal/engine/picking"
	"github.com/Faultbox/clothsim/internal/physics"
	"github.com/Faultbox/clothsim/pkg/math"
)

// Body is something the pointer can pick and drag.
type Body interface {
	Pick(r picking.Ray) (float32, bool)
	StartGrab(p math.Vec3)
	MoveGrabbed(p, v math.Vec3)
	EndGrab(p, v math.Vec3)
}

// ClothBody makes a cloth pickable by its triangles.
type ClothBody struct {
	Cloth *cloth.Cloth
}

// Pick returns the distance to the nearest triangle hit.
func (b ClothBody) Pick(r picking.Ray) (float32, bool) {
	pos := b.Cloth.Positions()
	if _, hit := r.IntersectAABB(picking.BoundsOf(pos)); !hit {
		return 0, false
	}

	best := float32(gomath.MaxFloat32)
	found := false
	tris := b.Cloth.Triangles()
	for i := 0; i+2 < len(tris); i += 3 {
		t, hit := r.IntersectTriangle(
			math.At(pos, int(tris[i])),
			math.At(pos, int(tris[i+1])),
			math.At(pos, int(tris[i+2])))
		if hit && t < best {
			best = t
			found = true
		}
	}
	return best, found
}

func (b ClothBody) StartGrab(p math.Vec3)      { b.Cloth.StartGrab(p) }
func (b ClothBody) MoveGrabbed(p, v math.Vec3) { b.Cloth.MoveGrabbed(p, v) }
func (b ClothBody) EndGrab(p, v math.Vec3)     { b.Cloth.EndGrab(p, v) }

// SphereBody makes a sphere collider pickable. Inside-mode containers are
// never picked so that the cloth within stays reachable.
type SphereBody struct {
	Sphere *physics.Sphere
}

// Pick returns the distance to the sphere surface.
func (b SphereBody) Pick(r picking.Ray) (float32, bool) {
	if b.Sphere.Mode == constraint.Inside {
		return 0, false
	}
	return r.IntersectSphere(b.Sphere.Center(), b.Sphere.Radius)
}

func (b SphereBody) StartGrab(p math.Vec3)      { b.Sphere.StartGrab(p) }
func (b SphereBody) MoveGrabbed(p, v math.Vec3) { b.Sphere.MoveGrabbed(p, v) }
func (b SphereBody) EndGrab(p, v math.Vec3)     { b.Sphere.EndGrab(p, v) }

// Grabber drags the picked body at a fixed distance along the pointer ray
// and estimates the release velocity from the last two pointer positions.
type Grabber struct {
	bodies []Body

	held     Body
	distance float32
	prevPos  math.Vec3
	vel      math.Vec3
	time     float32
}

// NewGrabber creates a grabber over bodies.
func NewGrabber(bodies ...Body) *Grabber {
	return &Grabber{bodies: bodies}
}

// Start picks the nearest body on r and grabs it at the hit point.
func (g *Grabber) Start(r picking.Ray) bool {
	g.held = nil

	best := float32(gomath.MaxFloat32)
	for _, b := range g.bodies {
		if t, hit := b.Pick(r); hit && t < best {
			best = t
			g.held = b
		}
	}
	if g.held == nil {
		return false
	}

	g.distance = best
	pos := r.At(best)
	g.held.StartGrab(pos)
	g.prevPos = pos
	g.vel = math.Vec3{}
	g.time = 0
	return true
}

// Move drags the held body to the point on r at the grab distance.
func (g *Grabber) Move(r picking.Ray) {
	if g.held == nil {
		return
	}
	pos := r.At(g.distance)

	if g.time > 0 {
		g.vel = pos.Sub(g.prevPos).Scale(1 / g.time)
	} else {
		g.vel = math.Vec3{}
	}
	g.prevPos = pos
	g.time = 0

	g.held.MoveGrabbed(pos, g.vel)
}

// End releases the held body with the estimated velocity.
func (g *Grabber) End() {
	if g.held == nil {
		return
	}
	g.held.EndGrab(g.prevPos, g.vel)
	g.held = nil
}

// Cancel forgets the held body without releasing it, for when the
// simulation has already dropped it (reset).
func (g *Grabber) Cancel() {
	g.held = nil
}

// Active reports whether something is held.
func (g *Grabber) Active() bool { return g.held != nil }

// IncreaseTime accumulates wall time since the last pointer move.
func (g *Grabber) IncreaseTime(dt float32) {
	g.time += dt
}

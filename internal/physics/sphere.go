package physics

import (
	"github.com/Faultbox/clothsim/internal/constraint"
	"github.com/Faultbox/clothsim/pkg/math"
)

// Sphere is a kinematic collider. It is never integrated: it only moves when
// grabbed, and only along z.
type Sphere struct {
	Radius  float32
	Mode    constraint.CollisionMode
	InvMass float32

	center      math.Vec3
	start       math.Vec3
	vel         math.Vec3
	grabbed     bool
	grabInvMass float32
}

// NewSphere creates a sphere collider resting at center.
func NewSphere(center math.Vec3, radius float32, mode constraint.CollisionMode) *Sphere {
	return &Sphere{
		Radius:  radius,
		Mode:    mode,
		InvMass: 1,
		center:  center,
		start:   center,
	}
}

// Center returns the current centre.
func (s *Sphere) Center() math.Vec3 { return s.center }

// Velocity returns the velocity given at the last release.
func (s *Sphere) Velocity() math.Vec3 { return s.vel }

// Collider returns the descriptor handed to collision solvers.
func (s *Sphere) Collider() constraint.Sphere {
	return constraint.Sphere{Center: s.center, Radius: s.Radius, Mode: s.Mode}
}

// Reset moves the sphere back to where it started.
func (s *Sphere) Reset() {
	s.center = s.start
	s.vel = math.Vec3{}
	if s.grabbed {
		s.InvMass = s.grabInvMass
		s.grabbed = false
	}
}

// StartGrab takes hold of the sphere if p's depth is within two radii of the
// centre. Only the z coordinate of p is used.
func (s *Sphere) StartGrab(p math.Vec3) bool {
	target := math.Vec3{X: s.center.X, Y: s.center.Y, Z: p.Z}
	if target.Sub(s.center).LengthSquared() > 4*s.Radius*s.Radius {
		s.grabbed = false
		return false
	}
	s.grabbed = true
	s.grabInvMass = s.InvMass
	s.InvMass = 0
	s.center = target
	return true
}

// MoveGrabbed follows p along z.
func (s *Sphere) MoveGrabbed(p, v math.Vec3) {
	if !s.grabbed {
		return
	}
	s.center.Z = p.Z
}

// EndGrab lets go, keeping the z component of v.
func (s *Sphere) EndGrab(p, v math.Vec3) {
	if !s.grabbed {
		return
	}
	s.InvMass = s.grabInvMass
	s.vel = math.Vec3{Z: v.Z}
	s.grabbed = false
}

// Grabbed reports whether the sphere is held.
func (s *Sphere) Grabbed() bool { return s.grabbed }

// Package camera provides the orbit camera used by the cloth viewer.
package camera

import (
	gomath "math"

	"github.com/Faultbox/clothsim/internal/engine/picking"
	"github.com/Faultbox/clothsim/pkg/math"
)

// OrbitCamera orbits around a target point. Units are metres.
type OrbitCamera struct {
	Target math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from target
	Pitch    float32 // Vertical angle, radians
	Yaw      float32 // Horizontal angle, radians

	// Projection
	FovY float32 // radians
	Near float32
	Far  float32

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
	PanSensitivity  float32
}

// NewOrbitCamera returns a camera at (0, 1, 1) looking at (0, 0.6, 0) with a
// 70 degree field of view.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Target:          math.Vec3{Y: 0.6},
		Distance:        float32(gomath.Sqrt(1.16)),
		Pitch:           float32(gomath.Atan2(0.4, 1)),
		FovY:            70 * gomath.Pi / 180,
		Near:            0.01,
		Far:             100,
		MinDistance:     0.1,
		MaxDistance:     20,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		PanSensitivity:  0.4,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cp := gomath.Cos(float64(c.Pitch))
	return math.Vec3{
		X: c.Target.X + c.Distance*float32(cp*gomath.Sin(float64(c.Yaw))),
		Y: c.Target.Y + c.Distance*float32(gomath.Sin(float64(c.Pitch))),
		Z: c.Target.Z + c.Distance*float32(cp*gomath.Cos(float64(c.Yaw))),
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Target, math.Vec3{Y: 1})
}

// ProjectionMatrix returns the perspective projection for a viewport aspect.
func (c *OrbitCamera) ProjectionMatrix(aspect float32) math.Mat4 {
	return math.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *OrbitCamera) ViewProjection(aspect float32) math.Mat4 {
	return c.ProjectionMatrix(aspect).Mul(c.ViewMatrix())
}

// Ray returns the world-space ray through pixel (x, y) of a w x h viewport.
func (c *OrbitCamera) Ray(x, y, w, h float32) picking.Ray {
	if h == 0 {
		h = 1
	}
	return picking.ScreenToRay(x, y, w, h, c.ViewProjection(w/h).Inverse())
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch += deltaY * c.DragSensitivity
	c.Pitch = math.Clamp(c.Pitch, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = math.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
}

// HandlePan moves the target in the view plane by a pixel delta of a
// viewport with the given height.
func (c *OrbitCamera) HandlePan(deltaX, deltaY, viewportH float32) {
	if viewportH <= 0 {
		return
	}
	scale := c.PanSensitivity * 2 * c.Distance * float32(gomath.Tan(float64(c.FovY)/2)) / viewportH

	forward := c.Target.Sub(c.Position()).Normalize()
	right := forward.Cross(math.Vec3{Y: 1}).Normalize()
	up := right.Cross(forward)

	c.Target = c.Target.AddScaled(right, -deltaX*scale).AddScaled(up, deltaY*scale)
}

// FitToBounds centres the camera on a bounding box and backs off far enough
// to see all of it.
func (c *OrbitCamera) FitToBounds(minB, maxB math.Vec3) {
	c.Target = minB.Add(maxB).Scale(0.5)
	radius := maxB.Sub(minB).Length() / 2
	d := radius / float32(gomath.Sin(float64(c.FovY)/2))
	c.Distance = math.Clamp(d, c.MinDistance, c.MaxDistance)
}

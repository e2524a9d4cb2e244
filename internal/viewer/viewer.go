// Package viewer is the interactive SDL2 front end: it draws the scene,
// orbits the camera and lets the pointer drag cloth and spheres.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/clothsim/internal/config"
	"github.com/Faultbox/clothsim/internal/constraint"
	"github.com/Faultbox/clothsim/internal/engine/camera"
	"github.com/Faultbox/clothsim/internal/engine/debug"
	"github.com/Faultbox/clothsim/internal/engine/input"
	"github.com/Faultbox/clothsim/internal/engine/picking"
	"github.com/Faultbox/clothsim/internal/engine/renderer"
	"github.com/Faultbox/clothsim/internal/engine/window"
	"github.com/Faultbox/clothsim/internal/logger"
	"github.com/Faultbox/clothsim/internal/sim"
	"github.com/Faultbox/clothsim/pkg/math"
)

// maxStepsPerFrame bounds catch-up after a stall.
const maxStepsPerFrame = 4

// dragMode is what a mouse drag currently does.
type dragMode int

const (
	dragNone dragMode = iota
	dragGrab
	dragOrbit
	dragPan
)

// Viewer owns the window and drives the simulation from the render loop.
type Viewer struct {
	cfg *config.Config
	sim *sim.Sim

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.OrbitCamera
	grabber  *Grabber
	shots    *debug.ScreenshotCapture

	running    bool
	showEdges  bool
	screenshot bool // capture after the next render
	drag       dragMode
	width      int
	height     int

	log *zap.Logger
}

// New opens the window and uploads the cloth.
func New(cfg *config.Config, s *sim.Sim) (*Viewer, error) {
	v := &Viewer{
		cfg:       cfg,
		sim:       s,
		input:     input.New(),
		camera:    camera.NewOrbitCamera(),
		shots:     debug.NewScreenshotCapture(cfg.Graphics.ScreenshotDir, "clothsim"),
		showEdges: cfg.Graphics.ShowEdges,
		log:       logger.Named("viewer"),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      "clothsim",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
		Samples:    4,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	v.width, v.height = v.window.Size()
	v.renderer, err = renderer.New(renderer.Config{Width: v.width, Height: v.height})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	c := s.Cloth
	v.renderer.SetCloth(c.Triangles(), c.Edges(), c.NumVertices())
	v.renderer.UpdateCloth(c.Positions())

	bodies := []Body{ClothBody{Cloth: c}}
	for _, sp := range s.Scene.Spheres() {
		bodies = append(bodies, SphereBody{Sphere: sp})
	}
	v.grabber = NewGrabber(bodies...)

	v.log.Info("viewer initialized",
		zap.Int("width", v.width),
		zap.Int("height", v.height))
	return v, nil
}

// Run loops until the window closes or ctx is done. cmds may be nil; when
// set, remote commands are applied before every simulated frame.
func (v *Viewer) Run(ctx context.Context, cmds <-chan sim.Command) error {
	v.running = true

	dt := time.Duration(float64(v.sim.Scene.Config().Dt) * float64(time.Second))
	lastTime := time.Now()
	var acc time.Duration
	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting render loop")

	for v.running {
		select {
		case <-ctx.Done():
			v.running = false
			continue
		default:
		}

		now := time.Now()
		elapsed := now.Sub(lastTime)
		lastTime = now

		// 1. Process input
		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()

		// 2. Simulate at the fixed rate
		v.sim.Drain(cmds)
		v.grabber.IncreaseTime(float32(elapsed.Seconds()))
		if v.sim.Scene.Paused() {
			acc = 0
		} else {
			acc += elapsed
			steps := 0
			for acc >= dt && steps < maxStepsPerFrame {
				v.sim.Scene.Step()
				acc -= dt
				steps++
			}
			if steps == maxStepsPerFrame {
				acc = 0
			}
		}

		// 3. Render
		v.render()
		if v.screenshot {
			v.saveScreenshot()
		}
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.window.SetTitle(v.title(frameCount))
			v.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Duration("sim", v.sim.Scene.AverageFrameTime()))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	v.log.Info("render loop stopped")
	return nil
}

func (v *Viewer) title(fps int) string {
	state := "running"
	if v.sim.Scene.Paused() {
		state = "paused"
	}
	return fmt.Sprintf("clothsim | %d fps | frame %d | %s", fps, v.sim.Scene.Frame(), state)
}

func (v *Viewer) handleEvents() {
	for _, e := range v.input.Events() {
		switch e.Type {
		case input.EventWindowResize:
			v.width, v.height = v.window.Size()
			v.renderer.Resize(v.width, v.height)

		case input.EventKeyDown:
			v.handleKey(e.Key)

		case input.EventMouseDown:
			if v.drag != dragNone {
				continue
			}
			switch {
			case e.Button == input.ButtonMiddle,
				e.Button == input.ButtonLeft && e.Shift:
				v.drag = dragPan
			case e.Button == input.ButtonLeft && v.startGrab(e.MouseX, e.MouseY):
				v.drag = dragGrab
			default:
				v.drag = dragOrbit
			}

		case input.EventMouseMove:
			switch v.drag {
			case dragGrab:
				v.grabber.Move(v.ray(e.MouseX, e.MouseY))
			case dragOrbit:
				v.camera.HandleDrag(float32(e.DeltaX), float32(e.DeltaY))
			case dragPan:
				v.camera.HandlePan(float32(e.DeltaX), float32(e.DeltaY), float32(v.height))
			}

		case input.EventMouseUp:
			if v.drag == dragGrab {
				v.grabber.End()
			}
			v.drag = dragNone

		case input.EventMouseWheel:
			v.camera.HandleZoom(float32(e.DeltaY))
		}
	}
}

func (v *Viewer) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		v.running = false
	case sdl.SCANCODE_SPACE:
		v.sim.Scene.TogglePaused()
		v.log.Info("pause toggled", zap.Bool("paused", v.sim.Scene.Paused()))
	case sdl.SCANCODE_R:
		v.grabber.Cancel()
		v.drag = dragNone
		v.sim.Reset()
	case sdl.SCANCODE_S:
		v.sim.Scene.SetPaused(true)
		v.sim.Scene.Step()
	case sdl.SCANCODE_E:
		v.showEdges = !v.showEdges
	case sdl.SCANCODE_F:
		v.frameCloth()
	case sdl.SCANCODE_I:
		v.sim.LogStats()
	case sdl.SCANCODE_P:
		v.screenshot = true
	case sdl.SCANCODE_F11:
		v.window.ToggleFullscreen()
	}
}

func (v *Viewer) saveScreenshot() {
	v.screenshot = false
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.shots.CaptureFromPixels(pixels, w, h, v.sim.Scene.Frame())
	if err != nil {
		v.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

// startGrab picks under the pointer. Grabbing while paused starts the
// simulation so the drag has an effect.
func (v *Viewer) startGrab(x, y int) bool {
	if !v.grabber.Start(v.ray(x, y)) {
		return false
	}
	if v.sim.Scene.Paused() {
		v.sim.Scene.SetPaused(false)
	}
	return true
}

// frameCloth points the camera at the cloth's current bounds.
func (v *Viewer) frameCloth() {
	box := picking.BoundsOf(v.sim.Cloth.Positions())
	v.camera.FitToBounds(math.FromArray(box.Min), math.FromArray(box.Max))
}

func (v *Viewer) ray(x, y int) picking.Ray {
	return v.camera.Ray(float32(x), float32(y), float32(v.width), float32(v.height))
}

func (v *Viewer) render() {
	v.renderer.UpdateCloth(v.sim.Cloth.Positions())

	held, _ := v.sim.GrabbedSphere()
	spheres := make([]renderer.SphereDraw, 0, len(v.sim.Scene.Spheres()))
	for i, sp := range v.sim.Scene.Spheres() {
		d := renderer.SphereDraw{
			Center: sp.Center(),
			Radius: sp.Radius,
			Color:  renderer.SphereColor,
		}
		if sp.Mode == constraint.Inside {
			d.Color = renderer.InsideColor
			d.Wire = true
		}
		if sp.Grabbed() || i == held {
			d.Color = renderer.GrabbedColor
		}
		spheres = append(spheres, d)
	}

	v.renderer.Begin()
	v.renderer.Draw(renderer.Frame{
		ViewProj:  v.camera.ViewProjection(v.renderer.Aspect()),
		ShowEdges: v.showEdges,
		Spheres:   spheres,
	})
	v.renderer.End()
}

// Close releases the renderer and the window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}

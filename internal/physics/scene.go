// Package physics runs the fixed-timestep substep loop over cloth bodies
// and sphere colliders.
package physics

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/clothsim/internal/constraint"
	"github.com/Faultbox/clothsim/internal/logger"
	"github.com/Faultbox/clothsim/pkg/math"
)

// timingWindow is the number of frames averaged for the frame time report.
const timingWindow = 10

// Object is a simulated body driven by the scene.
type Object interface {
	PreSolve(dt float32, gravity math.Vec3)
	Solve(dt float32, colliders []constraint.Sphere)
	PostSolve(dt float32)
	EndFrame()
	Reset()
}

// Config holds the integration parameters.
type Config struct {
	Gravity     math.Vec3
	Dt          float32 // frame time step, seconds
	NumSubsteps int
}

// DefaultConfig returns gravity (0,-10,0), 60 Hz frames and 5 substeps.
func DefaultConfig() Config {
	return Config{
		Gravity:     math.Vec3{Y: -10},
		Dt:          1.0 / 60.0,
		NumSubsteps: 5,
	}
}

// FrameInfo is passed to frame listeners after every step.
type FrameInfo struct {
	Frame int
	Dt    float32
}

// Scene owns the bodies and colliders of one simulation.
type Scene struct {
	cfg       Config
	objects   []Object
	spheres   []*Sphere
	colliders []constraint.Sphere // per-substep snapshot, reused
	listeners []func(FrameInfo)

	paused bool
	frame  int

	timeSum    time.Duration
	timeFrames int
	avgFrame   time.Duration
	lastFrame  time.Duration

	log *zap.Logger
}

// NewScene creates a paused scene. Zero fields of cfg take their defaults.
func NewScene(cfg Config) *Scene {
	def := DefaultConfig()
	if cfg.Dt <= 0 {
		cfg.Dt = def.Dt
	}
	if cfg.NumSubsteps <= 0 {
		cfg.NumSubsteps = def.NumSubsteps
	}
	return &Scene{
		cfg:    cfg,
		paused: true,
		log:    logger.Named("physics"),
	}
}

// Config returns the integration parameters.
func (s *Scene) Config() Config { return s.cfg }

// AddObject registers a body.
func (s *Scene) AddObject(o Object) {
	s.objects = append(s.objects, o)
}

// AddSphere registers a collider.
func (s *Scene) AddSphere(sp *Sphere) {
	s.spheres = append(s.spheres, sp)
}

// Objects returns the registered bodies.
func (s *Scene) Objects() []Object { return s.objects }

// Spheres returns the registered colliders.
func (s *Scene) Spheres() []*Sphere { return s.spheres }

// OnFrame registers a listener called after every step.
func (s *Scene) OnFrame(f func(FrameInfo)) {
	s.listeners = append(s.listeners, f)
}

// Paused reports whether drivers should hold the simulation.
func (s *Scene) Paused() bool { return s.paused }

// SetPaused sets the paused flag.
func (s *Scene) SetPaused(v bool) { s.paused = v }

// TogglePaused flips the paused flag.
func (s *Scene) TogglePaused() { s.paused = !s.paused }

// Frame returns the number of steps since creation or the last reset.
func (s *Scene) Frame() int { return s.frame }

// Step advances one frame of Dt in NumSubsteps substeps. It runs regardless
// of the paused flag; drivers check Paused.
func (s *Scene) Step() {
	start := time.Now()

	sdt := s.cfg.Dt / float32(s.cfg.NumSubsteps)
	for step := 0; step < s.cfg.NumSubsteps; step++ {
		for _, o := range s.objects {
			o.PreSolve(sdt, s.cfg.Gravity)
		}
		s.colliders = s.colliders[:0]
		for _, sp := range s.spheres {
			s.colliders = append(s.colliders, sp.Collider())
		}
		for _, o := range s.objects {
			o.Solve(sdt, s.colliders)
		}
		for _, o := range s.objects {
			o.PostSolve(sdt)
		}
	}
	for _, o := range s.objects {
		o.EndFrame()
	}
	s.frame++

	s.lastFrame = time.Since(start)
	s.timeSum += s.lastFrame
	s.timeFrames++
	if s.timeFrames >= timingWindow {
		s.avgFrame = s.timeSum / time.Duration(s.timeFrames)
		s.log.Debug("frame time",
			zap.Int("frame", s.frame),
			zap.Duration("avg", s.avgFrame))
		s.timeSum = 0
		s.timeFrames = 0
	}

	info := FrameInfo{Frame: s.frame, Dt: s.cfg.Dt}
	for _, f := range s.listeners {
		f(info)
	}
}

// Reset restores every body and collider to its initial state.
func (s *Scene) Reset() {
	for _, o := range s.objects {
		o.Reset()
	}
	for _, sp := range s.spheres {
		sp.Reset()
	}
	s.frame = 0
	s.timeSum = 0
	s.timeFrames = 0
}

// LastFrameTime returns the wall time of the most recent Step.
func (s *Scene) LastFrameTime() time.Duration { return s.lastFrame }

// AverageFrameTime returns the mean Step time over the last full window.
func (s *Scene) AverageFrameTime() time.Duration { return s.avgFrame }

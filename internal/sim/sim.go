// Package sim assembles a physics scene from configuration and drives it.
package sim

import (
	"errors"
	"fmt"
	gomath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/clothsim/internal/cloth"
	"github.com/Faultbox/clothsim/internal/config"
	"github.com/Faultbox/clothsim/internal/constraint"
	"github.com/Faultbox/clothsim/internal/logger"
	"github.com/Faultbox/clothsim/internal/physics"
	"github.com/Faultbox/clothsim/pkg/math"
	"github.com/Faultbox/clothsim/pkg/mesh"
)

// ErrUnknownCommand is returned by Apply for an unrecognised command type.
var ErrUnknownCommand = errors.New("sim: unknown command")

// Sim is one cloth over a set of sphere colliders.
type Sim struct {
	Scene *physics.Scene
	Cloth *cloth.Cloth

	grid    mesh.GridSpec
	sphere  int // grabbed sphere index, -1 when none
	updates []func()
	log     *zap.Logger
}

// New builds the cloth, its solvers and the spheres described by cfg.
func New(cfg *config.Config) (*Sim, error) {
	grid := GridSpec(cfg.Cloth.Grid)
	c, err := BuildCloth(grid, cfg.Cloth)
	if err != nil {
		return nil, err
	}

	scene := physics.NewScene(physics.Config{
		Gravity:     math.FromArray(cfg.Physics.Gravity),
		Dt:          cfg.Physics.Dt,
		NumSubsteps: cfg.Physics.Substeps,
	})
	scene.SetPaused(cfg.Physics.StartPaused)
	scene.AddObject(c)
	for _, sc := range cfg.Spheres {
		scene.AddSphere(physics.NewSphere(math.FromArray(sc.Center), sc.Radius, sc.Mode))
	}

	s := &Sim{
		Scene:  scene,
		Cloth:  c,
		grid:   grid,
		sphere: -1,
		log:    logger.Named("sim"),
	}
	scene.OnFrame(func(physics.FrameInfo) { s.notify() })

	s.log.Info("simulation ready",
		zap.Int("vertices", c.NumVertices()),
		zap.Int("spheres", len(cfg.Spheres)),
		zap.Int("substeps", scene.Config().NumSubsteps),
		zap.Bool("paused", scene.Paused()))
	return s, nil
}

// GridSpec converts the configured grid, taking the angle from degrees.
func GridSpec(g config.GridConfig) mesh.GridSpec {
	return mesh.GridSpec{
		Cols:   g.Cols,
		Rows:   g.Rows,
		Width:  g.Width,
		Height: g.Height,
		Origin: math.FromArray(g.Origin),
		Angle:  g.AngleDeg * gomath.Pi / 180,
	}
}

// BuildCloth authors the grid mesh and binds it with the configured solvers.
func BuildCloth(grid mesh.GridSpec, cc config.ClothConfig) (*cloth.Cloth, error) {
	m, err := mesh.BuildGrid(grid)
	if err != nil {
		return nil, fmt.Errorf("building grid: %w", err)
	}

	pinned := append([]int32(nil), cc.Pinned...)
	if cc.PinTopCorners {
		pinned = append(pinned, grid.TopCorners()...)
	}

	c, err := cloth.New(m, cloth.Options{
		Pinned:             pinned,
		DedupeBendingQuads: cc.DedupeBendingQuads,
	})
	if err != nil {
		return nil, err
	}

	solvers := make([]constraint.Solver, 0, len(cc.Solvers))
	for _, sc := range cc.Solvers {
		ctx := c.Context(sc.Stiffness)
		ctx.Compliance = sc.Compliance
		s, err := constraint.New(sc.Kind, ctx)
		if err != nil {
			return nil, fmt.Errorf("solver %s: %w", sc.Kind, err)
		}
		solvers = append(solvers, s)
	}
	c.SetConstraintSolvers(solvers)

	colliders := make([]constraint.ColliderSolver, 0, len(cc.ColliderSolvers))
	for _, sc := range cc.ColliderSolvers {
		ctx := c.Context(sc.Stiffness)
		ctx.Compliance = sc.Compliance
		s, err := constraint.NewCollider(sc.Kind, ctx)
		if err != nil {
			return nil, fmt.Errorf("collider solver %s: %w", sc.Kind, err)
		}
		colliders = append(colliders, s)
	}
	c.SetColliderSolvers(colliders)

	return c, nil
}

// Grid returns the grid the cloth was authored from.
func (s *Sim) Grid() mesh.GridSpec { return s.grid }

// Advance steps one frame unless the scene is paused. It reports whether a
// step happened.
func (s *Sim) Advance() bool {
	if s.Scene.Paused() {
		return false
	}
	s.Scene.Step()
	return true
}

// StepN runs n frames back to back, ignoring the paused flag.
func (s *Sim) StepN(n int) {
	for i := 0; i < n; i++ {
		s.Scene.Step()
	}
}

// Reset restores the scene and drops any grab.
func (s *Sim) Reset() {
	s.sphere = -1
	s.Scene.Reset()
	s.log.Info("simulation reset")
}

// StartGrab picks the first sphere that accepts p, otherwise the cloth
// vertex nearest to p.
func (s *Sim) StartGrab(p math.Vec3) {
	s.EndGrab(p, math.Vec3{})
	for i, sp := range s.Scene.Spheres() {
		if sp.StartGrab(p) {
			s.sphere = i
			s.log.Debug("sphere grabbed", zap.Int("sphere", i))
			return
		}
	}
	s.Cloth.StartGrab(p)
}

// MoveGrabbed forwards to whatever is held.
func (s *Sim) MoveGrabbed(p, v math.Vec3) {
	if s.sphere >= 0 {
		s.Scene.Spheres()[s.sphere].MoveGrabbed(p, v)
		return
	}
	s.Cloth.MoveGrabbed(p, v)
}

// EndGrab releases whatever is held with velocity v.
func (s *Sim) EndGrab(p, v math.Vec3) {
	if s.sphere >= 0 {
		s.Scene.Spheres()[s.sphere].EndGrab(p, v)
		s.sphere = -1
		return
	}
	s.Cloth.EndGrab(p, v)
}

// GrabbedSphere returns the held sphere index, if any.
func (s *Sim) GrabbedSphere() (int, bool) {
	return s.sphere, s.sphere >= 0
}

// LogStats writes the cloth diagnostics at info level.
func (s *Sim) LogStats() {
	st := s.Cloth.Stats()
	s.log.Info("stats",
		zap.Int("frame", st.Frame),
		zap.Float32("max_speed", st.MaxSpeed),
		zap.Float32("hinge_energy", st.HingeEnergy),
		zap.Float32("isometric_energy", st.IsometricEnergy),
		zap.Int("grabbed", st.Grabbed),
		zap.Duration("avg_frame", s.Scene.AverageFrameTime()))
}

package sim

import (
	"context"
	"errors"
	gomath "math"
	"testing"
	"time"

	"github.com/Faultbox/clothsim/internal/config"
	"github.com/Faultbox/clothsim/internal/constraint"
	"github.com/Faultbox/clothsim/pkg/math"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Cloth.Grid.Cols = 5
	cfg.Cloth.Grid.Rows = 5
	return cfg
}

func TestNewFromConfig(t *testing.T) {
	s, err := New(smallConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := s.Cloth.NumVertices(); got != 25 {
		t.Errorf("expected 25 vertices, got %d", got)
	}
	w := s.Cloth.InvMass()
	if w[0] != 0 || w[4] != 0 {
		t.Errorf("top corners should be pinned, got %v %v", w[0], w[4])
	}
	if w[2] <= 0 {
		t.Errorf("top middle vertex should be free, got %v", w[2])
	}
	if len(s.Scene.Spheres()) != 1 {
		t.Errorf("expected 1 sphere, got %d", len(s.Scene.Spheres()))
	}
	if !s.Scene.Paused() {
		t.Error("expected scene to start paused")
	}
	if s.Scene.Config().NumSubsteps != 5 {
		t.Errorf("expected 5 substeps, got %d", s.Scene.Config().NumSubsteps)
	}
}

func TestGridSpecDegrees(t *testing.T) {
	g := GridSpec(config.GridConfig{Cols: 3, Rows: 4, Width: 2, Height: 1, Origin: [3]float32{1, 2, 3}, AngleDeg: 90})
	if g.Cols != 3 || g.Rows != 4 || g.Width != 2 || g.Height != 1 {
		t.Errorf("unexpected grid %+v", g)
	}
	if g.Origin != (math.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("unexpected origin %+v", g.Origin)
	}
	if gomath.Abs(float64(g.Angle)-gomath.Pi/2) > 1e-6 {
		t.Errorf("expected pi/2, got %v", g.Angle)
	}
}

func TestBuildClothErrors(t *testing.T) {
	cfg := smallConfig()

	cc := cfg.Cloth
	cc.Solvers = []config.SolverConfig{{Kind: "glue"}}
	if _, err := BuildCloth(GridSpec(cc.Grid), cc); !errors.Is(err, constraint.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}

	cc = cfg.Cloth
	cc.ColliderSolvers = []config.SolverConfig{{Kind: constraint.KindHingeBending}}
	if _, err := BuildCloth(GridSpec(cc.Grid), cc); !errors.Is(err, constraint.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind for collider list, got %v", err)
	}

	cc = cfg.Cloth
	cc.Pinned = []int32{99}
	if _, err := BuildCloth(GridSpec(cc.Grid), cc); err == nil {
		t.Error("expected error for out of range pinned vertex")
	}

	cc = cfg.Cloth
	cc.Grid.Cols = 1
	if _, err := BuildCloth(GridSpec(cc.Grid), cc); err == nil {
		t.Error("expected error for a one column grid")
	}
}

func TestApplyCommands(t *testing.T) {
	s, err := New(smallConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := s.Apply(Command{Type: CmdPause}); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if s.Scene.Paused() {
		t.Error("pause without a value should toggle")
	}

	paused := true
	if err := s.Apply(Command{Type: CmdPause, Paused: &paused}); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if !s.Scene.Paused() {
		t.Error("expected explicit pause")
	}

	if s.Advance() {
		t.Error("Advance should not step while paused")
	}
	if err := s.Apply(Command{Type: CmdStep}); err != nil {
		t.Fatalf("step: %v", err)
	}
	if s.Scene.Frame() != 1 {
		t.Errorf("expected frame 1 after step, got %d", s.Scene.Frame())
	}

	if err := s.Apply(Command{Type: CmdReset}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if s.Scene.Frame() != 0 {
		t.Errorf("expected frame 0 after reset, got %d", s.Scene.Frame())
	}

	if err := s.Apply(Command{Type: "explode"}); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestGrabPrefersSphere(t *testing.T) {
	s, err := New(smallConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sp := s.Scene.Spheres()[0]

	s.Apply(Command{Type: CmdGrab, Point: [3]float32{0, 0.6, 0.35}})
	if i, ok := s.GrabbedSphere(); !ok || i != 0 {
		t.Fatalf("expected sphere 0 grabbed, got %d %v", i, ok)
	}
	if _, ok := s.Cloth.Grabbed(); ok {
		t.Error("cloth should not be grabbed")
	}

	s.Apply(Command{Type: CmdMove, Point: [3]float32{0, 0.6, 0.5}})
	if sp.Center().Z != 0.5 {
		t.Errorf("expected sphere z 0.5, got %v", sp.Center().Z)
	}

	s.Apply(Command{Type: CmdRelease, Velocity: [3]float32{1, 2, 3}})
	if _, ok := s.GrabbedSphere(); ok {
		t.Error("sphere should be released")
	}
	if sp.Velocity() != (math.Vec3{Z: 3}) {
		t.Errorf("expected release velocity (0,0,3), got %+v", sp.Velocity())
	}
}

func TestGrabFallsBackToCloth(t *testing.T) {
	s, err := New(smallConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	p := [3]float32{0, 1.7, 2}
	s.Apply(Command{Type: CmdGrab, Point: p})
	if _, ok := s.GrabbedSphere(); ok {
		t.Fatal("sphere should not accept a point this far away")
	}
	id, ok := s.Cloth.Grabbed()
	if !ok {
		t.Fatal("expected a cloth vertex to be grabbed")
	}
	if got := math.At(s.Cloth.Positions(), id); got != math.FromArray(p) {
		t.Errorf("grabbed vertex should snap to %v, got %+v", p, got)
	}

	s.Apply(Command{Type: CmdRelease})
	if _, ok := s.Cloth.Grabbed(); ok {
		t.Error("cloth should be released")
	}
}

func TestRunDrainsCommands(t *testing.T) {
	cfg := smallConfig()
	cfg.Physics.Dt = 0.001
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	updates := 0
	s.OnUpdate(func() { updates++ })

	running := false
	cmds := make(chan Command, 1)
	cmds <- Command{Type: CmdPause, Paused: &running}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Run(ctx, cmds, 3); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.Scene.Frame() != 3 {
		t.Errorf("expected 3 frames, got %d", s.Scene.Frame())
	}
	if updates < 3 {
		t.Errorf("expected at least 3 updates, got %d", updates)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s, err := New(smallConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Run(ctx, nil, 0); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.Scene.Frame() != 0 {
		t.Errorf("paused scene should not step, got frame %d", s.Scene.Frame())
	}
}

func TestDrainCountsAccepted(t *testing.T) {
	s, err := New(smallConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cmds := make(chan Command, 2)
	cmds <- Command{Type: CmdReset}
	cmds <- Command{Type: "bogus"}

	if n := s.Drain(cmds); n != 1 {
		t.Errorf("expected 1 accepted command, got %d", n)
	}
}

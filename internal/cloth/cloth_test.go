package cloth

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/clothsim/internal/constraint"
	"github.com/Faultbox/clothsim/pkg/math"
	"github.com/Faultbox/clothsim/pkg/mesh"
)

// unitQuad is a 2x2 grid, 1x1, centred on the origin:
// v0 (-0.5, 0.5)  v1 (0.5, 0.5)
// v2 (-0.5,-0.5)  v3 (0.5,-0.5)
func unitQuad(t *testing.T, y float32) mesh.Mesh {
	t.Helper()
	m, err := mesh.BuildGrid(mesh.GridSpec{Cols: 2, Rows: 2, Width: 1, Height: 1, Origin: math.Vec3{Y: y}})
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}
	return m
}

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-5
}

func TestInvMassDistribution(t *testing.T) {
	c, err := New(unitQuad(t, 2), Options{Pinned: []int32{1}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// both triangles have area 1/2, so each contributes 2/3
	want := []float32{4.0 / 3, 0, 2.0 / 3, 4.0 / 3}
	for i, w := range want {
		if !near(c.InvMass()[i], w) {
			t.Errorf("invMass[%d] = %v, want %v", i, c.InvMass()[i], w)
		}
	}
}

func TestInvMassSkipsDegenerateTriangles(t *testing.T) {
	m := mesh.Mesh{
		Vertices:  []float32{0, 0, 0, 1, 0, 0, 2, 0, 0, 0, 1, 0},
		Triangles: []int32{0, 1, 2, 0, 1, 3},
	}
	c, err := New(m, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.InvMass()[2]; got != 0 {
		t.Errorf("vertex only on a zero-area triangle got invMass %v", got)
	}
	if got := c.InvMass()[0]; !near(got, 2.0/3) {
		t.Errorf("invMass[0] = %v, want 2/3", got)
	}
}

func TestNewErrors(t *testing.T) {
	m := unitQuad(t, 1)

	if _, err := New(m, Options{Pinned: []int32{4}}); !errors.Is(err, mesh.ErrIndexRange) {
		t.Errorf("expected ErrIndexRange for pinned id, got %v", err)
	}

	bad := mesh.Mesh{Vertices: m.Vertices, Triangles: []int32{0, 1}}
	if _, err := New(bad, Options{}); !errors.Is(err, mesh.ErrTriangleStride) {
		t.Errorf("expected ErrTriangleStride, got %v", err)
	}
}

func TestBendingQuadPolicy(t *testing.T) {
	m, err := mesh.BuildGrid(mesh.GridSpec{Cols: 3, Rows: 3, Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}

	both, err := New(m, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	unique, err := New(m, Options{DedupeBendingQuads: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := len(both.BendingQuads()) / 4; got != 16 {
		t.Errorf("default policy: %d quads, want 16", got)
	}
	if got := len(unique.BendingQuads()) / 4; got != 8 {
		t.Errorf("dedupe policy: %d quads, want 8", got)
	}
	if got := len(both.Edges()) / 2; got != 16 {
		t.Errorf("edges = %d, want 16", got)
	}
}

func TestPreSolveIntegrates(t *testing.T) {
	c, err := New(unitQuad(t, 2), Options{Pinned: []int32{0}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dt := float32(0.01)
	g := math.Vec3{Y: -10}
	c.PreSolve(dt, g)

	if got := math.At(c.Positions(), 0); got != math.At(c.RestPositions(), 0) {
		t.Errorf("pinned vertex moved to %v", got)
	}
	if v := math.At(c.Velocities(), 3); !near(v.Y, -0.1) {
		t.Errorf("velocity y = %v, want -0.1", v.Y)
	}
	if p := math.At(c.Positions(), 3); !near(p.Y, 1.5-0.001) {
		t.Errorf("position y = %v, want %v", p.Y, 1.5-0.001)
	}
}

func TestGroundClamp(t *testing.T) {
	c, err := New(unitQuad(t, 0.5), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// lower vertices start on the ground; give vertex 3 sideways and downward speed
	math.SetAt(c.Velocities(), 3, math.Vec3{X: 1, Y: -5})
	c.PreSolve(0.01, math.Vec3{Y: -10})

	p := math.At(c.Positions(), 3)
	if p.Y != 0 {
		t.Errorf("vertex below ground: y = %v", p.Y)
	}
	if !near(p.X, 0.5) {
		t.Errorf("clamped vertex should keep its previous x, got %v", p.X)
	}
}

func TestPostSolveDamping(t *testing.T) {
	c, err := New(unitQuad(t, 2), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	dt := float32(0.1)
	c.PreSolve(dt, math.Vec3{Y: -10})
	c.PostSolve(dt)

	want := float32(-1 * Damping)
	for i := 0; i < c.NumVertices(); i++ {
		if v := math.At(c.Velocities(), i); !near(v.Y, want) {
			t.Errorf("vertex %d velocity y = %v, want %v", i, v.Y, want)
		}
	}
}

func TestReset(t *testing.T) {
	c, err := New(unitQuad(t, 2), Options{Pinned: []int32{0, 1}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s, err := constraint.NewEdgeStretching(c.Context(1))
	if err != nil {
		t.Fatalf("NewEdgeStretching: %v", err)
	}
	c.SetConstraintSolvers([]constraint.Solver{s})
	restInvMass := append([]float32(nil), c.InvMass()...)

	for i := 0; i < 50; i++ {
		c.PreSolve(0.01, math.Vec3{Y: -10, Z: 3})
		c.Solve(0.01, nil)
		c.PostSolve(0.01)
		c.EndFrame()
	}
	c.StartGrab(math.Vec3{X: -0.5, Y: 1.5, Z: 1})

	c.Reset()

	for i, v := range c.Positions() {
		if v != c.RestPositions()[i] {
			t.Fatalf("position %d = %v, want rest %v", i, v, c.RestPositions()[i])
		}
	}
	for i, v := range c.Velocities() {
		if v != 0 {
			t.Fatalf("velocity %d = %v, want 0", i, v)
		}
	}
	if _, ok := c.Grabbed(); ok {
		t.Error("reset should drop the grab")
	}
	for i, w := range restInvMass {
		if c.InvMass()[i] != w {
			t.Errorf("invMass[%d] = %v after reset, want %v", i, c.InvMass()[i], w)
		}
	}
	if c.Frame() != 0 {
		t.Errorf("frame = %d after reset", c.Frame())
	}
}

func TestGrabProtocol(t *testing.T) {
	c, err := New(unitQuad(t, 2), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := c.Context(1)
	w0 := c.InvMass()[0]
	w3 := c.InvMass()[3]

	target := math.Vec3{X: -0.6, Y: 2.6, Z: 0.1}
	c.StartGrab(target)
	id, ok := c.Grabbed()
	if !ok || id != 0 {
		t.Fatalf("Grabbed() = %d, %v, want 0, true", id, ok)
	}
	if ctx.InvMass[0] != 0 {
		t.Error("grabbed vertex must be pinned in the shared inverse mass buffer")
	}
	if math.At(c.Positions(), 0) != target {
		t.Errorf("grabbed vertex not snapped: %v", math.At(c.Positions(), 0))
	}

	moved := math.Vec3{X: -1, Y: 3}
	c.MoveGrabbed(moved, math.Vec3{})
	if math.At(c.Positions(), 0) != moved {
		t.Errorf("MoveGrabbed did not snap: %v", math.At(c.Positions(), 0))
	}

	// second grab releases the first
	c.StartGrab(math.Vec3{X: 0.5, Y: 1.5})
	if id, _ := c.Grabbed(); id != 3 {
		t.Fatalf("second grab picked %d, want 3", id)
	}
	if c.InvMass()[0] != w0 {
		t.Errorf("first vertex invMass = %v, want restored %v", c.InvMass()[0], w0)
	}

	release := math.Vec3{X: 2, Y: 1}
	c.EndGrab(math.Vec3{}, release)
	if _, ok := c.Grabbed(); ok {
		t.Error("EndGrab should clear the grab")
	}
	if c.InvMass()[3] != w3 {
		t.Errorf("invMass[3] = %v, want %v", c.InvMass()[3], w3)
	}
	if math.At(c.Velocities(), 3) != release {
		t.Errorf("release velocity = %v, want %v", math.At(c.Velocities(), 3), release)
	}

	// no-ops without a grab
	c.MoveGrabbed(math.Vec3{X: 9}, math.Vec3{})
	c.EndGrab(math.Vec3{}, math.Vec3{X: 9})
	if math.At(c.Velocities(), 3) != release {
		t.Error("EndGrab without a grab must not touch velocities")
	}
}

func TestSolveRunsCollidersPerSphere(t *testing.T) {
	c, err := New(unitQuad(t, 0), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	col, err := constraint.NewSphereVertexCollision(c.Context(1))
	if err != nil {
		t.Fatalf("NewSphereVertexCollision: %v", err)
	}
	c.SetColliderSolvers([]constraint.ColliderSolver{col})

	spheres := []constraint.Sphere{
		{Center: math.Vec3{X: -0.5, Y: 0.5, Z: -0.5}, Radius: 1},
		{Center: math.Vec3{X: 0.5, Y: -0.5, Z: -0.5}, Radius: 1},
	}
	c.Solve(0.01, spheres)

	for _, s := range spheres {
		for i := 0; i < c.NumVertices(); i++ {
			if d := math.At(c.Positions(), i).Distance(s.Center); d < s.Radius-1e-4 {
				t.Errorf("vertex %d inside sphere at %v (distance %v)", i, s.Center, d)
			}
		}
	}
}

func TestStatsAtRest(t *testing.T) {
	m, err := mesh.BuildGrid(mesh.GridSpec{Cols: 4, Rows: 4, Width: 1, Height: 1, Origin: math.Vec3{Y: 1}})
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}
	c, err := New(m, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s := c.Stats()
	if s.MaxSpeed != 0 || s.Grabbed != -1 {
		t.Errorf("unexpected stats at rest: %+v", s)
	}
	if s.HingeEnergy > 1e-4 || gomath.Abs(float64(s.IsometricEnergy)) > 1e-3 {
		t.Errorf("bending energy at rest should be ~0: %+v", s)
	}
}

package constraint

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/clothsim/pkg/math"
	"github.com/Faultbox/clothsim/pkg/mesh"
)

// gridContext builds a flat grid in the XY plane with unit inverse mass.
func gridContext(t *testing.T, cols, rows int) (Context, []float32) {
	t.Helper()

	m, err := mesh.BuildGrid(mesh.GridSpec{Cols: cols, Rows: rows, Width: 1, Height: 1})
	if err != nil {
		t.Fatalf("BuildGrid: %v", err)
	}
	edges, err := mesh.EdgeList(m.Triangles)
	if err != nil {
		t.Fatalf("EdgeList: %v", err)
	}
	quads, err := mesh.BendingQuads(m.Triangles)
	if err != nil {
		t.Fatalf("BendingQuads: %v", err)
	}

	invMass := make([]float32, m.NumVertices())
	ids := make([]int32, m.NumVertices())
	for i := range invMass {
		invMass[i] = 1
		ids[i] = int32(i)
	}

	ctx := Context{
		RestPos:           m.Vertices,
		InvMass:           invMass,
		VertexIDs:         ids,
		EdgeVertexIDs:     edges,
		TriangleVertexIDs: m.Triangles,
		BendingVertexIDs:  quads,
	}
	pos := make([]float32, len(m.Vertices))
	copy(pos, m.Vertices)
	return ctx, pos
}

// perturb displaces every vertex by a deterministic pseudo-random offset.
func perturb(pos []float32, amount float32) {
	for i := range pos {
		pos[i] += amount * float32(gomath.Sin(float64(i)*12.9898))
	}
}

func TestEdgeStretchingSingleEdge(t *testing.T) {
	rest := []float32{0, 0, 0, 1, 0, 0}
	ctx := Context{
		RestPos:       rest,
		InvMass:       []float32{1, 1},
		EdgeVertexIDs: []int32{0, 1},
	}

	c, err := NewEdgeStretching(ctx)
	if err != nil {
		t.Fatalf("NewEdgeStretching: %v", err)
	}

	pos := []float32{0, 0, 0, 2, 0, 0}
	c.Solve(pos, 1.0/60)
	if got := c.Residual(pos); got > 1e-6 {
		t.Errorf("stiffness 1 should fix a single edge in one pass, residual %v", got)
	}
	if !near(pos[0], 0.5) || !near(pos[3], 1.5) {
		t.Errorf("correction should be split evenly, got x0=%v x1=%v", pos[0], pos[3])
	}
}

func TestEdgeStretchingConverges(t *testing.T) {
	ctx := Context{
		RestPos:       []float32{0, 0, 0, 1, 0, 0},
		InvMass:       []float32{1, 1},
		EdgeVertexIDs: []int32{0, 1},
		Stiffness:     0.5,
	}
	c, err := NewEdgeStretching(ctx)
	if err != nil {
		t.Fatalf("NewEdgeStretching: %v", err)
	}

	pos := []float32{0, 0, 0, 0, 3, 0}
	prev := c.Residual(pos)
	for i := 0; i < 12; i++ {
		c.Solve(pos, 1.0/60)
		r := c.Residual(pos)
		if r >= prev {
			t.Fatalf("iteration %d: residual %v did not decrease from %v", i, r, prev)
		}
		if !near(r, prev*0.5) {
			t.Fatalf("iteration %d: residual %v, want half of %v", i, r, prev)
		}
		prev = r
	}
}

func TestEdgeStretchingPinnedVertex(t *testing.T) {
	ctx := Context{
		RestPos:       []float32{0, 0, 0, 1, 0, 0},
		InvMass:       []float32{0, 1},
		EdgeVertexIDs: []int32{0, 1},
	}
	c, err := NewEdgeStretching(ctx)
	if err != nil {
		t.Fatalf("NewEdgeStretching: %v", err)
	}

	pos := []float32{0, 0, 0, 2, 0, 0}
	c.Solve(pos, 1.0/60)
	if pos[0] != 0 || !near(pos[3], 1) {
		t.Errorf("pinned end must not move, free end must reach rest: %v", pos)
	}
}

func TestAllPinnedIsNoOp(t *testing.T) {
	ctx, pos := gridContext(t, 4, 4)
	perturb(pos, 0.1)
	for i := range ctx.InvMass {
		ctx.InvMass[i] = 0
	}

	for _, name := range Kinds() {
		t.Run(name, func(t *testing.T) {
			s, err := New(name, ctx)
			if err != nil {
				t.Fatalf("New(%s): %v", name, err)
			}
			before := append([]float32(nil), pos...)
			s.Solve(pos, 1.0/60)
			for i := range pos {
				if pos[i] != before[i] {
					t.Fatalf("position %d changed from %v to %v", i, before[i], pos[i])
				}
			}
		})
	}

	for _, name := range ColliderKinds() {
		t.Run(name, func(t *testing.T) {
			s, err := NewCollider(name, ctx)
			if err != nil {
				t.Fatalf("NewCollider(%s): %v", name, err)
			}
			before := append([]float32(nil), pos...)
			s.Solve(pos, 1.0/60, Sphere{Radius: 10})
			for i := range pos {
				if pos[i] != before[i] {
					t.Fatalf("position %d changed from %v to %v", i, before[i], pos[i])
				}
			}
		})
	}
}

func TestRestMeshIsSatisfied(t *testing.T) {
	ctx, pos := gridContext(t, 5, 4)

	for _, name := range Kinds() {
		t.Run(name, func(t *testing.T) {
			s, err := New(name, ctx)
			if err != nil {
				t.Fatalf("New(%s): %v", name, err)
			}
			p := append([]float32(nil), pos...)
			s.Solve(p, 1.0/60)
			for i := range p {
				if gomath.Abs(float64(p[i]-pos[i])) > 1e-4 {
					t.Fatalf("solving the rest shape moved position %d: %v -> %v", i, pos[i], p[i])
				}
			}
		})
	}
}

func TestBendingResidualAtRest(t *testing.T) {
	ctx, pos := gridContext(t, 4, 4)

	hinge, err := NewHingeBending(ctx)
	if err != nil {
		t.Fatalf("NewHingeBending: %v", err)
	}
	iso, err := NewIsometricBending(ctx)
	if err != nil {
		t.Fatalf("NewIsometricBending: %v", err)
	}

	if r := hinge.Residual(pos); r > 1e-3 {
		t.Errorf("hinge residual at rest = %v, want ~0", r)
	}
	if r := iso.Residual(pos); r > 1e-4 {
		t.Errorf("isometric residual at rest = %v, want ~0", r)
	}

	perturb(pos, 0.05)
	if r := iso.Residual(pos); r < 1e-3 {
		t.Errorf("isometric residual after perturbation = %v, want > 0", r)
	}
}

// foldedQuad returns a single quad around edge 0-1 whose rest shape is flat.
func foldedQuad() (Context, []float32) {
	rest := []float32{
		0, 0, 0,
		1, 0, 0,
		0.5, 1, 0,
		0.5, -1, 0,
	}
	ctx := Context{
		RestPos:          rest,
		InvMass:          []float32{1, 1, 1, 1},
		BendingVertexIDs: []int32{0, 1, 2, 3},
	}
	pos := []float32{
		0, 0, 0,
		1, 0, 0,
		0.5, 1, 0,
		0.5, 0, 1, // folded up by 90 degrees
	}
	return ctx, pos
}

func TestHingeBendingUnfolds(t *testing.T) {
	ctx, pos := foldedQuad()
	c, err := NewHingeBending(ctx)
	if err != nil {
		t.Fatalf("NewHingeBending: %v", err)
	}
	if !near(c.RestAngles()[0], float32(gomath.Pi)) {
		t.Fatalf("rest angle = %v, want pi", c.RestAngles()[0])
	}

	start := c.Residual(pos)
	if !near(start, float32(gomath.Pi/2)) {
		t.Fatalf("folded residual = %v, want pi/2", start)
	}
	for i := 0; i < 20; i++ {
		c.Solve(pos, 1.0/60)
	}
	if end := c.Residual(pos); end >= start {
		t.Errorf("residual %v did not drop below %v", end, start)
	}
}

func TestIsometricBendingUnfolds(t *testing.T) {
	ctx, pos := foldedQuad()
	c, err := NewIsometricBending(ctx)
	if err != nil {
		t.Fatalf("NewIsometricBending: %v", err)
	}

	start := c.Residual(pos)
	c.Solve(pos, 1.0/60)
	if end := c.Residual(pos); end > 1e-4 {
		t.Errorf("one pass with stiffness 1 should zero a single quad, got %v (start %v)", end, start)
	}
}

func TestDiagonalSolvers(t *testing.T) {
	ctx, pos := foldedQuad()

	bend, err := NewDiagonalBending(ctx)
	if err != nil {
		t.Fatalf("NewDiagonalBending: %v", err)
	}
	bend.Solve(pos, 1.0/60)
	if d := math.At(pos, 2).Distance(math.At(pos, 3)); !near(d, 2) {
		t.Errorf("apex distance = %v, want 2", d)
	}

	ctx, pos = foldedQuad()
	shear, err := NewDiagonalShear(ctx)
	if err != nil {
		t.Fatalf("NewDiagonalShear: %v", err)
	}
	restB := math.At(ctx.RestPos, 1).Distance(math.At(ctx.RestPos, 3))
	shear.Solve(pos, 1.0/60)
	// v1-v3 is solved last, so it is exact
	if d := math.At(pos, 1).Distance(math.At(pos, 3)); !near(d, restB) {
		t.Errorf("v1-v3 distance = %v, want %v", d, restB)
	}
}

func TestTriangleAngleReducesError(t *testing.T) {
	ctx := Context{
		RestPos:           []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		InvMass:           []float32{1, 1, 1},
		TriangleVertexIDs: []int32{0, 1, 2},
	}
	c, err := NewTriangleAngle(ctx)
	if err != nil {
		t.Fatalf("NewTriangleAngle: %v", err)
	}

	pos := []float32{0, 0, 0, 1, 0, 0, 0.3, 1, 0}
	start := absf(cornerCos(pos, 0, 1, 2))
	for i := 0; i < 50; i++ {
		c.Solve(pos, 1.0/60)
	}
	if end := absf(cornerCos(pos, 0, 1, 2)); end > start*0.5 {
		t.Errorf("right-angle error %v did not shrink enough from %v", end, start)
	}
}

func TestDegenerateRestCorner(t *testing.T) {
	if got := cornerCos([]float32{0, 0, 0, 0, 0, 0, 1, 0, 0}, 0, 1, 2); got != 1 {
		t.Errorf("degenerate corner cos = %v, want 1", got)
	}
}

func TestSphereVertexCollision(t *testing.T) {
	tests := []struct {
		name string
		mode CollisionMode
		in   math.Vec3
		want math.Vec3
	}{
		{"outside pushes out", Outside, math.Vec3{X: 0.5}, math.Vec3{X: 1}},
		{"outside leaves outer point", Outside, math.Vec3{Y: 2}, math.Vec3{Y: 2}},
		{"inside pulls in", Inside, math.Vec3{Z: 3}, math.Vec3{Z: 1}},
		{"inside leaves inner point", Inside, math.Vec3{X: 0.2}, math.Vec3{X: 0.2}},
		{"diagonal", Outside, math.Vec3{X: 0.3, Y: 0.4}, math.Vec3{X: 0.6, Y: 0.8}},
		{"centre is skipped", Outside, math.Vec3{}, math.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewSphereVertexCollision(Context{InvMass: []float32{1}, VertexIDs: []int32{0}})
			if err != nil {
				t.Fatalf("NewSphereVertexCollision: %v", err)
			}
			pos := []float32{tt.in.X, tt.in.Y, tt.in.Z}
			c.Solve(pos, 1.0/60, Sphere{Radius: 1, Mode: tt.mode})
			if got := math.At(pos, 0); got.Distance(tt.want) > 1e-5 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSphereTriangleCollision(t *testing.T) {
	c, err := NewSphereTriangleCollision(Context{
		InvMass:           []float32{1, 1, 1},
		TriangleVertexIDs: []int32{0, 1, 2},
	})
	if err != nil {
		t.Fatalf("NewSphereTriangleCollision: %v", err)
	}

	// centroid at the origin, sphere centre half a unit below
	pos := []float32{-1, -1, 0, 2, -1, 0, -1, 2, 0}
	c.Solve(pos, 1.0/60, Sphere{Center: math.Vec3{Z: -0.5}, Radius: 1})

	for i := 0; i < 3; i++ {
		if z := pos[3*i+2]; !near(z, 0.5) {
			t.Errorf("vertex %d z = %v, want 0.5", i, z)
		}
	}

	q, _ := mesh.ClosestPointOnTriangle(math.Vec3{Z: -0.5}, math.At(pos, 0), math.At(pos, 1), math.At(pos, 2))
	if d := q.Distance(math.Vec3{Z: -0.5}); !near(d, 1) {
		t.Errorf("closest point distance after solve = %v, want 1", d)
	}
}

func TestConstructorErrors(t *testing.T) {
	ctx, _ := gridContext(t, 3, 3)

	tests := []struct {
		name   string
		kind   string
		mutate func(c *Context)
		want   error
	}{
		{"unknown kind", "cloth_magic", func(c *Context) {}, ErrUnknownKind},
		{"edge stride", KindEdgeStretching, func(c *Context) { c.EdgeVertexIDs = []int32{0, 1, 2} }, ErrStride},
		{"quad stride", KindHingeBending, func(c *Context) { c.BendingVertexIDs = []int32{0, 1, 2} }, ErrStride},
		{"triangle range", KindTriangleAngle, func(c *Context) { c.TriangleVertexIDs = []int32{0, 1, 99} }, ErrIndexRange},
		{"negative index", KindDiagonalShear, func(c *Context) { c.BendingVertexIDs = []int32{0, 1, 2, -1} }, ErrIndexRange},
		{"missing rest", KindIsometricBending, func(c *Context) { c.RestPos = nil }, ErrMissingRest},
		{"missing inverse mass", KindDiagonalBending, func(c *Context) { c.InvMass = nil }, ErrMissingInvMass},
		{"rest size mismatch", KindEdgeStretching, func(c *Context) { c.RestPos = c.RestPos[:9] }, ErrStride},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ctx
			tt.mutate(&c)
			s, err := New(tt.kind, c)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if s != nil {
				t.Errorf("expected nil solver on error, got %T", s)
			}
		})
	}

	if _, err := NewCollider("sphere_magic", ctx); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := NewCollider(KindSphereVertexCollision, Context{InvMass: []float32{1}, VertexIDs: []int32{1}}); !errors.Is(err, ErrIndexRange) {
		t.Errorf("expected ErrIndexRange, got %v", err)
	}
}

func TestStiffnessDefaults(t *testing.T) {
	ctx, _ := gridContext(t, 2, 2)
	c, err := NewEdgeStretching(ctx)
	if err != nil {
		t.Fatalf("NewEdgeStretching: %v", err)
	}
	if c.Stiffness != 1 {
		t.Errorf("default stiffness = %v, want 1", c.Stiffness)
	}
	c.SetStiffness(0.25)
	c.SetCompliance(0.1)
	if c.Stiffness != 0.25 || c.Compliance != 0.1 {
		t.Errorf("setters not applied: %+v", c.Base)
	}
}

func TestCollisionModeText(t *testing.T) {
	var m CollisionMode
	if err := m.UnmarshalText([]byte("inside")); err != nil || m != Inside {
		t.Errorf("UnmarshalText(inside) = %v, %v", m, err)
	}
	if err := m.UnmarshalText([]byte("sideways")); err == nil {
		t.Error("expected error for unknown mode")
	}
	if b, _ := Outside.MarshalText(); string(b) != "outside" {
		t.Errorf("MarshalText(Outside) = %q", b)
	}
}

func near(a, b float32) bool {
	return gomath.Abs(float64(a-b)) < 1e-4
}

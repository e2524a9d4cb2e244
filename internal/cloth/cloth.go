// Package cloth holds the per-mesh simulation state of a cloth body and runs
// the predict, project and reconcile phases of one substep.
package cloth

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/clothsim/internal/constraint"
	"github.com/Faultbox/clothsim/internal/logger"
	"github.com/Faultbox/clothsim/pkg/math"
	"github.com/Faultbox/clothsim/pkg/mesh"
)

// Damping is applied to the velocity of every free vertex after each substep.
const Damping = 0.998

// Options configures a cloth body.
type Options struct {
	Pinned             []int32 // vertices with zero inverse mass
	DedupeBendingQuads bool    // one bending quad per interior edge instead of two
}

// Stats summarises the current state for diagnostics.
type Stats struct {
	Frame           int
	MaxSpeed        float32
	HingeEnergy     float32
	IsometricEnergy float32
	Grabbed         int // -1 when nothing is held
}

// Cloth is one simulated triangle mesh.
type Cloth struct {
	numVertices int

	pos     []float32
	restPos []float32
	prevPos []float32
	vel     []float32
	invMass []float32

	triangles []int32
	edges     []int32
	quads     []int32
	pinned    []int32

	restAngles []float32 // signed, for HingeEnergy

	solvers         []constraint.Solver
	colliderSolvers []constraint.ColliderSolver

	grabID      int
	grabInvMass float32

	frame int
	log   *zap.Logger
}

// New binds a mesh: it copies the vertex buffer as the rest shape, derives
// edges and bending quads and distributes inverse mass by triangle area.
func New(m mesh.Mesh, opts Options) (*Cloth, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("cloth: %w", err)
	}
	n := m.NumVertices()
	if err := mesh.CheckIndices(opts.Pinned, n); err != nil {
		return nil, fmt.Errorf("cloth: pinned: %w", err)
	}

	edges, err := mesh.EdgeList(m.Triangles)
	if err != nil {
		return nil, fmt.Errorf("cloth: %w", err)
	}
	var quads []int32
	if opts.DedupeBendingQuads {
		quads, err = mesh.UniqueBendingQuads(m.Triangles)
	} else {
		quads, err = mesh.BendingQuads(m.Triangles)
	}
	if err != nil {
		return nil, fmt.Errorf("cloth: %w", err)
	}

	c := &Cloth{
		numVertices: n,
		pos:         append([]float32(nil), m.Vertices...),
		restPos:     append([]float32(nil), m.Vertices...),
		prevPos:     append([]float32(nil), m.Vertices...),
		vel:         make([]float32, 3*n),
		invMass:     make([]float32, n),
		triangles:   append([]int32(nil), m.Triangles...),
		edges:       edges,
		quads:       quads,
		pinned:      append([]int32(nil), opts.Pinned...),
		grabID:      -1,
		log:         logger.Named("cloth"),
	}
	c.initInvMass()
	c.restAngles = constraint.RestBendingAngles(c.restPos, c.quads)

	c.log.Debug("cloth bound",
		zap.Int("vertices", n),
		zap.Int("triangles", m.NumTriangles()),
		zap.Int("edges", len(edges)/2),
		zap.Int("bending_quads", len(quads)/4),
		zap.Int("pinned", len(opts.Pinned)))

	return c, nil
}

// initInvMass gives each vertex 1/(3A) from every adjacent triangle of area
// A, then zeroes the pinned vertices.
func (c *Cloth) initInvMass() {
	for i := range c.invMass {
		c.invMass[i] = 0
	}
	for t := 0; t < len(c.triangles)/3; t++ {
		v0, v1, v2 := int(c.triangles[3*t]), int(c.triangles[3*t+1]), int(c.triangles[3*t+2])
		area := mesh.TriangleArea(c.pos, v0, v1, v2)
		if area <= 0 {
			continue
		}
		w := 1 / (3 * area)
		c.invMass[v0] += w
		c.invMass[v1] += w
		c.invMass[v2] += w
	}
	for _, id := range c.pinned {
		c.invMass[id] = 0
	}
}

// Context returns a constraint context over this cloth's rest shape and
// topology. InvMass aliases the live buffer.
func (c *Cloth) Context(stiffness float32) constraint.Context {
	ids := make([]int32, c.numVertices)
	for i := range ids {
		ids[i] = int32(i)
	}
	return constraint.Context{
		RestPos:           c.restPos,
		InvMass:           c.invMass,
		VertexIDs:         ids,
		EdgeVertexIDs:     c.edges,
		TriangleVertexIDs: c.triangles,
		BendingVertexIDs:  c.quads,
		Stiffness:         stiffness,
	}
}

// SetConstraintSolvers replaces the ordered list of constraint solvers.
func (c *Cloth) SetConstraintSolvers(solvers []constraint.Solver) {
	c.solvers = solvers
}

// SetColliderSolvers replaces the ordered list of collision solvers.
func (c *Cloth) SetColliderSolvers(solvers []constraint.ColliderSolver) {
	c.colliderSolvers = solvers
}

// PreSolve predicts positions with explicit Euler. Vertices that fall below
// the ground plane y=0 go back to their previous position, on the plane.
func (c *Cloth) PreSolve(dt float32, gravity math.Vec3) {
	for i := 0; i < c.numVertices; i++ {
		if c.invMass[i] == 0 {
			continue
		}
		math.AddAt(c.vel, i, gravity, dt)
		math.VecCopy(c.prevPos, i, c.pos, i)
		math.VecAdd(c.pos, i, c.vel, i, dt)

		if c.pos[3*i+1] < 0 {
			math.VecCopy(c.pos, i, c.prevPos, i)
			c.pos[3*i+1] = 0
		}
	}
}

// Solve runs every constraint solver once, in order, then every collision
// solver once per collider.
func (c *Cloth) Solve(dt float32, colliders []constraint.Sphere) {
	for _, s := range c.solvers {
		s.Solve(c.pos, dt)
	}
	for _, s := range c.colliderSolvers {
		for _, col := range colliders {
			s.Solve(c.pos, dt, col)
		}
	}
}

// PostSolve derives velocities from the substep displacement and damps them.
func (c *Cloth) PostSolve(dt float32) {
	inv := 1 / dt
	for i := 0; i < c.numVertices; i++ {
		if c.invMass[i] == 0 {
			continue
		}
		math.VecSetDiff(c.vel, i, c.pos, i, c.prevPos, i, inv)
		math.VecScale(c.vel, i, Damping)
	}
}

// EndFrame marks the end of a frame.
func (c *Cloth) EndFrame() {
	c.frame++
}

// Reset restores the rest shape, clears velocities and drops any grab.
func (c *Cloth) Reset() {
	if c.grabID >= 0 {
		c.invMass[c.grabID] = c.grabInvMass
		c.grabID = -1
	}
	copy(c.pos, c.restPos)
	copy(c.prevPos, c.restPos)
	for i := range c.vel {
		c.vel[i] = 0
	}
	c.frame = 0
}

// Positions returns the live position buffer. Callers may read it between
// frames; writing to it bypasses the solver.
func (c *Cloth) Positions() []float32 { return c.pos }

// RestPositions returns the bind-time shape.
func (c *Cloth) RestPositions() []float32 { return c.restPos }

// Velocities returns the live velocity buffer.
func (c *Cloth) Velocities() []float32 { return c.vel }

// InvMass returns the live inverse mass buffer.
func (c *Cloth) InvMass() []float32 { return c.invMass }

// Triangles returns the face index list.
func (c *Cloth) Triangles() []int32 { return c.triangles }

// Edges returns the unique edge list.
func (c *Cloth) Edges() []int32 { return c.edges }

// BendingQuads returns the bending quad list.
func (c *Cloth) BendingQuads() []int32 { return c.quads }

// NumVertices returns the vertex count.
func (c *Cloth) NumVertices() int { return c.numVertices }

// Frame returns the number of frames since bind or the last reset.
func (c *Cloth) Frame() int { return c.frame }

// Stats computes diagnostics over the current state.
func (c *Cloth) Stats() Stats {
	s := Stats{Frame: c.frame, Grabbed: c.grabID}
	for i := 0; i < c.numVertices; i++ {
		if v := math.At(c.vel, i).Length(); v > s.MaxSpeed {
			s.MaxSpeed = v
		}
	}
	for q := 0; q < len(c.quads)/4; q++ {
		v0, v1, v2, v3 := int(c.quads[4*q]), int(c.quads[4*q+1]), int(c.quads[4*q+2]), int(c.quads[4*q+3])
		s.HingeEnergy += constraint.HingeEnergy(c.pos, v0, v1, v2, v3, c.restAngles[q])
		s.IsometricEnergy += constraint.IsometricEnergy(c.pos, v0, v1, v2, v3)
	}
	return s
}

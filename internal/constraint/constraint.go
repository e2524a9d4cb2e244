// Package constraint implements the position-based cloth constraints.
//
// Every solver precomputes its rest invariants once from Context.RestPos and
// then, on each Solve, runs a single Gauss-Seidel pass over its instances,
// writing corrections straight into the shared position buffer:
//
//	lambda = -k * C / sum(w_i * |grad C_i|^2)
//	dx_i   = lambda * w_i * grad C_i
//
// Instances whose participants are all pinned, or whose gradient or
// denominator degenerates, are skipped for that call.
package constraint

import (
	"errors"
	"fmt"

	"github.com/Faultbox/clothsim/pkg/math"
)

var (
	// ErrStride is returned when an index or position array has the wrong stride.
	ErrStride = errors.New("constraint: wrong array stride")
	// ErrIndexRange is returned when an index does not address a vertex.
	ErrIndexRange = errors.New("constraint: vertex index out of range")
	// ErrMissingRest is returned when a solver needing rest positions gets none.
	ErrMissingRest = errors.New("constraint: rest positions required")
	// ErrMissingInvMass is returned when no inverse mass buffer is supplied.
	ErrMissingInvMass = errors.New("constraint: inverse mass buffer required")
	// ErrUnknownKind is returned by the registry for an unregistered name.
	ErrUnknownKind = errors.New("constraint: unknown kind")
)

// Solver projects positions onto one family of constraints.
type Solver interface {
	Solve(pos []float32, dt float32)
}

// ColliderSolver projects positions against a moving sphere supplied per call.
type ColliderSolver interface {
	Solve(pos []float32, dt float32, s Sphere)
}

// Sphere describes a collider for one substep.
type Sphere struct {
	Center math.Vec3
	Radius float32
	Mode   CollisionMode
}

// violated reports whether a point at dist from the centre breaks the mode.
func (s Sphere) violated(dist float32) bool {
	if s.Mode == Inside {
		return dist > s.Radius
	}
	return dist < s.Radius
}

// Base holds the parameters shared by every solver.
type Base struct {
	Stiffness  float32 // 0..1, scales each correction
	Compliance float32 // kept for XPBD, not used by plain PBD
}

func newBase(ctx Context) Base {
	k := ctx.Stiffness
	if k == 0 {
		k = 1
	}
	return Base{Stiffness: k, Compliance: ctx.Compliance}
}

// SetStiffness changes the correction scale.
func (b *Base) SetStiffness(k float32) {
	b.Stiffness = k
}

// SetCompliance stores the XPBD compliance.
func (b *Base) SetCompliance(c float32) {
	b.Compliance = c
}

// Context carries what a solver constructor needs. InvMass is aliased, not
// copied: grab and pin changes on the body are seen by every solver.
type Context struct {
	RestPos           []float32
	InvMass           []float32
	VertexIDs         []int32
	EdgeVertexIDs     []int32 // stride 2
	TriangleVertexIDs []int32 // stride 3
	BendingVertexIDs  []int32 // stride 4
	Stiffness         float32 // 0 means 1
	Compliance        float32
}

// numVertices validates the buffers and returns the vertex count.
func (c Context) numVertices(needRest bool) (int, error) {
	if c.InvMass == nil {
		return 0, ErrMissingInvMass
	}
	if !needRest {
		return len(c.InvMass), nil
	}
	if c.RestPos == nil {
		return 0, ErrMissingRest
	}
	if len(c.RestPos)%3 != 0 {
		return 0, fmt.Errorf("%w: rest positions have %d floats", ErrStride, len(c.RestPos))
	}
	if len(c.RestPos)/3 != len(c.InvMass) {
		return 0, fmt.Errorf("%w: %d rest vertices, %d inverse masses", ErrStride, len(c.RestPos)/3, len(c.InvMass))
	}
	return len(c.InvMass), nil
}

// indices checks stride and range of ids and returns a private copy.
func (c Context) indices(name string, ids []int32, stride int, needRest bool) ([]int32, error) {
	n, err := c.numVertices(needRest)
	if err != nil {
		return nil, err
	}
	if len(ids)%stride != 0 {
		return nil, fmt.Errorf("%w: %s has %d entries, want a multiple of %d", ErrStride, name, len(ids), stride)
	}
	for i, id := range ids {
		if id < 0 || int(id) >= n {
			return nil, fmt.Errorf("%w: %s[%d] = %d (vertices: %d)", ErrIndexRange, name, i, id, n)
		}
	}
	out := make([]int32, len(ids))
	copy(out, ids)
	return out, nil
}

// projectDistance solves |x_i0 - x_i1| = restLen for one pair.
func projectDistance(pos, invMass []float32, i0, i1 int, restLen, k float32) {
	w0 := invMass[i0]
	w1 := invMass[i1]
	wSum := w0 + w1
	if wSum == 0 {
		return
	}

	grad := math.At(pos, i0).Sub(math.At(pos, i1))
	lenSq := grad.LengthSquared()
	if lenSq == 0 {
		return
	}
	l := math.Sqrt(lenSq)
	grad = grad.Scale(1 / l)

	lambda := -k * (l - restLen) / wSum
	math.AddAt(pos, i0, grad, lambda*w0)
	math.AddAt(pos, i1, grad, -lambda*w1)
}

func restDistance(rest []float32, i0, i1 int) float32 {
	return math.Sqrt(math.VecDistSquared(rest, i0, rest, i1))
}

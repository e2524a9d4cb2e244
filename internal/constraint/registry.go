package constraint

import (
	"fmt"
	"sort"
)

// Registry names, as used in configuration files.
const (
	KindEdgeStretching          = "edge_stretching"
	KindDiagonalBending         = "diagonal_bending"
	KindDiagonalShear           = "diagonal_shear"
	KindTriangleAngle           = "triangle_angle"
	KindHingeBending            = "hinge_bending"
	KindIsometricBending        = "isometric_bending"
	KindSphereVertexCollision   = "sphere_vertex_collision"
	KindSphereTriangleCollision = "sphere_triangle_collision"
)

var solvers = map[string]func(Context) (Solver, error){
	KindEdgeStretching:   solverFactory(NewEdgeStretching),
	KindDiagonalBending:  solverFactory(NewDiagonalBending),
	KindDiagonalShear:    solverFactory(NewDiagonalShear),
	KindTriangleAngle:    solverFactory(NewTriangleAngle),
	KindHingeBending:     solverFactory(NewHingeBending),
	KindIsometricBending: solverFactory(NewIsometricBending),
}

var colliders = map[string]func(Context) (ColliderSolver, error){
	KindSphereVertexCollision:   colliderFactory(NewSphereVertexCollision),
	KindSphereTriangleCollision: colliderFactory(NewSphereTriangleCollision),
}

// solverFactory adapts a typed constructor. A failed constructor yields a nil
// interface, never a typed nil.
func solverFactory[S Solver](ctor func(Context) (S, error)) func(Context) (Solver, error) {
	return func(c Context) (Solver, error) {
		s, err := ctor(c)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func colliderFactory[S ColliderSolver](ctor func(Context) (S, error)) func(Context) (ColliderSolver, error) {
	return func(c Context) (ColliderSolver, error) {
		s, err := ctor(c)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// New builds the named constraint solver.
func New(name string, ctx Context) (Solver, error) {
	f, ok := solvers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	s, err := f(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

// NewCollider builds the named collision solver.
func NewCollider(name string, ctx Context) (ColliderSolver, error) {
	f, ok := colliders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	s, err := f(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

// IsKind reports whether name is a registered constraint solver.
func IsKind(name string) bool {
	_, ok := solvers[name]
	return ok
}

// IsColliderKind reports whether name is a registered collision solver.
func IsColliderKind(name string) bool {
	_, ok := colliders[name]
	return ok
}

// Kinds returns the registered constraint solver names, sorted.
func Kinds() []string {
	return sortedKeys(solvers)
}

// ColliderKinds returns the registered collision solver names, sorted.
func ColliderKinds() []string {
	return sortedKeys(colliders)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/clothsim/internal/constraint"
)

// ErrInvalid is wrapped by every Validate error.
var ErrInvalid = errors.New("invalid config")

// Validate checks values that would otherwise fail deep inside the solver.
func (c *Config) Validate() error {
	if c.Physics.Dt <= 0 {
		return fmt.Errorf("%w: physics.dt must be positive, got %v", ErrInvalid, c.Physics.Dt)
	}
	if c.Physics.Substeps <= 0 {
		return fmt.Errorf("%w: physics.substeps must be positive, got %d", ErrInvalid, c.Physics.Substeps)
	}

	g := c.Cloth.Grid
	if g.Cols < 2 || g.Rows < 2 {
		return fmt.Errorf("%w: cloth.grid needs at least 2x2 vertices, got %dx%d", ErrInvalid, g.Cols, g.Rows)
	}
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: cloth.grid size must be positive, got %vx%v", ErrInvalid, g.Width, g.Height)
	}

	for i, s := range c.Cloth.Solvers {
		if !constraint.IsKind(s.Kind) {
			return fmt.Errorf("%w: cloth.solvers[%d]: unknown kind %q (known: %v)", ErrInvalid, i, s.Kind, constraint.Kinds())
		}
		if s.Stiffness < 0 || s.Stiffness > 1 {
			return fmt.Errorf("%w: cloth.solvers[%d]: stiffness %v outside [0,1]", ErrInvalid, i, s.Stiffness)
		}
	}
	for i, s := range c.Cloth.ColliderSolvers {
		if !constraint.IsColliderKind(s.Kind) {
			return fmt.Errorf("%w: cloth.collider_solvers[%d]: unknown kind %q (known: %v)", ErrInvalid, i, s.Kind, constraint.ColliderKinds())
		}
	}

	for i, s := range c.Spheres {
		if s.Radius < 0 {
			return fmt.Errorf("%w: spheres[%d]: negative radius %v", ErrInvalid, i, s.Radius)
		}
	}
	return nil
}

// Package config handles simulation configuration loading and management.
package config

import (
	"github.com/Faultbox/clothsim/internal/constraint"
)

// Config holds all simulation settings.
type Config struct {
	Physics  PhysicsConfig  `yaml:"physics"`
	Cloth    ClothConfig    `yaml:"cloth"`
	Spheres  []SphereConfig `yaml:"spheres"`
	Graphics GraphicsConfig `yaml:"graphics"`
	Stream   StreamConfig   `yaml:"stream"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PhysicsConfig holds the integrator settings.
type PhysicsConfig struct {
	Gravity     [3]float32 `yaml:"gravity,flow"`
	Dt          float32    `yaml:"dt"` // frame step, seconds
	Substeps    int        `yaml:"substeps"`
	StartPaused bool       `yaml:"start_paused"`
}

// GridConfig describes the generated cloth sheet.
type GridConfig struct {
	Cols     int        `yaml:"cols"`
	Rows     int        `yaml:"rows"`
	Width    float32    `yaml:"width"`
	Height   float32    `yaml:"height"`
	Origin   [3]float32 `yaml:"origin,flow"`
	AngleDeg float32    `yaml:"angle_deg"` // tilt about X
}

// SolverConfig selects one solver and its parameters.
type SolverConfig struct {
	Kind       string  `yaml:"kind"`
	Stiffness  float32 `yaml:"stiffness"`
	Compliance float32 `yaml:"compliance,omitempty"`
}

// ClothConfig holds the cloth body settings.
type ClothConfig struct {
	Grid               GridConfig     `yaml:"grid"`
	Pinned             []int32        `yaml:"pinned,flow"`
	PinTopCorners      bool           `yaml:"pin_top_corners"`
	DedupeBendingQuads bool           `yaml:"dedupe_bending_quads"`
	Solvers            []SolverConfig `yaml:"solvers"`          // run in this order
	ColliderSolvers    []SolverConfig `yaml:"collider_solvers"` // run in this order, once per sphere
}

// SphereConfig describes one sphere collider.
type SphereConfig struct {
	Center [3]float32               `yaml:"center,flow"`
	Radius float32                  `yaml:"radius"`
	Mode   constraint.CollisionMode `yaml:"mode"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Fullscreen    bool   `yaml:"fullscreen"`
	VSync         bool   `yaml:"vsync"`
	ShowEdges     bool   `yaml:"show_edges"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// StreamConfig holds the websocket frame stream settings.
type StreamConfig struct {
	Addr string `yaml:"addr"` // empty disables the server
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values: a 30x30 sheet
// hanging from its top corners over a small sphere.
func Default() *Config {
	return &Config{
		Physics: PhysicsConfig{
			Gravity:     [3]float32{0, -10, 0},
			Dt:          1.0 / 60.0,
			Substeps:    5,
			StartPaused: true,
		},
		Cloth: ClothConfig{
			Grid: GridConfig{
				Cols:   30,
				Rows:   30,
				Width:  1,
				Height: 1,
				Origin: [3]float32{0, 1.2, 0},
			},
			PinTopCorners: true,
			Solvers: []SolverConfig{
				{Kind: constraint.KindEdgeStretching, Stiffness: 1},
				{Kind: constraint.KindIsometricBending, Stiffness: 0.05},
			},
			ColliderSolvers: []SolverConfig{
				{Kind: constraint.KindSphereVertexCollision, Stiffness: 1},
			},
		},
		Spheres: []SphereConfig{
			{Center: [3]float32{0, 0.6, 0.3}, Radius: 0.2, Mode: constraint.Outside},
		},
		Graphics: GraphicsConfig{
			Width:         1280,
			Height:        720,
			Fullscreen:    false,
			VSync:         true,
			ShowEdges:     false,
			ScreenshotDir: "screenshots",
		},
		Stream: StreamConfig{
			Addr: "",
			Path: "/ws",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

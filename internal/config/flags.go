package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagSubsteps   = flag.Int("substeps", 0, "Substeps per frame")
	flagDt         = flag.Float64("dt", 0, "Frame time step in seconds")
	flagPaused     = flag.Bool("paused", false, "Start with the simulation paused")
	flagRun        = flag.Bool("run", false, "Start with the simulation running")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagServe      = flag.String("serve", "", "Serve the websocket frame stream on this address")
	flagFrames     = flag.Int("frames", 0, "Headless: number of frames to simulate (0 = until interrupted)")
	flagWriteCfg   = flag.String("write-config", "", "Write the effective config to this path and exit (\"user\" for the user config dir)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// Frames returns the headless frame count requested via --frames.
func Frames() int {
	return *flagFrames
}

// WriteConfigPath returns the destination requested via --write-config, or
// "" when none was given.
func WriteConfigPath() string {
	if *flagWriteCfg == "user" {
		return UserConfigPath()
	}
	return *flagWriteCfg
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSubsteps > 0 {
		cfg.Physics.Substeps = *flagSubsteps
	}
	if *flagDt > 0 {
		cfg.Physics.Dt = float32(*flagDt)
	}
	if *flagPaused {
		cfg.Physics.StartPaused = true
	}
	if *flagRun {
		cfg.Physics.StartPaused = false
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagServe != "" {
		cfg.Stream.Addr = *flagServe
	}
}

// clothview is the interactive cloth viewer.
//
// Keys: Space pause, S single step, R reset, E edges, F frame cloth, I stats,
// P screenshot, F11 fullscreen, Esc quit. Left drag grabs cloth or spheres
// (orbits on empty space), right drag orbits, middle or shift+left drag pans,
// wheel zooms.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/clothsim/internal/config"
	"github.com/Faultbox/clothsim/internal/logger"
	"github.com/Faultbox/clothsim/internal/sim"
	"github.com/Faultbox/clothsim/internal/stream"
	"github.com/Faultbox/clothsim/internal/viewer"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", path)
		return
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== clothsim viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	s, err := sim.New(cfg)
	if err != nil {
		logger.Error("failed to build simulation", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional mirror of the viewer to websocket clients
	var cmds <-chan sim.Command
	if cfg.Stream.Addr != "" {
		hub, err := stream.NewHub(s, cfg.Stream.Path)
		if err != nil {
			logger.Error("failed to create stream hub", zap.Error(err))
			os.Exit(1)
		}
		s.OnUpdate(func() { hub.Publish(s) })
		cmds = hub.Commands()
		go func() {
			if err := hub.ListenAndServe(ctx, cfg.Stream.Addr); err != nil {
				logger.Error("stream server error", zap.Error(err))
			}
		}()
	}

	v, err := viewer.New(cfg, s)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	if err := v.Run(ctx, cmds); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}

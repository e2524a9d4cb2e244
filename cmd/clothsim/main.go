// clothsim runs the cloth simulation without a window: either a fixed number
// of frames as fast as possible, or in real time while streaming frames to
// websocket clients.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/clothsim/internal/config"
	"github.com/Faultbox/clothsim/internal/logger"
	"github.com/Faultbox/clothsim/internal/sim"
	"github.com/Faultbox/clothsim/internal/stream"
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

	logger.Info("=== clothsim (headless) ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	s, err := sim.New(cfg)
	if err != nil {
		logger.Error("failed to build simulation", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, s, config.Frames()); err != nil {
		logger.Error("simulation error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("simulation finished", zap.Int("frames", s.Scene.Frame()))
}

func run(ctx context.Context, cfg *config.Config, s *sim.Sim, frames int) error {
	if cfg.Stream.Addr == "" {
		if frames <= 0 {
			// Nobody can unpause a headless run without a stream.
			s.Scene.SetPaused(false)
			return s.Run(ctx, nil, 0)
		}
		start := time.Now()
		s.StepN(frames)
		logger.Info("batch done",
			zap.Int("frames", frames),
			zap.Duration("elapsed", time.Since(start)))
		s.LogStats()
		return nil
	}

	hub, err := stream.NewHub(s, cfg.Stream.Path)
	if err != nil {
		return fmt.Errorf("creating stream hub: %w", err)
	}
	s.OnUpdate(func() { hub.Publish(s) })

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- hub.ListenAndServe(ctx, cfg.Stream.Addr)
	}()

	runErr := s.Run(ctx, hub.Commands(), frames)
	cancel()
	if err := <-errc; err != nil {
		return fmt.Errorf("serving stream: %w", err)
	}
	return runErr
}

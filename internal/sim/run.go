package sim

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// statsInterval is the number of frames between stats log lines.
const statsInterval = 300

// Run advances the scene in real time at one frame per Dt until ctx is done.
// Commands are drained before every frame so that all mutation happens on
// this goroutine. maxFrames > 0 stops the loop after that many steps.
func (s *Sim) Run(ctx context.Context, cmds <-chan Command, maxFrames int) error {
	dt := time.Duration(float64(s.Scene.Config().Dt) * float64(time.Second))
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	s.log.Info("driver started", zap.Duration("dt", dt), zap.Int("max_frames", maxFrames))

	steps := 0
	for {
		select {
		case <-ctx.Done():
			s.log.Info("driver stopped", zap.Int("frames", steps))
			return nil
		case <-ticker.C:
		}

		applied := s.Drain(cmds)
		if !s.Advance() {
			if applied > 0 {
				s.notify()
			}
			continue
		}
		steps++
		if s.Scene.Frame()%statsInterval == 0 {
			s.LogStats()
		}
		if maxFrames > 0 && steps >= maxFrames {
			s.log.Info("frame limit reached", zap.Int("frames", steps))
			return nil
		}
	}
}

// Drain applies every queued command and returns how many were accepted.
func (s *Sim) Drain(cmds <-chan Command) int {
	n := 0
	for {
		select {
		case cmd, ok := <-cmds:
			if !ok {
				return n
			}
			if err := s.Apply(cmd); err != nil {
				s.log.Warn("command rejected", zap.Error(err))
				continue
			}
			n++
		default:
			return n
		}
	}
}

// OnUpdate registers f to run after every step, and after commands that
// change the state while the scene is paused.
func (s *Sim) OnUpdate(f func()) {
	s.updates = append(s.updates, f)
}

func (s *Sim) notify() {
	for _, f := range s.updates {
		f()
	}
}

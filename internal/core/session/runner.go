package session

import (
	"context"
	"time"
)

// Tick advances the simulation by dt.
func (s *Session) Tick(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.world.Step(dt)
}

// Run steps the simulation at the configured tick rate until ctx is done.
// Wall time is fed through an accumulator so the simulation always advances
// in whole fixed steps; a single wake-up never feeds more than MaxFrameTime.
func (s *Session) Run(ctx context.Context) error {
	step := s.cfg.Tick()
	ticker := time.NewTicker(step)
	defer ticker.Stop()

	last := time.Now()
	var acc time.Duration
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			frame := now.Sub(last)
			last = now
			acc += min(frame, s.cfg.MaxFrameTime)
			for acc >= step {
				if s.isClosed() {
					return ErrClosed
				}
				s.Tick(step)
				acc -= step
			}
		}
	}
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

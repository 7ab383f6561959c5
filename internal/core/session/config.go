package session

import (
	"time"

	"github.com/pkg/errors"

	"github.com/zeusync/shatter/internal/core/world"
)

type Config struct {
	// TickRate is the number of simulation steps per second.
	TickRate int `yaml:"tick_rate"`
	// MaxFrameTime caps how much wall time a single runner wake-up may feed
	// the simulation, so a stalled process does not fast-forward.
	MaxFrameTime time.Duration `yaml:"max_frame_time"`
	// AutoBreak is the delay between Start and the break. Zero disables it.
	AutoBreak time.Duration  `yaml:"auto_break"`
	Viewport  world.Viewport `yaml:"viewport"`
	// Level is loaded when the session is created.
	Level string `yaml:"level"`
}

func DefaultConfig() Config {
	return Config{
		TickRate:     60,
		MaxFrameTime: 200 * time.Millisecond,
		AutoBreak:    1500 * time.Millisecond,
		Viewport:     world.Viewport{Width: 1080, Height: 720},
		Level:        "tutorial",
	}
}

// Tick is the fixed simulation step.
func (c Config) Tick() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

func (c Config) Validate() error {
	switch {
	case c.TickRate <= 0 || c.TickRate > 1000:
		return errors.Wrapf(ErrInvalidConfig, "tick rate %d out of range", c.TickRate)
	case c.MaxFrameTime <= 0:
		return errors.Wrap(ErrInvalidConfig, "max frame time must be positive")
	case c.AutoBreak < 0:
		return errors.Wrap(ErrInvalidConfig, "auto break must not be negative")
	case c.Viewport.Width <= 0 || c.Viewport.Height <= 0:
		return errors.Wrap(ErrInvalidConfig, "viewport must be positive")
	}
	return nil
}

package world

import (
	"time"

	"github.com/pkg/errors"
)

// Config tunes the simulation. Distances are in viewport units (pixels),
// time in seconds unless the field is a time.Duration.
type Config struct {
	// Gravity is the downward acceleration. The y axis points down.
	Gravity       float64 `yaml:"gravity"`
	Iterations    int     `yaml:"iterations"`
	Density       float64 `yaml:"density"`
	Restitution   float64 `yaml:"restitution"`
	Friction      float64 `yaml:"friction"`
	WallThickness float64 `yaml:"wall_thickness"`

	Break     BreakConfig     `yaml:"break"`
	Snap      SnapConfig      `yaml:"snap"`
	Repulsion RepulsionConfig `yaml:"repulsion"`
	Grab      GrabConfig      `yaml:"grab"`
}

type BreakConfig struct {
	// Stagger separates consecutive pieces; Hold is how long a piece hangs
	// on its center pin.
	Stagger time.Duration `yaml:"stagger"`
	Hold    time.Duration `yaml:"hold"`
	// KickX is the spread of the random horizontal velocity change, KickY
	// the fixed upward one.
	KickX float64 `yaml:"kick_x"`
	KickY float64 `yaml:"kick_y"`
	// The impulse lands at (rand-0.5)*PointSpread right of and PointLift
	// above the body center.
	PointSpread float64 `yaml:"point_spread"`
	PointLift   float64 `yaml:"point_lift"`
	// ModalPieces fall without a kick.
	ModalPieces []string `yaml:"modal_pieces"`
}

type SnapConfig struct {
	Threshold float64 `yaml:"threshold"`
}

type RepulsionConfig struct {
	Radius       float64 `yaml:"radius"`
	SensorRadius float64 `yaml:"sensor_radius"`
	Strength     float64 `yaml:"strength"`
}

type GrabConfig struct {
	PickRadius float64 `yaml:"pick_radius"`
	MaxForce   float64 `yaml:"max_force"`
	// ErrorBias is the fraction of joint error left uncorrected after 1/60s.
	ErrorBias float64 `yaml:"error_bias"`
	// Frequency and Damping shape the spring the grab point follows the
	// pointer with.
	Frequency float64 `yaml:"frequency"`
	Damping   float64 `yaml:"damping"`
}

// DefaultModalPieces lists the pieces of the form-modal level.
var DefaultModalPieces = []string{
	"modal-backdrop",
	"modal-container",
	"modal-title",
	"name-input",
	"email-input",
	"password-input",
	"submit-btn",
	"cancel-btn",
}

func DefaultConfig() Config {
	return Config{
		Gravity:       1000,
		Iterations:    10,
		Density:       0.001,
		Restitution:   0.3,
		Friction:      0.1,
		WallThickness: 60,
		Break: BreakConfig{
			Stagger:     300 * time.Millisecond,
			Hold:        800 * time.Millisecond,
			KickX:       240,
			KickY:       60,
			PointSpread: 30,
			PointLift:   20,
			ModalPieces: append([]string(nil), DefaultModalPieces...),
		},
		Snap: SnapConfig{
			Threshold: 80,
		},
		Repulsion: RepulsionConfig{
			Radius:       120,
			SensorRadius: 40,
			Strength:     40,
		},
		Grab: GrabConfig{
			PickRadius: 5,
			MaxForce:   50000,
			ErrorBias:  0.15,
			Frequency:  12,
			Damping:    0.9,
		},
	}
}

func (c Config) Validate() error {
	switch {
	case c.Gravity < 0:
		return errors.Wrap(ErrInvalidConfig, "gravity must not be negative")
	case c.Iterations <= 0:
		return errors.Wrap(ErrInvalidConfig, "iterations must be positive")
	case c.Density <= 0:
		return errors.Wrap(ErrInvalidConfig, "density must be positive")
	case c.WallThickness <= 0:
		return errors.Wrap(ErrInvalidConfig, "wall thickness must be positive")
	case c.Break.Stagger < 0 || c.Break.Hold < 0:
		return errors.Wrap(ErrInvalidConfig, "break delays must not be negative")
	case c.Snap.Threshold <= 0:
		return errors.Wrap(ErrInvalidConfig, "snap threshold must be positive")
	case c.Repulsion.Radius <= 0 || c.Repulsion.SensorRadius <= 0:
		return errors.Wrap(ErrInvalidConfig, "repulsion radii must be positive")
	case c.Grab.MaxForce <= 0:
		return errors.Wrap(ErrInvalidConfig, "grab max force must be positive")
	case c.Grab.ErrorBias <= 0 || c.Grab.ErrorBias >= 1:
		return errors.Wrap(ErrInvalidConfig, "grab error bias must be in (0, 1)")
	case c.Grab.Frequency <= 0 || c.Grab.Damping < 0:
		return errors.Wrap(ErrInvalidConfig, "grab spring must have positive frequency")
	}
	return nil
}

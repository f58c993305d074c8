package control

import (
	"github.com/pkg/errors"

	"github.com/cxd309/intersection-engine/internal/road"
)

// Defaults for the controller tunables.
const (
	DefaultGreenSeconds           = 10.0
	DefaultAllRedSeconds          = 2.0
	DefaultIntersectionSpeedRatio = 0.5
	DefaultPredictionSlack        = 1
	DefaultMaxPredictionTicks     = 2000
)

// Config selects a strategy and holds its tunables. Zero values take the
// defaults above.
type Config struct {
	Strategy Strategy `json:"strategy"`

	// Traffic light.
	GreenSeconds  float64 `json:"green_seconds,omitempty"`
	AllRedSeconds float64 `json:"all_red_seconds,omitempty"`
	// InitialLight is the first green direction; East when unset.
	InitialLight *road.Direction `json:"initial_light,omitempty"`
	// IntersectionSpeedRatio scales VMax for cars crossing on green.
	IntersectionSpeedRatio float64 `json:"intersection_speed_ratio,omitempty"`

	// Prediction.
	// PredictionSlack is how many preceding ticks of other reservations are
	// also checked, absorbing integration rounding.
	PredictionSlack    int `json:"prediction_slack,omitempty"`
	MaxPredictionTicks int `json:"max_prediction_ticks,omitempty"`
}

// WithDefaults fills unset tunables.
func (c Config) WithDefaults() Config {
	if c.Strategy == "" {
		c.Strategy = StrategyReservation
	}
	if c.GreenSeconds == 0 {
		c.GreenSeconds = DefaultGreenSeconds
	}
	if c.AllRedSeconds == 0 {
		c.AllRedSeconds = DefaultAllRedSeconds
	}
	if c.InitialLight == nil {
		east := road.East
		c.InitialLight = &east
	}
	if c.IntersectionSpeedRatio == 0 {
		c.IntersectionSpeedRatio = DefaultIntersectionSpeedRatio
	}
	if c.PredictionSlack == 0 {
		c.PredictionSlack = DefaultPredictionSlack
	}
	if c.MaxPredictionTicks == 0 {
		c.MaxPredictionTicks = DefaultMaxPredictionTicks
	}
	return c
}

// Validate rejects unknown strategies and out-of-range tunables.
func (c Config) Validate() error {
	known := false
	for _, s := range Strategies {
		if s == c.Strategy {
			known = true
		}
	}
	if !known {
		return errors.Wrapf(ErrUnknownStrategy, "%q", c.Strategy)
	}
	if c.GreenSeconds < 0 || c.AllRedSeconds < 0 {
		return errors.Wrapf(ErrInvalidConfig, "light phases %v/%v s must be positive", c.GreenSeconds, c.AllRedSeconds)
	}
	if c.InitialLight != nil && !c.InitialLight.Valid() {
		return errors.Wrapf(ErrInvalidConfig, "initial light %d", int(*c.InitialLight))
	}
	if c.IntersectionSpeedRatio < 0 || c.IntersectionSpeedRatio > 1 {
		return errors.Wrapf(ErrInvalidConfig, "intersection speed ratio %v must be in (0, 1]", c.IntersectionSpeedRatio)
	}
	if c.PredictionSlack < 0 || c.MaxPredictionTicks < 0 {
		return errors.Wrapf(ErrInvalidConfig, "prediction slack %d and horizon %d must not be negative", c.PredictionSlack, c.MaxPredictionTicks)
	}
	return nil
}

package kinematics

import (
	"math"

	"github.com/pkg/errors"
)

// Default unit scale.
const (
	DefaultPixelsPerMeter = 4
	DefaultTicksPerSecond = 10
)

// ErrInvalidUnits is returned for a non-positive unit scale.
var ErrInvalidUnits = errors.New("invalid units")

// Units fixes the scale between the simulation and the real world.
type Units struct {
	PixelsPerMeter int `json:"pixels_per_meter"`
	TicksPerSecond int `json:"ticks_per_second"`
}

// DefaultUnits returns the default scale.
func DefaultUnits() Units {
	return Units{PixelsPerMeter: DefaultPixelsPerMeter, TicksPerSecond: DefaultTicksPerSecond}
}

// Validate rejects a non-positive scale.
func (u Units) Validate() error {
	if u.PixelsPerMeter <= 0 || u.TicksPerSecond <= 0 {
		return errors.Wrapf(ErrInvalidUnits, "pixels_per_meter=%d ticks_per_second=%d", u.PixelsPerMeter, u.TicksPerSecond)
	}
	return nil
}

// KmhToPxPerTick converts a speed in km/h to whole pixels per tick.
func (u Units) KmhToPxPerTick(kmh float64) int {
	return KmhToPxPerTick(kmh, u.PixelsPerMeter, u.TicksPerSecond)
}

// TicksPerMinute is the number of ticks in one simulated minute.
func (u Units) TicksPerMinute() int { return 60 * u.TicksPerSecond }

// Ticks converts simulated seconds to ticks.
func (u Units) Ticks(seconds float64) int {
	return int(math.Round(seconds * float64(u.TicksPerSecond)))
}

// KmhToPxPerTick converts kmh to pixels per tick, rounded to the nearest pixel.
func KmhToPxPerTick(kmh float64, pixelsPerMeter, ticksPerSecond int) int {
	ticks := 60 * 60 * float64(ticksPerSecond)
	pixels := 1000 * float64(pixelsPerMeter)
	return int(math.Round(kmh * pixels / ticks))
}

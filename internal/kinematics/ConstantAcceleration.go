package kinematics

import (
	"math"

	"github.com/pkg/errors"
)

// ConstantModelName is the JSON discriminator string for the Constant model.
const ConstantModelName = "constant"

// ErrInvalidModel is returned for non-positive kinematics parameters.
var ErrInvalidModel = errors.New("invalid kinematics model")

// ConstantAcceleration implements MotionModel using fixed acceleration and
// deceleration rates.
//
// JSON discriminator: "model": "constant". The JSON form carries real-world
// units and is converted with NewConstantFromKmh.
type ConstantAcceleration struct {
	AAcc    float64 `json:"a_acc"` // px/tick²
	ADcc    float64 `json:"a_dcc"` // px/tick², positive
	VMaxVal float64 `json:"v_max"` // px/tick
}

// ConstantParams are the real-world inputs of the constant model.
type ConstantParams struct {
	Model        string  `json:"model"`
	Velocity     float64 `json:"velocity"`     // km/h
	Acceleration float64 `json:"acceleration"` // km/h per second
	// Deceleration in km/h per second. Zero brakes from cruising speed to a
	// standstill in a single tick.
	Deceleration float64 `json:"deceleration,omitempty"`
}

// NewConstantFromKmh converts real-world parameters to simulation units.
// Acceleration is rounded up so a vehicle always makes progress.
func NewConstantFromKmh(p ConstantParams, u Units) (ConstantAcceleration, error) {
	if err := u.Validate(); err != nil {
		return ConstantAcceleration{}, err
	}
	if !(p.Velocity > 0) || !(p.Acceleration > 0) || p.Deceleration < 0 {
		return ConstantAcceleration{}, errors.Wrapf(ErrInvalidModel,
			"velocity %v km/h and acceleration %v km/h/s must be positive, deceleration %v non-negative",
			p.Velocity, p.Acceleration, p.Deceleration)
	}

	vmax := float64(u.KmhToPxPerTick(p.Velocity))
	if vmax < 1 {
		return ConstantAcceleration{}, errors.Wrapf(ErrInvalidModel, "velocity %v km/h is below one pixel per tick", p.Velocity)
	}
	acc := math.Ceil(float64(u.KmhToPxPerTick(p.Acceleration)) / float64(u.TicksPerSecond))
	dcc := vmax
	if p.Deceleration > 0 {
		dcc = math.Ceil(float64(u.KmhToPxPerTick(p.Deceleration)) / float64(u.TicksPerSecond))
	}
	return ConstantAcceleration{
		AAcc:    math.Max(acc, 1),
		ADcc:    math.Max(dcc, 1),
		VMaxVal: vmax,
	}, nil
}

func (c ConstantAcceleration) VMax() float64 { return c.VMaxVal }

func (c ConstantAcceleration) Accelerate(v, target float64) float64 {
	if c.AAcc <= 0 || v >= target {
		return target
	}
	return math.Min(v+c.AAcc, target)
}

func (c ConstantAcceleration) Decelerate(v, target float64) float64 {
	if target < 0 {
		target = 0
	}
	if c.ADcc <= 0 || v <= target {
		return target
	}
	return math.Max(v-c.ADcc, target)
}

func (c ConstantAcceleration) BrakingDistance(v float64) float64 {
	if c.ADcc <= 0 {
		return math.Inf(1)
	}
	var dist float64
	for v > 0 {
		v = c.Decelerate(v, 0)
		dist += v
	}
	return dist
}

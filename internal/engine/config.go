package engine

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/cxd309/intersection-engine/internal/kinematics"
	"github.com/cxd309/intersection-engine/internal/vehicle"
)

// ErrInvalidConfig is returned for simulation input the engine cannot run.
var ErrInvalidConfig = errors.New("invalid simulation config")

// kinematicsDisc is the minimum JSON structure needed to read the model
// discriminator.
type kinematicsDisc struct {
	Model string `json:"model"`
}

// withDefaults fills zero-valued fields of the input.
func (in SimulationInput) withDefaults() SimulationInput {
	if in.Meta.SimulationID == "" {
		in.Meta.SimulationID = uuid.New().String()
	}
	if in.Meta.RunTime == 0 {
		in.Meta.RunTime = DefaultRunTime
	}
	if in.Layout.Width == 0 {
		in.Layout.Width = DefaultMapSize
	}
	if in.Layout.Height == 0 {
		in.Layout.Height = DefaultMapSize
	}
	if in.Layout.RoadWidth == 0 {
		in.Layout.RoadWidth = DefaultRoadWidth
	}
	if in.Units == (kinematics.Units{}) {
		in.Units = kinematics.DefaultUnits()
	}
	if in.Vehicle.Size == (vehicle.Size{}) {
		in.Vehicle.Size = vehicle.Size{Width: DefaultCarWidth, Height: DefaultCarHeight}
	}
	if in.Vehicle.TurnTriggerFactor == 0 {
		in.Vehicle.TurnTriggerFactor = vehicle.DefaultTurnTriggerFactor
	}
	if in.Spawn.Rate == nil {
		rate := DefaultSpawnRate
		in.Spawn.Rate = &rate
	}
	if in.Spawn.EntryExclusionFactor == 0 {
		in.Spawn.EntryExclusionFactor = DefaultEntryExclusionFactor
	}
	in.Controller = in.Controller.WithDefaults()
	return in
}

// validate rejects the engine's own out-of-range fields. Layout, units,
// kinematics and controller are checked by their constructors.
func (in SimulationInput) validate() error {
	if in.Meta.RunTime < 0 {
		return errors.Wrapf(ErrInvalidConfig, "run_time %d must not be negative", in.Meta.RunTime)
	}
	if r := *in.Spawn.Rate; r < 0 || r > 1 {
		return errors.Wrapf(ErrInvalidConfig, "spawn rate %v must be in [0, 1]", r)
	}
	if in.Spawn.EntryExclusionFactor < 0 || in.Vehicle.TurnTriggerFactor < 0 {
		return errors.Wrapf(ErrInvalidConfig, "entry exclusion %v and turn trigger %v must not be negative",
			in.Spawn.EntryExclusionFactor, in.Vehicle.TurnTriggerFactor)
	}
	if err := in.Vehicle.Size.Validate(); err != nil {
		return errors.Wrap(err, "vehicle")
	}
	for i, a := range in.Arrivals {
		if a.Tick < 0 || !a.Entry.Valid() {
			return errors.Wrapf(ErrInvalidConfig, "arrival %d: tick %d entry %d", i, a.Tick, int(a.Entry))
		}
		if a.Target != nil && (!a.Target.Valid() || *a.Target == a.Entry.Reverse()) {
			return errors.Wrapf(ErrInvalidConfig, "arrival %d: target %s from %s", i, *a.Target, a.Entry)
		}
	}
	return nil
}

// resolveModel builds the motion model selected by the kinematics
// discriminator. A missing object takes the default constant model.
//
// Supported models:
//   - "constant": velocity, acceleration and optional deceleration in km/h.
func resolveModel(raw json.RawMessage, u kinematics.Units) (kinematics.MotionModel, error) {
	if len(raw) == 0 {
		return kinematics.NewConstantFromKmh(kinematics.ConstantParams{
			Model:        kinematics.ConstantModelName,
			Velocity:     DefaultVelocityKmh,
			Acceleration: DefaultAccelKmhPerS,
		}, u)
	}

	var disc kinematicsDisc
	if err := json.Unmarshal(raw, &disc); err != nil {
		return nil, errors.Wrap(err, "reading kinematics model discriminator")
	}

	switch disc.Model {
	case kinematics.ConstantModelName:
		var p kinematics.ConstantParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, errors.Wrap(err, "decoding constant kinematics")
		}
		return kinematics.NewConstantFromKmh(p, u)
	case "":
		return nil, errors.Wrap(kinematics.ErrInvalidModel, `kinematics object has no "model" key`)
	default:
		return nil, errors.Wrapf(kinematics.ErrInvalidModel, "unknown model %q", disc.Model)
	}
}

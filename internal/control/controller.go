// Package control implements intersection admission: once per tick a
// Controller inspects every live car's candidate next footprint and decides
// which cars may move.
//
// Every strategy shares the same pass (see pass.go): a car's candidate
// footprint is checked against all current footprints and against those
// accepted earlier in the same pass, in input order, before the strategy's
// own admission rule is consulted. The order is greedy on purpose; a car late
// in the slice can be starved.
//
// Five strategies are provided:
//
//  1. TrafficLight - timed green phases rotating counter-clockwise, separated
//     by an all-red clearance phase.
//  2. Reservation - a car must lock every intersection quadrant its manoeuvre
//     crosses; locks are held until it has left the box.
//  3. AdvancedReservation - as Reservation, but quadrants are released one by
//     one as the car leaves them.
//  4. Prediction - the car's whole transit is simulated ahead of time and
//     reserved as per-tick footprints.
//  5. Exclusive - one car in the box at a time.
package control

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cxd309/intersection-engine/internal/kinematics"
	"github.com/cxd309/intersection-engine/internal/road"
	"github.com/cxd309/intersection-engine/internal/vehicle"
)

// Strategy names an admission strategy.
type Strategy string

const (
	StrategyTrafficLight        Strategy = "traffic_light"
	StrategyReservation         Strategy = "reservation"
	StrategyAdvancedReservation Strategy = "advanced_reservation"
	StrategyPrediction          Strategy = "prediction"
	StrategyExclusive           Strategy = "exclusive"
)

// Strategies lists every supported strategy.
var Strategies = []Strategy{
	StrategyTrafficLight,
	StrategyReservation,
	StrategyAdvancedReservation,
	StrategyPrediction,
	StrategyExclusive,
}

var (
	// ErrUnknownStrategy is returned for an unrecognised strategy name.
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrInvalidConfig is returned for out-of-range tunables.
	ErrInvalidConfig = errors.New("invalid controller config")
)

// Decision is the command a controller issues to one car for the coming tick.
type Decision struct {
	Car     *vehicle.Car
	Command vehicle.Command
}

// Controller is the per-tick admission contract.
type Controller interface {
	// Strategy returns the strategy the controller implements.
	Strategy() Strategy

	// Control advances the controller's clock by one tick and decides, for
	// every car in cars, whether and how it moves in the coming tick. Cars are
	// processed in slice order.
	Control(cars []*vehicle.Car) []Decision

	// Tick returns the number of passes run so far.
	Tick() int

	// Admitted returns how many cars have been let into the intersection.
	Admitted() int

	// ThroughputRate returns admitted cars per simulated minute.
	ThroughputRate() float64
}

// Apply hands every decision to its car.
func Apply(decisions []Decision) {
	for _, d := range decisions {
		d.Car.Apply(d.Command)
	}
}

// AdvanceTick runs one admission pass over cars and applies the result.
func AdvanceTick(c Controller, cars []*vehicle.Car) {
	Apply(c.Control(cars))
}

// New constructs the controller selected by cfg.Strategy.
func New(cfg Config, layout *road.Layout, units kinematics.Units, log logrus.FieldLogger) (Controller, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := units.Validate(); err != nil {
		return nil, errors.Wrap(err, "controller units")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	b := newBase(layout, units, log.WithField("strategy", string(cfg.Strategy)))

	switch cfg.Strategy {
	case StrategyTrafficLight:
		return NewTrafficLight(b, cfg, units), nil
	case StrategyReservation:
		return NewReservation(b), nil
	case StrategyAdvancedReservation:
		return NewAdvancedReservation(b), nil
	case StrategyPrediction:
		return NewPrediction(b, cfg), nil
	case StrategyExclusive:
		return NewExclusive(b), nil
	}
	return nil, errors.Wrapf(ErrUnknownStrategy, "%q", cfg.Strategy)
}

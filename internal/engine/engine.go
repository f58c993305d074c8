// Package engine implements the intersection simulation loop.
//
// The simulation advances in fixed ticks. Each tick has two passes:
//
//  1. Motion pass - every car commits the command it was given on the previous
//     tick, reading only its own state. Cars that left the map are removed and
//     new cars spawn at unoccupied entries.
//
//  2. Control pass - the admission controller inspects every car's candidate
//     next footprint and hands back a command per car, applied immediately so
//     that the next motion pass moves exactly what was checked.
package engine

import (
	"encoding/json"
	"math/rand"
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/cxd309/intersection-engine/internal/control"
	"github.com/cxd309/intersection-engine/internal/export"
	"github.com/cxd309/intersection-engine/internal/geometry"
	"github.com/cxd309/intersection-engine/internal/road"
	"github.com/cxd309/intersection-engine/internal/vehicle"
)

// NewSimulation constructs a Simulation from a SimulationInput, building the
// layout, the motion model and the admission controller. A nil log uses the
// logrus standard logger.
func NewSimulation(input SimulationInput, log logrus.FieldLogger) (*Simulation, error) {
	input = input.withDefaults()
	if err := input.validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	layout, err := road.NewLayout(input.Layout)
	if err != nil {
		return nil, errors.Wrap(err, "building layout")
	}
	if err := input.Units.Validate(); err != nil {
		return nil, errors.Wrap(err, "units")
	}
	model, err := resolveModel(input.Vehicle.Kinematics, input.Units)
	if err != nil {
		return nil, errors.Wrap(err, "vehicle kinematics")
	}

	entry := log.WithFields(logrus.Fields{
		"simulation_id": input.Meta.SimulationID,
		"strategy":      string(input.Controller.Strategy),
	})
	ctrl, err := control.New(input.Controller, layout, input.Units, entry)
	if err != nil {
		return nil, errors.Wrap(err, "building controller")
	}

	pending := append([]Arrival(nil), input.Arrivals...)
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].Tick < pending[j].Tick })

	return &Simulation{
		meta:       input.Meta,
		layout:     layout,
		model:      model,
		vehicleCfg: input.Vehicle,
		controller: ctrl,
		rng:        rand.New(rand.NewSource(input.Meta.Seed)),
		spawnRate:  *input.Spawn.Rate,
		exclusion:  input.Spawn.EntryExclusionFactor,
		pending:    pending,
		log:        entry,
	}, nil
}

// Layout returns the map geometry.
func (s *Simulation) Layout() *road.Layout { return s.layout }

// Controller returns the admission controller.
func (s *Simulation) Controller() control.Controller { return s.controller }

// Cars returns the live cars in admission order.
func (s *Simulation) Cars() []*vehicle.Car { return s.cars }

// Tick returns the number of ticks run so far.
func (s *Simulation) Tick() int { return s.tick }

// ThroughputRate returns admitted cars per simulated minute.
func (s *Simulation) ThroughputRate() float64 { return s.controller.ThroughputRate() }

// SpawnVehicle places a car of size at entry's spawn point, bound for a random
// direction other than a U-turn.
func (s *Simulation) SpawnVehicle(entry road.Direction, size vehicle.Size) (*vehicle.Car, error) {
	if !entry.Valid() {
		return nil, errors.Wrapf(road.ErrUnknownDirection, "entry %d", int(entry))
	}
	targets := lo.Filter(road.Directions[:], func(d road.Direction, _ int) bool { return d != entry.Reverse() })
	return s.SpawnVehicleTo(entry, targets[s.rng.Intn(len(targets))], size)
}

// SpawnVehicleTo places a car of size at entry's spawn point, bound for target.
func (s *Simulation) SpawnVehicleTo(entry, target road.Direction, size vehicle.Size) (*vehicle.Car, error) {
	if !entry.Valid() || !target.Valid() {
		return nil, errors.Wrapf(road.ErrUnknownDirection, "entry %d target %d", int(entry), int(target))
	}
	s.nextID++
	car, err := vehicle.New(s.nextID, s.layout.EntryPoint(entry), size, entry, target, s.layout.Lane(target), s.model)
	if err != nil {
		return nil, err
	}
	car.TurnTriggerFactor = s.vehicleCfg.TurnTriggerFactor
	s.cars = append(s.cars, car)
	s.spawned++
	s.log.WithFields(logrus.Fields{
		"tick":  s.tick,
		"car":   car.ID,
		"entry": entry.String(),
		"to":    target.String(),
	}).Debug("car spawned")
	return car, nil
}

// IsEntryOccupied reports whether a car that entered heading d is still within
// the exclusion zone at the edge it came from.
func (s *Simulation) IsEntryOccupied(d road.Direction) bool {
	return lo.SomeBy(s.cars, func(c *vehicle.Car) bool {
		return c.InitialDirection == d && s.layout.DistanceFromEntry(d, c.Position) < s.exclusion*c.Size.Width
	})
}

// IsOutOfBounds reports whether c has left the map entirely.
func (s *Simulation) IsOutOfBounds(c *vehicle.Car) bool {
	return s.layout.IsOutOfBounds(c.Rect())
}

func (s *Simulation) removeOutOfBounds() {
	gone, kept := lo.FilterReject(s.cars, func(c *vehicle.Car, _ int) bool { return s.IsOutOfBounds(c) })
	for _, c := range gone {
		s.log.WithFields(logrus.Fields{"tick": s.tick, "car": c.ID}).Debug("car removed")
	}
	s.removed += len(gone)
	s.cars = kept
}

// spawnArrivals releases due scripted arrivals, then rolls for random ones.
func (s *Simulation) spawnArrivals() {
	waiting := s.pending[:0]
	for _, a := range s.pending {
		if a.Tick > s.tick || s.IsEntryOccupied(a.Entry) {
			waiting = append(waiting, a)
			continue
		}
		var err error
		if a.Target != nil {
			_, err = s.SpawnVehicleTo(a.Entry, *a.Target, s.vehicleCfg.Size)
		} else {
			_, err = s.SpawnVehicle(a.Entry, s.vehicleCfg.Size)
		}
		if err != nil {
			s.log.WithError(err).Warn("scripted arrival dropped")
		}
	}
	s.pending = waiting

	if s.spawnRate == 0 {
		return
	}
	for _, d := range road.Directions {
		if s.IsEntryOccupied(d) || s.rng.Float64() >= s.spawnRate {
			continue
		}
		if _, err := s.SpawnVehicle(d, s.vehicleCfg.Size); err != nil {
			s.log.WithError(err).Warn("spawn failed")
		}
	}
}

// AdvanceTick runs one full tick: motion, removal, spawning and control.
func (s *Simulation) AdvanceTick() {
	s.tick++
	for _, c := range s.cars {
		c.Step()
	}
	s.removeOutOfBounds()
	s.spawnArrivals()
	control.AdvanceTick(s.controller, s.cars)
}

// Run executes the full simulation and returns the log.
func (s *Simulation) Run() (SimulationLog, error) {
	log := SimulationLog{Meta: s.meta}
	for s.tick < s.meta.RunTime {
		s.AdvanceTick()
		row, err := s.snapshot()
		if err != nil {
			return SimulationLog{}, errors.Wrapf(err, "at tick %d", s.tick)
		}
		log.Output = append(log.Output, row)
	}
	log.Summary = s.Summary()
	s.log.WithFields(logrus.Fields{
		"ticks":      log.Summary.Ticks,
		"spawned":    log.Summary.Spawned,
		"admitted":   log.Summary.Admitted,
		"throughput": log.Summary.ThroughputRate,
	}).Info("simulation finished")
	return log, nil
}

// Summary aggregates the run so far.
func (s *Simulation) Summary() Summary {
	return Summary{
		Strategy:       s.controller.Strategy(),
		Ticks:          s.tick,
		Spawned:        s.spawned,
		Removed:        s.removed,
		Admitted:       s.controller.Admitted(),
		ThroughputRate: s.controller.ThroughputRate(),
	}
}

// snapshot returns the log row for the current tick. It fails if two cars
// overlap, which no controller may allow.
func (s *Simulation) snapshot() (SimulationLogRow, error) {
	for i, a := range s.cars {
		for _, b := range s.cars[i+1:] {
			if geometry.Overlaps(a.Rect(), b.Rect()) {
				return SimulationLogRow{}, errors.Errorf("cars %d and %d overlap", a.ID, b.ID)
			}
		}
	}

	row := SimulationLogRow{
		Tick:     s.tick,
		Admitted: s.controller.Admitted(),
		VehicleLogs: lo.Map(s.cars, func(c *vehicle.Car, _ int) vehicle.VehicleLog {
			return c.GetLog()
		}),
	}
	if l, ok := s.controller.(lighted); ok {
		d, green := l.Light()
		row.Light = &LightLog{Direction: d, Green: green}
	}
	return row, nil
}

// runInput decodes and runs a JSON-encoded SimulationInput.
func runInput(jsonInput string) (*Simulation, SimulationLog, error) {
	var input SimulationInput
	if err := json.Unmarshal([]byte(jsonInput), &input); err != nil {
		return nil, SimulationLog{}, errors.Wrap(err, "invalid input JSON")
	}

	sim, err := NewSimulation(input, nil)
	if err != nil {
		return nil, SimulationLog{}, err
	}

	simLog, err := sim.Run()
	if err != nil {
		return nil, SimulationLog{}, err
	}
	return sim, simLog, nil
}

// RunJSON is the primary entry point for the CLI and WASM targets. It accepts
// a JSON-encoded SimulationInput, runs the simulation, and returns a
// JSON-encoded SimulationLog.
func RunJSON(jsonInput string) (string, error) {
	_, simLog, err := runInput(jsonInput)
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(simLog)
	if err != nil {
		return "", errors.Wrap(err, "marshaling output")
	}
	return string(out), nil
}

// RunSnapshot runs like RunJSON but returns a GeoJSON FeatureCollection of
// the final tick.
func RunSnapshot(jsonInput string) (string, error) {
	sim, _, err := runInput(jsonInput)
	if err != nil {
		return "", err
	}
	out, err := export.Marshal(sim.Layout(), sim.Cars(), sim.Tick())
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// RunSummary runs like RunJSON but returns only the JSON-encoded Summary.
func RunSummary(jsonInput string) (string, error) {
	_, simLog, err := runInput(jsonInput)
	if err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(simLog.Summary, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshaling summary")
	}
	return string(out), nil
}

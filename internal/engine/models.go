package engine

import (
	"encoding/json"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/cxd309/intersection-engine/internal/control"
	"github.com/cxd309/intersection-engine/internal/kinematics"
	"github.com/cxd309/intersection-engine/internal/road"
	"github.com/cxd309/intersection-engine/internal/vehicle"
)

// Defaults applied to zero-valued input fields.
const (
	DefaultMapSize      = 1000.0
	DefaultRoadWidth    = 120.0
	DefaultCarWidth     = 16.0
	DefaultCarHeight    = 8.0
	DefaultVelocityKmh  = 50.0
	DefaultAccelKmhPerS = 20.0
	DefaultRunTime      = 1000 // ticks
	DefaultSpawnRate    = 0.1
	// DefaultEntryExclusionFactor times the car width is the distance from its
	// entry edge a car must cover before another may spawn behind it.
	DefaultEntryExclusionFactor = 3.0
)

// SimulationMeta holds the identity and timing parameters for a simulation run.
type SimulationMeta struct {
	SimulationID string `json:"simulation_id"` // generated when empty
	RunTime      int    `json:"run_time"`      // ticks
	Seed         int64  `json:"seed"`
}

// VehicleConfig describes the one vehicle type every spawned car shares.
type VehicleConfig struct {
	Size vehicle.Size `json:"size"`
	// Kinematics must contain a "model" discriminator key; the rest of the
	// object is decoded by that model.
	Kinematics        json.RawMessage `json:"kinematics,omitempty"`
	TurnTriggerFactor float64         `json:"turn_trigger_factor,omitempty"`
}

// SpawnConfig controls random arrivals. Each tick every unoccupied entry spawns
// a car with probability Rate.
type SpawnConfig struct {
	Rate                 *float64 `json:"rate,omitempty"`
	EntryExclusionFactor float64  `json:"entry_exclusion_factor,omitempty"`
}

// Arrival is a scripted spawn. It waits while its entry is occupied. A nil
// Target picks one at random.
type Arrival struct {
	Tick   int             `json:"tick"`
	Entry  road.Direction  `json:"entry"`
	Target *road.Direction `json:"target,omitempty"`
}

// SimulationInput is the JSON-serialisable input to the engine.
type SimulationInput struct {
	Meta       SimulationMeta   `json:"simulation_meta"`
	Layout     road.LayoutData  `json:"layout"`
	Units      kinematics.Units `json:"units"`
	Vehicle    VehicleConfig    `json:"vehicle"`
	Controller control.Config   `json:"controller"`
	Spawn      SpawnConfig      `json:"spawn"`
	Arrivals   []Arrival        `json:"arrivals,omitempty"`
}

// LightLog is the traffic light state at a tick.
type LightLog struct {
	Direction road.Direction `json:"direction"`
	Green     bool           `json:"green"`
}

// SimulationLogRow is the state of all cars after a single tick.
type SimulationLogRow struct {
	Tick        int                  `json:"tick"`
	Admitted    int                  `json:"admitted"`
	Light       *LightLog            `json:"light,omitempty"`
	VehicleLogs []vehicle.VehicleLog `json:"vehicle_logs"`
}

// Summary aggregates a run.
type Summary struct {
	Strategy       control.Strategy `json:"strategy"`
	Ticks          int              `json:"ticks"`
	Spawned        int              `json:"spawned"`
	Removed        int              `json:"removed"`
	Admitted       int              `json:"admitted"`
	ThroughputRate float64          `json:"throughput_rate"` // cars per minute
}

// SimulationLog is the complete output of a simulation run.
type SimulationLog struct {
	Meta    SimulationMeta     `json:"simulation_meta"`
	Summary Summary            `json:"summary"`
	Output  []SimulationLogRow `json:"output"`
}

// Simulation engine state.
type Simulation struct {
	meta       SimulationMeta
	layout     *road.Layout
	model      kinematics.MotionModel
	vehicleCfg VehicleConfig
	controller control.Controller
	cars       []*vehicle.Car
	rng        *rand.Rand
	spawnRate  float64
	exclusion  float64
	pending    []Arrival
	tick       int
	nextID     vehicle.ID
	spawned    int
	removed    int
	log        *logrus.Entry
}

// lighted is implemented by controllers that run a signal.
type lighted interface {
	Light() (road.Direction, bool)
}

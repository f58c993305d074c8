package engine

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cxd309/intersection-engine/internal/control"
	"github.com/cxd309/intersection-engine/internal/kinematics"
	"github.com/cxd309/intersection-engine/internal/road"
	"github.com/cxd309/intersection-engine/internal/vehicle"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newSim(t *testing.T, input SimulationInput) *Simulation {
	t.Helper()
	sim, err := NewSimulation(input, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	return sim
}

func rate(r float64) *float64 { return &r }

func TestNewSimulationDefaults(t *testing.T) {
	sim := newSim(t, SimulationInput{})
	if sim.meta.SimulationID == "" {
		t.Errorf("Simulation id must be generated")
	}
	if sim.meta.RunTime != DefaultRunTime {
		t.Errorf("Run time must default to %d, but got %d", DefaultRunTime, sim.meta.RunTime)
	}
	if sim.Layout().Width != DefaultMapSize || sim.Layout().RoadWidth != DefaultRoadWidth {
		t.Errorf("Layout must default to %vx%v road %v, but got %+v", DefaultMapSize, DefaultMapSize, DefaultRoadWidth, sim.Layout().LayoutData)
	}
	if got := sim.Controller().Strategy(); got != control.StrategyReservation {
		t.Errorf("Strategy must default to %s, but got %s", control.StrategyReservation, got)
	}
	if got := sim.model.VMax(); got != 6 {
		t.Errorf("Default VMax must be 6 px/tick, but got %v", got)
	}
}

func TestNewSimulationRejectsInvalid(t *testing.T) {
	cases := []struct {
		name  string
		input SimulationInput
		cause error
	}{
		{"spawn rate", SimulationInput{Spawn: SpawnConfig{Rate: rate(1.5)}}, ErrInvalidConfig},
		{"road width", SimulationInput{Layout: road.LayoutData{RoadWidth: -1}}, road.ErrInvalidLayout},
		{"strategy", SimulationInput{Controller: control.Config{Strategy: "roundabout"}}, control.ErrUnknownStrategy},
		{"model", SimulationInput{Vehicle: VehicleConfig{Kinematics: json.RawMessage(`{"model":"jet"}`)}}, kinematics.ErrInvalidModel},
		{"units", SimulationInput{Units: kinematics.Units{PixelsPerMeter: -1, TicksPerSecond: 10}}, kinematics.ErrInvalidUnits},
		{"vehicle size", SimulationInput{Vehicle: VehicleConfig{Size: vehicle.Size{Width: 16}}}, vehicle.ErrInvalidVehicle},
		{"arrival u-turn", SimulationInput{Arrivals: []Arrival{{Entry: road.North, Target: dir(road.South)}}}, ErrInvalidConfig},
	}
	for _, tc := range cases {
		_, err := NewSimulation(tc.input, quietLogger())
		if errors.Cause(err) != tc.cause {
			t.Errorf("%s: error must be caused by %v, but got %v", tc.name, tc.cause, err)
		}
	}
}

func dir(d road.Direction) *road.Direction { return &d }

func TestEntryOccupancy(t *testing.T) {
	sim := newSim(t, SimulationInput{Spawn: SpawnConfig{Rate: rate(0)}})
	if _, err := sim.SpawnVehicleTo(road.North, road.North, sim.vehicleCfg.Size); err != nil {
		t.Fatal(err)
	}
	for _, d := range road.Directions {
		if got := sim.IsEntryOccupied(d); got != (d == road.North) {
			t.Errorf("IsEntryOccupied(%s) must be %v, but got %v", d, d == road.North, got)
		}
	}
	// 3 x 16px at 6 px/tick clears after 8 moves.
	for i := 0; i < 9; i++ {
		sim.AdvanceTick()
	}
	if sim.IsEntryOccupied(road.North) {
		t.Errorf("Entry must clear once the car moved %v px, but car is at %v", DefaultEntryExclusionFactor*DefaultCarWidth, sim.Cars()[0].Position)
	}
}

func TestSpawnVehicleNeverUTurns(t *testing.T) {
	sim := newSim(t, SimulationInput{Meta: SimulationMeta{Seed: 3}})
	seen := map[road.Direction]bool{}
	for i := 0; i < 200; i++ {
		entry := road.Directions[i%4]
		car, err := sim.SpawnVehicle(entry, sim.vehicleCfg.Size)
		if err != nil {
			t.Fatal(err)
		}
		if car.Target == entry.Reverse() {
			t.Fatalf("Car %d spawned with a U-turn %s -> %s", car.ID, entry, car.Target)
		}
		if entry == road.North {
			seen[car.Target] = true
		}
	}
	if len(seen) != 3 {
		t.Errorf("Random targets from north must cover 3 directions, but got %v", seen)
	}
	if _, err := sim.SpawnVehicle(road.Direction(7), sim.vehicleCfg.Size); errors.Cause(err) != road.ErrUnknownDirection {
		t.Errorf("Unknown entry must fail with ErrUnknownDirection, but got %v", err)
	}
}

func TestOutOfBoundsCarsAreRemoved(t *testing.T) {
	sim := newSim(t, SimulationInput{Spawn: SpawnConfig{Rate: rate(0)}})
	car, err := sim.SpawnVehicleTo(road.East, road.East, sim.vehicleCfg.Size)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 300 && len(sim.Cars()) > 0; i++ {
		sim.AdvanceTick()
	}
	if len(sim.Cars()) != 0 {
		t.Fatalf("Car must leave the map, but is at %v", car.Position)
	}
	if !sim.IsOutOfBounds(car) {
		t.Errorf("Removed car must be out of bounds at %v", car.Position)
	}
	if s := sim.Summary(); s.Removed != 1 || s.Admitted != 1 {
		t.Errorf("Summary must count one removal and one admission, but got %+v", s)
	}
}

func TestScriptedArrivalsWaitForEntry(t *testing.T) {
	sim := newSim(t, SimulationInput{
		Spawn: SpawnConfig{Rate: rate(0)},
		Arrivals: []Arrival{
			{Tick: 1, Entry: road.West, Target: dir(road.West)},
			{Tick: 1, Entry: road.West, Target: dir(road.South)},
		},
	})
	sim.AdvanceTick()
	if len(sim.Cars()) != 1 {
		t.Fatalf("Second arrival must wait for the entry, but got %d cars", len(sim.Cars()))
	}
	for i := 0; i < 20; i++ {
		sim.AdvanceTick()
	}
	if len(sim.Cars()) != 2 || sim.Cars()[1].Target != road.South {
		t.Errorf("Second arrival must spawn once the entry clears, but got %d cars", len(sim.Cars()))
	}
}

func TestRunKeepsCarsApart(t *testing.T) {
	for _, s := range control.Strategies {
		sim := newSim(t, SimulationInput{
			Meta:       SimulationMeta{RunTime: 1500, Seed: 42},
			Controller: control.Config{Strategy: s},
			Spawn:      SpawnConfig{Rate: rate(0.05)},
		})
		log, err := sim.Run()
		if err != nil {
			t.Fatalf("%s: run must keep cars apart, but got %v", s, err)
		}
		if len(log.Output) != 1500 {
			t.Errorf("%s: log must have a row per tick, but got %d", s, len(log.Output))
		}
		if log.Summary.Admitted == 0 || log.Summary.ThroughputRate <= 0 {
			t.Errorf("%s: cars must flow through the intersection, but got %+v", s, log.Summary)
		}
		if log.Summary.Admitted > log.Summary.Spawned {
			t.Errorf("%s: admitted %d must not exceed spawned %d", s, log.Summary.Admitted, log.Summary.Spawned)
		}
		if s == control.StrategyTrafficLight && log.Output[0].Light == nil {
			t.Errorf("Traffic light log rows must carry the light state")
		}
	}
}

func TestRunKeepsAdmittingUnderSaturation(t *testing.T) {
	const (
		runTime = 2500
		window  = 300
	)
	for _, s := range control.Strategies {
		for _, seed := range []int64{1, 3} {
			sim := newSim(t, SimulationInput{
				Meta:       SimulationMeta{RunTime: runTime, Seed: seed},
				Controller: control.Config{Strategy: s},
				Spawn:      SpawnConfig{Rate: rate(1)},
			})
			log, err := sim.Run()
			if err != nil {
				t.Fatalf("%s seed %d: run must keep cars apart, but got %v", s, seed, err)
			}
			before := log.Output[runTime-window-1].Admitted
			after := log.Output[runTime-1].Admitted
			if after <= before {
				t.Errorf("%s seed %d: admissions must continue in the last %d ticks, but stayed at %d", s, seed, window, after)
			}
		}
	}
}

func TestRunJSON(t *testing.T) {
	input := `{
		"simulation_meta": {"simulation_id": "sim-1", "run_time": 50, "seed": 1},
		"layout": {"width": 600, "height": 600, "road_width": 100},
		"vehicle": {
			"size": {"width": 16, "height": 8},
			"kinematics": {"model": "constant", "velocity": 36, "acceleration": 18}
		},
		"controller": {"strategy": "advanced_reservation"},
		"spawn": {"rate": 0},
		"arrivals": [
			{"tick": 1, "entry": "north", "target": "west"},
			{"tick": 1, "entry": "east"}
		]
	}`
	out, err := RunJSON(input)
	if err != nil {
		t.Fatal(err)
	}
	var log SimulationLog
	if err := json.Unmarshal([]byte(out), &log); err != nil {
		t.Fatal(err)
	}
	if log.Meta.SimulationID != "sim-1" {
		t.Errorf("Simulation id must round-trip, but got %q", log.Meta.SimulationID)
	}
	if log.Summary.Strategy != control.StrategyAdvancedReservation || log.Summary.Spawned != 2 {
		t.Errorf("Summary must report 2 cars under advanced_reservation, but got %+v", log.Summary)
	}
	if len(log.Output) != 50 || len(log.Output[0].VehicleLogs) != 2 {
		t.Errorf("Output must have 50 rows starting with 2 cars, but got %d rows", len(log.Output))
	}
	if _, err := RunJSON(`{"controller": {"strategy": 3}}`); err == nil {
		t.Errorf("Malformed input must fail")
	}
}

func TestRunSnapshotAndSummary(t *testing.T) {
	input := `{"simulation_meta": {"run_time": 5}, "spawn": {"rate": 0},
		"arrivals": [{"tick": 1, "entry": "south", "target": "south"}]}`
	snap, err := RunSnapshot(input)
	if err != nil {
		t.Fatal(err)
	}
	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal([]byte(snap), &fc); err != nil {
		t.Fatal(err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 10 {
		t.Errorf("Snapshot must be a FeatureCollection with 10 features, but got %s with %d", fc.Type, len(fc.Features))
	}

	out, err := RunSummary(input)
	if err != nil {
		t.Fatal(err)
	}
	var s Summary
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatal(err)
	}
	if s.Ticks != 5 || s.Spawned != 1 {
		t.Errorf("Summary must report 5 ticks and 1 car, but got %+v", s)
	}
}

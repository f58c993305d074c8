// Package vehicle defines the Car used in the intersection simulation: its
// kinematic state, the straight and quarter-arc motion integration, and the
// commands through which an admission controller starts, stops and turns it.
//
// A Car never decides on its own to enter the intersection. The controller
// inspects hypothetical next states (Plan, Simulate, NextStep) and hands back
// a Command; Step then commits exactly the state that was inspected.
package vehicle

import (
	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"github.com/cxd309/intersection-engine/internal/geometry"
	"github.com/cxd309/intersection-engine/internal/kinematics"
	"github.com/cxd309/intersection-engine/internal/road"
)

// ID is a unique identifier for a car within one simulation.
type ID = int

// DefaultTurnTriggerFactor scales the car's width into the remaining distance
// to the target lane's stop line at which a turn begins.
const DefaultTurnTriggerFactor = 2.0

// ErrInvalidVehicle is returned for an unusable car definition.
var ErrInvalidVehicle = errors.New("invalid vehicle")

// Size holds the footprint of a car. Width runs along the heading.
type Size struct {
	Width  float64 `json:"width"`  // pixels
	Height float64 `json:"height"` // pixels
}

// Validate rejects non-positive dimensions.
func (s Size) Validate() error {
	if !(s.Width > 0) || !(s.Height > 0) {
		return errors.Wrapf(ErrInvalidVehicle, "size %vx%v must be positive", s.Width, s.Height)
	}
	return nil
}

// State is the full kinematic state of a car. It is a value: the pure motion
// functions take and return States without touching the Car.
type State struct {
	Position      orb.Point  `json:"position"` // center, pixels
	Heading       orb.Point  `json:"heading"`  // unit vector
	Rotation      float64    `json:"rotation"` // radians
	Velocity      float64    `json:"velocity"` // px/tick
	RotationSpeed float64    `json:"rotation_speed"`
	TargetAngle   float64    `json:"target_angle"`
	Steer         road.Steer `json:"steer"`
	Turned        bool       `json:"turned"`
}

// Car is a vehicle enriched with live simulation state.
type Car struct {
	ID               ID
	Size             Size
	InitialDirection road.Direction
	Target           road.Direction
	Kinem            kinematics.MotionModel
	// TurnTriggerFactor times Width is the remaining distance to the target
	// lane's stop line at which the turn starts.
	TurnTriggerFactor float64

	State
	targetLane road.Lane
	canMove    bool
	pending    Command
}

// New places a car heading in initial at pos, bound for target. The car starts
// at cruising speed but does not move until a controller lets it.
func New(id ID, pos orb.Point, size Size, initial, target road.Direction, targetLane road.Lane, model kinematics.MotionModel) (*Car, error) {
	if err := size.Validate(); err != nil {
		return nil, errors.Wrapf(err, "car %d", id)
	}
	if !initial.Valid() || !target.Valid() {
		return nil, errors.Wrapf(ErrInvalidVehicle, "car %d: directions %s -> %s", id, initial, target)
	}
	if target == initial.Reverse() {
		return nil, errors.Wrapf(ErrInvalidVehicle, "car %d: U-turn %s -> %s", id, initial, target)
	}
	if targetLane.Direction != target {
		return nil, errors.Wrapf(ErrInvalidVehicle, "car %d: target lane %s does not carry %s", id, targetLane.Direction, target)
	}
	if model == nil {
		return nil, errors.Wrapf(ErrInvalidVehicle, "car %d: missing kinematics", id)
	}
	return &Car{
		ID:                id,
		Size:              size,
		InitialDirection:  initial,
		Target:            target,
		Kinem:             model,
		TurnTriggerFactor: DefaultTurnTriggerFactor,
		State: State{
			Position:    pos,
			Heading:     initial.Velocity(),
			Rotation:    initial.Angle(),
			Velocity:    model.VMax(),
			TargetAngle: initial.Angle(),
			Steer:       road.Forward,
		},
		targetLane: targetLane,
		pending:    Command{Action: ActionStop},
	}, nil
}

// SteerDirection is the manoeuvre the car needs at the intersection.
func (c *Car) SteerDirection() road.Steer {
	steer, _ := road.SteerBetween(c.InitialDirection, c.Target)
	return steer
}

// RectOf is the car's footprint in state s.
func (c *Car) RectOf(s State) geometry.Rect {
	return geometry.CenteredRect(s.Position, c.Size.Width, c.Size.Height, s.Rotation)
}

// Rect is the car's current footprint.
func (c *Car) Rect() geometry.Rect { return c.RectOf(c.State) }

// NextRect is the footprint after one tick at the current velocity, without
// any turn initiation.
func (c *Car) NextRect() geometry.Rect { return c.RectOf(NextStep(c.State)) }

// NeedsTurn reports whether the car in state s still has to turn.
func (c *Car) NeedsTurn(s State) bool {
	return c.InitialDirection != c.Target && !s.Turned
}

// DistanceToTurn is the remaining distance from s to the target lane's stop
// line.
func (c *Car) DistanceToTurn(s State) float64 {
	return c.targetLane.DistanceToLine(s.Position)
}

// shouldStartTurn reports whether the turn begins in state s, and its length.
func (c *Car) shouldStartTurn(s State) (float64, bool) {
	if !c.NeedsTurn(s) || s.Steer != road.Forward {
		return 0, false
	}
	d := c.DistanceToTurn(s)
	return d, d <= c.TurnTriggerFactor*c.Size.Width
}

// Turn starts a quarter turn covering length of forward progress.
func (c *Car) Turn(steer road.Steer, length float64) {
	c.State = TurnState(c.State, steer, length)
}

// Simulate returns the state one tick after s when moving at speed, starting
// the turn first if s has reached the trigger distance, and the command that
// reproduces it on the real car.
func (c *Car) Simulate(s State, speed float64) (State, Command) {
	s.Velocity = speed
	cmd := Command{Action: ActionProceed, Speed: speed}
	if length, ok := c.shouldStartTurn(s); ok {
		cmd = Command{Action: ActionStartTurn, Speed: speed, Steer: c.SteerDirection(), TurnLength: length}
		s = TurnState(s, cmd.Steer, cmd.TurnLength)
	}
	return NextStep(s), cmd
}

// Plan is a candidate move for the coming tick.
type Plan struct {
	Next    State
	Rect    geometry.Rect
	Command Command
}

// Plan returns the move the car would make this tick at speed.
func (c *Car) Plan(speed float64) Plan {
	next, cmd := c.Simulate(c.State, speed)
	return Plan{Next: next, Rect: c.RectOf(next), Command: cmd}
}

// ProceedSpeed is the speed for the coming tick when heading for limit.
func (c *Car) ProceedSpeed(limit float64) float64 {
	return kinematics.Approach(c.Kinem, c.Velocity, limit)
}

// CanMove reports whether the last command lets the car move.
func (c *Car) CanMove() bool { return c.canMove }

// Pending returns the last applied command.
func (c *Car) Pending() Command { return c.pending }

// Apply records the controller's decision for the coming tick.
func (c *Car) Apply(cmd Command) {
	c.pending = cmd
	switch cmd.Action {
	case ActionStop:
		c.canMove = false
		c.Velocity = c.Kinem.Decelerate(c.Velocity, 0)
	default:
		c.canMove = true
	}
}

// Stop holds the car in place.
func (c *Car) Stop() { c.Apply(Command{Action: ActionStop}) }

// Start lets the car move at speed with no turn initiation.
func (c *Car) Start(speed float64) { c.Apply(Command{Action: ActionProceed, Speed: speed}) }

// Step commits the pending command. A stopped car stays where it is.
func (c *Car) Step() {
	if !c.canMove {
		return
	}
	cmd := c.pending
	if cmd.Action == ActionStartTurn {
		c.Turn(cmd.Steer, cmd.TurnLength)
	}
	c.Velocity = cmd.Speed
	c.State = NextStep(c.State)
}

// VehicleLog is a point-in-time snapshot of a Car's state.
type VehicleLog struct {
	ID               ID             `json:"id"`
	InitialDirection road.Direction `json:"initial_direction"`
	Target           road.Direction `json:"target"`
	Position         orb.Point      `json:"position"`
	Rotation         float64        `json:"rotation"`
	Velocity         float64        `json:"velocity"`
	Steer            road.Steer     `json:"steer"`
	CanMove          bool           `json:"can_move"`
}

// GetLog returns a point-in-time snapshot of the car state.
func (c *Car) GetLog() VehicleLog {
	return VehicleLog{
		ID:               c.ID,
		InitialDirection: c.InitialDirection,
		Target:           c.Target,
		Position:         c.Position,
		Rotation:         c.Rotation,
		Velocity:         c.Velocity,
		Steer:            c.Steer,
		CanMove:          c.canMove,
	}
}

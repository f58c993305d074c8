// Package road models the single four-way intersection: compass directions and
// turn algebra, lanes with their stop lines, the intersection box and its four
// quadrants.
//
// Coordinates are screen coordinates: x grows to the east, y grows to the
// south. Traffic keeps to the right.
package road

import (
	"math"
	"strings"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Direction is a compass heading.
type Direction int

const (
	North Direction = iota // up
	South                  // down
	West                   // left
	East                   // right
)

// Directions lists every direction in a stable order.
var Directions = [4]Direction{North, South, West, East}

// ErrUnknownDirection is returned when parsing an unrecognised direction name.
var ErrUnknownDirection = errors.New("unknown direction")

var directionNames = [4]string{"north", "south", "west", "east"}

func (d Direction) String() string {
	if d < North || d > East {
		return "invalid"
	}
	return directionNames[d]
}

// Valid reports whether d is one of the four compass directions.
func (d Direction) Valid() bool { return d >= North && d <= East }

// ParseDirection accepts the compass names and their screen aliases
// ("up", "down", "left", "right").
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "north", "up":
		return North, nil
	case "south", "down":
		return South, nil
	case "west", "left":
		return West, nil
	case "east", "right":
		return East, nil
	}
	return 0, errors.Wrapf(ErrUnknownDirection, "%q", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, errors.Wrapf(ErrUnknownDirection, "%d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Angle is the canonical heading in radians.
func (d Direction) Angle() float64 {
	switch d {
	case North:
		return -math.Pi / 2
	case South:
		return math.Pi / 2
	case West:
		return math.Pi
	}
	return 0
}

// Velocity is the unit vector of travel.
func (d Direction) Velocity() orb.Point {
	switch d {
	case North:
		return orb.Point{0, -1}
	case South:
		return orb.Point{0, 1}
	case West:
		return orb.Point{-1, 0}
	}
	return orb.Point{1, 0}
}

// Horizontal reports whether travel in d is along the x axis.
func (d Direction) Horizontal() bool { return d == West || d == East }

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case West:
		return East
	}
	return West
}

// Turned returns the heading after executing steer from d.
// Right turns cycle clockwise, left turns counter-clockwise.
func (d Direction) Turned(steer Steer) Direction {
	switch steer {
	case Right:
		switch d {
		case North:
			return East
		case East:
			return South
		case South:
			return West
		}
		return North
	case Left:
		switch d {
		case North:
			return West
		case West:
			return South
		case South:
			return East
		}
		return North
	}
	return d
}

// Steer is the manoeuvre a vehicle is executing.
type Steer int

const (
	Forward Steer = iota
	Left
	Right
)

func (s Steer) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "forward"
}

func (s Steer) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Steer) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "forward":
		*s = Forward
	case "left":
		*s = Left
	case "right":
		*s = Right
	default:
		return errors.Errorf("unknown steer %q", text)
	}
	return nil
}

// SteerBetween returns the manoeuvre that takes a vehicle heading from to
// heading to. A U-turn has no manoeuvre and reports ok=false.
func SteerBetween(from, to Direction) (Steer, bool) {
	switch to {
	case from:
		return Forward, true
	case from.Turned(Right):
		return Right, true
	case from.Turned(Left):
		return Left, true
	}
	return Forward, false
}

package vehicle

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/cxd309/intersection-engine/internal/road"
)

// TurnState returns s with a quarter turn started. length is the forward
// progress over which the 90° arc completes (the arc radius). A Forward steer
// or a non-positive length leaves the car driving straight.
func TurnState(s State, steer road.Steer, length float64) State {
	if steer == road.Forward || !(length > 0) {
		s.Steer = road.Forward
		s.RotationSpeed = 0
		s.TargetAngle = s.Rotation
		return s
	}
	arc := 0.5 * math.Pi * length
	s.Steer = steer
	s.Turned = true
	if steer == road.Left {
		s.RotationSpeed = -(math.Pi / 2) / arc
		s.TargetAngle = s.Rotation - math.Pi/2
	} else {
		s.RotationSpeed = (math.Pi / 2) / arc
		s.TargetAngle = s.Rotation + math.Pi/2
	}
	return s
}

// NextStep returns the state one tick after s at s.Velocity. It does not
// start turns.
//
// A turning step is integrated in ⌈velocity⌉ equal sub-steps, each rotating
// the heading and then advancing along it, so the position follows the same
// discretisation as the rotation.
func NextStep(s State) State {
	turn := s.RotationSpeed * s.Velocity
	if turn == 0 {
		s.Position = orb.Point{
			s.Position[0] + s.Heading[0]*s.Velocity,
			s.Position[1] + s.Heading[1]*s.Velocity,
		}
		return s
	}

	rotation := s.Rotation + turn
	done := false
	if (s.Steer == road.Right && rotation >= s.TargetAngle) || (s.Steer == road.Left && rotation <= s.TargetAngle) {
		rotation = s.TargetAngle
		turn = rotation - s.Rotation
		done = true
	}

	n := int(math.Ceil(s.Velocity))
	dTurn := turn / float64(n)
	dStep := s.Velocity / float64(n)
	heading, pos := s.Heading, s.Position
	for i := 0; i < n; i++ {
		heading = rotate(heading, dTurn)
		pos[0] += heading[0] * dStep
		pos[1] += heading[1] * dStep
	}

	s.Position = pos
	s.Heading = heading
	s.Rotation = rotation
	if done {
		s.RotationSpeed = 0
		s.Steer = road.Forward
		s.Heading = headingOf(rotation)
	}
	return s
}

func rotate(v orb.Point, angle float64) orb.Point {
	sin, cos := math.Sincos(angle)
	return orb.Point{v[0]*cos - v[1]*sin, v[0]*sin + v[1]*cos}
}

// headingOf is the unit vector for rotation, exact on right angles.
func headingOf(rotation float64) orb.Point {
	sin, cos := math.Sincos(rotation)
	k := math.Round(rotation / (math.Pi / 2))
	if math.Abs(rotation-k*math.Pi/2) < 1e-9 {
		return orb.Point{math.Round(cos), math.Round(sin)}
	}
	return orb.Point{cos, sin}
}

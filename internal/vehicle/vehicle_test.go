package vehicle

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"github.com/cxd309/intersection-engine/internal/kinematics"
	"github.com/cxd309/intersection-engine/internal/road"
)

var testModel = kinematics.ConstantAcceleration{AAcc: 1, ADcc: 6, VMaxVal: 6}

func testLayout(t *testing.T) *road.Layout {
	t.Helper()
	l, err := road.NewLayout(road.LayoutData{Width: 1000, Height: 1000, RoadWidth: 120})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func testCar(t *testing.T, l *road.Layout, id ID, initial, target road.Direction) *Car {
	t.Helper()
	c, err := New(id, l.EntryPoint(initial), Size{Width: 16, Height: 8}, initial, target, l.Lane(target), testModel)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestTurnCompletion(t *testing.T) {
	for _, tc := range []struct {
		steer road.Steer
		sign  float64
	}{{road.Right, 1}, {road.Left, -1}} {
		const length = 10.0
		s := State{Position: orb.Point{100, 100}, Heading: road.East.Velocity(), Velocity: length}
		s = TurnState(s, tc.steer, length)
		if s.Steer != tc.steer || !s.Turned {
			t.Fatalf("TurnState must start a %s turn, but got %+v", tc.steer, s)
		}
		for i := 0; i < int(length); i++ {
			s = NextStep(s)
		}
		if math.Abs(s.Rotation-tc.sign*math.Pi/2) > 1e-9 {
			t.Errorf("%s turn must end at rotation %f, but got %f", tc.steer, tc.sign*math.Pi/2, s.Rotation)
		}
		if s.Steer != road.Forward || s.RotationSpeed != 0 {
			t.Errorf("%s turn must reset to Forward, but got steer=%s rotation_speed=%f", tc.steer, s.Steer, s.RotationSpeed)
		}
		if s.Heading != (orb.Point{0, tc.sign}) {
			t.Errorf("%s turn must end with heading (0, %v), but got %v", tc.steer, tc.sign, s.Heading)
		}
	}
}

func TestTurnArcFollowsQuarterCircle(t *testing.T) {
	s := State{Position: orb.Point{0, 0}, Heading: road.East.Velocity(), Velocity: 1}
	s = TurnState(s, road.Right, 10)
	for i := 0; i < 100 && s.Steer != road.Forward; i++ {
		s = NextStep(s)
	}
	if s.Steer != road.Forward {
		t.Fatalf("Turn must complete")
	}
	if math.Abs(s.Position[0]-10) > 1.5 || math.Abs(s.Position[1]-10) > 1.5 {
		t.Errorf("Right turn of length 10 must end near (10, 10), but got %v", s.Position)
	}
}

func TestTurnDegenerateLength(t *testing.T) {
	s := State{Heading: road.North.Velocity(), Rotation: road.North.Angle(), Velocity: 5}
	s = TurnState(s, road.Left, 0)
	if s.Steer != road.Forward || s.RotationSpeed != 0 || s.Turned {
		t.Errorf("Zero length turn must drive straight, but got %+v", s)
	}
	s = NextStep(s)
	if s.Position != (orb.Point{0, -5}) || s.Rotation != road.North.Angle() {
		t.Errorf("Straight step must move 5 north, but got %v rotation %f", s.Position, s.Rotation)
	}
}

func TestNextStepIsPure(t *testing.T) {
	l := testLayout(t)
	c := testCar(t, l, 1, road.East, road.East)
	before := c.State
	_ = c.NextRect()
	_ = c.Plan(6)
	_, _ = c.Simulate(c.State, 3)
	if c.State != before {
		t.Errorf("Look-ahead must not mutate the car")
	}
	if got := c.NextRect().Center(); got != (orb.Point{6, 530}) {
		t.Errorf("Next rect must be centered at (6, 530), but got %v", got)
	}
}

func TestSteerDirection(t *testing.T) {
	l := testLayout(t)
	cases := []struct {
		initial, target road.Direction
		want            road.Steer
	}{
		{road.North, road.North, road.Forward},
		{road.East, road.South, road.Right},
		{road.North, road.East, road.Right},
		{road.South, road.West, road.Right},
		{road.West, road.North, road.Right},
		{road.East, road.North, road.Left},
		{road.North, road.West, road.Left},
		{road.South, road.East, road.Left},
		{road.West, road.South, road.Left},
	}
	for _, tc := range cases {
		if got := testCar(t, l, 1, tc.initial, tc.target).SteerDirection(); got != tc.want {
			t.Errorf("SteerDirection(%s -> %s) must be %s, but got %s", tc.initial, tc.target, tc.want, got)
		}
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	l := testLayout(t)
	pos := l.EntryPoint(road.North)
	if _, err := New(1, pos, Size{Width: 16, Height: 8}, road.North, road.South, l.Lane(road.South), testModel); errors.Cause(err) != ErrInvalidVehicle {
		t.Errorf("U-turn must fail with ErrInvalidVehicle, but got %v", err)
	}
	if _, err := New(1, pos, Size{Width: 0, Height: 8}, road.North, road.North, l.Lane(road.North), testModel); errors.Cause(err) != ErrInvalidVehicle {
		t.Errorf("Zero width must fail with ErrInvalidVehicle, but got %v", err)
	}
	if _, err := New(1, pos, Size{Width: 16, Height: 8}, road.North, road.East, l.Lane(road.West), testModel); errors.Cause(err) != ErrInvalidVehicle {
		t.Errorf("Mismatched target lane must fail with ErrInvalidVehicle, but got %v", err)
	}
	if _, err := New(1, pos, Size{Width: 16, Height: 8}, road.Direction(9), road.North, l.Lane(road.North), testModel); errors.Cause(err) != ErrInvalidVehicle {
		t.Errorf("Unknown direction must fail with ErrInvalidVehicle, but got %v", err)
	}
}

func TestStopHoldsPosition(t *testing.T) {
	l := testLayout(t)
	c := testCar(t, l, 1, road.South, road.South)
	c.Stop()
	before := c.Position
	c.Step()
	if c.Position != before || c.CanMove() {
		t.Errorf("Stopped car must stay at %v, but moved to %v", before, c.Position)
	}
	if c.Velocity != 0 {
		t.Errorf("Stop must brake to zero with full deceleration, but got %v", c.Velocity)
	}
	if got := c.ProceedSpeed(testModel.VMax()); got != 1 {
		t.Errorf("Restart must accelerate to 1, but got %v", got)
	}
}

// driveThrough runs the car with Plan/Apply/Step until its turn completes and
// checks that every committed footprint is the planned one.
func driveThrough(t *testing.T, c *Car) {
	t.Helper()
	for i := 0; i < 400; i++ {
		p := c.Plan(c.ProceedSpeed(c.Kinem.VMax()))
		c.Apply(p.Command)
		c.Step()
		if c.Rect() != p.Rect {
			t.Fatalf("Tick %d: committed rect %v must equal planned rect %v", i, c.Rect(), p.Rect)
		}
		if c.Turned && c.Steer == road.Forward {
			return
		}
	}
	t.Fatalf("Car %d never completed its turn", c.ID)
}

func TestAutoTurnEndsOnTargetLane(t *testing.T) {
	l := testLayout(t)
	for _, target := range []road.Direction{road.West, road.East} {
		c := testCar(t, l, 1, road.North, target)
		driveThrough(t, c)
		if c.Heading != target.Velocity() {
			t.Errorf("Car turning to %s must end heading %v, but got %v", target, target.Velocity(), c.Heading)
		}
		if d := l.Lane(target).DistanceToLine(c.Position); d > 2 {
			t.Errorf("Car turning to %s must end within 2px of its lane line, but is %f away at %v", target, d, c.Position)
		}
	}
}

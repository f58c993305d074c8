package road

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/cxd309/intersection-engine/internal/geometry"
)

// Axis is the orientation of a lane.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Lane is a one-way traffic corridor spanning the map.
type Lane struct {
	Direction Direction
	Bounds    geometry.Rect
	Axis      Axis
	// Line is the rounded centerline coordinate: y for horizontal lanes, x for
	// vertical ones. It doubles as the stop/guide line.
	Line float64
}

// NewLane infers the axis from the larger side of bounds.
func NewLane(d Direction, bounds geometry.Rect) Lane {
	c := bounds.Center()
	if bounds.Width > bounds.Height {
		return Lane{Direction: d, Bounds: bounds, Axis: Horizontal, Line: math.Round(c[1])}
	}
	return Lane{Direction: d, Bounds: bounds, Axis: Vertical, Line: math.Round(c[0])}
}

// DistanceToLine is the perpendicular distance from p to the lane's stop line.
func (l Lane) DistanceToLine(p orb.Point) float64 {
	if l.Axis == Horizontal {
		return math.Abs(p[1] - l.Line)
	}
	return math.Abs(p[0] - l.Line)
}

// Contains reports whether r overlaps the lane's bounds.
func (l Lane) Contains(r geometry.Rect) bool {
	return geometry.Overlaps(r, l.Bounds)
}

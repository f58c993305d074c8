package road

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"github.com/cxd309/intersection-engine/internal/geometry"
)

// ErrInvalidLayout is returned for non-positive or inconsistent dimensions.
var ErrInvalidLayout = errors.New("invalid layout")

// LayoutData is the serialisable description of the map.
type LayoutData struct {
	Width     float64 `json:"width"`      // pixels
	Height    float64 `json:"height"`     // pixels
	RoadWidth float64 `json:"road_width"` // pixels, both directions together
}

// Layout is the immutable geometry of the map: the central intersection
// square and one lane per direction of travel.
type Layout struct {
	LayoutData
	Intersection geometry.Rect
	lanes        map[Direction]Lane
}

// NewLayout builds the intersection box centered on the map and the four lanes
// derived from it.
func NewLayout(data LayoutData) (*Layout, error) {
	if !(data.Width > 0) || !(data.Height > 0) {
		return nil, errors.Wrapf(ErrInvalidLayout, "map size %vx%v must be positive", data.Width, data.Height)
	}
	if !(data.RoadWidth > 0) {
		return nil, errors.Wrapf(ErrInvalidLayout, "road width %v must be positive", data.RoadWidth)
	}
	if data.RoadWidth > math.Min(data.Width, data.Height) {
		return nil, errors.Wrapf(ErrInvalidLayout, "road width %v exceeds map size %vx%v", data.RoadWidth, data.Width, data.Height)
	}

	box, err := geometry.NewRect(
		data.Width/2-data.RoadWidth/2,
		data.Height/2-data.RoadWidth/2,
		data.RoadWidth, data.RoadWidth, 0,
	)
	if err != nil {
		return nil, errors.Wrap(err, "intersection box")
	}

	c := box.Center()
	half := math.Floor(data.RoadWidth / 2)
	l := &Layout{
		LayoutData:   data,
		Intersection: box,
		lanes: map[Direction]Lane{
			East:  NewLane(East, geometry.Rect{Left: 0, Top: c[1], Width: data.Width, Height: half}),
			West:  NewLane(West, geometry.Rect{Left: 0, Top: box.Top, Width: data.Width, Height: half}),
			South: NewLane(South, geometry.Rect{Left: box.Left, Top: 0, Width: half, Height: data.Height}),
			North: NewLane(North, geometry.Rect{Left: c[0], Top: 0, Width: half, Height: data.Height}),
		},
	}
	return l, nil
}

// Lane returns the lane carrying traffic in direction d.
func (l *Layout) Lane(d Direction) Lane { return l.lanes[d] }

// Bounds is the whole map.
func (l *Layout) Bounds() geometry.Rect {
	return geometry.Rect{Width: l.Width, Height: l.Height}
}

// InIntersection reports whether r overlaps the intersection box.
func (l *Layout) InIntersection(r geometry.Rect) bool {
	return geometry.Overlaps(r, l.Intersection)
}

// EntryPoint is where a vehicle heading in d appears: the middle of d's lane,
// on the map edge it enters from.
func (l *Layout) EntryPoint(d Direction) orb.Point {
	c := l.lanes[d].Bounds.Center()
	switch d {
	case North:
		return orb.Point{math.Round(c[0]), l.Height - 1}
	case South:
		return orb.Point{math.Round(c[0]), 0}
	case West:
		return orb.Point{l.Width - 1, math.Round(c[1])}
	}
	return orb.Point{0, math.Round(c[1])}
}

// DistanceFromEntry is how far p is from the edge where traffic heading in d
// enters the map.
func (l *Layout) DistanceFromEntry(d Direction, p orb.Point) float64 {
	switch d {
	case North:
		return l.Height - p[1]
	case South:
		return p[1]
	case West:
		return l.Width - p[0]
	}
	return p[0]
}

// IsOutOfBounds reports whether r lies entirely outside the map.
func (l *Layout) IsOutOfBounds(r geometry.Rect) bool {
	n := r.Normalized()
	return n.Right() < 0 || n.Left > l.Width || n.Bottom() < 0 || n.Top > l.Height
}

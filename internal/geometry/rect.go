// Package geometry provides the rotation-aware rectangle used for vehicle
// footprints, lanes and the intersection box, together with the overlap
// predicate shared by collision detection and membership tests.
//
// Overlap is decided on rotation-normalized axis-aligned bounding boxes. For
// rotations that are a multiple of π/2 this is exact; for anything else it is
// a conservative over-approximation.
package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// RightAngleEpsilon is how close (radians) a rotation must be to a multiple of
// π/2 to be treated as exactly that multiple.
const RightAngleEpsilon = 0.01

// ErrDegenerateRect is returned when a rectangle has a non-positive side.
var ErrDegenerateRect = errors.New("rectangle width and height must be positive")

// Rect is a rectangle given by its un-rotated top-left corner, size and a
// rotation (radians) about its center.
type Rect struct {
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
}

// NewRect validates the dimensions and returns the rectangle.
func NewRect(left, top, width, height, rotation float64) (Rect, error) {
	if !(width > 0) || !(height > 0) {
		return Rect{}, errors.Wrapf(ErrDegenerateRect, "got %vx%v", width, height)
	}
	return Rect{Left: left, Top: top, Width: width, Height: height, Rotation: rotation}, nil
}

// CenteredRect returns the rectangle of the given size centered on c.
func CenteredRect(c orb.Point, width, height, rotation float64) Rect {
	return Rect{
		Left:     c[0] - width/2,
		Top:      c[1] - height/2,
		Width:    width,
		Height:   height,
		Rotation: rotation,
	}
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Center is the rotation pivot.
func (r Rect) Center() orb.Point {
	return orb.Point{r.Left + r.Width/2, r.Top + r.Height/2}
}

// Translate returns r shifted by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.Left += dx
	r.Top += dy
	return r
}

// Grow returns the normalized rectangle enlarged by margin on every side.
func (r Rect) Grow(margin float64) Rect {
	n := r.Normalized()
	return Rect{Left: n.Left - margin, Top: n.Top - margin, Width: n.Width + 2*margin, Height: n.Height + 2*margin}
}

// quarterTurns reports whether the rotation is (within RightAngleEpsilon) a
// whole number of quarter turns, and how many.
func (r Rect) quarterTurns() (int, bool) {
	k := math.Round(r.Rotation / (math.Pi / 2))
	if math.Abs(r.Rotation-k*math.Pi/2) > RightAngleEpsilon {
		return 0, false
	}
	return int(k), true
}

// Normalized returns the axis-aligned rectangle used for overlap tests.
func (r Rect) Normalized() Rect {
	k, ok := r.quarterTurns()
	if ok {
		if k%2 == 0 {
			return Rect{Left: r.Left, Top: r.Top, Width: r.Width, Height: r.Height}
		}
		c := r.Center()
		return Rect{Left: c[0] - r.Height/2, Top: c[1] - r.Width/2, Width: r.Height, Height: r.Width}
	}
	b := r.corners().Bound()
	return Rect{Left: b.Min[0], Top: b.Min[1], Width: b.Max[0] - b.Min[0], Height: b.Max[1] - b.Min[1]}
}

// Bound is the normalized rectangle as a closed orb.Bound.
func (r Rect) Bound() orb.Bound {
	n := r.Normalized()
	return orb.Bound{Min: orb.Point{n.Left, n.Top}, Max: orb.Point{n.Right(), n.Bottom()}}
}

func (r Rect) corners() orb.MultiPoint {
	c := r.Center()
	sin, cos := math.Sincos(r.Rotation)
	hw, hh := r.Width/2, r.Height/2
	offsets := [4][2]float64{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}}
	mp := make(orb.MultiPoint, 0, 4)
	for _, o := range offsets {
		mp = append(mp, orb.Point{
			c[0] + o[0]*cos - o[1]*sin,
			c[1] + o[0]*sin + o[1]*cos,
		})
	}
	return mp
}

// Corners returns the true rotated outline as a closed ring.
func (r Rect) Corners() orb.Ring {
	mp := r.corners()
	ring := make(orb.Ring, 0, 5)
	ring = append(ring, mp...)
	return append(ring, mp[0])
}

// Overlaps reports whether the normalized bounding boxes of a and b intersect.
// Touching edges count as overlapping. The same predicate answers "is this
// rect inside that lane / the intersection".
func Overlaps(a, b Rect) bool {
	return a.Bound().Intersects(b.Bound())
}

func (r Rect) String() string {
	n := r.Normalized()
	return fmt.Sprintf("(%.2f, %.2f, %.2f, %.2f)", n.Left, n.Top, n.Right(), n.Bottom())
}

package road

import (
	"fmt"

	"github.com/cxd309/intersection-engine/internal/geometry"
)

// Quadrant identifies one quarter of the intersection box by the two lanes
// that bound it: one horizontal and one vertical direction. The pair is
// unordered; construct keys with QuadrantOf so equal pairs compare equal.
type Quadrant struct {
	Horizontal Direction
	Vertical   Direction
}

// QuadrantOf returns the quadrant bounded by the lanes of a and b. One of them
// must be horizontal and the other vertical.
func QuadrantOf(a, b Direction) Quadrant {
	if a.Horizontal() == b.Horizontal() {
		panic(fmt.Sprintf("road: no quadrant between %s and %s", a, b))
	}
	if a.Horizontal() {
		return Quadrant{Horizontal: a, Vertical: b}
	}
	return Quadrant{Horizontal: b, Vertical: a}
}

// Quadrants lists the four keys: top-left, top-right, bottom-left, bottom-right.
func Quadrants() [4]Quadrant {
	return [4]Quadrant{
		{Horizontal: West, Vertical: South},
		{Horizontal: West, Vertical: North},
		{Horizontal: East, Vertical: South},
		{Horizontal: East, Vertical: North},
	}
}

func (q Quadrant) String() string {
	return fmt.Sprintf("{%s,%s}", q.Horizontal, q.Vertical)
}

// QuadrantLanes returns the two lanes whose overlap is q's region.
func (l *Layout) QuadrantLanes(q Quadrant) (Lane, Lane) {
	return l.lanes[q.Horizontal], l.lanes[q.Vertical]
}

// Within reports whether r still overlaps both lanes that define q.
func (l *Layout) Within(q Quadrant, r geometry.Rect) bool {
	h, v := l.QuadrantLanes(q)
	return h.Contains(r) && v.Contains(r)
}

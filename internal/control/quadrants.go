package control

import (
	"fmt"

	"github.com/cxd309/intersection-engine/internal/road"
	"github.com/cxd309/intersection-engine/internal/vehicle"
)

// QuadrantTable maps each intersection quadrant to the car holding it.
type QuadrantTable struct {
	holders map[road.Quadrant]vehicle.ID
}

func NewQuadrantTable() *QuadrantTable {
	return &QuadrantTable{holders: make(map[road.Quadrant]vehicle.ID)}
}

// Holder returns the car holding q.
func (t *QuadrantTable) Holder(q road.Quadrant) (vehicle.ID, bool) {
	id, ok := t.holders[q]
	return id, ok
}

// Free reports whether none of keys is held.
func (t *QuadrantTable) Free(keys []road.Quadrant) bool {
	for _, q := range keys {
		if _, held := t.holders[q]; held {
			return false
		}
	}
	return true
}

// Holds reports whether id holds any quadrant.
func (t *QuadrantTable) Holds(id vehicle.ID) bool {
	for _, h := range t.holders {
		if h == id {
			return true
		}
	}
	return false
}

// Acquire grants every key to id, or none of them if any is held.
func (t *QuadrantTable) Acquire(id vehicle.ID, keys []road.Quadrant) bool {
	if !t.Free(keys) {
		return false
	}
	for _, q := range keys {
		if h, held := t.holders[q]; held {
			panic(fmt.Sprintf("quadrant %s granted to car %d while held by car %d", q, id, h))
		}
		t.holders[q] = id
	}
	return true
}

// Release frees q.
func (t *QuadrantTable) Release(q road.Quadrant) {
	delete(t.holders, q)
}

// Len is the number of held quadrants.
func (t *QuadrantTable) Len() int { return len(t.holders) }

// Snapshot copies the table.
func (t *QuadrantTable) Snapshot() map[road.Quadrant]vehicle.ID {
	out := make(map[road.Quadrant]vehicle.ID, len(t.holders))
	for q, id := range t.holders {
		out[q] = id
	}
	return out
}

// PathQuadrants lists the quadrants crossed going from entry to target, in the
// order the car reaches them.
func PathQuadrants(entry, target road.Direction) []road.Quadrant {
	steer, _ := road.SteerBetween(entry, target)
	switch steer {
	case road.Forward:
		return []road.Quadrant{
			road.QuadrantOf(entry, entry.Turned(road.Right)),
			road.QuadrantOf(entry, entry.Turned(road.Left)),
		}
	case road.Right:
		return []road.Quadrant{road.QuadrantOf(entry, target)}
	}
	return []road.Quadrant{
		road.QuadrantOf(entry, target.Reverse()),
		road.QuadrantOf(entry, target),
		road.QuadrantOf(entry.Reverse(), target),
	}
}

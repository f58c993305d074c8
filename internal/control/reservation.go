package control

import (
	"sort"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/cxd309/intersection-engine/internal/road"
	"github.com/cxd309/intersection-engine/internal/vehicle"
)

// Reservation admits a car only once it holds every quadrant its manoeuvre
// crosses. A quadrant stays held until its holder has left the box.
type Reservation struct {
	base
	table *QuadrantTable
}

func NewReservation(b base) *Reservation {
	return &Reservation{base: b, table: NewQuadrantTable()}
}

func (r *Reservation) Strategy() Strategy { return StrategyReservation }

// Table exposes the quadrant holders.
func (r *Reservation) Table() *QuadrantTable { return r.table }

func (r *Reservation) Control(cars []*vehicle.Car) []Decision {
	live := r.begin(cars)
	for _, q := range road.Quadrants() {
		holder, held := r.table.Holder(q)
		if !held {
			continue
		}
		if c, ok := live[holder]; !ok || !r.layout.InIntersection(c.Rect()) {
			r.table.Release(q)
		}
	}

	p := newPass(cars)
	for _, c := range cars {
		plan := cruise(c)
		if p.blocked(c.ID, plan.Rect) {
			p.stop(c)
			continue
		}
		if r.entering(c, plan.Rect) && !r.table.Holds(c.ID) {
			keys := PathQuadrants(c.InitialDirection, c.Target)
			if !r.table.Acquire(c.ID, keys) {
				p.stop(c)
				continue
			}
			r.admit(c)
		}
		p.proceed(c, plan)
	}
	return p.decisions
}

// AdvancedReservation is Reservation with progressive release: a car's
// quadrants are kept in path order and the head one is released as soon as
// the car no longer overlaps both lanes bounding it.
type AdvancedReservation struct {
	base
	table *QuadrantTable
	paths map[vehicle.ID][]road.Quadrant
}

func NewAdvancedReservation(b base) *AdvancedReservation {
	return &AdvancedReservation{
		base:  b,
		table: NewQuadrantTable(),
		paths: make(map[vehicle.ID][]road.Quadrant),
	}
}

func (r *AdvancedReservation) Strategy() Strategy { return StrategyAdvancedReservation }

// Table exposes the quadrant holders.
func (r *AdvancedReservation) Table() *QuadrantTable { return r.table }

// Remaining returns the quadrants id still holds, in path order.
func (r *AdvancedReservation) Remaining(id vehicle.ID) []road.Quadrant {
	return append([]road.Quadrant(nil), r.paths[id]...)
}

func (r *AdvancedReservation) release(live map[vehicle.ID]*vehicle.Car) {
	ids := lo.Keys(r.paths)
	sort.Ints(ids)
	for _, id := range ids {
		path := r.paths[id]
		c, ok := live[id]
		if !ok {
			for _, q := range path {
				r.table.Release(q)
			}
			delete(r.paths, id)
			continue
		}
		if len(path) > 0 && !r.layout.Within(path[0], c.Rect()) {
			r.table.Release(path[0])
			r.log.WithFields(logrus.Fields{"tick": r.tick, "car": id, "quadrant": path[0].String()}).Debug("quadrant released")
			path = path[1:]
		}
		if len(path) == 0 {
			delete(r.paths, id)
			continue
		}
		r.paths[id] = path
	}
}

func (r *AdvancedReservation) Control(cars []*vehicle.Car) []Decision {
	live := r.begin(cars)
	r.release(live)

	p := newPass(cars)
	for _, c := range cars {
		plan := cruise(c)
		if p.blocked(c.ID, plan.Rect) {
			p.stop(c)
			continue
		}
		if _, holding := r.paths[c.ID]; r.entering(c, plan.Rect) && !holding {
			keys := PathQuadrants(c.InitialDirection, c.Target)
			if !r.table.Acquire(c.ID, keys) {
				p.stop(c)
				continue
			}
			r.paths[c.ID] = keys
			r.admit(c)
		}
		p.proceed(c, plan)
	}
	return p.decisions
}

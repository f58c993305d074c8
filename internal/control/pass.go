package control

import (
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/cxd309/intersection-engine/internal/geometry"
	"github.com/cxd309/intersection-engine/internal/kinematics"
	"github.com/cxd309/intersection-engine/internal/road"
	"github.com/cxd309/intersection-engine/internal/vehicle"
)

// base carries the state every strategy shares: the tick clock, the
// throughput counter and the set of cars already let in.
type base struct {
	layout     *road.Layout
	log        *logrus.Entry
	tick       int
	throughput Throughput
	served     map[vehicle.ID]struct{}
}

func newBase(layout *road.Layout, units kinematics.Units, log *logrus.Entry) base {
	return base{
		layout:     layout,
		log:        log,
		throughput: NewThroughput(units.TicksPerMinute()),
		served:     make(map[vehicle.ID]struct{}),
	}
}

func (b *base) Tick() int               { return b.tick }
func (b *base) Admitted() int           { return b.throughput.Count() }
func (b *base) ThroughputRate() float64 { return b.throughput.Rate(b.tick) }

// begin advances the clock and forgets cars that have left the map.
func (b *base) begin(cars []*vehicle.Car) map[vehicle.ID]*vehicle.Car {
	b.tick++
	live := lo.SliceToMap(cars, func(c *vehicle.Car) (vehicle.ID, *vehicle.Car) { return c.ID, c })
	for id := range b.served {
		if _, ok := live[id]; !ok {
			delete(b.served, id)
		}
	}
	return live
}

func (b *base) isServed(id vehicle.ID) bool {
	_, ok := b.served[id]
	return ok
}

// admit counts a car into the intersection exactly once.
func (b *base) admit(c *vehicle.Car) {
	if b.isServed(c.ID) {
		return
	}
	b.served[c.ID] = struct{}{}
	b.throughput.Admit(b.tick)
	b.log.WithFields(logrus.Fields{
		"tick":   b.tick,
		"car":    c.ID,
		"from":   c.InitialDirection.String(),
		"to":     c.Target.String(),
		"steer":  c.SteerDirection().String(),
		"served": b.throughput.Count(),
	}).Debug("car admitted")
}

// entering reports whether a car that has not been let in yet would touch the
// intersection with rect.
func (b *base) entering(c *vehicle.Car, rect geometry.Rect) bool {
	return !b.isServed(c.ID) && b.layout.InIntersection(rect)
}

type footprint struct {
	id   vehicle.ID
	rect geometry.Rect
}

// pass accumulates one tick's decisions. Every candidate footprint is checked
// against the current footprint of every other car and against every
// footprint accepted earlier in the pass.
type pass struct {
	current   []footprint
	accepted  []geometry.Rect
	decisions []Decision
}

func newPass(cars []*vehicle.Car) *pass {
	return &pass{
		current: lo.Map(cars, func(c *vehicle.Car, _ int) footprint {
			return footprint{id: c.ID, rect: c.Rect()}
		}),
		decisions: make([]Decision, 0, len(cars)),
	}
}

func (p *pass) blocked(id vehicle.ID, rect geometry.Rect) bool {
	if lo.SomeBy(p.current, func(f footprint) bool { return f.id != id && geometry.Overlaps(f.rect, rect) }) {
		return true
	}
	return lo.SomeBy(p.accepted, func(r geometry.Rect) bool { return geometry.Overlaps(r, rect) })
}

func (p *pass) proceed(c *vehicle.Car, plan vehicle.Plan) {
	p.accepted = append(p.accepted, plan.Rect)
	p.decisions = append(p.decisions, Decision{Car: c, Command: plan.Command})
}

func (p *pass) stop(c *vehicle.Car) {
	p.decisions = append(p.decisions, Decision{Car: c, Command: vehicle.Command{Action: vehicle.ActionStop}})
}

// cruise is the plan for heading to VMax.
func cruise(c *vehicle.Car) vehicle.Plan {
	return c.Plan(c.ProceedSpeed(c.Kinem.VMax()))
}

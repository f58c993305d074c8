package control

import (
	"github.com/samber/lo"

	"github.com/cxd309/intersection-engine/internal/vehicle"
)

// Exclusive lets a single car into the box at a time. The holder is whichever
// car currently overlaps the box; with none, the first car to ask takes it.
type Exclusive struct {
	base
}

func NewExclusive(b base) *Exclusive { return &Exclusive{base: b} }

func (e *Exclusive) Strategy() Strategy { return StrategyExclusive }

func (e *Exclusive) Control(cars []*vehicle.Car) []Decision {
	e.begin(cars)
	holder, occupied := lo.Find(cars, func(c *vehicle.Car) bool { return e.layout.InIntersection(c.Rect()) })

	p := newPass(cars)
	for _, c := range cars {
		plan := cruise(c)
		if p.blocked(c.ID, plan.Rect) {
			p.stop(c)
			continue
		}
		if e.layout.InIntersection(plan.Rect) {
			switch {
			case !occupied:
				holder, occupied = c, true
			case holder != c:
				p.stop(c)
				continue
			}
			e.admit(c)
		}
		p.proceed(c, plan)
	}
	return p.decisions
}

package control

import (
	"github.com/sirupsen/logrus"

	"github.com/cxd309/intersection-engine/internal/kinematics"
	"github.com/cxd309/intersection-engine/internal/road"
	"github.com/cxd309/intersection-engine/internal/vehicle"
)

// TrafficLight gives one entry direction green at a time. Green moves
// counter-clockwise (East, North, West, South) and every change goes through
// an all-red phase. On green, cars from the lit direction may enter, as may
// right-turners whose target is the lit direction's reverse.
type TrafficLight struct {
	base
	light      road.Direction
	green      bool
	nextChange int
	greenTicks int
	redTicks   int
	speedRatio float64
}

func NewTrafficLight(b base, cfg Config, units kinematics.Units) *TrafficLight {
	t := &TrafficLight{
		base:       b,
		light:      *cfg.InitialLight,
		green:      true,
		greenTicks: max(units.Ticks(cfg.GreenSeconds), 1),
		redTicks:   max(units.Ticks(cfg.AllRedSeconds), 1),
		speedRatio: cfg.IntersectionSpeedRatio,
	}
	t.nextChange = t.greenTicks
	return t
}

func (t *TrafficLight) Strategy() Strategy { return StrategyTrafficLight }

// Light returns the lit direction and whether it is currently green. During
// all-red the direction is the one about to turn green.
func (t *TrafficLight) Light() (road.Direction, bool) { return t.light, t.green }

func (t *TrafficLight) changeLights() {
	if t.tick < t.nextChange {
		return
	}
	if t.green {
		t.green = false
		t.light = t.light.Turned(road.Left)
		t.nextChange += t.redTicks
	} else {
		t.green = true
		t.nextChange += t.greenTicks
	}
	t.log.WithFields(logrus.Fields{"tick": t.tick, "light": t.light.String(), "green": t.green}).Debug("light changed")
}

// CanTurn reports whether c may enter the box under the current light.
func (t *TrafficLight) CanTurn(c *vehicle.Car) bool {
	if !t.green {
		return false
	}
	if c.InitialDirection == t.light {
		return true
	}
	return c.SteerDirection() == road.Right && c.Target == t.light.Reverse()
}

func (t *TrafficLight) Control(cars []*vehicle.Car) []Decision {
	t.begin(cars)
	t.changeLights()

	p := newPass(cars)
	for _, c := range cars {
		plan := cruise(c)
		if t.layout.InIntersection(plan.Rect) {
			if !t.CanTurn(c) && !t.layout.InIntersection(c.Rect()) {
				p.stop(c)
				continue
			}
			plan = c.Plan(c.ProceedSpeed(c.Kinem.VMax() * t.speedRatio))
		}
		if p.blocked(c.ID, plan.Rect) {
			p.stop(c)
			continue
		}
		if t.entering(c, plan.Rect) {
			t.admit(c)
		}
		p.proceed(c, plan)
	}
	return p.decisions
}

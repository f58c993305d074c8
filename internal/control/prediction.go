package control

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/cxd309/intersection-engine/internal/geometry"
	"github.com/cxd309/intersection-engine/internal/kinematics"
	"github.com/cxd309/intersection-engine/internal/vehicle"
)

// Trajectory is a predicted footprint per future tick.
type Trajectory map[int]geometry.Rect

// Prediction simulates a car's whole transit of the box before letting it in
// and reserves the footprint it will occupy at every tick. A transit is
// granted only if no footprint overlaps another car's reservation within
// slack ticks either way.
//
// A reserved car that gets stopped falls behind its schedule; its remaining
// transit is predicted again from where it stands, so the claim holds until
// the car has cleared the box.
type Prediction struct {
	base
	slack        int
	maxTicks     int
	reservations map[vehicle.ID]Trajectory
}

func NewPrediction(b base, cfg Config) *Prediction {
	return &Prediction{
		base:         b,
		slack:        cfg.PredictionSlack,
		maxTicks:     cfg.MaxPredictionTicks,
		reservations: make(map[vehicle.ID]Trajectory),
	}
}

func (p *Prediction) Strategy() Strategy { return StrategyPrediction }

// Reservations copies the reservation table.
func (p *Prediction) Reservations() map[vehicle.ID]Trajectory {
	out := make(map[vehicle.ID]Trajectory, len(p.reservations))
	for id, traj := range p.reservations {
		cp := make(Trajectory, len(traj))
		for t, r := range traj {
			cp[t] = r
		}
		out[id] = cp
	}
	return out
}

// expire drops footprints for elapsed ticks and tables that are empty or
// belong to departed cars.
func (p *Prediction) expire(live map[vehicle.ID]*vehicle.Car) {
	for id, traj := range p.reservations {
		if _, ok := live[id]; !ok {
			delete(p.reservations, id)
			continue
		}
		for t := range traj {
			if t < p.tick {
				delete(traj, t)
			}
		}
		if len(traj) == 0 {
			delete(p.reservations, id)
		}
	}
}

// Clearance is how far past the box a car's reservation reaches: its own
// length plus the distance it needs to brake from VMax.
func Clearance(c *vehicle.Car) float64 {
	d := c.Kinem.BrakingDistance(c.Kinem.VMax())
	if math.IsInf(d, 0) || math.IsNaN(d) {
		d = 0
	}
	return c.Size.Width + d
}

// Predict simulates c accelerating towards VMax from its current state until
// its footprint has entered the box and then cleared it by Clearance. A car
// already let in only has to clear it. The first footprint is keyed tick+1.
// It reports false if the transit does not finish within the prediction
// horizon.
func (p *Prediction) Predict(c *vehicle.Car) (Trajectory, bool) {
	traj := make(Trajectory)
	zone := p.layout.Intersection.Grow(Clearance(c))
	s := c.State
	vmax := c.Kinem.VMax()
	visited := p.isServed(c.ID)
	for t := p.tick + 1; t <= p.tick+p.maxTicks; t++ {
		s, _ = c.Simulate(s, kinematics.Approach(c.Kinem, s.Velocity, vmax))
		rect := c.RectOf(s)
		traj[t] = rect
		if p.layout.InIntersection(rect) {
			visited = true
		} else if visited && !geometry.Overlaps(rect, zone) {
			return traj, true
		}
	}
	return nil, false
}

// replan re-keys the reservation of every reserved car that was held in place
// last tick to its current footprint followed by a fresh prediction.
func (p *Prediction) replan(cars []*vehicle.Car) {
	for _, c := range cars {
		if _, reserved := p.reservations[c.ID]; !reserved || c.CanMove() {
			continue
		}
		traj, ok := p.Predict(c)
		if !ok {
			continue
		}
		traj[p.tick] = c.Rect()
		p.reservations[c.ID] = traj
		p.log.WithFields(logrus.Fields{"tick": p.tick, "car": c.ID}).Debug("reservation delayed")
	}
}

// conflicts reports whether traj overlaps any held reservation up to slack
// ticks earlier or later.
func (p *Prediction) conflicts(traj Trajectory) bool {
	for t, rect := range traj {
		for _, other := range p.reservations {
			for k := -p.slack; k <= p.slack; k++ {
				if o, ok := other[t+k]; ok && geometry.Overlaps(o, rect) {
					return true
				}
			}
		}
	}
	return false
}

func (p *Prediction) Control(cars []*vehicle.Car) []Decision {
	live := p.begin(cars)
	p.expire(live)
	p.replan(cars)

	ps := newPass(cars)
	for _, c := range cars {
		plan := cruise(c)
		if ps.blocked(c.ID, plan.Rect) {
			ps.stop(c)
			continue
		}
		if _, reserved := p.reservations[c.ID]; !reserved && p.entering(c, plan.Rect) {
			traj, ok := p.Predict(c)
			if !ok || p.conflicts(traj) {
				if !ok {
					p.log.WithFields(logrus.Fields{"tick": p.tick, "car": c.ID}).Warn("transit prediction did not finish")
				}
				ps.stop(c)
				continue
			}
			p.reservations[c.ID] = traj
			p.admit(c)
		}
		ps.proceed(c, plan)
	}
	return ps.decisions
}

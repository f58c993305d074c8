// Package kinematics defines the MotionModel interface for vehicle speed
// control, along with built-in implementations and the unit conversions from
// real-world inputs to simulation units.
//
// The simulation is discrete: distances are pixels, time is ticks, so a speed
// is pixels per tick and an acceleration is pixels per tick per tick. Adding a
// new physics model requires only implementing MotionModel and registering it
// in the JSON discriminator in the engine package.
package kinematics

// MotionModel is the speed-control contract every kinematics implementation
// must satisfy.
type MotionModel interface {
	// VMax returns the vehicle's cruising speed (px/tick).
	VMax() float64

	// Accelerate returns the speed one tick later when speeding up from v
	// toward target. The result never exceeds target.
	Accelerate(v, target float64) float64

	// Decelerate returns the speed one tick later when braking from v toward
	// target (≥ 0). The result never drops below target.
	Decelerate(v, target float64) float64

	// BrakingDistance returns the distance covered while braking from v to a
	// standstill.
	BrakingDistance(v float64) float64
}

// Approach returns the speed one tick later when moving from v toward target,
// accelerating or braking as needed.
func Approach(m MotionModel, v, target float64) float64 {
	if v < target {
		return m.Accelerate(v, target)
	}
	return m.Decelerate(v, target)
}

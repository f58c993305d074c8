package vehicle

import (
	"fmt"

	"github.com/cxd309/intersection-engine/internal/road"
)

// Action is what a controller tells a car to do for one tick.
type Action int

const (
	ActionStop Action = iota
	ActionProceed
	ActionStartTurn
)

func (a Action) String() string {
	switch a {
	case ActionProceed:
		return "proceed"
	case ActionStartTurn:
		return "start_turn"
	}
	return "stop"
}

func (a Action) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// Command is a controller decision. Speed applies to Proceed and StartTurn;
// Steer and TurnLength only to StartTurn.
type Command struct {
	Action     Action     `json:"action"`
	Speed      float64    `json:"speed,omitempty"`
	Steer      road.Steer `json:"steer,omitempty"`
	TurnLength float64    `json:"turn_length,omitempty"`
}

func (c Command) String() string {
	switch c.Action {
	case ActionProceed:
		return fmt.Sprintf("proceed(%.0f)", c.Speed)
	case ActionStartTurn:
		return fmt.Sprintf("turn(%s, %.1f, %.0f)", c.Steer, c.TurnLength, c.Speed)
	}
	return "stop"
}

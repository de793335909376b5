package tracking

import (
	"fmt"
	"math"
)

// Hysteresis turns a noisy score into a two-state signal. It enters
// tracking when the score reaches Enter and leaves only when the score
// drops below Exit, so a score hovering near either threshold cannot make
// the state oscillate. The zero value never enters tracking usefully; use
// NewHysteresis. Not safe for concurrent use.
type Hysteresis struct {
	Enter float64
	Exit  float64
	state State
}

// NewHysteresis validates the band. Exit must be strictly below Enter.
func NewHysteresis(enter, exit float64) (*Hysteresis, error) {
	if math.IsNaN(enter) || enter <= 0 || enter > 1 {
		return nil, fmt.Errorf("tracking: enter threshold %v outside (0,1]", enter)
	}
	if math.IsNaN(exit) || exit < 0 || exit >= enter {
		return nil, fmt.Errorf("tracking: exit threshold %v must be in [0,%v)", exit, enter)
	}
	return &Hysteresis{Enter: enter, Exit: exit}, nil
}

// State returns the current state.
func (h *Hysteresis) State() State { return h.state }

// Observe feeds one score and reports the resulting state and whether it
// changed.
func (h *Hysteresis) Observe(score float64) (State, bool) {
	switch h.state {
	case StateNone:
		if score >= h.Enter {
			h.state = StateTracking
			return h.state, true
		}
	case StateTracking:
		if score < h.Exit {
			h.state = StateNone
			return h.state, true
		}
	}
	return h.state, false
}

// Reset returns to StateNone.
func (h *Hysteresis) Reset() { h.state = StateNone }

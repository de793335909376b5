package tracking

import (
	"image"
	"time"
)

// State enumerates whether the target is considered visible.
type State int

const (
	StateNone State = iota
	StateTracking
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateTracking:
		return "tracking"
	default:
		return "unknown"
	}
}

// Actions externalize playback side effects of state transitions.
type Actions struct {
	StartPlayback func() error
	PausePlayback func() error
}

// Listener is called on each successful state transition.
type Listener func(prev, next State)

// Observation is one analyzed frame.
type Observation struct {
	Score    float64
	Position *image.Rectangle // located window, nil when not located
	At       time.Time
}

// Status is a copy of the session state for display.
type Status struct {
	State      State
	Confidence float64
	Position   *image.Rectangle
	Playing    bool
	EpisodeID  string    // set while tracking
	Since      time.Time // time of the last transition
	Updated    time.Time // time of the last observation
	Frames     uint64    // observations processed
}

// Narrow views of a Session for the presenters and the app container.
type StatusSource interface{ Status() Status }
type Observer interface{ Observe(Observation) }
type Lifecycle interface {
	Halt()
	Close()
}

// SessionContract is the full Session surface.
type SessionContract interface {
	StatusSource
	Observer
	Lifecycle
	AddListener(Listener)
}

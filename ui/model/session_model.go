package model

import (
	"time"
)

// SessionModel tracks how long the target has been in view: the current
// (or most recent) episode and the total across episodes. Presenters poll
// Values() and update views. The zero value is ready to use. Not safe for
// concurrent use; updates happen on the UI tick.
type SessionModel struct {
	active       bool
	episodeStart time.Time
	lastEpisode  time.Duration
	accumulated  time.Duration
	episodes     int
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick updates the model from the current tracking flag.
func (m *SessionModel) OnTick(tracking bool, now time.Time) {
	if m == nil {
		return
	}
	if tracking {
		if !m.active {
			m.active = true
			m.episodeStart = now
			m.lastEpisode = 0
			m.episodes++
		}
		m.lastEpisode = now.Sub(m.episodeStart)
	} else if m.active {
		m.lastEpisode = now.Sub(m.episodeStart)
		m.accumulated += m.lastEpisode
		m.active = false
	}
}

// Values returns the episode duration and the total tracked duration.
// The total includes the ongoing episode.
func (m *SessionModel) Values() (episode, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	episode = m.lastEpisode
	total = m.accumulated
	if m.active {
		total += episode
	}
	return
}

// Episodes returns how many times tracking started.
func (m *SessionModel) Episodes() int {
	if m == nil {
		return 0
	}
	return m.episodes
}

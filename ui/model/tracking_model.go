package model

import (
	"image"
	"sync"
	"time"

	"github.com/soocke/plaque-overlay/domain/tracking"
)

// TrackingModel holds what the view shows about recognition: the latest
// session status and the last analysis timing.
type TrackingModel struct {
	mu           sync.RWMutex
	status       tracking.Status
	lastAnalysis time.Duration
	analyzed     uint64
}

func NewTrackingModel() *TrackingModel { return &TrackingModel{} }

// SetStatus stores a copy of st.
func (m *TrackingModel) SetStatus(st tracking.Status) {
	if m == nil {
		return
	}
	if st.Position != nil {
		p := *st.Position
		st.Position = &p
	}
	m.mu.Lock()
	m.status = st
	m.mu.Unlock()
}

// RecordAnalysis stores the duration of the most recent analysis.
func (m *TrackingModel) RecordAnalysis(d time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.lastAnalysis = d
	m.analyzed++
	m.mu.Unlock()
}

func (m *TrackingModel) Status() tracking.Status {
	if m == nil {
		return tracking.Status{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Position returns the located window, or an empty rectangle.
func (m *TrackingModel) Position() image.Rectangle {
	st := m.Status()
	if st.Position == nil {
		return image.Rectangle{}
	}
	return *st.Position
}

// Analysis returns the last analysis duration and the analysis count.
func (m *TrackingModel) Analysis() (time.Duration, uint64) {
	if m == nil {
		return 0, 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastAnalysis, m.analyzed
}

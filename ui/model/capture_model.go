package model

import (
	"sync/atomic"
)

// CaptureModel tracks whether capture is enabled and which source feeds it.
// The zero value is disabled and usable. Concurrency-safe because UI
// callbacks and presenter ticks may race.
type CaptureModel struct {
	enabled atomic.Bool
	source  atomic.Pointer[string]
}

// NewCaptureModel returns a disabled model labelled with source.
func NewCaptureModel(source string) *CaptureModel {
	m := &CaptureModel{}
	m.source.Store(&source)
	return m
}

// Enabled reports whether capture is currently enabled.
func (m *CaptureModel) Enabled() bool {
	if m == nil {
		return false
	}
	return m.enabled.Load()
}

// SetEnabled stores the enabled flag and reports whether it changed.
func (m *CaptureModel) SetEnabled(b bool) bool {
	if m == nil {
		return false
	}
	return m.enabled.CompareAndSwap(!b, b)
}

// Source returns the frame source label.
func (m *CaptureModel) Source() string {
	if m == nil {
		return ""
	}
	if s := m.source.Load(); s != nil {
		return *s
	}
	return ""
}

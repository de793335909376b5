package app

import (
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/plaque-overlay/domain/tracking"
)

// LogView is a headless View that logs state changes and keeps the last
// values it was given.
type LogView struct {
	logger *slog.Logger

	mu         sync.Mutex
	state      tracking.State
	confidence float64
	position   *image.Rectangle
	episode    time.Duration
	total      time.Duration
	episodes   int
	active     bool
	previews   uint64
}

func NewLogView(logger *slog.Logger) *LogView { return &LogView{logger: logger} }

func (v *LogView) SetState(s tracking.State) {
	v.mu.Lock()
	v.state = s
	conf := v.confidence
	v.mu.Unlock()
	if v.logger != nil {
		v.logger.Info("view.state", "state", s.String(), "confidence", conf)
	}
}

func (v *LogView) SetConfidence(score float64) {
	v.mu.Lock()
	v.confidence = score
	v.mu.Unlock()
}

func (v *LogView) SetPosition(r *image.Rectangle) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if r == nil {
		v.position = nil
		return
	}
	p := *r
	v.position = &p
}

func (v *LogView) UpdatePreview(img image.Image) {
	v.mu.Lock()
	v.previews++
	v.mu.Unlock()
}

func (v *LogView) SetSession(episode, total time.Duration, episodes int) {
	v.mu.Lock()
	v.episode, v.total, v.episodes = episode, total, episodes
	v.mu.Unlock()
}

func (v *LogView) PreviewReset() {}

func (v *LogView) SetCaptureActive(active bool) {
	v.mu.Lock()
	v.active = active
	v.mu.Unlock()
	if v.logger != nil {
		v.logger.Info("view.capture", "active", active)
	}
}

// Summary returns the tracked totals and the number of previews drawn.
func (v *LogView) Summary() (total time.Duration, episodes int, previews uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.total, v.episodes, v.previews
}

// State returns the last state shown.
func (v *LogView) State() tracking.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

var _ View = (*LogView)(nil)

package presenter

import (
	"sync"
	"time"

	"github.com/soocke/plaque-overlay/domain/tracking"
)

// StateView shows the tracking state.
type StateView interface{ SetState(tracking.State) }

// StatePresenter receives transitions from the session listener and
// reflects the most recent one on the next Tick.
type StatePresenter struct {
	view StateView

	mu      sync.Mutex
	latest  tracking.State
	shown   bool
	pending []tracking.State
}

func NewStatePresenter(view StateView) *StatePresenter {
	return &StatePresenter{view: view}
}

// OnState queues a transition. It is called on the session goroutine.
func (p *StatePresenter) OnState(prev, next tracking.State) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, next)
	p.mu.Unlock()
}

// Tick flushes queued transitions to the view. The first Tick always
// shows the current state.
func (p *StatePresenter) Tick(now time.Time) {
	if p == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	next := p.latest
	if n := len(p.pending); n > 0 {
		next = p.pending[n-1]
		p.pending = p.pending[:0]
	}
	show := !p.shown || next != p.latest
	p.shown = true
	p.latest = next
	p.mu.Unlock()
	if show {
		p.view.SetState(next)
	}
}

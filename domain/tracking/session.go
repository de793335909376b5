package tracking

import (
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session owns the tracking state machine and its playback side effects.
// All mutations happen on one event-loop goroutine; Status may be read
// from any goroutine.
type Session struct {
	logger    *slog.Logger
	hyst      *Hysteresis
	actions   Actions
	events    chan interface{}
	done      chan struct{}
	closeOnce sync.Once
	listeners []Listener

	mu     sync.RWMutex
	status Status
}

// NewSession constructs and starts the event loop.
func NewSession(logger *slog.Logger, hyst *Hysteresis, actions Actions) *Session {
	if hyst == nil {
		hyst = &Hysteresis{Enter: 0.15, Exit: 0.05}
	}
	hyst.Reset()
	s := &Session{
		logger:  logger,
		hyst:    hyst,
		actions: actions,
		events:  make(chan interface{}, 64),
		done:    make(chan struct{}),
		status:  Status{State: StateNone, Since: time.Now()},
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				if logger != nil {
					logger.Error("tracking session panic", "error", r, "stack", stack)
				}
			}
		}()
		s.loop()
	}()
	return s
}

// events
type (
	evtObserve     struct{ obs Observation }
	evtHalt        struct{}
	evtAddListener struct{ l Listener }
)

func (s *Session) loop() {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			s.dispatch(ev)
		}
	}
}

// dispatch handles one event. A panic is logged and the loop keeps
// serving later events.
func (s *Session) dispatch(ev interface{}) {
	defer recoverLog(s.logger, "tracking event panic")
	switch e := ev.(type) {
	case evtAddListener:
		s.listeners = append(s.listeners, e.l)
	case evtObserve:
		s.handleObservation(e.obs)
	case evtHalt:
		s.handleHalt()
	}
}

func (s *Session) handleObservation(obs Observation) {
	if obs.At.IsZero() {
		obs.At = time.Now()
	}
	next, changed := s.hyst.Observe(obs.Score)
	s.mu.Lock()
	s.status.Confidence = obs.Score
	s.status.Updated = obs.At
	s.status.Frames++
	if next == StateTracking && obs.Position != nil {
		p := *obs.Position
		s.status.Position = &p
	}
	s.mu.Unlock()
	if changed {
		s.transition(next, obs.At)
	}
}

func (s *Session) handleHalt() {
	prev := s.hyst.State()
	s.hyst.Reset()
	if prev != StateNone {
		s.transition(StateNone, time.Now())
	}
	s.mu.Lock()
	s.status.Confidence = 0
	s.status.Position = nil
	s.mu.Unlock()
}

func (s *Session) transition(next State, at time.Time) {
	s.mu.Lock()
	prev := s.status.State
	if prev == next {
		s.mu.Unlock()
		return
	}
	s.status.State = next
	s.status.Since = at
	switch next {
	case StateTracking:
		s.status.EpisodeID = uuid.NewString()
	case StateNone:
		s.status.EpisodeID = ""
		s.status.Position = nil
	}
	episode := s.status.EpisodeID
	confidence := s.status.Confidence
	s.mu.Unlock()

	playing := s.applyPlayback(next)
	s.mu.Lock()
	s.status.Playing = playing
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("tracking.transition",
			"from", prev.String(),
			"to", next.String(),
			"confidence", confidence,
			"episode", episode,
			"playing", playing,
		)
	}
	for _, l := range s.listeners {
		s.notify(l, prev, next)
	}
}

func (s *Session) notify(l Listener, prev, next State) {
	defer recoverLog(s.logger, "tracking listener panic")
	l(prev, next)
}

// applyPlayback runs the playback action for next and reports whether the
// video is playing afterwards. Failures are logged, never propagated.
func (s *Session) applyPlayback(next State) bool {
	defer recoverLog(s.logger, "playback action panic")
	switch next {
	case StateTracking:
		if s.actions.StartPlayback == nil {
			return false
		}
		if err := s.actions.StartPlayback(); err != nil {
			if s.logger != nil {
				s.logger.Error("playback start", "error", err)
			}
			return false
		}
		return true
	default:
		if s.actions.PausePlayback != nil {
			if err := s.actions.PausePlayback(); err != nil && s.logger != nil {
				s.logger.Error("playback pause", "error", err)
			}
		}
		return false
	}
}

func (s *Session) send(ev interface{}) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// Event senders never block once the session is closed.
func (s *Session) AddListener(l Listener)    { s.send(evtAddListener{l: l}) }
func (s *Session) Observe(obs Observation)   { s.send(evtObserve{obs: obs}) }
func (s *Session) Halt()                     { s.send(evtHalt{}) }
func (s *Session) Current() State            { return s.Status().State }
func (s *Session) Close()                    { s.closeOnce.Do(func() { close(s.done) }) }
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	if st.Position != nil {
		p := *st.Position
		st.Position = &p
	}
	return st
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Error(msg, "error", r)
		}
	}
}

var _ SessionContract = (*Session)(nil)

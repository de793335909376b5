package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick/ProcessFrame on the sub-presenters and invokes a
// scheduler callback. The zero value is usable (methods are nil-safe).
type Loop struct {
	Session  *SessionPresenter
	State    *StatePresenter
	Tracking *TrackingPresenter
	Schedule func()
}

func NewLoop(sess *SessionPresenter, state *StatePresenter, tracking *TrackingPresenter, schedule func()) *Loop {
	return &Loop{Session: sess, State: state, Tracking: tracking, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.Tracking != nil {
		l.Tracking.ProcessFrame()
	}
	if l.State != nil {
		l.State.Tick(now)
	}
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}

package presenter

import (
	"time"

	"github.com/soocke/plaque-overlay/domain/tracking"
	"github.com/soocke/plaque-overlay/ui/model"
)

// SessionView displays how long the target has been tracked.
type SessionView interface {
	SetSession(episode, total time.Duration, episodes int)
}

// SessionPresenter advances the session model from the tracking state and
// pushes the durations to the view.
type SessionPresenter struct {
	sess   *model.SessionModel
	status tracking.StatusSource
	view   SessionView
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(sess *model.SessionModel, status tracking.StatusSource, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, status: status, view: view}
}

func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.status == nil || p.view == nil {
		return
	}
	p.sess.OnTick(p.status.Status().State == tracking.StateTracking, now)
	e, t := p.sess.Values()
	p.view.SetSession(e, t, p.sess.Episodes())
}

package presenter

import (
	"image"
	"image/color"
	"log/slog"

	"github.com/soocke/plaque-overlay/domain/analysis"
	"github.com/soocke/plaque-overlay/domain/capture"
	"github.com/soocke/plaque-overlay/domain/tracking"
	"github.com/soocke/plaque-overlay/ui/images"
	"github.com/soocke/plaque-overlay/ui/model"
)

var (
	boxTracking = color.RGBA{R: 16, G: 185, B: 129, A: 255}
	boxStale    = color.RGBA{R: 100, G: 116, B: 139, A: 255}
)

// FrameSource supplies the most recent captured frame. A stopped source
// keeps returning its last frame, which is not resubmitted.
type FrameSource interface {
	LatestFrame() capture.FrameSnapshot
}

// FrameAnalyzer runs analysis off the UI thread.
type FrameAnalyzer interface {
	Submit(capture.FrameSnapshot) bool
	Results() <-chan analysis.Result
}

// TrackingSession is the part of the session the presenter drives.
type TrackingSession interface {
	tracking.Observer
	tracking.StatusSource
}

// TrackingView describes the UI surface updated by the presenter.
type TrackingView interface {
	UpdatePreview(img image.Image)
	SetConfidence(score float64)
	SetPosition(r *image.Rectangle)
}

// TrackingPresenter feeds frames to the analyzer and analysis results to
// the tracking session, then reflects the session status in the view.
// ProcessFrame must be called from a single goroutine (the UI tick).
type TrackingPresenter struct {
	Enabled  func() bool
	Source   FrameSource
	Analyzer FrameAnalyzer
	Session  TrackingSession
	View     TrackingView
	Model    *model.TrackingModel
	logger   *slog.Logger

	lastSeq       uint64 // newest frame previewed
	submittedSeq  uint64 // newest frame accepted by the analyzer
	lastErrLogged bool
}

func NewTrackingPresenter(enabled func() bool, source FrameSource, analyzer FrameAnalyzer, session TrackingSession, view TrackingView, m *model.TrackingModel, logger *slog.Logger) *TrackingPresenter {
	return &TrackingPresenter{
		Enabled:  enabled,
		Source:   source,
		Analyzer: analyzer,
		Session:  session,
		View:     view,
		Model:    m,
		logger:   logger,
	}
}

// ProcessFrame drains finished analyses, updates the view and submits the
// newest frame for analysis. A frame refused because the analyzer is busy
// is offered again on the next tick unless a newer frame replaced it.
func (p *TrackingPresenter) ProcessFrame() {
	if p == nil || p.Enabled == nil || p.Source == nil || p.Analyzer == nil || p.Session == nil || p.View == nil {
		return
	}

	for {
		select {
		case res := <-p.Analyzer.Results():
			p.handleResult(res)
		default:
			goto drained
		}
	}

drained:
	st := p.Session.Status()
	p.Model.SetStatus(st)
	p.View.SetConfidence(st.Confidence)
	p.View.SetPosition(st.Position)

	if !p.Enabled() {
		return
	}
	snapshot := p.Source.LatestFrame()
	if snapshot.Image == nil {
		return
	}
	if snapshot.Sequence != p.lastSeq {
		p.lastSeq = snapshot.Sequence
		preview := image.Image(snapshot.Image)
		if st.Position != nil {
			c := boxStale
			if st.State == tracking.StateTracking {
				c = boxTracking
			}
			preview = images.DrawBox(snapshot.Image, *st.Position, c, 3)
		}
		p.View.UpdatePreview(preview)
	}
	if snapshot.Sequence != p.submittedSeq && p.Analyzer.Submit(snapshot) {
		p.submittedSeq = snapshot.Sequence
	}
}

// LastSequence returns the sequence of the newest frame previewed.
func (p *TrackingPresenter) LastSequence() uint64 {
	if p == nil {
		return 0
	}
	return p.lastSeq
}

// LastSubmitted returns the sequence of the newest frame the analyzer
// accepted.
func (p *TrackingPresenter) LastSubmitted() uint64 {
	if p == nil {
		return 0
	}
	return p.submittedSeq
}

func (p *TrackingPresenter) handleResult(res analysis.Result) {
	if res.Err != nil {
		if p.logger != nil && !p.lastErrLogged {
			p.logger.Error("tracking.analysis", "sequence", res.Sequence, "error", res.Err)
		}
		p.lastErrLogged = true
	} else {
		p.lastErrLogged = false
	}
	p.Model.RecordAnalysis(res.Duration)
	p.Session.Observe(tracking.Observation{
		Score:    res.Score,
		Position: res.Position,
		At:       res.CapturedAt,
	})
}

package presenter

import (
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/soocke/plaque-overlay/domain/analysis"
	"github.com/soocke/plaque-overlay/domain/capture"
	"github.com/soocke/plaque-overlay/domain/tracking"
	"github.com/soocke/plaque-overlay/ui/model"
)

type mockSource struct {
	snap capture.FrameSnapshot
}

func (s *mockSource) LatestFrame() capture.FrameSnapshot { return s.snap }

var _ FrameSource = (*mockSource)(nil)

type mockAnalyzer struct {
	submitted []uint64
	refused   int
	busy      bool
	results   chan analysis.Result
}

func newMockAnalyzer() *mockAnalyzer { return &mockAnalyzer{results: make(chan analysis.Result, 4)} }

func (a *mockAnalyzer) Submit(s capture.FrameSnapshot) bool {
	if a.busy {
		a.refused++
		return false
	}
	a.submitted = append(a.submitted, s.Sequence)
	return true
}
func (a *mockAnalyzer) Results() <-chan analysis.Result { return a.results }

var _ FrameAnalyzer = (*mockAnalyzer)(nil)

type mockSession struct {
	mu       sync.Mutex
	observed []tracking.Observation
	status   tracking.Status
}

func (s *mockSession) Observe(o tracking.Observation) {
	s.mu.Lock()
	s.observed = append(s.observed, o)
	s.mu.Unlock()
}
func (s *mockSession) Status() tracking.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

var _ TrackingSession = (*mockSession)(nil)

type mockTrackingView struct {
	previews   int
	lastImg    image.Image
	confidence float64
	position   *image.Rectangle
}

func (v *mockTrackingView) UpdatePreview(img image.Image)  { v.previews++; v.lastImg = img }
func (v *mockTrackingView) SetConfidence(score float64)    { v.confidence = score }
func (v *mockTrackingView) SetPosition(r *image.Rectangle) { v.position = r }

var _ TrackingView = (*mockTrackingView)(nil)

func frame(seq uint64) capture.FrameSnapshot {
	return capture.FrameSnapshot{Image: image.NewRGBA(image.Rect(0, 0, 20, 20)), Sequence: seq, CapturedAt: time.Now()}
}

func TestTrackingPresenter_SubmitsEachFrameOnce(t *testing.T) {
	src := &mockSource{snap: frame(1)}
	an := newMockAnalyzer()
	view := &mockTrackingView{}
	p := NewTrackingPresenter(func() bool { return true }, src, an, &mockSession{}, view, model.NewTrackingModel(), nil)

	p.ProcessFrame()
	p.ProcessFrame()
	src.snap = frame(2)
	p.ProcessFrame()
	if len(an.submitted) != 2 || an.submitted[0] != 1 || an.submitted[1] != 2 {
		t.Fatalf("unexpected submissions %v", an.submitted)
	}
	if view.previews != 2 || p.LastSequence() != 2 {
		t.Fatalf("expected 2 previews up to sequence 2, got %d/%d", view.previews, p.LastSequence())
	}
}

func TestTrackingPresenter_RetriesFrameRefusedWhileBusy(t *testing.T) {
	src := &mockSource{snap: frame(7)}
	an := newMockAnalyzer()
	an.busy = true
	view := &mockTrackingView{}
	p := NewTrackingPresenter(func() bool { return true }, src, an, &mockSession{}, view, model.NewTrackingModel(), nil)

	p.ProcessFrame()
	p.ProcessFrame()
	if an.refused != 2 || len(an.submitted) != 0 || p.LastSubmitted() != 0 {
		t.Fatalf("expected two refusals, got refused=%d submitted=%v", an.refused, an.submitted)
	}
	an.busy = false
	p.ProcessFrame()
	p.ProcessFrame()
	if len(an.submitted) != 1 || an.submitted[0] != 7 || p.LastSubmitted() != 7 {
		t.Fatalf("expected the last frame to be submitted once, got %v", an.submitted)
	}
	if view.previews != 1 || p.LastSequence() != 7 {
		t.Fatalf("expected a single preview, got %d", view.previews)
	}
}

func TestTrackingPresenter_DisabledDoesNotSubmit(t *testing.T) {
	src := &mockSource{snap: frame(1)}
	an := newMockAnalyzer()
	p := NewTrackingPresenter(func() bool { return false }, src, an, &mockSession{}, &mockTrackingView{}, nil, nil)
	p.ProcessFrame()
	p.ProcessFrame()
	if len(an.submitted) != 0 {
		t.Fatalf("disabled presenter submitted %v", an.submitted)
	}
}

func TestTrackingPresenter_ResultsReachSessionAndView(t *testing.T) {
	src := &mockSource{}
	an := newMockAnalyzer()
	pos := image.Rect(2, 2, 10, 10)
	sess := &mockSession{status: tracking.Status{State: tracking.StateTracking, Confidence: 0.8, Position: &pos}}
	view := &mockTrackingView{}
	m := model.NewTrackingModel()
	p := NewTrackingPresenter(func() bool { return true }, src, an, sess, view, m, nil)

	an.results <- analysis.Result{Sequence: 4, Score: 0.8, Position: &pos, Duration: time.Millisecond}
	an.results <- analysis.Result{Sequence: 5, Err: errors.New("boom")}
	p.ProcessFrame()

	if len(sess.observed) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(sess.observed))
	}
	if sess.observed[0].Score != 0.8 || sess.observed[0].Position == nil || sess.observed[1].Score != 0 {
		t.Fatalf("unexpected observations %+v", sess.observed)
	}
	if view.confidence != 0.8 || view.position == nil || *view.position != pos {
		t.Fatalf("view not updated: %+v", view)
	}
	if _, n := m.Analysis(); n != 2 {
		t.Fatalf("expected 2 recorded analyses, got %d", n)
	}
}

func TestTrackingPresenter_PreviewOutlinesPosition(t *testing.T) {
	src := &mockSource{snap: frame(1)}
	pos := image.Rect(2, 2, 12, 12)
	sess := &mockSession{status: tracking.Status{State: tracking.StateTracking, Position: &pos}}
	view := &mockTrackingView{}
	p := NewTrackingPresenter(func() bool { return true }, src, newMockAnalyzer(), sess, view, nil, nil)
	p.ProcessFrame()
	img, ok := view.lastImg.(*image.RGBA)
	if !ok {
		t.Fatalf("expected RGBA preview, got %T", view.lastImg)
	}
	if img == src.snap.Image {
		t.Fatalf("preview must not draw on the shared frame")
	}
	if c := img.RGBAAt(2, 2); c != boxTracking {
		t.Fatalf("expected tracking outline colour, got %v", c)
	}
}

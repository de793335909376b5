package analysis

import (
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/soocke/plaque-overlay/domain/capture"
	"github.com/soocke/plaque-overlay/domain/locate"
	"github.com/soocke/plaque-overlay/domain/similarity"
)

type mockScorer struct {
	mu      sync.Mutex
	score   float64
	err     error
	panics  bool
	gate    chan struct{} // when non-nil, Evaluate blocks until it is closed
	entered chan struct{}
	calls   int
}

func (m *mockScorer) Evaluate(frame image.Image) (similarity.Result, error) {
	m.mu.Lock()
	m.calls++
	gate, entered := m.gate, m.entered
	m.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	if m.panics {
		panic("scorer blew up")
	}
	if m.err != nil {
		return similarity.Result{}, m.err
	}
	return similarity.Result{Pixel: m.score, Score: m.score}, nil
}

var _ FrameScorer = (*mockScorer)(nil)

type mockLocator struct {
	rect image.Rectangle
	err  error
}

func (m *mockLocator) Locate(frame image.Image) (locate.Match, error) {
	if m.err != nil {
		return locate.Match{}, m.err
	}
	return locate.Match{Rect: m.rect, Score: 0.9, Windows: 4}, nil
}

var _ FrameLocator = (*mockLocator)(nil)

func snapshot(seq uint64) capture.FrameSnapshot {
	return capture.FrameSnapshot{
		Image:      image.NewRGBA(image.Rect(0, 0, 8, 8)),
		CapturedAt: time.Now(),
		Sequence:   seq,
	}
}

func nextResult(t *testing.T, a *Analyzer) Result {
	t.Helper()
	select {
	case r := <-a.Results():
		return r
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for result")
		return Result{}
	}
}

func TestAnalyzer_ScoresAndLocates(t *testing.T) {
	loc := &mockLocator{rect: image.Rect(1, 2, 5, 6)}
	a := NewAnalyzer(nil, &mockScorer{score: 0.42}, loc)
	defer a.Close()
	if !a.Submit(snapshot(7)) {
		t.Fatalf("submit rejected on idle analyzer")
	}
	r := nextResult(t, a)
	if r.Err != nil || r.Score != 0.42 || r.Sequence != 7 {
		t.Fatalf("unexpected result %+v", r)
	}
	if r.Position == nil || *r.Position != loc.rect || r.LocateScore != 0.9 {
		t.Fatalf("unexpected position %+v", r)
	}
}

func TestAnalyzer_SingleFlightDropsWhileBusy(t *testing.T) {
	sc := &mockScorer{score: 0.5, gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	a := NewAnalyzer(nil, sc, nil)
	defer a.Close()
	if !a.Submit(snapshot(1)) {
		t.Fatalf("first submit rejected")
	}
	<-sc.entered
	for i := 0; i < 5; i++ {
		if a.Submit(snapshot(uint64(i + 2))) {
			t.Fatalf("submit %d accepted while busy", i)
		}
	}
	close(sc.gate)
	r := nextResult(t, a)
	if r.Sequence != 1 {
		t.Fatalf("expected sequence 1, got %d", r.Sequence)
	}
	st := a.Stats()
	if st.Skipped != 5 || st.Submitted != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
	deadline := time.Now().Add(time.Second)
	for a.Busy() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	sc.mu.Lock()
	sc.entered = nil
	sc.mu.Unlock()
	if !a.Submit(snapshot(9)) {
		t.Fatalf("submit rejected after worker finished")
	}
	if r := nextResult(t, a); r.Sequence != 9 {
		t.Fatalf("expected sequence 9, got %d", r.Sequence)
	}
}

func TestAnalyzer_ErrorBecomesZeroScore(t *testing.T) {
	a := NewAnalyzer(nil, &mockScorer{score: 0.9, err: errors.New("decode")}, nil)
	defer a.Close()
	a.Submit(snapshot(1))
	r := nextResult(t, a)
	if r.Err == nil || r.Score != 0 {
		t.Fatalf("expected zero score with error, got %+v", r)
	}
	if st := a.Stats(); st.Failed != 1 {
		t.Fatalf("expected one failure, got %+v", st)
	}
}

func TestAnalyzer_PanicIsRecovered(t *testing.T) {
	a := NewAnalyzer(nil, &mockScorer{panics: true}, nil)
	defer a.Close()
	a.Submit(snapshot(3))
	r := nextResult(t, a)
	if r.Err == nil || r.Score != 0 || r.Sequence != 3 {
		t.Fatalf("expected recovered panic result, got %+v", r)
	}
}

func TestAnalyzer_LocateErrorKeepsScore(t *testing.T) {
	a := NewAnalyzer(nil, &mockScorer{score: 0.3}, &mockLocator{err: locate.ErrFrameTooSmall})
	defer a.Close()
	a.Submit(snapshot(1))
	r := nextResult(t, a)
	if r.Err != nil || r.Score != 0.3 || r.Position != nil || !errors.Is(r.LocateErr, locate.ErrFrameTooSmall) {
		t.Fatalf("unexpected result %+v", r)
	}
}

func TestAnalyzer_NilFrameAndClosed(t *testing.T) {
	a := NewAnalyzer(nil, &mockScorer{score: 1}, nil)
	if a.Submit(capture.FrameSnapshot{}) {
		t.Fatalf("nil frame should not be submitted")
	}
	a.Close()
	a.Close()
	if a.Submit(snapshot(1)) {
		t.Fatalf("closed analyzer accepted work")
	}
}

func TestAnalyzer_CloseDoesNotWaitForInFlight(t *testing.T) {
	sc := &mockScorer{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	a := NewAnalyzer(nil, sc, nil)
	a.Submit(snapshot(1))
	<-sc.entered
	done := make(chan struct{})
	go func() {
		a.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("close blocked on in-flight analysis")
	}
	close(sc.gate)
}

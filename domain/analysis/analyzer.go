package analysis

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soocke/plaque-overlay/domain/capture"
	"github.com/soocke/plaque-overlay/domain/locate"
	"github.com/soocke/plaque-overlay/domain/similarity"
)

// FrameScorer scores a frame against the reference.
type FrameScorer interface {
	Evaluate(frame image.Image) (similarity.Result, error)
}

// FrameLocator finds the best matching window in a frame.
type FrameLocator interface {
	Locate(frame image.Image) (locate.Match, error)
}

// Result is the outcome of analyzing one frame. Err is set when scoring
// failed; Score is then zero. LocateErr is set when only the locator failed
// and leaves the score intact.
type Result struct {
	Sequence    uint64
	CapturedAt  time.Time
	Score       float64
	Pixel       float64
	Histogram   float64
	Position    *image.Rectangle
	LocateScore float64
	Duration    time.Duration
	Err         error
	LocateErr   error
}

// Stats counts analyzer activity.
type Stats struct {
	Submitted   uint64
	Analyzed    uint64
	Skipped     uint64
	Failed      uint64
	AvgDuration time.Duration
	InFlight    bool
}

// Analyzer runs frame analysis on a single background worker. At most one
// frame is in flight; frames submitted while busy are dropped.
type Analyzer struct {
	logger  *slog.Logger
	scorer  FrameScorer
	locator FrameLocator

	busy    atomic.Bool
	work    chan capture.FrameSnapshot
	results chan Result
	done    chan struct{}
	once    sync.Once

	submitted atomic.Uint64
	analyzed  atomic.Uint64
	skipped   atomic.Uint64
	failed    atomic.Uint64
	nanos     atomic.Uint64
}

// NewAnalyzer starts the worker. locator may be nil to skip positioning.
func NewAnalyzer(logger *slog.Logger, scorer FrameScorer, locator FrameLocator) *Analyzer {
	a := &Analyzer{
		logger:  logger,
		scorer:  scorer,
		locator: locator,
		work:    make(chan capture.FrameSnapshot, 1),
		results: make(chan Result, 1),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// Submit hands snap to the worker unless an analysis is already running.
// It reports whether the frame was accepted.
func (a *Analyzer) Submit(snap capture.FrameSnapshot) bool {
	if snap.Image == nil || a.closed() {
		return false
	}
	if !a.busy.CompareAndSwap(false, true) {
		a.skipped.Add(1)
		return false
	}
	select {
	case a.work <- snap:
		a.submitted.Add(1)
		return true
	case <-a.done:
		a.busy.Store(false)
		return false
	}
}

// Results delivers completed analyses. Only the newest undelivered result
// is kept.
func (a *Analyzer) Results() <-chan Result { return a.results }

// Busy reports whether a frame is being analyzed.
func (a *Analyzer) Busy() bool { return a.busy.Load() }

func (a *Analyzer) Stats() Stats {
	analyzed := a.analyzed.Load()
	var avg time.Duration
	if analyzed > 0 {
		avg = time.Duration(a.nanos.Load() / analyzed)
	}
	return Stats{
		Submitted:   a.submitted.Load(),
		Analyzed:    analyzed,
		Skipped:     a.skipped.Load(),
		Failed:      a.failed.Load(),
		AvgDuration: avg,
		InFlight:    a.busy.Load(),
	}
}

// Close stops the worker. An in-flight analysis is abandoned, not awaited.
func (a *Analyzer) Close() { a.once.Do(func() { close(a.done) }) }

func (a *Analyzer) closed() bool {
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

func (a *Analyzer) run() {
	for {
		select {
		case <-a.done:
			return
		case snap := <-a.work:
			res := a.analyze(snap)
			a.publish(res)
			a.busy.Store(false)
		}
	}
}

func (a *Analyzer) analyze(snap capture.FrameSnapshot) (res Result) {
	start := time.Now()
	res = Result{Sequence: snap.Sequence, CapturedAt: snap.CapturedAt}
	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Sequence:   snap.Sequence,
				CapturedAt: snap.CapturedAt,
				Err:        fmt.Errorf("analysis panic: %v", r),
			}
			if a.logger != nil {
				a.logger.Error("analysis panic", "error", r, "stack", string(debug.Stack()))
			}
		}
		res.Duration = time.Since(start)
		a.analyzed.Add(1)
		a.nanos.Add(uint64(res.Duration.Nanoseconds()))
		if res.Err != nil {
			a.failed.Add(1)
		}
	}()

	if a.scorer == nil {
		res.Err = errors.New("analysis: no scorer")
		return res
	}
	sr, err := a.scorer.Evaluate(snap.Image)
	if err != nil {
		res.Err = err
		if a.logger != nil {
			a.logger.Warn("analysis.score", "sequence", snap.Sequence, "error", err)
		}
		return res
	}
	res.Score, res.Pixel, res.Histogram = sr.Score, sr.Pixel, sr.Histogram

	if a.locator != nil {
		m, err := a.locator.Locate(snap.Image)
		if err != nil {
			res.LocateErr = err
			if a.logger != nil {
				a.logger.Debug("analysis.locate", "sequence", snap.Sequence, "error", err)
			}
		} else {
			r := m.Rect
			res.Position = &r
			res.LocateScore = m.Score
		}
	}
	return res
}

// publish replaces any undelivered result with res.
func (a *Analyzer) publish(res Result) {
	select {
	case a.results <- res:
	default:
		select {
		case <-a.results:
		default:
		}
		select {
		case a.results <- res:
		default:
		}
	}
}

package capture

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

const captureStatsLogInterval = 5 * time.Second

// CaptureService pulls frames from a Grabber and exposes the latest one
// alongside instrumentation data. Use NewCaptureService to construct an
// instance.
type CaptureService interface {
	Start()
	Stop()
	Close() error
	LatestFrame() FrameSnapshot
	Running() bool
	Stats() CaptureStats
}

type captureService struct {
	name     string
	grabber  Grabber
	interval time.Duration
	logger   *slog.Logger

	running      atomic.Bool
	exhausted    atomic.Bool
	generation   atomic.Uint64
	latest       atomic.Pointer[FrameSnapshot]
	captures     atomic.Uint64
	skipped      atomic.Uint64
	errs         atomic.Uint64
	captureNanos atomic.Uint64
	sequence     atomic.Uint64

	closeOnce sync.Once
	closeErr  error
}

func newCaptureService(logger *slog.Logger, name string, g Grabber, interval time.Duration) *captureService {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &captureService{name: name, grabber: g, interval: interval, logger: logger}
}

// NewCaptureService constructs a capture service that grabs a frame from g
// every interval. The service owns g and closes it on Close.
func NewCaptureService(logger *slog.Logger, name string, g Grabber, interval time.Duration) CaptureService {
	return newCaptureService(logger, name, g, interval)
}

func (s *captureService) LatestFrame() FrameSnapshot {
	snap := s.latest.Load()
	if snap == nil {
		return FrameSnapshot{}
	}
	return *snap
}

func (s *captureService) Running() bool { return s.running.Load() }

func (s *captureService) Stats() CaptureStats {
	captures := s.captures.Load()
	total := s.captureNanos.Load()
	var avg time.Duration
	if captures > 0 && total > 0 {
		avg = time.Duration(total / captures)
	}
	snapshot := s.LatestFrame()
	age := time.Duration(0)
	if !snapshot.CapturedAt.IsZero() {
		age = time.Since(snapshot.CapturedAt)
	}
	return CaptureStats{
		Source:         s.name,
		Captures:       captures,
		Skipped:        s.skipped.Load(),
		Errors:         s.errs.Load(),
		AvgCapture:     avg,
		LastCapture:    snapshot.CapturedAt,
		LatestFrameAge: age,
		Sequence:       snapshot.Sequence,
		Exhausted:      s.exhausted.Load(),
	}
}

func (s *captureService) Start() {
	if s.grabber == nil || s.exhausted.Load() {
		return
	}
	if !s.running.CompareAndSwap(false, true) {
		return
	}
	gen := s.generation.Add(1)
	go s.loop(gen)
}

func (s *captureService) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}
	s.generation.Add(1)
}

// Close stops the loop and releases the grabber.
func (s *captureService) Close() error {
	s.Stop()
	s.closeOnce.Do(func() {
		if s.grabber != nil {
			s.closeErr = s.grabber.Close()
		}
	})
	return s.closeErr
}

func (s *captureService) active(gen uint64) bool {
	return s.running.Load() && s.generation.Load() == gen
}

func (s *captureService) loop(gen uint64) {
	defer func() {
		if r := recover(); r != nil {
			s.running.Store(false)
			if s.logger != nil {
				s.logger.Error("capture loop panic", "error", r)
			}
		}
	}()
	logTicker := time.NewTicker(captureStatsLogInterval)
	defer logTicker.Stop()
	streak := 0
	for s.active(gen) {
		start := time.Now()
		img, err := s.grabber.Grab()
		if errors.Is(err, io.EOF) {
			s.exhausted.Store(true)
			s.running.Store(false)
			if s.logger != nil {
				s.logger.Info("capture.exhausted", "source", s.name, "captures", s.captures.Load())
			}
			return
		}
		if err != nil {
			s.errs.Add(1)
			s.skipped.Add(1)
			streak++
			if streak == 1 && s.logger != nil {
				s.logger.Warn("capture.grab", "source", s.name, "error", err)
			}
			s.sleep(gen, s.interval)
			continue
		}
		streak = 0
		if img == nil {
			s.skipped.Add(1)
			s.sleep(gen, s.interval)
			continue
		}

		elapsed := time.Since(start)
		s.captureNanos.Add(uint64(elapsed.Nanoseconds()))
		s.captures.Add(1)
		seq := s.sequence.Add(1)
		s.latest.Store(&FrameSnapshot{Image: img, CapturedAt: time.Now(), Sequence: seq})

		select {
		case <-logTicker.C:
			s.logStats()
		default:
		}

		s.sleep(gen, s.interval-elapsed)
	}
}

// sleep waits for d in short slices so Stop takes effect promptly.
func (s *captureService) sleep(gen uint64, d time.Duration) {
	const slice = 10 * time.Millisecond
	for d > 0 && s.active(gen) {
		step := d
		if step > slice {
			step = slice
		}
		time.Sleep(step)
		d -= step
	}
}

func (s *captureService) logStats() {
	if s.logger == nil {
		return
	}
	stats := s.Stats()
	s.logger.Debug("capture.stats",
		"source", stats.Source,
		"captures", humanize.Comma(int64(stats.Captures)),
		"skipped", stats.Skipped,
		"errors", stats.Errors,
		"avg_capture", stats.AvgCapture,
		"last", humanize.Time(stats.LastCapture),
	)
}

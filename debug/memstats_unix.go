//go:build unix

package debug

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// StartMemLogger logs Go heap stats and the process max RSS every interval
// until ctx is done. A failing getrusage is logged once and suppressed.
func StartMemLogger(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var rusageErrLogged bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			attrs := []any{
				"heap_alloc", humanize.IBytes(ms.HeapAlloc),
				"heap_sys", humanize.IBytes(ms.HeapSys),
				"num_gc", ms.NumGC,
				"goroutines", runtime.NumGoroutine(),
			}
			if rss, err := maxRSS(); err == nil {
				attrs = append(attrs, "max_rss", humanize.IBytes(rss))
			} else if !rusageErrLogged {
				rusageErrLogged = true
				logger.Warn("debug.mem rusage", "error", err)
			}
			logger.Debug("debug.mem", attrs...)
		}
	}()
}

// maxRSS returns the peak resident set size in bytes.
func maxRSS() (uint64, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0, err
	}
	rss := uint64(ru.Maxrss)
	if runtime.GOOS != "darwin" && runtime.GOOS != "ios" {
		rss *= 1024 // kilobytes everywhere but Darwin
	}
	return rss, nil
}

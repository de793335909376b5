//go:build !unix

package debug

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
)

// StartMemLogger logs Go heap stats every interval until ctx is done.
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
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			logger.Debug("debug.mem",
				"heap_alloc", humanize.IBytes(ms.HeapAlloc),
				"heap_sys", humanize.IBytes(ms.HeapSys),
				"num_gc", ms.NumGC,
			)
		}
	}()
}

package capture

import (
	"errors"
	"image"
	"time"
)

var (
	// ErrCameraUnsupported is returned by NewCameraGrabber on platforms
	// without V4L2.
	ErrCameraUnsupported = errors.New("capture: camera capture not supported on this platform")
	// ErrNoFrames is returned when a frame directory holds no images.
	ErrNoFrames = errors.New("capture: no image frames found")
	// ErrFrameTimeout is returned when a device produced no frame in time.
	ErrFrameTimeout = errors.New("capture: timed out waiting for frame")
)

// Grabber produces one frame per call. Implementations return io.EOF
// when the source is exhausted.
type Grabber interface {
	Grab() (*image.RGBA, error)
	Close() error
}

// FrameSource provides read-only access to captured frames.
// LatestFrame returns the freshest snapshot while Running reports activity.
type FrameSource interface {
	LatestFrame() FrameSnapshot
	Running() bool
}

// ServiceContract exposes basic lifecycle control for capture services.
type ServiceContract interface {
	Start()
	Stop()
	Running() bool
}

// FrameSnapshot is one captured frame. Snapshots are shared between the
// analyzer and the preview and must not be mutated.
type FrameSnapshot struct {
	Image      *image.RGBA
	CapturedAt time.Time
	Sequence   uint64
}

// CaptureStats summarises capture loop behaviour.
type CaptureStats struct {
	Source         string
	Captures       uint64
	Skipped        uint64
	Errors         uint64
	AvgCapture     time.Duration
	LastCapture    time.Time
	LatestFrameAge time.Duration
	Sequence       uint64
	Exhausted      bool
}

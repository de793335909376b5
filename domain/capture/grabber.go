package capture

import (
	"fmt"

	"github.com/soocke/plaque-overlay/config"
)

// NewGrabber builds the frame source selected by cfg.Source.
func NewGrabber(cfg *config.Config) (Grabber, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	switch cfg.Source {
	case config.SourceScreen:
		return NewScreenGrabber(), nil
	case config.SourceDir:
		if cfg.FramesDir == "" {
			return nil, fmt.Errorf("source %q requires frames_dir", cfg.Source)
		}
		g, err := NewDirGrabber(cfg.FramesDir, cfg.FramesLoop)
		if err != nil {
			return nil, err
		}
		return g, nil
	case config.SourceCamera, "":
		g, err := NewCameraGrabber(cfg.CameraDevice, cfg.CameraWidth, cfg.CameraHeight)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown frame source %q", cfg.Source)
	}
}

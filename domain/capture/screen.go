package capture

import (
	"fmt"
	"image"

	"github.com/vova616/screenshot"
)

// ScreenGrabber captures the primary screen, or Region of it when set.
type ScreenGrabber struct {
	Region *image.Rectangle
}

// NewScreenGrabber returns a grabber for the full screen.
func NewScreenGrabber() *ScreenGrabber { return &ScreenGrabber{} }

func (g *ScreenGrabber) Grab() (*image.RGBA, error) {
	if g.Region != nil && !g.Region.Empty() {
		img, err := screenshot.CaptureRect(*g.Region)
		if err != nil {
			return nil, fmt.Errorf("capture region %v: %w", *g.Region, err)
		}
		return toRGBA(img), nil
	}
	img, err := screenshot.CaptureScreen()
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	return toRGBA(img), nil
}

func (g *ScreenGrabber) Close() error { return nil }

var _ Grabber = (*ScreenGrabber)(nil)

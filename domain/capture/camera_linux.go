//go:build linux

package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/disintegration/imaging"
	"github.com/vladimirvivien/go4vl/device"
	"github.com/vladimirvivien/go4vl/v4l2"
)

const cameraFrameTimeout = 2 * time.Second

// CameraGrabber reads MJPEG frames from a V4L2 device.
type CameraGrabber struct {
	dev    *device.Device
	cancel context.CancelFunc
	width  int
	height int
}

// NewCameraGrabber opens path and starts streaming at the requested size.
// The driver may pick a different size; Size reports the negotiated one.
func NewCameraGrabber(path string, width, height int) (*CameraGrabber, error) {
	dev, err := device.Open(
		path,
		device.WithIOType(v4l2.IOTypeMMAP),
		device.WithPixFormat(v4l2.PixFormat{
			Width:       uint32(width),
			Height:      uint32(height),
			PixelFormat: v4l2.PixelFmtMJPEG,
			Field:       v4l2.FieldNone,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("open camera %s: %w", path, err)
	}
	format, err := dev.GetPixFormat()
	if err != nil {
		dev.Close()
		return nil, fmt.Errorf("camera %s pixel format: %w", path, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := dev.Start(ctx); err != nil {
		cancel()
		dev.Close()
		return nil, fmt.Errorf("start camera %s: %w", path, err)
	}
	return &CameraGrabber{
		dev:    dev,
		cancel: cancel,
		width:  int(format.Width),
		height: int(format.Height),
	}, nil
}

// Size returns the negotiated frame size.
func (c *CameraGrabber) Size() (int, int) { return c.width, c.height }

func (c *CameraGrabber) Grab() (*image.RGBA, error) {
	timer := time.NewTimer(cameraFrameTimeout)
	defer timer.Stop()
	select {
	case frame, ok := <-c.dev.GetOutput():
		if !ok {
			return nil, io.EOF
		}
		if len(frame) == 0 {
			return nil, nil
		}
		img, err := imaging.Decode(bytes.NewReader(frame))
		if err != nil {
			return nil, fmt.Errorf("decode mjpeg frame: %w", err)
		}
		return toRGBA(img), nil
	case <-timer.C:
		return nil, ErrFrameTimeout
	}
}

func (c *CameraGrabber) Close() error {
	c.cancel()
	return c.dev.Close()
}

var _ Grabber = (*CameraGrabber)(nil)

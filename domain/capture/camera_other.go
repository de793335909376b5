//go:build !linux

package capture

import "image"

// CameraGrabber is unavailable outside Linux.
type CameraGrabber struct{}

// NewCameraGrabber always fails with ErrCameraUnsupported.
func NewCameraGrabber(path string, width, height int) (*CameraGrabber, error) {
	return nil, ErrCameraUnsupported
}

func (c *CameraGrabber) Size() (int, int)           { return 0, 0 }
func (c *CameraGrabber) Grab() (*image.RGBA, error) { return nil, ErrCameraUnsupported }
func (c *CameraGrabber) Close() error               { return nil }

var _ Grabber = (*CameraGrabber)(nil)

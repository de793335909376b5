package images

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/soocke/plaque-overlay/domain/similarity"
)

// ErrEmptyROI is returned when the requested region misses the frame.
var ErrEmptyROI = errors.New("roi outside frame")

// ExtractROI copies r grown by pad on every side, clamped to the frame.
// Returns the ROI image (origin at 0,0) and the clamped rectangle in frame
// coordinates. Any image type is accepted; the copy is always RGBA.
func ExtractROI(frame image.Image, r image.Rectangle, pad int) (*image.RGBA, image.Rectangle, error) {
	if similarity.IsNil(frame) {
		return nil, image.Rectangle{}, errors.New("nil frame")
	}
	if pad < 0 {
		pad = 0
	}
	roi := r.Inset(-pad).Intersect(frame.Bounds())
	if roi.Empty() {
		return nil, image.Rectangle{}, ErrEmptyROI
	}
	out := image.NewRGBA(image.Rect(0, 0, roi.Dx(), roi.Dy()))
	draw.Draw(out, out.Bounds(), frame, roi.Min, draw.Src)
	return out, roi, nil
}

// DrawBox returns a copy of frame with a thickness-pixel outline around r.
// The frame itself is not modified; it may be shared with other readers.
func DrawBox(frame *image.RGBA, r image.Rectangle, c color.RGBA, thickness int) *image.RGBA {
	if frame == nil {
		return nil
	}
	b := frame.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, frame, b.Min, draw.Src)
	r = r.Intersect(b)
	if r.Empty() {
		return out
	}
	if thickness < 1 {
		thickness = 1
	}
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness),
		image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y),
		image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(out, e.Intersect(r), src, image.Point{}, draw.Src)
	}
	return out
}

package similarity

import (
	"errors"
	"fmt"
	"image"
	"reflect"

	"golang.org/x/image/draw"
)

var (
	ErrNilImage   = errors.New("similarity: nil image")
	ErrEmptyImage = errors.New("similarity: empty image bounds")
)

// IsNil reports whether img is nil, including a nil pointer of a concrete
// image type such as (*image.RGBA)(nil).
func IsNil(img image.Image) bool {
	if img == nil {
		return true
	}
	v := reflect.ValueOf(img)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Grid is a size×size RGB downsample of an image. Pix holds packed RGB
// triplets in row-major order.
type Grid struct {
	Size int
	Pix  []uint8
}

// At returns the RGB triplet of cell (x, y).
func (g *Grid) At(x, y int) (r, gg, b uint8) {
	off := (y*g.Size + x) * 3
	return g.Pix[off], g.Pix[off+1], g.Pix[off+2]
}

// Gray returns the integer channel mean of cell (x, y).
func (g *Grid) Gray(x, y int) uint8 {
	r, gg, b := g.At(x, y)
	return uint8((int(r) + int(gg) + int(b)) / 3)
}

// Downsample resizes img to a size×size grid with bilinear filtering.
// Aspect ratio is not preserved; both images in a comparison are squashed
// the same way.
func Downsample(img image.Image, size int) (*Grid, error) {
	if IsNil(img) {
		return nil, ErrNilImage
	}
	if size < 1 {
		return nil, fmt.Errorf("similarity: invalid grid size %d", size)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, ErrEmptyImage
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return gridFromRGBA(dst), nil
}

// DownsampleRect resizes img to an exact w×h RGBA image. Used by the
// locator, which needs to keep the frame aspect ratio.
func DownsampleRect(img image.Image, w, h int) (*image.RGBA, error) {
	if IsNil(img) {
		return nil, ErrNilImage
	}
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("similarity: invalid target size %dx%d", w, h)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, ErrEmptyImage
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, nil
}

// GridFromWindow copies a size×size window starting at (x0, y0) out of src.
// The window must lie inside src bounds.
func GridFromWindow(src *image.RGBA, x0, y0, size int) *Grid {
	g := &Grid{Size: size, Pix: make([]uint8, size*size*3)}
	b := src.Bounds()
	for y := 0; y < size; y++ {
		row := src.PixOffset(b.Min.X+x0, b.Min.Y+y0+y)
		for x := 0; x < size; x++ {
			si := row + x*4
			di := (y*size + x) * 3
			g.Pix[di] = src.Pix[si]
			g.Pix[di+1] = src.Pix[si+1]
			g.Pix[di+2] = src.Pix[si+2]
		}
	}
	return g
}

func gridFromRGBA(src *image.RGBA) *Grid {
	size := src.Bounds().Dx()
	return GridFromWindow(src, 0, 0, size)
}

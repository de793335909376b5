package locate

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"testing"

	"github.com/soocke/plaque-overlay/domain/similarity"
)

func noise(w, h int, seed int64) *image.RGBA {
	r := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = uint8(r.Intn(256)), uint8(r.Intn(256)), uint8(r.Intn(256)), 255
	}
	return img
}

func filled(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

// scene pastes ref into a black frame at origin.
func scene(w, h int, ref *image.RGBA, at image.Point) *image.RGBA {
	frame := filled(w, h, color.RGBA{0, 0, 0, 255})
	r := ref.Bounds().Add(at)
	draw.Draw(frame, r, ref, ref.Bounds().Min, draw.Src)
	return frame
}

func newLocator(t *testing.T, ref image.Image, opts Options) *Locator {
	t.Helper()
	s, err := similarity.NewScorer(ref, similarity.Options{GridSize: 20})
	if err != nil {
		t.Fatalf("scorer: %v", err)
	}
	l, err := NewLocator(s, opts)
	if err != nil {
		t.Fatalf("locator: %v", err)
	}
	return l
}

func TestLocate_FindsPastedReference(t *testing.T) {
	ref := noise(40, 40, 11)
	frame := scene(200, 100, ref, image.Pt(80, 20))
	l := newLocator(t, ref, Options{TemplateSize: 20, FrameWidth: 100, Step: 5})
	m, err := l.Locate(frame)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	want := image.Rect(80, 20, 120, 60)
	if m.Rect != want {
		t.Fatalf("expected %v, got %v (score %.3f)", want, m.Rect, m.Score)
	}
	if m.Score < 0.999 {
		t.Fatalf("expected near-perfect score, got %v", m.Score)
	}
	// x: 0..80 step 5 (17), y: 0..30 step 5 (7)
	if m.Windows != 17*7 {
		t.Fatalf("expected %d windows, got %d", 17*7, m.Windows)
	}
}

func TestLocate_OffsetFrameBounds(t *testing.T) {
	ref := noise(40, 40, 12)
	big := scene(300, 200, ref, image.Pt(180, 120))
	sub := big.SubImage(image.Rect(100, 100, 300, 200))
	l := newLocator(t, ref, Options{TemplateSize: 20, FrameWidth: 100, Step: 5})
	m, err := l.Locate(sub)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if want := image.Rect(180, 120, 220, 160); m.Rect != want {
		t.Fatalf("expected %v in parent coordinates, got %v", want, m.Rect)
	}
}

func TestLocate_SkipsWindowsCrossingEdges(t *testing.T) {
	ref := noise(20, 20, 13)
	l := newLocator(t, ref, Options{TemplateSize: 20, FrameWidth: 23, Step: 5})
	m, err := l.Locate(noise(23, 23, 14))
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if m.Windows != 1 {
		t.Fatalf("only the origin window fits, got %d windows", m.Windows)
	}
}

func TestLocate_FrameTooSmall(t *testing.T) {
	l := newLocator(t, noise(20, 20, 15), Options{TemplateSize: 20, FrameWidth: 100, Step: 5})
	if _, err := l.Locate(noise(1000, 50, 16)); !errors.Is(err, ErrFrameTooSmall) {
		t.Fatalf("expected ErrFrameTooSmall, got %v", err)
	}
	if _, err := l.Locate(nil); !errors.Is(err, similarity.ErrNilImage) {
		t.Fatalf("expected ErrNilImage, got %v", err)
	}
	if _, err := l.Locate((*image.RGBA)(nil)); !errors.Is(err, similarity.ErrNilImage) {
		t.Fatalf("expected ErrNilImage for typed-nil frame, got %v", err)
	}
}

func TestLocate_TiesKeepEarliestWindow(t *testing.T) {
	grey := color.RGBA{128, 128, 128, 255}
	l := newLocator(t, filled(20, 20, grey), Options{TemplateSize: 10, FrameWidth: 60, Step: 3})
	m, err := l.Locate(filled(60, 60, grey))
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if m.Rect.Min != (image.Point{}) {
		t.Fatalf("expected origin window on ties, got %v", m.Rect)
	}
}

func TestLocate_MatchesSerialScan(t *testing.T) {
	ref := noise(30, 30, 17)
	frame := noise(160, 120, 18)
	opts := Options{TemplateSize: 12, FrameWidth: 80, Step: 4}
	l := newLocator(t, ref, opts)
	m, err := l.Locate(frame)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	small, _ := similarity.DownsampleRect(frame, 80, 60)
	bestX, bestY, best := 0, 0, -1.0
	for y := 0; y+12 <= 60; y += 4 {
		for x := 0; x+12 <= 80; x += 4 {
			s := similarity.CompareGrids(l.tmpl, similarity.GridFromWindow(small, x, y, 12), l.opts.Metric, similarity.WeightUniform)
			if s > best {
				bestX, bestY, best = x, y, s
			}
		}
	}
	if m.Score != best {
		t.Fatalf("parallel best %v differs from serial %v", m.Score, best)
	}
	if want := image.Pt(bestX*2, bestY*2); m.Rect.Min != want {
		t.Fatalf("expected window at %v, got %v", want, m.Rect.Min)
	}
}

package locate

import (
	"errors"
	"fmt"
	"image"
	"math"
	"runtime"
	"sync"

	"github.com/soocke/plaque-overlay/config"
	"github.com/soocke/plaque-overlay/domain/similarity"
)

// ErrFrameTooSmall is returned when the downsampled frame cannot hold a
// single template window.
var ErrFrameTooSmall = errors.New("locate: frame smaller than template")

// Options configures sliding-window location.
//
// TemplateSize is the side of the square reference template. FrameWidth is
// the width the frame is downsampled to (height follows the aspect ratio).
// Step is the window stride in downsampled pixels.
type Options struct {
	TemplateSize int
	FrameWidth   int
	Step         int
	Metric       similarity.Metric
	Weighting    similarity.Weighting
}

// OptionsFromConfig maps validated configuration onto locator options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return Options{
		TemplateSize: cfg.LocateTemplateSize,
		FrameWidth:   cfg.LocateFrameWidth,
		Step:         cfg.LocateStep,
		Metric:       similarity.Metric(cfg.Metric),
		Weighting:    similarity.WeightUniform,
	}
}

// Match is the best window found in a frame, in source-frame coordinates.
type Match struct {
	Rect    image.Rectangle
	Score   float64
	Windows int // windows evaluated
}

// Locator slides the reference template over downsampled frames. There is
// no rotation or scale search.
type Locator struct {
	tmpl    *similarity.Grid
	opts    Options
	weights []float64
}

// NewLocator builds a locator whose template is the scorer's reference at
// opts.TemplateSize.
func NewLocator(scorer *similarity.Scorer, opts Options) (*Locator, error) {
	if scorer == nil {
		return nil, errors.New("locate: nil scorer")
	}
	if opts.TemplateSize < 2 {
		opts.TemplateSize = 20
	}
	if opts.FrameWidth < opts.TemplateSize {
		opts.FrameWidth = max(100, opts.TemplateSize)
	}
	if opts.Step < 1 {
		opts.Step = 1
	}
	if opts.Metric == "" {
		opts.Metric = scorer.Options().Metric
	}
	if opts.Weighting == "" {
		opts.Weighting = similarity.WeightUniform
	}
	tmpl, err := scorer.ReferenceGrid(opts.TemplateSize)
	if err != nil {
		return nil, fmt.Errorf("locate template: %w", err)
	}
	l := &Locator{tmpl: tmpl, opts: opts}
	if opts.Weighting == similarity.WeightCenter {
		// Precompute once; CompareGrids would rebuild them per window.
		l.weights = similarity.CenterWeights(opts.TemplateSize)
	}
	return l, nil
}

// Options returns the locator configuration.
func (l *Locator) Options() Options { return l.opts }

type rowBest struct {
	x, y    int
	score   float64
	windows int
}

// Locate returns the best scoring window. Rows are scored in parallel; the
// result equals a serial row-major scan, ties keep the earliest window.
func (l *Locator) Locate(frame image.Image) (Match, error) {
	if similarity.IsNil(frame) {
		return Match{}, similarity.ErrNilImage
	}
	b := frame.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return Match{}, similarity.ErrEmptyImage
	}
	t := l.opts.TemplateSize
	fw := l.opts.FrameWidth
	fh := int(math.Round(float64(b.Dy()) * float64(fw) / float64(b.Dx())))
	if fh < t {
		return Match{}, ErrFrameTooSmall
	}
	small, err := similarity.DownsampleRect(frame, fw, fh)
	if err != nil {
		return Match{}, err
	}

	var rows []int
	for y := 0; y < fh; y += l.opts.Step {
		if y+t > fh {
			continue // window would cross the bottom edge
		}
		rows = append(rows, y)
	}

	results := make(chan rowBest, len(rows))
	var wg sync.WaitGroup
	sem := make(chan struct{}, runtime.NumCPU())
	for _, y := range rows {
		wg.Add(1)
		sem <- struct{}{}
		go func(y int) {
			defer wg.Done()
			defer func() { <-sem }()
			results <- l.scanRow(small, y)
		}(y)
	}
	wg.Wait()
	close(results)

	best := rowBest{score: -1}
	windows := 0
	for r := range results {
		windows += r.windows
		if r.windows == 0 {
			continue
		}
		if r.score > best.score || (r.score == best.score && (r.y < best.y || (r.y == best.y && r.x < best.x))) {
			best = r
		}
	}
	if windows == 0 {
		return Match{}, ErrFrameTooSmall
	}

	sx := float64(b.Dx()) / float64(fw)
	sy := float64(b.Dy()) / float64(fh)
	rect := image.Rect(
		b.Min.X+int(math.Round(float64(best.x)*sx)),
		b.Min.Y+int(math.Round(float64(best.y)*sy)),
		b.Min.X+int(math.Round(float64(best.x+t)*sx)),
		b.Min.Y+int(math.Round(float64(best.y+t)*sy)),
	).Intersect(b)
	return Match{Rect: rect, Score: best.score, Windows: windows}, nil
}

func (l *Locator) scanRow(small *image.RGBA, y int) rowBest {
	t := l.opts.TemplateSize
	w := small.Bounds().Dx()
	best := rowBest{y: y, score: -1}
	for x := 0; x < w; x += l.opts.Step {
		if x+t > w {
			continue // window would cross the right edge
		}
		win := similarity.GridFromWindow(small, x, y, t)
		s := similarity.CompareWeighted(l.tmpl, win, l.opts.Metric, l.weights)
		best.windows++
		if s > best.score {
			best.x, best.score = x, s
		}
	}
	return best
}

package similarity

import (
	"fmt"
	"image"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/soocke/plaque-overlay/config"
)

const referenceCacheSize = 8

// Options configures a Scorer.
type Options struct {
	GridSize       int
	Metric         Metric
	Weighting      Weighting
	HistogramBlend bool // average the pixel score with the histogram IoU
}

// OptionsFromConfig maps validated configuration onto scorer options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return Options{
		GridSize:       cfg.GridSize,
		Metric:         Metric(cfg.Metric),
		Weighting:      Weighting(cfg.Weighting),
		HistogramBlend: cfg.HistogramBlend,
	}
}

// Result breaks a score down into its signals.
type Result struct {
	Pixel     float64
	Histogram float64 // zero unless HistogramBlend
	Score     float64
}

// Scorer compares frames against a fixed reference image. Reference grids
// are memoized per size so the locator and the scorer share work.
// Safe for concurrent use.
type Scorer struct {
	ref     image.Image
	opts    Options
	grids   *lru.Cache[int, *Grid]
	weights []float64
	refHist Histogram
}

// NewScorer downsamples the reference once and returns a ready scorer.
func NewScorer(reference image.Image, opts Options) (*Scorer, error) {
	if IsNil(reference) {
		return nil, ErrNilImage
	}
	if opts.GridSize < 1 {
		opts.GridSize = 30
	}
	if opts.Metric == "" {
		opts.Metric = MetricRGB
	}
	if opts.Weighting == "" {
		opts.Weighting = WeightUniform
	}
	cache, err := lru.New[int, *Grid](referenceCacheSize)
	if err != nil {
		return nil, err
	}
	s := &Scorer{ref: reference, opts: opts, grids: cache, weights: weightsFor(opts.GridSize, opts.Weighting)}
	g, err := s.ReferenceGrid(opts.GridSize)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	s.refHist = HistogramOf(g)
	return s, nil
}

// Options returns the scorer configuration.
func (s *Scorer) Options() Options { return s.opts }

// Reference returns the reference image.
func (s *Scorer) Reference() image.Image { return s.ref }

// ReferenceGrid returns the reference downsampled to size×size.
func (s *Scorer) ReferenceGrid(size int) (*Grid, error) {
	if g, ok := s.grids.Get(size); ok {
		return g, nil
	}
	g, err := Downsample(s.ref, size)
	if err != nil {
		return nil, err
	}
	s.grids.Add(size, g)
	return g, nil
}

// Evaluate scores frame against the reference.
func (s *Scorer) Evaluate(frame image.Image) (Result, error) {
	ref, err := s.ReferenceGrid(s.opts.GridSize)
	if err != nil {
		return Result{}, err
	}
	g, err := Downsample(frame, s.opts.GridSize)
	if err != nil {
		return Result{}, err
	}
	res := Result{Pixel: CompareWeighted(ref, g, s.opts.Metric, s.weights)}
	res.Score = res.Pixel
	if s.opts.HistogramBlend {
		res.Histogram = HistogramIoU(s.refHist, HistogramOf(g))
		res.Score = clamp01((res.Pixel + res.Histogram) / 2)
	}
	return res, nil
}

// Score is Evaluate reduced to the final value; failures score 0.
func (s *Scorer) Score(frame image.Image) float64 {
	res, err := s.Evaluate(frame)
	if err != nil {
		return 0
	}
	return res.Score
}

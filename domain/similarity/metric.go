package similarity

import "math"

// Metric selects how a per-cell colour difference is measured.
type Metric string

const (
	// MetricGray compares the channel means of the two cells.
	MetricGray Metric = "gray"
	// MetricRGB averages the absolute per-channel differences.
	MetricRGB Metric = "rgb"
	// MetricEuclidean uses the RGB distance normalized by 255·√3.
	MetricEuclidean Metric = "euclidean"
)

// Weighting selects how cells are aggregated.
type Weighting string

const (
	WeightUniform Weighting = "uniform"
	// WeightCenter boosts cells near the grid centre up to 3x, falling to 1x
	// at a quarter of the grid size away and beyond.
	WeightCenter Weighting = "center"
)

var sqrt3x255 = 255 * math.Sqrt(3)

// cellSimilarity returns 1 - normalized difference for two RGB cells.
func cellSimilarity(m Metric, r1, g1, b1, r2, g2, b2 uint8) float64 {
	dr := math.Abs(float64(r1) - float64(r2))
	dg := math.Abs(float64(g1) - float64(g2))
	db := math.Abs(float64(b1) - float64(b2))
	switch m {
	case MetricGray:
		ga := (int(r1) + int(g1) + int(b1)) / 3
		gb := (int(r2) + int(g2) + int(b2)) / 3
		return 1 - math.Abs(float64(ga-gb))/255
	case MetricEuclidean:
		return 1 - math.Sqrt(dr*dr+dg*dg+db*db)/sqrt3x255
	default:
		return 1 - (dr+dg+db)/3/255
	}
}

// CenterWeights returns the per-cell weights for a size×size grid.
func CenterWeights(size int) []float64 {
	w := make([]float64, size*size)
	c := float64(size-1) / 2
	falloff := float64(size) / 4
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)-c, float64(y)-c
			d := math.Sqrt(dx*dx + dy*dy)
			w[y*size+x] = math.Max(1, 3-d/falloff)
		}
	}
	return w
}

// CompareGrids returns the weighted mean cell similarity in [0,1].
// Grids of different sizes score 0.
func CompareGrids(a, b *Grid, m Metric, weighting Weighting) float64 {
	if a == nil || b == nil || a.Size != b.Size || a.Size == 0 {
		return 0
	}
	return CompareWeighted(a, b, m, weightsFor(a.Size, weighting))
}

func weightsFor(size int, weighting Weighting) []float64 {
	if weighting == WeightCenter {
		return CenterWeights(size)
	}
	return nil
}

// CompareWeighted is CompareGrids with precomputed weights; nil weights
// mean uniform.
func CompareWeighted(a, b *Grid, m Metric, weights []float64) float64 {
	if a == nil || b == nil || a.Size != b.Size {
		return 0
	}
	n := a.Size * a.Size
	if weights != nil && len(weights) != n {
		return 0
	}
	var total, totalW float64
	for i := 0; i < n; i++ {
		off := i * 3
		s := cellSimilarity(m, a.Pix[off], a.Pix[off+1], a.Pix[off+2], b.Pix[off], b.Pix[off+1], b.Pix[off+2])
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		total += s * w
		totalW += w
	}
	if totalW == 0 {
		return 0
	}
	return clamp01(total / totalW)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

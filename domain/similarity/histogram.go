package similarity

// Histogram is a 256-bin grayscale histogram.
type Histogram [256]int

// HistogramOf counts the gray level of every cell of g.
func HistogramOf(g *Grid) Histogram {
	var h Histogram
	if g == nil {
		return h
	}
	for y := 0; y < g.Size; y++ {
		for x := 0; x < g.Size; x++ {
			h[g.Gray(x, y)]++
		}
	}
	return h
}

// HistogramIoU returns the intersection over union of two histograms.
// An empty union scores 0.
func HistogramIoU(a, b Histogram) float64 {
	var inter, union int
	for i := range a {
		lo, hi := a[i], b[i]
		if lo > hi {
			lo, hi = hi, lo
		}
		inter += lo
		union += hi
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Package plotting summarizes a score table and renders its distribution.
package plotting

import "math"

// DefaultBins is the number of histogram bins.
const DefaultBins = 50

// Bin is one histogram bucket covering [Lower, Upper).
// The last bin also includes its upper edge.
type Bin struct {
	Lower float64
	Upper float64
	Count int
}

// Histogram is an equal-width binning of a sample.
type Histogram struct {
	Min   float64
	Max   float64
	Bins  []Bin
	Total int

	sample []float64 // binned values, kept for the density overlay
}

// NewHistogram bins values into equal-width buckets spanning [min, max].
// A constant sample lands entirely in the first bin.
func NewHistogram(values []float64, bins int) Histogram {
	if bins <= 0 {
		bins = DefaultBins
	}
	if len(values) == 0 {
		return Histogram{Bins: []Bin{}}
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	width := (hi - lo) / float64(bins)
	h := Histogram{
		Min:    lo,
		Max:    hi,
		Bins:   make([]Bin, bins),
		Total:  len(values),
		sample: append([]float64(nil), values...),
	}
	for i := range h.Bins {
		h.Bins[i].Lower = lo + float64(i)*width
		h.Bins[i].Upper = lo + float64(i+1)*width
	}
	h.Bins[bins-1].Upper = hi

	for _, v := range values {
		h.Bins[binIndex(v, lo, width, bins)].Count++
	}
	return h
}

func binIndex(v, lo, width float64, bins int) int {
	if width == 0 {
		return 0
	}
	i := int((v - lo) / width)
	if i >= bins {
		i = bins - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// MaxCount returns the tallest bin count.
func (h Histogram) MaxCount() int {
	m := 0
	for _, b := range h.Bins {
		if b.Count > m {
			m = b.Count
		}
	}
	return m
}

package calc

import (
	"math"

	"github.com/gonum/matrix/mat64"
	"go.chromium.org/luci/common/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Cov returns the coefficient of variation of every element of m (population
// standard deviation over mean) along with the mean.
func Cov(m *mat64.Dense) (cov float64, mean float64) {
	rows, cols := m.Dims()
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		data = append(data, m.RawRowView(i)...)
	}

	mean, std := stat.PopMeanStdDev(data, nil)
	return std / mean, mean
}

// MovingAverage averages seq over a flat window, keeping only the positions
// where the window fits entirely.
func MovingAverage(seq []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, errors.Reason("MovingAverage: window must be positive, got %d", window).Err()
	}
	if window > len(seq) {
		return nil, errors.Reason("MovingAverage: window %d is longer than the sequence (%d)", window, len(seq)).Err()
	}

	out := make([]float64, len(seq)-window+1)
	for i := range out {
		out[i] = floats.Sum(seq[i:i+window]) / float64(window)
	}
	return out, nil
}

// NearestEntry returns the first element of list closest to value and its
// index, or (NaN, -1) for an empty list.
func NearestEntry(list []float64, value float64) (float64, int) {
	idx := -1
	best := math.Inf(1)
	for i, x := range list {
		if d := math.Abs(x - value); d < best {
			best = d
			idx = i
		}
	}
	if idx < 0 {
		return math.NaN(), -1
	}
	return list[idx], idx
}

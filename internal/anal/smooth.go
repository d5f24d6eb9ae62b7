package anal

import (
	"go.chromium.org/luci/common/errors"

	"github.com/KyungWonPark/Microemulsion/internal/calc"
)

// Smooth applies a centred moving average of width window to every series
// in ys and trims times to the positions that keep a full window. A window
// of 1 leaves everything untouched.
func Smooth(window int, times []float64, ys ...[]float64) ([]float64, [][]float64, error) {
	if window < 1 || window%2 == 0 {
		return nil, nil, errors.Reason("moving average window must be odd and positive, got %d", window).Err()
	}
	if window == 1 {
		return times, ys, nil
	}
	if window > len(times) {
		return nil, nil, errors.Reason("moving average window %d is longer than the %d samples", window, len(times)).Err()
	}

	half := window / 2
	smoothed := make([][]float64, len(ys))
	for i, y := range ys {
		avg, err := calc.MovingAverage(y, window)
		if err != nil {
			return nil, nil, err
		}
		smoothed[i] = avg
	}
	return times[half : len(times)-half], smoothed, nil
}

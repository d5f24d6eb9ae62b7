package anal

import (
	"context"

	"go.chromium.org/luci/common/logging"

	"github.com/KyungWonPark/Microemulsion/internal/calc"
)

// CurveAnalysis measures two channels snapshot by snapshot and relates them
// as an (X, Y) curve.
type CurveAnalysis struct {
	series
}

// NewCurveAnalysis measures xFiles against yFiles. xCovMode and yCovMode pick
// the CoV instead of the mean intensity for the respective axis.
func NewCurveAnalysis(ctx context.Context, p *calc.PipeLine, xFiles, yFiles []string, xCovMode, yCovMode bool, opts Options) (*CurveAnalysis, error) {
	keys := []string{"SnapshotNumber", "X", "Y"}
	if xCovMode {
		keys[1] = "CoV(X)"
	}
	if yCovMode {
		keys[2] = "CoV(Y)"
	}

	samples, err := measureSequence(ctx, p, [][]string{xFiles, yFiles}, []bool{xCovMode, yCovMode}, opts)
	if err != nil {
		return nil, err
	}

	if !opts.Quiet {
		for _, s := range samples {
			logging.Infof(ctx, "> %d : xData = %f, yData = %f", s.id, s.values[0], s.values[1])
		}
	}

	return &CurveAnalysis{
		series: series{resultsKeys: keys, samples: samples, deltaT: 1},
	}, nil
}

// XData returns the X values past the skip.
func (c *CurveAnalysis) XData() []float64 {
	return c.column(0)
}

// YData returns the Y values past the skip.
func (c *CurveAnalysis) YData() []float64 {
	return c.column(1)
}

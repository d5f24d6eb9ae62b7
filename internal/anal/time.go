package anal

import (
	"context"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"github.com/KyungWonPark/Microemulsion/internal/calc"
)

// TimeAnalysis measures a single channel against time.
type TimeAnalysis struct {
	series
	label string
}

// NewTimeAnalysis measures files, a sequence of the channel named label.
func NewTimeAnalysis(ctx context.Context, p *calc.PipeLine, files []string, label string, covMode bool, opts Options) (*TimeAnalysis, error) {
	key := label
	if covMode {
		key = "CoV(" + label + ")"
	}

	samples, err := measureSequence(ctx, p, [][]string{files}, []bool{covMode}, opts)
	if err != nil {
		return nil, errors.Annotate(err, "%s", label).Err()
	}

	if !opts.Quiet {
		for _, s := range samples {
			logging.Infof(ctx, "> %d : %s = %f", s.id, key, s.values[0])
		}
	}

	return &TimeAnalysis{
		series: series{resultsKeys: []string{"SnapshotNumber", key}, samples: samples, deltaT: 1},
		label:  label,
	}, nil
}

// Label returns the channel name.
func (t *TimeAnalysis) Label() string {
	return t.label
}

// XData returns the time of every entry past the skip.
func (t *TimeAnalysis) XData() []float64 {
	return t.SnapshotNumbers()
}

// YData returns the channel values past the skip.
func (t *TimeAnalysis) YData() []float64 {
	return t.column(0)
}

// MergeTimeAnalyses joins the results of several analyses on the snapshot
// number. Only snapshots measured by all of them are kept.
func MergeTimeAnalyses(analyses ...*TimeAnalysis) ([]string, [][]float64) {
	if len(analyses) == 0 {
		return nil, nil
	}

	keys := []string{"SnapshotNumber"}
	values := make([]map[int]float64, len(analyses))
	for i, a := range analyses {
		keys = append(keys, a.resultsKeys[1])
		values[i] = make(map[int]float64, len(a.samples))
		for _, s := range a.samples {
			values[i][s.id] = s.values[0]
		}
	}

	var rows [][]float64
	for _, s := range analyses[0].samples {
		row := []float64{float64(s.id)}
		for _, v := range values {
			x, ok := v[s.id]
			if !ok {
				row = nil
				break
			}
			row = append(row, x)
		}
		if row != nil {
			rows = append(rows, row)
		}
	}
	return keys, rows
}

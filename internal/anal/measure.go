// Package anal turns snapshot sequences into curves.
package anal

import (
	"context"
	"runtime"

	"github.com/gonum/matrix/mat64"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"
	"golang.org/x/sync/errgroup"

	"github.com/KyungWonPark/Microemulsion/internal/calc"
	"github.com/KyungWonPark/Microemulsion/internal/snapshot"
)

// DefaultBlurRadius is the Gaussian kernel size applied before measuring.
const DefaultBlurRadius = 3

// Options control how snapshots are measured.
type Options struct {
	// BlurRadius is the (odd) Gaussian kernel size.
	BlurRadius int
	// Quiet suppresses the per-snapshot log lines.
	Quiet bool
	// Workers bounds how many snapshots are measured at once.
	Workers int
}

// DefaultOptions returns the options used by the analysis tools.
func DefaultOptions() Options {
	return Options{
		BlurRadius: DefaultBlurRadius,
		Workers:    runtime.NumCPU(),
	}
}

// sample holds one measured snapshot: values[k] comes from channel k.
type sample struct {
	id     int
	values []float64
}

// measure loads, blurs and reduces one image to its CoV or mean.
func measure(p *calc.PipeLine, path string, blurRadius int, cov bool) (float64, error) {
	img, err := snapshot.Load(path)
	if err != nil {
		return 0, err
	}
	if err := p.GaussianBlur(img, img, blurRadius); err != nil {
		return 0, err
	}

	c, mean := calc.Cov(img)
	if cov {
		return c, nil
	}
	return mean, nil
}

// measureSequence measures the i-th file of every channel for each snapshot
// number i. Channels are paired by position and the shortest one wins.
// Snapshots with an unreadable image are logged and left out.
func measureSequence(ctx context.Context, p *calc.PipeLine, channels [][]string, covModes []bool, opts Options) ([]sample, error) {
	if opts.BlurRadius <= 0 || opts.BlurRadius%2 == 0 {
		return nil, errors.Reason("blur radius must be odd and positive, got %d", opts.BlurRadius).Err()
	}
	if len(channels) == 0 {
		return nil, nil
	}

	n := len(channels[0])
	for _, files := range channels[1:] {
		if len(files) < n {
			n = len(files)
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	measured := make([]*sample, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			values := make([]float64, len(channels))
			for k, files := range channels {
				v, err := measure(p, files[i], opts.BlurRadius, covModes[k])
				if err != nil {
					logging.Warningf(gctx, "Image %s cannot be read. Ignoring it. (%s)", files[i], err)
					return nil
				}
				values[k] = v
			}
			measured[i] = &sample{id: i, values: values}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Annotate(err, "measure sequence").Err()
	}

	samples := make([]sample, 0, n)
	for _, s := range measured {
		if s != nil {
			samples = append(samples, *s)
		}
	}
	return samples, nil
}

// series is the part shared by every analysis: measured rows, a skip and a
// time mapping.
type series struct {
	resultsKeys []string
	samples     []sample
	skip        int
	deltaT      float64
}

// SetSkip sets the number of initial entries to leave out of the data getters.
func (s *series) SetSkip(skip int) {
	if skip < 0 {
		skip = 0
	}
	s.skip = skip
}

// SetDeltaT sets the time between two snapshots.
func (s *series) SetDeltaT(deltaT float64) {
	s.deltaT = deltaT
}

// NumSamples returns the number of measured snapshots, skipped ones included.
func (s *series) NumSamples() int {
	return len(s.samples)
}

// ResultsKeys returns the column names of Results.
func (s *series) ResultsKeys() []string {
	return append([]string(nil), s.resultsKeys...)
}

func (s *series) tail() []sample {
	if s.skip >= len(s.samples) {
		return nil
	}
	return s.samples[s.skip:]
}

// SnapshotNumbers returns deltaT times the snapshot number of every entry past the skip.
func (s *series) SnapshotNumbers() []float64 {
	tail := s.tail()
	out := make([]float64, len(tail))
	for i, smp := range tail {
		out[i] = s.deltaT * float64(smp.id)
	}
	return out
}

func (s *series) column(k int) []float64 {
	tail := s.tail()
	out := make([]float64, len(tail))
	for i, smp := range tail {
		out[i] = smp.values[k]
	}
	return out
}

// Rows returns every measured row as [snapshot number, values...], ignoring the skip.
func (s *series) Rows() [][]float64 {
	out := make([][]float64, len(s.samples))
	for i, smp := range s.samples {
		out[i] = append([]float64{float64(smp.id)}, smp.values...)
	}
	return out
}

// Results returns Rows as a matrix, or nil when nothing was measured.
func (s *series) Results() *mat64.Dense {
	rows := s.Rows()
	if len(rows) == 0 {
		return nil
	}

	m := mat64.NewDense(len(rows), len(s.resultsKeys), nil)
	for i, r := range rows {
		m.SetRow(i, r)
	}
	return m
}

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gonum/matrix/mat64"
	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/errors"

	"github.com/KyungWonPark/Microemulsion/internal/anal"
	mio "github.com/KyungWonPark/Microemulsion/internal/io"
	"github.com/KyungWonPark/Microemulsion/internal/plotter"
)

var cmdReplot = &subcommands.Command{
	UsageLine: "replot -d <results.csv|results.npy> -p <plot> <options>",
	ShortDesc: "Re-renders a plot from saved results.",
	LongDesc: `Reads the results written by covrna, txnrna or timecourse and draws the
plot again, for instance with other events, smoothing or output format.
Three-column results are drawn as a curve, four-column results as a
timecourse.`,
	CommandRun: func() subcommands.CommandRun {
		c := &replotRun{}
		c.register("replot")
		c.Flags.IntVar(&c.skip, "skip", 1, "Number of initial rows left out of the plot.")
		c.Flags.StringVar(&c.xLabel, "xlabel", "", "X axis label of curve plots. Defaults to the csv header.")
		c.Flags.StringVar(&c.yLabel, "ylabel", "", "Y axis label of curve plots. Defaults to the csv header.")
		return c
	},
}

type replotRun struct {
	commonFlags
	skip   int
	xLabel string
	yLabel string
}

func (c *replotRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	if len(args) != 0 {
		errors.Log(ctx, errors.Reason("unexpected arguments: %q", args).Err())
		return 1
	}
	if err := c.innerRun(ctx, a.GetOut()); err != nil {
		errors.Log(ctx, err)
		return 1
	}
	return 0
}

// loadResults reads a results csv, or an npy file whose columns are named
// after the analysis that produces that many columns.
func loadResults(path string) ([]string, [][]float64, error) {
	var m *mat64.Dense
	var keys []string
	var err error

	if strings.EqualFold(filepath.Ext(path), ".npy") {
		if m, err = mio.NpytoMat64(path); err != nil {
			return nil, nil, err
		}
		_, cols := m.Dims()
		if keys, err = anal.DefaultResultsKeys(cols); err != nil {
			return nil, nil, errors.Annotate(err, "%s", path).Err()
		}
	} else if m, keys, err = mio.CSVtoMat64(path); err != nil {
		return nil, nil, err
	}

	rows, _ := m.Dims()
	out := make([][]float64, rows)
	for i := range out {
		out[i] = append([]float64(nil), m.RawRowView(i)...)
	}
	return keys, out, nil
}

func (c *replotRun) innerRun(ctx context.Context, out io.Writer) error {
	if err := c.validate(); err != nil {
		return err
	}
	if c.skip < 0 {
		return errors.Reason("-skip must not be negative, got %d", c.skip).Err()
	}

	keys, rows, err := loadResults(c.csvFile)
	if err != nil {
		return err
	}
	plotFile := outputPath(c.plotFile, filepath.Dir(c.csvFile))
	if c.skip >= len(rows) {
		return errors.Reason("%s has %d rows, nothing left after skipping %d", c.csvFile, len(rows), c.skip).Err()
	}
	rows = rows[c.skip:]

	switch len(keys) {
	case 3:
		times := make([]float64, len(rows))
		xs := make([]float64, len(rows))
		ys := make([]float64, len(rows))
		for i, r := range rows {
			times[i], xs[i], ys[i] = c.deltaT*r[0], r[1], r[2]
		}
		opts := plotter.Options{File: plotFile, XLabel: keys[1], YLabel: keys[2]}
		if c.xLabel != "" {
			opts.XLabel = c.xLabel
		}
		if c.yLabel != "" {
			opts.YLabel = c.yLabel
		}
		err = c.plotCurve(times, xs, ys, opts)
	case 4:
		err = c.plotTimecourse(keys, rows, plotFile)
	default:
		err = errors.Reason("%s has %d columns, want 3 or 4", c.csvFile, len(keys)).Err()
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Plot saved at %s\n", plotFile)
	return nil
}

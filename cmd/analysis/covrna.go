package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"github.com/KyungWonPark/Microemulsion/internal/anal"
	"github.com/KyungWonPark/Microemulsion/internal/calc"
	mio "github.com/KyungWonPark/Microemulsion/internal/io"
	"github.com/KyungWonPark/Microemulsion/internal/plotter"
	"github.com/KyungWonPark/Microemulsion/internal/snapshot"
)

var cmdCovRna = &subcommands.Command{
	UsageLine: "covrna [inputDir] [-X files...] [-Y files...] <options>",
	ShortDesc: "Plots trajectories in the RNA intensity vs. DNA CoV plane.",
	LongDesc: `Measures the mean RNA intensity and the DNA coefficient of variation of
every snapshot in inputDir (or of the -X RNA and -Y DNA files) and plots one
against the other. The first snapshot is left out of the plot.`,
	CommandRun: func() subcommands.CommandRun {
		c := &covRnaRun{}
		c.register("covRna", false)
		return c
	},
}

type covRnaRun struct {
	inputFlags
}

func (c *covRnaRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	if err := c.innerRun(ctx, args, a.GetOut()); err != nil {
		errors.Log(ctx, err)
		return 1
	}
	return 0
}

func (c *covRnaRun) innerRun(ctx context.Context, args []string, out io.Writer) error {
	return c.runCurve(ctx, args, out, curvePlan{
		xChannel: snapshot.RNA,
		yChannel: snapshot.DNA,
		yCov:     true,
		plot: plotter.Options{
			XLabel: "RNA Intensity",
			YLabel: "CoV(DNA)",
		},
	})
}

// curvePlan describes one two-channel analysis.
type curvePlan struct {
	xChannel, yChannel string
	xCov, yCov         bool
	plot               plotter.Options
}

// curveInputs resolves the x and y file lists and the default output
// directory from -X/-Y or the input directory.
func (c *inputFlags) curveInputs(args []string, plan curvePlan) (xs, ys []string, dir string, err error) {
	if len(c.xInputs) > 0 && len(c.yInputs) > 0 {
		return c.xInputs, c.yInputs, filepath.Dir(c.xInputs[0]), nil
	}

	if len(c.scatterDirs) > 0 {
		for _, d := range c.scatterDirs {
			xs = append(xs, snapshot.ExtraFile(d, plan.xChannel))
			ys = append(ys, snapshot.ExtraFile(d, plan.yChannel))
		}
		return xs, ys, ".", nil
	}

	in, err := inputDir(args)
	if err != nil {
		return nil, nil, "", err
	}
	if in == "" {
		return nil, nil, "", errors.Reason("you either need to pass the inputDir or the -X & -Y flags").Err()
	}
	xs = []string{snapshot.Pattern(in, plan.xChannel)}
	ys = []string{snapshot.Pattern(in, plan.yChannel)}
	return xs, ys, filepath.Dir(xs[0]), nil
}

func (c *inputFlags) runCurve(ctx context.Context, args []string, out io.Writer, plan curvePlan) error {
	if err := c.validate(); err != nil {
		return err
	}

	xInputs, yInputs, dir, err := c.curveInputs(args, plan)
	if err != nil {
		return err
	}
	plotFile, csvFile := c.outputs(dir)

	xFiles, err := snapshot.ExpandSequence(xInputs)
	if err != nil {
		return err
	}
	yFiles, err := snapshot.ExpandSequence(yInputs)
	if err != nil {
		return err
	}
	logging.Debugf(ctx, "%d x files, %d y files", len(xFiles), len(yFiles))

	p := calc.Init(ctx, c.workers, c.verbose)
	a, err := anal.NewCurveAnalysis(ctx, p, xFiles, yFiles, plan.xCov, plan.yCov, c.options())
	if err != nil {
		return err
	}
	if a.NumSamples() == 0 {
		return errors.Reason("no snapshot could be measured in %q / %q", xInputs, yInputs).Err()
	}
	if len(c.scatterDirs) == 0 {
		a.SetSkip(1)
	}
	a.SetDeltaT(c.deltaT)

	if err := mio.NewCsvWriter(a.ResultsKeys(), mio.FloatRows(a.Rows())).Write(csvFile); err != nil {
		return err
	}
	if c.npy {
		if err := mio.Mat64toNpy(npyPath(csvFile), a.Results()); err != nil {
			return err
		}
	}

	opts := plan.plot
	opts.File = plotFile
	if err := c.plotCurve(a.SnapshotNumbers(), a.XData(), a.YData(), opts); err != nil {
		return err
	}

	fmt.Fprintf(out, "Plot saved at %s\n", plotFile)
	fmt.Fprintf(out, "Data saved at %s\n", csvFile)
	return nil
}

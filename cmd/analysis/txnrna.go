package main

import (
	"context"
	"io"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/errors"

	"github.com/KyungWonPark/Microemulsion/internal/plotter"
	"github.com/KyungWonPark/Microemulsion/internal/snapshot"
)

var cmdTxnRna = &subcommands.Command{
	UsageLine: "txnrna [inputDir] [-X files...] [-Y files...] [-S dir...] <options>",
	ShortDesc: "Plots trajectories in the transcription vs. RNA intensity plane.",
	LongDesc: `Measures the mean transcription and RNA intensities of every snapshot in
inputDir (or of the -X transcription and -Y RNA files) and plots one against
the other.

With -S, the EXTRA snapshots of each given simulation directory become one
point of a scatter plot written to the current directory.`,
	CommandRun: func() subcommands.CommandRun {
		c := &txnRnaRun{}
		c.register("txnRna", true)
		return c
	},
}

type txnRnaRun struct {
	inputFlags
}

func (c *txnRnaRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	if err := c.innerRun(ctx, args, a.GetOut()); err != nil {
		errors.Log(ctx, err)
		return 1
	}
	return 0
}

func (c *txnRnaRun) innerRun(ctx context.Context, args []string, out io.Writer) error {
	return c.runCurve(ctx, args, out, curvePlan{
		xChannel: snapshot.Transcription,
		yChannel: snapshot.RNA,
		plot: plotter.Options{
			XLabel:  "Transcription Intensity",
			YLabel:  "RNA Intensity",
			Scatter: len(c.scatterDirs) > 0,
			XLim:    &[2]float64{0, 60},
			YLim:    &[2]float64{0, 8},
		},
	})
}

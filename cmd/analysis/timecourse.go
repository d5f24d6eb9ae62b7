package main

import (
	"context"
	"fmt"
	"io"

	"github.com/gonum/matrix/mat64"
	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/errors"

	"github.com/KyungWonPark/Microemulsion/internal/anal"
	"github.com/KyungWonPark/Microemulsion/internal/calc"
	mio "github.com/KyungWonPark/Microemulsion/internal/io"
	"github.com/KyungWonPark/Microemulsion/internal/snapshot"
)

var cmdTimecourse = &subcommands.Command{
	UsageLine: "timecourse <inputDir> <options>",
	ShortDesc: "Plots DNA CoV, RNA and transcription intensities against time.",
	LongDesc: `Measures the DNA coefficient of variation and the mean RNA and
transcription intensities of every snapshot in inputDir. DNA CoV goes on the
main panel, RNA and transcription on a second panel sharing the time axis.`,
	CommandRun: func() subcommands.CommandRun {
		c := &timecourseRun{}
		c.register("covRnaTxnTime", true)
		return c
	},
}

type timecourseRun struct {
	inputFlags
}

func (c *timecourseRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	if err := c.innerRun(ctx, args, a.GetOut()); err != nil {
		errors.Log(ctx, err)
		return 1
	}
	return 0
}

func (c *timecourseRun) innerRun(ctx context.Context, args []string, out io.Writer) error {
	if len(c.xInputs) > 0 || len(c.yInputs) > 0 || len(c.scatterDirs) > 0 {
		return errors.Reason("options -X, -Y & -S are not supported").Err()
	}
	if err := c.validate(); err != nil {
		return err
	}
	dir, err := inputDir(args)
	if err != nil {
		return err
	}
	if dir == "" {
		return errors.Reason("you need to pass the input directory").Err()
	}
	plotFile, csvFile := c.outputs(dir)

	p := calc.Init(ctx, c.workers, c.verbose)
	channels := []struct {
		name string
		cov  bool
	}{
		{snapshot.DNA, true},
		{snapshot.RNA, false},
		{snapshot.Transcription, false},
	}
	analyses := make([]*anal.TimeAnalysis, len(channels))
	for i, ch := range channels {
		files, err := snapshot.Expand(snapshot.Pattern(dir, ch.name))
		if err != nil {
			return err
		}
		if analyses[i], err = anal.NewTimeAnalysis(ctx, p, files, ch.name, ch.cov, c.options()); err != nil {
			return err
		}
	}

	keys, rows := anal.MergeTimeAnalyses(analyses...)
	if len(rows) == 0 {
		return errors.Reason("no snapshot could be measured in %s", dir).Err()
	}
	if err := mio.NewCsvWriter(keys, mio.FloatRows(rows)).Write(csvFile); err != nil {
		return err
	}
	if c.npy {
		m := mat64.NewDense(len(rows), len(keys), nil)
		for i, r := range rows {
			m.SetRow(i, r)
		}
		if err := mio.Mat64toNpy(npyPath(csvFile), m); err != nil {
			return err
		}
	}

	// The first snapshot is the initial configuration.
	if err := c.plotTimecourse(keys, rows[1:], plotFile); err != nil {
		return err
	}

	fmt.Fprintf(out, "Plot saved at %s\n", plotFile)
	fmt.Fprintf(out, "Data saved at %s\n", csvFile)
	return nil
}

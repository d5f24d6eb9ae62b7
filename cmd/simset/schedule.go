package main

import (
	"context"
	"io"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"github.com/KyungWonPark/Microemulsion/internal/schedule"
	"github.com/KyungWonPark/Microemulsion/internal/shell"
)

var cmdSchedule = &subcommands.Command{
	UsageLine: "schedule -config <simset.yaml> [-dry-run] [-log <submissions.csv>]",
	ShortDesc: "Submits a simulation set to the batch queue.",
	LongDesc: `Generates the control, relaxation and treatment runs of a simulation set,
bundles them into parbatch jobs, writes one job file per bundle and submits
every bundle with the configured submit command.

With -dry-run the job files are still written but nothing is submitted.`,
	CommandRun: func() subcommands.CommandRun {
		c := &scheduleRun{runner: shell.ExecRunner{}}
		c.register()
		c.Flags.BoolVar(&c.dryRun, "dry-run", false, "Write job files but do not submit them.")
		c.Flags.StringVar(&c.logPath, "log", "", "Write the submissions to this csv file.")
		return c
	},
}

type scheduleRun struct {
	commonFlags
	dryRun  bool
	logPath string
	runner  shell.Runner
}

func (c *scheduleRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
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

func (c *scheduleRun) innerRun(ctx context.Context, out io.Writer) error {
	s, err := c.simulationSet(ctx, c.dryRun)
	if err != nil {
		return err
	}

	subs, schedErr := s.Schedule(ctx, c.runner, out)
	report(out, s)

	if c.logPath != "" {
		if err := schedule.WriteSubmissionLog(c.logPath, subs); err != nil {
			return err
		}
		logging.Infof(ctx, "Submissions saved at %s", c.logPath)
	}
	return schedErr
}

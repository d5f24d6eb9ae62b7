package main

import (
	"context"
	"fmt"
	"io"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/errors"
)

var cmdList = &subcommands.Command{
	UsageLine: "list -config <simset.yaml>",
	ShortDesc: "Prints the bundles of a simulation set.",
	LongDesc:  "Prints the submit command and the simulations of every bundle without writing or submitting anything.",
	CommandRun: func() subcommands.CommandRun {
		c := &listRun{}
		c.register()
		return c
	},
}

type listRun struct {
	commonFlags
}

func (c *listRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
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

func (c *listRun) innerRun(ctx context.Context, out io.Writer) error {
	s, err := c.simulationSet(ctx, true)
	if err != nil {
		return err
	}
	for _, b := range s.Bundles() {
		fmt.Fprintf(out, "# %s\n", b)
		if err := b.DumpJobFileContent(out); err != nil {
			return err
		}
	}
	report(out, s)
	return nil
}

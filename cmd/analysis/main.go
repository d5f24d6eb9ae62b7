// Command analysis post-processes the snapshot sequences written by
// active-microemulsion into curves, csv tables and plots.
package main

import (
	"context"
	"os"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/flag/fixflagpos"
	"go.chromium.org/luci/common/logging/gologger"
)

func main() {
	application := &cli.Application{
		Name:  "analysis",
		Title: "Snapshot sequence analysis for active-microemulsion",
		Context: func(ctx context.Context) context.Context {
			goLoggerCfg := gologger.LoggerConfig{Out: os.Stderr}
			goLoggerCfg.Format = "[%{level:.1s} %{time:2006-01-02 15:04:05}] %{message}"
			return goLoggerCfg.Use(ctx)
		},
		Commands: []*subcommands.Command{
			subcommands.CmdHelp,
			cmdCovRna,
			cmdTxnRna,
			cmdTimecourse,
			cmdBlur,
			cmdReplot,
		},
	}
	os.Exit(subcommands.Run(application, fixflagpos.FixSubcommands(os.Args[1:])))
}

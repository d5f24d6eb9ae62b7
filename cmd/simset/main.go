// Command simset turns a simulation set description into batch queue jobs.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"
	"go.chromium.org/luci/common/logging/gologger"

	"github.com/KyungWonPark/Microemulsion/internal/schedule"
)

type commonFlags struct {
	subcommands.CommandRunBase
	verbose    bool
	configPath string
}

func (c *commonFlags) register() {
	c.Flags.BoolVar(&c.verbose, "verbose", false, "Log more.")
	c.Flags.StringVar(&c.configPath, "config", "", "Path to the simulation set YAML description. (required)")
}

func (c *commonFlags) ModifyContext(ctx context.Context) context.Context {
	if c.verbose {
		ctx = logging.SetLevel(ctx, logging.Debug)
	}
	return ctx
}

// simulationSet loads the configuration and generates the set from it.
// dryRun forces dry-run mode on top of what the file says.
func (c *commonFlags) simulationSet(ctx context.Context, dryRun bool) (*schedule.SimulationSet, error) {
	if c.configPath == "" {
		return nil, errors.Reason("no simulation set description specified (-config)").Err()
	}
	cfg, err := schedule.LoadConfig(c.configPath)
	if err != nil {
		return nil, err
	}
	if dryRun {
		cfg.DryRun = true
	}
	return schedule.NewSimulationSet(ctx, cfg)
}

func report(w io.Writer, s *schedule.SimulationSet) {
	fmt.Fprintf(w, "--> Jobs scheduled: %d\n", s.NumBundles())
	fmt.Fprintf(w, "--> Simulations scheduled: %d\n", s.NumSimulations())
}

func main() {
	application := &cli.Application{
		Name:  "simset",
		Title: "Simulation set scheduling for active-microemulsion",
		Context: func(ctx context.Context) context.Context {
			goLoggerCfg := gologger.LoggerConfig{Out: os.Stderr}
			goLoggerCfg.Format = "[%{level:.1s} %{time:2006-01-02 15:04:05}] %{message}"
			return goLoggerCfg.Use(ctx)
		},
		Commands: []*subcommands.Command{
			subcommands.CmdHelp,
			cmdSchedule,
			cmdList,
		},
	}
	os.Exit(subcommands.Run(application, nil))
}

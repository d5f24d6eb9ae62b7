package main

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/errors"
	luciflag "go.chromium.org/luci/common/flag"
	"go.chromium.org/luci/common/logging"

	"github.com/KyungWonPark/Microemulsion/internal/anal"
)

// commonFlags are shared by every command that writes a plot and a csv.
type commonFlags struct {
	subcommands.CommandRunBase
	verbose         bool
	movingAvgWindow int
	deltaT          float64
	events          anal.Events
	plotFile        string
	csvFile         string
	scriptMode      bool
}

func (c *commonFlags) register(nickname string) {
	c.events = anal.NoEvents()
	c.Flags.BoolVar(&c.verbose, "verbose", false, "Log more.")
	c.Flags.IntVar(&c.movingAvgWindow, "m", 1, "Length of the moving average window applied to the plotted curves. It must be an odd number; 1 disables it.")
	c.Flags.Float64Var(&c.deltaT, "t", 1, "Time interval between snapshots.")
	c.Flags.Float64Var(&c.events.Cutoff, "c", anal.Unset, "Time point at which a generic cutoff took place.")
	c.Flags.Float64Var(&c.events.Flavopiridol, "flavopiridol", anal.Unset, "Time point at which Flavopiridol was applied.")
	c.Flags.Float64Var(&c.events.ActinomycinD, "actinomycin-D", anal.Unset, "Time point at which Actinomycin D was applied.")
	c.Flags.Float64Var(&c.events.Activate, "activate", anal.Unset, "Time point at which transcription is activated.")
	c.Flags.StringVar(&c.plotFile, "p", nickname+"_plot.svg", "Name of the output file for the generated plot. The format follows the extension.")
	c.Flags.StringVar(&c.csvFile, "d", nickname+"_results.csv", "Name of the output csv for the data.")
	c.Flags.BoolVar(&c.scriptMode, "s", false, "Run quietly. For embedding into scripts.")
}

func (c *commonFlags) ModifyContext(ctx context.Context) context.Context {
	if c.verbose {
		ctx = logging.SetLevel(ctx, logging.Debug)
	}
	return ctx
}

func (c *commonFlags) validate() error {
	if c.movingAvgWindow < 1 || c.movingAvgWindow%2 == 0 {
		return errors.Reason("moving average window (-m) must be an odd positive number, got %d", c.movingAvgWindow).Err()
	}
	if c.deltaT <= 0 {
		return errors.Reason("time mapping (-t) must be positive, got %g", c.deltaT).Err()
	}
	return nil
}

// outputs places the plot and csv files in dir unless they name a directory
// of their own.
func (c *commonFlags) outputs(dir string) (plotFile, csvFile string) {
	return outputPath(c.plotFile, dir), outputPath(c.csvFile, dir)
}

func outputPath(path, dir string) string {
	if d, _ := filepath.Split(path); d != "" {
		return path
	}
	return filepath.Join(dir, path)
}

// npyPath returns the csv path with an .npy extension.
func npyPath(csvFile string) string {
	return strings.TrimSuffix(csvFile, filepath.Ext(csvFile)) + ".npy"
}

// inputFlags are the flags of the commands that measure snapshots.
type inputFlags struct {
	commonFlags
	xInputs     []string
	yInputs     []string
	scatterDirs []string
	blurRadius  int
	npy         bool
	workers     int
}

func (c *inputFlags) register(nickname string, scatter bool) {
	c.commonFlags.register(nickname)
	c.Flags.Var(luciflag.StringSlice(&c.xInputs), "X", "X axis input file or pattern. May be repeated. Overrides the input directory.")
	c.Flags.Var(luciflag.StringSlice(&c.yInputs), "Y", "Y axis input file or pattern. May be repeated. Overrides the input directory.")
	c.Flags.IntVar(&c.blurRadius, "b", anal.DefaultBlurRadius, "Size of the Gaussian blur kernel (odd).")
	c.Flags.BoolVar(&c.npy, "npy", false, "Also save the results as a numpy .npy file next to the csv.")
	c.Flags.IntVar(&c.workers, "j", runtime.NumCPU(), "Number of snapshots measured in parallel.")
	if scatter {
		c.Flags.Var(luciflag.StringSlice(&c.scatterDirs), "S", "Simulation directory whose EXTRA snapshots make one scatter point. May be repeated.")
	}
}

func (c *inputFlags) validate() error {
	if err := c.commonFlags.validate(); err != nil {
		return err
	}
	if c.blurRadius <= 0 || c.blurRadius%2 == 0 {
		return errors.Reason("blur radius (-b) must be an odd positive number, got %d", c.blurRadius).Err()
	}
	return nil
}

func (c *inputFlags) options() anal.Options {
	return anal.Options{
		BlurRadius: c.blurRadius,
		Quiet:      c.scriptMode,
		Workers:    c.workers,
	}
}

// inputDir returns the single positional input directory, if any.
func inputDir(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", nil
	case 1:
		return args[0], nil
	}
	return "", errors.Reason("expected at most one input directory, got %q", args).Err()
}

// Command chains writes chromatin chain configuration files for
// active-microemulsion.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"

	"go.chromium.org/luci/common/clock"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"
	"go.chromium.org/luci/common/logging/gologger"

	"github.com/KyungWonPark/Microemulsion/internal/chain"
)

type options struct {
	outputFile            string
	width                 int
	height                int
	chromatinRatio        float64
	inhibitionProbability float64
	numChains             int
	seed                  int64
}

func parseArgs(args []string, errOut io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("chains", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintf(errOut, "usage: chains [options] <outputFile>\n")
		fs.PrintDefaults()
	}
	fs.IntVar(&o.width, "W", 50, "The width of the domain (number of columns).")
	fs.IntVar(&o.height, "H", 50, "The height of the domain (number of rows).")
	fs.Float64Var(&o.chromatinRatio, "C", 0.5, "The ratio of the domain occupied by chromatin.")
	fs.Float64Var(&o.inhibitionProbability, "I", 0.5, "The probability of chromatin chains to be set as inhibited.")
	fs.IntVar(&o.numChains, "n", 25, "The number of chromatin chains to be generated. Rounded to the nearest square.")
	fs.Int64Var(&o.seed, "seed", 0, "Random seed. 0 picks one from the clock.")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.Reason("expected exactly one output file, got %d arguments", fs.NArg()).Err()
	}
	o.outputFile = fs.Arg(0)
	return o, nil
}

func run(ctx context.Context, o *options) error {
	if nn := chain.NearestSquare(o.numChains); nn != o.numChains {
		logging.Infof(ctx, "> Number of chains rounded to nearest square: %d", nn)
		o.numChains = nn
	}

	seed := o.seed
	if seed == 0 {
		seed = clock.Now(ctx).UnixNano()
	}
	logging.Debugf(ctx, "seed %d", seed)

	c, err := chain.NewConfigurator(o.width, o.height, o.numChains, o.chromatinRatio, o.inhibitionProbability, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}
	if err := os.WriteFile(o.outputFile, []byte(c.String()), 0644); err != nil {
		return errors.Annotate(err, "write %s", o.outputFile).Err()
	}
	return nil
}

func main() {
	ctx := gologger.StdConfig.Use(context.Background())

	o, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		errors.Log(ctx, err)
		os.Exit(2)
	}
	if err := run(ctx, o); err != nil {
		errors.Log(ctx, err)
		os.Exit(1)
	}
}

// Command npy2csv converts a results table saved as .npy into CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.chromium.org/luci/common/errors"
	luciflag "go.chromium.org/luci/common/flag"
	"go.chromium.org/luci/common/logging"
	"go.chromium.org/luci/common/logging/gologger"

	"github.com/KyungWonPark/Microemulsion/internal/anal"
	mio "github.com/KyungWonPark/Microemulsion/internal/io"
)

type options struct {
	input  string
	output string
	keys   []string
}

func parseArgs(args []string, errOut io.Writer) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("npy2csv", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprintf(errOut, "usage: npy2csv [options] <results.npy>\n")
		fs.PrintDefaults()
	}
	fs.StringVar(&o.output, "o", "", "Output CSV file. Defaults to the input with a .csv extension.")
	fs.Var(luciflag.CommaList(&o.keys), "keys", "Comma separated column names. Guessed from the column count when empty.")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.Reason("expected exactly one input file, got %d arguments", fs.NArg()).Err()
	}
	o.input = fs.Arg(0)
	if o.output == "" {
		o.output = strings.TrimSuffix(o.input, filepath.Ext(o.input)) + ".csv"
	}
	return o, nil
}

func run(ctx context.Context, o *options) error {
	m, err := mio.NpytoMat64(o.input)
	if err != nil {
		return err
	}
	rows, cols := m.Dims()
	logging.Infof(ctx, "Reading %s complete: %d x %d", o.input, rows, cols)

	keys := o.keys
	if len(keys) == 0 {
		if keys, err = anal.DefaultResultsKeys(cols); err != nil {
			return errors.Annotate(err, "%s: pass -keys", o.input).Err()
		}
	}
	if err := mio.Mat64toCSV(o.output, m, keys); err != nil {
		return err
	}
	logging.Infof(ctx, "Data saved at %s", o.output)
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

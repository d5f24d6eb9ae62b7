package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"github.com/KyungWonPark/Microemulsion/internal/anal"
	"github.com/KyungWonPark/Microemulsion/internal/calc"
	"github.com/KyungWonPark/Microemulsion/internal/snapshot"
)

var cmdBlur = &subcommands.Command{
	UsageLine: "blur <files...> -o <dir> [-b radius]",
	ShortDesc: "Writes blurred copies of snapshots.",
	LongDesc: `Applies the same Gaussian blur the analyses use to every file (patterns
are expanded) and writes the results under -o with the same base names, so
they can be inspected with any image viewer.`,
	CommandRun: func() subcommands.CommandRun {
		c := &blurRun{}
		c.Flags.BoolVar(&c.verbose, "verbose", false, "Log more.")
		c.Flags.IntVar(&c.blurRadius, "b", anal.DefaultBlurRadius, "Size of the Gaussian blur kernel (odd).")
		c.Flags.StringVar(&c.outputDir, "o", "", "Directory to write the blurred images to. (required)")
		c.Flags.IntVar(&c.workers, "j", runtime.NumCPU(), "Number of row workers.")
		return c
	},
}

type blurRun struct {
	subcommands.CommandRunBase
	verbose    bool
	blurRadius int
	outputDir  string
	workers    int
}

func (c *blurRun) ModifyContext(ctx context.Context) context.Context {
	if c.verbose {
		ctx = logging.SetLevel(ctx, logging.Debug)
	}
	return ctx
}

func (c *blurRun) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	if err := c.innerRun(ctx, args, a.GetOut()); err != nil {
		errors.Log(ctx, err)
		return 1
	}
	return 0
}

func (c *blurRun) innerRun(ctx context.Context, args []string, out io.Writer) error {
	if c.outputDir == "" {
		return errors.Reason("no output directory specified (-o)").Err()
	}
	if len(args) == 0 {
		return errors.Reason("no input files").Err()
	}
	files, err := snapshot.ExpandSequence(args)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.outputDir, 0755); err != nil {
		return errors.Annotate(err, "create %s", c.outputDir).Err()
	}

	p := calc.Init(ctx, c.workers, c.verbose)
	for id, f := range files {
		dst := filepath.Join(c.outputDir, filepath.Base(f))
		if same, err := samePath(f, dst); err != nil {
			return err
		} else if same {
			return errors.Reason("refusing to overwrite %s with its blurred copy", f).Err()
		}

		img, err := snapshot.Load(f)
		if err != nil {
			return err
		}
		if err := p.GaussianBlur(img, img, c.blurRadius); err != nil {
			return err
		}
		if err := snapshot.Save(dst, img); err != nil {
			return err
		}
		fmt.Fprintf(out, ">[%d] %s -> %s\n", id, f, dst)
	}
	return nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, errors.Annotate(err, "resolve %s", a).Err()
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, errors.Annotate(err, "resolve %s", b).Err()
	}
	return absA == absB, nil
}

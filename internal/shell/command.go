package shell

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/google/shlex"
	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"
)

// DryRunOutput is what a dry-run command reports on stdout.
const DryRunOutput = "#DryRun#"

// DefaultTimeout bounds commands that do not set their own timeout.
const DefaultTimeout = time.Second

// Runner executes a prepared command and returns its raw output.
type Runner interface {
	Run(ctx context.Context, cmd *exec.Cmd) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands on the local machine.
type ExecRunner struct{}

// Run runs cmd to completion.
func (ExecRunner) Run(ctx context.Context, cmd *exec.Cmd) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Command is a single external command invocation.
type Command struct {
	Args    []string
	Echo    bool
	DryRun  bool
	Timeout time.Duration
}

// Result holds the outcome of a Command.
type Result struct {
	Stdout string
	Stderr string
	Code   int
}

// Parse splits a command line into arguments using shell quoting rules.
func Parse(line string) ([]string, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return nil, errors.Annotate(err, "parse command line %q", line).Err()
	}
	if len(args) == 0 {
		return nil, errors.Reason("parse command line: empty command").Err()
	}
	return args, nil
}

// New parses line and returns an echoing Command.
func New(line string, dryRun bool, timeout time.Duration) (*Command, error) {
	args, err := Parse(line)
	if err != nil {
		return nil, err
	}
	return &Command{Args: args, Echo: true, DryRun: dryRun, Timeout: timeout}, nil
}

// String returns the command line.
func (c *Command) String() string {
	return strings.Join(c.Args, " ")
}

// Run executes the command. A non-zero exit status is reported through
// Result.Code; failing to start or running out of time is an error.
func (c *Command) Run(ctx context.Context, r Runner) (*Result, error) {
	if len(c.Args) == 0 {
		return nil, errors.Reason("run: empty command").Err()
	}
	if c.Echo {
		logging.Infof(ctx, "%s", c)
	}
	if c.DryRun {
		return &Result{Stdout: DryRunOutput}, nil
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Args[0], c.Args[1:]...)
	stdout, stderr, err := r.Run(ctx, cmd)
	res := &Result{
		Stdout: strings.Trim(string(stdout), "\n"),
		Stderr: strings.Trim(string(stderr), "\n"),
	}
	if ctx.Err() == context.DeadlineExceeded {
		return res, errors.Annotate(ctx.Err(), "run `%s`: timed out after %s", c, timeout).Err()
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			res.Code = exitErr.ExitCode()
			return res, nil
		}
		return res, errors.Annotate(err, "run `%s`", c).Err()
	}
	return res, nil
}

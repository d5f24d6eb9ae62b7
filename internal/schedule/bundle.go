package schedule

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.chromium.org/luci/common/clock"
	"go.chromium.org/luci/common/errors"
)

// ThreadsPerBundle is the default number of simulations sharing one job.
const ThreadsPerBundle = 16

// BundleOptions are the batch queue settings of a bundle.
type BundleOptions struct {
	JobNickname       string
	NotifyEvents      string
	Queue             string
	Pmem              string
	JobFilesFolder    string
	SubmitCmd         string
	WrapperExecutable string
}

// DefaultBundleOptions returns the settings used on the cluster.
func DefaultBundleOptions() BundleOptions {
	return BundleOptions{
		JobNickname:       "active-simulation",
		NotifyEvents:      "bea",
		Queue:             "singlenode",
		Pmem:              "1024mb",
		JobFilesFolder:    "Jobs",
		SubmitCmd:         "msub",
		WrapperExecutable: "parbatch-wrapper.sh",
	}
}

// ParbatchBundle groups simulations that run as threads of a single
// single-node batch job.
type ParbatchBundle struct {
	BundleOptions
	EmailAddress  string
	WallTimeHours int
	Simulations   []*Simulation
	Nodes         int
	PPN           int
	JobFileName   string
}

// NewParbatchBundle returns a bundle whose job file name is stamped with the
// current time and seq.
func NewParbatchBundle(ctx context.Context, email string, wallTimeHours int, sims []*Simulation, opts BundleOptions, seq int) *ParbatchBundle {
	now := clock.Now(ctx)
	name := fmt.Sprintf("joblist.%d.%09d.%02d.txt", now.Unix(), now.Nanosecond(), seq)
	return &ParbatchBundle{
		BundleOptions: opts,
		EmailAddress:  email,
		WallTimeHours: wallTimeHours,
		Simulations:   sims,
		Nodes:         1,
		PPN:           len(sims),
		JobFileName:   filepath.Join(opts.JobFilesFolder, name),
	}
}

// JobFileContent returns the job file, one simulation per line.
func (b *ParbatchBundle) JobFileContent() string {
	var sb strings.Builder
	for _, s := range b.Simulations {
		sb.WriteString(s.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteJobFile writes the executable job file, creating its folder if needed.
func (b *ParbatchBundle) WriteJobFile() error {
	if err := os.MkdirAll(filepath.Dir(b.JobFileName), 0755); err != nil {
		return errors.Annotate(err, "write job file: create folder").Err()
	}
	if err := os.WriteFile(b.JobFileName, []byte(b.JobFileContent()), 0755); err != nil {
		return errors.Annotate(err, "write job file %s", b.JobFileName).Err()
	}
	// WriteFile is subject to the umask.
	if err := os.Chmod(b.JobFileName, 0755); err != nil {
		return errors.Annotate(err, "write job file %s", b.JobFileName).Err()
	}
	return nil
}

// DumpJobFileContent prints every simulation of the bundle.
func (b *ParbatchBundle) DumpJobFileContent(w io.Writer) error {
	_, err := io.WriteString(w, b.JobFileContent())
	return err
}

// String renders the submit command of the bundle.
func (b *ParbatchBundle) String() string {
	return fmt.Sprintf("%s "+
		"-m %s -M %s "+
		"-q %s -N %s "+
		"-l pmem=%s,nodes=%d:ppn=%d,walltime=%d:00:00 "+
		"-v SCRIPT_FLAGS=%s "+
		"%s",
		b.SubmitCmd,
		b.NotifyEvents, b.EmailAddress,
		b.Queue, b.JobNickname,
		b.Pmem, b.Nodes, b.PPN, b.WallTimeHours,
		b.JobFileName,
		b.WrapperExecutable)
}

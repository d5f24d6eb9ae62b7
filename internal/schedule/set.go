package schedule

import (
	"context"
	"fmt"
	stdio "io"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.chromium.org/luci/common/errors"
	"go.chromium.org/luci/common/logging"

	"github.com/KyungWonPark/Microemulsion/internal/io"
	"github.com/KyungWonPark/Microemulsion/internal/shell"
)

// SubmitTimeout bounds a single call to the submit command.
const SubmitTimeout = 10 * time.Second

// SimulationSet is the full sweep of control, relaxation and treatment runs
// of one experiment, bundled for submission.
type SimulationSet struct {
	cfg         Config
	simulations []*Simulation
	bundles     []*ParbatchBundle
}

// Submission records the outcome of submitting one bundle.
type Submission struct {
	JobFile     string
	Nickname    string
	Simulations int
	JobID       string
	Code        int
}

// NewSimulationSet generates and bundles every simulation cfg describes.
func NewSimulationSet(ctx context.Context, cfg Config) (*SimulationSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Annotate(err, "new simulation set").Err()
	}
	s := &SimulationSet{cfg: cfg}
	s.generateSimulations()
	s.bundleSimulations(ctx)
	return s, nil
}

// NumSimulations returns the number of generated simulations.
func (s *SimulationSet) NumSimulations() int {
	return len(s.simulations)
}

// NumBundles returns the number of job bundles.
func (s *SimulationSet) NumBundles() int {
	return len(s.bundles)
}

// Simulations returns the simulations ordered by end time.
func (s *SimulationSet) Simulations() []*Simulation {
	return s.simulations
}

// Bundles returns the job bundles.
func (s *SimulationSet) Bundles() []*ParbatchBundle {
	return s.bundles
}

// Schedule writes each bundle's job file, submits it and dumps its content
// to out. Submission failures do not stop the remaining bundles; they are
// returned together.
func (s *SimulationSet) Schedule(ctx context.Context, r shell.Runner, out stdio.Writer) ([]Submission, error) {
	var subs []Submission
	var merr errors.MultiError
	for _, b := range s.bundles {
		sub, err := s.submit(ctx, r, b)
		if err != nil {
			merr = append(merr, errors.Annotate(err, "bundle %s", b.JobNickname).Err())
			continue
		}
		subs = append(subs, sub)
		if err := b.DumpJobFileContent(out); err != nil {
			return subs, errors.Annotate(err, "dump job file").Err()
		}
	}
	if len(merr) > 0 {
		return subs, merr
	}
	return subs, nil
}

func (s *SimulationSet) submit(ctx context.Context, r shell.Runner, b *ParbatchBundle) (Submission, error) {
	if err := b.WriteJobFile(); err != nil {
		return Submission{}, err
	}
	cmd, err := shell.New(b.String(), s.cfg.DryRun, SubmitTimeout)
	if err != nil {
		return Submission{}, err
	}
	res, err := cmd.Run(ctx, r)
	if err != nil {
		return Submission{}, err
	}
	if res.Code != 0 {
		return Submission{}, errors.Reason("submit exited with code %d: %s", res.Code, res.Stderr).Err()
	}
	logging.Debugf(ctx, "submitted %s as %q", b.JobFileName, res.Stdout)
	return Submission{
		JobFile:     b.JobFileName,
		Nickname:    b.JobNickname,
		Simulations: len(b.Simulations),
		JobID:       res.Stdout,
		Code:        res.Code,
	}, nil
}

// WriteSubmissionLog saves subs as a csv file.
func WriteSubmissionLog(path string, subs []Submission) error {
	rows := make([][]string, len(subs))
	for i, sub := range subs {
		rows[i] = []string{sub.JobFile, sub.Nickname, strconv.Itoa(sub.Simulations), sub.JobID, strconv.Itoa(sub.Code)}
	}
	w := io.NewCsvWriter([]string{"JobFile", "Nickname", "Simulations", "JobID", "Code"}, rows)
	return w.Write(path)
}

func (s *SimulationSet) timePoints() []Time {
	var ts []Time
	for t := 1; t <= s.cfg.EndTime; t++ {
		ts = append(ts, IntTime(t))
	}
	for _, t := range s.cfg.AdditionalTreatmentTimes {
		ts = append(ts, FracTime(t+float64(s.cfg.Treatment2EndDelay)))
	}
	return ts
}

func (s *SimulationSet) generateSimulations() {
	folder := "SimSet_" + s.cfg.SimSetName
	for _, endTime := range s.timePoints() {
		if s.cfg.PerformControl {
			s.generateControlRuns(endTime, folder)
		}
		if s.cfg.PerformRelaxations {
			s.generateRelaxationRuns(endTime, folder)
		}
		s.generateTreatmentRuns(endTime, folder)
	}
}

// bundleSimulations sorts by end time so the threads of a bundle finish
// together, then slices the list into bundles.
func (s *SimulationSet) bundleSimulations(ctx context.Context) {
	sort.SliceStable(s.simulations, func(i, j int) bool {
		return s.simulations[i].Less(s.simulations[j])
	})
	n := s.cfg.ThreadsPerBundle
	for i := 0; i < len(s.simulations); i += n {
		j := i + n
		if j > len(s.simulations) {
			j = len(s.simulations)
		}
		sims := s.simulations[i:j]
		opts := s.cfg.bundleOptions()
		opts.JobNickname = fmt.Sprintf("active-microemulsion-T%d", sims[len(sims)-1].EndTime.Int())
		s.bundles = append(s.bundles, NewParbatchBundle(ctx, s.cfg.EmailAddress, s.cfg.WallTimeHours, sims, opts, len(s.bundles)))
	}
}

func (s *SimulationSet) generateTreatmentRuns(endTime Time, folder string) {
	if endTime.Value <= float64(s.cfg.ActivationTime+s.cfg.Treatment2EndDelay) {
		return
	}
	treatmentTime := endTime.Sub(s.cfg.Treatment2EndDelay)
	activationFlags := s.ActivationFlags(treatmentTime)
	for _, treatment := range s.cfg.TreatmentFlags {
		treatmentFlag := ""
		if treatment != "" {
			treatmentFlag = treatment + " " + treatmentTime.String()
		}
		events := fmt.Sprintf("--flavopiridol 0 %s %s", activationFlags, treatmentFlag)
		s.simulations = append(s.simulations, s.newSimulation(folder, events, endTime))
	}
}

func (s *SimulationSet) generateRelaxationRuns(endTime Time, folder string) {
	if endTime.Value > float64(s.cfg.ActivationTime) && endTime.Value <= float64(s.cfg.Treatment2EndDelay) {
		s.simulations = append(s.simulations, s.newSimulation(folder, DefaultEventsOpts, endTime))
	}
}

func (s *SimulationSet) generateControlRuns(endTime Time, folder string) {
	events := fmt.Sprintf("--flavopiridol 0 %s", s.ActivationFlags(endTime))
	s.simulations = append(s.simulations, s.newSimulation(folder, events, endTime))
}

// ActivationFlags returns the activation events to pass to a run reaching t.
// Every flag is followed by a space.
func (s *SimulationSet) ActivationFlags(t Time) string {
	if t.Value <= float64(s.cfg.ActivationTime) {
		return ""
	}
	var sb strings.Builder
	for _, ae := range s.cfg.ActivationEvents {
		fmt.Fprintf(&sb, "%s %d ", ae, s.cfg.ActivationTime)
	}
	return sb.String()
}

func (s *SimulationSet) newSimulation(folder, events string, endTime Time) *Simulation {
	return &Simulation{
		Executable:          s.cfg.Executable,
		Folder:              folder,
		NumThreads:          1,
		Size:                s.cfg.Size,
		ChainGeneratorOpts:  s.cfg.ChainGeneratorOpts,
		StaticOpts:          s.cfg.StaticOpts,
		AdditionalSnapshots: s.cfg.AdditionalSnapshots,
		EventsOpts:          events,
		EndTime:             endTime,
		ExtraSnapshot:       true,
	}
}

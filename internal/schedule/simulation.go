package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// Default simulator invocation settings.
const (
	DefaultExecutable         = "./moab-job.sh"
	DefaultChainGeneratorOpts = "--chain-generator-sparse --chain-generator-I 0.4 --chain-generator-n 25"
	DefaultEventsOpts         = "--flavopiridol 0"
)

// Time is a point on the simulation clock. Integral times come from the
// regular end-time sweep, fractional ones from additional treatment times;
// the simulator receives them as "%d" and "%f" respectively.
type Time struct {
	Value      float64
	Fractional bool
}

// IntTime returns an integral Time.
func IntTime(t int) Time {
	return Time{Value: float64(t)}
}

// FracTime returns a fractional Time.
func FracTime(t float64) Time {
	return Time{Value: t, Fractional: true}
}

// Sub returns t shifted back by d, keeping its kind.
func (t Time) Sub(d int) Time {
	return Time{Value: t.Value - float64(d), Fractional: t.Fractional}
}

// Int truncates t towards zero.
func (t Time) Int() int64 {
	return int64(t.Value)
}

func (t Time) String() string {
	if t.Fractional {
		return strconv.FormatFloat(t.Value, 'f', 6, 64)
	}
	return strconv.FormatInt(t.Int(), 10)
}

// Size is the simulation domain size in cells.
type Size struct {
	W int `yaml:"width"`
	H int `yaml:"height"`
}

// Simulation is one invocation of the simulator.
type Simulation struct {
	Executable          string
	Folder              string
	NumThreads          int
	Size                Size
	ChainGeneratorOpts  string
	StaticOpts          string
	AdditionalSnapshots []float64
	EventsOpts          string
	EndTime             Time
	ExtraSnapshot       bool
}

// NewSimulation returns a single-threaded 100x100 simulation writing to folder.
func NewSimulation(folder string) *Simulation {
	return &Simulation{
		Executable:         DefaultExecutable,
		Folder:             folder,
		NumThreads:         1,
		Size:               Size{W: 100, H: 100},
		ChainGeneratorOpts: DefaultChainGeneratorOpts,
		EventsOpts:         DefaultEventsOpts,
		EndTime:            IntTime(1),
	}
}

// String renders the job file line running the simulation.
func (s *Simulation) String() string {
	return fmt.Sprintf("hostname; %s --job-folder-name %s --threads %d -W %d -H %d "+
		"%s %s --additional-snapshots %s "+
		"%s -E %s -T %s",
		s.Executable, s.Folder, s.NumThreads, s.Size.W, s.Size.H,
		s.ChainGeneratorOpts, s.StaticOpts, joinSnapshots(s.AdditionalSnapshots),
		s.EventsOpts, s.EndTime, s.EndTime)
}

// Less orders simulations by end time.
func (s *Simulation) Less(o *Simulation) bool {
	return s.EndTime.Value < o.EndTime.Value
}

// Equal reports whether both simulations run the same command.
func (s *Simulation) Equal(o *Simulation) bool {
	return s.String() == o.String()
}

func joinSnapshots(snaps []float64) string {
	parts := make([]string, len(snaps))
	for i, x := range snaps {
		parts[i] = strconv.FormatFloat(x, 'f', -1, 64)
	}
	return strings.Join(parts, " ")
}

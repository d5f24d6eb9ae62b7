package schedule

import (
	"bytes"
	"os"

	"github.com/caarlos0/env/v11"
	"go.chromium.org/luci/common/errors"
	"gopkg.in/yaml.v3"
)

// Env holds the site-wide defaults taken from the environment.
type Env struct {
	EmailAddress      string `env:"SIMSET_EMAIL"`
	SubmitCmd         string `env:"SIMSET_SUBMIT_CMD" envDefault:"msub"`
	JobFilesFolder    string `env:"SIMSET_JOBS_DIR"   envDefault:"Jobs"`
	Executable        string `env:"SIMSET_EXECUTABLE" envDefault:"./moab-job.sh"`
	WrapperExecutable string `env:"SIMSET_WRAPPER"    envDefault:"parbatch-wrapper.sh"`
	Queue             string `env:"SIMSET_QUEUE"      envDefault:"singlenode"`
}

// LoadEnv reads Env from the process environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, errors.Annotate(err, "parse env").Err()
	}
	return e, nil
}

// Config describes a simulation set.
type Config struct {
	EmailAddress             string    `yaml:"email_address"`
	WallTimeHours            int       `yaml:"wall_time_hours"`
	SimSetName               string    `yaml:"sim_set_name"`
	EndTime                  int       `yaml:"end_time"`
	NotifyEvents             string    `yaml:"notify_events"`
	Size                     Size      `yaml:"size"`
	ChainGeneratorOpts       string    `yaml:"chain_generator_opts"`
	StaticOpts               string    `yaml:"static_opts"`
	AdditionalSnapshots      []float64 `yaml:"additional_snapshots"`
	ActivationTime           int       `yaml:"activation_time"`
	ActivationEvents         []string  `yaml:"activation_events"`
	TreatmentFlags           []string  `yaml:"treatment_flags"`
	AdditionalTreatmentTimes []float64 `yaml:"additional_treatment_times"`
	PerformControl           bool      `yaml:"perform_control"`
	PerformRelaxations       bool      `yaml:"perform_additional_relaxations"`
	Treatment2EndDelay       int       `yaml:"treatment_to_end_delay"`
	DryRun                   bool      `yaml:"dry_run"`
	ThreadsPerBundle         int       `yaml:"threads_per_bundle"`
	Executable               string    `yaml:"executable"`
	Queue                    string    `yaml:"queue"`
	Pmem                     string    `yaml:"pmem"`
	JobFilesFolder           string    `yaml:"job_files_folder"`
	SubmitCmd                string    `yaml:"submit_cmd"`
	WrapperExecutable        string    `yaml:"parbatch_wrapper_executable"`
}

// DefaultConfig returns a Config with every optional field at its default.
func DefaultConfig(e Env) Config {
	bo := DefaultBundleOptions()
	if e.SubmitCmd != "" {
		bo.SubmitCmd = e.SubmitCmd
	}
	if e.JobFilesFolder != "" {
		bo.JobFilesFolder = e.JobFilesFolder
	}
	if e.WrapperExecutable != "" {
		bo.WrapperExecutable = e.WrapperExecutable
	}
	if e.Queue != "" {
		bo.Queue = e.Queue
	}
	exe := DefaultExecutable
	if e.Executable != "" {
		exe = e.Executable
	}
	return Config{
		EmailAddress:       e.EmailAddress,
		NotifyEvents:       bo.NotifyEvents,
		Size:               Size{W: 100, H: 100},
		ChainGeneratorOpts: DefaultChainGeneratorOpts,
		ActivationEvents:   []string{"--txn-spike", "--activate"},
		TreatmentFlags:     []string{"--flavopiridol", "--actinomycin-D"},
		PerformControl:     true,
		PerformRelaxations: true,
		Treatment2EndDelay: 30,
		ThreadsPerBundle:   ThreadsPerBundle,
		Executable:         exe,
		Queue:              bo.Queue,
		Pmem:               bo.Pmem,
		JobFilesFolder:     bo.JobFilesFolder,
		SubmitCmd:          bo.SubmitCmd,
		WrapperExecutable:  bo.WrapperExecutable,
	}
}

// ParseConfig overlays the YAML document data on top of base.
func ParseConfig(data []byte, base Config) (Config, error) {
	cfg := base
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.Annotate(err, "parse config").Err()
	}
	return cfg, cfg.Validate()
}

// LoadConfig reads and validates the simulation set description at path.
func LoadConfig(path string) (Config, error) {
	e, err := LoadEnv()
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Annotate(err, "load config").Err()
	}
	cfg, err := ParseConfig(data, DefaultConfig(e))
	if err != nil {
		return Config{}, errors.Annotate(err, "load config %s", path).Err()
	}
	return cfg, nil
}

// Validate checks the configuration for values the generator cannot use.
func (c *Config) Validate() error {
	switch {
	case c.EmailAddress == "":
		return errors.Reason("email_address is required").Err()
	case c.SimSetName == "":
		return errors.Reason("sim_set_name is required").Err()
	case c.WallTimeHours <= 0:
		return errors.Reason("wall_time_hours must be positive, got %d", c.WallTimeHours).Err()
	case c.EndTime < 0:
		return errors.Reason("end_time must not be negative, got %d", c.EndTime).Err()
	case c.Treatment2EndDelay < 0:
		return errors.Reason("treatment_to_end_delay must not be negative, got %d", c.Treatment2EndDelay).Err()
	case c.Size.W <= 0 || c.Size.H <= 0:
		return errors.Reason("size must be positive, got %dx%d", c.Size.W, c.Size.H).Err()
	case c.ThreadsPerBundle <= 0:
		return errors.Reason("threads_per_bundle must be positive, got %d", c.ThreadsPerBundle).Err()
	case c.EndTime == 0 && len(c.AdditionalTreatmentTimes) == 0:
		return errors.Reason("no time points: set end_time or additional_treatment_times").Err()
	}
	return nil
}

func (c *Config) bundleOptions() BundleOptions {
	return BundleOptions{
		NotifyEvents:      c.NotifyEvents,
		Queue:             c.Queue,
		Pmem:              c.Pmem,
		JobFilesFolder:    c.JobFilesFolder,
		SubmitCmd:         c.SubmitCmd,
		WrapperExecutable: c.WrapperExecutable,
	}
}

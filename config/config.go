package config

import (
	"encoding/json"
	"math"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/uyouii/density-estimation/common"
	"github.com/uyouii/density-estimation/distribution"
	"github.com/uyouii/density-estimation/kde"
)

type Experiment struct {
	Dist   string    `json:"dist"`
	Params []float64 `json:"params"`
}

// KernelCoefficients is either {"sqrt_linspace": [start, stop, count]},
// giving sqrt of count linearly spaced values, or {"values": [...]}.
type KernelCoefficients struct {
	SqrtLinspace []float64 `json:"sqrt_linspace,omitempty"`
	Values       []float64 `json:"values,omitempty"`
}

// Expand returns the multi-scale coefficients xi.
func (c *KernelCoefficients) Expand() ([]float64, error) {
	if c == nil {
		return []float64{1}, nil
	}
	if len(c.SqrtLinspace) > 0 && len(c.Values) > 0 {
		return nil, common.InvalidParameterf("kernel_coefficients: set either sqrt_linspace or values, not both")
	}
	if len(c.Values) > 0 {
		return append([]float64(nil), c.Values...), nil
	}
	if len(c.SqrtLinspace) == 0 {
		return nil, common.InvalidParameterf("kernel_coefficients: empty")
	}
	if len(c.SqrtLinspace) != 3 {
		return nil, common.InvalidParameterf("kernel_coefficients: sqrt_linspace needs [start, stop, count], got %v", c.SqrtLinspace)
	}

	start, stop, count := c.SqrtLinspace[0], c.SqrtLinspace[1], c.SqrtLinspace[2]
	if count < 1 || count != math.Trunc(count) {
		return nil, common.InvalidParameterf("kernel_coefficients: sqrt_linspace count must be a positive integer, got %v", count)
	}
	num := int(count)
	if num == 1 {
		return []float64{math.Sqrt(start)}, nil
	}
	step := (stop - start) / float64(num-1)
	res := make([]float64, num)
	for i := range res {
		res[i] = math.Sqrt(start + float64(i)*step)
	}
	return res, nil
}

// seed of the throwaway samplers built while validating experiments
var validationSeed uint64

type Config struct {
	SampleSize int      `json:"sample_size"`
	HExponent  *float64 `json:"h_exponent"`
	H          *float64 `json:"h"`
	PilotH     *float64 `json:"pilot_h"`
	Gamma      *float64 `json:"gamma"`

	PluginCorrection bool `json:"plugin_correction"`

	KernelCoefficients *KernelCoefficients `json:"kernel_coefficients"`
	MKDEWeights        kde.Weighting       `json:"mkde_weights"`
	MKDEDegree         int                 `json:"mkde_degree"`
	MKDERidge          float64             `json:"mkde_ridge"`

	Reps       int     `json:"reps"`
	GridPoints int     `json:"grid_points"`
	GridMin    float64 `json:"grid_min"`
	GridMax    float64 `json:"grid_max"`
	// nil means non-deterministic
	Seed *uint64 `json:"seed"`

	Workers      int `json:"workers"`
	MemoryBudget int `json:"memory_budget"`

	Experiments []Experiment `json:"experiments"`

	RawDir string `json:"raw_dir"`
	FigDir string `json:"fig_dir"`
	Plot   bool   `json:"plot"`
}

func Default() *Config {
	hExponent := kde.DefaultHExponent
	gamma := kde.DefaultGamma
	seed := uint64(1337)
	return &Config{
		SampleSize: 100,
		HExponent:  &hExponent,
		Gamma:      &gamma,
		KernelCoefficients: &KernelCoefficients{
			SqrtLinspace: []float64{1, 4, 4},
		},
		MKDEWeights: kde.UniformWeighting,
		Reps:        1,
		GridPoints:  400,
		GridMin:     -4,
		GridMax:     4,
		Seed:        &seed,
		Experiments: []Experiment{
			{Dist: "normal", Params: []float64{0, 1}},
		},
		RawDir: "results/raw/",
		FigDir: "results/figures/",
	}
}

// Load reads a json config file. Options missing from the file keep their
// Default() values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	// json would merge into the default coefficients and experiments instead of replacing them
	defaultCoefficients, defaultExperiments := cfg.KernelCoefficients, cfg.Experiments
	cfg.KernelCoefficients, cfg.Experiments = nil, nil
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	if cfg.KernelCoefficients == nil {
		cfg.KernelCoefficients = defaultCoefficients
	}
	if cfg.Experiments == nil {
		cfg.Experiments = defaultExperiments
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SampleSize < 1 {
		return common.InvalidParameterf("sample_size must be at least 1, got %d", c.SampleSize)
	}
	if c.HExponent == nil && c.H == nil {
		return common.InvalidParameterf("one of h_exponent or h is required")
	}
	if c.Reps < 1 {
		return common.InvalidParameterf("reps must be at least 1, got %d", c.Reps)
	}
	if c.GridPoints < 2 {
		return common.InvalidParameterf("grid_points must be at least 2, got %d", c.GridPoints)
	}
	if !(c.GridMin < c.GridMax) {
		return common.InvalidParameterf("grid range [%v, %v] is empty", c.GridMin, c.GridMax)
	}
	if c.Workers < 0 {
		return common.InvalidParameterf("workers must be non-negative, got %d", c.Workers)
	}
	if len(c.Experiments) == 0 {
		return common.InvalidParameterf("no experiments configured")
	}
	for i, e := range c.Experiments {
		if e.Dist == "" {
			return common.InvalidParameterf("experiment %d has no dist", i)
		}
		// unknown names and wrong parameter counts fail here instead of in every job
		if _, err := distribution.New(e.Dist, e.Params, &validationSeed); err != nil {
			return errors.Wrapf(err, "experiment %d", i)
		}
	}
	switch c.MKDEWeights {
	case "", kde.UniformWeighting, kde.VarianceWeighting:
	default:
		return common.InvalidParameterf("unknown mkde_weights %q", c.MKDEWeights)
	}

	// surface estimator parameter errors before any experiment runs
	kdeCfg, err := c.KDEConfig()
	if err != nil {
		return err
	}
	if _, err := kde.ResolveBandwidth(c.SampleSize, kdeCfg.HExponent, kdeCfg.H); err != nil {
		return err
	}
	if _, err := kde.MultiScaleWeights(kdeCfg.Coefficients, kdeCfg.Weighting, kdeCfg.Degree, kdeCfg.Ridge); err != nil {
		return err
	}
	return nil
}

// KDEConfig converts the options into the estimator configuration.
func (c *Config) KDEConfig() (kde.Config, error) {
	cfg := kde.DefaultConfig()
	if c.HExponent != nil {
		cfg.HExponent = *c.HExponent
	}
	cfg.H = c.H
	cfg.PilotH = c.PilotH
	if c.Gamma != nil {
		cfg.Gamma = *c.Gamma
	}
	cfg.PluginCorrection = c.PluginCorrection

	coefficients, err := c.KernelCoefficients.Expand()
	if err != nil {
		return cfg, err
	}
	cfg.Coefficients = coefficients
	if c.MKDEWeights != "" {
		cfg.Weighting = c.MKDEWeights
	}
	cfg.Degree = c.MKDEDegree
	cfg.Ridge = c.MKDERidge
	cfg.MemoryBudget = c.MemoryBudget
	return cfg, nil
}

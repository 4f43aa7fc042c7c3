package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/density-estimation/common"
	"github.com/uyouii/density-estimation/kde"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	kdeCfg, err := cfg.KDEConfig()
	require.NoError(t, err)
	assert.Equal(t, kde.DefaultHExponent, kdeCfg.HExponent)
	assert.Equal(t, kde.DefaultGamma, kdeCfg.Gamma)
	assert.Equal(t, kde.UniformWeighting, kdeCfg.Weighting)
	require.Len(t, kdeCfg.Coefficients, 4)
	for i, want := range []float64{1, math.Sqrt2, math.Sqrt(3), 2} {
		assert.InDelta(t, want, kdeCfg.Coefficients[i], 1e-12)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`{
		"sample_size": 250,
		"h": 0.3,
		"gamma": 0.7,
		"kernel_coefficients": {"values": [1, 2]},
		"mkde_weights": "variance",
		"reps": 3,
		"seed": null,
		"experiments": [
			{"dist": "beta", "params": [2, 5]},
			{"dist": "bimodal", "params": [-2, 2, 0.5, 1, 0.3]}
		]
	}`))
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.SampleSize)
	require.NotNil(t, cfg.H)
	assert.Equal(t, 0.3, *cfg.H)
	assert.Nil(t, cfg.Seed)
	assert.Equal(t, 3, cfg.Reps)
	assert.Len(t, cfg.Experiments, 2)
	// untouched options keep their defaults
	assert.Equal(t, 400, cfg.GridPoints)
	assert.Equal(t, -4.0, cfg.GridMin)

	// the file replaces the default coefficients rather than merging into them
	assert.Nil(t, cfg.KernelCoefficients.SqrtLinspace)

	kdeCfg, err := cfg.KDEConfig()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, kdeCfg.Coefficients)
	assert.Equal(t, kde.VarianceWeighting, kdeCfg.Weighting)
	assert.Equal(t, 0.7, kdeCfg.Gamma)
	require.NotNil(t, kdeCfg.H)
	assert.Equal(t, 0.3, *kdeCfg.H)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sample_size": 20, "workers": 2}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.SampleSize)
	assert.Equal(t, 2, cfg.Workers)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(1337), *cfg.Seed)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"sample_size": "many"}`))
	assert.Error(t, err)
}

func TestKernelCoefficientsExpand(t *testing.T) {
	xi, err := (&KernelCoefficients{SqrtLinspace: []float64{1, 9, 2}}).Expand()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, xi)

	xi, err = (&KernelCoefficients{SqrtLinspace: []float64{4, 4, 1}}).Expand()
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, xi)

	xi, err = (*KernelCoefficients)(nil).Expand()
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, xi)

	for _, c := range []*KernelCoefficients{
		{},
		{SqrtLinspace: []float64{1, 4, 4}, Values: []float64{1}},
		{SqrtLinspace: []float64{1, 4}},
		{SqrtLinspace: []float64{1, 4, 2.5}},
		{SqrtLinspace: []float64{1, 4, 0}},
	} {
		_, err := c.Expand()
		assert.True(t, errors.Is(err, common.ErrorInvalidParameter), "%+v err=%v", c, err)
	}
}

func TestValidateInvalid(t *testing.T) {
	for name, data := range map[string]string{
		"sample size":       `{"sample_size": 0}`,
		"no bandwidth":      `{"h_exponent": null}`,
		"negative h":        `{"h": -1}`,
		"reps":              `{"reps": 0}`,
		"grid points":       `{"grid_points": 1}`,
		"grid range":        `{"grid_min": 1, "grid_max": 1}`,
		"workers":           `{"workers": -1}`,
		"no experiments":    `{"experiments": []}`,
		"experiment dist":   `{"experiments": [{"params": [0, 1]}]}`,
		"weighting":         `{"mkde_weights": "median"}`,
		"coefficients":      `{"kernel_coefficients": {"values": [1, -1]}}`,
		"both coefficients": `{"kernel_coefficients": {"values": [1], "sqrt_linspace": [1, 4, 4]}}`,
	} {
		_, err := Parse([]byte(data))
		assert.True(t, errors.Is(err, common.ErrorInvalidParameter), "%s: err=%v", name, err)
	}
}

func TestParseExperimentsReplaceDefault(t *testing.T) {
	cfg, err := Parse([]byte(`{"experiments": [{"dist": "beta", "params": [2, 5]}]}`))
	require.NoError(t, err)
	assert.Equal(t, []Experiment{{Dist: "beta", Params: []float64{2, 5}}}, cfg.Experiments)

	cfg, err = Parse([]byte(`{"sample_size": 30}`))
	require.NoError(t, err)
	assert.Equal(t, Default().Experiments, cfg.Experiments)

	for name, data := range map[string]string{
		"missing params":     `{"experiments": [{"dist": "beta"}]}`,
		"wrong param count":  `{"experiments": [{"dist": "bimodal", "params": [0, 1]}]}`,
		"unknown dist":       `{"experiments": [{"dist": "cauchy", "params": [0, 1]}]}`,
		"invalid parameters": `{"experiments": [{"dist": "normal", "params": [0, -1]}]}`,
	} {
		_, err := Parse([]byte(data))
		assert.True(t, errors.Is(err, common.ErrorInvalidValue), "%s: err=%v", name, err)
	}
}

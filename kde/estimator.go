package kde

import (
	"context"

	"github.com/uyouii/density-estimation/common"
	"github.com/uyouii/density-estimation/model"
)

// Estimator is a density estimator fitted to exactly one sample.
// The set of implementations is closed: StandardEstimator, PluginEstimator,
// AdaptiveEstimator and MultiScaleEstimator.
type Estimator interface {
	Method() model.Method
	// Bandwidth is the base bandwidth the estimator was fitted with.
	Bandwidth() float64
	// Evaluate is deterministic for a fixed estimator and grid.
	Evaluate(ctx context.Context, grid *model.Grid) (*model.DensityEstimate, error)
	Diagnostics() Diagnostics

	sealed()
}

// Diagnostics reports the epsilon floors applied while fitting. Floors are
// recoverable, they are surfaced here instead of failing the fit.
type Diagnostics struct {
	FlooredPilots  int
	FlooredLambdas int
}

func (d Diagnostics) Warned() bool {
	return d.FlooredPilots > 0 || d.FlooredLambdas > 0
}

type Weighting string

const (
	UniformWeighting  Weighting = "uniform"
	VarianceWeighting Weighting = "variance"
)

type Config struct {
	HExponent float64
	// H overrides N^(-HExponent) when set
	H *float64

	// adaptive only: pilot bandwidth (defaults to the base bandwidth) and sensitivity
	PilotH *float64
	Gamma  float64

	// plug-in only: use K - K''/2 instead of K
	PluginCorrection bool

	// multi-scale only
	Coefficients []float64
	Weighting    Weighting
	// number of bias constraints for VarianceWeighting, 0 means len(Coefficients)
	Degree int
	Ridge  float64

	// cells of the evaluation chunk buffer, 0 means DefaultMemoryBudget
	MemoryBudget int
}

func DefaultConfig() Config {
	return Config{
		HExponent:    DefaultHExponent,
		Gamma:        DefaultGamma,
		Coefficients: []float64{1},
		Weighting:    UniformWeighting,
	}
}

func sampleValues(sample *model.Sample) ([]float64, error) {
	if sample.Len() == 0 {
		return nil, common.InvalidValuef("sample is empty")
	}
	return sample.Values(), nil
}

package kde

import (
	"context"

	"github.com/uyouii/density-estimation/model"
)

// MultiScaleEstimator combines K standard estimates of the same sample with
// bandwidths h_k = h * xi_k (multiplied, never divided) as
// f(x) = sum_k w_k f_k(x). The weights come from MultiScaleWeights and depend
// on xi only. The combination is clipped at zero since variance weights can
// be negative.
//
// Bias and variance of the combination are measured, not assumed.
type MultiScaleEstimator struct {
	h            float64
	coefficients []float64
	weights      []float64
	components   []*StandardEstimator
}

func NewMultiScaleEstimator(sample *model.Sample, cfg Config) (*MultiScaleEstimator, error) {
	xs, err := sampleValues(sample)
	if err != nil {
		return nil, err
	}
	h, err := ResolveBandwidth(len(xs), cfg.HExponent, cfg.H)
	if err != nil {
		return nil, err
	}
	weights, err := MultiScaleWeights(cfg.Coefficients, cfg.Weighting, cfg.Degree, cfg.Ridge)
	if err != nil {
		return nil, err
	}

	coefficients := make([]float64, len(cfg.Coefficients))
	copy(coefficients, cfg.Coefficients)

	// the components only read xs, they share it
	evaluator := NewEvaluator(NewGaussianKernel(), cfg.MemoryBudget)
	components := make([]*StandardEstimator, 0, len(coefficients))
	for _, xi := range coefficients {
		components = append(components, newStandardEstimator(xs, h*xi, evaluator))
	}

	return &MultiScaleEstimator{
		h:            h,
		coefficients: coefficients,
		weights:      weights,
		components:   components,
	}, nil
}

func (e *MultiScaleEstimator) Method() model.Method {
	return model.MethodMKDE
}

func (e *MultiScaleEstimator) Bandwidth() float64 {
	return e.h
}

func (e *MultiScaleEstimator) Weights() []float64 {
	res := make([]float64, len(e.weights))
	copy(res, e.weights)
	return res
}

// ComponentBandwidths returns h * xi_k for every component.
func (e *MultiScaleEstimator) ComponentBandwidths() []float64 {
	res := make([]float64, 0, len(e.components))
	for _, c := range e.components {
		res = append(res, c.Bandwidth())
	}
	return res
}

func (e *MultiScaleEstimator) Evaluate(ctx context.Context, grid *model.Grid) (*model.DensityEstimate, error) {
	dens := make([]float64, grid.Len())
	for k, component := range e.components {
		componentDens, err := component.evaluate(ctx, grid)
		if err != nil {
			return nil, err
		}
		w := e.weights[k]
		for i, v := range componentDens {
			dens[i] += w * v
		}
	}
	clipNegative(dens)
	return model.NewDensityEstimate(grid, dens), nil
}

func (e *MultiScaleEstimator) Diagnostics() Diagnostics {
	return Diagnostics{}
}

func (e *MultiScaleEstimator) sealed() {}

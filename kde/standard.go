package kde

import (
	"context"

	"github.com/uyouii/density-estimation/model"
)

// fixedBandwidth is the single global bandwidth fit shared by the standard,
// plug-in and multi-scale component estimators.
type fixedBandwidth struct {
	xs        []float64
	h         float64
	evaluator *Evaluator
}

func (f *fixedBandwidth) evaluate(ctx context.Context, grid *model.Grid) ([]float64, error) {
	return f.evaluator.Evaluate(ctx, grid, f.xs, GlobalBandwidth(f.h))
}

// StandardEstimator: f(x) = 1/(N*h) * sum_i K((x - X_i)/h)
type StandardEstimator struct {
	fixedBandwidth
}

func NewStandardEstimator(sample *model.Sample, cfg Config) (*StandardEstimator, error) {
	xs, err := sampleValues(sample)
	if err != nil {
		return nil, err
	}
	h, err := ResolveBandwidth(len(xs), cfg.HExponent, cfg.H)
	if err != nil {
		return nil, err
	}
	return newStandardEstimator(xs, h, NewEvaluator(NewGaussianKernel(), cfg.MemoryBudget)), nil
}

func newStandardEstimator(xs []float64, h float64, evaluator *Evaluator) *StandardEstimator {
	return &StandardEstimator{
		fixedBandwidth: fixedBandwidth{
			xs:        xs,
			h:         h,
			evaluator: evaluator,
		},
	}
}

func (s *StandardEstimator) Method() model.Method {
	return model.MethodKDE
}

func (s *StandardEstimator) Bandwidth() float64 {
	return s.h
}

func (s *StandardEstimator) Evaluate(ctx context.Context, grid *model.Grid) (*model.DensityEstimate, error) {
	dens, err := s.evaluate(ctx, grid)
	if err != nil {
		return nil, err
	}
	return model.NewDensityEstimate(grid, dens), nil
}

func (s *StandardEstimator) Diagnostics() Diagnostics {
	return Diagnostics{}
}

func (s *StandardEstimator) sealed() {}

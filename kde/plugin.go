package kde

import (
	"context"

	"github.com/uyouii/density-estimation/common"
	"github.com/uyouii/density-estimation/model"
)

// PluginEstimator picks its bandwidth from the data with the normal reference
// rule and ignores the configured exponent and override.
type PluginEstimator struct {
	fixedBandwidth
	corrected bool
}

func NewPluginEstimator(sample *model.Sample, cfg Config) (*PluginEstimator, error) {
	xs, err := sampleValues(sample)
	if err != nil {
		return nil, err
	}

	gaussian := NewGaussianKernel()
	h := NewNormalReferenceBandWidth(gaussian).BandWidth(xs)
	if !isPositive(h) {
		return nil, common.DegenerateInputf("plug-in bandwidth %v: sample of size %d has no dispersion", h, len(xs))
	}

	var kernel Kernel = gaussian
	if cfg.PluginCorrection {
		kernel = NewBiasCorrectedKernel()
	}

	return &PluginEstimator{
		fixedBandwidth: fixedBandwidth{
			xs:        xs,
			h:         h,
			evaluator: NewEvaluator(kernel, cfg.MemoryBudget),
		},
		corrected: cfg.PluginCorrection,
	}, nil
}

func (p *PluginEstimator) Method() model.Method {
	return model.MethodDDE
}

func (p *PluginEstimator) Bandwidth() float64 {
	return p.h
}

func (p *PluginEstimator) Evaluate(ctx context.Context, grid *model.Grid) (*model.DensityEstimate, error) {
	dens, err := p.evaluate(ctx, grid)
	if err != nil {
		return nil, err
	}
	if p.corrected {
		// the corrected kernel has negative lobes
		clipNegative(dens)
	}
	return model.NewDensityEstimate(grid, dens), nil
}

func (p *PluginEstimator) Diagnostics() Diagnostics {
	return Diagnostics{}
}

func (p *PluginEstimator) sealed() {}

package kde

import (
	"context"
	"math"

	"github.com/uyouii/density-estimation/common"
	"github.com/uyouii/density-estimation/model"
	"gonum.org/v1/gonum/stat"
)

// AdaptiveEstimator widens the kernel of points in sparse regions and narrows
// it in dense ones: point i uses bandwidth h * lambda_i with
// lambda_i = (g(X_i) / G)^(-gamma), g a pilot estimate and G its geometric mean.
//
// Fitting costs O(N^2) and runs once. The local bandwidths are cached, so every
// Evaluate costs O(M*N) and never touches the pilot again.
type AdaptiveEstimator struct {
	xs     []float64
	h      float64
	pilotH float64
	gamma  float64

	pilots  []float64 // floored pilot density at every sample point
	geoMean float64
	lambdas []float64
	localH  []float64 // h * lambdas

	diagnostics Diagnostics
	evaluator   *Evaluator
}

func NewAdaptiveEstimator(ctx context.Context, sample *model.Sample, cfg Config) (*AdaptiveEstimator, error) {
	xs, err := sampleValues(sample)
	if err != nil {
		return nil, err
	}
	h, err := ResolveBandwidth(len(xs), cfg.HExponent, cfg.H)
	if err != nil {
		return nil, err
	}

	pilotH := h
	if cfg.PilotH != nil {
		if !isPositive(*cfg.PilotH) {
			return nil, common.InvalidParameterf("pilot bandwidth must be positive, got %v", *cfg.PilotH)
		}
		pilotH = *cfg.PilotH
	}
	if !isFinite(cfg.Gamma) || cfg.Gamma < 0 {
		return nil, common.InvalidParameterf("gamma must be finite and non-negative, got %v", cfg.Gamma)
	}

	a := &AdaptiveEstimator{
		xs:        xs,
		h:         h,
		pilotH:    pilotH,
		gamma:     cfg.Gamma,
		evaluator: NewEvaluator(NewGaussianKernel(), cfg.MemoryBudget),
	}
	if err := a.fit(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *AdaptiveEstimator) fit(ctx context.Context) error {
	n := len(a.xs)

	// 1. pilot density at every sample point, the evaluation points are the sample itself
	pilots, err := a.evaluator.evaluatePoints(ctx, a.xs, a.xs, GlobalBandwidth(a.pilotH))
	if err != nil {
		return err
	}

	// 2. floor the pilots so the geometric mean and the ratios stay finite
	for i := range pilots {
		if !(pilots[i] >= DensityFloor) {
			pilots[i] = DensityFloor
			a.diagnostics.FlooredPilots++
		}
	}
	if a.diagnostics.FlooredPilots == n {
		return common.DegenerateInputf("all %d pilot densities collapsed below %v with pilot bandwidth %v",
			n, DensityFloor, a.pilotH)
	}

	// 3. geometric mean
	geoMean := stat.GeometricMean(pilots, nil)
	if !isFinite(geoMean) || geoMean < DensityFloor {
		return common.DegenerateInputf("geometric mean of pilot densities is %v", geoMean)
	}

	// 4. local bandwidth factors
	lambdas := make([]float64, n)
	localH := make([]float64, n)
	for i, g := range pilots {
		lambda := math.Pow(g/geoMean, -a.gamma)
		if !(lambda >= LambdaFloor) {
			lambda = LambdaFloor
			a.diagnostics.FlooredLambdas++
		}
		localH[i] = a.h * lambda
		if !isPositive(localH[i]) {
			return common.DegenerateInputf("local bandwidth %v at sample index %d", localH[i], i)
		}
		lambdas[i] = lambda
	}

	// 5. cache
	a.pilots = pilots
	a.geoMean = geoMean
	a.lambdas = lambdas
	a.localH = localH
	return nil
}

func (a *AdaptiveEstimator) Method() model.Method {
	return model.MethodAKDE
}

func (a *AdaptiveEstimator) Bandwidth() float64 {
	return a.h
}

func (a *AdaptiveEstimator) PilotBandwidth() float64 {
	return a.pilotH
}

func (a *AdaptiveEstimator) GeometricMean() float64 {
	return a.geoMean
}

// Lambdas returns a copy of the cached local bandwidth factors.
func (a *AdaptiveEstimator) Lambdas() []float64 {
	res := make([]float64, len(a.lambdas))
	copy(res, a.lambdas)
	return res
}

// PilotDensities returns a copy of the floored pilot densities.
func (a *AdaptiveEstimator) PilotDensities() []float64 {
	res := make([]float64, len(a.pilots))
	copy(res, a.pilots)
	return res
}

func (a *AdaptiveEstimator) Evaluate(ctx context.Context, grid *model.Grid) (*model.DensityEstimate, error) {
	dens, err := a.evaluator.Evaluate(ctx, grid, a.xs, LocalBandwidth(a.localH))
	if err != nil {
		return nil, err
	}
	return model.NewDensityEstimate(grid, dens), nil
}

func (a *AdaptiveEstimator) Diagnostics() Diagnostics {
	return a.diagnostics
}

func (a *AdaptiveEstimator) sealed() {}

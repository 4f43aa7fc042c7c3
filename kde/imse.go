package kde

import (
	"github.com/uyouii/density-estimation/common"
	"github.com/uyouii/density-estimation/model"
	"gonum.org/v1/gonum/floats"
)

// IMSE approximates the integrated squared error between an estimate and the
// true density on the same grid as sum((estimate - truth)^2) * spacing.
func IMSE(estimate, truth []float64, spacing float64) (float64, error) {
	if len(estimate) == 0 {
		return 0, common.InvalidValuef("estimate is empty")
	}
	if len(estimate) != len(truth) {
		return 0, common.InvalidValuef("estimate has %d points, true density has %d", len(estimate), len(truth))
	}
	if !isPositive(spacing) {
		return 0, common.InvalidParameterf("grid spacing must be positive, got %v", spacing)
	}
	for i, v := range truth {
		if !isFinite(v) {
			return 0, common.InvalidValuef("true density %v at grid index %d is not finite", v, i)
		}
	}
	diff := make([]float64, len(estimate))
	floats.SubTo(diff, estimate, truth)
	return floats.Dot(diff, diff) * spacing, nil
}

// Score is IMSE with the spacing of the estimate's grid.
func Score(estimate *model.DensityEstimate, truth []float64) (float64, error) {
	if estimate == nil || estimate.Grid == nil {
		return 0, common.InvalidValuef("estimate has no grid")
	}
	return IMSE(estimate.Values, truth, estimate.Grid.Spacing())
}

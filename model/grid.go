package model

import (
	"math"

	"github.com/uyouii/density-estimation/common"
	"gonum.org/v1/gonum/floats"
)

// Grid is the set of points an estimate is evaluated on, plus the spacing used
// to turn sums over the grid into integrals. A grid is shared read-only between
// every estimator that is compared on it.
type Grid struct {
	points  []float64
	spacing float64
}

// NewUniformGrid returns num equally spaced points over [lower, upper].
func NewUniformGrid(lower, upper float64, num int) (*Grid, error) {
	if num < 2 {
		return nil, common.InvalidParameterf("grid needs at least 2 points, got %d", num)
	}
	if !isFinite(lower) || !isFinite(upper) || lower >= upper {
		return nil, common.InvalidParameterf("invalid grid range [%v, %v]", lower, upper)
	}
	points := floats.Span(make([]float64, num), lower, upper)
	return &Grid{
		points:  points,
		spacing: (upper - lower) / float64(num-1),
	}, nil
}

// NewGrid builds a grid from explicit points.
func NewGrid(points []float64, spacing float64) (*Grid, error) {
	if len(points) == 0 {
		return nil, common.InvalidValuef("grid is empty")
	}
	if !isFinite(spacing) || spacing <= 0 {
		return nil, common.InvalidParameterf("grid spacing must be positive, got %v", spacing)
	}
	res := make([]float64, len(points))
	for i, x := range points {
		if !isFinite(x) {
			return nil, common.InvalidValuef("grid point %v at index %d is not finite", x, i)
		}
		res[i] = x
	}
	return &Grid{points: res, spacing: spacing}, nil
}

func (g *Grid) Len() int {
	if g == nil {
		return 0
	}
	return len(g.points)
}

func (g *Grid) At(i int) float64 {
	return g.points[i]
}

func (g *Grid) Spacing() float64 {
	return g.spacing
}

func (g *Grid) Lower() float64 {
	return g.points[0]
}

func (g *Grid) Upper() float64 {
	return g.points[len(g.points)-1]
}

// Points returns a copy of the grid points.
func (g *Grid) Points() []float64 {
	res := make([]float64, len(g.points))
	copy(res, g.points)
	return res
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

package kde

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uyouii/density-estimation/distribution"
	"github.com/uyouii/density-estimation/model"
)

func normalSample(t *testing.T, seed uint64, n int) *model.Sample {
	t.Helper()
	sampler, err := distribution.New(distribution.Normal, []float64{0, 1}, &seed)
	require.NoError(t, err)
	sample, err := sampler.Sample(n)
	require.NoError(t, err)
	return sample
}

// the grid of the reference scenario: 400 points over [-4, 4]
func scenarioGrid(t *testing.T) *model.Grid {
	t.Helper()
	grid, err := model.NewUniformGrid(-4, 4, 400)
	require.NoError(t, err)
	return grid
}

func testContext() context.Context {
	return context.Background()
}

func float64Ptr(v float64) *float64 {
	return &v
}

// direct O(M*N) evaluation without chunking
func naiveDensity(points, xs []float64, h float64) []float64 {
	res := make([]float64, len(points))
	for i, x := range points {
		sum := 0.0
		for _, xj := range xs {
			u := (x - xj) / h
			sum += math.Exp(-u*u/2) / math.Sqrt(2*math.Pi)
		}
		res[i] = sum / (float64(len(xs)) * h)
	}
	return res
}

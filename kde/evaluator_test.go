package kde

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/density-estimation/common"
)

func TestEvaluatorMatchesNaiveSum(t *testing.T) {
	sample := normalSample(t, 42, 100)
	grid := scenarioGrid(t)
	h := 0.4

	dens, err := NewEvaluator(nil, 0).Evaluate(testContext(), grid, sample.Values(), GlobalBandwidth(h))
	require.NoError(t, err)

	want := naiveDensity(grid.Points(), sample.Values(), h)
	require.Len(t, dens, len(want))
	for i := range want {
		assert.InDelta(t, want[i], dens[i], 1e-12, "grid index %d", i)
	}
}

func TestEvaluatorChunkingDoesNotChangeResult(t *testing.T) {
	sample := normalSample(t, 42, 257)
	grid := scenarioGrid(t)
	xs := sample.Values()

	local := make([]float64, len(xs))
	for i := range local {
		local[i] = 0.2 + 0.01*float64(i%7)
	}

	for _, bw := range []Bandwidth{GlobalBandwidth(0.35), LocalBandwidth(local)} {
		reference, err := NewEvaluator(nil, 0).Evaluate(testContext(), grid, xs, bw)
		require.NoError(t, err)

		// budgets below N still process one row at a time
		for _, budget := range []int{1, 257, 1000, 257 * 13, 257 * 400, 1 << 30} {
			evaluator := NewEvaluator(nil, budget)
			dens, err := evaluator.Evaluate(testContext(), grid, xs, bw)
			require.NoError(t, err)
			assert.Equal(t, reference, dens, "budget %d, chunk %d", budget, evaluator.ChunkSize(len(xs)))
		}
	}
}

func TestEvaluatorChunkSize(t *testing.T) {
	evaluator := NewEvaluator(nil, 1000)
	assert.Equal(t, 10, evaluator.ChunkSize(100))
	assert.Equal(t, 1, evaluator.ChunkSize(5000))
	assert.Equal(t, DefaultMemoryBudget/100, NewEvaluator(nil, 0).ChunkSize(100))
}

func TestEvaluatorRejectsBadInput(t *testing.T) {
	grid := scenarioGrid(t)
	evaluator := NewEvaluator(nil, 0)

	_, err := evaluator.Evaluate(testContext(), grid, nil, GlobalBandwidth(1))
	assert.True(t, errors.Is(err, common.ErrorInvalidValue), "err=%v", err)

	_, err = evaluator.Evaluate(testContext(), grid, []float64{1, 2}, GlobalBandwidth(0))
	assert.True(t, errors.Is(err, common.ErrorInvalidParameter), "err=%v", err)

	_, err = evaluator.Evaluate(testContext(), grid, []float64{1, 2}, LocalBandwidth([]float64{1}))
	assert.True(t, errors.Is(err, common.ErrorInvalidValue), "err=%v", err)

	_, err = evaluator.Evaluate(testContext(), grid, []float64{1, 2}, LocalBandwidth([]float64{1, -1}))
	assert.True(t, errors.Is(err, common.ErrorInvalidParameter), "err=%v", err)
}

func TestEvaluatorStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dens, err := NewEvaluator(nil, 10).Evaluate(ctx, scenarioGrid(t), []float64{0, 1}, GlobalBandwidth(1))
	assert.Nil(t, dens)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluatorFarPointsGiveZero(t *testing.T) {
	grid := scenarioGrid(t)
	dens, err := NewEvaluator(nil, 0).Evaluate(testContext(), grid, []float64{1e6}, GlobalBandwidth(0.1))
	require.NoError(t, err)
	for _, v := range dens {
		assert.Equal(t, 0.0, v)
	}
}

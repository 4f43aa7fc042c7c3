package kde

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/density-estimation/common"
	"github.com/uyouii/density-estimation/model"
	"gonum.org/v1/gonum/stat"
)

func TestAdaptiveWithoutSensitivityIsStandard(t *testing.T) {
	sample := normalSample(t, 1337, 100)
	grid := scenarioGrid(t)

	cfg := DefaultConfig()
	cfg.Gamma = 0

	adaptive, err := NewAdaptiveEstimator(testContext(), sample, cfg)
	require.NoError(t, err)
	for _, lambda := range adaptive.Lambdas() {
		assert.Equal(t, 1.0, lambda)
	}

	standard, err := NewStandardEstimator(sample, cfg)
	require.NoError(t, err)
	assert.Equal(t, standard.Bandwidth(), adaptive.Bandwidth())

	a, err := adaptive.Evaluate(testContext(), grid)
	require.NoError(t, err)
	s, err := standard.Evaluate(testContext(), grid)
	require.NoError(t, err)
	assert.Equal(t, s.Values, a.Values)
}

func TestAdaptiveEstimator(t *testing.T) {
	sample := normalSample(t, 1337, 100)
	grid := scenarioGrid(t)

	adaptive, err := NewAdaptiveEstimator(testContext(), sample, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, model.MethodAKDE, adaptive.Method())
	assert.Equal(t, adaptive.Bandwidth(), adaptive.PilotBandwidth())
	assert.False(t, adaptive.Diagnostics().Warned())

	lambdas := adaptive.Lambdas()
	require.Len(t, lambdas, sample.Len())
	for _, lambda := range lambdas {
		assert.Greater(t, lambda, 0.0)
	}
	// lambda_i^(-1/gamma) = g_i / G, so the lambdas have geometric mean 1
	assert.InDelta(t, 1, stat.GeometricMean(lambdas, nil), 1e-9)

	// sparse points get wider kernels
	values := sample.Values()
	widest, narrowest := 0, 0
	for i := range lambdas {
		if lambdas[i] > lambdas[widest] {
			widest = i
		}
		if lambdas[i] < lambdas[narrowest] {
			narrowest = i
		}
	}
	assert.Greater(t, math.Abs(values[widest]), math.Abs(values[narrowest]))

	estimate, err := adaptive.Evaluate(testContext(), grid)
	require.NoError(t, err)
	assert.InDelta(t, 1, estimate.Integral(), 0.02)
	for _, v := range estimate.Values {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestAdaptivePilotIsStandardAtSamplePoints(t *testing.T) {
	sample := normalSample(t, 5, 150)

	cfg := DefaultConfig()
	cfg.PilotH = float64Ptr(0.3)
	adaptive, err := NewAdaptiveEstimator(testContext(), sample, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0.3, adaptive.PilotBandwidth())

	cfg.H = float64Ptr(0.3)
	standard, err := NewStandardEstimator(sample, cfg)
	require.NoError(t, err)
	samplePoints, err := model.NewGrid(sample.Values(), 1)
	require.NoError(t, err)
	pilot, err := standard.Evaluate(testContext(), samplePoints)
	require.NoError(t, err)

	assert.Equal(t, pilot.Values, adaptive.PilotDensities())
	assert.InDelta(t, stat.GeometricMean(pilot.Values, nil), adaptive.GeometricMean(), 1e-15)
}

func TestAdaptiveCacheSurvivesEvaluation(t *testing.T) {
	sample := normalSample(t, 11, 80)
	adaptive, err := NewAdaptiveEstimator(testContext(), sample, DefaultConfig())
	require.NoError(t, err)

	lambdas := adaptive.Lambdas()
	pilots := adaptive.PilotDensities()

	// the fitted state does not depend on any grid
	for _, m := range []int{2, 50, 1000} {
		grid, err := model.NewUniformGrid(-5, 5, m)
		require.NoError(t, err)
		estimate, err := adaptive.Evaluate(testContext(), grid)
		require.NoError(t, err)
		assert.Len(t, estimate.Values, m)
	}
	assert.Equal(t, lambdas, adaptive.Lambdas())
	assert.Equal(t, pilots, adaptive.PilotDensities())

	// copies are handed out
	lambdas[0] = -1
	assert.NotEqual(t, lambdas[0], adaptive.Lambdas()[0])
}

func TestAdaptiveDegenerateInput(t *testing.T) {
	sample, err := model.NewSample([]float64{0, 1, 2})
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.PilotH = float64Ptr(1e12)
	_, err = NewAdaptiveEstimator(testContext(), sample, cfg)
	assert.True(t, errors.Is(err, common.ErrorDegenerateInput), "err=%v", err)
}

func TestAdaptiveFloorsAreReported(t *testing.T) {
	// with a very wide pilot the isolated point drops below the floor, the pair does not
	sample, err := model.NewSample([]float64{0, 0, 1e11})
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.PilotH = float64Ptr(2e9)
	adaptive, err := NewAdaptiveEstimator(testContext(), sample, cfg)
	require.NoError(t, err)

	diagnostics := adaptive.Diagnostics()
	assert.True(t, diagnostics.Warned())
	assert.Equal(t, 1, diagnostics.FlooredPilots)
	assert.Equal(t, DensityFloor, adaptive.PilotDensities()[2])

	lambdas := adaptive.Lambdas()
	assert.Greater(t, lambdas[2], lambdas[0])
}

func TestAdaptiveInvalidParameters(t *testing.T) {
	sample := normalSample(t, 3, 20)

	cfg := DefaultConfig()
	cfg.Gamma = -0.5
	_, err := NewAdaptiveEstimator(testContext(), sample, cfg)
	assert.True(t, errors.Is(err, common.ErrorInvalidParameter), "err=%v", err)

	cfg = DefaultConfig()
	cfg.PilotH = float64Ptr(0)
	_, err = NewAdaptiveEstimator(testContext(), sample, cfg)
	assert.True(t, errors.Is(err, common.ErrorInvalidParameter), "err=%v", err)

	cfg = DefaultConfig()
	cfg.Gamma = math.NaN()
	_, err = NewAdaptiveEstimator(testContext(), sample, cfg)
	assert.True(t, errors.Is(err, common.ErrorInvalidParameter), "err=%v", err)
}

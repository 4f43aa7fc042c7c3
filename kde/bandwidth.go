package kde

import (
	"math"
	"sort"

	"github.com/uyouii/density-estimation/common"
	"gonum.org/v1/gonum/stat"
)

// ResolveBandwidth returns override when it is set, otherwise n^(-exponent).
func ResolveBandwidth(n int, exponent float64, override *float64) (float64, error) {
	if n < 1 {
		return 0, common.InvalidParameterf("sample size must be at least 1, got %d", n)
	}
	if !isFinite(exponent) {
		return 0, common.InvalidParameterf("bandwidth exponent must be finite, got %v", exponent)
	}
	if override != nil {
		if !isPositive(*override) {
			return 0, common.InvalidParameterf("bandwidth override must be positive, got %v", *override)
		}
		return *override, nil
	}
	h := math.Pow(float64(n), -exponent)
	if !isPositive(h) {
		return 0, common.InvalidParameterf("bandwidth %d^(-%v) is out of range", n, exponent)
	}
	return h, nil
}

// Bandwidth is either one global value or one value per sample point.
type Bandwidth struct {
	global float64
	local  []float64
}

func GlobalBandwidth(h float64) Bandwidth {
	return Bandwidth{global: h}
}

func LocalBandwidth(hs []float64) Bandwidth {
	return Bandwidth{local: hs}
}

func (b Bandwidth) IsLocal() bool {
	return b.local != nil
}

func (b Bandwidth) At(i int) float64 {
	if b.local != nil {
		return b.local[i]
	}
	return b.global
}

func (b Bandwidth) validate(n int) error {
	if b.local == nil {
		if !isPositive(b.global) {
			return common.InvalidParameterf("bandwidth must be positive, got %v", b.global)
		}
		return nil
	}
	if len(b.local) != n {
		return common.InvalidValuef("got %d local bandwidths for %d sample points", len(b.local), n)
	}
	for i, h := range b.local {
		if !isPositive(h) {
			return common.InvalidParameterf("local bandwidth %v at index %d must be positive", h, i)
		}
	}
	return nil
}

type BandWidth interface {
	BandWidth([]float64) float64
}

// NormalReferenceBandWidth is the plug-in rule C * min(std, iqr/1.349) * n^(-1/5).
// It only depends on the data.
type NormalReferenceBandWidth struct {
	kernel Kernel
}

func NewNormalReferenceBandWidth(kernel Kernel) *NormalReferenceBandWidth {
	if kernel == nil {
		kernel = NewGaussianKernel()
	}
	return &NormalReferenceBandWidth{
		kernel: kernel,
	}
}

func (bw *NormalReferenceBandWidth) BandWidth(x []float64) float64 {
	C := bw.kernel.NormalReferenceConstant()
	A := selectSigma(x)
	n := len(x)
	return C * A * math.Pow(float64(n), -0.2)
}

func selectSigma(x []float64) float64 {
	normalize := 1.349

	// stat.Quantile needs sorted input
	sorted := make([]float64, len(x))
	copy(sorted, x)
	sort.Float64s(sorted)

	q75 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
	q25 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	iqr := (q75 - q25) / normalize

	stdDev := stat.StdDev(sorted, nil)

	if iqr > 0 {
		if stdDev < iqr {
			return stdDev
		}
		return iqr
	}
	return stdDev
}

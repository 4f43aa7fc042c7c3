package kde

import (
	"math"
)

type Kernel interface {
	Shape(u float64) float64
	NormalReferenceConstant() float64
}

// 1 / sqrt(2 * pi)
const invSqrt2Pi = 0.3989422804014327

type GaussianKernel struct {
	l2Norm                  float64
	kernelVar               float64
	order                   int
	normalReferenceConstant float64
}

func NewGaussianKernel() *GaussianKernel {
	return &GaussianKernel{
		l2Norm:    1.0 / (2.0 * math.Sqrt(math.Pi)),
		kernelVar: 1.0,
		order:     2,
	}
}

// Shape returns exp(-u^2/2)/sqrt(2*pi). Arguments far in the tail give exactly 0.
func (k *GaussianKernel) Shape(u float64) float64 {
	e := -u * u / 2.0
	if e < minExpArg {
		return 0
	}
	return invSqrt2Pi * math.Exp(e)
}

// Derivative is K'(u) = -u * K(u).
func (k *GaussianKernel) Derivative(u float64) float64 {
	s := k.Shape(u)
	if s == 0 {
		return 0
	}
	return -u * s
}

// SecondDerivative is K''(u) = (u^2 - 1) * K(u).
func (k *GaussianKernel) SecondDerivative(u float64) float64 {
	s := k.Shape(u)
	if s == 0 {
		return 0
	}
	return (u*u - 1) * s
}

func (k *GaussianKernel) NormalReferenceConstant() float64 {
	nu := k.order
	if k.normalReferenceConstant == 0 {
		numerator := math.Pow(math.Pi, 0.5) * math.Pow(factorial(nu), 3) * k.l2Norm
		denom := 2.0 * float64(nu) * factorial(2*nu) * math.Pow(k.Moments(nu), 2)
		C := 2 * math.Pow(numerator/denom, 1.0/float64(2*nu+1))
		k.normalReferenceConstant = C
	}
	return k.normalReferenceConstant
}

func (k *GaussianKernel) Moments(n int) float64 {
	if n == 1 {
		return 0
	}
	if n == 2 {
		return k.kernelVar
	}
	return 1.0
}

// BiasCorrectedKernel is K(u) - K''(u)/2. It still integrates to 1 but goes
// negative for |u| > sqrt(3), so estimates built on it have to be clipped.
type BiasCorrectedKernel struct {
	base *GaussianKernel
}

func NewBiasCorrectedKernel() *BiasCorrectedKernel {
	return &BiasCorrectedKernel{base: NewGaussianKernel()}
}

func (k *BiasCorrectedKernel) Shape(u float64) float64 {
	return k.base.Shape(u) - 0.5*k.base.SecondDerivative(u)
}

func (k *BiasCorrectedKernel) NormalReferenceConstant() float64 {
	return k.base.NormalReferenceConstant()
}

// applyKernel overwrites every scaled distance in row with its kernel value.
func applyKernel(kernel Kernel, row []float64) {
	for j := range row {
		row[j] = kernel.Shape(row[j])
	}
}

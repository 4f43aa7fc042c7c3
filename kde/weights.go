package kde

import (
	"math"

	"github.com/uyouii/density-estimation/common"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// covGaussian is the covariance between two Gaussian kernels of bandwidths h1 and h2.
func covGaussian(h1, h2 float64) float64 {
	return 1 / math.Sqrt(2*math.Pi*(h1*h1+h2*h2))
}

// MultiScaleWeights returns the combination weights for the coefficients xi.
// They depend on xi alone, never on a sample, and always sum to 1.
//
// UniformWeighting gives 1/K each. VarianceWeighting solves
//
//	c = B^-1 X (X^T B^-1 X)^-1 e1
//
// with B_ij = cov(xi_i, xi_j) + ridge*I and X_ij = xi_i^(2j), j < degree: the
// minimum variance combination whose leading degree-1 bias terms vanish. Those
// weights may be negative.
func MultiScaleWeights(xi []float64, weighting Weighting, degree int, ridge float64) ([]float64, error) {
	if err := validateCoefficients(xi); err != nil {
		return nil, err
	}
	k := len(xi)

	switch weighting {
	case UniformWeighting, "":
		weights := make([]float64, k)
		for i := range weights {
			weights[i] = 1 / float64(k)
		}
		return weights, nil
	case VarianceWeighting:
		c, err := varianceCoefficients(xi, degree, ridge)
		if err != nil {
			return nil, err
		}
		sum := floats.Sum(c)
		if !isFinite(sum) || math.Abs(sum) < 1e-12 {
			return nil, common.InvalidParameterf("variance weights for %v do not normalize, sum %v", xi, sum)
		}
		for i := range c {
			c[i] /= sum
		}
		return c, nil
	default:
		return nil, common.InvalidParameterf("unknown weighting %q", weighting)
	}
}

// MultiScaleVariance is c^T B c for the variance weights of xi, the factor the
// asymptotic variance of the combined estimate is scaled by.
func MultiScaleVariance(xi []float64, degree int, ridge float64) (float64, error) {
	c, err := MultiScaleWeights(xi, VarianceWeighting, degree, ridge)
	if err != nil {
		return 0, err
	}
	b := gramMatrix(xi, 0)
	cv := mat.NewVecDense(len(c), c)
	return mat.Inner(cv, b, cv), nil
}

func validateCoefficients(xi []float64) error {
	if len(xi) == 0 {
		return common.InvalidParameterf("no kernel coefficients")
	}
	for i, v := range xi {
		if !isPositive(v) {
			return common.InvalidParameterf("kernel coefficient %v at index %d must be positive", v, i)
		}
	}
	return nil
}

func gramMatrix(xi []float64, ridge float64) *mat.SymDense {
	k := len(xi)
	b := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			v := covGaussian(xi[i], xi[j])
			if i == j {
				v += ridge
			}
			b.SetSym(i, j, v)
		}
	}
	return b
}

func varianceCoefficients(xi []float64, degree int, ridge float64) ([]float64, error) {
	k := len(xi)
	if degree == 0 {
		degree = k
	}
	if degree < 1 || degree > k {
		return nil, common.InvalidParameterf("degree must be in [1, %d], got %d", k, degree)
	}
	if !isFinite(ridge) || ridge < 0 {
		return nil, common.InvalidParameterf("ridge must be non-negative, got %v", ridge)
	}

	bInv, err := invertSymmetric(gramMatrix(xi, ridge))
	if err != nil {
		return nil, err
	}

	// polynomial features xi^0, xi^2, ..., xi^(2*(degree-1))
	x := mat.NewDense(k, degree, nil)
	for i := 0; i < k; i++ {
		for j := 0; j < degree; j++ {
			x.Set(i, j, math.Pow(xi[i], float64(2*j)))
		}
	}

	var bInvX mat.Dense
	bInvX.Mul(bInv, x)

	var xtBInvX mat.Dense
	xtBInvX.Mul(x.T(), &bInvX)

	m, err := invertSymmetric(symmetrize(&xtBInvX))
	if err != nil {
		return nil, err
	}

	// first column of M
	m0 := mat.NewVecDense(degree, mat.Col(nil, 0, m))
	var c mat.VecDense
	c.MulVec(&bInvX, m0)
	return mat.Col(nil, 0, &c), nil
}

// invertSymmetric inverts a through its eigen decomposition V diag(1/l) V^T.
func invertSymmetric(a *mat.SymDense) (*mat.SymDense, error) {
	var eig mat.EigenSym
	if ok := eig.Factorize(a, true); !ok {
		return nil, common.InvalidParameterf("eigen decomposition failed")
	}
	values := eig.Values(nil)

	largest := 0.0
	for _, v := range values {
		largest = math.Max(largest, math.Abs(v))
	}
	for _, v := range values {
		if math.Abs(v) <= 1e-14*largest || largest == 0 {
			return nil, common.InvalidParameterf("matrix is singular and cannot be inverted, eigenvalues %v", values)
		}
	}

	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	n := a.SymmetricDim()
	var scaled mat.Dense
	scaled.CloneFrom(&vectors)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			scaled.Set(i, j, scaled.At(i, j)/values[j])
		}
	}

	var inv mat.Dense
	inv.Mul(&scaled, vectors.T())
	return symmetrize(&inv), nil
}

func symmetrize(a *mat.Dense) *mat.SymDense {
	n, _ := a.Dims()
	res := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			res.SetSym(i, j, (a.At(i, j)+a.At(j, i))/2)
		}
	}
	return res
}

package distribution

import (
	"math"
	"strings"
	"time"

	"github.com/uyouii/density-estimation/common"
	"github.com/uyouii/density-estimation/model"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	Normal  = "normal"
	F       = "f"
	Beta    = "beta"
	Bimodal = "bimodal"
)

// points of the Gauss-Legendre rule used by GridMass
const gridMassNodes = 200

type probFunc interface {
	Prob(x float64) float64
	Rand() float64
}

// Sampler draws i.i.d. samples from one distribution family and evaluates its
// true density. A sampler owns its random source, two samplers built with the
// same seed produce the same samples.
type Sampler struct {
	name   string
	params []float64
	seed   uint64

	components []probFunc
	// mixture weight of components[0], only used by bimodal
	p float64
}

// New builds a sampler. params are
//
//	normal:  [mean, sd]
//	f:       [dfn, dfd]
//	beta:    [a, b]
//	bimodal: [mu1, mu2, s1, s2, p]
//
// A nil seed draws one from the clock.
func New(name string, params []float64, seed *uint64) (*Sampler, error) {
	name = strings.ToLower(name)

	s := &Sampler{
		name:   name,
		params: append([]float64(nil), params...),
	}
	if seed != nil {
		s.seed = *seed
	} else {
		s.seed = uint64(time.Now().UnixNano())
	}
	src := rand.NewSource(s.seed)

	switch name {
	case Normal:
		if err := checkParams(name, params, 2); err != nil {
			return nil, err
		}
		if params[1] <= 0 {
			return nil, common.InvalidValuef("normal sd must be positive, got %v", params[1])
		}
		s.components = []probFunc{distuv.Normal{Mu: params[0], Sigma: params[1], Src: src}}
	case F:
		if err := checkParams(name, params, 2); err != nil {
			return nil, err
		}
		if params[0] <= 0 || params[1] <= 0 {
			return nil, common.InvalidValuef("f degrees of freedom must be positive, got %v", params)
		}
		s.components = []probFunc{distuv.F{D1: params[0], D2: params[1], Src: src}}
	case Beta:
		if err := checkParams(name, params, 2); err != nil {
			return nil, err
		}
		if params[0] <= 0 || params[1] <= 0 {
			return nil, common.InvalidValuef("beta shape parameters must be positive, got %v", params)
		}
		s.components = []probFunc{distuv.Beta{Alpha: params[0], Beta: params[1], Src: src}}
	case Bimodal:
		if err := checkParams(name, params, 5); err != nil {
			return nil, err
		}
		mu1, mu2, s1, s2, p := params[0], params[1], params[2], params[3], params[4]
		if s1 <= 0 || s2 <= 0 {
			return nil, common.InvalidValuef("bimodal sds must be positive, got %v, %v", s1, s2)
		}
		if p < 0 || p > 1 {
			return nil, common.InvalidValuef("bimodal weight must be in [0, 1], got %v", p)
		}
		s.components = []probFunc{
			distuv.Normal{Mu: mu1, Sigma: s1, Src: src},
			distuv.Normal{Mu: mu2, Sigma: s2, Src: src},
		}
		s.p = p
	default:
		return nil, common.InvalidValuef("unknown distribution type: %s", name)
	}
	return s, nil
}

func checkParams(name string, params []float64, want int) error {
	if len(params) != want {
		return common.InvalidValuef("%s distribution requires %d parameters, you gave %d", name, want, len(params))
	}
	return nil
}

func (s *Sampler) Name() string {
	return s.name
}

func (s *Sampler) Params() []float64 {
	return append([]float64(nil), s.params...)
}

func (s *Sampler) Seed() uint64 {
	return s.seed
}

// Sample draws n points. For bimodal the first int(n*p) come from the first
// component and the rest from the second.
func (s *Sampler) Sample(n int) (*model.Sample, error) {
	if n < 1 {
		return nil, common.InvalidParameterf("sample size must be at least 1, got %d", n)
	}
	xs := make([]float64, n)
	if s.name == Bimodal {
		n1 := int(float64(n) * s.p)
		for i := 0; i < n; i++ {
			if i < n1 {
				xs[i] = s.components[0].Rand()
			} else {
				xs[i] = s.components[1].Rand()
			}
		}
	} else {
		for i := range xs {
			xs[i] = s.components[0].Rand()
		}
	}
	return model.NewSample(xs)
}

// PDF is the true density at x. The f density with dfn < 2 is +Inf at 0.
func (s *Sampler) PDF(x float64) float64 {
	switch s.name {
	case Bimodal:
		return s.p*s.components[0].Prob(x) + (1-s.p)*s.components[1].Prob(x)
	case F:
		if x < 0 {
			return 0
		}
		if x == 0 {
			// limit at the origin, dfn < 2 is a pole
			switch d1 := s.params[0]; {
			case d1 < 2:
				return math.Inf(1)
			case d1 == 2:
				return 1
			default:
				return 0
			}
		}
	case Beta:
		if x < 0 || x > 1 {
			return 0
		}
	}
	return s.components[0].Prob(x)
}

// PDFGrid evaluates the true density on every grid point.
func (s *Sampler) PDFGrid(grid *model.Grid) []float64 {
	res := make([]float64, grid.Len())
	for i := range res {
		res[i] = s.PDF(grid.At(i))
	}
	return res
}

// GridMass is the probability the distribution puts on [grid.Lower(), grid.Upper()].
// Anything well below 1 means the grid truncates the density and the IMSE misses part of it.
func (s *Sampler) GridMass(grid *model.Grid) float64 {
	return quad.Fixed(s.PDF, grid.Lower(), grid.Upper(), gridMassNodes, nil, 0)
}

package model

import (
	"math"

	"github.com/uyouii/density-estimation/common"
)

// Sample is an immutable set of i.i.d. observations.
type Sample struct {
	values []float64
}

// NewSample copies xs, the caller may reuse its slice afterwards.
func NewSample(xs []float64) (*Sample, error) {
	if len(xs) == 0 {
		return nil, common.InvalidValuef("sample is empty")
	}
	values := make([]float64, len(xs))
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, common.InvalidValuef("sample value %v at index %d is not finite", x, i)
		}
		values[i] = x
	}
	return &Sample{values: values}, nil
}

func (s *Sample) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values)
}

func (s *Sample) At(i int) float64 {
	return s.values[i]
}

// Values returns a copy of the observations.
func (s *Sample) Values() []float64 {
	res := make([]float64, len(s.values))
	copy(res, s.values)
	return res
}

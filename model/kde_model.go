package model

import (
	"gonum.org/v1/gonum/floats"
)

type Density struct {
	X     float64
	Value float64
}

type Cdf struct {
	X     float64
	Value float64
}

type QuantileValue struct {
	Value    float64 `json:"v,omitempty"`
	Quantile float64 `json:"q,omitempty"`
}

// DensityEstimate holds one estimated density value per grid point.
type DensityEstimate struct {
	Grid   *Grid
	Values []float64
}

func NewDensityEstimate(grid *Grid, values []float64) *DensityEstimate {
	return &DensityEstimate{
		Grid:   grid,
		Values: values,
	}
}

// Integral approximates the integral of the estimate as sum(values) * spacing.
func (e *DensityEstimate) Integral() float64 {
	if e == nil || len(e.Values) == 0 {
		return 0
	}
	return floats.Sum(e.Values) * e.Grid.Spacing()
}

func (e *DensityEstimate) Points() []Density {
	res := make([]Density, 0, len(e.Values))
	for i, v := range e.Values {
		res = append(res, Density{
			X:     e.Grid.At(i),
			Value: v,
		})
	}
	return res
}

// Cdf accumulates the estimate with the trapezoid rule, starting from 0 at the
// first grid point.
func (e *DensityEstimate) Cdf() []Cdf {
	if e == nil || len(e.Values) == 0 {
		return nil
	}
	res := make([]Cdf, 0, len(e.Values))
	res = append(res, Cdf{X: e.Grid.At(0), Value: 0})

	var cumSum float64
	for i := 1; i < len(e.Values); i++ {
		width := e.Grid.At(i) - e.Grid.At(i-1)
		cumSum += (e.Values[i-1] + e.Values[i]) * width / 2
		res = append(res, Cdf{
			X:     e.Grid.At(i),
			Value: cumSum,
		})
	}
	return res
}

// Quantile interpolates linearly between the two cdf points around p.
func (e *DensityEstimate) Quantile(p float64) *QuantileValue {
	cdf := e.Cdf()
	if len(cdf) == 0 {
		return nil
	}

	if p <= cdf[0].Value {
		return &QuantileValue{Quantile: p, Value: cdf[0].X}
	}
	if p >= cdf[len(cdf)-1].Value {
		return &QuantileValue{Quantile: p, Value: cdf[len(cdf)-1].X}
	}

	for i := 1; i < len(cdf); i++ {
		if cdf[i].Value > p {
			lowerX, lowerP := cdf[i-1].X, cdf[i-1].Value
			upperX, upperP := cdf[i].X, cdf[i].Value
			value := lowerX + (upperX-lowerX)*(p-lowerP)/(upperP-lowerP)
			return &QuantileValue{Quantile: p, Value: value}
		}
	}
	return &QuantileValue{Quantile: p, Value: cdf[len(cdf)-1].X}
}

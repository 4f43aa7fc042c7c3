package model

import (
	"fmt"
	"time"
)

// Method names one of the four estimators being compared.
type Method string

const (
	MethodKDE  Method = "KDE"
	MethodDDE  Method = "DDE"
	MethodAKDE Method = "AKDE"
	MethodMKDE Method = "MKDE"
)

var AllMethods = []Method{MethodKDE, MethodDDE, MethodAKDE, MethodMKDE}

// ExperimentResult is one IMSE score: a distribution, a repetition and a method.
type ExperimentResult struct {
	Distribution string        `json:"distribution"`
	Params       []float64     `json:"params"`
	Rep          int           `json:"rep"`
	Seed         uint64        `json:"seed"`
	Method       Method        `json:"method"`
	Bandwidth    float64       `json:"bandwidth"`
	IMSE         float64       `json:"imse"`
	Integral     float64       `json:"integral"`
	Warnings     int           `json:"warnings,omitempty"`
	BuildTime    time.Duration `json:"build_time,omitempty"`
	EvalTime     time.Duration `json:"eval_time,omitempty"`
}

func (r *ExperimentResult) Key() string {
	return fmt.Sprintf("%s(%v)", r.Distribution, r.Params)
}

// MethodSummary aggregates the IMSE of one method over repetitions.
type MethodSummary struct {
	Distribution string    `json:"distribution"`
	Params       []float64 `json:"params"`
	Method       Method    `json:"method"`
	Reps         int       `json:"reps"`
	MeanIMSE     float64   `json:"mean_imse"`
	StdIMSE      float64   `json:"std_imse"`
	MinIMSE      float64   `json:"min_imse"`
	MaxIMSE      float64   `json:"max_imse"`
}

package experiment

import (
	"math"
	"time"

	"github.com/uyouii/density-estimation/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summarize aggregates the IMSE per distribution and method, in the order the
// pairs first appear in results.
func Summarize(results []model.ExperimentResult) []model.MethodSummary {
	type key struct {
		dist   string
		method model.Method
	}
	order := []key{}
	groups := map[key][]model.ExperimentResult{}
	for _, r := range results {
		k := key{dist: r.Key(), method: r.Method}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	summaries := make([]model.MethodSummary, 0, len(order))
	for _, k := range order {
		group := groups[k]
		imses := make([]float64, len(group))
		for i, r := range group {
			imses[i] = r.IMSE
		}
		mean, std := stat.MeanStdDev(imses, nil)
		if math.IsNaN(std) {
			// a single repetition
			std = 0
		}
		summaries = append(summaries, model.MethodSummary{
			Distribution: group[0].Distribution,
			Params:       group[0].Params,
			Method:       k.method,
			Reps:         len(group),
			MeanIMSE:     mean,
			StdIMSE:      std,
			MinIMSE:      floats.Min(imses),
			MaxIMSE:      floats.Max(imses),
		})
	}
	return summaries
}

// StageTimes totals the build and evaluation time of every method.
func StageTimes(results []model.ExperimentResult) map[string]time.Duration {
	res := map[string]time.Duration{}
	for _, r := range results {
		res[string(r.Method)+"_build"] += r.BuildTime
		res[string(r.Method)+"_eval"] += r.EvalTime
	}
	return res
}

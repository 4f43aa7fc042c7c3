package experiment

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/uyouii/density-estimation/common"
	"github.com/uyouii/density-estimation/config"
	"github.com/uyouii/density-estimation/distribution"
	"github.com/uyouii/density-estimation/kde"
	"github.com/uyouii/density-estimation/model"
	"github.com/uyouii/density-estimation/utils"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// spreads the per-job seeds derived from the configured seed
const seedStride = 1_000_003

// below this the grid misses a visible part of the true density
const minGridMass = 0.99

type builder struct {
	method model.Method
	build  func(ctx context.Context, sample *model.Sample, cfg kde.Config) (kde.Estimator, error)
}

var builders = []builder{
	{model.MethodKDE, func(_ context.Context, s *model.Sample, cfg kde.Config) (kde.Estimator, error) {
		return kde.NewStandardEstimator(s, cfg)
	}},
	{model.MethodDDE, func(_ context.Context, s *model.Sample, cfg kde.Config) (kde.Estimator, error) {
		return kde.NewPluginEstimator(s, cfg)
	}},
	{model.MethodAKDE, func(ctx context.Context, s *model.Sample, cfg kde.Config) (kde.Estimator, error) {
		return kde.NewAdaptiveEstimator(ctx, s, cfg)
	}},
	{model.MethodMKDE, func(_ context.Context, s *model.Sample, cfg kde.Config) (kde.Estimator, error) {
		return kde.NewMultiScaleEstimator(s, cfg)
	}},
}

// Job is one repetition of one experiment. Every job has its own sample and seed.
type Job struct {
	Index      int
	ExpIndex   int
	Rep        int
	Experiment config.Experiment
	// nil means non-deterministic
	Seed *uint64
}

// Curve keeps the first repetition of an experiment for plotting.
type Curve struct {
	Experiment config.Experiment
	Grid       *model.Grid
	Truth      []float64
	Estimates  map[model.Method]*model.DensityEstimate
}

type Report struct {
	// ordered by experiment, repetition, method regardless of scheduling
	Results []model.ExperimentResult
	Curves  []*Curve
	Elapsed time.Duration
}

type jobOutcome struct {
	results []model.ExperimentResult
	curve   *Curve
	err     error
}

type Runner struct {
	cfg    *config.Config
	kdeCfg kde.Config
	grid   *model.Grid
}

func NewRunner(cfg *config.Config) (*Runner, error) {
	if cfg == nil {
		return nil, common.InvalidParameterf("config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	kdeCfg, err := cfg.KDEConfig()
	if err != nil {
		return nil, err
	}
	grid, err := model.NewUniformGrid(cfg.GridMin, cfg.GridMax, cfg.GridPoints)
	if err != nil {
		return nil, err
	}
	return &Runner{
		cfg:    cfg,
		kdeCfg: kdeCfg,
		grid:   grid,
	}, nil
}

func (r *Runner) Grid() *model.Grid {
	return r.grid
}

// Jobs lists every (experiment, repetition) pair with its seed.
func (r *Runner) Jobs() []Job {
	jobs := make([]Job, 0, len(r.cfg.Experiments)*r.cfg.Reps)
	for expIndex, exp := range r.cfg.Experiments {
		for rep := 0; rep < r.cfg.Reps; rep++ {
			var seed *uint64
			if r.cfg.Seed != nil {
				s := *r.cfg.Seed + uint64(seedStride*expIndex+rep)
				seed = &s
			}
			jobs = append(jobs, Job{
				Index:      len(jobs),
				ExpIndex:   expIndex,
				Rep:        rep,
				Experiment: exp,
				Seed:       seed,
			})
		}
	}
	return jobs
}

// Run executes all jobs on a pool of workers. Methods that fail on a sample
// are left out of the report and their errors are combined into the returned
// error. Once ctx is done no new job starts and running jobs discard what they
// computed.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	logger := utils.GetLogger(ctx)
	begin := time.Now()

	jobs := r.Jobs()
	workers := r.cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(jobs))

	logger.Info("start experiments", zap.Int("jobs", len(jobs)), zap.Int("workers", workers),
		zap.Int("sampleSize", r.cfg.SampleSize), zap.Int("gridPoints", r.grid.Len()))

	outcomes := make([]jobOutcome, len(jobs))
	jobCh := make(chan Job)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				outcomes[job.Index] = r.runJob(ctx, job)
			}
		}()
	}

feed:
	for _, job := range jobs {
		select {
		case <-ctx.Done():
			break feed
		case jobCh <- job:
		}
	}
	close(jobCh)
	wg.Wait()

	report := &Report{}
	var errs error
	for i, outcome := range outcomes {
		if outcome.err != nil {
			errs = multierr.Append(errs, errors.Wrapf(outcome.err, "%s(%v) rep %d",
				jobs[i].Experiment.Dist, jobs[i].Experiment.Params, jobs[i].Rep))
		}
		report.Results = append(report.Results, outcome.results...)
		if outcome.curve != nil {
			report.Curves = append(report.Curves, outcome.curve)
		}
	}
	if err := ctx.Err(); err != nil {
		errs = multierr.Append(errs, err)
	}
	report.Elapsed = time.Since(begin)

	logger.Info("experiments finished", zap.Int("results", len(report.Results)),
		zap.Duration("elapsed", report.Elapsed), zap.Error(errs))
	return report, errs
}

func (r *Runner) runJob(ctx context.Context, job Job) (outcome jobOutcome) {
	logger := utils.GetLogger(ctx).With(zap.String("dist", job.Experiment.Dist),
		zap.Float64s("params", job.Experiment.Params), zap.Int("rep", job.Rep))

	defer func() {
		if err := recover(); err != nil {
			logger.Error("runJob recover panic error!", zap.Any("err", err),
				zap.String("panic info", utils.GetPanicInfo()))
			outcome = jobOutcome{err: errors.Newf("panic: %v", err)}
		}
	}()

	if err := ctx.Err(); err != nil {
		return jobOutcome{err: err}
	}

	sampler, err := distribution.New(job.Experiment.Dist, job.Experiment.Params, job.Seed)
	if err != nil {
		logger.Error("create sampler failed", zap.Error(err))
		return jobOutcome{err: err}
	}
	sample, err := sampler.Sample(r.cfg.SampleSize)
	if err != nil {
		logger.Error("generate sample failed", zap.Error(err))
		return jobOutcome{err: err}
	}
	truth := sampler.PDFGrid(r.grid)

	var curve *Curve
	if job.Rep == 0 {
		if mass := sampler.GridMass(r.grid); mass < minGridMass {
			logger.Warn("grid truncates the true density", zap.Float64("mass", mass))
		}
		for i, v := range truth {
			if math.IsInf(v, 0) || math.IsNaN(v) {
				// IMSE is undefined, every method of this experiment fails to score
				logger.Warn("true density is not finite on the grid", zap.Float64("x", r.grid.At(i)),
					zap.Float64("density", v))
			}
		}
		curve = &Curve{
			Experiment: job.Experiment,
			Grid:       r.grid,
			Truth:      truth,
			Estimates:  map[model.Method]*model.DensityEstimate{},
		}
	}

	results := make([]model.ExperimentResult, 0, len(builders))
	var errs error
	for _, b := range builders {
		result, estimate, err := r.runMethod(ctx, logger, b, sample, truth)
		if err != nil {
			// a method failing on this sample does not discard the others
			errs = multierr.Append(errs, errors.Wrapf(err, "%s", b.method))
			continue
		}
		result.Distribution = job.Experiment.Dist
		result.Params = job.Experiment.Params
		result.Rep = job.Rep
		result.Seed = sampler.Seed()
		results = append(results, result)
		if curve != nil {
			curve.Estimates[b.method] = estimate
		}
	}

	if err := ctx.Err(); err != nil {
		// partial estimates of a cancelled job are discarded
		return jobOutcome{err: err}
	}
	logger.Debug("job finished", zap.Int("results", len(results)), zap.Error(errs))
	return jobOutcome{results: results, curve: curve, err: errs}
}

// runMethod builds, evaluates and scores one estimator.
func (r *Runner) runMethod(ctx context.Context, logger *zap.Logger, b builder, sample *model.Sample,
	truth []float64) (model.ExperimentResult, *model.DensityEstimate, error) {
	logger = logger.With(zap.String("method", string(b.method)))

	buildBegin := time.Now()
	estimator, err := b.build(ctx, sample, r.kdeCfg)
	if err != nil {
		logger.Error("build estimator failed", zap.Error(err))
		return model.ExperimentResult{}, nil, err
	}
	buildTime := time.Since(buildBegin)

	diagnostics := estimator.Diagnostics()
	if diagnostics.Warned() {
		logger.Warn("epsilon floor applied while fitting",
			zap.Int("flooredPilots", diagnostics.FlooredPilots),
			zap.Int("flooredLambdas", diagnostics.FlooredLambdas))
	}

	evalBegin := time.Now()
	estimate, err := estimator.Evaluate(ctx, r.grid)
	if err != nil {
		logger.Error("evaluate estimator failed", zap.Error(err))
		return model.ExperimentResult{}, nil, err
	}
	evalTime := time.Since(evalBegin)

	imse, err := kde.Score(estimate, truth)
	if err != nil {
		logger.Error("score estimate failed", zap.Error(err))
		return model.ExperimentResult{}, nil, err
	}

	return model.ExperimentResult{
		Method:    b.method,
		Bandwidth: estimator.Bandwidth(),
		IMSE:      imse,
		Integral:  estimate.Integral(),
		Warnings:  diagnostics.FlooredPilots + diagnostics.FlooredLambdas,
		BuildTime: buildTime,
		EvalTime:  evalTime,
	}, estimate, nil
}

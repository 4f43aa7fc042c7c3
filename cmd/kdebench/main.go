package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/uyouii/density-estimation/config"
	"github.com/uyouii/density-estimation/experiment"
	"github.com/uyouii/density-estimation/model"
	"github.com/uyouii/density-estimation/report"
	"github.com/uyouii/density-estimation/utils"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "", "path to the json config, built in defaults when empty")
	debug      = flag.Bool("debug", false, "human readable debug logging")
	profile    = flag.Bool("profile", false, "write per stage timings to profile_summary.csv")
)

func main() {
	flag.Parse()
	if *debug {
		utils.UseDevelopmentLogger()
	}
	os.Exit(exitCode())
}

// exitCode runs the benchmark, deferred calls finish before main exits.
func exitCode() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx); err != nil {
		utils.GetLogger(ctx).Error("kdebench failed", zap.Error(err))
		return 1
	}
	return 0
}

func run(ctx context.Context) error {
	logger := utils.GetLogger(ctx)
	defer logger.Sync()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	runner, err := experiment.NewRunner(cfg)
	if err != nil {
		return err
	}

	// failed jobs are reported, the rest is still written
	res, runErr := runner.Run(ctx)
	if res == nil {
		return runErr
	}

	rawPath := filepath.Join(cfg.RawDir, "raw.csv")
	if err := report.WriteFile(rawPath, func(w io.Writer) error {
		return report.WriteRaw(w, res.Results)
	}); err != nil {
		return err
	}

	summaries := experiment.Summarize(res.Results)
	if err := report.WriteFile(filepath.Join(cfg.RawDir, "summary.csv"), func(w io.Writer) error {
		return report.WriteSummary(w, summaries)
	}); err != nil {
		return err
	}
	for _, s := range summaries {
		logger.Info("imse", zap.String("dist", s.Distribution), zap.Float64s("params", s.Params),
			zap.String("method", string(s.Method)), zap.Float64("mean", s.MeanIMSE), zap.Float64("std", s.StdIMSE))
	}

	if *profile {
		stages := experiment.StageTimes(res.Results)
		jobs := len(res.Results) / len(model.AllMethods)
		if err := report.WriteFile(filepath.Join(cfg.RawDir, "profile_summary.csv"), func(w io.Writer) error {
			return report.WriteProfile(w, stages, res.Elapsed, jobs)
		}); err != nil {
			return err
		}
	}

	if cfg.Plot {
		if err := os.MkdirAll(cfg.FigDir, 0o755); err != nil {
			return errors.Wrapf(err, "create figure directory %s", cfg.FigDir)
		}
		for _, curve := range res.Curves {
			name := report.FigureName(curve.Experiment.Dist, curve.Experiment.Params)
			if err := report.PlotComparison(filepath.Join(cfg.FigDir, name), name, curve.Grid,
				curve.Truth, curve.Estimates); err != nil {
				logger.Error("plot comparison failed", zap.String("figure", name), zap.Error(err))
			}
		}
	}

	logger.Info("results written", zap.String("raw", rawPath), zap.Duration("elapsed", res.Elapsed))
	return runErr
}

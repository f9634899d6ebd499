// SPDX-License-Identifier: MIT

package config

import (
	"github.com/katalvlaran/hdfe/demean"
	"github.com/katalvlaran/hdfe/feols"
	"github.com/katalvlaran/hdfe/internal/telemetry"
	"github.com/katalvlaran/hdfe/ols"
	"github.com/katalvlaran/hdfe/vcov"
)

// Options translates a validated Config into feols options, including a zap
// logger built from the log section. rec may be nil.
func (c *Config) Options(rec feols.Recorder) ([]feols.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	policy, _ := ols.ParsePolicy(c.Solver.Collinearity)
	scheme, _ := vcov.ParseScheme(c.Vcov.Scheme)
	logger, err := telemetry.NewLogger(c.Log.Level, c.Log.Development)
	if err != nil {
		return nil, err
	}

	dopts := []demean.Option{
		demean.WithTolerance(c.Demean.Tolerance),
		demean.WithMaxSweeps(c.Demean.MaxSweeps),
	}
	if c.Demean.AccelerateOrDefault() {
		dopts = append(dopts, demean.WithAccelEvery(c.Demean.AccelEvery))
	} else {
		dopts = append(dopts, demean.WithoutAcceleration())
	}
	if c.Demean.Workers > 0 {
		dopts = append(dopts, demean.WithWorkers(c.Demean.Workers))
	}

	opts := []feols.Option{
		feols.WithScheme(scheme),
		feols.WithPolicy(policy),
		feols.WithRankTolerance(c.Solver.RankTol),
		feols.WithDemeanOptions(dopts...),
		feols.WithDropSingletons(c.DropSingletons),
		feols.WithFixedEffects(c.Fixef.Recover),
		feols.WithLogger(logger),
	}
	if rec != nil {
		opts = append(opts, feols.WithMetrics(rec))
	}

	return opts, nil
}

// SPDX-License-Identifier: MIT

package config

import (
	"github.com/katalvlaran/hdfe/demean"
	"github.com/katalvlaran/hdfe/ols"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Demean.Tolerance == 0 {
		cfg.Demean.Tolerance = demean.DefaultTolerance
	}
	if cfg.Demean.MaxSweeps == 0 {
		cfg.Demean.MaxSweeps = demean.DefaultMaxSweeps
	}
	if cfg.Demean.AccelEvery == 0 {
		cfg.Demean.AccelEvery = demean.DefaultAccelEvery
	}
	if cfg.Solver.Collinearity == "" {
		cfg.Solver.Collinearity = ols.PolicyError.String()
	}
	if cfg.Solver.RankTol == 0 {
		cfg.Solver.RankTol = ols.DefaultRankTolerance
	}
	if cfg.Vcov.Scheme == "" {
		cfg.Vcov.Scheme = "iid"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

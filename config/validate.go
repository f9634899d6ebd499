// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/katalvlaran/hdfe/ols"
	"github.com/katalvlaran/hdfe/vcov"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Validate checks every field; all problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if !(c.Demean.Tolerance > 0) || math.IsInf(c.Demean.Tolerance, 0) {
		bad("demean.tolerance must be finite and > 0, got %g", c.Demean.Tolerance)
	}
	if c.Demean.MaxSweeps < 1 {
		bad("demean.max_sweeps must be > 0, got %d", c.Demean.MaxSweeps)
	}
	if c.Demean.AccelEvery < 2 {
		bad("demean.accel_every must be >= 2, got %d", c.Demean.AccelEvery)
	}
	if c.Demean.Workers < 0 {
		bad("demean.workers must be >= 0, got %d", c.Demean.Workers)
	}
	if _, err := ols.ParsePolicy(c.Solver.Collinearity); err != nil {
		bad("solver.collinearity: %v", err)
	}
	if !(c.Solver.RankTol > 0 && c.Solver.RankTol < 1) {
		bad("solver.rank_tol must be in (0, 1), got %g", c.Solver.RankTol)
	}
	if _, err := vcov.ParseScheme(c.Vcov.Scheme); err != nil {
		bad("vcov.scheme: %v", err)
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		bad("log.level: %v", err)
	}

	return errors.Join(errs...)
}

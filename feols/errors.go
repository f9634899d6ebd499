// SPDX-License-Identifier: MIT

package feols

import "errors"

var (
	// ErrNoDegreesOfFreedom indicates N − rank − absorbed < 1.
	ErrNoDegreesOfFreedom = errors.New("feols: no residual degrees of freedom")

	// ErrLengthMismatch indicates inputs that disagree on N or K.
	ErrLengthMismatch = errors.New("feols: length mismatch")

	// ErrEmpty indicates a response with no observations.
	ErrEmpty = errors.New("feols: no observations")
)

// Warning codes.
const (
	WarnSingletons = "singletons" // observations removed by singleton pruning
	WarnSolver     = "solver"     // collinearity and conditioning of the design
	WarnCovariance = "vcov"       // covariance diagnostics (e.g. not PSD)
	WarnFixef      = "fixef"      // fixed-effect recovery did not complete
)

// Warning is a non-fatal diagnostic attached to a Fit.
type Warning struct {
	Code    string
	Message string
}

func (w Warning) String() string { return w.Code + ": " + w.Message }

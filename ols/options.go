// SPDX-License-Identifier: MIT

package ols

import (
	"fmt"
	"math"
	"strings"
)

// Policy selects how rank deficiency is resolved.
type Policy int

const (
	// PolicyError reports collinear columns as *RankDeficiencyError.
	PolicyError Policy = iota

	// PolicyDrop removes collinear columns; their coefficients are NaN.
	PolicyDrop

	// PolicyPseudoInverse returns the minimum-norm least-squares solution.
	PolicyPseudoInverse
)

// String implements fmt.Stringer.
func (p Policy) String() string {
	switch p {
	case PolicyError:
		return "error"
	case PolicyDrop:
		return "drop"
	case PolicyPseudoInverse:
		return "pinv"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy accepts "error", "drop" and "pinv" (case-insensitive).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "":
		return PolicyError, nil
	case "drop":
		return PolicyDrop, nil
	case "pinv", "pseudoinverse", "pseudo-inverse":
		return PolicyPseudoInverse, nil
	}

	return 0, fmt.Errorf("ols: unknown collinearity policy %q", s)
}

const (
	// DefaultRankTolerance is the relative residual norm below which a column
	// counts as a linear combination of earlier columns.
	DefaultRankTolerance = 1e-7

	// DefaultConditionWarning is the cond(R) above which a full-rank solve
	// still attaches a near-singular warning.
	DefaultConditionWarning = 1e7
)

const (
	panicRankTolInvalid = "ols: WithRankTolerance: tol must be finite and in (0, 1)"
	panicCondInvalid    = "ols: WithConditionWarning: limit must be > 1"
)

// Option mutates Options.
type Option func(*Options)

// Options is the resolved solver configuration.
type Options struct {
	policy   Policy
	rankTol  float64
	condWarn float64
	refNorms []float64
	names    []string
}

// WithPolicy selects the collinearity policy.
func WithPolicy(p Policy) Option { return func(o *Options) { o.policy = p } }

// WithRankTolerance sets the relative rank tolerance.
func WithRankTolerance(tol float64) Option {
	if !(tol > 0 && tol < 1) || math.IsNaN(tol) {
		panic(panicRankTolInvalid)
	}

	return func(o *Options) { o.rankTol = tol }
}

// WithConditionWarning sets the cond(R) threshold of the near-singular warning.
func WithConditionWarning(limit float64) Option {
	if !(limit > 1) {
		panic(panicCondInvalid)
	}

	return func(o *Options) { o.condWarn = limit }
}

// WithReferenceNorms supplies per-column norms the rank test is relative to,
// typically √(Σ w x²) of the columns before demeaning.
func WithReferenceNorms(norms []float64) Option {
	return func(o *Options) { o.refNorms = norms }
}

// WithNames labels columns in errors and warnings.
func WithNames(names []string) Option { return func(o *Options) { o.names = names } }

func gatherOptions(user ...Option) Options {
	o := Options{
		policy:   PolicyError,
		rankTol:  DefaultRankTolerance,
		condWarn: DefaultConditionWarning,
	}
	for _, set := range user {
		if set != nil {
			set(&o)
		}
	}

	return o
}

// SPDX-License-Identifier: MIT

package feols

import (
	"go.uber.org/zap"

	"github.com/katalvlaran/hdfe/demean"
	"github.com/katalvlaran/hdfe/ols"
	"github.com/katalvlaran/hdfe/vcov"
)

// FixefTolerance is the relative tolerance of fixed-effect recovery.
const FixefTolerance = 1e-10

// RankSlack is how far above a regressor's remaining demeaning error the
// rank test's threshold must sit. With default tolerances the threshold is
// already well above it and this never binds.
const RankSlack = 10

// Option configures Estimate.
type Option func(*Options)

// Options is the resolved estimation configuration.
type Options struct {
	scheme         vcov.Scheme
	policy         ols.Policy
	rankTol        float64 // 0 means ols.DefaultRankTolerance
	demeanOpts     []demean.Option
	recoverFixef   bool
	dropSingletons bool
	logger         *zap.Logger
	metrics        Recorder
}

// Recorder receives estimation metrics; *telemetry.Metrics implements it.
// Implementations must be safe for concurrent use.
type Recorder interface {
	demean.Observer
	ObserveFit(scheme string, dropped int)
}

// WithScheme selects the covariance estimator (default vcov.Classical).
func WithScheme(s vcov.Scheme) Option { return func(o *Options) { o.scheme = s } }

// WithPolicy selects the collinearity policy (default ols.PolicyError).
func WithPolicy(p ols.Policy) Option { return func(o *Options) { o.policy = p } }

// WithRankTolerance overrides ols.DefaultRankTolerance.
func WithRankTolerance(tol float64) Option { return func(o *Options) { o.rankTol = tol } }

// WithDemeanOptions forwards options to the demeaning engine.
func WithDemeanOptions(opts ...demean.Option) Option {
	return func(o *Options) { o.demeanOpts = append(o.demeanOpts, opts...) }
}

// WithFixedEffects turns per-level fixed-effect recovery on or off.
func WithFixedEffects(on bool) Option { return func(o *Options) { o.recoverFixef = on } }

// WithDropSingletons prunes observations that are singletons in any
// fixed-effect dimension before estimation.
func WithDropSingletons(drop bool) Option { return func(o *Options) { o.dropSingletons = drop } }

// WithLogger sets the logger (default zap.NewNop()).
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records demeaning and fit metrics. nil disables them.
func WithMetrics(r Recorder) Option { return func(o *Options) { o.metrics = r } }

func gatherOptions(user ...Option) Options {
	o := Options{
		scheme: vcov.Classical,
		policy: ols.PolicyError,
		logger: zap.NewNop(),
	}
	for _, set := range user {
		if set != nil {
			set(&o)
		}
	}

	return o
}

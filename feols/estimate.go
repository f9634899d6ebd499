// SPDX-License-Identifier: MIT

package feols

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/hdfe/demean"
	"github.com/katalvlaran/hdfe/grouping"
	"github.com/katalvlaran/hdfe/ols"
	"github.com/katalvlaran/hdfe/vcov"
)

const opEstimate = "Estimate"

// responseName labels the response in demeaning statistics and errors.
const responseName = "(response)"

// Input is one already-parsed numeric specification. Estimate never writes
// to it.
type Input struct {
	Y            []float64
	X            [][]float64       // column-major, len K
	Names        []string          // optional; defaults to x0, x1, …
	FixedEffects []*grouping.Index // absorbed dimensions
	Weights      []float64         // optional, non-negative
	Clusters     []*grouping.Index // cluster dimensions for vcov.Cluster
}

// Estimate fits y on X absorbing the fixed effects.
//
// Errors are wrapped with the failing stage and match the sentinels of the
// producing package: grouping.ErrDegenerateGrouping (after pruning),
// demean.ErrNotConverged, ols.ErrRankDeficient, vcov.ErrSingularCovariance,
// vcov.ErrInsufficientClusters, ErrNoDegreesOfFreedom, ErrLengthMismatch.
func Estimate(in Input, opts ...Option) (*Fit, error) {
	o := gatherOptions(opts...)
	start := time.Now()
	log := o.logger.With(zap.String("op", opEstimate))

	if err := in.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", opEstimate, err)
	}
	names := in.Names
	if names == nil {
		names = make([]string, len(in.X))
		for j := range names {
			names[j] = fmt.Sprintf("x%d", j)
		}
	}

	var warnings []Warning
	pruned := 0
	if o.dropSingletons && len(in.FixedEffects) > 0 {
		var err error
		in, pruned, err = pruneSingletons(in)
		if err != nil {
			return nil, fmt.Errorf("%s: singleton pruning: %w", opEstimate, err)
		}
		if pruned > 0 {
			warnings = append(warnings, Warning{WarnSingletons, fmt.Sprintf("%d singleton observations dropped", pruned)})
			log.Debug("singletons pruned", zap.Int("dropped", pruned))
		}
	}

	n, k := len(in.Y), len(in.X)
	w := in.Weights
	ref := make([]float64, k)
	for j, col := range in.X {
		ref[j] = weightedNorm(col, w)
	}

	// Demean y and every regressor; without fixed effects the data is used as given.
	Xd, yd := in.X, in.Y
	var stats []demean.Stats
	if len(in.FixedEffects) > 0 {
		dopts := make([]demean.Option, 0, len(o.demeanOpts)+1)
		if o.metrics != nil {
			dopts = append(dopts, demean.WithObserver(o.metrics))
		}
		dopts = append(dopts, o.demeanOpts...)
		eng, err := demean.New(in.FixedEffects, w, dopts...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", opEstimate, err)
		}
		cols := append(append(make([][]float64, 0, k+1), in.X...), in.Y)
		colNames := append(append(make([]string, 0, k+1), names...), responseName)
		out, st, err := eng.Columns(cols, colNames)
		if err != nil {
			log.Warn("demeaning failed", zap.Error(err))
			return nil, fmt.Errorf("%s: %w", opEstimate, err)
		}
		Xd, yd, stats = out[:k], out[k], st

		// A regressor inside the fixed-effect span demeans to no more than its
		// remaining error, so the rank test cannot be finer than that error.
		rankTol := o.rankTol
		if rankTol <= 0 {
			rankTol = ols.DefaultRankTolerance
		}
		for j := range ref {
			floor := RankSlack * st[j].Remaining / rankTol
			if floor > ref[j] {
				ref[j] = floor
				warnings = append(warnings, Warning{WarnSolver, fmt.Sprintf(
					"%s demeaned only to %.3g; collinearity with the fixed effects is judged at that precision",
					names[j], st[j].Remaining)})
			}
		}
	}

	sopts := []ols.Option{ols.WithPolicy(o.policy), ols.WithReferenceNorms(ref), ols.WithNames(names)}
	if o.rankTol > 0 {
		sopts = append(sopts, ols.WithRankTolerance(o.rankTol))
	}
	sol, err := ols.Solve(Xd, yd, w, sopts...)
	if err != nil {
		log.Warn("least-squares solve failed", zap.Error(err))
		return nil, fmt.Errorf("%s: %w", opEstimate, err)
	}
	for _, msg := range sol.Warnings {
		warnings = append(warnings, Warning{WarnSolver, msg})
	}

	absorbed, err := absorbedDF(in.FixedEffects)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opEstimate, err)
	}
	dfResid := n - sol.Rank - absorbed
	if dfResid < 1 {
		return nil, fmt.Errorf("%s: N=%d, rank=%d, absorbed=%d: %w", opEstimate, n, sol.Rank, absorbed, ErrNoDegreesOfFreedom)
	}

	// Covariance on the weighted demeaned design of the kept columns.
	sw := make([]float64, n)
	for i := range sw {
		sw[i] = 1
		if w != nil {
			sw[i] = math.Sqrt(w[i])
		}
	}
	Xw := make([][]float64, len(sol.Kept))
	for p, j := range sol.Kept {
		Xw[p] = make([]float64, n)
		for i, v := range Xd[j] {
			Xw[p][i] = sw[i] * v
		}
	}
	ew := make([]float64, n)
	for i, e := range sol.Residuals {
		ew[i] = sw[i] * e
	}
	vc, err := vcov.Compute(o.scheme, vcov.Input{
		Xw:       Xw,
		Ew:       ew,
		N:        n,
		DFResid:  dfResid,
		Clusters: in.Clusters,
		Bread:    sol.Bread,
	})
	if err != nil {
		log.Warn("covariance failed", zap.Error(err), zap.Stringer("scheme", o.scheme))
		return nil, fmt.Errorf("%s: %w", opEstimate, err)
	}
	for _, msg := range vc.Warnings {
		warnings = append(warnings, Warning{WarnCovariance, msg})
	}

	fit := &Fit{
		names:    append([]string(nil), names...),
		coef:     sol.Coef,
		vcov:     expand(vc.V, sol.Kept, k),
		resid:    sol.Residuals,
		fitted:   make([]float64, n),
		n:        n,
		rank:     sol.Rank,
		absorbed: absorbed,
		dfResid:  dfResid,
		dfT:      float64(dfResid),
		scheme:   o.scheme,
		clusters: vc.Clusters,
		pruned:   pruned,
		stats:    stats,
	}
	if o.scheme == vcov.Cluster {
		fit.dfT = float64(vc.MinClusters() - 1)
	}
	for _, j := range sol.Dropped {
		fit.collinear = append(fit.collinear, names[j])
	}
	for i, e := range sol.Residuals {
		fit.fitted[i] = in.Y[i] - e
	}
	fit.r2, fit.withinR2, fit.rmse = goodness(in.Y, yd, sol.Residuals, w, len(in.FixedEffects) > 0)

	if o.recoverFixef && len(in.FixedEffects) > 0 {
		fe, err := recoverFixef(in, sol)
		if err != nil {
			warnings = append(warnings, Warning{WarnFixef, err.Error()})
		} else {
			fit.fixef = fe
		}
	}
	fit.warnings = warnings

	if o.metrics != nil {
		o.metrics.ObserveFit(o.scheme.String(), len(sol.Dropped))
	}
	for _, wn := range warnings {
		log.Info("estimation warning", zap.String("code", wn.Code), zap.String("message", wn.Message))
	}
	log.Debug("estimated",
		zap.Int("n", n),
		zap.Int("k", k),
		zap.Int("rank", sol.Rank),
		zap.Int("absorbed", absorbed),
		zap.Stringer("scheme", o.scheme),
		zap.Duration("elapsed", time.Since(start)),
	)

	return fit, nil
}

func (in Input) validate() error {
	n := len(in.Y)
	if n == 0 {
		return ErrEmpty
	}
	for j, col := range in.X {
		if len(col) != n {
			return fmt.Errorf("column %d has %d rows, want %d: %w", j, len(col), n, ErrLengthMismatch)
		}
	}
	if in.Names != nil && len(in.Names) != len(in.X) {
		return fmt.Errorf("%d names for %d columns: %w", len(in.Names), len(in.X), ErrLengthMismatch)
	}
	if in.Weights != nil && len(in.Weights) != n {
		return fmt.Errorf("%d weights for %d observations: %w", len(in.Weights), n, ErrLengthMismatch)
	}
	for _, set := range [][]*grouping.Index{in.FixedEffects, in.Clusters} {
		for d, idx := range set {
			if idx == nil {
				return fmt.Errorf("dimension %d: %w", d, grouping.ErrNilIndex)
			}
			if idx.N() != n {
				return fmt.Errorf("%s has N=%d, want %d: %w", idx.Name(), idx.N(), n, ErrLengthMismatch)
			}
		}
	}

	return nil
}

// pruneSingletons returns a copy of in restricted to the observations that
// survive iterative singleton removal.
func pruneSingletons(in Input) (Input, int, error) {
	keep, dropped := grouping.PruneSingletons(in.FixedEffects)
	if dropped == 0 {
		return in, 0, nil
	}
	out := Input{
		Y:       subset(in.Y, keep),
		X:       make([][]float64, len(in.X)),
		Names:   in.Names,
		Weights: subset(in.Weights, keep),
	}
	for j, col := range in.X {
		out.X[j] = subset(col, keep)
	}
	for _, idx := range in.FixedEffects {
		s, err := idx.Subset(keep)
		if err != nil {
			return Input{}, 0, err
		}
		if err := s.Validate(); err != nil {
			return Input{}, 0, err
		}
		out.FixedEffects = append(out.FixedEffects, s)
	}
	for _, idx := range in.Clusters {
		s, err := idx.Subset(keep)
		if err != nil {
			return Input{}, 0, err
		}
		out.Clusters = append(out.Clusters, s)
	}

	return out, dropped, nil
}

func subset(x []float64, keep []bool) []float64 {
	if x == nil {
		return nil
	}
	out := make([]float64, 0, len(x))
	for i, v := range x {
		if keep[i] {
			out = append(out, v)
		}
	}

	return out
}

// absorbedDF counts the degrees of freedom absorbed by the fixed effects.
func absorbedDF(fe []*grouping.Index) (int, error) {
	switch len(fe) {
	case 0:
		return 0, nil
	case 1:
		return fe[0].G(), nil
	case 2:
		sets, err := grouping.ConnectedSets(fe[0], fe[1])
		if err != nil {
			return 0, err
		}

		return fe[0].G() + fe[1].G() - sets, nil
	}
	df := fe[0].G()
	for _, idx := range fe[1:] {
		df += idx.G() - 1
	}

	return df, nil
}

// expand embeds the covariance of the kept columns into a K×K matrix with NaN
// rows and columns for the rest.
func expand(v *mat.SymDense, kept []int, k int) *mat.SymDense {
	out := mat.NewSymDense(k, nil)
	for a := 0; a < k; a++ {
		for b := a; b < k; b++ {
			out.SetSym(a, b, math.NaN())
		}
	}
	for p, a := range kept {
		for q := p; q < len(kept); q++ {
			out.SetSym(a, kept[q], v.At(p, q))
		}
	}

	return out
}

// goodness returns R², within R² and RMSE.
func goodness(y, yd, e, w []float64, hasFE bool) (r2, within, rmse float64) {
	wt := func(i int) float64 {
		if w == nil {
			return 1
		}

		return w[i]
	}
	var sw, swy float64
	for i, v := range y {
		sw += wt(i)
		swy += wt(i) * v
	}
	mean := swy / sw
	var rss, tss, tssWithin float64
	for i, v := range y {
		rss += wt(i) * e[i] * e[i]
		tss += wt(i) * (v - mean) * (v - mean)
		tssWithin += wt(i) * yd[i] * yd[i]
	}
	r2 = 1 - rss/tss
	within = math.NaN()
	if hasFE {
		within = 1 - rss/tssWithin
	}

	return r2, within, math.Sqrt(rss / sw)
}

// recoverFixef back-substitutes the per-level effects from y − Xβ − e.
func recoverFixef(in Input, sol *ols.Solution) ([]FixedEffect, error) {
	d := make([]float64, len(in.Y))
	for i, y := range in.Y {
		d[i] = y - sol.Residuals[i]
	}
	for _, j := range sol.Kept {
		b := sol.Coef[j]
		for i, x := range in.X[j] {
			d[i] -= b * x
		}
	}
	alpha, err := ols.RecoverFixedEffects(in.FixedEffects, in.Weights, d, FixefTolerance, demean.DefaultMaxSweeps)
	if err != nil {
		return nil, err
	}
	out := make([]FixedEffect, len(alpha))
	for g, idx := range in.FixedEffects {
		out[g] = FixedEffect{Name: idx.Name(), Levels: idx.Levels(), Values: alpha[g]}
	}

	return out, nil
}

func weightedNorm(x, w []float64) float64 {
	var s float64
	for i, v := range x {
		if w == nil {
			s += v * v
		} else {
			s += w[i] * v * v
		}
	}

	return math.Sqrt(s)
}

// SPDX-License-Identifier: MIT

package ols

import (
	"fmt"
	"math"

	"github.com/katalvlaran/hdfe/grouping"
	"github.com/katalvlaran/hdfe/internal/converge"
)

const opRecover = "RecoverFixedEffects"

// RecoverFixedEffects solves d ≈ Σ_g α_g[code_g(i)] for the per-level effects,
// where d = y − Xβ − e is the component absorbed by the fixed effects.
// The result is indexed [dimension][level code].
//
// One dimension is a single exact pass (weighted group means of d). With more
// dimensions the effects are found by Gauss–Seidel sweeps, stopping when the
// estimated distance of the fitted sum to its limit, ‖Δ‖·ρ/(1−ρ) with ρ read
// off consecutive sweep changes, is ≤ tol·‖d‖ (weighted L2 norms). The
// effects of dimensions g ≥ 1 are then normalized so that level 0 is zero,
// its value moved into dimension 0; the fitted sum is unchanged.
//
// Errors: ErrLengthMismatch, grouping.ErrNilIndex, ErrNotConverged (wrapped
// with the sweep count) when maxIter sweeps do not suffice.
func RecoverFixedEffects(dims []*grouping.Index, weights, d []float64, tol float64, maxIter int) ([][]float64, error) {
	n := len(d)
	for g, idx := range dims {
		if idx == nil {
			return nil, fmt.Errorf("%s: dimension %d: %w", opRecover, g, grouping.ErrNilIndex)
		}
		if idx.N() != n {
			return nil, fmt.Errorf("%s: %s has N=%d, want %d: %w", opRecover, idx.Name(), idx.N(), n, ErrLengthMismatch)
		}
	}
	if weights != nil && len(weights) != n {
		return nil, fmt.Errorf("%s: %d weights for %d observations: %w", opRecover, len(weights), n, ErrLengthMismatch)
	}

	w := func(i int) float64 {
		if weights == nil {
			return 1
		}

		return weights[i]
	}

	alpha := make([][]float64, len(dims))
	groupW := make([][]float64, len(dims))
	for g, idx := range dims {
		alpha[g] = make([]float64, idx.G())
		groupW[g] = make([]float64, idx.G())
		for i := 0; i < n; i++ {
			groupW[g][idx.Code(i)] += w(i)
		}
	}
	if len(dims) == 0 {
		return alpha, nil
	}

	var ss float64
	for i, v := range d {
		ss += w(i) * v * v
	}
	if ss == 0 {
		return alpha, nil
	}

	fit := make([]float64, n)  // Σ_g α_g[code_g(i)]
	step := make([]float64, n) // change of fit over one sweep
	sweep := func() float64 {
		for i := range step {
			step[i] = 0
		}
		for g, idx := range dims {
			a := alpha[g]
			sums := make([]float64, len(a))
			for i := 0; i < n; i++ {
				c := idx.Code(i)
				sums[c] += w(i) * (d[i] - fit[i] + a[c])
			}
			for c := range a {
				if groupW[g][c] > 0 {
					sums[c] /= groupW[g][c]
				}
			}
			for i := 0; i < n; i++ {
				delta := sums[idx.Code(i)] - a[idx.Code(i)]
				fit[i] += delta
				step[i] += delta
			}
			copy(a, sums)
		}
		var s2 float64
		for i, v := range step {
			s2 += w(i) * v * v
		}

		return math.Sqrt(s2)
	}

	if len(dims) == 1 {
		sweep()

		return alpha, nil
	}

	// Same stop rule as demean: the estimated distance of the fitted sum to
	// its limit, from the contraction of consecutive sweep changes. The first
	// change is the bulk of d, so rates are read from the third sweep.
	stop := converge.New(tol)
	stop.Scale(math.Sqrt(ss))
	converged := false
	for it := 0; it < maxIter; it++ {
		if stop.Observe(sweep(), it > 1) {
			converged = true
			break
		}
	}
	if !converged {
		return nil, fmt.Errorf("%s: %d sweeps, estimated error %.3g: %w", opRecover, maxIter, stop.Remaining(), ErrNotConverged)
	}

	for g := 1; g < len(alpha); g++ {
		if len(alpha[g]) == 0 {
			continue
		}
		shift := alpha[g][0]
		for c := range alpha[g] {
			alpha[g][c] -= shift
		}
		for c := range alpha[0] {
			alpha[0][c] += shift
		}
	}

	return alpha, nil
}

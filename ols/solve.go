// SPDX-License-Identifier: MIT

package ols

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

const opSolve = "Solve"

// Solution is the outcome of one least-squares solve.
type Solution struct {
	Coef      []float64     // length K, input order; NaN for dropped columns
	Residuals []float64     // ỹ − X̃β on the unweighted scale
	Rank      int           // numerical rank (K_eff)
	K         int           // columns supplied
	Kept      []int         // input positions entering Bread, ascending
	Dropped   []int         // input positions removed for collinearity, ascending
	Policy    Policy        // policy that produced the solution
	Cond      float64       // condition estimate of the weighted design
	Bread     *mat.SymDense // (XᵀWX)⁻¹ or pseudo-inverse over Kept
	Warnings  []string      // non-fatal numerical diagnostics
}

// Solve fits y on the columns of X (column-major, len(X) = K) with optional
// non-negative weights. Inputs are not modified.
//
// Implementation:
//   - Stage 1: validate shapes and values; scale rows by √w.
//   - Stage 2: PolicyPseudoInverse → SVD path; otherwise pivoted QR.
//   - Stage 3: rank check under the policy; Qᵀy; back-substitution.
//   - Stage 4: residuals on the unweighted scale; bread from R⁻¹.
//
// Errors:
//   - ErrNoColumns, ErrLengthMismatch, ErrNaNInf on input.
//   - *RankDeficiencyError under PolicyError, or when no column survives.
//   - ErrFactorization when a decomposition fails.
//
// Complexity: O(N·K²).
func Solve(X [][]float64, y, weights []float64, opts ...Option) (*Solution, error) {
	o := gatherOptions(opts...)
	k := len(X)
	if k == 0 {
		return nil, fmt.Errorf("%s: %w", opSolve, ErrNoColumns)
	}
	n := len(y)
	if err := validate(X, y, weights); err != nil {
		return nil, fmt.Errorf("%s: %w", opSolve, err)
	}

	sw := make([]float64, n)
	for i := range sw {
		sw[i] = 1
		if weights != nil {
			sw[i] = math.Sqrt(weights[i])
		}
	}
	Xw := make([][]float64, k)
	for j, col := range X {
		Xw[j] = make([]float64, n)
		for i, v := range col {
			Xw[j][i] = sw[i] * v
		}
	}
	yw := make([]float64, n)
	for i, v := range y {
		yw[i] = sw[i] * v
	}

	ref := o.refNorms
	if len(ref) != k {
		ref = make([]float64, k)
		for j, col := range Xw {
			ref[j] = norm2(col)
		}
	}

	var (
		sol *Solution
		err error
	)
	if o.policy == PolicyPseudoInverse {
		sol, err = solvePinv(Xw, yw, ref, o)
	} else {
		sol, err = solveQR(Xw, yw, ref, o)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opSolve, err)
	}

	// Residuals on the unweighted scale: e = y − Xβ over the kept columns.
	sol.Residuals = make([]float64, n)
	copy(sol.Residuals, y)
	for _, j := range sol.Kept {
		b := sol.Coef[j]
		for i, v := range X[j] {
			sol.Residuals[i] -= v * b
		}
	}

	return sol, nil
}

func solveQR(Xw [][]float64, yw, ref []float64, o Options) (*Solution, error) {
	k := len(Xw)
	f := factorQR(Xw, ref, o.rankTol)

	dropped := append([]int(nil), f.perm[f.rank:]...)
	sort.Ints(dropped)
	if f.rank == 0 || (f.rank < k && o.policy == PolicyError) {
		return nil, rankError(dropped, f.rank, k, o.names)
	}

	qty := make([]float64, len(yw))
	copy(qty, yw)
	f.qtApply(qty)
	beta := f.backSolve(qty)

	sol := &Solution{
		Coef:    make([]float64, k),
		Rank:    f.rank,
		K:       k,
		Kept:    append([]int(nil), f.perm[:f.rank]...),
		Dropped: dropped,
		Policy:  o.policy,
		Cond:    f.cond(),
	}
	for j := range sol.Coef {
		sol.Coef[j] = math.NaN()
	}
	for p, b := range beta {
		sol.Coef[f.perm[p]] = b
	}

	bread, nearSingular, err := f.bread()
	if err != nil {
		return nil, err
	}
	sol.Bread = bread
	if len(dropped) > 0 {
		sol.Warnings = append(sol.Warnings, fmt.Sprintf("collinear columns dropped: %s", label(dropped, o.names)))
	}
	if nearSingular || sol.Cond > o.condWarn {
		sol.Warnings = append(sol.Warnings, fmt.Sprintf("near-singular design: cond(R) = %.3g", sol.Cond))
	}

	return sol, nil
}

// solvePinv computes the minimum-norm solution on column-scaled data
// Xs = Xw·D⁻¹ (D = diag(ref)), truncating singular values ≤ tol·σ_max:
//
//	β     = D⁻¹ V Σ⁻¹ Uᵀ y
//	bread = D⁻¹ V Σ⁻² Vᵀ D⁻¹
func solvePinv(Xw [][]float64, yw, ref []float64, o Options) (*Solution, error) {
	k, n := len(Xw), len(yw)
	d := make([]float64, k)
	for j := range d {
		d[j] = ref[j]
		if d[j] == 0 {
			d[j] = 1
		}
	}
	xs := mat.NewDense(n, k, nil)
	for j, col := range Xw {
		for i, v := range col {
			xs.Set(i, j, v/d[j])
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(xs, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: SVD did not converge", ErrFactorization)
	}
	sigma := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	cut := o.rankTol * sigma[0]
	r := 0
	for _, s := range sigma {
		if s > cut {
			r++
		}
	}
	if r == 0 {
		all := make([]int, k)
		for j := range all {
			all[j] = j
		}

		return nil, rankError(all, 0, k, o.names)
	}

	yv := mat.NewVecDense(n, yw)
	coefS := make([]float64, k)
	m := mat.NewDense(k, r, nil)
	for c := 0; c < r; c++ {
		uy := mat.Dot(u.ColView(c), yv) / sigma[c]
		for j := 0; j < k; j++ {
			coefS[j] += uy * v.At(j, c)
			m.Set(j, c, v.At(j, c)/(sigma[c]*d[j]))
		}
	}

	sol := &Solution{
		Coef:   make([]float64, k),
		Rank:   r,
		K:      k,
		Kept:   make([]int, k),
		Policy: PolicyPseudoInverse,
		Cond:   sigma[0] / sigma[r-1],
		Bread:  mat.NewSymDense(k, nil),
	}
	for j := range sol.Coef {
		sol.Coef[j] = coefS[j] / d[j]
		sol.Kept[j] = j
	}
	sol.Bread.SymOuterK(1, m)
	if r < k {
		sol.Warnings = append(sol.Warnings, fmt.Sprintf("pseudo-inverse solution: rank %d < %d columns", r, k))
	}
	if sol.Cond > o.condWarn {
		sol.Warnings = append(sol.Warnings, fmt.Sprintf("near-singular design: cond = %.3g", sol.Cond))
	}

	return sol, nil
}

func validate(X [][]float64, y, weights []float64) error {
	n := len(y)
	if n == 0 {
		return fmt.Errorf("empty response: %w", ErrLengthMismatch)
	}
	if weights != nil && len(weights) != n {
		return fmt.Errorf("%d weights for %d observations: %w", len(weights), n, ErrLengthMismatch)
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("response row %d: %w", i, ErrNaNInf)
		}
	}
	for j, col := range X {
		if len(col) != n {
			return fmt.Errorf("column %d has %d rows, want %d: %w", j, len(col), n, ErrLengthMismatch)
		}
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("column %d row %d: %w", j, i, ErrNaNInf)
			}
		}
	}
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("weight %d = %g: %w", i, w, ErrNaNInf)
		}
	}

	return nil
}

func rankError(cols []int, rank, k int, names []string) error {
	e := &RankDeficiencyError{Columns: cols, Rank: rank, K: k}
	if len(names) == k {
		for _, j := range cols {
			e.Names = append(e.Names, names[j])
		}
	}

	return e
}

func label(cols []int, names []string) string {
	if len(names) == 0 {
		return fmt.Sprint(cols)
	}
	out := make([]string, 0, len(cols))
	for _, j := range cols {
		if j < len(names) {
			out = append(out, names[j])
		}
	}

	return fmt.Sprint(out)
}

func norm2(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v * v
	}

	return math.Sqrt(s)
}

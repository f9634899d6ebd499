// SPDX-License-Identifier: MIT

package ols

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// qrFactor is a Householder QR of an n×k column-major matrix with limited
// column pivoting. After factorization:
//   - cols[p][i] for i ≤ p < rank holds R (upper triangle, pivot order);
//   - perm[p] is the input column at pivot position p; perm[:rank] ascends;
//   - vs[j], taus[j] define reflector H_j = I − τ v vᵀ acting on rows j..n-1.
type qrFactor struct {
	n, k int
	cols [][]float64
	perm []int
	vs   [][]float64
	taus []float64
	rank int
}

// factorQR factors a copy of cols. A column whose remaining norm (rows j..)
// is ≤ tol·ref[c] is rotated behind the pivots instead of being reflected.
//
// Implementation:
//   - Stage 1: deep-copy the columns; perm = identity; limit = k.
//   - Stage 2: for j = 0.. while j < limit and j < n:
//     residual norm test → rotate or reflect (alpha = −sign(a_jj)·norm).
//   - Stage 3: rank = number of reflected columns.
//
// Determinism: fixed j→p→i loop order.
// Complexity: O(n·k²) time, O(n·k) space.
func factorQR(cols [][]float64, ref []float64, tol float64) *qrFactor {
	k := len(cols)
	n := len(cols[0])
	f := &qrFactor{n: n, k: k, cols: make([][]float64, k), perm: make([]int, k)}
	for p := range cols {
		f.cols[p] = make([]float64, n)
		copy(f.cols[p], cols[p])
		f.perm[p] = p
	}

	var (
		i, j, p        int
		norm, alpha    float64
		beta, tau, sum float64
		c, v, rotCol   []float64
		rotIdx         int
	)
	limit := k
	for j < limit && j < n {
		c = f.cols[j]
		norm = 0
		for i = j; i < n; i++ {
			norm += c[i] * c[i]
		}
		norm = math.Sqrt(norm)

		if norm == 0 || norm <= tol*ref[f.perm[j]] {
			// Rotate position j to limit-1, shifting j+1..limit-1 left.
			rotCol, rotIdx = f.cols[j], f.perm[j]
			copy(f.cols[j:limit-1], f.cols[j+1:limit])
			copy(f.perm[j:limit-1], f.perm[j+1:limit])
			f.cols[limit-1], f.perm[limit-1] = rotCol, rotIdx
			limit--
			continue
		}

		alpha = -math.Copysign(norm, c[j])
		v = make([]float64, n)
		copy(v[j:], c[j:])
		v[j] -= alpha
		beta = 0
		for i = j; i < n; i++ {
			beta += v[i] * v[i]
		}
		tau = 2.0 / beta

		for p = j + 1; p < k; p++ {
			c = f.cols[p]
			sum = 0
			for i = j; i < n; i++ {
				sum += v[i] * c[i]
			}
			sum *= tau
			for i = j; i < n; i++ {
				c[i] -= sum * v[i]
			}
		}
		// The reflected pivot column is exactly (alpha, 0, …, 0) below row j-1.
		c = f.cols[j]
		c[j] = alpha
		for i = j + 1; i < n; i++ {
			c[i] = 0
		}

		f.vs = append(f.vs, v)
		f.taus = append(f.taus, tau)
		j++
	}
	f.rank = j

	return f
}

// qtApply overwrites y with Qᵀy.
func (f *qrFactor) qtApply(y []float64) {
	var sum float64
	for j, v := range f.vs {
		sum = 0
		for i := j; i < f.n; i++ {
			sum += v[i] * y[i]
		}
		sum *= f.taus[j]
		for i := j; i < f.n; i++ {
			y[i] -= sum * v[i]
		}
	}
}

// backSolve returns β (pivot order, length rank) with R₁₁ β = qty[:rank].
func (f *qrFactor) backSolve(qty []float64) []float64 {
	r := f.rank
	beta := make([]float64, r)
	var sum float64
	for i := r - 1; i >= 0; i-- {
		sum = qty[i]
		for p := i + 1; p < r; p++ {
			sum -= f.cols[p][i] * beta[p]
		}
		beta[i] = sum / f.cols[i][i]
	}

	return beta
}

// cond estimates cond(R₁₁) as max|R_ii| / min|R_ii|.
func (f *qrFactor) cond() float64 {
	if f.rank == 0 {
		return math.Inf(1)
	}
	lo, hi := math.Inf(1), 0.0
	for i := 0; i < f.rank; i++ {
		d := math.Abs(f.cols[i][i])
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}

	return hi / lo
}

// bread returns (R₁₁ᵀR₁₁)⁻¹ = R₁₁⁻¹R₁₁⁻ᵀ, i.e. (XᵀWX)⁻¹ over the kept columns.
// nearSingular reports a gonum Condition error from the triangular inverse;
// the result is still usable. Requires rank > 0.
func (f *qrFactor) bread() (out *mat.SymDense, nearSingular bool, err error) {
	r := f.rank
	data := make([]float64, r*r)
	for i := 0; i < r; i++ {
		for p := i; p < r; p++ {
			data[i*r+p] = f.cols[p][i]
		}
	}
	tri := mat.NewTriDense(r, mat.Upper, data)

	var inv mat.TriDense
	if ierr := inv.InverseTri(tri); ierr != nil {
		var cond mat.Condition
		if !errors.As(ierr, &cond) {
			return nil, false, fmt.Errorf("%w: %v", ErrFactorization, ierr)
		}
		nearSingular = true
	}
	out = mat.NewSymDense(r, nil)
	out.SymOuterK(1, &inv)

	return out, nearSingular, nil
}

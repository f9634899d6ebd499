// SPDX-License-Identifier: MIT

package demean

import "math"

// project replaces r by r − groupMean_d(r) in place. means is a scratch
// buffer of length G_d owned by the caller.
// Complexity: O(N + G_d).
func (e *Engine) project(r []float64, d int, means []float64) {
	idx := e.dims[d]
	for g := range means {
		means[g] = 0
	}
	if e.weights == nil {
		for i, v := range r {
			means[idx.Code(i)] += v
		}
	} else {
		for i, v := range r {
			means[idx.Code(i)] += e.weights[i] * v
		}
	}
	gw := e.groupW[d]
	for g := range means {
		means[g] /= gw[g]
	}
	for i := range r {
		r[i] -= means[idx.Code(i)]
	}
}

// dot is the weighted inner product Σ w a b.
func (e *Engine) dot(a, b []float64) float64 {
	var s float64
	if e.weights == nil {
		for i := range a {
			s += a[i] * b[i]
		}

		return s
	}
	for i := range a {
		s += e.weights[i] * a[i] * b[i]
	}

	return s
}

// change returns max|cur − prev| and the weighted ‖cur − prev‖₂.
func (e *Engine) change(cur, prev []float64) (maxAbs, l2 float64) {
	var ss, d float64
	for i := range cur {
		d = cur[i] - prev[i]
		if a := math.Abs(d); a > maxAbs {
			maxAbs = a
		}
		ss += e.weight(i) * d * d
	}

	return maxAbs, math.Sqrt(ss)
}

// ironsTuck overwrites x2 with the Irons–Tuck extrapolation of the iterates
// x0 → x1 → x2:
//
//	δ  = x2 − x1
//	δ² = x2 − 2·x1 + x0
//	x* = x2 − (⟨δ, δ²⟩ / ⟨δ², δ²⟩) · δ
//
// Returns false (x2 untouched) when δ² vanishes.
func (e *Engine) ironsTuck(x2, x1, x0 []float64) bool {
	var num, den, d1, d2, w float64
	for i := range x2 {
		d1 = x2[i] - x1[i]
		d2 = d1 - (x1[i] - x0[i])
		w = e.weight(i)
		num += w * d1 * d2
		den += w * d2 * d2
	}
	if den == 0 || math.IsNaN(num/den) {
		return false
	}
	coef := num / den
	for i := range x2 {
		x2[i] -= coef * (x2[i] - x1[i])
	}

	return true
}

// SPDX-License-Identifier: MIT

// Package converge holds the stop rule shared by the fixed-point loops of
// demean and ols: alternating projections and Gauss–Seidel recovery.
//
// Both loops apply a linear contraction T, so consecutive changes satisfy
// δ_{k+1} = T δ_k and the distance of iterate k to the limit is about
//
//	‖δ_k‖ · ρ / (1 − ρ)
//
// where ρ is the contraction rate, estimated from the ratio of consecutive
// changes. The loop stops when that estimate, not the raw last change, is
// within Tolerance · scale.
package converge

import "math"

// FloorFactor times machine epsilon times the scale is the change below
// which further steps only shuffle rounding error.
const FloorFactor = 64

// Tracker follows the changes of one iteration. The zero value is not
// usable; call New.
type Tracker struct {
	tol       float64
	target    float64
	floor     float64
	last      float64 // change of the previous step
	rate      float64 // largest ratio of comparable changes, NaN before one exists
	remaining float64
}

// New returns a tracker with the relative tolerance tol. Scale must be
// called before the first Observe that is expected to stop the loop.
func New(tol float64) *Tracker {
	return &Tracker{tol: tol, rate: math.NaN(), remaining: math.Inf(1)}
}

// Scale fixes the reference norm the tolerance is relative to.
func (t *Tracker) Scale(norm float64) {
	t.target = t.tol * norm
	t.floor = FloorFactor * eps * norm
}

// Observe records the norm of one step's change and reports whether the
// iteration has converged. comparable is false when the previous iterate was
// extrapolated, so the two latest changes are not linked by T.
func (t *Tracker) Observe(change float64, comparable bool) bool {
	last := t.last
	t.last = change
	if change == 0 || change <= t.floor {
		t.remaining = change
		return true
	}
	if !comparable || last == 0 {
		t.remaining = math.Inf(1)
		return false
	}

	// A non-expansive map cannot grow the change; a ratio ≥ 1 is rounding
	// noise and says nothing about ρ.
	ratio := change / last
	if ratio >= 1 {
		t.remaining = math.Inf(1)
		return false
	}
	// The largest ratio seen so far: right after an extrapolation fast modes
	// dominate the change and a single ratio understates ρ.
	if math.IsNaN(t.rate) || ratio > t.rate {
		t.rate = ratio
	}
	t.remaining = change * t.rate / (1 - t.rate)

	return t.remaining <= t.target
}

// Target returns Tolerance · scale.
func (t *Tracker) Target() float64 { return t.target }

// Rate returns the contraction estimate, or NaN.
func (t *Tracker) Rate() float64 { return t.rate }

// Remaining returns the estimated distance to the limit after the last
// observed step; +Inf while no estimate is available.
func (t *Tracker) Remaining() float64 { return t.remaining }

// Last returns the last observed change.
func (t *Tracker) Last() float64 { return t.last }

const eps = 0x1p-52

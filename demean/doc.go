// SPDX-License-Identifier: MIT

// Package demean removes fixed-effect group means from numeric columns.
//
// What & Why:
//
//	Regressing on a dummy for every level of every fixed effect is equivalent
//	to regressing the residualized ("within-transformed") columns on each
//	other. The Engine computes that residualization without materializing
//	the dummies.
//
// Algorithm (method of alternating projections):
//   - One dimension: subtract each observation's (weighted) group mean; exact.
//   - Two or more: sweep the dimensions in order, each time replacing the
//     residual by residual − groupMean_g(residual). The ratio of consecutive
//     sweep changes estimates the contraction rate ρ; the loop stops once
//     ‖Δ‖·ρ/(1−ρ), the estimated distance to the exact projection, is within
//     Tolerance·‖residual after the first sweep‖ (weighted L2 norms). What
//     the first sweep removes, such as a constant offset, does not loosen the
//     target.
//   - Every AccelEvery sweeps an Irons–Tuck extrapolation uses the last three
//     iterates to jump toward the fixed point. All iterates stay in
//     x + span(dummies), so the limit is unchanged.
//
// Concurrency:
//
//	An Engine is read-only after New. Column is safe for concurrent use; each
//	call owns its buffers. Columns fans the work out on a bounded errgroup.
//
// Errors:
//   - ErrNotConverged (*NotConvergedError) when MaxSweeps is reached.
//   - ErrLengthMismatch, ErrNaNInf, ErrNegativeWeight, ErrZeroWeightGroup on input.
//
// Complexity: O(N · dims) per sweep; memory O(N + ΣG) per column in flight.
package demean

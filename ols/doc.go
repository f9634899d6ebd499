// SPDX-License-Identifier: MIT

// Package ols solves weighted least squares on demeaned data.
//
// The factorization is a Householder QR with limited column pivoting: columns
// are processed in input order, and a column whose remaining norm falls below
// RankTolerance times its reference norm is moved behind the pivots. The
// kept columns therefore stay in input order and the later member of a
// collinear set is the one reported. Reference norms default to the column
// norms of the design itself; callers that demeaned the design should pass the
// norms of the raw columns (WithReferenceNorms), so that a regressor fully
// absorbed by the fixed effects is recognized even though demeaning only
// drives it to the convergence tolerance, not to exact zero.
//
// Collinearity policy is always explicit (see Policy):
//
//	PolicyError         — default; rank < K returns *RankDeficiencyError.
//	PolicyDrop          — solve on the kept columns; dropped ones get NaN.
//	PolicyPseudoInverse — minimum-norm solution via SVD (gonum) on column-
//	                      scaled data; every column gets a coefficient.
//
// Solution.Bread carries (X'WX)⁻¹ (or its pseudo-inverse) over the kept
// columns so the covariance layer never re-inverts the normal equations.
//
// RecoverFixedEffects back-substitutes the per-level fixed-effect estimates
// from the absorbed component y − Xβ − e.
package ols

// SPDX-License-Identifier: MIT

// Package feols estimates linear models with high-dimensional fixed effects.
//
// Estimate runs the whole pipeline for one specification:
//
//	Input ─► [singleton pruning] ─► demean.Engine (y and every column of X)
//	      ─► ols.Solve (rank-revealing QR, explicit collinearity policy)
//	      ─► vcov.Compute (same DFResid for every scheme) ─► *Fit
//
// The fixed effects are absorbed, never materialized as dummies. Their
// degrees of freedom are counted as
//
//	0 dimensions  → 0
//	1 dimension   → G₁
//	2 dimensions  → G₁ + G₂ − (connected sets of the bipartite level graph)
//	3+ dimensions → G₁ + Σ_{g≥2} (G_g − 1)
//
// and DFResid = N − rank − absorbed must be positive. Without fixed effects
// the design is used as given, so the caller supplies the intercept column.
//
// A *Fit is immutable; accessors return copies. EstimateBatch runs
// independent specifications on a bounded worker pool.
package feols

// SPDX-License-Identifier: MIT

// Package vcov computes the sampling covariance of least-squares coefficients.
//
// Every estimator works on the weighted demeaned design Xw (kept columns,
// rows scaled by √w) and the weighted residuals ew, and shares one residual
// degrees of freedom DFResid = N − K_eff − absorbed so that schemes are
// directly comparable:
//
//	Classical  σ²·B,              σ² = Σ ew² / DFResid
//	HC0        B (Σ ew_i² x_i x_iᵀ) B
//	HC1        HC0 · N / DFResid
//	HC2        ew_i² / (1 − h_ii)
//	HC3        ew_i² / (1 − h_ii)²
//	Cluster    B (Σ_c s_c s_cᵀ) B · C/(C−1) · (N−1)/DFResid,  s_c = Σ_{i∈c} x_i ew_i
//
// where B = (XwᵀXw)⁻¹ and h_ii = x_iᵀ B x_i. Multi-way clustering adds the
// one-way estimators of every non-empty subset of the cluster dimensions with
// sign (−1)^(|S|+1); the grouping of a subset is grouping.Intersect of its
// members. The combination may fail to be positive semi-definite; that is
// reported as a warning, not corrected.
//
// B is taken from Input.Bread when the solver already produced it; otherwise
// it is inverted here by Cholesky with an LU fallback (gonum/mat).
package vcov

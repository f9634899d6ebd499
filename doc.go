// Package hdfe estimates linear models with high-dimensional fixed effects:
// least squares in which every level of one or more categorical variables
// gets its own intercept, without ever building the dummy columns.
//
// What is inside?
//
//	grouping/  — dense first-seen codes, intersections, singleton pruning,
//	             connected sets of two dimensions
//	demean/    — alternating projections with Irons–Tuck acceleration,
//	             weights, a bounded worker pool across columns
//	ols/       — pivoted Householder QR with an explicit collinearity
//	             policy (error | drop | pseudo-inverse), fixed-effect recovery
//	vcov/      — classical, HC0–HC3 and multi-way cluster-robust covariance
//	feols/     — Estimate, the immutable Fit record, EstimateBatch
//	config/    — YAML settings mapped onto feols options
//
// Quick example:
//
//	firm, _ := grouping.Build("firm", firmIDs)
//	year, _ := grouping.Build("year", years)
//	fit, err := feols.Estimate(feols.Input{
//		Y:            wage,
//		X:            [][]float64{tenure, hours},
//		Names:        []string{"tenure", "hours"},
//		FixedEffects: []*grouping.Index{firm, year},
//		Clusters:     []*grouping.Index{firm},
//	}, feols.WithScheme(vcov.Cluster))
//
// Numerics are pure Go on top of gonum; logging is zap, metrics Prometheus.
//
//	go get github.com/katalvlaran/hdfe
package hdfe

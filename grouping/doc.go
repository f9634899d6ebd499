// SPDX-License-Identifier: MIT

// Package grouping canonicalizes categorical columns into dense integer codes.
//
// An Index maps every observation to a code in [0, G) and keeps the inverse
// mapping (code → ascending observation indices). Codes are assigned in
// first-seen order, so two inputs that list the same categories in the same
// order always produce identical indices regardless of the category type.
//
// Constructors:
//
//	Build      — fixed-effect dimension; rejects degenerate groupings
//	             (a single level, or one observation per level).
//	Encode     — same coding without degeneracy checks (clusters, derived keys).
//	Intersect  — Cartesian product of several indices as a new Index
//	             (interacted fixed effects, multi-way cluster intersections).
//
// Helpers:
//
//	PruneSingletons — iteratively drops observations that sit alone in a group
//	                  of any dimension; Subset re-indexes on the survivors.
//	ConnectedSets   — number of connected components of the bipartite graph
//	                  linking the levels of two dimensions (BFS, O(N + G₁ + G₂)).
//
// Complexity: every constructor is O(N) time and O(N + G) memory.
package grouping

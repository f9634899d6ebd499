// SPDX-License-Identifier: MIT

package ols

import (
	"errors"
	"fmt"
)

var (
	// ErrRankDeficient is matched by *RankDeficiencyError.
	ErrRankDeficient = errors.New("ols: design matrix is rank deficient")

	// ErrNoColumns indicates an empty design.
	ErrNoColumns = errors.New("ols: design has no columns")

	// ErrLengthMismatch indicates columns, response or weights of different N.
	ErrLengthMismatch = errors.New("ols: length mismatch")

	// ErrNaNInf indicates a NaN or ±Inf input.
	ErrNaNInf = errors.New("ols: NaN or Inf encountered")

	// ErrFactorization indicates a failed SVD or triangular inversion.
	ErrFactorization = errors.New("ols: factorization failed")

	// ErrNotConverged indicates fixed-effect back-substitution hit its cap.
	ErrNotConverged = errors.New("ols: fixed-effect recovery did not converge")
)

// RankDeficiencyError lists the columns that are linear combinations of the
// columns kept before them (after demeaning).
type RankDeficiencyError struct {
	Columns []int // input positions, ascending
	Names   []string
	Rank    int
	K       int
}

func (e *RankDeficiencyError) Error() string {
	what := fmt.Sprint(e.Columns)
	if len(e.Names) == len(e.Columns) && len(e.Names) > 0 {
		what = fmt.Sprint(e.Names)
	}

	return fmt.Sprintf("ols: design matrix is rank deficient: rank %d < %d, collinear columns %s", e.Rank, e.K, what)
}

// Is reports whether target is ErrRankDeficient.
func (e *RankDeficiencyError) Is(target error) bool { return target == ErrRankDeficient }

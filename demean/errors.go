// SPDX-License-Identifier: MIT

package demean

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConverged is matched by *NotConvergedError.
	ErrNotConverged = errors.New("demean: alternating projections did not converge")

	// ErrNoDimensions indicates an Engine built without grouping indices.
	ErrNoDimensions = errors.New("demean: no fixed-effect dimensions")

	// ErrLengthMismatch indicates a column, weight vector or index with the wrong N.
	ErrLengthMismatch = errors.New("demean: length mismatch")

	// ErrNaNInf indicates a NaN or ±Inf in a column or weight vector.
	ErrNaNInf = errors.New("demean: NaN or Inf encountered")

	// ErrNegativeWeight indicates a weight below zero.
	ErrNegativeWeight = errors.New("demean: negative weight")

	// ErrZeroWeightGroup indicates a group whose weights sum to zero; its mean is undefined.
	ErrZeroWeightGroup = errors.New("demean: group with zero total weight")
)

// NotConvergedError reports the column and the tolerance reached when the
// sweep cap was hit.
type NotConvergedError struct {
	Column   int     // position in the Columns call (0 for Column)
	Name     string  // optional column label
	Sweeps   int     // sweeps performed
	Achieved float64 // estimated distance to the projection, +Inf without a rate
	Target   float64 // Tolerance · ‖residual after the first sweep‖₂
}

func (e *NotConvergedError) Error() string {
	return fmt.Sprintf("demean: column %d (%s) not converged after %d sweeps: estimated error %.3g > target %.3g",
		e.Column, e.Name, e.Sweeps, e.Achieved, e.Target)
}

// Is reports whether target is ErrNotConverged.
func (e *NotConvergedError) Is(target error) bool { return target == ErrNotConverged }

// SPDX-License-Identifier: MIT

package grouping

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned when a categorical column has no observations.
	ErrEmpty = errors.New("grouping: empty input")

	// ErrDegenerateGrouping marks a fixed-effect dimension without usable variation.
	// Match with errors.Is; the concrete value is a *DegenerateError.
	ErrDegenerateGrouping = errors.New("grouping: degenerate grouping")

	// ErrLengthMismatch indicates indices or masks that disagree on N.
	ErrLengthMismatch = errors.New("grouping: length mismatch")

	// ErrNilIndex indicates a nil *Index argument.
	ErrNilIndex = errors.New("grouping: nil index")
)

// DegenerateError reports which dimension is degenerate and why.
type DegenerateError struct {
	Dimension string // index name
	Levels    int    // distinct levels G
	N         int    // observations
}

func (e *DegenerateError) Error() string {
	if e.Levels < 2 {
		return fmt.Sprintf("grouping: degenerate grouping %q: single level over %d observations", e.Dimension, e.N)
	}

	return fmt.Sprintf("grouping: degenerate grouping %q: %d levels for %d observations", e.Dimension, e.Levels, e.N)
}

// Is reports whether target is ErrDegenerateGrouping.
func (e *DegenerateError) Is(target error) bool { return target == ErrDegenerateGrouping }

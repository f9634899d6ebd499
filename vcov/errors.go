// SPDX-License-Identifier: MIT

package vcov

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidScheme is matched by *InvalidSchemeError.
	ErrInvalidScheme = errors.New("vcov: invalid covariance scheme")

	// ErrSingularCovariance is matched by *SingularError.
	ErrSingularCovariance = errors.New("vcov: singular covariance")

	// ErrInsufficientClusters is matched by *InsufficientClustersError.
	ErrInsufficientClusters = errors.New("vcov: fewer than two clusters")

	// ErrLengthMismatch indicates design, residuals or clusters of different N.
	ErrLengthMismatch = errors.New("vcov: length mismatch")

	// ErrNoColumns indicates an empty design.
	ErrNoColumns = errors.New("vcov: design has no columns")

	// ErrDegreesOfFreedom indicates DFResid < 1.
	ErrDegreesOfFreedom = errors.New("vcov: non-positive residual degrees of freedom")

	// ErrNoClusters indicates the Cluster scheme without cluster dimensions.
	ErrNoClusters = errors.New("vcov: cluster scheme requires at least one cluster dimension")
)

// InvalidSchemeError names the rejected scheme string.
type InvalidSchemeError struct {
	Name string
}

func (e *InvalidSchemeError) Error() string {
	return fmt.Sprintf("vcov: invalid covariance scheme %q", e.Name)
}

// Is reports whether target is ErrInvalidScheme.
func (e *InvalidSchemeError) Is(target error) bool { return target == ErrInvalidScheme }

// SingularError reports a numerically singular XᵀX or a leverage of one.
type SingularError struct {
	Reason      string
	Observation int // offending row for HC2/HC3, −1 otherwise
}

func (e *SingularError) Error() string {
	if e.Observation >= 0 {
		return fmt.Sprintf("vcov: singular covariance: %s (observation %d)", e.Reason, e.Observation)
	}

	return "vcov: singular covariance: " + e.Reason
}

// Is reports whether target is ErrSingularCovariance.
func (e *SingularError) Is(target error) bool { return target == ErrSingularCovariance }

// InsufficientClustersError names the cluster dimension with C < 2.
type InsufficientClustersError struct {
	Dimension string
	Count     int
}

func (e *InsufficientClustersError) Error() string {
	return fmt.Sprintf("vcov: cluster dimension %q has %d cluster(s), need at least 2", e.Dimension, e.Count)
}

// Is reports whether target is ErrInsufficientClusters.
func (e *InsufficientClustersError) Is(target error) bool { return target == ErrInsufficientClusters }

// SPDX-License-Identifier: MIT

// Package telemetry builds the zap logger and the Prometheus collectors used
// by estimation. A nil *Metrics is valid and records nothing.
package telemetry

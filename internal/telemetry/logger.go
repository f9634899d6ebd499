// SPDX-License-Identifier: MIT

package telemetry

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger returns a zap logger at the given level ("debug", "info", "warn",
// "error"; empty means info). development switches to the human-readable
// development encoder.
func NewLogger(level string, development bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("telemetry: log level %q: %w", level, err)
		}
		cfg.Level = lvl
	}

	return cfg.Build()
}

// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all estimator settings.
type Config struct {
	Demean         DemeanConfig `yaml:"demean"`
	Solver         SolverConfig `yaml:"solver"`
	Vcov           VcovConfig   `yaml:"vcov"`
	DropSingletons bool         `yaml:"drop_singletons"`
	Fixef          FixefConfig  `yaml:"fixef"`
	Log            LogConfig    `yaml:"log"`
}

// DemeanConfig holds alternating-projection settings.
type DemeanConfig struct {
	Tolerance  float64 `yaml:"tolerance"`
	MaxSweeps  int     `yaml:"max_sweeps"`
	AccelEvery int     `yaml:"accel_every"`
	Accelerate *bool   `yaml:"accelerate"`
	Workers    int     `yaml:"workers"`
}

// AccelerateOrDefault reports whether Irons–Tuck acceleration is on; true when unset.
func (d *DemeanConfig) AccelerateOrDefault() bool {
	if d.Accelerate != nil {
		return *d.Accelerate
	}

	return true
}

// SolverConfig holds least-squares settings.
type SolverConfig struct {
	Collinearity string  `yaml:"collinearity"`
	RankTol      float64 `yaml:"rank_tol"`
}

// VcovConfig selects the covariance scheme.
type VcovConfig struct {
	Scheme string `yaml:"scheme"`
}

// FixefConfig controls fixed-effect recovery.
type FixefConfig struct {
	Recover bool `yaml:"recover"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Load reads the YAML file at path, applies defaults and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates. Unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: failed to parse: %w", err)
	}
	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: failed to marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}

	return nil
}

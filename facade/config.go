// File: facade/config.go
// YAML configuration loading for the facade.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package facade

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML file over DefaultConfig. Missing keys keep their
// defaults; negative thresholds are rejected here rather than later at
// schedule time.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and the late policy name.
func (c *Config) Validate() error {
	if c.DispatchGroupThreshold < 0 {
		return fmt.Errorf("dispatch_group_threshold must be non-negative")
	}
	if c.VsyncMoveThreshold < 0 {
		return fmt.Errorf("vsync_move_threshold must be non-negative")
	}
	if c.SeedPeriod < 0 {
		return fmt.Errorf("seed_period must be non-negative")
	}
	if _, err := latePolicy(c.LatePolicy); err != nil {
		return err
	}
	return nil
}

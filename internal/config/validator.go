package config

import (
	"fmt"
	"strings"

	"github.com/gyaneshwarpardhi/ecmproute/internal/routing"
)

// Validate checks the config for:
//   - Required fields
//   - Non-negative engine limits
//   - A known ECMP policy
func Validate(cfg *Config) error {
	var errs []string
	if cfg.Version == "" {
		errs = append(errs, "version is required")
	}
	if cfg.Topology == "" {
		errs = append(errs, "topology is required")
	}

	e := cfg.Engine
	if e.Workers < 1 {
		errs = append(errs, fmt.Sprintf("engine.workers must be positive, got %d", e.Workers))
	}
	if e.QueueDepth < 1 {
		errs = append(errs, fmt.Sprintf("engine.queue_depth must be positive, got %d", e.QueueDepth))
	}
	if e.TimeoutMs < 0 {
		errs = append(errs, fmt.Sprintf("engine.timeout_ms must not be negative, got %d", e.TimeoutMs))
	}
	if e.MaxNodes < 0 {
		errs = append(errs, fmt.Sprintf("engine.max_nodes must not be negative, got %d", e.MaxNodes))
	}
	if _, err := routing.ParsePolicy(e.ECMPPolicy); err != nil {
		errs = append(errs, "engine.ecmp_policy: "+err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.GroupHopLimit <= 0 {
		return errors.New("analysis.group_hop_limit must be positive")
	}
	if c.Analysis.SilentVolume < 0 {
		return errors.New("analysis.silent_volume must not be negative")
	}
	if c.Analysis.MaxParamsPerDevice < 0 {
		return errors.New("analysis.max_params_per_device must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

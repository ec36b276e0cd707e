package testsupport

import (
	"path/filepath"
	"testing"

	"setlint/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "reports")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.History.Path = filepath.Join(base, "history.db")
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "error"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithBusPatterns overrides the orphan-bus name table.
func WithBusPatterns(patterns ...string) ConfigOption {
	return func(c *config.Config) {
		c.BusHeuristic.Patterns = patterns
	}
}

// WithHistoryDisabled turns off run recording.
func WithHistoryDisabled() ConfigOption {
	return func(c *config.Config) {
		c.History.Enabled = false
	}
}

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Error("file should not exist")
	}
	if cfg.Analysis.GroupHopLimit != defaultGroupHopLimit {
		t.Errorf("group hop limit = %d", cfg.Analysis.GroupHopLimit)
	}
	if cfg.Analysis.SilentVolume != defaultSilentVolume {
		t.Errorf("silent volume = %v", cfg.Analysis.SilentVolume)
	}
	if !reflect.DeepEqual(cfg.BusHeuristic.Patterns, defaultBusPatterns()) {
		t.Errorf("patterns = %v", cfg.BusHeuristic.Patterns)
	}
	if !cfg.History.Enabled {
		t.Error("history should default enabled")
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `[analysis]
group_hop_limit = 3
silent_volume = 0.01

[bus_heuristic]
patterns = ["  STEM ", ""]

[output]
minify = true

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Errorf("resolved = %q exists = %v", resolved, exists)
	}
	if cfg.Analysis.GroupHopLimit != 3 {
		t.Errorf("group hop limit = %d", cfg.Analysis.GroupHopLimit)
	}
	if cfg.Analysis.SilentVolume != 0.01 {
		t.Errorf("silent volume = %v", cfg.Analysis.SilentVolume)
	}
	// Patterns are lowercased, trimmed, and emptied entries dropped.
	if !reflect.DeepEqual(cfg.BusHeuristic.Patterns, []string{"stem"}) {
		t.Errorf("patterns = %v", cfg.BusHeuristic.Patterns)
	}
	if !cfg.Output.Minify {
		t.Error("minify should be set")
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"zero hop limit", "[analysis]\ngroup_hop_limit = 0\n"},
		{"negative silent volume", "[analysis]\nsilent_volume = -1.0\n"},
		{"bad log format", "[logging]\nformat = \"xml\"\n"},
		{"bad log level", "[logging]\nlevel = \"verbose\"\n"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, _, _, err := Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/reports")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "reports") {
		t.Errorf("expanded = %q", got)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.History.Path = filepath.Join(base, "state", "history.db")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.LogDir, filepath.Join(base, "state")} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("directory %q missing: %v", dir, err)
		}
	}
}

func TestCreateSampleParsesBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Error("sample should exist")
	}
	// The sample documents the defaults; parsing it must reproduce them.
	def := Default()
	if cfg.Analysis != def.Analysis {
		t.Errorf("analysis = %+v, want %+v", cfg.Analysis, def.Analysis)
	}
	if !strings.EqualFold(cfg.Logging.Format, def.Logging.Format) {
		t.Errorf("format = %q", cfg.Logging.Format)
	}
}

package config

const (
	defaultOutputDir          = "."
	defaultLogDir             = "~/.local/share/setlint/logs"
	defaultHistoryPath        = "~/.local/share/setlint/history.db"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultGroupHopLimit      = 8
	defaultSilentVolume       = 1e-6
	defaultMaxParamsPerDevice = 120
)

func defaultBusPatterns() []string {
	return []string{"bus", "return", "fx", "send", "recv", "receive"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Analysis: Analysis{
			GroupHopLimit:      defaultGroupHopLimit,
			SilentVolume:       defaultSilentVolume,
			MaxParamsPerDevice: defaultMaxParamsPerDevice,
		},
		BusHeuristic: BusHeuristic{
			Patterns: defaultBusPatterns(),
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

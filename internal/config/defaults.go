package config

const (
	defaultBaseDir    = "logs"
	defaultExperiment = "multiturn_log_dir"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"
	// Retention disabled by default: profiling runs decide their own
	// housekeeping cadence.
	defaultRetentionDays = 0
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultRetentionDays,
		},
	}
}

// Package config loads and validates rolloutlog configuration.
//
// Configuration lives in a TOML file (~/.config/rolloutlog/config.toml or a
// rolloutlog.toml in the working directory), with environment fallbacks for
// the values the profiling library itself reads: PROFILE_LOG_ROOT and
// EXPERIMENT_NAME. Missing values are not errors; documented defaults apply
// silently.
package config

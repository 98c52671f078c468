package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// LogRoot is the base directory experiment log dirs are joined under.
	// Empty means: use PROFILE_LOG_ROOT if set, else "logs".
	LogRoot string `toml:"log_root"`
	// Experiment names the subdirectory under LogRoot. Empty means: use
	// EXPERIMENT_NAME if set, else "multiturn_log_dir".
	Experiment string `toml:"experiment"`
	// ReportDB is the SQLite database the report command aggregates into.
	// Empty means <log dir>/report.db.
	ReportDB string `toml:"report_db"`
}

// Logging contains configuration for the CLI's own diagnostic output and for
// retention of profiling step directories.
type Logging struct {
	Level         string `toml:"level"`
	Format        string `toml:"format"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for rolloutlog.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/rolloutlog/config.toml")
}

// SampleConfig returns the embedded sample configuration file.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and environment fallbacks applied. The
// second return is the resolved config path, the third whether the file
// existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("rolloutlog.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error

	c.Paths.LogRoot = strings.TrimSpace(c.Paths.LogRoot)
	if c.Paths.LogRoot == "" {
		if value, ok := os.LookupEnv("PROFILE_LOG_ROOT"); ok {
			c.Paths.LogRoot = strings.TrimSpace(value)
		}
	}
	if c.Paths.LogRoot == "" {
		c.Paths.LogRoot = defaultBaseDir
	}
	if c.Paths.LogRoot, err = ExpandPath(c.Paths.LogRoot); err != nil {
		return fmt.Errorf("paths.log_root: %w", err)
	}

	c.Paths.Experiment = strings.TrimSpace(c.Paths.Experiment)
	if c.Paths.Experiment == "" {
		if value, ok := os.LookupEnv("EXPERIMENT_NAME"); ok {
			c.Paths.Experiment = strings.TrimSpace(value)
		}
	}
	if c.Paths.Experiment == "" {
		c.Paths.Experiment = defaultExperiment
	}

	c.Paths.ReportDB = strings.TrimSpace(c.Paths.ReportDB)
	if c.Paths.ReportDB == "" {
		c.Paths.ReportDB = filepath.Join(c.LogDir(), "report.db")
	}
	if c.Paths.ReportDB, err = ExpandPath(c.Paths.ReportDB); err != nil {
		return fmt.Errorf("paths.report_db: %w", err)
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if c.Logging.RetentionDays < 0 {
		return fmt.Errorf("logging.retention_days: must be >= 0, got %d", c.Logging.RetentionDays)
	}
	return nil
}

// LogDir returns the effective experiment log directory.
func (c *Config) LogDir() string {
	return filepath.Join(c.Paths.LogRoot, c.Paths.Experiment)
}

// EnsureDirectories creates the experiment log directory.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.LogDir(), 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.LogDir(), err)
	}
	return nil
}

// ExpandPath resolves a leading ~ against the current user's home directory
// and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", path, err)
	}
	return abs, nil
}

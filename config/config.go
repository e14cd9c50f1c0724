// Package config provides configuration for the LifeLapse core.
// Values come from built-in defaults, an optional YAML file in the data
// directory, and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// Default values
	DefaultLogLevel = "info"
	DefaultDataDir  = ".lifelapse"

	// Environment variable names
	EnvLogLevel   = "LIFELAPSE_LOG_LEVEL"
	EnvDataDir    = "LIFELAPSE_DATA_DIR"
	EnvFFmpegPath = "LIFELAPSE_FFMPEG"
	EnvExportDir  = "LIFELAPSE_EXPORT_DIR"

	// Database filename
	DBFilename = "lifelapse.db"

	// Optional config file, relative to the data directory
	ConfigFilename = "config.yaml"
)

// Config defines the application configuration interface
type Config interface {
	LogLevel() string
	DataDir() string
	DBPath() string
	FramesDir() string
	ThumbsDir() string
	ExportDir() string
	FFmpegPath() string
}

// EnvConfig reads configuration from an optional YAML file plus
// environment variable overrides
type EnvConfig struct {
	logLevel   string
	dataDir    string
	exportDir  string
	ffmpegPath string
}

// fileConfig mirrors the optional YAML file layout
type fileConfig struct {
	LogLevel   string `yaml:"log_level"`
	ExportDir  string `yaml:"export_dir"`
	FFmpegPath string `yaml:"ffmpeg_path"`
}

// New creates a new EnvConfig with defaults, YAML file values, and
// environment variable overrides applied in that order
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		logLevel:   DefaultLogLevel,
		dataDir:    defaultDataDir(),
		ffmpegPath: "ffmpeg",
	}

	// The data directory must resolve first: the config file lives in it.
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}
	cfg.exportDir = filepath.Join(cfg.dataDir, "exports")

	if err := cfg.applyFile(filepath.Join(cfg.dataDir, ConfigFilename)); err != nil {
		return nil, err
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}
	if fp := os.Getenv(EnvFFmpegPath); fp != "" {
		cfg.ffmpegPath = fp
	}
	if ed := os.Getenv(EnvExportDir); ed != "" {
		cfg.exportDir = ed
	}

	return cfg, nil
}

func (c *EnvConfig) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", ConfigFilename, err)
	}

	if fc.LogLevel != "" {
		c.logLevel = fc.LogLevel
	}
	if fc.ExportDir != "" {
		c.exportDir = fc.ExportDir
	}
	if fc.FFmpegPath != "" {
		c.ffmpegPath = fc.FFmpegPath
	}
	return nil
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// FramesDir returns the directory captured frame images are written to
func (c *EnvConfig) FramesDir() string {
	return filepath.Join(c.dataDir, "frames")
}

// ThumbsDir returns the directory cached thumbnails are written to
func (c *EnvConfig) ThumbsDir() string {
	return filepath.Join(c.dataDir, "thumbs")
}

// ExportDir returns the directory exported videos are written to
func (c *EnvConfig) ExportDir() string {
	return c.exportDir
}

// FFmpegPath returns the ffmpeg binary to invoke for exports
func (c *EnvConfig) FFmpegPath() string {
	return c.ffmpegPath
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

package config

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	dirtyerrors "github.com/iamkaf/dirty/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	Scan   ScanConfig   `mapstructure:"scan"`
	Output OutputConfig `mapstructure:"output"`
	Log    LogConfig    `mapstructure:"log"`
}

// ScanConfig holds repository discovery and probing configuration
type ScanConfig struct {
	Depth   int           `mapstructure:"depth"`   // Max depth below the scan root (default: 3)
	Jobs    int           `mapstructure:"jobs"`    // Concurrent probes, 0 means one per CPU
	Timeout time.Duration `mapstructure:"timeout"` // Per-repository probe limit, 0 disables it
	Exclude []string      `mapstructure:"exclude"` // Directory names never descended into
}

// OutputConfig holds presentation configuration
type OutputConfig struct {
	Format string `mapstructure:"format"` // "text", "json" or "yaml"
	Color  string `mapstructure:"color"`  // "auto" or "never"
}

// LogConfig holds diagnostic logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"` // "debug", "info", "warn" or "error"
}

// Accepted values for enumerated settings.
var (
	ValidFormats   = []string{"text", "json", "yaml"}
	ValidColors    = []string{"auto", "never"}
	ValidLogLevels = []string{"debug", "info", "warn", "error"}
)

// Load loads the configuration from file and environment variables
func Load() (*Config, error) {
	config := &Config{}

	// Set defaults
	setDefaults()

	// Unmarshal the config
	if err := viper.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return config, nil
}

// Validate validates the configuration and returns any validation errors.
func (c *Config) Validate() error {
	if c.Scan.Depth < 0 {
		return dirtyerrors.NewConfigError("scan.depth", "must not be negative")
	}
	if c.Scan.Jobs < 0 {
		return dirtyerrors.NewConfigError("scan.jobs", "must not be negative")
	}
	if c.Scan.Timeout < 0 {
		return dirtyerrors.NewConfigError("scan.timeout", "must not be negative")
	}
	if err := validateChoice("output.format", c.Output.Format, ValidFormats); err != nil {
		return err
	}
	if err := validateChoice("output.color", c.Output.Color, ValidColors); err != nil {
		return err
	}
	return validateChoice("log.level", c.Log.Level, ValidLogLevels)
}

func validateChoice(field, value string, valid []string) error {
	if slices.Contains(valid, value) {
		return nil
	}
	return dirtyerrors.NewConfigError(field, errors.Newf("invalid value %q: must be one of: %v", value, valid).Error())
}

// setDefaults sets default configuration values
func setDefaults() {
	// Scan defaults
	viper.SetDefault("scan.depth", 3)
	viper.SetDefault("scan.jobs", 0)
	viper.SetDefault("scan.timeout", "0s")
	viper.SetDefault("scan.exclude", []string{})

	// Output defaults
	viper.SetDefault("output.format", "text")
	viper.SetDefault("output.color", "auto")

	// Log defaults
	viper.SetDefault("log.level", "warn")
}

// fileView mirrors Config with the field names used in config.toml.
type fileView struct {
	Scan struct {
		Depth   int      `toml:"depth"`
		Jobs    int      `toml:"jobs"`
		Timeout string   `toml:"timeout"`
		Exclude []string `toml:"exclude"`
	} `toml:"scan"`
	Output struct {
		Format string `toml:"format"`
		Color  string `toml:"color"`
	} `toml:"output"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

// MarshalTOML renders the configuration in config file syntax.
func (c *Config) MarshalTOML() ([]byte, error) {
	var v fileView
	v.Scan.Depth = c.Scan.Depth
	v.Scan.Jobs = c.Scan.Jobs
	v.Scan.Timeout = c.Scan.Timeout.String()
	v.Scan.Exclude = c.Scan.Exclude
	if v.Scan.Exclude == nil {
		v.Scan.Exclude = []string{}
	}
	v.Output.Format = c.Output.Format
	v.Output.Color = c.Output.Color
	v.Log.Level = c.Log.Level

	data, err := toml.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode config")
	}
	return data, nil
}

// ExpandPath expands a leading ~ to the home directory
func ExpandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, path[1:]), nil
}

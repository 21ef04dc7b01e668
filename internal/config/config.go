// Package config loads liqgen.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/liqgen/internal/codegen"
	"github.com/roach88/liqgen/internal/devices"
)

// Environment variables read by Load.
const (
	EnvConfig   = "LIQGEN_CONFIG"    // config file path when --config is not given
	EnvDatabase = "LIQGEN_DB"        // overrides library.path
	EnvLogLevel = "LIQGEN_LOG_LEVEL" // overrides logging.level
)

// DefaultFileName is looked up in the working directory when neither
// --config nor LIQGEN_CONFIG names a file.
const DefaultFileName = "liqgen.yaml"

// Config holds all liqgen configuration.
type Config struct {
	Output  OutputConfig        `yaml:"output"`
	Library LibraryConfig       `yaml:"library"`
	Logging LoggingConfig       `yaml:"logging"`
	Fault   codegen.FaultPolicy `yaml:"fault"`
	Devices DevicesConfig       `yaml:"devices"`

	// path is the file the config was read from, empty for defaults.
	path string
}

// OutputConfig configures code generation output.
type OutputConfig struct {
	Language string `yaml:"language"` // c, lua
	Dir      string `yaml:"dir"`      // where generate writes when -o names no directory
}

// LibraryConfig configures the process library.
type LibraryConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// DevicesConfig extends or overrides the builtin device table.
type DevicesConfig struct {
	File    string           `yaml:"file"` // YAML device list, relative to the config file
	Entries []devices.Device `yaml:"entries"`
}

// ValidLogLevels lists the accepted logging.level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// ValidLogFormats lists the accepted logging.format values.
var ValidLogFormats = []string{"console", "json"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Language: string(codegen.FormatC),
			Dir:      ".",
		},
		Library: LibraryConfig{
			Path: "liqgen.db",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Fault: codegen.DefaultFaultPolicy,
	}
}

// Load reads the configuration. flagPath is the --config value; when empty
// LIQGEN_CONFIG is used, then liqgen.yaml in the working directory. A file
// that was named explicitly must exist; a missing default file yields the
// defaults. Environment overrides are applied last.
func Load(flagPath string) (*Config, error) {
	path, explicit := flagPath, true
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path, explicit = DefaultFileName, false
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.parse(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg.path = path
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Defaults
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parse decodes YAML over the receiver with strict field validation.
func (c *Config) parse(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // Reject unknown fields
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if path := os.Getenv(EnvDatabase); path != "" {
		c.Library.Path = path
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if _, err := codegen.ParseFormat(c.Output.Language); err != nil {
		return fmt.Errorf("output.language: %w", err)
	}
	if !slices.Contains(ValidLogLevels, c.Logging.Level) {
		return fmt.Errorf("invalid logging.level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	if !slices.Contains(ValidLogFormats, c.Logging.Format) {
		return fmt.Errorf("invalid logging.format: %s (valid: %v)", c.Logging.Format, ValidLogFormats)
	}
	if c.Library.Path == "" {
		return fmt.Errorf("library.path must not be empty")
	}
	return nil
}

// Path returns the file the configuration was read from, or "" when only
// defaults are in effect.
func (c *Config) Path() string {
	return c.path
}

// Format returns the configured default output language.
func (c *Config) Format() codegen.Format {
	f, _ := codegen.ParseFormat(c.Output.Language)
	return f
}

// Registry builds the effective device table: the builtin devices, then the
// devices file, then inline entries, later entries replacing earlier ones.
func (c *Config) Registry() (*devices.Registry, error) {
	reg := devices.Builtin()

	if c.Devices.File != "" {
		path := c.Devices.File
		if !filepath.IsAbs(path) && c.path != "" {
			path = filepath.Join(filepath.Dir(c.path), path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("devices.file: %w", err)
		}
		defer f.Close()

		devs, err := devices.DecodeYAML(f)
		if err != nil {
			return nil, fmt.Errorf("devices.file %s: %w", path, err)
		}
		if err := reg.Merge(devs...); err != nil {
			return nil, fmt.Errorf("devices.file %s: %w", path, err)
		}
	}

	if err := reg.Merge(c.Devices.Entries...); err != nil {
		return nil, fmt.Errorf("devices.entries: %w", err)
	}
	return reg, nil
}

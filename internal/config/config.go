// Package config loads the optional rsttools configuration file.
//
// Values are resolved in this order: built-in defaults, the YAML file (after
// environment variable expansion), then RSTTOOLS_* environment overrides.
// Command-line flags are applied by the caller on top of the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/rsttools/internal/rst"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = ".rsttools.yaml"

// DefaultDateFormat matches the docinfo date written by the dates command.
const DefaultDateFormat = "2006-01-02 15:04:05"

// Config holds the tool settings shared by all commands.
type Config struct {
	Extension  string    `yaml:"extension"`
	Exclude    []string  `yaml:"exclude"`
	GitAware   bool      `yaml:"git_aware"`
	Backup     bool      `yaml:"backup"`
	Color      ColorMode `yaml:"color"`
	LogLevel   LogLevel  `yaml:"log_level"`
	LogFormat  LogFormat `yaml:"log_format"`
	DateFormat string    `yaml:"date_format"`
	DateStep   string    `yaml:"date_step"`

	dateStep time.Duration
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Extension:  rst.DefaultExtension,
		Exclude:    []string{"_build", ".git", "node_modules"},
		GitAware:   true,
		Color:      ColorAuto,
		LogLevel:   LogLevelInfo,
		LogFormat:  LogFormatText,
		DateFormat: DefaultDateFormat,
		DateStep:   "1m",
		dateStep:   time.Minute,
	}
}

// Load reads the configuration at path. A missing file yields the defaults
// unless required is set.
func Load(path string, required bool) (*Config, error) {
	loadEnvFiles()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if required {
			return nil, fmt.Errorf("configuration file not found: %s", path)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// DateStepDuration is the interval between consecutive entries of a date cascade.
func (c *Config) DateStepDuration() time.Duration {
	return c.dateStep
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RSTTOOLS_EXTENSION"); v != "" {
		cfg.Extension = v
	}
	if v := os.Getenv("RSTTOOLS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = LogLevel(v)
	}
	if v := os.Getenv("RSTTOOLS_COLOR"); v != "" {
		cfg.Color = ColorMode(v)
	}
	// https://no-color.org
	if os.Getenv("NO_COLOR") != "" {
		cfg.Color = ColorNever
	}
}

func (c *Config) normalize() error {
	ext := strings.TrimSpace(c.Extension)
	if ext == "" || ext == "." {
		return errors.New("extension must not be empty")
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Extension = ext

	var err error
	if c.Color, err = colorNormalizer.NormalizeWithError(string(c.Color)); err != nil {
		return err
	}
	if c.LogLevel, err = logLevelNormalizer.NormalizeWithError(string(c.LogLevel)); err != nil {
		return err
	}
	if c.LogFormat, err = logFormatNormalizer.NormalizeWithError(string(c.LogFormat)); err != nil {
		return err
	}

	if strings.TrimSpace(c.DateFormat) == "" {
		c.DateFormat = DefaultDateFormat
	}
	if c.DateStep == "" {
		c.DateStep = "1m"
	}
	step, err := time.ParseDuration(c.DateStep)
	if err != nil {
		return fmt.Errorf("invalid date_step %q: %w", c.DateStep, err)
	}
	if step <= 0 {
		return fmt.Errorf("date_step must be positive, got %s", c.DateStep)
	}
	c.dateStep = step

	excludes := c.Exclude[:0]
	for _, e := range c.Exclude {
		if e = strings.TrimSpace(e); e != "" {
			excludes = append(excludes, e)
		}
	}
	c.Exclude = excludes
	return nil
}

// Package config loads warden.yml, the per-install configuration of the
// session registry. All fields are optional; a missing file yields a fully
// defaulted configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/warden/errors"
	"github.com/grovetools/warden/pkg/paths"
)

// Config is the warden.yml document.
type Config struct {
	// StorePath overrides where the session document lives.
	StorePath string `yaml:"store_path,omitempty"`

	// GrovesFile overrides where the grove directory file lives.
	GrovesFile string `yaml:"groves_file,omitempty"`

	// ClaudeRoot overrides the Claude agent's private data directory.
	ClaudeRoot string `yaml:"claude_root,omitempty"`

	// StalenessMinutes is the retention threshold for terminal session
	// records. Zero means the built-in 60 minute default.
	StalenessMinutes int `yaml:"staleness_minutes,omitempty"`

	// PollIntervalSeconds is the reconciliation cadence in watch mode.
	PollIntervalSeconds int `yaml:"poll_interval_seconds,omitempty"`

	// Extensions carries tool-specific sections (e.g. "logging") that other
	// packages decode with UnmarshalExtension.
	Extensions map[string]interface{} `yaml:"extensions,omitempty"`
}

// Load reads the configuration from path, or from the default location when
// path is empty. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = paths.DefaultConfigFile()
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.ConfigInvalid(fmt.Sprintf("parse %s: %v", path, err))
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// LoadDefault loads the configuration from the default location.
func LoadDefault() (*Config, error) {
	return Load("")
}

func (c *Config) applyEnv() {
	if v := os.Getenv("WARDEN_STORE_PATH"); v != "" {
		c.StorePath = v
	}
	if v := os.Getenv("WARDEN_GROVES_FILE"); v != "" {
		c.GrovesFile = v
	}
	if v := os.Getenv("WARDEN_CLAUDE_ROOT"); v != "" {
		c.ClaudeRoot = v
	}
	if v := os.Getenv("WARDEN_STALENESS_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.StalenessMinutes = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.StorePath == "" {
		c.StorePath = paths.SessionsFile()
	}
	if c.GrovesFile == "" {
		c.GrovesFile = paths.DefaultGrovesFile()
	}
	if c.ClaudeRoot == "" {
		c.ClaudeRoot = paths.ClaudeRoot()
	}
	if c.StalenessMinutes <= 0 {
		c.StalenessMinutes = 60
	}
	if c.PollIntervalSeconds <= 0 {
		c.PollIntervalSeconds = 15
	}
}

// StaleThreshold returns the retention threshold as a duration.
func (c *Config) StaleThreshold() time.Duration {
	return time.Duration(c.StalenessMinutes) * time.Minute
}

// PollInterval returns the watch-mode cadence as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// UnmarshalExtension decodes a named extension section into out. An absent
// section leaves out untouched.
func (c *Config) UnmarshalExtension(name string, out interface{}) error {
	raw, ok := c.Extensions[name]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  out,
		TagName: "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode extension '%s': %w", name, err)
	}
	return nil
}

// Package config holds the run configuration: built-in defaults, an optional
// YAML defaults file, and the startup validation required before tracing
// output is consumed.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultInterval      = 3 * time.Second
	DefaultPasswdMapPath = "/etc/passwd"
	DefaultGroupMapPath  = "/etc/group"
)

// Config is the resolved runtime configuration.
type Config struct {
	// Interval is the sampling window length; rates are always computed
	// against this value, never against measured elapsed time.
	Interval      time.Duration
	GroupView     bool
	NoNames       bool
	PasswdMapPath string
	GroupMapPath  string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Interval:      DefaultInterval,
		PasswdMapPath: DefaultPasswdMapPath,
		GroupMapPath:  DefaultGroupMapPath,
	}
}

// fileConfig is the YAML schema of the defaults file. Pointer fields
// distinguish "absent" from zero values.
type fileConfig struct {
	Interval  string `yaml:"interval"`
	GroupView *bool  `yaml:"group_view"`
	NoNames   *bool  `yaml:"no_names"`
	PasswdMap string `yaml:"passwd_map"`
	GroupMap  string `yaml:"group_map"`
}

// Load overlays the YAML file at path onto the defaults. Unlike the map
// files, a defaults file that was explicitly requested but cannot be read or
// parsed is a configuration error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fc.Interval != "" {
		interval, err := time.ParseDuration(fc.Interval)
		if err != nil {
			return Config{}, fmt.Errorf("config file interval %q: %w", fc.Interval, err)
		}
		cfg.Interval = interval
	}
	if fc.GroupView != nil {
		cfg.GroupView = *fc.GroupView
	}
	if fc.NoNames != nil {
		cfg.NoNames = *fc.NoNames
	}
	if fc.PasswdMap != "" {
		cfg.PasswdMapPath = fc.PasswdMap
	}
	if fc.GroupMap != "" {
		cfg.GroupMapPath = fc.GroupMap
	}

	return cfg, nil
}

// Validate rejects configurations the window math cannot run on.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", c.Interval)
	}
	return nil
}

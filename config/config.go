// Package config loads and resolves dsplit run settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/YoungY620/dsplit/logging"
)

// WatchConfig controls re-splitting on input changes.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMs int  `yaml:"debounce_ms"`
	MaxWaitMs  int  `yaml:"max_wait_ms"`
}

// Debounce returns DebounceMs as a duration.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// MaxWait returns MaxWaitMs as a duration.
func (w WatchConfig) MaxWait() time.Duration {
	return time.Duration(w.MaxWaitMs) * time.Millisecond
}

// Config holds every setting of a run.
type Config struct {
	ImagesDir     string      `yaml:"images_dir"`
	LabelsDir     string      `yaml:"labels_dir"`
	TrainRatio    float64     `yaml:"train_ratio"`
	Seed          int64       `yaml:"seed"`
	IgnoreExtCase bool        `yaml:"ignore_ext_case"`
	LogLevel      string      `yaml:"log_level"`
	EventsFile    string      `yaml:"events_file,omitempty"`
	Watch         WatchConfig `yaml:"watch"`

	source string
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		TrainRatio: 0.8,
		Seed:       42,
		LogLevel:   "info",
		Watch: WatchConfig{
			DebounceMs: 1000,
			MaxWaitMs:  10000,
		},
	}
}

// Load reads configuration from a YAML file on top of Default. An empty path
// or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	if doc != nil {
		if err := validateDocument(path, doc); err != nil {
			return nil, err
		}
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	cfg.source = path
	return &cfg, nil
}

// Source is the file the configuration was read from, if any.
func (c *Config) Source() string {
	return c.source
}

// Overrides carries command-line values. Nil fields were not given.
type Overrides struct {
	ImagesDir     *string
	LabelsDir     *string
	TrainRatio    *float64
	Seed          *int64
	IgnoreExtCase *bool
	LogLevel      *string
	EventsFile    *string
	Watch         *bool
}

// ApplyOverrides replaces settings with the values given on the command line.
// Paths are resolved against the working directory right away, so Normalize
// only rebases paths that came from the file.
func (c *Config) ApplyOverrides(o Overrides) error {
	abs := func(dst *string, src *string, name string) error {
		if src == nil {
			return nil
		}
		if *src == "" {
			*dst = ""
			return nil
		}
		p, err := filepath.Abs(*src)
		if err != nil {
			return fmt.Errorf("config: resolve %s: %w", name, err)
		}
		*dst = p
		return nil
	}
	if err := abs(&c.ImagesDir, o.ImagesDir, "images_dir"); err != nil {
		return err
	}
	if err := abs(&c.LabelsDir, o.LabelsDir, "labels_dir"); err != nil {
		return err
	}
	if err := abs(&c.EventsFile, o.EventsFile, "events_file"); err != nil {
		return err
	}
	if o.TrainRatio != nil {
		c.TrainRatio = *o.TrainRatio
	}
	if o.Seed != nil {
		c.Seed = *o.Seed
	}
	if o.IgnoreExtCase != nil {
		c.IgnoreExtCase = *o.IgnoreExtCase
	}
	if o.LogLevel != nil {
		c.LogLevel = *o.LogLevel
	}
	if o.Watch != nil {
		c.Watch.Enabled = *o.Watch
	}
	return nil
}

// Normalize resolves relative paths against the config file's directory, or
// the working directory when no file was read.
func (c *Config) Normalize() error {
	base := ""
	if c.source != "" {
		base = filepath.Dir(c.source)
	}
	for _, p := range []struct {
		name string
		val  *string
	}{
		{"images_dir", &c.ImagesDir},
		{"labels_dir", &c.LabelsDir},
		{"events_file", &c.EventsFile},
	} {
		if *p.val == "" || filepath.IsAbs(*p.val) {
			continue
		}
		resolved, err := filepath.Abs(filepath.Join(base, *p.val))
		if err != nil {
			return fmt.Errorf("config: resolve %s: %w", p.name, err)
		}
		*p.val = resolved
	}
	return nil
}

// Validate performs sanity checks that need no filesystem access.
func (c *Config) Validate() error {
	if c.ImagesDir == "" {
		return errors.New("config: images_dir required (--images_dir)")
	}
	if c.LabelsDir == "" {
		return errors.New("config: labels_dir required (--labels_dir)")
	}
	if !(c.TrainRatio >= 0 && c.TrainRatio <= 1) {
		return fmt.Errorf("config: train_ratio must be between 0 and 1, got %v", c.TrainRatio)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Watch.DebounceMs <= 0 || c.Watch.MaxWaitMs <= 0 {
		return errors.New("config: watch.debounce_ms and watch.max_wait_ms must be positive")
	}
	return nil
}

// Level returns the parsed log level, falling back to info.
func (c *Config) Level() logging.Level {
	lvl, _ := logging.ParseLevel(c.LogLevel)
	return lvl
}

// PrettyYAML renders the configuration as YAML for diagnostics.
func (c Config) PrettyYAML() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("%+v", c)
	}
	return string(out)
}

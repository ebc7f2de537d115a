// Package config provides YAML configuration parsing and validation for
// the goblast library: which device to open, the profiling override
// knobs, and per-build kernel option overrides. Validate returns every
// error at once rather than failing fast on the first one.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultEMAWindow mirrors profile.DefaultEMAWindow without importing
// pkg/profile, keeping this package dependency-light for callers that
// only need device/profiling knobs.
const DefaultEMAWindow = 128

// ProfilingConfig mirrors the crt.Override block, letting a caller
// drive crt.Open from a config file instead of hand-building one.
type ProfilingConfig struct {
	// Enabled turns on profiling-sample collection (a non-nil
	// crt.Override.Samples slice).
	Enabled bool `yaml:"enabled"`
	// MaxGroups and MaxItemsPerGroup narrow the reduction engine's tile
	// sizing below the device maximum; zero means "use the device
	// maximum".
	MaxGroups        int64 `yaml:"max_groups"`
	MaxItemsPerGroup int64 `yaml:"max_items_per_group"`
	// SampleCap bounds the profiling sample buffer.
	SampleCap int `yaml:"sample_cap"`
	// EMAWindow is the exponential-moving-average window used by
	// pkg/profile.Collector.
	EMAWindow int `yaml:"ema_window"`
}

// Config is the top-level configuration: which device to open, the
// profiling override, and raw kernel build-option overrides keyed by
// the macro name (e.g. "fp16_surrogate") for cases where a device's
// advertised capabilities need a manual correction.
type Config struct {
	DeviceIndex  int               `yaml:"device_index"`
	Profiling    ProfilingConfig   `yaml:"profiling"`
	BuildOptions map[string]string `yaml:"build_options"`
}

// Default returns a Config with every default applied and no file
// backing it, for callers that want to run without a -config flag.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// ParseFile reads the YAML file at path and returns the validated
// Config.
func ParseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes, applies defaults, and validates the
// resulting Config. Callers with YAML already in memory (tests, mainly)
// should use this directly.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	applyDefaults(&cfg)
	if errs := Validate(&cfg); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid configuration:\n  - %s", strings.Join(msgs, "\n  - "))
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Profiling.EMAWindow == 0 {
		cfg.Profiling.EMAWindow = DefaultEMAWindow
	}
	if cfg.Profiling.SampleCap == 0 {
		cfg.Profiling.SampleCap = 1024
	}
}

// Validate checks cfg for semantic errors and returns all of them at
// once so operators see every problem in a single run. An empty slice
// means the configuration is valid.
func Validate(cfg *Config) []error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	if cfg.DeviceIndex < 0 {
		add("device_index must be >= 0, got %d", cfg.DeviceIndex)
	}
	if cfg.Profiling.MaxGroups < 0 {
		add("profiling.max_groups must be >= 0, got %d", cfg.Profiling.MaxGroups)
	}
	if cfg.Profiling.MaxItemsPerGroup < 0 {
		add("profiling.max_items_per_group must be >= 0, got %d", cfg.Profiling.MaxItemsPerGroup)
	}
	if cfg.Profiling.SampleCap < 0 {
		add("profiling.sample_cap must be >= 0, got %d", cfg.Profiling.SampleCap)
	}
	if cfg.Profiling.EMAWindow < 0 {
		add("profiling.ema_window must be >= 0, got %d", cfg.Profiling.EMAWindow)
	}
	return errs
}

// Package config loads the fixturectl configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvLibPath   = "FIXTURE_LIB_PATH"
	EnvExpectFoo = "FIXTURE_EXPECT_FOO"
	EnvLogLevel  = "FIXTURE_LOG_LEVEL"
)

// EnvLibraryName is the name given to the library added from EnvLibPath.
const EnvLibraryName = "env"

// Config holds everything fixturectl needs to check a set of libraries.
type Config struct {
	Libraries []LibraryConfig `yaml:"libraries"`
	Stress    StressConfig    `yaml:"stress"`
	Bench     BenchConfig     `yaml:"bench"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LibraryConfig names one fixture artifact.
type LibraryConfig struct {
	Name       string `yaml:"name"`
	Path       string `yaml:"path"`
	ExportsFoo bool   `yaml:"exports_foo"`
}

type StressConfig struct {
	Goroutines int `yaml:"goroutines"`
	Calls      int `yaml:"calls"`
}

type BenchConfig struct {
	Iterations int `yaml:"iterations"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Stress: StressConfig{
			Goroutines: 100,
			Calls:      1000,
		},
		Bench: BenchConfig{
			Iterations: 10000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path on top of Default, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}

	path := os.Getenv(EnvLibPath)
	if path == "" {
		return nil
	}

	// Without FIXTURE_EXPECT_FOO the file's "env" entry, if any, decides.
	exportsFoo := c.exportsFoo(EnvLibraryName)
	if v := os.Getenv(EnvExpectFoo); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvExpectFoo, v, err)
		}
		exportsFoo = parsed
	}

	c.SetLibrary(LibraryConfig{Name: EnvLibraryName, Path: path, ExportsFoo: exportsFoo})
	return nil
}

func (c *Config) exportsFoo(name string) bool {
	if lib, ok := c.Library(name); ok {
		return lib.ExportsFoo
	}
	return false
}

// SetLibrary adds lib, replacing any library with the same name.
func (c *Config) SetLibrary(lib LibraryConfig) {
	for i := range c.Libraries {
		if c.Libraries[i].Name == lib.Name {
			c.Libraries[i] = lib
			return
		}
	}
	c.Libraries = append(c.Libraries, lib)
}

func (c *Config) Library(name string) (LibraryConfig, bool) {
	for _, lib := range c.Libraries {
		if lib.Name == name {
			return lib, true
		}
	}
	return LibraryConfig{}, false
}

// Validate checks the configuration for values no command can work with.
func (c *Config) Validate() error {
	var errs []error

	seen := map[string]bool{}
	for i, lib := range c.Libraries {
		if lib.Name == "" {
			errs = append(errs, fmt.Errorf("libraries[%d]: name is required", i))
		} else if seen[lib.Name] {
			errs = append(errs, fmt.Errorf("libraries[%d]: duplicate name %q", i, lib.Name))
		}
		seen[lib.Name] = true

		if lib.Path == "" {
			errs = append(errs, fmt.Errorf("libraries[%d]: path is required", i))
		}
	}

	if c.Stress.Goroutines <= 0 {
		errs = append(errs, fmt.Errorf("stress.goroutines must be positive"))
	}
	if c.Stress.Calls <= 0 {
		errs = append(errs, fmt.Errorf("stress.calls must be positive"))
	}
	if c.Bench.Iterations <= 0 {
		errs = append(errs, fmt.Errorf("bench.iterations must be positive"))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

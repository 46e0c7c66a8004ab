// Package config holds the settings of a cache simulation run.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/csim/addr"
	"github.com/sarchlab/csim/metrics"
)

// ErrMissingArgument is returned by Validate when a required setting is
// absent or not positive.
var ErrMissingArgument = errors.New("missing required argument")

// Config describes the simulated cache and the trace to replay.
type Config struct {
	// IndexBits is the number of set index bits (s). There are 2^s sets.
	IndexBits int `yaml:"index_bits"`

	// LinesPerSet is the associativity (E).
	LinesPerSet int `yaml:"lines_per_set"`

	// BlockBits is the number of block offset bits (b). Blocks are 2^b bytes.
	BlockBits int `yaml:"block_bits"`

	// Trace is the path of the trace file to replay.
	Trace string `yaml:"trace"`

	// Verbose echoes every access with its outcome.
	Verbose bool `yaml:"verbose"`

	// Metrics configures the exported counters.
	Metrics metrics.Config `yaml:"metrics"`
}

// Default returns a Config with no cache geometry set.
func Default() *Config {
	return &Config{
		Metrics: metrics.Config{Namespace: "csim"},
	}
}

// DirectMapped1K returns the 1KB direct-mapped cache with 32-byte blocks
// used to evaluate transpose routines.
func DirectMapped1K() *Config {
	c := Default()
	c.IndexBits = 5
	c.LinesPerSet = 1
	c.BlockBits = 5

	return c
}

// Load loads a Config from a YAML file. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// Save writes the Config to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ValidateGeometry checks the cache geometry only.
func (c *Config) ValidateGeometry() error {
	if c.IndexBits <= 0 {
		return fmt.Errorf("%w: index_bits (-s) must be > 0", ErrMissingArgument)
	}
	if c.LinesPerSet <= 0 {
		return fmt.Errorf("%w: lines_per_set (-E) must be > 0", ErrMissingArgument)
	}
	if c.BlockBits <= 0 {
		return fmt.Errorf("%w: block_bits (-b) must be > 0", ErrMissingArgument)
	}

	if _, err := c.Layout(); err != nil {
		return err
	}

	return nil
}

// Validate checks the geometry and that a trace is given.
func (c *Config) Validate() error {
	if err := c.ValidateGeometry(); err != nil {
		return err
	}

	if c.Trace == "" {
		return fmt.Errorf("%w: trace (-t) must be set", ErrMissingArgument)
	}

	return nil
}

// Layout returns the address layout of the configured cache.
func (c *Config) Layout() (addr.Layout, error) {
	return addr.NewLayout(c.IndexBits, c.BlockBits)
}

// Package config holds the run configuration: sampler settings and report
// settings, loaded from an optional YAML file and overridden by flags.
package config

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is the cause of every configuration validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Defaults match the settings the consensus model was first fit with
const (
	DefaultDraws        = 2000
	DefaultChains       = 4
	DefaultTune         = 1000
	DefaultSeed         = 42
	DefaultTargetAccept = 0.44
	DefaultInitialScale = 0.1
	DefaultAdaptRate    = 0.1
	DefaultAcceptWindow = 100
	DefaultHDIProb      = 0.95
	DefaultPlotBins     = 20
)

// Sampling configures the MCMC run
type Sampling struct {
	Draws        int     `yaml:"draws"`         // Retained draws per chain
	Chains       int     `yaml:"chains"`        // Independent chains
	Tune         int     `yaml:"tune"`          // Discarded adaptation iterations per chain
	Seed         int64   `yaml:"seed"`          // Base seed; chain k is seeded from (Seed, k)
	TargetAccept float64 `yaml:"target_accept"` // Metropolis acceptance rate targeted while tuning
	InitialScale float64 `yaml:"initial_scale"` // Starting proposal sd for every informant
	AdaptRate    float64 `yaml:"adapt_rate"`    // Step size for log-scale adaptation (0 disables tuning)
	AcceptWindow int     `yaml:"accept_window"` // Iterations in the rolling acceptance window
	Parallel     bool    `yaml:"parallel"`      // Run chains concurrently
}

// Report configures the summaries and output
type Report struct {
	HDIProb  float64 `yaml:"hdi_prob"`  // Mass covered by the highest density intervals
	Plot     bool    `yaml:"plot"`      // Render text density plots
	PlotBins int     `yaml:"plot_bins"` // Histogram bins per density plot
	Trace    string  `yaml:"trace"`     // Optional CSV file for the pooled draws
}

// Config is the whole run configuration
type Config struct {
	Sampling Sampling `yaml:"sampling"`
	Report   Report   `yaml:"report"`
}

// Default returns a fully populated configuration
func Default() *Config {
	return &Config{
		Sampling: Sampling{
			Draws:        DefaultDraws,
			Chains:       DefaultChains,
			Tune:         DefaultTune,
			Seed:         DefaultSeed,
			TargetAccept: DefaultTargetAccept,
			InitialScale: DefaultInitialScale,
			AdaptRate:    DefaultAdaptRate,
			AcceptWindow: DefaultAcceptWindow,
			Parallel:     true,
		},
		Report: Report{
			HDIProb:  DefaultHDIProb,
			Plot:     true,
			PlotBins: DefaultPlotBins,
		},
	}
}

// Load reads a YAML file on top of the defaults. Keys missing from the file
// keep their default values.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ config from %s", filename)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not load config %s", filename)
	}
	return cfg, nil
}

// Parse decodes YAML on top of the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && len(bytes.TrimSpace(data)) > 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "could not parse YAML: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal renders the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate returns an error wrapping ErrInvalidConfig for any bad setting
func (c *Config) Validate() error {
	if err := c.Sampling.Validate(); err != nil {
		return err
	}
	return c.Report.Validate()
}

// Validate checks the sampler settings
func (s Sampling) Validate() error {
	if s.Draws <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "draws must be > 0, got %d", s.Draws)
	}
	if s.Chains <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "chains must be > 0, got %d", s.Chains)
	}
	if s.Tune < 0 {
		return errors.Wrapf(ErrInvalidConfig, "tune must be >= 0, got %d", s.Tune)
	}
	if s.TargetAccept <= 0 || s.TargetAccept >= 1 {
		return errors.Wrapf(ErrInvalidConfig, "target_accept must be in (0, 1), got %f", s.TargetAccept)
	}
	if s.InitialScale <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "initial_scale must be > 0, got %f", s.InitialScale)
	}
	if s.AdaptRate < 0 {
		return errors.Wrapf(ErrInvalidConfig, "adapt_rate must be >= 0, got %f", s.AdaptRate)
	}
	if s.AcceptWindow < 1 {
		return errors.Wrapf(ErrInvalidConfig, "accept_window must be >= 1, got %d", s.AcceptWindow)
	}
	return nil
}

// Validate checks the report settings
func (r Report) Validate() error {
	if r.HDIProb <= 0 || r.HDIProb >= 1 {
		return errors.Wrapf(ErrInvalidConfig, "hdi_prob must be in (0, 1), got %f", r.HDIProb)
	}
	if r.PlotBins < 1 {
		return errors.Wrapf(ErrInvalidConfig, "plot_bins must be >= 1, got %d", r.PlotBins)
	}
	return nil
}

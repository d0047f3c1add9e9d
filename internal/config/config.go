// Package config loads and validates the YAML configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/sakhalinlab/waveproc/internal/types"
	"gopkg.in/yaml.v2"
)

// Defaults applied to fields left unset in the configuration file.
const (
	DefaultBurstSeconds    = 1200 // 20-minute bursts
	DefaultSpikeWindow     = 11
	DefaultSpikeThreshold  = 4.0
	DefaultMaxGapSamples   = 8
	DefaultMinSeriesLength = 512
	DefaultDetrendMode     = "linear"
	DefaultWorkers         = 4
)

// Load reads the configuration file, fills in defaults, and validates the
// result.  Validation failures carry types.ErrConfiguration.
func Load(filename string) (*types.Config, error) {
	cfgFile, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	var cfg types.Config
	if err := yaml.Unmarshal(cfgFile, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills zero-valued tunables with their documented defaults.
func ApplyDefaults(cfg *types.Config) {
	if cfg.Input.BurstSeconds == 0 {
		cfg.Input.BurstSeconds = DefaultBurstSeconds
	}
	p := &cfg.Processing
	if p.SpikeWindow == 0 {
		p.SpikeWindow = DefaultSpikeWindow
	}
	if p.SpikeThreshold == 0 {
		p.SpikeThreshold = DefaultSpikeThreshold
	}
	if p.MaxGapSamples == 0 {
		p.MaxGapSamples = DefaultMaxGapSamples
	}
	if p.MinSeriesLength == 0 {
		p.MinSeriesLength = DefaultMinSeriesLength
	}
	if p.DetrendMode == "" {
		p.DetrendMode = DefaultDetrendMode
	}
	if p.Workers == 0 {
		p.Workers = DefaultWorkers
	}
	if cfg.Report.ListenAddr == "" {
		cfg.Report.ListenAddr = "127.0.0.1"
	}
}

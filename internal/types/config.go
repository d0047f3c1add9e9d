package types

import "fmt"

// Config is the base configuration object
type Config struct {
	Input      InputConfig      `yaml:"input"`
	Processing ProcessingConfig `yaml:"processing"`
	Storage    StorageConfig    `yaml:"storage,omitempty"`
	Report     ReportConfig     `yaml:"report,omitempty"`
}

// InputConfig describes the raw instrument file set handed to the ingester.
type InputConfig struct {
	InfoFile     string   `yaml:"info-file"`
	DataFiles    []string `yaml:"data-files"`
	BurstSeconds int      `yaml:"burst-seconds,omitempty"`
}

// PhysicalRange holds the hard value bounds for the range check.
type PhysicalRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// ProcessingConfig holds the tunables for the cleaning and analysis stages.
type ProcessingConfig struct {
	PhysicalRange   PhysicalRange `yaml:"physical-range"`
	SpikeWindow     int           `yaml:"spike-window,omitempty"`
	SpikeThreshold  float64       `yaml:"spike-threshold,omitempty"`
	MaxGapSamples   int           `yaml:"max-gap-samples,omitempty"`
	MinSeriesLength int           `yaml:"min-series-length,omitempty"`
	DetrendMode     string        `yaml:"detrend-mode,omitempty"`
	SmoothingWindow int           `yaml:"smoothing-window,omitempty"`
	Workers         int           `yaml:"workers,omitempty"`
}

// StorageConfig holds the configuration for various storage backends.
// More than one storage backend can be used simultaneously
type StorageConfig struct {
	SQLite      SQLiteConfig      `yaml:"sqlite,omitempty"`
	TimescaleDB TimescaleDBConfig `yaml:"timescaledb,omitempty"`
	CSV         CSVConfig         `yaml:"csv,omitempty"`
}

type SQLiteConfig struct {
	Path string `yaml:"path,omitempty"`
}

type TimescaleDBConfig struct {
	ConnectionString string `yaml:"connection-string,omitempty"`
}

type CSVConfig struct {
	Directory string `yaml:"directory,omitempty"`
}

// ReportConfig configures the optional read-only report HTTP API.
type ReportConfig struct {
	Port       int    `yaml:"port,omitempty"`
	ListenAddr string `yaml:"listen-addr,omitempty"`
}

// Validate checks the parameter combination before any processing starts.
// Violations are reported as ErrConfiguration.
func (c *Config) Validate() error {
	p := c.Processing
	if p.PhysicalRange.Min >= p.PhysicalRange.Max {
		return fmt.Errorf("%w: physical-range min %.3f must be below max %.3f",
			ErrConfiguration, p.PhysicalRange.Min, p.PhysicalRange.Max)
	}
	if p.SpikeWindow < 5 || p.SpikeWindow%2 == 0 {
		return fmt.Errorf("%w: spike-window must be an odd number >= 5, got %d",
			ErrConfiguration, p.SpikeWindow)
	}
	if p.SpikeThreshold <= 0 {
		return fmt.Errorf("%w: spike-threshold must be positive, got %g",
			ErrConfiguration, p.SpikeThreshold)
	}
	if p.MaxGapSamples < 0 {
		return fmt.Errorf("%w: max-gap-samples must not be negative, got %d",
			ErrConfiguration, p.MaxGapSamples)
	}
	if p.MinSeriesLength < 2 {
		return fmt.Errorf("%w: min-series-length must be at least 2, got %d",
			ErrConfiguration, p.MinSeriesLength)
	}
	if p.DetrendMode != "mean" && p.DetrendMode != "linear" {
		return fmt.Errorf("%w: detrend-mode must be 'mean' or 'linear', got %q",
			ErrConfiguration, p.DetrendMode)
	}
	if p.SmoothingWindow < 0 || (p.SmoothingWindow > 0 && p.SmoothingWindow%2 == 0) {
		return fmt.Errorf("%w: smoothing-window must be 0 or a positive odd number, got %d",
			ErrConfiguration, p.SmoothingWindow)
	}
	if p.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d",
			ErrConfiguration, p.Workers)
	}
	if c.Input.BurstSeconds < 1 {
		return fmt.Errorf("%w: burst-seconds must be at least 1, got %d",
			ErrConfiguration, c.Input.BurstSeconds)
	}
	return nil
}

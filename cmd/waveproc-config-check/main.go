// Command waveproc-config-check loads and validates a waveproc
// configuration file and prints a summary of what would run.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sakhalinlab/waveproc/internal/config"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to the YAML configuration file")
	flag.Parse()

	filename, _ := filepath.Abs(*cfgFile)
	cfg, err := config.Load(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration invalid: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("configuration OK: %s\n", filename)
	fmt.Printf("  INFO file:       %s\n", cfg.Input.InfoFile)
	fmt.Printf("  data files:      %d\n", len(cfg.Input.DataFiles))
	fmt.Printf("  burst length:    %d s\n", cfg.Input.BurstSeconds)
	fmt.Printf("  spike window:    %d samples (threshold %.1f sigma)\n",
		cfg.Processing.SpikeWindow, cfg.Processing.SpikeThreshold)
	fmt.Printf("  max gap:         %d samples\n", cfg.Processing.MaxGapSamples)
	fmt.Printf("  detrend mode:    %s\n", cfg.Processing.DetrendMode)
	fmt.Printf("  workers:         %d\n", cfg.Processing.Workers)

	var backends []string
	if cfg.Storage.SQLite.Path != "" {
		backends = append(backends, "sqlite")
	}
	if cfg.Storage.TimescaleDB.ConnectionString != "" {
		backends = append(backends, "timescaledb")
	}
	if cfg.Storage.CSV.Directory != "" {
		backends = append(backends, "csv")
	}
	fmt.Printf("  storage:         %v\n", backends)
	if cfg.Report.Port > 0 {
		fmt.Printf("  report API:      %s:%d\n", cfg.Report.ListenAddr, cfg.Report.Port)
	} else {
		fmt.Println("  report API:      disabled (batch mode)")
	}
}

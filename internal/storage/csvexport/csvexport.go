// Package csvexport writes the cleaned series of each completed run to a
// CSV file, one file per run, for downstream plotting tools.
package csvexport

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/sakhalinlab/waveproc/internal/log"
	"github.com/sakhalinlab/waveproc/internal/types"
)

// Exporter holds the configuration for a CSV export backend
type Exporter struct {
	Directory string
}

// New sets up a CSV export backend rooted at directory, creating it if
// needed.
func New(directory string) (*Exporter, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create CSV export directory: %w", err)
	}
	return &Exporter{Directory: directory}, nil
}

// StartStorageEngine creates a goroutine loop to receive results and write
// them out as CSV files
func (e *Exporter) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.RunResult {
	log.Info("starting CSV export storage engine...")
	resultChan := make(chan types.RunResult, 10)
	wg.Add(1)
	go e.processResults(wg, resultChan)
	return resultChan
}

// processResults exports every result until the channel is closed, so no
// result handed to the engine is ever dropped on shutdown.
func (e *Exporter) processResults(wg *sync.WaitGroup, rchan <-chan types.RunResult) {
	defer wg.Done()

	for res := range rchan {
		if err := e.StoreResult(res); err != nil {
			log.Error("could not export result:", err)
		}
	}
	log.Info("result channel closed. Stopping CSV result processor.")
}

// StoreResult writes one run's cleaned series to <source>_burst<NNN>.csv.
// Rejected runs carry no series and produce no file.
func (e *Exporter) StoreResult(res types.RunResult) error {
	if res.Series == nil || res.Series.Len() == 0 {
		return nil
	}

	name := fmt.Sprintf("%s_burst%03d.csv", sanitize(res.Source), res.Burst)
	path := filepath.Join(e.Directory, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	if err := e.writeHeader(f, res); err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "value", "flag"}); err != nil {
		return err
	}
	for _, s := range res.Series.Samples {
		rec := []string{
			s.Timestamp.UTC().Format(time.RFC3339Nano),
			strconv.FormatFloat(s.Value, 'g', -1, 64),
			s.Flag.String(),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// writeHeader emits run metadata as comment lines ahead of the CSV body.
func (e *Exporter) writeHeader(f *os.File, res types.RunResult) error {
	lines := []string{
		fmt.Sprintf("# run: %s", res.RunID),
		fmt.Sprintf("# source: %s", res.Source),
		fmt.Sprintf("# burst: %d", res.Burst),
		fmt.Sprintf("# completed: %s", res.CompletedAt.UTC().Format(time.RFC3339)),
	}
	if q := res.Quality; q != nil {
		lines = append(lines,
			fmt.Sprintf("# rejected: %d", q.RejectedSamples),
			fmt.Sprintf("# interpolated: %d", q.InterpolatedSamples))
	}
	if s := res.Stats; s != nil && !s.InsufficientData {
		lines = append(lines,
			fmt.Sprintf("# significant_height: %g", s.SignificantHeight),
			fmt.Sprintf("# mean_period: %g", s.MeanPeriod))
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(f, l); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}
	return nil
}

func sanitize(s string) string {
	base := filepath.Base(s)
	ext := filepath.Ext(base)
	if ext != "" {
		base = base[:len(base)-len(ext)]
	}
	if base == "" || base == "." {
		base = "series"
	}
	return base
}

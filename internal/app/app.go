// Package app wires the ingest, pipeline, storage, and report components
// together and drives one processing campaign.
package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sakhalinlab/waveproc/internal/ingest"
	"github.com/sakhalinlab/waveproc/internal/log"
	"github.com/sakhalinlab/waveproc/internal/pipeline"
	"github.com/sakhalinlab/waveproc/internal/reportserver"
	"github.com/sakhalinlab/waveproc/internal/storage"
	"github.com/sakhalinlab/waveproc/internal/types"
)

// App represents the main application
type App struct {
	cfg *types.Config
}

// New creates a new application instance
func New(cfg *types.Config) *App {
	return &App{cfg: cfg}
}

// Run processes the configured recording and blocks until every result has
// been stored.  With a report port configured it then serves the report API
// until a shutdown signal arrives.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Initialize the storage manager
	storageManager, err := storage.NewManager(ctx, &wg, a.cfg)
	if err != nil {
		return err
	}

	// Load the recording and split it into bursts
	bursts, meta, err := ingest.LoadRecording(a.cfg.Input)
	if err != nil {
		return err
	}
	log.Infof("loaded recording at %d Hz: %d bursts", meta.Frequency, len(bursts))

	// Run the pipeline over every burst, feeding results to storage
	p := pipeline.New(a.cfg.Processing)
	results := make(chan types.RunResult)

	var feeder sync.WaitGroup
	feeder.Add(1)
	go func() {
		defer feeder.Done()
		for res := range results {
			storageManager.ResultDistributor <- res
		}
	}()

	err = pipeline.RunAll(ctx, p, bursts, a.cfg.Processing.Workers, results)
	close(results)
	feeder.Wait()
	// No more results will be produced; closing the distributor lets the
	// storage engines drain their buffers and exit.
	close(storageManager.ResultDistributor)
	if err != nil {
		wg.Wait()
		return err
	}

	log.Infof("processed %d bursts", len(bursts))

	if a.cfg.Report.Port == 0 {
		// Batch mode: exit once every result is stored.
		wg.Wait()
		return nil
	}

	// Report mode: start the API and wait for a shutdown signal.
	rs, err := reportserver.New(ctx, &wg, a.cfg.Report, storageManager.SQLiteClient())
	if err != nil {
		return err
	}
	if err := rs.Start(); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	cancel()

	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}

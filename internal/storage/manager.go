package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/sakhalinlab/waveproc/internal/log"
	"github.com/sakhalinlab/waveproc/internal/storage/csvexport"
	"github.com/sakhalinlab/waveproc/internal/storage/sqlite"
	"github.com/sakhalinlab/waveproc/internal/storage/timescaledb"
	"github.com/sakhalinlab/waveproc/internal/types"
)

// Manager holds our active storage backends
type Manager struct {
	Engines           []StorageEngine
	ResultDistributor chan types.RunResult

	sqliteClient *sqlite.Client
}

// StorageEngine holds a backend storage engine's interface as well as a
// channel for passing results to the engine
type StorageEngine struct {
	Engine StorageEngineInterface
	C      chan<- types.RunResult
}

// NewManager creates a Manager populated with all configured storage
// engines and starts the result distributor that feeds them.
func NewManager(ctx context.Context, wg *sync.WaitGroup, c *types.Config) (*Manager, error) {
	m := Manager{
		ResultDistributor: make(chan types.RunResult, 20),
	}

	if c.Storage.SQLite.Path != "" {
		if err := m.AddEngine(ctx, wg, "sqlite", c); err != nil {
			return &m, fmt.Errorf("could not add SQLite storage backend: %w", err)
		}
	}

	if c.Storage.TimescaleDB.ConnectionString != "" {
		if err := m.AddEngine(ctx, wg, "timescaledb", c); err != nil {
			return &m, fmt.Errorf("could not add TimescaleDB storage backend: %w", err)
		}
	}

	if c.Storage.CSV.Directory != "" {
		if err := m.AddEngine(ctx, wg, "csv", c); err != nil {
			return &m, fmt.Errorf("could not add CSV storage backend: %w", err)
		}
	}

	wg.Add(1)
	go m.startResultDistributor(wg)

	return &m, nil
}

// AddEngine adds a new StorageEngine of name engineName to our Manager
func (m *Manager) AddEngine(ctx context.Context, wg *sync.WaitGroup, engineName string, c *types.Config) error {
	switch engineName {
	case "sqlite":
		client, err := sqlite.New(c.Storage.SQLite.Path)
		if err != nil {
			return err
		}
		m.sqliteClient = client
		se := StorageEngine{Engine: client}
		se.C = se.Engine.StartStorageEngine(ctx, wg)
		m.Engines = append(m.Engines, se)
	case "timescaledb":
		engine, err := timescaledb.New(ctx, c.Storage.TimescaleDB.ConnectionString)
		if err != nil {
			return err
		}
		se := StorageEngine{Engine: engine}
		se.C = se.Engine.StartStorageEngine(ctx, wg)
		m.Engines = append(m.Engines, se)
	case "csv":
		engine, err := csvexport.New(c.Storage.CSV.Directory)
		if err != nil {
			return err
		}
		se := StorageEngine{Engine: engine}
		se.C = se.Engine.StartStorageEngine(ctx, wg)
		m.Engines = append(m.Engines, se)
	default:
		return fmt.Errorf("unknown storage engine %q", engineName)
	}
	return nil
}

// SQLiteClient returns the SQLite client when that backend is enabled, for
// read-only consumers like the report server.
func (m *Manager) SQLiteClient() *sqlite.Client {
	return m.sqliteClient
}

// startResultDistributor copies every pipeline result to each configured
// storage backend.  Closing ResultDistributor signals that no more results
// will arrive; the distributor then closes the engine channels so each
// engine drains its remaining buffer and exits.
func (m *Manager) startResultDistributor(wg *sync.WaitGroup) {
	defer wg.Done()

	for res := range m.ResultDistributor {
		for _, e := range m.Engines {
			e.C <- res
		}
	}

	log.Info("result distributor finished. Closing storage engine channels.")
	for _, e := range m.Engines {
		close(e.C)
	}
}

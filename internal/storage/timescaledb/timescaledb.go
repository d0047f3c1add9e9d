// Package timescaledb archives completed-run wave statistics in a
// TimescaleDB hypertable for long-term trend queries.
package timescaledb

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/sakhalinlab/waveproc/internal/database"
	"github.com/sakhalinlab/waveproc/internal/log"
	"github.com/sakhalinlab/waveproc/internal/types"
)

// Storage holds the configuration for a TimescaleDB storage backend
type Storage struct {
	TimescaleDBConn *gorm.DB
}

// ArchivedStats is one hypertable row: the summary of a completed run.
type ArchivedStats struct {
	Time                time.Time `gorm:"column:time"`
	RunID               string    `gorm:"column:runid"`
	Source              string    `gorm:"column:source"`
	Burst               int       `gorm:"column:burst"`
	MeanHeight          float64   `gorm:"column:meanheight"`
	SignificantHeight   float64   `gorm:"column:significantheight"`
	MaxHeight           float64   `gorm:"column:maxheight"`
	MeanPeriod          float64   `gorm:"column:meanperiod"`
	WaveCount           int       `gorm:"column:wavecount"`
	RejectedSamples     int       `gorm:"column:rejectedsamples"`
	InterpolatedSamples int       `gorm:"column:interpolatedsamples"`
}

// TableName customizes the table name used by GORM
func (ArchivedStats) TableName() string {
	return "wave_stats"
}

// StartStorageEngine creates a goroutine loop to receive results and send
// them off to TimescaleDB
func (t *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.RunResult {
	log.Info("starting TimescaleDB storage engine...")
	resultChan := make(chan types.RunResult, 10)
	wg.Add(1)
	go t.processResults(wg, resultChan)
	return resultChan
}

// processResults archives every result until the channel is closed, so no
// result handed to the engine is ever dropped on shutdown.
func (t *Storage) processResults(wg *sync.WaitGroup, rchan <-chan types.RunResult) {
	defer wg.Done()

	for res := range rchan {
		if err := t.StoreResult(res); err != nil {
			log.Error("could not archive result:", err)
		}
	}
	log.Info("result channel closed. Stopping TimescaleDB result processor.")
}

// StoreResult archives a completed run's statistics.  Rejected runs carry
// no statistics and are not archived.
func (t *Storage) StoreResult(res types.RunResult) error {
	if res.Stats == nil {
		return nil
	}
	row := ArchivedStats{
		Time:              res.CompletedAt,
		RunID:             res.RunID,
		Source:            res.Source,
		Burst:             res.Burst,
		MeanHeight:        res.Stats.MeanHeight,
		SignificantHeight: res.Stats.SignificantHeight,
		MaxHeight:         res.Stats.MaxHeight,
		MeanPeriod:        res.Stats.MeanPeriod,
		WaveCount:         res.Stats.WaveCount,
	}
	if res.Quality != nil {
		row.RejectedSamples = res.Quality.RejectedSamples
		row.InterpolatedSamples = res.Quality.InterpolatedSamples
	}
	return t.TimescaleDBConn.Create(&row).Error
}

// New sets up a new TimescaleDB storage backend
func New(ctx context.Context, connectionString string) (*Storage, error) {
	var err error
	t := Storage{}

	t.TimescaleDBConn, err = database.CreateConnection(connectionString)
	if err != nil {
		return nil, err
	}

	log.Info("creating database table...")
	if err := t.TimescaleDBConn.WithContext(ctx).Exec(createTableSQL).Error; err != nil {
		log.Warn("warning: could not create table in database")
		return nil, err
	}

	log.Info("creating TimescaleDB extension...")
	if err := t.TimescaleDBConn.WithContext(ctx).Exec(createExtensionSQL).Error; err != nil {
		log.Warn("warning: could not create TimescaleDB extension")
		return nil, err
	}

	log.Info("creating hypertable...")
	if err := t.TimescaleDBConn.WithContext(ctx).Exec(createHypertableSQL).Error; err != nil {
		log.Warn("warning: could not create hypertable")
		return nil, err
	}

	return &t, nil
}

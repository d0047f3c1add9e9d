// Package sqlite stores pipeline results in a local SQLite database and
// serves the read queries behind the report API.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sakhalinlab/waveproc/internal/log"
	"github.com/sakhalinlab/waveproc/internal/types"
)

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("run not found")

// timeLayout is fixed-width, unlike RFC3339Nano which trims trailing zeros,
// so the text ORDER BY on completed_at is chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Client holds the connection to the results database
type Client struct {
	DB *sql.DB
}

// New opens (creating if necessary) the results database at dbPath.
func New(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to create results schema: %w", err)
	}

	return &Client{DB: db}, nil
}

// StartStorageEngine creates a goroutine loop to receive results and write
// them to the database
func (c *Client) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.RunResult {
	log.Info("starting SQLite storage engine...")
	resultChan := make(chan types.RunResult, 10)
	wg.Add(1)
	go c.processResults(wg, resultChan)
	return resultChan
}

// processResults stores every result until the channel is closed, so no
// result handed to the engine is ever dropped on shutdown.
func (c *Client) processResults(wg *sync.WaitGroup, rchan <-chan types.RunResult) {
	defer wg.Done()

	for res := range rchan {
		if err := c.StoreResult(res); err != nil {
			log.Error("could not store result:", err)
		}
	}
	log.Info("result channel closed. Stopping SQLite result processor.")
}

// StoreResult writes one run with its quality report and, for completed
// runs, its wave statistics.
func (c *Client) StoreResult(res types.RunResult) error {
	tx, err := c.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT OR REPLACE INTO runs (run_id, source, burst, state, error_kind, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.Source, res.Burst, res.State, res.ErrorKind,
		res.StartedAt.UTC().Format(timeLayout), res.CompletedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if q := res.Quality; q != nil {
		_, err = tx.Exec(
			`INSERT OR REPLACE INTO quality_reports
			 (run_id, total_samples, rejected_samples, interpolated_samples,
			  longest_gap, trimmed_leading, trimmed_trailing, unrepaired_gaps)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			res.RunID, q.TotalSamples, q.RejectedSamples, q.InterpolatedSamples,
			q.LongestGap, q.TrimmedLeading, q.TrimmedTrailing, len(q.UnrepairedGaps),
		)
		if err != nil {
			return fmt.Errorf("failed to insert quality report: %w", err)
		}
	}

	if s := res.Stats; s != nil {
		_, err = tx.Exec(
			`INSERT OR REPLACE INTO wave_stats
			 (run_id, mean_height, significant_height, max_height, mean_period, wave_count, insufficient_data)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			res.RunID, s.MeanHeight, s.SignificantHeight, s.MaxHeight,
			s.MeanPeriod, s.WaveCount, s.InsufficientData,
		)
		if err != nil {
			return fmt.Errorf("failed to insert wave statistics: %w", err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first, with their quality
// reports and statistics attached.
func (c *Client) ListRuns(limit int) ([]types.RunResult, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := c.DB.Query(selectRunSQL+` ORDER BY r.completed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var results []types.RunResult
	for rows.Next() {
		res, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// GetRun returns a single run by ID, or ErrNotFound.
func (c *Client) GetRun(runID string) (*types.RunResult, error) {
	rows, err := c.DB.Query(selectRunSQL+` WHERE r.run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	res, err := scanRun(rows)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func scanRun(rows *sql.Rows) (types.RunResult, error) {
	var res types.RunResult
	var startedAt, completedAt string

	var totalSamples, rejectedSamples, interpolatedSamples sql.NullInt64
	var longestGap, trimmedLeading, trimmedTrailing, unrepairedGaps sql.NullInt64
	var meanHeight, significantHeight, maxHeight, meanPeriod sql.NullFloat64
	var waveCount sql.NullInt64
	var insufficient sql.NullBool

	err := rows.Scan(
		&res.RunID, &res.Source, &res.Burst, &res.State, &res.ErrorKind,
		&startedAt, &completedAt,
		&totalSamples, &rejectedSamples, &interpolatedSamples,
		&longestGap, &trimmedLeading, &trimmedTrailing, &unrepairedGaps,
		&meanHeight, &significantHeight, &maxHeight, &meanPeriod, &waveCount, &insufficient,
	)
	if err != nil {
		return res, fmt.Errorf("failed to scan run row: %w", err)
	}

	if t, err := time.Parse(timeLayout, startedAt); err == nil {
		res.StartedAt = t
	}
	if t, err := time.Parse(timeLayout, completedAt); err == nil {
		res.CompletedAt = t
	}

	// The exact gap windows are not persisted, only their count; consumers
	// that need the windows use the CSV export.
	_ = unrepairedGaps

	if totalSamples.Valid {
		res.Quality = &types.QualityReport{
			TotalSamples:        int(totalSamples.Int64),
			RejectedSamples:     int(rejectedSamples.Int64),
			InterpolatedSamples: int(interpolatedSamples.Int64),
			LongestGap:          int(longestGap.Int64),
			TrimmedLeading:      int(trimmedLeading.Int64),
			TrimmedTrailing:     int(trimmedTrailing.Int64),
		}
	}

	if meanHeight.Valid {
		res.Stats = &types.WaveStatistics{
			MeanHeight:        meanHeight.Float64,
			SignificantHeight: significantHeight.Float64,
			MaxHeight:         maxHeight.Float64,
			MeanPeriod:        meanPeriod.Float64,
			WaveCount:         int(waveCount.Int64),
			InsufficientData:  insufficient.Bool,
		}
	}

	return res, nil
}

// Close closes the underlying database handle.
func (c *Client) Close() error {
	return c.DB.Close()
}

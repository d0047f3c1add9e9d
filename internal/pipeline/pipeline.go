// Package pipeline sequences the cleaning and analysis stages over one
// series buffer per run and fans completed runs out to the caller.
package pipeline

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sakhalinlab/waveproc/internal/log"
	"github.com/sakhalinlab/waveproc/internal/types"
	"github.com/sakhalinlab/waveproc/internal/wave"
)

// Pipeline holds the per-deployment stage parameters.  One Pipeline may
// serve many concurrent runs; it is immutable after construction.
type Pipeline struct {
	scanParams      wave.ScanParams
	gapFillParams   wave.GapFillParams
	conditionParams wave.ConditionParams
}

// New builds a pipeline from a validated processing configuration.
func New(cfg types.ProcessingConfig) *Pipeline {
	return &Pipeline{
		scanParams: wave.ScanParams{
			PhysicalMin:    cfg.PhysicalRange.Min,
			PhysicalMax:    cfg.PhysicalRange.Max,
			SpikeWindow:    cfg.SpikeWindow,
			SpikeThreshold: cfg.SpikeThreshold,
		},
		gapFillParams: wave.GapFillParams{
			MaxGapSamples:   cfg.MaxGapSamples,
			MinSeriesLength: cfg.MinSeriesLength,
		},
		conditionParams: wave.ConditionParams{
			Mode:            wave.DetrendMode(cfg.DetrendMode),
			SmoothingWindow: cfg.SmoothingWindow,
			MinSeriesLength: cfg.MinSeriesLength,
		},
	}
}

// run tracks one buffer through the stage sequence.
type run struct {
	id          string
	buf         *types.SeriesBuffer
	conditioned *types.SeriesBuffer
	state       State
	report      *types.QualityReport
	events      []types.WaveEvent
	stats       *types.WaveStatistics
	err         error
	startedAt   time.Time
}

// Run executes the full stage sequence over the buffer and returns the
// terminal result.  The buffer is owned by this run and is mutated by the
// scanning and gap-filling stages.  A failed run carries the error kind and
// whatever quality report had accumulated; it never carries statistics.
func (p *Pipeline) Run(buf *types.SeriesBuffer) *types.RunResult {
	r := &run{
		id:        uuid.New().String(),
		buf:       buf,
		state:     StateLoaded,
		report:    &types.QualityReport{TotalSamples: buf.Len()},
		startedAt: time.Now(),
	}

	for !r.state.terminal() {
		p.step(r)
	}

	return r.result()
}

// step applies the single transition out of the run's current state.
func (p *Pipeline) step(r *run) {
	switch r.state {
	case StateLoaded:
		rep, err := wave.Scan(r.buf, p.scanParams)
		r.report = rep
		if err != nil {
			// A short buffer degrades the scan to range and monotonicity
			// checks; anything else rejects the run.
			if !errors.Is(err, types.ErrInvalidInput) {
				r.fail(err)
				return
			}
			log.Warnf("run %s: %v", r.id, err)
		}
		r.state = StateScanned
	case StateScanned:
		if err := wave.FillGaps(r.buf, r.report, p.gapFillParams); err != nil {
			r.fail(err)
			return
		}
		r.state = StateGapFilled
	case StateGapFilled:
		conditioned, err := wave.Condition(r.buf, p.conditionParams)
		if err != nil {
			r.fail(err)
			return
		}
		r.conditioned = conditioned
		r.state = StateConditioned
	case StateConditioned:
		r.events, r.stats = wave.Extract(r.conditioned)
		if r.stats.InsufficientData {
			log.Warnf("run %s: too few zero-crossings, statistics zero-filled", r.id)
		}
		r.state = StateExtracted
	case StateExtracted:
		r.state = StateDone
	default:
		// Terminal states never reach here; the loop guard stops first.
		r.state = StateRejected
	}
}

func (r *run) fail(err error) {
	r.err = err
	r.state = StateRejected
	log.Errorf("run %s rejected: %v", r.id, err)
}

func (r *run) result() *types.RunResult {
	res := &types.RunResult{
		RunID:       r.id,
		Source:      r.buf.Source,
		Burst:       r.buf.Burst,
		State:       r.state.String(),
		ErrorKind:   types.ErrorKind(r.err),
		StartedAt:   r.startedAt,
		CompletedAt: time.Now(),
		Quality:     r.report,
	}
	if r.state == StateDone {
		res.Series = r.buf
		res.Events = r.events
		res.Stats = r.stats
	}
	return res
}

package ingest

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/sakhalinlab/waveproc/internal/log"
	"github.com/sakhalinlab/waveproc/internal/types"
)

// SplitBursts divides the concatenated samples into fixed-length bursts of
// frequency x burstSeconds points each.  A trailing incomplete burst is
// dropped, matching the recorder convention that only complete readings are
// analyzed.  Timestamps are synthesized from the recording start at the
// nominal sampling interval.
func SplitBursts(values []float64, meta Metadata, burstSeconds int, source string) []*types.SeriesBuffer {
	points := meta.Frequency * burstSeconds
	if points <= 0 || len(values) < points {
		return nil
	}

	interval := time.Second / time.Duration(meta.Frequency)
	complete := len(values) / points

	bursts := make([]*types.SeriesBuffer, 0, complete)
	for b := 0; b < complete; b++ {
		samples := make([]types.Sample, points)
		for i := 0; i < points; i++ {
			idx := b*points + i
			samples[i] = types.Sample{
				Timestamp: meta.Start.Add(time.Duration(idx) * interval),
				Value:     values[idx],
			}
		}
		bursts = append(bursts, &types.SeriesBuffer{
			Samples:  samples,
			Interval: interval,
			Burst:    b + 1,
			Source:   source,
		})
	}
	return bursts
}

// LoadRecording reads the configured INFO file and data files, concatenates
// all samples in file order, and splits them into bursts ready for the
// pipeline.
func LoadRecording(cfg types.InputConfig) ([]*types.SeriesBuffer, Metadata, error) {
	meta, err := ReadInfoFile(cfg.InfoFile)
	if err != nil {
		return nil, Metadata{}, err
	}
	log.Infof("recording metadata: %d Hz, start %s", meta.Frequency, meta.Start.Format(time.RFC3339))

	var values []float64
	for _, path := range cfg.DataFiles {
		fileValues, err := ReadValueFile(path)
		if err != nil {
			return nil, Metadata{}, err
		}
		log.Debugf("loaded %d samples from %s", len(fileValues), path)
		values = append(values, fileValues...)
	}

	source := filepath.Base(cfg.InfoFile)
	bursts := SplitBursts(values, meta, cfg.BurstSeconds, source)
	if len(bursts) == 0 {
		return nil, meta, fmt.Errorf("%w: %d samples is less than one complete %d-second burst at %d Hz",
			types.ErrInvalidInput, len(values), cfg.BurstSeconds, meta.Frequency)
	}

	dropped := len(values) - len(bursts)*meta.Frequency*cfg.BurstSeconds
	if dropped > 0 {
		log.Infof("dropped %d trailing samples short of a complete burst", dropped)
	}
	return bursts, meta, nil
}

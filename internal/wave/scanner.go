package wave

import (
	"fmt"
	"math"
	"time"

	"github.com/sakhalinlab/waveproc/internal/types"
)

// ScanParams defines parameters for the quality scanner
type ScanParams struct {
	// PhysicalMin and PhysicalMax are the hard value bounds; anything
	// outside is rejected regardless of its neighborhood.
	PhysicalMin float64
	PhysicalMax float64

	// SpikeWindow is the number of recent accepted samples the spike test
	// compares against.  Must be an odd number >= 5.
	SpikeWindow int

	// SpikeThreshold is the multiple of the local standard deviation a
	// sample may deviate from the window mean before it is rejected.
	SpikeThreshold float64
}

// DefaultScanParams returns conservative default parameters for the scanner
func DefaultScanParams() ScanParams {
	return ScanParams{
		PhysicalMin:    0.0,
		PhysicalMax:    50.0,
		SpikeWindow:    11,
		SpikeThreshold: 4.0,
	}
}

// Scan marks the flag on every sample in the buffer and tallies a quality
// report.  A sample is rejected when its value falls outside the physical
// range, when its timestamp duplicates or precedes the previous accepted
// timestamp (the first occurrence wins), or when it deviates from the local
// window by more than SpikeThreshold local standard deviations.
//
// When the buffer is shorter than SpikeWindow the spike test cannot run; the
// scanner still performs the range and monotonicity checks and returns a
// types.ErrInvalidInput so the caller knows the scan was degraded.
func Scan(buf *types.SeriesBuffer, p ScanParams) (*types.QualityReport, error) {
	rep := &types.QualityReport{TotalSamples: buf.Len()}

	var lastTime time.Time
	var haveLast bool
	for i := range buf.Samples {
		s := &buf.Samples[i]
		s.Flag = types.FlagValid

		if haveLast && !s.Timestamp.After(lastTime) {
			s.Flag = types.FlagRejected
			continue
		}
		// A range-rejected sample still carries a usable timestamp, so it
		// advances the monotonicity cursor.
		lastTime = s.Timestamp
		haveLast = true

		if s.Value < p.PhysicalMin || s.Value > p.PhysicalMax {
			s.Flag = types.FlagRejected
		}
	}

	var spikeErr error
	if buf.Len() < p.SpikeWindow {
		spikeErr = fmt.Errorf("%w: %d samples is too few for spike window %d, spike test skipped",
			types.ErrInvalidInput, buf.Len(), p.SpikeWindow)
	} else {
		scanSpikes(buf, p)
	}

	tallyRejections(buf, rep)
	return rep, spikeErr
}

// scanSpikes runs the moving-window deviation test over samples that
// survived the range and monotonicity checks.  Rejected samples never enter
// the window.
func scanSpikes(buf *types.SeriesBuffer, p ScanParams) {
	win := newSlidingWindow(p.SpikeWindow)
	for i := range buf.Samples {
		s := &buf.Samples[i]
		if s.Flag == types.FlagRejected {
			continue
		}
		if win.full() {
			mean, std := win.meanStd()
			dev := math.Abs(s.Value - mean)
			if std == 0 {
				// A flat window means a stuck sensor; any departure from
				// the flat line is a spike.
				if dev > 0 {
					s.Flag = types.FlagRejected
					continue
				}
			} else if dev > p.SpikeThreshold*std {
				s.Flag = types.FlagRejected
				continue
			}
		}
		win.push(s.Value)
	}
}

// tallyRejections counts rejected samples and records maximal contiguous
// rejected runs as time ranges, tracking the longest run seen.
func tallyRejections(buf *types.SeriesBuffer, rep *types.QualityReport) {
	samples := buf.Samples
	i := 0
	for i < len(samples) {
		if samples[i].Flag != types.FlagRejected {
			i++
			continue
		}
		j := i
		for j < len(samples) && samples[j].Flag == types.FlagRejected {
			j++
		}
		rep.RejectedSamples += j - i
		if j-i > rep.LongestGap {
			rep.LongestGap = j - i
		}
		rep.RejectedRanges = append(rep.RejectedRanges, types.TimeRange{
			Start: samples[i].Timestamp,
			End:   samples[j-1].Timestamp,
		})
		i = j
	}
}

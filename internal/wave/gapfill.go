package wave

import (
	"fmt"
	"time"

	"github.com/sakhalinlab/waveproc/internal/types"
)

// GapFillParams defines parameters for the gap filler
type GapFillParams struct {
	// MaxGapSamples is the largest contiguous rejected run that may be
	// repaired by interpolation.  Longer runs are removed and recorded as
	// unrepaired gaps.
	MaxGapSamples int

	// MinSeriesLength is the smallest buffer allowed to leave this stage.
	// Falling below it after trimming is a terminal condition for the run.
	MinSeriesLength int
}

// DefaultGapFillParams returns conservative default parameters for gap repair
func DefaultGapFillParams() GapFillParams {
	return GapFillParams{
		MaxGapSamples:   8,
		MinSeriesLength: 512,
	}
}

// FillGaps repairs every maximal contiguous run of rejected samples that is
// short enough, replacing each with a linear interpolation between its
// nearest valid neighbors.  A run touching either end of the series has no
// neighbor on one side and is trimmed instead of extrapolated.  Runs longer
// than MaxGapSamples are removed and recorded as unrepaired gaps.
//
// On return the buffer holds only valid and interpolated samples with
// strictly increasing timestamps.  Returns types.ErrUnrepairableSeries when
// fewer than MinSeriesLength samples remain.
func FillGaps(buf *types.SeriesBuffer, rep *types.QualityReport, p GapFillParams) error {
	samples := buf.Samples
	n := len(samples)
	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}

	i := 0
	for i < n {
		if samples[i].Flag != types.FlagRejected {
			i++
			continue
		}
		j := i
		for j < n && samples[j].Flag == types.FlagRejected {
			j++
		}
		runLen := j - i

		switch {
		case i == 0:
			for k := i; k < j; k++ {
				keep[k] = false
			}
			rep.TrimmedLeading += runLen
		case j == n:
			for k := i; k < j; k++ {
				keep[k] = false
			}
			rep.TrimmedTrailing += runLen
		case runLen <= p.MaxGapSamples:
			interpolateRun(samples, i, j)
			rep.InterpolatedSamples += runLen
		default:
			rep.UnrepairedGaps = append(rep.UnrepairedGaps, types.TimeRange{
				Start: samples[i].Timestamp,
				End:   samples[j-1].Timestamp,
			})
			for k := i; k < j; k++ {
				keep[k] = false
			}
		}
		i = j
	}

	out := samples[:0]
	for k := range samples {
		if keep[k] {
			out = append(out, samples[k])
		}
	}
	buf.Samples = out

	if len(out) < p.MinSeriesLength {
		return fmt.Errorf("%w: %d samples remain after gap repair, need at least %d",
			types.ErrUnrepairableSeries, len(out), p.MinSeriesLength)
	}
	return nil
}

// interpolateRun replaces samples[i:j] with values and timestamps spaced
// linearly between the bracketing neighbors.  Timestamps are resynthesized
// because a rejected sample may carry a duplicate or backwards timestamp.
func interpolateRun(samples []types.Sample, i, j int) {
	left := samples[i-1]
	right := samples[j]
	runLen := j - i
	step := right.Timestamp.Sub(left.Timestamp) / time.Duration(runLen+1)
	for k := i; k < j; k++ {
		frac := float64(k-i+1) / float64(runLen+1)
		samples[k].Value = left.Value + frac*(right.Value-left.Value)
		samples[k].Timestamp = left.Timestamp.Add(time.Duration(k-i+1) * step)
		samples[k].Flag = types.FlagInterpolated
	}
}

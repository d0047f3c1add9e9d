package wave

import (
	"fmt"

	"github.com/sakhalinlab/waveproc/internal/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DetrendMode selects how the slow-varying component is estimated.
type DetrendMode string

const (
	// DetrendMean subtracts the arithmetic mean of the series.
	DetrendMean DetrendMode = "mean"
	// DetrendLinear subtracts a least-squares linear fit over time.
	DetrendLinear DetrendMode = "linear"
)

// ConditionParams defines parameters for the detrend and smoothing stage
type ConditionParams struct {
	Mode DetrendMode

	// SmoothingWindow is the length of the centered moving-average filter.
	// 0 disables smoothing; otherwise it must be a positive odd number.
	SmoothingWindow int

	// MinSeriesLength is the smallest buffer allowed to leave this stage.
	MinSeriesLength int
}

// Condition subtracts the configured trend from the repaired series and
// optionally applies a centered moving-average smoothing filter, producing a
// new zero-mean buffer.  The input buffer is not modified.
//
// The smoothing filter is non-causal: it uses samples on both sides, so the
// half-window at each end of the series has no full neighborhood and those
// samples are dropped rather than zero-padded.  Returns
// types.ErrUnrepairableSeries when fewer than MinSeriesLength samples
// survive.
func Condition(buf *types.SeriesBuffer, p ConditionParams) (*types.SeriesBuffer, error) {
	n := buf.Len()
	if n < 2 {
		return nil, fmt.Errorf("%w: %d samples is too few to condition", types.ErrUnrepairableSeries, n)
	}

	ys := buf.Values()
	switch p.Mode {
	case DetrendLinear:
		xs := make([]float64, n)
		t0 := buf.Samples[0].Timestamp
		for i, s := range buf.Samples {
			xs[i] = s.Timestamp.Sub(t0).Seconds()
		}
		alpha, beta := stat.LinearRegression(xs, ys, nil, false)
		for i := range ys {
			ys[i] -= alpha + beta*xs[i]
		}
	default:
		floats.AddConst(-stat.Mean(ys, nil), ys)
	}

	out := &types.SeriesBuffer{
		Interval: buf.Interval,
		Burst:    buf.Burst,
		Source:   buf.Source,
	}

	if p.SmoothingWindow > 1 {
		half := p.SmoothingWindow / 2
		smoothed := movingAverage(ys, p.SmoothingWindow)
		out.Samples = make([]types.Sample, len(smoothed))
		for i := range smoothed {
			src := buf.Samples[i+half]
			out.Samples[i] = types.Sample{Timestamp: src.Timestamp, Value: smoothed[i], Flag: src.Flag}
		}
	} else {
		out.Samples = make([]types.Sample, n)
		for i, s := range buf.Samples {
			out.Samples[i] = types.Sample{Timestamp: s.Timestamp, Value: ys[i], Flag: s.Flag}
		}
	}

	if out.Len() < p.MinSeriesLength {
		return nil, fmt.Errorf("%w: %d samples after conditioning, need at least %d",
			types.ErrUnrepairableSeries, out.Len(), p.MinSeriesLength)
	}
	return out, nil
}

// movingAverage computes a centered moving average with a running sum,
// returning only the interior points that have a full window on both sides.
func movingAverage(vals []float64, window int) []float64 {
	if len(vals) < window {
		return nil
	}
	out := make([]float64, 0, len(vals)-window+1)
	sum := floats.Sum(vals[:window])
	out = append(out, sum/float64(window))
	for i := window; i < len(vals); i++ {
		sum += vals[i] - vals[i-window]
		out = append(out, sum/float64(window))
	}
	return out
}

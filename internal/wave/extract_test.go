package wave

import (
	"math"
	"testing"
	"time"
)

func TestExtractSineWaves(t *testing.T) {
	// 2.5 sine periods with a quarter-sample phase offset so no sample
	// lands exactly on zero: up-crossings near 0, 32, and 64.
	vals := make([]float64, 80)
	for i := range vals {
		vals[i] = math.Sin(2 * math.Pi * (float64(i) - 0.25) / 32)
	}
	buf := makeBuffer(vals, time.Second)

	events, stats := Extract(buf)

	if stats.InsufficientData {
		t.Fatal("unexpected InsufficientData flag")
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events from 3 up-crossings, got %d", len(events))
	}
	if stats.WaveCount != 2 {
		t.Errorf("expected wave count 2, got %d", stats.WaveCount)
	}

	var periodSum float64
	for i, e := range events {
		if math.Abs(e.Height()-2.0) > 0.05 {
			t.Errorf("event %d: height %g, want ~2.0", i, e.Height())
		}
		if math.Abs(e.Period-32.0) > 0.05 {
			t.Errorf("event %d: period %g, want ~32.0", i, e.Period)
		}
		if e.Period <= 0 {
			t.Errorf("event %d: period must be strictly positive", i)
		}
		if !e.End.After(e.Start) {
			t.Errorf("event %d: crossing times not increasing", i)
		}
		periodSum += e.Period
	}
	if span := buf.Span().Seconds(); periodSum > span {
		t.Errorf("sum of periods %g exceeds series span %g", periodSum, span)
	}
}

func TestExtractFlatSeries(t *testing.T) {
	buf := makeBuffer(make([]float64, 40), time.Second)

	events, stats := Extract(buf)

	if !stats.InsufficientData {
		t.Fatal("expected InsufficientData flag for a flat zero series")
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
	if stats.MeanHeight != 0 || stats.SignificantHeight != 0 || stats.MaxHeight != 0 ||
		stats.MeanPeriod != 0 || stats.WaveCount != 0 {
		t.Error("statistics must be zero-filled when data is insufficient")
	}
}

func TestExtractZeroSampleBelongsToFollowingCrossing(t *testing.T) {
	// Each zero sample opens the crossing that follows it, so it is counted
	// exactly once.
	buf := makeBuffer([]float64{-1, 0, 1, -1, 0, 1, -1}, time.Second)

	events, stats := Extract(buf)

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.StartIndex != 1 || e.EndIndex != 3 {
		t.Errorf("expected event over samples [1,3], got [%d,%d]", e.StartIndex, e.EndIndex)
	}
	if e.Height() != 2 {
		t.Errorf("expected height 2, got %g", e.Height())
	}
	if e.Period != 3 {
		t.Errorf("expected period 3s between the exact crossings, got %g", e.Period)
	}
	if stats.WaveCount != 1 {
		t.Errorf("expected wave count 1, got %d", stats.WaveCount)
	}
}

func TestExtractStatistics(t *testing.T) {
	// Three single-period sine waves of increasing amplitude; each starts on
	// an exact zero so heights come out at exactly twice the amplitude.
	amps := []float64{0.5, 1.0, 1.5}
	var vals []float64
	for _, a := range amps {
		for i := 0; i < 16; i++ {
			vals = append(vals, a*math.Sin(2*math.Pi*float64(i)/16))
		}
	}
	vals = append(vals, 0, 1.0) // closing crossing for the final wave
	buf := makeBuffer(vals, time.Second)

	events, stats := Extract(buf)

	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	const eps = 1e-9
	if math.Abs(stats.MeanHeight-2.0) > eps {
		t.Errorf("mean height: got %g, want 2.0", stats.MeanHeight)
	}
	if math.Abs(stats.SignificantHeight-3.0) > eps {
		t.Errorf("significant height: got %g, want 3.0", stats.SignificantHeight)
	}
	if math.Abs(stats.MaxHeight-3.0) > eps {
		t.Errorf("max height: got %g, want 3.0", stats.MaxHeight)
	}
	if math.Abs(stats.MeanPeriod-16.0) > eps {
		t.Errorf("mean period: got %g, want 16.0", stats.MeanPeriod)
	}

	// Ordering properties of the aggregate statistics.
	if stats.SignificantHeight < stats.MeanHeight {
		t.Error("H1/3 must not be below the mean height")
	}
	if stats.MaxHeight < stats.SignificantHeight {
		t.Error("max height must not be below H1/3")
	}
	if stats.MeanHeight < 0 {
		t.Error("mean height must not be negative")
	}
}

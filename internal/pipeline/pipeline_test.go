package pipeline

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/sakhalinlab/waveproc/internal/types"
)

func testConfig() types.ProcessingConfig {
	return types.ProcessingConfig{
		PhysicalRange:   types.PhysicalRange{Min: -100, Max: 100},
		SpikeWindow:     11,
		SpikeThreshold:  4.0,
		MaxGapSamples:   4,
		MinSeriesLength: 16,
		DetrendMode:     "mean",
		Workers:         2,
	}
}

func sineBuffer(n, period int, base, amp float64) *types.SeriesBuffer {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	samples := make([]types.Sample, n)
	for i := range samples {
		samples[i] = types.Sample{
			Timestamp: start.Add(time.Duration(i) * time.Second),
			Value:     base + amp*math.Sin(2*math.Pi*float64(i)/float64(period)),
		}
	}
	return &types.SeriesBuffer{Samples: samples, Interval: time.Second, Burst: 1, Source: "test"}
}

func TestRunCompletesCleanSeries(t *testing.T) {
	p := New(testConfig())
	buf := sineBuffer(128, 32, 5, 1)

	res := p.Run(buf)

	if res.State != "done" {
		t.Fatalf("expected state done, got %s (error kind %q)", res.State, res.ErrorKind)
	}
	if res.RunID == "" {
		t.Error("expected a run ID")
	}
	if res.Stats == nil {
		t.Fatal("completed run carries no statistics")
	}
	if res.Stats.InsufficientData {
		t.Error("unexpected InsufficientData for a sine series")
	}
	if res.Stats.WaveCount < 2 {
		t.Errorf("expected at least 2 waves, got %d", res.Stats.WaveCount)
	}
	if math.Abs(res.Stats.MeanHeight-2.0) > 0.1 {
		t.Errorf("mean height %g, want ~2.0", res.Stats.MeanHeight)
	}
	if res.Quality.RejectedSamples != 0 {
		t.Errorf("clean series produced %d rejections", res.Quality.RejectedSamples)
	}
}

func TestRunRejectsUnrepairableSeries(t *testing.T) {
	p := New(testConfig())
	// Every value far outside the physical range: the whole series is
	// rejected and trimmed away.
	buf := sineBuffer(32, 8, 10000, 1)

	res := p.Run(buf)

	if res.State != "rejected" {
		t.Fatalf("expected state rejected, got %s", res.State)
	}
	if res.ErrorKind != "unrepairable_series" {
		t.Errorf("expected error kind unrepairable_series, got %q", res.ErrorKind)
	}
	if res.Stats != nil {
		t.Error("a failed run must not carry statistics")
	}
	// The diagnostics accumulated before the failure survive.
	if res.Quality == nil || res.Quality.RejectedSamples != 32 {
		t.Error("expected the quality report accumulated so far")
	}
}

func TestRunFlatSeriesReachesDone(t *testing.T) {
	p := New(testConfig())
	buf := sineBuffer(64, 32, 5, 0) // constant value, no crossings after detrend

	res := p.Run(buf)

	if res.State != "done" {
		t.Fatalf("expected state done, got %s (error kind %q)", res.State, res.ErrorKind)
	}
	if res.Stats == nil || !res.Stats.InsufficientData {
		t.Fatal("expected zero-filled statistics with InsufficientData set")
	}
	if res.Stats.WaveCount != 0 || res.Stats.MeanHeight != 0 {
		t.Error("statistics must be zero-filled")
	}
}

func TestRunRepairsShortGap(t *testing.T) {
	p := New(testConfig())
	buf := sineBuffer(128, 32, 5, 1)
	// Knock three interior samples out of physical range.
	for i := 60; i < 63; i++ {
		buf.Samples[i].Value = 5000
	}

	res := p.Run(buf)

	if res.State != "done" {
		t.Fatalf("expected state done, got %s (error kind %q)", res.State, res.ErrorKind)
	}
	if res.Quality.RejectedSamples != 3 {
		t.Errorf("expected 3 rejected samples, got %d", res.Quality.RejectedSamples)
	}
	if res.Quality.InterpolatedSamples != 3 {
		t.Errorf("expected 3 interpolated samples, got %d", res.Quality.InterpolatedSamples)
	}
	if len(res.Quality.UnrepairedGaps) != 0 {
		t.Errorf("expected no unrepaired gaps, got %d", len(res.Quality.UnrepairedGaps))
	}
	if res.Series.Len() != 128 {
		t.Errorf("expected all 128 samples retained, got %d", res.Series.Len())
	}
}

func TestStateStrings(t *testing.T) {
	states := map[State]string{
		StateLoaded:      "loaded",
		StateScanned:     "scanned",
		StateGapFilled:   "gapfilled",
		StateConditioned: "conditioned",
		StateExtracted:   "extracted",
		StateDone:        "done",
		StateRejected:    "rejected",
	}
	for s, want := range states {
		if s.String() != want {
			t.Errorf("state %d: got %q, want %q", s, s.String(), want)
		}
	}
}

func TestRunAllProcessesEveryBurst(t *testing.T) {
	p := New(testConfig())
	bursts := []*types.SeriesBuffer{
		sineBuffer(128, 32, 5, 1),
		sineBuffer(128, 16, 5, 2),
		sineBuffer(32, 8, 10000, 1), // rejected
	}
	for i, b := range bursts {
		b.Burst = i + 1
	}

	results := make(chan types.RunResult, len(bursts))
	if err := RunAll(context.Background(), p, bursts, 2, results); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(results)

	var done, rejected int
	for res := range results {
		switch res.State {
		case "done":
			done++
		case "rejected":
			rejected++
		}
	}
	if done != 2 || rejected != 1 {
		t.Errorf("expected 2 done and 1 rejected, got %d and %d", done, rejected)
	}
}

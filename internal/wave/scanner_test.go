package wave

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sakhalinlab/waveproc/internal/types"
)

var testBase = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func makeBuffer(values []float64, interval time.Duration) *types.SeriesBuffer {
	samples := make([]types.Sample, len(values))
	for i, v := range values {
		samples[i] = types.Sample{Timestamp: testBase.Add(time.Duration(i) * interval), Value: v}
	}
	return &types.SeriesBuffer{Samples: samples, Interval: interval}
}

func sineValues(n, period int, base, amp float64) []float64 {
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = base + amp*math.Sin(2*math.Pi*float64(i)/float64(period))
	}
	return vals
}

func flagsOf(buf *types.SeriesBuffer) []types.SampleFlag {
	flags := make([]types.SampleFlag, buf.Len())
	for i, s := range buf.Samples {
		flags[i] = s.Flag
	}
	return flags
}

func TestScanRangeAndMonotonicity(t *testing.T) {
	params := ScanParams{PhysicalMin: 0, PhysicalMax: 50, SpikeWindow: 5, SpikeThreshold: 4.0}

	tests := []struct {
		name         string
		setup        func() *types.SeriesBuffer
		wantRejected []int
	}{
		{
			name: "out of range values rejected",
			setup: func() *types.SeriesBuffer {
				vals := sineValues(20, 16, 10, 1)
				vals[3] = -2.0
				vals[12] = 75.0
				return makeBuffer(vals, time.Second)
			},
			wantRejected: []int{3, 12},
		},
		{
			name: "duplicate timestamp keeps first occurrence",
			setup: func() *types.SeriesBuffer {
				buf := makeBuffer(sineValues(20, 16, 10, 1), time.Second)
				buf.Samples[7].Timestamp = buf.Samples[6].Timestamp
				return buf
			},
			wantRejected: []int{7},
		},
		{
			name: "backwards timestamp rejected",
			setup: func() *types.SeriesBuffer {
				buf := makeBuffer(sineValues(20, 16, 10, 1), time.Second)
				buf.Samples[9].Timestamp = buf.Samples[4].Timestamp
				return buf
			},
			wantRejected: []int{9},
		},
		{
			name: "clean series rejects nothing",
			setup: func() *types.SeriesBuffer {
				return makeBuffer(sineValues(40, 16, 10, 1), time.Second)
			},
			wantRejected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := tt.setup()
			rep, err := Scan(buf, params)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := make(map[int]bool, len(tt.wantRejected))
			for _, idx := range tt.wantRejected {
				want[idx] = true
			}
			for i, f := range flagsOf(buf) {
				if want[i] && f != types.FlagRejected {
					t.Errorf("sample %d: expected rejected, got %v", i, f)
				}
				if !want[i] && f == types.FlagRejected {
					t.Errorf("sample %d: unexpectedly rejected", i)
				}
			}
			if rep.RejectedSamples != len(tt.wantRejected) {
				t.Errorf("expected %d rejected in report, got %d", len(tt.wantRejected), rep.RejectedSamples)
			}
			if rep.TotalSamples != buf.Len() {
				t.Errorf("expected total %d, got %d", buf.Len(), rep.TotalSamples)
			}
		})
	}
}

func TestScanSpikeDetection(t *testing.T) {
	// Low-amplitude jitter around 10 with a single large spike.
	vals := make([]float64, 21)
	for i := range vals {
		if i%2 == 0 {
			vals[i] = 10.1
		} else {
			vals[i] = 9.9
		}
	}
	vals[10] = 25.0

	buf := makeBuffer(vals, time.Second)
	rep, err := Scan(buf, ScanParams{PhysicalMin: 0, PhysicalMax: 50, SpikeWindow: 5, SpikeThreshold: 3.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if buf.Samples[10].Flag != types.FlagRejected {
		t.Error("spike at index 10 was not rejected")
	}
	if rep.RejectedSamples != 1 {
		t.Errorf("expected exactly 1 rejection, got %d", rep.RejectedSamples)
	}
	if len(rep.RejectedRanges) != 1 {
		t.Fatalf("expected 1 rejected range, got %d", len(rep.RejectedRanges))
	}
	if !rep.RejectedRanges[0].Start.Equal(buf.Samples[10].Timestamp) {
		t.Error("rejected range does not cover the spike timestamp")
	}
}

func TestScanShortBufferDegrades(t *testing.T) {
	buf := makeBuffer([]float64{10, 11, 99, 10}, time.Second)
	rep, err := Scan(buf, ScanParams{PhysicalMin: 0, PhysicalMax: 50, SpikeWindow: 11, SpikeThreshold: 4.0})

	if !errors.Is(err, types.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	// Range check still ran despite the degraded scan.
	if buf.Samples[2].Flag != types.FlagRejected {
		t.Error("out-of-range sample not rejected in degraded scan")
	}
	if rep.RejectedSamples != 1 {
		t.Errorf("expected 1 rejection, got %d", rep.RejectedSamples)
	}
}

func TestScanIdempotent(t *testing.T) {
	params := ScanParams{PhysicalMin: 0, PhysicalMax: 50, SpikeWindow: 11, SpikeThreshold: 4.0}
	buf := makeBuffer(sineValues(200, 32, 10, 1), time.Second)

	first, err := Scan(buf, params)
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if first.RejectedSamples != 0 {
		t.Fatalf("first scan rejected %d samples from a clean series", first.RejectedSamples)
	}

	second, err := Scan(buf, params)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if second.RejectedSamples != 0 {
		t.Errorf("re-scan rejected %d samples from its own output", second.RejectedSamples)
	}
}

func TestSlidingWindowMatchesDirectComputation(t *testing.T) {
	vals := sineValues(50, 13, 5, 2)
	win := newSlidingWindow(7)
	for i, v := range vals {
		win.push(v)
		if i < 6 {
			continue
		}
		window := vals[i-6 : i+1]
		var sum float64
		for _, w := range window {
			sum += w
		}
		wantMean := sum / 7
		var sumSq float64
		for _, w := range window {
			sumSq += (w - wantMean) * (w - wantMean)
		}
		wantStd := math.Sqrt(sumSq / 6)

		mean, std := win.meanStd()
		if math.Abs(mean-wantMean) > 1e-9 {
			t.Fatalf("index %d: mean %.12f, want %.12f", i, mean, wantMean)
		}
		if math.Abs(std-wantStd) > 1e-9 {
			t.Fatalf("index %d: std %.12f, want %.12f", i, std, wantStd)
		}
	}
}

// Package types defines the shared domain types passed between the ingest,
// processing, and storage layers.
package types

import "time"

// SampleFlag marks the quality disposition of a single sample.
type SampleFlag uint8

const (
	// FlagValid marks a sample that passed all quality checks.
	FlagValid SampleFlag = iota
	// FlagInterpolated marks a sample whose value was reconstructed by the
	// gap filler.
	FlagInterpolated
	// FlagRejected marks a sample that failed a quality check.
	FlagRejected
)

func (f SampleFlag) String() string {
	switch f {
	case FlagValid:
		return "valid"
	case FlagInterpolated:
		return "interpolated"
	case FlagRejected:
		return "rejected"
	}
	return "unknown"
}

// Sample is a single timestamped sensor measurement.
type Sample struct {
	Timestamp time.Time
	Value     float64
	Flag      SampleFlag
}

// SeriesBuffer holds one burst of samples from a wave sensor.  The quality
// scanner and gap filler mutate it in place; the conditioning and extraction
// stages treat it as read-only and produce derived buffers.  Timestamps are
// strictly increasing once the scanner has run.
type SeriesBuffer struct {
	Samples  []Sample
	Interval time.Duration // nominal sampling interval
	Burst    int           // burst sequence number within the recording, 1-based
	Source   string        // originating file set, for reporting
}

// Len returns the number of samples in the buffer.
func (b *SeriesBuffer) Len() int {
	return len(b.Samples)
}

// Span returns the time covered by the buffer, zero for fewer than two samples.
func (b *SeriesBuffer) Span() time.Duration {
	if len(b.Samples) < 2 {
		return 0
	}
	return b.Samples[len(b.Samples)-1].Timestamp.Sub(b.Samples[0].Timestamp)
}

// Values returns the sample values as a flat slice.
func (b *SeriesBuffer) Values() []float64 {
	vals := make([]float64, len(b.Samples))
	for i, s := range b.Samples {
		vals[i] = s.Value
	}
	return vals
}

// TimeRange is a half-open interval of wall-clock time within a burst.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// QualityReport tallies what the scanner and gap filler did to a buffer.
// It is accumulated across both stages and immutable once the run finishes.
type QualityReport struct {
	TotalSamples        int         `json:"total_samples"`
	RejectedSamples     int         `json:"rejected_samples"`
	InterpolatedSamples int         `json:"interpolated_samples"`
	LongestGap          int         `json:"longest_gap"`
	TrimmedLeading      int         `json:"trimmed_leading"`
	TrimmedTrailing     int         `json:"trimmed_trailing"`
	RejectedRanges      []TimeRange `json:"rejected_ranges,omitempty"`
	UnrepairedGaps      []TimeRange `json:"unrepaired_gaps,omitempty"`
}

// WaveEvent is one individual wave, spanning consecutive zero-up-crossings
// of the conditioned series.
type WaveEvent struct {
	StartIndex int       // first sample at or after the opening crossing
	EndIndex   int       // last sample before the closing crossing
	Start      time.Time // opening crossing time, sub-sample interpolated
	End        time.Time // closing crossing time, sub-sample interpolated
	Crest      float64   // highest value between the crossings
	Trough     float64   // lowest value between the crossings
	Period     float64   // seconds between the crossings
}

// Height returns the crest-to-trough height of the wave.
func (e WaveEvent) Height() float64 {
	return e.Crest - e.Trough
}

// WaveStatistics aggregates the wave events of one burst.  When
// InsufficientData is set the numeric fields are all zero and must not be
// interpreted.
type WaveStatistics struct {
	MeanHeight        float64 `json:"mean_height"`
	SignificantHeight float64 `json:"significant_height"` // H1/3
	MaxHeight         float64 `json:"max_height"`
	MeanPeriod        float64 `json:"mean_period"`
	WaveCount         int     `json:"wave_count"`
	InsufficientData  bool    `json:"insufficient_data"`
}

// RunResult is the terminal output of one pipeline run, distributed to the
// configured storage backends.
type RunResult struct {
	RunID       string          `json:"run_id"`
	Source      string          `json:"source"`
	Burst       int             `json:"burst"`
	State       string          `json:"state"`
	ErrorKind   string          `json:"error_kind,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	CompletedAt time.Time       `json:"completed_at"`
	Series      *SeriesBuffer   `json:"-"`
	Quality     *QualityReport  `json:"quality"`
	Events      []WaveEvent     `json:"-"`
	Stats       *WaveStatistics `json:"stats,omitempty"`
}

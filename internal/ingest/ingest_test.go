package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestReadInfoFile(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantFreq  int
		wantStart time.Time
	}{
		{
			name: "keyword labelled frequency",
			content: "Wave recorder station 4\n" +
				"Deployment 12\n" +
				"Frequency: 16 Hz\n" +
				"Recording start\n" +
				"\n" +
				"2024.06.15 00:00:00.000\n" +
				"Recording end\n" +
				"2024.06.25 00:00:00.000\n",
			wantFreq:  16,
			wantStart: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "bare number on line 3",
			content: "station\n" +
				"deployment\n" +
				"8\n",
			wantFreq: 8,
		},
		{
			name:     "missing frequency falls back to default",
			content:  "station\nno numbers here\nnone\n",
			wantFreq: DefaultFrequency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "INFO.DAT", tt.content)
			meta, err := ReadInfoFile(path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if meta.Frequency != tt.wantFreq {
				t.Errorf("frequency: got %d, want %d", meta.Frequency, tt.wantFreq)
			}
			if !tt.wantStart.IsZero() && !meta.Start.Equal(tt.wantStart) {
				t.Errorf("start: got %v, want %v", meta.Start, tt.wantStart)
			}
		})
	}
}

func TestReadInfoFileWindows1251(t *testing.T) {
	// "частота 8 гц" in windows-1251 bytes.
	line := []byte{0xf7, 0xe0, 0xf1, 0xf2, 0xee, 0xf2, 0xe0, ' ', '8', ' ', 0xe3, 0xf6, '\n'}
	path := filepath.Join(t.TempDir(), "INFO.DAT")
	if err := os.WriteFile(path, line, 0o644); err != nil {
		t.Fatal(err)
	}

	meta, err := ReadInfoFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Frequency != 8 {
		t.Errorf("frequency: got %d, want 8", meta.Frequency)
	}
}

func TestReadValueFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []float64
		wantErr bool
	}{
		{
			name:    "plain values",
			content: "1.5\n2.25\n-0.75\n",
			want:    []float64{1.5, 2.25, -0.75},
		},
		{
			name:    "comma decimal separator",
			content: "10,25\n10,50\n",
			want:    []float64{10.25, 10.5},
		},
		{
			name:    "blank lines skipped",
			content: "1.0\n\n2.0\n\n",
			want:    []float64{1, 2},
		},
		{
			name:    "garbage line errors",
			content: "1.0\nnot-a-number\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "data.dat", tt.content)
			values, err := ReadValueFile(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(values) != len(tt.want) {
				t.Fatalf("got %d values, want %d", len(values), len(tt.want))
			}
			for i := range values {
				if values[i] != tt.want[i] {
					t.Errorf("value %d: got %g, want %g", i, values[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitBursts(t *testing.T) {
	meta := Metadata{
		Frequency: 2,
		Start:     time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
	}
	// 2 Hz x 4 s = 8 points per burst; 19 values make 2 complete bursts
	// with 3 trailing samples dropped.
	values := make([]float64, 19)
	for i := range values {
		values[i] = float64(i)
	}

	bursts := SplitBursts(values, meta, 4, "INFO.DAT")

	if len(bursts) != 2 {
		t.Fatalf("expected 2 bursts, got %d", len(bursts))
	}
	for i, b := range bursts {
		if b.Burst != i+1 {
			t.Errorf("burst %d: sequence number %d", i, b.Burst)
		}
		if b.Len() != 8 {
			t.Errorf("burst %d: expected 8 samples, got %d", i, b.Len())
		}
		if b.Interval != 500*time.Millisecond {
			t.Errorf("burst %d: interval %v, want 500ms", i, b.Interval)
		}
	}
	// Second burst continues the timestamp sequence without a gap.
	gap := bursts[1].Samples[0].Timestamp.Sub(bursts[0].Samples[7].Timestamp)
	if gap != 500*time.Millisecond {
		t.Errorf("expected contiguous timestamps across bursts, gap %v", gap)
	}
	if bursts[1].Samples[0].Value != 8 {
		t.Errorf("second burst starts at value %g, want 8", bursts[1].Samples[0].Value)
	}
}

func TestSplitBurstsTooShort(t *testing.T) {
	meta := Metadata{Frequency: 8}
	if bursts := SplitBursts(make([]float64, 10), meta, 1200, "INFO.DAT"); bursts != nil {
		t.Errorf("expected nil for less than one complete burst, got %d bursts", len(bursts))
	}
}

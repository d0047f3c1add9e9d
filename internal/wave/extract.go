package wave

import (
	"sort"
	"time"

	"github.com/sakhalinlab/waveproc/internal/types"
	"gonum.org/v1/gonum/stat"
)

// crossing is one zero-up-crossing: bracket is the index of the last
// non-positive sample and at is the sub-sample crossing time.
type crossing struct {
	bracket int
	exact   bool // the bracketing sample is exactly zero
	at      time.Time
}

// Extract identifies zero-up-crossings in the conditioned series and derives
// one WaveEvent per pair of consecutive crossings, plus summary statistics.
//
// With fewer than two up-crossings there is no complete wave; the returned
// statistics are zero-filled with InsufficientData set and the event slice
// is empty.  Callers must check the flag before interpreting the numbers.
func Extract(buf *types.SeriesBuffer) ([]types.WaveEvent, *types.WaveStatistics) {
	crossings := upCrossings(buf)
	if len(crossings) < 2 {
		return nil, &types.WaveStatistics{InsufficientData: true}
	}

	events := make([]types.WaveEvent, 0, len(crossings)-1)
	for c := 0; c+1 < len(crossings); c++ {
		events = append(events, makeEvent(buf, crossings[c], crossings[c+1]))
	}
	return events, summarize(events)
}

// upCrossings finds every transition from a non-positive to a positive value
// and estimates the crossing time by linear interpolation between the
// bracketing samples.  A sample exactly equal to zero counts toward the
// upward transition that follows it, so it is never double-counted.
func upCrossings(buf *types.SeriesBuffer) []crossing {
	var out []crossing
	samples := buf.Samples
	for i := 0; i+1 < len(samples); i++ {
		v0, v1 := samples[i].Value, samples[i+1].Value
		if v0 > 0 || v1 <= 0 {
			continue
		}
		if v0 == 0 {
			out = append(out, crossing{bracket: i, exact: true, at: samples[i].Timestamp})
			continue
		}
		frac := -v0 / (v1 - v0)
		dt := samples[i+1].Timestamp.Sub(samples[i].Timestamp)
		out = append(out, crossing{
			bracket: i,
			at:      samples[i].Timestamp.Add(time.Duration(frac * float64(dt))),
		})
	}
	return out
}

// makeEvent builds the wave between two consecutive up-crossings.  An
// exactly-zero bracketing sample belongs to the wave it opens, not the wave
// it closes.
func makeEvent(buf *types.SeriesBuffer, open, next crossing) types.WaveEvent {
	start := open.bracket + 1
	if open.exact {
		start = open.bracket
	}
	end := next.bracket
	if next.exact {
		end = next.bracket - 1
	}

	samples := buf.Samples
	crest, trough := samples[start].Value, samples[start].Value
	for i := start + 1; i <= end; i++ {
		if samples[i].Value > crest {
			crest = samples[i].Value
		}
		if samples[i].Value < trough {
			trough = samples[i].Value
		}
	}

	return types.WaveEvent{
		StartIndex: start,
		EndIndex:   end,
		Start:      open.at,
		End:        next.at,
		Crest:      crest,
		Trough:     trough,
		Period:     next.at.Sub(open.at).Seconds(),
	}
}

// summarize derives the aggregate statistics from the individual waves.
// H1/3 is the mean of the highest one-third of heights; ties between equal
// heights keep their original time order via the stable sort.
func summarize(events []types.WaveEvent) *types.WaveStatistics {
	heights := make([]float64, len(events))
	periods := make([]float64, len(events))
	for i, e := range events {
		heights[i] = e.Height()
		periods[i] = e.Period
	}

	order := make([]int, len(events))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return heights[order[a]] > heights[order[b]]
	})

	third := len(events) / 3
	if third == 0 {
		third = 1
	}
	var topSum float64
	for _, idx := range order[:third] {
		topSum += heights[idx]
	}

	return &types.WaveStatistics{
		MeanHeight:        stat.Mean(heights, nil),
		SignificantHeight: topSum / float64(third),
		MaxHeight:         heights[order[0]],
		MeanPeriod:        stat.Mean(periods, nil),
		WaveCount:         len(events),
	}
}

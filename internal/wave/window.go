package wave

import "math"

// slidingWindow is a fixed-size ring of recently accepted values with a
// running sum and sum of squares, so the spike scan stays linear in the
// series length instead of recomputing window statistics per sample.
type slidingWindow struct {
	buf   []float64
	head  int
	count int
	sum   float64
	sumSq float64
}

func newSlidingWindow(size int) *slidingWindow {
	return &slidingWindow{buf: make([]float64, size)}
}

func (w *slidingWindow) push(v float64) {
	if w.count == len(w.buf) {
		old := w.buf[w.head]
		w.sum -= old
		w.sumSq -= old * old
	} else {
		w.count++
	}
	w.buf[w.head] = v
	w.head = (w.head + 1) % len(w.buf)
	w.sum += v
	w.sumSq += v * v
}

func (w *slidingWindow) full() bool {
	return w.count == len(w.buf)
}

// meanStd returns the mean and sample standard deviation of the window
// contents.  Cancellation in the sum-of-squares can drive the variance
// slightly negative for near-constant data, so it is clamped at zero.
func (w *slidingWindow) meanStd() (mean, std float64) {
	if w.count == 0 {
		return 0, 0
	}
	mean = w.sum / float64(w.count)
	if w.count < 2 {
		return mean, 0
	}
	variance := (w.sumSq - w.sum*mean) / float64(w.count-1)
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

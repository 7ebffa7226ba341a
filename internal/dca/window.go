// Package dca implements the dendritic-cell fault classifier run over
// per-node sliding windows of recent sensor readings.
//
// The algorithm is fully online: no training phase, deterministic given
// the history and arrival order. Each accepted sample creates one cell
// tagged with the node id as antigen; cells accumulate a context score
// (danger minus safe) and vote on a binary fault label.
package dca

import "math"

// Window is a bounded sample window. The oldest sample is evicted first
// once the capacity is reached.
type Window struct {
	capacity int
	data     []float64
}

// NewWindow returns an empty window with the given capacity.
func NewWindow(capacity int) *Window {
	return &Window{capacity: capacity}
}

// Push appends a sample, evicting the oldest when full.
func (w *Window) Push(v float64) {
	if len(w.data) == w.capacity {
		copy(w.data, w.data[1:])
		w.data[len(w.data)-1] = v
		return
	}
	w.data = append(w.data, v)
}

// Len returns the number of samples currently held.
func (w *Window) Len() int { return len(w.data) }

// Mean returns the sample mean, 0 for an empty window.
func (w *Window) Mean() float64 {
	if len(w.data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range w.data {
		sum += v
	}
	return sum / float64(len(w.data))
}

// StdDev returns the population standard deviation over the current
// contents, 0 for an empty window.
func (w *Window) StdDev() float64 {
	if len(w.data) == 0 {
		return 0
	}
	mean := w.Mean()
	sum := 0.0
	for _, v := range w.data {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(w.data)))
}

// signalCount is the number of per-node signal windows: the four use-case
// readings of the tuple profiles.
const signalCount = 4

// WindowSet is the per-node group of signal windows.
type WindowSet struct {
	windows [signalCount]*Window
}

// NewWindowSet returns a set of empty windows, each with the given
// capacity.
func NewWindowSet(capacity int) *WindowSet {
	s := &WindowSet{}
	for i := range s.windows {
		s.windows[i] = NewWindow(capacity)
	}
	return s
}

// Push appends up to four signal values to their respective windows.
func (s *WindowSet) Push(signals []float64) {
	n := len(signals)
	if n > signalCount {
		n = signalCount
	}
	for i := 0; i < n; i++ {
		s.windows[i].Push(signals[i])
	}
}

// MaxStdDev returns the largest population standard deviation across the
// windows.
func (s *WindowSet) MaxStdDev() float64 {
	max := 0.0
	for _, w := range s.windows {
		if sd := w.StdDev(); sd > max {
			max = sd
		}
	}
	return max
}

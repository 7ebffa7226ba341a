package dca

import (
	"math"
	"testing"
)

func TestWindowEvictsOldest(t *testing.T) {
	w := NewWindow(3)
	for _, v := range []float64{1, 2, 3} {
		w.Push(v)
	}
	if w.Len() != 3 {
		t.Fatalf("Len = %d, expected 3", w.Len())
	}
	if w.Mean() != 2 {
		t.Errorf("Mean = %v, expected 2", w.Mean())
	}

	w.Push(10) // evicts the 1
	if w.Len() != 3 {
		t.Fatalf("Len after overflow = %d, expected 3", w.Len())
	}
	if w.Mean() != 5 {
		t.Errorf("Mean after eviction = %v, expected (2+3+10)/3 = 5", w.Mean())
	}
}

func TestWindowStdDevPopulation(t *testing.T) {
	w := NewWindow(8)
	w.Push(1)
	w.Push(3)
	// population stddev of {1,3}: mean 2, variance ((-1)^2 + 1^2)/2 = 1
	if got := w.StdDev(); got != 1 {
		t.Errorf("StdDev = %v, expected 1", got)
	}
}

func TestWindowEmptyStats(t *testing.T) {
	w := NewWindow(4)
	if w.Mean() != 0 || w.StdDev() != 0 {
		t.Errorf("empty window stats = (%v, %v), expected zeros", w.Mean(), w.StdDev())
	}
}

func TestWindowConstantSamples(t *testing.T) {
	w := NewWindow(4)
	for i := 0; i < 10; i++ {
		w.Push(23.5)
	}
	if got := w.StdDev(); got != 0 {
		t.Errorf("StdDev of constant samples = %v, expected 0", got)
	}
}

func TestWindowSetMaxStdDev(t *testing.T) {
	s := NewWindowSet(8)
	s.Push([]float64{0, 0, 0, 0})
	s.Push([]float64{0, 10, 0, 0})

	// window 1 holds {0,10}: mean 5, population stddev 5
	if got := s.MaxStdDev(); got != 5 {
		t.Errorf("MaxStdDev = %v, expected 5", got)
	}
}

func TestWindowSetShortSignalSlice(t *testing.T) {
	s := NewWindowSet(8)
	s.Push([]float64{1, 2}) // only two signals carried
	if s.windows[0].Len() != 1 || s.windows[1].Len() != 1 {
		t.Error("first two windows should hold one sample each")
	}
	if s.windows[2].Len() != 0 || s.windows[3].Len() != 0 {
		t.Error("unfed windows should stay empty")
	}
	if got := s.MaxStdDev(); got != 0 {
		t.Errorf("MaxStdDev = %v, expected 0 for single samples", got)
	}
}

func TestWindowSetIgnoresExtraSignals(t *testing.T) {
	s := NewWindowSet(8)
	s.Push([]float64{1, 2, 3, 4, 5, 6})
	for i, w := range s.windows {
		if w.Len() != 1 {
			t.Errorf("window %d length = %d, expected 1", i, w.Len())
		}
	}
}

func TestWindowSetSafeDecay(t *testing.T) {
	// Stable signals keep the safe indicator at 1; a noisy window drives
	// exp(-k * stddev) toward 0.
	s := NewWindowSet(8)
	s.Push([]float64{0, 0, 0, 0})
	if got := math.Exp(-1 * s.MaxStdDev()); got != 1 {
		t.Errorf("safe for stable window = %v, expected 1", got)
	}

	s.Push([]float64{100, 0, 0, 0})
	if got := math.Exp(-1 * s.MaxStdDev()); got >= 0.01 {
		t.Errorf("safe for noisy window = %v, expected near 0", got)
	}
}

package dca

import (
	"math"
	"testing"
)

func testClassifier(cap int) *Classifier {
	return New(Config{WindowSize: 8, CellCap: cap, Sensitivity: 1.0})
}

func TestPopulationCapEvictsOldest(t *testing.T) {
	c := testClassifier(3)
	ws := NewWindowSet(8)
	stable := []float64{20, 20, 50, 50}

	var v Verdict
	for i := 0; i < 4; i++ {
		v = c.Classify("4155C81D", ws, stable, 0, nil)
	}

	if v.Cells != 3 {
		t.Errorf("population after 4th sample = %d, expected cap 3", v.Cells)
	}
	if c.Population() != 3 {
		t.Errorf("global population = %d, expected 3", c.Population())
	}
}

func TestLabelIsBinary(t *testing.T) {
	c := testClassifier(10)
	ws := NewWindowSet(8)

	for i := 0; i < 50; i++ {
		danger := float64(i%3) / 2
		v := c.Classify("node", ws, []float64{float64(i), 0, 0, 0}, danger, nil)
		if v.Label != 0 && v.Label != 1 {
			t.Fatalf("label = %d, expected 0 or 1", v.Label)
		}
	}
}

func TestDeterministicReplay(t *testing.T) {
	samples := []struct {
		signals []float64
		danger  float64
	}{
		{[]float64{20, 20, 50, 50}, 0},
		{[]float64{25, 20, 50, 50}, 0.5},
		{[]float64{40, 22, 48, 50}, 1},
		{[]float64{20, 20, 50, 50}, 0},
		{[]float64{90, 21, 50, 49}, 1},
	}

	run := func() []int {
		c := testClassifier(3)
		ws := NewWindowSet(4)
		labels := make([]int, 0, len(samples))
		for _, s := range samples {
			v := c.Classify("node", ws, s.signals, s.danger, nil)
			labels = append(labels, v.Label)
		}
		return labels
	}

	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("replay diverged at sample %d: %v vs %v", i, first, second)
		}
	}
}

func TestHealthyNodeLabelsZero(t *testing.T) {
	c := testClassifier(5)
	ws := NewWindowSet(8)
	stable := []float64{21.5, 19.0, 45.0, 52.0}

	for i := 0; i < 20; i++ {
		v := c.Classify("node", ws, stable, 0, nil)
		// constant signals: stddev 0, safe 1, context -1 per sample
		if v.Label != 0 {
			t.Fatalf("sample %d: label = %d for a healthy node, expected 0", i, v.Label)
		}
		if v.Safe != 1.0 {
			t.Fatalf("sample %d: safe = %v for constant signals, expected 1.0", i, v.Safe)
		}
	}
}

func TestFaultyNodeLabelsOne(t *testing.T) {
	c := testClassifier(5)
	ws := NewWindowSet(8)

	// Persistent full danger with stable signals: context = 1 - 1 = 0,
	// every cell scores >= 0, so the vote is unanimous.
	v := c.Classify("node", ws, []float64{20, 20, 50, 50}, 1.0, nil)
	if v.Label != 1 {
		t.Errorf("label = %d under full danger, expected 1", v.Label)
	}

	// Noisy signals depress safe, keeping the context positive.
	for i := 0; i < 10; i++ {
		v = c.Classify("noisy", ws, []float64{float64(100 * i), 0, 0, 0}, 1.0, nil)
	}
	if v.Label != 1 {
		t.Errorf("label = %d for a noisy node under danger, expected 1", v.Label)
	}
}

func TestSuppliedSafeWins(t *testing.T) {
	c := testClassifier(5)
	ws := NewWindowSet(8)

	// Noisy window would compute a low safe, but the frame carries 1.0.
	ws.Push([]float64{0, 0, 0, 0})
	supplied := 1.0
	v := c.Classify("node", ws, []float64{500, 0, 0, 0}, 0, &supplied)

	if v.Safe != 1.0 {
		t.Errorf("safe = %v, expected the supplied 1.0", v.Safe)
	}
	if v.Context != -1.0 {
		t.Errorf("context = %v, expected 0 - 1.0", v.Context)
	}
}

func TestPurgeNode(t *testing.T) {
	c := testClassifier(5)
	ws := NewWindowSet(8)

	for i := 0; i < 3; i++ {
		c.Classify("gone", ws, []float64{1, 2, 3, 4}, 0, nil)
	}
	c.Classify("stays", ws, []float64{1, 2, 3, 4}, 0, nil)

	c.PurgeNode("gone")
	if c.Population() != 1 {
		t.Errorf("population after purge = %d, expected 1", c.Population())
	}

	// The purged antigen restarts with an empty population.
	v := c.Classify("gone", NewWindowSet(8), []float64{1, 2, 3, 4}, 0, nil)
	if v.Cells != 1 {
		t.Errorf("cells after reappearance = %d, expected 1", v.Cells)
	}
}

func TestPurgeUnknownNode(t *testing.T) {
	c := testClassifier(5)
	c.PurgeNode("never-seen")
	if c.Population() != 0 {
		t.Errorf("population = %d, expected 0", c.Population())
	}
}

func TestDangerFromIndicators(t *testing.T) {
	tests := []struct {
		name       string
		indicators []float64
		expected   float64
	}{
		{"none", nil, 0},
		{"sum below one", []float64{0.25, 0.25, 0.125}, 0.625},
		{"clamped at one", []float64{0.5, 0.5, 0.5, 0.5}, 1},
		{"all eight", []float64{1, 1, 1, 1, 1, 1, 1, 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DangerFromIndicators(tt.indicators); got != tt.expected {
				t.Errorf("DangerFromIndicators(%v) = %v, expected %v", tt.indicators, got, tt.expected)
			}
		})
	}
}

func TestSafeSensitivity(t *testing.T) {
	// With k=2 and max stddev 5, safe must be exp(-10).
	c := New(Config{WindowSize: 8, CellCap: 3, Sensitivity: 2.0})
	ws := NewWindowSet(8)
	ws.Push([]float64{0, 0, 0, 0})

	v := c.Classify("node", ws, []float64{10, 0, 0, 0}, 0, nil)
	want := math.Exp(-10)
	if math.Abs(v.Safe-want) > 1e-12 {
		t.Errorf("safe = %v, expected exp(-10) = %v", v.Safe, want)
	}
}

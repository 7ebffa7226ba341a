package dca

import (
	"math"
	"sync"
)

// Config carries the classifier parameters.
type Config struct {
	// WindowSize is the per-signal window capacity N.
	WindowSize int
	// CellCap is the cell population cap M per antigen.
	CellCap int
	// Sensitivity is the safe-indicator decay k in exp(-k * max stddev).
	Sensitivity float64
}

// cell accumulates the context scores of the samples seen since its
// creation. Cells for one antigen are kept in insertion order; exactly one
// cell is created per sample, so insertion order is total.
type cell struct {
	score float64
}

// Verdict is the classification outcome for one sample.
type Verdict struct {
	// Label is 1 when the majority of the antigen's cells accumulated a
	// non-negative score, else 0.
	Label   int
	Danger  float64
	Safe    float64
	Context float64
	// Cells is the antigen's population size after this sample.
	Cells int
}

// Classifier owns the global cell population, indexed by antigen for
// eviction and purge.
type Classifier struct {
	cfg Config

	mu         sync.Mutex
	population map[string][]cell
	total      int
}

// New returns an empty classifier.
func New(cfg Config) *Classifier {
	return &Classifier{
		cfg:        cfg,
		population: make(map[string][]cell),
	}
}

// DangerFromIndicators derives the danger indicator from the fault
// indicator fields: min(1, sum).
func DangerFromIndicators(indicators []float64) float64 {
	sum := 0.0
	for _, v := range indicators {
		sum += v
	}
	return math.Min(1, sum)
}

// Classify processes one accepted sample for a node: pushes the signals
// into the node's windows, derives the safe indicator from window
// variability (unless the frame supplied one), creates a cell, updates the
// antigen's scores, evicts the oldest cell past the population cap, and
// returns the majority vote.
//
// The caller owns ws; the classifier only guards its own population.
func (c *Classifier) Classify(antigen string, ws *WindowSet, signals []float64, danger float64, safeOverride *float64) Verdict {
	ws.Push(signals)

	safe := math.Exp(-c.cfg.Sensitivity * ws.MaxStdDev())
	if safeOverride != nil {
		safe = *safeOverride
	}
	context := danger - safe

	c.mu.Lock()
	defer c.mu.Unlock()

	cells := append(c.population[antigen], cell{})
	c.total++
	for i := range cells {
		cells[i].score += context
	}
	if len(cells) > c.cfg.CellCap {
		copy(cells, cells[1:])
		cells = cells[:len(cells)-1]
		c.total--
	}
	c.population[antigen] = cells

	votes := 0
	for i := range cells {
		if cells[i].score >= 0 {
			votes++
		}
	}
	label := 0
	if len(cells) > 0 && float64(votes)/float64(len(cells)) > 0.5 {
		label = 1
	}

	return Verdict{
		Label:   label,
		Danger:  danger,
		Safe:    safe,
		Context: context,
		Cells:   len(cells),
	}
}

// PurgeNode drops every cell tagged with the antigen. A node reappearing
// afterward starts with an empty population.
func (c *Classifier) PurgeNode(antigen string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total -= len(c.population[antigen])
	delete(c.population, antigen)
}

// Population returns the total cell count across all antigens.
func (c *Classifier) Population() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

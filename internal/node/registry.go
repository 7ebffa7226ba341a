// Package node tracks per-node ingestion state: the sequence-continuity
// baseline, the classifier signal windows, and the liveness watchdog.
//
// The registry is the single synchronization boundary for the node map.
// Watchdog timers fire on their own goroutines but only emit events into
// an ordered channel; all state mutation happens through registry calls
// made by the processing goroutine.
package node

import (
	"sync"
	"time"

	"github.com/wsn-testbed/clusterhead/internal/dca"
)

// SeqStatus is the outcome of a sequence-continuity check.
type SeqStatus int

const (
	SeqOK SeqStatus = iota
	SeqGap
)

// SeqResult reports one continuity check. A gap is logged, never blocking:
// the baseline advances to Got regardless of outcome.
type SeqResult struct {
	Status   SeqStatus
	Expected uint32
	Got      uint32
}

// Ok reports whether the check passed.
func (r SeqResult) Ok() bool { return r.Status == SeqOK }

// Event is a watchdog expiry notice delivered through Events. Gen guards
// the race between a firing timer and a concurrent reset: the consumer
// hands the event back to Expire, which acts only if the node's generation
// still matches.
type Event struct {
	SNID    string
	Gen     uint64
	ArmedAt time.Time
	Idle    time.Duration
}

// State is the per-node ingestion state. The windows are consumed by the
// classifier on the processing goroutine; the registry itself only guards
// the node map.
type State struct {
	SNID    string
	Windows *dca.WindowSet

	lastSeq uint32
	seqSeen bool
	gen     uint64
	timer   *time.Timer
	armedAt time.Time
}

// Config carries the registry parameters.
type Config struct {
	// Timeout is the watchdog idle timeout T. 0 disables the watchdog.
	Timeout time.Duration
	// SeqBits is the width of the node-local sequence counter; wraparound
	// at this width counts as a legitimate continuation.
	SeqBits int
	// WindowSize is the per-signal window capacity handed to new nodes.
	WindowSize int
}

// Registry owns the map from node id to State.
type Registry struct {
	cfg     Config
	seqMask uint32
	events  chan Event

	mu      sync.Mutex
	nodes   map[string]*State
	stopped bool
}

// NewRegistry returns an empty registry.
func NewRegistry(cfg Config) *Registry {
	bits := cfg.SeqBits
	if bits <= 0 || bits > 32 {
		bits = 16
	}
	return &Registry{
		cfg:     cfg,
		seqMask: uint32(uint64(1)<<uint(bits) - 1),
		events:  make(chan Event, 16),
		nodes:   make(map[string]*State),
	}
}

// Events returns the expiry channel. Consumed by the processing goroutine
// alongside incoming frames.
func (r *Registry) Events() <-chan Event {
	return r.events
}

// CheckSeq validates continuity for one message and advances the node's
// baseline. An unseen node records a baseline and passes.
func (r *Registry) CheckSeq(snid string, seq uint32) SeqResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.upsertLocked(snid)
	if !st.seqSeen {
		st.seqSeen = true
		st.lastSeq = seq
		return SeqResult{Status: SeqOK, Got: seq}
	}

	expected := (st.lastSeq + 1) & r.seqMask
	st.lastSeq = seq
	if seq == expected {
		return SeqResult{Status: SeqOK, Expected: expected, Got: seq}
	}
	return SeqResult{Status: SeqGap, Expected: expected, Got: seq}
}

// Windows returns the node's signal windows, creating the node if needed.
func (r *Registry) Windows(snid string) *dca.WindowSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upsertLocked(snid).Windows
}

// Reset arms the node's watchdog or pushes an armed one out by the full
// timeout. Called once per processed message.
func (r *Registry) Reset(snid string, at time.Time) {
	if r.cfg.Timeout <= 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}

	st := r.upsertLocked(snid)
	st.gen++
	st.armedAt = at
	if st.timer != nil {
		st.timer.Stop()
	}
	// A fresh timer per arming so the closure pins this generation; a
	// plain timer.Reset would let a racing reset retag an in-flight fire.
	gen := st.gen
	st.timer = time.AfterFunc(r.cfg.Timeout, func() {
		r.expire(snid, gen)
	})
}

// Expire validates an expiry event against the node's current generation
// and removes the node's entire state when it still holds. Returns false
// for events made obsolete by a message that arrived after the timer
// fired.
func (r *Registry) Expire(ev Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.nodes[ev.SNID]
	if !ok || st.gen != ev.Gen {
		return false
	}
	if st.timer != nil {
		st.timer.Stop()
	}
	delete(r.nodes, ev.SNID)
	return true
}

// Remove drops a node's state unconditionally.
func (r *Registry) Remove(snid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.nodes[snid]; ok {
		if st.timer != nil {
			st.timer.Stop()
		}
		delete(r.nodes, snid)
	}
}

// Len returns the number of tracked nodes.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.nodes)
}

// Stop cancels every armed timer and stops accepting resets. Events
// already emitted stay in the channel for the consumer to drain. Tolerates
// repeated calls.
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	for _, st := range r.nodes {
		if st.timer != nil {
			st.timer.Stop()
		}
	}
}

func (r *Registry) upsertLocked(snid string) *State {
	st, ok := r.nodes[snid]
	if !ok {
		st = &State{SNID: snid, Windows: dca.NewWindowSet(r.cfg.WindowSize)}
		r.nodes[snid] = st
	}
	return st
}

// expire runs on the timer goroutine. It re-checks the generation under
// the lock, then emits; when the buffer is full the emission is retried
// instead of dropped, so a dead node cannot linger unnoticed.
func (r *Registry) expire(snid string, gen uint64) {
	r.mu.Lock()
	st, ok := r.nodes[snid]
	if !ok || st.gen != gen || r.stopped {
		r.mu.Unlock()
		return
	}
	ev := Event{SNID: snid, Gen: gen, ArmedAt: st.armedAt, Idle: time.Since(st.armedAt)}
	r.mu.Unlock()

	select {
	case r.events <- ev:
	default:
		time.AfterFunc(time.Second, func() { r.expire(snid, gen) })
	}
}

// Package session implements the bounded-retry connection state machine
// shared by the radio link and the data-store sessions.
//
// A session is Disconnected until a connect episode drives it through
// Connecting to Connected. Each episode is bounded by a retry policy; an
// episode that exhausts its budget is unrecoverable and the process shuts
// down both sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrBudgetExhausted means a session could not be established within its
// retry budget. Fatal: the caller performs an orderly shutdown.
var ErrBudgetExhausted = errors.New("session: retry budget exhausted")

// Status is the connection status of a session.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// RetryPolicy bounds one connect episode: at most Budget attempts with a
// fixed Delay slept between consecutive attempts.
type RetryPolicy struct {
	Budget int
	Delay  time.Duration
}

// Config carries the two retry policies of a session: one for the initial
// connect, a separate (typically larger) one for mid-run reconnects.
type Config struct {
	Initial   RetryPolicy
	Reconnect RetryPolicy
}

// Machine tracks the connection status and retry counter of one session.
// The counter resets to 0 whenever the status reaches Connected, clearing
// it for reuse by a later reconnect episode.
type Machine struct {
	name string
	cfg  Config

	mu       sync.Mutex
	status   Status
	attempts int
}

// NewMachine returns a Disconnected machine named for log and error text.
func NewMachine(name string, cfg Config) *Machine {
	return &Machine{name: name, cfg: cfg, status: StatusDisconnected}
}

// Connect runs the initial-connect episode, calling dial up to the initial
// budget. Returns nil once dial succeeds, ErrBudgetExhausted when the
// budget runs out, or the context error when cancelled.
func (m *Machine) Connect(ctx context.Context, dial func() error) error {
	return m.run(ctx, m.cfg.Initial, dial)
}

// Reconnect runs a mid-run reconnect episode under the reconnect policy.
func (m *Machine) Reconnect(ctx context.Context, dial func() error) error {
	return m.run(ctx, m.cfg.Reconnect, dial)
}

func (m *Machine) run(ctx context.Context, policy RetryPolicy, dial func() error) error {
	m.setStatus(StatusConnecting)

	var lastErr error
	for attempt := 1; attempt <= policy.Budget; attempt++ {
		if err := ctx.Err(); err != nil {
			m.setStatus(StatusDisconnected)
			return err
		}

		m.setAttempts(attempt)
		lastErr = dial()
		if lastErr == nil {
			m.markConnected()
			return nil
		}

		if attempt == policy.Budget {
			break
		}
		if err := sleep(ctx, policy.Delay); err != nil {
			m.setStatus(StatusDisconnected)
			return err
		}
	}

	m.setStatus(StatusDisconnected)
	return fmt.Errorf("%w: %s failed after %d attempts: %v", ErrBudgetExhausted, m.name, policy.Budget, lastErr)
}

// MarkDisconnected records a detected failure (read error, dead-connection
// probe, write error). The next episode must go through Reconnect.
func (m *Machine) MarkDisconnected() {
	m.setStatus(StatusDisconnected)
}

// Name returns the session name.
func (m *Machine) Name() string { return m.name }

// Status returns the current connection status.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Attempts returns the retry counter of the episode in progress, 0 once
// connected.
func (m *Machine) Attempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts
}

func (m *Machine) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	m.mu.Unlock()
}

func (m *Machine) setAttempts(n int) {
	m.mu.Lock()
	m.attempts = n
	m.mu.Unlock()
}

func (m *Machine) markConnected() {
	m.mu.Lock()
	m.status = StatusConnected
	m.attempts = 0
	m.mu.Unlock()
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

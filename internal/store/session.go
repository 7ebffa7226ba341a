package store

import (
	"context"
	"errors"
	"time"

	"github.com/wsn-testbed/clusterhead/internal/log"
	"github.com/wsn-testbed/clusterhead/internal/metrics"
	"github.com/wsn-testbed/clusterhead/internal/session"
)

// ErrRecordDropped means an entry failed to persist both before and after
// a successful reconnect. The entry is not requeued.
var ErrRecordDropped = errors.New("store: record dropped after failed retry")

// Session supervises the data store with the bounded-retry state machine.
// A failed insert counts as a detected disconnect: the session reconnects
// under the reconnect policy, retries the failed entry exactly once, and
// drops it if that retry also fails.
type Session struct {
	store   Store
	machine *session.Machine
	logger  log.Logger
}

// NewSession wraps the store in a Disconnected session.
func NewSession(st Store, cfg session.Config) *Session {
	return &Session{
		store:   st,
		machine: session.NewMachine("store", cfg),
		logger:  log.GetLogger().WithField("session", "store"),
	}
}

// Connect runs the initial-connect episode.
func (s *Session) Connect(ctx context.Context) error {
	s.logger.Info("connecting to data store")
	if err := s.machine.Connect(ctx, s.dial(ctx)); err != nil {
		return err
	}
	s.logger.Info("connected to data store")
	return nil
}

// Insert persists one entry. Returns ErrRecordDropped when the entry was
// lost but the session recovered; ErrBudgetExhausted (or the context
// error) when the session could not be re-established.
func (s *Session) Insert(ctx context.Context, e *Entry) error {
	start := time.Now()
	rowID, err := s.store.Insert(ctx, e)
	if err == nil {
		metrics.InsertDurationSeconds.Observe(time.Since(start).Seconds())
		s.logger.Debugf("added new data with row_id=%d", rowID)
		return nil
	}
	s.logger.WithError(err).Warn("problem writing to data store")

	if err := s.reconnect(ctx); err != nil {
		return err
	}

	// One immediate retry for the entry that hit the dead connection.
	if _, err := s.store.Insert(ctx, e); err != nil {
		s.logger.WithError(err).WithField("snid", e.Record.SNID).Warn("retry failed, dropping record")
		return ErrRecordDropped
	}
	return nil
}

// Close closes the store, tolerating an already closed one.
func (s *Session) Close() error {
	s.machine.MarkDisconnected()
	return s.store.Close()
}

// Status exposes the connection status for logging and CLI output.
func (s *Session) Status() session.Status {
	return s.machine.Status()
}

func (s *Session) dial(ctx context.Context) func() error {
	return func() error {
		if err := s.store.Connect(ctx); err != nil {
			s.logger.WithError(err).Warnf("could not connect to data store (try %d)", s.machine.Attempts())
			return err
		}
		return nil
	}
}

func (s *Session) reconnect(ctx context.Context) error {
	s.logger.Warn("lost connection to data store")
	s.machine.MarkDisconnected()
	if err := s.store.Close(); err != nil {
		s.logger.WithError(err).Debug("closing dead store connection")
	}
	metrics.SessionReconnectsTotal.WithLabelValues("store").Inc()

	if err := s.machine.Reconnect(ctx, s.dial(ctx)); err != nil {
		return err
	}
	s.logger.Info("reconnected to data store")
	return nil
}

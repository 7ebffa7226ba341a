package link

import (
	"context"

	"github.com/wsn-testbed/clusterhead/internal/frame"
	"github.com/wsn-testbed/clusterhead/internal/log"
	"github.com/wsn-testbed/clusterhead/internal/metrics"
	"github.com/wsn-testbed/clusterhead/internal/session"
)

// Session supervises the radio transport with the bounded-retry state
// machine: read failures and a dead-port probe trigger the reconnect
// procedure; an exhausted budget is fatal for the process.
type Session struct {
	transport Transport
	machine   *session.Machine
	logger    log.Logger
}

// NewSession wraps the transport in a Disconnected session.
func NewSession(t Transport, cfg session.Config) *Session {
	return &Session{
		transport: t,
		machine:   session.NewMachine("link", cfg),
		logger:    log.GetLogger().WithField("session", "link"),
	}
}

// Connect runs the initial-connect episode.
func (s *Session) Connect(ctx context.Context) error {
	s.logger.Info("connecting to radio transport")
	if err := s.machine.Connect(ctx, s.dial); err != nil {
		return err
	}
	s.logger.Info("connected to radio transport")
	return nil
}

// Read returns the next frame. A read failure marks the session
// Disconnected and runs the reconnect procedure inline; the call then
// reports no frame so the caller simply polls again. Only a cancelled
// context or an exhausted reconnect budget surface as errors.
func (s *Session) Read(ctx context.Context) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.transport.ReadFrame()
	if err == nil {
		// A nil read with a closed port means the transport died without
		// surfacing a read error.
		if f != nil || s.transport.IsOpen() {
			return f, nil
		}
	} else {
		s.logger.WithError(err).Warn("problem receiving a message")
	}

	if err := s.reconnect(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

// Close closes the transport, tolerating an already closed one.
func (s *Session) Close() error {
	s.machine.MarkDisconnected()
	return s.transport.Close()
}

// Status exposes the connection status for logging and CLI output.
func (s *Session) Status() session.Status {
	return s.machine.Status()
}

func (s *Session) dial() error {
	if err := s.transport.Open(); err != nil {
		s.logger.WithError(err).Warnf("could not connect to radio transport (try %d)", s.machine.Attempts())
		return err
	}
	if !s.transport.IsOpen() {
		s.logger.Warnf("radio transport not open after connect (try %d)", s.machine.Attempts())
		return ErrClosed
	}
	return nil
}

func (s *Session) reconnect(ctx context.Context) error {
	s.logger.Warn("lost connection to radio transport")
	s.machine.MarkDisconnected()
	if err := s.transport.Close(); err != nil {
		s.logger.WithError(err).Debug("closing dead transport")
	}
	metrics.SessionReconnectsTotal.WithLabelValues("link").Inc()

	if err := s.machine.Reconnect(ctx, s.dial); err != nil {
		return err
	}
	s.logger.Info("reconnected to radio transport")
	return nil
}

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wsn-testbed/clusterhead/internal/frame"
	"github.com/wsn-testbed/clusterhead/internal/session"
)

// fakeStore scripts connect and insert outcomes.
type fakeStore struct {
	connectErrs []error // consumed per Connect call; empty = success
	connects    int
	connected   bool
	insertErrs  []error // consumed per Insert call; empty = success
	inserted    []*Entry
	closes      int
}

func (f *fakeStore) Connect(ctx context.Context) error {
	f.connects++
	if len(f.connectErrs) > 0 {
		err := f.connectErrs[0]
		f.connectErrs = f.connectErrs[1:]
		if err != nil {
			return err
		}
	}
	f.connected = true
	return nil
}

func (f *fakeStore) IsConnected(ctx context.Context) bool { return f.connected }

func (f *fakeStore) Insert(ctx context.Context, e *Entry) (int64, error) {
	if len(f.insertErrs) > 0 {
		err := f.insertErrs[0]
		f.insertErrs = f.insertErrs[1:]
		if err != nil {
			f.connected = false
			return 0, err
		}
	}
	f.inserted = append(f.inserted, e)
	return int64(len(f.inserted)), nil
}

func (f *fakeStore) Close() error {
	f.connected = false
	f.closes++
	return nil
}

func testEntry() *Entry {
	return &Entry{Record: &frame.Record{SNID: "41AA3F01", Seq: 7, ReceivedAt: time.Now().UTC()}}
}

func testSessionConfig(budget int) session.Config {
	return session.Config{
		Initial:   session.RetryPolicy{Budget: budget, Delay: 0},
		Reconnect: session.RetryPolicy{Budget: budget, Delay: 0},
	}
}

func TestSessionConnectExhaustsBudget(t *testing.T) {
	fs := &fakeStore{connectErrs: []error{
		errors.New("refused"), errors.New("refused"),
	}}
	s := NewSession(fs, testSessionConfig(2))

	err := s.Connect(context.Background())
	require.ErrorIs(t, err, session.ErrBudgetExhausted)
	assert.Equal(t, 2, fs.connects)
}

func TestSessionInsertOk(t *testing.T) {
	fs := &fakeStore{}
	s := NewSession(fs, testSessionConfig(1))
	require.NoError(t, s.Connect(context.Background()))

	require.NoError(t, s.Insert(context.Background(), testEntry()))
	assert.Len(t, fs.inserted, 1)
}

func TestSessionInsertReconnectAndRetry(t *testing.T) {
	fs := &fakeStore{insertErrs: []error{errors.New("connection reset")}}
	s := NewSession(fs, testSessionConfig(3))
	require.NoError(t, s.Connect(context.Background()))

	e := testEntry()
	require.NoError(t, s.Insert(context.Background(), e))

	// Reconnected once, then the retry persisted the same entry.
	assert.Equal(t, 2, fs.connects)
	require.Len(t, fs.inserted, 1)
	assert.Same(t, e, fs.inserted[0])
	assert.Equal(t, session.StatusConnected, s.Status())
}

func TestSessionInsertDropsAfterSecondFailure(t *testing.T) {
	fs := &fakeStore{insertErrs: []error{
		errors.New("connection reset"), errors.New("still broken"),
	}}
	s := NewSession(fs, testSessionConfig(3))
	require.NoError(t, s.Connect(context.Background()))

	err := s.Insert(context.Background(), testEntry())
	require.ErrorIs(t, err, ErrRecordDropped)
	assert.Empty(t, fs.inserted)
	// The session itself recovered; the next entry persists.
	require.NoError(t, s.Insert(context.Background(), testEntry()))
	assert.Len(t, fs.inserted, 1)
}

func TestSessionInsertReconnectBudgetExhausted(t *testing.T) {
	fs := &fakeStore{
		insertErrs:  []error{errors.New("connection reset")},
		connectErrs: []error{nil, errors.New("refused"), errors.New("refused")},
	}
	s := NewSession(fs, testSessionConfig(2))
	require.NoError(t, s.Connect(context.Background()))

	err := s.Insert(context.Background(), testEntry())
	require.ErrorIs(t, err, session.ErrBudgetExhausted)
}

func TestSessionCloseTolerated(t *testing.T) {
	fs := &fakeStore{}
	s := NewSession(fs, testSessionConfig(1))
	require.NoError(t, s.Connect(context.Background()))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, session.StatusDisconnected, s.Status())
}

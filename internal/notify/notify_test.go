package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestNewEvent(t *testing.T) {
	armed := time.Date(2025, 6, 14, 10, 30, 0, 0, time.UTC)
	ev := NewEvent("4155C81D", armed, 2*time.Hour)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "4155C81D", ev.SNID)
	assert.Equal(t, armed, ev.ArmedAt)
	assert.Equal(t, 2*time.Hour, ev.Idle)

	// Ids are unique per event.
	assert.NotEqual(t, ev.ID, NewEvent("4155C81D", armed, 2*time.Hour).ID)
}

func TestLogNotifier(t *testing.T) {
	ev := NewEvent("4155C81D", time.Now().UTC(), time.Hour)
	assert.NoError(t, NewLogNotifier().Notify(context.Background(), ev))
}

func TestSMTPNotifierBuildsMessage(t *testing.T) {
	var sent *gomail.Message
	n := NewSMTPNotifier(SMTPConfig{
		Host: "mail.local",
		Port: 587,
		From: "gateway@wsn.local",
		To:   []string{"operator@wsn.local"},
	})
	n.send = func(m *gomail.Message) error {
		sent = m
		return nil
	}

	ev := NewEvent("4155C81D", time.Now().UTC(), 90*time.Minute)
	require.NoError(t, n.Notify(context.Background(), ev))
	require.NotNil(t, sent)

	assert.Equal(t, []string{"gateway@wsn.local"}, sent.GetHeader("From"))
	assert.Equal(t, []string{"operator@wsn.local"}, sent.GetHeader("To"))
	require.Len(t, sent.GetHeader("Subject"), 1)
	assert.Contains(t, sent.GetHeader("Subject")[0], "4155C81D")
}

// Package notify delivers liveness-lost notifications to the operator.
// Notifier failures are logged by the caller, never escalated.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event describes one liveness loss.
type Event struct {
	// ID identifies the event in logs and mail subjects.
	ID string
	// SNID is the silent node.
	SNID string
	// ArmedAt is when the node's watchdog was last armed.
	ArmedAt time.Time
	// Idle is the elapsed time without a message.
	Idle time.Duration
}

// NewEvent builds an event with a fresh id.
func NewEvent(snid string, armedAt time.Time, idle time.Duration) Event {
	return Event{
		ID:      uuid.NewString(),
		SNID:    snid,
		ArmedAt: armedAt,
		Idle:    idle,
	}
}

// Notifier is the outbound notification collaborator.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

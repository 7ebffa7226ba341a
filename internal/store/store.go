// Package store owns the durable side of the gateway: the PostgreSQL data
// store and the bounded-retry session supervising it.
package store

import (
	"context"

	"github.com/wsn-testbed/clusterhead/internal/frame"
)

// Entry is one decoded record ready for persistence, together with the
// classifier verdict and the ingestion note.
type Entry struct {
	Record *frame.Record
	// Label is the computed fault label, nil for profiles that do not
	// engage the classifier.
	Label *int
	// Note carries free-text ingestion remarks (sequence gaps).
	Note string
}

// Store is the data-store collaborator. Insert returns the row id of the
// last inserted row.
type Store interface {
	Connect(ctx context.Context) error
	IsConnected(ctx context.Context) bool
	Insert(ctx context.Context, e *Entry) (int64, error)
	Close() error
}

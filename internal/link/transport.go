// Package link owns the radio side of the gateway: the XBee serial
// transport and the bounded-retry session supervising it.
package link

import (
	"github.com/wsn-testbed/clusterhead/internal/frame"
)

// Transport is the radio transport collaborator. ReadFrame returning
// (nil, nil) means no frame is currently available, not an error.
type Transport interface {
	Open() error
	IsOpen() bool
	ReadFrame() (*frame.Frame, error)
	Close() error
}

// Package frame parses raw radio frames into decoded telemetry records.
//
// A wire profile is selected once at startup, not per frame. Profiles
// register themselves in an init function and are constructed through New,
// so the ingestion path holds a single Decoder for the whole run.
package frame

import (
	"fmt"
	"time"
)

// Frame is one already-framed message as delivered by the radio transport.
// Ephemeral: created per read, consumed immediately by the decoder.
type Frame struct {
	Payload    []byte
	SrcAddr    uint64
	ReceivedAt time.Time
	Broadcast  bool
}

// SNID renders the low 4 bytes of the transport source address as the
// 8-hex-digit sensor node identifier.
func (f *Frame) SNID() string {
	return fmt.Sprintf("%08X", uint32(f.SrcAddr))
}

// Len returns the payload length in bytes.
func (f *Frame) Len() int {
	return len(f.Payload)
}

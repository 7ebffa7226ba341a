package link

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/wsn-testbed/clusterhead/internal/frame"
)

// XBee API mode (AP=1) framing: 0x7E delimiter, 2B big-endian length,
// frame data, 1B checksum (0xFF minus the low byte of the data sum).
const (
	apiDelimiter = 0x7E
	apiOverhead  = 4 // delimiter + length + checksum

	// frameTypeRX is the ZigBee Receive Packet indicator. Everything else
	// (transmit status, modem status, remote AT responses) is skipped.
	frameTypeRX = 0x90

	// rxHeaderLen covers frame type, 8B source address, 2B network
	// address and 1B receive options.
	rxHeaderLen = 12

	// rxOptBroadcast is set in the receive options of broadcast frames.
	rxOptBroadcast = 0x02
)

// ErrClosed is returned by ReadFrame on a transport that is not open.
var ErrClosed = errors.New("link: transport closed")

// XBeeConfig configures the serial connection to the XBee module.
type XBeeConfig struct {
	Device string
	Baud   int
	// ReadTimeout bounds one port read; an expired read yields no frame.
	ReadTimeout time.Duration
}

// XBee reads ZigBee receive packets from an XBee module in API mode over a
// serial port.
type XBee struct {
	cfg XBeeConfig

	mu   sync.Mutex
	port serial.Port
	buf  []byte
}

// NewXBee returns an unopened transport for the configured serial device.
func NewXBee(cfg XBeeConfig) *XBee {
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = time.Second
	}
	return &XBee{cfg: cfg}
}

// Open opens the serial port. Safe to call again after a failure or Close.
func (x *XBee) Open() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.port != nil {
		return nil
	}

	port, err := serial.Open(x.cfg.Device, &serial.Mode{BaudRate: x.cfg.Baud})
	if err != nil {
		return fmt.Errorf("link: open %s: %w", x.cfg.Device, err)
	}
	if err := port.SetReadTimeout(x.cfg.ReadTimeout); err != nil {
		port.Close()
		return fmt.Errorf("link: set read timeout: %w", err)
	}
	x.port = port
	x.buf = x.buf[:0]
	return nil
}

// IsOpen reports whether the serial port is open.
func (x *XBee) IsOpen() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.port != nil
}

// Close closes the serial port. Tolerates being already closed.
func (x *XBee) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.port == nil {
		return nil
	}
	err := x.port.Close()
	x.port = nil
	if err != nil {
		return fmt.Errorf("link: close: %w", err)
	}
	return nil
}

// ReadFrame returns the next receive packet, or (nil, nil) when none became
// available within the read timeout. Non-RX API frames are skipped.
func (x *XBee) ReadFrame() (*frame.Frame, error) {
	x.mu.Lock()
	port := x.port
	x.mu.Unlock()
	if port == nil {
		return nil, ErrClosed
	}

	// Drain frames already buffered before touching the port again.
	if f := x.nextBuffered(); f != nil {
		return f, nil
	}

	chunk := make([]byte, 256)
	n, err := port.Read(chunk)
	if err != nil {
		return nil, fmt.Errorf("link: read: %w", err)
	}

	x.mu.Lock()
	x.buf = append(x.buf, chunk[:n]...)
	x.mu.Unlock()

	return x.nextBuffered(), nil
}

// nextBuffered extracts complete API frames from the parse buffer until an
// RX packet turns up or the buffer runs dry.
func (x *XBee) nextBuffered() *frame.Frame {
	x.mu.Lock()
	defer x.mu.Unlock()
	for {
		data, rest, ok := extractAPIFrame(x.buf)
		if !ok {
			x.buf = rest
			return nil
		}
		x.buf = rest
		if f := decodeRXPacket(data); f != nil {
			return f
		}
	}
}

// extractAPIFrame scans raw for one complete, checksum-valid API frame.
// It returns the frame data (without delimiter, length and checksum), the
// unconsumed remainder, and whether a frame was extracted. Leading garbage
// and frames with a bad checksum are discarded.
func extractAPIFrame(raw []byte) (data, rest []byte, ok bool) {
	for {
		start := 0
		for start < len(raw) && raw[start] != apiDelimiter {
			start++
		}
		raw = raw[start:]

		if len(raw) < 3 {
			return nil, raw, false
		}
		length := int(binary.BigEndian.Uint16(raw[1:3]))
		total := length + apiOverhead
		if len(raw) < total {
			return nil, raw, false
		}

		data = raw[3 : 3+length]
		sum := raw[3+length]
		for _, b := range data {
			sum += b
		}
		if sum == 0xFF {
			return data, raw[total:], true
		}
		// Bad checksum: drop this delimiter and rescan from the next byte.
		raw = raw[1:]
	}
}

// decodeRXPacket turns the data of a 0x90 API frame into a transport frame.
// Returns nil for other frame types and for truncated RX packets.
func decodeRXPacket(data []byte) *frame.Frame {
	if len(data) < rxHeaderLen || data[0] != frameTypeRX {
		return nil
	}
	return &frame.Frame{
		Payload:    append([]byte(nil), data[rxHeaderLen:]...),
		SrcAddr:    binary.BigEndian.Uint64(data[1:9]),
		ReceivedAt: time.Now().UTC(),
		Broadcast:  data[11]&rxOptBroadcast != 0,
	}
}

package frame

import (
	"encoding/binary"
	"fmt"
	"math"
)

// legacy-a layout: 4B node id, 4B big-endian seq, 1B type,
// 4B IEEE-754 float, 1B status register.
const legacyALen = 14

func init() {
	Register("legacy-a", 32, func(_ map[string]interface{}) (Decoder, error) {
		return legacyADecoder{}, nil
	})
}

type legacyADecoder struct{}

func (legacyADecoder) Name() string { return "legacy-a" }

func (legacyADecoder) Decode(f *Frame) (*Record, error) {
	p := f.Payload
	if len(p) != legacyALen {
		return nil, fmt.Errorf("%w: legacy-a expects %d bytes, got %d", ErrMalformed, legacyALen, len(p))
	}

	// The node id in the payload wins over the transport address; early
	// firmware repeated it in every frame.
	sreg := p[13]
	return &Record{
		SNID:       fmt.Sprintf("%08X", binary.BigEndian.Uint32(p[0:4])),
		Seq:        binary.BigEndian.Uint32(p[4:8]),
		ReceivedAt: f.ReceivedAt,
		Measurements: []Measurement{{
			Type:  p[8],
			Value: float64(math.Float32frombits(binary.LittleEndian.Uint32(p[9:13]))),
		}},
		StatusReg: &sreg,
	}, nil
}

package frame

import (
	"encoding/binary"
	"fmt"

	"github.com/wsn-testbed/clusterhead/internal/fixedpoint"
)

// aggregated layout: 2B seq, 4x2B fixed16 use-case fields, 1B battery
// state, 1B fixed8 danger, 1B fixed8 safe, all little-endian. Danger and
// safe are computed on the sensing node.
const aggregatedLen = 13

func init() {
	Register("aggregated", 16, func(_ map[string]interface{}) (Decoder, error) {
		return aggregatedDecoder{}, nil
	})
}

type aggregatedDecoder struct{}

func (aggregatedDecoder) Name() string { return "aggregated" }

func (aggregatedDecoder) Decode(f *Frame) (*Record, error) {
	p := f.Payload
	if len(p) != aggregatedLen {
		return nil, fmt.Errorf("%w: aggregated expects %d bytes, got %d", ErrMalformed, aggregatedLen, len(p))
	}

	battery := p[10]
	danger := fixedpoint.Decode8(p[11], tupleFracBits)
	safe := fixedpoint.Decode8(p[12], tupleFracBits)
	return &Record{
		SNID:       f.SNID(),
		Seq:        uint32(binary.LittleEndian.Uint16(p[0:2])),
		ReceivedAt: f.ReceivedAt,
		Tuple:      decodeTuple(p[2:10]),
		Battery:    &battery,
		Danger:     &danger,
		Safe:       &safe,
	}, nil
}

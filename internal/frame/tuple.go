package frame

import (
	"encoding/binary"
	"fmt"

	"github.com/wsn-testbed/clusterhead/internal/fixedpoint"
)

// Tuple-family layouts, all little-endian with a 2B sequence counter:
//
//	tuple-a: 4x2B fixed16 use-case fields, 1B status register
//	tuple-b: 4x2B fixed16 use-case fields, 8x2B fixed16 fault indicators
//	tuple-c: 4x2B fixed16 use-case fields, 8x1B fixed8 fault indicators
const (
	tupleALen = 11
	tupleBLen = 26
	tupleCLen = 18

	tupleFracBits  = 6
	indicatorCount = 8
)

func init() {
	Register("tuple-a", 16, func(_ map[string]interface{}) (Decoder, error) {
		return tupleDecoder{name: "tuple-a", length: tupleALen}, nil
	})
	Register("tuple-b", 16, func(_ map[string]interface{}) (Decoder, error) {
		return tupleDecoder{name: "tuple-b", length: tupleBLen}, nil
	})
	Register("tuple-c", 16, func(_ map[string]interface{}) (Decoder, error) {
		return tupleDecoder{name: "tuple-c", length: tupleCLen}, nil
	})
}

type tupleDecoder struct {
	name   string
	length int
}

func (d tupleDecoder) Name() string { return d.name }

func (d tupleDecoder) Decode(f *Frame) (*Record, error) {
	p := f.Payload
	if len(p) != d.length {
		return nil, fmt.Errorf("%w: %s expects %d bytes, got %d", ErrMalformed, d.name, d.length, len(p))
	}

	rec := &Record{
		SNID:       f.SNID(),
		Seq:        uint32(binary.LittleEndian.Uint16(p[0:2])),
		ReceivedAt: f.ReceivedAt,
		Tuple:      decodeTuple(p[2:10]),
	}

	switch d.name {
	case "tuple-a":
		sreg := p[10]
		rec.StatusReg = &sreg
	case "tuple-b":
		rec.Indicators = make([]float64, indicatorCount)
		for i := 0; i < indicatorCount; i++ {
			raw := binary.LittleEndian.Uint16(p[10+2*i : 12+2*i])
			rec.Indicators[i] = fixedpoint.Decode16(raw, tupleFracBits)
		}
	case "tuple-c":
		rec.Indicators = make([]float64, indicatorCount)
		for i := 0; i < indicatorCount; i++ {
			rec.Indicators[i] = fixedpoint.Decode8(p[10+i], tupleFracBits)
		}
	}
	return rec, nil
}

func decodeTuple(b []byte) *Tuple {
	return &Tuple{
		TempAir:   fixedpoint.Decode16(binary.LittleEndian.Uint16(b[0:2]), tupleFracBits),
		TempSoil:  fixedpoint.Decode16(binary.LittleEndian.Uint16(b[2:4]), tupleFracBits),
		HumidAir:  fixedpoint.Decode16(binary.LittleEndian.Uint16(b[4:6]), tupleFracBits),
		HumidSoil: fixedpoint.Decode16(binary.LittleEndian.Uint16(b[6:8]), tupleFracBits),
	}
}

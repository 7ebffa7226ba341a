package frame

import (
	"encoding/binary"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/wsn-testbed/clusterhead/internal/fixedpoint"
)

// packed layout: 2B seq, 1B count, count x (1B type, 2B value), all
// little-endian. Value interpretation is selected per pair by the
// measurement-type table; codes absent from the table decode as unsigned
// integers.
const (
	packedHeaderLen = 3
	packedPairLen   = 3
)

type packedOptions struct {
	// TypesFile points at a YAML table merged over the built-in one.
	TypesFile string `mapstructure:"types_file"`
	// FloatTypes lists extra codes decoded as fixed-point with FracBits.
	FloatTypes []uint8 `mapstructure:"float_types"`
	FracBits   uint    `mapstructure:"frac_bits"`
}

func init() {
	Register("packed", 16, newPackedDecoder)
}

func newPackedDecoder(opts map[string]interface{}) (Decoder, error) {
	o := packedOptions{FracBits: tupleFracBits}
	if err := mapstructure.Decode(opts, &o); err != nil {
		return nil, fmt.Errorf("packed profile options: %w", err)
	}

	table, err := LoadTypes(o.TypesFile)
	if err != nil {
		return nil, err
	}
	for _, code := range o.FloatTypes {
		table[code] = TypeInfo{Name: table.NameOf(code), Kind: KindFixed, FracBits: o.FracBits}
	}
	return &packedDecoder{types: table}, nil
}

type packedDecoder struct {
	types TypeTable
}

func (d *packedDecoder) Name() string { return "packed" }

func (d *packedDecoder) Decode(f *Frame) (*Record, error) {
	p := f.Payload
	if len(p) < packedHeaderLen {
		return nil, fmt.Errorf("%w: packed expects at least %d bytes, got %d", ErrMalformed, packedHeaderLen, len(p))
	}
	count := int(p[2])
	if want := packedHeaderLen + count*packedPairLen; len(p) != want {
		return nil, fmt.Errorf("%w: packed with count %d expects %d bytes, got %d", ErrMalformed, count, want, len(p))
	}

	rec := &Record{
		SNID:       f.SNID(),
		Seq:        uint32(binary.LittleEndian.Uint16(p[0:2])),
		ReceivedAt: f.ReceivedAt,
	}
	if count == 0 {
		return rec, nil
	}

	rec.Measurements = make([]Measurement, 0, count)
	for i := 0; i < count; i++ {
		off := packedHeaderLen + i*packedPairLen
		code := p[off]
		raw := binary.LittleEndian.Uint16(p[off+1 : off+3])

		value := float64(raw)
		if info, ok := d.types[code]; ok && info.Kind == KindFixed {
			value = fixedpoint.Decode16(raw, info.FracBits)
		}
		rec.Measurements = append(rec.Measurements, Measurement{Type: code, Value: value})
	}
	return rec, nil
}

// Package fixedpoint converts the sign-magnitude fixed-point numbers used
// on the sensor-node wire formats to and from float64.
//
// The encoding is NOT two's complement: the most significant bit carries the
// sign and the remaining bits carry an unsigned magnitude scaled by
// 2^fracBits. Every bit pattern decodes to a finite value, so decoding never
// fails.
package fixedpoint

import "math"

const (
	signBit8  = 0x80
	signBit16 = 0x8000

	magMax8  = 0x7F
	magMax16 = 0x7FFF
)

// Decode8 converts an 8-bit sign-magnitude fixed-point value with fracBits
// fractional bits to float64.
func Decode8(raw uint8, fracBits uint) float64 {
	v := float64(raw&magMax8) / float64(uint64(1)<<fracBits)
	if raw&signBit8 != 0 {
		return -v
	}
	return v
}

// Decode16 converts a 16-bit sign-magnitude fixed-point value with fracBits
// fractional bits to float64.
func Decode16(raw uint16, fracBits uint) float64 {
	v := float64(raw&magMax16) / float64(uint64(1)<<fracBits)
	if raw&signBit16 != 0 {
		return -v
	}
	return v
}

// Encode8 converts a float64 to the 8-bit sign-magnitude representation with
// fracBits fractional bits. The magnitude saturates at the 7-bit maximum.
func Encode8(value float64, fracBits uint) uint8 {
	mag, neg := magnitude(value, fracBits, magMax8)
	raw := uint8(mag)
	if neg {
		raw |= signBit8
	}
	return raw
}

// Encode16 converts a float64 to the 16-bit sign-magnitude representation
// with fracBits fractional bits. The magnitude saturates at the 15-bit
// maximum.
func Encode16(value float64, fracBits uint) uint16 {
	mag, neg := magnitude(value, fracBits, magMax16)
	raw := uint16(mag)
	if neg {
		raw |= signBit16
	}
	return raw
}

func magnitude(value float64, fracBits uint, max uint64) (uint64, bool) {
	neg := math.Signbit(value)
	mag := math.Round(math.Abs(value) * float64(uint64(1)<<fracBits))
	if mag > float64(max) {
		return max, neg
	}
	return uint64(mag), neg
}

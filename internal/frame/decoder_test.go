package frame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUnknownProfile(t *testing.T) {
	d, err := New("mystery", nil)
	assert.Nil(t, d)
	assert.True(t, errors.Is(err, ErrUnknownProfile))
}

func TestProfilesRegistered(t *testing.T) {
	names := Profiles()
	assert.Equal(t, []string{"aggregated", "legacy-a", "packed", "tuple-a", "tuple-b", "tuple-c"}, names)
}

func TestSeqBits(t *testing.T) {
	bits, err := SeqBits("legacy-a")
	assert.NoError(t, err)
	assert.Equal(t, 32, bits)

	for _, name := range []string{"tuple-a", "tuple-b", "tuple-c", "packed", "aggregated"} {
		bits, err := SeqBits(name)
		assert.NoError(t, err)
		assert.Equal(t, 16, bits, name)
	}

	_, err = SeqBits("mystery")
	assert.True(t, errors.Is(err, ErrUnknownProfile))
}

func TestDecoderNames(t *testing.T) {
	for _, name := range Profiles() {
		d, err := New(name, nil)
		assert.NoError(t, err, name)
		assert.Equal(t, name, d.Name())
	}
}

func TestFrameSNID(t *testing.T) {
	f := &Frame{SrcAddr: 0x0013A200DEADBEEF}
	assert.Equal(t, "DEADBEEF", f.SNID())

	low := &Frame{SrcAddr: 0x00000001}
	assert.Equal(t, "00000001", low.SNID())
}

package beastsplitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayloadLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		typ    MessageType
		want   int
		wantOK bool
	}{
		{"mode ac", ModeAC, 2, true},
		{"mode s short", ModeSShort, 7, true},
		{"mode s long", ModeSLong, 14, true},
		{"status", StatusFrame, 14, true},
		{"unknown type", MessageType(0x99), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := PayloadLength(tt.typ)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMessageTypeString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "MODE_S_LONG", ModeSLong.String())
	assert.Contains(t, MessageType(0xEE).String(), "INVALID")
}

// TestNewMessageTimestampAssembly covers P7: the emitted timestamp equals
// m0*2^40 + m1*2^32 + ... + m5, big-endian over the first six metadata
// bytes, with the seventh metadata byte carried through as signal.
func TestNewMessageTimestampAssembly(t *testing.T) {
	t.Parallel()

	var metadata [metadataLength]byte
	copy(metadata[:], []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0xFF})

	msg := newMessage(ModeSShort, metadata, []byte{1, 2, 3, 4, 5, 6, 7}, TimestampTwelveMeg)

	assert.Equal(t, uint64(0x000102030405), msg.Timestamp)
	assert.Equal(t, uint8(0xFF), msg.Signal)
	assert.Equal(t, ModeSShort, msg.Type)
	assert.Equal(t, TimestampTwelveMeg, msg.TimestampKind)
}

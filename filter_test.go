package beastsplitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func df17Frame(goodCRC bool) []byte {
	// DF17 (10001 000...) extended squitter, 11 bytes of payload plus a
	// 3-byte parity field the CRC residual check consumes.
	data := make([]byte, 14)
	data[0] = 17 << 3 // DF=17, CA=0
	for i := 1; i < 11; i++ {
		data[i] = byte(i * 7)
	}
	residual := modeSCRC(data[:11])
	data[11] = byte(residual >> 16)
	data[12] = byte(residual >> 8)
	data[13] = byte(residual)
	if !goodCRC {
		data[13] ^= 0xFF
	}
	return data
}

func TestCRCBadDF17(t *testing.T) {
	t.Parallel()
	assert.False(t, crcBad(17, df17Frame(true)))
	assert.True(t, crcBad(17, df17Frame(false)))
}

func TestCRCBadIgnoresUnverifiableDF(t *testing.T) {
	t.Parallel()
	// DF4 has no CRC/address-parity scheme this filter understands; it is
	// never flagged bad regardless of its trailing bytes.
	assert.False(t, crcBad(4, []byte{4 << 3, 0, 0, 0, 0, 0, 0}))
}

func TestFilterMatchesModeAC(t *testing.T) {
	t.Parallel()

	f := Filter{ReceiveModeAC: true}
	assert.True(t, f.Matches(Message{Type: ModeAC}))

	f = Filter{ReceiveModeAC: false}
	assert.False(t, f.Matches(Message{Type: ModeAC}))
}

func TestFilterMatchesStatus(t *testing.T) {
	t.Parallel()

	f := Filter{ReceiveStatus: true}
	assert.True(t, f.Matches(Message{Type: StatusFrame}))
}

func TestFilterMatchesModeSByDF(t *testing.T) {
	t.Parallel()

	var f Filter
	f.ReceiveDF[17] = true
	f.ReceiveBadCRC = false

	good := Message{Type: ModeSLong, Payload: df17Frame(true)}
	bad := Message{Type: ModeSLong, Payload: df17Frame(false)}

	assert.True(t, f.Matches(good))
	assert.False(t, f.Matches(bad), "bad CRC rejected when ReceiveBadCRC is false")

	f.ReceiveBadCRC = true
	assert.True(t, f.Matches(bad), "bad CRC accepted once ReceiveBadCRC is true")
}

func TestFilterMatchesRejectsUnwantedDF(t *testing.T) {
	t.Parallel()

	var f Filter
	f.ReceiveDF[11] = true

	msg := Message{Type: ModeSLong, Payload: df17Frame(true)}
	assert.False(t, f.Matches(msg), "DF17 frame rejected when only DF11 is wanted")
}

// TestCombineIsUnion exercises P8: the union accepts a message iff at
// least one of the two inputs does.
func TestCombineIsUnion(t *testing.T) {
	t.Parallel()

	var a, b Filter
	a.ReceiveDF[11] = true
	b.ReceiveDF[17] = true
	b.ReceiveModeAC = true

	combined := Combine(a, b)
	assert.True(t, combined.ReceiveDF[11])
	assert.True(t, combined.ReceiveDF[17])
	assert.True(t, combined.ReceiveModeAC)
	assert.False(t, combined.ReceiveDF[18])
}

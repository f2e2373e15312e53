// Copyright 2026 The ADSBexchange Project Contributors.
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package beastsplitter

import "fmt"

// MessageType classifies a Beast/Radarcape frame by its single type byte.
type MessageType byte

// Recognized frame types. Values match the wire type byte exactly, so a
// MessageType can be cast straight from the byte that follows the framing
// escape without a translation table.
const (
	ModeAC      MessageType = 0x31
	ModeSShort  MessageType = 0x32
	ModeSLong   MessageType = 0x33
	StatusFrame MessageType = 0x34

	// Invalid marks a type byte outside the recognized set. The frame
	// parser never constructs a Message with this type, and PayloadLength
	// reports an unrecognized byte with ok=false rather than returning it.
	Invalid MessageType = 0x00
)

func (t MessageType) String() string {
	switch t {
	case ModeAC:
		return "MODE_AC"
	case ModeSShort:
		return "MODE_S_SHORT"
	case ModeSLong:
		return "MODE_S_LONG"
	case StatusFrame:
		return "STATUS"
	default:
		return fmt.Sprintf("INVALID(0x%02x)", byte(t))
	}
}

// PayloadLength returns the payload length in bytes for a recognized
// MessageType and true, or (0, false) for a type byte the receiver does
// not define. This is a pure lookup with the same table internal/frame's
// own PayloadLength uses to know when a frame's payload is complete.
func PayloadLength(t MessageType) (int, bool) {
	switch t {
	case ModeAC:
		return 2, true
	case ModeSShort:
		return 7, true
	case ModeSLong:
		return 14, true
	case StatusFrame:
		return 14, true
	default:
		return 0, false
	}
}

// TimestampKind distinguishes the clock source a Message's timestamp is
// drawn from. The Receiver-Type Autodetector flips this for all subsequent
// frames once it learns, from a STATUS frame's GPS bit, that the attached
// receiver is timestamping against GPS rather than its internal 12 MHz
// clock.
type TimestampKind int

const (
	TimestampTwelveMeg TimestampKind = iota
	TimestampGPS
)

func (k TimestampKind) String() string {
	if k == TimestampGPS {
		return "GPS"
	}
	return "TWELVEMEG"
}

// metadataLength is the fixed number of metadata bytes preceding every
// frame's payload: 6 timestamp bytes followed by 1 signal-level byte.
const metadataLength = 7

// Message is a fully decoded, dispatch-ready frame: the type byte, a
// 48-bit receiver timestamp assembled big-endian from the first 6 metadata
// bytes, the signal-level byte, which clock the timestamp was drawn from,
// and the type-length payload.
type Message struct {
	Type          MessageType
	Timestamp     uint64
	Signal        uint8
	TimestampKind TimestampKind
	Payload       []byte
}

// newMessage assembles a Message from a completed frame's metadata and
// payload. metadata must be exactly metadataLength bytes; the caller (the
// frame parser) guarantees this by construction.
func newMessage(t MessageType, metadata [metadataLength]byte, payload []byte, kind TimestampKind) Message {
	ts := uint64(metadata[0])<<40 | uint64(metadata[1])<<32 | uint64(metadata[2])<<24 |
		uint64(metadata[3])<<16 | uint64(metadata[4])<<8 | uint64(metadata[5])

	return Message{
		Type:          t,
		Timestamp:     ts,
		Signal:        metadata[6],
		TimestampKind: kind,
		Payload:       payload,
	}
}

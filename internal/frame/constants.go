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

// Package frame implements the Beast/Radarcape byte-level framing protocol:
// an escape-delimited, self-describing binary stream is turned into
// complete frames. It knows nothing about baud rates, receiver types, or
// settings — those live one layer up, in the Session actor that owns a
// Parser and reacts to the events it emits.
package frame

// Type classifies a frame by its wire type byte. It intentionally mirrors
// (rather than imports) the root package's MessageType: the framing layer
// and the dispatch layer have historically been two separate concerns in
// this protocol family, and keeping their type enums independent avoids
// coupling the FSM to anything above it.
type Type byte

const (
	ModeAC     Type = 0x31
	ModeSShort Type = 0x32
	ModeSLong  Type = 0x33
	Status     Type = 0x34
)

// PayloadLength returns the payload length in bytes for a recognized frame
// Type and true, or (0, false) if the byte does not name a known type.
func PayloadLength(t Type) (int, bool) {
	switch t {
	case ModeAC:
		return 2, true
	case ModeSShort:
		return 7, true
	case ModeSLong, Status:
		return 14, true
	default:
		return 0, false
	}
}

const (
	// Escape introduces a frame on the wire and doubles to escape a
	// literal occurrence of itself within metadata or payload.
	Escape byte = 0x1a

	// MetadataLength is the fixed number of metadata bytes preceding a
	// frame's payload: 6 timestamp bytes followed by 1 signal byte.
	MetadataLength = 7

	// MaxBytesWithoutSync bounds how long the parser will scan for a
	// frame start before declaring a lost-sync condition, even though no
	// framing attempt has actually failed yet — this keeps the auto-baud
	// controller informed during a stretch of pure noise.
	MaxBytesWithoutSync = 30
)

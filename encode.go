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

// Escape is the framing byte that both introduces a frame on read and
// introduces a command byte on write.
const Escape byte = 0x1a

// Encode translates a fully resolved Settings value into the control byte
// sequence the receiver's firmware understands: one `Escape <letter>` pair
// per knob, upper-case for on and lower-case for off. avrmlat and the
// hardware-handshake request are always sent on, since they are not
// user-settable knobs in this implementation.
func (s ResolvedSettings) Encode() []byte {
	msg := make([]byte, 0, 16)

	msg = appendSetting(msg, s.BinaryFormat, 'c', 'C')
	msg = appendSetting(msg, s.FilterDF11DF17Only, 'd', 'D')
	msg = appendSetting(msg, true, 'e', 'E') // avrmlat: always on
	msg = appendSetting(msg, s.CRCDisable, 'f', 'F')

	// G/g is multiplexed: on a detected Radarcape it carries
	// gps_timestamps, otherwise it carries mask_df0_df4_df5. Both are
	// meaningful only to one receiver family each, so the wire letter is
	// shared rather than doubled.
	if s.Radarcape {
		msg = appendSetting(msg, s.GPSTimestamps, 'g', 'G')
	} else {
		msg = appendSetting(msg, s.MaskDF0DF4DF5, 'g', 'G')
	}

	msg = appendSetting(msg, true, 'h', 'H') // hardware handshake: always on
	msg = appendSetting(msg, s.FECDisable, 'i', 'I')
	msg = appendSetting(msg, s.ModeAC, 'j', 'J')

	return msg
}

func appendSetting(msg []byte, on bool, off, upper byte) []byte {
	letter := off
	if on {
		letter = upper
	}
	return append(msg, Escape, letter)
}

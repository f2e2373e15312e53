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

// Filter decides whether a decoded Message should be delivered to a given
// consumer. It is the per-client unit the Filter Distributor unions to
// derive the upstream filter the Session actually requests from the
// receiver.
type Filter struct {
	// ReceiveDF[n] is true if downlink format n should be delivered.
	// Only indices 0..31 are meaningful; DF is 5 bits wide.
	ReceiveDF [32]bool

	ReceiveModeAC        bool
	ReceiveBadCRC        bool
	ReceiveFEC           bool
	ReceiveStatus        bool
	ReceiveGPSTimestamps bool
}

// Matches reports whether m should be delivered under f, mirroring the
// per-DF and CRC-tolerance decision the original collaborator's
// modes::Filter::operator() makes.
func (f Filter) Matches(m Message) bool {
	switch m.Type {
	case ModeAC:
		return f.ReceiveModeAC
	case StatusFrame:
		return f.ReceiveStatus
	case ModeSShort, ModeSLong:
		df := downlinkFormat(m.Payload)
		if df < 0 || !f.ReceiveDF[df] {
			return false
		}
		if crcBad(df, m.Payload) && !f.ReceiveBadCRC {
			return false
		}
		return true
	default:
		return false
	}
}

// Combine returns the union of one and two: any dimension either wants is
// requested by the result. This is what the Filter Distributor recomputes
// on every AddClient/UpdateClientFilter/RemoveClient call.
func Combine(one, two Filter) Filter {
	var out Filter
	for i := range out.ReceiveDF {
		out.ReceiveDF[i] = one.ReceiveDF[i] || two.ReceiveDF[i]
	}
	out.ReceiveModeAC = one.ReceiveModeAC || two.ReceiveModeAC
	out.ReceiveBadCRC = one.ReceiveBadCRC || two.ReceiveBadCRC
	out.ReceiveFEC = one.ReceiveFEC || two.ReceiveFEC
	out.ReceiveStatus = one.ReceiveStatus || two.ReceiveStatus
	out.ReceiveGPSTimestamps = one.ReceiveGPSTimestamps || two.ReceiveGPSTimestamps
	return out
}

// downlinkFormat extracts the 5-bit downlink format from the first payload
// byte of a Mode S short or long frame, or -1 if data is too short to hold
// one (defensive only; the frame parser never dispatches a short payload).
func downlinkFormat(data []byte) int {
	if len(data) < 1 {
		return -1
	}
	return int(data[0]>>3) & 31
}

// modeSCRCPolynomial is the CRC-24 polynomial used by Mode S downlink
// frames, grounded in the original collaborator's compile-time-generated
// crc_table.
const modeSCRCPolynomial = 0xfff409

var modeSCRCTable = buildModeSCRCTable()

func buildModeSCRCTable() [256]uint32 {
	var table [256]uint32
	for i := range table {
		c := uint32(i) << 16
		for range 8 {
			if c&0x800000 != 0 {
				c = (c << 1) ^ modeSCRCPolynomial
			} else {
				c <<= 1
			}
		}
		table[i] = c & 0xFFFFFF
	}
	return table
}

// modeSCRC computes the Mode S CRC-24 remainder over data.
func modeSCRC(data []byte) uint32 {
	var c uint32
	for _, b := range data {
		c = (c << 8) ^ modeSCRCTable[uint32(b)^((c&0xff0000)>>16)]
	}
	return c & 0x00FFFFFF
}

// crcResidual XORs the embedded 24-bit parity field into the CRC computed
// over the rest of the frame; a correctly received frame residual is zero
// (DF 17/18) or has at most its low 7 bits set (DF 11, whose parity field
// carries the interrogator identifier, so only the upper 17 bits of the
// residual are guaranteed zero for a good frame).
func crcResidual(data []byte) uint32 {
	n := len(data)
	if n <= 3 {
		return 0
	}
	residual := modeSCRC(data[:n-3])
	residual ^= uint32(data[n-3]) << 16
	residual ^= uint32(data[n-2]) << 8
	residual ^= uint32(data[n-1])
	return residual
}

// crcBad reports whether a Mode S frame with the given downlink format
// fails its CRC check, applying DF-specific tolerance: DF11 only requires
// the upper address bits of the residual to be clear (the low bits carry
// the interrogator's discriminator), while DF17/18 require a zero residual.
// Every other DF is treated as unverifiable and never flagged bad.
func crcBad(df int, data []byte) bool {
	switch df {
	case 11:
		return crcResidual(data)&0xFFFF80 != 0
	case 17, 18:
		return crcResidual(data) != 0
	default:
		return false
	}
}

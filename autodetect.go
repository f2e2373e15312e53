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

import "time"

// ReceiverType is the attached receiver variant, learned either from fixed
// configuration or by observing the incoming stream.
type ReceiverType int

const (
	ReceiverUnknown ReceiverType = iota
	ReceiverBeast
	ReceiverRadarcape
)

func (r ReceiverType) String() string {
	switch r {
	case ReceiverBeast:
		return "BEAST"
	case ReceiverRadarcape:
		return "RADARCAPE"
	default:
		return "UNKNOWN"
	}
}

// radarcapeDetectInterval is how long the autodetector waits for a STATUS
// frame before concluding the receiver is a plain Beast.
const radarcapeDetectInterval = 5 * time.Second

// autodetectState is the Receiver-Type Autodetector's state. A fixed
// receiver type (set from Settings.Radarcape when the operator expressed a
// preference) skips autodetection entirely; otherwise the state starts
// UNKNOWN and resolves either from an incoming STATUS frame or from the
// detect timer expiring first.
type autodetectState struct {
	fixed        bool
	receiverType ReceiverType
	receivingGPS bool
}

// newAutodetectState builds the starting autodetect state from the fixed
// Settings.Radarcape knob: nil means autodetect, non-nil pins the type and
// never arms the detect timer.
func newAutodetectState(radarcape *bool) autodetectState {
	if radarcape == nil {
		return autodetectState{receiverType: ReceiverUnknown}
	}
	if *radarcape {
		return autodetectState{fixed: true, receiverType: ReceiverRadarcape}
	}
	return autodetectState{fixed: true, receiverType: ReceiverBeast}
}

// needsTimer reports whether the autodetector should arm its detect timer
// on session (re)start.
func (a *autodetectState) needsTimer() bool {
	return !a.fixed && a.receiverType == ReceiverUnknown
}

// onStatusFrame resolves UNKNOWN to RADARCAPE when a STATUS frame arrives
// during autodetection, reporting whether the type just changed (the
// caller must then cancel the detect timer and re-propagate settings) and
// updating the GPS-timestamp bit every time regardless of prior state,
// since the original collaborator tracks it off of every STATUS frame, not
// just the first.
func (a *autodetectState) onStatusFrame(gpsBit bool) (typeResolved bool) {
	a.receivingGPS = gpsBit
	if a.fixed || a.receiverType != ReceiverUnknown {
		return false
	}
	a.receiverType = ReceiverRadarcape
	return true
}

// onDetectTimerExpired resolves UNKNOWN to BEAST when the detect timer
// fires before any STATUS frame arrived.
func (a *autodetectState) onDetectTimerExpired() (typeResolved bool) {
	if a.receiverType != ReceiverUnknown {
		return false
	}
	a.receiverType = ReceiverBeast
	return true
}

// timestampKind reports which clock subsequent frames should be tagged
// with, per the autodetector's current GPS-timestamp bit.
func (a *autodetectState) timestampKind() TimestampKind {
	if a.receivingGPS {
		return TimestampGPS
	}
	return TimestampTwelveMeg
}

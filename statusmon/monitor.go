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

// Package statusmon derives a GPS health signal from a receiver's STATUS
// frames: a tri-state color, a human-readable reason, and a timeout that
// degrades health if no STATUS frame arrives for a while on a receiver
// that is supposed to be sending them. It computes and exposes health; it
// never persists it anywhere itself.
package statusmon

import (
	"strings"
	"time"

	beastsplitter "github.com/ADSBexchange/beast-splitter"
	"github.com/ADSBexchange/beast-splitter/internal/syncutil"
)

// Color is the tri-state GPS health indicator.
type Color int

const (
	ColorGreen Color = iota
	ColorAmber
	ColorRed
)

func (c Color) String() string {
	switch c {
	case ColorGreen:
		return "green"
	case ColorAmber:
		return "amber"
	default:
		return "red"
	}
}

// DefaultTimeoutInterval is how long the monitor waits for a STATUS frame
// before degrading health, absent an override.
const DefaultTimeoutInterval = 60 * time.Second

// StatusReport is a point-in-time GPS health snapshot, ready to be served
// by a health-check endpoint.
type StatusReport struct {
	Color    Color
	Message  string
	Time     time.Time
	Expiry   time.Time
	Interval time.Duration
}

// ReceiverTypeFunc reports the attached receiver's currently known type,
// so the monitor can tell "no STATUS frames because this is a plain
// Beast" apart from "no STATUS frames because the GPS feed died".
type ReceiverTypeFunc func() beastsplitter.ReceiverType

// Monitor is the Status Monitor: register it with a Filter Distributor
// under a status-only filter (HandleMessage is the message notifier) and
// poll Health from wherever the outer program wants to expose it.
type Monitor struct {
	mu              syncutil.Mutex
	timeoutInterval time.Duration
	receiverType    ReceiverTypeFunc
	report          StatusReport
	timer           *time.Timer
}

// New starts a Monitor with the given timeout (DefaultTimeoutInterval if
// zero) that consults receiverType to decide whether silence is expected.
func New(timeoutInterval time.Duration, receiverType ReceiverTypeFunc) *Monitor {
	if timeoutInterval <= 0 {
		timeoutInterval = DefaultTimeoutInterval
	}

	m := &Monitor{timeoutInterval: timeoutInterval, receiverType: receiverType}
	m.setLocked(ColorGreen, "not applicable")
	m.timer = time.AfterFunc(timeoutInterval, m.onTimeout)
	return m
}

// Close stops the monitor's timeout timer. Health keeps returning the
// last computed report afterward.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timer.Stop()
}

// Health returns the most recently computed status report.
func (m *Monitor) Health() StatusReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.report
}

func (m *Monitor) onTimeout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.receiverType != nil && m.receiverType() == beastsplitter.ReceiverRadarcape {
		m.setLocked(ColorRed, "No recent GPS status message received")
	} else {
		m.setLocked(ColorGreen, "not applicable")
	}
	m.timer.Reset(m.timeoutInterval)
}

// HandleMessage is the Filter Distributor message notifier: register it
// against a Filter{ReceiveStatus: true} client. Every STATUS frame resets
// the timeout and recomputes health from the GPS-status byte layout
// documented below, matching the original collaborator's tri-state logic.
//
// STATUS payload layout consulted here:
//
//	data[0] & 0x10: 1 = GPS timestamps, 0 = 12 MHz timestamps
//	data[1]:        signed timestamp offset at last PPS edge, 15ns units
//	data[2] & 0x80: 1 = new-style status word, 0 = old-style
//	data[2] & 0x20: 1 = FPGA timestamp not from GPS (new-style only)
//	data[2] & 0x10: 1 = degradation <= 45ns (either style)
//	data[2] & 0x08: 1 = UTC/GPS time offset known
//	data[2] & 0x04: 1 = enough satellites tracked
//	data[2] & 0x02: 1 = tracking at least one satellite
//	data[2] & 0x01: 1 = antenna OK
func (m *Monitor) HandleMessage(msg beastsplitter.Message) {
	if msg.Type != beastsplitter.StatusFrame || len(msg.Payload) < 3 {
		return
	}
	data := msg.Payload

	m.mu.Lock()
	defer m.mu.Unlock()
	defer m.timer.Reset(m.timeoutInterval)

	if data[0]&0x10 == 0 {
		m.setLocked(ColorRed, "Not in GPS timestamp mode")
		return
	}

	if data[2]&0x80 == 0 {
		if data[1] <= 3 || data[1] >= 256-3 {
			m.setLocked(ColorGreen, "Receiver synchronized to GPS time")
		} else {
			m.setLocked(ColorAmber, "Receiver more than 45ns from GPS time")
		}
		return
	}

	if data[2]&0x20 == 0 {
		if data[2]&0x10 != 0 {
			m.setLocked(ColorGreen, "Receiver synchronized to GPS time")
		} else {
			m.setLocked(ColorAmber, "Receiver more than 45ns from GPS time")
		}
		return
	}

	var reasons []string
	if data[2]&0x08 == 0 {
		reasons = append(reasons, "GPS/UTC time offset not known")
	}
	if data[2]&0x02 == 0 {
		reasons = append(reasons, "Not tracking any satellites")
	} else if data[2]&0x04 == 0 {
		reasons = append(reasons, "Not tracking sufficient satellites")
	}
	if data[2]&0x01 == 0 {
		reasons = append(reasons, "Antenna fault")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Unrecognized GPS fault")
	}
	m.setLocked(ColorRed, strings.Join(reasons, "; "))
}

// setLocked overwrites the current report. Callers must hold m.mu.
func (m *Monitor) setLocked(color Color, message string) {
	now := time.Now()
	m.report = StatusReport{
		Color:    color,
		Message:  message,
		Time:     now,
		Expiry:   now.Add(2 * m.timeoutInterval),
		Interval: m.timeoutInterval,
	}
}

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

package statusmon

import (
	"testing"
	"time"

	beastsplitter "github.com/ADSBexchange/beast-splitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusMessage(payload []byte) beastsplitter.Message {
	return beastsplitter.Message{Type: beastsplitter.StatusFrame, Payload: payload}
}

func TestNewMonitorStartsGreenNotApplicable(t *testing.T) {
	t.Parallel()

	m := New(time.Hour, nil)
	defer m.Close()

	report := m.Health()
	assert.Equal(t, ColorGreen, report.Color)
	assert.Equal(t, "not applicable", report.Message)
}

func TestHandleMessageIgnoresNonStatusFrames(t *testing.T) {
	t.Parallel()

	m := New(time.Hour, nil)
	defer m.Close()

	m.HandleMessage(beastsplitter.Message{Type: beastsplitter.ModeAC, Payload: []byte{0xff, 0xff}})
	assert.Equal(t, "not applicable", m.Health().Message)
}

func TestHandleMessageNotGPSModeIsRed(t *testing.T) {
	t.Parallel()

	m := New(time.Hour, nil)
	defer m.Close()

	m.HandleMessage(statusMessage([]byte{0x00, 0x00, 0x00}))
	report := m.Health()
	assert.Equal(t, ColorRed, report.Color)
	assert.Equal(t, "Not in GPS timestamp mode", report.Message)
}

func TestHandleMessageOldStyleSynchronized(t *testing.T) {
	t.Parallel()

	m := New(time.Hour, nil)
	defer m.Close()

	// old-style (data[2] bit 0x80 clear), small offset -> green
	m.HandleMessage(statusMessage([]byte{0x10, 0x02, 0x00}))
	assert.Equal(t, ColorGreen, m.Health().Color)
}

func TestHandleMessageOldStyleDegraded(t *testing.T) {
	t.Parallel()

	m := New(time.Hour, nil)
	defer m.Close()

	m.HandleMessage(statusMessage([]byte{0x10, 0x20, 0x00}))
	report := m.Health()
	assert.Equal(t, ColorAmber, report.Color)
}

func TestHandleMessageNewStyleFPGAFromGPS(t *testing.T) {
	t.Parallel()

	m := New(time.Hour, nil)
	defer m.Close()

	// new-style (0x80 set), FPGA using GPS time (0x20 clear), within 45ms (0x10 set)
	m.HandleMessage(statusMessage([]byte{0x10, 0x00, 0x80 | 0x10}))
	assert.Equal(t, ColorGreen, m.Health().Color)

	m.HandleMessage(statusMessage([]byte{0x10, 0x00, 0x80}))
	assert.Equal(t, ColorAmber, m.Health().Color)
}

func TestHandleMessageNewStyleFPGANotFromGPSReportsReasons(t *testing.T) {
	t.Parallel()

	m := New(time.Hour, nil)
	defer m.Close()

	// new-style, FPGA not from GPS (0x20 set), no sats tracked, antenna fault
	m.HandleMessage(statusMessage([]byte{0x10, 0x00, 0x80 | 0x20}))
	report := m.Health()
	assert.Equal(t, ColorRed, report.Color)
	assert.Contains(t, report.Message, "Not tracking any satellites")
	assert.Contains(t, report.Message, "Antenna fault")
	assert.Contains(t, report.Message, "GPS/UTC time offset not known")
}

func TestHandleMessageNewStyleAllGoodFallsBackToUnrecognized(t *testing.T) {
	t.Parallel()

	m := New(time.Hour, nil)
	defer m.Close()

	// new-style, FPGA not from GPS, every individual flag reports fine --
	// this combination isn't supposed to happen, but the monitor still
	// has to report something rather than an empty reason string.
	m.HandleMessage(statusMessage([]byte{0x10, 0x00, 0x80 | 0x20 | 0x08 | 0x02 | 0x04 | 0x01}))
	report := m.Health()
	assert.Equal(t, ColorRed, report.Color)
	assert.Equal(t, "Unrecognized GPS fault", report.Message)
}

func TestOnTimeoutDegradesRadarcapeToRed(t *testing.T) {
	t.Parallel()

	m := New(20*time.Millisecond, func() beastsplitter.ReceiverType { return beastsplitter.ReceiverRadarcape })
	defer m.Close()

	require.Eventually(t, func() bool {
		return m.Health().Color == ColorRed
	}, time.Second, time.Millisecond)
	assert.Equal(t, "No recent GPS status message received", m.Health().Message)
}

func TestOnTimeoutStaysGreenForNonRadarcape(t *testing.T) {
	t.Parallel()

	m := New(20*time.Millisecond, func() beastsplitter.ReceiverType { return beastsplitter.ReceiverBeast })
	defer m.Close()

	time.Sleep(100 * time.Millisecond)
	report := m.Health()
	assert.Equal(t, ColorGreen, report.Color)
	assert.Equal(t, "not applicable", report.Message)
}

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

package serial

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

var errMockPortClosed = errors.New("mock port closed")

// mockSerialPort is a minimal in-memory stand-in for go.bug.st/serial.Port,
// enough to exercise Port's own logic without opening a real device.
type mockSerialPort struct {
	mode   *serial.Mode
	in     bytes.Buffer
	out    bytes.Buffer
	closed bool
}

func (m *mockSerialPort) SetMode(mode *serial.Mode) error {
	m.mode = mode
	return nil
}

func (m *mockSerialPort) Read(p []byte) (int, error) {
	if m.closed {
		return 0, errMockPortClosed
	}
	return m.in.Read(p)
}

func (m *mockSerialPort) Write(p []byte) (int, error) {
	if m.closed {
		return 0, errMockPortClosed
	}
	return m.out.Write(p)
}

func (*mockSerialPort) Drain() error              { return nil }
func (*mockSerialPort) ResetInputBuffer() error   { return nil }
func (*mockSerialPort) ResetOutputBuffer() error  { return nil }
func (*mockSerialPort) SetDTR(bool) error         { return nil }
func (*mockSerialPort) SetRTS(bool) error         { return nil }
func (*mockSerialPort) SetReadTimeout(time.Duration) error { return nil }

func (*mockSerialPort) GetModemStatusBits() (*serial.ModemStatusBits, error) {
	return &serial.ModemStatusBits{}, nil
}

func (*mockSerialPort) Break(time.Duration) error { return nil }

func (m *mockSerialPort) Close() error {
	m.closed = true
	return nil
}

var _ serial.Port = (*mockSerialPort)(nil)

func newTestPort(mock *mockSerialPort) *Port {
	return &Port{port: mock, path: "/dev/fakeserial", baud: 3_000_000}
}

func TestPortWriteRoundTrip(t *testing.T) {
	t.Parallel()

	mock := &mockSerialPort{}
	p := newTestPort(mock)

	require.NoError(t, p.Write([]byte{0x1a, '1', 0x00}))
	assert.Equal(t, []byte{0x1a, '1', 0x00}, mock.out.Bytes())
}

func TestPortReadReturnsWhatWasQueued(t *testing.T) {
	t.Parallel()

	mock := &mockSerialPort{}
	mock.in.Write([]byte{0xAA, 0xBB, 0xCC})
	p := newTestPort(mock)

	buf := make([]byte, 16)
	n, err := p.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, buf[:n])
}

func TestPortSetBaudUpdatesModeAndField(t *testing.T) {
	t.Parallel()

	mock := &mockSerialPort{}
	p := newTestPort(mock)

	require.NoError(t, p.SetBaud(115200))
	assert.Equal(t, 115200, p.Baud())
	require.NotNil(t, mock.mode)
	assert.Equal(t, 115200, mock.mode.BaudRate)
}

func TestPortCloseWrapsUnderlyingClose(t *testing.T) {
	t.Parallel()

	mock := &mockSerialPort{}
	p := newTestPort(mock)

	require.NoError(t, p.Close())
	assert.True(t, mock.closed)

	_, err := p.Read(make([]byte, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, errMockPortClosed)
}

func TestPortPathAndBaud(t *testing.T) {
	t.Parallel()

	p := newTestPort(&mockSerialPort{})
	assert.Equal(t, "/dev/fakeserial", p.Path())
	assert.Equal(t, 3_000_000, p.Baud())
}

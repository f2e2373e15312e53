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

// Package serial wraps go.bug.st/serial with the narrow surface the I/O
// Session Manager needs: open at a given baud rate with the receiver's
// fixed 8N1 framing, change baud rate without a full reopen, and a Close
// that reliably unblocks a pending Read so it can serve as the session's
// cancellation mechanism.
package serial

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// readPollTimeout is the internal poll timeout applied to the underlying
// port so that Read calls return periodically on their own, purely so the
// session's reader goroutine can notice a Close without an OS-level
// cancellation primitive for serial reads.
const readPollTimeout = 200 * time.Millisecond

// Port is an open serial device at a known baud rate.
type Port struct {
	port serial.Port
	path string
	baud int
}

// Open opens path at baud with 8 data bits, 1 stop bit, no parity.
//
// Hardware flow control (RTS/CTS) is requested via SetRTS where the
// underlying library supports it; go.bug.st/serial does not expose a
// Mode field for automatic RTS/CTS handshaking the way termios does, so
// this is a best-effort hint rather than a guarantee — the same
// limitation the teacher's UART transport works around by not relying on
// hardware handshaking at all.
func Open(path string, baud int) (*Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	sp, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := sp.SetReadTimeout(readPollTimeout); err != nil {
		_ = sp.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", path, err)
	}

	if err := sp.SetRTS(true); err != nil {
		// Not every adapter supports RTS toggling; this is advisory only.
		_ = err
	}

	return &Port{port: sp, path: path, baud: baud}, nil
}

// SetBaud changes the baud rate of an already-open port, used by the
// auto-baud controller to advance to the next candidate rate without
// closing and reopening the device.
func (p *Port) SetBaud(baud int) error {
	if err := p.port.SetMode(&serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}); err != nil {
		return fmt.Errorf("set baud %d on %s: %w", baud, p.path, err)
	}
	p.baud = baud
	return nil
}

// Baud returns the port's current baud rate.
func (p *Port) Baud() int {
	return p.baud
}

// Path returns the device path the port was opened on.
func (p *Port) Path() string {
	return p.path
}

// Read reads into buf, returning (0, nil) on a read-timeout expiry so the
// caller's loop can check for cancellation between polls.
func (p *Port) Read(buf []byte) (int, error) {
	n, err := p.port.Read(buf)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", p.path, err)
	}
	return n, nil
}

// Write writes buf in full.
func (p *Port) Write(buf []byte) error {
	n, err := p.port.Write(buf)
	if err != nil {
		return fmt.Errorf("write %s: %w", p.path, err)
	}
	if n != len(buf) {
		return fmt.Errorf("short write to %s: wrote %d of %d bytes", p.path, n, len(buf))
	}
	return nil
}

// Close closes the underlying device, unblocking any in-progress Read.
func (p *Port) Close() error {
	if err := p.port.Close(); err != nil {
		return fmt.Errorf("close %s: %w", p.path, err)
	}
	return nil
}

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

// Package testfake provides in-memory stand-ins for the serial transport and
// wall clock so the Session actor's autobaud, autodetect, and reconnect logic
// can be exercised deterministically, without real hardware and without
// sleeping on the wall clock.
package testfake

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
)

// ErrPortClosed is returned from Read/Write once Close has been called.
var ErrPortClosed = errors.New("testfake: port closed")

// BaudChange records a single SetBaud call, in call order.
type BaudChange struct {
	From int
	To   int
}

// Port is a fake transport.serial.Port: an in-memory duplex byte stream with
// open/close and baud-rate bookkeeping a test can assert against. Feed queues
// bytes for the next Read call to return, simulating receiver traffic;
// Written accumulates everything the code under test has written, simulating
// the settings messages the Session sends out.
//
// Port is safe for concurrent use: Feed is typically called from the test
// goroutine while Read is called from the Session's reader goroutine.
type Port struct {
	mu sync.Mutex

	path   string
	baud   int
	closed bool

	pending bytes.Buffer
	written bytes.Buffer

	baudHistory []BaudChange
	readCh      chan struct{}
}

// NewPort returns an open fake port at the given path and initial baud rate.
func NewPort(path string, baud int) *Port {
	return &Port{
		path:   path,
		baud:   baud,
		readCh: make(chan struct{}, 1),
	}
}

// Feed appends data to the port's read queue, waking any blocked Read.
func (p *Port) Feed(data []byte) {
	p.mu.Lock()
	p.pending.Write(data)
	p.mu.Unlock()

	select {
	case p.readCh <- struct{}{}:
	default:
	}
}

// Read blocks until at least one byte is available or the port is closed.
// Unlike the real transport.serial.Port, it never returns the (0, nil)
// read-timeout shape.
func (p *Port) Read(buf []byte) (int, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return 0, ErrPortClosed
		}
		if p.pending.Len() > 0 {
			n, _ := p.pending.Read(buf)
			p.mu.Unlock()
			return n, nil
		}
		p.mu.Unlock()

		_, ok := <-p.readCh
		if !ok {
			return 0, ErrPortClosed
		}
	}
}

// Write appends buf to the port's write log.
func (p *Port) Write(buf []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPortClosed
	}
	p.written.Write(buf)
	return nil
}

// Close marks the port closed and unblocks any pending Read.
func (p *Port) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	close(p.readCh)
	return nil
}

// SetBaud records the requested rate change and updates Baud.
func (p *Port) SetBaud(baud int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("set baud on closed port: %w", ErrPortClosed)
	}
	p.baudHistory = append(p.baudHistory, BaudChange{From: p.baud, To: baud})
	p.baud = baud
	return nil
}

// Baud returns the port's current baud rate.
func (p *Port) Baud() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.baud
}

// Path returns the device path the port was constructed with.
func (p *Port) Path() string {
	return p.path
}

// Closed reports whether Close has been called.
func (p *Port) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// BaudHistory returns every SetBaud call made so far, in order.
func (p *Port) BaudHistory() []BaudChange {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]BaudChange, len(p.baudHistory))
	copy(out, p.baudHistory)
	return out
}

// Written returns a copy of everything written to the port so far.
func (p *Port) Written() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.written.Bytes()...)
}

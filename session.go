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

// Package beastsplitter implements the serial byte-stream deframer and
// receiver-adaptation engine for the Mode-S Beast / Radarcape protocol: it
// discovers the receiver's baud rate and variant, parses the escape-framed
// wire format into typed Messages, and keeps the receiver's configuration
// in sync with what the consumer actually wants.
package beastsplitter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ADSBexchange/beast-splitter/internal/frame"
	"github.com/ADSBexchange/beast-splitter/internal/logging"
	"github.com/ADSBexchange/beast-splitter/internal/retry"
	serialport "github.com/ADSBexchange/beast-splitter/transport/serial"
)

// reconnectInterval is how long the I/O Session Manager waits after a
// transport failure before reopening the device.
const reconnectInterval = 15 * time.Second

// readBufferSize is the chunk size requested from the transport on each
// read; the buffer is reused across reads.
const readBufferSize = 4096

// clock is the narrow time source Session depends on. The production
// default is backed by the time package; tests substitute a manual clock
// (internal/testfake.ManualClock satisfies this interface structurally) to
// drive autobaud and autodetect timers deterministically.
type clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// serialPort is the narrow transport surface Session depends on. The
// production default is transport/serial.Port; tests substitute
// internal/testfake.Port, which satisfies this interface structurally.
type serialPort interface {
	Read([]byte) (int, error)
	Write([]byte) error
	Close() error
	SetBaud(int) error
	Baud() int
	Path() string
}

// openFunc opens path at baud, returning a serialPort. The production
// default wraps transport/serial.Open.
type openFunc func(path string, baud int) (serialPort, error)

func defaultOpen(path string, baud int) (serialPort, error) {
	p, err := serialport.Open(path, baud)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// readResult is what the background reader goroutine hands back to the
// loop goroutine over a channel; it never touches Session state directly.
type readResult struct {
	data []byte
	err  error
}

// Session is the I/O Session Manager: it owns a single serial device,
// drives the Auto-Baud Controller and Receiver-Type Autodetector, feeds an
// internal/frame.Parser, and propagates Settings changes to the receiver.
// All of a Session's mutable state is touched exclusively by its own loop
// goroutine; everything else communicates with it over channels.
type Session struct {
	logger *logging.Logger

	path          string
	fixedBaud     int
	fixedSettings Settings

	// reconnectInterval and detectInterval default to the package
	// constants reconnectInterval and radarcapeDetectInterval but may be
	// overridden (SetReconnectInterval,
	// SetDetectInterval) before Start, e.g. from a config.Session override.
	reconnectInterval time.Duration
	detectInterval    time.Duration

	open  openFunc
	clock clock

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool

	cmdCh chan func()

	// loop-owned: touched only from within run() and the functions it
	// calls directly (including closures delivered over cmdCh, which run()
	// always executes inline on its own goroutine).
	runCtx        context.Context
	port          serialPort
	parser        *frame.Parser
	filter        Filter
	notifier      func(Message)
	autobaud      autobaudState
	detect        autodetectState
	autobaudTimer <-chan time.Time
	detectTimer   <-chan time.Time

	// loopErr is set by any helper invoked from within connectAndServe's
	// select loop (directly or via a parser callback) that hits a
	// transport failure it cannot report through a normal return value —
	// a write that fails while propagating settings from inside
	// handleFrame, for instance. connectAndServe checks it after every
	// case and at the top of each iteration, then returns it.
	loopErr error

	// receiverTypeSnapshot mirrors detect.receiverType for callers on other
	// goroutines (the Registry's Status Monitor wiring, notably) that need
	// to know the current receiver type without a round trip through
	// cmdCh. Updated by the loop goroutine alongside every detect.* change.
	receiverTypeSnapshot atomic.Int32
}

// New returns a Session for the device at path. fixedBaud of 0 means
// autobaud across the standard rate list; fixedSettings expresses any
// operator-pinned knobs (tri-valued, nil = let the filter decide);
// initialFilter is the consumer's starting filter.
func New(path string, fixedBaud int, fixedSettings Settings, initialFilter Filter) *Session {
	return newSession(path, fixedBaud, fixedSettings, initialFilter, defaultOpen, realClock{})
}

func newSession(path string, fixedBaud int, fixedSettings Settings, initialFilter Filter, open openFunc, clk clock) *Session {
	detect := newAutodetectState(fixedSettings.Radarcape)
	s := &Session{
		logger:            logging.New("session"),
		path:              path,
		fixedBaud:         fixedBaud,
		fixedSettings:     fixedSettings,
		reconnectInterval: reconnectInterval,
		detectInterval:    radarcapeDetectInterval,
		open:              open,
		clock:             clk,
		cmdCh:             make(chan func(), 8),
		filter:            initialFilter,
		autobaud:          newAutobaudState(fixedBaud),
		detect:            detect,
	}
	s.receiverTypeSnapshot.Store(int32(detect.receiverType))
	return s
}

// ReceiverType reports the most recently resolved receiver type. It is
// safe to call from any goroutine; ReceiverUnknown until autodetection (or
// a fixed Settings.Radarcape) resolves it.
func (s *Session) ReceiverType() ReceiverType {
	return ReceiverType(s.receiverTypeSnapshot.Load())
}

// Path returns the configured device path. It is fixed at construction and
// safe to call from any goroutine.
func (s *Session) Path() string {
	return s.path
}

// SetReconnectInterval overrides how long the session waits after a
// transport failure before reopening the device. It must be called before
// Start; d <= 0 restores the package default.
func (s *Session) SetReconnectInterval(d time.Duration) {
	if d <= 0 {
		d = reconnectInterval
	}
	s.reconnectInterval = d
}

// SetDetectInterval overrides how long the Receiver-Type Autodetector
// waits for a STATUS frame before resolving to BEAST. It must be called
// before Start; d <= 0 restores the package default.
func (s *Session) SetDetectInterval(d time.Duration) {
	if d <= 0 {
		d = radarcapeDetectInterval
	}
	s.detectInterval = d
}

// Start launches the session's loop goroutine. It is idempotent: calling
// Start on an already-running Session returns ErrAlreadyStarted.
func (s *Session) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(runCtx)

	return nil
}

// Close stops the session and releases its resources. No further
// notifier callbacks occur after Close returns. It blocks until the loop
// goroutine has fully exited.
func (s *Session) Close() error {
	if !s.running.Load() {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	return nil
}

// SetFilter replaces the consumer's filter, re-propagating settings to the
// receiver if they changed and the port is currently open.
func (s *Session) SetFilter(f Filter) {
	s.enqueue(func() {
		if s.filter == f {
			return
		}
		s.filter = f
		if s.port != nil {
			s.propagateSettings()
		}
	})
}

// SetMessageNotifier installs the downstream consumer. fn is invoked
// synchronously, once per delivered frame, from the loop goroutine; it
// must not block. Called before Start, it installs fn directly.
func (s *Session) SetMessageNotifier(fn func(Message)) {
	if !s.running.Load() {
		s.notifier = fn
		return
	}
	s.enqueue(func() { s.notifier = fn })
}

// enqueue hands fn to the loop goroutine for synchronous execution. If the
// session was never started, or has already stopped, fn is dropped rather
// than leaking a goroutine waiting on a full channel.
func (s *Session) enqueue(fn func()) {
	if !s.running.Load() {
		return
	}
	select {
	case s.cmdCh <- fn:
	default:
		// The command queue only ever holds a handful of outstanding
		// control calls; a full queue means the loop has already exited.
	}
}

// run is the session's entire lifecycle: it repeatedly opens the device
// and serves it until a transport failure or cancellation, waiting
// reconnectInterval between attempts.
func (s *Session) run(ctx context.Context) {
	defer s.wg.Done()
	defer s.running.Store(false)

	for {
		err := s.connectAndServe(ctx)
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrSessionClosed) {
			return
		}

		s.logger.Warn("got error, scheduling reconnect", "error", err, "path", s.path)
		s.autobaud.reset()
		s.detect = newAutodetectState(s.fixedSettings.Radarcape)
		s.receiverTypeSnapshot.Store(int32(s.detect.receiverType))

		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(s.reconnectInterval):
			s.logger.Info("reconnect timer fired", "path", s.path)
		}
	}
}

// connectAndServe opens the device at the controller's current rate and
// runs the read/dispatch loop until an unrecoverable error, a reconnect
// condition, or context cancellation.
func (s *Session) connectAndServe(ctx context.Context) error {
	s.runCtx = ctx

	var port serialPort
	openErr := retry.Do(ctx, retry.DefaultConfig(), IsRetryable, func() error {
		p, err := s.open(s.path, s.autobaud.currentRate())
		if err != nil {
			return NewSessionError("open", s.path, err, ErrorTypeTransient)
		}
		port = p
		return nil
	})
	if openErr != nil {
		return openErr
	}
	s.port = port

	readCh := make(chan readResult, 1)
	readerDone := make(chan struct{})
	go s.readerLoop(ctx, port, readCh, readerDone)

	// Defers run in reverse order. Closing the port is what unblocks a
	// reader goroutine stuck in Read, so the close below must run before
	// the wait above — which it does, since it is deferred after it.
	defer func() { <-readerDone }()
	defer func() {
		_ = s.port.Close()
		s.port = nil
	}()

	s.logger.Info("opened device", "path", s.path, "baud", s.autobaud.currentRate())

	s.loopErr = nil
	s.parser = frame.NewParser()
	s.parser.OnFrame = func(f frame.Frame) { s.handleFrame(f) }
	s.parser.OnLostSync = func() { s.handleLostSync() }

	s.propagateSettings()

	s.autobaudTimer = nil
	if s.autobaud.armsTimer() {
		s.autobaudTimer = s.clock.After(s.autobaud.interval)
	}

	s.detectTimer = nil
	if s.detect.needsTimer() {
		s.detectTimer = s.clock.After(s.detectInterval)
	}

	for {
		if s.loopErr != nil {
			return s.loopErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case res := <-readCh:
			if res.err != nil {
				return NewSessionError("read", s.path, res.err, ErrorTypeTransient)
			}
			if len(res.data) > 0 {
				s.parser.Feed(res.data)
			}

		case <-s.autobaudTimer:
			if !s.autobaud.autobauding {
				// The controller pinned a rate since this timer was last
				// armed; P5 requires the timer be cancelled once pinned,
				// so drop it instead of advancing an already-settled
				// controller out from under a working connection.
				s.autobaudTimer = nil
				continue
			}
			s.logger.Debugf("autobaud timer fired")
			interval := s.autobaud.advance()
			s.applyAutobaudRate()
			s.autobaudTimer = s.clock.After(interval)

		case <-s.detectTimer:
			s.logger.Info("radarcape detect timer fired, assuming BEAST", "path", s.path)
			if s.detect.onDetectTimerExpired() {
				s.receiverTypeSnapshot.Store(int32(s.detect.receiverType))
				s.propagateSettings()
			}
			s.detectTimer = nil

		case fn := <-s.cmdCh:
			fn()
		}
	}
}

// readerLoop repeatedly reads from port, forwarding every result to readCh,
// until ctx is cancelled or the read fails. It never touches Session
// fields: only the loop goroutine consuming readCh does.
func (s *Session) readerLoop(ctx context.Context, port serialPort, readCh chan<- readResult, done chan<- struct{}) {
	defer close(done)
	buf := make([]byte, readBufferSize)
	for {
		n, err := port.Read(buf)
		if ctx.Err() != nil {
			return
		}
		select {
		case readCh <- readResult{data: append([]byte(nil), buf[:n]...), err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
	}
}

// applyAutobaudRate pushes the controller's current candidate rate to the
// open port and re-sends the settings message, mirroring the legacy
// behavior of reapplying serial options and settings whenever the baud
// rate advances. A failure here is recorded on s.loopErr rather than
// returned, since its callers (the autobaud timer case and
// handleLostSync) have no uniform way to report an error otherwise.
func (s *Session) applyAutobaudRate() {
	rate := s.autobaud.currentRate()
	s.logger.Info("set baud rate", "path", s.path, "baud", rate)
	if err := s.port.SetBaud(rate); err != nil {
		s.loopErr = NewSessionError("set baud", s.path, err, ErrorTypeTransient)
		return
	}
	s.propagateSettings()
}

// handleFrame is the Frame Parser's OnFrame callback: it updates auto-baud
// and autodetect bookkeeping, classifies STATUS frames, and delivers the
// decoded Message to the consumer once the session is no longer
// autobauding or autodetecting (P4).
func (s *Session) handleFrame(f frame.Frame) {
	justPinned := s.autobaud.onFrameDispatched()
	if justPinned {
		s.logger.Info("autobaud succeeded", "path", s.path, "baud", s.autobaud.currentRate())
	}

	if s.autobaud.autobauding {
		return
	}

	msgType := MessageType(f.Type)
	if msgType == StatusFrame && len(f.Payload) > 0 {
		gpsBit := f.Payload[0]&0x10 != 0
		if s.detect.onStatusFrame(gpsBit) {
			s.receiverTypeSnapshot.Store(int32(s.detect.receiverType))
			s.logger.Info("detected radarcape", "path", s.path)
			s.propagateSettings()
		}
	}

	if s.detect.receiverType == ReceiverUnknown {
		return
	}

	if s.notifier == nil {
		return
	}

	msg := newMessage(msgType, f.Metadata, f.Payload, s.detect.timestampKind())
	s.invokeNotifier(msg)
}

// invokeNotifier calls the installed consumer callback, recovering from a
// panic so a misbehaving consumer cannot take the session down with it.
func (s *Session) invokeNotifier(msg Message) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("message notifier panicked", "path", s.path, "panic", fmt.Sprint(r))
		}
	}()
	s.notifier(msg)
}

// handleLostSync is the Frame Parser's OnLostSync callback. It applies the
// controller's bad-sync bookkeeping and, if that pushes the controller back
// into autobauding, advances to the next candidate rate and re-arms the
// autobaud timer at the new interval — the rate that was just failing is
// never reapplied. Any transport failure this provokes is recorded on
// s.loopErr, since OnLostSync has no return value of its own to report
// through; the select loop in connectAndServe checks s.loopErr on its next
// iteration.
func (s *Session) handleLostSync() {
	s.logger.Debugf("lost frame sync")
	if s.autobaud.onLostSync() {
		s.logger.Info("restarting autobaud after repeated sync failures", "path", s.path)
		interval := s.autobaud.advance()
		s.applyAutobaudRate()
		s.autobaudTimer = s.clock.After(interval)
	}
}

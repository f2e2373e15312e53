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

// Package registry owns the set of named Sessions a beastsplitterd process
// runs, wiring each one's Filter Distributor and Status Monitor and giving
// the outer program a single place to start and stop the whole fleet.
package registry

import (
	"context"
	"fmt"

	beastsplitter "github.com/ADSBexchange/beast-splitter"
	"github.com/ADSBexchange/beast-splitter/config"
	"github.com/ADSBexchange/beast-splitter/filterdist"
	"github.com/ADSBexchange/beast-splitter/internal/logging"
	"github.com/ADSBexchange/beast-splitter/internal/syncutil"
	"github.com/ADSBexchange/beast-splitter/statusmon"
	"github.com/ADSBexchange/beast-splitter/transport/gpio"
)

// Entry bundles one configured device session with the components that sit
// between it and the outer program: the Filter Distributor fanning its
// messages out to whatever consumers AddClient registers, and the Status
// Monitor tracking its GPS health.
type Entry struct {
	Name      string
	Session   *beastsplitter.Session
	Dist      *filterdist.Distributor
	Status    *statusmon.Monitor
	resetLine *gpio.ResetLine
}

// Registry owns a fleet of named Sessions built from a config.Config. It is
// safe for concurrent use: StartAll, CloseAll, Get, and Names may be called from any
// goroutine, matching the contract that a background reader goroutine and
// arbitrary caller goroutines both touch it.
type Registry struct {
	mu      syncutil.Mutex
	entries map[string]*Entry
	logger  *logging.Logger
}

// New builds a Registry from cfg, constructing (but not starting) one
// Entry per configured session. Each session's Filter Distributor is wired
// so that, once a consumer calls AddClient, the combined filter is pushed
// to the Session, and the Session's decoded messages are pushed back out
// through Broadcast. Session.SetFilter has no effect until the Session is
// running, so a combined filter reported before StartAll (such as the one
// for the Status Monitor client added here) does not replace the
// Session's configured starting filter.
func New(cfg *config.Config) (*Registry, error) {
	r := &Registry{
		entries: make(map[string]*Entry, len(cfg.Sessions)),
		logger:  logging.New("registry"),
	}

	for _, sc := range cfg.Sessions {
		entry, err := buildEntry(sc)
		if err != nil {
			return nil, fmt.Errorf("build session %q: %w", sc.Name, err)
		}
		r.entries[sc.Name] = entry
	}

	return r, nil
}

func buildEntry(sc config.Session) (*Entry, error) {
	dist := filterdist.New()

	sess := beastsplitter.New(sc.Device, sc.FixedBaud, sc.Settings.ToSettings(), sc.FilterOrDefault().ToFilter())
	sess.SetReconnectInterval(sc.ReconnectInterval)
	sess.SetDetectInterval(sc.DetectTimeout)

	dist.SetFilterNotifier(sess.SetFilter)
	sess.SetMessageNotifier(dist.Broadcast)

	mon := statusmon.New(sc.StatusTimeout, sess.ReceiverType)
	// The Status Monitor never changes its own filter or unregisters, so
	// its handle is never needed again.
	dist.AddClient(mon.HandleMessage, beastsplitter.Filter{ReceiveStatus: true})

	entry := &Entry{Name: sc.Name, Session: sess, Dist: dist, Status: mon}

	if sc.GPIOResetPin != "" {
		line, err := gpio.Open(sc.GPIOResetPin)
		if err != nil {
			return nil, fmt.Errorf("open gpio reset line %q: %w", sc.GPIOResetPin, err)
		}
		entry.resetLine = line
	}

	return entry, nil
}

// Get returns the named entry, or nil if no session with that name was
// configured.
func (r *Registry) Get(name string) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[name]
}

// Names returns every configured session name, in no particular order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}

// StartAll pulses any configured GPIO reset line and starts every Session
// in the fleet. If one session fails to start, StartAll stops whatever it
// already started before returning the error, so a partially-started
// fleet never escapes this call.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	started := make([]*Entry, 0, len(r.entries))
	for name, entry := range r.entries {
		if entry.resetLine != nil {
			if err := entry.resetLine.Pulse(); err != nil {
				r.logger.Warn("gpio reset pulse failed", "session", name, "error", err)
			}
		}

		if err := entry.Session.Start(ctx); err != nil {
			for _, s := range started {
				_ = s.Session.Close()
			}
			return fmt.Errorf("start session %q: %w", name, err)
		}
		started = append(started, entry)
		r.logger.Info("session started", "session", name, "device", entry.Session.Path())
	}

	return nil
}

// CloseAll stops every Session and its Status Monitor, collecting (but not
// stopping early on) any errors encountered.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for name, entry := range r.entries {
		entry.Status.Close()
		if err := entry.Session.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close session %q: %w", name, err)
		}
	}
	return firstErr
}

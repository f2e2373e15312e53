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

// Package filterdist fans a single Session's decoded messages out to
// multiple independent consumers, each with its own Filter, and recomputes
// the single combined Filter the Session should actually request from the
// receiver whenever a client joins, leaves, or changes what it wants.
package filterdist

import (
	"sort"

	"github.com/ADSBexchange/beast-splitter/internal/syncutil"

	beastsplitter "github.com/ADSBexchange/beast-splitter"
)

// Handle identifies a registered client for later UpdateClientFilter /
// RemoveClient calls.
type Handle uint64

// MessageNotifier receives messages a client's filter accepts. It is
// invoked synchronously from whatever goroutine calls Broadcast and must
// not block.
type MessageNotifier func(beastsplitter.Message)

// FilterNotifier is called with the recomputed combined upstream filter,
// so the caller can push it down to the Session (SetFilter). It is called
// on every AddClient and RemoveClient and on every UpdateClientFilter that
// changes a client's filter, whether or not the combined filter changed.
type FilterNotifier func(beastsplitter.Filter)

type client struct {
	notifier MessageNotifier
	filter   beastsplitter.Filter
}

// Distributor is the Filter Distributor: it owns the client registry and
// recomputes the combined upstream filter on every membership or filter
// change, mirroring the original collaborator's FilterDistributor.
type Distributor struct {
	mu             syncutil.Mutex
	nextHandle     Handle
	clients        map[Handle]*client
	filterNotifier FilterNotifier
}

// New returns an empty Distributor.
func New() *Distributor {
	return &Distributor{clients: make(map[Handle]*client)}
}

// SetFilterNotifier installs the callback invoked whenever the combined
// upstream filter is recomputed. It is not retroactively called for the current
// filter; call it once up front with whatever AddClient's first call
// already reported, if needed.
func (d *Distributor) SetFilterNotifier(fn FilterNotifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.filterNotifier = fn
}

// AddClient registers notifier under initialFilter and returns a handle
// for later reference. The combined upstream filter is recomputed and
// reported to the installed FilterNotifier, even if it did not change.
func (d *Distributor) AddClient(notifier MessageNotifier, initialFilter beastsplitter.Filter) Handle {
	d.mu.Lock()
	defer d.mu.Unlock()

	h := d.nextHandle
	d.nextHandle++
	d.clients[h] = &client{notifier: notifier, filter: initialFilter}
	d.notifyUpstreamLocked()
	return h
}

// UpdateClientFilter replaces the filter registered for h. A call for an
// unknown or already-removed handle is a silent no-op, matching the
// original collaborator's tolerance of stale handles.
func (d *Distributor) UpdateClientFilter(h Handle, newFilter beastsplitter.Filter) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.clients[h]
	if !ok || c.filter == newFilter {
		return
	}
	c.filter = newFilter
	d.notifyUpstreamLocked()
}

// RemoveClient deregisters h. A call for an unknown or already-removed
// handle is a silent no-op.
func (d *Distributor) RemoveClient(h Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.clients[h]; !ok {
		return
	}
	delete(d.clients, h)
	d.notifyUpstreamLocked()
}

// Broadcast delivers msg to every client whose filter currently accepts
// it, in ascending handle order (i.e. registration order), synchronously
// on the calling goroutine.
func (d *Distributor) Broadcast(msg beastsplitter.Message) {
	d.mu.Lock()
	handles := make([]Handle, 0, len(d.clients))
	for h := range d.clients {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })

	type delivery struct {
		notifier MessageNotifier
	}
	deliveries := make([]delivery, 0, len(handles))
	for _, h := range handles {
		c := d.clients[h]
		if c.filter.Matches(msg) {
			deliveries = append(deliveries, delivery{notifier: c.notifier})
		}
	}
	d.mu.Unlock()

	for _, del := range deliveries {
		del.notifier(msg)
	}
}

// notifyUpstreamLocked recomputes the combined filter across all
// registered clients and reports it if a notifier is installed. Callers
// must hold d.mu.
func (d *Distributor) notifyUpstreamLocked() {
	if d.filterNotifier == nil {
		return
	}

	var combined beastsplitter.Filter
	for _, c := range d.clients {
		combined = beastsplitter.Combine(combined, c.filter)
	}
	d.filterNotifier(combined)
}

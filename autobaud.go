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

// defaultAutobaudRates is the preference order tried when no fixed baud
// rate is configured, fastest first.
var defaultAutobaudRates = []int{3_000_000, 1_000_000, 921_600, 230_400, 115_200}

const (
	autobaudBaseInterval = time.Second
	autobaudMaxInterval  = 16 * time.Second

	// autobaudGoodSyncsNeeded is how many consecutive dispatched frames
	// at a candidate rate convince the controller the rate is correct.
	autobaudGoodSyncsNeeded = 50

	// autobaudRestartAfterBadSyncs honors the named constant from the
	// design notes over the larger value the legacy implementation
	// happened to use at runtime.
	autobaudRestartAfterBadSyncs = 20
)

// autobaudState is the Auto-Baud Controller's state, owned exclusively by
// the Session's loop goroutine.
type autobaudState struct {
	rates    []int
	index    int
	interval time.Duration

	autobauding bool
	goodSync    int
	badSync     int
}

// newAutobaudState builds the controller's starting state: a single-rate,
// never-autobauding state if fixedBaud is nonzero, otherwise the standard
// rate list.
func newAutobaudState(fixedBaud int) autobaudState {
	if fixedBaud != 0 {
		return autobaudState{rates: []int{fixedBaud}, interval: autobaudBaseInterval}
	}
	rates := make([]int, len(defaultAutobaudRates))
	copy(rates, defaultAutobaudRates)
	return autobaudState{rates: rates, interval: autobaudBaseInterval, autobauding: true}
}

// reset returns the controller to autobauding at the head of its rate list
// with the base interval, as happens after an I/O error forces a
// reconnect.
func (a *autobaudState) reset() {
	a.index = 0
	a.interval = autobaudBaseInterval
	a.goodSync = 0
	a.badSync = 0
	if len(a.rates) > 1 {
		a.autobauding = true
	}
}

// currentRate returns the baud rate the controller currently wants applied.
func (a *autobaudState) currentRate() int {
	return a.rates[a.index]
}

// armsTimer reports whether the controller needs a timer at all: with a
// single configured rate, start() never arms one.
func (a *autobaudState) armsTimer() bool {
	return a.autobauding && len(a.rates) > 1
}

// advance moves to the next candidate rate, doubling interval (capped at
// autobaudMaxInterval) whenever the list wraps. It returns the new
// interval the caller should rearm its timer with.
func (a *autobaudState) advance() time.Duration {
	a.index++
	if a.index >= len(a.rates) {
		a.index = 0
		a.interval *= 2
		if a.interval > autobaudMaxInterval {
			a.interval = autobaudMaxInterval
		}
	}
	return a.interval
}

// onLostSync applies the bad-sync bookkeeping the controller does on every
// framing failure, and reports whether accumulated failures should force a
// restart of autobauding on an already-pinned rate.
func (a *autobaudState) onLostSync() (shouldRestart bool) {
	if a.goodSync < 5 {
		a.badSync++
	} else {
		a.badSync = 0
	}
	a.goodSync = 0

	if !a.autobauding && len(a.rates) > 1 && a.badSync > autobaudRestartAfterBadSyncs {
		a.autobauding = true
		return true
	}
	return false
}

// onFrameDispatched applies the good-sync bookkeeping done on every
// successfully dispatched frame, and reports whether the controller just
// pinned the current rate (autobauding transitioned true -> false).
func (a *autobaudState) onFrameDispatched() (justPinned bool) {
	a.goodSync++
	if a.goodSync >= autobaudGoodSyncsNeeded {
		a.goodSync = autobaudGoodSyncsNeeded
		a.badSync = 0

		if a.autobauding {
			a.autobauding = false
			a.badSync = 0
			return true
		}
	}
	return false
}

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

// Package discovery enumerates candidate serial device nodes so
// cmd/beastsplitterd can pick a receiver's device path when none is
// configured explicitly. It has no notion of what a Beast or Radarcape
// receiver looks like on the USB bus — unlike the teacher's detector,
// which matches specific PN532 adapter VID:PIDs, a receiver's identity is
// only ever established by the protocol itself, so this package just
// lists what is plausibly a serial adapter and lets the operator or the
// Session's own autodetection sort out what is actually attached.
package discovery

import "context"

// Port describes one candidate serial device node, with whatever USB
// metadata could be recovered for it.
type Port struct {
	Path         string
	Name         string
	VIDPID       string
	Manufacturer string
	Product      string
	SerialNumber string
}

// List returns the serial device nodes currently present on the system.
// Implementations are platform-specific; see ports_linux.go and
// ports_other.go.
func List(ctx context.Context) ([]Port, error) {
	return listPorts(ctx)
}

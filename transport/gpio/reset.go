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

// Package gpio provides an optional receiver reset/power-enable line.
// Some Radarcape-family boards wedge in a way a serial reconnect cannot
// recover from; toggling a GPIO line wired to the board's reset pin before
// reopening the serial device clears that condition. Wiring one up is
// opt-in: a Session with no ResetLine configured never touches this
// package.
package gpio

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// ResetLine drives a single GPIO pin low-then-high to power-cycle an
// attached receiver.
type ResetLine struct {
	pin gpio.PinIO

	// AssertLevel is the level that holds the receiver in reset;
	// deasserting returns the pin to the opposite level. Most reset
	// circuits are active-low.
	AssertLevel gpio.Level

	// HoldDuration is how long the pin is held at AssertLevel before
	// being released.
	HoldDuration time.Duration
}

// Open initializes the periph.io host drivers (idempotent across multiple
// ResetLines in the same process) and looks up pinName, defaulting to an
// active-low reset held for 100ms.
func Open(pinName string) (*ResetLine, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initialize gpio host drivers: %w", err)
	}

	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("gpio pin %q not found", pinName)
	}

	return &ResetLine{
		pin:          pin,
		AssertLevel:  gpio.Low,
		HoldDuration: 100 * time.Millisecond,
	}, nil
}

// Pulse asserts the reset line, holds it for HoldDuration, then releases
// it, leaving the pin driven at the deasserted level.
func (r *ResetLine) Pulse() error {
	deassert := gpio.High
	if r.AssertLevel == gpio.High {
		deassert = gpio.Low
	}

	if err := r.pin.Out(r.AssertLevel); err != nil {
		return fmt.Errorf("assert reset: %w", err)
	}

	time.Sleep(r.HoldDuration)

	if err := r.pin.Out(deassert); err != nil {
		return fmt.Errorf("release reset: %w", err)
	}

	return nil
}

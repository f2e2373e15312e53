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

package registry

import (
	"testing"

	beastsplitter "github.com/ADSBexchange/beast-splitter"
	"github.com/ADSBexchange/beast-splitter/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoSessionConfig() *config.Config {
	return &config.Config{
		Sessions: []config.Session{
			{Name: "front", Device: "/dev/ttyUSB0"},
			{Name: "back", Device: "/dev/ttyUSB1"},
		},
	}
}

func TestNewBuildsOneEntryPerSession(t *testing.T) {
	t.Parallel()

	r, err := New(twoSessionConfig())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"front", "back"}, r.Names())
	require.NotNil(t, r.Get("front"))
	require.NotNil(t, r.Get("back"))
	assert.Nil(t, r.Get("nonexistent"))
}

func TestNewWiresDistributorAndStatusMonitor(t *testing.T) {
	t.Parallel()

	r, err := New(twoSessionConfig())
	require.NoError(t, err)

	entry := r.Get("front")
	require.NotNil(t, entry.Dist)
	require.NotNil(t, entry.Status)

	// The Status Monitor's HandleMessage is already registered against the
	// distributor as a status-only client; broadcasting a STATUS frame
	// should move its health off the "not applicable" initial report.
	entry.Dist.Broadcast(beastsplitter.Message{
		Type:    beastsplitter.StatusFrame,
		Payload: []byte{0x00, 0x00, 0x00},
	})
	report := entry.Status.Health()
	assert.Equal(t, "Not in GPS timestamp mode", report.Message)
}

func TestNewFailsOnUnresolvableGPIOPin(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		Sessions: []config.Session{
			{Name: "front", Device: "/dev/ttyUSB0", GPIOResetPin: "GPIOZZZ_NOT_A_REAL_PIN"},
		},
	}

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestCloseAllStopsEveryStatusMonitor(t *testing.T) {
	t.Parallel()

	r, err := New(twoSessionConfig())
	require.NoError(t, err)

	// Neither session was started, so CloseAll's Session.Close calls are
	// no-ops; what this exercises is that every entry's Status Monitor
	// timer gets stopped exactly once without panicking.
	assert.NoError(t, r.CloseAll())
}

func TestSessionFilterOrDefaultAppliedAtConstruction(t *testing.T) {
	t.Parallel()

	custom := config.Filter{ReceiveDF: []int{17}}
	r, err := New(&config.Config{
		Sessions: []config.Session{{Name: "front", Device: "/dev/ttyUSB0", Filter: &custom}},
	})
	require.NoError(t, err)
	require.NotNil(t, r.Get("front"))
}

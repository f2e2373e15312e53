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

import (
	"context"
	"testing"

	"github.com/ADSBexchange/beast-splitter/internal/testfake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSettingsRadarcapeFollowsDetectorNotMerge(t *testing.T) {
	t.Parallel()

	s := newSession("/dev/fake0", 0, Settings{Radarcape: On()}, Filter{}, nil, testfake.RealClock{})
	s.detect = newAutodetectState(nil) // autodetector still says UNKNOWN/false

	resolved := s.resolveSettings()
	assert.False(t, resolved.Radarcape, "the live detector, not the fixed knob, decides Radarcape on the wire")
}

func TestResolveSettingsMergesFixedOverFilterDerived(t *testing.T) {
	t.Parallel()

	s := newSession("/dev/fake0", 0, Settings{ModeAC: On()}, Filter{ReceiveModeAC: false}, nil, testfake.RealClock{})

	resolved := s.resolveSettings()
	assert.True(t, resolved.ModeAC, "a fixed knob wins over what the filter would otherwise derive")
}

func TestPropagateSettingsNoopWithoutOpenPort(t *testing.T) {
	t.Parallel()

	s := newSession("/dev/fake0", 0, Settings{}, Filter{}, nil, testfake.RealClock{})
	s.propagateSettings() // must not panic with s.port == nil
	assert.Nil(t, s.loopErr)
}

func TestPropagateSettingsWritesEncodedMessage(t *testing.T) {
	t.Parallel()

	port := testfake.NewPort("/dev/fake0", 3000000)
	s := newSession("/dev/fake0", 0, Settings{}, Filter{}, nil, testfake.RealClock{})
	s.port = port
	s.runCtx = context.Background()

	s.propagateSettings()

	require.NotEmpty(t, port.Written())
	assert.Nil(t, s.loopErr)
}

func TestPropagateSettingsRecordsLoopErrOnPersistentWriteFailure(t *testing.T) {
	t.Parallel()

	port := testfake.NewPort("/dev/fake0", 3000000)
	require.NoError(t, port.Close())

	s := newSession("/dev/fake0", 0, Settings{}, Filter{}, nil, testfake.RealClock{})
	s.port = port
	s.runCtx = context.Background()

	s.propagateSettings()

	require.Error(t, s.loopErr)
}

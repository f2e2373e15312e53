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

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores the package-level flag variables to their zero value
// after a test mutates them, since flag.StringVar/BoolVar bind them once at
// package init and tests otherwise leak state into one another.
func resetFlags(t *testing.T) {
	t.Helper()
	flagConfigPath, flagDevice, flagDebug = "", "", false
	t.Cleanup(func() { flagConfigPath, flagDevice, flagDebug = "", "", false })
}

func TestLoadConfigWithoutConfigPathUsesSingleDefaultSession(t *testing.T) {
	resetFlags(t)

	cfg, err := loadConfig(context.Background())
	require.NoError(t, err)
	require.Len(t, cfg.Sessions, 1)
	assert.Equal(t, "default", cfg.Sessions[0].Name)
}

func TestLoadConfigDeviceFlagOverridesDefaultSession(t *testing.T) {
	resetFlags(t)
	flagDevice = "/dev/ttyFAKE0"

	cfg, err := loadConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyFAKE0", cfg.Sessions[0].Device)
}

func TestLoadConfigReadsConfigFile(t *testing.T) {
	resetFlags(t)

	path := filepath.Join(t.TempDir(), "beastsplitter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sessions:\n  - name: front\n    device: /dev/ttyUSB0\n"), 0o600))
	flagConfigPath = path

	cfg, err := loadConfig(context.Background())
	require.NoError(t, err)
	require.Len(t, cfg.Sessions, 1)
	assert.Equal(t, "front", cfg.Sessions[0].Name)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Sessions[0].Device)
}

func TestLoadConfigDeviceFlagOverridesEveryFileSession(t *testing.T) {
	resetFlags(t)

	path := filepath.Join(t.TempDir(), "beastsplitter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"sessions:\n  - name: front\n    device: /dev/ttyUSB0\n  - name: back\n    device: /dev/ttyUSB1\n",
	), 0o600))
	flagConfigPath = path
	flagDevice = "/dev/ttyFAKE0"

	cfg, err := loadConfig(context.Background())
	require.NoError(t, err)
	require.Len(t, cfg.Sessions, 2)
	for _, s := range cfg.Sessions {
		assert.Equal(t, "/dev/ttyFAKE0", s.Device)
	}
}

func TestLoadConfigPropagatesFileErrors(t *testing.T) {
	resetFlags(t)
	flagConfigPath = filepath.Join(t.TempDir(), "does-not-exist.yaml")

	_, err := loadConfig(context.Background())
	assert.Error(t, err)
}

func TestMainWithExitCodeReturnsNonZeroOnLoadError(t *testing.T) {
	resetFlags(t)
	flagConfigPath = filepath.Join(t.TempDir(), "does-not-exist.yaml")

	assert.Equal(t, 1, mainWithExitCode())
}

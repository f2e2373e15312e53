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

//go:build !linux

package discovery

import (
	"context"
	"path/filepath"

	"go.bug.st/serial"
)

// listPorts falls back to go.bug.st/serial's own platform enumeration on
// non-Linux systems, where sysfs-style USB metadata isn't available.
func listPorts(ctx context.Context) ([]Port, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ports := make([]Port, 0, len(names))
	for _, name := range names {
		ports = append(ports, Port{Path: name, Name: filepath.Base(name)})
	}
	return ports, nil
}

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

package gpio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOpenUnknownPin exercises the no-hardware path: on a machine with no
// registered GPIO pins (any CI runner, any operator's laptop), every pin
// name is unknown and Open must fail cleanly rather than panic or hang.
// (When no reset pin is configured at all, gpio.Open is never called.)
// This test confirms the package's own error handling when it is called
// with a name that cannot resolve.
func TestOpenUnknownPin(t *testing.T) {
	t.Parallel()

	_, err := Open("GPIOZZZ_NOT_A_REAL_PIN")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GPIOZZZ_NOT_A_REAL_PIN")
}

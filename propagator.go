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

import "github.com/ADSBexchange/beast-splitter/internal/retry"

// resolveSettings computes the fully-decided ResolvedSettings currently in
// effect: the operator's fixed knobs take precedence per-knob over the
// filter-derived defaults, with any knob neither side set falling back to
// off. Radarcape is then overridden from the autodetector's own state
// rather than the merge, since the autodetector (fixed config or the
// observed stream) is the sole authority on receiver type — Settings's
// own Radarcape field only ever seeds that authority at construction.
func (s *Session) resolveSettings() ResolvedSettings {
	resolved := s.fixedSettings.Merge(SettingsFromFilter(s.filter)).ResolveDefaults()
	resolved.Radarcape = s.detect.receiverType == ReceiverRadarcape
	return resolved
}

// propagateSettings writes the currently-resolved settings message to the
// open port, retrying transient write failures a few times before giving
// up. Writes are fire-and-forget from every caller's perspective; a
// failure that survives the retry is recorded on s.loopErr so the
// session's select loop notices it on its next iteration and falls back
// to the reconnect path, exactly as any other transport failure would.
func (s *Session) propagateSettings() {
	if s.port == nil {
		return
	}
	msg := s.resolveSettings().Encode()
	err := retry.Do(s.runCtx, retry.DefaultConfig(), IsRetryable, func() error {
		if err := s.port.Write(msg); err != nil {
			return NewSessionError("write settings", s.path, err, ErrorTypeTransient)
		}
		return nil
	})
	if err != nil {
		s.loopErr = err
	}
}

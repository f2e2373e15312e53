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

// Package logging provides the structured debug/trace logger shared by every
// Session. It wraps log/slog rather than printing directly so callers can
// attach per-session fields (device path, receiver type) without threading
// a logger object through every function signature.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
)

// debugEnabled gates Debugf/Debugln console output. It is process-global,
// matching the env-var toggle a long-running beastsplitterd is started with.
var debugEnabled atomic.Bool

func init() {
	if os.Getenv("BEASTSPLITTER_DEBUG") != "" || os.Getenv("DEBUG") != "" {
		debugEnabled.Store(true)
	}
}

// SetDebugEnabled allows programmatic control of debug logging, e.g. from a
// SIGUSR1 handler or a config reload, without restarting the process.
func SetDebugEnabled(enabled bool) {
	debugEnabled.Store(enabled)
}

// DebugEnabled reports whether verbose per-frame logging is currently active.
func DebugEnabled() bool {
	return debugEnabled.Load()
}

// Logger is a thin, allocation-light facade over *slog.Logger, tagged with
// the component that created it. Sessions hold one each and pass their
// device path as a field on every line they log.
type Logger struct {
	base *slog.Logger
}

// New builds a Logger that writes to stderr as text, mirroring the plain
// timestamped lines the original collector wrote to its session log.
func New(component string) *Logger {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	return &Logger{base: slog.New(h).With("component", component)}
}

// With returns a Logger that prepends the given key/value pairs to every
// subsequent line, used to scope a Logger to one device path.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{base: l.base.With(args...)}
}

// Info logs an operational message: session start/stop, baud change,
// receiver type detected.
func (l *Logger) Info(msg string, args ...any) {
	l.base.Info(msg, args...)
}

// Warn logs a recoverable condition: lost sync, retryable transport error.
func (l *Logger) Warn(msg string, args ...any) {
	l.base.Warn(msg, args...)
}

// Error logs a condition that ended or is about to end the session.
func (l *Logger) Error(msg string, args ...any) {
	l.base.Error(msg, args...)
}

// Debugf logs a formatted per-frame or per-byte trace line at Debug level.
// It is dropped while debug logging is disabled (see SetDebugEnabled) and
// written to stderr like any other line while it is enabled.
func (l *Logger) Debugf(format string, args ...any) {
	if !debugEnabled.Load() {
		return
	}
	l.base.Log(context.Background(), slog.LevelDebug, fmt.Sprintf(format, args...))
}

// Debugln is the Debugf sibling for callers building a message from
// Sprint-style arguments rather than a format string.
func (l *Logger) Debugln(args ...any) {
	if !debugEnabled.Load() {
		return
	}
	l.base.Log(context.Background(), slog.LevelDebug, fmt.Sprint(args...))
}

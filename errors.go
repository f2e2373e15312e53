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
	"errors"
	"fmt"
	"io"
	"runtime"
	"syscall"
)

// Error categories for session-level error handling and retry logic.
var (
	// Session lifecycle errors.
	ErrSessionClosed  = errors.New("session is closed")
	ErrAlreadyStarted = errors.New("session already started")

	// Transport errors - potentially retryable.
	ErrTransportOpen  = errors.New("failed to open serial device")
	ErrTransportRead  = errors.New("serial read failed")
	ErrTransportWrite = errors.New("serial write failed")

	// Framing errors - non-fatal, drive the auto-baud controller.
	ErrLostSync     = errors.New("lost frame sync")
	ErrInvalidFrame = errors.New("invalid frame")

	// Configuration errors - not retryable.
	ErrDeviceNotFound       = errors.New("device not found")
	ErrUnsupportedReceiver  = errors.New("unsupported receiver type")
	ErrInvalidBaudRate      = errors.New("invalid baud rate")
	ErrNoMessageNotifierSet = errors.New("no message notifier installed")
)

// ErrorType represents the category of an error for retry/reconnect logic.
type ErrorType int

const (
	// ErrorTypeTransient indicates a potentially retryable, recoverable error.
	ErrorTypeTransient ErrorType = iota
	// ErrorTypePermanent indicates a non-retryable configuration error.
	ErrorTypePermanent
	// ErrorTypeTimeout indicates a timeout-driven, expected condition.
	ErrorTypeTimeout
)

// SessionError wraps a session-level failure with the operation and device
// path that produced it, mirroring the teacher's TransportError shape.
type SessionError struct {
	Err       error
	Op        string
	Path      string
	Type      ErrorType
	Retryable bool
}

func (e *SessionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// NewSessionError builds a SessionError with the retryability implied by errType.
func NewSessionError(op, path string, err error, errType ErrorType) *SessionError {
	return &SessionError{
		Op:        op,
		Path:      path,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient || errType == ErrorTypeTimeout,
	}
}

// IsRetryable returns true if the error is potentially retryable by the
// Session's internal retry helper (see internal/retry), as opposed to
// requiring the full close-and-reconnect path.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var se *SessionError
	if errors.As(err, &se) {
		return se.Retryable
	}

	switch {
	case errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrTransportOpen):
		return true
	default:
		return false
	}
}

// IsFatal returns true if the error indicates the serial device is gone and
// the I/O Session Manager should stop reading and fall back to the
// reconnect timer rather than retrying immediately.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var se *SessionError
	if errors.As(err, &se) {
		return se.Type == ErrorTypePermanent
	}

	if isDeviceGoneError(err) {
		return true
	}

	switch {
	case errors.Is(err, ErrSessionClosed),
		errors.Is(err, ErrDeviceNotFound),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrClosedPipe):
		return true
	default:
		return false
	}
}

// Windows error codes for device disconnection detection. Defined here
// because they are not available as syscall constants on non-Windows
// platforms, matching the teacher's approach in errors.go.
const (
	errAccessDenied syscall.Errno = 5   // ERROR_ACCESS_DENIED
	errGenFailure   syscall.Errno = 31  // ERROR_GEN_FAILURE
	errNoSuchDevice syscall.Errno = 433 // ERROR_NO_SUCH_DEVICE
)

// isDeviceGoneError checks for OS-level errors indicating the serial device
// has disappeared, e.g. a USB-serial adapter unplugged mid-read.
func isDeviceGoneError(err error) bool {
	if err == nil {
		return false
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		//nolint:exhaustive // only specific device-gone errors are meaningful here
		switch errno {
		case syscall.EIO, syscall.ENXIO, syscall.ENODEV:
			return true
		}

		if runtime.GOOS == "windows" {
			//nolint:exhaustive // only specific device-gone errors are meaningful here
			switch errno {
			case errAccessDenied, errGenFailure, errNoSuchDevice:
				return true
			}
		}
	}

	return false
}

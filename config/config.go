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

// Package config loads the YAML file describing the serial device sessions
// cmd/beastsplitterd should run. One file can describe more than one
// session (several receivers on one host), each with its own device path,
// baud policy, fixed settings overrides, and starting filter.
package config

import (
	"fmt"
	"os"
	"time"

	beastsplitter "github.com/ADSBexchange/beast-splitter"
	"gopkg.in/yaml.v3"
)

// Settings mirrors beastsplitter.Settings for YAML purposes: every knob is
// an optional bool (nil = "let the filter decide"), exactly the tri-valued
// contract the core type expresses with *bool.
type Settings struct {
	FilterDF11DF17Only *bool `yaml:"filter_df11_df17_only,omitempty"`
	CRCDisable         *bool `yaml:"crc_disable,omitempty"`
	MaskDF0DF4DF5      *bool `yaml:"mask_df0_df4_df5,omitempty"`
	FECDisable         *bool `yaml:"fec_disable,omitempty"`
	ModeAC             *bool `yaml:"mode_ac,omitempty"`
	BinaryFormat       *bool `yaml:"binary_format,omitempty"`
	Radarcape          *bool `yaml:"radarcape,omitempty"`
	GPSTimestamps      *bool `yaml:"gps_timestamps,omitempty"`
}

// ToSettings converts the YAML form to the core beastsplitter.Settings.
func (s Settings) ToSettings() beastsplitter.Settings {
	return beastsplitter.Settings{
		FilterDF11DF17Only: s.FilterDF11DF17Only,
		CRCDisable:         s.CRCDisable,
		MaskDF0DF4DF5:      s.MaskDF0DF4DF5,
		FECDisable:         s.FECDisable,
		ModeAC:             s.ModeAC,
		BinaryFormat:       s.BinaryFormat,
		Radarcape:          s.Radarcape,
		GPSTimestamps:      s.GPSTimestamps,
	}
}

// Filter mirrors beastsplitter.Filter for YAML purposes. ReceiveDF is a
// sparse list of downlink format numbers rather than the core type's
// [32]bool, since a config author should not have to write out 32 flags to
// say "I want DF 17 and 18".
type Filter struct {
	ReceiveDF            []int `yaml:"receive_df,omitempty"`
	ReceiveModeAC        bool  `yaml:"receive_mode_ac"`
	ReceiveBadCRC        bool  `yaml:"receive_bad_crc"`
	ReceiveFEC           bool  `yaml:"receive_fec"`
	ReceiveStatus        bool  `yaml:"receive_status"`
	ReceiveGPSTimestamps bool  `yaml:"receive_gps_timestamps"`
}

// ToFilter converts the YAML form to the core beastsplitter.Filter,
// ignoring any out-of-range DF numbers rather than failing the whole load.
func (f Filter) ToFilter() beastsplitter.Filter {
	var out beastsplitter.Filter
	for _, df := range f.ReceiveDF {
		if df >= 0 && df < len(out.ReceiveDF) {
			out.ReceiveDF[df] = true
		}
	}
	out.ReceiveModeAC = f.ReceiveModeAC
	out.ReceiveBadCRC = f.ReceiveBadCRC
	out.ReceiveFEC = f.ReceiveFEC
	out.ReceiveStatus = f.ReceiveStatus
	out.ReceiveGPSTimestamps = f.ReceiveGPSTimestamps
	return out
}

// DefaultFilter is the filter a session starts with when the config omits
// one entirely: every downlink format, status frames, and GPS timestamps
// when available, but no bad-CRC or FEC-corrected frames.
func DefaultFilter() Filter {
	df := make([]int, 32)
	for i := range df {
		df[i] = i
	}
	return Filter{
		ReceiveDF:            df,
		ReceiveModeAC:        true,
		ReceiveBadCRC:        false,
		ReceiveFEC:           false,
		ReceiveStatus:        true,
		ReceiveGPSTimestamps: true,
	}
}

// Session describes one serial device session: its device path, baud
// policy, fixed settings overrides, starting filter, and any interval
// overrides the operator wants over the library's built-in defaults.
type Session struct {
	// Name identifies this session in logs and in the Registry's session
	// map; it must be unique within a Config.
	Name string `yaml:"name"`

	// Device is the serial device path, e.g. /dev/ttyUSB0. cmd/beastsplitterd
	// auto-picks one via the discovery package only when it runs without a
	// config file; an empty Device loaded from a file is not auto-picked.
	Device string `yaml:"device"`

	// FixedBaud pins the baud rate; 0 (the default) autobauds across the
	// standard rate list.
	FixedBaud int `yaml:"fixed_baud"`

	Settings Settings `yaml:"settings"`
	Filter   *Filter  `yaml:"filter,omitempty"`

	// ReconnectInterval overrides the library's default wait after a
	// transport failure before reopening the device. Zero means use the
	// built-in default.
	ReconnectInterval time.Duration `yaml:"reconnect_interval,omitempty"`

	// DetectTimeout overrides how long the Receiver-Type Autodetector
	// waits for a STATUS frame before resolving to BEAST. Zero means use
	// the built-in default.
	DetectTimeout time.Duration `yaml:"detect_timeout,omitempty"`

	// StatusTimeout overrides the Status Monitor's GPS-health timeout.
	// Zero means use statusmon.DefaultTimeoutInterval.
	StatusTimeout time.Duration `yaml:"status_timeout,omitempty"`

	// GPIOResetPin names a periph.io GPIO pin wired to the receiver's
	// reset line; empty (the default) means no reset line is configured.
	GPIOResetPin string `yaml:"gpio_reset_pin,omitempty"`
}

// FilterOrDefault returns the session's configured filter, or DefaultFilter
// if none was set.
func (s Session) FilterOrDefault() Filter {
	if s.Filter != nil {
		return *s.Filter
	}
	return DefaultFilter()
}

// Config is the top-level YAML document cmd/beastsplitterd loads.
type Config struct {
	// LogLevel gates verbose per-frame logging: "debug" enables it, matching
	// -debug and BEASTSPLITTER_DEBUG/DEBUG; any other value (including the
	// default "info") leaves it off. internal/logging has no separate
	// warn/error suppression, so those values are accepted but currently
	// equivalent to "info".
	LogLevel string `yaml:"log_level"`

	Sessions []Session `yaml:"sessions"`
}

// DefaultConfig returns a single-session, autobauding, auto-discovered
// configuration, matching the zero-configuration case of "plug in a
// receiver and run the daemon".
func DefaultConfig() *Config {
	filter := DefaultFilter()
	return &Config{
		LogLevel: "info",
		Sessions: []Session{
			{
				Name:   "default",
				Device: "",
				Filter: &filter,
			},
		},
	}
}

// Load reads and parses the YAML configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied config path
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks the structural constraints Load can't express through
// YAML tags alone: unique, non-empty session names.
func (c *Config) Validate() error {
	if len(c.Sessions) == 0 {
		return fmt.Errorf("no sessions configured")
	}

	seen := make(map[string]bool, len(c.Sessions))
	for _, s := range c.Sessions {
		if s.Name == "" {
			return fmt.Errorf("session with empty name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate session name %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

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

// Settings is the tri-valued set of receiver knobs at the "fixed"
// configuration level: each field is nil when the operator has expressed
// no preference, letting a filter-derived default fill it in, or a
// pointer to an explicit on/off choice otherwise.
type Settings struct {
	FilterDF11DF17Only *bool
	CRCDisable         *bool
	MaskDF0DF4DF5      *bool
	FECDisable         *bool
	ModeAC             *bool
	BinaryFormat       *bool
	Radarcape          *bool
	GPSTimestamps      *bool
}

// ResolvedSettings is Settings with every knob fully decided, ready for
// encoding to the wire. It is the only form the Settings Encoder accepts.
type ResolvedSettings struct {
	FilterDF11DF17Only bool
	CRCDisable         bool
	MaskDF0DF4DF5      bool
	FECDisable         bool
	ModeAC             bool
	BinaryFormat       bool
	Radarcape          bool
	GPSTimestamps      bool
}

func boolPtr(b bool) *bool { return &b }

// On and Off build an explicit tri-valued knob setting, to keep call sites
// like Settings{CRCDisable: On()} readable instead of repeating boolPtr.
func On() *bool  { return boolPtr(true) }
func Off() *bool { return boolPtr(false) }

// Merge implements `fixed | derived`: for each knob, the fixed value wins
// if the operator set it explicitly, otherwise the filter-derived value is
// used. The result may still have unset knobs if both fixed and derived
// left them nil; callers resolve those with ResolveDefaults.
func (fixed Settings) Merge(derived Settings) Settings {
	return Settings{
		FilterDF11DF17Only: mergeKnob(fixed.FilterDF11DF17Only, derived.FilterDF11DF17Only),
		CRCDisable:         mergeKnob(fixed.CRCDisable, derived.CRCDisable),
		MaskDF0DF4DF5:      mergeKnob(fixed.MaskDF0DF4DF5, derived.MaskDF0DF4DF5),
		FECDisable:         mergeKnob(fixed.FECDisable, derived.FECDisable),
		ModeAC:             mergeKnob(fixed.ModeAC, derived.ModeAC),
		BinaryFormat:       mergeKnob(fixed.BinaryFormat, derived.BinaryFormat),
		Radarcape:          mergeKnob(fixed.Radarcape, derived.Radarcape),
		GPSTimestamps:      mergeKnob(fixed.GPSTimestamps, derived.GPSTimestamps),
	}
}

func mergeKnob(fixed, derived *bool) *bool {
	if fixed != nil {
		return fixed
	}
	return derived
}

// ResolveDefaults turns any remaining unset knob into an explicit off,
// producing a fully-decided ResolvedSettings ready for the encoder.
func (s Settings) ResolveDefaults() ResolvedSettings {
	return ResolvedSettings{
		FilterDF11DF17Only: resolveKnob(s.FilterDF11DF17Only),
		CRCDisable:         resolveKnob(s.CRCDisable),
		MaskDF0DF4DF5:      resolveKnob(s.MaskDF0DF4DF5),
		FECDisable:         resolveKnob(s.FECDisable),
		ModeAC:             resolveKnob(s.ModeAC),
		BinaryFormat:       resolveKnob(s.BinaryFormat),
		Radarcape:          resolveKnob(s.Radarcape),
		GPSTimestamps:      resolveKnob(s.GPSTimestamps),
	}
}

func resolveKnob(v *bool) bool {
	return v != nil && *v
}

// SettingsFromFilter derives the default Settings a Filter implies, the
// inverse of ResolvedSettings.ToFilter. It mirrors the original
// collaborator's `Settings(const modes::Filter&)` constructor: a filter
// that wants exactly DF11/17/18 collapses to filter_df11_df17_only, and a
// filter that wants everything but DF0/4/5 collapses to mask_df0_df4_df5;
// anything else resolving to "receive everything" falls through with both
// knobs off.
func SettingsFromFilter(f Filter) Settings {
	only111718 := true
	for i, want := range f.ReceiveDF {
		if want && i != 11 && i != 17 && i != 18 {
			only111718 = false
			break
		}
	}

	maskDF045 := !f.ReceiveDF[0] && !f.ReceiveDF[4] && !f.ReceiveDF[5]

	return Settings{
		FilterDF11DF17Only: boolPtr(only111718),
		CRCDisable:         boolPtr(f.ReceiveBadCRC),
		MaskDF0DF4DF5:      boolPtr(maskDF045),
		FECDisable:         boolPtr(!f.ReceiveFEC),
		ModeAC:             boolPtr(f.ReceiveModeAC),
		GPSTimestamps:      boolPtr(f.ReceiveGPSTimestamps),
	}
}

// ToFilter is the inverse mapping used to seed a client's default filter
// from a resolved Settings value, e.g. when a Filter Distributor client
// subscribes without specifying a filter of its own.
func (s ResolvedSettings) ToFilter() Filter {
	var f Filter

	if s.FilterDF11DF17Only {
		f.ReceiveDF[11] = true
		f.ReceiveDF[17] = true
		f.ReceiveDF[18] = true
	} else {
		for i := range f.ReceiveDF {
			f.ReceiveDF[i] = true
		}
		if s.MaskDF0DF4DF5 {
			f.ReceiveDF[0] = false
			f.ReceiveDF[4] = false
			f.ReceiveDF[5] = false
		}
	}

	f.ReceiveModeAC = s.ModeAC
	f.ReceiveBadCRC = s.CRCDisable
	f.ReceiveFEC = !s.FECDisable
	f.ReceiveStatus = s.Radarcape
	f.ReceiveGPSTimestamps = s.GPSTimestamps

	return f
}

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

//go:build linux

package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// listPorts walks /sys/class/tty for USB-backed devices (recovering
// vendor/product metadata along the way), then falls back to glob
// patterns for built-in and USB-serial tty nodes.
func listPorts(ctx context.Context) ([]Port, error) {
	var ports []Port

	usbPorts, err := usbTTYPorts()
	if err == nil {
		ports = append(ports, usbPorts...)
	}

	ports = append(ports, globPorts("/dev/ttyS*", "/dev/ttyAMA*")...)

	if len(ports) == 0 {
		ports = globPorts("/dev/ttyUSB*", "/dev/ttyACM*", "/dev/ttyS*", "/dev/ttyAMA*")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return ports, nil
}

func usbTTYPorts() ([]Port, error) {
	const ttyDir = "/sys/class/tty"

	entries, err := os.ReadDir(ttyDir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ttyDir, err)
	}

	var ports []Port
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if port, ok := usbTTYPort(ttyDir, entry.Name()); ok {
			ports = append(ports, port)
		}
	}
	return ports, nil
}

func usbTTYPort(ttyDir, name string) (Port, bool) {
	devicePath := filepath.Join(ttyDir, name, "device")
	if _, err := os.Stat(devicePath); err != nil {
		return Port{}, false
	}

	resolved, err := filepath.EvalSymlinks(devicePath)
	if err != nil || !strings.Contains(resolved, "/usb") {
		return Port{}, false
	}

	port := Port{Path: "/dev/" + name, Name: name}
	readUSBAttributes(&port, resolved)
	return port, true
}

// readUSBAttributes walks up the sysfs device tree from a tty's resolved
// device symlink looking for the USB interface directory carrying
// idVendor/idProduct, since the tty's immediate parent is usually a
// lower-level bus node rather than the USB device itself.
func readUSBAttributes(port *Port, devicePath string) {
	current := devicePath
	for range 10 {
		if readUSBIdentifiers(port, current) {
			return
		}
		parent := filepath.Dir(current)
		if parent == current {
			return
		}
		current = parent
	}
}

func readUSBIdentifiers(port *Port, path string) bool {
	cleanPath := filepath.Clean(path)
	if !strings.HasPrefix(cleanPath, "/sys/") {
		return false
	}

	vid, vidErr := os.ReadFile(filepath.Join(cleanPath, "idVendor")) //nolint:gosec // path rooted under /sys/ above
	pid, pidErr := os.ReadFile(filepath.Join(cleanPath, "idProduct")) //nolint:gosec // path rooted under /sys/ above
	if vidErr != nil || pidErr != nil {
		return false
	}

	port.VIDPID = strings.ToUpper(strings.TrimSpace(string(vid)) + ":" + strings.TrimSpace(string(pid)))
	readUSBDescriptors(port, cleanPath)
	return true
}

func readUSBDescriptors(port *Port, path string) {
	if mfg, err := os.ReadFile(filepath.Join(path, "manufacturer")); err == nil { //nolint:gosec // path rooted under /sys/
		port.Manufacturer = strings.TrimSpace(string(mfg))
	}
	if prod, err := os.ReadFile(filepath.Join(path, "product")); err == nil { //nolint:gosec // path rooted under /sys/
		port.Product = strings.TrimSpace(string(prod))
	}
	if serial, err := os.ReadFile(filepath.Join(path, "serial")); err == nil { //nolint:gosec // path rooted under /sys/
		port.SerialNumber = strings.TrimSpace(string(serial))
	}
}

func globPorts(patterns ...string) []Port {
	var ports []Port
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, path := range matches {
			if _, err := os.Stat(path); err == nil {
				ports = append(ports, Port{Path: path, Name: filepath.Base(path)})
			}
		}
	}
	return ports
}

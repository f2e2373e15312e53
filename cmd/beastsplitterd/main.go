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
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ADSBexchange/beast-splitter/config"
	"github.com/ADSBexchange/beast-splitter/discovery"
	"github.com/ADSBexchange/beast-splitter/internal/logging"
	"github.com/ADSBexchange/beast-splitter/registry"
)

var (
	flagConfigPath string
	flagDevice     string
	flagDebug      bool
)

func init() {
	flag.StringVar(&flagConfigPath, "config", "", "Path to YAML config file (single auto-discovered session if empty)")
	flag.StringVar(&flagDevice, "device", "", "Override the device path of every configured session")
	flag.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
}

// loadConfig reads -config if given, falling back to a single
// auto-discovered session; -device, if given, overrides every session's
// device path, matching the teacher's single-flag device override.
func loadConfig(ctx context.Context) (*config.Config, error) {
	if flagConfigPath == "" {
		cfg := config.DefaultConfig()
		if flagDevice != "" {
			cfg.Sessions[0].Device = flagDevice
		} else if path, err := autoDiscoverDevice(ctx); err == nil {
			cfg.Sessions[0].Device = path
		}
		return cfg, nil
	}

	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return nil, err
	}
	if flagDevice != "" {
		for i := range cfg.Sessions {
			cfg.Sessions[i].Device = flagDevice
		}
	}
	return cfg, nil
}

// autoDiscoverDevice picks the first serial port discovery.List finds, for
// the zero-configuration "plug in a receiver and run the daemon" case.
func autoDiscoverDevice(ctx context.Context) (string, error) {
	ports, err := discovery.List(ctx)
	if err != nil {
		return "", err
	}
	if len(ports) == 0 {
		return "", fmt.Errorf("no serial devices found")
	}
	return ports[0].Path, nil
}

func run(ctx context.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if flagDebug || cfg.LogLevel == "debug" {
		logging.SetDebugEnabled(true)
	}

	reg, err := registry.New(cfg)
	if err != nil {
		return fmt.Errorf("build session registry: %w", err)
	}
	defer func() {
		if err := reg.CloseAll(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error closing sessions: %v\n", err)
		}
	}()

	if err := reg.StartAll(ctx); err != nil {
		return fmt.Errorf("start sessions: %w", err)
	}

	<-ctx.Done()
	return ctx.Err()
}

func main() {
	flag.Parse()
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		_, _ = fmt.Println("shutting down")
		cancel()
	}()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

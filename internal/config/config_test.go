/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
)

// isolate points Load/Save at a file inside a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(EnvConfigFile, path)
	for _, env := range envByKey {
		t.Setenv(env, "")
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("Load() = %#v, want defaults", cfg)
	}
	if !cfg.Navigation.Wrap {
		t.Fatalf("navigation.wrap should default to true")
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := isolate(t)
	want := Defaults()
	want.General.TelemetryOptIn = true
	want.Navigation.Wrap = false
	want.History.MaxClosedTabs = 7
	want.Logging.Level = "debug"
	if err := Save(want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != want {
		t.Fatalf("Load() = %#v, want %#v", got, want)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := isolate(t)
	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Navigation.Wrap {
		t.Fatalf("wrap defaulted to false for a file without a navigation section")
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.History != Defaults().History {
		t.Fatalf("history = %#v, want defaults", cfg.History)
	}
}

func TestLoadExplicitWrapFalse(t *testing.T) {
	path := isolate(t)
	if err := os.WriteFile(path, []byte("navigation:\n  wrap: false\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Navigation.Wrap {
		t.Fatalf("explicit wrap: false was ignored")
	}
}

func TestLoadReportsParseError(t *testing.T) {
	path := isolate(t)
	if err := os.WriteFile(path, []byte("general: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg != Defaults() {
		t.Fatalf("defaults should survive a parse error, got %#v", cfg)
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	isolate(t)
	t.Setenv(EnvTelemetryOptIn, "true")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
}

func TestEnvOverridesNavigationAndHistory(t *testing.T) {
	isolate(t)
	t.Setenv(EnvNavWrap, "off")
	t.Setenv(EnvHistoryMax, "3")
	t.Setenv(EnvHistoryBytes, "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Navigation.Wrap {
		t.Fatalf("Navigation.Wrap expected false from env override")
	}
	if cfg.History.MaxClosedTabs != 3 {
		t.Fatalf("History.MaxClosedTabs = %d, want 3", cfg.History.MaxClosedTabs)
	}
	if cfg.History.MaxBytes != Defaults().History.MaxBytes {
		t.Fatalf("invalid max bytes override should be ignored, got %d", cfg.History.MaxBytes)
	}
}

func TestMergeKeepsDefaultsForZeroHistory(t *testing.T) {
	dst := Defaults()
	src := AppConfig{}
	mergeInto(&dst, &src)
	if dst.History != Defaults().History {
		t.Fatalf("zero history section should not clear defaults: %#v", dst.History)
	}
	if dst.Navigation.Wrap {
		t.Fatalf("booleans are taken from the file as written")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = " DEBUG "
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/panegrid.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/panegrid.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "/var/tmp/panegrid.log")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "/var/tmp/panegrid.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
	opts := cfg.Logging.LogOptions()
	if opts.Level != "error" || !opts.AddSource || opts.File != "/var/tmp/panegrid.log" {
		t.Fatalf("LogOptions() = %#v", opts)
	}
}

func TestEnvOverrideFor(t *testing.T) {
	isolate(t)
	if _, ok := EnvOverrideFor("navigation.wrap"); ok {
		t.Fatalf("no override expected while env is empty")
	}
	t.Setenv(EnvNavWrap, "1")
	if env, ok := EnvOverrideFor("navigation.wrap"); !ok || env != EnvNavWrap {
		t.Fatalf("EnvOverrideFor = %q, %v", env, ok)
	}
	if _, ok := EnvOverrideFor("unknown.key"); ok {
		t.Fatalf("unknown keys are never overridden")
	}
}

func TestHistoryOptions(t *testing.T) {
	h := HistoryConfig{MaxClosedTabs: 4, MaxBytes: 2048}.HistoryOptions()
	if h.MaxEntries != 4 || h.MaxBytes != 2048 {
		t.Fatalf("HistoryOptions() = %#v", h)
	}
}

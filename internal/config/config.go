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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"panegrid/internal/history"
	applog "panegrid/internal/log"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	CrashDir       string `yaml:"crash_dir"` // empty means the OS temp dir
}

type NavigationConfig struct {
	// Wrap is the default for focus commands that do not say otherwise.
	Wrap bool `yaml:"wrap"`
}

type HistoryConfig struct {
	MaxClosedTabs int `yaml:"max_closed_tabs"`
	MaxBytes      int `yaml:"max_bytes"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int              `yaml:"config_version"`
	General       GeneralConfig    `yaml:"general"`
	Navigation    NavigationConfig `yaml:"navigation"`
	History       HistoryConfig    `yaml:"history"`
	Logging       LoggingConfig    `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false},
		Navigation:    NavigationConfig{Wrap: true},
		History:       HistoryConfig{MaxClosedTabs: 25, MaxBytes: 1 << 20},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvTelemetryOptIn = "PANEGRID_TELEMETRY_OPT_IN"
	EnvCrashDir       = "PANEGRID_CRASH_DIR"
	EnvNavWrap        = "PANEGRID_NAV_WRAP"
	EnvHistoryMax     = "PANEGRID_HISTORY_MAX"
	EnvHistoryBytes   = "PANEGRID_HISTORY_MAX_BYTES"
	// EnvLogLevel Logging envs, shared with internal/log
	EnvLogLevel  = applog.EnvLevel
	EnvLogFormat = applog.EnvFormat
	EnvLogSource = applog.EnvSource
	EnvLogFile   = applog.EnvFile
	// EnvConfigFile points Load/Save at an explicit file.
	EnvConfigFile = "PANEGRID_CONFIG"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Panegrid")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Panegrid")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "panegrid")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "panegrid")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// A missing file is not an error; a file that exists but does not parse is reported together with
// the defaults so callers can still start.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	var parseErr error
	if data, err := os.ReadFile(path); err == nil {
		// Decode over the defaults so keys missing from the file keep them.
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			parseErr = fmt.Errorf("parse %s: %w", path, err)
		} else {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, parseErr
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// booleans: src was decoded over Defaults(), so an absent key already
	// carries the default and an explicit false is kept
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	dst.Navigation.Wrap = src.Navigation.Wrap
	if strings.TrimSpace(src.General.CrashDir) != "" {
		dst.General.CrashDir = strings.TrimSpace(src.General.CrashDir)
	}
	if src.History.MaxClosedTabs > 0 {
		dst.History.MaxClosedTabs = src.History.MaxClosedTabs
	}
	if src.History.MaxBytes > 0 {
		dst.History.MaxBytes = src.History.MaxBytes
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvCrashDir)); v != "" {
		cfg.General.CrashDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvNavWrap)); v != "" {
		cfg.Navigation.Wrap = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryMax)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.History.MaxClosedTabs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryBytes)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.History.MaxBytes = n
		}
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envByKey = map[string]string{
	"general.telemetry_opt_in": EnvTelemetryOptIn,
	"general.crash_dir":        EnvCrashDir,
	"navigation.wrap":          EnvNavWrap,
	"history.max_closed_tabs":  EnvHistoryMax,
	"history.max_bytes":        EnvHistoryBytes,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envByKey[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// LogOptions maps the logging section onto logger options.
func (l LoggingConfig) LogOptions() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}

// HistoryOptions maps the history section onto the closed-tab history caps.
func (h HistoryConfig) HistoryOptions() history.Config {
	return history.Config{MaxEntries: h.MaxClosedTabs, MaxBytes: h.MaxBytes}
}

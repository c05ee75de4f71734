/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"panegrid/internal/config"
	"panegrid/internal/crash"
	"panegrid/internal/history"
	"panegrid/internal/layout"
	applog "panegrid/internal/log"
	"panegrid/internal/script"
	"panegrid/internal/telemetry"
	"panegrid/internal/version"
	"panegrid/internal/workspace"
)

func usage() {
	fmt.Println("panegrid: editor pane tiling core")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  panegrid version|-v|--version          Show version")
	fmt.Println("  panegrid demo [--json]                  Build a sample layout and print it")
	fmt.Println("  panegrid replay <script.yaml> [--json]  Replay a command script against a fresh workspace")
	fmt.Println("  panegrid schema                         Print the JSON Schema of workspace snapshots")
	fmt.Println("  panegrid config                         Print the effective configuration")
}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(cfg.Logging.LogOptions())
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config file ignored", slog.Any("err", cfgErr))
	}
	crash.SetReportDir(cfg.General.CrashDir)

	tcfg := telemetry.FromEnv()
	tcfg.OptIn = cfg.General.TelemetryOptIn
	telemetry.NewDefault(tcfg)

	ws := workspace.New(
		workspace.WithHistory(history.NewManager(cfg.History.HistoryOptions())),
		workspace.WithOnChange(func(op string, snap workspace.Snapshot) {
			telemetry.Command(telemetry.CommandEvent{Op: op, Groups: len(snap.Groups), Tabs: len(snap.Tabs)})
		}),
	)
	defer flushTelemetry()
	defer crash.Recover(func() any { return ws.Snapshot() })

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("panegrid: editor pane tiling core")
			fmt.Println(version.String())
			return
		case "schema":
			_, _ = os.Stdout.Write(workspace.SnapshotSchema)
			return
		case "config":
			if err := printConfig(cfg); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		case "demo":
			runDemo(ws, cfg.Navigation.Wrap)
			output(ws, hasFlag(args[2:], "--json"))
			return
		case "replay":
			if len(args) < 3 {
				fmt.Println("replay requires <script.yaml>")
				usage()
				os.Exit(2)
			}
			s, err := script.Load(args[2])
			if err != nil {
				l.Error("load script failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			if s.Wrap == nil {
				wrap := cfg.Navigation.Wrap
				s.Wrap = &wrap
			}
			l.Info("replay script", slog.String("path", args[2]), slog.Int("steps", len(s.Steps)))
			results, err := script.Replay(ws, s, applog.WithComponent("script"))
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			asJSON := hasFlag(args[3:], "--json")
			if !asJSON {
				printResults(os.Stdout, results)
			}
			output(ws, asJSON)
			return
		}
	}

	usage()
}

// runDemo builds three columns with a split right column and a few documents.
func runDemo(ws *workspace.Workspace, wrap bool) {
	left, _ := ws.ActiveGroup()
	name := func(s string) *string { return &s }
	ws.CreateTab(workspace.CreateTabOptions{GroupID: left.ID, Activate: true,
		Initial: &workspace.TabMeta{FileName: name("manual.pdf"), OriginalPath: name("/docs/manual.pdf")}})
	middle, _, _ := ws.EnsureTargetGroupForDirection(left.ID, layout.Right)
	ws.CreateTab(workspace.CreateTabOptions{GroupID: middle, Initial: &workspace.TabMeta{FileName: name("scan.djvu"), IsDjvu: true}})
	right, _ := ws.SplitGroup(middle, layout.Right)
	ws.CreateTab(workspace.CreateTabOptions{GroupID: right, Initial: &workspace.TabMeta{FileName: name("notes.pdf"), IsDirty: true}})
	_, _ = ws.CopyActiveTabToDirection(layout.Down)
	ws.FocusGroup(layout.Right, wrap)
}

func output(ws *workspace.Workspace, asJSON bool) {
	snap := ws.Snapshot()
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		return
	}
	printSnapshot(os.Stdout, snap)
}

func printConfig(cfg config.AppConfig) error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Println("# file:", path)
	for _, key := range []string{"general.telemetry_opt_in", "general.crash_dir", "navigation.wrap",
		"history.max_closed_tabs", "history.max_bytes", "logging.level", "logging.format", "logging.source", "logging.file"} {
		if env, ok := config.EnvOverrideFor(key); ok {
			fmt.Printf("# %s overridden by %s\n", key, env)
		}
	}
	_, err = os.Stdout.Write(data)
	return err
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func flushTelemetry() {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	telemetry.Flush(ctx)
}

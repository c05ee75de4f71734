/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package crash

import (
	"os"
	"strings"
	"testing"
)

func TestWriteReportCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path, err := writeReport(dir, nil, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if !strings.HasPrefix(path, dir) {
		t.Fatalf("report written outside %s: %s", dir, path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "panegrid crash report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") {
		t.Fatalf("panic content missing: %s", s)
	}
	if strings.Contains(s, "State:") {
		t.Fatalf("no state section expected without snap: %s", s)
	}
}

func TestWriteReportEmbedsState(t *testing.T) {
	snap := func() any {
		return map[string]any{"activeGroupId": "g-1", "groups": []string{"g-1", "g-2"}}
	}
	path, err := writeReport(t.TempDir(), snap, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), `"activeGroupId": "g-1"`) {
		t.Fatalf("state missing from report: %s", string(b))
	}
}

func TestWriteReportSurvivesPanickingSnapshot(t *testing.T) {
	snap := func() any { panic("corrupt tree") }
	path, err := writeReport(t.TempDir(), snap, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), "State: unavailable (snapshot panicked: corrupt tree)") {
		t.Fatalf("expected unavailable state note: %s", string(b))
	}
}

func TestWriteReportCreatesMissingDir(t *testing.T) {
	dir := t.TempDir() + "/nested/crashes"
	path, err := writeReport(dir, nil, "x", nil)
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("report file missing: %v", err)
	}
}

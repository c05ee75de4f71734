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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	applog "panegrid/internal/log"
	"panegrid/internal/telemetry"
	"panegrid/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// flushTimeout bounds how long a crash waits for telemetry to drain.
const flushTimeout = 2 * time.Second

var (
	dirMu     sync.RWMutex
	reportDir string
)

// SetReportDir selects where crash reports are written. Empty means the OS temp dir.
func SetReportDir(dir string) {
	dirMu.Lock()
	reportDir = dir
	dirMu.Unlock()
}

func currentDir() string {
	dirMu.RLock()
	defer dirMu.RUnlock()
	if reportDir == "" {
		return os.TempDir()
	}
	return reportDir
}

// Recover captures a panic, logs an error with stacktrace and
// writes an error report file that embeds the state returned by snap
// (typically the workspace snapshot) as JSON.
//
// Usage: defer crash.Recover(func() any { return ws.Snapshot() })
func Recover(snap func() any) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, err := writeReport(currentDir(), snap, r, stack)
		if err != nil {
			l.Error("crash report not written", slog.Any("err", err), slog.String("path", reportPath))
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		// Queued command events and the crash upload go out before exit.
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		telemetry.Flush(ctx)
		cancel()
		// Exit with a non-zero code to indicate failure in CLI context.
		exitFn(2)
	}
}

// captureState runs snap, which may itself panic on a corrupted workspace.
func captureState(snap func() any) (data []byte, err error) {
	if snap == nil {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("snapshot panicked: %v", r)
		}
	}()
	return json.MarshalIndent(snap(), "", "  ")
}

func writeReport(dir string, snap func() any, panicVal any, stack []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return dir, fmt.Errorf("create crash dir: %w", err)
	}
	stamp := time.Now().Format("20060102-150405")
	fname := fmt.Sprintf("crash-%s.log", stamp)
	path := filepath.Join(dir, fname)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "panegrid crash report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))
	// the uploaded copy stops here; the state names user files
	upload := append([]byte(nil), buf.Bytes()...)
	state, serr := captureState(snap)
	switch {
	case serr != nil:
		_, _ = fmt.Fprintf(&buf, "\nState: unavailable (%v)\n", serr)
	case state != nil:
		_, _ = fmt.Fprintf(&buf, "\nState:\n%s\n", state)
	}

	// write to file
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()

	// optionally upload anonymized crash report (opt-in via env)
	telemetry.UploadCrash(upload)
	return path, nil
}

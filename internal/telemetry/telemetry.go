/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package telemetry sends opt-in anonymous usage events: which layout
// commands run and how many panes and tabs are open afterwards. Crash reports
// can be uploaded the same way. File names, paths and ids never leave the
// process.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	applog "panegrid/internal/log"
	"panegrid/internal/version"
)

// Config holds runtime configuration for telemetry and crash uploads.
// All telemetry is strictly opt-in and disabled by default.
//
// Environment variables (read by FromEnv):
// - PANEGRID_TELEMETRY_OPT_IN: "1", "true", "yes" to enable metrics
// - PANEGRID_TELEMETRY_URL: URL to POST JSON command events to
// - PANEGRID_CRASH_UPLOAD_URL: URL to POST crash reports to
// - PANEGRID_TELEMETRY_TIMEOUT_MS: optional request timeout, default 1500ms
// - PANEGRID_TELEMETRY_DEBUG: if set, logs send attempts
//
// Without URLs nothing is sent, even when opted in.
type Config struct {
	OptIn        bool
	EventsURL    string
	CrashURL     string
	Timeout      time.Duration
	DebugLogging bool
}

const (
	EnvOptIn     = "PANEGRID_TELEMETRY_OPT_IN"
	EnvEventsURL = "PANEGRID_TELEMETRY_URL"
	EnvCrashURL  = "PANEGRID_CRASH_UPLOAD_URL"
	EnvTimeoutMs = "PANEGRID_TELEMETRY_TIMEOUT_MS"
	EnvDebug     = "PANEGRID_TELEMETRY_DEBUG"
)

const (
	defaultTimeout = 1500 * time.Millisecond
	queueSize      = 64
)

func FromEnv() Config {
	cfg := Config{
		OptIn:        parseBool(os.Getenv(EnvOptIn)),
		EventsURL:    strings.TrimSpace(os.Getenv(EnvEventsURL)),
		CrashURL:     strings.TrimSpace(os.Getenv(EnvCrashURL)),
		Timeout:      defaultTimeout,
		DebugLogging: os.Getenv(EnvDebug) != "",
	}
	if ms := strings.TrimSpace(os.Getenv(EnvTimeoutMs)); ms != "" {
		if v, err := time.ParseDuration(ms + "ms"); err == nil {
			cfg.Timeout = v
		}
	}
	return cfg
}

func parseBool(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// CommandEvent describes one successful workspace command. Only counts are
// carried, never names or ids.
type CommandEvent struct {
	Op     string `json:"op"`
	Groups int    `json:"groups"`
	Tabs   int    `json:"tabs"`
}

// envelope is the JSON body posted for each command.
type envelope struct {
	Name    string `json:"name"`
	TS      string `json:"ts"`
	Version string `json:"version"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
	CommandEvent
}

// Stats counts what a client did with the events it was given.
type Stats struct {
	Sent    int64
	Failed  int64
	Dropped int64
}

// Client is an async sender with a bounded queue. Commands never block the
// caller; events are dropped when the queue is full.
type Client struct {
	cfg    Config
	log    *slog.Logger
	cli    *http.Client
	q      chan envelope
	once   sync.Once
	closed chan struct{}

	pending atomic.Int64
	sent    atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

var defaultClient *Client
var defaultOnce sync.Once

// InitDefault initializes the package-level default client from env when first used.
func InitDefault() {
	defaultOnce.Do(func() {
		NewDefault(FromEnv())
	})
}

// NewDefault creates and installs the default client with cfg.
// A later InitDefault keeps it.
func NewDefault(cfg Config) {
	defaultOnce.Do(func() {})
	defaultClient = New(cfg)
}

// New constructs a client and starts its sender goroutine.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{
		cfg:    cfg,
		log:    applog.WithComponent("telemetry"),
		cli:    &http.Client{Timeout: cfg.Timeout},
		q:      make(chan envelope, queueSize),
		closed: make(chan struct{}),
	}
	go c.loop()
	return c
}

// Enabled reports whether the client is opted in and has an events endpoint.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Enabled reports whether the default client is enabled.
func Enabled() bool {
	InitDefault()
	return defaultClient.Enabled()
}

// Command queues ev for sending. Events without an op are ignored.
func (c *Client) Command(ev CommandEvent) {
	if !c.Enabled() || ev.Op == "" {
		return
	}
	e := envelope{
		Name:         "command",
		TS:           time.Now().UTC().Format(time.RFC3339Nano),
		Version:      version.String(),
		OS:           runtime.GOOS,
		Arch:         runtime.GOARCH,
		CommandEvent: ev,
	}
	c.pending.Add(1)
	select {
	case c.q <- e:
	default:
		c.pending.Add(-1)
		c.dropped.Add(1)
	}
}

// Command using the default client.
func Command(ev CommandEvent) { InitDefault(); defaultClient.Command(ev) }

// UploadCrash posts an already-serialized crash report to the crash URL.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	c.pending.Add(1)
	go func(b []byte) {
		defer c.pending.Add(-1)
		c.post(c.cfg.CrashURL, "text/plain; charset=utf-8", b)
	}(append([]byte(nil), report...))
}

// UploadCrash using the default client.
func UploadCrash(report []byte) { InitDefault(); defaultClient.UploadCrash(report) }

// Flush blocks until every queued event and crash upload has been attempted,
// or ctx is done.
func (c *Client) Flush(ctx context.Context) {
	if c == nil {
		return
	}
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for c.pending.Load() > 0 {
		select {
		case <-ctx.Done():
			if c.cfg.DebugLogging {
				c.log.Debug("flush gave up", slog.Int64("pending", c.pending.Load()))
			}
			return
		case <-tick.C:
		}
	}
}

// Flush using the default client.
func Flush(ctx context.Context) { InitDefault(); defaultClient.Flush(ctx) }

// Stats returns the client's counters.
func (c *Client) Stats() Stats {
	return Stats{Sent: c.sent.Load(), Failed: c.failed.Load(), Dropped: c.dropped.Load()}
}

// Close stops the sender goroutine. Events still queued are not sent.
func (c *Client) Close() { c.once.Do(func() { close(c.closed) }) }

func (c *Client) loop() {
	for {
		select {
		case <-c.closed:
			return
		case e := <-c.q:
			if buf, err := json.Marshal(e); err == nil {
				c.post(c.cfg.EventsURL, "application/json", buf)
			} else {
				c.failed.Add(1)
			}
			c.pending.Add(-1)
		}
	}
}

func (c *Client) post(url, contentType string, body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		c.failed.Add(1)
		return
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.cli.Do(req)
	if err != nil {
		c.failed.Add(1)
		if c.cfg.DebugLogging {
			c.log.Debug("send failed", slog.String("url", url), slog.Any("err", err))
		}
		return
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		c.failed.Add(1)
		if c.cfg.DebugLogging {
			c.log.Debug("send rejected", slog.String("url", url), slog.Int("status", resp.StatusCode))
		}
		return
	}
	c.sent.Add(1)
}

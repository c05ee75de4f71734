/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package history keeps a bounded, in-memory record of closed tabs so they can
// be reopened. Entries carry an opaque blob (the tab's metadata as the caller
// chose to encode it); the manager only accounts for its size.
package history

import (
	"sync"
	"time"
)

// Entry is one closed tab.
// Key identifies the document; pushing an entry with a Key already present
// replaces the older entry so a document shows up at most once.
// GroupID and Index record where the tab lived when it was closed.
type Entry struct {
	Key     string
	GroupID string
	Index   int
	Blob    []byte
	TS      time.Time
}

// Config caps memory and depth.
type Config struct {
	// MaxBytes is a soft cap on the summed blob sizes; oldest entries go first.
	MaxBytes int
	// MaxEntries limits the number of entries kept (0 means the default).
	MaxEntries int
}

// Manager is a most-recent-last stack of closed tabs.
// It is safe for concurrent use.
type Manager struct {
	cfg        Config
	mu         sync.Mutex
	entries    []Entry
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 1024 * 1024 // 1 MiB
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 25
	}
	return &Manager{cfg: cfg}
}

// Push records a closed tab. An older entry with the same non-empty Key is dropped.
func (m *Manager) Push(e Entry) {
	if e.TS.IsZero() {
		e.TS = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.Key != "" {
		for i := len(m.entries) - 1; i >= 0; i-- {
			if m.entries[i].Key == e.Key {
				m.removeLocked(i)
				break
			}
		}
	}
	m.entries = append(m.entries, e)
	m.totalBytes += len(e.Blob)
	m.enforceCapsLocked()
}

// Pop removes and returns the most recently closed tab.
func (m *Manager) Pop() (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return Entry{}, false
	}
	i := len(m.entries) - 1
	e := m.entries[i]
	m.removeLocked(i)
	return e, true
}

// PopGroup removes and returns the most recently closed tab that lived in groupID.
func (m *Manager) PopGroup(groupID string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].GroupID == groupID {
			e := m.entries[i]
			m.removeLocked(i)
			return e, true
		}
	}
	return Entry{}, false
}

// Peek returns the most recent entry without removing it.
func (m *Manager) Peek() (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return Entry{}, false
	}
	return m.entries[len(m.entries)-1], true
}

// Len returns the number of entries.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Clear drops everything.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	m.totalBytes = 0
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, entries int, groups int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]struct{})
	for _, e := range m.entries {
		seen[e.GroupID] = struct{}{}
	}
	return m.totalBytes, len(m.entries), len(seen)
}

func (m *Manager) removeLocked(i int) {
	m.totalBytes -= len(m.entries[i].Blob)
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

func (m *Manager) enforceCapsLocked() {
	// keep at least the newest entry even if it alone exceeds MaxBytes
	for len(m.entries) > 1 && (len(m.entries) > m.cfg.MaxEntries || m.totalBytes > m.cfg.MaxBytes) {
		m.removeLocked(0)
	}
}

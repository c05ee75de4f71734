/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package history

import (
	"testing"
	"time"
)

func TestPushPop(t *testing.T) {
	m := NewManager(Config{})
	m.Push(Entry{Key: "a.pdf", GroupID: "g1", Blob: []byte("a")})
	m.Push(Entry{Key: "b.pdf", GroupID: "g2", Blob: []byte("bb")})
	if total, n, groups := m.Stats(); total != 3 || n != 2 || groups != 2 {
		t.Fatalf("unexpected stats: bytes=%d entries=%d groups=%d", total, n, groups)
	}
	e, ok := m.Pop()
	if !ok || e.Key != "b.pdf" {
		t.Fatalf("expected b.pdf, got ok=%v key=%q", ok, e.Key)
	}
	if e.TS.IsZero() {
		t.Fatalf("expected timestamp to be filled in")
	}
	e, ok = m.Pop()
	if !ok || e.Key != "a.pdf" {
		t.Fatalf("expected a.pdf, got ok=%v key=%q", ok, e.Key)
	}
	if _, ok := m.Pop(); ok {
		t.Fatalf("expected empty history")
	}
	if total, _, _ := m.Stats(); total != 0 {
		t.Fatalf("expected 0 bytes after draining, got %d", total)
	}
}

func TestDuplicateKeyReplaces(t *testing.T) {
	m := NewManager(Config{})
	t0 := time.Now()
	m.Push(Entry{Key: "a.pdf", GroupID: "g1", Index: 0, Blob: []byte("1"), TS: t0})
	m.Push(Entry{Key: "b.pdf", GroupID: "g1", Blob: []byte("2"), TS: t0.Add(time.Millisecond)})
	m.Push(Entry{Key: "a.pdf", GroupID: "g2", Index: 3, Blob: []byte("3"), TS: t0.Add(2 * time.Millisecond)})
	if m.Len() != 2 {
		t.Fatalf("expected 2 entries after replacing duplicate, got %d", m.Len())
	}
	e, _ := m.Peek()
	if e.Key != "a.pdf" || e.GroupID != "g2" || e.Index != 3 {
		t.Fatalf("expected newest a.pdf entry on top, got %+v", e)
	}
}

func TestEmptyKeyNeverReplaces(t *testing.T) {
	m := NewManager(Config{})
	m.Push(Entry{GroupID: "g1"})
	m.Push(Entry{GroupID: "g1"})
	if m.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", m.Len())
	}
}

func TestPopGroup(t *testing.T) {
	m := NewManager(Config{})
	m.Push(Entry{Key: "a", GroupID: "g1"})
	m.Push(Entry{Key: "b", GroupID: "g2"})
	m.Push(Entry{Key: "c", GroupID: "g1"})
	e, ok := m.PopGroup("g2")
	if !ok || e.Key != "b" {
		t.Fatalf("expected b from g2, got ok=%v %+v", ok, e)
	}
	e, ok = m.PopGroup("g1")
	if !ok || e.Key != "c" {
		t.Fatalf("expected newest g1 entry c, got ok=%v %+v", ok, e)
	}
	if _, ok := m.PopGroup("g9"); ok {
		t.Fatalf("expected miss for unknown group")
	}
}

func TestCaps(t *testing.T) {
	m := NewManager(Config{MaxBytes: 20, MaxEntries: 3})
	for i := 0; i < 10; i++ {
		m.Push(Entry{Key: string(rune('a' + i)), Blob: []byte("xxxxx")})
	}
	total, n, _ := m.Stats()
	if n != 3 {
		t.Fatalf("expected MaxEntries cap to limit to 3, got %d", n)
	}
	if total != 15 {
		t.Fatalf("expected 15 bytes, got %d", total)
	}
	e, _ := m.Peek()
	if e.Key != "j" {
		t.Fatalf("expected newest entry kept, got %q", e.Key)
	}

	m = NewManager(Config{MaxBytes: 8, MaxEntries: 10})
	m.Push(Entry{Key: "a", Blob: []byte("xxxxx")})
	m.Push(Entry{Key: "b", Blob: []byte("xxxxx")})
	if _, n, _ := m.Stats(); n != 1 {
		t.Fatalf("expected MaxBytes cap to drop the oldest, got %d entries", n)
	}
	m.Push(Entry{Key: "big", Blob: make([]byte, 64)})
	if _, n, _ := m.Stats(); n != 1 {
		t.Fatalf("expected oversized newest entry to be kept alone, got %d", n)
	}
	m.Clear()
	if m.Len() != 0 {
		t.Fatalf("expected empty after Clear")
	}
}

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package workspace

import "sync"

// Locked serializes access to a Workspace for hosts that issue commands from
// more than one goroutine. Commands read and then write the tree and the
// registry in several steps, so each one must run under the lock as a whole.
type Locked struct {
	mu sync.Mutex
	ws *Workspace
}

func NewLocked(ws *Workspace) *Locked { return &Locked{ws: ws} }

// Do runs fn with exclusive access to the workspace.
func (l *Locked) Do(fn func(ws *Workspace)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.ws)
}

// Snapshot captures the state under the lock.
func (l *Locked) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ws.Snapshot()
}

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

import (
	_ "embed"

	"panegrid/internal/layout"
)

// SnapshotSchema is the JSON Schema describing an encoded Snapshot.
//
//go:embed snapshot.schema.json
var SnapshotSchema []byte

// Snapshot is a self-contained copy of the workspace state handed to the UI
// layer after each command. It shares nothing with the workspace.
type Snapshot struct {
	Groups        []Group            `json:"groups"`
	Tabs          []Tab              `json:"tabs"`
	Layout        *layout.Node       `json:"layout"`
	Rects         []layout.GroupRect `json:"rects"`
	ActiveGroupID string             `json:"activeGroupId"`
	ActiveTabID   string             `json:"activeTabId"`
	MRU           []string           `json:"mru"`
}

// Snapshot captures the current state.
func (w *Workspace) Snapshot() Snapshot {
	s := Snapshot{
		Groups:        w.Groups(),
		Tabs:          w.Tabs(),
		Layout:        w.Layout(),
		Rects:         w.Rects(),
		ActiveGroupID: w.activeGroupID,
		MRU:           w.mru.Order(),
	}
	if t, ok := w.ActiveTab(); ok {
		s.ActiveTabID = t.ID
	}
	return s
}

// Group returns the snapshot's copy of a group.
func (s Snapshot) Group(id string) (Group, bool) {
	for _, g := range s.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

// Rect returns the rectangle of a group.
func (s Snapshot) Rect(groupID string) (layout.GroupRect, bool) {
	for _, r := range s.Rects {
		if r.GroupID == groupID {
			return r, true
		}
	}
	return layout.GroupRect{}, false
}

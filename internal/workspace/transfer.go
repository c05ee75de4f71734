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
	"log/slog"

	"panegrid/internal/layout"
)

// MoveTabToGroup moves a tab to the end of targetID and makes it the target's
// active tab. A source group left empty is closed. With activate the target
// group is focused.
func (w *Workspace) MoveTabToGroup(tabID, targetID string, activate bool) bool {
	l := w.opLog("move_tab")
	src := w.reg.owner(tabID)
	dst := w.reg.group(targetID)
	if src == nil || dst == nil || src == dst {
		l.Debug("declined", slog.String("tab", tabID), slog.String("target", targetID))
		return false
	}
	detach(src, tabID)
	dst.TabIDs = append(dst.TabIDs, tabID)
	dst.ActiveTabID = tabID
	w.reg.invalidate()
	if activate {
		w.focus(dst.ID)
	}
	closedSource := len(src.TabIDs) == 0
	if closedSource {
		w.closeGroup(src.ID)
	}
	l.Debug("tab moved", slog.String("tab", tabID), slog.String("from", src.ID), slog.String("to", dst.ID),
		slog.Bool("source_closed", closedSource))
	w.changed("move_tab")
	return true
}

// CopyTabToGroup opens a new tab in targetID with a copy of tabID's metadata
// and makes it the target's active tab. The source tab is left alone.
func (w *Workspace) CopyTabToGroup(tabID, targetID string, activate bool) (string, bool) {
	t := w.reg.tab(tabID)
	dst := w.reg.group(targetID)
	if t == nil || dst == nil {
		w.opLog("copy_tab").Debug("declined", slog.String("tab", tabID), slog.String("target", targetID))
		return "", false
	}
	nt := w.addTab(dst, t.TabMeta, true)
	if activate {
		w.focus(dst.ID)
	}
	w.opLog("copy_tab").Debug("tab copied", slog.String("tab", tabID), slog.String("copy", nt.ID), slog.String("to", dst.ID))
	w.changed("copy_tab")
	return nt.ID, true
}

// EnsureTargetGroupForDirection returns the strict neighbour of sourceID in
// direction dir, splitting sourceID to create one when there is none.
// created reports whether a new group was made.
func (w *Workspace) EnsureTargetGroupForDirection(sourceID string, dir layout.Direction) (groupID string, created bool, ok bool) {
	if w.reg.group(sourceID) == nil || !dir.Valid() {
		return "", false, false
	}
	if id, found := w.FindDirectionalGroup(sourceID, dir, false); found {
		return id, false, true
	}
	id, split := w.SplitGroup(sourceID, dir)
	return id, split, split
}

// MoveActiveTabToDirection moves the active tab of the focused group into the
// neighbouring group in direction dir, creating that group when needed.
// Moving a group's only tab into a group that would have to be created is
// declined: it would rebuild the same layout under a new id.
// CopyActiveTabToDirection does split in that case.
func (w *Workspace) MoveActiveTabToDirection(dir layout.Direction) bool {
	g := w.reg.group(w.activeGroupID)
	if g == nil || g.ActiveTabID == "" || !dir.Valid() {
		return false
	}
	if _, found := w.FindDirectionalGroup(g.ID, dir, false); !found && len(g.TabIDs) <= 1 {
		w.opLog("move_tab_dir").Debug("declined: sole tab and no neighbour", slog.String("dir", string(dir)))
		return false
	}
	target, _, ok := w.EnsureTargetGroupForDirection(g.ID, dir)
	if !ok {
		return false
	}
	return w.MoveTabToGroup(g.ActiveTabID, target, true)
}

// CopyActiveTabToDirection copies the active tab of the focused group into
// the neighbouring group in direction dir, creating that group when needed.
// Unlike MoveActiveTabToDirection it splits even when the tab is the
// group's only one, since the source keeps its tab.
func (w *Workspace) CopyActiveTabToDirection(dir layout.Direction) (string, bool) {
	g := w.reg.group(w.activeGroupID)
	if g == nil || g.ActiveTabID == "" || !dir.Valid() {
		return "", false
	}
	target, _, ok := w.EnsureTargetGroupForDirection(g.ID, dir)
	if !ok {
		return "", false
	}
	return w.CopyTabToGroup(g.ActiveTabID, target, true)
}

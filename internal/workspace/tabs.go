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
	"encoding/json"
	"log/slog"

	"panegrid/internal/history"
)

// CreateTabOptions selects where a new tab goes and what it shows.
// An unknown or empty GroupID falls back to the active group.
type CreateTabOptions struct {
	GroupID  string
	Initial  *TabMeta
	Activate bool
}

// CloseTabResult describes what CloseTab did besides removing the tab.
// RemovedGroupID is set when the group emptied and was closed;
// ReplacementTabID is set when the last tab of the last group was replaced
// with an empty one.
type CloseTabResult struct {
	Tab              Tab
	RemovedGroupID   string
	ReplacementTabID string
}

// CreateTab appends a new tab to the resolved group. The tab becomes the
// group's active tab when Activate is set or the group had none; with
// Activate the group is focused as well.
func (w *Workspace) CreateTab(opts CreateTabOptions) Tab {
	w.EnsureLayoutInitialized()
	g := w.reg.group(opts.GroupID)
	if g == nil {
		g = w.reg.group(w.activeGroupID)
	}
	var meta TabMeta
	if opts.Initial != nil {
		meta = *opts.Initial
	}
	t := w.addTab(g, meta, opts.Activate)
	if opts.Activate {
		w.focus(g.ID)
	}
	w.opLog("create_tab").Debug("tab created", slog.String("group", g.ID), slog.String("tab", t.ID))
	w.changed("create_tab")
	created, _ := w.Tab(t.ID)
	return created
}

func (w *Workspace) addTab(g *Group, meta TabMeta, activate bool) *Tab {
	t := &Tab{ID: w.newID(), TabMeta: meta.clone()}
	w.reg.addTab(t)
	g.TabIDs = append(g.TabIDs, t.ID)
	if activate || g.ActiveTabID == "" {
		g.ActiveTabID = t.ID
	}
	w.reg.invalidate()
	return t
}

func (w *Workspace) focus(groupID string) {
	w.activeGroupID = groupID
	w.mru.Touch(groupID)
}

// ActivateTab focuses tabID inside groupID and the group itself. It declines
// when the tab is not a member of the group.
func (w *Workspace) ActivateTab(groupID, tabID string) bool {
	g := w.reg.group(groupID)
	if g == nil || indexOf(g.TabIDs, tabID) < 0 {
		w.opLog("activate_tab").Debug("declined: not a member", slog.String("group", groupID), slog.String("tab", tabID))
		return false
	}
	g.ActiveTabID = tabID
	w.focus(groupID)
	w.changed("activate_tab")
	return true
}

// detach removes tabID from g. When it was active, the tab now at the same
// index takes over, else the previous one, else none.
func detach(g *Group, tabID string) (int, bool) {
	idx := indexOf(g.TabIDs, tabID)
	if idx < 0 {
		return -1, false
	}
	g.TabIDs = append(g.TabIDs[:idx:idx], g.TabIDs[idx+1:]...)
	if g.ActiveTabID == tabID {
		switch {
		case idx < len(g.TabIDs):
			g.ActiveTabID = g.TabIDs[idx]
		case idx > 0:
			g.ActiveTabID = g.TabIDs[idx-1]
		default:
			g.ActiveTabID = ""
		}
	}
	return idx, true
}

// CloseTab removes a tab. A group left empty is closed when another group
// exists; the last group instead receives a fresh empty tab.
func (w *Workspace) CloseTab(groupID, tabID string) (CloseTabResult, bool) {
	l := w.opLog("close_tab")
	g := w.reg.group(groupID)
	if g == nil {
		l.Debug("declined: unknown group", slog.String("group", groupID))
		return CloseTabResult{}, false
	}
	idx, ok := detach(g, tabID)
	if !ok {
		l.Debug("declined: not a member", slog.String("group", groupID), slog.String("tab", tabID))
		return CloseTabResult{}, false
	}
	res := CloseTabResult{Tab: Tab{ID: tabID}}
	if t := w.reg.tab(tabID); t != nil {
		res.Tab.TabMeta = t.TabMeta.clone()
		w.remember(g.ID, idx, t)
	}
	w.reg.removeTab(tabID)

	if len(g.TabIDs) == 0 {
		if len(w.reg.groups) >= 2 {
			res.ReplacementTabID = w.closeGroup(g.ID)
			res.RemovedGroupID = g.ID
		} else {
			res.ReplacementTabID = w.addTab(g, TabMeta{}, true).ID
		}
	}
	l.Debug("tab closed", slog.String("group", groupID), slog.String("tab", tabID),
		slog.String("removed_group", res.RemovedGroupID))
	w.changed("close_tab")
	return res, true
}

// remember pushes a closed tab onto the history. Empty placeholder tabs
// (no file name and no path) are not worth reopening.
func (w *Workspace) remember(groupID string, index int, t *Tab) {
	key := ""
	switch {
	case t.OriginalPath != nil && *t.OriginalPath != "":
		key = *t.OriginalPath
	case t.FileName != nil && *t.FileName != "":
		key = *t.FileName
	default:
		return
	}
	blob, err := json.Marshal(t.TabMeta)
	if err != nil {
		w.log.Warn("encode closed tab failed", slog.Any("err", err))
		return
	}
	w.closed.Push(history.Entry{Key: key, GroupID: groupID, Index: index, Blob: blob})
	size, n, _ := w.closed.Stats()
	w.log.Debug("closed tab remembered", slog.String("key", key), slog.Int("entries", n), slog.Int("bytes", size))
}

// ReopenClosedTab recreates the most recently closed tab (new id, same
// metadata) at its old position when its group still exists, otherwise at
// the end of the active group. The tab and its group are focused.
func (w *Workspace) ReopenClosedTab() (Tab, bool) {
	e, ok := w.closed.Pop()
	if !ok {
		w.opLog("reopen_tab").Debug("declined: history empty")
		return Tab{}, false
	}
	return w.reopen(e)
}

// ReopenClosedTabIn reopens the most recently closed tab that lived in groupID.
func (w *Workspace) ReopenClosedTabIn(groupID string) (Tab, bool) {
	if w.reg.group(groupID) == nil {
		return Tab{}, false
	}
	e, ok := w.closed.PopGroup(groupID)
	if !ok {
		w.opLog("reopen_tab").Debug("declined: nothing closed in group", slog.String("group", groupID))
		return Tab{}, false
	}
	return w.reopen(e)
}

// LastClosedTab returns the metadata of the tab ReopenClosedTab would restore.
func (w *Workspace) LastClosedTab() (TabMeta, bool) {
	e, ok := w.closed.Peek()
	if !ok {
		return TabMeta{}, false
	}
	var meta TabMeta
	if err := json.Unmarshal(e.Blob, &meta); err != nil {
		return TabMeta{}, false
	}
	return meta, true
}

// ClearClosedTabs forgets every closed tab.
func (w *Workspace) ClearClosedTabs() { w.closed.Clear() }

func (w *Workspace) reopen(e history.Entry) (Tab, bool) {
	l := w.opLog("reopen_tab")
	var meta TabMeta
	if err := json.Unmarshal(e.Blob, &meta); err != nil {
		l.Warn("decode closed tab failed", slog.Any("err", err))
		return Tab{}, false
	}
	g := w.reg.group(e.GroupID)
	restorePos := g != nil
	if g == nil {
		g = w.reg.group(w.activeGroupID)
	}
	t := w.addTab(g, meta, true)
	if restorePos && e.Index >= 0 && e.Index < len(g.TabIDs)-1 {
		moveWithin(g, len(g.TabIDs)-1, e.Index)
	}
	w.focus(g.ID)
	l.Debug("tab reopened", slog.String("group", g.ID), slog.String("tab", t.ID), slog.String("key", e.Key))
	w.changed("reopen_tab")
	reopened, _ := w.Tab(t.ID)
	return reopened, true
}

func moveWithin(g *Group, from, to int) {
	id := g.TabIDs[from]
	ids := append(g.TabIDs[:from:from], g.TabIDs[from+1:]...)
	ids = append(ids[:to:to], append([]string{id}, ids[to:]...)...)
	g.TabIDs = ids
}

// MoveTabWithinGroup reorders a group's tabs. Indexes must be in range.
func (w *Workspace) MoveTabWithinGroup(groupID string, fromIndex, toIndex int) bool {
	g := w.reg.group(groupID)
	if g == nil {
		return false
	}
	n := len(g.TabIDs)
	if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n {
		w.opLog("move_tab_within").Debug("declined: index out of range", slog.Int("from", fromIndex), slog.Int("to", toIndex), slog.Int("len", n))
		return false
	}
	if fromIndex == toIndex {
		return true
	}
	moveWithin(g, fromIndex, toIndex)
	w.changed("move_tab_within")
	return true
}

// CycleTab activates the tab delta positions away from the group's active
// tab, wrapping at both ends, and focuses the group.
func (w *Workspace) CycleTab(groupID string, delta int) bool {
	g := w.reg.group(groupID)
	if g == nil || len(g.TabIDs) == 0 {
		return false
	}
	n := len(g.TabIDs)
	idx := max(indexOf(g.TabIDs, g.ActiveTabID), 0)
	g.ActiveTabID = g.TabIDs[((idx+delta)%n+n)%n]
	w.focus(g.ID)
	w.changed("cycle_tab")
	return true
}

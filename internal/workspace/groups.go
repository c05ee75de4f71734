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
	"math"

	"panegrid/internal/layout"
)

// ActivateGroup focuses a group and moves it to the front of the MRU order.
func (w *Workspace) ActivateGroup(groupID string) bool {
	g := w.reg.group(groupID)
	if g == nil {
		w.opLog("activate_group").Debug("declined: unknown group", slog.String("group", groupID))
		return false
	}
	repairActiveTab(g)
	w.focus(g.ID)
	w.changed("activate_group")
	return true
}

// CloseGroup destroys a group and its tabs and prunes its leaf from the
// layout. The last remaining group is never closed.
func (w *Workspace) CloseGroup(groupID string) bool {
	l := w.opLog("close_group")
	if w.reg.group(groupID) == nil {
		l.Debug("declined: unknown group", slog.String("group", groupID))
		return false
	}
	if len(w.reg.groups) < 2 {
		l.Debug("declined: last group", slog.String("group", groupID))
		return false
	}
	w.closeGroup(groupID)
	l.Debug("group closed", slog.String("group", groupID), slog.String("active", w.activeGroupID))
	w.changed("close_group")
	return true
}

// closeGroup removes an existing group; callers guarantee another group survives.
// closeGroup removes the group and repairs focus. When the surviving groups
// hold no tabs at all, a placeholder tab is created in the active group and
// its id returned.
func (w *Workspace) closeGroup(groupID string) string {
	g := w.reg.group(groupID)
	for i, tabID := range g.TabIDs {
		if t := w.reg.tab(tabID); t != nil {
			w.remember(groupID, i, t)
		}
		w.reg.removeTab(tabID)
	}
	w.reg.removeGroup(groupID)
	w.mru.Remove(groupID)
	w.root = layout.RemoveLeafNode(w.root, groupID)

	if w.reg.group(w.activeGroupID) == nil {
		w.activeGroupID = w.fallbackGroupID()
	}
	ag := w.reg.group(w.activeGroupID)
	if ag == nil {
		return ""
	}
	repairActiveTab(ag)
	if len(w.reg.tabs) == 0 {
		return w.addTab(ag, TabMeta{}, true).ID
	}
	return ""
}

// SplitGroup creates an empty group next to sourceID in direction dir. The
// source leaf becomes a 50/50 split; the new group goes first for left/up and
// second for right/down. The new group is touched in the MRU order but focus
// stays where it was.
func (w *Workspace) SplitGroup(sourceID string, dir layout.Direction) (string, bool) {
	l := w.opLog("split")
	if !dir.Valid() || w.reg.group(sourceID) == nil || !layout.ContainsGroup(w.root, sourceID) {
		l.Debug("declined", slog.String("group", sourceID), slog.String("dir", string(dir)))
		return "", false
	}
	ng := w.createGroup()
	first, second := layout.Leaf(sourceID), layout.Leaf(ng.ID)
	if dir.Before() {
		first, second = second, first
	}
	split := layout.Split(w.newID(), dir.Orientation(), layout.DefaultRatio, first, second)
	w.root = layout.ReplaceLeafWithSplit(w.root, sourceID, split)
	w.mru.Touch(ng.ID)
	l.Debug("group split", slog.String("group", sourceID), slog.String("new_group", ng.ID),
		slog.String("dir", string(dir)), slog.String("split", split.ID))
	w.changed("split")
	return ng.ID, true
}

// SetSplitRatio resizes a split, clamping the ratio to [0.15, 0.85].
// NaN and infinite ratios are refused.
func (w *Workspace) SetSplitRatio(splitID string, ratio float64) bool {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		w.opLog("set_ratio").Debug("declined: non-finite ratio", slog.String("split", splitID))
		return false
	}
	if layout.FindSplit(w.root, splitID) == nil {
		w.opLog("set_ratio").Debug("declined: unknown split", slog.String("split", splitID))
		return false
	}
	w.root = layout.SetSplitRatio(w.root, splitID, ratio)
	w.changed("set_ratio")
	return true
}

// FindDirectionalGroup returns the neighbour of sourceID in direction dir,
// wrapping to the far side of the workspace when wrap is set.
func (w *Workspace) FindDirectionalGroup(sourceID string, dir layout.Direction, wrap bool) (string, bool) {
	if w.reg.group(sourceID) == nil {
		return "", false
	}
	return layout.FindDirectional(w.Rects(), sourceID, dir, wrap, w.mru.Rank)
}

// FocusGroup activates the neighbour of the active group in direction dir.
func (w *Workspace) FocusGroup(dir layout.Direction, wrap bool) (string, bool) {
	id, ok := w.FindDirectionalGroup(w.activeGroupID, dir, wrap)
	if !ok {
		w.opLog("focus").Debug("no group in direction", slog.String("dir", string(dir)), slog.Bool("wrap", wrap))
		return "", false
	}
	return id, w.ActivateGroup(id)
}

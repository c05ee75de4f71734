/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package script

import (
	"log/slog"
	"strconv"
	"strings"

	"panegrid/internal/layout"
	applog "panegrid/internal/log"
	"panegrid/internal/workspace"
)

// Replay runs the steps in order. A step the workspace declines is reported
// with OK false and does not stop the replay; only an invalid script is an error.
func Replay(ws *workspace.Workspace, s Script, logger *slog.Logger) ([]Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = applog.WithComponent("script")
	}
	wrap := s.Wrap != nil && *s.Wrap
	results := make([]Result, 0, len(s.Steps))
	declined := 0
	for i, st := range s.Steps {
		ok, id := apply(ws, st, wrap)
		if !ok {
			declined++
		}
		results = append(results, Result{Index: i, Line: st.Line, Op: st.Op, OK: ok, ID: id})
		applog.WithOperation(logger, string(st.Op)).Debug("step",
			slog.Int("index", i), slog.Int("line", st.Line), slog.Bool("ok", ok), slog.String("id", id))
	}
	logger.Info("script replayed", slog.Int("steps", len(results)), slog.Int("declined", declined))
	return results, nil
}

func apply(ws *workspace.Workspace, st Step, wrapDefault bool) (bool, string) {
	dir, _ := layout.ParseDirection(st.Dir)
	activate := st.Activate == nil || *st.Activate

	switch st.Op {
	case OpCreateTab:
		meta := workspace.TabMeta{IsDirty: st.Dirty, IsDjvu: st.Djvu}
		if st.File != "" {
			meta.FileName = &st.File
		}
		if st.Path != "" {
			meta.OriginalPath = &st.Path
		}
		t := ws.CreateTab(workspace.CreateTabOptions{GroupID: resolveGroup(ws, st.Group), Initial: &meta, Activate: activate})
		return true, t.ID
	case OpCloseTab:
		g := resolveGroup(ws, st.Group)
		res, ok := ws.CloseTab(g, resolveTab(ws, g, st.Tab))
		return ok, res.Tab.ID
	case OpActivateGroup:
		g := resolveGroup(ws, st.Group)
		return ws.ActivateGroup(g), g
	case OpActivateTab:
		g := resolveGroup(ws, st.Group)
		t := resolveTab(ws, g, st.Tab)
		return ws.ActivateTab(g, t), t
	case OpCloseGroup:
		g := resolveGroup(ws, st.Group)
		return ws.CloseGroup(g), g
	case OpSplit:
		id, ok := ws.SplitGroup(resolveGroup(ws, st.Group), dir)
		return ok, id
	case OpSetRatio:
		id := resolveSplit(ws, st.Split)
		return ws.SetSplitRatio(id, st.Ratio), id
	case OpFocus:
		wrap := wrapDefault
		if st.Wrap != nil {
			wrap = *st.Wrap
		}
		id, ok := ws.FocusGroup(dir, wrap)
		return ok, id
	case OpMoveTab:
		g := resolveGroup(ws, st.Group)
		t := resolveTab(ws, g, st.Tab)
		return ws.MoveTabToGroup(t, resolveGroup(ws, st.Target), activate), t
	case OpCopyTab:
		g := resolveGroup(ws, st.Group)
		id, ok := ws.CopyTabToGroup(resolveTab(ws, g, st.Tab), resolveGroup(ws, st.Target), activate)
		return ok, id
	case OpMoveWithin:
		g := resolveGroup(ws, st.Group)
		return ws.MoveTabWithinGroup(g, st.From, st.To), g
	case OpMoveActive:
		ok := ws.MoveActiveTabToDirection(dir)
		g, _ := ws.ActiveGroup()
		return ok, g.ID
	case OpCopyActive:
		id, ok := ws.CopyActiveTabToDirection(dir)
		return ok, id
	case OpReopenTab:
		if st.Group != "" {
			t, ok := ws.ReopenClosedTabIn(resolveGroup(ws, st.Group))
			return ok, t.ID
		}
		t, ok := ws.ReopenClosedTab()
		return ok, t.ID
	case OpCycleTab:
		g := resolveGroup(ws, st.Group)
		delta := st.Delta
		if delta == 0 {
			delta = 1
		}
		return ws.CycleTab(g, delta), g
	}
	return false, ""
}

// index resolves "@N" against n items; negative N counts from the end.
func index(ref string, n int) (int, bool) {
	i, err := strconv.Atoi(strings.TrimPrefix(ref, "@"))
	if err != nil {
		return 0, false
	}
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}

func resolveGroup(ws *workspace.Workspace, ref string) string {
	switch {
	case ref == "" || ref == "@active":
		g, _ := ws.ActiveGroup()
		return g.ID
	case strings.HasPrefix(ref, "@"):
		groups := ws.Groups()
		if i, ok := index(ref, len(groups)); ok {
			return groups[i].ID
		}
		return ""
	}
	return ref
}

func resolveTab(ws *workspace.Workspace, groupID, ref string) string {
	if !strings.HasPrefix(ref, "@") {
		return ref
	}
	g, ok := ws.Group(groupID)
	if !ok {
		return ""
	}
	if ref == "@active" {
		return g.ActiveTabID
	}
	if i, ok := index(ref, len(g.TabIDs)); ok {
		return g.TabIDs[i]
	}
	return ""
}

func resolveSplit(ws *workspace.Workspace, ref string) string {
	if ref != "" && ref != "@root" {
		return ref
	}
	if root := ws.Layout(); root != nil && !root.IsLeaf() {
		return root.ID
	}
	return ""
}

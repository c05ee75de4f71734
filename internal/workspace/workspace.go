/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package workspace arranges open documents into groups (panes) laid out by a
// binary split tree, and implements the commands a UI issues against them:
// tab and group lifecycle, splits, directional focus and tab transfer.
//
// A Workspace is a single mutable unit driven by one goroutine (the UI event
// loop). Commands run to completion and either apply fully or decline with a
// neutral result (false, empty id); they never panic on unknown ids. Hosts
// that call from several goroutines wrap the workspace in a Locked.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"panegrid/internal/history"
	"panegrid/internal/layout"
	applog "panegrid/internal/log"
)

// TabMeta is the caller-supplied display metadata of a tab. The workspace
// stores it and copies it, nothing more.
type TabMeta struct {
	FileName     *string `json:"fileName"`
	OriginalPath *string `json:"originalPath"`
	IsDirty      bool    `json:"isDirty"`
	IsDjvu       bool    `json:"isDjvu"`
}

func (m TabMeta) clone() TabMeta {
	c := m
	if m.FileName != nil {
		s := *m.FileName
		c.FileName = &s
	}
	if m.OriginalPath != nil {
		s := *m.OriginalPath
		c.OriginalPath = &s
	}
	return c
}

// Tab is one open document slot.
type Tab struct {
	ID string `json:"id"`
	TabMeta
}

// Group is a pane holding an ordered stack of tabs.
// ActiveTabID is empty only while TabIDs is empty.
type Group struct {
	ID          string   `json:"id"`
	TabIDs      []string `json:"tabIds"`
	ActiveTabID string   `json:"activeTabId"`
}

func (g *Group) copy() Group {
	return Group{ID: g.ID, TabIDs: append([]string(nil), g.TabIDs...), ActiveTabID: g.ActiveTabID}
}

// ChangeFunc is called after every command that changed state, with the
// command name and the resulting snapshot.
type ChangeFunc func(op string, snap Snapshot)

// Workspace is the registry, layout tree, active group and MRU order.
type Workspace struct {
	reg           registry
	root          *layout.Node
	activeGroupID string
	mru           MRU

	closed   *history.Manager
	newID    func() string
	log      *slog.Logger
	onChange ChangeFunc
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithIDGenerator replaces the uuid-based id generator.
func WithIDGenerator(fn func() string) Option {
	return func(w *Workspace) {
		if fn != nil {
			w.newID = fn
		}
	}
}

// WithOnChange installs the change notification.
func WithOnChange(fn ChangeFunc) Option { return func(w *Workspace) { w.onChange = fn } }

// WithLogger sets the logger; the default is the "workspace" component logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workspace) {
		if l != nil {
			w.log = l
		}
	}
}

// WithHistory sets the closed-tab history.
func WithHistory(h *history.Manager) Option {
	return func(w *Workspace) {
		if h != nil {
			w.closed = h
		}
	}
}

// New returns a workspace holding one group with one empty tab.
func New(opts ...Option) *Workspace {
	w := &Workspace{newID: uuid.NewString}
	for _, o := range opts {
		o(w)
	}
	if w.log == nil {
		w.log = applog.WithComponent("workspace")
	}
	if w.closed == nil {
		w.closed = history.NewManager(history.Config{})
	}
	w.EnsureAtLeastOneTab()
	return w
}

func (w *Workspace) opLog(op string) *slog.Logger { return applog.WithOperation(w.log, op) }

func (w *Workspace) changed(op string) {
	if w.onChange != nil {
		w.onChange(op, w.Snapshot())
	}
}

// EnsureLayoutInitialized guarantees at least one group, a layout root and a
// valid active group.
func (w *Workspace) EnsureLayoutInitialized() {
	if len(w.reg.groups) == 0 {
		g := w.createGroup()
		w.root = layout.Leaf(g.ID)
	}
	if w.reg.group(w.activeGroupID) == nil {
		w.activeGroupID = w.fallbackGroupID()
		w.mru.Touch(w.activeGroupID)
	}
}

// EnsureAtLeastOneTab guarantees at least one group and one tab, and gives
// every group that has tabs an active tab.
func (w *Workspace) EnsureAtLeastOneTab() {
	w.EnsureLayoutInitialized()
	if len(w.reg.tabs) == 0 {
		w.addTab(w.reg.group(w.activeGroupID), TabMeta{}, true)
	}
	for _, g := range w.reg.groups {
		repairActiveTab(g)
	}
}

func repairActiveTab(g *Group) {
	if g.ActiveTabID == "" && len(g.TabIDs) > 0 {
		g.ActiveTabID = g.TabIDs[0]
	}
}

func (w *Workspace) createGroup() *Group {
	g := &Group{ID: w.newID()}
	w.reg.addGroup(g)
	return g
}

// fallbackGroupID picks the most recently used live group, else the first one.
func (w *Workspace) fallbackGroupID() string {
	if id, ok := w.mru.First(func(id string) bool { return w.reg.group(id) != nil }); ok {
		return id
	}
	if len(w.reg.groups) > 0 {
		return w.reg.groups[0].ID
	}
	return ""
}

// Group returns a copy of the group with the given id.
func (w *Workspace) Group(id string) (Group, bool) {
	g := w.reg.group(id)
	if g == nil {
		return Group{}, false
	}
	return g.copy(), true
}

// Tab returns a copy of the tab with the given id.
func (w *Workspace) Tab(id string) (Tab, bool) {
	t := w.reg.tab(id)
	if t == nil {
		return Tab{}, false
	}
	return Tab{ID: t.ID, TabMeta: t.TabMeta.clone()}, true
}

// GroupOfTab returns the id of the group holding tabID.
func (w *Workspace) GroupOfTab(tabID string) (string, bool) {
	g := w.reg.owner(tabID)
	if g == nil {
		return "", false
	}
	return g.ID, true
}

// GroupTabs returns the tabs of a group in display order.
func (w *Workspace) GroupTabs(groupID string) []Tab {
	g := w.reg.group(groupID)
	if g == nil {
		return nil
	}
	out := make([]Tab, 0, len(g.TabIDs))
	for _, id := range g.TabIDs {
		if t, ok := w.Tab(id); ok {
			out = append(out, t)
		}
	}
	return out
}

// Groups returns copies of all groups in creation order.
func (w *Workspace) Groups() []Group {
	out := make([]Group, 0, len(w.reg.groups))
	for _, g := range w.reg.groups {
		out = append(out, g.copy())
	}
	return out
}

// Tabs returns copies of all tabs in creation order.
func (w *Workspace) Tabs() []Tab {
	out := make([]Tab, 0, len(w.reg.tabs))
	for _, t := range w.reg.tabs {
		out = append(out, Tab{ID: t.ID, TabMeta: t.TabMeta.clone()})
	}
	return out
}

// Rects lays the groups out over the unit square.
func (w *Workspace) Rects() []layout.GroupRect {
	return layout.CollectGroupRects(w.root, 0, 0, 1, 1)
}

// Layout returns a copy of the split tree.
func (w *Workspace) Layout() *layout.Node { return layout.Clone(w.root) }

// ActiveGroup returns the focused group.
func (w *Workspace) ActiveGroup() (Group, bool) { return w.Group(w.activeGroupID) }

// ActiveTab returns the active tab of the focused group.
func (w *Workspace) ActiveTab() (Tab, bool) {
	g := w.reg.group(w.activeGroupID)
	if g == nil {
		return Tab{}, false
	}
	return w.Tab(g.ActiveTabID)
}

// MruRank returns the recency rank of a group (0 = most recent), or
// math.MaxInt for groups that were never activated.
func (w *Workspace) MruRank(groupID string) int { return w.mru.Rank(groupID) }

// MruOrder returns group ids, most recent first.
func (w *Workspace) MruOrder() []string { return w.mru.Order() }

// ClosedTabs returns the number of entries available to ReopenClosedTab.
func (w *Workspace) ClosedTabs() int { return w.closed.Len() }

// Validate checks the structural invariants and reports every violation.
func (w *Workspace) Validate() error {
	var errs []error
	if len(w.reg.groups) == 0 {
		errs = append(errs, errors.New("no groups"))
	}
	if len(w.reg.tabs) == 0 {
		errs = append(errs, errors.New("no tabs"))
	}

	leaves := map[string]int{}
	for _, id := range layout.LeafGroupIDs(w.root) {
		leaves[id]++
	}
	for id, n := range leaves {
		if n > 1 {
			errs = append(errs, fmt.Errorf("group %s appears in %d leaves", id, n))
		}
		if w.reg.group(id) == nil {
			errs = append(errs, fmt.Errorf("leaf references unknown group %s", id))
		}
	}

	walkSplits(w.root, func(n *layout.Node) {
		if !layout.ValidRatio(n.Ratio) {
			errs = append(errs, fmt.Errorf("split %s has ratio %v outside (0,1)", n.ID, n.Ratio))
		}
	})

	owners := map[string]int{}
	for _, g := range w.reg.groups {
		if leaves[g.ID] == 0 {
			errs = append(errs, fmt.Errorf("group %s has no leaf", g.ID))
		}
		seen := map[string]bool{}
		for _, id := range g.TabIDs {
			if seen[id] {
				errs = append(errs, fmt.Errorf("group %s lists tab %s twice", g.ID, id))
			}
			seen[id] = true
			owners[id]++
			if w.reg.tab(id) == nil {
				errs = append(errs, fmt.Errorf("group %s lists unknown tab %s", g.ID, id))
			}
		}
		if g.ActiveTabID != "" && !seen[g.ActiveTabID] {
			errs = append(errs, fmt.Errorf("group %s active tab %s is not a member", g.ID, g.ActiveTabID))
		}
		if g.ActiveTabID == "" && len(g.TabIDs) > 0 {
			errs = append(errs, fmt.Errorf("group %s has tabs but no active tab", g.ID))
		}
	}
	for _, t := range w.reg.tabs {
		if n := owners[t.ID]; n != 1 {
			errs = append(errs, fmt.Errorf("tab %s is owned by %d groups", t.ID, n))
		}
	}
	if w.reg.group(w.activeGroupID) == nil {
		errs = append(errs, fmt.Errorf("active group %q does not exist", w.activeGroupID))
	}
	seenMRU := map[string]bool{}
	for _, id := range w.mru.order {
		if seenMRU[id] {
			errs = append(errs, fmt.Errorf("mru lists %s twice", id))
		}
		seenMRU[id] = true
		if w.reg.group(id) == nil {
			errs = append(errs, fmt.Errorf("mru lists closed group %s", id))
		}
	}
	return errors.Join(errs...)
}

func walkSplits(n *layout.Node, fn func(*layout.Node)) {
	if n == nil || n.IsLeaf() {
		return
	}
	fn(n)
	walkSplits(n.First, fn)
	walkSplits(n.Second, fn)
}

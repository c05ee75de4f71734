/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"panegrid/internal/layout"
	"panegrid/internal/script"
	"panegrid/internal/workspace"
)

const (
	gridW = 64
	gridH = 18
)

func printResults(w io.Writer, results []script.Result) {
	_, _ = fmt.Fprintf(w, "%4s  %4s  %-16s %-8s %s\n", "step", "line", "op", "result", "id")
	for _, r := range results {
		status := "ok"
		if !r.OK {
			status = "declined"
		}
		_, _ = fmt.Fprintf(w, "%4d  %4d  %-16s %-8s %s\n", r.Index+1, r.Line, r.Op, status, r.ID)
	}
	_, _ = fmt.Fprintln(w)
}

func tabName(t workspace.Tab) string {
	if t.FileName != nil && *t.FileName != "" {
		return *t.FileName
	}
	return "(untitled)"
}

func printSnapshot(w io.Writer, snap workspace.Snapshot) {
	tabs := make(map[string]workspace.Tab, len(snap.Tabs))
	for _, t := range snap.Tabs {
		tabs[t.ID] = t
	}
	labels := make(map[string]string, len(snap.Groups))
	for i, g := range snap.Groups {
		label := fmt.Sprintf("%d", i+1)
		if g.ID == snap.ActiveGroupID {
			label += "*"
		}
		if t, ok := tabs[g.ActiveTabID]; ok {
			label += " " + tabName(t)
		}
		labels[g.ID] = label
	}

	_, _ = fmt.Fprintln(w, "Layout (* = active group):")
	for _, line := range drawGrid(snap, labels) {
		_, _ = fmt.Fprintln(w, line)
	}
	_, _ = fmt.Fprintln(w, "Groups:")
	for i, g := range snap.Groups {
		names := make([]string, 0, len(g.TabIDs))
		for _, id := range g.TabIDs {
			n := tabName(tabs[id])
			if t := tabs[id]; t.IsDirty {
				n += " [+]"
			}
			if id == g.ActiveTabID {
				n = "<" + n + ">"
			}
			names = append(names, n)
		}
		_, _ = fmt.Fprintf(w, "  %d  %s  %s\n", i+1, g.ID, strings.Join(names, ", "))
	}
}

// drawGrid renders the layout tree as nested bordered boxes, one per group,
// sized from the split ratios. The active group gets a double border.
func drawGrid(snap workspace.Snapshot, labels map[string]string) []string {
	out := renderNode(snap.Layout, gridW, gridH, snap.ActiveGroupID, labels)
	return strings.Split(out, "\n")
}

func renderNode(n *layout.Node, w, h int, active string, labels map[string]string) string {
	if n == nil {
		return ""
	}
	if n.IsLeaf() {
		border := lipgloss.NormalBorder()
		if n.GroupID == active {
			border = lipgloss.DoubleBorder()
		}
		iw, ih := max(w-2, 0), max(h-2, 0)
		label := []rune(labels[n.GroupID])
		if len(label) > iw {
			label = label[:iw]
		}
		return lipgloss.NewStyle().
			Border(border).
			Width(iw).
			Height(ih).
			Render(string(label))
	}
	ratio := n.Ratio
	if !layout.ValidRatio(ratio) {
		ratio = layout.DefaultRatio
	}
	ratio = min(max(ratio, layout.RenderRatioMin), layout.RenderRatioMax)
	if n.Orientation == layout.Horizontal {
		fw := splitCells(w, ratio)
		return lipgloss.JoinHorizontal(lipgloss.Top,
			renderNode(n.First, fw, h, active, labels),
			renderNode(n.Second, w-fw, h, active, labels))
	}
	fh := splitCells(h, ratio)
	return lipgloss.JoinVertical(lipgloss.Left,
		renderNode(n.First, w, fh, active, labels),
		renderNode(n.Second, w, h-fh, active, labels))
}

// splitCells divides n cells at ratio, leaving each side room for its border.
func splitCells(n int, ratio float64) int {
	if n < 4 {
		return n / 2
	}
	return min(max(int(math.Round(float64(n)*ratio)), 2), n-2)
}

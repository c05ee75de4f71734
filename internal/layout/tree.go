/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package layout holds the binary split tree that partitions the workspace
// into group rectangles, and the geometric navigator that walks between them.
//
// Trees are treated as immutable values: every mutation returns a new root
// and shares the subtrees it did not touch. Nothing here panics on unknown
// ids; a missing target leaves the tree as it was.
package layout

import "math"

// Orientation of a split. Horizontal places the children left/right (first =
// left), vertical places them top/bottom (first = top).
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Kind discriminates leaf and split nodes.
type Kind string

const (
	KindLeaf  Kind = "leaf"
	KindSplit Kind = "split"
)

// Ratio bounds. Rendering and setting use different bounds; see SetSplitRatio.
const (
	RenderRatioMin = 0.10
	RenderRatioMax = 0.90
	SetRatioMin    = 0.15
	SetRatioMax    = 0.85
	DefaultRatio   = 0.5
)

// Node is either a leaf referencing one group or a split with two children.
// Ratio is the fractional size of First.
type Node struct {
	Kind        Kind        `json:"kind"`
	GroupID     string      `json:"groupId,omitempty"`
	ID          string      `json:"id,omitempty"`
	Orientation Orientation `json:"orientation,omitempty"`
	Ratio       float64     `json:"ratio,omitempty"`
	First       *Node       `json:"first,omitempty"`
	Second      *Node       `json:"second,omitempty"`
}

// Leaf returns a leaf node for groupID.
func Leaf(groupID string) *Node { return &Node{Kind: KindLeaf, GroupID: groupID} }

// Split returns a split node with the given children.
func Split(id string, o Orientation, ratio float64, first, second *Node) *Node {
	return &Node{Kind: KindSplit, ID: id, Orientation: o, Ratio: ratio, First: first, Second: second}
}

func (n *Node) IsLeaf() bool { return n != nil && n.Kind == KindLeaf }

func (n *Node) withChildren(first, second *Node) *Node {
	c := *n
	c.First, c.Second = first, second
	return &c
}

// CollectGroupRects partitions the rectangle (x,y,w,h) according to the tree
// and returns one entry per leaf, in depth-first (first before second) order.
// The stored ratio is clamped to [RenderRatioMin, RenderRatioMax] here so a
// stray value never collapses a pane to nothing.
func CollectGroupRects(node *Node, x, y, w, h float64) []GroupRect {
	var out []GroupRect
	collectRects(node, x, y, w, h, &out)
	return out
}

func collectRects(node *Node, x, y, w, h float64, out *[]GroupRect) {
	if node == nil {
		return
	}
	if node.IsLeaf() {
		*out = append(*out, GroupRect{GroupID: node.GroupID, Rect: R(x, y, w, h)})
		return
	}
	ratio := node.Ratio
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		ratio = DefaultRatio
	}
	ratio = clamp(ratio, RenderRatioMin, RenderRatioMax)
	if node.Orientation == Horizontal {
		fw := w * ratio
		collectRects(node.First, x, y, fw, h, out)
		collectRects(node.Second, x+fw, y, w-fw, h, out)
		return
	}
	fh := h * ratio
	collectRects(node.First, x, y, w, fh, out)
	collectRects(node.Second, x, y+fh, w, h-fh, out)
}

// ReplaceLeafWithSplit substitutes replacement for the leaf holding groupID.
// The input tree is not modified.
func ReplaceLeafWithSplit(root *Node, groupID string, replacement *Node) *Node {
	if root == nil {
		return nil
	}
	if root.IsLeaf() {
		if root.GroupID == groupID {
			return replacement
		}
		return root
	}
	first := ReplaceLeafWithSplit(root.First, groupID, replacement)
	second := ReplaceLeafWithSplit(root.Second, groupID, replacement)
	if first == root.First && second == root.Second {
		return root
	}
	return root.withChildren(first, second)
}

// RemoveLeafNode deletes the leaf holding groupID. A split left with a single
// child collapses into that child; nil is returned when nothing remains.
func RemoveLeafNode(root *Node, groupID string) *Node {
	if root == nil {
		return nil
	}
	if root.IsLeaf() {
		if root.GroupID == groupID {
			return nil
		}
		return root
	}
	first := RemoveLeafNode(root.First, groupID)
	second := RemoveLeafNode(root.Second, groupID)
	switch {
	case first == nil && second == nil:
		return nil
	case first == nil:
		return second
	case second == nil:
		return first
	case first == root.First && second == root.Second:
		return root
	}
	return root.withChildren(first, second)
}

// SetSplitRatio returns a tree where the split identified by splitID (the
// split's own id, not a group id) has its ratio set to ratio clamped to
// [SetRatioMin, SetRatioMax].
//
// The settable range is narrower than the range CollectGroupRects renders.
// Both are kept as they are; ratios outside the settable range can still
// reach the tree from other sources and must render without collapsing.
// A NaN or infinite ratio leaves the tree unchanged.
func SetSplitRatio(root *Node, splitID string, ratio float64) *Node {
	if root == nil || root.IsLeaf() || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return root
	}
	if root.ID == splitID {
		c := *root
		c.Ratio = clamp(ratio, SetRatioMin, SetRatioMax)
		return &c
	}
	first := SetSplitRatio(root.First, splitID, ratio)
	second := SetSplitRatio(root.Second, splitID, ratio)
	if first == root.First && second == root.Second {
		return root
	}
	return root.withChildren(first, second)
}

// FindSplit returns the split node with the given id, or nil.
func FindSplit(root *Node, splitID string) *Node {
	if root == nil || root.IsLeaf() {
		return nil
	}
	if root.ID == splitID {
		return root
	}
	if n := FindSplit(root.First, splitID); n != nil {
		return n
	}
	return FindSplit(root.Second, splitID)
}

// LeafGroupIDs lists the group ids referenced by leaves, first-to-second.
func LeafGroupIDs(root *Node) []string {
	var ids []string
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if n.IsLeaf() {
			ids = append(ids, n.GroupID)
			return
		}
		walk(n.First)
		walk(n.Second)
	}
	walk(root)
	return ids
}

// ContainsGroup reports whether a leaf references groupID.
func ContainsGroup(root *Node, groupID string) bool {
	for _, id := range LeafGroupIDs(root) {
		if id == groupID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the tree.
func Clone(root *Node) *Node {
	if root == nil {
		return nil
	}
	c := *root
	c.First = Clone(root.First)
	c.Second = Clone(root.Second)
	return &c
}

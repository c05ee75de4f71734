/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package layout

import (
	"math"
	"sort"
	"strings"
)

// Direction of a navigation, split or transfer command.
type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
	Up    Direction = "up"
	Down  Direction = "down"
)

// Epsilon treats edges closer than this as flush.
const Epsilon = 1e-6

// ParseDirection accepts left/right/up/down (case-insensitive) and the
// h/l/k/j vim keys.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "h":
		return Left, true
	case "right", "l":
		return Right, true
	case "up", "k":
		return Up, true
	case "down", "j":
		return Down, true
	}
	return "", false
}

func (d Direction) Valid() bool {
	switch d {
	case Left, Right, Up, Down:
		return true
	}
	return false
}

// Orientation returns the split orientation that places a new pane in d.
func (d Direction) Orientation() Orientation {
	if d == Left || d == Right {
		return Horizontal
	}
	return Vertical
}

// Before reports whether a pane created in direction d goes first in its split.
func (d Direction) Before() bool { return d == Left || d == Up }

// RankFunc orders groups by recency; lower is more recent. Unknown groups
// should rank math.MaxInt.
type RankFunc func(groupID string) int

type candidate struct {
	id      string
	primary float64 // distance (strict pass) or anchor (wrap pass)
	overlap float64
	rank    int
}

// FindDirectional returns the group whose rectangle is the best neighbour of
// sourceID in direction dir.
//
// Strict pass: only rectangles lying entirely beyond the source edge qualify;
// they sort by gap to the source, then by overlap on the perpendicular axis
// (larger first), then by rank. When none qualify and wrap is set, every other
// rectangle is considered and the one at the far side of the workspace wins:
// smallest leading edge for right/down, largest trailing edge for left/up,
// with the same overlap and rank tie-breaks.
func FindDirectional(rects []GroupRect, sourceID string, dir Direction, wrap bool, rank RankFunc) (string, bool) {
	if !dir.Valid() {
		return "", false
	}
	var src GroupRect
	found := false
	for _, r := range rects {
		if r.GroupID == sourceID {
			src, found = r, true
			break
		}
	}
	if !found {
		return "", false
	}
	rankOf := func(id string) int {
		if rank == nil {
			return math.MaxInt
		}
		return rank(id)
	}

	var strict []candidate
	for _, r := range rects {
		if r.GroupID == sourceID {
			continue
		}
		dist, ok := edgeDistance(src.Rect, r.Rect, dir)
		if !ok {
			continue
		}
		strict = append(strict, candidate{id: r.GroupID, primary: dist, overlap: perpendicularOverlap(src.Rect, r.Rect, dir), rank: rankOf(r.GroupID)})
	}
	if len(strict) > 0 {
		sortCandidates(strict, true)
		return strict[0].id, true
	}
	if !wrap {
		return "", false
	}

	var all []candidate
	for _, r := range rects {
		if r.GroupID == sourceID {
			continue
		}
		all = append(all, candidate{id: r.GroupID, primary: wrapAnchor(r.Rect, dir), overlap: perpendicularOverlap(src.Rect, r.Rect, dir), rank: rankOf(r.GroupID)})
	}
	if len(all) == 0 {
		return "", false
	}
	sortCandidates(all, dir == Right || dir == Down)
	return all[0].id, true
}

// edgeDistance returns the gap between src's edge facing dir and r's near
// edge, and whether r lies entirely beyond that edge.
func edgeDistance(src, r Rect, dir Direction) (float64, bool) {
	switch dir {
	case Right:
		if r.X < src.Right()-Epsilon {
			return 0, false
		}
		return max(0, r.X-src.Right()), true
	case Left:
		if r.Right() > src.X+Epsilon {
			return 0, false
		}
		return max(0, src.X-r.Right()), true
	case Down:
		if r.Y < src.Bottom()-Epsilon {
			return 0, false
		}
		return max(0, r.Y-src.Bottom()), true
	case Up:
		if r.Bottom() > src.Y+Epsilon {
			return 0, false
		}
		return max(0, src.Y-r.Bottom()), true
	}
	return 0, false
}

func perpendicularOverlap(src, r Rect, dir Direction) float64 {
	if dir == Left || dir == Right {
		return overlap(src.Y, src.Bottom(), r.Y, r.Bottom())
	}
	return overlap(src.X, src.Right(), r.X, r.Right())
}

func wrapAnchor(r Rect, dir Direction) float64 {
	switch dir {
	case Right:
		return r.X
	case Left:
		return r.Right()
	case Down:
		return r.Y
	default:
		return r.Bottom()
	}
}

func sortCandidates(cs []candidate, ascending bool) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.primary != b.primary {
			if ascending {
				return a.primary < b.primary
			}
			return a.primary > b.primary
		}
		if a.overlap != b.overlap {
			return a.overlap > b.overlap
		}
		return a.rank < b.rank
	})
}

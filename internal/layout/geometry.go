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

import "math"

// Geometry used by the split tree. Coordinates are fractions of the unit
// workspace square; the UI layer scales them to pixels.

// Rect is an axis-aligned rectangle defined by its min corner and size.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, Width: w, Height: h} }

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// GroupRect is the rectangle a group occupies in the current layout.
type GroupRect struct {
	GroupID string `json:"groupId"`
	Rect
}

// overlap returns the length of the intersection of [a0,a1] and [b0,b1], or 0.
func overlap(a0, a1, b0, b1 float64) float64 {
	lo := max(a0, b0)
	hi := min(a1, b1)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// ValidRatio reports whether r can be stored on a split: finite and strictly
// inside (0, 1).
func ValidRatio(r float64) bool {
	return !math.IsNaN(r) && !math.IsInf(r, 0) && r > 0 && r < 1
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

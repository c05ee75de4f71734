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

import "math"

// MRU orders group ids by activation, most recent first, without duplicates.
// The zero value is ready to use.
type MRU struct {
	order []string
}

// Touch moves id to the front.
func (m *MRU) Touch(id string) {
	if id == "" {
		return
	}
	next := make([]string, 0, len(m.order)+1)
	next = append(next, id)
	for _, v := range m.order {
		if v != id {
			next = append(next, v)
		}
	}
	m.order = next
}

// Rank returns the position of id, or math.MaxInt when it was never touched.
func (m *MRU) Rank(id string) int {
	if i := indexOf(m.order, id); i >= 0 {
		return i
	}
	return math.MaxInt
}

// Remove forgets id.
func (m *MRU) Remove(id string) {
	if i := indexOf(m.order, id); i >= 0 {
		m.order = append(m.order[:i:i], m.order[i+1:]...)
	}
}

// First returns the most recent id accepted by keep.
func (m *MRU) First(keep func(string) bool) (string, bool) {
	for _, id := range m.order {
		if keep == nil || keep(id) {
			return id, true
		}
	}
	return "", false
}

// Order returns a copy of the current order.
func (m *MRU) Order() []string { return append([]string(nil), m.order...) }

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

// registry owns the canonical tab and group lists. Lookup maps are derived
// from them and rebuilt on the first read after a mutation.
type registry struct {
	tabs   []*Tab
	groups []*Group

	stale      bool
	groupByID  map[string]*Group
	tabByID    map[string]*Tab
	groupOfTab map[string]*Group
}

func (r *registry) invalidate() { r.stale = true }

func (r *registry) index() {
	if !r.stale && r.groupByID != nil {
		return
	}
	r.groupByID = make(map[string]*Group, len(r.groups))
	r.tabByID = make(map[string]*Tab, len(r.tabs))
	r.groupOfTab = make(map[string]*Group, len(r.tabs))
	for _, g := range r.groups {
		r.groupByID[g.ID] = g
		for _, id := range g.TabIDs {
			r.groupOfTab[id] = g
		}
	}
	for _, t := range r.tabs {
		r.tabByID[t.ID] = t
	}
	r.stale = false
}

func (r *registry) group(id string) *Group {
	if id == "" {
		return nil
	}
	r.index()
	return r.groupByID[id]
}

func (r *registry) tab(id string) *Tab {
	if id == "" {
		return nil
	}
	r.index()
	return r.tabByID[id]
}

// owner returns the group whose TabIDs contains tabID.
func (r *registry) owner(tabID string) *Group {
	if tabID == "" {
		return nil
	}
	r.index()
	return r.groupOfTab[tabID]
}

func (r *registry) addGroup(g *Group) {
	r.groups = append(r.groups, g)
	r.invalidate()
}

func (r *registry) removeGroup(id string) {
	for i, g := range r.groups {
		if g.ID == id {
			r.groups = append(r.groups[:i], r.groups[i+1:]...)
			break
		}
	}
	r.invalidate()
}

func (r *registry) addTab(t *Tab) {
	r.tabs = append(r.tabs, t)
	r.invalidate()
}

func (r *registry) removeTab(id string) {
	for i, t := range r.tabs {
		if t.ID == id {
			r.tabs = append(r.tabs[:i], r.tabs[i+1:]...)
			break
		}
	}
	r.invalidate()
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

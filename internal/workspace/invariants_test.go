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
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"

	"panegrid/internal/layout"
)

var allDirections = []layout.Direction{layout.Left, layout.Right, layout.Up, layout.Down}

func pickGroup(r *rand.Rand, ws *Workspace) Group {
	gs := ws.Groups()
	return gs[r.IntN(len(gs))]
}

func pickTab(r *rand.Rand, ws *Workspace) Tab {
	ts := ws.Tabs()
	return ts[r.IntN(len(ts))]
}

// Every command keeps the registry, the tree and the MRU consistent, and the
// rectangles always tile the unit square.
func TestInvariantsHoldUnderRandomCommands(t *testing.T) {
	for seed := uint64(1); seed <= 8; seed++ {
		r := rand.New(rand.NewPCG(seed, seed*7919))
		ws := newTestWorkspace(t)
		for step := 0; step < 300; step++ {
			dir := allDirections[r.IntN(len(allDirections))]
			switch r.IntN(14) {
			case 0:
				ws.CreateTab(CreateTabOptions{GroupID: pickGroup(r, ws).ID, Activate: r.IntN(2) == 0,
					Initial: &TabMeta{FileName: strp("f.pdf")}})
			case 1:
				tab := pickTab(r, ws)
				owner, _ := ws.GroupOfTab(tab.ID)
				ws.CloseTab(owner, tab.ID)
			case 2:
				ws.CloseGroup(pickGroup(r, ws).ID)
			case 3:
				if len(ws.Groups()) < 12 {
					ws.SplitGroup(pickGroup(r, ws).ID, dir)
				}
			case 4:
				ws.ActivateGroup(pickGroup(r, ws).ID)
			case 5:
				ws.MoveTabToGroup(pickTab(r, ws).ID, pickGroup(r, ws).ID, r.IntN(2) == 0)
			case 6:
				ws.CopyTabToGroup(pickTab(r, ws).ID, pickGroup(r, ws).ID, r.IntN(2) == 0)
			case 7:
				if len(ws.Groups()) < 12 {
					ws.MoveActiveTabToDirection(dir)
				}
			case 8:
				if len(ws.Groups()) < 12 {
					ws.CopyActiveTabToDirection(dir)
				}
			case 9:
				if root := ws.Layout(); !root.IsLeaf() {
					ws.SetSplitRatio(root.ID, r.Float64())
				}
			case 10:
				ws.FocusGroup(dir, r.IntN(2) == 0)
			case 11:
				ws.ReopenClosedTab()
			case 12:
				g := pickGroup(r, ws)
				n := len(g.TabIDs) + 1
				ws.MoveTabWithinGroup(g.ID, r.IntN(n), r.IntN(n))
			case 13:
				ws.CycleTab(pickGroup(r, ws).ID, r.IntN(5)-2)
			}
			require.NoError(t, ws.Validate(), "seed %d step %d", seed, step)

			area := 0.0
			for _, gr := range ws.Rects() {
				area += gr.Width * gr.Height
			}
			require.InDelta(t, 1.0, area, 1e-9, "seed %d step %d", seed, step)
			require.Len(t, ws.Rects(), len(ws.Groups()))
		}
	}
}

func TestSnapshotMatchesSchema(t *testing.T) {
	ws := newTestWorkspace(t)
	a := activeGroupID(t, ws)
	ws.CreateTab(CreateTabOptions{Initial: &TabMeta{FileName: strp("a.pdf"), OriginalPath: strp("/tmp/a.pdf")}})
	b, _ := ws.SplitGroup(a, layout.Right)
	ws.CreateTab(CreateTabOptions{GroupID: b, Initial: &TabMeta{FileName: strp("b.djvu"), IsDjvu: true}})
	_, _ = ws.SplitGroup(b, layout.Down)
	ws.SetSplitRatio(ws.Layout().ID, 0.7)

	data, err := json.Marshal(ws.Snapshot())
	require.NoError(t, err)

	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(SnapshotSchema), gojsonschema.NewBytesLoader(data))
	require.NoError(t, err)
	require.True(t, res.Valid(), "%v", res.Errors())
}

func TestSnapshotSchemaRejectsBrokenLayout(t *testing.T) {
	doc := []byte(`{"groups":[{"id":"g","tabIds":["t"],"activeTabId":"t"}],
		"tabs":[{"id":"t","fileName":null,"originalPath":null,"isDirty":false,"isDjvu":false}],
		"layout":{"kind":"split","id":"s","orientation":"diagonal","ratio":0.5,"first":{"kind":"leaf","groupId":"g"}},
		"rects":[],"activeGroupId":"g","activeTabId":"t","mru":["g"]}`)
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(SnapshotSchema), gojsonschema.NewBytesLoader(doc))
	require.NoError(t, err)
	assert.False(t, res.Valid())
}

func TestSnapshotIsDetached(t *testing.T) {
	ws := newTestWorkspace(t)
	snap := ws.Snapshot()
	snap.Groups[0].TabIDs[0] = "mutated"
	snap.Layout.GroupID = "mutated"

	g, _ := ws.ActiveGroup()
	assert.NotEqual(t, "mutated", g.TabIDs[0])
	assert.NotEqual(t, "mutated", ws.Layout().GroupID)

	sg, ok := snap.Group(g.ID)
	require.True(t, ok)
	assert.Equal(t, g.ID, sg.ID)
	_, ok = snap.Rect("missing")
	assert.False(t, ok)
}

func TestLocked_SerializesCommands(t *testing.T) {
	lw := NewLocked(newTestWorkspace(t))
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				lw.Do(func(ws *Workspace) {
					ws.CreateTab(CreateTabOptions{})
				})
			}
		}()
	}
	wg.Wait()

	snap := lw.Snapshot()
	assert.Len(t, snap.Tabs, 1+16*25)
	lw.Do(func(ws *Workspace) { require.NoError(t, ws.Validate()) })
}

func TestMRU(t *testing.T) {
	var m MRU
	assert.Equal(t, math.MaxInt, m.Rank("a"))
	_, ok := m.First(func(string) bool { return true })
	assert.False(t, ok)

	m.Touch("a")
	m.Touch("b")
	m.Touch("c")
	m.Touch("a")
	assert.Equal(t, []string{"a", "c", "b"}, m.Order())
	assert.Equal(t, 0, m.Rank("a"))
	assert.Equal(t, 2, m.Rank("b"))

	first, ok := m.First(func(id string) bool { return id != "a" })
	require.True(t, ok)
	assert.Equal(t, "c", first)

	m.Remove("c")
	m.Remove("missing")
	assert.Equal(t, []string{"a", "b"}, m.Order())
	assert.Equal(t, math.MaxInt, m.Rank("c"))
}

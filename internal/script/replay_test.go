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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "panegrid/internal/log"
	"panegrid/internal/workspace"
)

func newWorkspace() *workspace.Workspace {
	n := 0
	return workspace.New(
		workspace.WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		workspace.WithLogger(applog.Discard()),
	)
}

func okFlags(results []Result) []bool {
	out := make([]bool, len(results))
	for i, r := range results {
		out[i] = r.OK
	}
	return out
}

func TestReplay_SplitCreateFocusMove(t *testing.T) {
	s, err := Parse([]byte(`steps:
  - {op: split, dir: right}
  - {op: create_tab, group: "@1", file: b.pdf}
  - {op: focus, dir: left}
  - {op: move_tab, group: "@1", tab: "@active", target: "@0"}
  - {op: close_group, group: "@1"}
  - {op: reopen_tab}
`))
	require.NoError(t, err)

	ws := newWorkspace()
	results, err := Replay(ws, s, applog.Discard())
	require.NoError(t, err)
	require.Len(t, results, 6)

	assert.Equal(t, []bool{true, true, true, true, false, false}, okFlags(results))
	assert.Equal(t, "id-3", results[0].ID, "split reports the new group")
	assert.Equal(t, "id-5", results[1].ID, "create_tab reports the new tab")
	assert.Equal(t, "id-1", results[2].ID, "focus reports the focused group")
	assert.Equal(t, 3, results[1].Line)

	groups := ws.Groups()
	require.Len(t, groups, 1, "the emptied source group is closed")
	assert.Equal(t, []string{"id-2", "id-5"}, groups[0].TabIDs)
	require.NoError(t, ws.Validate())
}

func TestReplay_WrapRatioCycleReopenCopy(t *testing.T) {
	s, err := Parse([]byte(`wrap: true
steps:
  - {op: split, dir: right}
  - {op: focus, dir: right}
  - {op: focus, dir: right, wrap: false}
  - {op: focus, dir: right}
  - {op: set_ratio, ratio: 0.95}
  - {op: create_tab, file: a.pdf, activate: false}
  - {op: cycle_tab}
  - {op: close_tab, tab: "@active"}
  - {op: reopen_tab}
  - {op: copy_active, dir: down}
  - {op: move_tab_within, group: "@0", from: 0, to: 1}
`))
	require.NoError(t, err)

	ws := newWorkspace()
	results, err := Replay(ws, s, nil)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false, true, true, true, true, true, true, true, true}, okFlags(results))

	assert.Equal(t, "id-3", results[1].ID)
	assert.Equal(t, "id-1", results[3].ID, "wraps back to the leftmost group")
	assert.Equal(t, 0.85, ws.Layout().Ratio, "set ratio clamps")

	reopened, ok := ws.Tab(results[8].ID)
	require.True(t, ok)
	assert.Equal(t, "a.pdf", *reopened.FileName)

	g0 := ws.Groups()[0]
	assert.Equal(t, []string{reopened.ID, "id-2"}, g0.TabIDs)
	assert.Len(t, ws.Groups(), 3)
	require.NoError(t, ws.Validate())
}

func TestReplay_RejectsInvalidScript(t *testing.T) {
	s := Script{Steps: []Step{{Op: "teleport"}}}
	_, err := Replay(newWorkspace(), s, nil)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestResolveReferences(t *testing.T) {
	ws := newWorkspace()
	a, _ := ws.ActiveGroup()
	b, ok := ws.SplitGroup(a.ID, "down")
	require.True(t, ok)

	assert.Equal(t, a.ID, resolveGroup(ws, ""))
	assert.Equal(t, a.ID, resolveGroup(ws, "@active"))
	assert.Equal(t, b, resolveGroup(ws, "@1"))
	assert.Equal(t, b, resolveGroup(ws, "@-1"))
	assert.Equal(t, "", resolveGroup(ws, "@7"))
	assert.Equal(t, "literal", resolveGroup(ws, "literal"))

	assert.Equal(t, a.ActiveTabID, resolveTab(ws, a.ID, "@active"))
	assert.Equal(t, a.ActiveTabID, resolveTab(ws, a.ID, "@0"))
	assert.Equal(t, "", resolveTab(ws, b, "@0"))
	assert.Equal(t, "", resolveTab(ws, "missing", "@0"))

	assert.Equal(t, ws.Layout().ID, resolveSplit(ws, "@root"))
	assert.Equal(t, "s-1", resolveSplit(ws, "s-1"))
}

func TestReplay_ReopenInGroup(t *testing.T) {
	s, err := Parse([]byte(`steps:
  - {op: create_tab, file: a.pdf}
  - {op: split, dir: down}
  - {op: create_tab, group: "@1", file: b.pdf}
  - {op: close_tab, group: "@0", tab: "@1"}
  - {op: reopen_tab, group: "@1"}
  - {op: reopen_tab, group: "@0"}
`))
	require.NoError(t, err)
	ws := newWorkspace()
	results, err := Replay(ws, s, applog.Discard())
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true, true, false, true}, okFlags(results))
	re, _ := ws.Tab(results[5].ID)
	assert.Equal(t, "a.pdf", *re.FileName)
}

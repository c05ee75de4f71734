/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package script reads YAML command scripts and replays them against a
// workspace. A script is a list of steps, each naming one workspace command
// and its arguments:
//
//	wrap: true
//	steps:
//	  - op: split
//	    group: "@active"
//	    dir: right
//	  - op: create_tab
//	    group: "@1"
//	    file: notes.pdf
//	  - op: focus
//	    dir: left
//
// Group references are "@active", "@N" (N-th group in registry order,
// negative counts from the end) or a literal id. Tab references work the same
// way within the step's group. A split reference is "@root" or a literal id.
package script

import (
	"errors"
	"fmt"
)

// Op names a workspace command.
type Op string

const (
	OpCreateTab     Op = "create_tab"
	OpCloseTab      Op = "close_tab"
	OpActivateGroup Op = "activate_group"
	OpActivateTab   Op = "activate_tab"
	OpCloseGroup    Op = "close_group"
	OpSplit         Op = "split"
	OpSetRatio      Op = "set_ratio"
	OpFocus         Op = "focus"
	OpMoveTab       Op = "move_tab"
	OpCopyTab       Op = "copy_tab"
	OpMoveWithin    Op = "move_tab_within"
	OpMoveActive    Op = "move_active"
	OpCopyActive    Op = "copy_active"
	OpReopenTab     Op = "reopen_tab"
	OpCycleTab      Op = "cycle_tab"
)

var knownOps = map[Op]bool{
	OpCreateTab: true, OpCloseTab: true, OpActivateGroup: true, OpActivateTab: true,
	OpCloseGroup: true, OpSplit: true, OpSetRatio: true, OpFocus: true, OpMoveTab: true,
	OpCopyTab: true, OpMoveWithin: true, OpMoveActive: true, OpCopyActive: true,
	OpReopenTab: true, OpCycleTab: true,
}

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArgs        = errors.New("bad arguments")
)

// Script is a parsed command script.
type Script struct {
	// Wrap is the default for focus steps; nil leaves the choice to the caller.
	Wrap  *bool  `yaml:"wrap,omitempty"`
	Steps []Step `yaml:"steps"`
}

// Step is one command. Only the fields the op needs are read.
type Step struct {
	Op       Op      `yaml:"op"`
	Group    string  `yaml:"group,omitempty"`
	Tab      string  `yaml:"tab,omitempty"`
	Target   string  `yaml:"target,omitempty"`
	Dir      string  `yaml:"dir,omitempty"`
	Split    string  `yaml:"split,omitempty"`
	Ratio    float64 `yaml:"ratio,omitempty"`
	From     int     `yaml:"from,omitempty"`
	To       int     `yaml:"to,omitempty"`
	Delta    int     `yaml:"delta,omitempty"`
	Wrap     *bool   `yaml:"wrap,omitempty"`
	Activate *bool   `yaml:"activate,omitempty"`

	// create_tab metadata
	File  string `yaml:"file,omitempty"`
	Path  string `yaml:"path,omitempty"`
	Dirty bool   `yaml:"dirty,omitempty"`
	Djvu  bool   `yaml:"djvu,omitempty"`

	Line int `yaml:"-"` // 1-based line of the step in the source, 0 if built in code
}

// Result reports the outcome of one step. ID carries the id a step produced
// (new group, new tab, focused group) when there is one.
type Result struct {
	Index int
	Line  int
	Op    Op
	OK    bool
	ID    string
}

// Error represents a script error with position context.
type Error struct {
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

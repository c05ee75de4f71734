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
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"panegrid/internal/layout"
)

// Parse decodes a YAML script and checks every step. Steps keep the source
// line they were read from so errors and results can point back at it.
func Parse(data []byte) (Script, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Script{}, fmt.Errorf("parse script: %w", err)
	}
	var s Script
	if len(doc.Content) == 0 {
		return s, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return Script{}, &Error{Line: root.Line, Column: root.Column, Message: "script must be a mapping with a steps list", Err: ErrBadArgs}
	}
	if err := root.Decode(&s); err != nil {
		return Script{}, fmt.Errorf("decode script: %w", err)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if key.Value != "steps" || val.Kind != yaml.SequenceNode {
			continue
		}
		for j, item := range val.Content {
			if j < len(s.Steps) {
				s.Steps[j].Line = item.Line
			}
		}
	}
	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}

// Load reads and parses a script file.
func Load(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return Script{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks that every step names a known command with usable arguments.
func (s Script) Validate() error {
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			err.Line = st.Line
			err.Column = 1
			err.Message = fmt.Sprintf("step %d (%s): %s", i+1, st.Op, err.Message)
			return err
		}
	}
	return nil
}

func badArgs(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Err: ErrBadArgs}
}

func (st Step) validate() *Error {
	if !knownOps[st.Op] {
		return &Error{Message: "unknown command", Err: ErrUnknownCommand}
	}
	switch st.Op {
	case OpSplit, OpFocus, OpMoveActive, OpCopyActive:
		if _, ok := layout.ParseDirection(st.Dir); !ok {
			return badArgs("invalid direction %q", st.Dir)
		}
	case OpSetRatio:
		if !layout.ValidRatio(st.Ratio) {
			return badArgs("ratio %v must be between 0 and 1", st.Ratio)
		}
		if st.Split != "" && st.Split != "@root" && strings.HasPrefix(st.Split, "@") {
			return badArgs("invalid split reference %q", st.Split)
		}
	case OpMoveTab, OpCopyTab:
		if st.Tab == "" || st.Target == "" {
			return badArgs("tab and target are required")
		}
	case OpActivateTab, OpCloseTab:
		if st.Tab == "" {
			return badArgs("tab is required")
		}
	case OpMoveWithin:
		if st.From < 0 || st.To < 0 {
			return badArgs("indexes must not be negative")
		}
	}
	for _, ref := range []string{st.Group, st.Tab, st.Target} {
		if !validRef(ref) {
			return badArgs("invalid reference %q", ref)
		}
	}
	return nil
}

// validRef accepts "", "@active", "@N" and literal ids.
func validRef(ref string) bool {
	if ref == "" || ref == "@active" || !strings.HasPrefix(ref, "@") {
		return true
	}
	_, err := strconv.Atoi(ref[1:])
	return err == nil
}

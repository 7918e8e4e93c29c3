// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package expr

import "slices"

// An entry in the back-reference undo log, recording the state of a node's
// back-references before the first write to them within a frame.
type undoEntry struct {
	node    *Expr
	usedIn  []*Expr
	version uint
}

type undoFrame struct {
	entries []undoEntry
	// Nodes recorded in this frame
	recorded map[*Expr]struct{}
}

func (f *undoFrame) record(e *Expr) {
	if _, ok := f.recorded[e]; !ok {
		f.recorded[e] = struct{}{}
		f.entries = append(f.entries, undoEntry{e, e.usedIn, e.usedInVersion})
	}
}

// AddUsedIn records that a given parent was constructed with a given child.
// If an undo frame is open, the child's previous back-references are recorded
// (once per frame) so they can be restored.
func (s *Store) AddUsedIn(child *Expr, parent *Expr) {
	if n := len(child.usedIn); n > 0 && child.usedIn[n-1] == parent {
		return
	}
	//
	if !s.undo.IsEmpty() {
		s.undo.Peek(0).record(child)
	}
	// Clip to ensure recorded lists are never overwritten.
	child.usedIn = append(slices.Clip(child.usedIn), parent)
	child.usedInVersion++
}

// UndoDepth returns the number of open undo frames.
func (s *Store) UndoDepth() uint {
	return s.undo.Len()
}

// PushUndo opens a new frame on the back-reference undo log.
func (s *Store) PushUndo() {
	s.undo.Push(&undoFrame{recorded: make(map[*Expr]struct{})})
}

// PopUndo closes the innermost undo frame, restoring the back-references of
// every node written within it.
func (s *Store) PopUndo() {
	frame := s.undo.Pop()
	//
	for i := len(frame.entries) - 1; i >= 0; i-- {
		entry := frame.entries[i]
		entry.node.usedIn = entry.usedIn
		entry.node.usedInVersion = entry.version
	}
}

// CommitUndo closes the innermost undo frame, keeping its writes.  These are
// merged into the enclosing frame, if there is one.
func (s *Store) CommitUndo() {
	frame := s.undo.Pop()
	//
	if s.undo.IsEmpty() {
		return
	}
	//
	parent := s.undo.Peek(0)
	//
	for _, entry := range frame.entries {
		if _, ok := parent.recorded[entry.node]; !ok {
			parent.recorded[entry.node] = struct{}{}
			parent.entries = append(parent.entries, entry)
		}
	}
}

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

import (
	"fmt"

	"github.com/consensys/go-rewrite/pkg/region"
	"github.com/consensys/go-rewrite/pkg/util/collection/stack"
)

// DEFAULT_TABLE_SIZE is the default number of buckets in each intern table.
const DEFAULT_TABLE_SIZE = 4099

// DEFAULT_SLOT_BYTES is the default number of annotation bytes allocated for
// each node.
const DEFAULT_SLOT_BYTES = 4

// PERMANENT_SPACE is the name of the region space from which nodes interned
// outside any scratch scope are allocated.
const PERMANENT_SPACE = "permanent"

// SCRATCH_SPACE is the name of the region space from which nodes interned
// within a scratch scope are allocated.
const SCRATCH_SPACE = "scratch"

// StoreConfig determines the geometry of an expression store.
type StoreConfig struct {
	// TableSize is the number of buckets in each intern table.
	TableSize uint `yaml:"table_size"`
	// SlotBytes is the number of annotation bytes allocated for each node.
	SlotBytes uint `yaml:"slot_bytes"`
	// TrackUsedIn determines whether back-references from children to their
	// parents are maintained.
	TrackUsedIn bool `yaml:"track_used_in"`
}

// DefaultStoreConfig returns the default store configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{TableSize: DEFAULT_TABLE_SIZE, SlotBytes: DEFAULT_SLOT_BYTES, TrackUsedIn: true}
}

// Store is responsible for constructing expression nodes, and ensures that
// structurally equal expressions are always represented by the same node.
// Nodes interned outside of any scratch scope are permanent, and are linked
// into a global term list.  A scratch scope is opened with Push and closed
// with Pop, after which every node interned within it becomes unreachable from
// the store's tables.  Once Release is called, such nodes are dead and any use
// of them through the store panics.  A store is not safe for concurrent use.
type Store struct {
	config  StoreConfig
	symbols *SymbolTable
	alloc   *region.Allocator
	// Spaces used for permanent and scratch nodes
	permanent, scratch region.SpaceID
	// Current intern tables
	tables tables
	// Tables saved on entry to the outermost scratch scope
	saved tables
	// Tables of the last scratch scope, awaiting release
	deleted tables
	// Scratch scope nesting depth
	pushLevel uint
	// Scratch space allocation point taken on entry to the outermost scope
	scratchMark region.Mark
	// Generation of scratch nodes currently alive
	generation uint
	// Undo log depth on entry to the outermost scope
	undoBase uint
	// Back-reference undo log
	undo *stack.Stack[*undoFrame]
	// Global term list
	first, last *Expr
	nterms      uint
	// Identifier for next node
	nextID uint64
	// Constants
	trueExpr, falseExpr *Expr
}

// NewStore constructs an empty store whose nodes are allocated from the given
// region allocator (or from a fresh allocator, if none is given).
func NewStore(config StoreConfig, alloc *region.Allocator) *Store {
	if config.TableSize == 0 {
		config.TableSize = DEFAULT_TABLE_SIZE
	}
	//
	if alloc == nil {
		alloc = region.New(region.DefaultConfig())
	}
	//
	s := &Store{
		config:    config,
		symbols:   NewSymbolTable(),
		alloc:     alloc,
		permanent: alloc.Register(PERMANENT_SPACE),
		scratch:   alloc.Register(SCRATCH_SPACE),
		tables:    newTables(config.TableSize),
		undo:      stack.NewStack[*undoFrame](),
		nextID:    1,
	}
	//
	s.trueExpr = s.Apply(TRUE)
	s.falseExpr = s.Apply(FALSE)
	//
	return s
}

// Config returns the configuration of this store.
func (s *Store) Config() StoreConfig {
	return s.config
}

// Symbols returns the symbol table of this store.
func (s *Store) Symbols() *SymbolTable {
	return s.symbols
}

// Allocator returns the region allocator from which nodes are allocated.
func (s *Store) Allocator() *region.Allocator {
	return s.alloc
}

// PushLevel returns the current scratch scope nesting depth.
func (s *Store) PushLevel() uint {
	return s.pushLevel
}

// Push enters a scratch scope.  Only the outermost scope swaps tables: the
// current tables are saved, and a shallow copy (accounted against the scratch
// space) becomes current.  Nodes interned within the scope are therefore
// invisible outside it.
func (s *Store) Push() {
	if s.pushLevel == 0 && !s.deleted.isEmpty() {
		panic("scratch scope entered before previous scope was released")
	}
	//
	s.pushLevel++
	//
	if s.pushLevel > 1 {
		return
	}
	//
	s.scratchMark = s.alloc.Mark(s.scratch)
	// Account for the bucket arrays of the copy
	s.alloc.Alloc(s.scratch, 8*s.config.TableSize*uint(numKinds))
	//
	s.saved = s.tables
	s.tables = s.tables.clone()
	s.undoBase = s.undo.Len()
	s.PushUndo()
}

// Pop leaves a scratch scope.  When leaving the outermost scope, back-references
// recorded within it are rolled back, and the saved tables are restored.  The
// scope's tables are retained until Release is called.
func (s *Store) Pop() {
	if s.pushLevel == 0 {
		panic("scratch scope exited without being entered")
	}
	//
	s.pushLevel--
	//
	if s.pushLevel > 0 {
		return
	}
	//
	for s.undo.Len() > s.undoBase {
		s.PopUndo()
	}
	//
	s.deleted = s.tables
	s.tables = s.saved
	s.saved = tables{}
}

// Release frees the tables of the last scratch scope along with every node
// allocated within it.  This must be called exactly once after the outermost
// Pop, and never from within a scratch scope.
func (s *Store) Release() {
	if s.pushLevel != 0 {
		panic("scratch scope released whilst still active")
	} else if s.deleted.isEmpty() {
		panic("scratch scope released without matching pop")
	}
	//
	s.deleted = tables{}
	s.alloc.Release(s.scratch, s.scratchMark)
	s.scratchMark = region.Mark{}
	// Kill all scratch nodes
	s.generation++
}

// Alive checks whether a given node may still be used, which holds unless it
// was interned in a scratch scope which has since been released.
func (s *Store) Alive(e *Expr) bool {
	return !e.scratch || e.gen == s.generation
}

// Panic if a given node is no longer alive.
func (s *Store) checkAlive(e *Expr) {
	if !s.Alive(e) {
		panic(fmt.Sprintf("use of released scratch node %d (%s)", e.id, e.kind))
	}
}

// Canonicalise a given template node, by returning the existing node of the
// same shape (if one exists) or by interning the template itself.
func (s *Store) canonical(n *Expr) *Expr {
	for child := range n.Children() {
		s.checkAlive(child)
		//
		if s.pushLevel == 0 && child.scratch {
			panic(fmt.Sprintf("permanent %s constructed from scratch node %d", n.kind, child.id))
		}
	}
	//
	n.hash = hashOf(n)
	//
	if e := s.tables.lookup(n); e != nil {
		return e
	}
	//
	return s.intern(n)
}

func (s *Store) intern(n *Expr) *Expr {
	var space = s.permanent
	//
	n.id = s.nextID
	s.nextID++
	n.find = n
	//
	if s.pushLevel > 0 {
		space = s.scratch
		n.scratch = true
		n.gen = s.generation
	}
	//
	if s.config.SlotBytes > 0 {
		n.slots = s.alloc.Alloc(space, s.config.SlotBytes)
	}
	//
	s.tables.insert(n)
	//
	if !n.scratch {
		s.AddTerm(n)
	}
	//
	if s.config.TrackUsedIn {
		for child := range n.Children() {
			s.AddUsedIn(child, n)
		}
	}
	//
	return n
}

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
	"strconv"

	"github.com/consensys/go-rewrite/pkg/util/collection/hash"
)

// SymbolID identifies an interned name, such as the functor of an application
// or the name of a variable.
type SymbolID uint32

// Equals implementation for the hash.Hasher interface.
func (s SymbolID) Equals(other SymbolID) bool {
	return s == other
}

// Hash implementation for the hash.Hasher interface.
func (s SymbolID) Hash() uint64 {
	return hash.NewFnv().Add(uint64(s)).Sum()
}

// Predefined symbols.  These are interned (in this order) into every symbol
// table.
const (
	AND SymbolID = iota
	NC_AND
	OR
	NOT
	ITE
	EQUAL
	ORIENTED
	UNORIENTED
	SET
	UNION
	TRUE
	FALSE
	PLUS
	TIMES
	MINUS
	LT
	LE
	GT
	GE
	// Control atoms
	CHOOSE
	CHOOSE_CONTEXT_RULE
	EXCLUDE_SET
	USE_CONTEXT
	APPLY_CONTEXT
	BLOCK_CONTEXT
	IN_CONTEXT
	NESTING_LIMIT
	NO_AUGMENT
	NO_FUNCTOR
	CUT
	CUT_LOCAL
	MATCH
	NOTL
	FRESH
	// Number of predefined symbols
	numPredefined
)

var predefined = [numPredefined]string{
	"AND", "NC_AND", "OR", "NOT", "ITE", "=", "->", "<->", "SET", "UNION", "TRUE", "FALSE", "+", "*", "-",
	"<", "<=", ">", ">=", "CHOOSE", "CHOOSE_CONTEXT_RULE", "EXCLUDE_SET", "USE_CONTEXT", "APPLY_CONTEXT",
	"BLOCK_CONTEXT", "IN_CONTEXT", "NESTING_LIMIT", "NO_AUGMENT", "NO_FUNCTOR", "CUT", "CUT_LOCAL", "MATCH",
	"NOTL", "FRESH",
}

// SymbolTable interns names, mapping each to a unique identifier.  It also
// records which functors are associative-commutative.
type SymbolTable struct {
	names []string
	index map[string]SymbolID
	// User-declared associative-commutative functors
	ac map[SymbolID]bool
	// Counter used for generating fresh names
	fresh uint
}

// NewSymbolTable constructs a symbol table holding (only) the predefined
// symbols.
func NewSymbolTable() *SymbolTable {
	p := &SymbolTable{index: make(map[string]SymbolID), ac: make(map[SymbolID]bool)}
	//
	for _, name := range predefined {
		p.Intern(name)
	}
	//
	return p
}

// Intern a given name, returning its (existing or new) identifier.
func (p *SymbolTable) Intern(name string) SymbolID {
	if id, ok := p.index[name]; ok {
		return id
	}
	//
	id := SymbolID(len(p.names))
	p.names = append(p.names, name)
	p.index[name] = id
	//
	return id
}

// Lookup the identifier of a given name, if it has been interned.
func (p *SymbolTable) Lookup(name string) (SymbolID, bool) {
	id, ok := p.index[name]
	return id, ok
}

// Name returns the name of a given symbol.
func (p *SymbolTable) Name(id SymbolID) string {
	if uint(id) >= uint(len(p.names)) {
		panic(fmt.Sprintf("unknown symbol %d", id))
	}
	//
	return p.names[id]
}

// Len returns the number of symbols interned in this table.
func (p *SymbolTable) Len() uint {
	return uint(len(p.names))
}

// Fresh interns a new symbol whose name begins with the given prefix, which has
// never been interned before and is not contained in the avoid set (which may
// be nil).
func (p *SymbolTable) Fresh(prefix string, avoid *hash.Set[SymbolID]) SymbolID {
	for {
		p.fresh++
		name := prefix + "_" + strconv.FormatUint(uint64(p.fresh), 10)
		//
		if _, ok := p.index[name]; ok {
			continue
		}
		//
		id := p.Intern(name)
		//
		if avoid == nil || !avoid.Contains(id) {
			return id
		}
	}
}

// DeclareAC declares a given functor to be associative-commutative.
func (p *SymbolTable) DeclareAC(name string) SymbolID {
	id := p.Intern(name)
	p.ac[id] = true
	//
	return id
}

// IsAC checks whether a given functor is associative-commutative.
func (p *SymbolTable) IsAC(id SymbolID) bool {
	switch id {
	case AND, OR, PLUS, TIMES, UNION:
		return true
	}
	//
	return p.ac[id]
}

// IsCommutative checks whether the arguments of a given functor can be
// permuted when matching.  This holds for every AC functor, and for SET.
func (p *SymbolTable) IsCommutative(id SymbolID) bool {
	return id == SET || p.IsAC(id)
}

// IsSideEffecting checks whether a given functor is a control atom (or other
// form) whose evaluation has effects beyond its result.  Applications of such
// functors are never cached.
func IsSideEffecting(id SymbolID) bool {
	switch id {
	case CHOOSE, CHOOSE_CONTEXT_RULE, EXCLUDE_SET, USE_CONTEXT, APPLY_CONTEXT, CUT, CUT_LOCAL, MATCH, NOTL, FRESH:
		return true
	}
	//
	return false
}

// IsArithmetic checks whether a given functor is one of the associative
// arithmetic operators, whose applications do not increase term height.
func IsArithmetic(id SymbolID) bool {
	return id == PLUS || id == TIMES
}

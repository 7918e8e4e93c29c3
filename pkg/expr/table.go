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
	"slices"

	"github.com/consensys/go-rewrite/pkg/util/collection/hash"
)

// tables holds one fixed-size bucket array for each kind of node.  Every bucket
// is a chain through the hashNext field, onto which new nodes are prepended.
// Therefore, a shallow copy of the bucket arrays isolates subsequent insertions
// from the original.
type tables [numKinds][]*Expr

func newTables(size uint) tables {
	var t tables
	//
	for i := range t {
		t[i] = make([]*Expr, size)
	}
	//
	return t
}

// Clone returns a shallow copy of these tables.
func (t *tables) clone() tables {
	var c tables
	//
	for i := range t {
		c[i] = make([]*Expr, len(t[i]))
		copy(c[i], t[i])
	}
	//
	return c
}

func (t *tables) isEmpty() bool {
	return t[0] == nil
}

// Lookup a node structurally equivalent to the given template.
func (t *tables) lookup(n *Expr) *Expr {
	buckets := t[n.kind]
	//
	for e := buckets[n.hash%uint64(len(buckets))]; e != nil; e = e.hashNext {
		if e.hash == n.hash && sameShape(e, n) {
			return e
		}
	}
	//
	return nil
}

// Insert a new node at the front of its bucket.
func (t *tables) insert(n *Expr) {
	var (
		buckets = t[n.kind]
		index   = n.hash % uint64(len(buckets))
	)
	//
	n.hashNext = buckets[index]
	buckets[index] = n
}

// Compute the structural hash of a given node from its scalar fields and the
// identifiers of its children.
func hashOf(n *Expr) uint64 {
	h := hash.NewFnv().Add(uint64(n.kind))
	//
	switch n.kind {
	case KindInteger:
		h = h.Add(uint64(n.value.Sign()+1)).AddBytes(n.value.Bytes())
	case KindRational:
		h = h.Add(uint64(n.value.Sign()+1)).AddBytes(n.value.Bytes()).AddBytes(n.denom.Bytes())
	case KindVariable:
		h = h.Add(uint64(n.symbol))
	case KindMarkedVariable:
		h = h.Add(uint64(n.symbol)).Add(uint64(n.level))
	case KindApplication:
		h = h.Add(uint64(n.symbol))
	case KindQuantifier:
		h = h.Add(uint64(n.quant))
		//
		for _, v := range n.vars {
			h = h.Add(uint64(v))
		}
	case KindIndex:
		h = h.Add(uint64(n.selector))
	case KindString:
		h = h.AddBytes([]byte(n.text))
	}
	//
	for _, arg := range n.args {
		h = h.Add(arg.id)
	}
	//
	for _, b := range n.branches {
		h = h.Add(b.Pattern.id).Add(b.Body.id)
	}
	//
	return h.Sum()
}

// Check whether two nodes have the same kind, the same scalar fields and
// identical children.
func sameShape(a, b *Expr) bool {
	if a.kind != b.kind || len(a.args) != len(b.args) || len(a.branches) != len(b.branches) {
		return false
	}
	//
	switch a.kind {
	case KindInteger:
		if a.value.Cmp(b.value) != 0 {
			return false
		}
	case KindRational:
		if a.value.Cmp(b.value) != 0 || a.denom.Cmp(b.denom) != 0 {
			return false
		}
	case KindVariable, KindApplication:
		if a.symbol != b.symbol {
			return false
		}
	case KindMarkedVariable:
		if a.symbol != b.symbol || a.level != b.level {
			return false
		}
	case KindQuantifier:
		if a.quant != b.quant || !slices.Equal(a.vars, b.vars) {
			return false
		}
	case KindIndex:
		if a.selector != b.selector {
			return false
		}
	case KindString:
		if a.text != b.text {
			return false
		}
	}
	//
	for i := range a.args {
		if a.args[i] != b.args[i] {
			return false
		}
	}
	//
	for i := range a.branches {
		if a.branches[i] != b.branches[i] {
			return false
		}
	}
	//
	return true
}

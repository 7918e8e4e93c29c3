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

import "fmt"

// SetRewrite records that a given node has been rewritten to another.  A
// permanent node can never be linked to a scratch node.
func (s *Store) SetRewrite(e *Expr, r *Expr) {
	s.checkLink(e, r)
	e.rewrite = r
}

// Rewrite returns the node to which a given node was last rewritten, or nil.
func (s *Store) Rewrite(e *Expr) *Expr {
	s.checkAlive(e)
	//
	if e.rewrite != nil && !s.Alive(e.rewrite) {
		// Rewrite recorded in a released scope
		e.rewrite = nil
	}
	//
	return e.rewrite
}

// SetFind merges the class of a given node into that of another.  Both nodes
// must be cacheable, and a permanent node can never be linked to a scratch
// node.
func (s *Store) SetFind(e *Expr, r *Expr) {
	s.checkLink(e, r)
	//
	if !e.canCache || !r.canCache {
		panic(fmt.Sprintf("find-chain through non-cacheable node (%d -> %d)", e.id, r.id))
	} else if s.Find(r) == e {
		// Already the representative
		return
	}
	//
	e.find = r
}

// Find returns the representative of the class of a given node.
func (s *Store) Find(e *Expr) *Expr {
	s.checkAlive(e)
	//
	for e.find != e {
		e = e.find
	}
	//
	return e
}

func (s *Store) checkLink(e *Expr, r *Expr) {
	s.checkAlive(e)
	s.checkAlive(r)
	//
	if !e.scratch && r.scratch {
		panic(fmt.Sprintf("permanent node %d linked to scratch node %d", e.id, r.id))
	}
}

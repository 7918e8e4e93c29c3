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

import "iter"

// AddTerm appends a node onto the global term list, unless it is already
// linked.  Scratch nodes can never be linked.
func (s *Store) AddTerm(e *Expr) {
	if e.linked {
		return
	} else if e.scratch {
		panic("scratch node cannot be added to term list")
	}
	//
	e.prev = s.last
	e.next = nil
	//
	if s.last != nil {
		s.last.next = e
	} else {
		s.first = e
	}
	//
	s.last = e
	e.linked = true
	s.nterms++
}

// DeleteTerm removes a node from the global term list, if it is linked.
func (s *Store) DeleteTerm(e *Expr) {
	if !e.linked {
		return
	}
	//
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.first = e.next
	}
	//
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.last = e.prev
	}
	//
	e.prev, e.next = nil, nil
	e.linked = false
	s.nterms--
}

// FirstTerm returns the oldest node on the global term list.
func (s *Store) FirstTerm() *Expr {
	return s.first
}

// LastTerm returns the newest node on the global term list.
func (s *Store) LastTerm() *Expr {
	return s.last
}

// NumTerms returns the number of nodes on the global term list.
func (s *Store) NumTerms() uint {
	return s.nterms
}

// Terms iterates the global term list in insertion order.  The node being
// visited may be deleted during iteration.
func (s *Store) Terms() iter.Seq[*Expr] {
	return func(yield func(*Expr) bool) {
		for e := s.first; e != nil; {
			next := e.next
			//
			if !yield(e) {
				return
			}
			//
			e = next
		}
	}
}

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
package hash

import (
	"iter"
)

// Set defines a generic set implementation backed by a map.  This is a true
// hashtable in that collisions are handle gracefully using buckets, rather than
// simply discarding them.
type Set[T Hasher[T]] struct {
	// items maps hashcodes to *buckets* of items.
	items map[uint64][]T
	// number of items stored
	count uint
}

// NewSet creates a new HashSet with a given underlying capacity.
func NewSet[T Hasher[T]](size uint) *Set[T] {
	items := make(map[uint64][]T, size)
	return &Set[T]{items, 0}
}

// Size returns the number of unique items stored in this HashSet.
func (p *Set[T]) Size() uint {
	return p.count
}

// Insert a new item into this map, returning true if it was already contained
// and false otherwise.
func (p *Set[T]) Insert(item T) bool {
	hash := item.Hash()
	bucket := p.items[hash]
	//
	for _, ith := range bucket {
		if item.Equals(ith) {
			return true
		}
	}
	//
	p.items[hash] = append(bucket, item)
	p.count++
	//
	return false
}

// Contains checks whether the given item is contained within this map, or not.
func (p *Set[T]) Contains(item T) bool {
	for _, ith := range p.items[item.Hash()] {
		if item.Equals(ith) {
			return true
		}
	}
	//
	return false
}

// Remove a given item from this set, returning true if it was contained.
func (p *Set[T]) Remove(item T) bool {
	hash := item.Hash()
	bucket := p.items[hash]
	//
	for i, ith := range bucket {
		if item.Equals(ith) {
			bucket = append(bucket[:i], bucket[i+1:]...)
			//
			if len(bucket) == 0 {
				delete(p.items, hash)
			} else {
				p.items[hash] = bucket
			}
			//
			p.count--
			//
			return true
		}
	}
	//
	return false
}

// All returns an iterator over the items of this set.  Observe that the order
// in which items are seen is unspecified.
func (p *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, bucket := range p.items {
			for _, item := range bucket {
				if !yield(item) {
					return
				}
			}
		}
	}
}

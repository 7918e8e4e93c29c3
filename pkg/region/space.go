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
package region

// block is a contiguous chunk of memory owned by exactly one space, or sitting
// on the free list.
type block struct {
	data []byte
	// Next oldest block in the owning space (or next block on the free list).
	next *block
	// Indicates this block was allocated to the exact size of a single large
	// request.
	oversized bool
}

// space is a stack of blocks, where allocation happens at the head (i.e. the
// current block).
type space struct {
	name string
	// Most recently acquired block.
	current *block
	// Oldest block, reachable by following next from current.  The tail's next
	// is always nil.
	tail *block
	// Allocation offset within the current block.
	offset uint
	// Number of blocks in this space.
	blocks uint
	// Set once the space has been deleted.
	deleted bool
}

// Mark identifies an allocation point within a given space.  The zero mark
// corresponds to an empty space.  Marks are only meaningful for the space they
// were taken from, and only whilst that space has grown monotonically since.
type Mark struct {
	block  *block
	offset uint
}

// IsNull checks whether this mark was taken from an empty space.
func (m Mark) IsNull() bool {
	return m.block == nil
}

// Mark returns the current allocation point in a given space, or the null mark
// if that space is empty.
func (p *Allocator) Mark(id SpaceID) Mark {
	s := p.space(id)
	//
	if s.current == nil {
		return Mark{}
	}
	//
	return Mark{s.current, s.offset}
}

// Alloc allocates a zeroed chunk of (at least) size bytes from the given space.
// The size is rounded up to the allocation granularity.  Requests of at least a
// block in size are given their own oversized block.  Failure to obtain a block
// is fatal.
func (p *Allocator) Alloc(id SpaceID, size uint) []byte {
	var s = p.space(id)
	//
	if s.deleted {
		p.fatal(s, "allocation from deleted space")
	}
	//
	size = align(size)
	p.stats.Allocations++
	p.stats.BytesAllocated += uint64(size)
	//
	if size >= p.config.BlockSize {
		b := p.acquire(s, size, true)
		s.push(b)
		// An oversized block is never shared with other allocations.
		s.offset = size
		//
		return b.data[0:size:size]
	} else if s.current == nil || s.offset+size > uint(len(s.current.data)) {
		s.push(p.acquire(s, p.config.BlockSize, false))
		s.offset = 0
	}
	//
	start := s.offset
	s.offset += size
	bytes := s.current.data[start:s.offset:s.offset]
	// Reused blocks may contain stale data.
	clear(bytes)
	//
	return bytes
}

// Release all allocations made in a given space since a given mark was taken.
// Releasing to the null mark empties the space completely.  Standard blocks
// removed from the space are placed on the shared free list, whilst oversized
// blocks are returned to the heap.  Releasing to a mark which does not lie
// within a block currently owned by the space is fatal.
func (p *Allocator) Release(id SpaceID, pos Mark) {
	var s = p.space(id)
	//
	p.stats.Releases++
	//
	if pos.IsNull() {
		p.empty(s, true)
		return
	}
	// Sanity check release point
	if !s.owns(pos) {
		p.fatal(s, "illegal release point")
	}
	//
	for s.current != pos.block {
		p.discard(s.pop(), true)
	}
	//
	s.offset = pos.offset
}

// Clear empties a given space without returning its blocks to the free list.
// This is used when a space is being torn down and its memory will not be
// reused.
func (p *Allocator) Clear(id SpaceID) {
	p.empty(p.space(id), false)
}

// Delete frees every block in a given space directly to the heap, and marks the
// space as deleted.  Any subsequent allocation from the space is fatal.
func (p *Allocator) Delete(id SpaceID) {
	var s = p.space(id)
	//
	p.empty(s, false)
	s.deleted = true
}

func (p *Allocator) empty(s *space, reclaim bool) {
	for s.current != nil {
		p.discard(s.pop(), reclaim)
	}
	//
	s.offset = 0
}

// Push a block onto the head of this space.
func (s *space) push(b *block) {
	b.next = s.current
	s.current = b
	//
	if s.tail == nil {
		s.tail = b
	}
	//
	s.blocks++
}

// Pop the head block off this space.
func (s *space) pop() *block {
	b := s.current
	s.current = b.next
	s.blocks--
	//
	if s.current == nil {
		s.tail = nil
		s.offset = 0
	}
	//
	return b
}

// Check whether a given mark lies within a block owned by this space.
func (s *space) owns(pos Mark) bool {
	for b := s.current; b != nil; b = b.next {
		if b == pos.block {
			// An offset beyond the current offset is not a legal point when the
			// mark refers to the current block.
			if b == s.current && pos.offset > s.offset {
				return false
			}
			//
			return pos.offset <= uint(len(b.data))
		}
	}
	//
	return false
}

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

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// DEFAULT_BLOCK_SIZE determines the number of bytes in a standard block.  Any
// request of this size or larger is given its own (oversized) block.
const DEFAULT_BLOCK_SIZE = 64 * 1024

// DEFAULT_MAX_BYTES is the default cap on the total number of bytes which can
// be obtained from the heap, across all spaces and the free list.
const DEFAULT_MAX_BYTES = 1 << 30

// ALIGNMENT is the granularity to which every allocation is rounded.
const ALIGNMENT = 4

// SpaceID identifies a space within a given allocator.
type SpaceID uint

// Config determines the block geometry of an allocator.
type Config struct {
	// BlockSize is the capacity (in bytes) of a standard block.
	BlockSize uint `yaml:"block_size"`
	// MaxBytes caps the number of bytes held by the allocator.  Exceeding this
	// is treated in the same way as the underlying heap being exhausted.
	MaxBytes uint64 `yaml:"max_bytes"`
}

// DefaultConfig returns the default allocator configuration.
func DefaultConfig() Config {
	return Config{BlockSize: DEFAULT_BLOCK_SIZE, MaxBytes: DEFAULT_MAX_BYTES}
}

// Allocator manages a set of named spaces, each of which is a stack of blocks
// from which memory is bump allocated.  Standard blocks which are released from
// any space are retained on a single free list shared by all spaces, from where
// they are reused before any fresh block is requested.  An allocator is not
// safe for concurrent use.
type Allocator struct {
	config Config
	// Spaces managed by this allocator, indexed by their identifier.
	spaces []space
	// Head of the shared free list of reclaimed standard blocks.
	free *block
	// Number of blocks on the free list.
	nfree uint
	// Number of bytes currently held (in spaces or on the free list).
	held uint64
	// Usage statistics.
	stats Stats
}

// New constructs an allocator with one (initially empty) space for each of the
// given names.  Further spaces can be added later via Register.
func New(config Config, names ...string) *Allocator {
	if config.BlockSize == 0 {
		config.BlockSize = DEFAULT_BLOCK_SIZE
	}
	//
	if config.MaxBytes == 0 {
		config.MaxBytes = DEFAULT_MAX_BYTES
	}
	// Ensure block size respects alignment
	config.BlockSize = align(config.BlockSize)
	//
	p := &Allocator{config: config}
	//
	for _, n := range names {
		p.Register(n)
	}
	//
	return p
}

// Config returns the configuration of this allocator.
func (p *Allocator) Config() Config {
	return p.config
}

// Register returns the identifier of the space with the given name, creating
// it if it does not already exist.  Spaces are shared by name, hence two
// components registering the same name use the same space.
func (p *Allocator) Register(name string) SpaceID {
	if id, ok := p.Lookup(name); ok {
		return id
	}
	//
	p.spaces = append(p.spaces, space{name: name})
	//
	return SpaceID(len(p.spaces) - 1)
}

// Lookup the identifier of a space by name.
func (p *Allocator) Lookup(name string) (SpaceID, bool) {
	for i := range p.spaces {
		if p.spaces[i].name == name {
			return SpaceID(i), true
		}
	}
	//
	return 0, false
}

// NumSpaces returns the number of spaces managed by this allocator.
func (p *Allocator) NumSpaces() uint {
	return uint(len(p.spaces))
}

// Name returns the name of a given space.
func (p *Allocator) Name(id SpaceID) string {
	return p.space(id).name
}

// Blocks returns the number of blocks currently owned by a given space.
func (p *Allocator) Blocks(id SpaceID) uint {
	return p.space(id).blocks
}

// Used returns the number of bytes handed out by a given space which have not
// yet been released.  This includes any slack left at the end of exhausted
// blocks.
func (p *Allocator) Used(id SpaceID) uint64 {
	var (
		s     = p.space(id)
		total uint64
	)
	//
	if s.current == nil {
		return 0
	}
	//
	total = uint64(s.offset)
	//
	for b := s.current.next; b != nil; b = b.next {
		total += uint64(len(b.data))
	}
	//
	return total
}

// FreeBlocks returns the number of blocks on the shared free list.
func (p *Allocator) FreeBlocks() uint {
	return p.nfree
}

// Held returns the number of bytes currently obtained from the heap by this
// allocator, including those on the free list.
func (p *Allocator) Held() uint64 {
	return p.held
}

// Stats returns a snapshot of the usage statistics for this allocator.
func (p *Allocator) Stats() Stats {
	return p.stats
}

// Shutdown deletes every space and the free list, thereby returning all memory
// to the heap.  The final usage statistics are logged and returned.
func (p *Allocator) Shutdown() Stats {
	for i := range p.spaces {
		p.Delete(SpaceID(i))
	}
	//
	p.dropFreeList()
	//
	log.Infof("region: %d spaces, %d fresh blocks, %d reused, %d oversized, %d releases, peak %d bytes",
		len(p.spaces), p.stats.FreshBlocks, p.stats.ReusedBlocks, p.stats.OversizedBlocks, p.stats.Releases,
		p.stats.PeakBytes)
	//
	return p.stats
}

func (p *Allocator) space(id SpaceID) *space {
	if uint(id) >= uint(len(p.spaces)) {
		panic(fmt.Sprintf("unknown space %d", id))
	}
	//
	return &p.spaces[id]
}

// Acquire a block with a given capacity, either from the free list (for
// standard blocks) or from the heap.
func (p *Allocator) acquire(s *space, size uint, oversized bool) *block {
	if !oversized && p.free != nil {
		b := p.free
		p.free = b.next
		p.nfree--
		b.next = nil
		p.stats.ReusedBlocks++
		//
		return b
	}
	// Check the heap can satisfy this request
	if p.held+uint64(size) > p.config.MaxBytes {
		p.fatal(s, "cannot obtain %d byte block (%d of %d bytes held)", size, p.held, p.config.MaxBytes)
	}
	//
	p.held += uint64(size)
	p.stats.PeakBytes = max(p.stats.PeakBytes, p.held)
	//
	if oversized {
		p.stats.OversizedBlocks++
	} else {
		p.stats.FreshBlocks++
	}
	//
	return &block{data: make([]byte, size), oversized: oversized}
}

// Discard a block which has been removed from a space.  Standard blocks are
// placed on the free list when reclaim holds, whilst oversized blocks are always
// returned to the heap.
func (p *Allocator) discard(b *block, reclaim bool) {
	if reclaim && !b.oversized {
		b.next = p.free
		p.free = b
		p.nfree++
	} else {
		b.next = nil
		p.held -= uint64(len(b.data))
	}
}

func (p *Allocator) dropFreeList() {
	for b := p.free; b != nil; {
		next := b.next
		p.held -= uint64(len(b.data))
		b.next = nil
		b = next
	}
	//
	p.free = nil
	p.nfree = 0
}

// Round a given size up to the allocation granularity.
func align(size uint) uint {
	return (size + ALIGNMENT - 1) &^ (ALIGNMENT - 1)
}

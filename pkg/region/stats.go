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

// Stats records usage of an allocator over its lifetime.
type Stats struct {
	// Number of standard blocks obtained from the heap.
	FreshBlocks uint
	// Number of standard blocks obtained from the free list.
	ReusedBlocks uint
	// Number of oversized blocks obtained from the heap.
	OversizedBlocks uint
	// Number of calls to Alloc.
	Allocations uint
	// Number of bytes handed out (after alignment).
	BytesAllocated uint64
	// Number of calls to Release.
	Releases uint
	// High-water mark of bytes held.
	PeakBytes uint64
}

// FatalError is raised (via panic) when the allocator encounters a condition
// from which it cannot recover, such as heap exhaustion or an illegal release
// point.  By the time this is raised, all memory held by the allocator has
// been released.
type FatalError struct {
	// Space in which the failure arose.
	Space string
	// Diagnostic message.
	Message string
}

// Error implementation for the error interface.
func (e *FatalError) Error() string {
	return fmt.Sprintf("region %q: %s", e.Space, e.Message)
}

// Report an unrecoverable failure.  This logs a diagnostic, releases every
// block held and then panics.
func (p *Allocator) fatal(s *space, format string, args ...any) {
	err := &FatalError{s.name, fmt.Sprintf(format, args...)}
	//
	log.Error(err.Error())
	// Release all memory
	for i := range p.spaces {
		p.empty(&p.spaces[i], false)
	}
	//
	p.dropFreeList()
	//
	panic(err)
}

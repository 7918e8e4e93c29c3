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
package util

import (
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

// PerfStats provides a snapshot of memory allocation at a given point in time.
type PerfStats struct {
	// Starting time
	startTime time.Time
	// Starting total memory allocation
	startMem uint64
	// Starting number of gc events
	startGc uint32
}

// NewPerfStats creates a new snapshot of the current amount of memory allocated.
func NewPerfStats() *PerfStats {
	var m runtime.MemStats

	startTime := time.Now()

	runtime.ReadMemStats(&m)

	return &PerfStats{startTime, m.TotalAlloc, m.NumGC}
}

// Fields returns the difference between the state now and as it was when the
// PerfStats object was created, as a set of log fields.
func (p *PerfStats) Fields() log.Fields {
	var m runtime.MemStats

	runtime.ReadMemStats(&m)

	return log.Fields{
		"seconds":  time.Since(p.startTime).Seconds(),
		"alloc_mb": (m.TotalAlloc - p.startMem) / 1024 / 1024,
		"gc":       m.NumGC - p.startGc,
		"heap_mb":  m.Alloc / 1024 / 1024,
	}
}

// Log logs the difference between the state now and as it was when the PerfStats object was created.
func (p *PerfStats) Log(prefix string) {
	log.WithFields(p.Fields()).Debugf("%s completed", prefix)
}

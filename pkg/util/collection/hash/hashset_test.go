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
	"fmt"
	"math/rand"
	"sort"
	"testing"
)

func Test_HashSet_01(t *testing.T) {
	items := []uint{1, 2, 3, 4, 3, 2, 1}
	check_HashSet(t, items)
}

func Test_HashSet_02(t *testing.T) {
	items := generateRandomUints(10, 32)
	check_HashSet(t, items)
}

func Test_HashSet_03(t *testing.T) {
	items := generateRandomUints(100, 32)
	check_HashSet(t, items)
}

func Test_HashSet_04(t *testing.T) {
	items := generateRandomUints(1000, 32)
	check_HashSet(t, items)
}

func Test_HashSet_05(t *testing.T) {
	items := generateRandomUints(100000, 32)
	check_HashSet(t, items)
}

func Test_HashSet_06(t *testing.T) {
	set := NewSet[testKey](0)
	//
	for _, i := range []uint{1, 17, 33, 2} {
		set.Insert(testKey{i})
	}
	// Remove from within a shared bucket
	if !set.Remove(testKey{17}) || set.Remove(testKey{17}) {
		t.Errorf("incorrect removal")
	}
	//
	if set.Size() != 3 || set.Contains(testKey{17}) || !set.Contains(testKey{33}) {
		t.Errorf("incorrect set after removal")
	}
	// Iteration sees every item once
	seen := uint(0)
	for item := range set.All() {
		if !set.Contains(item) {
			t.Errorf("unexpected item %s", item)
		}
		//
		seen++
	}
	//
	if seen != set.Size() {
		t.Errorf("expected %d items, saw %d", set.Size(), seen)
	}
}

func Test_HashSet_07(t *testing.T) {
	var (
		a = NewFnv().Add(1).Add(2)
		b = NewFnv().Add(2).Add(1)
		c = NewFnv().Add(1).Add(2)
	)
	// Incremental hashing depends upon order
	if a == b || a != c {
		t.Errorf("unexpected hash values %d, %d, %d", a, b, c)
	}
	//
	if NewBytesKey([]byte("abc")).Hash() != NewBytesKey([]byte("abc")).Hash() {
		t.Errorf("inconsistent bytes hash")
	}
}

func TestSlow_HashSet_08(t *testing.T) {
	items := generateRandomUints(100000, 64)
	check_HashSet(t, items)
}

func TestSlow_HashSet_09(t *testing.T) {
	items := generateRandomUints(100000, 128)
	check_HashSet(t, items)
}

// ===================================================================
// Test Helpers
// ===================================================================

func check_HashSet(t *testing.T, items []uint) {
	set := NewSet[testKey](0)
	dups := uint(0)
	// Insert items
	for _, item := range items {
		if set.Insert(testKey{item}) {
			// Duplicate item inserted
			dups++
		}
	}
	// Sort items
	sort.Slice(items, func(i, j int) bool {
		return items[i] < items[j]
	})
	//
	count := uint(0)
	// Count unique items
	for i := 0; i < len(items); i++ {
		if i == 0 || items[i-1] != items[i] {
			count++
		}
	}
	// Sanity check number of unique items
	if set.Size() != count {
		t.Errorf("expected %d unique items, got %d", count, set.Size())
	}
	// Sanity check duplicates calculation
	if count+dups != uint(len(items)) {
		t.Errorf("incorrect number of duplicates %d", dups)
	}
	// Sanity check containership
	for _, ith := range items {
		if !set.Contains(testKey{ith}) {
			t.Errorf("missing item %d", ith)
		}
	}
}

// A simple wrapper around a uint64.  This is deliberately broken to ensure a
// relatively limited spread of hash values.  This helps to ensure that we get
// some collisions.
type testKey struct {
	value uint
}

// Equals compares two Uint64Keys to check whether they represent the same
// underlying byte array (or not).
func (p testKey) Equals(other testKey) bool {
	return p.value == other.value
}

// Hash generates a 64-bit hashcode from the underlying value.
func (p testKey) Hash() uint64 {
	// This is a deliberate act to limit the qualitfy of this hash function.
	return uint64(p.value % 16)
}

func (p testKey) String() string {
	return fmt.Sprintf("%d", p.value)
}

// Generate n random unsigned integers in the range 0..m.
func generateRandomUints(n, m uint) []uint {
	items := make([]uint, n)
	//
	for i := uint(0); i < n; i++ {
		items[i] = uint(rand.Intn(int(m)))
	}
	//
	return items
}

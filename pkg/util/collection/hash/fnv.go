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
	"bytes"
	"hash/fnv"
)

// Hasher provides a generic definition of a hashing function suitable for use
// within the hashset.  This is similar to the Hasher interface provided in
// go-set, except that it additionally includes equality.
type Hasher[T any] interface {
	// Check whether two items are equal (or not).
	Equals(T) bool
	// Return a suitable hashcode.
	Hash() uint64
}

const (
	offset64 uint64 = 14695981039346656037
	prime64  uint64 = 1099511628211
)

// Fnv is an incremental FNV-1a hash over a sequence of 64-bit words.  This is
// used for hashing structures whose components are already identified by
// unique handles (e.g. interned expressions), where hashing the handles is
// sufficient.
type Fnv uint64

// NewFnv returns the initial state of an FNV-1a hash.
func NewFnv() Fnv {
	return Fnv(offset64)
}

// Add a word into this hash, returning the updated hash.
func (h Fnv) Add(word uint64) Fnv {
	v := uint64(h)
	v ^= word
	v *= prime64
	//
	return Fnv(v)
}

// AddBytes folds a given byte sequence into this hash.
func (h Fnv) AddBytes(bytes []byte) Fnv {
	return h.Add(NewBytesKey(bytes).Hash())
}

// Sum returns the hash value.
func (h Fnv) Sum() uint64 {
	return uint64(h)
}

// BytesKey wraps a bytes array as something which can be safely placed into a
// HashSet.
type BytesKey struct {
	bytes []byte
}

var _ Hasher[BytesKey] = BytesKey{}

// NewBytesKey constructs a new bytes key.
func NewBytesKey(bytes []byte) BytesKey {
	return BytesKey{bytes}
}

// Equals compares two BytesKeys to check whether they represent the same
// underlying byte array (or not).
func (p BytesKey) Equals(other BytesKey) bool {
	return bytes.Equal(p.bytes, other.bytes)
}

// Hash generates a 64-bit hashcode from the underlying bytes array.
func (p BytesKey) Hash() uint64 {
	hash := fnv.New64a()
	hash.Write(p.bytes)
	// Done
	return hash.Sum64()
}

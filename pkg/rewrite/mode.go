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
package rewrite

import "strings"

// Mode is a set of flags which restrict the search performed by the engine.
type Mode uint

const (
	// ModeNoContextRules excludes context rules (including hypotheses) from
	// consideration.
	ModeNoContextRules Mode = 1 << iota
	// ModeNoForwardRules excludes forward rules from consideration.
	ModeNoForwardRules
	// ModeNoAugment disables the augmentation of rules before matching, other
	// than their orientation.
	ModeNoAugment
)

// Has checks whether every given flag is set in this mode.
func (m Mode) Has(flags Mode) bool {
	return m&flags == flags
}

func (m Mode) String() string {
	var flags []string
	//
	if m.Has(ModeNoContextRules) {
		flags = append(flags, "no-context")
	}
	//
	if m.Has(ModeNoForwardRules) {
		flags = append(flags, "no-forward")
	}
	//
	if m.Has(ModeNoAugment) {
		flags = append(flags, "no-augment")
	}
	//
	return "{" + strings.Join(flags, ",") + "}"
}

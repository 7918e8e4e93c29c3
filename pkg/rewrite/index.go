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

import (
	"slices"

	"github.com/consensys/go-rewrite/pkg/expr"
)

// Index provides the candidate rules for a given target expression.  Rules
// returned by an index need not match the target, but every rule which could
// match it must be returned.  Rules are returned in discovery order.
type Index interface {
	// ForwardRules returns the forward rules which could rewrite a given
	// expression.
	ForwardRules(e *expr.Expr) []*Rule
	// ForwardContextRules returns the context rules which could rewrite a given
	// expression.
	ForwardContextRules(e *expr.Expr) []*Rule
	// ContextRules returns every context rule, regardless of shape.
	ContextRules() []*Rule
}

// Discrimination key, identifying the top-level shape of an expression.
type key struct {
	kind   expr.Kind
	symbol expr.SymbolID
}

// FunctorIndex is an index discriminating rules on the top-level shape (i.e.
// kind and functor) of their left-hand sides.  Rules whose left-hand side is a
// pattern variable are candidates for every expression.
type FunctorIndex struct {
	forward bucket
	context bucket
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var _ Index = (*FunctorIndex)(nil)

// NewFunctorIndex constructs an empty index.
func NewFunctorIndex() *FunctorIndex {
	return &FunctorIndex{newBucket(), newBucket()}
}

// Add a given rule to this index.
func (p *FunctorIndex) Add(rules ...*Rule) {
	for _, r := range rules {
		if r.context {
			p.context.add(r)
		} else {
			p.forward.add(r)
		}
	}
}

// Len returns the number of rules in this index.
func (p *FunctorIndex) Len() uint {
	return uint(len(p.forward.all) + len(p.context.all))
}

// ForwardRules implementation for the Index interface.
func (p *FunctorIndex) ForwardRules(e *expr.Expr) []*Rule {
	return p.forward.lookup(e)
}

// ForwardContextRules implementation for the Index interface.
func (p *FunctorIndex) ForwardContextRules(e *expr.Expr) []*Rule {
	return p.context.lookup(e)
}

// ContextRules implementation for the Index interface.
func (p *FunctorIndex) ContextRules() []*Rule {
	return p.context.all
}

type bucket struct {
	// Rules keyed on the shape of their left-hand side, in insertion order.
	keyed map[key][]*Rule
	// Rules whose left-hand side matches anything.
	wildcard []*Rule
	// Every rule, in insertion order.
	all []*Rule
}

func newBucket() bucket {
	return bucket{keyed: make(map[key][]*Rule)}
}

func (p *bucket) add(r *Rule) {
	var keys []key
	//
	p.all = append(p.all, r)
	//
	for _, v := range r.variants {
		lhs := v.Arg(0)
		//
		if isPatternVar(lhs) {
			if !slices.Contains(p.wildcard, r) {
				p.wildcard = append(p.wildcard, r)
			}
			//
			continue
		}
		//
		keys = append(keys, keyOf(lhs))
		// Equalities are also candidates for oriented rules.
		if lhs.IsApp(expr.EQUAL) {
			keys = append(keys, key{expr.KindApplication, expr.ORIENTED})
		}
	}
	//
	for _, k := range keys {
		if !slices.Contains(p.keyed[k], r) {
			p.keyed[k] = append(p.keyed[k], r)
		}
	}
}

func (p *bucket) lookup(e *expr.Expr) []*Rule {
	keyed := p.keyed[keyOf(e)]
	//
	if len(p.wildcard) == 0 {
		return keyed
	}
	//
	return append(slices.Clip(keyed), p.wildcard...)
}

func keyOf(e *expr.Expr) key {
	switch e.Kind() {
	case expr.KindApplication, expr.KindVariable, expr.KindMarkedVariable:
		return key{e.Kind(), e.Symbol()}
	case expr.KindQuantifier:
		return key{e.Kind(), expr.SymbolID(e.Quant())}
	default:
		return key{e.Kind(), 0}
	}
}

// Check whether a given expression is a pattern variable, i.e. a marked
// variable of level zero.
func isPatternVar(e *expr.Expr) bool {
	return e.Kind() == expr.KindMarkedVariable && e.Level() == 0
}

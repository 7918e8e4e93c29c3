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

// Simplify an expression by rewriting it bottom-up until no further rule
// applies.  Children are simplified before their parent, and builtin operators
// over literals are folded before any rule is tried.  The total number of rules
// applied is bounded by the engine configuration.
func (p *Engine) Simplify(ctx *Context, e *expr.Expr) *expr.Expr {
	var s = simplifier{p, ctx, make(map[*expr.Expr]*expr.Expr), 0}
	//
	return s.simplify(e)
}

type simplifier struct {
	engine *Engine
	ctx    *Context
	cache  map[*expr.Expr]*expr.Expr
	steps  uint
}

func (p *simplifier) simplify(e *expr.Expr) *expr.Expr {
	if r, ok := p.cache[e]; ok {
		return r
	}
	//
	var r = e
	//
	for {
		r = p.engine.fold(p.simplifyChildren(r))
		//
		if p.steps >= p.engine.config.MaxSimplifySteps {
			break
		}
		//
		next, ok := p.engine.RewriteRule(p.ctx, r, 0)
		if !ok || next == r {
			break
		}
		//
		p.steps++
		r = next
	}
	//
	p.cache[e] = r
	//
	return r
}

// Simplify the arguments of an application, or the base of an index.  Binding
// forms are left alone.
func (p *simplifier) simplifyChildren(e *expr.Expr) *expr.Expr {
	switch e.Kind() {
	case expr.KindApplication:
		var args []*expr.Expr
		//
		for i, arg := range e.Args() {
			if r := p.simplify(arg); r != arg {
				if args == nil {
					args = slices.Clone(e.Args())
				}
				//
				args[i] = r
			}
		}
		//
		if args != nil {
			return p.engine.store.Apply(e.Functor(), args...)
		}
	case expr.KindIndex:
		if r := p.simplify(e.Base()); r != e.Base() {
			return p.engine.store.Index(r, e.Selector())
		}
	}
	//
	return e
}

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

// Context holds the state threaded through a rewriting session.  This includes
// the cut state, the exclusion set, the active context set, the hypotheses
// currently installed as context rules, the current nesting depth and the
// current quantifier level.  Every entry into the engine saves and restores the
// parts of this state which it modifies.
type Context struct {
	// Indicates a cut has been asserted, such that rules whose priority is lower
	// than cutPriority are no longer considered.
	cut         bool
	cutPriority int
	// Priority of the rule currently being tried.
	priority int
	// Names excluded by EXCLUDE_SET.
	exclude []*expr.Expr
	// Names activated by USE_CONTEXT or APPLY_CONTEXT.
	active []*expr.Expr
	// Hypotheses installed as context rules.
	hypotheses []*Rule
	// Current nesting depth of the engine.
	depth uint
	// Current quantifier level.
	level uint
}

// NewContext constructs an empty context.
func NewContext() *Context {
	return &Context{}
}

// ContextMark identifies a point in the stack of installed hypotheses, such
// that they can be removed again.
type ContextMark int

// Depth returns the current nesting depth.
func (p *Context) Depth() uint {
	return p.depth
}

// Level returns the current quantifier level.
func (p *Context) Level() uint {
	return p.level
}

// Hypotheses returns the hypotheses currently installed.
func (p *Context) Hypotheses() []*Rule {
	return p.hypotheses
}

// Excluded checks whether a given name is in the exclusion set.
func (p *Context) Excluded(name *expr.Expr) bool {
	return slices.Contains(p.exclude, name)
}

// Active checks whether a given name is in the active context set.
func (p *Context) Active(name *expr.Expr) bool {
	return slices.Contains(p.active, name)
}

// Cut checks whether a cut is in effect, returning the priority below which
// rules are pruned.
func (p *Context) Cut() (int, bool) {
	return p.cutPriority, p.cut
}

// CreateContext installs a given set of hypotheses as context rules, returning
// a mark from which they can be removed.  A conjunction is split into its
// conjuncts, and the literal TRUE is ignored.  Otherwise, each hypothesis p
// becomes the rule (-> p TRUE TRUE), except an equality (= a b) becomes
// (-> a b TRUE) and a negation (NOT p) becomes (-> p FALSE TRUE).
func (p *Engine) CreateContext(ctx *Context, hyps ...*expr.Expr) ContextMark {
	mark := ContextMark(len(ctx.hypotheses))
	//
	for _, h := range hyps {
		p.addHypothesis(ctx, h)
	}
	//
	return mark
}

// RemoveContext removes every hypothesis installed since a given mark.
func (p *Engine) RemoveContext(ctx *Context, mark ContextMark) {
	clear(ctx.hypotheses[mark:])
	ctx.hypotheses = ctx.hypotheses[:mark]
}

func (p *Engine) addHypothesis(ctx *Context, h *expr.Expr) {
	switch {
	case h.IsTrue():
		return
	case h.IsApp(expr.AND) || h.IsApp(expr.NC_AND):
		for _, arg := range h.Args() {
			p.addHypothesis(ctx, arg)
		}
		//
		return
	}
	//
	var e *expr.Expr
	//
	switch {
	case h.IsApp(expr.EQUAL) && h.Arity() == 2:
		e = oriented(p.store, h.Arg(0), h.Arg(1), p.store.True())
	case h.IsApp(expr.NOT) && h.Arity() == 1:
		e = oriented(p.store, h.Arg(0), p.store.False(), p.store.True())
	default:
		e = oriented(p.store, h, p.store.True(), p.store.True())
	}
	//
	ctx.hypotheses = append(ctx.hypotheses, &Rule{
		expr:     h,
		priority: p.config.HypothesisPriority,
		context:  true,
		variants: []*expr.Expr{e},
	})
}

// Snapshot of the parts of a context which are restored on exit from a search.
type snapshot struct {
	cut         bool
	cutPriority int
	priority    int
	exclude     int
	active      int
}

func (p *Context) save() snapshot {
	return snapshot{p.cut, p.cutPriority, p.priority, len(p.exclude), len(p.active)}
}

func (p *Context) restore(s snapshot) {
	p.cut, p.cutPriority, p.priority = s.cut, s.cutPriority, s.priority
	p.truncate(s.exclude, s.active)
}

// Truncate the exclusion and active context sets to given lengths.
func (p *Context) truncate(exclude, active int) {
	p.exclude = p.exclude[:exclude]
	p.active = p.active[:active]
}

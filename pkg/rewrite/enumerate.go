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
	"fmt"

	"github.com/consensys/go-rewrite/pkg/expr"
)

// EnumerateRewritesAt returns every rewrite of the subterm at a given position
// of a root expression.  A position is a sequence of child indices (in the
// order given by Children) leading from the root to the subterm.  Hypotheses
// are synthesised from the context of each step along the way: the sibling
// conjuncts of a conjunction; the condition (or its negation) of a conditional;
// and the negated sibling disjuncts of a disjunction.  The root of each rewrite
// is the root expression with the subterm replaced.
func (p *Engine) EnumerateRewritesAt(ctx *Context, root *expr.Expr, path []int, mode Mode) []Rewrite {
	return p.enumerateAt(ctx, root, path, mode, false)
}

// EnumerateRewritesUnder is as EnumerateRewritesAt, except that the variables
// bound by quantifiers above the position are raised to marked variables of a
// fresh quantifier level.  These behave as rigid constants when matching, and
// are lowered back to the variables they represent in the rewrites returned.
func (p *Engine) EnumerateRewritesUnder(ctx *Context, root *expr.Expr, path []int, mode Mode) []Rewrite {
	return p.enumerateAt(ctx, root, path, mode, true)
}

func (p *Engine) enumerateAt(ctx *Context, root *expr.Expr, path []int, mode Mode, raise bool) []Rewrite {
	var (
		level    = ctx.level
		mark     = ContextMark(len(ctx.hypotheses))
		raised   = make(map[expr.SymbolID]*expr.Expr)
		spine    = make([]*expr.Expr, len(path))
		hyps     []*expr.Expr
		target   = root
		rewrites []Rewrite
	)
	//
	defer func() {
		p.RemoveContext(ctx, mark)
		ctx.level = level
	}()
	// Walk down to the position, accumulating hypotheses.
	for i, k := range path {
		if k < 0 || k >= target.NumChildren() {
			panic(fmt.Sprintf("invalid position %v", path))
		}
		//
		spine[i] = target
		//
		for _, h := range p.positionHypotheses(target, k) {
			hyps = append(hyps, p.raise(h, raised))
		}
		//
		if raise && target.Kind() == expr.KindQuantifier {
			ctx.level++
			//
			for _, v := range target.Vars() {
				raised[v] = p.store.MarkedVariable(v, ctx.level)
			}
		}
		//
		target = target.Child(k)
	}
	//
	p.CreateContext(ctx, hyps...)
	//
	for _, r := range p.EnumerateRewrites(ctx, p.raise(target, raised), mode) {
		r.Result = p.lower(r.Result, level)
		r.Env = p.lowerEnv(r.Env, level)
		// Rebuild the root
		r.Root = r.Result
		//
		for i := len(path) - 1; i >= 0; i-- {
			r.Root = p.store.WithChild(spine[i], path[i], r.Root)
		}
		//
		rewrites = append(rewrites, r)
	}
	//
	return rewrites
}

// Determine the hypotheses which hold at the kth child of a given expression.
func (p *Engine) positionHypotheses(e *expr.Expr, k int) []*expr.Expr {
	var hyps []*expr.Expr
	//
	switch {
	case e.IsApp(expr.AND) || e.IsApp(expr.NC_AND):
		for i, arg := range e.Args() {
			if i != k {
				hyps = append(hyps, arg)
			}
		}
	case e.IsApp(expr.OR):
		for i, arg := range e.Args() {
			if i != k {
				hyps = append(hyps, p.store.Apply(expr.NOT, arg))
			}
		}
	case e.IsApp(expr.ITE) && e.Arity() == 3:
		if k == 1 {
			hyps = append(hyps, e.Arg(0))
		} else if k == 2 {
			hyps = append(hyps, p.store.Apply(expr.NOT, e.Arg(0)))
		}
	}
	//
	return hyps
}

// Raise the free occurrences of quantified variables to marked variables.
func (p *Engine) raise(e *expr.Expr, raised map[expr.SymbolID]*expr.Expr) *expr.Expr {
	return replaceFree(p.store, e, raised)
}

// Lower marked variables above a given level back to the variables they
// represent.
func (p *Engine) lower(e *expr.Expr, level uint) *expr.Expr {
	return transform(p.store, e, make(map[*expr.Expr]*expr.Expr), func(n *expr.Expr) *expr.Expr {
		if n.Kind() == expr.KindMarkedVariable && n.Level() > level {
			return p.store.Variable(n.Symbol())
		}
		//
		return nil
	})
}

func (p *Engine) lowerEnv(env *Env, level uint) *Env {
	lowered := NewEnv()
	//
	for v, value := range env.Domain() {
		lowered.Bind(v, p.lower(value, level))
	}
	//
	return lowered
}

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
	"github.com/consensys/go-rewrite/pkg/util/collection/stack"
	log "github.com/sirupsen/logrus"
)

// Choice point for a single atom of a guard.  A deterministic atom has no
// alternatives, whilst a nondeterministic atom has one substitution for each
// alternative.
type choice struct {
	// Substitutions for the remaining atoms, one per alternative.
	alternatives []*Env
	// Alternative currently selected.
	index int
	// Atom (after substitution) established at this point, if it is a plain
	// predicate.
	established *expr.Expr
	// Sizes of the exclusion and active context sets before this atom.
	exclude int
	active  int
}

// Solve the atoms of a guard, passing each solution to a given function until
// it returns false.  Atoms are solved left to right, and each is substituted
// with the bindings established by those before it.  On failure, the most
// recent choice with a remaining alternative is retried (i.e. backtracking is
// chronological).  This returns false if the function asked to stop.
func (p *Engine) solve(ctx *Context, atoms []*expr.Expr, env *Env, yield func(*Env) bool) bool {
	var choices = stack.NewStack[*choice]()
	//
	for {
		pos := int(choices.Len())
		//
		if pos == len(atoms) {
			if !yield(env) {
				return false
			}
		} else {
			c := &choice{exclude: len(ctx.exclude), active: len(ctx.active)}
			atom := Substitute(p.store, atoms[pos], env)
			//
			if next, ok := p.evaluate(ctx, atom, env, c, choices); ok {
				choices.Push(c)
				env = next
				//
				continue
			}
		}
		// Backtrack
		for {
			if choices.IsEmpty() {
				return true
			}
			//
			c := choices.Pop()
			ctx.truncate(c.exclude, c.active)
			//
			if c.index+1 < len(c.alternatives) {
				c.index++
				env = c.alternatives[c.index]
				choices.Push(c)
				//
				break
			}
		}
	}
}

// Evaluate a single atom (after substitution) under a given substitution,
// returning the substitution for the remaining atoms.  Nondeterministic atoms
// record their alternatives in the given choice point.
func (p *Engine) evaluate(ctx *Context, atom *expr.Expr, env *Env, c *choice, choices *stack.Stack[*choice]) (*Env, bool) {
	switch {
	case atom.IsApp(expr.CHOOSE) && atom.Arity() == 2:
		return p.choose(ctx, atom.Arg(0), atom.Arg(1), env, c)
	case atom.IsApp(expr.CHOOSE_CONTEXT_RULE) && atom.Arity() == 1:
		return p.chooseContextRule(ctx, atom.Arg(0), env, c)
	case atom.IsApp(expr.EXCLUDE_SET) && atom.Arity() == 1:
		name := atom.Arg(0)
		//
		if ctx.Excluded(name) || len(ctx.exclude) >= p.config.ExcludeSetCapacity {
			return nil, false
		}
		//
		ctx.exclude = append(ctx.exclude, name)
		//
		return env, true
	case (atom.IsApp(expr.USE_CONTEXT) || atom.IsApp(expr.APPLY_CONTEXT)) && atom.Arity() == 1:
		name := atom.Arg(0)
		//
		if ctx.Active(name) {
			return env, true
		} else if len(ctx.active) >= p.config.ContextSetCapacity {
			return nil, false
		}
		//
		ctx.active = append(ctx.active, name)
		//
		return env, true
	case atom.IsApp(expr.BLOCK_CONTEXT), atom.IsApp(expr.IN_CONTEXT), atom.IsApp(expr.NESTING_LIMIT),
		atom.IsApp(expr.NO_AUGMENT), atom.IsApp(expr.NO_FUNCTOR):
		// Selection markers always hold.
		return env, true
	case atom.IsApp(expr.CUT) && atom.Arity() == 0:
		ctx.cut = true
		ctx.cutPriority = ctx.priority
		//
		return env, true
	case atom.IsApp(expr.CUT_LOCAL) && atom.Arity() == 0:
		for i := range choices.Len() {
			choices.Peek(i).alternatives = nil
		}
		//
		return env, true
	case atom.IsApp(expr.MATCH) && atom.Arity() == 2:
		c.alternatives = p.matcher.Match(atom.Arg(1), atom.Arg(0), env)
		//
		return first(c.alternatives)
	case atom.IsApp(expr.NOTL) && atom.Arity() == 1:
		return env, !p.provable(ctx, conjuncts(atom.Arg(0)), env)
	default:
		if !p.holds(ctx, atom, established(choices)) {
			return nil, false
		}
		//
		c.established = atom
		//
		return env, true
	}
}

// Bind a variable to each element of a set in turn.  If the variable is already
// bound, this checks membership instead.
func (p *Engine) choose(ctx *Context, v *expr.Expr, set *expr.Expr, env *Env, c *choice) (*Env, bool) {
	set = p.Simplify(ctx, set)
	//
	if !set.IsApp(expr.SET) || set.Arity() == 0 {
		return nil, false
	} else if !isPatternVar(v) {
		for _, elem := range set.Args() {
			if elem == v {
				return env, true
			}
		}
		//
		return nil, false
	}
	//
	for _, elem := range set.Args() {
		alt := env.Clone()
		alt.Bind(v.Symbol(), elem)
		c.alternatives = append(c.alternatives, alt)
	}
	//
	return first(c.alternatives)
}

// Match a pattern against every context rule in turn.  A pattern which is an
// oriented rule is matched against the rules themselves, whilst any other
// pattern is matched against their left-hand sides.
func (p *Engine) chooseContextRule(ctx *Context, pattern *expr.Expr, env *Env, c *choice) (*Env, bool) {
	var (
		key   = pattern
		rules = ctx.hypotheses
	)
	//
	if pattern.IsApp(expr.ORIENTED) && pattern.Arity() > 0 {
		key = pattern.Arg(0)
	}
	//
	if isPatternVar(key) {
		rules = slices.Concat(p.index.ContextRules(), rules)
	} else {
		rules = slices.Concat(p.index.ForwardContextRules(key), rules)
	}
	//
	for _, r := range rules {
		for _, v := range r.variants {
			target := v
			//
			if !pattern.IsApp(expr.ORIENTED) {
				target = v.Arg(0)
			}
			//
			c.alternatives = append(c.alternatives, p.matcher.Match(pattern, target, env)...)
		}
	}
	//
	return first(c.alternatives)
}

// Check whether a plain predicate holds, by simplifying it to TRUE under the
// given hypotheses.  The simplification takes place in a scratch scope, such
// that its intermediate expressions are discarded.
func (p *Engine) holds(ctx *Context, atom *expr.Expr, hyps []*expr.Expr) bool {
	var release = p.store.PushLevel() == 0
	//
	p.store.Push()
	mark := p.CreateContext(ctx, hyps...)
	ok := p.Simplify(ctx, atom).IsTrue()
	p.RemoveContext(ctx, mark)
	p.store.Pop()
	// Result is dead after this point
	if release {
		p.store.Release()
	}
	//
	if log.IsLevelEnabled(log.TraceLevel) {
		log.Tracef("condition %s holds: %t", p.store.Format(atom), ok)
	}
	//
	return ok
}

// Check whether a conjunction of atoms has any solution, without binding any
// variables.  The search takes place in a scratch scope.
func (p *Engine) provable(ctx *Context, atoms []*expr.Expr, env *Env) bool {
	var (
		release = p.store.PushLevel() == 0
		saved   = ctx.save()
		found   = false
	)
	//
	p.store.Push()
	p.solve(ctx, atoms, env.Clone(), func(*Env) bool {
		found = true
		return false
	})
	ctx.restore(saved)
	p.store.Pop()
	//
	if release {
		p.store.Release()
	}
	//
	return found
}

// Determine the plain predicates established by the choice points so far.
func established(choices *stack.Stack[*choice]) []*expr.Expr {
	var atoms []*expr.Expr
	//
	for i := choices.Len(); i > 0; i-- {
		if c := choices.Peek(i - 1); c.established != nil {
			atoms = append(atoms, c.established)
		}
	}
	//
	return atoms
}

func first(alternatives []*Env) (*Env, bool) {
	if len(alternatives) == 0 {
		return nil, false
	}
	//
	return alternatives[0], true
}

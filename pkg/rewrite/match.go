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

// Matcher determines the substitutions under which a pattern matches a target
// expression.
type Matcher interface {
	// Match a given pattern against a given target, returning every extension of
	// the given substitution under which the pattern (after substitution) equals
	// the target.  Alternatives are returned in a deterministic order, and the
	// given substitution is never modified.
	Match(pattern, target *expr.Expr, env *Env) []*Env
}

// SyntacticMatcher is a first-order matcher over expressions.  Pattern
// variables are marked variables of level zero, whilst marked variables of a
// higher level are rigid (i.e. they match only themselves).  The arguments of
// commutative functors may be permuted, and when the pattern has fewer arguments
// than the target its last argument may absorb the remainder.  Object variables
// bound in the pattern match the corresponding variables bound in the target.
type SyntacticMatcher struct {
	store *expr.Store
	// Maximum number of alternatives returned for any single match, where zero
	// means unbounded.
	limit int
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var _ Matcher = (*SyntacticMatcher)(nil)

// NewSyntacticMatcher constructs a matcher which returns at most limit
// alternatives per match (or all alternatives, if limit is zero).
func NewSyntacticMatcher(store *expr.Store, limit int) *SyntacticMatcher {
	return &SyntacticMatcher{store, limit}
}

// Match implementation for the Matcher interface.
func (p *SyntacticMatcher) Match(pattern, target *expr.Expr, env *Env) []*Env {
	return p.match(pattern, target, []*Env{env}, nil)
}

// Binding correspondence between an object variable bound in the pattern and
// that bound in the same position of the target.
type binder struct {
	pattern expr.SymbolID
	target  expr.SymbolID
}

// Match a pattern against a target under each of the given substitutions.
func (p *SyntacticMatcher) match(pattern, target *expr.Expr, envs []*Env, binders []binder) []*Env {
	var results []*Env
	//
	for _, env := range envs {
		if p.full(results) {
			break
		}
		//
		results = append(results, p.matchOne(pattern, target, env, binders)...)
	}
	//
	return p.truncate(results)
}

func (p *SyntacticMatcher) matchOne(pattern, target *expr.Expr, env *Env, binders []binder) []*Env {
	switch pattern.Kind() {
	case expr.KindMarkedVariable:
		if pattern.Level() != 0 {
			return when(pattern == target, env)
		} else if escapes(target, binders) {
			return nil
		}
		//
		env = env.Clone()
		//
		return when(env.Bind(pattern.Symbol(), target), env)
	case expr.KindVariable:
		return when(target.Kind() == expr.KindVariable && corresponds(pattern.Symbol(), target.Symbol(), binders), env)
	case expr.KindApplication:
		if target.Kind() != expr.KindApplication || target.Functor() != pattern.Functor() {
			return nil
		} else if p.store.Symbols().IsCommutative(pattern.Functor()) {
			return p.matchCommutative(pattern, target, env, binders)
		} else if pattern.Arity() != target.Arity() {
			return nil
		}
		//
		return p.matchAll(pattern.Args(), target.Args(), env, binders)
	case expr.KindCase:
		return p.matchCase(pattern, target, env, binders)
	case expr.KindQuantifier:
		if target.Kind() != expr.KindQuantifier || target.Quant() != pattern.Quant() ||
			len(target.Vars()) != len(pattern.Vars()) {
			return nil
		}
		//
		binders = bind(binders, pattern.Vars(), target.Vars())
		//
		return p.match(pattern.Cond(), target.Cond(), p.matchOne(pattern.Body(), target.Body(), env, binders), binders)
	case expr.KindIndex:
		if target.Kind() != expr.KindIndex || target.Selector() != pattern.Selector() {
			return nil
		}
		//
		return p.matchOne(pattern.Base(), target.Base(), env, binders)
	default:
		// Numerals and strings are canonical.
		return when(pattern == target, env)
	}
}

// Match a sequence of patterns against a sequence of targets, position by
// position.
func (p *SyntacticMatcher) matchAll(patterns, targets []*expr.Expr, env *Env, binders []binder) []*Env {
	envs := []*Env{env}
	//
	for i := 0; i < len(patterns) && len(envs) > 0; i++ {
		envs = p.match(patterns[i], targets[i], envs, binders)
	}
	//
	return envs
}

func (p *SyntacticMatcher) matchCase(pattern, target *expr.Expr, env *Env, binders []binder) []*Env {
	if target.Kind() != expr.KindCase || len(target.Branches()) != len(pattern.Branches()) {
		return nil
	}
	//
	envs := p.matchOne(pattern.Scrutinee(), target.Scrutinee(), env, binders)
	//
	for i, b := range pattern.Branches() {
		c := target.Branches()[i]
		pvars, tvars := expr.Variables(b.Pattern), expr.Variables(c.Pattern)
		//
		if len(pvars) != len(tvars) {
			return nil
		}
		//
		inner := bind(binders, pvars, tvars)
		envs = p.match(b.Pattern, c.Pattern, envs, inner)
		envs = p.match(b.Body, c.Body, envs, inner)
	}
	//
	return envs
}

// Match the arguments of a commutative application, by trying every injective
// assignment of pattern arguments to target arguments.  When the pattern has
// fewer arguments than the target and its last argument is a pattern variable,
// that variable absorbs the unassigned target arguments.
func (p *SyntacticMatcher) matchCommutative(pattern, target *expr.Expr, env *Env, binders []binder) []*Env {
	var (
		patterns = pattern.Args()
		targets  = target.Args()
		rest     *expr.Expr
	)
	//
	if len(patterns) > len(targets) {
		return nil
	} else if len(patterns) < len(targets) {
		if len(patterns) == 0 || !isPatternVar(patterns[len(patterns)-1]) {
			return nil
		}
		//
		rest = patterns[len(patterns)-1]
		patterns = patterns[:len(patterns)-1]
	}
	//
	var (
		results []*Env
		used    = make([]bool, len(targets))
	)
	//
	var assign func(int, *Env)
	//
	assign = func(i int, env *Env) {
		if p.full(results) {
			return
		} else if i == len(patterns) {
			results = append(results, p.absorb(rest, pattern.Functor(), targets, used, env, binders)...)
			return
		}
		//
		for j, t := range targets {
			if !used[j] {
				used[j] = true
				//
				for _, next := range p.matchOne(patterns[i], t, env, binders) {
					assign(i+1, next)
				}
				//
				used[j] = false
			}
		}
	}
	//
	assign(0, env)
	//
	return p.truncate(results)
}

// Bind the absorbing variable (if any) to the unassigned target arguments, in
// their original order.
func (p *SyntacticMatcher) absorb(rest *expr.Expr, functor expr.SymbolID, targets []*expr.Expr, used []bool,
	env *Env, binders []binder) []*Env {
	if rest == nil {
		return []*Env{env}
	}
	//
	var remainder []*expr.Expr
	//
	for j, t := range targets {
		if !used[j] {
			remainder = append(remainder, t)
		}
	}
	//
	if len(remainder) == 1 {
		return p.matchOne(rest, remainder[0], env, binders)
	}
	//
	return p.matchOne(rest, p.store.Apply(functor, remainder...), env, binders)
}

func (p *SyntacticMatcher) full(results []*Env) bool {
	return p.limit > 0 && len(results) >= p.limit
}

func (p *SyntacticMatcher) truncate(results []*Env) []*Env {
	if p.limit > 0 && len(results) > p.limit {
		return results[:p.limit]
	}
	//
	return results
}

func when(cond bool, env *Env) []*Env {
	if cond {
		return []*Env{env}
	}
	//
	return nil
}

// Extend a list of binder correspondences, where later entries shadow earlier
// ones.
func bind(binders []binder, pvars, tvars []expr.SymbolID) []binder {
	binders = slices.Clip(binders)
	//
	for i := 0; i < len(pvars) && i < len(tvars); i++ {
		binders = append(binders, binder{pvars[i], tvars[i]})
	}
	//
	return binders
}

// Check whether two object variables correspond, i.e. they are either bound at
// the same position or are the same free variable.
func corresponds(pvar, tvar expr.SymbolID, binders []binder) bool {
	for i := len(binders) - 1; i >= 0; i-- {
		if b := binders[i]; b.pattern == pvar || b.target == tvar {
			return b.pattern == pvar && b.target == tvar
		}
	}
	//
	return pvar == tvar
}

// Check whether a target expression mentions a variable bound within the
// target, which cannot be captured by a pattern variable.
func escapes(target *expr.Expr, binders []binder) bool {
	if len(binders) == 0 {
		return false
	}
	//
	for _, v := range expr.FreeVariables(target) {
		for _, b := range binders {
			if b.target == v {
				return true
			}
		}
	}
	//
	return false
}

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
	"iter"
	"maps"
	"slices"

	"github.com/consensys/go-rewrite/pkg/expr"
)

// Env is a substitution mapping pattern variables (i.e. marked variables of
// level zero) to expressions.  Bindings are kept in the order they were made,
// which determines the order of the domain.
type Env struct {
	vars   []expr.SymbolID
	values []*expr.Expr
}

// NewEnv constructs an empty substitution.
func NewEnv() *Env {
	return &Env{}
}

// Len returns the number of variables bound in this substitution.
func (p *Env) Len() int {
	return len(p.vars)
}

// Lookup the value bound to a given variable.
func (p *Env) Lookup(v expr.SymbolID) (*expr.Expr, bool) {
	if i := slices.Index(p.vars, v); i >= 0 {
		return p.values[i], true
	}
	//
	return nil, false
}

// Apply returns the value bound to a given variable, or nil if it is unbound.
func (p *Env) Apply(v expr.SymbolID) *expr.Expr {
	value, _ := p.Lookup(v)
	return value
}

// Bind a given variable to a given value.  This fails if the variable is
// already bound to a different value.
func (p *Env) Bind(v expr.SymbolID, value *expr.Expr) bool {
	if old, ok := p.Lookup(v); ok {
		return old == value
	}
	//
	p.vars = append(p.vars, v)
	p.values = append(p.values, value)
	//
	return true
}

// Clone returns a copy of this substitution, which can be extended without
// affecting the original.
func (p *Env) Clone() *Env {
	return &Env{slices.Clone(p.vars), slices.Clone(p.values)}
}

// Merge every binding of another substitution into a copy of this one,
// returning nil if any binding conflicts.
func (p *Env) Merge(other *Env) *Env {
	env := p.Clone()
	//
	for v, value := range other.Domain() {
		if !env.Bind(v, value) {
			return nil
		}
	}
	//
	return env
}

// Domain iterates the bindings of this substitution in the order they were
// made.
func (p *Env) Domain() iter.Seq2[expr.SymbolID, *expr.Expr] {
	return func(yield func(expr.SymbolID, *expr.Expr) bool) {
		for i, v := range p.vars {
			if !yield(v, p.values[i]) {
				return
			}
		}
	}
}

// Substitute replaces every pattern variable bound in a given substitution by
// its value.
func Substitute(store *expr.Store, e *expr.Expr, env *Env) *expr.Expr {
	if env.Len() == 0 {
		return e
	}
	//
	return transform(store, e, make(map[*expr.Expr]*expr.Expr), func(n *expr.Expr) *expr.Expr {
		if n.Kind() == expr.KindMarkedVariable && n.Level() == 0 {
			return env.Apply(n.Symbol())
		}
		//
		return nil
	})
}

// Transform an expression bottom-up, where a given function can replace any
// node (by returning non-nil).  Nodes which are not replaced are rebuilt from
// their transformed children.
func transform(store *expr.Store, e *expr.Expr, cache map[*expr.Expr]*expr.Expr,
	fn func(*expr.Expr) *expr.Expr) *expr.Expr {
	//
	if r, ok := cache[e]; ok {
		return r
	} else if r := fn(e); r != nil {
		cache[e] = r
		return r
	}
	//
	var r = e
	//
	switch e.Kind() {
	case expr.KindApplication:
		args := make([]*expr.Expr, e.Arity())
		//
		for i, arg := range e.Args() {
			args[i] = transform(store, arg, cache, fn)
		}
		//
		r = store.Apply(e.Functor(), args...)
	case expr.KindCase:
		branches := make([]expr.Branch, len(e.Branches()))
		//
		for i, b := range e.Branches() {
			branches[i] = expr.Branch{Pattern: transform(store, b.Pattern, cache, fn),
				Body: transform(store, b.Body, cache, fn)}
		}
		//
		r = store.Case(transform(store, e.Scrutinee(), cache, fn), branches...)
	case expr.KindQuantifier:
		r = store.Quantifier(e.Quant(), e.Vars(), transform(store, e.Body(), cache, fn),
			transform(store, e.Cond(), cache, fn))
	case expr.KindIndex:
		r = store.Index(transform(store, e.Base(), cache, fn), e.Selector())
	}
	//
	cache[e] = r
	//
	return r
}

// Replace the free occurrences of variables in a given expression according to
// a given mapping.  Occurrences bound by an enclosing quantifier, or by the
// pattern of an enclosing case branch, are left alone.
func replaceFree(store *expr.Store, e *expr.Expr, mapping map[expr.SymbolID]*expr.Expr) *expr.Expr {
	if len(mapping) == 0 {
		return e
	}
	//
	switch e.Kind() {
	case expr.KindVariable:
		if r, ok := mapping[e.Symbol()]; ok {
			return r
		}
	case expr.KindApplication:
		args := make([]*expr.Expr, e.Arity())
		//
		for i, arg := range e.Args() {
			args[i] = replaceFree(store, arg, mapping)
		}
		//
		return store.Apply(e.Functor(), args...)
	case expr.KindCase:
		branches := make([]expr.Branch, len(e.Branches()))
		//
		for i, b := range e.Branches() {
			inner := without(mapping, expr.Variables(b.Pattern))
			branches[i] = expr.Branch{Pattern: b.Pattern, Body: replaceFree(store, b.Body, inner)}
		}
		//
		return store.Case(replaceFree(store, e.Scrutinee(), mapping), branches...)
	case expr.KindQuantifier:
		inner := without(mapping, e.Vars())
		//
		return store.Quantifier(e.Quant(), e.Vars(), replaceFree(store, e.Body(), inner),
			replaceFree(store, e.Cond(), inner))
	case expr.KindIndex:
		return store.Index(replaceFree(store, e.Base(), mapping), e.Selector())
	}
	//
	return e
}

func without(mapping map[expr.SymbolID]*expr.Expr, vars []expr.SymbolID) map[expr.SymbolID]*expr.Expr {
	var inner map[expr.SymbolID]*expr.Expr
	//
	for _, v := range vars {
		if _, ok := mapping[v]; ok {
			if inner == nil {
				inner = maps.Clone(mapping)
			}
			//
			delete(inner, v)
		}
	}
	//
	if inner == nil {
		return mapping
	}
	//
	return inner
}

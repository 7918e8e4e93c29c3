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
	"maps"

	"github.com/consensys/go-rewrite/pkg/expr"
	"github.com/consensys/go-rewrite/pkg/util/collection/hash"
)

// Rename the variables bound within a rule variant (by a quantifier, or by the
// pattern of a case branch) to fresh variables, such that none coincides with a
// variable of the rule or the target.  Hence, no variable bound in the rule can
// capture a variable free in the target.
func (p *Engine) nameAway(variant, target *expr.Expr) *expr.Expr {
	avoid := hash.NewSet[expr.SymbolID](64)
	//
	expr.Names(variant, avoid)
	expr.Names(target, avoid)
	//
	return p.rename(variant, nil, avoid)
}

func (p *Engine) rename(e *expr.Expr, renames map[expr.SymbolID]expr.SymbolID, avoid *hash.Set[expr.SymbolID]) *expr.Expr {
	if len(renames) == 0 && !e.HasSpecialTerm() {
		return e
	}
	//
	switch e.Kind() {
	case expr.KindVariable:
		if r, ok := renames[e.Symbol()]; ok {
			return p.store.Variable(r)
		}
	case expr.KindApplication:
		args := make([]*expr.Expr, e.Arity())
		//
		for i, arg := range e.Args() {
			args[i] = p.rename(arg, renames, avoid)
		}
		//
		return p.store.Apply(e.Functor(), args...)
	case expr.KindCase:
		branches := make([]expr.Branch, len(e.Branches()))
		//
		for i, b := range e.Branches() {
			inner, _ := p.freshen(expr.Variables(b.Pattern), renames, avoid)
			branches[i] = expr.Branch{Pattern: p.rename(b.Pattern, inner, avoid), Body: p.rename(b.Body, inner, avoid)}
		}
		//
		return p.store.Case(p.rename(e.Scrutinee(), renames, avoid), branches...)
	case expr.KindQuantifier:
		inner, vars := p.freshen(e.Vars(), renames, avoid)
		//
		return p.store.Quantifier(e.Quant(), vars, p.rename(e.Body(), inner, avoid), p.rename(e.Cond(), inner, avoid))
	case expr.KindIndex:
		return p.store.Index(p.rename(e.Base(), renames, avoid), e.Selector())
	}
	//
	return e
}

// Allocate fresh names for a given set of binders, except those already
// renamed, returning the extended renaming and the renamed binders.
func (p *Engine) freshen(vars []expr.SymbolID, renames map[expr.SymbolID]expr.SymbolID,
	avoid *hash.Set[expr.SymbolID]) (map[expr.SymbolID]expr.SymbolID, []expr.SymbolID) {
	var (
		inner   = maps.Clone(renames)
		renamed = make([]expr.SymbolID, len(vars))
	)
	//
	if inner == nil {
		inner = make(map[expr.SymbolID]expr.SymbolID)
	}
	//
	for i, v := range vars {
		if r, ok := inner[v]; ok {
			renamed[i] = r
			continue
		}
		//
		r := p.freshName(v, avoid)
		avoid.Insert(r)
		inner[v] = r
		renamed[i] = r
	}
	//
	return inner, renamed
}

// Obtain a fresh name for a given binder, avoiding a given set of names.  Names
// are drawn from a pool kept for each binder, which grows only when every name
// already in it must be avoided.
func (p *Engine) freshName(v expr.SymbolID, avoid *hash.Set[expr.SymbolID]) expr.SymbolID {
	for _, r := range p.names[v] {
		if !avoid.Contains(r) {
			return r
		}
	}
	//
	symbols := p.store.Symbols()
	r := symbols.Fresh(symbols.Name(v), avoid)
	p.names[v] = append(p.names[v], r)
	//
	return r
}

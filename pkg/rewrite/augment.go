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

// Augment a rule variant (-> lhs rhs guard) to fit the shape of a given target.
// This returns one or more variants, each of which is sound whenever the
// original is.  Specifically:
//
// (1) When the left-hand side applies an associative-commutative functor to
// arguments none of which is a pattern variable, and the target applies it to
// more arguments, a fresh variable V absorbs the residue.  Thus, the rule
// f(a,b) -> c becomes f(a,b,V) -> f(c,V).
//
// (2) When the left-hand side is an equality (= A B) and the target is an
// oriented rule, the variant is split into one matching (-> A B) and one
// matching (-> B A).
//
// (3) When both the left-hand side and the target are unions, and the target
// contains a larger set literal, the set literal of the rule is widened with
// fresh variables whose union is appended to the right-hand side.
func (p *Engine) augment(variant, target *expr.Expr) []*expr.Expr {
	var (
		lhs, rhs, guard = variant.Arg(0), variant.Arg(1), variant.Arg(2)
		next            = 0
		variants        []*expr.Expr
	)
	//
	if lhs.Kind() == expr.KindApplication && p.store.Symbols().IsAC(lhs.Functor()) &&
		target.IsApp(lhs.Functor()) && target.Arity() > lhs.Arity() && !hasTopVar(lhs) {
		v := p.freshVar(next)
		next++
		//
		lhs = p.store.Apply(lhs.Functor(), append(slices.Clone(lhs.Args()), v)...)
		rhs = p.store.Apply(lhs.Functor(), rhs, v)
	}
	//
	if lhs.IsApp(expr.EQUAL) && lhs.Arity() == 2 && target.IsApp(expr.ORIENTED) {
		var (
			a, b  = lhs.Arg(0), lhs.Arg(1)
			sides = []*expr.Expr{a, b}
			flip  = []*expr.Expr{b, a}
		)
		//
		if target.Arity() == 3 {
			g := p.freshVar(next)
			next++
			sides, flip = append(sides, g), append(flip, g)
		}
		//
		variants = []*expr.Expr{
			oriented(p.store, p.store.Apply(expr.ORIENTED, sides...), rhs, guard),
			oriented(p.store, p.store.Apply(expr.ORIENTED, flip...), rhs, guard),
		}
	} else {
		variants = []*expr.Expr{oriented(p.store, lhs, rhs, guard)}
	}
	//
	for i, v := range variants {
		variants[i] = p.widen(v, target, next)
	}
	//
	return variants
}

// Widen the set literal of a union rule to match a larger set literal in a
// union target.
func (p *Engine) widen(variant, target *expr.Expr, next int) *expr.Expr {
	lhs := variant.Arg(0)
	//
	if !lhs.IsApp(expr.UNION) || !target.IsApp(expr.UNION) {
		return variant
	}
	//
	i := slices.IndexFunc(lhs.Args(), isSet)
	j := slices.IndexFunc(target.Args(), isSet)
	//
	if i < 0 || j < 0 || target.Arg(j).Arity() <= lhs.Arg(i).Arity() {
		return variant
	}
	//
	var (
		set   = lhs.Arg(i)
		extra = make([]*expr.Expr, target.Arg(j).Arity()-set.Arity())
	)
	//
	for k := range extra {
		extra[k] = p.freshVar(next + k)
	}
	//
	widened := p.store.Set(append(slices.Clone(set.Args()), extra...)...)
	lhs = p.store.WithChild(lhs, i, widened)
	rhs := p.store.Apply(expr.UNION, variant.Arg(1), p.store.Set(extra...))
	//
	return oriented(p.store, lhs, rhs, variant.Arg(2))
}

func isSet(e *expr.Expr) bool {
	return e.IsApp(expr.SET)
}

// Check whether any argument of an application is a pattern variable.
func hasTopVar(e *expr.Expr) bool {
	return slices.ContainsFunc(e.Args(), isPatternVar)
}

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
package expr

import (
	"iter"
	"slices"

	"github.com/consensys/go-rewrite/pkg/util/collection/hash"
)

// FreeVariables returns the variables occurring free in a given expression, in
// order of first occurrence.  Variables bound by a quantifier are not free in
// its body or condition, and variables occurring in the pattern of a case
// branch are not free in that branch.
func FreeVariables(e *Expr) []SymbolID {
	var vars []SymbolID
	//
	freeVariables(e, nil, &vars)
	//
	return vars
}

func freeVariables(e *Expr, bound []SymbolID, vars *[]SymbolID) {
	switch e.kind {
	case KindVariable:
		if !slices.Contains(bound, e.symbol) && !slices.Contains(*vars, e.symbol) {
			*vars = append(*vars, e.symbol)
		}
	case KindQuantifier:
		bound = append(slices.Clip(bound), e.vars...)
		freeVariables(e.Body(), bound, vars)
		freeVariables(e.Cond(), bound, vars)
	case KindCase:
		freeVariables(e.Scrutinee(), bound, vars)
		//
		for _, b := range e.branches {
			inner := append(slices.Clip(bound), Variables(b.Pattern)...)
			freeVariables(b.Body, inner, vars)
		}
	default:
		for _, arg := range e.args {
			freeVariables(arg, bound, vars)
		}
	}
}

// Variables returns every variable occurring in a given expression (free or
// bound), in order of first occurrence.
func Variables(e *Expr) []SymbolID {
	var vars []SymbolID
	//
	for n := range Subterms(e) {
		if n.kind == KindVariable && !slices.Contains(vars, n.symbol) {
			vars = append(vars, n.symbol)
		}
	}
	//
	return vars
}

// Names returns the set of every symbol used as a variable name, marked
// variable name or binder in a given expression.
func Names(e *Expr, names *hash.Set[SymbolID]) {
	for n := range Subterms(e) {
		switch n.kind {
		case KindVariable, KindMarkedVariable:
			names.Insert(n.symbol)
		case KindQuantifier:
			for _, v := range n.vars {
				names.Insert(v)
			}
		}
	}
}

// ContainsFunctor checks whether a given functor is applied anywhere within a
// given expression.
func ContainsFunctor(e *Expr, functor SymbolID) bool {
	for n := range Subterms(e) {
		if n.IsApp(functor) {
			return true
		}
	}
	//
	return false
}

// Subterms iterates every subterm of a given expression in pre-order, including
// the expression itself.  Shared subterms are visited once for each occurrence.
func Subterms(e *Expr) iter.Seq[*Expr] {
	return func(yield func(*Expr) bool) {
		subterms(e, yield)
	}
}

func subterms(e *Expr, yield func(*Expr) bool) bool {
	if !yield(e) {
		return false
	}
	//
	for child := range e.Children() {
		if !subterms(child, yield) {
			return false
		}
	}
	//
	return true
}

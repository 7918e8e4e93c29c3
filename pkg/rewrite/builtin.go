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
	"math/big"
	"slices"

	"github.com/consensys/go-rewrite/pkg/expr"
)

// Fold the builtin operators of an expression whose arguments are literals.
// Nested applications of an associative-commutative functor are flattened.
func (p *Engine) fold(e *expr.Expr) *expr.Expr {
	if e.Kind() != expr.KindApplication {
		return e
	} else if p.store.Symbols().IsAC(e.Functor()) {
		e = p.flatten(e)
	}
	//
	args := e.Args()
	//
	switch e.Functor() {
	case expr.PLUS:
		return p.arith(e, big.NewRat(0, 1), (*big.Rat).Add)
	case expr.TIMES:
		return p.arith(e, big.NewRat(1, 1), (*big.Rat).Mul)
	case expr.MINUS:
		return p.minus(e)
	case expr.LT, expr.LE, expr.GT, expr.GE:
		if len(args) == 2 && args[0].IsNumeral() && args[1].IsNumeral() {
			c := args[0].Rat().Cmp(args[1].Rat())
			//
			switch e.Functor() {
			case expr.LT:
				return p.store.Bool(c < 0)
			case expr.LE:
				return p.store.Bool(c <= 0)
			case expr.GT:
				return p.store.Bool(c > 0)
			default:
				return p.store.Bool(c >= 0)
			}
		}
	case expr.EQUAL:
		if len(args) == 2 {
			if args[0] == args[1] {
				return p.store.True()
			} else if distinctLiterals(args[0], args[1]) {
				return p.store.False()
			}
		}
	case expr.NOT:
		if len(args) == 1 {
			switch {
			case args[0].IsTrue():
				return p.store.False()
			case args[0].IsFalse():
				return p.store.True()
			case args[0].IsApp(expr.NOT) && args[0].Arity() == 1:
				return args[0].Arg(0)
			}
		}
	case expr.AND, expr.NC_AND:
		return p.connective(e, (*expr.Expr).IsTrue, (*expr.Expr).IsFalse, p.store.True())
	case expr.OR:
		return p.connective(e, (*expr.Expr).IsFalse, (*expr.Expr).IsTrue, p.store.False())
	case expr.ITE:
		if len(args) == 3 {
			switch {
			case args[0].IsTrue():
				return args[1]
			case args[0].IsFalse():
				return args[2]
			case args[1] == args[2]:
				return args[1]
			}
		}
	}
	//
	return e
}

// Flatten nested applications of the same associative functor.
func (p *Engine) flatten(e *expr.Expr) *expr.Expr {
	if !slices.ContainsFunc(e.Args(), func(arg *expr.Expr) bool { return arg.IsApp(e.Functor()) }) {
		return e
	}
	//
	var args []*expr.Expr
	//
	for _, arg := range e.Args() {
		if arg.IsApp(e.Functor()) {
			args = append(args, p.flatten(arg).Args()...)
		} else {
			args = append(args, arg)
		}
	}
	//
	return p.store.Apply(e.Functor(), args...)
}

// Fold an arithmetic operator whose arguments are all numerals.
func (p *Engine) arith(e *expr.Expr, unit *big.Rat, op func(*big.Rat, *big.Rat, *big.Rat) *big.Rat) *expr.Expr {
	if !slices.ContainsFunc(e.Args(), (*expr.Expr).IsNumeral) {
		return e
	}
	//
	acc := unit
	//
	for _, arg := range e.Args() {
		if !arg.IsNumeral() {
			return e
		}
		//
		acc = op(acc, acc, arg.Rat())
	}
	//
	return p.store.Numeral(acc)
}

// Fold negation or subtraction of numerals.
func (p *Engine) minus(e *expr.Expr) *expr.Expr {
	switch args := e.Args(); {
	case len(args) == 1 && args[0].IsNumeral():
		return p.store.Numeral(new(big.Rat).Neg(args[0].Rat()))
	case len(args) == 2 && args[0].IsNumeral() && args[1].IsNumeral():
		return p.store.Numeral(new(big.Rat).Sub(args[0].Rat(), args[1].Rat()))
	}
	//
	return e
}

// Simplify a connective with a given unit (which is dropped) and zero (which
// absorbs the connective).
func (p *Engine) connective(e *expr.Expr, unit, zero func(*expr.Expr) bool, empty *expr.Expr) *expr.Expr {
	var args []*expr.Expr
	//
	for _, arg := range e.Args() {
		if zero(arg) {
			return arg
		} else if !unit(arg) {
			args = append(args, arg)
		}
	}
	//
	switch {
	case len(args) == 0:
		return empty
	case len(args) == 1:
		return args[0]
	case len(args) == e.Arity():
		return e
	default:
		return p.store.Apply(e.Functor(), args...)
	}
}

// Check whether two expressions are distinct literals, i.e. numerals, strings
// or truth values which are known to be different.
func distinctLiterals(a, b *expr.Expr) bool {
	switch {
	case a.IsNumeral() && b.IsNumeral():
		return a.Rat().Cmp(b.Rat()) != 0
	case a.Kind() == expr.KindString && b.Kind() == expr.KindString:
		return a.Text() != b.Text()
	case (a.IsTrue() || a.IsFalse()) && (b.IsTrue() || b.IsFalse()):
		return a != b
	}
	//
	return false
}

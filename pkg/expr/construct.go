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
	"fmt"
	"math/big"
	"slices"
	"strings"
)

// Integer returns the unique node representing a given integer value.
func (s *Store) Integer(value *big.Int) *Expr {
	return s.canonical(&Expr{kind: KindInteger, value: new(big.Int).Set(value), height: 1, canCache: true})
}

// Int returns the unique node representing a given integer value.
func (s *Store) Int(value int64) *Expr {
	return s.Integer(big.NewInt(value))
}

// Rational returns the unique node representing a given fraction.  The
// fraction is reduced, and its denominator made positive, before being
// interned.  Fractions whose reduced denominator is one are represented as
// integers.  A zero denominator is an error.
func (s *Store) Rational(num *big.Int, den *big.Int) *Expr {
	if den.Sign() == 0 {
		panic("rational with zero denominator")
	}
	//
	var (
		n = new(big.Int).Set(num)
		d = new(big.Int).Set(den)
		g = new(big.Int)
	)
	//
	if d.Sign() < 0 {
		n.Neg(n)
		d.Neg(d)
	}
	//
	g.GCD(nil, nil, new(big.Int).Abs(n), d)
	//
	if g.Sign() != 0 && g.Cmp(big.NewInt(1)) != 0 {
		n.Quo(n, g)
		d.Quo(d, g)
	}
	//
	if d.IsInt64() && d.Int64() == 1 {
		return s.Integer(n)
	}
	//
	return s.canonical(&Expr{kind: KindRational, value: n, denom: d, height: 1, canCache: true})
}

// Rat returns the unique node representing a given fraction.
func (s *Store) Rat(num int64, den int64) *Expr {
	return s.Rational(big.NewInt(num), big.NewInt(den))
}

// Numeral returns the unique node representing a given rational value.
func (s *Store) Numeral(value *big.Rat) *Expr {
	return s.Rational(value.Num(), value.Denom())
}

// Variable returns the unique node representing a given variable.
func (s *Store) Variable(name SymbolID) *Expr {
	return s.canonical(&Expr{kind: KindVariable, symbol: name, height: 1, canCache: true})
}

// Var returns the unique node representing the variable with a given name.
func (s *Store) Var(name string) *Expr {
	return s.Variable(s.symbols.Intern(name))
}

// MarkedVariable returns the unique node representing a given marked variable.
func (s *Store) MarkedVariable(name SymbolID, level uint) *Expr {
	return s.canonical(&Expr{kind: KindMarkedVariable, symbol: name, level: level, height: 1, canCache: true})
}

// Marked returns the unique node representing the marked variable with a given
// name and level.
func (s *Store) Marked(name string, level uint) *Expr {
	return s.MarkedVariable(s.symbols.Intern(name), level)
}

// Apply returns the unique node representing the application of a given functor
// to the given arguments.
func (s *Store) Apply(functor SymbolID, args ...*Expr) *Expr {
	n := &Expr{kind: KindApplication, symbol: functor, args: slices.Clone(args)}
	n.canCache = !IsSideEffecting(functor)
	//
	var height uint
	//
	for _, arg := range args {
		height = max(height, arg.height)
		n.canCache = n.canCache && arg.canCache
		n.special = n.special || arg.special
	}
	// Associative arithmetic does not increase height.
	if !IsArithmetic(functor) || len(args) == 0 {
		height++
	}
	//
	n.height = height
	//
	return s.canonical(n)
}

// App returns the unique node representing the application of the functor with
// a given name to the given arguments.
func (s *Store) App(functor string, args ...*Expr) *Expr {
	return s.Apply(s.symbols.Intern(functor), args...)
}

// Const returns the unique node representing the nullary application of the
// functor with a given name.
func (s *Store) Const(name string) *Expr {
	return s.App(name)
}

// True returns the literal TRUE.
func (s *Store) True() *Expr {
	return s.trueExpr
}

// False returns the literal FALSE.
func (s *Store) False() *Expr {
	return s.falseExpr
}

// Bool returns the literal corresponding to a given boolean.
func (s *Store) Bool(b bool) *Expr {
	if b {
		return s.trueExpr
	}
	//
	return s.falseExpr
}

// Set returns the unique node representing a set literal over the given
// elements.
func (s *Store) Set(elems ...*Expr) *Expr {
	return s.Apply(SET, elems...)
}

// Case returns the unique node representing a case over a given scrutinee.
// When every pattern is a nullary application and no two patterns share a
// functor, the branches are sorted by functor name.  Thus, case expressions
// differing only in the order of such branches are represented by the same
// node.
func (s *Store) Case(scrutinee *Expr, branches ...Branch) *Expr {
	branches = slices.Clone(branches)
	//
	if s.isConstructorCase(branches) {
		slices.SortFunc(branches, func(a, b Branch) int {
			return strings.Compare(s.symbols.Name(a.Pattern.symbol), s.symbols.Name(b.Pattern.symbol))
		})
	}
	//
	n := &Expr{kind: KindCase, args: []*Expr{scrutinee}, branches: branches, special: true}
	n.height = scrutinee.height
	n.canCache = scrutinee.canCache
	//
	for _, b := range branches {
		n.height = max(n.height, b.Pattern.height, b.Body.height)
		n.canCache = n.canCache && b.Pattern.canCache && b.Body.canCache
	}
	//
	n.height++
	//
	return s.canonical(n)
}

func (s *Store) isConstructorCase(branches []Branch) bool {
	for i, b := range branches {
		if b.Pattern.kind != KindApplication || len(b.Pattern.args) != 0 {
			return false
		}
		//
		for _, c := range branches[:i] {
			if c.Pattern.symbol == b.Pattern.symbol {
				return false
			}
		}
	}
	//
	return true
}

// Quantifier returns the unique node representing a quantifier binding the
// given variables over a body and condition.  A nil condition is TRUE.
func (s *Store) Quantifier(kind QuantKind, vars []SymbolID, body *Expr, cond *Expr) *Expr {
	if cond == nil {
		cond = s.trueExpr
	}
	//
	n := &Expr{kind: KindQuantifier, quant: kind, vars: slices.Clone(vars), args: []*Expr{body, cond}, special: true}
	n.height = 1 + max(body.height, cond.height)
	n.canCache = body.canCache && cond.canCache
	//
	return s.canonical(n)
}

// Index returns the unique node representing the selection of a given
// component from a base expression.
func (s *Store) Index(base *Expr, selector int) *Expr {
	n := &Expr{kind: KindIndex, selector: selector, args: []*Expr{base}}
	n.height = 1 + base.height
	n.canCache = base.canCache
	n.special = base.special
	//
	return s.canonical(n)
}

// String returns the unique node representing a given text literal.
func (s *Store) String(text string) *Expr {
	return s.canonical(&Expr{kind: KindString, text: text, height: 1, canCache: true})
}

// WithChild returns the unique node obtained from a given node by replacing its
// ith immediate child (in the order given by Children).
func (s *Store) WithChild(e *Expr, i int, child *Expr) *Expr {
	if i < 0 || i >= e.NumChildren() {
		panic(fmt.Sprintf("invalid child %d of %s node", i, e.kind))
	} else if e.Child(i) == child {
		return e
	}
	//
	switch e.kind {
	case KindApplication:
		args := slices.Clone(e.args)
		args[i] = child
		//
		return s.Apply(e.symbol, args...)
	case KindCase:
		if i == 0 {
			return s.Case(child, e.branches...)
		}
		//
		branches := slices.Clone(e.branches)
		//
		if j := i - 1; j%2 == 0 {
			branches[j/2].Pattern = child
		} else {
			branches[j/2].Body = child
		}
		//
		return s.Case(e.Scrutinee(), branches...)
	case KindQuantifier:
		if i == 0 {
			return s.Quantifier(e.quant, e.vars, child, e.Cond())
		}
		//
		return s.Quantifier(e.quant, e.vars, e.Body(), child)
	default:
		return s.Index(child, e.selector)
	}
}

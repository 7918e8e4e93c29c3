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
	"math/big"
)

// Kind identifies the shape of an expression node.
type Kind uint8

const (
	// KindInteger is an arbitrary precision integer.
	KindInteger Kind = iota
	// KindRational is a reduced fraction whose denominator is greater than one.
	KindRational
	// KindVariable is an object variable.
	KindVariable
	// KindMarkedVariable is a rule-bound variable at a given quantifier level.
	KindMarkedVariable
	// KindApplication is a functor applied to zero or more arguments.
	KindApplication
	// KindCase is a scrutinee with a list of (pattern, body) branches.
	KindCase
	// KindQuantifier binds a list of variables over a body and condition.
	KindQuantifier
	// KindIndex selects a component of another expression.
	KindIndex
	// KindString is an immutable text literal.
	KindString
	// Number of kinds (and hence of intern tables).
	numKinds
)

var kindNames = [numKinds]string{
	"integer", "rational", "variable", "marked", "application", "case", "quantifier", "index", "string",
}

func (k Kind) String() string {
	return kindNames[k]
}

// QuantKind identifies the kind of a quantifier.
type QuantKind uint8

const (
	// ForAll is universal quantification.
	ForAll QuantKind = iota
	// Exists is existential quantification.
	Exists
	// Lambda is functional abstraction.
	Lambda
)

var quantNames = [...]string{"forall", "exists", "lambda"}

func (k QuantKind) String() string {
	return quantNames[k]
}

// Branch is a single (pattern, body) arm of a case expression.
type Branch struct {
	Pattern *Expr
	Body    *Expr
}

// Expr is an interned expression node.  Nodes are only ever created by a Store,
// which guarantees that structurally equal expressions are represented by the
// same node.  Hence, equality of expressions is pointer equality.
type Expr struct {
	// Unique identifier, used as the hashing handle for this node.
	id uint64
	// Structural hash.
	hash uint64
	kind Kind
	// Value of an integer, or numerator of a rational.
	value *big.Int
	// Denominator of a rational.
	denom *big.Int
	// Functor of an application, or name of a (marked) variable.
	symbol SymbolID
	// Quantifier level of a marked variable.
	level uint
	// Kind of quantifier.
	quant QuantKind
	// Selector of an index.
	selector int
	// Text of a string.
	text string
	// Children.  For an application these are its arguments; for a case its
	// scrutinee; for a quantifier its body and condition; for an index its base.
	args []*Expr
	// Bound variables of a quantifier.
	vars []SymbolID
	// Branches of a case.
	branches []Branch
	height   uint
	canCache bool
	special  bool
	// Next node in the same intern bucket.
	hashNext *Expr
	// Global term list.
	prev, next *Expr
	linked     bool
	// Union-find and rewrite chain links.
	find    *Expr
	rewrite *Expr
	// Indicates this node was allocated in a scratch scope of the given
	// generation.
	scratch bool
	gen     uint
	// Region-backed annotation flags.
	slots []byte
	// Explanation link.
	explanation any
	// Back-references to parents.
	usedIn        []*Expr
	usedInVersion uint
	// Transient mark used when gathering unique nodes.
	seen bool
}

// ID returns the unique identifier of this node.
func (e *Expr) ID() uint64 { return e.id }

// Hash returns the structural hash of this node.
func (e *Expr) Hash() uint64 { return e.hash }

// Kind returns the shape of this node.
func (e *Expr) Kind() Kind { return e.kind }

// Value returns the value of an integer, or the numerator of a rational.  The
// returned value must not be modified.
func (e *Expr) Value() *big.Int { return e.value }

// Denominator returns the denominator of a rational.  The returned value must
// not be modified.
func (e *Expr) Denominator() *big.Int { return e.denom }

// Symbol returns the name of a variable or marked variable, or the functor of
// an application.
func (e *Expr) Symbol() SymbolID { return e.symbol }

// Functor returns the functor of an application.
func (e *Expr) Functor() SymbolID { return e.symbol }

// Level returns the quantifier level of a marked variable.
func (e *Expr) Level() uint { return e.level }

// Quant returns the kind of a quantifier.
func (e *Expr) Quant() QuantKind { return e.quant }

// Selector returns the selector of an index.
func (e *Expr) Selector() int { return e.selector }

// Text returns the text of a string.
func (e *Expr) Text() string { return e.text }

// Args returns the arguments of an application.  The returned slice must not
// be modified.
func (e *Expr) Args() []*Expr {
	if e.kind != KindApplication {
		return nil
	}
	//
	return e.args
}

// Arg returns the ith argument of an application.
func (e *Expr) Arg(i int) *Expr { return e.args[i] }

// Arity returns the number of arguments of an application.
func (e *Expr) Arity() int {
	if e.kind != KindApplication {
		return 0
	}
	//
	return len(e.args)
}

// Scrutinee returns the expression being cased over.
func (e *Expr) Scrutinee() *Expr { return e.args[0] }

// Branches returns the branches of a case.
func (e *Expr) Branches() []Branch { return e.branches }

// Vars returns the bound variables of a quantifier.
func (e *Expr) Vars() []SymbolID { return e.vars }

// Body returns the body of a quantifier.
func (e *Expr) Body() *Expr { return e.args[0] }

// Cond returns the condition of a quantifier.
func (e *Expr) Cond() *Expr { return e.args[1] }

// Base returns the expression being indexed.
func (e *Expr) Base() *Expr { return e.args[0] }

// Height returns the height of this node.
func (e *Expr) Height() uint { return e.height }

// CanCache indicates whether rewrites of this node can be cached, which holds
// when it contains no side-effecting forms.
func (e *Expr) CanCache() bool { return e.canCache }

// HasSpecialTerm indicates whether this node contains a quantifier or case.
func (e *Expr) HasSpecialTerm() bool { return e.special }

// IsScratch indicates whether this node was allocated in a scratch scope.
func (e *Expr) IsScratch() bool { return e.scratch }

// Slots returns the annotation flags of this node.  These are never
// interpreted by the store.
func (e *Expr) Slots() []byte { return e.slots }

// Explanation returns the explanation link of this node.
func (e *Expr) Explanation() any { return e.explanation }

// SetExplanation sets the explanation link of this node.
func (e *Expr) SetExplanation(explanation any) { e.explanation = explanation }

// UsedIn returns the nodes constructed with this node as an immediate child,
// along with a version which increases whenever this list is extended.
func (e *Expr) UsedIn() ([]*Expr, uint) { return e.usedIn, e.usedInVersion }

// NextTerm returns the successor of this node in the global term list.
func (e *Expr) NextTerm() *Expr { return e.next }

// PrevTerm returns the predecessor of this node in the global term list.
func (e *Expr) PrevTerm() *Expr { return e.prev }

// IsApp checks whether this is an application of the given functor.
func (e *Expr) IsApp(f SymbolID) bool {
	return e.kind == KindApplication && e.symbol == f
}

// IsTrue checks whether this is the literal TRUE.
func (e *Expr) IsTrue() bool { return e.IsApp(TRUE) && len(e.args) == 0 }

// IsFalse checks whether this is the literal FALSE.
func (e *Expr) IsFalse() bool { return e.IsApp(FALSE) && len(e.args) == 0 }

// IsNumeral checks whether this is an integer or rational.
func (e *Expr) IsNumeral() bool {
	return e.kind == KindInteger || e.kind == KindRational
}

// Rat returns the value of a numeral as a rational.
func (e *Expr) Rat() *big.Rat {
	if e.kind == KindRational {
		return new(big.Rat).SetFrac(e.value, e.denom)
	}
	//
	return new(big.Rat).SetInt(e.value)
}

// Children iterates every immediate child of this node.  For a case, this
// includes the pattern and body of every branch.
func (e *Expr) Children() iter.Seq[*Expr] {
	return func(yield func(*Expr) bool) {
		for _, arg := range e.args {
			if !yield(arg) {
				return
			}
		}
		//
		for _, b := range e.branches {
			if !yield(b.Pattern) || !yield(b.Body) {
				return
			}
		}
	}
}

// NumChildren returns the number of immediate children of this node.
func (e *Expr) NumChildren() int {
	return len(e.args) + 2*len(e.branches)
}

// Child returns the ith immediate child of this node, in the order given by
// Children.
func (e *Expr) Child(i int) *Expr {
	if i < len(e.args) {
		return e.args[i]
	}
	//
	i -= len(e.args)
	b := e.branches[i/2]
	//
	if i%2 == 0 {
		return b.Pattern
	}
	//
	return b.Body
}

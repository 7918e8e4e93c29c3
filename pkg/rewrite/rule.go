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
	"errors"
	"fmt"
	"strconv"

	"github.com/consensys/go-rewrite/pkg/expr"
	"github.com/consensys/go-rewrite/pkg/util/source"
	"github.com/consensys/go-rewrite/pkg/util/source/sexp"
)

// Rule is a prioritised rewrite rule.  Every rule is held in one or more
// oriented variants of the form (-> lhs rhs guard), which are computed when the
// rule is constructed.  For example, an unoriented rule (<-> a b g) has the two
// variants (-> a b g) and (-> b a g).
type Rule struct {
	// Expression from which this rule was constructed.
	expr *expr.Expr
	// Priority of this rule, where rules of higher priority are tried first.
	priority int
	// Indicates whether this is a context rule (as opposed to a forward rule).
	context bool
	// Transient mark used to suppress duplicate candidates.
	seen bool
	// Oriented variants of this rule.
	variants []*expr.Expr
}

// NewRule constructs a rule from a given expression.  Oriented rules (->),
// equalities (=), unoriented rules (<->) and universally quantified forms of
// these are recognised.  Any other expression p is treated as the fact
// (-> p TRUE TRUE), except for a negation (NOT p) which becomes
// (-> p FALSE TRUE).
func NewRule(store *expr.Store, e *expr.Expr, priority int, context bool) (*Rule, error) {
	variants, err := orient(store, e, store.True())
	if err != nil {
		return nil, err
	}
	//
	return &Rule{expr: e, priority: priority, context: context, variants: variants}, nil
}

// Expr returns the expression from which this rule was constructed.
func (r *Rule) Expr() *expr.Expr {
	return r.expr
}

// Priority returns the priority of this rule.
func (r *Rule) Priority() int {
	return r.priority
}

// IsContext checks whether this is a context rule.
func (r *Rule) IsContext() bool {
	return r.context
}

// Variants returns the oriented variants of this rule, each of the form
// (-> lhs rhs guard).
func (r *Rule) Variants() []*expr.Expr {
	return r.variants
}

func orient(store *expr.Store, e *expr.Expr, cond *expr.Expr) ([]*expr.Expr, error) {
	switch {
	case e.IsApp(expr.ORIENTED):
		if e.Arity() != 2 && e.Arity() != 3 {
			return nil, errors.New("malformed oriented rule")
		}
		//
		return []*expr.Expr{oriented(store, e.Arg(0), e.Arg(1), conjoin(store, cond, guardOf(store, e)))}, nil
	case e.IsApp(expr.UNORIENTED):
		if e.Arity() != 2 && e.Arity() != 3 {
			return nil, errors.New("malformed unoriented rule")
		}
		//
		guard := conjoin(store, cond, guardOf(store, e))
		//
		return []*expr.Expr{
			oriented(store, e.Arg(0), e.Arg(1), guard),
			oriented(store, e.Arg(1), e.Arg(0), guard)}, nil
	case e.IsApp(expr.EQUAL) && e.Arity() == 2:
		return []*expr.Expr{oriented(store, e.Arg(0), e.Arg(1), cond)}, nil
	case e.Kind() == expr.KindQuantifier && e.Quant() == expr.ForAll && isRuleForm(e.Body()):
		// Bound variables become pattern variables.
		lowered := make(map[expr.SymbolID]*expr.Expr)
		//
		for _, v := range e.Vars() {
			lowered[v] = store.MarkedVariable(v, 0)
		}
		//
		body := replaceFree(store, e.Body(), lowered)
		guard := replaceFree(store, e.Cond(), lowered)
		//
		return orient(store, body, conjoin(store, cond, guard))
	case e.IsApp(expr.NOT) && e.Arity() == 1:
		return []*expr.Expr{oriented(store, e.Arg(0), store.False(), cond)}, nil
	default:
		return []*expr.Expr{oriented(store, e, store.True(), cond)}, nil
	}
}

func isRuleForm(e *expr.Expr) bool {
	return e.IsApp(expr.ORIENTED) || e.IsApp(expr.UNORIENTED) || (e.IsApp(expr.EQUAL) && e.Arity() == 2)
}

func oriented(store *expr.Store, lhs, rhs, guard *expr.Expr) *expr.Expr {
	return store.Apply(expr.ORIENTED, lhs, rhs, guard)
}

// Extract the guard of a rule, which is TRUE when omitted.
func guardOf(store *expr.Store, e *expr.Expr) *expr.Expr {
	if e.Arity() == 3 {
		return e.Arg(2)
	}
	//
	return store.True()
}

// Conjoin two guards, eliminating TRUE where possible.
func conjoin(store *expr.Store, lhs, rhs *expr.Expr) *expr.Expr {
	switch {
	case lhs.IsTrue():
		return rhs
	case rhs.IsTrue():
		return lhs
	default:
		return store.Apply(expr.AND, lhs, rhs)
	}
}

// ===================================================================
// Rule files
// ===================================================================

// ParseRules reads the rules declared in a given source file.  Each top-level
// form is either (rule P r), declaring a forward rule r of priority P,
// (context P r), declaring a context rule, or a bare rule r, declaring a forward
// rule of priority zero.
func ParseRules(store *expr.Store, file *source.File) ([]*Rule, []source.SyntaxError) {
	terms, srcmap, err := sexp.ParseAll(file)
	if err != nil {
		return nil, []source.SyntaxError{*err}
	}
	//
	var (
		translator = expr.NewTranslator(store, file, srcmap)
		rules      []*Rule
		errs       []source.SyntaxError
	)
	//
	for _, term := range terms {
		rule, rerrs := parseRule(store, translator, term)
		//
		if len(rerrs) > 0 {
			errs = append(errs, rerrs...)
		} else {
			rules = append(rules, rule)
		}
	}
	//
	return rules, errs
}

func parseRule(store *expr.Store, translator *sexp.Translator[*expr.Expr], term sexp.SExp) (*Rule, []source.SyntaxError) {
	var (
		priority int
		context  bool
		body     = term
	)
	//
	if l := term.AsList(); l != nil && (l.MatchSymbols(1, "rule") || l.MatchSymbols(1, "context")) {
		if l.Len() != 3 {
			return nil, translator.SyntaxErrors(l, "expected priority and rule")
		}
		//
		p := l.Get(1).AsSymbol()
		if p == nil || p.Quoted {
			return nil, translator.SyntaxErrors(l.Get(1), "expected priority")
		}
		//
		n, err := strconv.Atoi(p.Value)
		if err != nil {
			return nil, translator.SyntaxErrors(l.Get(1), fmt.Sprintf("invalid priority %q", p.Value))
		}
		//
		priority, context, body = n, l.Head() == "context", l.Get(2)
	}
	//
	e, errs := translator.Translate(body)
	if len(errs) > 0 {
		return nil, errs
	}
	//
	rule, err := NewRule(store, e, priority, context)
	if err != nil {
		return nil, translator.SyntaxErrors(body, err.Error())
	}
	//
	return rule, nil
}

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
	"testing"

	"github.com/consensys/go-rewrite/pkg/expr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Matcher which records the patterns it is asked to match.
type recordingMatcher struct {
	matcher  Matcher
	patterns []*expr.Expr
}

func (p *recordingMatcher) Match(pattern, target *expr.Expr, env *Env) []*Env {
	p.patterns = append(p.patterns, pattern)
	return p.matcher.Match(pattern, target, env)
}

func Test_Engine_01(t *testing.T) {
	// Oriented rules with marked variables
	_, engine := newTestEngine(t, "(-> (f ?X) (g ?X) TRUE)")
	checkRewrite(t, engine, NewContext(), "(f x)", "(g x)")
	checkRewrite(t, engine, NewContext(), "(f (h 1))", "(g (h 1))")
	checkRewrite(t, engine, NewContext(), "(g x)", "")
	checkRewrite(t, engine, NewContext(), "(f x y)", "")
}

func Test_Engine_02(t *testing.T) {
	// Universally quantified equalities
	_, engine := newTestEngine(t, "(forall (x) (= (f x) (g x)))")
	checkRewrite(t, engine, NewContext(), "(f x)", "(g x)")
	checkRewrite(t, engine, NewContext(), "(f y)", "(g y)")
	// Quantified rules with a side-condition
	_, engine = newTestEngine(t, "(forall (x) (-> (f x) (g x)) (> x 0))")
	checkRewrite(t, engine, NewContext(), "(f 1)", "(g 1)")
	checkRewrite(t, engine, NewContext(), "(f 0)", "")
	// Unoriented rules apply in both directions
	_, engine = newTestEngine(t, "(<-> (f ?X) (g ?X))")
	checkRewrite(t, engine, NewContext(), "(f 1)", "(g 1)")
	checkRewrite(t, engine, NewContext(), "(g 1)", "(f 1)")
}

func Test_Engine_03(t *testing.T) {
	// Rules are tried in order of decreasing priority
	rules := `
		(rule 3 (-> (f ?A) three))
		(rule 1 (-> (f ?C) one))
		(rule 2 (-> (f ?B) two))
	`
	store := newTestStore()
	matcher := &recordingMatcher{matcher: NewSyntacticMatcher(store, 0)}
	parsed, errs := ParseRules(store, sourceText(rules))
	require.Empty(t, errs)
	//
	index := NewFunctorIndex()
	index.Add(parsed...)
	engine := New(store, index, matcher, DefaultConfig())
	// Commit to the first
	checkRewrite(t, engine, NewContext(), "(f x)", "three")
	require.Len(t, matcher.patterns, 1)
	// Enumerate all
	matcher.patterns = nil
	rewrites := engine.EnumerateRewrites(NewContext(), parse(t, store, "(f x)"), 0)
	require.Len(t, rewrites, 3)
	assert.Equal(t, []*expr.Expr{parse(t, store, "(f ?A)"), parse(t, store, "(f ?B)"), parse(t, store, "(f ?C)")},
		matcher.patterns)
	//
	for i, expected := range []string{"three", "two", "one"} {
		assert.Same(t, parse(t, store, expected), rewrites[i].Result)
		assert.Same(t, parse(t, store, "(f x)"), rewrites[i].Root)
		assert.Same(t, parsed[[]int{0, 2, 1}[i]], rewrites[i].Rule)
	}
}

func Test_Engine_04(t *testing.T) {
	// Ties keep discovery order
	_, engine := newTestEngine(t, `
		(rule 1 (-> (f ?X) first))
		(rule 1 (-> (f ?X) second))
	`)
	checkRewrite(t, engine, NewContext(), "(f x)", "first")
}

func Test_Engine_05(t *testing.T) {
	// A cut prunes lower priority rules, even when the rule asserting it fails.
	_, engine := newTestEngine(t, `
		(rule 2 (-> (f ?X) (g ?X) (AND (CUT) FALSE)))
		(rule 1 (-> (f ?X) (h ?X) TRUE))
	`)
	checkRewrite(t, engine, NewContext(), "(f a)", "")
	assert.Equal(t, 1.0, testutil.ToFloat64(engine.Metrics().cuts))
	// Without the cut, the lower priority rule applies
	_, engine = newTestEngine(t, `
		(rule 2 (-> (f ?X) (g ?X) FALSE))
		(rule 1 (-> (f ?X) (h ?X) TRUE))
	`)
	checkRewrite(t, engine, NewContext(), "(f a)", "(h a)")
	// Rules of equal priority are not pruned
	_, engine = newTestEngine(t, `
		(rule 1 (-> (f ?X) (g ?X) (AND (CUT) FALSE)))
		(rule 1 (-> (f ?X) (h ?X) TRUE))
	`)
	checkRewrite(t, engine, NewContext(), "(f a)", "(h a)")
}

func Test_Engine_06(t *testing.T) {
	// A cut does not extend beyond the search in which it was asserted.
	_, engine := newTestEngine(t, `
		(rule 2 (-> (f ?X) (g ?X) (AND (p ?X) (CUT))))
		(rule 1 (-> (f ?X) (h ?X)))
		(rule 2 (-> (p ?X) TRUE (AND (CUT) (q ?X))))
		(rule 1 (-> (p ?X) TRUE))
	`)
	// The inner cut prunes the second rule for p, hence the guard fails.
	checkRewrite(t, engine, NewContext(), "(f a)", "(h a)")
}

func Test_Engine_07(t *testing.T) {
	// Nesting depth is bounded
	config := DefaultConfig()
	config.MaxNesting = 8
	_, engine := newTestEngineWith(t, config, nil, "(-> (p ?X) TRUE (p ?X))")
	checkRewrite(t, engine, NewContext(), "(p a)", "")
	assert.Positive(t, testutil.ToFloat64(engine.Metrics().nesting))
	// Nesting limits restrict rules to shallow searches
	_, engine = newTestEngine(t, `
		(rule 1 (-> (q ?X) (r ?X) (NESTING_LIMIT 0)))
		(rule 0 (-> (s ?X) (t ?X) (NESTING_LIMIT 1)))
		(rule 0 (-> (u ?X) (v ?X) (s ?X)))
		(rule 0 (-> (s ?X) TRUE (NESTING_LIMIT 1)))
	`)
	checkRewrite(t, engine, NewContext(), "(q a)", "")
	checkRewrite(t, engine, NewContext(), "(s a)", "(t a)")
	// Simplifying (s a) within the guard is too deep
	checkRewrite(t, engine, NewContext(), "(u a)", "")
}

func Test_Engine_08(t *testing.T) {
	// Guards are simplified using rules and builtin arithmetic
	_, engine := newTestEngine(t, `
		(-> (f ?X) (g ?X) (AND (pos ?X) (<= ?X 10)))
		(-> (pos ?X) TRUE (> ?X 0))
		(-> (double ?X) (+ ?X ?X))
	`)
	checkRewrite(t, engine, NewContext(), "(f 5)", "(g 5)")
	checkRewrite(t, engine, NewContext(), "(f 0)", "")
	checkRewrite(t, engine, NewContext(), "(f 11)", "")
	checkRewrite(t, engine, NewContext(), "(f 1/2)", "(g 1/2)")
	//
	s := engine.Store()
	ctx := NewContext()
	assert.Same(t, s.Int(14), engine.Simplify(ctx, parse(t, s, "(double (+ 3 4))")))
	assert.Same(t, s.Rat(5, 6), engine.Simplify(ctx, parse(t, s, "(+ 1/2 1/3)")))
	assert.Same(t, s.True(), engine.Simplify(ctx, parse(t, s, "(AND (< 1 2) (= a a) (NOT FALSE))")))
	assert.Same(t, s.False(), engine.Simplify(ctx, parse(t, s, "(OR (= 1 2) (= \"a\" \"b\"))")))
	assert.Same(t, s.Var("y"), engine.Simplify(ctx, parse(t, s, "(ITE (> 1 2) x y)")))
	assert.Same(t, parse(t, s, "(+ 1 a b)"), engine.Simplify(ctx, parse(t, s, "(+ 1 (+ a b))")))
	assert.Same(t, s.Int(-1), engine.Simplify(ctx, parse(t, s, "(- 2 3)")))
}

func Test_Engine_09(t *testing.T) {
	// Bound variables of a rule are named away from the target
	_, engine := newTestEngine(t, "(-> (h ?X) (forall (y) (P y ?X)))")
	s := engine.Store()
	y := s.Symbols().Intern("y")
	result, ok := engine.RewriteRule(NewContext(), parse(t, s, "(h y)"), 0)
	require.True(t, ok)
	require.Equal(t, expr.KindQuantifier, result.Kind())
	require.Len(t, result.Vars(), 1)
	//
	fresh := result.Vars()[0]
	assert.NotEqual(t, y, fresh)
	assert.Same(t, s.App("P", s.Variable(fresh), s.Var("y")), result.Body())
	assert.Equal(t, []expr.SymbolID{y}, expr.FreeVariables(result))
}

func Test_Engine_10(t *testing.T) {
	// Associative-commutative residue
	_, engine := newTestEngine(t, "(-> (+ a b) c)")
	s := engine.Store()
	checkRewrite(t, engine, NewContext(), "(+ b a)", "c")
	checkRewrite(t, engine, NewContext(), "(+ a d b)", "(+ c d)")
	// Augmentation can be disabled
	result, ok := engine.RewriteRule(NewContext(), parse(t, s, "(+ a d b)"), ModeNoAugment)
	assert.False(t, ok)
	assert.Same(t, parse(t, s, "(+ a d b)"), result)
	_, engine = newTestEngine(t, "(-> (+ a b) c (NO_AUGMENT))")
	checkRewrite(t, engine, NewContext(), "(+ a d b)", "")
}

func Test_Engine_11(t *testing.T) {
	// Equalities against oriented rules produce both orientations
	_, engine := newTestEngine(t, "(-> (= ?A ?B) (swap ?B ?A))")
	s := engine.Store()
	rewrites := engine.EnumerateRewrites(NewContext(), parse(t, s, "(-> p q)"), 0)
	require.Len(t, rewrites, 2)
	assert.Same(t, parse(t, s, "(swap q p)"), rewrites[0].Result)
	assert.Same(t, parse(t, s, "(swap p q)"), rewrites[1].Result)
	// Including those with guards
	rewrites = engine.EnumerateRewrites(NewContext(), parse(t, s, "(-> p q r)"), 0)
	require.Len(t, rewrites, 2)
	// Equalities match their symmetric form
	_, engine = newTestEngine(t, "(-> (= x ?Y) (found ?Y))")
	checkRewrite(t, engine, NewContext(), "(= 1 x)", "(found 1)")
	checkRewrite(t, engine, NewContext(), "(= x 1)", "(found 1)")
}

func Test_Engine_12(t *testing.T) {
	// Set literals are widened
	_, engine := newTestEngine(t, "(-> (UNION ?S {a}) (hasA ?S))")
	checkRewrite(t, engine, NewContext(), "(UNION s {a})", "(hasA s)")
	//
	s := engine.Store()
	result, ok := engine.RewriteRule(NewContext(), parse(t, s, "(UNION s {a b})"), 0)
	require.True(t, ok)
	assert.Same(t, parse(t, s, "(UNION (hasA s) {b})"), result)
}

func Test_Engine_13(t *testing.T) {
	// Metrics
	_, engine := newTestEngine(t, `
		(-> (f ?X) (g ?X) (> ?X 0))
		(-> (f ?X) (h ?X) (IN_CONTEXT k))
	`)
	reg := prometheus.NewRegistry()
	require.NoError(t, engine.Metrics().Register(reg))
	require.Error(t, engine.Metrics().Register(reg))
	//
	checkRewrite(t, engine, NewContext(), "(f 1)", "(g 1)")
	checkRewrite(t, engine, NewContext(), "(f 0)", "")
	//
	m := engine.Metrics()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.backtracks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.filtered))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.attempts))
	assert.Positive(t, testutil.ToFloat64(m.exhausted))
	//
	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, len(m.Collectors()))
}

func Test_Engine_14(t *testing.T) {
	// Scratch expressions built while checking guards do not survive.
	_, engine := newTestEngine(t, "(-> (f ?X) (g ?X) (= (h ?X) (h ?X)))")
	alloc := engine.Store().Allocator()
	scratch, ok := alloc.Lookup(expr.SCRATCH_SPACE)
	require.True(t, ok)
	checkRewrite(t, engine, NewContext(), "(f 1)", "(g 1)")
	// Every scratch block has been returned
	assert.Equal(t, uint(0), alloc.Blocks(scratch))
	assert.Equal(t, uint(1), alloc.FreeBlocks())
}

func Test_Engine_15(t *testing.T) {
	// Malformed rules
	s := newTestStore()
	_, errs := ParseRules(s, sourceText("(rule x (-> a b))"))
	assert.Len(t, errs, 1)
	_, errs = ParseRules(s, sourceText("(rule 1)"))
	assert.Len(t, errs, 1)
	_, errs = ParseRules(s, sourceText("(-> a)\n(-> a b c d)"))
	assert.Len(t, errs, 2)
	_, errs = ParseRules(s, sourceText("(-> a b"))
	assert.Len(t, errs, 1)
	// Facts and negations
	rules, errs := ParseRules(s, sourceText("(context 5 (p a))\n(NOT (q a))"))
	require.Empty(t, errs)
	require.Len(t, rules, 2)
	assert.True(t, rules[0].IsContext())
	assert.Equal(t, 5, rules[0].Priority())
	assert.Equal(t, []*expr.Expr{parse(t, s, "(-> (p a) TRUE TRUE)")}, rules[0].Variants())
	assert.Equal(t, []*expr.Expr{parse(t, s, "(-> (q a) FALSE TRUE)")}, rules[1].Variants())
}

func Test_Engine_16(t *testing.T) {
	// Failed attempts leave nothing behind in the store.
	_, engine := newTestEngine(t, `
		(-> (h ?X) (forall (y) (P y ?X)) (q ?X))
		(-> (+ a b) c (q a))
	`)
	s := engine.Store()
	targets := []*expr.Expr{parse(t, s, "(h a)"), parse(t, s, "(+ a b d)")}
	// The first attempts allocate fresh names, which are reused thereafter.
	for _, target := range targets {
		_, ok := engine.RewriteRule(NewContext(), target, 0)
		require.False(t, ok)
	}
	//
	terms, symbols := s.NumTerms(), s.Symbols().Len()
	//
	for range 100 {
		for _, target := range targets {
			_, ok := engine.RewriteRule(NewContext(), target, 0)
			require.False(t, ok)
		}
	}
	//
	assert.Equal(t, terms, s.NumTerms())
	assert.Equal(t, symbols, s.Symbols().Len())
	assert.Equal(t, uint(0), s.PushLevel())
}

func Test_Engine_17(t *testing.T) {
	// Committed rewrites outlive the scope in which they were found.
	_, engine := newTestEngine(t, `
		(-> (h ?X) (forall (y) (P y ?X)))
		(-> (+ a b) c)
	`)
	s := engine.Store()
	result, ok := engine.RewriteRule(NewContext(), parse(t, s, "(h a)"), 0)
	require.True(t, ok)
	assert.False(t, result.IsScratch())
	assert.True(t, s.Valid(result))
	assert.Same(t, result, s.Reintern(result))
	// Bindings to the residue of an associative-commutative match survive too.
	rewrites := engine.EnumerateRewrites(NewContext(), parse(t, s, "(+ a b d e)"), 0)
	require.NotEmpty(t, rewrites)
	//
	for _, rw := range rewrites {
		assert.True(t, s.Valid(rw.Result))
		assert.True(t, s.Valid(rw.Root))
		//
		for _, val := range rw.Env.Domain() {
			assert.True(t, s.Valid(val))
		}
	}
	//
	assert.Positive(t, rewrites[0].Env.Len())
}

func Test_Mode_01(t *testing.T) {
	assert.Equal(t, "{}", Mode(0).String())
	assert.Equal(t, "{no-context,no-augment}", (ModeNoContextRules | ModeNoAugment).String())
	assert.True(t, (ModeNoContextRules | ModeNoForwardRules).Has(ModeNoForwardRules))
	assert.False(t, ModeNoContextRules.Has(ModeNoContextRules|ModeNoAugment))
}

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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Condition_01(t *testing.T) {
	// Choice backtracks to the first acceptable element
	_, engine := newTestEngine(t, "(-> (pick ?X) ?V (AND (CHOOSE ?V {1 2 3}) (> ?V 1)))")
	checkRewrite(t, engine, NewContext(), "(pick a)", "2")
	// Independent calls start afresh
	checkRewrite(t, engine, NewContext(), "(pick a)", "2")
	// Every solution can be enumerated
	s := engine.Store()
	rewrites := engine.EnumerateRewrites(NewContext(), parse(t, s, "(pick a)"), 0)
	require.Len(t, rewrites, 2)
	assert.Same(t, s.Int(2), rewrites[0].Result)
	assert.Same(t, s.Int(3), rewrites[1].Result)
	assert.Same(t, s.Int(3), rewrites[1].Env.Apply(s.Symbols().Intern("V")))
}

func Test_Condition_02(t *testing.T) {
	_, engine := newTestEngine(t, `
		(-> (empty ?X) yes (CHOOSE ?V {}))
		(-> (member ?X) yes (CHOOSE ?X {1 2}))
		(-> (computed ?X) ?V (CHOOSE ?V (elems ?X)))
		(-> (elems ?X) {?X 7})
	`)
	// Empty sets fail immediately
	checkRewrite(t, engine, NewContext(), "(empty a)", "")
	// Bound variables are checked for membership
	checkRewrite(t, engine, NewContext(), "(member 2)", "yes")
	checkRewrite(t, engine, NewContext(), "(member 3)", "")
	// Sets are simplified before choosing
	checkRewrite(t, engine, NewContext(), "(computed 4)", "4")
}

func Test_Condition_03(t *testing.T) {
	// Negation as failure
	_, engine := newTestEngine(t, `
		(-> (f ?X) (g ?X ?W) (NOTL (AND (CHOOSE ?W {1}) (= ?W 2))))
		(-> (h ?X) (k ?X) (NOTL (AND (CHOOSE ?W {1 2}) (= ?W 2))))
		(-> (m ?X) (n ?X) (NOTL (= ?X 1)))
	`)
	s := engine.Store()
	rewrites := engine.EnumerateRewrites(NewContext(), parse(t, s, "(f a)"), 0)
	require.Len(t, rewrites, 1)
	// No variables are bound by the negation
	assert.Same(t, parse(t, s, "(g a ?W)"), rewrites[0].Result)
	assert.Equal(t, 1, rewrites[0].Env.Len())
	checkRewrite(t, engine, NewContext(), "(h a)", "")
	checkRewrite(t, engine, NewContext(), "(m 2)", "(n 2)")
	checkRewrite(t, engine, NewContext(), "(m 1)", "")
}

func Test_Condition_04(t *testing.T) {
	// Local cut discards earlier alternatives
	_, engine := newTestEngine(t, `
		(-> (f ?X) ?V (AND (CHOOSE ?V {1 2 3}) (CUT_LOCAL) (> ?V 1)))
		(-> (g ?X) ?V (AND (CHOOSE ?V {1 2 3}) (> ?V 1) (CUT_LOCAL)))
	`)
	checkRewrite(t, engine, NewContext(), "(f a)", "")
	checkRewrite(t, engine, NewContext(), "(g a)", "2")
	//
	s := engine.Store()
	assert.Len(t, engine.EnumerateRewrites(NewContext(), parse(t, s, "(g a)"), 0), 1)
}

func Test_Condition_05(t *testing.T) {
	// Nested matching
	_, engine := newTestEngine(t, `
		(-> (first ?X) ?Y (MATCH ?X (pair ?Y ?Z)))
		(-> (both ?X) (sum ?Y ?Z) (AND (MATCH ?X (pair ?Y ?Z)) (< ?Y ?Z)))
	`)
	checkRewrite(t, engine, NewContext(), "(first (pair 1 2))", "1")
	checkRewrite(t, engine, NewContext(), "(first (triple 1 2 3))", "")
	checkRewrite(t, engine, NewContext(), "(both (pair 1 2))", "(sum 1 2)")
	checkRewrite(t, engine, NewContext(), "(both (pair 2 1))", "")
}

func Test_Condition_06(t *testing.T) {
	// Exclusion sets
	_, engine := newTestEngine(t, `
		(-> (once ?X) done (EXCLUDE_SET n))
		(-> (twice ?X) done (AND (EXCLUDE_SET n) (EXCLUDE_SET n)))
		(-> (two ?X) done (AND (EXCLUDE_SET n) (EXCLUDE_SET m)))
	`)
	checkRewrite(t, engine, NewContext(), "(once a)", "done")
	checkRewrite(t, engine, NewContext(), "(once a)", "done")
	checkRewrite(t, engine, NewContext(), "(twice a)", "")
	checkRewrite(t, engine, NewContext(), "(two a)", "done")
	// Overflowing the capacity fails the atom
	config := DefaultConfig()
	config.ExcludeSetCapacity = 1
	_, engine = newTestEngineWith(t, config, nil, "(-> (two ?X) done (AND (EXCLUDE_SET n) (EXCLUDE_SET m)))")
	checkRewrite(t, engine, NewContext(), "(two a)", "")
}

func Test_Condition_07(t *testing.T) {
	// Active contexts enable and block rules
	_, engine := newTestEngine(t, `
		(-> (k ?X) done (AND (USE_CONTEXT c1) (m ?X)))
		(-> (j ?X) done (AND (APPLY_CONTEXT c1) (APPLY_CONTEXT c1) (b ?X)))
		(-> (m ?X) TRUE (IN_CONTEXT c1))
		(-> (b ?X) FALSE (BLOCK_CONTEXT c1))
		(-> (b ?X) TRUE)
	`)
	ctx := NewContext()
	checkRewrite(t, engine, ctx, "(k a)", "done")
	checkRewrite(t, engine, ctx, "(m a)", "")
	checkRewrite(t, engine, ctx, "(j a)", "done")
	checkRewrite(t, engine, ctx, "(b a)", "FALSE")
	assert.False(t, ctx.Active(engine.Store().Var("c1")))
	// Overflowing the capacity fails the atom
	config := DefaultConfig()
	config.ContextSetCapacity = 0
	_, engine = newTestEngineWith(t, config, nil, `
		(-> (k ?X) done (AND (USE_CONTEXT c1) (m ?X)))
		(-> (m ?X) TRUE (IN_CONTEXT c1))
	`)
	checkRewrite(t, engine, NewContext(), "(k a)", "")
}

func Test_Condition_08(t *testing.T) {
	// Choosing context rules
	_, engine := newTestEngine(t, `
		(-> (lookup ?K) ?V (CHOOSE_CONTEXT_RULE (-> (val ?K) ?V ?G)))
		(-> (known ?K) yes (CHOOSE_CONTEXT_RULE (val ?K)))
		(context 0 (-> (val b) 6))
	`)
	s := engine.Store()
	ctx := NewContext()
	mark := engine.CreateContext(ctx, parse(t, s, "(= (val a) 5)"))
	checkRewrite(t, engine, ctx, "(lookup a)", "5")
	checkRewrite(t, engine, ctx, "(lookup b)", "6")
	checkRewrite(t, engine, ctx, "(lookup c)", "")
	checkRewrite(t, engine, ctx, "(known a)", "yes")
	engine.RemoveContext(ctx, mark)
	checkRewrite(t, engine, ctx, "(lookup a)", "")
	checkRewrite(t, engine, ctx, "(known a)", "")
}

func Test_Condition_11(t *testing.T) {
	// A variable pattern chooses from every context rule.
	_, engine := newTestEngine(t, `
		(-> (some ?K) yes (CHOOSE_CONTEXT_RULE ?R))
		(-> (any ?K) ?V (CHOOSE_CONTEXT_RULE (-> ?L ?V ?G)))
		(context 0 (-> (val b) 6))
	`)
	checkRewrite(t, engine, NewContext(), "(some a)", "yes")
	checkRewrite(t, engine, NewContext(), "(any a)", "6")
	// Without any context rules or hypotheses there is nothing to choose.
	_, engine = newTestEngine(t, "(-> (some ?K) yes (CHOOSE_CONTEXT_RULE ?R))")
	ctx := NewContext()
	checkRewrite(t, engine, ctx, "(some a)", "")
	// Hypotheses are chosen as well.
	mark := engine.CreateContext(ctx, parse(t, engine.Store(), "(= (val a) 5)"))
	checkRewrite(t, engine, ctx, "(some a)", "yes")
	engine.RemoveContext(ctx, mark)
}

func Test_Condition_09(t *testing.T) {
	// Plain atoms which hold are hypotheses for later atoms.  Here, (p a) can
	// only be shown at shallow nesting, but is needed deeper when showing (s a).
	_, engine := newTestEngine(t, `
		(-> (f ?X) (g ?X) (AND (p ?X) (s ?X)))
		(-> (f2 ?X) (g ?X) (s ?X))
		(-> (p ?X) TRUE (NESTING_LIMIT 2))
		(-> (q ?X) (p ?X))
		(-> (s ?X) TRUE (q ?X))
	`)
	checkRewrite(t, engine, NewContext(), "(f a)", "(g a)")
	checkRewrite(t, engine, NewContext(), "(f2 a)", "")
}

func Test_Condition_10(t *testing.T) {
	// Hypotheses installed by the caller are used when checking guards
	_, engine := newTestEngine(t, "(-> (f ?X) (g ?X) (AND (p ?X) (p ?X)))")
	s := engine.Store()
	ctx := NewContext()
	checkRewrite(t, engine, ctx, "(f a)", "")
	//
	mark := engine.CreateContext(ctx, parse(t, s, "(p a)"))
	checkRewrite(t, engine, ctx, "(f a)", "(g a)")
	engine.RemoveContext(ctx, mark)
	assert.Empty(t, ctx.Hypotheses())
}

func Test_Context_01(t *testing.T) {
	_, engine := newTestEngine(t, "")
	s := engine.Store()
	ctx := NewContext()
	// Conjunctions are split, and TRUE is ignored
	mark := engine.CreateContext(ctx, parse(t, s, "(AND (p a) (= (f a) 1) (NOT (q a)) TRUE)"))
	assert.Equal(t, ContextMark(0), mark)
	require.Len(t, ctx.Hypotheses(), 3)
	checkRewrite(t, engine, ctx, "(p a)", "TRUE")
	checkRewrite(t, engine, ctx, "(f a)", "1")
	checkRewrite(t, engine, ctx, "(q a)", "FALSE")
	checkRewrite(t, engine, ctx, "(q b)", "")
	// Nested contexts
	inner := engine.CreateContext(ctx, parse(t, s, "(r a)"))
	assert.Equal(t, ContextMark(3), inner)
	checkRewrite(t, engine, ctx, "(r a)", "TRUE")
	engine.RemoveContext(ctx, inner)
	checkRewrite(t, engine, ctx, "(r a)", "")
	checkRewrite(t, engine, ctx, "(p a)", "TRUE")
	// Context rules can be excluded
	result, ok := engine.RewriteRule(ctx, parse(t, s, "(p a)"), ModeNoContextRules)
	assert.False(t, ok)
	assert.Same(t, parse(t, s, "(p a)"), result)
	engine.RemoveContext(ctx, mark)
	assert.Empty(t, ctx.Hypotheses())
}

func Test_Fast_01(t *testing.T) {
	_, engine := newTestEngine(t, `
		(context 0 (-> (val b) 6 (p b)))
		(context 0 (-> (val c) 7))
		(rule 0 (-> (val d) 8))
	`)
	s := engine.Store()
	ctx := NewContext()
	engine.CreateContext(ctx, parse(t, s, "(= (val a) 5)"))
	//
	check := func(term string, expected string) {
		target := parse(t, s, term)
		result, ok := engine.FastRewriteRule(ctx, target, 0)
		//
		if expected == "" {
			assert.False(t, ok)
			assert.Same(t, target, result)
		} else {
			assert.True(t, ok)
			assert.Same(t, parse(t, s, expected), result)
		}
	}
	//
	check("(val a)", "5")
	check("(val c)", "7")
	// Conditional rules are not considered
	check("(val b)", "")
	// Neither are forward rules
	check("(val d)", "")
	//
	result, ok := engine.FastRewriteRule(ctx, parse(t, s, "(val a)"), ModeNoContextRules)
	assert.False(t, ok)
	assert.Same(t, parse(t, s, "(val a)"), result)
}

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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Match_01(t *testing.T) {
	s := newTestStore()
	m := NewSyntacticMatcher(s, 0)
	// Simple first-order matching
	envs := m.Match(parse(t, s, "(f ?X (g ?Y))"), parse(t, s, "(f a (g 1))"), NewEnv())
	require.Len(t, envs, 1)
	assert.Same(t, s.Var("a"), envs[0].Apply(s.Symbols().Intern("X")))
	assert.Same(t, s.Int(1), envs[0].Apply(s.Symbols().Intern("Y")))
	// Non-linear patterns
	assert.Len(t, m.Match(parse(t, s, "(f ?X ?X)"), parse(t, s, "(f a a)"), NewEnv()), 1)
	assert.Empty(t, m.Match(parse(t, s, "(f ?X ?X)"), parse(t, s, "(f a b)"), NewEnv()))
	// Mismatches
	assert.Empty(t, m.Match(parse(t, s, "(f ?X)"), parse(t, s, "(g a)"), NewEnv()))
	assert.Empty(t, m.Match(parse(t, s, "(f ?X)"), parse(t, s, "(f a b)"), NewEnv()))
	assert.Empty(t, m.Match(parse(t, s, "(f 1)"), parse(t, s, "(f 2)"), NewEnv()))
	assert.Empty(t, m.Match(parse(t, s, "(f x)"), parse(t, s, "(f y)"), NewEnv()))
}

func Test_Match_02(t *testing.T) {
	s := newTestStore()
	m := NewSyntacticMatcher(s, 0)
	// Existing bindings are respected, but never modified.
	env := NewEnv()
	require.True(t, env.Bind(s.Symbols().Intern("X"), s.Var("b")))
	assert.Empty(t, m.Match(parse(t, s, "(f ?X)"), parse(t, s, "(f a)"), env))
	assert.Len(t, m.Match(parse(t, s, "(f ?X)"), parse(t, s, "(f b)"), env), 1)
	assert.Equal(t, 1, env.Len())
	// Raised variables are rigid
	assert.Len(t, m.Match(parse(t, s, "(f ?x@1)"), parse(t, s, "(f ?x@1)"), NewEnv()), 1)
	assert.Empty(t, m.Match(parse(t, s, "(f ?x@1)"), parse(t, s, "(f x)"), NewEnv()))
	assert.Len(t, m.Match(parse(t, s, "(f ?Y)"), parse(t, s, "(f ?x@1)"), NewEnv()), 1)
}

func Test_Match_03(t *testing.T) {
	s := newTestStore()
	m := NewSyntacticMatcher(s, 0)
	// Commutative functors permute their arguments
	envs := m.Match(parse(t, s, "(+ ?X 1)"), parse(t, s, "(+ 1 a)"), NewEnv())
	require.Len(t, envs, 1)
	assert.Same(t, s.Var("a"), envs[0].Apply(s.Symbols().Intern("X")))
	// Every assignment is an alternative
	assert.Len(t, m.Match(parse(t, s, "(AND ?X ?Y)"), parse(t, s, "(AND p q)"), NewEnv()), 2)
	assert.Len(t, m.Match(parse(t, s, "{?X ?Y ?Z}"), parse(t, s, "{1 2 3}"), NewEnv()), 6)
	// Non-commutative functors do not
	assert.Empty(t, m.Match(parse(t, s, "(f ?X 1)"), parse(t, s, "(f 1 a)"), NewEnv()))
}

func Test_Match_04(t *testing.T) {
	s := newTestStore()
	m := NewSyntacticMatcher(s, 0)
	// The last pattern variable absorbs the residue
	envs := m.Match(parse(t, s, "(+ a ?R)"), parse(t, s, "(+ b a c)"), NewEnv())
	require.Len(t, envs, 1)
	assert.Same(t, parse(t, s, "(+ b c)"), envs[0].Apply(s.Symbols().Intern("R")))
	//
	envs = m.Match(parse(t, s, "(+ a ?R)"), parse(t, s, "(+ b a)"), NewEnv())
	require.Len(t, envs, 1)
	assert.Same(t, s.Var("b"), envs[0].Apply(s.Symbols().Intern("R")))
	// Otherwise, arities must agree
	assert.Empty(t, m.Match(parse(t, s, "(+ a b)"), parse(t, s, "(+ b a c)"), NewEnv()))
	// The number of alternatives can be bounded
	assert.Len(t, NewSyntacticMatcher(s, 2).Match(parse(t, s, "{?X ?Y ?Z}"), parse(t, s, "{1 2 3}"), NewEnv()), 2)
}

func Test_Match_05(t *testing.T) {
	s := newTestStore()
	m := NewSyntacticMatcher(s, 0)
	// Bound variables correspond by position
	assert.Len(t, m.Match(parse(t, s, "(forall (x) (P x ?Y))"), parse(t, s, "(forall (z) (P z a))"), NewEnv()), 1)
	assert.Empty(t, m.Match(parse(t, s, "(forall (x) (P x ?Y))"), parse(t, s, "(forall (z) (P a z))"), NewEnv()))
	assert.Empty(t, m.Match(parse(t, s, "(forall (x) (P x))"), parse(t, s, "(exists (x) (P x))"), NewEnv()))
	// Pattern variables cannot capture bound variables
	assert.Empty(t, m.Match(parse(t, s, "(forall (x) (P ?Y))"), parse(t, s, "(forall (z) (P z))"), NewEnv()))
	// Case patterns bind their variables
	pattern := parse(t, s, "(case ?E ((cons h t) (f h ?D)) ((nil) 0))")
	target := parse(t, s, "(case l ((cons x y) (f x 1)) ((nil) 0))")
	envs := m.Match(pattern, target, NewEnv())
	require.Len(t, envs, 1)
	assert.Same(t, s.Int(1), envs[0].Apply(s.Symbols().Intern("D")))
	assert.Same(t, s.Var("l"), envs[0].Apply(s.Symbols().Intern("E")))
	// Indices
	assert.Len(t, m.Match(parse(t, s, "(index ?X 2)"), parse(t, s, "(index a 2)"), NewEnv()), 1)
	assert.Empty(t, m.Match(parse(t, s, "(index ?X 2)"), parse(t, s, "(index a 1)"), NewEnv()))
}

func Test_Env_01(t *testing.T) {
	s := newTestStore()
	X, Y := s.Symbols().Intern("X"), s.Symbols().Intern("Y")
	env := NewEnv()
	//
	require.True(t, env.Bind(Y, s.Int(2)))
	require.True(t, env.Bind(X, s.Int(1)))
	require.True(t, env.Bind(X, s.Int(1)))
	require.False(t, env.Bind(X, s.Int(3)))
	// Domain is ordered by binding
	var domain []expr.SymbolID
	for v := range env.Domain() {
		domain = append(domain, v)
	}
	//
	assert.Equal(t, []expr.SymbolID{Y, X}, domain)
	// Clones are independent
	clone := env.Clone()
	clone.Bind(s.Symbols().Intern("Z"), s.Int(4))
	assert.Equal(t, 2, env.Len())
	assert.Equal(t, 3, clone.Len())
	// Merging
	other := NewEnv()
	other.Bind(X, s.Int(3))
	assert.Nil(t, env.Merge(other))
	assert.Equal(t, 3, clone.Merge(env).Len())
	// Substitution
	assert.Same(t, parse(t, s, "(f 1 (g 2) ?Z)"), Substitute(s, parse(t, s, "(f ?X (g ?Y) ?Z)"), env))
}

func Test_Index_01(t *testing.T) {
	s := newTestStore()
	rules, errs := ParseRules(s, sourceText(`
		(rule 1 (-> (f ?X) (g ?X)))
		(rule 2 (<-> (h ?X) (k ?X)))
		(context 3 (-> ?X TRUE (p ?X)))
		(rule 4 (-> (= ?A ?B) DONE))
	`))
	require.Empty(t, errs)
	require.Len(t, rules, 4)
	//
	index := NewFunctorIndex()
	index.Add(rules...)
	assert.Equal(t, uint(4), index.Len())
	assert.Equal(t, []*Rule{rules[0]}, index.ForwardRules(parse(t, s, "(f 1)")))
	// Unoriented rules are indexed under both sides
	assert.Equal(t, []*Rule{rules[1]}, index.ForwardRules(parse(t, s, "(h 1)")))
	assert.Equal(t, []*Rule{rules[1]}, index.ForwardRules(parse(t, s, "(k 1)")))
	// Variable left-hand sides match anything
	assert.Equal(t, []*Rule{rules[2]}, index.ForwardContextRules(parse(t, s, "(f 1)")))
	assert.Empty(t, index.ForwardRules(parse(t, s, "(q 1)")))
	// Equalities are candidates for oriented rules
	assert.Equal(t, []*Rule{rules[3]}, index.ForwardRules(parse(t, s, "(-> a b)")))
	assert.Equal(t, []*Rule{rules[3]}, index.ForwardRules(parse(t, s, "(= a b)")))
}

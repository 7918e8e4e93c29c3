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
package cmd

import (
	"bytes"
	"testing"

	"github.com/consensys/go-rewrite/pkg/expr"
	"github.com/consensys/go-rewrite/pkg/rewrite"
	"github.com/consensys/go-rewrite/pkg/util/source"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Print_01(t *testing.T) {
	var buf bytes.Buffer
	//
	store, engine := newEngine(t, "(rule 2 (-> (f ?X) (g ?X)))")
	target, err := expr.Parse(store, "(f a)")
	require.NoError(t, err)
	//
	rewrites := engine.EnumerateRewrites(rewrite.NewContext(), target, 0)
	printRewrites(&buf, store, rewrites, false)
	assert.Equal(t, "[0] (g a) (priority 2)\n\t?X = a\n", buf.String())
}

func Test_Print_02(t *testing.T) {
	var buf bytes.Buffer
	//
	store, engine := newEngine(t, "(-> (Q ?X) TRUE (P ?X))")
	root, err := expr.Parse(store, "(AND (P a) (Q a))")
	require.NoError(t, err)
	//
	rewrites := engine.EnumerateRewritesAt(rewrite.NewContext(), root, []int{1}, 0)
	printRewrites(&buf, store, rewrites, true)
	assert.Equal(t, "[0] TRUE (priority 0)\n\tin (AND (P a) TRUE)\n\t?X = a\n", buf.String())
}

func Test_Print_03(t *testing.T) {
	var buf bytes.Buffer
	//
	store, engine := newEngine(t, "(-> (f ?X) (g ?X))")
	registry := prometheus.NewRegistry()
	require.NoError(t, engine.Metrics().Register(registry))
	//
	target, err := expr.Parse(store, "(f a)")
	require.NoError(t, err)
	engine.RewriteRule(rewrite.NewContext(), target, 0)
	//
	require.NoError(t, printMetrics(&buf, registry))
	assert.Contains(t, buf.String(), "rewrite_engine_commits_total 1\n")
	assert.Contains(t, buf.String(), "rewrite_engine_attempts_total 1\n")
}

func newEngine(t *testing.T, rules string) (*expr.Store, *rewrite.Engine) {
	t.Helper()
	//
	store := expr.NewStore(expr.DefaultStoreConfig(), nil)
	rs, errs := rewrite.ParseRules(store, source.NewText(rules))
	require.Empty(t, errs)
	//
	index := rewrite.NewFunctorIndex()
	index.Add(rs...)
	//
	return store, rewrite.New(store, index, nil, rewrite.DefaultConfig())
}

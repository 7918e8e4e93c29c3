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
	"github.com/consensys/go-rewrite/pkg/util/source"
	"github.com/stretchr/testify/require"
)

// Construct a store with small tables, suitable for testing.
func newTestStore() *expr.Store {
	return expr.NewStore(expr.StoreConfig{TableSize: 31, SlotBytes: 4, TrackUsedIn: true}, nil)
}

// Construct an engine over the rules declared in a given text.
func newTestEngine(t *testing.T, rules string) (*expr.Store, *Engine) {
	return newTestEngineWith(t, DefaultConfig(), nil, rules)
}

func newTestEngineWith(t *testing.T, config Config, matcher Matcher, rules string) (*expr.Store, *Engine) {
	var (
		store = newTestStore()
		index = NewFunctorIndex()
	)
	//
	parsed, errs := ParseRules(store, source.NewText(rules))
	require.Empty(t, errs)
	index.Add(parsed...)
	//
	return store, New(store, index, matcher, config)
}

func parse(t *testing.T, store *expr.Store, text string) *expr.Expr {
	e, err := expr.Parse(store, text)
	require.NoError(t, err)
	//
	return e
}

// Rewrite a given term once, checking the expected outcome (where the empty
// string means no rewrite is expected).
func checkRewrite(t *testing.T, engine *Engine, ctx *Context, term string, expected string) {
	store := engine.Store()
	target := parse(t, store, term)
	result, ok := engine.RewriteRule(ctx, target, 0)
	//
	if expected == "" {
		require.False(t, ok, "unexpected rewrite %s", store.Format(result))
		require.Same(t, target, result)
	} else {
		require.True(t, ok, "expected rewrite of %s", term)
		require.Equal(t, expected, store.Format(result))
		require.Same(t, parse(t, store, expected), result)
	}
	// Context is restored on exit
	require.Equal(t, uint(0), ctx.Depth())
	require.Equal(t, uint(0), store.PushLevel())
}

func sourceText(text string) *source.File {
	return source.NewText(text)
}

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
	"github.com/consensys/go-rewrite/pkg/expr"
)

// FastRewriteRule applies the first applicable context rule to a given target
// expression.  Only unconditional rules (i.e. those whose guard is literally
// TRUE) are considered, and they are tried in discovery order without any
// augmentation.  If no rule applies, the target is returned unchanged and the
// boolean is false.
func (p *Engine) FastRewriteRule(ctx *Context, target *expr.Expr, mode Mode) (*expr.Expr, bool) {
	if mode.Has(ModeNoContextRules) {
		return target, false
	} else if ctx.depth >= p.config.MaxNesting {
		p.metrics.nesting.Inc()
		return target, false
	}
	//
	rewrites := p.scoped(func() []Rewrite {
		for _, rules := range [][]*Rule{p.index.ForwardContextRules(target), ctx.hypotheses} {
			for _, r := range rules {
				for _, v := range r.variants {
					if !v.Arg(2).IsTrue() {
						continue
					}
					//
					p.metrics.attempts.Inc()
					//
					if envs := p.matcher.Match(v.Arg(0), target, NewEnv()); len(envs) > 0 {
						return []Rewrite{{Env: envs[0], Result: Substitute(p.store, v.Arg(1), envs[0]), Rule: r}}
					}
				}
			}
		}
		//
		return nil
	})
	//
	if len(rewrites) > 0 {
		p.metrics.commits.Inc()
		return rewrites[0].Result, true
	}
	//
	p.metrics.exhausted.Inc()
	//
	return target, false
}

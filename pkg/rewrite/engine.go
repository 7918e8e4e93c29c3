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
	"cmp"
	"slices"

	"github.com/consensys/go-rewrite/pkg/expr"
	log "github.com/sirupsen/logrus"
)

const (
	// DEFAULT_MAX_NESTING determines the default bound on the nesting depth of
	// the engine.
	DEFAULT_MAX_NESTING = 64
	// DEFAULT_SET_CAPACITY determines the default capacity of the exclusion and
	// active context sets.
	DEFAULT_SET_CAPACITY = 16
	// DEFAULT_MAX_SIMPLIFY_STEPS determines the default bound on the number of
	// rewrites performed by a single simplification.
	DEFAULT_MAX_SIMPLIFY_STEPS = 1024
	// DEFAULT_MAX_ALTERNATIVES determines the default bound on the number of
	// alternatives returned by a single match.
	DEFAULT_MAX_ALTERNATIVES = 1024
)

// Config determines the resource bounds of an engine.
type Config struct {
	// Maximum nesting depth, beyond which a search finds no rewrite.
	MaxNesting uint `yaml:"max_nesting"`
	// Capacity of the exclusion set.
	ExcludeSetCapacity int `yaml:"exclude_set_capacity"`
	// Capacity of the active context set.
	ContextSetCapacity int `yaml:"context_set_capacity"`
	// Maximum number of rewrites performed by a single simplification.
	MaxSimplifySteps uint `yaml:"max_simplify_steps"`
	// Maximum number of alternatives returned by a single match.
	MaxAlternatives int `yaml:"max_alternatives"`
	// Priority given to hypotheses installed as context rules.
	HypothesisPriority int `yaml:"hypothesis_priority"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		MaxNesting:         DEFAULT_MAX_NESTING,
		ExcludeSetCapacity: DEFAULT_SET_CAPACITY,
		ContextSetCapacity: DEFAULT_SET_CAPACITY,
		MaxSimplifySteps:   DEFAULT_MAX_SIMPLIFY_STEPS,
		MaxAlternatives:    DEFAULT_MAX_ALTERNATIVES,
	}
}

// Engine applies prioritised conditional rewrite rules to expressions.  The
// candidate rules for a given target are obtained from an index, and matched
// using a matcher.  An engine is not safe for concurrent use.
type Engine struct {
	store   *expr.Store
	index   Index
	matcher Matcher
	config  Config
	metrics *Metrics
	// Fresh pattern variables used for augmentation.
	fresh []expr.SymbolID
	// Fresh names used for renaming each binder, see nameAway.
	names map[expr.SymbolID][]expr.SymbolID
}

// Rewrite describes a successful rewrite.
type Rewrite struct {
	// Substitution under which the rule matched and its guard held.
	Env *Env
	// Expression resulting from the rewrite.
	Result *expr.Expr
	// Root expression after the result is put in place.  This differs from the
	// result only when rewriting a position within a larger expression.
	Root *expr.Expr
	// Rule which was applied.
	Rule *Rule
}

// New constructs an engine over a given store.  When no index is given, an
// empty FunctorIndex is used; when no matcher is given, a SyntacticMatcher is
// used.
func New(store *expr.Store, index Index, matcher Matcher, config Config) *Engine {
	if index == nil {
		index = NewFunctorIndex()
	}
	//
	if matcher == nil {
		matcher = NewSyntacticMatcher(store, config.MaxAlternatives)
	}
	//
	return &Engine{
		store:   store,
		index:   index,
		matcher: matcher,
		config:  config,
		metrics: newMetrics(),
		names:   make(map[expr.SymbolID][]expr.SymbolID),
	}
}

// Store returns the store over which this engine operates.
func (p *Engine) Store() *expr.Store {
	return p.store
}

// Index returns the index used by this engine.
func (p *Engine) Index() Index {
	return p.index
}

// Config returns the configuration of this engine.
func (p *Engine) Config() Config {
	return p.config
}

// Metrics returns the metrics of this engine.
func (p *Engine) Metrics() *Metrics {
	return p.metrics
}

// RewriteRule applies the first applicable rule to a given target expression,
// returning the result.  If no rule applies, the target is returned unchanged
// and the boolean is false.
func (p *Engine) RewriteRule(ctx *Context, target *expr.Expr, mode Mode) (*expr.Expr, bool) {
	rewrites := p.search(ctx, target, mode, true)
	//
	if len(rewrites) == 0 {
		return target, false
	}
	//
	return rewrites[0].Result, true
}

// EnumerateRewrites returns every rewrite of a given target expression, rather
// than just the first.
func (p *Engine) EnumerateRewrites(ctx *Context, target *expr.Expr, mode Mode) []Rewrite {
	return p.search(ctx, target, mode, false)
}

// A candidate rule, along with the (form of the) target it is matched against.
type candidate struct {
	rule   *Rule
	target *expr.Expr
}

// Search for rewrites of a given target, stopping after the first when single
// is set.  When entered outside of any scratch scope, the search runs within
// one, and only the rewrites found are kept.
func (p *Engine) search(ctx *Context, target *expr.Expr, mode Mode, single bool) []Rewrite {
	if ctx.depth >= p.config.MaxNesting {
		p.metrics.nesting.Inc()
		log.Debugf("nesting limit %d reached", p.config.MaxNesting)
		//
		return nil
	}
	//
	return p.scoped(func() []Rewrite {
		return p.attempt(ctx, target, mode, single)
	})
}

// Run a given function within a scratch scope, unless one is already active.
// The rewrites it returns are rebuilt outside the scope before it is released.
func (p *Engine) scoped(fn func() []Rewrite) []Rewrite {
	if p.store.PushLevel() > 0 {
		return fn()
	}
	//
	p.store.Push()
	rewrites := fn()
	p.store.Pop()
	//
	for i := range rewrites {
		rewrites[i] = p.keep(rewrites[i])
	}
	//
	p.store.Release()
	//
	return rewrites
}

// Rebuild the expressions of a rewrite outside of the scratch scope in which
// they were constructed.
func (p *Engine) keep(r Rewrite) Rewrite {
	if r.Env != nil {
		env := NewEnv()
		//
		for v, val := range r.Env.Domain() {
			env.Bind(v, p.store.Reintern(val))
		}
		//
		r.Env = env
	}
	//
	r.Result = p.store.Reintern(r.Result)
	//
	if r.Root != nil {
		r.Root = p.store.Reintern(r.Root)
	}
	//
	return r
}

// Try the candidate rules for a given target in order of decreasing priority.
func (p *Engine) attempt(ctx *Context, target *expr.Expr, mode Mode, single bool) []Rewrite {
	var (
		saved    = ctx.save()
		rewrites []Rewrite
	)
	//
	ctx.depth++
	ctx.cut = false
	//
	defer func() {
		ctx.depth--
		ctx.restore(saved)
	}()
	//
	commit := func(r Rewrite) bool {
		r.Root = target
		rewrites = append(rewrites, r)
		//
		return !single
	}
	//
	for _, c := range p.gather(ctx, target, mode) {
		if ctx.cut && c.rule.priority < ctx.cutPriority {
			p.metrics.cuts.Inc()
			break
		}
		//
		ctx.priority = c.rule.priority
		//
		for _, variant := range c.rule.variants {
			ok, noAugment := p.eligible(ctx, variant, c.target)
			//
			if !ok {
				p.metrics.filtered.Inc()
				continue
			}
			//
			variants := []*expr.Expr{variant}
			//
			if !noAugment && !mode.Has(ModeNoAugment) {
				variants = p.augment(variant, c.target)
			}
			//
			for _, v := range variants {
				if !p.try(ctx, c.rule, v, c.target, commit) {
					return rewrites
				}
			}
		}
	}
	//
	if len(rewrites) == 0 {
		p.metrics.exhausted.Inc()
	}
	//
	return rewrites
}

// Gather the candidate rules for a given target, ordered by decreasing priority
// (with ties broken by discovery order).  For an equality, the rules for its
// symmetric form are also candidates.
func (p *Engine) gather(ctx *Context, target *expr.Expr, mode Mode) []candidate {
	var (
		candidates []candidate
		targets    = []*expr.Expr{target}
	)
	//
	if target.IsApp(expr.EQUAL) && target.Arity() == 2 && target.Arg(0) != target.Arg(1) {
		targets = append(targets, p.store.Apply(expr.EQUAL, target.Arg(1), target.Arg(0)))
	}
	//
	for _, t := range targets {
		start := len(candidates)
		//
		if !mode.Has(ModeNoForwardRules) {
			candidates = collect(candidates, p.index.ForwardRules(t), t)
		}
		//
		if !mode.Has(ModeNoContextRules) {
			candidates = collect(candidates, p.index.ForwardContextRules(t), t)
			candidates = collect(candidates, ctx.hypotheses, t)
		}
		//
		for _, c := range candidates[start:] {
			c.rule.seen = false
		}
	}
	//
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(b.rule.priority, a.rule.priority)
	})
	//
	return candidates
}

// Collect the rules not already seen as candidates against a given target.
func collect(candidates []candidate, rules []*Rule, target *expr.Expr) []candidate {
	for _, r := range rules {
		if !r.seen {
			r.seen = true
			candidates = append(candidates, candidate{r, target})
		}
	}
	//
	return candidates
}

// Check whether a rule variant is eligible for a given target, according to the
// selection markers in its guard.  This additionally determines whether the
// variant is marked as not to be augmented.
func (p *Engine) eligible(ctx *Context, variant *expr.Expr, target *expr.Expr) (ok bool, noAugment bool) {
	for _, atom := range conjuncts(variant.Arg(2)) {
		switch {
		case atom.IsApp(expr.IN_CONTEXT) && atom.Arity() == 1:
			if !ctx.Active(atom.Arg(0)) {
				return false, noAugment
			}
		case atom.IsApp(expr.BLOCK_CONTEXT) && atom.Arity() == 1:
			if ctx.Active(atom.Arg(0)) {
				return false, noAugment
			}
		case atom.IsApp(expr.NESTING_LIMIT) && atom.Arity() == 1:
			if k := atom.Arg(0); k.Kind() == expr.KindInteger && k.Value().IsUint64() && uint64(ctx.depth) > k.Value().Uint64() {
				return false, noAugment
			}
		case atom.IsApp(expr.NO_FUNCTOR) && atom.Arity() == 1:
			if f := atom.Arg(0); (f.Kind() == expr.KindVariable || f.Kind() == expr.KindApplication) &&
				expr.ContainsFunctor(target, f.Symbol()) {
				return false, noAugment
			}
		case atom.IsApp(expr.NO_AUGMENT):
			noAugment = true
		}
	}
	//
	return true, noAugment
}

// Try a rule variant against a target, passing every successful rewrite to a
// given function.  This returns false if the function asked to stop.
func (p *Engine) try(ctx *Context, rule *Rule, variant, target *expr.Expr, yield func(Rewrite) bool) bool {
	if variant.HasSpecialTerm() {
		variant = p.nameAway(variant, target)
	}
	//
	var (
		lhs, rhs = variant.Arg(0), variant.Arg(1)
		atoms    = conjuncts(variant.Arg(2))
		stop     = false
	)
	//
	p.metrics.attempts.Inc()
	//
	for _, env := range p.matcher.Match(lhs, target, NewEnv()) {
		found := false
		//
		p.solve(ctx, atoms, env, func(sol *Env) bool {
			found = true
			result := Substitute(p.store, rhs, sol)
			p.metrics.commits.Inc()
			//
			if log.IsLevelEnabled(log.DebugLevel) {
				log.Debugf("rewrote %s to %s (priority %d)", p.store.Format(target), p.store.Format(result), rule.priority)
			}
			//
			stop = !yield(Rewrite{Env: sol, Result: result, Rule: rule})
			//
			return !stop
		})
		//
		if stop {
			return false
		} else if !found {
			p.metrics.backtracks.Inc()
		}
	}
	//
	return true
}

// Split a guard into its conjuncts, dropping TRUE.
func conjuncts(guard *expr.Expr) []*expr.Expr {
	var atoms []*expr.Expr
	//
	var split func(*expr.Expr)
	//
	split = func(e *expr.Expr) {
		if e.IsApp(expr.AND) || e.IsApp(expr.NC_AND) {
			for _, arg := range e.Args() {
				split(arg)
			}
		} else if !e.IsTrue() {
			atoms = append(atoms, e)
		}
	}
	//
	split(guard)
	//
	return atoms
}

// Obtain the ith fresh pattern variable used for augmentation.
func (p *Engine) freshVar(i int) *expr.Expr {
	for len(p.fresh) <= i {
		p.fresh = append(p.fresh, p.store.Symbols().Fresh("V", nil))
	}
	//
	return p.store.MarkedVariable(p.fresh[i], 0)
}

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

// Reintern rebuilds a given expression bottom-up through the constructors of
// this store.  This re-canonicalises expressions whose nodes are stale, for
// example those interned in a scratch scope which has since been released.
func (s *Store) Reintern(e *Expr) *Expr {
	switch e.kind {
	case KindInteger:
		return s.Integer(e.value)
	case KindRational:
		return s.Rational(e.value, e.denom)
	case KindVariable:
		return s.Variable(e.symbol)
	case KindMarkedVariable:
		return s.MarkedVariable(e.symbol, e.level)
	case KindApplication:
		args := make([]*Expr, len(e.args))
		//
		for i, arg := range e.args {
			args[i] = s.Reintern(arg)
		}
		//
		return s.Apply(e.symbol, args...)
	case KindCase:
		branches := make([]Branch, len(e.branches))
		//
		for i, b := range e.branches {
			branches[i] = Branch{s.Reintern(b.Pattern), s.Reintern(b.Body)}
		}
		//
		return s.Case(s.Reintern(e.Scrutinee()), branches...)
	case KindQuantifier:
		return s.Quantifier(e.quant, e.vars, s.Reintern(e.Body()), s.Reintern(e.Cond()))
	case KindIndex:
		return s.Index(s.Reintern(e.Base()), e.selector)
	case KindString:
		return s.String(e.text)
	}
	//
	panic("unknown expression kind")
}

// Valid checks the internal consistency of a given node: it must be alive,
// visible in the current tables, carry the structural hash of its own fields
// and be the node returned when looking those fields up.
func (s *Store) Valid(e *Expr) bool {
	if !s.Alive(e) || (e.scratch && s.pushLevel == 0) {
		return false
	}
	//
	for child := range e.Children() {
		if !s.Alive(child) {
			return false
		}
	}
	//
	tmpl := *e
	tmpl.hash = hashOf(&tmpl)
	//
	return tmpl.hash == e.hash && s.tables.lookup(&tmpl) == e
}

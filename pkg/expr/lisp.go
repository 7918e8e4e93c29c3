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
	"fmt"

	"github.com/consensys/go-rewrite/pkg/util/source/sexp"
)

// Lisp converts this expression into an S-Expression, using a given symbol
// table to resolve names.  The result can be read back by Parse.
func (e *Expr) Lisp(symbols *SymbolTable) sexp.SExp {
	switch e.kind {
	case KindInteger:
		return sexp.NewSymbol(e.value.String())
	case KindRational:
		return sexp.NewSymbol(fmt.Sprintf("%s/%s", e.value, e.denom))
	case KindVariable:
		return sexp.NewSymbol(symbols.Name(e.symbol))
	case KindMarkedVariable:
		if e.level == 0 {
			return sexp.NewSymbol("?" + symbols.Name(e.symbol))
		}
		//
		return sexp.NewSymbol(fmt.Sprintf("?%s@%d", symbols.Name(e.symbol), e.level))
	case KindApplication:
		if e.IsTrue() || e.IsFalse() {
			return sexp.NewSymbol(symbols.Name(e.symbol))
		} else if e.symbol == SET {
			return sexp.NewSet(lispAll(e.args, symbols)...)
		}
		//
		return sexp.NewList(append([]sexp.SExp{sexp.NewSymbol(symbols.Name(e.symbol))},
			lispAll(e.args, symbols)...)...)
	case KindCase:
		list := sexp.NewList(sexp.NewSymbol("case"), e.Scrutinee().Lisp(symbols))
		//
		for _, b := range e.branches {
			list.Append(sexp.NewList(b.Pattern.Lisp(symbols), b.Body.Lisp(symbols)))
		}
		//
		return list
	case KindQuantifier:
		vars := sexp.NewList()
		//
		for _, v := range e.vars {
			vars.Append(sexp.NewSymbol(symbols.Name(v)))
		}
		//
		list := sexp.NewList(sexp.NewSymbol(e.quant.String()), vars, e.Body().Lisp(symbols))
		//
		if !e.Cond().IsTrue() {
			list.Append(e.Cond().Lisp(symbols))
		}
		//
		return list
	case KindIndex:
		return sexp.NewList(sexp.NewSymbol("index"), e.Base().Lisp(symbols), sexp.NewSymbol(fmt.Sprint(e.selector)))
	case KindString:
		return sexp.NewString(e.text)
	}
	//
	panic("unknown expression kind")
}

func lispAll(exprs []*Expr, symbols *SymbolTable) []sexp.SExp {
	elements := make([]sexp.SExp, len(exprs))
	//
	for i, e := range exprs {
		elements[i] = e.Lisp(symbols)
	}
	//
	return elements
}

// Format returns the textual (S-Expression) representation of a given
// expression.
func (s *Store) Format(e *Expr) string {
	return e.Lisp(s.symbols).String(true)
}

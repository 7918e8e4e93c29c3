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
	"errors"
	"math/big"
	"strconv"
	"strings"

	"github.com/consensys/go-rewrite/pkg/util/source"
	"github.com/consensys/go-rewrite/pkg/util/source/sexp"
)

// Parse reads exactly one expression from a given string.
func Parse(store *Store, text string) (*Expr, error) {
	file := source.NewText(text)
	//
	term, srcmap, err := sexp.Parse(file)
	if err != nil {
		return nil, err
	} else if term == nil {
		return nil, errors.New("empty expression")
	}
	//
	e, errs := NewTranslator(store, file, srcmap).Translate(term)
	if len(errs) > 0 {
		return nil, &errs[0]
	}
	//
	return e, nil
}

// ParseFile reads every expression in a given source file.  A source map is
// also returned, identifying where each expression originated.
func ParseFile(store *Store, file *source.File) ([]*Expr, *source.Map[*Expr], []source.SyntaxError) {
	terms, srcmap, err := sexp.ParseAll(file)
	if err != nil {
		return nil, nil, []source.SyntaxError{*err}
	}
	//
	var (
		translator = NewTranslator(store, file, srcmap)
		exprs      = make([]*Expr, 0, len(terms))
		errs       []source.SyntaxError
	)
	//
	for _, term := range terms {
		e, terrs := translator.Translate(term)
		exprs = append(exprs, e)
		errs = append(errs, terrs...)
	}
	//
	return exprs, translator.SourceMap(), errs
}

// NewTranslator constructs a translator from S-Expressions into expressions
// interned in a given store.
//
// Integers, fractions (e.g. 3/4) and double-quoted strings are literals.  A
// symbol prefixed with '?' is a marked variable, whose level is given by an
// optional '@' suffix (e.g. ?X@2).  TRUE and FALSE are constants, and any other
// symbol is a variable.  A list is an application, except for the special
// forms (case e (pattern body) ...), (forall (x ...) body [cond]) (likewise
// exists and lambda) and (index e k).  A set {a b} is a SET application.
func NewTranslator(store *Store, file *source.File, srcmap *source.Map[sexp.SExp]) *sexp.Translator[*Expr] {
	p := &reader{store, sexp.NewTranslator[*Expr](file, srcmap)}
	//
	p.translator.AddSymbolRule(p.symbol)
	p.translator.AddListRule("case", p.caseForm)
	p.translator.AddListRule("forall", p.quantifierForm(ForAll))
	p.translator.AddListRule("exists", p.quantifierForm(Exists))
	p.translator.AddListRule("lambda", p.quantifierForm(Lambda))
	p.translator.AddListRule("index", p.indexForm)
	p.translator.AddDefaultRecursiveListRule(p.application)
	p.translator.AddRecursiveSetRule(func(_ string, elems []*Expr) (*Expr, error) {
		return store.Set(elems...), nil
	})
	//
	return p.translator
}

type reader struct {
	store      *Store
	translator *sexp.Translator[*Expr]
}

func (p *reader) symbol(s *sexp.Symbol) (*Expr, bool, error) {
	var name = s.Value
	//
	if s.Quoted {
		return p.store.String(name), true, nil
	} else if v, ok := new(big.Int).SetString(name, 10); ok {
		return p.store.Integer(v), true, nil
	} else if i := strings.IndexByte(name, '/'); i > 0 {
		n, ok1 := new(big.Int).SetString(name[:i], 10)
		d, ok2 := new(big.Int).SetString(name[i+1:], 10)
		//
		if ok1 && ok2 && d.Sign() == 0 {
			return nil, true, errors.New("zero denominator")
		} else if ok1 && ok2 {
			return p.store.Rational(n, d), true, nil
		}
	}
	//
	switch {
	case len(name) > 1 && name[0] == '?':
		var level uint64
		//
		name = name[1:]
		//
		if i := strings.LastIndexByte(name, '@'); i > 0 {
			var err error
			//
			if level, err = strconv.ParseUint(name[i+1:], 10, 32); err != nil {
				return nil, true, errors.New("invalid variable level")
			}
			//
			name = name[:i]
		}
		//
		return p.store.Marked(name, uint(level)), true, nil
	case name == "TRUE":
		return p.store.True(), true, nil
	case name == "FALSE":
		return p.store.False(), true, nil
	}
	//
	return p.store.Var(name), true, nil
}

func (p *reader) application(functor string, args []*Expr) (*Expr, error) {
	return p.store.App(functor, args...), nil
}

func (p *reader) caseForm(l *sexp.List) (*Expr, []source.SyntaxError) {
	if l.Len() < 2 {
		return nil, p.translator.SyntaxErrors(l, "missing scrutinee")
	}
	//
	var (
		branches        []Branch
		scrutinee, errs = p.translator.Translate(l.Get(1))
	)
	//
	for _, elem := range l.Elements[2:] {
		b := elem.AsList()
		//
		if b == nil || b.Len() != 2 {
			errs = append(errs, *p.translator.SyntaxError(elem, "malformed case branch"))
			continue
		}
		//
		pattern, perrs := p.translator.Translate(b.Get(0))
		body, berrs := p.translator.Translate(b.Get(1))
		errs = append(append(errs, perrs...), berrs...)
		branches = append(branches, Branch{pattern, body})
	}
	//
	if len(errs) > 0 {
		return nil, errs
	}
	//
	return p.store.Case(scrutinee, branches...), nil
}

func (p *reader) quantifierForm(kind QuantKind) sexp.ListRule[*Expr] {
	return func(l *sexp.List) (*Expr, []source.SyntaxError) {
		if l.Len() != 3 && l.Len() != 4 {
			return nil, p.translator.SyntaxErrors(l, "expected (quantifier (vars) body [cond])")
		}
		//
		binders := l.Get(1).AsList()
		if binders == nil {
			return nil, p.translator.SyntaxErrors(l.Get(1), "expected list of variables")
		}
		//
		vars := make([]SymbolID, binders.Len())
		//
		for i, v := range binders.Elements {
			s := v.AsSymbol()
			//
			if s == nil || s.Quoted {
				return nil, p.translator.SyntaxErrors(v, "expected variable")
			}
			//
			vars[i] = p.store.symbols.Intern(s.Value)
		}
		//
		var (
			cond       *Expr
			body, errs = p.translator.Translate(l.Get(2))
		)
		//
		if l.Len() == 4 {
			var cerrs []source.SyntaxError
			cond, cerrs = p.translator.Translate(l.Get(3))
			errs = append(errs, cerrs...)
		}
		//
		if len(errs) > 0 {
			return nil, errs
		}
		//
		return p.store.Quantifier(kind, vars, body, cond), nil
	}
}

func (p *reader) indexForm(l *sexp.List) (*Expr, []source.SyntaxError) {
	if l.Len() != 3 || l.Get(2).AsSymbol() == nil {
		return nil, p.translator.SyntaxErrors(l, "expected (index expr selector)")
	}
	//
	selector, err := strconv.Atoi(l.Get(2).AsSymbol().Value)
	if err != nil {
		return nil, p.translator.SyntaxErrors(l.Get(2), "invalid selector")
	}
	//
	base, errs := p.translator.Translate(l.Get(1))
	if len(errs) > 0 {
		return nil, errs
	}
	//
	return p.store.Index(base, selector), nil
}

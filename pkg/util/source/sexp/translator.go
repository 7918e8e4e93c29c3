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
package sexp

import (
	"fmt"
	"reflect"

	"github.com/consensys/go-rewrite/pkg/util/source"
)

// SymbolRule is a symbol generator is responsible for converting a terminating
// expression (i.e. a symbol) into an expression type T.  For example, a number
// or a variable.  The boolean indicates whether or not the rule applied.
type SymbolRule[T comparable] func(*Symbol) (T, bool, error)

// ListRule is a list translator is responsible converting a list with a given
// sequence of zero or more arguments into an expression type T.
type ListRule[T comparable] func(*List) (T, []source.SyntaxError)

// RecursiveRule is a recursive translator is a wrapper for translating lists whose
// elements can be built by recursively reusing the enclosing
// translator.
type RecursiveRule[T comparable] func(string, []T) (T, error)

// ===================================================================
// Translator
// ===================================================================

// Translator is a generic mechanism for translating S-Expressions into a structured
// form.
type Translator[T comparable] struct {
	srcfile *source.File
	// Rules for parsing lists
	lists map[string]ListRule[T]
	// Fallback rule for lists not matched by any other rule.
	listDefault ListRule[T]
	// Rule for parsing sets
	sets RecursiveRule[T]
	// Rules for parsing symbols
	symbols []SymbolRule[T]
	// Maps S-Expressions to their spans in the original source file.  This is
	// used to build the new source map.
	oldSrcmap *source.Map[SExp]
	// Maps translated expressions to their spans in the original source file.
	// This is constructed using the old source map.
	newSrcmap *source.Map[T]
}

// NewTranslator constructs a new Translator instance.
func NewTranslator[T comparable](srcfile *source.File, srcmap *source.Map[SExp]) *Translator[T] {
	return &Translator[T]{
		srcfile:   srcfile,
		lists:     make(map[string]ListRule[T]),
		oldSrcmap: srcmap,
		newSrcmap: source.NewSourceMap[T](srcfile),
	}
}

// SourceMap returns the source map maintained for terms constructed by this
// translator.
func (p *Translator[T]) SourceMap() *source.Map[T] {
	return p.newSrcmap
}

// Translate a given S-Expression into the structured representation T.
func (p *Translator[T]) Translate(sexp SExp) (T, []source.SyntaxError) {
	return translateSExp(p, sexp)
}

// AddListRule adds a raw list rule to this expression translator.
func (p *Translator[T]) AddListRule(name string, rule ListRule[T]) {
	p.lists[name] = rule
}

// AddRecursiveListRule adds a new list translator to this expression translator.
func (p *Translator[T]) AddRecursiveListRule(name string, t RecursiveRule[T]) {
	p.lists[name] = p.createRecursiveListRule(t)
}

// AddDefaultListRule adds a default rule to be applied when no other list
// rules apply.
func (p *Translator[T]) AddDefaultListRule(rule ListRule[T]) {
	p.listDefault = rule
}

// AddDefaultRecursiveListRule adds a default recursive rule to be applied when
// no other list rules apply.
func (p *Translator[T]) AddDefaultRecursiveListRule(t RecursiveRule[T]) {
	p.listDefault = p.createRecursiveListRule(t)
}

// AddRecursiveSetRule sets the rule used for translating sets, whose elements
// are translated recursively.  The name passed to the rule is always empty.
func (p *Translator[T]) AddRecursiveSetRule(t RecursiveRule[T]) {
	p.sets = t
}

// AddSymbolRule adds a new symbol translator to this expression translator.
func (p *Translator[T]) AddSymbolRule(t SymbolRule[T]) {
	p.symbols = append(p.symbols, t)
}

// SyntaxError constructs a suitable syntax error for a given S-Expression.
func (p *Translator[T]) SyntaxError(s SExp, msg string) *source.SyntaxError {
	return p.srcfile.SyntaxError(p.oldSrcmap.Get(s), msg)
}

// SyntaxErrors constructs a suitable syntax error for a given S-Expression,
// returned as a singleton array.
func (p *Translator[T]) SyntaxErrors(s SExp, msg string) []source.SyntaxError {
	return []source.SyntaxError{*p.SyntaxError(s, msg)}
}

func (p *Translator[T]) createRecursiveListRule(t RecursiveRule[T]) ListRule[T] {
	return func(l *List) (T, []source.SyntaxError) {
		var empty T
		// Extract the "head" of the list.
		if l.Head() == "" {
			return empty, p.SyntaxErrors(l, "invalid list")
		}
		//
		args, errors := p.translateAll(l.Elements[1:])
		//
		if len(errors) > 0 {
			return empty, errors
		}
		// Apply constructor
		term, err := t(l.Head(), args)
		if err != nil {
			return empty, p.SyntaxErrors(l, err.Error())
		}
		//
		return term, nil
	}
}

func (p *Translator[T]) translateAll(elements []SExp) ([]T, []source.SyntaxError) {
	var (
		args   = make([]T, len(elements))
		errors []source.SyntaxError
	)
	//
	for i, s := range elements {
		var errs []source.SyntaxError
		args[i], errs = translateSExp(p, s)
		errors = append(errors, errs...)
	}
	//
	return args, errors
}

// ===================================================================
// Private
// ===================================================================

// Translate an S-Expression into a term.  Observe that this can still fail in
// the event that the given S-Expression does not describe a well-formed term.
func translateSExp[T comparable](p *Translator[T], s SExp) (T, []source.SyntaxError) {
	var (
		empty  T
		node   T
		errors []source.SyntaxError
	)
	//
	switch e := s.(type) {
	case *List:
		node, errors = translateSExpList(p, e)
	case *Set:
		node, errors = translateSExpSet(p, e)
	case *Symbol:
		node, errors = translateSExpSymbol(p, e)
	default:
		// This should be unreachable.
		return empty, p.SyntaxErrors(s, fmt.Sprintf("invalid s-expression (%s)", reflect.TypeOf(s)))
	}
	// Map source node
	if len(errors) == 0 {
		map2sexp(p, node, s)
	}
	//
	return node, errors
}

func translateSExpSymbol[T comparable](p *Translator[T], s *Symbol) (T, []source.SyntaxError) {
	var empty T
	//
	for _, rule := range p.symbols {
		node, ok, err := rule(s)
		if ok && err != nil {
			// Transform into syntax error
			return empty, p.SyntaxErrors(s, err.Error())
		} else if ok {
			return node, nil
		}
	}
	//
	return empty, p.SyntaxErrors(s, "unknown symbol encountered")
}

// Translate a list of S-Expressions into a unary, binary or n-ary
// expression of some kind.  This type of expression is determined by
// the first element of the list.
func translateSExpList[T comparable](p *Translator[T], l *List) (T, []source.SyntaxError) {
	var empty T
	// Lookup appropriate translator
	if t := p.lists[l.Head()]; t != nil && !l.Elements[0].AsSymbol().Quoted {
		return t(l)
	} else if p.listDefault != nil {
		return p.listDefault(l)
	}
	// Default fall back
	return empty, p.SyntaxErrors(l, "unknown list encountered")
}

func translateSExpSet[T comparable](p *Translator[T], l *Set) (T, []source.SyntaxError) {
	var empty T
	//
	if p.sets == nil {
		return empty, p.SyntaxErrors(l, "unexpected set")
	}
	//
	args, errors := p.translateAll(l.Elements)
	//
	if len(errors) > 0 {
		return empty, errors
	}
	//
	term, err := p.sets("", args)
	if err != nil {
		return empty, p.SyntaxErrors(l, err.Error())
	}
	//
	return term, nil
}

// Add a mapping from a given item to the S-expression from which it was
// generated.  This updates the underlying source map to reflect this.  Items
// which are already mapped retain their first span.
func map2sexp[T comparable](p *Translator[T], item T, sexp SExp) {
	p.newSrcmap.Put(item, p.oldSrcmap.Get(sexp))
}

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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/consensys/go-rewrite/pkg/config"
	"github.com/consensys/go-rewrite/pkg/expr"
	"github.com/consensys/go-rewrite/pkg/region"
	"github.com/consensys/go-rewrite/pkg/rewrite"
	"github.com/consensys/go-rewrite/pkg/util/source"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// GetFlag gets an expected flag, or exits if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetUint gets an expected unsigned integer flag, or exits if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string flag, or exits if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetStringArray gets an expected string array flag, or exits if an error
// arises.
func GetStringArray(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringArray(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetIntSlice gets an expected integer slice flag, or exits if an error arises.
func GetIntSlice(cmd *cobra.Command, flag string) []int {
	r, err := cmd.Flags().GetIntSlice(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// ===================================================================
// Session
// ===================================================================

// session holds the components constructed for a single command.
type session struct {
	config   config.Config
	alloc    *region.Allocator
	store    *expr.Store
	engine   *rewrite.Engine
	registry *prometheus.Registry
}

// Construct a session from the persistent flags of a given command, exiting if
// either the configuration or a rule file cannot be read.
func newSession(cmd *cobra.Command) *session {
	cfg := readConfig(cmd)
	alloc := cfg.Allocator()
	store := cfg.NewStore(alloc)
	//
	for _, name := range GetStringArray(cmd, "ac") {
		store.Symbols().DeclareAC(name)
	}
	//
	index := rewrite.NewFunctorIndex()
	index.Add(readRules(store, GetStringArray(cmd, "rules")...)...)
	//
	engine := rewrite.New(store, index, nil, cfg.Engine)
	registry := prometheus.NewRegistry()
	//
	if err := engine.Metrics().Register(registry); err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return &session{cfg, alloc, store, engine, registry}
}

// Close this session, returning all memory held by its allocator.
func (p *session) close() region.Stats {
	return p.alloc.Shutdown()
}

// Read the configuration file (if given), and apply any overriding flags.
func readConfig(cmd *cobra.Command) config.Config {
	var (
		cfg  = config.Default()
		err  error
		path = GetString(cmd, "config")
	)
	//
	if path != "" {
		cfg, err = config.Load(path)
	}
	//
	if n := GetUint(cmd, "max-nesting"); n != 0 {
		cfg.Engine.MaxNesting = n
	}
	//
	if err == nil {
		err = cfg.Validate()
	}
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return cfg
}

// Read a given set of rule files, exiting with a report of every syntax error
// if any are malformed.
func readRules(store *expr.Store, filenames ...string) []*rewrite.Rule {
	var rules []*rewrite.Rule
	//
	files, err := source.ReadFiles(filenames...)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	for _, file := range files {
		rs, errs := rewrite.ParseRules(store, file)
		//
		if len(errs) > 0 {
			printSyntaxErrors(errs)
			os.Exit(2)
		}
		//
		rules = append(rules, rs...)
	}
	//
	return rules
}

// Read terms given directly on the command line, exiting with a report of every
// syntax error if any are malformed.
func readTerms(store *expr.Store, texts ...string) []*expr.Expr {
	var terms []*expr.Expr
	//
	for _, text := range texts {
		es, _, errs := expr.ParseFile(store, source.NewText(text))
		//
		if len(errs) > 0 {
			printSyntaxErrors(errs)
			os.Exit(2)
		}
		//
		terms = append(terms, es...)
	}
	//
	return terms
}

// Read the mode flags of a given command.
func readMode(cmd *cobra.Command) rewrite.Mode {
	var mode rewrite.Mode
	//
	if GetFlag(cmd, "no-context") {
		mode |= rewrite.ModeNoContextRules
	}
	//
	if GetFlag(cmd, "no-forward") {
		mode |= rewrite.ModeNoForwardRules
	}
	//
	if GetFlag(cmd, "no-augment") {
		mode |= rewrite.ModeNoAugment
	}
	//
	return mode
}

// Add the mode flags to a given command.
func addModeFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-context", false, "ignore context rules and hypotheses")
	cmd.Flags().Bool("no-forward", false, "ignore forward rules")
	cmd.Flags().Bool("no-augment", false, "do not augment rules before matching")
}

// Exit with a diagnostic if the allocator has failed, otherwise continue
// panicking.  This must be deferred directly.
func handleFatal() {
	if r := recover(); r != nil {
		if err, ok := r.(*region.FatalError); ok {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		panic(r)
	}
}

// ===================================================================
// Printing
// ===================================================================

// Print a given set of rewrites, along with the bindings which gave rise to
// them.  The rewritten root is printed only when requested.
func printRewrites(w io.Writer, store *expr.Store, rewrites []rewrite.Rewrite, roots bool) {
	for i, rw := range rewrites {
		fmt.Fprintf(w, "[%d] %s", i, store.Format(rw.Result))
		//
		if rw.Rule != nil {
			fmt.Fprintf(w, " (priority %d)", rw.Rule.Priority())
		}
		//
		fmt.Fprintln(w)
		//
		if roots {
			fmt.Fprintf(w, "\tin %s\n", store.Format(rw.Root))
		}
		//
		for v, val := range rw.Env.Domain() {
			fmt.Fprintf(w, "\t?%s = %s\n", store.Symbols().Name(v), store.Format(val))
		}
	}
}

// Print the current value of every counter in a given registry.
func printMetrics(w io.Writer, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	//
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			fmt.Fprintf(w, "%s %v\n", family.GetName(), metric.GetCounter().GetValue())
		}
	}
	//
	return nil
}

func printSyntaxErrors(errs []source.SyntaxError) {
	for i := range errs {
		printSyntaxError(&errs[i])
	}
}

// Print a syntax error with appropriate highlighting.
func printSyntaxError(err *source.SyntaxError) {
	span := err.Span()
	line := err.FirstEnclosingLine()
	lineOffset := span.Start() - line.Start()
	// Calculate length (ensures don't overflow line)
	length := max(1, min(line.Length()-lineOffset, span.Length()))
	// Print error + line number
	fmt.Printf("%s:%d:%d-%d %s\n", err.SourceFile().Filename(),
		line.Number(), 1+lineOffset, 1+lineOffset+length, err.Message())
	// Print separator line
	fmt.Println()
	// Print line
	fmt.Println(line.String())
	// Print indent (todo: account for tabs)
	fmt.Print(strings.Repeat(" ", lineOffset))
	// Print highlight (in red, if writing to a terminal)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Printf("\033[31m%s\033[0m\n", strings.Repeat("^", length))
	} else {
		fmt.Println(strings.Repeat("^", length))
	}
}

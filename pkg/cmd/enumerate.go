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
	"os"

	"github.com/consensys/go-rewrite/pkg/rewrite"
	"github.com/spf13/cobra"
)

var enumerateCmd = &cobra.Command{
	Use:   "enumerate [flags] term",
	Short: "enumerate every single-step rewrite of a term.",
	Long: `Enumerate every rewrite of a term (or of a subterm at a given
	position) which is obtained by applying exactly one rule.  When a
	position is given, its siblings give rise to hypotheses.`,
	Run: func(cmd *cobra.Command, args []string) {
		var rewrites []rewrite.Rewrite
		//
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		defer handleFatal()
		//
		s := newSession(cmd)
		defer s.close()
		//
		var (
			mode  = readMode(cmd)
			path  = GetIntSlice(cmd, "path")
			ctx   = rewrite.NewContext()
			terms = readTerms(s.store, args[0])
		)
		//
		if len(terms) != 1 {
			fmt.Println("expected exactly one term")
			os.Exit(2)
		}
		//
		switch {
		case GetFlag(cmd, "under"):
			rewrites = s.engine.EnumerateRewritesUnder(ctx, terms[0], path, mode)
		case len(path) > 0:
			rewrites = s.engine.EnumerateRewritesAt(ctx, terms[0], path, mode)
		default:
			rewrites = s.engine.EnumerateRewrites(ctx, terms[0], mode)
		}
		//
		printRewrites(os.Stdout, s.store, rewrites, len(path) > 0)
	},
}

func init() {
	rootCmd.AddCommand(enumerateCmd)
	enumerateCmd.Flags().IntSlice("path", nil, "position of the subterm to rewrite")
	enumerateCmd.Flags().Bool("under", false, "raise variables bound above the position")
	addModeFlags(enumerateCmd)
}

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
	"github.com/consensys/go-rewrite/pkg/util"
	"github.com/spf13/cobra"
)

var simplifyCmd = &cobra.Command{
	Use:   "simplify [flags] term...",
	Short: "simplify terms using a given set of rules.",
	Long: `Simplify one or more terms by repeatedly rewriting them using the
	given rule files, until no further rule applies.  Hypotheses may be
	given which hold whilst simplifying.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		defer handleFatal()
		//
		s := newSession(cmd)
		defer s.close()
		//
		ctx := rewrite.NewContext()
		s.engine.CreateContext(ctx, readTerms(s.store, GetStringArray(cmd, "hyp")...)...)
		//
		for _, term := range readTerms(s.store, args...) {
			stats := util.NewPerfStats()
			result := s.engine.Simplify(ctx, term)
			//
			stats.Log("Simplifying term")
			fmt.Println(s.store.Format(result))
		}
	},
}

func init() {
	rootCmd.AddCommand(simplifyCmd)
	simplifyCmd.Flags().StringArray("hyp", nil, "assume a given hypothesis holds")
}

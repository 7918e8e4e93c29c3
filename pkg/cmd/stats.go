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

var statsCmd = &cobra.Command{
	Use:   "stats [flags] term...",
	Short: "report engine and allocator statistics.",
	Long: `Rewrite one or more terms (either fully, or by a single step) and
	then report the engine counters along with the usage of the region
	allocator.`,
	Run: func(cmd *cobra.Command, args []string) {
		defer handleFatal()
		//
		s := newSession(cmd)
		mode := readMode(cmd)
		step := GetFlag(cmd, "step")
		fast := GetFlag(cmd, "fast")
		//
		for _, term := range readTerms(s.store, args...) {
			ctx := rewrite.NewContext()
			//
			switch {
			case fast:
				s.engine.FastRewriteRule(ctx, term, mode)
			case step:
				s.engine.RewriteRule(ctx, term, mode)
			default:
				s.engine.Simplify(ctx, term)
			}
		}
		//
		if err := printMetrics(os.Stdout, s.registry); err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
		//
		stats := s.close()
		fmt.Printf("region fresh_blocks %d\n", stats.FreshBlocks)
		fmt.Printf("region reused_blocks %d\n", stats.ReusedBlocks)
		fmt.Printf("region oversized_blocks %d\n", stats.OversizedBlocks)
		fmt.Printf("region allocations %d\n", stats.Allocations)
		fmt.Printf("region bytes_allocated %d\n", stats.BytesAllocated)
		fmt.Printf("region releases %d\n", stats.Releases)
		fmt.Printf("region peak_bytes %d\n", stats.PeakBytes)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().Bool("step", false, "rewrite by a single step only")
	statsCmd.Flags().Bool("fast", false, "use only unconditional context rules")
	addModeFlags(statsCmd)
}

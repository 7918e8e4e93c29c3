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
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts the events of a rewriting engine.  Every engine has its own
// metrics, which are only exported once registered.
type Metrics struct {
	// Rule variants matched against a target.
	attempts prometheus.Counter
	// Successful rewrites.
	commits prometheus.Counter
	// Matches whose guard could not be satisfied.
	backtracks prometheus.Counter
	// Rule variants excluded by a selection marker.
	filtered prometheus.Counter
	// Searches terminated early by a cut.
	cuts prometheus.Counter
	// Searches which found no rewrite.
	exhausted prometheus.Counter
	// Searches abandoned because the nesting limit was reached.
	nesting prometheus.Counter
}

func newMetrics() *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rewrite",
			Subsystem: "engine",
			Name:      name,
			Help:      help,
		})
	}
	//
	return &Metrics{
		attempts:   counter("attempts_total", "Total number of rule variants matched against a target"),
		commits:    counter("commits_total", "Total number of successful rewrites"),
		backtracks: counter("backtracks_total", "Total number of matches whose guard failed"),
		filtered:   counter("filtered_total", "Total number of rule variants excluded by selection markers"),
		cuts:       counter("cuts_total", "Total number of searches pruned by a cut"),
		exhausted:  counter("exhausted_total", "Total number of searches finding no rewrite"),
		nesting:    counter("nesting_limit_total", "Total number of searches abandoned at the nesting limit"),
	}
}

// Collectors returns the collectors of these metrics.
func (p *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{p.attempts, p.commits, p.backtracks, p.filtered, p.cuts, p.exhausted, p.nesting}
}

// Register these metrics with a given registry.
func (p *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range p.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	//
	return nil
}

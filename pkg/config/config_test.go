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
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/consensys/go-rewrite/pkg/expr"
	"github.com/consensys/go-rewrite/pkg/region"
	"github.com/consensys/go-rewrite/pkg/rewrite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Config_01(t *testing.T) {
	config := Default()
	//
	require.NoError(t, config.Validate())
	assert.Equal(t, uint(region.DEFAULT_BLOCK_SIZE), config.Region.BlockSize)
	assert.Equal(t, uint(expr.DEFAULT_TABLE_SIZE), config.Store.TableSize)
	assert.Equal(t, uint(rewrite.DEFAULT_MAX_NESTING), config.Engine.MaxNesting)
}

func Test_Config_02(t *testing.T) {
	path := writeConfig(t, `
region:
  block_size: 4096
store:
  table_size: 97
  track_used_in: false
engine:
  max_nesting: 8
  hypothesis_priority: 5
`)
	config, err := Load(path)
	require.NoError(t, err)
	// Given fields
	assert.Equal(t, uint(4096), config.Region.BlockSize)
	assert.Equal(t, uint(97), config.Store.TableSize)
	assert.False(t, config.Store.TrackUsedIn)
	assert.Equal(t, uint(8), config.Engine.MaxNesting)
	assert.Equal(t, 5, config.Engine.HypothesisPriority)
	// Omitted fields retain defaults
	assert.Equal(t, uint64(region.DEFAULT_MAX_BYTES), config.Region.MaxBytes)
	assert.Equal(t, uint(expr.DEFAULT_SLOT_BYTES), config.Store.SlotBytes)
	assert.Equal(t, rewrite.DEFAULT_SET_CAPACITY, config.Engine.ExcludeSetCapacity)
}

func Test_Config_03(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	//
	_, err = Load(writeConfig(t, "engine: [1, 2"))
	assert.ErrorContains(t, err, "parse config")
	//
	_, err = Load(writeConfig(t, "engine:\n  max_nesting: 0\n"))
	assert.ErrorContains(t, err, "engine.max_nesting")
}

func Test_Config_04(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"block_size", func(c *Config) { c.Region.BlockSize = 0 }},
		{"max_bytes", func(c *Config) { c.Region.MaxBytes = 1 }},
		{"table_size", func(c *Config) { c.Store.TableSize = 0 }},
		{"exclude_set_capacity", func(c *Config) { c.Engine.ExcludeSetCapacity = -1 }},
		{"context_set_capacity", func(c *Config) { c.Engine.ContextSetCapacity = -1 }},
		{"max_simplify_steps", func(c *Config) { c.Engine.MaxSimplifySteps = 0 }},
		{"max_alternatives", func(c *Config) { c.Engine.MaxAlternatives = 0 }},
	}
	//
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.modify(&config)
			assert.ErrorContains(t, config.Validate(), tt.name)
		})
	}
}

func Test_Config_05(t *testing.T) {
	config := Default()
	config.Store.TableSize = 31
	//
	alloc := config.Allocator()
	store := config.NewStore(alloc)
	//
	assert.Same(t, alloc, store.Allocator())
	assert.Equal(t, uint(31), store.Config().TableSize)
	_, ok := alloc.Lookup(expr.PERMANENT_SPACE)
	assert.True(t, ok)
}

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	//
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	//
	return path
}

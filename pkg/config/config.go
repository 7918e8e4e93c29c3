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
	"errors"
	"fmt"
	"os"

	"github.com/consensys/go-rewrite/pkg/expr"
	"github.com/consensys/go-rewrite/pkg/region"
	"github.com/consensys/go-rewrite/pkg/rewrite"
	"gopkg.in/yaml.v3"
)

// Config gathers the configuration of the region allocator, the expression
// store and the rewrite engine.
type Config struct {
	Region region.Config    `yaml:"region"`
	Store  expr.StoreConfig `yaml:"store"`
	Engine rewrite.Config   `yaml:"engine"`
}

// Default returns the default configuration of every component.
func Default() Config {
	return Config{
		Region: region.DefaultConfig(),
		Store:  expr.DefaultStoreConfig(),
		Engine: rewrite.DefaultConfig(),
	}
}

// Load reads a configuration from a given YAML file.  Sections or fields which
// are omitted from the file retain their default values.
func Load(path string) (Config, error) {
	config := Default()
	//
	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}
	//
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse config %s: %w", path, err)
	}
	//
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid config %s: %w", path, err)
	}
	//
	return config, nil
}

// Validate checks that the configuration is valid.
func (c Config) Validate() error {
	switch {
	case c.Region.BlockSize == 0:
		return errors.New("region.block_size must be >= 1")
	case c.Region.MaxBytes < uint64(c.Region.BlockSize):
		return errors.New("region.max_bytes must be at least region.block_size")
	case c.Store.TableSize == 0:
		return errors.New("store.table_size must be >= 1")
	case c.Engine.MaxNesting == 0:
		return errors.New("engine.max_nesting must be >= 1")
	case c.Engine.ExcludeSetCapacity < 0:
		return errors.New("engine.exclude_set_capacity must be >= 0")
	case c.Engine.ContextSetCapacity < 0:
		return errors.New("engine.context_set_capacity must be >= 0")
	case c.Engine.MaxSimplifySteps == 0:
		return errors.New("engine.max_simplify_steps must be >= 1")
	case c.Engine.MaxAlternatives < 1:
		return errors.New("engine.max_alternatives must be >= 1")
	}
	//
	return nil
}

// Allocator constructs a region allocator as determined by this configuration.
func (c Config) Allocator() *region.Allocator {
	return region.New(c.Region)
}

// NewStore constructs an expression store, whose nodes are allocated from a given
// allocator, as determined by this configuration.
func (c Config) NewStore(alloc *region.Allocator) *expr.Store {
	return expr.NewStore(c.Store, alloc)
}

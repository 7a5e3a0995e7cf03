// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package config provides the configuration of the conformance harness.
// Configurations are TOML documents; settings missing in a document are
// taken from the embedded default configuration.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/Fantom-foundation/evm-compat/go/fixture"
	"github.com/Fantom-foundation/evm-compat/go/runner"
	"github.com/pelletier/go-toml"
)

//go:embed default.toml
var defaultConfig []byte

// Config holds the harness configuration.
type Config struct {
	Run      RunConfig      `toml:"run"`
	Fixtures FixturesConfig `toml:"fixtures"`
	DenyList DenyListConfig `toml:"deny_list"`
}

// RunConfig holds the options controlling the execution of test cases.
type RunConfig struct {
	SkipCoinbase     bool   `toml:"skip_coinbase"`
	FailFast         bool   `toml:"fail_fast"`
	PrimeFirstHeader bool   `toml:"prime_first_header"`
	Jobs             int    `toml:"jobs"`
	ShuffleSeed      uint64 `toml:"shuffle_seed"`
	ProgressInterval string `toml:"progress_interval"`
}

// FixturesConfig locates the fixture documents.
type FixturesConfig struct {
	Dir       string        `toml:"dir"`
	CacheSize int           `toml:"cache_size"`
	Bundle    []BundleEntry `toml:"bundle"`
}

type BundleEntry struct {
	Name string `toml:"name"`
	File string `toml:"file"`
}

// DenyListConfig names test cases that are never executed.
type DenyListConfig struct {
	Names []string `toml:"names"`
}

// Default returns the embedded default configuration.
func Default() Config {
	cfg, err := parse(defaultConfig, Config{})
	if err != nil {
		panic(fmt.Sprintf("invalid default configuration: %v", err))
	}
	return cfg
}

// Load reads the configuration file at the given path. Settings not
// present in the file keep their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a TOML configuration document on top of the defaults.
func Parse(data []byte) (Config, error) {
	return parse(data, Default())
}

func parse(data []byte, base Config) (Config, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return base, fmt.Errorf("failed to parse config file: %w", err)
	}
	var cfg Config
	if err := tree.Unmarshal(&cfg); err != nil {
		return base, fmt.Errorf("failed to parse config file: %w", err)
	}

	defaults := []struct {
		key   string
		apply func()
	}{
		{"run.skip_coinbase", func() { cfg.Run.SkipCoinbase = base.Run.SkipCoinbase }},
		{"run.fail_fast", func() { cfg.Run.FailFast = base.Run.FailFast }},
		{"run.prime_first_header", func() { cfg.Run.PrimeFirstHeader = base.Run.PrimeFirstHeader }},
		{"run.jobs", func() { cfg.Run.Jobs = base.Run.Jobs }},
		{"run.shuffle_seed", func() { cfg.Run.ShuffleSeed = base.Run.ShuffleSeed }},
		{"run.progress_interval", func() { cfg.Run.ProgressInterval = base.Run.ProgressInterval }},
		{"fixtures.dir", func() { cfg.Fixtures.Dir = base.Fixtures.Dir }},
		{"fixtures.cache_size", func() { cfg.Fixtures.CacheSize = base.Fixtures.CacheSize }},
		{"fixtures.bundle", func() { cfg.Fixtures.Bundle = base.Fixtures.Bundle }},
		{"deny_list.names", func() { cfg.DenyList.Names = base.DenyList.Names }},
	}
	for _, d := range defaults {
		if !tree.Has(d.key) {
			d.apply()
		}
	}
	return cfg, cfg.Validate()
}

// Validate checks the consistency of the configuration.
func (c *Config) Validate() error {
	if c.Run.Jobs < 0 {
		return fmt.Errorf("invalid number of jobs: %d", c.Run.Jobs)
	}
	if _, err := c.progressInterval(); err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, entry := range c.Fixtures.Bundle {
		if entry.Name == "" || entry.File == "" {
			return fmt.Errorf("invalid bundle entry %+v: name and file are required", entry)
		}
		if seen[entry.Name] {
			return fmt.Errorf("duplicate bundle entry %q", entry.Name)
		}
		seen[entry.Name] = true
	}
	return nil
}

func (c *Config) progressInterval() (time.Duration, error) {
	if c.Run.ProgressInterval == "" {
		return 0, nil
	}
	res, err := time.ParseDuration(c.Run.ProgressInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid progress interval: %w", err)
	}
	return res, nil
}

// LoadDenyList reads a standalone deny-list file. The file is a TOML
// document with a top-level `names` array.
func LoadDenyList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deny list: %w", err)
	}
	var list DenyListConfig
	if err := toml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse deny list: %w", err)
	}
	return list.Names, nil
}

// Bundle converts the configured bundle into its fixture representation.
func (c *Config) Bundle() fixture.Bundle {
	res := make(fixture.Bundle, 0, len(c.Fixtures.Bundle))
	for _, entry := range c.Fixtures.Bundle {
		res = append(res, fixture.BundleEntry{Name: entry.Name, File: entry.File})
	}
	return res
}

// RunnerConfig derives the runner configuration. Logger and history are
// left for the caller to fill in.
func (c *Config) RunnerConfig() runner.Config {
	interval, _ := c.progressInterval() // < checked by Validate
	return runner.Config{
		SkipCoinbase:     c.Run.SkipCoinbase,
		DenyList:         runner.NewDenyList(c.DenyList.Names...),
		FailFast:         c.Run.FailFast,
		PrimeFirstHeader: c.Run.PrimeFirstHeader,
		Jobs:             c.Run.Jobs,
		ShuffleSeed:      c.Run.ShuffleSeed,
		ProgressInterval: interval,
	}
}

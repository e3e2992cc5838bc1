// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config reads the configuration of the tools from a TOML file.
//
//	[canonicalize]
//	memoize = true
//	unique_constants = true
//	max_iterations = 8
//	jobs = 0
//
//	[dialect]
//	target_version = "v1.1.0"
package config

import (
	"io"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gx-org/pdir/internal/canonicalize"
	"github.com/pkg/errors"
	"golang.org/x/mod/semver"
)

type (
	// Config of the tools.
	Config struct {
		Canonicalize Canonicalize `toml:"canonicalize"`
		Dialect      Dialect      `toml:"dialect"`
	}

	// Canonicalize configures the canonicalization of graphs.
	Canonicalize struct {
		Memoize         bool `toml:"memoize"`
		UniqueConstants bool `toml:"unique_constants"`
		MaxIterations   int  `toml:"max_iterations"`
		// Jobs is the number of graphs canonicalized concurrently.
		// Zero means one per CPU.
		Jobs int `toml:"jobs"`
	}

	// Dialect selects the operations available to the front-end.
	Dialect struct {
		// TargetVersion rejects the operations introduced after that version.
		// An empty string accepts all operations.
		TargetVersion string `toml:"target_version"`
	}
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Canonicalize: Canonicalize{
			Memoize:         true,
			UniqueConstants: true,
			MaxIterations:   canonicalize.DefaultMaxIterations,
		},
	}
}

// Load reads a configuration file.
// Keys absent from the file keep their default value.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: cannot parse TOML", path)
	}
	if err := check(md); err != nil {
		return nil, errors.WithMessage(err, path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads a configuration from a string.
func Parse(data string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "cannot parse TOML")
	}
	if err := check(md); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func check(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, key := range undecoded {
		keys[i] = key.String()
	}
	sort.Strings(keys)
	return errors.Errorf("unknown configuration keys: %s", strings.Join(keys, ", "))
}

// Validate checks the values of the configuration.
func (cfg *Config) Validate() error {
	if cfg.Canonicalize.MaxIterations < 1 {
		return errors.Errorf("canonicalize.max_iterations must be at least 1, got %d", cfg.Canonicalize.MaxIterations)
	}
	if cfg.Canonicalize.Jobs < 0 {
		return errors.Errorf("canonicalize.jobs cannot be negative, got %d", cfg.Canonicalize.Jobs)
	}
	if v := cfg.Dialect.TargetVersion; v != "" && !semver.IsValid(v) {
		return errors.Errorf("dialect.target_version %q is not a semantic version", v)
	}
	return nil
}

// Options returns the canonicalization options of the configuration.
func (cfg *Config) Options() []canonicalize.Option {
	return []canonicalize.Option{
		canonicalize.WithMemoization(cfg.Canonicalize.Memoize),
		canonicalize.WithConstantUniquing(cfg.Canonicalize.UniqueConstants),
		canonicalize.WithMaxIterations(cfg.Canonicalize.MaxIterations),
		canonicalize.WithJobs(cfg.Canonicalize.Jobs),
	}
}

// Write encodes the configuration in TOML.
func (cfg *Config) Write(w io.Writer) error {
	return errors.Wrap(toml.NewEncoder(w).Encode(cfg), "cannot encode configuration")
}

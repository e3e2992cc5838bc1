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

package canonicalize

import (
	"io"
	"log/slog"
)

// DefaultMaxIterations is the default maximum number of passes over a graph.
const DefaultMaxIterations = 8

type (
	// Option configures a canonicalization run.
	Option func(*options)

	options struct {
		logger        *slog.Logger
		memoize       bool
		uniqueConsts  bool
		maxIterations int
		jobs          int
	}
)

func newOptions(opts []Option) *options {
	o := &options{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		memoize:       true,
		uniqueConsts:  true,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxIterations < 1 {
		o.maxIterations = 1
	}
	return o
}

// WithLogger sets the logger reporting the decisions of the canonicalizer.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMemoization enables or disables the memoization of operand literals
// within a pass.
func WithMemoization(memoize bool) Option {
	return func(o *options) {
		o.memoize = memoize
	}
}

// WithConstantUniquing enables or disables the reuse of identical constants.
func WithConstantUniquing(unique bool) Option {
	return func(o *options) {
		o.uniqueConsts = unique
	}
}

// WithMaxIterations sets the maximum number of passes over a graph.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithJobs sets the maximum number of graphs processed concurrently by RunAll.
// Zero or a negative value means GOMAXPROCS.
func WithJobs(jobs int) Option {
	return func(o *options) {
		o.jobs = jobs
	}
}

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

package main

import (
	"github.com/gx-org/pdir/build/dialect"
	"github.com/gx-org/pdir/build/ir"
	"github.com/gx-org/pdir/internal/frontend"
	"go.uber.org/multierr"
)

// loadGraphs loads the graphs of all files.
// Graphs loaded without error are returned with the errors of the others.
func loadGraphs(opts *RootOptions, ctx *dialect.Context, files []string) ([]*ir.Graph, error) {
	var (
		graphs []*ir.Graph
		errs   error
	)
	for _, file := range files {
		gs, err := frontend.LoadFile(ctx, file, frontend.WithTargetVersion(opts.cfg.Dialect.TargetVersion))
		graphs = append(graphs, gs...)
		errs = multierr.Append(errs, err)
		opts.logger.Debug("loaded", "file", file, "graphs", len(gs))
	}
	return graphs, errs
}

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
	"fmt"

	"github.com/gx-org/pdir/build/ir/irstring"
	"github.com/gx-org/pdir/internal/canonicalize"
	"github.com/spf13/cobra"
)

type foldOptions struct {
	locations bool
	stats     bool
	verify    bool
}

func newFoldCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &foldOptions{}
	cmd := &cobra.Command{
		Use:   "fold <file.yaml>...",
		Short: "Fold constant operations and print the resulting graphs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFold(cmd, rootOpts, opts, args)
		},
	}
	cmd.Flags().BoolVar(&opts.locations, "loc", false, "print the location of each operation")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print statistics about each graph")
	cmd.Flags().BoolVar(&opts.verify, "verify", true, "verify the graphs after folding")
	return cmd
}

func runFold(cmd *cobra.Command, rootOpts *RootOptions, opts *foldOptions, files []string) error {
	rep := newReporter(cmd.ErrOrStderr(), rootOpts)
	ctx, err := newContext()
	if err != nil {
		return err
	}
	graphs, loadErr := loadGraphs(rootOpts, ctx, files)
	canonOpts := append(rootOpts.cfg.Options(), canonicalize.WithLogger(rootOpts.logger))
	stats, runErr := canonicalize.RunAll(cmd.Context(), ctx, graphs, canonOpts...)
	for i, g := range graphs {
		s := stats[i]
		if opts.stats {
			rep.ok("graph %q: %d pass(es), %d folded, %d constant(s) created, %d reused, %d erased",
				g.Name(), s.Iterations, s.Folded, s.Materialized, s.Reused, s.Erased)
		}
		if skipped := s.InferenceFailures + s.FoldFailures; skipped > 0 {
			rep.warn("graph %q: %d operation(s) skipped, run with --verbose for details", g.Name(), skipped)
		}
	}
	var verifyErr error
	if opts.verify && runErr == nil {
		verifyErr = verifyAll(ctx, graphs)
	}
	fmt.Fprint(cmd.OutOrStdout(), irstring.Graphs(graphs, printOptions(opts.locations)...))
	return reportAll(rep, loadErr, runErr, verifyErr)
}

func printOptions(locations bool) []irstring.Option {
	if !locations {
		return nil
	}
	return []irstring.Option{irstring.WithLocations()}
}

// reportAll reports all the errors and returns errReported if any.
func reportAll(rep *reporter, errs ...error) error {
	var reported error
	for _, err := range errs {
		if rep.report(err) != nil {
			reported = errReported
		}
	}
	return reported
}

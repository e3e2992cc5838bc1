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
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file.yaml>...",
		Short: "Check that all operations match the contract of their dialect",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep := newReporter(cmd.ErrOrStderr(), rootOpts)
			ctx, err := newContext()
			if err != nil {
				return err
			}
			graphs, errs := loadGraphs(rootOpts, ctx, args)
			for _, g := range graphs {
				if err := dialect.Verify(ctx, g); err != nil {
					errs = multierr.Append(errs, err)
					continue
				}
				rep.ok("graph %q: %d operation(s)", g.Name(), g.Len())
			}
			return rep.report(errs)
		},
	}
}

// verifyAll verifies all the graphs and returns their errors combined.
func verifyAll(ctx *dialect.Context, graphs []*ir.Graph) error {
	var errs error
	for _, g := range graphs {
		errs = multierr.Append(errs, dialect.Verify(ctx, g))
	}
	return errs
}

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
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newOpsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List the operations of all dialects",
		Long: `List the operations of all dialects with their capabilities.
Operations not available in the target version of the configuration are marked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newContext()
			if err != nil {
				return err
			}
			target := rootOpts.cfg.Dialect.TargetVersion
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "OPERATION\tCAPABILITIES\tSINCE\tSUMMARY")
			for _, d := range ctx.Dialects() {
				for _, kind := range d.Kinds() {
					desc, _ := d.Lookup(kind)
					since := desc.Since
					if since == "" {
						since = "-"
					}
					if target != "" && !d.Supports(kind, target) {
						since += " (unavailable)"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", desc.FullName(), desc.Capabilities(), since, desc.Summary)
				}
			}
			return w.Flush()
		},
	}
}

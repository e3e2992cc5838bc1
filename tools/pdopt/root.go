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
	"log/slog"

	"github.com/gx-org/pdir/build/dialect"
	"github.com/gx-org/pdir/dialects/pd"
	"github.com/gx-org/pdir/internal/config"
	"github.com/spf13/cobra"
)

// RootOptions holds the flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Config  string
	NoColor bool

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand returns the pdopt command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	cmd := &cobra.Command{
		Use:   "pdopt",
		Short: "pdopt checks and folds graphs of the pd dialect",
		Long: `pdopt loads graphs described in YAML, verifies that every operation
matches the contract of its dialect and folds operations with literal operands
into constants.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log the decisions of the canonicalizer")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "TOML configuration file")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "disable colored diagnostics")

	cmd.AddCommand(newFoldCommand(opts))
	cmd.AddCommand(newVerifyCommand(opts))
	cmd.AddCommand(newOpsCommand(opts))
	cmd.AddCommand(newConfigCommand(opts))
	return cmd
}

func (opts *RootOptions) setup(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))
	if opts.Config == "" {
		opts.cfg = config.Default()
		return nil
	}
	var err error
	opts.cfg, err = config.Load(opts.Config)
	return err
}

func newContext() (*dialect.Context, error) {
	return pd.NewContext()
}

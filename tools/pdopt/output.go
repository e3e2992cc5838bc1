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
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gx-org/pdir/build/fmterr"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// errReported is returned by commands once their diagnostics have been printed.
var errReported = errors.New("errors reported")

type reporter struct {
	w       io.Writer
	verbose bool
	errTag  *color.Color
	okTag   *color.Color
	warnTag *color.Color
}

func newReporter(w io.Writer, opts *RootOptions) *reporter {
	r := &reporter{
		w:       w,
		verbose: opts.Verbose,
		errTag:  color.New(color.FgRed, color.Bold),
		okTag:   color.New(color.FgGreen, color.Bold),
		warnTag: color.New(color.FgYellow),
	}
	if opts.NoColor || !isTerminal(w) {
		r.errTag.DisableColor()
		r.okTag.DisableColor()
		r.warnTag.DisableColor()
	} else {
		r.errTag.EnableColor()
		r.okTag.EnableColor()
		r.warnTag.EnableColor()
	}
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// report prints every error combined in err on its own line.
// In verbose mode, errors are followed by their stack trace if available.
// It returns errReported if there was at least one error.
func (r *reporter) report(err error) error {
	errs := multierr.Errors(err)
	for _, err := range errs {
		msg := err.Error()
		if r.verbose {
			msg = fmterr.Verbose(err)
		}
		fmt.Fprintf(r.w, "%s %s\n", r.errTag.Sprint("error:"), msg)
	}
	if len(errs) == 0 {
		return nil
	}
	return errReported
}

func (r *reporter) ok(format string, a ...any) {
	fmt.Fprintf(r.w, "%s %s\n", r.okTag.Sprint("ok:"), fmt.Sprintf(format, a...))
}

func (r *reporter) warn(format string, a ...any) {
	fmt.Fprintf(r.w, "%s %s\n", r.warnTag.Sprint("warning:"), fmt.Sprintf(format, a...))
}

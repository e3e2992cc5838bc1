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

package fmterr

import (
	"go.uber.org/multierr"
)

// Appender accumulates diagnostics.
// The zero value is ready to use.
type Appender struct {
	stack []func(error) error
	errs  error
}

// Push a new context: errors appended until the matching Pop
// are transformed by f.
func (app *Appender) Push(f func(error) error) {
	app.stack = append(app.stack, f)
}

// Pop removes the last context.
func (app *Appender) Pop() {
	app.stack = app.stack[:len(app.stack)-1]
}

// Append an error to the list of errors.
// Always returns false so that callers can write `return app.Append(err)`
// in functions reporting success.
func (app *Appender) Append(err error) bool {
	if err == nil {
		return false
	}
	for i := len(app.stack) - 1; i >= 0; i-- {
		err = app.stack[i](err)
	}
	app.errs = multierr.Append(app.errs, err)
	return false
}

// Appendf appends an error at a location.
func (app *Appender) Appendf(loc Locator, format string, a ...any) bool {
	return app.Append(Errorf(loc, format, a...))
}

// AppendInternalf appends an internal error at a location.
func (app *Appender) AppendInternalf(loc Locator, format string, a ...any) bool {
	return app.Append(Internalf(loc, format, a...))
}

// Empty returns true if no error has been appended.
func (app *Appender) Empty() bool {
	return app.errs == nil
}

// Errors returns all the errors appended so far.
func (app *Appender) Errors() []error {
	return multierr.Errors(app.errs)
}

// Err returns all the errors combined in a single error or nil.
func (app *Appender) Err() error {
	return app.errs
}

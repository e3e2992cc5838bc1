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
	"fmt"
	"runtime/debug"

	"github.com/pkg/errors"
)

type (
	// ErrorWithPos is an error attached to a location in the IR.
	ErrorWithPos interface {
		error
		Loc() Locator
		Err() error
	}

	errorWithPos struct {
		loc Locator
		err error
	}
)

// Position adds location information to an error.
func Position(loc Locator, err error) ErrorWithPos {
	return errorWithPos{loc: loc, err: err}
}

// Errorf returns a formatted error at a location.
func Errorf(loc Locator, format string, a ...any) error {
	return Position(loc, errors.Errorf(format, a...))
}

type internalError struct {
	err error
}

// Internal marks an error as internal, that is an invariant of the IR
// or of a dialect definition has been violated.
func Internal(err error) error {
	return &internalError{err: err}
}

func (err *internalError) Error() string {
	return fmt.Sprintf("internal error: this is a bug in a dialect definition or in the IR. Error:\n%+v", err.err)
}

func (err *internalError) Unwrap() error {
	return err.err
}

// IsInternal returns true if the error, or any error it wraps, is internal.
func IsInternal(err error) bool {
	var target *internalError
	return errors.As(err, &target)
}

// Internalf returns a formatted internal error at a location.
func Internalf(loc Locator, format string, a ...any) error {
	return Internal(Errorf(loc, format, a...))
}

// Error returns a string description of the error.
func (err errorWithPos) Error() (s string) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		s = fmt.Sprintf("recovered from panic when building error message: %T:\n%v", err.err, string(debug.Stack()))
	}()
	return PosString(err.loc) + err.err.Error()
}

// Unwrap the error.
func (err errorWithPos) Unwrap() error {
	return err.err
}

// Format writes the error into the state of the formatter.
func (err errorWithPos) Format(s fmt.State, verb rune) {
	format(err, s, verb)
}

// Loc returns the location of the error.
func (err errorWithPos) Loc() Locator {
	return err.loc
}

// Err returns the error without location.
func (err errorWithPos) Err() error {
	return err.err
}

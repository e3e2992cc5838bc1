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

package dialect

import (
	"fmt"

	"github.com/gx-org/pdir/build/fmterr"
	"github.com/gx-org/pdir/build/ir"
	"github.com/pkg/errors"
)

// ErrFrozen is returned when registering an operation kind in a frozen dialect.
var ErrFrozen = errors.New("dialect is frozen")

type fatal interface {
	Fatal() bool
}

// IsFatal returns true if the error reports a defect in a dialect definition
// or in a caller of the builder. A fatal error aborts the compilation unit.
// Other errors are local to one operation and never abort a pass.
func IsFatal(err error) bool {
	if fmterr.IsInternal(err) {
		return true
	}
	var f fatal
	if !errors.As(err, &f) {
		return false
	}
	return f.Fatal()
}

type (
	// DuplicateKindError is returned when an operation kind is registered twice in a dialect.
	DuplicateKindError struct {
		Dialect string
		Kind    string
	}

	// UnknownKindError is returned when building an operation not registered in any dialect.
	UnknownKindError struct {
		Name string
		Loc  ir.Location
	}

	// UnsupportedAttributeKindError is returned when an attribute kind is not accepted by an operation.
	UnsupportedAttributeKindError struct {
		Op   string
		Attr string
		Kind ir.AttrKind
		Loc  ir.Location
	}

	// InvalidOperationError is returned when operands or attributes do not match
	// the schema of an operation.
	InvalidOperationError struct {
		Op     string
		Loc    ir.Location
		Reason string
	}

	// TypeInferenceError is returned when the result types of an operation cannot be inferred.
	TypeInferenceError struct {
		Op  string
		Loc ir.Location
		Err error
	}

	// FoldError is returned when the fold function of an operation failed.
	FoldError struct {
		Op  string
		Loc ir.Location
		Err error
	}

	// FoldContractError is returned when a fold function returned attributes
	// not matching the results of its operation.
	FoldContractError struct {
		Op     string
		Loc    ir.Location
		Reason string
	}

	// MaterializeError is returned when a dialect cannot materialize a literal
	// as an operation producing a value of a given type.
	MaterializeError struct {
		Dialect string
		Value   ir.Attribute
		Type    ir.Type
		Reason  string
	}
)

func (err *DuplicateKindError) Error() string {
	return fmt.Sprintf("dialect %s: operation kind %q already registered", err.Dialect, err.Kind)
}

// Fatal returns true.
func (*DuplicateKindError) Fatal() bool { return true }

func (err *UnknownKindError) Error() string {
	return fmterr.PosString(err.Loc) + fmt.Sprintf("unknown operation %q", err.Name)
}

// Fatal returns true.
func (*UnknownKindError) Fatal() bool { return true }

func (err *UnsupportedAttributeKindError) Error() string {
	return fmterr.PosString(err.Loc) + fmt.Sprintf("%s: attribute %q: unsupported attribute kind %s", err.Op, err.Attr, err.Kind)
}

// Fatal returns true.
func (*UnsupportedAttributeKindError) Fatal() bool { return true }

func (err *InvalidOperationError) Error() string {
	return fmterr.PosString(err.Loc) + fmt.Sprintf("%s: %s", err.Op, err.Reason)
}

// Fatal returns true.
func (*InvalidOperationError) Fatal() bool { return true }

func (err *TypeInferenceError) Error() string {
	return fmterr.PosString(err.Loc) + fmt.Sprintf("%s: cannot infer result types: %v", err.Op, err.Err)
}

// Unwrap returns the underlying error.
func (err *TypeInferenceError) Unwrap() error { return err.Err }

// Fatal returns false: a pass skips the operation and continues.
func (*TypeInferenceError) Fatal() bool { return false }

func (err *FoldError) Error() string {
	return fmterr.PosString(err.Loc) + fmt.Sprintf("%s: cannot fold: %v", err.Op, err.Err)
}

// Unwrap returns the underlying error.
func (err *FoldError) Unwrap() error { return err.Err }

// Fatal returns false: the operation is left unchanged.
func (*FoldError) Fatal() bool { return false }

func (err *FoldContractError) Error() string {
	return fmterr.PosString(err.Loc) + fmt.Sprintf("%s: invalid fold result: %s", err.Op, err.Reason)
}

// Fatal returns true.
func (*FoldContractError) Fatal() bool { return true }

func (err *MaterializeError) Error() string {
	return fmt.Sprintf("dialect %s: cannot materialize %s as %s: %s", err.Dialect, err.Value, err.Type, err.Reason)
}

// Fatal returns true.
func (*MaterializeError) Fatal() bool { return true }

// UnsupportedAttribute returns the error reported by a custom build function
// when it does not know how to handle an attribute.
func UnsupportedAttribute(st *ir.OperationState, name string, attr ir.Attribute) error {
	kind := ir.InvalidAttrKind
	if attr != nil {
		kind = attr.Kind()
	}
	return &UnsupportedAttributeKindError{
		Op:   st.Name,
		Attr: name,
		Kind: kind,
		Loc:  st.Location,
	}
}

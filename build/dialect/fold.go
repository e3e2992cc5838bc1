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
	"github.com/gx-org/pdir/build/ir"
	"github.com/pkg/errors"
)

// FoldResult is the outcome of folding an operation.
type FoldResult struct {
	applicable bool
	attrs      []ir.Attribute
}

// NotApplicable is returned when an operation cannot be folded.
// It is a normal outcome, not an error.
var NotApplicable = FoldResult{}

// Folded returns a fold result with one literal per result of the operation.
func Folded(attrs ...ir.Attribute) FoldResult {
	return FoldResult{applicable: true, attrs: attrs}
}

// Applicable returns true if the operation has been folded.
func (r FoldResult) Applicable() bool {
	return r.applicable
}

// Attrs returns the literals of the operation results.
func (r FoldResult) Attrs() []ir.Attribute {
	return r.attrs
}

// FolderOption configures a folder.
type FolderOption func(*Folder)

// WithMemo enables or disables the memoization of operand literals
// across calls. Memoization is enabled by default.
func WithMemo(memo bool) FolderOption {
	return func(f *Folder) {
		f.memoize = memo
	}
}

// Folder folds operations into literals.
//
// A folder never mutates a graph. When memoization is enabled, the literal
// computed for a value is cached for the lifetime of the folder: it remains
// valid as long as the graph is only rewritten by replacing values with
// literals of the same content. When it is disabled, literals are only cached
// during a call to Fold or ConstantValue, so that a value shared by several
// operands is folded once per call. A folder must only be used by one goroutine.
type Folder struct {
	ctx     *Context
	memoize bool
	memo    map[*ir.Value]ir.Attribute

	hits, misses int
}

// NewFolder returns a new folder.
func NewFolder(ctx *Context, opts ...FolderOption) *Folder {
	f := &Folder{ctx: ctx, memoize: true}
	for _, opt := range opts {
		opt(f)
	}
	if f.memoize {
		f.memo = make(map[*ir.Value]ir.Attribute)
	}
	return f
}

// Fold attempts to fold an operation.
//
// NotApplicable is returned if the operation kind does not implement fold or
// if its fold function declined. A *FoldError is returned if the fold function
// failed and a fatal *FoldContractError if it returned literals not matching
// the results of the operation.
func (f *Folder) Fold(op *ir.Operation) (FoldResult, error) {
	defer f.scope()()
	desc, ok := f.ctx.Lookup(op.Name())
	if !ok {
		return NotApplicable, &UnknownKindError{Name: op.Name(), Loc: op.Location()}
	}
	if desc.Fold == nil {
		return NotApplicable, nil
	}
	operands := make([]ir.Attribute, op.NumOperands())
	for i, operand := range op.Operands() {
		operands[i] = f.ConstantValue(operand)
	}
	res, err := desc.Fold(op, operands)
	if err != nil {
		return NotApplicable, &FoldError{Op: op.Name(), Loc: op.Location(), Err: err}
	}
	if !res.Applicable() {
		return NotApplicable, nil
	}
	if err := checkFoldResult(op, res); err != nil {
		return NotApplicable, err
	}
	return res, nil
}

func checkFoldResult(op *ir.Operation, res FoldResult) error {
	contractErr := func(format string, a ...any) error {
		return &FoldContractError{Op: op.Name(), Loc: op.Location(), Reason: errors.Errorf(format, a...).Error()}
	}
	if len(res.attrs) != op.NumResults() {
		return contractErr("folded into %d literal(s) but the operation has %d result(s)", len(res.attrs), op.NumResults())
	}
	for i, attr := range res.attrs {
		if attr == nil {
			return contractErr("no literal for result %d", i)
		}
		if !attr.Kind().IsLiteral() {
			return contractErr("result %d folded into a non-literal attribute %s", i, attr)
		}
		want, ok := ir.AsTensor(op.Result(i).Type())
		if !ok || !ir.CanonicalType(attr).Equal(want) {
			return contractErr("result %d of type %s folded into %s", i, op.Result(i).Type(), attr)
		}
	}
	return nil
}

// ConstantValue returns the literal of a value or nil if the value
// is not known at compile time.
//
// The literal is computed by folding the defining operation of the value
// and, recursively, the operations defining its operands.
// Errors from nested folds are not reported: folding the defining
// operation directly reports them.
func (f *Folder) ConstantValue(v *ir.Value) ir.Attribute {
	defer f.scope()()
	if attr, ok := f.memo[v]; ok {
		f.hits++
		return attr
	}
	f.misses++
	var attr ir.Attribute
	if def := v.DefiningOp(); def != nil {
		if res, err := f.Fold(def); err == nil && res.Applicable() {
			attr = res.attrs[v.ResultIndex()]
		}
	}
	f.memo[v] = attr
	return attr
}

// scope creates the memo of a top-level call when memoization across calls
// is disabled. The returned function drops it.
func (f *Folder) scope() func() {
	if f.memo != nil {
		return func() {}
	}
	f.memo = make(map[*ir.Value]ir.Attribute)
	return func() { f.memo = nil }
}

// MemoStats returns the number of operand literals found in the memo
// and the number of operand literals computed.
func (f *Folder) MemoStats() (hits, misses int) {
	return f.hits, f.misses
}

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
	"github.com/gx-org/pdir/build/fmterr"
	"github.com/gx-org/pdir/build/ir"
)

// Verify checks that all the operations of a graph are consistent
// with their descriptors:
//   - the operation kind is registered,
//   - operands and attributes match the schema of the operation,
//   - the declared result types are equal to the inferred types,
//   - operands are defined by earlier operations of the graph.
//
// All the violations are returned combined in a single error.
func Verify(ctx *Context, g *ir.Graph) error {
	var app fmterr.Appender
	app.Push(fmterr.PrefixWith("graph %q: ", g.Name()))
	defined := make(map[*ir.Value]bool)
	for _, op := range g.Ops() {
		verifyOp(ctx, &app, defined, op)
		for _, res := range op.Results() {
			defined[res] = true
		}
	}
	app.Pop()
	return app.Err()
}

func verifyOp(ctx *Context, app *fmterr.Appender, defined map[*ir.Value]bool, op *ir.Operation) bool {
	desc, ok := ctx.Lookup(op.Name())
	if !ok {
		return app.Append(&UnknownKindError{Name: op.Name(), Loc: op.Location()})
	}
	for i, operand := range op.Operands() {
		if !defined[operand] {
			app.Appendf(op.Location(), "%s: operand %d is not defined before its use", op.Name(), i)
		}
	}
	st := &ir.OperationState{
		Name:     op.Name(),
		Location: op.Location(),
		Operands: op.Operands(),
		Attrs:    op.Attrs(),
	}
	if err := desc.checkOperands(st); err != nil {
		return app.Append(err)
	}
	if err := desc.checkAttrs(st); err != nil {
		return app.Append(err)
	}
	if op.NumResults() != desc.NumResults {
		// The builder never creates such an operation.
		return app.AppendInternalf(op.Location(), "%s: %d result(s) but the operation kind declares %d", op.Name(), op.NumResults(), desc.NumResults)
	}
	if desc.InferReturnTypes == nil {
		return true
	}
	inferred, err := ctx.InferOp(op)
	if err != nil {
		return app.Append(err)
	}
	if diff := sameTypes(op.ResultTypes(), inferred); diff != "" {
		return app.Appendf(op.Location(), "%s: declared result types differ from inferred types: %s", op.Name(), diff)
	}
	return true
}

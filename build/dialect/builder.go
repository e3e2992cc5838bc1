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

// Builder creates operations and inserts them in a graph.
type Builder struct {
	ctx    *Context
	graph  *ir.Graph
	before *ir.Operation
	loc    ir.Location
}

// NewBuilder returns a builder appending operations at the end of a graph.
// Operations are created detached if the graph is nil.
func NewBuilder(ctx *Context, g *ir.Graph) *Builder {
	return &Builder{ctx: ctx, graph: g}
}

// Context returns the dialect context of the builder.
func (b *Builder) Context() *Context {
	return b.ctx
}

// Graph returns the graph in which operations are inserted.
func (b *Builder) Graph() *ir.Graph {
	return b.graph
}

// At returns a copy of the builder creating operations at a given location.
func (b *Builder) At(loc ir.Location) *Builder {
	nb := *b
	nb.loc = loc
	return &nb
}

// Before returns a copy of the builder inserting operations before op.
// If op is nil, operations are appended at the end of the graph.
func (b *Builder) Before(op *ir.Operation) *Builder {
	nb := *b
	nb.before = op
	return &nb
}

// Location returns the location given to new operations.
func (b *Builder) Location() ir.Location {
	return b.loc
}

// Build creates an operation given its full name, its operands and its attributes.
//
// The operation is only created and inserted into the graph if all the checks
// passed: no partially constructed operation is ever visible.
// The result types are set by the custom build function of the operation if it has one,
// or by type inference otherwise.
func (b *Builder) Build(name string, operands []*ir.Value, attrs ...ir.NamedAttr) (*ir.Operation, error) {
	desc, ok := b.ctx.Lookup(name)
	if !ok {
		return nil, &UnknownKindError{Name: name, Loc: b.loc}
	}
	st := &ir.OperationState{
		Name:     desc.FullName(),
		Location: b.loc,
		Operands: operands,
	}
	var err error
	if st.Attrs, err = ir.NewAttrs(attrs...); err != nil {
		return nil, &InvalidOperationError{Op: st.Name, Loc: b.loc, Reason: err.Error()}
	}
	if err := desc.checkOperands(st); err != nil {
		return nil, err
	}
	for _, operand := range operands {
		if operand == nil {
			return nil, &InvalidOperationError{Op: st.Name, Loc: b.loc, Reason: "nil operand"}
		}
		if def := operand.DefiningOp(); def != nil && def.Erased() {
			return nil, &InvalidOperationError{Op: st.Name, Loc: b.loc, Reason: "operand defined by erased operation " + def.Name()}
		}
	}
	if err := desc.checkAttrs(st); err != nil {
		return nil, err
	}
	if err := b.fillResultTypes(desc, st); err != nil {
		return nil, err
	}
	return b.create(st)
}

// MustBuild builds an operation and panics if an error occurred.
func (b *Builder) MustBuild(name string, operands []*ir.Value, attrs ...ir.NamedAttr) *ir.Operation {
	op, err := b.Build(name, operands, attrs...)
	if err != nil {
		panic(err)
	}
	return op
}

func (b *Builder) fillResultTypes(desc *Descriptor, st *ir.OperationState) error {
	if desc.Build != nil {
		if err := desc.Build(st); err != nil {
			return err
		}
	} else if desc.NumResults > 0 {
		types, err := b.ctx.infer(desc, b.inferContext(st))
		if err != nil {
			return err
		}
		st.ResultTypes = types
	}
	if len(st.ResultTypes) != desc.NumResults {
		return fmterr.Internalf(st.Location, "%s: built %d result type(s) instead of %d", st.Name, len(st.ResultTypes), desc.NumResults)
	}
	if desc.Build == nil || desc.InferReturnTypes == nil {
		return nil
	}
	// The custom build function and type inference must agree.
	inferred, err := b.ctx.infer(desc, b.inferContext(st))
	if err != nil {
		return err
	}
	if diff := sameTypes(st.ResultTypes, inferred); diff != "" {
		return fmterr.Internalf(st.Location, "%s: inferred types differ from built types: %s", st.Name, diff)
	}
	return nil
}

func (b *Builder) inferContext(st *ir.OperationState) *InferContext {
	return &InferContext{
		Context:  b.ctx,
		Location: st.Location,
		Operands: st.OperandTypes(),
		Attrs:    st.Attrs,
		Regions:  st.Regions,
	}
}

func (b *Builder) create(st *ir.OperationState) (*ir.Operation, error) {
	op, err := ir.NewOperation(st)
	if err != nil {
		return nil, fmterr.Internal(fmterr.Position(st.Location, err))
	}
	if b.graph == nil {
		return op, nil
	}
	if err := b.graph.Insert(op, b.before); err != nil {
		return nil, fmterr.Internal(fmterr.Position(st.Location, err))
	}
	return op, nil
}

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

package ir

import (
	"strings"

	"github.com/pkg/errors"
)

type (
	// Value is a typed handle to one result of an operation.
	// A value is defined by exactly one operation and is used by
	// zero or more operations.
	Value struct {
		def   *Operation
		index int
		typ   Type
		uses  []Use
	}

	// Use of a value as an operand.
	Use struct {
		// Op is the operation using the value.
		Op *Operation
		// Index is the position of the value in the operands of Op.
		Index int
	}

	// Region is a nested list of operations owned by an operation.
	// Regions are carried through the protocol but never populated by this package.
	Region struct {
		Ops []*Operation
	}

	// OperationState gathers everything required to create an operation.
	// Builders fill a state before any operation is created so that a failure
	// never leaves a partially constructed operation behind.
	OperationState struct {
		Name        string
		Location    Location
		Operands    []*Value
		Attrs       *Attrs
		ResultTypes []Type
		Regions     []*Region
	}

	// Operation is a node of the IR.
	Operation struct {
		name     string
		loc      Location
		operands []*Value
		attrs    *Attrs
		results  []*Value
		regions  []*Region

		graph  *Graph
		erased bool
	}
)

// Type of the value.
func (v *Value) Type() Type {
	return v.typ
}

// DefiningOp returns the operation producing the value.
func (v *Value) DefiningOp() *Operation {
	return v.def
}

// ResultIndex returns the index of the value in the results of its defining operation.
func (v *Value) ResultIndex() int {
	return v.index
}

// Uses returns the list of operations using the value.
func (v *Value) Uses() []Use {
	return append([]Use{}, v.uses...)
}

// HasUses returns true if at least one operation uses the value.
func (v *Value) HasUses() bool {
	return len(v.uses) > 0
}

func (v *Value) addUse(op *Operation, index int) {
	v.uses = append(v.uses, Use{Op: op, Index: index})
}

func (v *Value) removeUse(op *Operation, index int) {
	for i, use := range v.uses {
		if use.Op == op && use.Index == index {
			v.uses = append(v.uses[:i], v.uses[i+1:]...)
			return
		}
	}
}

// AddOperands appends operands to the state.
func (st *OperationState) AddOperands(vals ...*Value) {
	st.Operands = append(st.Operands, vals...)
}

// AddTypes appends result types to the state.
func (st *OperationState) AddTypes(types ...Type) {
	st.ResultTypes = append(st.ResultTypes, types...)
}

// SetAttr sets an attribute of the state.
func (st *OperationState) SetAttr(name string, val Attribute) {
	st.Attrs = st.Attrs.With(name, val)
}

// OperandTypes returns the types of the operands of the state.
func (st *OperationState) OperandTypes() []Type {
	return valueTypes(st.Operands)
}

// NewOperation creates a detached operation from a state.
// The operation registers itself as a user of its operands.
func NewOperation(st *OperationState) (*Operation, error) {
	if st.Name == "" {
		return nil, errors.Errorf("operation has no name")
	}
	for i, operand := range st.Operands {
		if operand == nil {
			return nil, errors.Errorf("%s: operand %d is nil", st.Name, i)
		}
		if operand.def != nil && operand.def.erased {
			return nil, errors.Errorf("%s: operand %d is defined by an erased operation", st.Name, i)
		}
	}
	for i, typ := range st.ResultTypes {
		if typ == nil {
			return nil, errors.Errorf("%s: result %d has no type", st.Name, i)
		}
	}
	op := &Operation{
		name:     st.Name,
		loc:      st.Location,
		operands: append([]*Value{}, st.Operands...),
		attrs:    st.Attrs,
		regions:  append([]*Region{}, st.Regions...),
	}
	if op.attrs == nil {
		op.attrs = &Attrs{}
	}
	op.results = make([]*Value, len(st.ResultTypes))
	for i, typ := range st.ResultTypes {
		op.results[i] = &Value{def: op, index: i, typ: typ}
	}
	for i, operand := range op.operands {
		operand.addUse(op, i)
	}
	return op, nil
}

// Name returns the full name of the operation, for example pd.constant.
func (op *Operation) Name() string {
	return op.name
}

// DialectName returns the namespace of the operation name.
func (op *Operation) DialectName() string {
	dialect, _, _ := SplitName(op.name)
	return dialect
}

// Location of the operation.
func (op *Operation) Location() Location {
	return op.loc
}

// NumOperands returns the number of operands.
func (op *Operation) NumOperands() int {
	return len(op.operands)
}

// Operand returns the ith operand.
func (op *Operation) Operand(i int) *Value {
	return op.operands[i]
}

// Operands returns all the operands.
func (op *Operation) Operands() []*Value {
	return append([]*Value{}, op.operands...)
}

// OperandTypes returns the types of all the operands.
func (op *Operation) OperandTypes() []Type {
	return valueTypes(op.operands)
}

// Attrs returns the attribute dictionary of the operation.
func (op *Operation) Attrs() *Attrs {
	return op.attrs
}

// Attr returns an attribute given its name.
func (op *Operation) Attr(name string) (Attribute, bool) {
	return op.attrs.Get(name)
}

// NumResults returns the number of results.
func (op *Operation) NumResults() int {
	return len(op.results)
}

// Result returns the ith result.
func (op *Operation) Result(i int) *Value {
	return op.results[i]
}

// Results returns all the results.
func (op *Operation) Results() []*Value {
	return append([]*Value{}, op.results...)
}

// ResultTypes returns the types of all the results.
func (op *Operation) ResultTypes() []Type {
	return valueTypes(op.results)
}

// Regions returns the regions owned by the operation.
func (op *Operation) Regions() []*Region {
	return append([]*Region{}, op.regions...)
}

// Graph returns the graph the operation has been inserted in.
// Returns nil if the operation is detached.
func (op *Operation) Graph() *Graph {
	return op.graph
}

// Erased returns true if the operation has been erased from its graph.
func (op *Operation) Erased() bool {
	return op.erased
}

// HasUses returns true if any result of the operation is used.
func (op *Operation) HasUses() bool {
	for _, res := range op.results {
		if res.HasUses() {
			return true
		}
	}
	return false
}

func (op *Operation) setOperand(i int, val *Value) {
	op.operands[i].removeUse(op, i)
	op.operands[i] = val
	val.addUse(op, i)
}

func (op *Operation) dropOperands() {
	for i, operand := range op.operands {
		operand.removeUse(op, i)
	}
}

func (op *Operation) String() string {
	var b strings.Builder
	b.WriteString(op.name)
	b.WriteString(op.attrs.String())
	b.WriteString(" : (")
	for i, typ := range op.OperandTypes() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(typ.String())
	}
	b.WriteString(") -> (")
	for i, typ := range op.ResultTypes() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(typ.String())
	}
	b.WriteString(")")
	return b.String()
}

// SplitName splits an operation name into its dialect namespace and its kind.
func SplitName(name string) (dialect, kind string, ok bool) {
	return strings.Cut(name, ".")
}

func valueTypes(vals []*Value) []Type {
	types := make([]Type, len(vals))
	for i, val := range vals {
		types[i] = val.typ
	}
	return types
}

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

package pd

import (
	"slices"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/pdir/build/dialect"
	"github.com/gx-org/pdir/build/ir"
	"github.com/pkg/errors"
)

func elementwiseDescriptor(name, summary string, k binaryKernel) *dialect.Descriptor {
	return &dialect.Descriptor{
		Name:    name,
		Summary: summary,
		Operands: []dialect.OperandSpec{
			{Name: "x"},
			{Name: "y"},
		},
		NumResults:       1,
		Pure:             true,
		InferReturnTypes: inferElementwise,
		Fold: func(op *ir.Operation, operands []ir.Attribute) (dialect.FoldResult, error) {
			return foldElementwise(op, operands, k)
		},
	}
}

// inferElementwise returns the type of the operand with the highest rank.
// Both operands must have the same type or one of them must be of rank 0.
func inferElementwise(ic *dialect.InferContext) ([]ir.Type, error) {
	x, err := operandTensor(ic.Operands, 0, "x")
	if err != nil {
		return nil, err
	}
	y, err := operandTensor(ic.Operands, 1, "y")
	if err != nil {
		return nil, err
	}
	if x.DType() != y.DType() {
		return nil, ic.Errorf("mismatched data types %s and %s", ir.DTypeName(x.DType()), ir.DTypeName(y.DType()))
	}
	if x.DType() == dtype.Bool {
		return nil, ic.Errorf("arithmetic is not defined on %s", x)
	}
	switch {
	case x.Equal(y):
		return []ir.Type{x}, nil
	case y.Rank() == 0:
		return []ir.Type{x}, nil
	case x.Rank() == 0:
		return []ir.Type{y}, nil
	case x.Rank() == y.Rank() && compatibleDims(x.Dims(), y.Dims()):
		return []ir.Type{ir.Tensor(x.DType(), mergeDims(x.Dims(), y.Dims())...)}, nil
	}
	return nil, ic.Errorf("incompatible operand types %s and %s", x, y)
}

func compatibleDims(x, y []int) bool {
	for i, dim := range x {
		if dim != y[i] && dim != ir.DynamicDim && y[i] != ir.DynamicDim {
			return false
		}
	}
	return true
}

// mergeDims returns the axis lengths of two compatible shapes
// where dynamic axes are resolved when one of the shapes knows their length.
func mergeDims(x, y []int) []int {
	dims := slices.Clone(x)
	for i, dim := range dims {
		if dim == ir.DynamicDim {
			dims[i] = y[i]
		}
	}
	return dims
}

func foldElementwise(op *ir.Operation, operands []ir.Attribute, k binaryKernel) (dialect.FoldResult, error) {
	x, y := literalOperand(operands, 0), literalOperand(operands, 1)
	if x == nil || y == nil {
		return dialect.NotApplicable, nil
	}
	typ, ok := resultTensor(op, 0)
	if !ok {
		return dialect.NotApplicable, nil
	}
	lit, err := zipElements(typ, x, y, k)
	if errors.Is(err, errOverflow) {
		return dialect.NotApplicable, nil
	}
	if err != nil {
		return dialect.NotApplicable, err
	}
	return dialect.Folded(lit), nil
}

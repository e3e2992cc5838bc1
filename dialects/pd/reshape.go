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
	"github.com/gx-org/pdir/build/dialect"
	"github.com/gx-org/pdir/build/ir"
)

const shapeAttr = "shape"

func reshapeDescriptor() *dialect.Descriptor {
	return &dialect.Descriptor{
		Name:     "reshape",
		Summary:  "Changes the shape of a tensor without changing its elements.",
		Operands: []dialect.OperandSpec{{Name: "x"}},
		Attrs: []dialect.AttrSpec{
			{Name: shapeAttr, Kinds: []ir.AttrKind{ir.IntsKind}},
		},
		NumResults:       1,
		Pure:             true,
		InferReturnTypes: inferReshape,
		Fold:             foldReshape,
	}
}

// inferReshape computes the target shape.
// An axis length of 0 copies the length of the same axis of the operand.
// At most one axis length can be -1: it is inferred from the number of elements.
func inferReshape(ic *dialect.InferContext) ([]ir.Type, error) {
	x, err := operandTensor(ic.Operands, 0, "x")
	if err != nil {
		return nil, err
	}
	dims, err := dimsParam(ic.Attrs, shapeAttr)
	if err != nil {
		return nil, err
	}
	inferred := -1
	known := 1
	for i, dim := range dims {
		switch {
		case dim == ir.DynamicDim:
			if inferred >= 0 {
				return nil, ic.Errorf("shape %v: only one axis length can be inferred", dims)
			}
			inferred = i
		case dim == 0:
			if i >= x.Rank() {
				return nil, ic.Errorf("shape %v: axis %d cannot be copied from %s", dims, i, x)
			}
			dims[i] = x.Dim(i)
			if dims[i] == ir.DynamicDim {
				known = -1
			} else if known >= 0 {
				known *= dims[i]
			}
		default:
			if known >= 0 {
				known *= dim
			}
		}
	}
	numElements := x.NumElements()
	if numElements == ir.DynamicDim || known < 0 {
		return []ir.Type{ir.Tensor(x.DType(), dims...)}, nil
	}
	if inferred >= 0 {
		if known == 0 || numElements%known != 0 {
			return nil, ic.Errorf("cannot reshape %s to %v", x, dims)
		}
		dims[inferred] = numElements / known
	} else if known != numElements {
		return nil, ic.Errorf("cannot reshape %s with %d elements to %v", x, numElements, dims)
	}
	return []ir.Type{ir.Tensor(x.DType(), dims...)}, nil
}

func foldReshape(op *ir.Operation, operands []ir.Attribute) (dialect.FoldResult, error) {
	x := literalOperand(operands, 0)
	if x == nil {
		return dialect.NotApplicable, nil
	}
	typ, ok := resultTensor(op, 0)
	if !ok {
		return dialect.NotApplicable, nil
	}
	lit, err := x.Reshape(typ)
	if err != nil {
		return dialect.NotApplicable, err
	}
	return dialect.Folded(lit), nil
}

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
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/pdir/build/dialect"
	"github.com/gx-org/pdir/build/ir"
)

func reluDescriptor() *dialect.Descriptor {
	return &dialect.Descriptor{
		Name:             "relu",
		Summary:          "Rectified linear unit: max(x, 0).",
		Operands:         []dialect.OperandSpec{{Name: "x"}},
		NumResults:       1,
		Pure:             true,
		InferReturnTypes: inferRelu,
		Fold:             foldRelu,
	}
}

func inferRelu(ic *dialect.InferContext) ([]ir.Type, error) {
	x, err := operandTensor(ic.Operands, 0, "x")
	if err != nil {
		return nil, err
	}
	if x.DType() == dtype.Bool {
		return nil, ic.Errorf("relu is not defined on %s", x)
	}
	return []ir.Type{x}, nil
}

func foldRelu(op *ir.Operation, operands []ir.Attribute) (dialect.FoldResult, error) {
	x := literalOperand(operands, 0)
	if x == nil {
		return dialect.NotApplicable, nil
	}
	typ, ok := resultTensor(op, 0)
	if !ok {
		return dialect.NotApplicable, nil
	}
	lit, err := mapElements(typ, x, relu)
	if err != nil {
		return dialect.NotApplicable, err
	}
	return dialect.Folded(lit), nil
}

const (
	scaleAttr = "scale"
	biasAttr  = "bias"
)

func scaleDescriptor() *dialect.Descriptor {
	return &dialect.Descriptor{
		Name:     "scale",
		Summary:  "Computes x*scale + bias.",
		Operands: []dialect.OperandSpec{{Name: "x"}},
		Attrs: []dialect.AttrSpec{
			{Name: scaleAttr, Kinds: []ir.AttrKind{ir.FloatKind}, Optional: true},
			{Name: biasAttr, Kinds: []ir.AttrKind{ir.FloatKind}, Optional: true},
		},
		NumResults:       1,
		Pure:             true,
		InferReturnTypes: inferScale,
		Fold:             foldScale,
	}
}

func inferScale(ic *dialect.InferContext) ([]ir.Type, error) {
	x, err := operandTensor(ic.Operands, 0, "x")
	if err != nil {
		return nil, err
	}
	if !ir.IsFloatDType(x.DType()) {
		return nil, ic.Errorf("scale requires a float operand but got %s", x)
	}
	return []ir.Type{x}, nil
}

func foldScale(op *ir.Operation, operands []ir.Attribute) (dialect.FoldResult, error) {
	x := literalOperand(operands, 0)
	if x == nil {
		return dialect.NotApplicable, nil
	}
	typ, ok := resultTensor(op, 0)
	if !ok {
		return dialect.NotApplicable, nil
	}
	scale, err := floatParam(op.Attrs(), scaleAttr, 1)
	if err != nil {
		return dialect.NotApplicable, err
	}
	bias, err := floatParam(op.Attrs(), biasAttr, 0)
	if err != nil {
		return dialect.NotApplicable, err
	}
	dt := typ.DType()
	lit, err := mapElements(typ, x, func(v ir.ScalarAttr) (ir.ScalarAttr, error) {
		f := v.(ir.FloatAttr).Value()
		if dt == dtype.Float64 {
			return ir.NewFloat(dt, f*scale+bias)
		}
		return ir.NewFloat(dt, float64(float32(f)*float32(scale)+float32(bias)))
	})
	if err != nil {
		return dialect.NotApplicable, err
	}
	return dialect.Folded(lit), nil
}

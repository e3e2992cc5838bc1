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
	"fortio.org/safecast"
	"github.com/gx-org/pdir/build/ir"
	"github.com/pkg/errors"
)

func intParam(attrs *ir.Attrs, name string) (int, error) {
	attr, ok := attrs.Get(name)
	if !ok {
		return 0, errors.Errorf("missing attribute %q", name)
	}
	intAttr, ok := attr.(ir.IntAttr)
	if !ok {
		return 0, errors.Errorf("attribute %q: %s is not an integer", name, attr)
	}
	val, err := safecast.Conv[int](intAttr.Value())
	if err != nil {
		return 0, errors.Wrapf(err, "attribute %q", name)
	}
	return val, nil
}

func floatParam(attrs *ir.Attrs, name string, def float64) (float64, error) {
	attr, ok := attrs.Get(name)
	if !ok {
		return def, nil
	}
	floatAttr, ok := attr.(ir.FloatAttr)
	if !ok {
		return 0, errors.Errorf("attribute %q: %s is not a float", name, attr)
	}
	return floatAttr.Value(), nil
}

func stringParam(attrs *ir.Attrs, name string) (string, error) {
	attr, ok := attrs.Get(name)
	if !ok {
		return "", errors.Errorf("missing attribute %q", name)
	}
	strAttr, ok := attr.(ir.StringAttr)
	if !ok {
		return "", errors.Errorf("attribute %q: %s is not a string", name, attr)
	}
	return strAttr.Val, nil
}

// dimsParam returns a list of axis lengths from an attribute.
// A negative axis length is returned as ir.DynamicDim.
func dimsParam(attrs *ir.Attrs, name string) ([]int, error) {
	attr, ok := attrs.Get(name)
	if !ok {
		return nil, errors.Errorf("missing attribute %q", name)
	}
	intsAttr, ok := attr.(ir.IntsAttr)
	if !ok {
		return nil, errors.Errorf("attribute %q: %s is not a list of integers", name, attr)
	}
	dims := make([]int, intsAttr.Len())
	for i, v := range intsAttr.Values() {
		if v < 0 {
			dims[i] = ir.DynamicDim
			continue
		}
		dim, err := safecast.Conv[int](v)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %q: axis %d", name, i)
		}
		dims[i] = dim
	}
	return dims, nil
}

// operandTensor returns the tensor type of an operand.
func operandTensor(operands []ir.Type, i int, name string) (*ir.TensorType, error) {
	if i >= len(operands) {
		return nil, errors.Errorf("missing operand %s", name)
	}
	typ, ok := ir.AsTensor(operands[i])
	if !ok {
		return nil, errors.Errorf("operand %s of type %s is not a tensor", name, operands[i])
	}
	return typ, nil
}

// literalOperand returns the canonical literal of an operand or nil if the
// operand is not known at compile time.
func literalOperand(operands []ir.Attribute, i int) *ir.ElementsAttr {
	if i >= len(operands) || operands[i] == nil {
		return nil
	}
	lit, err := ir.Canonicalize(operands[i])
	if err != nil {
		return nil
	}
	return lit
}

// resultTensor returns the tensor type of the ith result of an operation.
func resultTensor(op *ir.Operation, i int) (*ir.TensorType, bool) {
	typ, ok := ir.AsTensor(op.Result(i).Type())
	if !ok || !typ.IsStatic() {
		return nil, false
	}
	return typ, true
}

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
	"github.com/pkg/errors"
)

const valueAttr = "value"

var literalKinds = []ir.AttrKind{ir.BoolKind, ir.IntKind, ir.FloatKind, ir.ElementsKind}

func constantDescriptor() *dialect.Descriptor {
	return &dialect.Descriptor{
		Name:    "constant",
		Summary: "Produces a compile-time literal.",
		Attrs: []dialect.AttrSpec{
			{Name: valueAttr, Kinds: literalKinds},
		},
		NumResults:       1,
		Pure:             true,
		ConstantLike:     true,
		Build:            buildConstant,
		InferReturnTypes: inferConstant,
		Fold:             foldConstant,
	}
}

// buildConstant stores the value of the constant in its canonical form:
// a scalar literal becomes a tensor literal of rank 0.
func buildConstant(st *ir.OperationState) error {
	value, ok := st.Attrs.Get(valueAttr)
	if !ok {
		return &dialect.InvalidOperationError{Op: st.Name, Loc: st.Location, Reason: "missing value"}
	}
	lit, err := ir.Canonicalize(value)
	if err != nil {
		var notLit *ir.NotLiteralError
		if errors.As(err, &notLit) {
			return dialect.UnsupportedAttribute(st, valueAttr, value)
		}
		return err
	}
	st.SetAttr(valueAttr, lit)
	st.AddTypes(lit.Tensor())
	return nil
}

func inferConstant(ic *dialect.InferContext) ([]ir.Type, error) {
	value, ok := ic.Attr(valueAttr)
	if !ok {
		return nil, ic.Errorf("missing value")
	}
	if !value.Kind().IsLiteral() {
		return nil, ic.Errorf("value %s is not a literal", value)
	}
	return []ir.Type{ir.CanonicalType(value)}, nil
}

func foldConstant(op *ir.Operation, _ []ir.Attribute) (dialect.FoldResult, error) {
	value, ok := op.Attr(valueAttr)
	if !ok {
		return dialect.NotApplicable, nil
	}
	return dialect.Folded(value), nil
}

// materialize creates a pd.constant producing a literal.
// A scalar or splat literal can be broadcast to any static tensor type
// with the same data type.
func materialize(b *dialect.Builder, value ir.Attribute, typ ir.Type) (*ir.Operation, error) {
	if !value.Kind().IsLiteral() {
		// The builder reports the unsupported attribute kind.
		return b.Build(ConstantOp, nil, ir.Attr(valueAttr, value))
	}
	matErr := func(reason string) error {
		return &dialect.MaterializeError{Dialect: Name, Value: value, Type: typ, Reason: reason}
	}
	want, ok := ir.AsTensor(typ)
	if !ok {
		return nil, matErr("not a tensor type")
	}
	lit, err := ir.Canonicalize(value)
	if err != nil {
		return nil, err
	}
	if !lit.Tensor().Equal(want) {
		if lit.Tensor().DType() != want.DType() {
			return nil, matErr("data types differ")
		}
		if !lit.IsSplat() || !want.IsStatic() {
			return nil, matErr("only a splat literal can be broadcast")
		}
		if lit, err = ir.Splat(want, lit.At(0)); err != nil {
			return nil, matErr(err.Error())
		}
	}
	return b.Build(ConstantOp, nil, ir.Attr(valueAttr, lit))
}

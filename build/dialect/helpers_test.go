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

package dialect_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/pdir/build/dialect"
	"github.com/gx-org/pdir/build/ir"
	"github.com/pkg/errors"
)

var cmpTypes = cmp.Comparer(func(x, y ir.Type) bool {
	return x.Equal(y)
})

var literalKinds = []ir.AttrKind{ir.BoolKind, ir.IntKind, ir.FloatKind, ir.ElementsKind}

// litDescriptor is a constant-like operation producing its value attribute.
func litDescriptor() *dialect.Descriptor {
	return &dialect.Descriptor{
		Name:         "lit",
		Attrs:        []dialect.AttrSpec{{Name: "value", Kinds: literalKinds}},
		NumResults:   1,
		Pure:         true,
		ConstantLike: true,
		InferReturnTypes: func(ic *dialect.InferContext) ([]ir.Type, error) {
			value, _ := ic.Attr("value")
			return []ir.Type{ir.CanonicalType(value)}, nil
		},
		Fold: func(op *ir.Operation, _ []ir.Attribute) (dialect.FoldResult, error) {
			value, _ := op.Attr("value")
			return dialect.Folded(value), nil
		},
	}
}

// argDescriptor is a graph input of type tensor<shape x f32>.
func argDescriptor() *dialect.Descriptor {
	return &dialect.Descriptor{
		Name:       "arg",
		Attrs:      []dialect.AttrSpec{{Name: "shape", Kinds: []ir.AttrKind{ir.IntsKind}}},
		NumResults: 1,
		InferReturnTypes: func(ic *dialect.InferContext) ([]ir.Type, error) {
			attr, _ := ic.Attr("shape")
			var dims []int
			for _, dim := range attr.(ir.IntsAttr).Values() {
				dims = append(dims, int(dim))
			}
			return []ir.Type{ir.Tensor(dtype.Float32, dims...)}, nil
		},
	}
}

// idDescriptor forwards its operand.
func idDescriptor() *dialect.Descriptor {
	return &dialect.Descriptor{
		Name:       "id",
		Operands:   []dialect.OperandSpec{{Name: "x"}},
		NumResults: 1,
		Pure:       true,
		InferReturnTypes: func(ic *dialect.InferContext) ([]ir.Type, error) {
			return []ir.Type{ic.Operands[0]}, nil
		},
		Fold: func(op *ir.Operation, operands []ir.Attribute) (dialect.FoldResult, error) {
			if operands[0] == nil {
				return dialect.NotApplicable, nil
			}
			return dialect.Folded(operands[0]), nil
		},
	}
}

// pairDescriptor forwards its first operand once both operands are known.
func pairDescriptor() *dialect.Descriptor {
	return &dialect.Descriptor{
		Name:       "pair",
		Operands:   []dialect.OperandSpec{{Name: "x"}, {Name: "y"}},
		NumResults: 1,
		Pure:       true,
		InferReturnTypes: func(ic *dialect.InferContext) ([]ir.Type, error) {
			return []ir.Type{ic.Operands[0]}, nil
		},
		Fold: func(op *ir.Operation, operands []ir.Attribute) (dialect.FoldResult, error) {
			if operands[0] == nil || operands[1] == nil {
				return dialect.NotApplicable, nil
			}
			return dialect.Folded(operands[0]), nil
		},
	}
}

func badBuildDescriptor() *dialect.Descriptor {
	return &dialect.Descriptor{
		Name:       "bad_build",
		NumResults: 1,
		Build: func(st *ir.OperationState) error {
			st.AddTypes(ir.Tensor(dtype.Float32, 2))
			return nil
		},
		InferReturnTypes: func(ic *dialect.InferContext) ([]ir.Type, error) {
			return []ir.Type{ir.Tensor(dtype.Float32, 3)}, nil
		},
	}
}

func badInferDescriptor() *dialect.Descriptor {
	return &dialect.Descriptor{
		Name:       "bad_infer",
		Operands:   []dialect.OperandSpec{{Name: "x"}},
		NumResults: 1,
		InferReturnTypes: func(ic *dialect.InferContext) ([]ir.Type, error) {
			return nil, ic.Errorf("cannot infer from %s", ic.Operands[0])
		},
	}
}

func badFoldDescriptor() *dialect.Descriptor {
	return &dialect.Descriptor{
		Name:       "bad_fold",
		Operands:   []dialect.OperandSpec{{Name: "x"}},
		NumResults: 1,
		InferReturnTypes: func(ic *dialect.InferContext) ([]ir.Type, error) {
			return []ir.Type{ic.Operands[0]}, nil
		},
		Fold: func(*ir.Operation, []ir.Attribute) (dialect.FoldResult, error) {
			return dialect.Folded(ir.Int32(1)), nil
		},
	}
}

func failFoldDescriptor() *dialect.Descriptor {
	return &dialect.Descriptor{
		Name:       "fail_fold",
		Operands:   []dialect.OperandSpec{{Name: "x"}},
		NumResults: 1,
		InferReturnTypes: func(ic *dialect.InferContext) ([]ir.Type, error) {
			return []ir.Type{ic.Operands[0]}, nil
		},
		Fold: func(*ir.Operation, []ir.Attribute) (dialect.FoldResult, error) {
			return dialect.NotApplicable, errors.Errorf("division by zero")
		},
	}
}

func materializeLit(b *dialect.Builder, value ir.Attribute, typ ir.Type) (*ir.Operation, error) {
	return b.Build("test.lit", nil, ir.Attr("value", value))
}

func newTestDialect(t *testing.T) *dialect.Dialect {
	d, err := dialect.New("test", "v1.0.0", materializeLit)
	if err != nil {
		t.Fatal(err)
	}
	for _, desc := range []*dialect.Descriptor{
		litDescriptor(),
		argDescriptor(),
		idDescriptor(),
		pairDescriptor(),
		badBuildDescriptor(),
		badInferDescriptor(),
		badFoldDescriptor(),
		failFoldDescriptor(),
	} {
		if err := d.Register(desc); err != nil {
			t.Fatal(err)
		}
	}
	return d
}

func newTestContext(t *testing.T) *dialect.Context {
	ctx, err := dialect.NewContext(newTestDialect(t))
	if err != nil {
		t.Fatal(err)
	}
	return ctx
}

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

const (
	nameAttr      = "name"
	typeShapeAttr = "type_shape"
	dtypeAttr     = "dtype"
)

func feedDescriptor() *dialect.Descriptor {
	return &dialect.Descriptor{
		Name:    "feed",
		Summary: "Input of a graph, provided at runtime.",
		Attrs: []dialect.AttrSpec{
			{Name: nameAttr, Kinds: []ir.AttrKind{ir.StringKind}},
			{Name: typeShapeAttr, Kinds: []ir.AttrKind{ir.IntsKind}},
			{Name: dtypeAttr, Kinds: []ir.AttrKind{ir.StringKind}},
		},
		NumResults:       1,
		InferReturnTypes: inferFeed,
	}
}

func inferFeed(ic *dialect.InferContext) ([]ir.Type, error) {
	dtName, err := stringParam(ic.Attrs, dtypeAttr)
	if err != nil {
		return nil, err
	}
	dt := ir.ParseDType(dtName)
	if dt == dtype.Invalid {
		return nil, ic.Errorf("unknown data type %q", dtName)
	}
	dims, err := dimsParam(ic.Attrs, typeShapeAttr)
	if err != nil {
		return nil, err
	}
	return []ir.Type{ir.Tensor(dt, dims...)}, nil
}

func fetchDescriptor() *dialect.Descriptor {
	return &dialect.Descriptor{
		Name:     "fetch",
		Summary:  "Output of a graph.",
		Operands: []dialect.OperandSpec{{Name: "x"}},
		Attrs: []dialect.AttrSpec{
			{Name: nameAttr, Kinds: []ir.AttrKind{ir.StringKind}},
		},
	}
}

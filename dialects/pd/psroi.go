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

const (
	pooledHeightAttr   = "pooled_height"
	pooledWidthAttr    = "pooled_width"
	outputChannelsAttr = "output_channels"
	spatialScaleAttr   = "spatial_scale"
)

func psroiPoolDescriptor() *dialect.Descriptor {
	intKind := []ir.AttrKind{ir.IntKind}
	return &dialect.Descriptor{
		Name:    "psroi_pool",
		Summary: "Position-sensitive region of interest pooling.",
		Since:   "v1.1.0",
		Operands: []dialect.OperandSpec{
			{Name: "x"},
			{Name: "rois"},
			{Name: "rois_num", Optional: true},
		},
		Attrs: []dialect.AttrSpec{
			{Name: pooledHeightAttr, Kinds: intKind},
			{Name: pooledWidthAttr, Kinds: intKind},
			{Name: outputChannelsAttr, Kinds: intKind},
			{Name: spatialScaleAttr, Kinds: []ir.AttrKind{ir.FloatKind}, Optional: true},
		},
		NumResults:       1,
		Pure:             true,
		InferReturnTypes: inferPsroiPool,
	}
}

// inferPsroiPool returns [num_rois, output_channels, pooled_height, pooled_width].
//
// x is a NCHW feature map where C = output_channels*pooled_height*pooled_width.
// rois is a [num_rois, 4] list of boxes and rois_num a list of the number
// of boxes of each image of the batch.
func inferPsroiPool(ic *dialect.InferContext) ([]ir.Type, error) {
	x, err := operandTensor(ic.Operands, 0, "x")
	if err != nil {
		return nil, err
	}
	rois, err := operandTensor(ic.Operands, 1, "rois")
	if err != nil {
		return nil, err
	}
	if x.Rank() != 4 {
		return nil, ic.Errorf("x must be a tensor of rank 4 but got %s", x)
	}
	if !ir.IsFloatDType(x.DType()) {
		return nil, ic.Errorf("x must be a float tensor but got %s", x)
	}
	if rois.Rank() != 2 {
		return nil, ic.Errorf("rois must be a tensor of rank 2 but got %s", rois)
	}
	if rois.DType() != x.DType() {
		return nil, ic.Errorf("rois of type %s and x of type %s have different data types", rois, x)
	}
	if cols := rois.Dim(1); cols != 4 && cols != ir.DynamicDim {
		return nil, ic.Errorf("rois must have 4 columns but got %s", rois)
	}
	if len(ic.Operands) > 2 {
		roisNum, err := operandTensor(ic.Operands, 2, "rois_num")
		if err != nil {
			return nil, err
		}
		if roisNum.Rank() != 1 || !ir.IsIntegerDType(roisNum.DType()) {
			return nil, ic.Errorf("rois_num must be an integer tensor of rank 1 but got %s", roisNum)
		}
	}
	var params [3]int
	for i, name := range []string{pooledHeightAttr, pooledWidthAttr, outputChannelsAttr} {
		if params[i], err = intParam(ic.Attrs, name); err != nil {
			return nil, err
		}
		if params[i] <= 0 {
			return nil, ic.Errorf("%s must be positive but got %d", name, params[i])
		}
	}
	pooledHeight, pooledWidth, outputChannels := params[0], params[1], params[2]
	spatialScale, err := floatParam(ic.Attrs, spatialScaleAttr, 1)
	if err != nil {
		return nil, err
	}
	if spatialScale <= 0 {
		return nil, ic.Errorf("%s must be positive but got %g", spatialScaleAttr, spatialScale)
	}
	if channels := x.Dim(1); channels != ir.DynamicDim && channels != outputChannels*pooledHeight*pooledWidth {
		return nil, ic.Errorf("x has %d channels but output_channels*pooled_height*pooled_width = %d", channels, outputChannels*pooledHeight*pooledWidth)
	}
	return []ir.Type{ir.Tensor(x.DType(), rois.Dim(0), outputChannels, pooledHeight, pooledWidth)}, nil
}

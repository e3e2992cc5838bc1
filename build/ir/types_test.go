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

package ir_test

import (
	"testing"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/pdir/build/ir"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  ir.Type
		want string
	}{
		{typ: ir.Scalar(dtype.Int32), want: "i32"},
		{typ: ir.Tensor(dtype.Float32), want: "tensor<f32>"},
		{typ: ir.Tensor(dtype.Bool, 2, 3), want: "tensor<2x3xi1>"},
		{typ: ir.Tensor(dtype.Uint64, ir.DynamicDim, 4), want: "tensor<?x4xui64>"},
		{typ: ir.NoneType{}, want: "none"},
	}
	for _, test := range tests {
		if got := test.typ.String(); got != test.want {
			t.Errorf("incorrect string: got %q but want %q", got, test.want)
		}
	}
}

func TestTensorType(t *testing.T) {
	static := ir.Tensor(dtype.Float64, 2, 3, 4)
	if got, want := static.Rank(), 3; got != want {
		t.Errorf("rank of %s: got %d but want %d", static, got, want)
	}
	if !static.IsStatic() {
		t.Errorf("%s should be static", static)
	}
	if got, want := static.NumElements(), 24; got != want {
		t.Errorf("number of elements of %s: got %d but want %d", static, got, want)
	}
	dynamic := ir.Tensor(dtype.Float64, 2, ir.DynamicDim)
	if dynamic.IsStatic() {
		t.Errorf("%s should not be static", dynamic)
	}
	if got := dynamic.Dim(1); got != ir.DynamicDim {
		t.Errorf("axis 1 of %s: got %d but want %d", dynamic, got, ir.DynamicDim)
	}
	if scalar := ir.Tensor(dtype.Int32); scalar.NumElements() != 1 {
		t.Errorf("a tensor of rank 0 has 1 element but got %d", scalar.NumElements())
	}
}

func TestTypeEqual(t *testing.T) {
	tests := []struct {
		x, y ir.Type
		want bool
	}{
		{x: ir.Tensor(dtype.Int32, 2), y: ir.Tensor(dtype.Int32, 2), want: true},
		{x: ir.Tensor(dtype.Int32, 2), y: ir.Tensor(dtype.Int64, 2), want: false},
		{x: ir.Tensor(dtype.Int32, 2), y: ir.Tensor(dtype.Int32, 3), want: false},
		{x: ir.Tensor(dtype.Int32), y: ir.Scalar(dtype.Int32), want: false},
		{x: ir.Scalar(dtype.Int32), y: ir.Scalar(dtype.Int32), want: true},
		{x: ir.NoneType{}, y: ir.NoneType{}, want: true},
	}
	for _, test := range tests {
		if got := test.x.Equal(test.y); got != test.want {
			t.Errorf("%s.Equal(%s): got %t but want %t", test.x, test.y, got, test.want)
		}
	}
}

func TestAsTensor(t *testing.T) {
	got, ok := ir.AsTensor(ir.Scalar(dtype.Float32))
	if !ok || !got.Equal(ir.Tensor(dtype.Float32)) {
		t.Errorf("AsTensor(f32) = %v, %t: want tensor<f32>", got, ok)
	}
	if _, ok := ir.AsTensor(ir.NoneType{}); ok {
		t.Errorf("none cannot be converted to a tensor")
	}
}

func TestParseDType(t *testing.T) {
	for _, dt := range []dtype.DataType{
		dtype.Bool,
		dtype.Int32,
		dtype.Int64,
		dtype.Uint32,
		dtype.Uint64,
		dtype.Bfloat16,
		dtype.Float32,
		dtype.Float64,
	} {
		name := ir.DTypeName(dt)
		if got := ir.ParseDType(name); got != dt {
			t.Errorf("ParseDType(%q) = %v but want %v", name, got, dt)
		}
	}
	if got := ir.ParseDType("float32"); got != dtype.Float32 {
		t.Errorf("ParseDType(float32) = %v but want %v", got, dtype.Float32)
	}
	if got := ir.ParseDType("complex64"); got != dtype.Invalid {
		t.Errorf("ParseDType(complex64) = %v but want an invalid data type", got)
	}
}

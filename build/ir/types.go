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
	"fmt"
	"slices"
	"strings"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
)

// DynamicDim marks an axis whose length is only known at runtime.
const DynamicDim = -1

type (
	// Type of a value or of an attribute.
	Type interface {
		// DType returns the element data type.
		DType() dtype.DataType

		// Equal returns true if other is structurally the same type.
		Equal(other Type) bool

		// String representation of the type.
		String() string

		irType()
	}

	// ScalarType is the type of a single element.
	ScalarType struct {
		DT dtype.DataType
	}

	// TensorType is a ranked tensor type.
	// A tensor of rank 0 holds exactly one element.
	TensorType struct {
		sh shape.Shape
	}

	// NoneType is the type of attributes that are not literals,
	// for example strings or lists of integers.
	NoneType struct{}
)

var (
	_ Type = ScalarType{}
	_ Type = (*TensorType)(nil)
	_ Type = NoneType{}
)

// Scalar returns the scalar type of a data type.
func Scalar(dt dtype.DataType) ScalarType {
	return ScalarType{DT: dt}
}

func (ScalarType) irType() {}

// DType returns the data type of the scalar.
func (t ScalarType) DType() dtype.DataType {
	return t.DT
}

// Equal returns true if other is a scalar type with the same data type.
func (t ScalarType) Equal(other Type) bool {
	otherT, ok := other.(ScalarType)
	return ok && otherT.DT == t.DT
}

func (t ScalarType) String() string {
	return DTypeName(t.DT)
}

// Tensor returns a tensor type given a data type and axis lengths.
// Calling Tensor without axis lengths returns a tensor of rank 0.
func Tensor(dt dtype.DataType, axisLengths ...int) *TensorType {
	return &TensorType{sh: shape.Shape{
		DType:       dt,
		AxisLengths: slices.Clone(axisLengths),
	}}
}

// TensorOf returns a tensor type from a backend shape.
func TensorOf(sh *shape.Shape) *TensorType {
	return Tensor(sh.DType, sh.AxisLengths...)
}

func (*TensorType) irType() {}

// DType returns the data type of the tensor elements.
func (t *TensorType) DType() dtype.DataType {
	return t.sh.DType
}

// Shape returns a copy of the tensor shape.
func (t *TensorType) Shape() *shape.Shape {
	return &shape.Shape{
		DType:       t.sh.DType,
		AxisLengths: slices.Clone(t.sh.AxisLengths),
	}
}

// Rank returns the number of axes.
func (t *TensorType) Rank() int {
	return len(t.sh.AxisLengths)
}

// Dims returns a copy of the axis lengths.
func (t *TensorType) Dims() []int {
	return slices.Clone(t.sh.AxisLengths)
}

// Dim returns the length of an axis.
func (t *TensorType) Dim(axis int) int {
	return t.sh.AxisLengths[axis]
}

// IsStatic returns true if all axis lengths are known.
func (t *TensorType) IsStatic() bool {
	return !slices.Contains(t.sh.AxisLengths, DynamicDim)
}

// NumElements returns the number of elements in a tensor
// or DynamicDim if the shape is not static.
func (t *TensorType) NumElements() int {
	n := 1
	for _, dim := range t.sh.AxisLengths {
		if dim == DynamicDim {
			return DynamicDim
		}
		n *= dim
	}
	return n
}

// WithDType returns a tensor type with the same shape and a different data type.
func (t *TensorType) WithDType(dt dtype.DataType) *TensorType {
	return Tensor(dt, t.sh.AxisLengths...)
}

// Equal returns true if other is a tensor type with the same shape and data type.
func (t *TensorType) Equal(other Type) bool {
	otherT, ok := other.(*TensorType)
	if !ok {
		return false
	}
	return t.sh.DType == otherT.sh.DType && slices.Equal(t.sh.AxisLengths, otherT.sh.AxisLengths)
}

func (t *TensorType) String() string {
	var b strings.Builder
	b.WriteString("tensor<")
	for _, dim := range t.sh.AxisLengths {
		if dim == DynamicDim {
			b.WriteString("?")
		} else {
			fmt.Fprint(&b, dim)
		}
		b.WriteString("x")
	}
	b.WriteString(DTypeName(t.sh.DType))
	b.WriteString(">")
	return b.String()
}

func (NoneType) irType() {}

// DType returns an invalid data type.
func (NoneType) DType() dtype.DataType {
	return dtype.Invalid
}

// Equal returns true if other is also none.
func (NoneType) Equal(other Type) bool {
	_, ok := other.(NoneType)
	return ok
}

func (NoneType) String() string {
	return "none"
}

// DTypeName returns the short name of a data type used when printing the IR.
func DTypeName(dt dtype.DataType) string {
	switch dt {
	case dtype.Bool:
		return "i1"
	case dtype.Int32:
		return "i32"
	case dtype.Int64:
		return "i64"
	case dtype.Uint32:
		return "ui32"
	case dtype.Uint64:
		return "ui64"
	case dtype.Bfloat16:
		return "bf16"
	case dtype.Float32:
		return "f32"
	case dtype.Float64:
		return "f64"
	}
	return "invalid"
}

// ParseDType returns a data type from its short IR name or from its Go-like name.
// It returns dtype.Invalid if the name is unknown.
func ParseDType(name string) dtype.DataType {
	switch name {
	case "i1", "bool":
		return dtype.Bool
	case "i32", "int32":
		return dtype.Int32
	case "i64", "int64":
		return dtype.Int64
	case "ui32", "uint32":
		return dtype.Uint32
	case "ui64", "uint64":
		return dtype.Uint64
	case "bf16", "bfloat16":
		return dtype.Bfloat16
	case "f32", "float32":
		return dtype.Float32
	case "f64", "float64":
		return dtype.Float64
	}
	return dtype.Invalid
}

// IsIntegerDType returns true if the data type is an integer.
func IsIntegerDType(dt dtype.DataType) bool {
	switch dt {
	case dtype.Int32, dtype.Int64:
		return true
	case dtype.Uint32, dtype.Uint64:
		return true
	}
	return false
}

// IsUnsignedDType returns true if the data type is an unsigned integer.
func IsUnsignedDType(dt dtype.DataType) bool {
	return dt == dtype.Uint32 || dt == dtype.Uint64
}

// IsFloatDType returns true if the data type is a float.
func IsFloatDType(dt dtype.DataType) bool {
	switch dt {
	case dtype.Bfloat16, dtype.Float32, dtype.Float64:
		return true
	}
	return false
}

// AsTensor returns the tensor type of a type.
// A scalar type is returned as a tensor of rank 0.
func AsTensor(typ Type) (*TensorType, bool) {
	switch typT := typ.(type) {
	case *TensorType:
		return typT, true
	case ScalarType:
		return Tensor(typT.DT), true
	}
	return nil, false
}

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
	"math"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/pdir/build/ir"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

type number interface {
	constraints.Integer | constraints.Float
}

// errOverflow is returned by a kernel when a result cannot be represented.
// The fold declines instead of failing.
var errOverflow = errors.New("result cannot be represented")

type binaryKernel struct {
	name  string
	ints  func(x, y int64) int64
	uints func(x, y uint64) uint64
	f32   func(x, y float32) float32
	f64   func(x, y float64) float64
}

var (
	addKernel = binaryKernel{
		name:  "add",
		ints:  add[int64],
		uints: add[uint64],
		f32:   add[float32],
		f64:   add[float64],
	}
	subKernel = binaryKernel{
		name:  "sub",
		ints:  sub[int64],
		uints: sub[uint64],
		f32:   sub[float32],
		f64:   sub[float64],
	}
	mulKernel = binaryKernel{
		name:  "mul",
		ints:  mul[int64],
		uints: mul[uint64],
		f32:   mul[float32],
		f64:   mul[float64],
	}
)

func add[T number](x, y T) T { return x + y }
func sub[T number](x, y T) T { return x - y }
func mul[T number](x, y T) T { return x * y }

// apply computes the kernel on two scalars of the same data type.
// Integers wrap around the width of their data type.
func (k binaryKernel) apply(x, y ir.ScalarAttr) (ir.ScalarAttr, error) {
	dt := x.Type().DType()
	switch xT := x.(type) {
	case ir.IntAttr:
		yT := y.(ir.IntAttr)
		return k.applyInt(dt, xT.Value(), yT.Value())
	case ir.FloatAttr:
		yT := y.(ir.FloatAttr)
		if dt == dtype.Float64 {
			return ir.NewFloat(dt, k.f64(xT.Value(), yT.Value()))
		}
		return ir.NewFloat(dt, float64(k.f32(float32(xT.Value()), float32(yT.Value()))))
	}
	return nil, errors.Errorf("%s does not support %s", k.name, ir.DTypeName(dt))
}

func (k binaryKernel) applyInt(dt dtype.DataType, x, y int64) (ir.ScalarAttr, error) {
	switch dt {
	case dtype.Int32:
		return ir.NewInt(dt, int64(int32(k.ints(x, y))))
	case dtype.Int64:
		return ir.NewInt(dt, k.ints(x, y))
	case dtype.Uint32:
		return ir.NewInt(dt, int64(uint32(k.uints(uint64(x), uint64(y)))))
	case dtype.Uint64:
		v := k.uints(uint64(x), uint64(y))
		if v > math.MaxInt64 {
			return nil, errOverflow
		}
		return ir.NewInt(dt, int64(v))
	}
	return nil, errors.Errorf("%s does not support %s", k.name, ir.DTypeName(dt))
}

// relu returns max(x, 0).
func relu(x ir.ScalarAttr) (ir.ScalarAttr, error) {
	dt := x.Type().DType()
	switch xT := x.(type) {
	case ir.IntAttr:
		return ir.NewInt(dt, max(xT.Value(), 0))
	case ir.FloatAttr:
		v := xT.Value()
		if v < 0 {
			v = 0
		}
		return ir.NewFloat(dt, v)
	}
	return nil, errors.Errorf("relu does not support %s", ir.DTypeName(dt))
}

// mapElements applies a function to all the elements of a literal.
// The result has the type typ.
func mapElements(typ *ir.TensorType, lit *ir.ElementsAttr, f func(ir.ScalarAttr) (ir.ScalarAttr, error)) (*ir.ElementsAttr, error) {
	if lit.IsSplat() {
		val, err := f(lit.At(0))
		if err != nil {
			return nil, err
		}
		return ir.Splat(typ, val)
	}
	vals := make([]ir.ScalarAttr, lit.NumElements())
	for i := range vals {
		var err error
		if vals[i], err = f(lit.At(i)); err != nil {
			return nil, err
		}
	}
	return ir.NewElements(typ, vals...)
}

// zipElements applies a kernel to the elements of two literals.
// A literal of rank 0 is broadcast to the shape of the other literal.
func zipElements(typ *ir.TensorType, x, y *ir.ElementsAttr, k binaryKernel) (*ir.ElementsAttr, error) {
	if x.IsSplat() && y.IsSplat() {
		val, err := k.apply(x.At(0), y.At(0))
		if err != nil {
			return nil, err
		}
		return ir.Splat(typ, val)
	}
	at := func(lit *ir.ElementsAttr, i int) ir.ScalarAttr {
		if lit.IsSplat() {
			return lit.At(0)
		}
		return lit.At(i)
	}
	vals := make([]ir.ScalarAttr, typ.NumElements())
	for i := range vals {
		var err error
		if vals[i], err = k.apply(at(x, i), at(y, i)); err != nil {
			return nil, err
		}
	}
	return ir.NewElements(typ, vals...)
}

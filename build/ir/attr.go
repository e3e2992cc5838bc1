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
	"math"
	"slices"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/gx-org/backend/dtype"
	"github.com/pkg/errors"
)

// AttrKind is the tag of an attribute variant.
type AttrKind int

// Attribute kinds.
const (
	InvalidAttrKind AttrKind = iota
	BoolKind
	IntKind
	FloatKind
	ElementsKind
	StringKind
	IntsKind
)

func (k AttrKind) String() string {
	switch k {
	case BoolKind:
		return "bool"
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	case ElementsKind:
		return "elements"
	case StringKind:
		return "string"
	case IntsKind:
		return "ints"
	}
	return "invalid"
}

// IsLiteral returns true if attributes of this kind represent a
// compile-time tensor value.
func (k AttrKind) IsLiteral() bool {
	switch k {
	case BoolKind, IntKind, FloatKind, ElementsKind:
		return true
	}
	return false
}

type (
	// Attribute is an immutable compile-time value attached to an operation.
	Attribute interface {
		// Kind returns the variant tag of the attribute.
		Kind() AttrKind

		// Type embedded in the attribute.
		Type() Type

		// String representation of the attribute.
		String() string

		attribute()
	}

	// ScalarAttr is a literal holding a single element.
	ScalarAttr interface {
		Attribute
		scalar()
	}

	// BoolAttr is a boolean literal.
	BoolAttr struct {
		Val bool
	}

	// IntAttr is an integer literal.
	IntAttr struct {
		typ ScalarType
		val int64
	}

	// FloatAttr is a floating point literal.
	FloatAttr struct {
		typ ScalarType
		val float64
	}

	// StringAttr is a string parameter.
	StringAttr struct {
		Val string
	}

	// IntsAttr is a list of integers, typically axis lengths or axes.
	IntsAttr struct {
		vals []int64
	}
)

var (
	_ ScalarAttr = BoolAttr{}
	_ ScalarAttr = IntAttr{}
	_ ScalarAttr = FloatAttr{}
	_ Attribute  = StringAttr{}
	_ Attribute  = IntsAttr{}
)

// Bool returns a boolean literal.
func Bool(val bool) BoolAttr {
	return BoolAttr{Val: val}
}

func (BoolAttr) attribute() {}
func (BoolAttr) scalar()    {}

// Kind of the attribute.
func (BoolAttr) Kind() AttrKind { return BoolKind }

// Type of the literal.
func (BoolAttr) Type() Type { return Scalar(dtype.Bool) }

func (a BoolAttr) String() string {
	return strconv.FormatBool(a.Val)
}

// NewInt returns an integer literal of a given data type.
// An error is returned if the data type is not an integer
// or if the value does not fit in the data type.
func NewInt(dt dtype.DataType, val int64) (IntAttr, error) {
	var err error
	switch dt {
	case dtype.Int32:
		_, err = safecast.Conv[int32](val)
	case dtype.Int64:
	case dtype.Uint32:
		_, err = safecast.Conv[uint32](val)
	case dtype.Uint64:
		_, err = safecast.Conv[uint64](val)
	default:
		return IntAttr{}, errors.Errorf("cannot create an integer literal of type %s", DTypeName(dt))
	}
	if err != nil {
		return IntAttr{}, errors.Wrapf(err, "integer literal %d out of range for %s", val, DTypeName(dt))
	}
	return IntAttr{typ: Scalar(dt), val: val}, nil
}

// Int32 returns a 32-bit signed integer literal.
func Int32(val int32) IntAttr {
	return IntAttr{typ: Scalar(dtype.Int32), val: int64(val)}
}

// Int64 returns a 64-bit signed integer literal.
func Int64(val int64) IntAttr {
	return IntAttr{typ: Scalar(dtype.Int64), val: val}
}

func (IntAttr) attribute() {}
func (IntAttr) scalar()    {}

// Kind of the attribute.
func (IntAttr) Kind() AttrKind { return IntKind }

// Type of the literal.
func (a IntAttr) Type() Type { return a.typ }

// Value of the literal.
func (a IntAttr) Value() int64 { return a.val }

func (a IntAttr) String() string {
	return fmt.Sprintf("%d : %s", a.val, a.typ)
}

// NewFloat returns a float literal of a given data type.
// The value is rounded to the precision of the data type.
func NewFloat(dt dtype.DataType, val float64) (FloatAttr, error) {
	switch dt {
	case dtype.Float32:
		val = float64(float32(val))
	case dtype.Bfloat16:
		val = float64(dtype.BFloat16FromFloat64(val).Float32())
	case dtype.Float64:
	default:
		return FloatAttr{}, errors.Errorf("cannot create a float literal of type %s", DTypeName(dt))
	}
	return FloatAttr{typ: Scalar(dt), val: val}, nil
}

// Float32 returns a 32-bit float literal.
func Float32(val float32) FloatAttr {
	return FloatAttr{typ: Scalar(dtype.Float32), val: float64(val)}
}

// Float64 returns a 64-bit float literal.
func Float64(val float64) FloatAttr {
	return FloatAttr{typ: Scalar(dtype.Float64), val: val}
}

func (FloatAttr) attribute() {}
func (FloatAttr) scalar()    {}

// Kind of the attribute.
func (FloatAttr) Kind() AttrKind { return FloatKind }

// Type of the literal.
func (a FloatAttr) Type() Type { return a.typ }

// Value of the literal.
func (a FloatAttr) Value() float64 { return a.val }

func (a FloatAttr) String() string {
	return formatFloat(a.val) + " : " + a.typ.String()
}

// String returns a string parameter.
func String(s string) StringAttr {
	return StringAttr{Val: s}
}

func (StringAttr) attribute() {}

// Kind of the attribute.
func (StringAttr) Kind() AttrKind { return StringKind }

// Type of a string parameter is none.
func (StringAttr) Type() Type { return NoneType{} }

func (a StringAttr) String() string {
	return strconv.Quote(a.Val)
}

// Ints returns a list of integers parameter.
func Ints(vals ...int64) IntsAttr {
	return IntsAttr{vals: slices.Clone(vals)}
}

func (IntsAttr) attribute() {}

// Kind of the attribute.
func (IntsAttr) Kind() AttrKind { return IntsKind }

// Type of a list of integers is none.
func (IntsAttr) Type() Type { return NoneType{} }

// Values returns a copy of the integers.
func (a IntsAttr) Values() []int64 {
	return slices.Clone(a.vals)
}

// Len returns the number of integers.
func (a IntsAttr) Len() int {
	return len(a.vals)
}

func (a IntsAttr) String() string {
	ss := make([]string, len(a.vals))
	for i, v := range a.vals {
		ss[i] = strconv.FormatInt(v, 10)
	}
	return "[" + strings.Join(ss, ", ") + "]"
}

func formatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "nan"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// scalarValueString returns the string of a scalar without its type.
func scalarValueString(s ScalarAttr) string {
	switch sT := s.(type) {
	case BoolAttr:
		return sT.String()
	case IntAttr:
		return strconv.FormatInt(sT.val, 10)
	case FloatAttr:
		return formatFloat(sT.val)
	}
	return "?"
}

func equalScalars(x, y ScalarAttr) bool {
	if !x.Type().Equal(y.Type()) {
		return false
	}
	switch xT := x.(type) {
	case BoolAttr:
		return xT.Val == y.(BoolAttr).Val
	case IntAttr:
		return xT.val == y.(IntAttr).val
	case FloatAttr:
		// Compare the bits so that a NaN literal is equal to itself.
		return math.Float64bits(xT.val) == math.Float64bits(y.(FloatAttr).val)
	}
	return false
}

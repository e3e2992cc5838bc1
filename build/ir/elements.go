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
	"strings"

	"github.com/pkg/errors"
)

// ElementsAttr is a tensor literal.
// It is the canonical form of all literals: a scalar literal is
// represented by an ElementsAttr of rank 0.
//
// A single stored value with a tensor of more than one element is a splat:
// all the elements share that value.
type ElementsAttr struct {
	typ  *TensorType
	vals []ScalarAttr
}

var _ Attribute = (*ElementsAttr)(nil)

// NewElements returns a tensor literal given its type and its values in row-major order.
// Passing a single value for a tensor with more than one element returns a splat.
func NewElements(typ *TensorType, vals ...ScalarAttr) (*ElementsAttr, error) {
	if !typ.IsStatic() {
		return nil, errors.Errorf("cannot create a literal of type %s: shape is not static", typ)
	}
	for i, val := range vals {
		if val.Type().DType() != typ.DType() {
			return nil, errors.Errorf("cannot use %s as element %d of a literal of type %s", val, i, typ)
		}
	}
	numElements := typ.NumElements()
	if len(vals) != numElements && !(len(vals) == 1 && numElements > 0) {
		return nil, errors.Errorf("literal of type %s requires %d elements but got %d", typ, numElements, len(vals))
	}
	return &ElementsAttr{typ: typ, vals: append([]ScalarAttr{}, vals...)}, nil
}

// Splat returns a tensor literal where all elements have the same value.
func Splat(typ *TensorType, val ScalarAttr) (*ElementsAttr, error) {
	if typ.NumElements() == 0 {
		return NewElements(typ)
	}
	return NewElements(typ, val)
}

func (*ElementsAttr) attribute() {}

// Kind of the attribute.
func (*ElementsAttr) Kind() AttrKind { return ElementsKind }

// Type of the literal.
func (e *ElementsAttr) Type() Type { return e.typ }

// Tensor returns the tensor type of the literal.
func (e *ElementsAttr) Tensor() *TensorType { return e.typ }

// NumElements returns the number of elements of the tensor.
func (e *ElementsAttr) NumElements() int {
	return e.typ.NumElements()
}

// IsSplat returns true if all elements share the same stored value.
func (e *ElementsAttr) IsSplat() bool {
	return len(e.vals) == 1
}

// At returns the element at a given row-major index.
func (e *ElementsAttr) At(i int) ScalarAttr {
	if e.IsSplat() {
		return e.vals[0]
	}
	return e.vals[i]
}

// Values returns all the elements in row-major order.
// A splat is expanded.
func (e *ElementsAttr) Values() []ScalarAttr {
	n := e.NumElements()
	vals := make([]ScalarAttr, n)
	for i := range n {
		vals[i] = e.At(i)
	}
	return vals
}

// Reshape returns the same literal with a different tensor type.
// The number of elements and the data type must be the same.
func (e *ElementsAttr) Reshape(typ *TensorType) (*ElementsAttr, error) {
	if typ.DType() != e.typ.DType() {
		return nil, errors.Errorf("cannot reshape a literal of type %s to %s: data types differ", e.typ, typ)
	}
	if e.IsSplat() {
		return Splat(typ, e.vals[0])
	}
	if typ.NumElements() != e.NumElements() {
		return nil, errors.Errorf("cannot reshape a literal of type %s to %s: number of elements differ", e.typ, typ)
	}
	return &ElementsAttr{typ: typ, vals: e.vals}, nil
}

func (e *ElementsAttr) String() string {
	var b strings.Builder
	b.WriteString("dense<")
	if e.IsSplat() || e.typ.Rank() == 0 {
		if len(e.vals) > 0 {
			b.WriteString(scalarValueString(e.vals[0]))
		}
	} else {
		b.WriteString("[")
		for i, val := range e.vals {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(scalarValueString(val))
		}
		b.WriteString("]")
	}
	b.WriteString("> : ")
	b.WriteString(e.typ.String())
	return b.String()
}

// NotLiteralError is returned when an attribute does not represent a tensor literal.
type NotLiteralError struct {
	Kind AttrKind
}

func (err *NotLiteralError) Error() string {
	return "attribute of kind " + err.Kind.String() + " is not a literal"
}

// Canonicalize returns the canonical tensor literal of an attribute.
// A tensor literal is returned as is and a scalar literal is normalized
// into a tensor literal of rank 0 with the same data type.
// A *NotLiteralError is returned for all other kinds.
func Canonicalize(attr Attribute) (*ElementsAttr, error) {
	switch attr.Kind() {
	case ElementsKind:
		return attr.(*ElementsAttr), nil
	case BoolKind, IntKind, FloatKind:
		return NewElements(Tensor(attr.Type().DType()), attr.(ScalarAttr))
	case StringKind, IntsKind, InvalidAttrKind:
		return nil, &NotLiteralError{Kind: attr.Kind()}
	}
	return nil, &NotLiteralError{Kind: attr.Kind()}
}

// CanonicalType returns the type of the canonical form of an attribute.
func CanonicalType(attr Attribute) Type {
	if !attr.Kind().IsLiteral() {
		return attr.Type()
	}
	typ, _ := AsTensor(attr.Type())
	return typ
}

// EqualAttributes returns true if two attributes represent the same value.
// Literals are compared on their canonical form, so that a scalar literal
// is equal to the tensor literal of rank 0 holding the same element.
func EqualAttributes(x, y Attribute) bool {
	if x == nil || y == nil {
		return x == y
	}
	if x.Kind().IsLiteral() && y.Kind().IsLiteral() {
		return equalLiterals(x, y)
	}
	if x.Kind() != y.Kind() {
		return false
	}
	switch xT := x.(type) {
	case StringAttr:
		return xT.Val == y.(StringAttr).Val
	case IntsAttr:
		yT := y.(IntsAttr)
		if len(xT.vals) != len(yT.vals) {
			return false
		}
		for i, v := range xT.vals {
			if yT.vals[i] != v {
				return false
			}
		}
		return true
	}
	return false
}

func equalLiterals(x, y Attribute) bool {
	xE, err := Canonicalize(x)
	if err != nil {
		return false
	}
	yE, err := Canonicalize(y)
	if err != nil {
		return false
	}
	if !xE.typ.Equal(yE.typ) {
		return false
	}
	if xE.IsSplat() && yE.IsSplat() {
		return equalScalars(xE.vals[0], yE.vals[0])
	}
	for i := range xE.NumElements() {
		if !equalScalars(xE.At(i), yE.At(i)) {
			return false
		}
	}
	return true
}

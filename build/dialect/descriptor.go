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

package dialect

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gx-org/pdir/build/ir"
	"github.com/pkg/errors"
	"golang.org/x/mod/semver"
)

// Capability is a set of optional behaviors implemented by an operation kind.
type Capability uint8

// Capabilities an operation descriptor can implement.
const (
	CustomBuild Capability = 1 << iota
	InferReturnType
	Fold
)

// Has returns true if all capabilities of o are in c.
func (c Capability) Has(o Capability) bool {
	return c&o == o
}

func (c Capability) String() string {
	var ss []string
	if c.Has(CustomBuild) {
		ss = append(ss, "build")
	}
	if c.Has(InferReturnType) {
		ss = append(ss, "infer")
	}
	if c.Has(Fold) {
		ss = append(ss, "fold")
	}
	if len(ss) == 0 {
		return "none"
	}
	return strings.Join(ss, "|")
}

type (
	// BuildFunc fills the result types of an operation state.
	// It may also normalize the attributes of the state.
	BuildFunc func(st *ir.OperationState) error

	// InferFunc infers the result types of an operation.
	// It must be a pure function of the operand types and of the attributes.
	InferFunc func(ic *InferContext) ([]ir.Type, error)

	// FoldFunc attempts to fold an operation into literals.
	// operands[i] is the literal value of the ith operand or nil if
	// that operand is not known at compile time.
	// A fold function never modifies the operation.
	FoldFunc func(op *ir.Operation, operands []ir.Attribute) (FoldResult, error)

	// OperandSpec describes an operand of an operation.
	OperandSpec struct {
		Name string
		// Optional is true if the operand can be omitted.
		// Only trailing operands can be optional.
		Optional bool
	}

	// AttrSpec describes an attribute accepted by an operation.
	AttrSpec struct {
		Name string
		// Kinds accepted for the attribute.
		Kinds []ir.AttrKind
		// Optional is true if the attribute can be omitted.
		Optional bool
	}

	// Descriptor is the schema of an operation kind with its capabilities.
	Descriptor struct {
		// Name of the kind in its dialect, for example "constant".
		Name string
		// Summary is a one-line description of the operation.
		Summary string
		// Since is the dialect version in which the kind has been introduced.
		// Empty means the operation is available in all versions.
		Since string

		Operands   []OperandSpec
		Attrs      []AttrSpec
		NumResults int

		// Pure is true if the operation has no side effect.
		Pure bool
		// ConstantLike is true if the operation only materializes a literal.
		ConstantLike bool

		Build            BuildFunc
		InferReturnTypes InferFunc
		Fold             FoldFunc

		dialect *Dialect
	}
)

// Dialect owning the descriptor. Nil until the descriptor has been registered.
func (d *Descriptor) Dialect() *Dialect {
	return d.dialect
}

// FullName returns the name of the operation prefixed by its dialect namespace.
func (d *Descriptor) FullName() string {
	if d.dialect == nil {
		return d.Name
	}
	return d.dialect.name + "." + d.Name
}

// Capabilities returns the set of capabilities implemented by the descriptor.
func (d *Descriptor) Capabilities() Capability {
	var c Capability
	if d.Build != nil {
		c |= CustomBuild
	}
	if d.InferReturnTypes != nil {
		c |= InferReturnType
	}
	if d.Fold != nil {
		c |= Fold
	}
	return c
}

// AttrSpec returns the specification of an attribute given its name.
func (d *Descriptor) AttrSpec(name string) (*AttrSpec, bool) {
	for i := range d.Attrs {
		if d.Attrs[i].Name == name {
			return &d.Attrs[i], true
		}
	}
	return nil, false
}

func (d *Descriptor) validate() error {
	if d.Name == "" {
		return errors.Errorf("operation descriptor has no name")
	}
	if strings.Contains(d.Name, ".") {
		return errors.Errorf("operation kind %q cannot contain a '.'", d.Name)
	}
	if d.Since != "" && !semver.IsValid(d.Since) {
		return errors.Errorf("operation kind %q: invalid version %q", d.Name, d.Since)
	}
	if d.NumResults < 0 {
		return errors.Errorf("operation kind %q: negative number of results", d.Name)
	}
	optional := false
	for _, operand := range d.Operands {
		if optional && !operand.Optional {
			return errors.Errorf("operation kind %q: operand %q follows an optional operand", d.Name, operand.Name)
		}
		optional = operand.Optional
	}
	seen := make(map[string]bool, len(d.Attrs))
	for _, attr := range d.Attrs {
		if seen[attr.Name] {
			return errors.Errorf("operation kind %q: attribute %q specified more than once", d.Name, attr.Name)
		}
		if len(attr.Kinds) == 0 {
			return errors.Errorf("operation kind %q: attribute %q accepts no kind", d.Name, attr.Name)
		}
		seen[attr.Name] = true
	}
	if d.ConstantLike && d.Fold == nil {
		return errors.Errorf("operation kind %q: a constant-like operation must implement fold", d.Name)
	}
	return nil
}

func (d *Descriptor) numRequiredOperands() int {
	n := 0
	for _, operand := range d.Operands {
		if !operand.Optional {
			n++
		}
	}
	return n
}

// checkOperands checks the number of operands of an operation.
func (d *Descriptor) checkOperands(st *ir.OperationState) error {
	n := len(st.Operands)
	minN, maxN := d.numRequiredOperands(), len(d.Operands)
	if n >= minN && n <= maxN {
		return nil
	}
	want := fmt.Sprint(minN)
	if minN != maxN {
		want = fmt.Sprintf("%d to %d", minN, maxN)
	}
	return &InvalidOperationError{
		Op:     d.FullName(),
		Loc:    st.Location,
		Reason: fmt.Sprintf("expected %s operand(s) but got %d", want, n),
	}
}

// checkAttrs checks that all the attributes are specified, have a supported kind,
// and that all the required attributes are present.
func (d *Descriptor) checkAttrs(st *ir.OperationState) error {
	for name, attr := range st.Attrs.Iter() {
		spec, ok := d.AttrSpec(name)
		if !ok {
			return &InvalidOperationError{
				Op:     d.FullName(),
				Loc:    st.Location,
				Reason: fmt.Sprintf("unknown attribute %q", name),
			}
		}
		if !slices.Contains(spec.Kinds, attr.Kind()) {
			return UnsupportedAttribute(st, name, attr)
		}
	}
	for _, spec := range d.Attrs {
		if spec.Optional {
			continue
		}
		if _, ok := st.Attrs.Get(spec.Name); !ok {
			return &InvalidOperationError{
				Op:     d.FullName(),
				Loc:    st.Location,
				Reason: fmt.Sprintf("missing required attribute %q", spec.Name),
			}
		}
	}
	return nil
}

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
	"sort"
	"strings"

	"github.com/gx-org/pdir/build/ir"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/mod/semver"
)

// MaterializeFunc creates an operation producing a literal as a value of a given type.
type MaterializeFunc func(b *Builder, value ir.Attribute, typ ir.Type) (*ir.Operation, error)

// Dialect is a namespace of operation kinds.
//
// A dialect is populated once, then frozen. A frozen dialect is never
// modified again and can be read from multiple goroutines without locking.
type Dialect struct {
	name        string
	version     string
	kinds       map[string]*Descriptor
	materialize MaterializeFunc
	frozen      bool
}

// New returns a new empty dialect.
// The version must be a valid semantic version, for example v1.0.0.
// materialize may be nil if the dialect cannot materialize literals.
func New(name, version string, materialize MaterializeFunc) (*Dialect, error) {
	if name == "" || strings.Contains(name, ".") {
		return nil, errors.Errorf("invalid dialect name %q", name)
	}
	if !semver.IsValid(version) {
		return nil, errors.Errorf("dialect %s: invalid version %q", name, version)
	}
	return &Dialect{
		name:        name,
		version:     version,
		kinds:       make(map[string]*Descriptor),
		materialize: materialize,
	}, nil
}

// Name returns the namespace of the dialect.
func (d *Dialect) Name() string {
	return d.name
}

// Version returns the semantic version of the dialect.
func (d *Dialect) Version() string {
	return d.version
}

// Register adds an operation kind to the dialect.
// The dialect is left unchanged if an error is returned.
func (d *Dialect) Register(desc *Descriptor) error {
	if d.frozen {
		return errors.Wrapf(ErrFrozen, "cannot register %s.%s", d.name, desc.Name)
	}
	if err := desc.validate(); err != nil {
		return errors.Wrapf(err, "dialect %s", d.name)
	}
	if _, dup := d.kinds[desc.Name]; dup {
		return &DuplicateKindError{Dialect: d.name, Kind: desc.Name}
	}
	if desc.Since != "" && semver.Compare(desc.Since, d.version) > 0 {
		return errors.Errorf("dialect %s %s: operation kind %q requires version %s", d.name, d.version, desc.Name, desc.Since)
	}
	registered := *desc
	registered.dialect = d
	d.kinds[desc.Name] = &registered
	return nil
}

// Freeze prevents further registrations.
func (d *Dialect) Freeze() {
	d.frozen = true
}

// Frozen returns true if the dialect has been frozen.
func (d *Dialect) Frozen() bool {
	return d.frozen
}

// Lookup returns the descriptor of an operation kind.
func (d *Dialect) Lookup(kind string) (*Descriptor, bool) {
	desc, ok := d.kinds[kind]
	return desc, ok
}

// Kinds returns the sorted list of registered operation kinds.
func (d *Dialect) Kinds() []string {
	kinds := maps.Keys(d.kinds)
	sort.Strings(kinds)
	return kinds
}

// Supports returns true if an operation kind is available in a given version of the dialect.
func (d *Dialect) Supports(kind, version string) bool {
	desc, ok := d.kinds[kind]
	if !ok {
		return false
	}
	if desc.Since == "" {
		return true
	}
	return semver.Compare(desc.Since, version) <= 0
}

// MaterializeConstant creates a single operation whose only result has type typ
// and which folds to value.
// A scalar type is materialized as a tensor of rank 0, the canonical type
// of a scalar literal.
// The returned error is fatal: it means the dialect cannot represent the literal.
func (d *Dialect) MaterializeConstant(b *Builder, value ir.Attribute, typ ir.Type) (*ir.Operation, error) {
	if scalar, ok := typ.(ir.ScalarType); ok {
		typ = ir.Tensor(scalar.DType())
	}
	if d.materialize == nil {
		return nil, &MaterializeError{
			Dialect: d.name,
			Value:   value,
			Type:    typ,
			Reason:  "dialect has no materialization policy",
		}
	}
	op, err := d.materialize(b, value, typ)
	if err != nil {
		return nil, err
	}
	reason := ""
	if op.NumResults() != 1 {
		reason = "materialized operation " + op.Name() + " does not have exactly one result"
	} else if got := op.Result(0).Type(); !got.Equal(typ) {
		reason = "materialized operation produces a value of type " + got.String()
	}
	if reason == "" {
		return op, nil
	}
	if g := op.Graph(); g != nil {
		// The operation has just been created: it has no use yet.
		if err := g.Erase(op); err != nil {
			return nil, err
		}
	}
	return nil, &MaterializeError{
		Dialect: d.name,
		Value:   value,
		Type:    typ,
		Reason:  reason,
	}
}

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

// NamedAttr is an attribute with its name in an operation.
type NamedAttr struct {
	Name  string
	Value Attribute
}

// Attr returns a named attribute.
func Attr(name string, val Attribute) NamedAttr {
	return NamedAttr{Name: name, Value: val}
}

// Attrs is an immutable dictionary of attributes.
// Names are unique and the insertion order is preserved.
// A nil *Attrs is an empty dictionary.
type Attrs struct {
	names []string
	m     map[string]Attribute
}

// NewAttrs returns a dictionary of attributes.
// An error is returned if a name is empty or used more than once.
func NewAttrs(attrs ...NamedAttr) (*Attrs, error) {
	d := &Attrs{m: make(map[string]Attribute, len(attrs))}
	for _, attr := range attrs {
		if attr.Name == "" {
			return nil, errors.Errorf("attribute with no name")
		}
		if attr.Value == nil {
			return nil, errors.Errorf("attribute %q has no value", attr.Name)
		}
		if _, dup := d.m[attr.Name]; dup {
			return nil, errors.Errorf("attribute %q defined more than once", attr.Name)
		}
		d.names = append(d.names, attr.Name)
		d.m[attr.Name] = attr.Value
	}
	return d, nil
}

// Get returns an attribute given its name.
func (d *Attrs) Get(name string) (Attribute, bool) {
	if d == nil {
		return nil, false
	}
	attr, ok := d.m[name]
	return attr, ok
}

// Len returns the number of attributes.
func (d *Attrs) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

// Names returns the attribute names in insertion order.
func (d *Attrs) Names() []string {
	if d == nil {
		return nil
	}
	return append([]string{}, d.names...)
}

// Iter returns an iterator to range over the attributes in insertion order.
func (d *Attrs) Iter() func(func(string, Attribute) bool) {
	return func(yield func(string, Attribute) bool) {
		if d == nil {
			return
		}
		for _, name := range d.names {
			if !yield(name, d.m[name]) {
				break
			}
		}
	}
}

// With returns a new dictionary where an attribute has been set.
// An existing attribute keeps its position.
func (d *Attrs) With(name string, val Attribute) *Attrs {
	r := &Attrs{m: make(map[string]Attribute, d.Len()+1)}
	for n, v := range d.Iter() {
		r.names = append(r.names, n)
		r.m[n] = v
	}
	if _, in := r.m[name]; !in {
		r.names = append(r.names, name)
	}
	r.m[name] = val
	return r
}

// Equal returns true if both dictionaries hold equal attributes under the same names.
func (d *Attrs) Equal(other *Attrs) bool {
	if d.Len() != other.Len() {
		return false
	}
	for name, attr := range d.Iter() {
		otherAttr, ok := other.Get(name)
		if !ok || !EqualAttributes(attr, otherAttr) {
			return false
		}
	}
	return true
}

func (d *Attrs) String() string {
	ss := make([]string, 0, d.Len())
	for name, attr := range d.Iter() {
		ss = append(ss, name+" = "+attr.String())
	}
	return "{" + strings.Join(ss, ", ") + "}"
}

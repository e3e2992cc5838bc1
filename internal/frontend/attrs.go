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

package frontend

import (
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/pdir/build/fmterr"
	"github.com/gx-org/pdir/build/ir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Attribute kinds of the long form.
const (
	BoolAttr     = "bool"
	IntAttr      = "int"
	FloatAttr    = "float"
	StringAttr   = "string"
	IntsAttr     = "ints"
	ElementsAttr = "elements"
)

// attrSpec is the long form of an attribute:
//
//	{kind: int, type: i64, value: 3}
//	{kind: elements, type: f32, shape: [2, 2], value: [[1, 2], [3, 4]]}
type attrSpec struct {
	Kind  string    `yaml:"kind"`
	Type  string    `yaml:"type"`
	Shape []int     `yaml:"shape"`
	Value yaml.Node `yaml:"value"`
}

const (
	defaultIntType   = dtype.Int32
	defaultFloatType = dtype.Float32
)

type attrParser struct {
	file string
}

func (p *attrParser) loc(node *yaml.Node) ir.Location {
	return ir.FileLoc(p.file, node.Line, node.Column)
}

func (p *attrParser) errorf(node *yaml.Node, format string, a ...any) error {
	return fmterr.Errorf(p.loc(node), format, a...)
}

// parseAttrs parses a mapping of attributes, preserving their order.
func (p *attrParser) parseAttrs(node *yaml.Node) ([]ir.NamedAttr, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, p.errorf(node, "attributes must be a mapping")
	}
	attrs := make([]ir.NamedAttr, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		attr, err := p.parseAttr(val)
		if err != nil {
			return nil, errors.WithMessagef(err, "attribute %q", key.Value)
		}
		attrs = append(attrs, ir.Attr(key.Value, attr))
	}
	return attrs, nil
}

// parseAttr parses an attribute given either in its short form, that is a YAML
// scalar or a list of integers, or in its long form.
func (p *attrParser) parseAttr(node *yaml.Node) (ir.Attribute, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return p.parseShort(node)
	case yaml.SequenceNode:
		return p.parseInts(node)
	case yaml.MappingNode:
		var spec attrSpec
		if err := node.Decode(&spec); err != nil {
			return nil, p.errorf(node, "invalid attribute: %v", err)
		}
		return p.parseLong(node, &spec)
	}
	return nil, p.errorf(node, "invalid attribute")
}

func (p *attrParser) parseShort(node *yaml.Node) (ir.Attribute, error) {
	switch node.ShortTag() {
	case "!!bool":
		return p.scalar(node, dtype.Bool)
	case "!!int":
		return p.scalar(node, defaultIntType)
	case "!!float":
		return p.scalar(node, defaultFloatType)
	case "!!str":
		return ir.String(node.Value), nil
	}
	return nil, p.errorf(node, "unsupported value %q", node.Value)
}

func (p *attrParser) parseInts(node *yaml.Node) (ir.Attribute, error) {
	var vals []int64
	if err := node.Decode(&vals); err != nil {
		return nil, p.errorf(node, "invalid list of integers: %v", err)
	}
	return ir.Ints(vals...), nil
}

func (p *attrParser) dtype(node *yaml.Node, name string, def dtype.DataType) (dtype.DataType, error) {
	if name == "" {
		return def, nil
	}
	dt := ir.ParseDType(name)
	if dt == dtype.Invalid {
		return dtype.Invalid, p.errorf(node, "unknown data type %q", name)
	}
	return dt, nil
}

func (p *attrParser) parseLong(node *yaml.Node, spec *attrSpec) (ir.Attribute, error) {
	value := &spec.Value
	if value.Kind == 0 {
		return nil, p.errorf(node, "attribute of kind %q has no value", spec.Kind)
	}
	switch spec.Kind {
	case BoolAttr:
		return p.scalar(value, dtype.Bool)
	case IntAttr:
		dt, err := p.dtype(node, spec.Type, defaultIntType)
		if err != nil {
			return nil, err
		}
		if !ir.IsIntegerDType(dt) {
			return nil, p.errorf(node, "%s is not an integer data type", spec.Type)
		}
		return p.scalar(value, dt)
	case FloatAttr:
		dt, err := p.dtype(node, spec.Type, defaultFloatType)
		if err != nil {
			return nil, err
		}
		if !ir.IsFloatDType(dt) {
			return nil, p.errorf(node, "%s is not a float data type", spec.Type)
		}
		return p.scalar(value, dt)
	case StringAttr:
		if value.Kind != yaml.ScalarNode {
			return nil, p.errorf(value, "a string attribute requires a scalar value")
		}
		return ir.String(value.Value), nil
	case IntsAttr:
		return p.parseInts(value)
	case ElementsAttr:
		return p.parseElements(node, spec)
	}
	return nil, p.errorf(node, "unknown attribute kind %q", spec.Kind)
}

func (p *attrParser) parseElements(node *yaml.Node, spec *attrSpec) (ir.Attribute, error) {
	dt, err := p.dtype(node, spec.Type, defaultFloatType)
	if err != nil {
		return nil, err
	}
	var leaves []*yaml.Node
	flatten(&spec.Value, &leaves)
	vals := make([]ir.ScalarAttr, len(leaves))
	for i, leaf := range leaves {
		if vals[i], err = p.scalar(leaf, dt); err != nil {
			return nil, err
		}
	}
	lit, err := ir.NewElements(ir.Tensor(dt, spec.Shape...), vals...)
	if err != nil {
		return nil, fmterr.Position(p.loc(node), err)
	}
	return lit, nil
}

// flatten appends the scalars of nested sequences in row-major order.
func flatten(node *yaml.Node, leaves *[]*yaml.Node) {
	if node.Kind != yaml.SequenceNode {
		*leaves = append(*leaves, node)
		return
	}
	for _, child := range node.Content {
		flatten(child, leaves)
	}
}

// scalar parses a literal of a given data type.
func (p *attrParser) scalar(node *yaml.Node, dt dtype.DataType) (ir.ScalarAttr, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, p.errorf(node, "expected a scalar value")
	}
	switch {
	case dt == dtype.Bool:
		var v bool
		if err := node.Decode(&v); err != nil {
			return nil, p.errorf(node, "invalid boolean %q", node.Value)
		}
		return ir.Bool(v), nil
	case ir.IsIntegerDType(dt):
		var v int64
		if err := node.Decode(&v); err != nil {
			return nil, p.errorf(node, "invalid integer %q", node.Value)
		}
		attr, err := ir.NewInt(dt, v)
		if err != nil {
			return nil, fmterr.Position(p.loc(node), err)
		}
		return attr, nil
	case ir.IsFloatDType(dt):
		var v float64
		if err := node.Decode(&v); err != nil {
			return nil, p.errorf(node, "invalid float %q", node.Value)
		}
		attr, err := ir.NewFloat(dt, v)
		if err != nil {
			return nil, fmterr.Position(p.loc(node), err)
		}
		return attr, nil
	}
	return nil, p.errorf(node, "unsupported data type %s", ir.DTypeName(dt))
}

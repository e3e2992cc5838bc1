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

// Package frontend loads graphs from a YAML description.
//
// A document lists graphs. Each graph is a list of operations given by
// their full name, an optional name used to refer to their results,
// operands and attributes:
//
//	graphs:
//	  - name: main
//	    ops:
//	      - kind: pd.feed
//	        name: x
//	        attrs:
//	          name: x
//	          type_shape: [3]
//	          dtype: f32
//	      - kind: pd.constant
//	        name: c
//	        attrs:
//	          value: {kind: elements, type: f32, shape: [3], value: [1, 2, 3]}
//	      - kind: pd.elementwise_add
//	        name: y
//	        operands: [x, c]
//	      - kind: pd.fetch
//	        operands: [y]
//	        attrs:
//	          name: out
//
// An operand refers to the first result of a named operation or to its
// i-th result with name#i.
package frontend

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type (
	// Document is the root of a YAML description.
	Document struct {
		Graphs []GraphSpec `yaml:"graphs"`
	}

	// GraphSpec describes a graph.
	GraphSpec struct {
		Name string   `yaml:"name"`
		Ops  []OpSpec `yaml:"ops"`
	}

	// OpSpec describes an operation.
	OpSpec struct {
		Kind     string    `yaml:"kind"`
		Name     string    `yaml:"name"`
		Operands []string  `yaml:"operands"`
		Attrs    yaml.Node `yaml:"attrs"`

		// Line and Col of the operation in the document.
		Line, Col int `yaml:"-"`
	}
)

// UnmarshalYAML decodes an operation and records its position.
func (s *OpSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain OpSpec
	if err := node.Decode((*plain)(s)); err != nil {
		return err
	}
	s.Line, s.Col = node.Line, node.Column
	return nil
}

// Parse decodes a YAML document.
// Unknown fields are rejected.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, nil
		}
		return nil, errors.Wrap(err, "cannot parse YAML")
	}
	return doc, nil
}

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

// Package irstring prints graphs in a textual form.
package irstring

import (
	"fmt"
	"io"
	"strings"

	"github.com/gx-org/pdir/build/ir"
)

type (
	// Option configures the printer.
	Option func(*printer)

	printer struct {
		w         io.Writer
		err       error
		indent    string
		locations bool
		names     map[*ir.Value]string
	}
)

// WithLocations appends the location of each operation.
func WithLocations() Option {
	return func(p *printer) {
		p.locations = true
	}
}

// WithIndent sets the string used to indent operations.
func WithIndent(indent string) Option {
	return func(p *printer) {
		p.indent = indent
	}
}

// Fprint writes a graph to w.
func Fprint(w io.Writer, g *ir.Graph, opts ...Option) error {
	p := &printer{
		w:      w,
		indent: "  ",
		names:  make(map[*ir.Value]string),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.printf("graph @%s {\n", g.Name())
	for _, op := range g.Ops() {
		p.printf("%s%s\n", p.indent, p.op(op))
	}
	p.printf("}\n")
	return p.err
}

// Graph returns the textual form of a graph.
func Graph(g *ir.Graph, opts ...Option) string {
	var b strings.Builder
	// A strings.Builder never fails.
	_ = Fprint(&b, g, opts...)
	return b.String()
}

// Graphs prints all graphs separated by an empty line.
func Graphs(graphs []*ir.Graph, opts ...Option) string {
	ss := make([]string, len(graphs))
	for i, g := range graphs {
		ss[i] = Graph(g, opts...)
	}
	return strings.Join(ss, "\n")
}

func (p *printer) printf(format string, a ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, a...)
}

func (p *printer) name(val *ir.Value) string {
	if name, ok := p.names[val]; ok {
		return name
	}
	// Value defined outside of the graph or after its use.
	return "%?"
}

func (p *printer) op(op *ir.Operation) string {
	var b strings.Builder
	if op.NumResults() > 0 {
		results := make([]string, op.NumResults())
		for i, res := range op.Results() {
			results[i] = fmt.Sprintf("%%%d", len(p.names))
			p.names[res] = results[i]
		}
		b.WriteString(strings.Join(results, ", "))
		b.WriteString(" = ")
	}
	b.WriteString(op.Name())
	operands := make([]string, op.NumOperands())
	for i, operand := range op.Operands() {
		operands[i] = p.name(operand)
	}
	b.WriteString("(" + strings.Join(operands, ", ") + ")")
	if op.Attrs().Len() > 0 {
		b.WriteString(" ")
		b.WriteString(op.Attrs().String())
	}
	b.WriteString(" : (")
	b.WriteString(typeList(op.OperandTypes()))
	b.WriteString(") -> (")
	b.WriteString(typeList(op.ResultTypes()))
	b.WriteString(")")
	if p.locations {
		b.WriteString(" ")
		b.WriteString(locString(op.Location()))
	}
	return b.String()
}

func locString(loc ir.Location) string {
	if !loc.Known() {
		return loc.String()
	}
	return "loc(" + loc.String() + ")"
}

func typeList(types []ir.Type) string {
	ss := make([]string, len(types))
	for i, typ := range types {
		ss[i] = typ.String()
	}
	return strings.Join(ss, ", ")
}

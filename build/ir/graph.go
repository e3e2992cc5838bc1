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
	"slices"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Graph is a straight-line list of operations in SSA form.
//
// A graph must only be mutated by one goroutine at a time.
// Independent graphs can be processed concurrently.
type Graph struct {
	id   uuid.UUID
	name string
	ops  []*Operation
}

// NewGraph returns an empty graph.
func NewGraph(name string) *Graph {
	return &Graph{id: uuid.New(), name: name}
}

// ID returns the unique identifier of the graph.
func (g *Graph) ID() uuid.UUID {
	return g.id
}

// Name of the graph.
func (g *Graph) Name() string {
	return g.name
}

// Ops returns the operations of the graph in order.
func (g *Graph) Ops() []*Operation {
	return append([]*Operation{}, g.ops...)
}

// Len returns the number of operations in the graph.
func (g *Graph) Len() int {
	return len(g.ops)
}

// IndexOf returns the position of an operation in the graph or -1.
func (g *Graph) IndexOf(op *Operation) int {
	if op.graph != g {
		return -1
	}
	return slices.Index(g.ops, op)
}

// Insert inserts a detached operation before another operation of the graph.
// The operation is appended at the end of the graph if before is nil.
func (g *Graph) Insert(op *Operation, before *Operation) error {
	if op.graph != nil {
		return errors.Errorf("operation %s already belongs to graph %q", op.name, op.graph.name)
	}
	if op.erased {
		return errors.Errorf("cannot insert erased operation %s", op.name)
	}
	if before == nil {
		g.ops = append(g.ops, op)
		op.graph = g
		return nil
	}
	pos := g.IndexOf(before)
	if pos < 0 {
		return errors.Errorf("cannot insert %s: anchor %s is not in graph %q", op.name, before.name, g.name)
	}
	g.ops = slices.Insert(g.ops, pos, op)
	op.graph = g
	return nil
}

// ReplaceAllUsesWith replaces all the uses of a value with another value.
// Both values must have the same type.
func (g *Graph) ReplaceAllUsesWith(from, to *Value) error {
	if from == to {
		return nil
	}
	if !from.typ.Equal(to.typ) {
		return errors.Errorf("cannot replace a value of type %s with a value of type %s", from.typ, to.typ)
	}
	for _, use := range from.Uses() {
		use.Op.setOperand(use.Index, to)
	}
	return nil
}

// Erase removes an operation from the graph.
// The results of the operation must not be used anymore.
func (g *Graph) Erase(op *Operation) error {
	pos := g.IndexOf(op)
	if pos < 0 {
		return errors.Errorf("cannot erase %s: not in graph %q", op.name, g.name)
	}
	for i, res := range op.results {
		if res.HasUses() {
			return errors.Errorf("cannot erase %s: result %d still has %d use(s)", op.name, i, len(res.uses))
		}
	}
	op.dropOperands()
	g.ops = slices.Delete(g.ops, pos, pos+1)
	op.graph = nil
	op.erased = true
	return nil
}

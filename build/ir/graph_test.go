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

package ir_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/pdir/build/ir"
)

func appendOp(t *testing.T, g *ir.Graph, name string, operands []*ir.Value, results ...ir.Type) *ir.Operation {
	t.Helper()
	op, err := ir.NewOperation(&ir.OperationState{
		Name:        name,
		Operands:    operands,
		ResultTypes: results,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Insert(op, nil); err != nil {
		t.Fatal(err)
	}
	return op
}

func opNames(g *ir.Graph) []string {
	var names []string
	for _, op := range g.Ops() {
		names = append(names, op.Name())
	}
	return names
}

func TestOperation(t *testing.T) {
	g := ir.NewGraph("main")
	i32 := ir.Tensor(dtype.Int32)
	x := appendOp(t, g, "test.x", nil, i32)
	y := appendOp(t, g, "test.y", []*ir.Value{x.Result(0), x.Result(0)}, i32)
	if got := y.DialectName(); got != "test" {
		t.Errorf("incorrect dialect name: got %q but want %q", got, "test")
	}
	uses := x.Result(0).Uses()
	want := []ir.Use{{Op: y, Index: 0}, {Op: y, Index: 1}}
	if diff := cmp.Diff(want, uses, cmp.Comparer(func(a, b *ir.Operation) bool { return a == b })); diff != "" {
		t.Errorf("incorrect uses: %s", diff)
	}
	if x.Result(0).DefiningOp() != x || x.Result(0).ResultIndex() != 0 {
		t.Errorf("incorrect definition of %s", x)
	}
	if got, want := y.String(), "test.y{} : (tensor<i32>, tensor<i32>) -> (tensor<i32>)"; got != want {
		t.Errorf("incorrect string: got %q but want %q", got, want)
	}
	if y.Graph() != g {
		t.Errorf("operation not in its graph")
	}
	if _, _, ok := ir.SplitName("nodialect"); ok {
		t.Errorf("a name without a dot has no dialect")
	}
}

func TestNewOperationErrors(t *testing.T) {
	if _, err := ir.NewOperation(&ir.OperationState{}); err == nil {
		t.Errorf("expected an error for an operation with no name")
	}
	if _, err := ir.NewOperation(&ir.OperationState{Name: "test.x", Operands: []*ir.Value{nil}}); err == nil {
		t.Errorf("expected an error for a nil operand")
	}
	if _, err := ir.NewOperation(&ir.OperationState{Name: "test.x", ResultTypes: []ir.Type{nil}}); err == nil {
		t.Errorf("expected an error for a nil result type")
	}
}

func TestGraphInsert(t *testing.T) {
	g := ir.NewGraph("main")
	a := appendOp(t, g, "test.a", nil)
	c := appendOp(t, g, "test.c", nil)
	b, err := ir.NewOperation(&ir.OperationState{Name: "test.b"})
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Insert(b, c); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"test.a", "test.b", "test.c"}, opNames(g)); diff != "" {
		t.Errorf("incorrect order: %s", diff)
	}
	if got := g.IndexOf(a); got != 0 {
		t.Errorf("IndexOf(%s) = %d but want 0", a.Name(), got)
	}
	if err := g.Insert(b, nil); err == nil {
		t.Errorf("expected an error when inserting an operation twice")
	}
	other := ir.NewGraph("other")
	d, err := ir.NewOperation(&ir.OperationState{Name: "test.d"})
	if err != nil {
		t.Fatal(err)
	}
	if err := other.Insert(d, a); err == nil {
		t.Errorf("expected an error when the anchor is in another graph")
	}
	if g.ID() == other.ID() {
		t.Errorf("graphs should have different identifiers")
	}
}

func TestReplaceAllUsesWithAndErase(t *testing.T) {
	g := ir.NewGraph("main")
	f32 := ir.Tensor(dtype.Float32, 2)
	x := appendOp(t, g, "test.x", nil, f32)
	y := appendOp(t, g, "test.y", nil, f32)
	z := appendOp(t, g, "test.z", nil, ir.Tensor(dtype.Int32, 2))
	use := appendOp(t, g, "test.use", []*ir.Value{x.Result(0)}, f32)

	if err := g.Erase(x); err == nil {
		t.Errorf("expected an error when erasing an operation with uses")
	}
	if err := g.ReplaceAllUsesWith(x.Result(0), z.Result(0)); err == nil {
		t.Errorf("expected an error when replacing a value with a value of another type")
	}
	if err := g.ReplaceAllUsesWith(x.Result(0), y.Result(0)); err != nil {
		t.Fatal(err)
	}
	if use.Operand(0) != y.Result(0) {
		t.Errorf("operand not replaced")
	}
	if x.HasUses() {
		t.Errorf("%s should not have any use left", x.Name())
	}
	if err := g.Erase(x); err != nil {
		t.Fatal(err)
	}
	if !x.Erased() || x.Graph() != nil {
		t.Errorf("%s not erased", x.Name())
	}
	if err := g.Erase(x); err == nil {
		t.Errorf("expected an error when erasing an operation twice")
	}
	if err := g.Erase(use); err != nil {
		t.Fatal(err)
	}
	if y.HasUses() {
		t.Errorf("erasing an operation should drop the uses of its operands")
	}
	if diff := cmp.Diff([]string{"test.y", "test.z"}, opNames(g)); diff != "" {
		t.Errorf("incorrect operations: %s", diff)
	}
	if _, err := ir.NewOperation(&ir.OperationState{Name: "test.w", Operands: []*ir.Value{x.Result(0)}}); err == nil {
		t.Errorf("expected an error when using a value of an erased operation")
	}
}

func TestLocation(t *testing.T) {
	tests := []struct {
		loc  ir.Location
		want string
	}{
		{loc: ir.UnknownLoc, want: "loc(unknown)"},
		{loc: ir.FileLoc("a.yaml", 3, 4), want: "a.yaml:3:4"},
		{loc: ir.FileLoc("a.yaml", 3, 0), want: "a.yaml:3"},
		{loc: ir.FileLoc("a.yaml", 3, 4).Named("x"), want: `"x"(a.yaml:3:4)`},
		{loc: ir.UnknownLoc.Named("x"), want: `"x"`},
	}
	for _, test := range tests {
		if got := test.loc.String(); got != test.want {
			t.Errorf("incorrect location: got %q but want %q", got, test.want)
		}
	}
	if ir.UnknownLoc.Known() {
		t.Errorf("unknown location should not be known")
	}
}

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

package canonicalize_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/pdir/build/dialect"
	"github.com/gx-org/pdir/build/ir"
	"github.com/gx-org/pdir/dialects/pd"
	"github.com/gx-org/pdir/internal/canonicalize"
	"go.uber.org/multierr"
)

func newContext(t *testing.T) *dialect.Context {
	ctx, err := pd.NewContext()
	if err != nil {
		t.Fatal(err)
	}
	return ctx
}

type graphBuilder struct {
	t *testing.T
	g *ir.Graph
	b *dialect.Builder
}

func newGraphBuilder(t *testing.T, ctx *dialect.Context, name string) *graphBuilder {
	g := ir.NewGraph(name)
	return &graphBuilder{t: t, g: g, b: dialect.NewBuilder(ctx, g)}
}

func (gb *graphBuilder) op(name string, operands []*ir.Value, attrs ...ir.NamedAttr) *ir.Value {
	op, err := gb.b.Build(name, operands, attrs...)
	if err != nil {
		gb.t.Fatal(err)
	}
	if op.NumResults() == 0 {
		return nil
	}
	return op.Result(0)
}

func (gb *graphBuilder) feed(dt string, dims ...int64) *ir.Value {
	return gb.op(pd.FeedOp, nil,
		ir.Attr("name", ir.String("x")),
		ir.Attr("type_shape", ir.Ints(dims...)),
		ir.Attr("dtype", ir.String(dt)),
	)
}

func (gb *graphBuilder) constant(value ir.Attribute) *ir.Value {
	return gb.op(pd.ConstantOp, nil, ir.Attr("value", value))
}

func (gb *graphBuilder) fetch(x *ir.Value) {
	gb.op(pd.FetchOp, []*ir.Value{x}, ir.Attr("name", ir.String("out")))
}

func f32s(t *testing.T, vals ...float32) *ir.ElementsAttr {
	scalars := make([]ir.ScalarAttr, len(vals))
	for i, v := range vals {
		scalars[i] = ir.Float32(v)
	}
	lit, err := ir.NewElements(ir.Tensor(dtype.Float32, len(vals)), scalars...)
	if err != nil {
		t.Fatal(err)
	}
	return lit
}

func opNames(g *ir.Graph) []string {
	var names []string
	for _, op := range g.Ops() {
		names = append(names, op.Name())
	}
	return names
}

// mixedGraph computes relu(x + c1*c2) where only c1*c2 can be folded.
func mixedGraph(t *testing.T, ctx *dialect.Context, name string) *ir.Graph {
	gb := newGraphBuilder(t, ctx, name)
	x := gb.feed("f32", 3)
	c1 := gb.constant(f32s(t, 1, 2, 3))
	c2 := gb.constant(ir.Float32(2))
	m := gb.op(pd.ElementwiseMulOp, []*ir.Value{c1, c2})
	a := gb.op(pd.ElementwiseAddOp, []*ir.Value{x, m})
	gb.fetch(gb.op(pd.ReluOp, []*ir.Value{a}))
	return gb.g
}

func TestRun(t *testing.T) {
	ctx := newContext(t)
	g := mixedGraph(t, ctx, "mixed")
	stats, err := canonicalize.Run(ctx, g)
	if err != nil {
		t.Fatal(err)
	}
	wantOps := []string{pd.FeedOp, pd.ConstantOp, pd.ElementwiseAddOp, pd.ReluOp, pd.FetchOp}
	if diff := cmp.Diff(wantOps, opNames(g)); diff != "" {
		t.Errorf("unexpected operations:\n%s", diff)
	}
	cst := g.Ops()[1]
	value, _ := cst.Attr("value")
	if want := f32s(t, 2, 4, 6); !ir.EqualAttributes(value, want) {
		t.Errorf("got constant %v but want %v", value, want)
	}
	add := g.Ops()[2]
	if add.Operand(1) != cst.Result(0) {
		t.Errorf("addition does not use the folded constant")
	}
	want := canonicalize.Stats{
		Iterations:   3,
		Folded:       7,
		NonFoldable:  12,
		Materialized: 1,
		Erased:       3,
	}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("unexpected stats:\n%s", diff)
	}
	if err := dialect.Verify(ctx, g); err != nil {
		t.Errorf("canonicalized graph is invalid: %v", err)
	}
}

func TestRunChain(t *testing.T) {
	ctx := newContext(t)
	gb := newGraphBuilder(t, ctx, "chain")
	sum := gb.op(pd.ElementwiseAddOp, []*ir.Value{
		gb.constant(ir.Int32(40)),
		gb.constant(ir.Int32(2)),
	})
	neg := gb.op(pd.ElementwiseSubOp, []*ir.Value{gb.constant(ir.Int32(0)), sum})
	gb.fetch(gb.op(pd.ReluOp, []*ir.Value{neg}))
	if _, err := canonicalize.Run(ctx, gb.g); err != nil {
		t.Fatal(err)
	}
	wantOps := []string{pd.ConstantOp, pd.FetchOp}
	if diff := cmp.Diff(wantOps, opNames(gb.g)); diff != "" {
		t.Errorf("unexpected operations:\n%s", diff)
	}
	value, _ := gb.g.Ops()[0].Attr("value")
	if !ir.EqualAttributes(value, ir.Int32(0)) {
		t.Errorf("got %v but want %v", value, ir.Int32(0))
	}
}

func TestMaxIterations(t *testing.T) {
	ctx := newContext(t)
	g := mixedGraph(t, ctx, "mixed")
	stats, err := canonicalize.Run(ctx, g, canonicalize.WithMaxIterations(1))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Iterations != 1 {
		t.Errorf("got %d iterations but want 1", stats.Iterations)
	}
	// The constants of the folded multiplication are dead but still in the graph.
	wantOps := []string{pd.FeedOp, pd.ConstantOp, pd.ConstantOp, pd.ConstantOp, pd.ElementwiseAddOp, pd.ReluOp, pd.FetchOp}
	if diff := cmp.Diff(wantOps, opNames(g)); diff != "" {
		t.Errorf("unexpected operations:\n%s", diff)
	}
}

func TestConstantUniquing(t *testing.T) {
	build := func(ctx *dialect.Context) *ir.Graph {
		gb := newGraphBuilder(t, ctx, "unique")
		x := gb.feed("i32", 2)
		gb.fetch(gb.op(pd.ElementwiseAddOp, []*ir.Value{x, gb.constant(ir.Int32(1))}))
		gb.fetch(gb.op(pd.ElementwiseMulOp, []*ir.Value{x, gb.constant(ir.Int32(1))}))
		return gb.g
	}
	tests := []struct {
		unique     bool
		wantConsts int
		wantReused int
	}{
		{unique: true, wantConsts: 1, wantReused: 1},
		{unique: false, wantConsts: 2, wantReused: 0},
	}
	for _, test := range tests {
		ctx := newContext(t)
		g := build(ctx)
		stats, err := canonicalize.Run(ctx, g, canonicalize.WithConstantUniquing(test.unique))
		if err != nil {
			t.Fatal(err)
		}
		consts := 0
		for _, name := range opNames(g) {
			if name == pd.ConstantOp {
				consts++
			}
		}
		if consts != test.wantConsts {
			t.Errorf("unique=%v: got %d constant(s) but want %d", test.unique, consts, test.wantConsts)
		}
		if stats.Reused != test.wantReused {
			t.Errorf("unique=%v: got %d reused constant(s) but want %d", test.unique, stats.Reused, test.wantReused)
		}
		if err := dialect.Verify(ctx, g); err != nil {
			t.Errorf("unique=%v: canonicalized graph is invalid: %v", test.unique, err)
		}
	}
}

func TestMemoizationDoesNotChangeResults(t *testing.T) {
	var got [2][]string
	for i, memo := range []bool{true, false} {
		ctx := newContext(t)
		g := mixedGraph(t, ctx, "mixed")
		if _, err := canonicalize.Run(ctx, g, canonicalize.WithMemoization(memo)); err != nil {
			t.Fatal(err)
		}
		for _, op := range g.Ops() {
			got[i] = append(got[i], op.String())
		}
	}
	if diff := cmp.Diff(got[0], got[1]); diff != "" {
		t.Errorf("memoization changed the result:\n%s", diff)
	}
}

func TestInferenceFailureIsSkipped(t *testing.T) {
	ctx := newContext(t)
	gb := newGraphBuilder(t, ctx, "invalid")
	x := gb.feed("f32", 2)
	y := gb.feed("i32", 2)
	bad, err := ir.NewOperation(&ir.OperationState{
		Name:        pd.ElementwiseAddOp,
		Operands:    []*ir.Value{x, y},
		ResultTypes: []ir.Type{ir.Tensor(dtype.Float32, 2)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := gb.g.Insert(bad, nil); err != nil {
		t.Fatal(err)
	}
	gb.fetch(bad.Result(0))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	stats, err := canonicalize.Run(ctx, gb.g, canonicalize.WithLogger(logger))
	if err != nil {
		t.Fatalf("an inference failure should not abort the run: %v", err)
	}
	if stats.InferenceFailures != 1 || stats.Iterations != 1 {
		t.Errorf("got %+v but want 1 inference failure in 1 iteration", stats)
	}
	if gb.g.Len() != 4 {
		t.Errorf("graph has %d operations but want 4", gb.g.Len())
	}
	if !strings.Contains(logs.String(), "skipping operation") {
		t.Errorf("skipped operation not logged:\n%s", logs.String())
	}
}

func TestFatalErrorAbortsRun(t *testing.T) {
	bad, err := dialect.New("bad", "v1.0.0", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := bad.Register(&dialect.Descriptor{
		Name:       "op",
		Operands:   []dialect.OperandSpec{{Name: "x"}},
		NumResults: 1,
		Pure:       true,
		InferReturnTypes: func(ic *dialect.InferContext) ([]ir.Type, error) {
			return []ir.Type{ic.Operands[0]}, nil
		},
		Fold: func(*ir.Operation, []ir.Attribute) (dialect.FoldResult, error) {
			return dialect.Folded(ir.Bool(true)), nil
		},
	}); err != nil {
		t.Fatal(err)
	}
	ctx, err := dialect.NewContext(pd.Dialect(), bad)
	if err != nil {
		t.Fatal(err)
	}
	gb := newGraphBuilder(t, ctx, "fatal")
	gb.fetch(gb.op("bad.op", []*ir.Value{gb.feed("f32", 2)}))
	_, err = canonicalize.Run(ctx, gb.g)
	if !dialect.IsFatal(err) {
		t.Errorf("got error %v but want a fatal error", err)
	}
}

func TestRunAll(t *testing.T) {
	ctx := newContext(t)
	var graphs []*ir.Graph
	for _, name := range []string{"g0", "g1", "g2", "g3"} {
		graphs = append(graphs, mixedGraph(t, ctx, name))
	}
	stats, err := canonicalize.RunAll(context.Background(), ctx, graphs, canonicalize.WithJobs(2))
	if err != nil {
		t.Fatal(err)
	}
	for i, g := range graphs {
		if g.Len() != 5 {
			t.Errorf("graph %s has %d operations but want 5", g.Name(), g.Len())
		}
		if stats[i].Materialized != 1 {
			t.Errorf("graph %s: got %d materialized constant(s) but want 1", g.Name(), stats[i].Materialized)
		}
	}
}

func TestRunAllCancelled(t *testing.T) {
	ctx := newContext(t)
	graphs := []*ir.Graph{mixedGraph(t, ctx, "g0"), mixedGraph(t, ctx, "g1")}
	goctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := canonicalize.RunAll(goctx, ctx, graphs)
	if errs := multierr.Errors(err); len(errs) != 2 {
		t.Errorf("got %d error(s) but want 2: %v", len(errs), err)
	}
	for _, g := range graphs {
		if g.Len() != 7 {
			t.Errorf("graph %s has been modified after cancellation", g.Name())
		}
	}
}

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

package dialect_test

import (
	"testing"

	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/pdir/build/dialect"
	"github.com/gx-org/pdir/build/ir"
	"github.com/pkg/errors"
)

func TestFold(t *testing.T) {
	ctx := newTestContext(t)
	g := ir.NewGraph("main")
	b := dialect.NewBuilder(ctx, g)
	lit := b.MustBuild("test.lit", nil, ir.Attr("value", ir.Int32(42)))
	id1 := b.MustBuild("test.id", lit.Results())
	id2 := b.MustBuild("test.id", id1.Results())
	arg := b.MustBuild("test.arg", nil, ir.Attr("shape", ir.Ints(2)))
	id3 := b.MustBuild("test.id", arg.Results())

	folder := dialect.NewFolder(ctx)
	tests := []struct {
		op   *ir.Operation
		want ir.Attribute
	}{
		{op: lit, want: ir.Int32(42)},
		{op: id1, want: ir.Int32(42)},
		{op: id2, want: ir.Int32(42)},
		{op: arg},
		{op: id3},
	}
	for _, test := range tests {
		res, err := folder.Fold(test.op)
		if err != nil {
			t.Errorf("cannot fold %v: %v", test.op, err)
			continue
		}
		if test.want == nil {
			if res.Applicable() {
				t.Errorf("%v folded into %v but want not applicable", test.op, res.Attrs())
			}
			continue
		}
		if !res.Applicable() {
			t.Errorf("%v has not been folded", test.op)
			continue
		}
		if got := res.Attrs(); len(got) != 1 || !ir.EqualAttributes(got[0], test.want) {
			t.Errorf("%v folded into %v but want %v", test.op, got, test.want)
		}
	}
	if g.Len() != 5 {
		t.Errorf("folding changed the graph: got %d operations but want 5", g.Len())
	}
}

func TestFoldFixedPoint(t *testing.T) {
	ctx := newTestContext(t)
	b := dialect.NewBuilder(ctx, ir.NewGraph("main"))
	lit := b.MustBuild("test.lit", nil, ir.Attr("value", ir.Float32(1.5)))
	folder := dialect.NewFolder(ctx)
	for i := range 3 {
		res, err := folder.Fold(lit)
		if err != nil {
			t.Fatal(err)
		}
		if got := res.Attrs(); len(got) != 1 || !ir.EqualAttributes(got[0], ir.Float32(1.5)) {
			t.Errorf("fold %d: got %v but want %v", i, got, ir.Float32(1.5))
		}
	}
}

func TestFoldMemo(t *testing.T) {
	tests := []struct {
		memo       bool
		wantHits   int
		wantMisses int
	}{
		{memo: true, wantHits: 1, wantMisses: 2},
		{memo: false, wantHits: 0, wantMisses: 4},
	}
	for _, test := range tests {
		ctx := newTestContext(t)
		b := dialect.NewBuilder(ctx, ir.NewGraph("main"))
		lit := b.MustBuild("test.lit", nil, ir.Attr("value", ir.Int64(7)))
		id1 := b.MustBuild("test.id", lit.Results())
		id2 := b.MustBuild("test.id", id1.Results())
		folder := dialect.NewFolder(ctx, dialect.WithMemo(test.memo))
		var results []dialect.FoldResult
		for range 2 {
			res, err := folder.Fold(id2)
			if err != nil {
				t.Fatal(err)
			}
			results = append(results, res)
		}
		if !ir.EqualAttributes(results[0].Attrs()[0], results[1].Attrs()[0]) {
			t.Errorf("memo=%v: folding twice returned %v then %v", test.memo, results[0].Attrs(), results[1].Attrs())
		}
		hits, misses := folder.MemoStats()
		if hits != test.wantHits || misses != test.wantMisses {
			t.Errorf("memo=%v: got %d hit(s) and %d miss(es) but want %d and %d", test.memo, hits, misses, test.wantHits, test.wantMisses)
		}
	}
}

func TestFoldSharedOperands(t *testing.T) {
	const depth = 40
	tests := []struct {
		memo bool
		// Counters after the second call to Fold.
		wantHits, wantMisses int
	}{
		{memo: true, wantHits: depth + 2, wantMisses: depth},
		{memo: false, wantHits: 2 * depth, wantMisses: 2 * depth},
	}
	for _, test := range tests {
		ctx := newTestContext(t)
		b := dialect.NewBuilder(ctx, ir.NewGraph("main"))
		val := b.MustBuild("test.lit", nil, ir.Attr("value", ir.Int32(3))).Result(0)
		var last *ir.Operation
		for range depth {
			last = b.MustBuild("test.pair", []*ir.Value{val, val})
			val = last.Result(0)
		}
		folder := dialect.NewFolder(ctx, dialect.WithMemo(test.memo))
		res, err := folder.Fold(last)
		if err != nil {
			t.Fatal(err)
		}
		if got := res.Attrs(); len(got) != 1 || !ir.EqualAttributes(got[0], ir.Int32(3)) {
			t.Errorf("memo=%v: folded into %v but want %v", test.memo, got, ir.Int32(3))
		}
		// Every value is folded once per call.
		if hits, misses := folder.MemoStats(); hits != depth || misses != depth {
			t.Errorf("memo=%v: first fold: got %d hit(s) and %d miss(es) but want %d and %d", test.memo, hits, misses, depth, depth)
		}
		if _, err := folder.Fold(last); err != nil {
			t.Fatal(err)
		}
		if hits, misses := folder.MemoStats(); hits != test.wantHits || misses != test.wantMisses {
			t.Errorf("memo=%v: second fold: got %d hit(s) and %d miss(es) but want %d and %d", test.memo, hits, misses, test.wantHits, test.wantMisses)
		}
	}
}

func TestFoldErrors(t *testing.T) {
	ctx := newTestContext(t)
	b := dialect.NewBuilder(ctx, ir.NewGraph("main"))
	arg := b.MustBuild("test.arg", nil, ir.Attr("shape", ir.Ints(2)))
	badFold := b.MustBuild("test.bad_fold", arg.Results())
	failFold := b.MustBuild("test.fail_fold", arg.Results())
	folder := dialect.NewFolder(ctx)

	_, err := folder.Fold(badFold)
	var contractErr *dialect.FoldContractError
	if !errors.As(err, &contractErr) {
		t.Errorf("got error %v but want a FoldContractError", err)
	}
	if !dialect.IsFatal(err) {
		t.Errorf("a fold contract violation should be fatal")
	}

	res, err := folder.Fold(failFold)
	var foldErr *dialect.FoldError
	if !errors.As(err, &foldErr) {
		t.Errorf("got error %v but want a FoldError", err)
	}
	if dialect.IsFatal(err) {
		t.Errorf("a fold failure should not be fatal")
	}
	if res.Applicable() {
		t.Errorf("a failed fold should not be applicable")
	}
}

func TestMaterializeConstant(t *testing.T) {
	ctx := newTestContext(t)
	d, _ := ctx.Dialect("test")
	g := ir.NewGraph("main")
	b := dialect.NewBuilder(ctx, g)
	folder := dialect.NewFolder(ctx)

	op, err := d.MaterializeConstant(b, ir.Int32(42), ir.Tensor(dtype.Int32))
	if err != nil {
		t.Fatal(err)
	}
	res, err := folder.Fold(op)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Attrs(); len(got) != 1 || !ir.EqualAttributes(got[0], ir.Int32(42)) {
		t.Errorf("materialized constant folded into %v but want %v", got, ir.Int32(42))
	}

	_, err = d.MaterializeConstant(b, ir.Int32(42), ir.Tensor(dtype.Float32))
	var matErr *dialect.MaterializeError
	if !errors.As(err, &matErr) {
		t.Errorf("got error %v but want a MaterializeError", err)
	}
	if g.Len() != 1 {
		t.Errorf("graph has %d operations but want 1: a failed materialization must not leave an operation behind", g.Len())
	}

	noPolicy, err := dialect.New("empty", "v1.0.0", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := noPolicy.MaterializeConstant(b, ir.Int32(1), ir.Tensor(dtype.Int32)); err == nil {
		t.Errorf("expected an error when materializing with a dialect without policy")
	}
}

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

// Package canonicalize folds the operations of a graph into constants.
//
// Each pass visits the operations of a graph in order. An operation
// is visited at most once per pass and ends up either folded into literals
// or left unchanged. Folded results are replaced by constants materialized
// by the dialect of the operation and the folded operation is erased once
// it has no use left. Passes are repeated until the graph does not change.
package canonicalize

import (
	"fmt"
	"log/slog"

	"github.com/gx-org/pdir/build/dialect"
	"github.com/gx-org/pdir/build/ir"
	"github.com/pkg/errors"
)

// State of an operation in a pass.
type State int

// States of an operation. Unvisited is the only non-terminal state.
const (
	Unvisited State = iota
	VisitedNonFoldable
	VisitedFolded
)

func (s State) String() string {
	switch s {
	case Unvisited:
		return "unvisited"
	case VisitedNonFoldable:
		return "non-foldable"
	case VisitedFolded:
		return "folded"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Stats reports what happened during a run.
type Stats struct {
	// Iterations is the number of passes over the graph.
	Iterations int
	// Folded is the number of operations folded into literals.
	Folded int
	// NonFoldable is the number of visits leaving an operation unchanged.
	NonFoldable int
	// InferenceFailures is the number of operations skipped because
	// their types could not be inferred.
	InferenceFailures int
	// FoldFailures is the number of operations whose fold function failed.
	FoldFailures int
	// Materialized is the number of constants created.
	Materialized int
	// Reused is the number of times an existing constant was reused.
	Reused int
	// Erased is the number of operations removed from the graph.
	Erased int
}

func (s *Stats) add(o Stats) {
	s.Folded += o.Folded
	s.NonFoldable += o.NonFoldable
	s.InferenceFailures += o.InferenceFailures
	s.FoldFailures += o.FoldFailures
	s.Materialized += o.Materialized
	s.Reused += o.Reused
	s.Erased += o.Erased
}

// Run canonicalizes a graph.
//
// Type inference and fold failures are logged and counted: the operation is
// skipped. A fatal error, that is a defect in a dialect definition, aborts the run.
func Run(ctx *dialect.Context, g *ir.Graph, opts ...Option) (Stats, error) {
	return run(ctx, g, newOptions(opts))
}

func run(ctx *dialect.Context, g *ir.Graph, opts *options) (Stats, error) {
	logger := opts.logger.With("graph", g.Name(), "graph_id", g.ID().String())
	var stats Stats
	for stats.Iterations < opts.maxIterations {
		stats.Iterations++
		p := newPass(ctx, g, opts, logger)
		changed, err := p.run()
		stats.add(p.stats)
		if err != nil {
			return stats, err
		}
		logger.Debug("pass done", "iteration", stats.Iterations, "changed", changed, "folded", p.stats.Folded)
		if !changed {
			break
		}
	}
	return stats, nil
}

type constKey struct {
	fingerprint string
	typ         string
}

type pass struct {
	ctx    *dialect.Context
	g      *ir.Graph
	opts   *options
	logger *slog.Logger

	folder *dialect.Folder
	states map[*ir.Operation]State
	consts map[constKey]*ir.Value
	stats  Stats
}

func newPass(ctx *dialect.Context, g *ir.Graph, opts *options, logger *slog.Logger) *pass {
	return &pass{
		ctx:    ctx,
		g:      g,
		opts:   opts,
		logger: logger,
		folder: dialect.NewFolder(ctx, dialect.WithMemo(opts.memoize)),
		states: make(map[*ir.Operation]State),
		consts: make(map[constKey]*ir.Value),
	}
}

func (p *pass) state(op *ir.Operation) State {
	return p.states[op]
}

func (p *pass) setState(op *ir.Operation, s State) {
	if prev := p.state(op); prev != Unvisited {
		panic(fmt.Sprintf("operation %s visited twice in a pass: %s -> %s", op.Name(), prev, s))
	}
	p.states[op] = s
	switch s {
	case VisitedFolded:
		p.stats.Folded++
	case VisitedNonFoldable:
		p.stats.NonFoldable++
	}
}

func (p *pass) run() (changed bool, err error) {
	for _, op := range p.g.Ops() {
		if op.Erased() || p.state(op) != Unvisited {
			continue
		}
		opChanged, err := p.visit(op)
		if err != nil {
			return changed, err
		}
		changed = changed || opChanged
	}
	return changed, nil
}

func (p *pass) visit(op *ir.Operation) (bool, error) {
	desc, ok := p.ctx.Lookup(op.Name())
	if !ok {
		return false, &dialect.UnknownKindError{Name: op.Name(), Loc: op.Location()}
	}
	if desc.InferReturnTypes != nil {
		if _, err := p.ctx.InferOp(op); err != nil {
			if dialect.IsFatal(err) {
				return false, err
			}
			p.stats.InferenceFailures++
			p.logger.Warn("skipping operation", "op", op.Name(), "loc", op.Location().String(), "error", err)
			p.setState(op, VisitedNonFoldable)
			return false, nil
		}
	}
	if desc.ConstantLike {
		return p.visitConstant(op, desc)
	}
	res, err := p.folder.Fold(op)
	if err != nil {
		if dialect.IsFatal(err) {
			return false, err
		}
		p.stats.FoldFailures++
		p.logger.Warn("cannot fold", "op", op.Name(), "loc", op.Location().String(), "error", err)
		p.setState(op, VisitedNonFoldable)
		return false, nil
	}
	if !res.Applicable() {
		p.setState(op, VisitedNonFoldable)
		return false, nil
	}
	p.setState(op, VisitedFolded)
	p.logger.Debug("folded", "op", op.Name(), "loc", op.Location().String())
	return p.replace(op, desc, res.Attrs())
}

// visitConstant erases a constant without use, records it for reuse or,
// if an identical constant has already been recorded, replaces it by that constant.
func (p *pass) visitConstant(op *ir.Operation, desc *dialect.Descriptor) (bool, error) {
	p.setState(op, VisitedFolded)
	if desc.Pure && !op.HasUses() {
		return true, p.erase(op)
	}
	if !p.opts.uniqueConsts || op.NumResults() != 1 {
		return false, nil
	}
	res, err := p.folder.Fold(op)
	if err != nil || !res.Applicable() {
		return false, err
	}
	key, err := newConstKey(res.Attrs()[0], op.Result(0).Type())
	if err != nil {
		return false, err
	}
	prev, found := p.consts[key]
	if !found {
		p.consts[key] = op.Result(0)
		return false, nil
	}
	if err := p.g.ReplaceAllUsesWith(op.Result(0), prev); err != nil {
		return false, err
	}
	p.stats.Reused++
	return true, p.erase(op)
}

func newConstKey(attr ir.Attribute, typ ir.Type) (constKey, error) {
	fp, err := ir.Fingerprint(attr)
	if err != nil {
		return constKey{}, err
	}
	return constKey{fingerprint: fp, typ: typ.String()}, nil
}

// replace replaces the results of a folded operation with constants.
func (p *pass) replace(op *ir.Operation, desc *dialect.Descriptor, attrs []ir.Attribute) (bool, error) {
	changed := false
	for i, res := range op.Results() {
		if !res.HasUses() {
			continue
		}
		val, err := p.constant(op, attrs[i], res.Type())
		if err != nil {
			return changed, err
		}
		if err := p.g.ReplaceAllUsesWith(res, val); err != nil {
			return changed, err
		}
		changed = true
	}
	if desc.Pure && !op.HasUses() {
		if err := p.erase(op); err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

// constant returns a value holding a literal, reusing an existing constant if possible.
func (p *pass) constant(op *ir.Operation, attr ir.Attribute, typ ir.Type) (*ir.Value, error) {
	var key constKey
	if p.opts.uniqueConsts {
		var err error
		if key, err = newConstKey(attr, typ); err != nil {
			return nil, err
		}
		if val, ok := p.consts[key]; ok {
			p.stats.Reused++
			return val, nil
		}
	}
	d, ok := p.ctx.Dialect(op.DialectName())
	if !ok {
		return nil, errors.Errorf("no dialect %s to materialize the results of %s", op.DialectName(), op.Name())
	}
	b := dialect.NewBuilder(p.ctx, p.g).Before(op).At(op.Location())
	cst, err := d.MaterializeConstant(b, attr, typ)
	if err != nil {
		return nil, err
	}
	p.states[cst] = VisitedFolded
	p.stats.Materialized++
	val := cst.Result(0)
	if p.opts.uniqueConsts {
		p.consts[key] = val
	}
	return val, nil
}

func (p *pass) erase(op *ir.Operation) error {
	if err := p.g.Erase(op); err != nil {
		return err
	}
	p.stats.Erased++
	return nil
}

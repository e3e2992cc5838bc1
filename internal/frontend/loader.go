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
	"os"
	"strconv"
	"strings"

	"github.com/gx-org/pdir/build/dialect"
	"github.com/gx-org/pdir/build/fmterr"
	"github.com/gx-org/pdir/build/ir"
	"github.com/pkg/errors"
)

// Option configures the loader.
type Option func(*options)

type options struct {
	target string
}

// WithTargetVersion rejects operations not available in a given version of their dialect.
func WithTargetVersion(version string) Option {
	return func(o *options) {
		o.target = version
	}
}

// LoadFile loads the graphs described in a YAML file.
func LoadFile(ctx *dialect.Context, path string, opts ...Option) ([]*ir.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}
	return Load(ctx, path, data, opts...)
}

// Load builds the graphs of a YAML document.
//
// A failure while building an operation aborts its graph: graphs built
// without any error are returned together with the errors of the other graphs.
func Load(ctx *dialect.Context, file string, data []byte, opts ...Option) ([]*ir.Graph, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessage(err, file)
	}
	var (
		app    fmterr.Appender
		graphs []*ir.Graph
		names  = make(map[string]bool)
	)
	for i := range doc.Graphs {
		spec := &doc.Graphs[i]
		if spec.Name == "" {
			app.Append(errors.Errorf("%s: graph %d has no name", file, i))
			continue
		}
		if names[spec.Name] {
			app.Append(errors.Errorf("%s: graph %q defined more than once", file, spec.Name))
			continue
		}
		names[spec.Name] = true
		l := &graphLoader{
			attrParser: attrParser{file: file},
			ctx:        ctx,
			target:     o.target,
			g:          ir.NewGraph(spec.Name),
			values:     make(map[string][]*ir.Value),
		}
		l.b = dialect.NewBuilder(ctx, l.g)
		app.Push(fmterr.PrefixWith("graph %q: ", spec.Name))
		if l.load(&app, spec) {
			graphs = append(graphs, l.g)
		}
		app.Pop()
	}
	return graphs, app.Err()
}

type graphLoader struct {
	attrParser
	ctx    *dialect.Context
	target string
	g      *ir.Graph
	b      *dialect.Builder
	values map[string][]*ir.Value
}

func (l *graphLoader) load(app *fmterr.Appender, spec *GraphSpec) bool {
	for i := range spec.Ops {
		if err := l.loadOp(&spec.Ops[i]); err != nil {
			return app.Append(errors.WithMessagef(err, "operation %d", i))
		}
	}
	return true
}

func (l *graphLoader) loadOp(spec *OpSpec) error {
	loc := ir.FileLoc(l.file, spec.Line, spec.Col)
	if spec.Name != "" {
		loc = loc.Named(spec.Name)
		if _, dup := l.values[spec.Name]; dup {
			return fmterr.Errorf(loc, "name %q already used", spec.Name)
		}
	}
	if spec.Kind == "" {
		return fmterr.Errorf(loc, "operation has no kind")
	}
	if err := l.checkVersion(loc, spec.Kind); err != nil {
		return err
	}
	operands := make([]*ir.Value, len(spec.Operands))
	for i, ref := range spec.Operands {
		val, err := l.resolve(ref)
		if err != nil {
			return fmterr.PosPrefixWith(loc, "operand %d: ", i)(err)
		}
		operands[i] = val
	}
	attrs, err := l.parseAttrs(&spec.Attrs)
	if err != nil {
		return err
	}
	op, err := l.b.At(loc).Build(spec.Kind, operands, attrs...)
	if err != nil {
		return err
	}
	if spec.Name != "" {
		l.values[spec.Name] = op.Results()
	}
	return nil
}

func (l *graphLoader) checkVersion(loc ir.Location, kind string) error {
	if l.target == "" {
		return nil
	}
	desc, ok := l.ctx.Lookup(kind)
	if !ok {
		// Reported by the builder.
		return nil
	}
	if desc.Dialect().Supports(desc.Name, l.target) {
		return nil
	}
	return fmterr.Errorf(loc, "%s requires version %s of dialect %s but the target version is %s", kind, desc.Since, desc.Dialect().Name(), l.target)
}

// resolve returns the value referred to by name or name#index.
func (l *graphLoader) resolve(ref string) (*ir.Value, error) {
	name, index := ref, 0
	if before, after, ok := strings.Cut(ref, "#"); ok {
		var err error
		if index, err = strconv.Atoi(after); err != nil {
			return nil, errors.Errorf("invalid operand %q: %v", ref, err)
		}
		name = before
	}
	results, ok := l.values[name]
	if !ok {
		return nil, errors.Errorf("undefined operand %q", name)
	}
	if index < 0 || index >= len(results) {
		return nil, errors.Errorf("operand %q: %s has %d result(s)", ref, name, len(results))
	}
	return results[index], nil
}

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

package dialect

import (
	"fmt"
	"sort"

	"github.com/gx-org/pdir/build/ir"
	"github.com/pkg/errors"
)

// Context is the set of dialects available to build, infer and fold operations.
// All its dialects are frozen: a context can be shared by goroutines
// processing independent graphs.
type Context struct {
	dialects map[string]*Dialect
}

// NewContext returns a context from a list of dialects.
// The dialects are frozen.
func NewContext(dialects ...*Dialect) (*Context, error) {
	ctx := &Context{dialects: make(map[string]*Dialect, len(dialects))}
	for _, d := range dialects {
		if _, dup := ctx.dialects[d.name]; dup {
			return nil, errors.Errorf("dialect %s loaded more than once", d.name)
		}
		ctx.dialects[d.name] = d
	}
	for _, d := range dialects {
		d.Freeze()
	}
	return ctx, nil
}

// Dialect returns a dialect given its namespace.
func (ctx *Context) Dialect(name string) (*Dialect, bool) {
	d, ok := ctx.dialects[name]
	return d, ok
}

// Dialects returns all the dialects sorted by name.
func (ctx *Context) Dialects() []*Dialect {
	ds := make([]*Dialect, 0, len(ctx.dialects))
	for _, d := range ctx.dialects {
		ds = append(ds, d)
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i].name < ds[j].name })
	return ds
}

// Lookup returns the descriptor of an operation given its full name.
func (ctx *Context) Lookup(name string) (*Descriptor, bool) {
	dialectName, kind, ok := ir.SplitName(name)
	if !ok {
		return nil, false
	}
	d, ok := ctx.dialects[dialectName]
	if !ok {
		return nil, false
	}
	return d.Lookup(kind)
}

// InferContext is the input of a type inference function.
type InferContext struct {
	Context  *Context
	Location ir.Location
	Operands []ir.Type
	Attrs    *ir.Attrs
	Regions  []*ir.Region
}

// Attr returns an attribute given its name.
func (ic *InferContext) Attr(name string) (ir.Attribute, bool) {
	return ic.Attrs.Get(name)
}

// Errorf returns an inference error.
func (ic *InferContext) Errorf(format string, a ...any) error {
	return errors.Errorf(format, a...)
}

// InferReturnTypes infers the result types of an operation given its name,
// the types of its operands, and its attributes.
//
// The result is a deterministic function of the operand types and of the
// attributes only. A *TypeInferenceError is returned on failure.
func (ctx *Context) InferReturnTypes(name string, loc ir.Location, operands []ir.Type, attrs *ir.Attrs, regions []*ir.Region) ([]ir.Type, error) {
	desc, ok := ctx.Lookup(name)
	if !ok {
		return nil, &UnknownKindError{Name: name, Loc: loc}
	}
	return ctx.infer(desc, &InferContext{
		Context:  ctx,
		Location: loc,
		Operands: operands,
		Attrs:    attrs,
		Regions:  regions,
	})
}

// InferOp infers again the result types of an existing operation.
func (ctx *Context) InferOp(op *ir.Operation) ([]ir.Type, error) {
	return ctx.InferReturnTypes(op.Name(), op.Location(), op.OperandTypes(), op.Attrs(), op.Regions())
}

func (ctx *Context) infer(desc *Descriptor, ic *InferContext) ([]ir.Type, error) {
	inferErr := func(err error) error {
		return &TypeInferenceError{Op: desc.FullName(), Loc: ic.Location, Err: err}
	}
	if desc.InferReturnTypes == nil {
		return nil, inferErr(errors.Errorf("operation does not implement type inference"))
	}
	types, err := desc.InferReturnTypes(ic)
	if err != nil {
		return nil, inferErr(err)
	}
	if len(types) != desc.NumResults {
		return nil, inferErr(errors.Errorf("inferred %d type(s) for %d result(s)", len(types), desc.NumResults))
	}
	for i, typ := range types {
		if typ == nil {
			return nil, inferErr(errors.Errorf("no type inferred for result %d", i))
		}
	}
	return types, nil
}

// sameTypes returns an empty string if both lists of types are equal,
// a description of the difference otherwise.
func sameTypes(want, got []ir.Type) string {
	if len(want) != len(got) {
		return fmt.Sprintf("%d type(s) instead of %d", len(got), len(want))
	}
	for i, typ := range want {
		if !typ.Equal(got[i]) {
			return fmt.Sprintf("result %d has type %s instead of %s", i, got[i], typ)
		}
	}
	return ""
}

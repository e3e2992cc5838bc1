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

// Package pd defines the pd dialect: tensor operations imported from a
// deep learning framework program.
//
// The dialect is registered once per process and frozen. Call Dialect to
// get the shared instance or NewDialect to get a fresh unfrozen instance
// that can be extended with more operation kinds.
package pd

import (
	"sync"

	"github.com/gx-org/pdir/build/dialect"
	"github.com/pkg/errors"
)

const (
	// Name is the namespace of the dialect.
	Name = "pd"
	// Version of the dialect.
	Version = "v1.1.0"
)

// Full names of the operations.
const (
	ConstantOp       = Name + ".constant"
	FeedOp           = Name + ".feed"
	FetchOp          = Name + ".fetch"
	ElementwiseAddOp = Name + ".elementwise_add"
	ElementwiseSubOp = Name + ".elementwise_sub"
	ElementwiseMulOp = Name + ".elementwise_mul"
	ReluOp           = Name + ".relu"
	ScaleOp          = Name + ".scale"
	ReshapeOp        = Name + ".reshape"
	PsroiPoolOp      = Name + ".psroi_pool"
)

func descriptors() []*dialect.Descriptor {
	return []*dialect.Descriptor{
		constantDescriptor(),
		feedDescriptor(),
		fetchDescriptor(),
		elementwiseDescriptor("elementwise_add", "Element-wise addition.", addKernel),
		elementwiseDescriptor("elementwise_sub", "Element-wise subtraction.", subKernel),
		elementwiseDescriptor("elementwise_mul", "Element-wise multiplication.", mulKernel),
		reluDescriptor(),
		scaleDescriptor(),
		reshapeDescriptor(),
		psroiPoolDescriptor(),
	}
}

// NewDialect returns a new instance of the pd dialect with all its operations registered.
func NewDialect() (*dialect.Dialect, error) {
	d, err := dialect.New(Name, Version, materialize)
	if err != nil {
		return nil, err
	}
	for _, desc := range descriptors() {
		if err := d.Register(desc); err != nil {
			return nil, errors.Wrapf(err, "cannot initialize dialect %s", Name)
		}
	}
	return d, nil
}

var (
	once     sync.Once
	instance *dialect.Dialect
)

// Dialect returns the process-wide frozen instance of the pd dialect.
// The dialect is initialized the first time the function is called.
func Dialect() *dialect.Dialect {
	once.Do(func() {
		d, err := NewDialect()
		if err != nil {
			panic(err)
		}
		d.Freeze()
		instance = d
	})
	return instance
}

// NewContext returns a dialect context with the pd dialect loaded.
func NewContext() (*dialect.Context, error) {
	return dialect.NewContext(Dialect())
}

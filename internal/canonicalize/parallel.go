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

package canonicalize

import (
	"context"
	"runtime"

	"github.com/gx-org/pdir/build/dialect"
	"github.com/gx-org/pdir/build/ir"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// RunAll canonicalizes independent graphs concurrently.
//
// Each graph is processed by a single goroutine. The dialect context is
// shared by all goroutines and must only contain frozen dialects.
// Stats are returned in the order of the graphs. Errors of all graphs are
// combined. Cancelling ctx stops scheduling graphs not yet started.
func RunAll(ctx context.Context, dctx *dialect.Context, graphs []*ir.Graph, opts ...Option) ([]Stats, error) {
	o := newOptions(opts)
	stats := make([]Stats, len(graphs))
	if len(graphs) == 0 {
		return stats, nil
	}
	jobs := o.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	errs := make([]error, len(graphs))
	var eg errgroup.Group
	eg.SetLimit(min(jobs, len(graphs)))
	for i, g := range graphs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = errors.Wrapf(err, "graph %q not canonicalized", g.Name())
				return nil
			}
			var err error
			if stats[i], err = run(dctx, g, o); err != nil {
				errs[i] = errors.Wrapf(err, "graph %q", g.Name())
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return stats, err
	}
	return stats, multierr.Combine(errs...)
}

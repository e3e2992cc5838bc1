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

// Package dialect defines the contract between operation kinds and the
// infrastructure building, inferring and folding operations.
//
// A Dialect registers the Descriptor of its operation kinds. A descriptor
// declares the schema of an operation (operands, attributes, number of
// results) and implements a subset of the capabilities: a custom build
// function, result type inference and constant folding.
//
// Dialects are loaded into a Context which freezes them. A Builder
// uses a context to create validated operations in a graph and a Folder
// uses it to evaluate operations at compile time.
package dialect

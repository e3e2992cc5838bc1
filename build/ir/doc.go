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

// Package ir is the typed intermediate representation shared by all dialects.
//
// An operation has ordered operands, a dictionary of attributes, typed results
// and optional regions. Each result is a Value defined by exactly one operation
// (SSA form). Attributes are immutable tagged values; tensor literals
// (ElementsAttr) are the canonical form of all literals.
//
// The package knows nothing about operation kinds: construction, type
// inference and folding are driven by the dialect package.
package ir

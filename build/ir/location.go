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

package ir

import "fmt"

// Location of an operation in the source it has been built from.
type Location struct {
	// File is the name of the source file. Empty if unknown.
	File string
	// Line and Col are 1-based. Zero if unknown.
	Line, Col int
	// Name is an optional name given to the operation in the source.
	Name string
}

// UnknownLoc is the location of operations with no source.
var UnknownLoc = Location{}

// FileLoc returns a location in a file.
func FileLoc(file string, line, col int) Location {
	return Location{File: file, Line: line, Col: col}
}

// Named returns a copy of the location with a name.
func (loc Location) Named(name string) Location {
	loc.Name = name
	return loc
}

// Known returns true if the location points to a source.
func (loc Location) Known() bool {
	return loc.File != "" || loc.Name != ""
}

func (loc Location) String() string {
	pos := loc.File
	switch {
	case loc.File == "" && loc.Name == "":
		return "loc(unknown)"
	case loc.Line > 0 && loc.Col > 0:
		pos = fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	case loc.Line > 0:
		pos = fmt.Sprintf("%s:%d", loc.File, loc.Line)
	}
	if loc.Name == "" {
		return pos
	}
	if pos == "" {
		return fmt.Sprintf("%q", loc.Name)
	}
	return fmt.Sprintf("%q(%s)", loc.Name, pos)
}

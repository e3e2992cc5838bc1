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

import (
	"crypto/sha256"
	"encoding/hex"
	"math"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// fingerprintRecord is the encoded content of an attribute.
// Literals are always encoded from their canonical form.
type fingerprintRecord struct {
	Kind   AttrKind
	Type   string
	Splat  bool
	Bools  []bool
	Ints   []int64
	Floats []uint64
	Str    string
}

// Fingerprint returns a content key of an attribute.
// Two attributes have the same fingerprint if and only if they are equal
// according to EqualAttributes (NaN payloads aside).
func Fingerprint(attr Attribute) (string, error) {
	rec, err := newFingerprintRecord(attr)
	if err != nil {
		return "", err
	}
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return "", errors.Wrapf(err, "cannot encode attribute %s", attr)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func newFingerprintRecord(attr Attribute) (*fingerprintRecord, error) {
	if attr.Kind().IsLiteral() {
		elements, err := Canonicalize(attr)
		if err != nil {
			return nil, err
		}
		return elementsRecord(elements), nil
	}
	rec := &fingerprintRecord{Kind: attr.Kind(), Type: attr.Type().String()}
	switch attrT := attr.(type) {
	case StringAttr:
		rec.Str = attrT.Val
	case IntsAttr:
		rec.Ints = attrT.vals
	default:
		return nil, errors.Errorf("cannot compute the fingerprint of %T", attr)
	}
	return rec, nil
}

func elementsRecord(elements *ElementsAttr) *fingerprintRecord {
	rec := &fingerprintRecord{
		Kind: ElementsKind,
		Type: elements.Type().String(),
	}
	vals := elements.Values()
	if len(vals) > 1 && allEqual(vals) {
		rec.Splat = true
		vals = vals[:1]
	}
	for _, val := range vals {
		switch valT := val.(type) {
		case BoolAttr:
			rec.Bools = append(rec.Bools, valT.Val)
		case IntAttr:
			rec.Ints = append(rec.Ints, valT.val)
		case FloatAttr:
			rec.Floats = append(rec.Floats, math.Float64bits(valT.val))
		}
	}
	return rec
}

func allEqual(vals []ScalarAttr) bool {
	for _, val := range vals[1:] {
		if !equalScalars(vals[0], val) {
			return false
		}
	}
	return true
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "fmt"

// Variant is a dynamically typed property value carried in a menu node's
// property map. The remote side sends values as tagged unions; the transport
// boundary converts them into Variant so the rest of the module never touches
// wire types directly.
//
// The zero Variant is "empty" and reports false from every As* accessor.
type Variant struct {
	value any
}

// NewVariant wraps an arbitrary value. Intended for the transport layer and
// tests; application code should prefer the typed constructors below.
func NewVariant(value any) Variant {
	return Variant{value: value}
}

// StringVariant returns a Variant holding a string.
func StringVariant(v string) Variant { return Variant{value: v} }

// IntVariant returns a Variant holding a 64-bit integer.
func IntVariant(v int64) Variant { return Variant{value: v} }

// BoolVariant returns a Variant holding a boolean.
func BoolVariant(v bool) Variant { return Variant{value: v} }

// IsZero reports whether the Variant carries no value at all.
func (v Variant) IsZero() bool {
	return v.value == nil
}

// Value returns the underlying value without conversion.
func (v Variant) Value() any {
	return v.value
}

// AsString returns the value as a string. The second return value is false
// when the Variant holds no string.
func (v Variant) AsString() (string, bool) {
	s, ok := v.value.(string)
	return s, ok
}

// AsInt returns the value as an int64, converting from the smaller integer
// widths the wire format produces.
func (v Variant) AsInt() (int64, bool) {
	switch n := v.value.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case uint32:
		return int64(n), true
	}
	return 0, false
}

// AsBool returns the value as a bool.
func (v Variant) AsBool() (bool, bool) {
	b, ok := v.value.(bool)
	return b, ok
}

// String implements fmt.Stringer for logs and the dump tool.
func (v Variant) String() string {
	if v.value == nil {
		return "<empty>"
	}
	return fmt.Sprintf("%v", v.value)
}

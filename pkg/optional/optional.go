// Package optional provides a JSON field wrapper that distinguishes an
// absent field from an explicit null, for partial-update payloads.
package optional

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

var null = []byte("null")

// Value holds a decoded JSON field.
//
// Set is false when the field was absent from the payload. Null is true when
// it was present as null (or as a blank string for non-string types).
type Value[T any] struct {
	Set  bool
	Null bool
	V    T
}

// Of returns a Value holding v.
func Of[T any](v T) Value[T] {
	return Value[T]{Set: true, V: v}
}

// Null returns a Value that was explicitly set to null.
func Null[T any]() Value[T] {
	return Value[T]{Set: true, Null: true}
}

// Ptr returns nil for absent or null values and a pointer to the value otherwise.
func (o Value[T]) Ptr() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.V
	return &v
}

// UnmarshalJSON accepts the value itself, null, or, for non-string types, the
// value encoded as a string ("28", "172.5").
func (o *Value[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, null) {
		o.Null = true
		return nil
	}

	if err := json.Unmarshal(b, &o.V); err == nil {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("invalid value %s", b)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		o.Null = true
		return nil
	}
	if err := json.Unmarshal([]byte(s), &o.V); err != nil {
		return fmt.Errorf("invalid value %q", s)
	}
	return nil
}

// MarshalJSON writes null for absent or null values.
func (o Value[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return null, nil
	}
	return json.Marshal(o.V)
}

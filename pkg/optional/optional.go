// Package optional provides a JSON field wrapper that remembers whether a key was present in the payload.
// It lets partial updates tell "not sent" apart from "sent as null" and "sent with a value".
package optional

import (
	"bytes"
	"encoding/json"
)

// Optional holds a value of type T together with presence information collected during JSON decoding.
// The zero value is an unset field.
type Optional[T any] struct {
	value T
	set   bool
	null  bool
}

// Of returns an Optional that is set to v.
func Of[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Null returns an Optional that was explicitly set to null.
func Null[T any]() Optional[T] {
	return Optional[T]{set: true, null: true}
}

// IsSet reports whether the field was present in the payload, null included.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// IsNull reports whether the field was present and explicitly null.
func (o Optional[T]) IsNull() bool {
	return o.set && o.null
}

// Get returns the value and true when the field carries a non-null value.
func (o Optional[T]) Get() (T, bool) {
	if !o.set || o.null {
		var zero T
		return zero, false
	}
	return o.value, true
}

// UnmarshalJSON marks the field as set. encoding/json calls it for null literals too.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.value = zero
		o.null = true
		return nil
	}
	o.null = false
	return json.Unmarshal(data, &o.value)
}

// MarshalJSON writes the value, or null when the field has no value.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	v, ok := o.Get()
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

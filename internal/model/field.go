package model

import "encoding/json"

// Field is a value that may be unavailable. An unavailable Field carries the
// zero value of T and must be rendered as unknown rather than as that zero.
type Field[T any] struct {
	Value     T
	Available bool
}

// Some wraps an available value.
func Some[T any](v T) Field[T] { return Field[T]{Value: v, Available: true} }

// None returns an unavailable Field.
func None[T any]() Field[T] { return Field[T]{} }

// Or returns the value when available, def otherwise.
func (f Field[T]) Or(def T) T {
	if !f.Available {
		return def
	}
	return f.Value
}

// MarshalJSON encodes an unavailable Field as null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Available {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

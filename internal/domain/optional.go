package domain

import (
	"bytes"
	"encoding/json"
)

// Optional carries a value together with whether it was supplied at all.
// Decoding JSON into an Optional field marks it present whenever the key
// exists, including an explicit null.
type Optional[T any] struct {
	Value   T
	Present bool
	Null    bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Present: true}
}

// Null returns a present Optional that was explicitly null.
func Null[T any]() Optional[T] {
	return Optional[T]{Present: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Value = zero
		o.Null = true
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Present || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

package models

import (
	"bytes"
	"encoding/json"
)

// State tells whether an Optional field was left out, sent as null, or sent with a value
type State int

const (
	// Unset means the field was absent from the request
	Unset State = iota
	// Null means the field was sent as an explicit null
	Null
	// Present means the field carries a value
	Present
)

// Optional is a request field with merge-patch semantics: absent, null and
// a value are three different things.
type Optional[T any] struct {
	state State
	value T
}

// Some returns an Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{state: Present, value: v}
}

// NullOf returns an explicitly null Optional
func NullOf[T any]() Optional[T] {
	return Optional[T]{state: Null}
}

// State returns the presence state of the field
func (o Optional[T]) State() State {
	return o.state
}

// Get returns the value and whether one is present
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.state == Present
}

// Interface returns the value as an interface{}, or nil when no value is present
func (o Optional[T]) Interface() interface{} {
	if o.state != Present {
		return nil
	}
	return o.value
}

// Zero returns the zero value of T, used to learn the field's type
func (o Optional[T]) Zero() interface{} {
	var z T
	return z
}

// UnmarshalJSON implements json.Unmarshaler. It is only invoked for keys
// present in the payload, so absent keys stay Unset.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var z T
		o.state, o.value = Null, z
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.state, o.value = Present, v
	return nil
}

// MarshalJSON implements json.Marshaler
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.state != Present {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

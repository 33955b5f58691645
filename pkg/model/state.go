package model

import (
	"maps"
	"slices"
)

// State maps field keys to their current values. It is immutable: With
// returns a new State and leaves the receiver untouched.
type State struct {
	values map[string]Value
}

// InitialState returns the empty values for every field of schema.
func InitialState(schema Schema) State {
	values := make(map[string]Value, len(schema.Fields))
	for _, f := range schema.Fields {
		values[f.Key] = Zero(f.Kind)
	}
	return State{values: values}
}

// Get returns the value stored under key and whether it exists.
func (s State) Get(key string) (Value, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Value returns the stored value or the empty text value.
func (s State) Value(key string) Value {
	if v, ok := s.values[key]; ok {
		return v
	}
	return Text("")
}

// With returns a copy of s with key set to value.
func (s State) With(key string, value Value) State {
	next := make(map[string]Value, len(s.values)+1)
	maps.Copy(next, s.values)
	next[key] = value
	return State{values: next}
}

// Keys lists the stored keys in sorted order.
func (s State) Keys() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// Equal reports whether both states hold the same keys and values.
func (s State) Equal(other State) bool {
	return maps.EqualFunc(s.values, other.values, Value.Equal)
}

// ValidationErrors maps field keys, plus GeneralKey, to a single message.
type ValidationErrors map[string]string

// Has reports whether key carries a message.
func (e ValidationErrors) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// Empty reports whether no messages are present.
func (e ValidationErrors) Empty() bool {
	return len(e) == 0
}

// Clone returns an independent copy; nil stays nil.
func (e ValidationErrors) Clone() ValidationErrors {
	if e == nil {
		return nil
	}
	return maps.Clone(e)
}

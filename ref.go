package eventfsm

import "fmt"

// anyString is the string representation of a wildcard reference.
const anyString = "*"

// Ref is either an exact value of T or the wildcard that matches every value.
// The zero Ref is an exact reference to the zero value of T.
type Ref[T comparable] struct {
	value    T
	wildcard bool
}

// Is returns an exact reference to v.
func Is[T comparable](v T) Ref[T] {
	return Ref[T]{value: v}
}

// Any returns the wildcard reference for T.
func Any[T comparable]() Ref[T] {
	return Ref[T]{wildcard: true}
}

// AnyState returns the wildcard matching every state.
func AnyState[S comparable]() Ref[S] {
	return Any[S]()
}

// AnyEvent returns the wildcard matching every event.
func AnyEvent[E comparable]() Ref[E] {
	return Any[E]()
}

// IsAny returns true if the reference is the wildcard.
func (r Ref[T]) IsAny() bool {
	return r.wildcard
}

// Value returns the referenced value. The second result is false for the wildcard.
func (r Ref[T]) Value() (T, bool) {
	if r.wildcard {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Matches returns true if v equals the referenced value or the reference is the wildcard.
func (r Ref[T]) Matches(v T) bool {
	return r.wildcard || r.value == v
}

func (r Ref[T]) String() string {
	if r.wildcard {
		return anyString
	}
	return fmt.Sprintf("%v", r.value)
}

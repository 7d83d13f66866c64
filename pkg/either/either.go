// Package either provides a generic [Either] type that represents a value
// of one of two possible types (a disjoint union).
//
// The package provides type-safe construction via [Left] and [Right] and
// pattern matching via [Either.HasLeft] and [Either.HasRight]; callers read
// the chosen variant directly through the exported pointers.
package either

import "fmt"

// Either with variants Left and Right is a general purpose sum type with two cases.
type Either[L, R any] struct {
	Left  *L // A value of type L.
	Right *R // A value of type R.
}

// Left creates a new Either value with the given left value.
func Left[L, R any](left L) Either[L, R] {
	return Either[L, R]{Left: &left}
}

// Right creates a new Either value with the given right value.
func Right[L, R any](right R) Either[L, R] {
	return Either[L, R]{Right: &right}
}

func (e Either[L, R]) String() string {
	if e.Left != nil {
		return fmt.Sprintf("Left(%v)", *e.Left)
	}

	if e.Right != nil {
		return fmt.Sprintf("Right(%v)", *e.Right)
	}

	return "Empty"
}

// HasLeft returns true if the value is the Left variant.
func (e Either[L, R]) HasLeft() bool { return e.Left != nil }

// HasRight returns true if the value is the Right variant.
func (e Either[L, R]) HasRight() bool { return e.Right != nil }

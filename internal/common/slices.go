// Package common holds small generic helpers shared across packages.
package common

// UnknownStr is the display name used for values outside a known set.
const UnknownStr = "unknown"

// Set builds a membership set from the given values.
func Set[S ~[]E, E comparable](s S) map[E]struct{} {
	out := make(map[E]struct{}, len(s))
	for _, v := range s {
		out[v] = struct{}{}
	}

	return out
}

// NonNil returns s, or an empty non-nil slice when s is nil.
func NonNil[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}

	return s
}

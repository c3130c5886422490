package cmp

import "math"

type BiPredicator[V any, U any] func(a V, b U) bool

// a == b as BiPredicator function
func EqEq[T comparable](a, b T) bool {
	return a == b
}

// Near returns BiPredicator which says |a - b| <= tolerance.
func Near(tolerance float64) BiPredicator[float64, float64] {
	return func(a, b float64) bool {
		return math.Abs(a-b) <= tolerance
	}
}

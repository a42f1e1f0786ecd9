package core

import "golang.org/x/exp/constraints"

// SumValues adds up all values of a numeric map.
func SumValues[K comparable, V constraints.Integer | constraints.Float](m map[K]V) V {
	var sum V
	for _, v := range m {
		sum += v
	}
	return sum
}

// Clamp bounds v into [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package encoding

import "math"

// Rounder maps a continuous position or runway component to an integer.
// Implementations must be deterministic.
type Rounder func(v float64) int

// RoundHalfUp rounds halves toward +Inf: 0.5 -> 1, -0.5 -> 0
func RoundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// RoundHalfEven rounds halves to the nearest even integer: 0.5 -> 0, 1.5 -> 2
func RoundHalfEven(v float64) int {
	return int(math.RoundToEven(v))
}

// RounderByName resolves "half_up" (default when empty) or "half_even"
func RounderByName(name string) (Rounder, bool) {
	switch name {
	case "", "half_up":
		return RoundHalfUp, true
	case "half_even":
		return RoundHalfEven, true
	default:
		return nil, false
	}
}

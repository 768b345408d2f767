// Package geometry provides the pure numeric helpers used by motion synthesis:
// easing curves and monitor rectangle math.
package geometry

import (
	"math"
	"math/rand"
)

// Easing remaps normalized time t in [0,1] onto [0,1].
type Easing func(t float64) float64

// EaseInOutQuad accelerates until halfway, then decelerates.
func EaseInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

// EaseInOutCubic is a steeper version of EaseInOutQuad.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return (t-1)*(2*t-2)*(2*t-2) + 1
}

// EaseOutQuad decelerates to zero velocity.
func EaseOutQuad(t float64) float64 {
	return t * (2 - t)
}

// EaseInOutSine follows half a cosine period.
func EaseInOutSine(t float64) float64 {
	return -(math.Cos(math.Pi*t) - 1) / 2
}

// Easings lists every curve a motion episode may pick from.
var Easings = []Easing{
	EaseInOutQuad,
	EaseInOutCubic,
	EaseOutQuad,
	EaseInOutSine,
}

// RandomEasing picks one of Easings uniformly.
func RandomEasing(rnd *rand.Rand) Easing {
	return Easings[rnd.Intn(len(Easings))]
}

// Lerp interpolates between a and b and truncates toward zero.
func Lerp(a, b int, t float64) int {
	return int(float64(a) + float64(b-a)*t)
}

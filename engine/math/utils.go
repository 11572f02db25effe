package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Lerp linearly interpolates between a and b by t.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// WrapAngle folds an angle in radians into (-PI, PI].
func WrapAngle(radians float32) float32 {
	for radians > K_PI {
		radians -= K_PI_2
	}
	for radians <= -K_PI {
		radians += K_PI_2
	}
	return radians
}

// Abs returns the absolute value of a float32.
func Abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

// Package mobilenet builds the MobileNetV2 backbone: channel rounding,
// downsampling padding, inverted residual blocks and the full stem, body
// and head topology.
package mobilenet

import "math"

// DefaultDivisor is the channel granularity every layer width is rounded to.
const DefaultDivisor = 8

// roundDownLimit is the fraction of the target a rounded width may not fall
// below.
const roundDownLimit = 0.9

// RoundChannels rounds target to the nearest multiple of divisor (halves
// round up), never below minValue and never below 90% of target.
//
// minValue <= 0 defaults to divisor.
//
//	RoundChannels(100, 8, 0) // 104
//	RoundChannels(50, 8, 0)  // 48
//	RoundChannels(10, 8, 8)  // 16
func RoundChannels(target float64, divisor, minValue int) int {
	if divisor <= 0 {
		panic("mobilenet: divisor must be positive")
	}
	if minValue <= 0 {
		minValue = divisor
	}
	d := float64(divisor)
	candidate := max(minValue, int(math.Floor((target+d/2)/d))*divisor)
	if float64(candidate) < roundDownLimit*target {
		candidate += divisor
	}
	return candidate
}

// MakeDivisible rounds target with DefaultDivisor and the default minimum.
func MakeDivisible(target float64) int {
	return RoundChannels(target, DefaultDivisor, 0)
}

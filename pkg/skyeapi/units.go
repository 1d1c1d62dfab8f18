package skyeapi

import "math"

const (
	MaxTiltDegrees = 125.0
	MaxStackPct    = 100.0

	// The roof reports "fully open" around 90 degrees of tilt, not at the
	// mechanical maximum of 125. 125 means slats past vertical.
	FullyOpenTiltDegrees          = 90.0
	FullyOpenTiltToleranceDegrees = 5.0
)

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// TiltDegreesToPercent maps the device-native 0-125 degree range onto 0-100.
func TiltDegreesToPercent(degrees float64) int {
	degrees = clamp(degrees, 0, MaxTiltDegrees)
	return int(math.Round(degrees / MaxTiltDegrees * 100))
}

// TiltPercentToDegrees maps an exposed 0-100 percentage back to degrees.
func TiltPercentToDegrees(percent int) float64 {
	p := clamp(float64(percent), 0, 100)
	return p / 100 * MaxTiltDegrees
}

func ClampPositions(p RoofPositions) RoofPositions {
	return RoofPositions{
		Stack: clamp(p.Stack, 0, MaxStackPct),
		Tilt:  clamp(p.Tilt, 0, MaxTiltDegrees),
	}
}

// IsFullyClosed reports whether the roof is completely shut: slide stacked
// at 0 and slats flat.
func IsFullyClosed(p RoofPositions) bool {
	return math.Round(p.Stack) == 0 && math.Round(p.Tilt) == 0
}

// IsFullyOpen reports whether the roof is completely retracted with the
// slats at the open angle. Tilt at the 125 degree maximum does not count.
func IsFullyOpen(p RoofPositions) bool {
	return math.Round(p.Stack) >= MaxStackPct &&
		math.Abs(p.Tilt-FullyOpenTiltDegrees) <= FullyOpenTiltToleranceDegrees
}

package skyeapi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTiltPercentRoundTrip(t *testing.T) {

	assert := assert.New(t)

	for percent := 0; percent <= 100; percent++ {
		degrees := TiltPercentToDegrees(percent)
		back := TiltDegreesToPercent(degrees)
		assert.InDelta(percent, back, 1, "tilt percent %d should round-trip within 1%%", percent)
	}
}

func TestTiltDegreesToPercentBounds(t *testing.T) {

	assert := assert.New(t)

	assert.Equal(0, TiltDegreesToPercent(0))
	assert.Equal(100, TiltDegreesToPercent(MaxTiltDegrees))
	assert.Equal(100, TiltDegreesToPercent(MaxTiltDegrees+10))
	assert.Equal(0, TiltDegreesToPercent(-5))
	assert.Equal(int(math.Round(62.5/MaxTiltDegrees*100)), TiltDegreesToPercent(62.5))
}

func TestIsFullyClosed(t *testing.T) {

	assert := assert.New(t)

	assert.True(IsFullyClosed(RoofPositions{Stack: 0, Tilt: 0}))
	assert.True(IsFullyClosed(RoofPositions{Stack: 0.4, Tilt: 0.4}), "sub-half readings round to closed")
	assert.False(IsFullyClosed(RoofPositions{Stack: 1, Tilt: 0}))
	assert.False(IsFullyClosed(RoofPositions{Stack: 0, Tilt: 1}))
}

func TestIsFullyOpen(t *testing.T) {

	assert := assert.New(t)

	assert.True(IsFullyOpen(RoofPositions{Stack: 100, Tilt: 90}))
	assert.True(IsFullyOpen(RoofPositions{Stack: 100, Tilt: 94}), "tilt tolerance around ventilation angle")
	assert.False(IsFullyOpen(RoofPositions{Stack: 100, Tilt: 125}), "slats past the open angle are not fully open")
	assert.False(IsFullyOpen(RoofPositions{Stack: 50, Tilt: 90}))
	assert.False(IsFullyOpen(RoofPositions{Stack: 100, Tilt: 0}))
}

func TestClampPositions(t *testing.T) {

	assert := assert.New(t)

	p := ClampPositions(RoofPositions{Stack: 140, Tilt: 200})
	assert.Equal(MaxStackPct, p.Stack)
	assert.Equal(MaxTiltDegrees, p.Tilt)

	p = ClampPositions(RoofPositions{Stack: -3, Tilt: -1})
	assert.Equal(0.0, p.Stack)
	assert.Equal(0.0, p.Tilt)
}

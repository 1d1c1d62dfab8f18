package events

import (
	"testing"

	"pergola2mqtt/internal/core/domain"
	"pergola2mqtt/pkg/skyeapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCoverState(t *testing.T, evs []any) string {
	t.Helper()

	for _, ev := range evs {
		if cs, ok := ev.(domain.CoverStateUpdateEvent); ok {
			return cs.Value
		}
	}
	t.Fatal("no cover state event")
	return ""
}

func TestCoverStateDerivation(t *testing.T) {

	assert := assert.New(t)

	closed := &skyeapi.RoofStatus{
		State:     skyeapi.ROOF_STATE_READY,
		Positions: skyeapi.RoofPositions{Stack: 0, Tilt: 0},
	}
	open := &skyeapi.RoofStatus{
		State:     skyeapi.ROOF_STATE_READY,
		Positions: skyeapi.RoofPositions{Stack: 100, Tilt: 90},
	}
	movingUp := &skyeapi.RoofStatus{
		State:     skyeapi.ROOF_STATE_MOVING,
		Positions: skyeapi.RoofPositions{Stack: 50, Tilt: 40},
	}
	movingDown := &skyeapi.RoofStatus{
		State:     skyeapi.ROOF_STATE_MOVING,
		Positions: skyeapi.RoofPositions{Stack: 30, Tilt: 40},
	}

	assert.Equal(COVER_STATE_CLOSED, findCoverState(t, RoofStatusToUpdateEvents(closed, nil)))
	assert.Equal(COVER_STATE_OPEN, findCoverState(t, RoofStatusToUpdateEvents(open, nil)))

	// direction needs a previous status
	assert.Equal(COVER_STATE_OPENING, findCoverState(t, RoofStatusToUpdateEvents(movingUp, nil)))
	assert.Equal(COVER_STATE_OPENING, findCoverState(t, RoofStatusToUpdateEvents(movingUp, closed)))
	assert.Equal(COVER_STATE_CLOSING, findCoverState(t, RoofStatusToUpdateEvents(movingDown, movingUp)))
}

func TestRoofStatusToUpdateEvents(t *testing.T) {

	assert := assert.New(t)

	status := &skyeapi.RoofStatus{
		State:        skyeapi.ROOF_STATE_READY,
		Locked:       true,
		Positions:    skyeapi.RoofPositions{Stack: 100, Tilt: 90},
		WeatherState: "sunny",
	}

	evs := RoofStatusToUpdateEvents(status, nil)

	byId := map[string]any{}
	for _, ev := range evs {
		sue, ok := ev.(domain.SensorUpdateEvent)
		require.True(t, ok)
		byId[sue.SensorId()] = ev
	}

	assert.Equal(true, byId[BINARY_SENSOR_ID_FULLY_OPENED].(domain.BinarySensorUpdateEvent).Value)
	assert.Equal(false, byId[BINARY_SENSOR_ID_FULLY_CLOSED].(domain.BinarySensorUpdateEvent).Value)
	assert.Equal(false, byId[BINARY_SENSOR_ID_MOVING].(domain.BinarySensorUpdateEvent).Value)
	assert.Equal(true, byId[SWITCH_ID_ROOF_LOCK].(domain.SwitchSensorUpdateEvent).Value)
	assert.Equal(status.State, byId[SENSOR_ID_ROOF_STATE].(domain.TextSensorUpdateEvent).Value)
	assert.Equal("sunny", byId[SENSOR_ID_WEATHER_STATE].(domain.TextSensorUpdateEvent).Value)
}

func TestWeatherStateOmittedWhenUnknown(t *testing.T) {

	assert := assert.New(t)

	status := &skyeapi.RoofStatus{
		State:     skyeapi.ROOF_STATE_READY,
		Positions: skyeapi.RoofPositions{Stack: 40, Tilt: 25},
	}

	for _, ev := range RoofStatusToUpdateEvents(status, nil) {
		if ts, ok := ev.(domain.TextSensorUpdateEvent); ok {
			assert.NotEqual(SENSOR_ID_WEATHER_STATE, ts.SensorId(), "no weather event without a reading")
		}
	}
}
